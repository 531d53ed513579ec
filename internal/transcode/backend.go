// Package transcode wraps invocation of an external ffmpeg process for
// clip and still-frame extraction. Paths handed to this package are
// pre-authorized; no containment checks happen here.
package transcode

import (
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"sort"
	"strconv"
)

// ClipSpec describes one whole-clip extraction.
type ClipSpec struct {
	Source   string
	Start    float64 // seconds into the source
	Duration float64 // clip length in seconds
	Tags     map[string]string
	Output   string
}

// FrameSpec describes one still-frame extraction.
type FrameSpec struct {
	Source string
	Offset float64 // seconds into the source
	Output string
}

// Backend runs extractions. Implementations write exactly one file at
// the spec's output path on success, and zero or a partial file on
// failure; the caller owns cleanup.
type Backend interface {
	ExtractClip(ctx context.Context, spec ClipSpec) error
	ExtractFrame(ctx context.Context, spec FrameSpec) error
}

// FFmpeg is the Backend backed by ffmpeg/ffprobe child processes.
type FFmpeg struct {
	ffmpegPath  string
	ffprobePath string
	log         *slog.Logger
}

// NewFFmpeg creates an FFmpeg backend. Empty paths default to looking
// up ffmpeg and ffprobe on PATH.
func NewFFmpeg(ffmpegPath, ffprobePath string, log *slog.Logger) *FFmpeg {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	if log == nil {
		log = slog.Default()
	}
	return &FFmpeg{
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
		log:         log.With("component", "transcode"),
	}
}

// ExtractClip cuts [Start, Start+Duration) out of the source, re-encoding
// to H.264/AAC and embedding the supplied container tags. The seek happens
// before the input is opened so long sources don't decode from zero.
func (f *FFmpeg) ExtractClip(ctx context.Context, spec ClipSpec) error {
	args := buildClipArgs(spec)
	return f.run(ctx, args)
}

// ExtractFrame grabs a single still image at the nearest decodable point
// at or after the offset.
func (f *FFmpeg) ExtractFrame(ctx context.Context, spec FrameSpec) error {
	args := buildFrameArgs(spec)
	return f.run(ctx, args)
}

func buildClipArgs(spec ClipSpec) []string {
	args := []string{
		"-hide_banner", "-loglevel", "error",
		"-ss", formatSeconds(spec.Start),
		"-i", spec.Source,
		"-t", formatSeconds(spec.Duration),
		"-map_metadata", "-1",
	}

	// Deterministic tag order keeps invocations reproducible.
	keys := make([]string, 0, len(spec.Tags))
	for k := range spec.Tags {
		if spec.Tags[k] != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		args = append(args, "-metadata", k+"="+spec.Tags[k])
	}

	args = append(args,
		"-c:v", "libx264",
		"-crf", "18",
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
		"-y", spec.Output,
	)
	return args
}

func buildFrameArgs(spec FrameSpec) []string {
	return []string{
		"-hide_banner", "-loglevel", "error",
		"-ss", formatSeconds(spec.Offset),
		"-i", spec.Source,
		"-frames:v", "1",
		"-q:v", "2",
		"-y", spec.Output,
	}
}

func formatSeconds(s float64) string {
	return strconv.FormatFloat(s, 'f', 3, 64)
}

func (f *FFmpeg) run(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, f.ffmpegPath, args...)

	var stderr tailWriter
	cmd.Stderr = &stderr

	f.log.Debug("running transcoder", "args", args)

	err := cmd.Run()
	if err == nil {
		return nil
	}

	// A killed child after request abort is a cancellation, not an
	// extraction failure.
	if ctx.Err() != nil {
		return ctx.Err()
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ExtractionError{ExitCode: exitErr.ExitCode(), Stderr: stderr.String()}
	}
	return err
}

// tailWriter keeps the last stderrTailSize bytes written to it.
type tailWriter struct {
	buf []byte
}

const stderrTailSize = 4096

func (w *tailWriter) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	if len(w.buf) > stderrTailSize {
		w.buf = w.buf[len(w.buf)-stderrTailSize:]
	}
	return len(p), nil
}

func (w *tailWriter) String() string {
	return string(w.buf)
}
