package transcode

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Duration returns the container duration of a media file in seconds.
// Used as a fallback when the media server reports no duration for a
// session's source.
func (f *FFmpeg) Duration(ctx context.Context, path string) (float64, error) {
	cmd := exec.CommandContext(ctx, f.ffprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)

	output, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrProbeFailed, err)
	}

	return parseDuration(string(output))
}

func parseDuration(output string) (float64, error) {
	s := strings.TrimSpace(output)
	d, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: parse duration %q: %v", ErrProbeFailed, s, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%w: negative duration %q", ErrProbeFailed, s)
	}
	return d, nil
}
