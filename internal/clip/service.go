package clip

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/vmunix/clipd/internal/artifacts"
	"github.com/vmunix/clipd/internal/events"
	"github.com/vmunix/clipd/internal/pathguard"
	"github.com/vmunix/clipd/internal/plex"
	"github.com/vmunix/clipd/internal/transcode"
)

// ClipRequest asks for a [Start, End) cut out of a live session's source.
type ClipRequest struct {
	SessionKey string
	Start      float64 // seconds
	End        float64 // seconds, exclusive of Start, inclusive of duration
}

// SnapshotRequest asks for a single still frame at Offset.
type SnapshotRequest struct {
	SessionKey string
	Offset     float64 // seconds
}

// SessionResolver maps a session key to a point-in-time playback snapshot.
type SessionResolver interface {
	Resolve(ctx context.Context, sessionKey string) (*plex.Session, error)
}

// Prober reports a media file's container duration.
type Prober interface {
	Duration(ctx context.Context, path string) (float64, error)
}

// Service runs extraction jobs. Each call resolves the session fresh,
// validates the range, authorizes both paths, and hands the transcode to
// the bounded pool. Failures are typed and surfaced as-is; there are no
// internal retries because a stale playback offset makes a blind retry
// target the wrong point in the stream.
type Service struct {
	sessions SessionResolver
	guard    *pathguard.Guard
	backend  transcode.Backend
	prober   Prober
	pool     *transcode.Pool
	store    *artifacts.Store
	bus      *events.Bus
	log      *slog.Logger
}

// NewService creates the extraction service.
func NewService(sessions SessionResolver, guard *pathguard.Guard, backend transcode.Backend, prober Prober, pool *transcode.Pool, store *artifacts.Store, bus *events.Bus, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		sessions: sessions,
		guard:    guard,
		backend:  backend,
		prober:   prober,
		pool:     pool,
		store:    store,
		bus:      bus,
		log:      log.With("component", "clip"),
	}
}

// CreateClip extracts [Start, End) from the session's source file and
// records the resulting artifact.
func (s *Service) CreateClip(ctx context.Context, req ClipRequest) (*artifacts.Artifact, error) {
	sess, err := s.sessions.Resolve(ctx, req.SessionKey)
	if err != nil {
		return nil, err
	}

	src, duration, err := s.authorizeSource(ctx, sess)
	if err != nil {
		return nil, err
	}
	if err := ValidateRange(req.Start, req.End, duration); err != nil {
		return nil, err
	}

	now := time.Now()
	out, err := s.authorizeOutput(outputName(*sess, now, extClip))
	if err != nil {
		return nil, err
	}

	s.log.Info("extracting clip",
		"session", sess.SessionKey,
		"title", sess.DisplayTitle(),
		"user", sess.User,
		"start", req.Start,
		"end", req.End)

	tags := Tags(*sess, now)
	err = s.pool.Do(ctx, func() error {
		return s.backend.ExtractClip(ctx, transcode.ClipSpec{
			Source:   src,
			Start:    req.Start,
			Duration: req.End - req.Start,
			Tags:     tags,
			Output:   out,
		})
	})
	if err != nil {
		return nil, s.failExtraction(ctx, sess.SessionKey, artifacts.KindVideo, out, err)
	}

	a := &artifacts.Artifact{
		Kind:         artifacts.KindVideo,
		Filename:     filepath.Base(out),
		Path:         out,
		Title:        sess.Title,
		Show:         sess.Show,
		Season:       sess.Season,
		Episode:      sess.Episode,
		Username:     sess.User,
		SourcePath:   src,
		SourceOffset: req.Start,
		Duration:     req.End - req.Start,
	}
	if err := s.record(ctx, a); err != nil {
		return nil, err
	}
	s.publish(ctx, events.NewClipCreated(a.ID, sess.SessionKey, sess.DisplayTitle(), sess.User, req.Start, a.Duration, a.Path))
	return a, nil
}

// CreateSnapshot extracts one still frame at the requested offset and
// records the resulting artifact.
func (s *Service) CreateSnapshot(ctx context.Context, req SnapshotRequest) (*artifacts.Artifact, error) {
	sess, err := s.sessions.Resolve(ctx, req.SessionKey)
	if err != nil {
		return nil, err
	}

	src, duration, err := s.authorizeSource(ctx, sess)
	if err != nil {
		return nil, err
	}
	if err := ValidateOffset(req.Offset, duration); err != nil {
		return nil, err
	}

	out, err := s.authorizeOutput(outputName(*sess, time.Now(), extSnapshot))
	if err != nil {
		return nil, err
	}

	s.log.Info("extracting snapshot",
		"session", sess.SessionKey,
		"title", sess.DisplayTitle(),
		"user", sess.User,
		"offset", req.Offset)

	err = s.pool.Do(ctx, func() error {
		return s.backend.ExtractFrame(ctx, transcode.FrameSpec{
			Source: src,
			Offset: req.Offset,
			Output: out,
		})
	})
	if err != nil {
		return nil, s.failExtraction(ctx, sess.SessionKey, artifacts.KindImage, out, err)
	}

	a := &artifacts.Artifact{
		Kind:         artifacts.KindImage,
		Filename:     filepath.Base(out),
		Path:         out,
		Title:        sess.Title,
		Show:         sess.Show,
		Season:       sess.Season,
		Episode:      sess.Episode,
		Username:     sess.User,
		SourcePath:   src,
		SourceOffset: req.Offset,
	}
	if err := s.record(ctx, a); err != nil {
		return nil, err
	}
	s.publish(ctx, events.NewSnapshotCreated(a.ID, sess.SessionKey, sess.DisplayTitle(), sess.User, req.Offset, a.Path))
	return a, nil
}

// DeleteArtifact removes an artifact's file and its registry row. The
// stored path is re-authorized before the unlink so a tampered row can
// never delete a file outside the output root.
func (s *Service) DeleteArtifact(ctx context.Context, id int64) error {
	a, err := s.store.Get(id)
	if err != nil {
		return err
	}

	path, err := s.guard.AuthorizeOutput(a.Path)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove artifact file: %w", err)
	}
	if err := s.store.Delete(id); err != nil {
		return err
	}

	s.log.Info("deleted artifact", "id", id, "filename", a.Filename, "user", a.Username)
	s.publish(ctx, events.NewArtifactDeleted(a.ID, a.Filename, a.Username))
	return nil
}

// authorizeSource authorizes the session's file path against the media
// root and returns it with a usable duration. A server that omits the
// container duration forces a probe of the source itself.
func (s *Service) authorizeSource(ctx context.Context, sess *plex.Session) (string, float64, error) {
	src, err := s.guard.AuthorizeSource(sess.FilePath)
	if err != nil {
		return "", 0, err
	}

	duration := sess.Duration
	if duration <= 0 {
		duration, err = s.prober.Duration(ctx, src)
		if err != nil {
			return "", 0, err
		}
		s.log.Debug("session omitted duration, probed source",
			"session", sess.SessionKey, "duration", duration)
	}
	return src, duration, nil
}

func (s *Service) authorizeOutput(filename string) (string, error) {
	return s.guard.AuthorizeOutput(filepath.Join(s.guard.OutputRoot(), filename))
}

// failExtraction cleans up a partial output file and publishes the
// failure before handing the typed error back to the caller.
func (s *Service) failExtraction(ctx context.Context, sessionKey string, kind artifacts.Kind, out string, err error) error {
	if rmErr := os.Remove(out); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
		s.log.Error("failed to remove partial output", "path", out, "error", rmErr)
	}

	exitCode := -1
	diagnostic := err.Error()
	var extErr *transcode.ExtractionError
	if errors.As(err, &extErr) {
		exitCode = extErr.ExitCode
		diagnostic = extErr.Stderr
	}
	s.log.Error("extraction failed",
		"session", sessionKey, "kind", string(kind), "exit_code", exitCode, "error", err)
	s.publish(ctx, events.NewExtractionFailed(sessionKey, string(kind), exitCode, diagnostic))
	return err
}

func (s *Service) record(ctx context.Context, a *artifacts.Artifact) error {
	if err := s.store.Add(a); err != nil {
		// The file is on disk but the registry insert failed; remove it
		// so listings and the filesystem stay consistent.
		if rmErr := os.Remove(a.Path); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
			s.log.Error("failed to remove unrecorded output", "path", a.Path, "error", rmErr)
		}
		return fmt.Errorf("record artifact: %w", err)
	}
	return nil
}

func (s *Service) publish(ctx context.Context, e events.Event) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(ctx, e); err != nil {
		s.log.Error("failed to publish event", "type", e.EventType(), "error", err)
	}
}
