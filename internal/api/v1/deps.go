package v1

import (
	"context"
	"errors"

	"github.com/vmunix/clipd/internal/artifacts"
	"github.com/vmunix/clipd/internal/clip"
	"github.com/vmunix/clipd/internal/events"
	"github.com/vmunix/clipd/internal/plex"
)

// ErrMissingDependency is returned when a required dependency is nil.
var ErrMissingDependency = errors.New("missing required dependency")

// Extractor runs extraction jobs and owns artifact deletion.
type Extractor interface {
	CreateClip(ctx context.Context, req clip.ClipRequest) (*artifacts.Artifact, error)
	CreateSnapshot(ctx context.Context, req clip.SnapshotRequest) (*artifacts.Artifact, error)
	DeleteArtifact(ctx context.Context, id int64) error
}

// SessionDirectory lists and resolves active playback sessions.
type SessionDirectory interface {
	Sessions(ctx context.Context) ([]plex.Session, error)
	Resolve(ctx context.Context, sessionKey string) (*plex.Session, error)
	FindByUser(ctx context.Context, username string) (*plex.Session, error)
	FindByTitle(ctx context.Context, query string) (*plex.Session, error)
	GetIdentity(ctx context.Context) (*plex.Identity, error)
}

// TokenVerifier checks a Plex account token against plex.tv.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*plex.Account, error)
}

// ServerDeps contains all dependencies for the API server.
// Required dependencies must be non-nil; optional dependencies may be nil.
type ServerDeps struct {
	// Required dependencies
	Extractor Extractor
	Sessions  SessionDirectory
	Artifacts *artifacts.Store

	// Optional dependencies (nil if not configured)
	Verifier TokenVerifier    // plex.tv token verification
	EventLog *events.EventLog // event audit log
}

// Validate checks that all required dependencies are provided.
func (d ServerDeps) Validate() error {
	if d.Extractor == nil {
		return errors.New("extractor is required")
	}
	if d.Sessions == nil {
		return errors.New("session directory is required")
	}
	if d.Artifacts == nil {
		return errors.New("artifact store is required")
	}
	return nil
}
