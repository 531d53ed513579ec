package events

// Event type identifiers.
const (
	EventClipCreated      = "clip.created"
	EventSnapshotCreated  = "snapshot.created"
	EventArtifactDeleted  = "artifact.deleted"
	EventExtractionFailed = "extraction.failed"
)

// ClipCreated is published after a clip artifact lands on disk.
type ClipCreated struct {
	BaseEvent
	ArtifactID int64   `json:"artifact_id"`
	SessionKey string  `json:"session_key"`
	Title      string  `json:"title"`
	Username   string  `json:"username"`
	Start      float64 `json:"start_seconds"`
	Duration   float64 `json:"duration_seconds"`
	Path       string  `json:"path"`
}

// NewClipCreated creates a ClipCreated event.
func NewClipCreated(artifactID int64, sessionKey, title, username string, start, duration float64, path string) *ClipCreated {
	return &ClipCreated{
		BaseEvent:  NewBaseEvent(EventClipCreated, EntityArtifact, artifactID),
		ArtifactID: artifactID,
		SessionKey: sessionKey,
		Title:      title,
		Username:   username,
		Start:      start,
		Duration:   duration,
		Path:       path,
	}
}

// SnapshotCreated is published after a still-image artifact lands on disk.
type SnapshotCreated struct {
	BaseEvent
	ArtifactID int64   `json:"artifact_id"`
	SessionKey string  `json:"session_key"`
	Title      string  `json:"title"`
	Username   string  `json:"username"`
	Offset     float64 `json:"offset_seconds"`
	Path       string  `json:"path"`
}

// NewSnapshotCreated creates a SnapshotCreated event.
func NewSnapshotCreated(artifactID int64, sessionKey, title, username string, offset float64, path string) *SnapshotCreated {
	return &SnapshotCreated{
		BaseEvent:  NewBaseEvent(EventSnapshotCreated, EntityArtifact, artifactID),
		ArtifactID: artifactID,
		SessionKey: sessionKey,
		Title:      title,
		Username:   username,
		Offset:     offset,
		Path:       path,
	}
}

// ArtifactDeleted is published after an artifact and its file are removed.
type ArtifactDeleted struct {
	BaseEvent
	ArtifactID int64  `json:"artifact_id"`
	Filename   string `json:"filename"`
	Username   string `json:"username"`
}

// NewArtifactDeleted creates an ArtifactDeleted event.
func NewArtifactDeleted(artifactID int64, filename, username string) *ArtifactDeleted {
	return &ArtifactDeleted{
		BaseEvent:  NewBaseEvent(EventArtifactDeleted, EntityArtifact, artifactID),
		ArtifactID: artifactID,
		Filename:   filename,
		Username:   username,
	}
}

// ExtractionFailed is published when the external transcoder fails.
// EntityID is zero: no artifact was produced.
type ExtractionFailed struct {
	BaseEvent
	SessionKey string `json:"session_key"`
	Kind       string `json:"kind"` // video, image
	ExitCode   int    `json:"exit_code"`
	Diagnostic string `json:"diagnostic"`
}

// NewExtractionFailed creates an ExtractionFailed event.
func NewExtractionFailed(sessionKey, kind string, exitCode int, diagnostic string) *ExtractionFailed {
	return &ExtractionFailed{
		BaseEvent:  NewBaseEvent(EventExtractionFailed, EntitySession, 0),
		SessionKey: sessionKey,
		Kind:       kind,
		ExitCode:   exitCode,
		Diagnostic: diagnostic,
	}
}
