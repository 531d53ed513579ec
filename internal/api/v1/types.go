// internal/api/v1/types.go
package v1

import (
	"encoding/json"
	"time"

	"github.com/vmunix/clipd/internal/artifacts"
	"github.com/vmunix/clipd/internal/plex"
)

// sessionResponse is the API representation of an active playback session.
type sessionResponse struct {
	SessionKey    string  `json:"session_key"`
	User          string  `json:"user"`
	Title         string  `json:"title"`
	DisplayTitle  string  `json:"display_title"`
	Type          string  `json:"type"`
	Show          string  `json:"show,omitempty"`
	Season        string  `json:"season,omitempty"`
	Episode       string  `json:"episode,omitempty"`
	Duration      float64 `json:"duration_seconds"`
	Offset        float64 `json:"offset_seconds"`
}

// listSessionsResponse is the response for GET /sessions.
type listSessionsResponse struct {
	Items []sessionResponse `json:"items"`
	Total int               `json:"total"`
}

func sessionToResponse(s plex.Session) sessionResponse {
	return sessionResponse{
		SessionKey:   s.SessionKey,
		User:         s.User,
		Title:        s.Title,
		DisplayTitle: s.DisplayTitle(),
		Type:         s.Type,
		Show:         s.Show,
		Season:       s.Season,
		Episode:      s.Episode,
		Duration:     s.Duration,
		Offset:       s.Offset,
	}
}

// clipRequest is the body for POST /clips.
type clipRequest struct {
	SessionKey   string  `json:"session_key"`
	StartSeconds float64 `json:"start_seconds"`
	EndSeconds   float64 `json:"end_seconds"`
}

// snapshotRequest is the body for POST /snapshots.
type snapshotRequest struct {
	SessionKey    string  `json:"session_key"`
	OffsetSeconds float64 `json:"offset_seconds"`
}

// artifactResponse is the API representation of an extracted artifact.
type artifactResponse struct {
	ID           int64     `json:"id"`
	Kind         string    `json:"kind"`
	Filename     string    `json:"filename"`
	Title        string    `json:"title"`
	Show         string    `json:"show,omitempty"`
	Season       string    `json:"season,omitempty"`
	Episode      string    `json:"episode,omitempty"`
	Username     string    `json:"username"`
	SourceOffset float64   `json:"source_offset_seconds"`
	Duration     float64   `json:"duration_seconds,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// listArtifactsResponse is the response for GET /artifacts.
type listArtifactsResponse struct {
	Items  []artifactResponse `json:"items"`
	Total  int                `json:"total"`
	Limit  int                `json:"limit"`
	Offset int                `json:"offset"`
}

func artifactToResponse(a *artifacts.Artifact) artifactResponse {
	return artifactResponse{
		ID:           a.ID,
		Kind:         string(a.Kind),
		Filename:     a.Filename,
		Title:        a.Title,
		Show:         a.Show,
		Season:       a.Season,
		Episode:      a.Episode,
		Username:     a.Username,
		SourceOffset: a.SourceOffset,
		Duration:     a.Duration,
		CreatedAt:    a.CreatedAt,
	}
}

// EventResponse is the API representation of one logged event.
type EventResponse struct {
	ID         int64           `json:"id"`
	EventType  string          `json:"event_type"`
	EntityType string          `json:"entity_type"`
	EntityID   int64           `json:"entity_id"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	OccurredAt string          `json:"occurred_at"`
}

// listEventsResponse is the response for GET /events.
type listEventsResponse struct {
	Items  []EventResponse `json:"items"`
	Total  int             `json:"total"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}

// statusResponse is the response for GET /status.
type statusResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Plex    struct {
		Connected bool   `json:"connected"`
		Name      string `json:"name,omitempty"`
		Version   string `json:"version,omitempty"`
		Error     string `json:"error,omitempty"`
	} `json:"plex"`
}

// verifyRequest is the body for POST /auth/verify.
type verifyRequest struct {
	Token string `json:"token"`
}

// verifyResponse is the response for POST /auth/verify.
type verifyResponse struct {
	Valid    bool   `json:"valid"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
}
