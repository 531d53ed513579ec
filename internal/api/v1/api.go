// Package v1 implements the native REST API.
package v1

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/vmunix/clipd/internal/artifacts"
	"github.com/vmunix/clipd/internal/clip"
	"github.com/vmunix/clipd/internal/pathguard"
	"github.com/vmunix/clipd/internal/plex"
	"github.com/vmunix/clipd/internal/transcode"
)

// Config holds API server configuration.
type Config struct {
	APIKey  string // required on every request
	Version string
}

// Server is the v1 API server.
type Server struct {
	deps ServerDeps
	cfg  Config
	log  *slog.Logger
}

// New creates a new v1 API server.
func New(deps ServerDeps, cfg Config, log *slog.Logger) (*Server, error) {
	if err := deps.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.Default()
	}
	return &Server{deps: deps, cfg: cfg, log: log.With("component", "api")}, nil
}

// RegisterRoutes registers API routes on the given mux. Every route goes
// through the API key check; there is no unauthenticated surface.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	auth := s.requireAPIKey

	// Sessions
	mux.HandleFunc("GET /api/v1/sessions", auth(s.listSessions))
	mux.HandleFunc("GET /api/v1/sessions/{key}", auth(s.getSession))

	// Extraction
	mux.HandleFunc("POST /api/v1/clips", auth(s.createClip))
	mux.HandleFunc("POST /api/v1/snapshots", auth(s.createSnapshot))

	// Artifacts
	mux.HandleFunc("GET /api/v1/artifacts", auth(s.listArtifacts))
	mux.HandleFunc("GET /api/v1/artifacts/{id}", auth(s.getArtifact))
	mux.HandleFunc("DELETE /api/v1/artifacts/{id}", auth(s.deleteArtifact))
	mux.HandleFunc("GET /api/v1/artifacts/{id}/events", auth(s.requireEventLog(s.listArtifactEvents)))

	// Events
	mux.HandleFunc("GET /api/v1/events", auth(s.requireEventLog(s.listEvents)))

	// System
	mux.HandleFunc("GET /api/v1/status", auth(s.getStatus))
	mux.HandleFunc("POST /api/v1/auth/verify", auth(s.requireVerifier(s.verifyToken)))
}

// Error response
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, code int, errCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: message, Code: errCode})
}

func writeJSON(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(data)
}

// writeDomainError maps the extraction error taxonomy to HTTP statuses.
// A path-traversal failure gets a generic message: the resolved canonical
// path must never leak to the client.
func writeDomainError(w http.ResponseWriter, err error) {
	var rangeErr *clip.InvalidRangeError
	var extErr *transcode.ExtractionError

	switch {
	case errors.Is(err, plex.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "SESSION_NOT_FOUND", "Session not found")
	case errors.Is(err, artifacts.ErrNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Artifact not found")
	case errors.Is(err, plex.ErrUpstreamUnavailable):
		writeError(w, http.StatusServiceUnavailable, "UPSTREAM_UNAVAILABLE", "Media server unavailable")
	case errors.As(err, &rangeErr):
		writeError(w, http.StatusBadRequest, "INVALID_RANGE", rangeErr.Reason)
	case errors.Is(err, pathguard.ErrPathTraversal):
		writeError(w, http.StatusForbidden, "PATH_DENIED", "Path not permitted")
	case errors.As(err, &extErr):
		writeError(w, http.StatusBadGateway, "EXTRACTION_FAILED",
			fmt.Sprintf("Transcoder exited with code %d", extErr.ExitCode))
	default:
		writeError(w, http.StatusInternalServerError, "INTERNAL", err.Error())
	}
}

// pathID extracts an integer ID from the URL path.
func pathID(r *http.Request, name string) (int64, error) {
	idStr := r.PathValue(name)
	if idStr == "" {
		return 0, fmt.Errorf("missing path parameter: %s", name)
	}
	return strconv.ParseInt(idStr, 10, 64)
}

// queryInt extracts an optional integer from query string.
func queryInt(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return i
}

// queryString extracts an optional string from query string.
func queryString(r *http.Request, name string) *string {
	val := r.URL.Query().Get(name)
	if val == "" {
		return nil
	}
	return &val
}

// Handlers

func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	var (
		sessions []plex.Session
		err      error
	)

	switch {
	case queryString(r, "user") != nil:
		var sess *plex.Session
		sess, err = s.deps.Sessions.FindByUser(r.Context(), *queryString(r, "user"))
		if sess != nil {
			sessions = []plex.Session{*sess}
		}
	case queryString(r, "title") != nil:
		var sess *plex.Session
		sess, err = s.deps.Sessions.FindByTitle(r.Context(), *queryString(r, "title"))
		if sess != nil {
			sessions = []plex.Session{*sess}
		}
	default:
		sessions, err = s.deps.Sessions.Sessions(r.Context())
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := listSessionsResponse{
		Items: make([]sessionResponse, len(sessions)),
		Total: len(sessions),
	}
	for i, sess := range sessions {
		resp.Items[i] = sessionToResponse(sess)
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	sess, err := s.deps.Sessions.Resolve(r.Context(), key)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionToResponse(*sess))
}

func (s *Server) createClip(w http.ResponseWriter, r *http.Request) {
	var req clipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
		return
	}
	if req.SessionKey == "" {
		writeError(w, http.StatusBadRequest, "MISSING_SESSION", "session_key is required")
		return
	}

	a, err := s.deps.Extractor.CreateClip(r.Context(), clip.ClipRequest{
		SessionKey: req.SessionKey,
		Start:      req.StartSeconds,
		End:        req.EndSeconds,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, artifactToResponse(a))
}

func (s *Server) createSnapshot(w http.ResponseWriter, r *http.Request) {
	var req snapshotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
		return
	}
	if req.SessionKey == "" {
		writeError(w, http.StatusBadRequest, "MISSING_SESSION", "session_key is required")
		return
	}

	a, err := s.deps.Extractor.CreateSnapshot(r.Context(), clip.SnapshotRequest{
		SessionKey: req.SessionKey,
		Offset:     req.OffsetSeconds,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, artifactToResponse(a))
}

func (s *Server) listArtifacts(w http.ResponseWriter, r *http.Request) {
	filter := artifacts.Filter{
		Limit:    queryInt(r, "limit", 50),
		Offset:   queryInt(r, "offset", 0),
		Username: queryString(r, "user"),
	}
	if kindStr := queryString(r, "kind"); kindStr != nil {
		k := artifacts.Kind(*kindStr)
		if k != artifacts.KindVideo && k != artifacts.KindImage {
			writeError(w, http.StatusBadRequest, "INVALID_KIND", "kind must be 'video' or 'image'")
			return
		}
		filter.Kind = &k
	}

	items, err := s.deps.Artifacts.List(filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "DB_ERROR", err.Error())
		return
	}
	total, err := s.deps.Artifacts.Count(filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "DB_ERROR", err.Error())
		return
	}

	resp := listArtifactsResponse{
		Items:  make([]artifactResponse, len(items)),
		Total:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}
	for i, a := range items {
		resp.Items[i] = artifactToResponse(a)
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) getArtifact(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", err.Error())
		return
	}

	a, err := s.deps.Artifacts.Get(id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, artifactToResponse(a))
}

func (s *Server) deleteArtifact(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", err.Error())
		return
	}

	if err := s.deps.Extractor.DeleteArtifact(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getStatus(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{Status: "ok", Version: s.cfg.Version}

	identity, err := s.deps.Sessions.GetIdentity(r.Context())
	resp.Plex.Connected = err == nil
	if err != nil {
		resp.Plex.Error = err.Error()
	} else {
		resp.Plex.Name = identity.Name
		resp.Plex.Version = identity.Version
	}

	writeJSON(w, http.StatusOK, resp)
}
