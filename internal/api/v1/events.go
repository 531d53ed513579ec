package v1

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/vmunix/clipd/internal/events"
)

func (s *Server) listEvents(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	// Validate pagination parameters
	if limit < 0 || offset < 0 {
		writeError(w, http.StatusBadRequest, "INVALID_PAGINATION", "limit and offset must be non-negative")
		return
	}
	const maxLimit = 1000
	if limit > maxLimit {
		limit = maxLimit
	}

	if s.deps.EventLog == nil {
		writeError(w, http.StatusServiceUnavailable, "NO_EVENT_LOG", "Event log not configured")
		return
	}

	// since=<RFC3339> returns everything from that instant, oldest first,
	// ignoring pagination. Used by clipctl to tail activity.
	if sinceStr := queryString(r, "since"); sinceStr != nil {
		since, err := time.Parse(time.RFC3339, *sinceStr)
		if err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_SINCE", "since must be RFC 3339")
			return
		}
		evts, err := s.deps.EventLog.Since(since)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "EVENT_ERROR", err.Error())
			return
		}
		writeJSON(w, http.StatusOK, eventsToResponse(evts, len(evts), len(evts), 0))
		return
	}

	evts, total, err := s.deps.EventLog.Recent(limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "EVENT_ERROR", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, eventsToResponse(evts, total, limit, offset))
}

func (s *Server) listArtifactEvents(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", err.Error())
		return
	}

	if s.deps.EventLog == nil {
		writeError(w, http.StatusServiceUnavailable, "NO_EVENT_LOG", "Event log not configured")
		return
	}

	// Verify artifact exists
	if _, err := s.deps.Artifacts.Get(id); err != nil {
		writeDomainError(w, err)
		return
	}

	evts, err := s.deps.EventLog.ForEntity(events.EntityArtifact, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "EVENT_ERROR", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, eventsToResponse(evts, len(evts), len(evts), 0))
}

func eventsToResponse(evts []events.RawEvent, total, limit, offset int) listEventsResponse {
	resp := listEventsResponse{
		Items:  make([]EventResponse, len(evts)),
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}
	for i, e := range evts {
		resp.Items[i] = EventResponse{
			ID:         e.ID,
			EventType:  e.EventType,
			EntityType: e.EntityType,
			EntityID:   e.EntityID,
			Payload:    json.RawMessage(e.Payload),
			OccurredAt: e.OccurredAt.Format(time.RFC3339),
		}
	}
	return resp
}
