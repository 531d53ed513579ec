package v1

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vmunix/clipd/internal/plex"
)

// verifyToken checks a caller-supplied Plex account token against plex.tv.
// An invalid token is a negative result, not an error.
func (s *Server) verifyToken(w http.ResponseWriter, r *http.Request) {
	if s.deps.Verifier == nil {
		writeError(w, http.StatusServiceUnavailable, "NO_VERIFIER", "Token verification not configured")
		return
	}

	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
		return
	}
	if req.Token == "" {
		writeError(w, http.StatusBadRequest, "MISSING_TOKEN", "token is required")
		return
	}

	account, err := s.deps.Verifier.VerifyToken(r.Context(), req.Token)
	if err != nil {
		if errors.Is(err, plex.ErrInvalidToken) {
			writeJSON(w, http.StatusOK, verifyResponse{Valid: false})
			return
		}
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, verifyResponse{
		Valid:    true,
		Username: account.Username,
		Email:    account.Email,
	})
}
