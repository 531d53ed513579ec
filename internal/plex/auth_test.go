package plex

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthClient_VerifyToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v2/user", r.URL.Path)

		if r.Header.Get("X-Plex-Token") != "good-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": 123, "username": "alice", "email": "alice@example.com"}`))
	}))
	defer server.Close()

	client := NewAuthClient(server.URL, nil)

	account, err := client.VerifyToken(context.Background(), "good-token")
	require.NoError(t, err)
	assert.Equal(t, "alice", account.Username)
	assert.Equal(t, int64(123), account.ID)

	_, err = client.VerifyToken(context.Background(), "bad-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthClient_Unavailable(t *testing.T) {
	client := NewAuthClient("http://127.0.0.1:1", nil)
	_, err := client.VerifyToken(context.Background(), "token")
	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
}
