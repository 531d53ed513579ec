package plex

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_FindByUser(t *testing.T) {
	server := newSessionServer(t)
	defer server.Close()

	client := NewClient(server.URL, "test-token", nil)

	s, err := client.FindByUser(context.Background(), "ALICE")
	require.NoError(t, err, "lookup is case-insensitive")
	assert.Equal(t, "42", s.SessionKey)

	_, err = client.FindByUser(context.Background(), "mallory")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestClient_FindByTitle(t *testing.T) {
	server := newSessionServer(t)
	defer server.Close()

	client := NewClient(server.URL, "test-token", nil)

	tests := []struct {
		name    string
		query   string
		wantKey string
		wantErr bool
	}{
		{"exact", "Heat", "43", false},
		{"exact episode display title", "The Expanse - Pilot", "42", false},
		{"fuzzy", "the expanse pilot", "42", false},
		{"no match", "completely different show", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := client.FindByTitle(context.Background(), tt.query)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrSessionNotFound)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantKey, s.SessionKey)
		})
	}
}

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"The Expanse: Pilot", "the expanse pilot"},
		{"Dr. Strangelove", "dr strangelove"},
		{"  Heat  ", "heat"},
		{"Don't Look Up", "dont look up"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeTitle(tt.input))
		})
	}
}
