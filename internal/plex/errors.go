package plex

import "errors"

// Sentinel errors for the plex package.
var (
	// ErrSessionNotFound is returned when a session key does not appear
	// in the server's current session listing.
	ErrSessionNotFound = errors.New("session not found")

	// ErrUpstreamUnavailable is returned when the Plex server cannot be
	// reached or returns a malformed or unauthenticated response.
	ErrUpstreamUnavailable = errors.New("plex server unavailable")

	// ErrInvalidToken is returned when plex.tv rejects an access token.
	ErrInvalidToken = errors.New("invalid plex token")
)
