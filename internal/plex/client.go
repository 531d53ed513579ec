// Package plex queries a Plex Media Server for active playback sessions.
// Every call re-queries the server: a session's playback offset is only
// meaningful at the instant it was read, so nothing here is cached.
package plex

import (
	"context"
	"encoding/xml"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Client interacts with the Plex Media Server API.
type Client struct {
	baseURL    string
	token      string
	remotePath string // Path prefix as seen by Plex
	localPath  string // Corresponding local path
	httpClient *http.Client
	log        *slog.Logger
}

// NewClient creates a new Plex client.
func NewClient(baseURL, token string, log *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		log:     plexLogger(log),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// NewClientWithPathMapping creates a Plex client with path translation.
// remotePath is how Plex reports file paths, localPath is where the same
// files are mounted on this machine.
func NewClientWithPathMapping(baseURL, token, localPath, remotePath string, log *slog.Logger) *Client {
	c := NewClient(baseURL, token, log)
	c.localPath = localPath
	c.remotePath = remotePath
	return c
}

func plexLogger(log *slog.Logger) *slog.Logger {
	if log == nil {
		log = slog.Default()
	}
	return log.With("component", "plex")
}

// TranslateToLocal converts a Plex-reported path to the local path.
func (c *Client) TranslateToLocal(path string) string {
	if c.localPath == "" || c.remotePath == "" {
		return path
	}
	if strings.HasPrefix(path, c.remotePath) {
		return c.localPath + path[len(c.remotePath):]
	}
	return path
}

// Session is an immutable snapshot of one active playback stream.
// Two queries for the same key may return different offsets.
type Session struct {
	SessionKey string
	User       string
	Title      string
	Type       string // movie, episode
	Show       string
	Season     string
	Episode    string
	FilePath   string  // local filesystem path of the source file
	Duration   float64 // container duration in seconds
	Offset     float64 // current playback position in seconds
}

// DisplayTitle returns "Show - Title" for episodes, Title otherwise.
func (s Session) DisplayTitle() string {
	if s.Type == "episode" && s.Show != "" {
		return s.Show + " - " + s.Title
	}
	return s.Title
}

// sessionXML is one Video element from /status/sessions. Optional
// attributes decode to zero values; the schema varies across server
// versions and missing fields must not fail the whole listing.
type sessionXML struct {
	SessionKey string `xml:"sessionKey,attr"`
	Title      string `xml:"title,attr"`
	Type       string `xml:"type,attr"`
	Show       string `xml:"grandparentTitle,attr"`
	Season     string `xml:"parentIndex,attr"`
	Episode    string `xml:"index,attr"`
	DurationMS int64  `xml:"duration,attr"`
	OffsetMS   int64  `xml:"viewOffset,attr"`
	User       struct {
		Title string `xml:"title,attr"`
	} `xml:"User"`
	Media []struct {
		Part []struct {
			File string `xml:"file,attr"`
		} `xml:"Part"`
	} `xml:"Media"`
}

// sessionsResponse is the XML response from /status/sessions.
type sessionsResponse struct {
	XMLName xml.Name     `xml:"MediaContainer"`
	Videos  []sessionXML `xml:"Video"`
}

// Sessions returns all active playback sessions.
func (c *Client) Sessions(ctx context.Context) ([]Session, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/status/sessions", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-Plex-Token", c.token)
	req.Header.Set("Accept", "application/xml")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrUpstreamUnavailable, resp.StatusCode)
	}

	var result sessionsResponse
	if err := xml.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrUpstreamUnavailable, err)
	}

	sessions := make([]Session, 0, len(result.Videos))
	for _, v := range result.Videos {
		sessions = append(sessions, c.toSession(v))
	}
	return sessions, nil
}

func (c *Client) toSession(v sessionXML) Session {
	filePath := ""
	if len(v.Media) > 0 && len(v.Media[0].Part) > 0 {
		filePath = c.TranslateToLocal(v.Media[0].Part[0].File)
	}
	return Session{
		SessionKey: v.SessionKey,
		User:       v.User.Title,
		Title:      v.Title,
		Type:       v.Type,
		Show:       v.Show,
		Season:     v.Season,
		Episode:    v.Episode,
		FilePath:   filePath,
		Duration:   float64(v.DurationMS) / 1000,
		Offset:     float64(v.OffsetMS) / 1000,
	}
}

// Resolve maps a session key to its current snapshot. A key missing from
// the listing is ErrSessionNotFound, never a fallback session.
func (c *Client) Resolve(ctx context.Context, sessionKey string) (*Session, error) {
	sessions, err := c.Sessions(ctx)
	if err != nil {
		return nil, err
	}

	for i := range sessions {
		if sessions[i].SessionKey == sessionKey {
			return &sessions[i], nil
		}
	}
	return nil, fmt.Errorf("session %q: %w", sessionKey, ErrSessionNotFound)
}

// Identity holds Plex server identity information.
type Identity struct {
	Name    string
	Version string
}

// identityResponse is the XML response from the root endpoint.
type identityResponse struct {
	XMLName      xml.Name `xml:"MediaContainer"`
	FriendlyName string   `xml:"friendlyName,attr"`
	Version      string   `xml:"version,attr"`
}

// GetIdentity returns the Plex server name and version.
func (c *Client) GetIdentity(ctx context.Context) (*Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-Plex-Token", c.token)
	req.Header.Set("Accept", "application/xml")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrUpstreamUnavailable, resp.StatusCode)
	}

	var result identityResponse
	if err := xml.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrUpstreamUnavailable, err)
	}

	return &Identity{
		Name:    result.FriendlyName,
		Version: result.Version,
	}, nil
}
