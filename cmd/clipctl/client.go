package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client wraps HTTP calls to the clipd server. Every route requires
// the API key, so the key rides along on each request.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a new clipd API client.
func NewClient(serverURL, apiKey string) *Client {
	return &Client{
		baseURL: serverURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) do(method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequest(method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("request creation failed: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}

func (c *Client) get(path string, result any) error {
	resp, err := c.do(http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server error %d: %s", resp.StatusCode, string(body))
	}

	return json.NewDecoder(resp.Body).Decode(result)
}

func (c *Client) post(path string, body any, result any) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal error: %w", err)
	}

	resp, err := c.do(http.MethodPost, path, bytes.NewReader(jsonBody))
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server error %d: %s", resp.StatusCode, string(respBody))
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}
	return nil
}

func (c *Client) delete(path string) error {
	resp, err := c.do(http.MethodDelete, path, nil)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server error %d: %s", resp.StatusCode, string(body))
	}

	return nil
}

// API response types (mirror server types)

type StatusResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Plex    struct {
		Connected bool   `json:"connected"`
		Name      string `json:"name,omitempty"`
		Version   string `json:"version,omitempty"`
		Error     string `json:"error,omitempty"`
	} `json:"plex"`
}

type SessionResponse struct {
	SessionKey   string  `json:"session_key"`
	User         string  `json:"user"`
	Title        string  `json:"title"`
	DisplayTitle string  `json:"display_title"`
	Type         string  `json:"type"`
	Show         string  `json:"show,omitempty"`
	Season       string  `json:"season,omitempty"`
	Episode      string  `json:"episode,omitempty"`
	Duration     float64 `json:"duration_seconds"`
	Offset       float64 `json:"offset_seconds"`
}

type ListSessionsResponse struct {
	Items []SessionResponse `json:"items"`
	Total int               `json:"total"`
}

type ClipRequest struct {
	SessionKey   string  `json:"session_key"`
	StartSeconds float64 `json:"start_seconds"`
	EndSeconds   float64 `json:"end_seconds"`
}

type SnapshotRequest struct {
	SessionKey    string  `json:"session_key"`
	OffsetSeconds float64 `json:"offset_seconds"`
}

type ArtifactResponse struct {
	ID           int64   `json:"id"`
	Kind         string  `json:"kind"`
	Filename     string  `json:"filename"`
	Title        string  `json:"title"`
	Show         string  `json:"show,omitempty"`
	Season       string  `json:"season,omitempty"`
	Episode      string  `json:"episode,omitempty"`
	Username     string  `json:"username"`
	SourceOffset float64 `json:"source_offset_seconds"`
	Duration     float64 `json:"duration_seconds,omitempty"`
	CreatedAt    string  `json:"created_at"`
}

type ListArtifactsResponse struct {
	Items  []ArtifactResponse `json:"items"`
	Total  int                `json:"total"`
	Limit  int                `json:"limit"`
	Offset int                `json:"offset"`
}

type EventResponse struct {
	ID         int64           `json:"id"`
	EventType  string          `json:"event_type"`
	EntityType string          `json:"entity_type"`
	EntityID   int64           `json:"entity_id"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	OccurredAt string          `json:"occurred_at"`
}

type ListEventsResponse struct {
	Items  []EventResponse `json:"items"`
	Total  int             `json:"total"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}

type VerifyResponse struct {
	Valid    bool   `json:"valid"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
}

// API methods

// Status fetches server health.
func (c *Client) Status() (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.get("/api/v1/status", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Sessions lists active playback sessions, optionally narrowed to a
// single best match by user or title.
func (c *Client) Sessions(user, title string) (*ListSessionsResponse, error) {
	params := url.Values{}
	if user != "" {
		params.Set("user", user)
	}
	if title != "" {
		params.Set("title", title)
	}
	path := "/api/v1/sessions"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var resp ListSessionsResponse
	if err := c.get(path, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Session fetches a single session by key.
func (c *Client) Session(key string) (*SessionResponse, error) {
	var resp SessionResponse
	if err := c.get("/api/v1/sessions/"+url.PathEscape(key), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateClip asks the server to extract a clip from a live session.
func (c *Client) CreateClip(req ClipRequest) (*ArtifactResponse, error) {
	var resp ArtifactResponse
	if err := c.post("/api/v1/clips", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateSnapshot asks the server to grab a single frame from a live session.
func (c *Client) CreateSnapshot(req SnapshotRequest) (*ArtifactResponse, error) {
	var resp ArtifactResponse
	if err := c.post("/api/v1/snapshots", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Artifacts lists extracted artifacts.
func (c *Client) Artifacts(kind, user string, limit int) (*ListArtifactsResponse, error) {
	params := url.Values{}
	if kind != "" {
		params.Set("kind", kind)
	}
	if user != "" {
		params.Set("user", user)
	}
	if limit > 0 {
		params.Set("limit", fmt.Sprintf("%d", limit))
	}
	path := "/api/v1/artifacts"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var resp ListArtifactsResponse
	if err := c.get(path, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Artifact fetches a single artifact by ID.
func (c *Client) Artifact(id int64) (*ArtifactResponse, error) {
	var resp ArtifactResponse
	if err := c.get(fmt.Sprintf("/api/v1/artifacts/%d", id), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteArtifact removes an artifact record and its output file.
func (c *Client) DeleteArtifact(id int64) error {
	return c.delete(fmt.Sprintf("/api/v1/artifacts/%d", id))
}

// Events fetches recent events, newest first.
func (c *Client) Events(limit int) (*ListEventsResponse, error) {
	var resp ListEventsResponse
	if err := c.get(fmt.Sprintf("/api/v1/events?limit=%d", limit), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ArtifactEvents fetches the event history for one artifact.
func (c *Client) ArtifactEvents(id int64) (*ListEventsResponse, error) {
	var resp ListEventsResponse
	if err := c.get(fmt.Sprintf("/api/v1/artifacts/%d/events", id), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// VerifyToken checks a Plex token against plex.tv.
func (c *Client) VerifyToken(token string) (*VerifyResponse, error) {
	var resp VerifyResponse
	if err := c.post("/api/v1/auth/verify", map[string]string{"token": token}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
