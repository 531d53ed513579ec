package plex

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// DefaultAuthURL is the plex.tv API endpoint used for token verification.
const DefaultAuthURL = "https://plex.tv"

// Account is the plex.tv account a token belongs to.
type Account struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Thumb    string `json:"thumb"`
}

// AuthClient verifies access tokens against plex.tv.
type AuthClient struct {
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
}

// NewAuthClient creates a token verification client. An empty baseURL
// uses plex.tv.
func NewAuthClient(baseURL string, log *slog.Logger) *AuthClient {
	if baseURL == "" {
		baseURL = DefaultAuthURL
	}
	if log == nil {
		log = slog.Default()
	}
	return &AuthClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		log:     log.With("component", "plex-auth"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// VerifyToken checks a Plex token and returns the account it belongs to.
// A rejected token is ErrInvalidToken; transport failures are
// ErrUpstreamUnavailable.
func (c *AuthClient) VerifyToken(ctx context.Context, token string) (*Account, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v2/user", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-Plex-Token", token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusOK:
		// fall through to decode
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, ErrInvalidToken
	default:
		return nil, fmt.Errorf("%w: status %d", ErrUpstreamUnavailable, resp.StatusCode)
	}

	var account Account
	if err := json.NewDecoder(resp.Body).Decode(&account); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrUpstreamUnavailable, err)
	}

	c.log.Debug("token verified", "username", account.Username)
	return &account, nil
}
