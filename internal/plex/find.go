package plex

import (
	"context"
	"strings"

	"github.com/hbollon/go-edlib"
)

// fuzzyThreshold is the minimum Jaro-Winkler score for a title match.
const fuzzyThreshold = 0.85

// FindByUser returns the session belonging to username (case-insensitive).
// Convenience lookup for interactive callers; the API resolves strictly
// by session key.
func (c *Client) FindByUser(ctx context.Context, username string) (*Session, error) {
	sessions, err := c.Sessions(ctx)
	if err != nil {
		return nil, err
	}

	for i := range sessions {
		if strings.EqualFold(sessions[i].User, username) {
			return &sessions[i], nil
		}
	}
	return nil, ErrSessionNotFound
}

// FindByTitle returns the session whose title best matches query.
// Exact normalized match wins; otherwise the highest Jaro-Winkler score
// at or above the threshold.
func (c *Client) FindByTitle(ctx context.Context, query string) (*Session, error) {
	sessions, err := c.Sessions(ctx)
	if err != nil {
		return nil, err
	}

	normalizedQuery := normalizeTitle(query)

	for i := range sessions {
		if normalizeTitle(sessions[i].DisplayTitle()) == normalizedQuery {
			return &sessions[i], nil
		}
	}

	var best *Session
	bestScore := float64(0)
	for i := range sessions {
		score := float64(edlib.JaroWinklerSimilarity(normalizedQuery, normalizeTitle(sessions[i].DisplayTitle())))
		if score > bestScore {
			bestScore = score
			best = &sessions[i]
		}
	}

	if best == nil || bestScore < fuzzyThreshold {
		return nil, ErrSessionNotFound
	}
	return best, nil
}

// normalizeTitle lowercases, strips punctuation and collapses whitespace
// for fuzzy comparison.
func normalizeTitle(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "'", "")
	s = strings.ReplaceAll(s, ":", " ")
	s = strings.ReplaceAll(s, ".", " ")

	var b strings.Builder
	for _, r := range s {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == ' ' {
			b.WriteRune(r)
		}
	}

	fields := strings.Fields(b.String())
	return strings.Join(fields, " ")
}
