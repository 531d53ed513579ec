// Package artifacts persists the registry of extracted clips and stills.
package artifacts

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// Kind distinguishes clip videos from snapshot images.
type Kind string

const (
	KindVideo Kind = "video"
	KindImage Kind = "image"
)

// Artifact is one extracted output file. Rows are immutable after
// creation; the only mutation is deletion.
type Artifact struct {
	ID           int64
	Kind         Kind
	Filename     string
	Path         string // absolute path under the output root
	Title        string
	Show         string
	Season       string
	Episode      string
	Username     string
	SourcePath   string
	SourceOffset float64 // playback offset the extraction started from
	Duration     float64 // clip length in seconds, zero for images
	CreatedAt    time.Time
}

// Filter specifies criteria for listing artifacts.
type Filter struct {
	Kind     *Kind
	Username *string
	Limit    int
	Offset   int
}

// Store persists artifact records.
type Store struct {
	db *sql.DB
}

// NewStore creates an artifact store.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const artifactColumns = "id, kind, filename, path, title, show, season, episode, username, source_path, source_offset, duration, created_at"

// Add records a new artifact and fills in its ID and creation time.
func (s *Store) Add(a *Artifact) error {
	now := time.Now()
	result, err := s.db.Exec(`
		INSERT INTO artifacts (kind, filename, path, title, show, season, episode, username, source_path, source_offset, duration, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.Kind, a.Filename, a.Path, a.Title, a.Show, a.Season, a.Episode, a.Username, a.SourcePath, a.SourceOffset, a.Duration, now,
	)
	if err != nil {
		return fmt.Errorf("insert artifact: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}

	a.ID = id
	a.CreatedAt = now
	return nil
}

// Get retrieves an artifact by ID.
// Returns ErrNotFound if the artifact does not exist.
func (s *Store) Get(id int64) (*Artifact, error) {
	a := &Artifact{}
	err := s.db.QueryRow(
		"SELECT "+artifactColumns+" FROM artifacts WHERE id = ?", id,
	).Scan(&a.ID, &a.Kind, &a.Filename, &a.Path, &a.Title, &a.Show, &a.Season, &a.Episode, &a.Username, &a.SourcePath, &a.SourceOffset, &a.Duration, &a.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("get artifact %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get artifact %d: %w", id, err)
	}
	return a, nil
}

// List returns artifacts matching the filter, newest first.
func (s *Store) List(f Filter) ([]*Artifact, error) {
	var conditions []string
	var args []any

	if f.Kind != nil {
		conditions = append(conditions, "kind = ?")
		args = append(args, *f.Kind)
	}
	if f.Username != nil {
		conditions = append(conditions, "username = ?")
		args = append(args, *f.Username)
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := "SELECT " + artifactColumns + " FROM artifacts " + whereClause + " ORDER BY id DESC"
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.Limit, f.Offset)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list artifacts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []*Artifact
	for rows.Next() {
		a := &Artifact{}
		if err := rows.Scan(&a.ID, &a.Kind, &a.Filename, &a.Path, &a.Title, &a.Show, &a.Season, &a.Episode, &a.Username, &a.SourcePath, &a.SourceOffset, &a.Duration, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan artifact: %w", err)
		}
		results = append(results, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate artifacts: %w", err)
	}

	return results, nil
}

// Count returns the number of artifacts matching the filter, ignoring
// Limit and Offset.
func (s *Store) Count(f Filter) (int, error) {
	var conditions []string
	var args []any

	if f.Kind != nil {
		conditions = append(conditions, "kind = ?")
		args = append(args, *f.Kind)
	}
	if f.Username != nil {
		conditions = append(conditions, "username = ?")
		args = append(args, *f.Username)
	}

	query := "SELECT COUNT(*) FROM artifacts"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	var n int
	if err := s.db.QueryRow(query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count artifacts: %w", err)
	}
	return n, nil
}

// Delete removes an artifact record by ID.
// This operation is idempotent - no error is returned if the record does not exist.
func (s *Store) Delete(id int64) error {
	_, err := s.db.Exec("DELETE FROM artifacts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete artifact %d: %w", id, err)
	}
	return nil
}
