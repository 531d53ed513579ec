// internal/config/validate.go
package config

import (
	"fmt"
	"net/url"
	"os"
)

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true, "": true,
}

// Validate checks the configuration for errors.
// Returns a slice of error messages (empty if valid).
func (c *Config) Validate() []string {
	var errs []string

	// Server validation
	if c.Server.Port != 0 && (c.Server.Port < 1 || c.Server.Port > 65535) {
		errs = append(errs, fmt.Sprintf("server.port: must be between 1 and 65535, got %d", c.Server.Port))
	}
	if !validLogLevels[c.Server.LogLevel] {
		errs = append(errs, fmt.Sprintf("server.log_level: must be one of debug, info, warn, error; got %q", c.Server.LogLevel))
	}

	// Plex validation
	if c.Plex.URL == "" {
		errs = append(errs, "plex.url: required")
	} else if _, err := url.Parse(c.Plex.URL); err != nil {
		errs = append(errs, fmt.Sprintf("plex.url: invalid URL: %v", err))
	}
	if c.Plex.Token == "" {
		errs = append(errs, "plex.token: required")
	}
	if (c.Plex.MediaPath == "") != (c.Plex.RemotePath == "") {
		errs = append(errs, "plex.media_path and plex.remote_path: must be set together or not at all")
	}

	// Filesystem boundaries
	if c.Paths.MediaRoot == "" {
		errs = append(errs, "paths.media_root: required")
	} else if _, err := os.Stat(c.Paths.MediaRoot); os.IsNotExist(err) {
		errs = append(errs, fmt.Sprintf("paths.media_root: directory %q does not exist", c.Paths.MediaRoot))
	}
	if c.Paths.OutputRoot == "" {
		errs = append(errs, "paths.output_root: required")
	} else if _, err := os.Stat(c.Paths.OutputRoot); os.IsNotExist(err) {
		errs = append(errs, fmt.Sprintf("paths.output_root: directory %q does not exist", c.Paths.OutputRoot))
	}

	// Transcode validation
	if c.Transcode.MaxConcurrent < 0 {
		errs = append(errs, fmt.Sprintf("transcode.max_concurrent: must not be negative, got %d", c.Transcode.MaxConcurrent))
	}

	// Auth validation
	if c.Auth.APIKey == "" {
		errs = append(errs, "auth.api_key: required; every request must authenticate")
	}

	if c.Events.RetentionDays < 0 {
		errs = append(errs, fmt.Sprintf("events.retention_days: must not be negative, got %d", c.Events.RetentionDays))
	}

	return errs
}
