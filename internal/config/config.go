// Package config handles TOML configuration loading with environment variable substitution.
package config

import (
	"fmt"
	"os"
	"regexp"

	"github.com/BurntSushi/toml"
)

// Config is the root configuration structure.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Database  DatabaseConfig  `toml:"database"`
	Plex      PlexConfig      `toml:"plex"`
	Paths     PathsConfig     `toml:"paths"`
	Transcode TranscodeConfig `toml:"transcode"`
	Auth      AuthConfig      `toml:"auth"`
	Events    EventsConfig    `toml:"events"`
}

type ServerConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	LogLevel string `toml:"log_level"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

// PlexConfig points at the media server whose sessions get clipped.
// MediaPath/RemotePath translate the file paths Plex reports into paths
// valid on this machine when the two see different mounts.
type PlexConfig struct {
	URL        string `toml:"url"`
	Token      string `toml:"token"`
	MediaPath  string `toml:"media_path"`
	RemotePath string `toml:"remote_path"`
}

// PathsConfig holds the two filesystem boundaries: sources are read from
// under MediaRoot, artifacts are written under OutputRoot. Both are
// canonicalized once at startup.
type PathsConfig struct {
	MediaRoot  string `toml:"media_root"`
	OutputRoot string `toml:"output_root"`
}

type TranscodeConfig struct {
	FFmpeg        string `toml:"ffmpeg"`
	FFprobe       string `toml:"ffprobe"`
	MaxConcurrent int    `toml:"max_concurrent"`
}

type AuthConfig struct {
	APIKey string `toml:"api_key"`
}

type EventsConfig struct {
	RetentionDays int `toml:"retention_days"`
}

// Load reads and parses the configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Substitute environment variables
	content := substituteEnvVars(string(data))

	var cfg Config
	if _, err := toml.Decode(content, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	// Apply defaults
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8787
	}
	if cfg.Server.LogLevel == "" {
		cfg.Server.LogLevel = "info"
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "./data/clipd.db"
	}
	if cfg.Transcode.FFmpeg == "" {
		cfg.Transcode.FFmpeg = "ffmpeg"
	}
	if cfg.Transcode.FFprobe == "" {
		cfg.Transcode.FFprobe = "ffprobe"
	}
	if cfg.Transcode.MaxConcurrent == 0 {
		cfg.Transcode.MaxConcurrent = 2
	}
	if cfg.Events.RetentionDays == 0 {
		cfg.Events.RetentionDays = 30
	}

	return &cfg, nil
}

// substituteEnvVars replaces ${VAR_NAME} with environment variable values.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

func substituteEnvVars(content string) string {
	return envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		varName := match[2 : len(match)-1] // Strip ${ and }
		if value, ok := os.LookupEnv(varName); ok {
			return value
		}
		return match // Leave unchanged if not found
	})
}
