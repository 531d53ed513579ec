package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	_ "modernc.org/sqlite"

	v1 "github.com/vmunix/clipd/internal/api/v1"
	"github.com/vmunix/clipd/internal/artifacts"
	"github.com/vmunix/clipd/internal/clip"
	"github.com/vmunix/clipd/internal/config"
	"github.com/vmunix/clipd/internal/events"
	"github.com/vmunix/clipd/internal/migrations"
	"github.com/vmunix/clipd/internal/pathguard"
	"github.com/vmunix/clipd/internal/plex"
	"github.com/vmunix/clipd/internal/server"
	"github.com/vmunix/clipd/internal/transcode"
)

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.status == 200 { // Only capture first WriteHeader call
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func logRequests(next http.Handler, log *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusRecorder{ResponseWriter: w, status: 200}
		next.ServeHTTP(wrapped, r)
		log.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func runServer(configPath string) error {
	// Load config
	if configPath == "" {
		discovered, err := config.Discover()
		if err != nil {
			return err
		}
		configPath = discovered
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return &config.ConfigError{Path: configPath, Errors: errs}
	}

	// Create logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Server.LogLevel),
	}))

	// Ensure database directory exists
	dbDir := filepath.Dir(cfg.Database.Path)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return fmt.Errorf("create db dir: %w", err)
	}

	// Open database
	db, err := sql.Open("sqlite", cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer func() { _ = db.Close() }()

	// Run migrations
	if _, err := db.Exec(migrations.InitialSQL); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	// === Filesystem boundaries ===
	guard, err := pathguard.New(cfg.Paths.MediaRoot, cfg.Paths.OutputRoot)
	if err != nil {
		return fmt.Errorf("path guard: %w", err)
	}

	// === Clients ===
	var plexClient *plex.Client
	if cfg.Plex.MediaPath != "" {
		plexClient = plex.NewClientWithPathMapping(
			cfg.Plex.URL, cfg.Plex.Token,
			cfg.Plex.MediaPath, cfg.Plex.RemotePath,
			logger,
		)
	} else {
		plexClient = plex.NewClient(cfg.Plex.URL, cfg.Plex.Token, logger)
	}
	authClient := plex.NewAuthClient(plex.DefaultAuthURL, logger)

	// === Stores & events ===
	artifactStore := artifacts.NewStore(db)
	eventLog := events.NewEventLog(db)
	bus := events.NewBus(eventLog, logger)
	defer func() { _ = bus.Close() }()

	// === Extraction service ===
	backend := transcode.NewFFmpeg(cfg.Transcode.FFmpeg, cfg.Transcode.FFprobe, logger)
	pool := transcode.NewPool(int64(cfg.Transcode.MaxConcurrent))
	extractor := clip.NewService(plexClient, guard, backend, backend, pool, artifactStore, bus, logger)

	// === HTTP Setup ===
	mux := http.NewServeMux()

	apiV1, err := v1.New(v1.ServerDeps{
		Extractor: extractor,
		Sessions:  plexClient,
		Artifacts: artifactStore,
		Verifier:  authClient,
		EventLog:  eventLog,
	}, v1.Config{
		APIKey:  cfg.Auth.APIKey,
		Version: version,
	}, logger)
	if err != nil {
		return fmt.Errorf("api: %w", err)
	}
	apiV1.RegisterRoutes(mux)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("clipd starting",
		"addr", addr,
		"database", cfg.Database.Path,
		"plex", cfg.Plex.URL,
		"media_root", guard.MediaRoot(),
		"output_root", guard.OutputRoot(),
		"max_concurrent", cfg.Transcode.MaxConcurrent,
		"log_level", cfg.Server.LogLevel,
	)

	runner := server.NewRunner(logRequests(mux, logger), eventLog, server.Config{
		Addr:           addr,
		EventRetention: time.Duration(cfg.Events.RetentionDays) * 24 * time.Hour,
	}, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return runner.Run(ctx)
}
