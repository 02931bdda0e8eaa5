package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/timelinetracker/backend/internal/config"
	"github.com/timelinetracker/backend/internal/db"
	httpapi "github.com/timelinetracker/backend/internal/http"
	"github.com/timelinetracker/backend/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	zerolog.TimeFieldFormat = time.RFC3339
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	logger := log.Level(level).With().Str("service", "timeline-backend").Logger()

	ctx := context.Background()
	backend, closeBackend, err := openBackend(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Str("backend", cfg.StorageBackend).Msg("failed to open storage")
	}
	defer closeBackend()
	logger.Info().Str("backend", cfg.StorageBackend).Msg("storage ready")

	estimates := store.NewEstimates(backend, cfg.BlobPrefix)
	router := httpapi.Router(cfg, estimates, logger)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctxShutdown)
	logger.Info().Msg("server stopped")
}

func openBackend(ctx context.Context, cfg config.Config) (store.Backend, func(), error) {
	noop := func() {}
	switch cfg.StorageBackend {
	case "memory", "":
		return store.NewMemoryBackend(), noop, nil
	case "file":
		fb, err := store.NewFileBackend(cfg.DataDir)
		if err != nil {
			return nil, nil, err
		}
		return fb, noop, nil
	case "blob":
		if cfg.BlobToken == "" {
			return nil, nil, fmt.Errorf("BLOB_READ_WRITE_TOKEN is required for the blob backend")
		}
		return store.NewBlobBackend(cfg.BlobAPIURL, cfg.BlobToken, cfg.BlobRatePerSec), noop, nil
	case "postgres":
		pg, err := db.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := pg.EnsureSchema(ctx); err != nil {
			pg.Close()
			return nil, nil, fmt.Errorf("ensure schema: %w", err)
		}
		return pg, pg.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown STORAGE_BACKEND %q", cfg.StorageBackend)
	}
}
