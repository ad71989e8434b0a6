// Package cli holds the start-up steps shared by cmd/txdash, cmd/txdash-worker
// and cmd/txdash-cli.
package cli

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"txdash/internal/backend"
	"txdash/internal/config"
	"txdash/internal/log"
	"txdash/internal/store"
)

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// NewLogger builds the process logger from cfg, writing to w.
func NewLogger(cfg *config.Config, w io.Writer, component string) *log.Logger {
	return log.New(log.Config{
		Level:     log.ParseLevel(cfg.LogLevel),
		Format:    cfg.LogFormat,
		Output:    w,
		Component: component,
	})
}

// SetupLogger initializes structured logging on stdout and installs it as
// the slog default.
func SetupLogger(cfg *config.Config, component string) *log.Logger {
	logger := NewLogger(cfg, os.Stdout, component)
	log.SetDefault(logger)
	return logger
}

// LoadAndValidateConfig loads configuration, sets up logging from it and
// validates it. Returns the config and logger or exits the process on
// validation failure.
func LoadAndValidateConfig(component string) (*config.Config, *log.Logger) {
	cfg := config.Load()
	logger := SetupLogger(cfg, component)
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	return cfg, logger
}

// OpenStore builds the configured backend and loads the dataset from it.
func OpenStore(ctx context.Context, cfg *config.Config, logger *log.Logger) (*store.Store, *backend.BackendResult, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, nil, err
	}

	start := time.Now()
	st, result, err := backend.Open(ctx, backend.NewFactory(logger.Logger), bcfg)
	if err != nil {
		return nil, nil, err
	}

	logger.InfoContext(ctx, "Dataset loaded",
		log.FieldBackend, bcfg.Type.String(),
		log.FieldRecordCount, st.Len(),
		log.FieldDuration, time.Since(start).Milliseconds())
	return st, result, nil
}

// MustOpenStore is OpenStore that exits the process on failure.
func MustOpenStore(ctx context.Context, cfg *config.Config, logger *log.Logger) (*store.Store, *backend.BackendResult) {
	st, result, err := OpenStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to load dataset", log.FieldError, err, log.FieldBackend, cfg.DataBackend)
		os.Exit(1)
	}
	return st, result
}

// GracefulShutdown sets up signal handling for graceful shutdown.
// Returns a context that will be cancelled on shutdown signals,
// and a channel that is closed once cleanup has returned.
func GracefulShutdown(logger *log.Logger, timeout time.Duration, cleanup func(ctx context.Context)) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		defer close(done)

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)

		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
		case <-ctx.Done():
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		cancel()
		if cleanup != nil {
			cleanup(shutdownCtx)
		}

		if shutdownCtx.Err() != nil {
			logger.Warn("Shutdown timeout reached")
			return
		}
		logger.Info("Shutdown complete")
	}()

	return ctx, done
}

// WaitForShutdown blocks until the context is cancelled and cleanup is done.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}
