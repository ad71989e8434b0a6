package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"txdash/internal/cli"
	apphttp "txdash/internal/http"
	"txdash/internal/log"
	"txdash/internal/query"
)

func main() {
	cli.LoadEnvFile()
	cfg, logger := cli.LoadAndValidateConfig(log.ComponentApp)

	st, source := cli.MustOpenStore(context.Background(), cfg, logger)
	defer source.Close()

	srv := apphttp.NewServer(cfg.Addr(), query.NewService(st), apphttp.Options{
		Logger:             logger,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		ReportCacheTTL:     cfg.ReportCacheTTL,
	})
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
	})

	logger.Info("Starting txdash server",
		"port", cfg.Port,
		log.FieldBackend, cfg.DataBackend,
		log.FieldRecordCount, st.Len())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
