package main

import (
	"os"
	"time"

	"txdash/internal/amqp"
	"txdash/internal/cli"
	"txdash/internal/log"
	"txdash/internal/query"
	"txdash/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	cfg, logger := cli.LoadAndValidateConfig(log.ComponentWorker)
	logger.Info("Starting txdash-worker", "schedule", cfg.ReportSchedule)

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the report worker")
		os.Exit(1)
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	st, source := cli.MustOpenStore(ctx, cfg, logger)
	defer source.Close()

	amqpClient, err := amqp.NewClient(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	reports := worker.NewReportWorker(query.NewService(st), amqpClient, 4)
	scheduler, err := worker.NewScheduler(ctx, cfg.ReportSchedule, reports)
	if err != nil {
		logger.Error("Failed to schedule report publishing", log.FieldError, err)
		os.Exit(1)
	}

	// Publish once at startup so consumers do not wait for the first tick
	scheduler.RunNow()
	scheduler.Start()

	cli.WaitForShutdown(ctx, done)

	logger.Info("Shutting down worker...")
	scheduler.Stop()
	logger.Info("Worker shutdown complete")
}
