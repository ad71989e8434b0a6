package worker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Scheduler runs ReportWorker.PublishAll on a cron schedule. Runs never
// overlap: a tick that fires while the previous run is busy is skipped.
type Scheduler struct {
	cron   *cron.Cron
	worker *ReportWorker
	ctx    context.Context
	cancel context.CancelFunc
}

// NewScheduler parses schedule (standard five-field cron or a descriptor such as
// "@hourly" or "@every 5m") and registers the publish job.
func NewScheduler(ctx context.Context, schedule string, w *ReportWorker) (*Scheduler, error) {
	ctx, cancel := context.WithCancel(ctx)
	s := &Scheduler{
		cron: cron.New(cron.WithChain(
			cron.Recover(cron.DefaultLogger),
			cron.SkipIfStillRunning(cron.DefaultLogger),
		)),
		worker: w,
		ctx:    ctx,
		cancel: cancel,
	}

	if _, err := s.cron.AddFunc(schedule, s.run); err != nil {
		cancel()
		return nil, fmt.Errorf("invalid report schedule %q: %w", schedule, err)
	}
	return s, nil
}

func (s *Scheduler) run() {
	if _, err := s.worker.PublishAll(s.ctx); err != nil {
		slog.ErrorContext(s.ctx, "Scheduled report publish failed", "component", "worker", "error", err)
	}
}

// RunNow publishes once, synchronously.
func (s *Scheduler) RunNow() {
	s.run()
}

// Start begins firing the schedule in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	for _, e := range s.cron.Entries() {
		slog.Info("Report schedule started", "component", "worker", "next_run", e.Next)
	}
}

// Stop cancels any in-flight run and waits for it to return.
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
}
