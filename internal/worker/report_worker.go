// Package worker builds the twelve monthly combined reports and hands them to
// a publisher, once or on a cron schedule.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"txdash/internal/amqp"
	"txdash/internal/query"
)

// Publisher delivers one report message.
type Publisher interface {
	PublishReport(ctx context.Context, msg *amqp.MonthlyReportMessage) error
}

// ReportWorker computes and publishes monthly combined reports
type ReportWorker struct {
	svc         *query.Service
	publisher   Publisher
	concurrency int
	now         func() time.Time
}

func NewReportWorker(svc *query.Service, publisher Publisher, concurrency int) *ReportWorker {
	if concurrency < 1 {
		concurrency = 4
	}
	return &ReportWorker{
		svc:         svc,
		publisher:   publisher,
		concurrency: concurrency,
		now:         time.Now,
	}
}

// BuildReports computes the combined report of every month concurrently.
// The result is ordered January to December.
func (w *ReportWorker) BuildReports(ctx context.Context) ([]*amqp.MonthlyReportMessage, error) {
	generatedAt := w.now()
	msgs := make([]*amqp.MonthlyReportMessage, 12)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(w.concurrency)
	for month := 1; month <= 12; month++ {
		month := month
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			report, err := w.svc.Combined(month)
			if err != nil {
				return fmt.Errorf("month %d: %w", month, err)
			}
			msgs[month-1] = amqp.NewMonthlyReportMessage(month, report, generatedAt)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return msgs, nil
}

// PublishAll builds all reports and publishes them in month order. A failed
// publish does not stop the remaining months; every failure is returned.
func (w *ReportWorker) PublishAll(ctx context.Context) (int, error) {
	start := time.Now()
	msgs, err := w.BuildReports(ctx)
	if err != nil {
		return 0, fmt.Errorf("build reports: %w", err)
	}

	var errs []error
	published := 0
	for _, msg := range msgs {
		if err := w.publisher.PublishReport(ctx, msg); err != nil {
			slog.ErrorContext(ctx, "Failed to publish monthly report",
				"component", "worker",
				"month", msg.Month,
				"error", err)
			errs = append(errs, fmt.Errorf("month %d: %w", msg.Month, err))
			if ctx.Err() != nil {
				break
			}
			continue
		}
		published++
	}

	slog.InfoContext(ctx, "Monthly reports published",
		"component", "worker",
		"published", published,
		"failed", len(errs),
		"records", w.svc.Store().Len(),
		"duration", time.Since(start).String())

	return published, errors.Join(errs...)
}
