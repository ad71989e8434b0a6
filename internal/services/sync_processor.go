// Package services holds long-running jobs that move the dataset between
// backends.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"txdash/internal/core"
	"txdash/internal/store"
)

// Sink receives a full replacement of the dataset.
type Sink interface {
	ReplaceAll(ctx context.Context, records []core.Record) error
}

// SyncProcessorConfig holds configuration for the sync processor
type SyncProcessorConfig struct {
	// PollInterval is how often the source is re-read (default: 10m)
	PollInterval time.Duration
}

// DefaultSyncProcessorConfig returns sensible defaults
func DefaultSyncProcessorConfig() SyncProcessorConfig {
	return SyncProcessorConfig{
		PollInterval: 10 * time.Minute,
	}
}

// SyncResult describes one completed sync.
type SyncResult struct {
	Records  int
	Duration time.Duration
}

// SyncProcessor copies the dataset of a Source into a Sink, once or on an
// interval. The source is validated as a whole before the sink is touched.
type SyncProcessor struct {
	source store.Source
	sink   Sink
	config SyncProcessorConfig

	// Lifecycle management
	mu      sync.Mutex
	running bool
	last    SyncResult
	lastErr error
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewSyncProcessor creates a new sync processor
func NewSyncProcessor(source store.Source, sink Sink, config SyncProcessorConfig) *SyncProcessor {
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultSyncProcessorConfig().PollInterval
	}
	return &SyncProcessor{
		source: source,
		sink:   sink,
		config: config,
	}
}

// SyncOnce reads the source, validates it and replaces the sink contents.
func (p *SyncProcessor) SyncOnce(ctx context.Context) (SyncResult, error) {
	start := time.Now()

	st, err := store.Load(ctx, p.source)
	if err != nil {
		return p.record(SyncResult{}, err)
	}
	if err := p.sink.ReplaceAll(ctx, st.Records()); err != nil {
		return p.record(SyncResult{}, fmt.Errorf("replace dataset: %w", err))
	}

	res := SyncResult{Records: st.Len(), Duration: time.Since(start)}
	slog.InfoContext(ctx, "Dataset synced",
		"component", "storage",
		"record_count", res.Records,
		"duration", res.Duration.String())
	return p.record(res, nil)
}

func (p *SyncProcessor) record(res SyncResult, err error) (SyncResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastErr = err
	if err == nil {
		p.last = res
	}
	return res, err
}

// Last returns the most recent successful sync and the error of the most
// recent attempt.
func (p *SyncProcessor) Last() (SyncResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last, p.lastErr
}

// Start begins the processing loop. Returns an error if already running.
func (p *SyncProcessor) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("sync processor is already running")
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	p.mu.Unlock()

	go p.runLoop(ctx)

	slog.InfoContext(ctx, "Sync processor started", "poll_interval", p.config.PollInterval)
	return nil
}

// Stop gracefully stops the processor and waits for completion.
func (p *SyncProcessor) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()

	close(p.stopCh)

	select {
	case <-p.doneCh:
		slog.InfoContext(ctx, "Sync processor stopped gracefully")
	case <-ctx.Done():
		slog.WarnContext(ctx, "Sync processor stop timed out")
		return ctx.Err()
	}

	p.mu.Lock()
	p.running = false
	p.mu.Unlock()

	return nil
}

// IsRunning returns whether the processor is currently running
func (p *SyncProcessor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *SyncProcessor) runLoop(ctx context.Context) {
	defer close(p.doneCh)

	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	// Sync immediately on startup
	p.syncLogged(ctx)

	for {
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.syncLogged(ctx)
		}
	}
}

func (p *SyncProcessor) syncLogged(ctx context.Context) {
	if _, err := p.SyncOnce(ctx); err != nil {
		// the sink keeps its previous contents
		slog.ErrorContext(ctx, "Dataset sync failed", "component", "storage", "error", err)
	}
}
