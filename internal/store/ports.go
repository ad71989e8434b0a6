package store

import (
	"context"

	"txdash/internal/core"
)

// Ports for inbound dataset adapters.
type (
	// Source loads the full transaction dataset once at startup.
	Source interface {
		// Load returns every record of the dataset.
		Load(ctx context.Context) ([]core.Record, error)
	}

	// SourceFunc adapts a function to Source.
	SourceFunc func(ctx context.Context) ([]core.Record, error)
)

// Load implements Source.
func (f SourceFunc) Load(ctx context.Context) ([]core.Record, error) {
	return f(ctx)
}
