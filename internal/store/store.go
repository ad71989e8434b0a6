// Package store holds the read-only record collection every query runs against.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"txdash/internal/core"
)

var (
	ErrInvalidDataset = errors.New("invalid dataset")
	ErrDuplicateID    = errors.New("duplicate record id")
)

// Store is an immutable snapshot of the dataset. It is safe for concurrent
// reads without locking because nothing mutates it after New returns.
type Store struct {
	records  []core.Record
	loadedAt time.Time
}

// New validates records and freezes a private copy of them.
func New(records []core.Record) (*Store, error) {
	seen := make(map[int64]struct{}, len(records))
	for i, r := range records {
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("%w: record %d (id=%d): %w", ErrInvalidDataset, i, r.ID, err)
		}
		if _, dup := seen[r.ID]; dup {
			return nil, fmt.Errorf("%w: record %d: %w %d", ErrInvalidDataset, i, ErrDuplicateID, r.ID)
		}
		seen[r.ID] = struct{}{}
	}

	frozen := make([]core.Record, len(records))
	copy(frozen, records)
	return &Store{records: frozen, loadedAt: time.Now()}, nil
}

// Load reads the dataset from src and builds a Store from it.
func Load(ctx context.Context, src Source) (*Store, error) {
	records, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	return New(records)
}

// Records returns the backing slice. Callers must treat it as read-only.
func (s *Store) Records() []core.Record {
	if s == nil {
		return nil
	}
	return s.records
}

// Len returns the number of records.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.records)
}

// LoadedAt returns when the snapshot was built.
func (s *Store) LoadedAt() time.Time {
	return s.loadedAt
}
