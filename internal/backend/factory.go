package backend

import (
	"context"
	"fmt"
	"log/slog"

	"txdash/internal/store"
	gsheet "txdash/internal/store/google"
	"txdash/internal/store/memory"
	"txdash/internal/store/sqlite"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(config)
	case SheetsBackend:
		return f.createSheetsBackend(ctx, config)
	case MemoryBackend:
		return f.createMemoryBackend(ctx, config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*BackendResult, error) {
	repo, err := sqlite.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)

	return &BackendResult{
		Source:  repo,
		Cleanup: repo.Close,
	}, nil
}

func (f *DefaultFactory) createSheetsBackend(ctx context.Context, config Config) (*BackendResult, error) {
	cli, err := gsheet.New(ctx, gsheet.Config{
		SpreadsheetID:      config.GoogleSpreadsheetID,
		SheetName:          config.GoogleSheetName,
		ServiceAccountJSON: config.GoogleServiceAccountJSON,
		ServiceAccountFile: config.GoogleServiceAccountFile,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}

	f.logger.Info("Initialized Google Sheets backend", "sheet", config.GoogleSheetName)

	return &BackendResult{
		Source:  cli,
		Cleanup: nil, // No cleanup needed for sheets backend
	}, nil
}

func (f *DefaultFactory) createMemoryBackend(ctx context.Context, config Config) (*BackendResult, error) {
	var (
		src *memory.Store
		err error
	)
	switch {
	case config.DatasetPath != "":
		src, err = memory.NewFromFile(config.DatasetPath)
	case config.DatasetURL != "":
		src, err = memory.NewFromURL(ctx, config.DatasetURL, nil)
	default:
		src, err = memory.NewDefault()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize memory backend: %w", err)
	}

	f.logger.Info("Initialized memory backend", "origin", src.Origin())

	return &BackendResult{
		Source:  src,
		Cleanup: nil, // No cleanup needed for memory backend
	}, nil
}

// Open builds the configured backend and loads the record store from it.
// The returned result must be closed by the caller once the store is no
// longer refreshed from the source.
func Open(ctx context.Context, f Factory, config Config) (*store.Store, *BackendResult, error) {
	result, err := f.CreateBackend(ctx, config)
	if err != nil {
		return nil, nil, err
	}
	s, err := store.Load(ctx, result.Source)
	if err != nil {
		result.Close()
		return nil, nil, err
	}
	return s, result, nil
}
