// Package sqlite persists the transaction dataset in a SQLite file so the
// server can start from a previously seeded snapshot.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"txdash/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

const selectTransactions = `
SELECT id, title, description, price, category, image, sold, date_of_sale
FROM transactions
ORDER BY id`

// Load implements store.Source.
func (r *SQLiteRepository) Load(ctx context.Context) ([]core.Record, error) {
	rows, err := r.db.QueryContext(ctx, selectTransactions)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	records := make([]core.Record, 0)
	for rows.Next() {
		var (
			rec  core.Record
			date string
		)
		if err := rows.Scan(&rec.ID, &rec.Title, &rec.Description, &rec.Price,
			&rec.Category, &rec.Image, &rec.Sold, &date); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		rec.DateOfSale, err = time.Parse(time.RFC3339Nano, date)
		if err != nil {
			return nil, fmt.Errorf("transaction %d: parse date_of_sale %q: %w", rec.ID, date, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}

	slog.DebugContext(ctx, "Loaded transactions from SQLite", "count", len(records))
	return records, nil
}

const insertTransaction = `
INSERT INTO transactions (id, title, description, price, category, image, sold, date_of_sale)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

// ReplaceAll swaps the stored dataset for records in a single transaction.
// Records are validated before anything is written.
func (r *SQLiteRepository) ReplaceAll(ctx context.Context, records []core.Record) error {
	for _, rec := range records {
		if err := rec.Validate(); err != nil {
			return fmt.Errorf("transaction %d: %w", rec.ID, err)
		}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM transactions`); err != nil {
		return fmt.Errorf("clear transactions: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, insertTransaction)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		if _, err := stmt.ExecContext(ctx, rec.ID, rec.Title, rec.Description, rec.Price,
			rec.Category, rec.Image, rec.Sold, rec.DateOfSale.Format(time.RFC3339Nano)); err != nil {
			return fmt.Errorf("insert transaction %d: %w", rec.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transactions replaced in SQLite", "count", len(records))
	return nil
}

// Count returns the number of stored transactions.
func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return n, nil
}
