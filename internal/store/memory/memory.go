// Package memory provides dataset sources decoded from a JSON document held
// in memory: the bundled sample, a local file or a remote URL.
package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"

	"txdash/assets"
	"txdash/internal/core"
)

// maxDatasetBytes caps remote downloads.
const maxDatasetBytes = 64 << 20

var ErrEmptyDocument = errors.New("empty dataset document")

// Store serves a fixed list of records.
type Store struct {
	records []core.Record
	origin  string
}

// New returns a Store serving records as-is.
func New(records []core.Record) *Store {
	return &Store{records: append([]core.Record(nil), records...), origin: "inline"}
}

// NewDefault decodes the bundled sample dataset.
func NewDefault() (*Store, error) {
	return newFromBytes(assets.Transactions, "embedded")
}

// NewFromFile decodes the JSON array stored at path.
func NewFromFile(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset %s: %w", path, err)
	}
	return newFromBytes(data, path)
}

// NewFromURL downloads the JSON array at url, retrying transient failures
// with exponential backoff. A nil client uses a 30s timeout client.
func NewFromURL(ctx context.Context, url string, client *http.Client) (*Store, error) {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	var data []byte
	op := func() error {
		body, err := fetch(ctx, client, url)
		if err != nil {
			return err
		}
		data = body
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxElapsedTime = time.Minute
	notify := func(err error, wait time.Duration) {
		slog.Warn("Dataset download failed, retrying", "url", url, "error", err, "retry_in", wait)
	}
	if err := backoff.RetryNotify(op, backoff.WithContext(backoff.WithMaxRetries(b, 5), ctx), notify); err != nil {
		return nil, fmt.Errorf("download dataset: %w", err)
	}
	return newFromBytes(data, url)
}

func fetch(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("unexpected status %d", resp.StatusCode)
		// 4xx will not fix itself
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxDatasetBytes))
}

func newFromBytes(data []byte, origin string) (*Store, error) {
	records, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode dataset %s: %w", origin, err)
	}
	return &Store{records: records, origin: origin}, nil
}

// Decode reads a JSON array of records.
func Decode(r io.Reader) ([]core.Record, error) {
	var records []core.Record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyDocument
		}
		return nil, err
	}
	if records == nil {
		records = []core.Record{}
	}
	return records, nil
}

// Load returns a copy of the records.
func (s *Store) Load(_ context.Context) ([]core.Record, error) {
	return append([]core.Record(nil), s.records...), nil
}

// Origin describes where the records came from.
func (s *Store) Origin() string {
	return s.origin
}
