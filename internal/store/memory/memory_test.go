package memory

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"txdash/internal/core"
	"txdash/internal/store"
)

const sample = `[
  {"id": 1, "title": "Mens Cotton Jacket", "price": 150, "description": "outerwear",
   "category": "men's clothing", "image": "", "sold": true, "dateOfSale": "2021-03-27T20:29:54+05:30"},
  {"id": 2, "title": "Gold Ring", "price": 720, "description": "ring",
   "category": "jewelery", "sold": false, "dateOfSale": "2021-03-01T00:10:00+05:30"}
]`

func TestDecode(t *testing.T) {
	records, err := Decode(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}

	first := records[0]
	if first.ID != 1 || first.Price != 150 || !first.Sold || first.Month() != 3 {
		t.Errorf("unexpected first record: %+v", first)
	}
	// 00:10 at +05:30 is still February 28 in UTC
	if records[1].Month() != 3 {
		t.Errorf("second record month = %d, want 3", records[1].Month())
	}
}

func TestDecodeErrors(t *testing.T) {
	if _, err := Decode(strings.NewReader("")); !errors.Is(err, ErrEmptyDocument) {
		t.Errorf("expected ErrEmptyDocument, got %v", err)
	}

	if _, err := Decode(strings.NewReader(`{"id": 1}`)); err == nil {
		t.Error("expected error for non-array document")
	}

	records, err := Decode(strings.NewReader(`[]`))
	if err != nil {
		t.Fatalf("Decode([]): %v", err)
	}
	if records == nil || len(records) != 0 {
		t.Fatalf("expected empty non-nil slice, got %v", records)
	}
}

func TestNewDefaultBuildsValidStore(t *testing.T) {
	src, err := NewDefault()
	if err != nil {
		t.Fatalf("NewDefault: %v", err)
	}
	if src.Origin() != "embedded" {
		t.Errorf("Origin = %q, want embedded", src.Origin())
	}

	s, err := store.Load(context.Background(), src)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Len() == 0 {
		t.Fatal("embedded dataset is empty")
	}

	months := map[int]bool{}
	for _, r := range s.Records() {
		months[r.Month()] = true
	}
	if len(months) != 12 {
		t.Fatalf("sample covers %d months, want 12", len(months))
	}
}

func TestNewFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		t.Fatal(err)
	}

	src, err := NewFromFile(path)
	if err != nil {
		t.Fatalf("NewFromFile: %v", err)
	}
	records, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}

	if _, err := NewFromFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestNewFromURLRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sample))
	}))
	defer srv.Close()

	src, err := NewFromURL(context.Background(), srv.URL, srv.Client())
	if err != nil {
		t.Fatalf("NewFromURL: %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
	if src.Origin() != srv.URL {
		t.Errorf("Origin = %q, want %q", src.Origin(), srv.URL)
	}
}

func TestNewFromURLStopsOnClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := NewFromURL(ctx, srv.URL, srv.Client()); err == nil {
		t.Fatal("expected error for 404")
	}
	if calls.Load() != 1 {
		t.Fatalf("calls = %d, want 1", calls.Load())
	}
}

func TestLoadReturnsCopy(t *testing.T) {
	src := New([]core.Record{{ID: 1, Price: 10}})
	first, _ := src.Load(context.Background())
	first[0].Price = 99
	second, _ := src.Load(context.Background())
	if second[0].Price != 10 {
		t.Fatalf("source mutated through Load result: %v", second[0].Price)
	}
}
