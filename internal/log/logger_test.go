package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewJSONFormatStampsComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Component: ComponentQuery, Format: "json", Output: &buf})

	logger.Info("hello", FieldMonth, 3)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON output, got %q: %v", buf.String(), err)
	}
	if entry["component"] != ComponentQuery {
		t.Errorf("component = %v, want %s", entry["component"], ComponentQuery)
	}
	if entry[FieldMonth] != float64(3) {
		t.Errorf("month = %v, want 3", entry[FieldMonth])
	}
}

func TestLogHTTPEndLevelFollowsStatus(t *testing.T) {
	cases := map[int]string{200: "INFO", 404: "WARN", 500: "ERROR"}
	for status, level := range cases {
		var buf bytes.Buffer
		sl := NewStructuredLogger(New(Config{Level: slog.LevelDebug, Component: ComponentHTTP, Output: &buf}))
		r := httptest.NewRequest("GET", "/statistics?month=3", nil)

		sl.LogHTTPEnd(context.Background(), r, status, 12, "10.0.0.1")

		if !strings.Contains(buf.String(), "level="+level) {
			t.Errorf("status %d: expected level %s in %q", status, level, buf.String())
		}
	}
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	logger := FromContext(context.Background())
	if logger == nil || logger.Component() != "unknown" {
		t.Fatalf("unexpected fallback logger: %+v", logger)
	}
}

func TestMiddlewareChainEnrichesRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	base := New(Config{Level: slog.LevelDebug, Component: "base", Output: &buf})

	var component string
	h := Middleware(base)(ComponentMiddleware(ComponentHTTP)(RequestIDMiddleware(func(*http.Request) string {
		return "req_42"
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := FromContext(r.Context())
		component = logger.Component()
		logger.InfoContext(r.Context(), "inside handler")
	}))))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/products", nil))

	if component != ComponentHTTP {
		t.Errorf("component = %q, want %q", component, ComponentHTTP)
	}
	if out := buf.String(); !strings.Contains(out, FieldRequestID+"=req_42") {
		t.Fatalf("expected request id in %q", out)
	}
}

func TestLogErrorStampsOperationAndError(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(New(Config{Level: slog.LevelInfo, Component: ComponentHTTP, Format: "json", Output: &buf}))

	sl.LogError(context.Background(), "Report failed", errors.New("boom"), ComponentHTTP, OpReport,
		NewFields().WithReport("statistics", 3, 0))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON output, got %q: %v", buf.String(), err)
	}
	if entry["level"] != "ERROR" || entry[FieldError] != "boom" {
		t.Errorf("unexpected entry: %v", entry)
	}
	if entry[FieldOperation] != OpReport || entry[FieldReport] != "statistics" || entry[FieldMonth] != float64(3) {
		t.Errorf("missing report context: %v", entry)
	}
}
