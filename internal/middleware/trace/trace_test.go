package trace

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"txdash/internal/log"
)

func TestMiddlewareUsesChiRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(log.Config{Level: slog.LevelDebug, Component: "test", Output: &buf})
	tm := NewMiddleware(logger, func(r *http.Request) string { return "192.0.2.1" })

	var seen string
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(tm.Middleware)
	r.Get("/statistics", func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
		if seen != chimw.GetReqID(r.Context()) {
			t.Errorf("expected chi request ID, got %q", seen)
		}
		w.WriteHeader(http.StatusBadRequest)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/statistics?month=x", nil))

	if seen == "" {
		t.Fatal("expected request ID in handler context")
	}
	out := buf.String()
	if !strings.Contains(out, "HTTP request started") || !strings.Contains(out, "HTTP request completed") {
		t.Fatalf("expected start and end log lines, got %q", out)
	}
	if !strings.Contains(out, "level=WARN") || !strings.Contains(out, "status_code=400") {
		t.Fatalf("expected warn level for 400, got %q", out)
	}
	if !strings.Contains(out, seen) {
		t.Fatalf("expected request ID %q in logs", seen)
	}

	m := tm.GetMetrics()
	if m.TotalRequests != 1 || m.ErrorResponses != 0 {
		t.Fatalf("unexpected metrics: %+v", m)
	}
}

func TestGenerateRequestIDIsUnique(t *testing.T) {
	a, b := GenerateRequestID(), GenerateRequestID()
	if a == b || !strings.HasPrefix(a, "req_") {
		t.Fatalf("unexpected ids %q %q", a, b)
	}
}

func TestGetRequestIDFallsBackToChi(t *testing.T) {
	var seen string
	h := chimw.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if seen == "" {
		t.Fatal("expected chi request ID without trace middleware")
	}
}
