package http

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"txdash/internal/core"
	"txdash/internal/query"
	"txdash/internal/store"
)

func testRecords() []core.Record {
	at := func(month time.Month, day int) time.Time {
		return time.Date(2021, month, day, 10, 0, 0, 0, time.FixedZone("IST", 5*3600+1800))
	}
	return []core.Record{
		{ID: 1, Title: "Mens Casual Slim Fit", Description: "cotton shirt", Price: 15.99, Category: "men's clothing", Sold: true, DateOfSale: at(time.March, 1)},
		{ID: 2, Title: "Gold Petite Micropave", Description: "ring", Price: 168, Category: "jewelery", Sold: false, DateOfSale: at(time.March, 4)},
		{ID: 3, Title: "WD 2TB Elements", Description: "portable hard drive", Price: 64, Category: "electronics", Sold: true, DateOfSale: at(time.March, 9)},
		{ID: 4, Title: "Samsung 49-Inch Monitor", Description: "curved gaming monitor", Price: 999.99, Category: "electronics", Sold: true, DateOfSale: at(time.April, 2)},
		{ID: 5, Title: "Rain Jacket Women", Description: "windbreaker", Price: 39.99, Category: "women's clothing", Sold: false, DateOfSale: at(time.June, 20)},
	}
}

func newTestServer(t *testing.T, records []core.Record, opts Options) *Server {
	t.Helper()
	st, err := store.New(records)
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	srv := NewServer(":0", query.NewService(st), opts)
	t.Cleanup(func() {
		srv.limiter.Stop()
		srv.caches.Stop()
	})
	return srv
}

func get(t *testing.T, srv *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
}

func TestHealthAndReady(t *testing.T) {
	srv := newTestServer(t, testRecords(), Options{})

	rr := get(t, srv, "/healthz")
	if rr.Code != http.StatusOK {
		t.Fatalf("healthz status=%d", rr.Code)
	}
	var health map[string]any
	decode(t, rr, &health)
	if health["status"] != "ok" || health["timestamp"] == nil || health["uptime"] == nil {
		t.Fatalf("unexpected health body: %v", health)
	}

	rr = get(t, srv, "/readyz")
	if rr.Code != http.StatusOK {
		t.Fatalf("readyz status=%d", rr.Code)
	}
	var ready struct {
		Checks map[string]string `json:"checks"`
	}
	decode(t, rr, &ready)
	if ready.Checks["records"] != "5" {
		t.Fatalf("unexpected readyz checks: %v", ready.Checks)
	}
	if _, err := time.Parse(time.RFC3339, ready.Checks["loadedAt"]); err != nil {
		t.Fatalf("loadedAt not RFC3339: %v", ready.Checks)
	}

	empty := newTestServer(t, nil, Options{})
	if rr := get(t, empty, "/readyz"); rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("empty readyz status=%d", rr.Code)
	}
}

func TestListing(t *testing.T) {
	srv := newTestServer(t, testRecords(), Options{})

	tests := []struct {
		target    string
		total     int
		pageItems int
		page      int
		perPage   int
	}{
		{"/products", 5, 5, 1, 10},
		{"/transactions", 5, 5, 1, 10},
		{"/products?per_page=2", 5, 2, 1, 2},
		{"/products?per_page=2&page=3", 5, 1, 3, 2},
		{"/products?pageSize=2&page=2", 5, 2, 2, 2},
		{"/products?page=0", 5, 0, 0, 10},
		{"/products?page=9", 5, 0, 9, 10},
		{"/products?page=2&per_page=9223372036854775807", 5, 0, 2, math.MaxInt},
		{"/products?page=1&per_page=9223372036854775807", 5, 5, 1, math.MaxInt},
		{"/products?page=-9223372036854775807", 5, 0, math.MinInt + 1, 10},
		{"/products?search=MONITOR", 1, 1, 1, 10},
		{"/products?search=168", 1, 1, 1, 10},
		{"/products?search=zzz", 0, 0, 1, 10},
		// month is not applied to the listing
		{"/products?month=3", 5, 5, 1, 10},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rr := get(t, srv, tt.target)
			if rr.Code != http.StatusOK {
				t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
			}
			var page query.Page
			decode(t, rr, &page)
			if page.TotalItems != tt.total || len(page.Items) != tt.pageItems ||
				page.CurrentPage != tt.page || page.ItemsPerPage != tt.perPage {
				t.Fatalf("got total=%d items=%d page=%d perPage=%d",
					page.TotalItems, len(page.Items), page.CurrentPage, page.ItemsPerPage)
			}
			if !strings.Contains(rr.Body.String(), `"items":[`) {
				t.Fatalf("items must be an array: %s", rr.Body.String())
			}
		})
	}
}

func TestListingRejectsBadPaging(t *testing.T) {
	srv := newTestServer(t, testRecords(), Options{})

	tests := map[string]string{
		"/products?page=abc":    "Invalid page",
		"/products?per_page=0":  "Invalid per_page",
		"/products?per_page=-3": "Invalid per_page",
		"/products?per_page=x":  "Invalid per_page",
	}
	for target, msg := range tests {
		rr := get(t, srv, target)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("%s status=%d", target, rr.Code)
		}
		var body errorResponse
		decode(t, rr, &body)
		if body.Error != msg {
			t.Fatalf("%s error=%q, want %q", target, body.Error, msg)
		}
	}
}

func TestInvalidMonthOnEveryReportRoute(t *testing.T) {
	srv := newTestServer(t, testRecords(), Options{})

	for _, path := range []string{"/statistics", "/bar-chart", "/pie-chart", "/combined-statistics"} {
		for _, month := range []string{"", "?month=0", "?month=13", "?month=march", "?month=2.5"} {
			rr := get(t, srv, path+month)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("%s%s status=%d", path, month, rr.Code)
			}
			if got := strings.TrimSpace(rr.Body.String()); got != `{"error":"Invalid month"}` {
				t.Fatalf("%s%s body=%s", path, month, got)
			}
		}
	}
}

func TestReports(t *testing.T) {
	srv := newTestServer(t, testRecords(), Options{ReportCacheTTL: time.Minute})

	rr := get(t, srv, "/statistics?month=3")
	if rr.Code != http.StatusOK {
		t.Fatalf("statistics status=%d", rr.Code)
	}
	var stats core.Statistics
	decode(t, rr, &stats)
	if stats.TotalSoldItems != 2 || stats.TotalSaleAmount != 79.99 {
		t.Fatalf("unexpected statistics: %+v", stats)
	}

	var hist core.Histogram
	decode(t, get(t, srv, "/bar-chart?month=3"), &hist)
	if len(hist.PriceRanges) != 10 || hist.PriceRanges["0-100"] != 2 || hist.PriceRanges["101-200"] != 1 || hist.NotSoldItems != 1 {
		t.Fatalf("unexpected histogram: %+v", hist)
	}

	var cats core.CategoryReport
	decode(t, get(t, srv, "/pie-chart?month=3"), &cats)
	if len(cats.Categories) != 3 || cats.Categories["electronics"] != 1 {
		t.Fatalf("unexpected categories: %+v", cats)
	}

	var combined core.CombinedReport
	decode(t, get(t, srv, "/combined-statistics?month=3"), &combined)
	if combined.Statistics != stats || combined.NotSoldItems != hist.NotSoldItems || len(combined.CategoryCount) != 3 {
		t.Fatalf("combined disagrees with individual reports: %+v", combined)
	}

	var empty core.Statistics
	decode(t, get(t, srv, "/statistics?month=12"), &empty)
	if empty.TotalSoldItems != 0 || empty.TotalSaleAmount != 0 {
		t.Fatalf("expected zero statistics for empty month: %+v", empty)
	}

	if stats := srv.reports.Stats(); stats.Size != 2 || stats.Hits != 3 {
		t.Fatalf("expected month 3 served from cache, got %+v", stats)
	}
}

func TestRateLimit(t *testing.T) {
	srv := newTestServer(t, testRecords(), Options{RateLimitPerMinute: 2})

	for i := 0; i < 2; i++ {
		if rr := get(t, srv, "/healthz"); rr.Code != http.StatusOK {
			t.Fatalf("request %d status=%d", i, rr.Code)
		}
	}
	rr := get(t, srv, "/healthz")
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rr.Code)
	}
	if rr.Header().Get("Retry-After") == "" {
		t.Fatal("missing Retry-After header")
	}
}

func TestSecurityAndCORSHeaders(t *testing.T) {
	srv := newTestServer(t, testRecords(), Options{CORSAllowedOrigins: []string{"https://dash.example.com"}})

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/statistics?month=3", nil)
	req.Header.Set("Origin", "https://dash.example.com")
	srv.Handler.ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "https://dash.example.com" {
		t.Fatalf("allow-origin=%q", got)
	}
	if rr.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatal("missing nosniff header")
	}
	if rr.Header().Get("Cache-Control") != "no-store" {
		t.Fatalf("cache-control=%q", rr.Header().Get("Cache-Control"))
	}
	if !strings.HasPrefix(rr.Header().Get("Content-Type"), "application/json") {
		t.Fatalf("content-type=%q", rr.Header().Get("Content-Type"))
	}
}

func TestRecoverJSON(t *testing.T) {
	srv := newTestServer(t, testRecords(), Options{})
	h := srv.recoverJSON(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/statistics?month=1", nil))
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d", rr.Code)
	}
	if got := strings.TrimSpace(rr.Body.String()); got != `{"error":"Internal server error"}` {
		t.Fatalf("body=%s", got)
	}
}

func TestUnknownRouteAndMetrics(t *testing.T) {
	srv := newTestServer(t, testRecords(), Options{})

	if rr := get(t, srv, "/nope"); rr.Code != http.StatusNotFound {
		t.Fatalf("status=%d", rr.Code)
	}

	rr := get(t, srv, "/metrics")
	if rr.Code != http.StatusOK {
		t.Fatalf("metrics status=%d", rr.Code)
	}
	var m map[string]json.RawMessage
	decode(t, rr, &m)
	for _, key := range []string{"http", "rateLimit", "security", "reportCache"} {
		if _, ok := m[key]; !ok {
			t.Fatalf("metrics missing %q", key)
		}
	}
}
