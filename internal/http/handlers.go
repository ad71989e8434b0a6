package http

import (
	"net/http"
	"strconv"
	"time"

	"txdash/internal/core"
	"txdash/internal/log"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(s.startedAt).Round(time.Second).String(),
	})
}

// handleReady reports 503 until a non-empty dataset is loaded.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.svc == nil || s.svc.Store().Len() == 0 {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not ready",
			"checks": map[string]string{"store": "empty"},
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
		"checks": map[string]string{
			"store":    "ok",
			"records":  strconv.Itoa(s.svc.Store().Len()),
			"loadedAt": s.svc.Store().LoadedAt().UTC().Format(time.RFC3339),
		},
	})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"http":        s.tracer.GetMetrics(),
		"rateLimit":   s.limiter.GetMetrics(),
		"security":    s.detector.GetMetrics(),
		"reportCache": s.reports.Stats(),
	})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	params, err := parseListParams(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, clientMessage(err))
		return
	}

	page := s.svc.List(params)
	fields := log.NewFields().WithListing(params.Search, params.Page, params.PageSize).WithOperation(log.OpList)
	log.FromContext(r.Context()).DebugContext(r.Context(), "Listing served",
		append(fields.ToSlice(), log.FieldRecordCount, page.TotalItems)...)

	writeJSON(w, http.StatusOK, page)
}

func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	s.serveReport(w, r, "statistics", func(c core.CombinedReport) any {
		return c.Statistics
	})
}

func (s *Server) handleBarChart(w http.ResponseWriter, r *http.Request) {
	s.serveReport(w, r, "bar-chart", func(c core.CombinedReport) any {
		return core.Histogram{PriceRanges: c.PriceRanges, NotSoldItems: c.NotSoldItems}
	})
}

func (s *Server) handlePieChart(w http.ResponseWriter, r *http.Request) {
	s.serveReport(w, r, "pie-chart", func(c core.CombinedReport) any {
		return core.CategoryReport{Categories: c.CategoryCount}
	})
}

func (s *Server) handleCombined(w http.ResponseWriter, r *http.Request) {
	s.serveReport(w, r, "combined", func(c core.CombinedReport) any {
		return c
	})
}

// serveReport validates month, fetches the month's combined report through
// the cache and writes the projection chosen by shape.
func (s *Server) serveReport(w http.ResponseWriter, r *http.Request, name string, shape func(core.CombinedReport) any) {
	month, err := parseMonth(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, clientMessage(err))
		return
	}

	report, err := s.combined(month)
	if err != nil {
		log.NewStructuredLogger(log.FromContext(r.Context())).LogError(r.Context(), "Report failed", err,
			log.ComponentHTTP, log.OpReport, log.NewFields().WithReport(name, month, 0))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	log.NewStructuredLogger(log.FromContext(r.Context())).
		LogReportServed(r.Context(), name, month, report.PriceRanges.Total())
	writeJSON(w, http.StatusOK, shape(report))
}

func (s *Server) combined(month int) (core.CombinedReport, error) {
	return s.reports.GetOrLoad(strconv.Itoa(month), func() (core.CombinedReport, error) {
		return s.svc.Combined(month)
	})
}
