// Package http exposes the query service as a JSON API on a chi router.
package http

import (
	"context"
	"fmt"
	"net/http"
	"runtime/debug"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"txdash/internal/cache"
	"txdash/internal/core"
	"txdash/internal/log"
	"txdash/internal/middleware/ratelimit"
	"txdash/internal/middleware/security"
	"txdash/internal/middleware/trace"
	"txdash/internal/query"
)

// Options tunes the server. Zero values fall back to defaults.
type Options struct {
	Logger             *log.Logger
	CORSAllowedOrigins []string
	RateLimitPerMinute int
	ReportCacheTTL     time.Duration
	ReportCacheSize    int
	RequestTimeout     time.Duration
}

func (o *Options) defaults() {
	if o.Logger == nil {
		o.Logger = log.New(log.DefaultConfig())
	}
	if len(o.CORSAllowedOrigins) == 0 {
		o.CORSAllowedOrigins = []string{"*"}
	}
	if o.RateLimitPerMinute <= 0 {
		o.RateLimitPerMinute = ratelimit.DefaultConfig().RequestsPerMinute
	}
	if o.ReportCacheSize <= 0 {
		o.ReportCacheSize = 12
	}
	if o.RequestTimeout <= 0 {
		o.RequestTimeout = 30 * time.Second
	}
}

type Server struct {
	http.Server
	svc       *query.Service
	logger    *log.Logger
	detector  *security.Detector
	limiter   *ratelimit.Limiter
	tracer    *trace.Middleware
	startedAt time.Time

	// combined reports per month; the single-report routes are projections of it
	reports *cache.LRUCache[core.CombinedReport]
	caches  *cache.Manager

	shutdownOnce sync.Once
}

// NewServer wires middleware and routes, returning a ready-to-run server.
func NewServer(addr string, svc *query.Service, opts Options) *Server {
	opts.defaults()
	logger := opts.Logger.WithComponent(log.ComponentHTTP)

	s := &Server{
		svc:       svc,
		logger:    logger,
		detector:  security.NewDetector(),
		limiter:   ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		reports:   cache.NewLRUCache[core.CombinedReport](opts.ReportCacheSize, opts.ReportCacheTTL),
		caches:    cache.NewManager(),
		startedAt: time.Now(),
	}
	s.tracer = trace.NewMiddleware(opts.Logger, s.detector.ExtractClientIP)

	if opts.ReportCacheTTL > 0 {
		s.caches.Register(s.reports)
		s.caches.StartCleanup(opts.ReportCacheTTL)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(s.tracer.Middleware)
	r.Use(log.Middleware(opts.Logger))
	r.Use(log.ComponentMiddleware(log.ComponentHTTP))
	r.Use(log.RequestIDMiddleware(func(req *http.Request) string {
		return trace.GetRequestID(req.Context())
	}))
	r.Use(s.recoverJSON)
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)
	r.Use(security.CacheControlMiddleware(0))
	r.Use(s.detector.Middleware(opts.Logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	r.Use(s.limiter.Middleware(s.detector.ExtractClientIP, s.rateLimited))
	r.Use(middleware.Timeout(opts.RequestTimeout))
	r.Use(middleware.Compress(5))

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", s.handleMetrics)

	r.Get("/products", s.handleList)
	r.Get("/transactions", s.handleList)
	r.Get("/statistics", s.handleStatistics)
	r.Get("/bar-chart", s.handleBarChart)
	r.Get("/pie-chart", s.handlePieChart)
	r.Get("/combined-statistics", s.handleCombined)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	s.Server = http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      opts.RequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// recoverJSON turns handler panics into a JSON 500 and logs the stack.
func (s *Server) recoverJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				log.FromContext(r.Context()).ErrorContext(r.Context(), "Handler panic recovered",
					log.FieldError, fmt.Sprint(rec),
					log.FieldPath, r.URL.Path,
					"stack", string(debug.Stack()))
				writeError(w, http.StatusInternalServerError, "Internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) rateLimited(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.detector.ExtractClientIP(r),
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)
	w.Header().Set("Retry-After", "60")
	writeError(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
}

// Shutdown stops background workers and gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.shutdownOnce.Do(func() {
		s.logger.InfoContext(ctx, "Shutting down HTTP server", log.FieldOperation, log.OpShutdown)
		s.limiter.Stop()
		s.caches.Stop()
	})
	return s.Server.Shutdown(ctx)
}
