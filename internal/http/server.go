package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	applog "societyfund/internal/log"
	"societyfund/internal/middleware/ratelimit"
	"societyfund/internal/middleware/security"
	"societyfund/internal/middleware/trace"
	"societyfund/internal/report"
	"societyfund/internal/services"
	appweb "societyfund/web"
)

// Options tunes the server. Zero values fall back to defaults.
type Options struct {
	Title              string
	CurrencySymbol     string
	RateLimitPerMinute int
	Logger             *applog.Logger
}

type Server struct {
	http.Server
	entries   *services.EntryService
	reports   *services.ReportService
	templates *template.Template
	formatter report.Formatter
	title     string

	detector *security.Detector
	limiter  *ratelimit.Limiter
	logger   *applog.Logger
	log      *applog.StructuredLogger
	started  time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes, middleware and templates, returning a
// ready-to-run server.
func NewServer(addr string, entries *services.EntryService, reports *services.ReportService, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = applog.Default(applog.ComponentHTTP)
	}
	title := opts.Title
	if title == "" {
		title = "Society Fund"
	}
	limiterCfg := ratelimit.DefaultConfig()
	if opts.RateLimitPerMinute > 0 {
		limiterCfg.RequestsPerMinute = opts.RateLimitPerMinute
	}

	s := &Server{
		entries:   entries,
		reports:   reports,
		formatter: report.NewFormatter(opts.CurrencySymbol),
		title:     title,
		detector:  security.NewDetector(),
		limiter:   ratelimit.NewLimiter(limiterCfg),
		logger:    logger,
		log:       applog.NewStructuredLogger(logger),
		started:   time.Now(),
	}

	t, err := template.New("").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		logger.Warn("Failed parsing templates", "error", err, applog.FieldComponent, applog.ComponentTemplate)
	}
	s.templates = t

	mux := http.NewServeMux()
	s.routes(mux)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.middleware(mux),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", "error", err)
	}

	mux.HandleFunc("GET /{$}", s.handleFundPage)
	mux.HandleFunc("GET /expense", s.handleExpensePage)

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/fund", s.handleListFunds)
	mux.HandleFunc("POST /api/fund", s.handleCreateFund)
	mux.HandleFunc("PUT /api/fund", s.handleUpdateFund)
	mux.HandleFunc("DELETE /api/fund", s.handleDeleteFund)
	mux.HandleFunc("GET /api/fund/{id}", s.handleGetFund)
	mux.HandleFunc("PUT /api/fund/{id}", s.handleUpdateFund)
	mux.HandleFunc("DELETE /api/fund/{id}", s.handleDeleteFund)

	mux.HandleFunc("GET /api/expense", s.handleListExpenses)
	mux.HandleFunc("POST /api/expense", s.handleCreateExpense)
	mux.HandleFunc("PUT /api/expense", s.handleUpdateExpense)
	mux.HandleFunc("DELETE /api/expense", s.handleDeleteExpense)
	mux.HandleFunc("GET /api/expense/{id}", s.handleGetExpense)
	mux.HandleFunc("PUT /api/expense/{id}", s.handleUpdateExpense)
	mux.HandleFunc("DELETE /api/expense/{id}", s.handleDeleteExpense)

	mux.HandleFunc("GET /api/summary", s.handleSummary)
	mux.HandleFunc("GET /api/balance", s.handleBalance)
	mux.HandleFunc("POST /api/publish", s.handlePublish)

	mux.HandleFunc("GET /export/{file}", s.handleExport)
}

// middleware wraps h with, from the outside in: request tracing, the
// request logger, security headers and write rate limiting.
func (s *Server) middleware(h http.Handler) http.Handler {
	h = s.limiter.Middleware(s.detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		s.logger.WarnContext(r.Context(), "Rate limit exceeded",
			applog.FieldClientIP, s.detector.ExtractClientIP(r),
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldComponent, applog.ComponentRateLimit)
		ErrorResponse(http.StatusTooManyRequests, "rate_limit_exceeded", "Rate limit exceeded. Please try again later.").Write(w)
	})(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	h = applog.RequestIDMiddleware(s.logger, trace.GetRequestID)(h)
	h = trace.NewMiddleware(s.logger, s.detector.ExtractClientIP).Middleware(h)
	return h
}

// Shutdown stops the rate limiter and gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewResponse().JSON(map[string]string{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	}).Write(w)
}

// handleReady reports not ready when templates failed to load or the store
// does not answer a ping.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]string)

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status, httpStatus = "not_ready", http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	if err := s.entries.Ping(ctx); err != nil {
		checks["store"] = "failed: " + err.Error()
		status, httpStatus = "not_ready", http.StatusServiceUnavailable
	} else {
		checks["store"] = "ok"
	}

	if s.reports.PublishEnabled() {
		checks["sheets"] = "configured"
	} else {
		checks["sheets"] = "not_configured"
	}

	NewResponse().Status(httpStatus).JSON(map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	}).Write(w)
}
