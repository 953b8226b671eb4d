// Package http exposes the ledger over a JSON API.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"gastos/internal/budget"
	"gastos/internal/filter"
	"gastos/internal/ledger"
	"gastos/internal/report"
	"gastos/internal/services"
)

type Server struct {
	http.Server

	repo    *ledger.Repository
	reports *report.Engine
	budgets *budget.Engine
	filters *filter.Engine
	exports *services.ExportService
	alerts  *services.AlertService

	rateLimiter *rateLimiter
	metrics     *securityMetrics

	shutdownOnce sync.Once
}

// Deps bundles the engines and services the server routes to. Exports
// and Alerts may be nil; the corresponding features degrade gracefully.
type Deps struct {
	Repo    *ledger.Repository
	Reports *report.Engine
	Budgets *budget.Engine
	Filters *filter.Engine
	Exports *services.ExportService
	Alerts  *services.AlertService
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(addr string, deps Deps) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		repo:        deps.Repo,
		reports:     deps.Reports,
		budgets:     deps.Budgets,
		filters:     deps.Filters,
		exports:     deps.Exports,
		alerts:      deps.Alerts,
		rateLimiter: newRateLimiter(),
		metrics:     &securityMetrics{},
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	// Transactions
	mux.HandleFunc("GET /api/transactions", s.wrap(s.handleListTransactions))
	mux.HandleFunc("POST /api/transactions", s.wrap(s.handleCreateTransaction))
	mux.HandleFunc("POST /api/transactions/filter", s.wrap(s.handleFilterTransactions))
	mux.HandleFunc("GET /api/transactions/{id}", s.wrap(s.handleGetTransaction))
	mux.HandleFunc("PUT /api/transactions/{id}", s.wrap(s.handleUpdateTransaction))
	mux.HandleFunc("DELETE /api/transactions/{id}", s.wrap(s.handleDeleteTransaction))

	// Categories
	mux.HandleFunc("GET /api/categories", s.wrap(s.handleListCategories))
	mux.HandleFunc("POST /api/categories", s.wrap(s.handleCreateCategory))
	mux.HandleFunc("GET /api/categories/exists", s.wrap(s.handleCategoryExists))
	mux.HandleFunc("GET /api/categories/{id}", s.wrap(s.handleGetCategory))
	mux.HandleFunc("PUT /api/categories/{id}", s.wrap(s.handleUpdateCategory))
	mux.HandleFunc("DELETE /api/categories/{id}", s.wrap(s.handleDeleteCategory))
	mux.HandleFunc("PUT /api/categories/{id}/budget", s.wrap(s.handleSetBudget))

	// Budgets
	mux.HandleFunc("GET /api/budgets/status", s.wrap(s.handleBudgetStatus))
	mux.HandleFunc("GET /api/budgets/alerts", s.wrap(s.handleBudgetAlerts))

	// Dashboard
	mux.HandleFunc("GET /api/dashboard/balance", s.wrap(s.handleBalance))
	mux.HandleFunc("GET /api/dashboard/chart-data", s.wrap(s.handleChartData))
	mux.HandleFunc("GET /api/dashboard/monthly-trend", s.wrap(s.handleMonthlyTrend))
	mux.HandleFunc("GET /api/dashboard/summary", s.wrap(s.handleMonthlySummary))
	mux.HandleFunc("GET /api/dashboard/category-analysis", s.wrap(s.handleCategoryAnalysis))

	// Export
	mux.HandleFunc("GET /api/export/csv", s.wrap(s.handleExportCSV))
	mux.HandleFunc("GET /api/export/csv/range", s.wrap(s.handleExportCSVRange))
	mux.HandleFunc("POST /api/export/csv/filtered", s.wrap(s.handleExportCSVFiltered))

	return s
}

// wrap adds security headers, rate limiting, request IDs, and request
// logging around a handler.
func (s *Server) wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)
		requestID := generateRequestID()

		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP)

		// Rate limit mutating requests only
		if isMutating(r.Method) && !s.rateLimiter.allow(clientIP, s.metrics) {
			slog.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded, please try again later")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds(),
			"client_ip", clientIP)
	}
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}

type requestIDKey struct{}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// publishAlerts recomputes and publishes budget alerts after a
// mutation. The request does not wait on the broker.
func (s *Server) publishAlerts(r *http.Request) {
	if s.alerts == nil {
		return
	}
	ctx := context.WithoutCancel(r.Context())
	go s.alerts.PublishAlerts(ctx)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
