// Package ui serves the JSON HTTP API.
package ui

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"abtest/app"
	"abtest/internal"
)

// App represents the HTTP application
type App struct {
	router        *chi.Mux
	analysis      *app.AnalysisService
	shares        *app.ShareService
	logger        *internal.Logger
	maxInputBytes int64
}

// Config holds HTTP application configuration
type Config struct {
	MaxInputBytes int64
}

// NewApp creates a new HTTP application
func NewApp(analysis *app.AnalysisService, shares *app.ShareService, logger *internal.Logger, config Config) *App {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	if config.MaxInputBytes <= 0 {
		config.MaxInputBytes = 1 << 20
	}

	a := &App{
		router:        chi.NewRouter(),
		analysis:      analysis,
		shares:        shares,
		logger:        logger,
		maxInputBytes: config.MaxInputBytes,
	}

	a.setupMiddleware()
	a.setupRoutes()

	return a
}

// setupMiddleware configures HTTP middleware
func (a *App) setupMiddleware() {
	a.router.Use(middleware.RequestID)
	a.router.Use(middleware.RealIP)
	a.router.Use(requestLogger(a.logger))
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))
}

// setupRoutes configures the application routes
func (a *App) setupRoutes() {
	a.router.Get("/healthz", a.handleHealth)

	a.router.Route("/api", func(r chi.Router) {
		r.Post("/analyze", a.handleAnalyze)
		r.Post("/analyze/report", a.handleAnalyzeReport)
		r.Post("/analyze/xlsx", a.handleAnalyzeWorkbook)

		r.Post("/share", a.handleCreateShare)
		r.Get("/share", a.handleRecentShares)
		r.Post("/share/decode", a.handleDecodeShare)
		r.Get("/share/{id}", a.handleGetShare)
		r.Get("/share/{id}/report", a.handleShareReport)
	})
}

// ServeHTTP implements http.Handler
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}
