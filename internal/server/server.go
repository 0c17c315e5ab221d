// Package server provides the HTTP server and routing for Spyglass.
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/mkelaidis/spyglass/internal/config"
	"github.com/mkelaidis/spyglass/internal/events"
)

// RouteRegistrar mounts a module's endpoints onto the shared /api router.
// Every endpoint module's handler set implements it.
type RouteRegistrar interface {
	RegisterRoutes(r chi.Router)
}

// Config holds server configuration.
type Config struct {
	Log          zerolog.Logger
	Config       *config.Config
	Modules      []RouteRegistrar
	CacheAdmin   *CacheAdminHandlers
	EventBus     *events.Bus
	EventManager *events.Manager
}

// Server represents the HTTP server.
type Server struct {
	router         *chi.Mux
	server         *http.Server
	log            zerolog.Logger
	cfg            *config.Config
	modules        []RouteRegistrar
	cacheAdmin     *CacheAdminHandlers
	systemHandlers *SystemHandlers
	eventBus       *events.Bus
	eventManager   *events.Manager
	statusMonitor  *StatusMonitor
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	stores := cfg.CacheAdmin.Stores()

	s := &Server{
		router:         chi.NewRouter(),
		log:            cfg.Log.With().Str("component", "server").Logger(),
		cfg:            cfg.Config,
		modules:        cfg.Modules,
		cacheAdmin:     cfg.CacheAdmin,
		systemHandlers: NewSystemHandlers(stores, cfg.Log),
		eventBus:       cfg.EventBus,
		eventManager:   cfg.EventManager,
	}

	s.statusMonitor = NewStatusMonitor(cfg.EventManager, stores, cfg.Log)

	s.setupMiddleware(cfg.Config.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool) {
	// Recovery from panics
	s.router.Use(middleware.Recoverer)

	// Request ID
	s.router.Use(middleware.RequestID)

	// Real IP
	s.router.Use(middleware.RealIP)

	// Logging
	s.router.Use(s.loggingMiddleware)

	// CORS
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Compress responses. text/event-stream is not in the compressible set,
	// so the SSE endpoint streams uncompressed.
	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	// Health check and Prometheus metrics
	s.router.Get("/health", s.handleHealth)
	s.router.Handle("/metrics", promhttp.Handler())

	// API routes
	s.router.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		// Events stream (SSE). Lives outside the timeout group so connections
		// survive past the per-request deadline.
		eventsStream := NewEventsStreamHandler(s.eventBus, s.log)
		r.Get("/events", eventsStream.ServeHTTP)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(60 * time.Second))

			// Data endpoints
			for _, module := range s.modules {
				module.RegisterRoutes(r)
			}

			// System monitoring
			r.Route("/system", func(r chi.Router) {
				r.Get("/status", s.systemHandlers.HandleSystemStatus)
			})

			// Cache administration
			r.Route("/admin/cache", func(r chi.Router) {
				r.Get("/status", s.cacheAdmin.HandleCacheStatus)
				r.Post("/{store}/clear", s.cacheAdmin.HandleClearStore)
			})
		})
	})

	// Optional dashboard assets
	if s.cfg.StaticDir != "" {
		s.setupStaticRoutes()
	}
}

// setupStaticRoutes serves dashboard assets from the configured directory.
func (s *Server) setupStaticRoutes() {
	dir := s.cfg.StaticDir
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		s.log.Warn().Str("dir", dir).Msg("Static directory not found, skipping dashboard routes")
		return
	}

	s.router.Handle("/*", http.FileServer(http.Dir(dir)))
	s.log.Info().Str("dir", dir).Msg("Serving dashboard assets")
}

// Start starts the HTTP server and background monitors
func (s *Server) Start() error {
	// Status monitor snapshots cache sizes every 30 seconds
	s.statusMonitor.Start(30 * time.Second)
	s.log.Info().Msg("Status monitor started")

	if s.eventManager != nil {
		s.eventManager.EmitTyped(events.SystemStatusChanged, "server", &events.SystemStatusChangedData{
			Status:    "healthy",
			Timestamp: time.Now().Format(time.RFC3339),
		})
	}

	s.log.Info().Int("port", s.cfg.Port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")

	if s.eventManager != nil {
		s.eventManager.EmitTyped(events.SystemStatusChanged, "server", &events.SystemStatusChangedData{
			Status:    "shutting_down",
			Timestamp: time.Now().Format(time.RFC3339),
		})
	}

	s.statusMonitor.Stop()
	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
