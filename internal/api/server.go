// Package api provides the HTTP API server and handlers for Versemark.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/versemark/versemark-server/internal/config"
	"github.com/versemark/versemark-server/internal/http/response"
	"github.com/versemark/versemark-server/internal/ratelimit"
	"github.com/versemark/versemark-server/internal/service"
	"github.com/versemark/versemark-server/internal/sse"
	"github.com/versemark/versemark-server/internal/store"
)

// Services groups the business logic services used by the API server.
type Services struct {
	Categories *service.CategoryService
	Highlights *service.HighlightService
	Resolver   *service.Resolver
	Deletion   *service.DeletionService
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store       store.Store
	services    *Services
	sseManager  *sse.Manager
	router      *chi.Mux
	api         huma.API
	rateLimiter *ratelimit.KeyedRateLimiter
	logger      *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(
	st store.Store,
	services *Services,
	sseManager *sse.Manager,
	serverCfg config.ServerConfig,
	limitCfg config.RateLimitConfig,
	logger *slog.Logger,
) *Server {
	router := chi.NewRouter()

	s := &Server{
		store:       st,
		services:    services,
		sseManager:  sseManager,
		router:      router,
		rateLimiter: ratelimit.New(limitCfg.RPS, limitCfg.Burst),
		logger:      logger,
	}

	s.setupMiddleware(serverCfg)

	humaConfig := huma.DefaultConfig("Versemark API", "1.0.0")
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)
	s.api = humachi.New(router, humaConfig)
	RegisterErrorHandler()

	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close stops the rate limiter's cleanup loop.
func (s *Server) Close() {
	s.rateLimiter.Stop()
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware(cfg config.ServerConfig) {
	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))
	s.router.Use(RateLimitMiddleware(s.rateLimiter, s.logger))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.registerHealthRoutes()
	s.registerPaletteRoutes()
	s.registerCategoryRoutes()
	s.registerColorRoutes()
	s.registerHighlightRoutes()

	// Plain handlers outside the OpenAPI description.
	s.router.Handle("/metrics", promhttp.Handler())
	if s.sseManager != nil {
		s.router.Get("/api/v1/events", sse.NewHandler(s.sseManager, s.logger).ServeHTTP)
	}

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, "no route for "+r.URL.Path, s.logger)
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.MethodNotAllowed(w, s.logger)
	})
}

// requestLogger logs one line per request through slog.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Debug("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
