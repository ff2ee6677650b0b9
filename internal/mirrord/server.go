// Package mirrord implements the remote mirror server: an HTTP document
// store holding per-user bookmark documents and the credential registry,
// with an SSE change feed per document key.
package mirrord

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/linkdeckapp/linkdeck/internal/http/response"
	"github.com/linkdeckapp/linkdeck/internal/ratelimit"
	"github.com/linkdeckapp/linkdeck/internal/sse"
	"github.com/linkdeckapp/linkdeck/internal/store"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	store      *store.Store
	sseManager *sse.Manager
	sseHandler *sse.Handler
	writeLimit *ratelimit.KeyedRateLimiter
	router     *chi.Mux
	logger     *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(kv *store.Store, sseManager *sse.Manager, sseHandler *sse.Handler, writeLimit *ratelimit.KeyedRateLimiter, logger *slog.Logger) *Server {
	s := &Server{
		store:      kv,
		sseManager: sseManager,
		sseHandler: sseHandler,
		writeLimit: writeLimit,
		router:     chi.NewRouter(),
		logger:     logger,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedMethods: []string{http.MethodGet, http.MethodPut},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	// Health check.
	s.router.Get("/health", s.handleHealthCheck)

	// API v1.
	s.router.Route("/api/v1", func(r chi.Router) {
		// Credential registry.
		r.Route("/users/{userID}", func(r chi.Router) {
			r.Get("/", s.handleGetCredential)
			r.With(s.rateLimitWrites).Put("/", s.handlePutCredential)
		})

		// Document store and change feed.
		r.Route("/documents/{key}", func(r chi.Router) {
			r.Get("/", s.handleGetDocument)
			r.With(s.rateLimitWrites).Put("/", s.handlePutDocument)
			r.Get("/stream", s.handleStream)
		})
	})
}

// rateLimitWrites rejects write bursts per client address. Reads and the
// change feed are unlimited.
func (s *Server) rateLimitWrites(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.writeLimit.Allow(r.RemoteAddr) {
			response.Error(w, http.StatusTooManyRequests, "too many writes, slow down", s.logger)
			return
		}
		next.ServeHTTP(w, r)
	})
}
