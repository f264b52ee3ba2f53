// Package api provides the HTTP command gateway for the book bot. The chat
// transport (or anything else that can speak HTTP) calls these routes with
// the member's platform identity in a header; the gateway translates them
// into service calls and renders enveloped JSON.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Nickwheeler93/discord-book-bot/internal/http/response"
	"github.com/Nickwheeler93/discord-book-bot/internal/ratelimit"
	"github.com/Nickwheeler93/discord-book-bot/internal/service"
	"github.com/Nickwheeler93/discord-book-bot/internal/validation"
)

// Commands per second allowed per member, with a small burst for pasted
// multi-command sequences.
const (
	memberRPS   = 5
	memberBurst = 10
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	library   *service.LibraryService
	search    *service.SearchService
	validator *validation.Validator
	limiter   *ratelimit.KeyedLimiter
	router    *chi.Mux
	logger    *slog.Logger
}

// NewServer creates a new gateway with all routes configured.
func NewServer(library *service.LibraryService, search *service.SearchService, logger *slog.Logger) *Server {
	s := &Server{
		library:   library,
		search:    search,
		validator: validation.New(),
		limiter:   ratelimit.New(memberRPS, memberBurst),
		router:    chi.NewRouter(),
		logger:    logger,
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
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", memberIDHeader},
		MaxAge:         300,
	}))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealthCheck)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(s.requireMember)
		r.Use(s.rateLimitByMember)

		r.Route("/members", func(r chi.Router) {
			r.Post("/", s.handleRegisterMember)
			r.Get("/me/profile", s.handleGetProfile)
			r.Put("/me/profile-url", s.handleSetProfileURL)
		})

		r.Route("/books", func(r chi.Router) {
			r.Get("/", s.handleListBooks)
			r.Get("/catalog", s.handleBrowseCatalog)
			r.Post("/", s.handleAddBook)
			r.Post("/start", s.handleStartBook)
			r.Post("/progress", s.handleUpdateProgress)
			r.Post("/status", s.handleSetStatus)
			r.Post("/finish", s.handleFinishBook)
			r.Post("/rating", s.handleRate)
		})

		r.Route("/search", func(r chi.Router) {
			r.Get("/", s.handleSearch)
			r.Post("/pick", s.handlePickResult)
		})
	})
}

// handleHealthCheck reports liveness.
func (s *Server) handleHealthCheck(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, map[string]string{"status": "ok"}, s.logger)
}
