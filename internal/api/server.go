// Package api provides the HTTP server and the catalog's page handlers.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/locallibrary/catalog/internal/api/view"
	"github.com/locallibrary/catalog/internal/ratelimit"
)

// Options configures a Server.
type Options struct {
	// Development shows error details on failure pages.
	Development bool
	// WriteLimiter throttles POST requests per client. Nil disables it.
	WriteLimiter *ratelimit.KeyedRateLimiter
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	services *Services
	views    *view.Renderer
	limiter  *ratelimit.KeyedRateLimiter
	router   *chi.Mux
	logger   *slog.Logger
	dev      bool
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(services *Services, views *view.Renderer, logger *slog.Logger, opts Options) *Server {
	s := &Server{
		services: services,
		views:    views,
		limiter:  opts.WriteLimiter,
		router:   chi.NewRouter(),
		logger:   logger,
		dev:      opts.Development,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.NotFound(s.handle(s.handleNotFound))

	s.router.Get("/health", s.handleHealthCheck)
	s.router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/catalog", http.StatusFound)
	})

	s.router.Route("/catalog", func(r chi.Router) {
		r.Get("/", s.handle(s.handleIndex))
		r.Get("/search", s.handle(s.handleSearch))

		// Writes pass the per-client limiter.
		writes := r.With(s.limitWrites)

		// Authors. /create is registered before /{id} so it is never read as an ID.
		r.Get("/authors", s.handle(s.handleListAuthors))
		r.Get("/author/create", s.handle(s.handleAuthorCreateForm))
		writes.Post("/author/create", s.handle(s.handleCreateAuthor))
		r.Get("/author/{id}", s.handle(s.handleGetAuthor))
		r.Get("/author/{id}/delete", s.handle(s.handleAuthorDeleteForm))
		writes.Post("/author/{id}/delete", s.handle(s.handleDeleteAuthor))
		r.Get("/author/{id}/update", s.handle(s.handleAuthorUpdateForm))
		writes.Post("/author/{id}/update", s.handle(s.handleUpdateAuthor))

		// Books.
		r.Get("/books", s.handle(s.handleListBooks))
		r.Get("/book/create", s.handle(s.handleBookCreateForm))
		writes.Post("/book/create", s.handle(s.handleCreateBook))
		r.Get("/book/{id}", s.handle(s.handleGetBook))
		r.Get("/book/{id}/delete", s.handle(s.handleBookDeleteForm))
		writes.Post("/book/{id}/delete", s.handle(s.handleDeleteBook))
		r.Get("/book/{id}/update", s.handle(s.handleBookUpdateForm))
		writes.Post("/book/{id}/update", s.handle(s.handleUpdateBook))

		// Genres.
		r.Get("/genres", s.handle(s.handleListGenres))
		r.Get("/genre/create", s.handle(s.handleGenreCreateForm))
		writes.Post("/genre/create", s.handle(s.handleCreateGenre))
		r.Get("/genre/{id}", s.handle(s.handleGetGenre))
		r.Get("/genre/{id}/delete", s.handle(s.handleGenreDeleteForm))
		writes.Post("/genre/{id}/delete", s.handle(s.handleDeleteGenre))
		r.Get("/genre/{id}/update", s.handle(s.handleGenreUpdateForm))
		writes.Post("/genre/{id}/update", s.handle(s.handleUpdateGenre))

		// Book instances.
		r.Get("/bookinstances", s.handle(s.handleListBookInstances))
		r.Get("/bookinstance/create", s.handle(s.handleBookInstanceCreateForm))
		writes.Post("/bookinstance/create", s.handle(s.handleCreateBookInstance))
		r.Get("/bookinstance/{id}", s.handle(s.handleGetBookInstance))
		r.Get("/bookinstance/{id}/delete", s.handle(s.handleBookInstanceDeleteForm))
		writes.Post("/bookinstance/{id}/delete", s.handle(s.handleDeleteBookInstance))
		r.Get("/bookinstance/{id}/update", s.handle(s.handleBookInstanceUpdateForm))
		writes.Post("/bookinstance/{id}/update", s.handle(s.handleUpdateBookInstance))
	})
}
