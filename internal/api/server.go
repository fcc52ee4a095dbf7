// Package api serves the catalog and lookup operations over HTTP.
package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/lepinkainen/bibly/internal/catalog"
	"github.com/lepinkainen/bibly/internal/enrichment"
	domainerrors "github.com/lepinkainen/bibly/internal/errors"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	catalog  *catalog.Service
	resolver *enrichment.Resolver
	router   *chi.Mux
	origins  []string
}

// NewServer creates a new HTTP server with all routes configured.
// corsOrigins lists the browser origins allowed to call the API.
func NewServer(svc *catalog.Service, resolver *enrichment.Resolver, corsOrigins []string) *Server {
	s := &Server{
		catalog:  svc,
		resolver: resolver,
		router:   chi.NewRouter(),
		origins:  corsOrigins,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(60 * time.Second))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Route("/genres", func(r chi.Router) {
			r.Get("/", s.handleListGenres)
			r.Post("/", s.handleCreateGenre)
			r.Get("/{id}", s.handleGetGenre)
			r.Delete("/{id}", s.handleDeleteGenre)
			r.Get("/{id}/books", s.handleListBooksByGenre)
			r.Get("/{id}/count", s.handleCountBooksInGenre)
		})

		r.Route("/books", func(r chi.Router) {
			r.Get("/", s.handleListBooks)
			r.Post("/", s.handleCreateBook)
			r.Post("/from-candidate", s.handleCreateBookFromCandidate)
			r.Get("/{id}", s.handleGetBook)
			r.Put("/{id}", s.handleUpdateBook)
			r.Delete("/{id}", s.handleDeleteBook)
		})

		r.Get("/providers", s.handleListProviders)
		r.Get("/lookup/{isbn}", s.handleLookupAll)
		r.Get("/lookup/{provider}/{isbn}", s.handleLookup)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// idParam parses the {id} URL parameter.
func idParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, domainerrors.Validation("invalid id " + strconv.Quote(raw))
	}
	return id, nil
}
