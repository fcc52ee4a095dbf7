package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/lepinkainen/bibly/internal/catalog"
	"github.com/lepinkainen/bibly/internal/enrichment/book"
)

type createGenreRequest struct {
	Name string `json:"name"`
}

type countResponse struct {
	GenreID int64 `json:"genre_id"`
	Count   int64 `json:"count"`
}

type fromCandidateRequest struct {
	Candidate book.Candidate  `json:"candidate"`
	Book      catalog.NewBook `json:"book"`
}

func (s *Server) handleListGenres(w http.ResponseWriter, r *http.Request) {
	genres, err := s.catalog.ListGenres(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, genres)
}

func (s *Server) handleCreateGenre(w http.ResponseWriter, r *http.Request) {
	var req createGenreRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	g, err := s.catalog.AddGenre(r.Context(), req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, g)
}

func (s *Server) handleGetGenre(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	g, err := s.catalog.GetGenre(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) handleDeleteGenre(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.catalog.DeleteGenre(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeNoContent(w)
}

func (s *Server) handleListBooksByGenre(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	books, err := s.catalog.ListBooksByGenre(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, books)
}

func (s *Server) handleCountBooksInGenre(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	n, err := s.catalog.CountBooksInGenre(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, countResponse{GenreID: id, Count: n})
}

func (s *Server) handleListBooks(w http.ResponseWriter, r *http.Request) {
	books, err := s.catalog.ListBooks(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, books)
}

func (s *Server) handleGetBook(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	b, err := s.catalog.GetBook(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) handleCreateBook(w http.ResponseWriter, r *http.Request) {
	var nb catalog.NewBook
	if err := decodeJSON(w, r, &nb); err != nil {
		writeError(w, err)
		return
	}
	b, err := s.catalog.AddBook(r.Context(), nb)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (s *Server) handleCreateBookFromCandidate(w http.ResponseWriter, r *http.Request) {
	var req fromCandidateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	b, err := s.catalog.AddBookFromCandidate(r.Context(), req.Candidate, req.Book)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

// handleUpdateBook takes the id from the path; an id in the body is ignored.
func (s *Server) handleUpdateBook(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var ub catalog.UpdateBook
	if err := decodeJSON(w, r, &ub); err != nil {
		writeError(w, err)
		return
	}
	ub.ID = id
	b, err := s.catalog.EditBook(r.Context(), ub)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) handleDeleteBook(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.catalog.DeleteBook(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeNoContent(w)
}

func (s *Server) handleListProviders(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.resolver.Providers())
}

func lookupRequest(r *http.Request) book.Request {
	req := book.Request{ISBN: chi.URLParam(r, "isbn")}
	if key := r.URL.Query().Get("api_key"); key != "" {
		req.Credentials = map[string]string{book.CredentialAPIKey: key}
	}
	return req
}

// handleLookup resolves an ISBN. Credentials come from the server config;
// a Google Books key may also be passed as the api_key query parameter.
func (s *Server) handleLookup(w http.ResponseWriter, r *http.Request) {
	c, err := s.resolver.Lookup(r.Context(), chi.URLParam(r, "provider"), lookupRequest(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// handleLookupAll asks every provider at once. Per-provider failures are
// reported inside the result list, so the response is always 200.
func (s *Server) handleLookupAll(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.resolver.LookupAll(r.Context(), lookupRequest(r)))
}
