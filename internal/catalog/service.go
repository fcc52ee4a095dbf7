package catalog

import (
	"context"
	"strings"

	"github.com/lepinkainen/bibly/internal/enrichment/book"
)

// Service exposes the catalog operations used by the CLI and HTTP API. It
// adds candidate prefill on top of the store and keeps no state of its own.
type Service struct {
	*Store
}

// NewService creates a Service over store.
func NewService(store *Store) *Service {
	return &Service{Store: store}
}

// AddBook creates a book and returns it as stored.
func (s *Service) AddBook(ctx context.Context, nb NewBook) (Book, error) {
	return s.CreateBook(ctx, nb)
}

// EditBook updates a book and returns it as stored.
func (s *Service) EditBook(ctx context.Context, ub UpdateBook) (Book, error) {
	return s.Store.UpdateBook(ctx, ub)
}

// AddGenre creates a genre, or returns the existing one with that name.
func (s *Service) AddGenre(ctx context.Context, name string) (Genre, error) {
	return s.CreateGenre(ctx, name)
}

// AddBookFromCandidate stores a book prefilled from a lookup result. Fields
// set in extra win over the candidate; blank candidate fields stay null.
func (s *Service) AddBookFromCandidate(ctx context.Context, c book.Candidate, extra NewBook) (Book, error) {
	nb := extra
	if strings.TrimSpace(nb.Title) == "" {
		nb.Title = c.Title
	}
	if isBlank(nb.Author) {
		nb.Author = optional(c.Author)
	}
	if isBlank(nb.Publisher) {
		nb.Publisher = optional(c.Publisher)
	}
	return s.CreateBook(ctx, nb)
}

func isBlank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}

func optional(s string) *string {
	if s = strings.TrimSpace(s); s == "" {
		return nil
	}
	return &s
}
