package providers

import (
	"context"

	"github.com/lepinkainen/bibly/internal/enrichment/book"
)

// Amazon stands in for the Product Advertising API, which needs signed
// requests. Every lookup fails with book.ErrNotImplemented.
type Amazon struct{}

// Compile-time check that Amazon implements book.Provider.
var _ book.Provider = (*Amazon)(nil)

// NewAmazon creates the Amazon placeholder provider.
func NewAmazon() *Amazon {
	return &Amazon{}
}

// Name returns the human-readable name of this provider.
func (p *Amazon) Name() string {
	return "Amazon"
}

// Lookup always returns book.ErrNotImplemented, whatever the input.
func (p *Amazon) Lookup(context.Context, book.Request) (book.Candidate, error) {
	return book.Candidate{}, book.ErrNotImplemented
}
