package providers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/lepinkainen/bibly/internal/cache"
	"github.com/lepinkainen/bibly/internal/enrichment/book"
	"github.com/lepinkainen/bibly/internal/sru"
)

const ndlBaseURL = "https://ndlsearch.ndl.go.jp"

// NDL looks books up in the National Diet Library search SRU endpoint.
// A record is accepted only with title, creator and publisher present.
type NDL struct {
	client
}

// Compile-time check that NDL implements book.Provider.
var _ book.Provider = (*NDL)(nil)

// NewNDL creates an NDL provider.
func NewNDL(opts ...Option) *NDL {
	return &NDL{client: newClient("NDL", ndlBaseURL, opts)}
}

// Name returns the human-readable name of this provider.
func (p *NDL) Name() string {
	return p.name
}

// Lookup fetches the dcndl record for req.ISBN.
func (p *NDL) Lookup(ctx context.Context, req book.Request) (book.Candidate, error) {
	isbn, err := normalizeISBN(req.ISBN)
	if err != nil {
		return book.Candidate{}, err
	}

	entry, err := p.lookupCached(cache.NDLTable, isbn, func() (cachedLookup, error) {
		return p.fetch(ctx, isbn)
	})
	if err != nil {
		return book.Candidate{}, err
	}
	return entry.result(sru.ErrRecordNotFound)
}

func (p *NDL) fetch(ctx context.Context, isbn string) (cachedLookup, error) {
	q := url.Values{}
	q.Set("operation", "searchRetrieve")
	q.Set("version", "1.2")
	q.Set("recordSchema", "dcndl")
	q.Set("query", "isbn="+isbn)
	endpoint := fmt.Sprintf("%s/api/sru?%s", p.baseURL, q.Encode())

	body, err := p.get(ctx, endpoint)
	if err != nil {
		return cachedLookup{}, err
	}

	rec, err := sru.Parse(bytes.NewReader(body))
	if errors.Is(err, sru.ErrRecordNotFound) {
		return cachedLookup{NotFound: true}, nil
	}
	if err != nil {
		return cachedLookup{}, err
	}

	return found(book.Candidate{
		Title:     rec.Title,
		Author:    rec.Creator,
		Publisher: rec.Publisher,
	}), nil
}
