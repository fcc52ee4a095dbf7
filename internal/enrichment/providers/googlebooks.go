package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/lepinkainen/bibly/internal/cache"
	"github.com/lepinkainen/bibly/internal/enrichment/book"
)

const googleBooksBaseURL = "https://www.googleapis.com/books/v1"

// GoogleBooks looks books up in the Google Books volumes API. The first item
// with a non-blank title wins; author and publisher may be empty.
type GoogleBooks struct {
	client
}

// Compile-time check that GoogleBooks implements book.Provider.
var _ book.Provider = (*GoogleBooks)(nil)

// NewGoogleBooks creates a Google Books provider.
func NewGoogleBooks(opts ...Option) *GoogleBooks {
	return &GoogleBooks{client: newClient("Google Books", googleBooksBaseURL, opts)}
}

// Name returns the human-readable name of this provider.
func (p *GoogleBooks) Name() string {
	return p.name
}

// googleBooksResponse matches the parts of the volumes response we read.
type googleBooksResponse struct {
	TotalItems int `json:"totalItems"`
	Items      []struct {
		VolumeInfo struct {
			Title     string   `json:"title"`
			Authors   []string `json:"authors"`
			Publisher string   `json:"publisher"`
		} `json:"volumeInfo"`
	} `json:"items"`
}

// Lookup searches volumes by ISBN. The optional "api_key" credential is
// appended when set.
func (p *GoogleBooks) Lookup(ctx context.Context, req book.Request) (book.Candidate, error) {
	isbn, err := normalizeISBN(req.ISBN)
	if err != nil {
		return book.Candidate{}, err
	}
	apiKey := req.Credential(book.CredentialAPIKey)

	entry, err := p.lookupCached(cache.GoogleBooksTable, isbn, func() (cachedLookup, error) {
		return p.fetch(ctx, isbn, apiKey)
	})
	if err != nil {
		return book.Candidate{}, err
	}
	return entry.result(book.ErrNoResult)
}

func (p *GoogleBooks) fetch(ctx context.Context, isbn, apiKey string) (cachedLookup, error) {
	q := url.Values{}
	q.Set("q", "isbn:"+isbn)
	if apiKey != "" {
		q.Set("key", apiKey)
	}
	endpoint := fmt.Sprintf("%s/volumes?%s", p.baseURL, q.Encode())

	body, err := p.get(ctx, endpoint)
	if err != nil {
		return cachedLookup{}, err
	}

	var result googleBooksResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return cachedLookup{}, fmt.Errorf("decoding response: %w", err)
	}

	items := make([]book.Item, 0, len(result.Items))
	for _, it := range result.Items {
		items = append(items, book.Item{
			Title:     it.VolumeInfo.Title,
			Authors:   it.VolumeInfo.Authors,
			Publisher: it.VolumeInfo.Publisher,
		})
	}

	c, ok := book.FirstComplete(items, book.Permissive)
	if !ok {
		return cachedLookup{NotFound: true}, nil
	}
	return found(c), nil
}
