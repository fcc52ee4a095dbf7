package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/lepinkainen/bibly/internal/cache"
	"github.com/lepinkainen/bibly/internal/enrichment/book"
)

const rakutenBaseURL = "https://app.rakuten.co.jp"

// Rakuten looks books up in the Rakuten Books search API. Only items with
// title, author and publisher are accepted.
type Rakuten struct {
	client
}

// Compile-time check that Rakuten implements book.Provider.
var _ book.Provider = (*Rakuten)(nil)

// NewRakuten creates a Rakuten Books provider.
func NewRakuten(opts ...Option) *Rakuten {
	return &Rakuten{client: newClient("Rakuten Books", rakutenBaseURL, opts)}
}

// Name returns the human-readable name of this provider.
func (p *Rakuten) Name() string {
	return p.name
}

// rakutenResponse matches the formatVersion=1 search response.
type rakutenResponse struct {
	Count int `json:"count"`
	Items []struct {
		Item struct {
			Title         string `json:"title"`
			Author        string `json:"author"`
			PublisherName string `json:"publisherName"`
		} `json:"Item"`
	} `json:"Items"`
}

// Lookup searches by ISBN. The "application_id" credential is required.
//
// Items are scanned in order and the first complete one wins. When the
// response holds a single item and it is incomplete, the missing fields are
// reported with *book.IncompleteError; otherwise an unusable response is
// book.ErrNoResult.
func (p *Rakuten) Lookup(ctx context.Context, req book.Request) (book.Candidate, error) {
	isbn, err := normalizeISBN(req.ISBN)
	if err != nil {
		return book.Candidate{}, err
	}
	appID := req.Credential(book.CredentialApplicationID)
	if appID == "" {
		return book.Candidate{}, fmt.Errorf("%w: %s", book.ErrMissingCredential, book.CredentialApplicationID)
	}

	entry, err := p.lookupCached(cache.RakutenTable, isbn, func() (cachedLookup, error) {
		return p.fetch(ctx, isbn, appID)
	})
	if err != nil {
		return book.Candidate{}, err
	}
	return entry.result(book.ErrNoResult)
}

func (p *Rakuten) fetch(ctx context.Context, isbn, appID string) (cachedLookup, error) {
	q := url.Values{}
	q.Set("applicationId", appID)
	q.Set("isbn", isbn)
	endpoint := fmt.Sprintf("%s/services/api/BooksBook/Search/20170404?%s", p.baseURL, q.Encode())

	body, err := p.get(ctx, endpoint)
	if err != nil {
		return cachedLookup{}, err
	}

	var result rakutenResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return cachedLookup{}, fmt.Errorf("decoding response: %w", err)
	}

	items := make([]book.Item, 0, len(result.Items))
	for _, it := range result.Items {
		item := book.Item{Title: it.Item.Title, Publisher: it.Item.PublisherName}
		if it.Item.Author != "" {
			item.Authors = []string{it.Item.Author}
		}
		items = append(items, item)
	}

	if c, ok := book.FirstComplete(items, book.Strict); ok {
		return found(c), nil
	}
	if len(items) == 1 {
		c, _ := book.Extract(items[0])
		return cachedLookup{}, &book.IncompleteError{Missing: c.Missing()}
	}
	return cachedLookup{NotFound: true}, nil
}
