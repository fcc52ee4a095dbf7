package providers

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/lepinkainen/bibly/internal/cache"
	"github.com/lepinkainen/bibly/internal/enrichment/book"
	domainerrors "github.com/lepinkainen/bibly/internal/errors"
)

// get issues one GET to endpoint and returns the body of a 2xx response.
func (c *client) get(ctx context.Context, endpoint string) ([]byte, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, domainerrors.NewStatusError(resp)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPayloadBytes))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	return body, nil
}

// normalizeISBN trims the ISBN and strips hyphens and inner spaces. It
// returns book.ErrInvalidISBN for blank input.
func normalizeISBN(isbn string) (string, error) {
	normalized := strings.TrimSpace(isbn)
	normalized = strings.ReplaceAll(normalized, "-", "")
	normalized = strings.ReplaceAll(normalized, " ", "")
	if normalized == "" {
		return "", book.ErrInvalidISBN
	}
	return normalized, nil
}

// cachedLookup is what providers store in the lookup cache. Only definitive
// answers are cached: a candidate, or the absence of any record.
type cachedLookup struct {
	Candidate *book.Candidate `json:"candidate,omitempty"`
	NotFound  bool            `json:"not_found"`
}

// result converts a cached entry back into a lookup outcome, reporting an
// absent record as notFound.
func (r cachedLookup) result(notFound error) (book.Candidate, error) {
	if r.NotFound || r.Candidate == nil {
		return book.Candidate{}, notFound
	}
	return *r.Candidate, nil
}

func found(c book.Candidate) cachedLookup {
	return cachedLookup{Candidate: &c}
}

// lookupCached runs fetch through the provider's lookup cache, if any.
func (c *client) lookupCached(table, isbn string, fetch cache.FetchFunc[cachedLookup]) (cachedLookup, error) {
	entry, fromCache, err := cache.GetOrFetch(c.cache, table, isbn, fetch,
		cache.SelectNegativeCacheTTL(c.cache, func(r cachedLookup) bool { return r.NotFound }))
	if err != nil {
		return cachedLookup{}, err
	}
	if fromCache {
		slog.Debug("Lookup served from cache", "provider", c.name, "isbn", isbn)
	}
	return entry, nil
}
