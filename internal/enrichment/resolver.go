// Package enrichment resolves ISBNs to book metadata through the configured
// providers and reports failures in the shared error taxonomy.
package enrichment

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/lepinkainen/bibly/internal/cache"
	"github.com/lepinkainen/bibly/internal/enrichment/book"
	"github.com/lepinkainen/bibly/internal/enrichment/providers"
	domainerrors "github.com/lepinkainen/bibly/internal/errors"
	"github.com/lepinkainen/bibly/internal/ratelimit"
	"github.com/lepinkainen/bibly/internal/sru"
)

// Provider keys accepted by Resolver.Lookup.
const (
	ProviderNDL         = "ndl"
	ProviderGoogleBooks = "google"
	ProviderRakuten     = "rakuten"
	ProviderAmazon      = "amazon"
)

// preferredOrder ranks the bundled providers for LookupAll output.
var preferredOrder = []string{ProviderNDL, ProviderGoogleBooks, ProviderRakuten, ProviderAmazon}

// Result is one provider's answer in a LookupAll.
type Result struct {
	Provider  string              `json:"provider" yaml:"provider"`
	Candidate *book.Candidate     `json:"candidate,omitempty" yaml:"candidate,omitempty"`
	Error     *domainerrors.Error `json:"error,omitempty" yaml:"error,omitempty"`
}

// OK reports whether the provider produced a candidate.
func (r Result) OK() bool { return r.Candidate != nil }

// Options configures the providers built by NewResolver.
type Options struct {
	// Timeout bounds each HTTP request. Zero keeps the provider default.
	Timeout time.Duration
	// RatePerSecond paces requests per provider. Zero or less disables pacing.
	RatePerSecond float64
	// Cache stores definitive lookup answers. nil disables caching.
	Cache *cache.CacheDB
	// Credentials are merged into requests that do not carry their own,
	// keyed by provider key.
	Credentials map[string]map[string]string
}

// Resolver dispatches lookups to providers. It holds no mutable state and
// is safe for concurrent use.
type Resolver struct {
	providers   map[string]book.Provider
	credentials map[string]map[string]string
}

// NewResolver builds a Resolver over the bundled providers.
func NewResolver(opts Options) *Resolver {
	common := func(key string) []providers.Option {
		o := []providers.Option{
			providers.WithRateLimiter(ratelimit.New(key, opts.RatePerSecond)),
			providers.WithCache(opts.Cache),
		}
		if opts.Timeout > 0 {
			o = append(o, providers.WithTimeout(opts.Timeout))
		}
		return o
	}

	return New(map[string]book.Provider{
		ProviderNDL:         providers.NewNDL(common(ProviderNDL)...),
		ProviderGoogleBooks: providers.NewGoogleBooks(common(ProviderGoogleBooks)...),
		ProviderRakuten:     providers.NewRakuten(common(ProviderRakuten)...),
		ProviderAmazon:      providers.NewAmazon(),
	}, opts.Credentials)
}

// New creates a Resolver over an explicit provider set.
func New(byKey map[string]book.Provider, credentials map[string]map[string]string) *Resolver {
	return &Resolver{providers: byKey, credentials: credentials}
}

// Providers returns the registered provider keys in sorted order.
func (r *Resolver) Providers() []string {
	keys := make([]string, 0, len(r.providers))
	for k := range r.providers {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// LookupNDL resolves req against the National Diet Library.
func (r *Resolver) LookupNDL(ctx context.Context, req book.Request) (book.Candidate, error) {
	return r.Lookup(ctx, ProviderNDL, req)
}

// LookupGoogleBooks resolves req against Google Books.
func (r *Resolver) LookupGoogleBooks(ctx context.Context, req book.Request) (book.Candidate, error) {
	return r.Lookup(ctx, ProviderGoogleBooks, req)
}

// LookupRakuten resolves req against Rakuten Books.
func (r *Resolver) LookupRakuten(ctx context.Context, req book.Request) (book.Candidate, error) {
	return r.Lookup(ctx, ProviderRakuten, req)
}

// LookupAmazon always fails with a not-implemented error.
func (r *Resolver) LookupAmazon(ctx context.Context, req book.Request) (book.Candidate, error) {
	return r.Lookup(ctx, ProviderAmazon, req)
}

// Lookup resolves req with the provider registered under key. Every failure
// is a *errors.Error; lookups are never retried.
func (r *Resolver) Lookup(ctx context.Context, key string, req book.Request) (book.Candidate, error) {
	key = strings.ToLower(strings.TrimSpace(key))
	p, ok := r.providers[key]
	if !ok {
		return book.Candidate{}, domainerrors.Validation("unknown provider " + key).
			WithProvider(key)
	}

	req = r.withCredentials(key, req)

	start := time.Now()
	c, err := p.Lookup(ctx, req)
	if err != nil {
		mapped := classify(p.Name(), err)
		slog.Warn("Lookup failed", "provider", p.Name(), "isbn", req.ISBN,
			"code", mapped.Code, "error", err, "elapsed", time.Since(start))
		return book.Candidate{}, mapped
	}

	slog.Info("Lookup succeeded", "provider", p.Name(), "isbn", req.ISBN, "title", c.Title,
		"elapsed", time.Since(start))
	return c, nil
}

// LookupAll queries every registered provider concurrently and returns one
// Result per provider: the bundled providers first in a fixed order, then
// any others sorted by key. A failing provider does not affect the others.
func (r *Resolver) LookupAll(ctx context.Context, req book.Request) []Result {
	keys := r.orderedKeys()
	results := make([]Result, len(keys))

	var wg sync.WaitGroup
	for i, key := range keys {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = Result{Provider: key}
			c, err := r.Lookup(ctx, key, req)
			if err != nil {
				var mapped *domainerrors.Error
				if !errors.As(err, &mapped) {
					mapped = classify(key, err)
				}
				results[i].Error = mapped
				return
			}
			results[i].Candidate = &c
		}()
	}
	wg.Wait()

	return results
}

func (r *Resolver) orderedKeys() []string {
	keys := make([]string, 0, len(r.providers))
	seen := make(map[string]bool, len(preferredOrder))
	for _, k := range preferredOrder {
		if _, ok := r.providers[k]; ok {
			keys = append(keys, k)
			seen[k] = true
		}
	}
	for _, k := range r.Providers() {
		if !seen[k] {
			keys = append(keys, k)
		}
	}
	return keys
}

// withCredentials fills credentials the request leaves blank from the
// configured defaults. The caller's map is never modified.
func (r *Resolver) withCredentials(key string, req book.Request) book.Request {
	defaults := r.credentials[key]
	if len(defaults) == 0 {
		return req
	}
	merged := make(map[string]string, len(defaults)+len(req.Credentials))
	for k, v := range defaults {
		merged[k] = v
	}
	for k, v := range req.Credentials {
		if strings.TrimSpace(v) != "" {
			merged[k] = v
		}
	}
	req.Credentials = merged
	return req
}

// classify maps a provider failure onto the error taxonomy.
func classify(provider string, err error) *domainerrors.Error {
	var (
		domainErr  *domainerrors.Error
		incomplete *book.IncompleteError
		record     *sru.IncompleteRecordError
	)
	switch {
	case errors.As(err, &domainErr):
		if domainErr.Provider == "" {
			return domainErr.WithProvider(provider)
		}
		return domainErr
	case errors.Is(err, book.ErrInvalidISBN), errors.Is(err, book.ErrMissingCredential):
		return domainerrors.Validation(err.Error()).WithProvider(provider)
	case errors.Is(err, book.ErrNoResult), errors.Is(err, sru.ErrRecordNotFound):
		return domainerrors.NotFound(book.ErrNoResult.Error()).WithProvider(provider)
	case errors.As(err, &incomplete):
		return domainerrors.IncompleteData(provider, incomplete.Missing)
	case errors.As(err, &record):
		return domainerrors.IncompleteData(provider, record.Missing)
	case errors.Is(err, book.ErrNotImplemented):
		return domainerrors.NotImplemented(provider)
	default:
		return domainerrors.Transport(provider, err)
	}
}
