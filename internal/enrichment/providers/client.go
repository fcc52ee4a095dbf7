// Package providers implements book.Provider for the supported metadata
// sources: the National Diet Library SRU API, Google Books, Rakuten Books and
// a placeholder for Amazon Product Advertising.
package providers

import (
	"net/http"
	"strings"
	"time"

	"github.com/lepinkainen/bibly/internal/cache"
	"github.com/lepinkainen/bibly/internal/ratelimit"
)

const (
	defaultTimeout       = 10 * time.Second
	defaultRatePerSecond = 1
	maxPayloadBytes      = 4 << 20
)

// HTTPDoer is an interface for making HTTP requests.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// client holds what every HTTP-backed provider shares.
type client struct {
	name        string
	baseURL     string
	httpClient  HTTPDoer
	rateLimiter *ratelimit.Limiter
	cache       *cache.CacheDB
}

func newClient(name, baseURL string, opts []Option) client {
	c := client{
		name:        name,
		baseURL:     baseURL,
		httpClient:  &http.Client{Timeout: defaultTimeout},
		rateLimiter: ratelimit.New(name, defaultRatePerSecond),
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Option is a functional option for configuring a provider.
type Option func(*client)

// WithHTTPClient sets a custom HTTP client. The caller owns its timeout.
func WithHTTPClient(c HTTPDoer) Option {
	return func(cl *client) {
		if c != nil {
			cl.httpClient = c
		}
	}
}

// WithTimeout replaces the HTTP client with one bounded by d.
func WithTimeout(d time.Duration) Option {
	return func(cl *client) {
		if d > 0 {
			cl.httpClient = &http.Client{Timeout: d}
		}
	}
}

// WithBaseURL sets a custom base URL, mainly for tests.
func WithBaseURL(base string) Option {
	return func(cl *client) {
		if base != "" {
			cl.baseURL = strings.TrimSuffix(base, "/")
		}
	}
}

// WithRateLimiter sets a custom rate limiter. nil disables pacing.
func WithRateLimiter(limiter *ratelimit.Limiter) Option {
	return func(cl *client) {
		cl.rateLimiter = limiter
	}
}

// WithCache stores lookup results in c. nil disables caching.
func WithCache(c *cache.CacheDB) Option {
	return func(cl *client) {
		cl.cache = c
	}
}
