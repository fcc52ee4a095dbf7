package cmd

import (
	"context"
	"time"

	"github.com/lepinkainen/bibly/internal/catalog"
	"github.com/lepinkainen/bibly/internal/enrichment"
	"github.com/lepinkainen/bibly/internal/enrichment/book"
	domainerrors "github.com/lepinkainen/bibly/internal/errors"
	"github.com/lepinkainen/bibly/internal/tui"
)

// LookupCmd groups one subcommand per provider
type LookupCmd struct {
	NDL     LookupNDLCmd     `cmd:"" name:"ndl" help:"Look up in the National Diet Library"`
	Google  LookupGoogleCmd  `cmd:"" help:"Look up in Google Books"`
	Rakuten LookupRakutenCmd `cmd:"" help:"Look up in Rakuten Books"`
	Amazon  LookupAmazonCmd  `cmd:"" help:"Look up in Amazon (not implemented)"`
	All     LookupAllCmd     `cmd:"" help:"Query every provider at once"`
}

// LookupNDLCmd looks up in the National Diet Library
type LookupNDLCmd struct {
	LookupOptions `embed:""`
}

// LookupGoogleCmd looks up in Google Books
type LookupGoogleCmd struct {
	LookupOptions `embed:""`
}

// LookupRakutenCmd looks up in Rakuten Books
type LookupRakutenCmd struct {
	LookupOptions `embed:""`
}

// LookupAmazonCmd looks up in Amazon
type LookupAmazonCmd struct {
	LookupOptions `embed:""`
}

// LookupAllCmd queries every provider
type LookupAllCmd struct {
	LookupOptions `embed:""`
	Pick          bool `help:"Choose the result to save interactively"`
}

func (c *LookupNDLCmd) Run(app *App) error { return c.run(app, enrichment.ProviderNDL) }

func (c *LookupGoogleCmd) Run(app *App) error { return c.run(app, enrichment.ProviderGoogleBooks) }

func (c *LookupRakutenCmd) Run(app *App) error { return c.run(app, enrichment.ProviderRakuten) }

func (c *LookupAmazonCmd) Run(app *App) error { return c.run(app, enrichment.ProviderAmazon) }

// LookupOptions are the arguments every lookup subcommand takes.
type LookupOptions struct {
	ISBN    string        `arg:"" name:"isbn" help:"ISBN-10 or ISBN-13, hyphens allowed"`
	APIKey  string        `name:"api-key" help:"Google Books API key (overrides googlebooks.api_key)"`
	AppID   string        `name:"app-id" help:"Rakuten application id (overrides rakuten.application_id)"`
	Timeout time.Duration `help:"Give up after this long (0 uses lookup.timeout)"`
	Save    bool          `help:"Add the result to the catalog"`
	Genre   *int64        `help:"Genre id for --save"`
}

// lookupFor and pickCandidate are swapped in tests.
var (
	lookupFor = func(app *App) (lookuper, error) {
		return app.Resolver()
	}
	pickCandidate = tui.Select
)

type lookuper interface {
	Lookup(ctx context.Context, provider string, req book.Request) (book.Candidate, error)
	LookupAll(ctx context.Context, req book.Request) []enrichment.Result
}

func (c *LookupOptions) lookupContext() (context.Context, context.CancelFunc) {
	if c.Timeout > 0 {
		return context.WithTimeout(context.Background(), c.Timeout)
	}
	return context.WithCancel(context.Background())
}

func (c *LookupOptions) request() book.Request {
	req := book.Request{ISBN: c.ISBN, Credentials: map[string]string{}}
	if c.APIKey != "" {
		req.Credentials[book.CredentialAPIKey] = c.APIKey
	}
	if c.AppID != "" {
		req.Credentials[book.CredentialApplicationID] = c.AppID
	}
	return req
}

func (c *LookupOptions) run(app *App, provider string) error {
	resolver, err := lookupFor(app)
	if err != nil {
		return err
	}

	ctx, cancel := c.lookupContext()
	defer cancel()

	candidate, err := resolver.Lookup(ctx, provider, c.request())
	if err != nil {
		return err
	}
	if !c.Save {
		return app.print(candidate)
	}
	return c.save(ctx, app, candidate)
}

func (c *LookupOptions) save(ctx context.Context, app *App, candidate book.Candidate) error {
	svc, err := app.Catalog()
	if err != nil {
		return err
	}
	isbn := c.ISBN
	b, err := svc.AddBookFromCandidate(ctx, candidate, catalog.NewBook{ISBN: &isbn, GenreID: c.Genre})
	if err != nil {
		return err
	}
	return app.print(b)
}

// Run prints every provider's answer. With --pick the user chooses a result
// to save; with --save alone the first successful result is saved.
func (c *LookupAllCmd) Run(app *App) error {
	resolver, err := lookupFor(app)
	if err != nil {
		return err
	}

	ctx, cancel := c.lookupContext()
	defer cancel()

	results := resolver.LookupAll(ctx, c.request())

	switch {
	case c.Pick:
		sel, err := pickCandidate(c.ISBN, results)
		if err != nil {
			return err
		}
		if sel.Action != tui.ActionSelected {
			return app.print(message{Message: "nothing saved"})
		}
		return c.save(ctx, app, *sel.Selection)
	case c.Save:
		for _, r := range results {
			if r.OK() {
				return c.save(ctx, app, *r.Candidate)
			}
		}
		return domainerrors.NotFoundf("no provider found ISBN %s", c.ISBN)
	default:
		return app.print(results)
	}
}
