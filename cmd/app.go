package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/lepinkainen/bibly/internal/cache"
	"github.com/lepinkainen/bibly/internal/catalog"
	"github.com/lepinkainen/bibly/internal/config"
	"github.com/lepinkainen/bibly/internal/datastore"
	"github.com/lepinkainen/bibly/internal/enrichment"
)

// App is what every command's Run receives. Databases are opened on first
// use so commands that need neither start without touching the disk.
type App struct {
	out    io.Writer
	format string

	cfg     *config.Config
	service *catalog.Service
	closers []func() error
}

func newApp(out io.Writer, format string) *App {
	return &App{out: out, format: format}
}

// Config returns the validated configuration, loading it once.
func (a *App) Config() (config.Config, error) {
	if a.cfg == nil {
		cfg, err := config.Load()
		if err != nil {
			return config.Config{}, err
		}
		a.cfg = &cfg
	}
	return *a.cfg, nil
}

// Catalog opens the catalog database and returns the service over it.
func (a *App) Catalog() (*catalog.Service, error) {
	if a.service != nil {
		return a.service, nil
	}
	cfg, err := a.Config()
	if err != nil {
		return nil, err
	}

	ds, err := datastore.Open(cfg.Catalog.DBFile)
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}
	a.closers = append(a.closers, ds.Close)

	store := catalog.NewStore(ds.DB(), catalog.WithFallbackGenre(cfg.Catalog.FallbackGenre))
	a.service = catalog.NewService(store)
	return a.service, nil
}

// Resolver builds the lookup resolver, opening the cache when enabled.
func (a *App) Resolver() (*enrichment.Resolver, error) {
	cfg, err := a.Config()
	if err != nil {
		return nil, err
	}

	opts := enrichment.Options{
		Timeout:       cfg.Lookup.Timeout,
		RatePerSecond: cfg.Lookup.RatePerSecond,
		Credentials:   cfg.Credentials(),
	}
	if cfg.Cache.Enabled {
		if err := datastore.EnsureDir(cfg.Cache.DBFile); err != nil {
			return nil, err
		}
		cacheDB, err := cache.NewCacheDB(cfg.Cache.DBFile, cfg.Cache.TTL)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, cacheDB.Close)
		opts.Cache = cacheDB
	}
	return enrichment.NewResolver(opts), nil
}

// Close releases every opened database. It is safe to call twice.
func (a *App) Close() {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	a.service = nil
	if err := errors.Join(errs...); err != nil {
		slog.Warn("Failed to close database", "error", err)
	}
}

// print renders v in the selected output format.
func (a *App) print(v any) error {
	return render(a.out, a.format, v)
}
