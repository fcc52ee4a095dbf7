package cache

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/spf13/viper"
)

// InvalidateCacheCmd represents the cache clear subcommand
type InvalidateCacheCmd struct {
	Source string `arg:"" help:"Cache source to invalidate: ndl, google, rakuten" required:""`
}

func (i *InvalidateCacheCmd) Run() error {
	tableName, ok := SourceTables[i.Source]
	if !ok {
		sources := make([]string, 0, len(SourceTables))
		for s := range SourceTables {
			sources = append(sources, s)
		}
		slices.Sort(sources)
		return fmt.Errorf("invalid cache source '%s'; valid sources are: %s", i.Source, strings.Join(sources, ", "))
	}

	dbPath := viper.GetString("cache.dbfile")
	slog.Info("Invalidating cache", "source", i.Source, "database", dbPath)

	cacheDB, err := NewCacheDB(dbPath, 0)
	if err != nil {
		return fmt.Errorf("failed to open cache database: %w", err)
	}
	defer func() { _ = cacheDB.Close() }()

	rowsDeleted, err := cacheDB.InvalidateSource(tableName)
	if err != nil {
		return fmt.Errorf("failed to invalidate cache: %w", err)
	}

	slog.Info("Cache invalidated", "source", i.Source, "rows_deleted", rowsDeleted)
	return nil
}
