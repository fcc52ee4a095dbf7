package cmd

import (
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/lepinkainen/bibly/internal/cache"
	"github.com/lepinkainen/bibly/internal/config"
	"github.com/lepinkainen/humanlog"
	"github.com/spf13/viper"
)

// CLI represents the complete command structure for the bibly application
type CLI struct {
	// Global flags
	Config  string `help:"Path to config file (defaults to ./config.yaml)" type:"path"`
	DB      string `help:"Path to the catalog SQLite database (overrides catalog.dbfile)"`
	Verbose bool   `short:"v" help:"Enable debug logging"`
	Format  string `help:"Output format" enum:"text,json,yaml" default:"text"`

	Genre      GenreCmd      `cmd:"" help:"Manage genres"`
	Book       BookCmd       `cmd:"" help:"Manage books"`
	Lookup     LookupCmd     `cmd:"" help:"Look up book metadata by ISBN"`
	Serve      ServeCmd      `cmd:"" help:"Serve the catalog and lookups over HTTP"`
	InitConfig InitConfigCmd `cmd:"" name:"init-config" help:"Write a config file with the default settings"`
	Cache      CacheCmd      `cmd:"" help:"Manage the lookup cache"`
}

// CacheCmd groups the cache subcommands
type CacheCmd struct {
	Clear cache.InvalidateCacheCmd `cmd:"" help:"Remove every cached lookup for one provider"`
}

var exit = os.Exit

// Execute runs the Kong-based CLI
func Execute() {
	var cli CLI

	// Parse command line with Kong
	ctx := kong.Parse(&cli,
		kong.Name("bibly"),
		kong.Description("Look up books by ISBN and keep a local catalog of them."),
		kong.UsageOnError(),
	)

	initLogging(os.Stderr, cli.Verbose)
	if err := initConfig(&cli); err != nil {
		slog.Error("Configuration failed", "error", err)
		exit(1)
		return
	}

	app := newApp(os.Stdout, cli.Format)
	defer app.Close()

	// Execute the selected command
	if err := ctx.Run(app); err != nil {
		slog.Error("Command failed", "error", err)
		app.Close()
		exit(1)
	}
}

// initConfig loads the config file and environment, then applies the global
// flags on top.
func initConfig(cli *CLI) error {
	if err := config.Init(cli.Config); err != nil {
		return err
	}
	updateGlobalConfig(cli)
	return nil
}

func updateGlobalConfig(cli *CLI) {
	if cli.DB != "" {
		viper.Set("catalog.dbfile", cli.DB)
	}
}

func initLogging(w io.Writer, verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	// Create a human-readable handler for logging
	handler := humanlog.NewHandler(w, &humanlog.Options{
		Level: level,
	})

	// Set the default logger
	slog.SetDefault(slog.New(handler))
}
