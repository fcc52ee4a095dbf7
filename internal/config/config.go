// Package config loads bibly settings from config.yaml, environment variables
// and command-line overrides through viper.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lepinkainen/bibly/internal/enrichment/book"
	"github.com/lepinkainen/bibly/internal/validation"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every automatically bound environment variable, so
// catalog.dbfile is read from BIBLY_CATALOG_DBFILE.
const EnvPrefix = "BIBLY"

// Config is the typed view of the viper settings.
type Config struct {
	Catalog     CatalogConfig
	Lookup      LookupConfig
	GoogleBooks GoogleBooksConfig
	Rakuten     RakutenConfig
	Amazon      AmazonConfig
	Cache       CacheConfig
	Server      ServerConfig
}

// CatalogConfig locates the catalog database.
type CatalogConfig struct {
	DBFile        string `json:"catalog.dbfile" validate:"notblank"`
	FallbackGenre string `json:"catalog.fallback_genre" validate:"notblank"`
}

// LookupConfig bounds provider requests.
type LookupConfig struct {
	Timeout       time.Duration `json:"lookup.timeout" validate:"gt=0"`
	RatePerSecond float64       `json:"lookup.rate_per_second" validate:"gte=0"`
}

// GoogleBooksConfig holds the optional Google Books API key.
type GoogleBooksConfig struct {
	APIKey string
}

// RakutenConfig holds the Rakuten Web Service application id.
type RakutenConfig struct {
	ApplicationID string
}

// AmazonConfig holds Product Advertising API credentials. They are
// accepted and passed along, but no request is ever signed with them.
type AmazonConfig struct {
	AccessKey    string
	SecretKey    string
	AssociateTag string
}

// CacheConfig controls the optional lookup cache.
type CacheConfig struct {
	Enabled bool
	DBFile  string        `json:"cache.dbfile" validate:"required_if=Enabled true"`
	TTL     time.Duration `json:"cache.ttl" validate:"gte=0"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr        string `json:"server.addr" validate:"notblank"`
	CORSOrigins []string
}

// SetDefaults registers the default value of every key.
func SetDefaults() {
	viper.SetDefault("catalog.dbfile", "./data/bibly.sqlite")
	viper.SetDefault("catalog.fallback_genre", "未分類")

	viper.SetDefault("lookup.timeout", "10s")
	viper.SetDefault("lookup.rate_per_second", 1.0)

	viper.SetDefault("googlebooks.api_key", "")
	viper.SetDefault("rakuten.application_id", "")
	viper.SetDefault("amazon.access_key", "")
	viper.SetDefault("amazon.secret_key", "")
	viper.SetDefault("amazon.associate_tag", "")

	// Off by default so a lookup is always one request
	viper.SetDefault("cache.enabled", false)
	viper.SetDefault("cache.dbfile", "./data/cache.sqlite")
	viper.SetDefault("cache.ttl", "720h")

	viper.SetDefault("server.addr", "127.0.0.1:8080")
	viper.SetDefault("server.cors_origins", []string{"http://localhost:1420", "tauri://localhost"})
}

// Init sets defaults, binds environment variables and reads configFile, or
// config.yaml in the working directory when configFile is empty. A missing
// default config file is not an error.
func Init(configFile string) error {
	SetDefaults()

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	// Bind the names the provider consoles use
	if err := viper.BindEnv("googlebooks.api_key", "GOOGLE_BOOKS_API_KEY"); err != nil {
		return fmt.Errorf("bind environment: %w", err)
	}
	if err := viper.BindEnv("rakuten.application_id", "RAKUTEN_APPLICATION_ID"); err != nil {
		return fmt.Errorf("bind environment: %w", err)
	}

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile == "" && errors.As(err, &notFound) {
			slog.Debug("Config file not found, using defaults and environment")
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}

	slog.Debug("Config loaded", "file", viper.ConfigFileUsed())
	return nil
}

// Load reads the current viper settings into a Config and validates it.
func Load() (Config, error) {
	cfg := Config{
		Catalog: CatalogConfig{
			DBFile:        viper.GetString("catalog.dbfile"),
			FallbackGenre: viper.GetString("catalog.fallback_genre"),
		},
		Lookup: LookupConfig{
			Timeout:       viper.GetDuration("lookup.timeout"),
			RatePerSecond: viper.GetFloat64("lookup.rate_per_second"),
		},
		GoogleBooks: GoogleBooksConfig{
			APIKey: strings.TrimSpace(viper.GetString("googlebooks.api_key")),
		},
		Rakuten: RakutenConfig{
			ApplicationID: strings.TrimSpace(viper.GetString("rakuten.application_id")),
		},
		Amazon: AmazonConfig{
			AccessKey:    viper.GetString("amazon.access_key"),
			SecretKey:    viper.GetString("amazon.secret_key"),
			AssociateTag: viper.GetString("amazon.associate_tag"),
		},
		Cache: CacheConfig{
			Enabled: viper.GetBool("cache.enabled"),
			DBFile:  viper.GetString("cache.dbfile"),
			TTL:     viper.GetDuration("cache.ttl"),
		},
		Server: ServerConfig{
			Addr:        viper.GetString("server.addr"),
			CORSOrigins: viper.GetStringSlice("server.cors_origins"),
		},
	}

	if err := validation.New().Validate(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Credentials returns the per-provider credentials keyed the way the lookup
// resolver expects. Blank values are left out.
func (c Config) Credentials() map[string]map[string]string {
	creds := map[string]map[string]string{}
	put := func(provider, key, value string) {
		if value = strings.TrimSpace(value); value == "" {
			return
		}
		if creds[provider] == nil {
			creds[provider] = map[string]string{}
		}
		creds[provider][key] = value
	}

	put("google", book.CredentialAPIKey, c.GoogleBooks.APIKey)
	put("rakuten", book.CredentialApplicationID, c.Rakuten.ApplicationID)
	put("amazon", book.CredentialAccessKey, c.Amazon.AccessKey)
	put("amazon", book.CredentialSecretKey, c.Amazon.SecretKey)
	put("amazon", book.CredentialAssociateTag, c.Amazon.AssociateTag)
	return creds
}

// WriteDefault writes the current settings to path, refusing to overwrite
// an existing file.
func WriteDefault(path string) error {
	if err := viper.SafeWriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
