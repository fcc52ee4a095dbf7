package config

import (
	"testing"
	"time"

	"github.com/lepinkainen/bibly/internal/enrichment/book"
	domainerrors "github.com/lepinkainen/bibly/internal/errors"
	"github.com/lepinkainen/bibly/internal/testutil"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	testutil.ResetConfig(t)
	SetDefaults()

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "./data/bibly.sqlite", cfg.Catalog.DBFile)
	assert.Equal(t, "未分類", cfg.Catalog.FallbackGenre)
	assert.Equal(t, 10*time.Second, cfg.Lookup.Timeout)
	assert.InDelta(t, 1.0, cfg.Lookup.RatePerSecond, 1e-9)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, 720*time.Hour, cfg.Cache.TTL)
	assert.Equal(t, "127.0.0.1:8080", cfg.Server.Addr)
	assert.Empty(t, cfg.Credentials())
}

func TestInitReadsConfigFile(t *testing.T) {
	testutil.ResetConfig(t)
	env := testutil.NewTestEnv(t)
	env.WriteFileString("bibly.yaml", `
catalog:
  dbfile: /srv/books.sqlite
lookup:
  timeout: 3s
rakuten:
  application_id: " app-42 "
cache:
  enabled: true
`)

	require.NoError(t, Init(env.Path("bibly.yaml")))
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/srv/books.sqlite", cfg.Catalog.DBFile)
	assert.Equal(t, 3*time.Second, cfg.Lookup.Timeout)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, map[string]map[string]string{
		"rakuten": {book.CredentialApplicationID: "app-42"},
	}, cfg.Credentials())
}

func TestInitMissingDefaultFileIsFine(t *testing.T) {
	testutil.ResetConfig(t)
	env := testutil.NewTestEnv(t)
	env.Chdir(".")

	require.NoError(t, Init(""))
}

func TestInitExplicitMissingFileFails(t *testing.T) {
	testutil.ResetConfig(t)
	env := testutil.NewTestEnv(t)

	require.Error(t, Init(env.Path("nope.yaml")))
}

func TestEnvironmentOverrides(t *testing.T) {
	testutil.ResetConfig(t)
	env := testutil.NewTestEnv(t)
	env.Chdir(".")
	t.Setenv("GOOGLE_BOOKS_API_KEY", "g-key")
	t.Setenv("BIBLY_CATALOG_DBFILE", "/tmp/env.sqlite")

	require.NoError(t, Init(""))
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/env.sqlite", cfg.Catalog.DBFile)
	assert.Equal(t, "g-key", cfg.Credentials()["google"][book.CredentialAPIKey])
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	testutil.ResetConfig(t)
	SetDefaults()
	viper.Set("lookup.rate_per_second", -1)
	viper.Set("catalog.dbfile", " ")

	_, err := Load()
	require.Error(t, err)
	assert.True(t, domainerrors.IsValidation(err))
	assert.Contains(t, err.Error(), "catalog.dbfile")
	assert.Contains(t, err.Error(), "lookup.rate_per_second")
}

func TestWriteDefaultRefusesOverwrite(t *testing.T) {
	testutil.ResetConfig(t)
	env := testutil.NewTestEnv(t)
	SetDefaults()

	path := env.Path("config.yaml")
	require.NoError(t, WriteDefault(path))
	assert.True(t, env.FileExists("config.yaml"))
	require.Error(t, WriteDefault(path))
}
