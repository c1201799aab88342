package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/amonks/popgenres/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate runs the test in an empty directory with none of our variables
// set.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	for _, name := range []string{
		"SPOTIFY_CLIENT_ID", "SPOTIFY_CLIENT_SECRET", "DATABASE_URL", config.PathEnvVar,
	} {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
	return dir
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
	assert.Equal(t, "year:2019", cfg.Fetch.Query)
	assert.Equal(t, 1000, cfg.Fetch.Total)
	assert.Equal(t, 100*time.Millisecond, cfg.Spotify.RequestDelay)
	assert.ErrorIs(t, cfg.RequireCredentials(), config.ErrNoCredentials)
}

func TestLoadLayers(t *testing.T) {
	dir := isolate(t)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "custom.yaml"), []byte(`
fetch:
  query: "year:2020"
  label: "2020"
  page_size: 25
spotify:
  retry_backoff: 2s
database:
  dsn: from-file.db
log:
  format: json
`), 0644))
	t.Setenv("POPGENRES_FETCH_PAGE_SIZE", "10")
	t.Setenv("POPGENRES_SPOTIFY_CACHE_DIR", "cache")
	t.Setenv("SPOTIFY_CLIENT_ID", "id")
	t.Setenv("SPOTIFY_CLIENT_SECRET", "secret")
	t.Setenv("DATABASE_URL", "postgres://localhost/spotify_db")
	t.Setenv("POPGENRES_DATABASE_DRIVER", "postgres")

	cfg, err := config.Load(filepath.Join(dir, "custom.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "year:2020", cfg.Fetch.Query)
	assert.Equal(t, "2020", cfg.Fetch.Label)
	assert.Equal(t, 10, cfg.Fetch.PageSize, "env beats file")
	assert.Equal(t, 1000, cfg.Fetch.Total, "defaults fill the rest")
	assert.Equal(t, 2*time.Second, cfg.Spotify.RetryBackoff)
	assert.Equal(t, "cache", cfg.Spotify.CacheDir)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "postgres://localhost/spotify_db", cfg.Database.DSN)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.NoError(t, cfg.RequireCredentials())
}

func TestLoadFindsDefaultFile(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "popgenres.yaml"), []byte("fetch:\n  total: 200\n"), 0644))

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, 200, cfg.Fetch.Total)
}

func TestLoadDotenv(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("SPOTIFY_CLIENT_ID=from-dotenv\nSPOTIFY_CLIENT_SECRET=shh\n"), 0644))
	t.Cleanup(func() {
		os.Unsetenv("SPOTIFY_CLIENT_ID")
		os.Unsetenv("SPOTIFY_CLIENT_SECRET")
	})

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.Spotify.ClientID)
	assert.Equal(t, "shh", cfg.Spotify.ClientSecret)
}

func TestLoadMissingFile(t *testing.T) {
	dir := isolate(t)
	_, err := config.Load(filepath.Join(dir, "nope.yaml"))
	assert.ErrorContains(t, err, "nope.yaml")
}

func TestLoadInvalid(t *testing.T) {
	isolate(t)
	t.Setenv("POPGENRES_FETCH_PAGE_SIZE", "51")
	_, err := config.Load("")
	assert.ErrorContains(t, err, "page_size")
}

func TestValidate(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, cfg.Validate())

	cfg.Fetch.Total = 0
	cfg.Fetch.PageSize = 0
	cfg.Database.Driver = "mysql"
	cfg.Log.Level = "loud"
	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"fetch.total", "fetch.page_size", "database.driver", "log.level"} {
		assert.ErrorContains(t, err, want)
	}
}
