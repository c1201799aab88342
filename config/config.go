// Package config loads the pipeline's settings from defaults, an optional
// YAML file, and the environment, in increasing order of priority.
package config

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

type Config struct {
	Spotify  SpotifyConfig  `koanf:"spotify"`
	Fetch    FetchConfig    `koanf:"fetch"`
	Database DatabaseConfig `koanf:"database"`
	Output   OutputConfig   `koanf:"output"`
	Log      LogConfig      `koanf:"log"`
}

type SpotifyConfig struct {
	ClientID     string `koanf:"client_id"`
	ClientSecret string `koanf:"client_secret"`

	BaseURL  string `koanf:"base_url"`
	TokenURL string `koanf:"token_url"`

	MaxRetries      int           `koanf:"max_retries"`
	RetryBackoff    time.Duration `koanf:"retry_backoff"`
	RequestDelay    time.Duration `koanf:"request_delay"`
	BreakerFailures uint32        `koanf:"breaker_failures"`

	// CacheDir, if set, keeps every successful response on disk.
	CacheDir string `koanf:"cache_dir"`

	// LimiterFile holds a Retry-After pause between runs. Empty keeps it
	// in memory only.
	LimiterFile string `koanf:"limiter_file"`
}

type FetchConfig struct {
	Query     string `koanf:"query"`
	Label     string `koanf:"label"`
	Total     int    `koanf:"total"`
	PageSize  int    `koanf:"page_size"`
	TopGenres int    `koanf:"top_genres"`
}

type DatabaseConfig struct {
	Driver string `koanf:"driver"`
	DSN    string `koanf:"dsn"`

	// SourceCSV is the canonical extract loaded into tracks_details.
	SourceCSV string `koanf:"source_csv"`
}

type OutputConfig struct {
	ResourcesDir string `koanf:"resources_dir"`
	ImagesDir    string `koanf:"images_dir"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// MaxPageSize is the largest page the search endpoint serves.
const MaxPageSize = 50

var (
	drivers    = []string{"sqlite", "postgres"}
	logLevels  = []string{"trace", "debug", "info", "warn", "error"}
	logFormats = []string{"console", "json"}
)

// ErrNoCredentials is returned by RequireCredentials.
var ErrNoCredentials = errors.New("must set SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET")

func Default() *Config {
	return &Config{
		Spotify: SpotifyConfig{
			BaseURL:         "https://api.spotify.com/v1",
			TokenURL:        "https://accounts.spotify.com/api/token",
			MaxRetries:      3,
			RetryBackoff:    500 * time.Millisecond,
			RequestDelay:    100 * time.Millisecond,
			BreakerFailures: 5,
			LimiterFile:     "next-req",
		},
		Fetch: FetchConfig{
			Query:     "year:2019",
			Label:     "2019",
			Total:     1000,
			PageSize:  50,
			TopGenres: 20,
		},
		Database: DatabaseConfig{
			Driver:    "sqlite",
			DSN:       "spotify.db",
			SourceCSV: "Resources/Spotify_Data2019.csv",
		},
		Output: OutputConfig{
			ResourcesDir: "Resources",
			ImagesDir:    "Images",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Validate checks everything but the Spotify credentials, which only
// commands that call the API need.
func (cfg *Config) Validate() error {
	var errs []error
	if cfg.Fetch.Total <= 0 {
		errs = append(errs, fmt.Errorf("fetch.total must be positive, got %d", cfg.Fetch.Total))
	}
	if cfg.Fetch.PageSize < 1 || cfg.Fetch.PageSize > MaxPageSize {
		errs = append(errs, fmt.Errorf("fetch.page_size must be between 1 and %d, got %d", MaxPageSize, cfg.Fetch.PageSize))
	}
	if cfg.Fetch.TopGenres <= 0 {
		errs = append(errs, fmt.Errorf("fetch.top_genres must be positive, got %d", cfg.Fetch.TopGenres))
	}
	if cfg.Fetch.Query == "" {
		errs = append(errs, errors.New("fetch.query must be set"))
	}
	if cfg.Spotify.MaxRetries < 1 {
		errs = append(errs, fmt.Errorf("spotify.max_retries must be at least 1, got %d", cfg.Spotify.MaxRetries))
	}
	if cfg.Spotify.RetryBackoff < 0 || cfg.Spotify.RequestDelay < 0 {
		errs = append(errs, errors.New("spotify durations can't be negative"))
	}
	if !slices.Contains(drivers, cfg.Database.Driver) {
		errs = append(errs, fmt.Errorf("database.driver must be one of %v, got '%s'", drivers, cfg.Database.Driver))
	}
	if cfg.Database.DSN == "" {
		errs = append(errs, errors.New("database.dsn must be set"))
	}
	if !slices.Contains(logLevels, cfg.Log.Level) {
		errs = append(errs, fmt.Errorf("log.level must be one of %v, got '%s'", logLevels, cfg.Log.Level))
	}
	if !slices.Contains(logFormats, cfg.Log.Format) {
		errs = append(errs, fmt.Errorf("log.format must be one of %v, got '%s'", logFormats, cfg.Log.Format))
	}
	return errors.Join(errs...)
}

func (cfg *Config) RequireCredentials() error {
	if cfg.Spotify.ClientID == "" || cfg.Spotify.ClientSecret == "" {
		return ErrNoCredentials
	}
	return nil
}
