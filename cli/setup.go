package main

import (
	"context"
	"fmt"
	"os"

	"github.com/amonks/popgenres/config"
	"github.com/amonks/popgenres/db"
	"github.com/amonks/popgenres/limiter"
	"github.com/amonks/popgenres/logging"
	"github.com/amonks/popgenres/readthrough"
	"github.com/amonks/popgenres/spotify"
	"github.com/amonks/popgenres/subcmd"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// setup parses a subcommand's flags, loads the config it names, and starts
// logging.
func setup(sc *subcmd.Subcommand, args []string) (*config.Config, error) {
	if err := sc.Parse(args); err != nil {
		return nil, fmt.Errorf("flag parsing err: %w", err)
	}

	cfg, err := config.Load(*sc.ConfigPath)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	if err := logging.Init(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stderr,
		RunID:  runID,
	}); err != nil {
		return nil, err
	}
	log.Debug().Str("cmd", sc.Name()).Msg("starting")

	return cfg, nil
}

func newSpotify(ctx context.Context, cfg *config.Config) (*spotify.Client, error) {
	if err := cfg.RequireCredentials(); err != nil {
		return nil, err
	}

	lim := limiter.New(cfg.Spotify.LimiterFile, cfg.Spotify.RequestDelay)
	if err := lim.Load(); err != nil {
		return nil, err
	}
	if next := lim.NextAt(); !next.IsZero() {
		log.Info().Time("until", next).Msg("resuming a rate limit pause from a previous run")
	}

	var cache *readthrough.ReadThrough
	if cfg.Spotify.CacheDir != "" {
		cache = readthrough.New(cfg.Spotify.CacheDir, "spotify-")
	}

	return spotify.New(ctx, spotify.Config{
		ClientID:        cfg.Spotify.ClientID,
		ClientSecret:    cfg.Spotify.ClientSecret,
		BaseURL:         cfg.Spotify.BaseURL,
		TokenURL:        cfg.Spotify.TokenURL,
		MaxRetries:      cfg.Spotify.MaxRetries,
		RetryBackoff:    cfg.Spotify.RetryBackoff,
		BreakerFailures: cfg.Spotify.BreakerFailures,
		Limiter:         lim,
		Cache:           cache,
	}), nil
}

func openDB(cfg *config.Config) (*db.DB, error) {
	d, err := db.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("driver", cfg.Database.Driver).Msg("opened database")
	return d, nil
}
