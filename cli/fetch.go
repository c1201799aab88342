package main

import (
	"context"
	"fmt"

	"github.com/amonks/popgenres/config"
	"github.com/amonks/popgenres/fetcher"
	"github.com/amonks/popgenres/subcmd"
)

func fetch(ctx context.Context, args []string) error {
	subcmd := subcmd.New("fetch", "fetch tracks, genres, and audio features from spotify and write the csv snapshots\nrequires SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET")
	var (
		query = subcmd.String("query", "", "search query (default from config, 'year:2019')")
		total = subcmd.Int("total", 0, "number of tracks to fetch (default from config, 1000)")
	)
	cfg, err := setup(subcmd, args)
	if err != nil {
		return err
	}
	if *query != "" {
		cfg.Fetch.Query = *query
	}
	if *total > 0 {
		cfg.Fetch.Total = *total
	}

	_, err = runFetch(ctx, cfg)
	return err
}

func runFetch(ctx context.Context, cfg *config.Config) (*fetcher.Result, error) {
	spo, err := newSpotify(ctx, cfg)
	if err != nil {
		return nil, err
	}

	f := fetcher.New(spo, fetcher.Options{
		Query:        cfg.Fetch.Query,
		Total:        cfg.Fetch.Total,
		PageSize:     cfg.Fetch.PageSize,
		ResourcesDir: cfg.Output.ResourcesDir,
	})
	result, err := f.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch error: %w", err)
	}
	return result, nil
}
