package main

import (
	"context"
	"fmt"

	"github.com/amonks/popgenres/config"
	"github.com/amonks/popgenres/dataset"
	"github.com/amonks/popgenres/db"
	"github.com/amonks/popgenres/subcmd"
	"github.com/rs/zerolog/log"
)

func load(ctx context.Context, args []string) error {
	subcmd := subcmd.New("load", "load the canonical track extract into the tracks_details table\nrows whose track id is already in the table are skipped")
	var (
		csvPath = subcmd.String("csv", "", "extract to load (default from config, 'Resources/Spotify_Data2019.csv')")
	)
	cfg, err := setup(subcmd, args)
	if err != nil {
		return err
	}
	if *csvPath != "" {
		cfg.Database.SourceCSV = *csvPath
	}

	d, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer d.Close()

	return runLoad(ctx, cfg, d)
}

func runLoad(ctx context.Context, cfg *config.Config, d *db.DB) error {
	details, err := dataset.ReadFile(cfg.Database.SourceCSV, dataset.ReadTrackDetails)
	if err != nil {
		return fmt.Errorf("extract error: %w", err)
	}

	result, err := d.LoadTrackDetails(ctx, details)
	if err != nil {
		return fmt.Errorf("load error: %w", err)
	}
	log.Info().
		Str("csv", cfg.Database.SourceCSV).
		Int("read", result.Read).
		Int("duplicates", result.Duplicates).
		Int("existing", result.Existing).
		Int("inserted", result.Inserted).
		Msg("loaded track details")
	return nil
}
