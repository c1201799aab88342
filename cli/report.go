package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/amonks/popgenres/config"
	"github.com/amonks/popgenres/dataset"
	"github.com/amonks/popgenres/db"
	"github.com/amonks/popgenres/report"
	"github.com/amonks/popgenres/setflag"
	"github.com/amonks/popgenres/subcmd"
	"github.com/rs/zerolog/log"
)

func chartsFlag(sc *subcmd.Subcommand) *setflag.SetFlag {
	charts := setflag.New(report.Charts()...)
	sc.Var(charts, "charts", "comma-separated charts to draw, from "+strings.Join(report.Charts(), ", ")+" (default all)")
	return charts
}

func draw(ctx context.Context, args []string) error {
	subcmd := subcmd.New("report", "draw the charts from the csv snapshots and the tracks_details table")
	charts := chartsFlag(subcmd)
	cfg, err := setup(subcmd, args)
	if err != nil {
		return err
	}

	d, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer d.Close()

	in, err := readSnapshots(cfg)
	if err != nil {
		return err
	}
	return runReport(ctx, cfg, d, in, charts.List())
}

// readSnapshots reads the csv snapshots a fetch left behind. A missing
// snapshot leaves its charts empty.
func readSnapshots(cfg *config.Config) (report.Input, error) {
	in := report.Input{}

	rows, err := dataset.ReadFile(filepath.Join(cfg.Output.ResourcesDir, dataset.FeaturesFile), dataset.ReadRows)
	if errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Msg("no features snapshot; run fetch first")
	} else if err != nil {
		return in, err
	}
	in.Rows = rows

	genreRows, err := dataset.ReadFile(filepath.Join(cfg.Output.ResourcesDir, dataset.GenresFile), dataset.ReadGenreRows)
	if errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Msg("no genre snapshot; run fetch first")
	} else if err != nil {
		return in, err
	}
	in.GenreRows = genreRows

	return in, nil
}

func runReport(ctx context.Context, cfg *config.Config, d *db.DB, in report.Input, charts []string) error {
	details, err := d.TrackDetails(ctx)
	if err != nil {
		return err
	}
	in.Details = details
	in.Label = cfg.Fetch.Label
	in.TopGenres = cfg.Fetch.TopGenres

	written, err := report.New(cfg.Output.ImagesDir).Render(ctx, in, charts)
	log.Info().
		Int("files", len(written)).
		Str("dir", cfg.Output.ImagesDir).
		Msg("rendered report")
	if err != nil {
		return fmt.Errorf("report error: %w", err)
	}
	return nil
}
