package main

import (
	"context"

	"github.com/amonks/popgenres/report"
	"github.com/amonks/popgenres/subcmd"
)

// pipeline runs fetch, load, and report in order. The charts are drawn
// from what was just fetched, and only after both the snapshots and the
// table are written.
func pipeline(ctx context.Context, args []string) error {
	subcmd := subcmd.New("run", "fetch, load, and report in one go\nrequires SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET")
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

	result, err := runFetch(ctx, cfg)
	if err != nil {
		return err
	}

	if err := runLoad(ctx, cfg, d); err != nil {
		return err
	}

	return runReport(ctx, cfg, d, report.Input{
		Rows:      result.Rows,
		GenreRows: result.GenreRows,
	}, charts.List())
}
