package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/amonks/popgenres/dataset"
	"github.com/amonks/popgenres/subcmd"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func summary(ctx context.Context, args []string) error {
	subcmd := subcmd.New("summary", "summarize the csv snapshots and the tracks_details table")
	var (
		top = subcmd.Int("top", 10, "number of genres to list")
	)
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
	stored, err := d.CountTrackDetails(ctx)
	if err != nil {
		return err
	}

	withFeatures := len(dataset.WithFeatures(in.Rows))
	stats := dataset.AggregateGenres(in.GenreRows)

	printSection("tracks", len(in.Rows), cfg.Fetch.Total, []count{
		{"with audio features", withFeatures},
		{"without audio features", len(in.Rows) - withFeatures},
	})
	printSection("genre rows", len(in.GenreRows), 0, []count{
		{"distinct genres", len(stats)},
	})
	printSection("tracks_details", stored, 0, nil)

	if len(stats) == 0 {
		return nil
	}

	humanPrinter.Printf("%s\n", strings.ToUpper("top genres"))
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "  %s\n", strings.Join([]string{"genre", "tracks", "mean popularity"}, "\t"))
	for _, stat := range dataset.TopGenres(stats, *top) {
		fmt.Fprintf(tw, "  %s\n", strings.Join([]string{
			stat.Genre,
			humanPrinter.Sprintf("%d", stat.Count),
			humanPrinter.Sprintf("%.1f", stat.MeanPopularity),
		}, "\t"))
	}
	return tw.Flush()
}

var humanPrinter = message.NewPrinter(language.English)

type count struct {
	name string
	n    int
}

func printSection(name string, known, target int, counts []count) {
	humanPrinter.Printf("%s\n", strings.ToUpper(name))
	if target != 0 {
		humanPrinter.Printf("  %d\tknown (%.2f%% of %d)\n", known, 100.0*float64(known)/float64(target), target)
	} else {
		humanPrinter.Printf("  %d\tknown\n", known)
	}
	for _, c := range counts {
		if known == 0 {
			humanPrinter.Printf("  %d\t%s\n", c.n, c.name)
			continue
		}
		humanPrinter.Printf("  %d\t%s (%.2f%%)\n", c.n, c.name, 100.0*float64(c.n)/float64(known))
	}
	humanPrinter.Printf("\n")
}
