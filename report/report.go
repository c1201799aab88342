// Package report renders the dataset's charts as PNG files, along with an
// index.html page that shows them all.
package report

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/amonks/popgenres/data"
	"github.com/amonks/popgenres/dataset"
	"github.com/rs/zerolog/log"
)

// ErrNoData is returned for a chart whose input is empty. Render skips such
// charts.
var ErrNoData = errors.New("no data to plot")

// Input is what the charts are drawn from.
type Input struct {
	// Label qualifies chart titles, eg "2019".
	Label string

	// Rows is the assembled table. The scatter plots only use the rows
	// with audio features.
	Rows []data.Row

	// GenreRows is the exploded genre table, zero-popularity rows already
	// removed.
	GenreRows []data.GenreRow

	// Details is the tracks_details table.
	Details []data.TrackDetail

	// TopGenres is how many genres the genre chart shows. Defaults to 20.
	TopGenres int
}

type chart struct {
	name   string
	file   func(in Input) string
	title  func(in Input) string
	render func(r *Renderer, in Input, path, title string) error
}

var charts = []chart{
	{
		name:  "genres",
		file:  func(in Input) string { return fmt.Sprintf("top-%d_genres.png", in.topGenres()) },
		title: func(in Input) string { return fmt.Sprintf("Top %d Most Popular Genres on Spotify", in.topGenres()) },
		render: func(r *Renderer, in Input, path, title string) error {
			top := dataset.TopGenres(dataset.AggregateGenres(in.GenreRows), in.topGenres())
			series := make([]data.Ranked, len(top))
			for i, stat := range top {
				series[i] = data.Ranked{Label: stat.Genre, MeanPopularity: stat.MeanPopularity}
			}
			return r.barChart(series, title, "Average Popularity Score", "Genre", path, wideSize)
		},
	},
	{
		name:  "features",
		file:  func(Input) string { return "all_plots.png" },
		title: func(Input) string { return "Popularity vs. Spotify Audio Features" },
		render: func(r *Renderer, in Input, path, title string) error {
			return r.featureGrid(dataset.WithFeatures(in.Rows), title, path)
		},
	},
	featureChart(danceability),
	featureChart(energy),
	featureChart(valence),
	featureChart(loudness),
	featureChart(tempo),
	{
		name:  "tracks",
		file:  func(Input) string { return "Top_10_Tracks.png" },
		title: func(in Input) string { return in.titled("Top 10 Spotify Most Popular Tracks") },
		render: func(r *Renderer, in Input, path, title string) error {
			return r.barChart(dataset.TopTracks(in.Details, 10), title, "Popularity", "Track", path, tallSize)
		},
	},
	{
		name:  "artists",
		file:  func(Input) string { return "Top_Artist_Tracks.png" },
		title: func(in Input) string { return in.titled("Top Artists for Spotify Most Popular Tracks") },
		render: func(r *Renderer, in Input, path, title string) error {
			return r.barChart(dataset.TopArtists(in.Details, 90), title, "Popularity", "Artist", path, tallSize)
		},
	},
}

func featureChart(f feature) chart {
	return chart{
		name:  f.name,
		file:  func(Input) string { return f.name + ".png" },
		title: func(Input) string { return f.title },
		render: func(r *Renderer, in Input, path, title string) error {
			return r.scatterPlot(dataset.WithFeatures(in.Rows), f, path)
		},
	}
}

// Charts lists the chart names Render accepts, in the order they're drawn.
func Charts() []string {
	names := make([]string, len(charts))
	for i, c := range charts {
		names[i] = c.name
	}
	return names
}

func (in Input) topGenres() int {
	if in.TopGenres <= 0 {
		return 20
	}
	return in.TopGenres
}

func (in Input) titled(title string) string {
	if in.Label == "" {
		return title
	}
	return title + " " + in.Label
}

// Renderer writes charts into a directory.
type Renderer struct {
	dir string
}

func New(dir string) *Renderer {
	return &Renderer{dir: dir}
}

// Render draws the named charts, or all of them if names is empty, and
// then rewrites index.html. Charts are independent of each other: a chart
// with no data is skipped, and a chart that fails doesn't stop the rest.
// Render returns the paths it wrote along with every chart's error.
func (r *Renderer) Render(ctx context.Context, in Input, names []string) ([]string, error) {
	selected, err := selectCharts(names)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(r.dir, 0755); err != nil {
		return nil, fmt.Errorf("error creating images dir '%s': %w", r.dir, err)
	}

	var (
		written []string
		errs    []error
	)
	for _, c := range selected {
		if err := ctx.Err(); err != nil {
			return written, err
		}

		path := filepath.Join(r.dir, c.file(in))
		err := c.render(r, in, path, c.title(in))
		if errors.Is(err, ErrNoData) {
			log.Warn().Str("chart", c.name).Msg("no data; skipping chart")
			continue
		} else if err != nil {
			log.Error().Err(err).Str("chart", c.name).Msg("error rendering chart")
			errs = append(errs, fmt.Errorf("error rendering chart '%s': %w", c.name, err))
			continue
		}
		log.Info().Str("chart", c.name).Str("path", path).Msg("rendered chart")
		written = append(written, path)
	}

	index, err := r.writeGallery(in)
	if err != nil {
		errs = append(errs, err)
	} else {
		written = append(written, index)
	}

	return written, errors.Join(errs...)
}

func selectCharts(names []string) ([]chart, error) {
	if len(names) == 0 {
		return charts, nil
	}
	want := map[string]struct{}{}
	for _, name := range names {
		want[name] = struct{}{}
	}

	selected := []chart{}
	for _, c := range charts {
		if _, ok := want[c.name]; ok {
			selected = append(selected, c)
			delete(want, c.name)
		}
	}
	if len(want) > 0 {
		unknown := make([]string, 0, len(want))
		for _, name := range names {
			if _, ok := want[name]; ok {
				unknown = append(unknown, name)
			}
		}
		return nil, fmt.Errorf("unknown charts: %s", strings.Join(unknown, ", "))
	}
	return selected, nil
}
