// Package fetcher pulls a batch of tracks from the catalog, enriches it with
// artist genres and audio features, and assembles the dataset snapshots.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/amonks/popgenres/data"
	"github.com/amonks/popgenres/dataset"
	"github.com/amonks/popgenres/spotify"
	"github.com/rs/zerolog/log"
)

// Catalog is the part of the Spotify API the fetcher uses. *spotify.Client
// implements it.
type Catalog interface {
	SearchTracks(ctx context.Context, query string, limit, offset int) ([]data.Track, error)
	ArtistGenres(ctx context.Context, artistSpotifyID string) ([]string, error)
	AudioFeatures(ctx context.Context, trackSpotifyID string) (data.AudioFeatures, error)
}

var _ Catalog = (*spotify.Client)(nil)

type Options struct {
	Query    string
	Total    int
	PageSize int

	// ResourcesDir is where the CSV snapshots are written. If empty, Run
	// doesn't write them.
	ResourcesDir string
}

type Fetcher struct {
	src  Catalog
	opts Options
}

func New(src Catalog, opts Options) *Fetcher {
	return &Fetcher{
		src:  src,
		opts: opts,
	}
}

// TODO counts the requests a run is going to make.
type TODO struct {
	Pages          int
	ArtistLookups  int
	FeatureLookups int

	Requests int
}

// Report estimates a run's requests ahead of time, assuming every page comes
// back full.
func (f *Fetcher) Report() TODO {
	todo := TODO{
		Pages:          pageCount(f.opts.Total, f.opts.PageSize),
		ArtistLookups:  f.opts.Total,
		FeatureLookups: f.opts.Total,
	}
	todo.Requests = todo.Pages + todo.ArtistLookups + todo.FeatureLookups
	return todo
}

// Result holds everything a run fetched and assembled.
type Result struct {
	Tracks   []data.Track
	Genres   []data.ArtistGenres
	Features []data.AudioFeatures

	// Rows is the assembled table, most popular first.
	Rows []data.Row

	// GenreRows is the exploded genre table with zero-popularity rows
	// removed.
	GenreRows []data.GenreRow
}

// Run fetches the catalog, then the genres, then the audio features, and
// assembles them. Nothing is written until every fetch has succeeded. Then
// the full table goes to audio_features.csv and the genre table to
// split_genre.csv.
func (f *Fetcher) Run(ctx context.Context) (*Result, error) {
	todo := f.Report()
	log.Info().
		Str("query", f.opts.Query).
		Int("pages", todo.Pages).
		Int("requests", todo.Requests).
		Msg("starting fetch")
	start := time.Now()

	tracks, err := FetchCatalog(ctx, f.src, f.opts.Query, f.opts.Total, f.opts.PageSize)
	if err != nil {
		return nil, fmt.Errorf("catalog error: %w", err)
	}
	log.Info().Int("tracks", len(tracks)).Msg("fetched catalog")

	genres, err := FetchGenres(ctx, f.src, tracks)
	if err != nil {
		return nil, fmt.Errorf("genre error: %w", err)
	}

	features, err := FetchFeatures(ctx, f.src, tracks)
	if err != nil {
		return nil, fmt.Errorf("audio features error: %w", err)
	}

	rows, err := dataset.Assemble(tracks, features)
	if err != nil {
		return nil, fmt.Errorf("assembly error: %w", err)
	}
	exploded, err := dataset.ExplodeGenres(tracks, genres)
	if err != nil {
		return nil, fmt.Errorf("genre explosion error: %w", err)
	}
	genreRows := dataset.Popular(exploded)

	log.Info().
		Int("rows", len(rows)).
		Int("with_features", len(dataset.WithFeatures(rows))).
		Int("genre_rows", len(exploded)).
		Int("popular_genre_rows", len(genreRows)).
		Dur("took", time.Since(start)).
		Msg("assembled dataset")

	if f.opts.ResourcesDir != "" {
		featuresPath := filepath.Join(f.opts.ResourcesDir, dataset.FeaturesFile)
		if err := dataset.WriteFile(featuresPath, func(w io.Writer) error {
			return dataset.WriteRows(w, rows)
		}); err != nil {
			return nil, err
		}
		genresPath := filepath.Join(f.opts.ResourcesDir, dataset.GenresFile)
		if err := dataset.WriteFile(genresPath, func(w io.Writer) error {
			return dataset.WriteGenreRows(w, genreRows)
		}); err != nil {
			return nil, err
		}
		log.Info().
			Str("features", featuresPath).
			Str("genres", genresPath).
			Msg("wrote snapshots")
	}

	return &Result{
		Tracks:    tracks,
		Genres:    genres,
		Features:  features,
		Rows:      rows,
		GenreRows: genreRows,
	}, nil
}

// FetchCatalog pages through the search results for query until it has made
// enough requests for total tracks, pageSize at a time. Short pages are
// kept as they are. If any page fails, no later page is requested and no
// tracks are returned.
func FetchCatalog(ctx context.Context, src Catalog, query string, total, pageSize int) ([]data.Track, error) {
	if total <= 0 {
		return nil, fmt.Errorf("total must be positive, got %d", total)
	}
	if pageSize <= 0 {
		return nil, fmt.Errorf("page size must be positive, got %d", pageSize)
	}

	tracks := []data.Track{}
	pages := pageCount(total, pageSize)
	for i := 0; i < pages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		offset := i * pageSize
		limit := min(pageSize, total-offset)
		page, err := src.SearchTracks(ctx, query, limit, offset)
		if err != nil {
			return nil, fmt.Errorf("error fetching page %d of %d: %w", i+1, pages, err)
		}
		if len(page) < limit {
			log.Debug().
				Int("offset", offset).
				Int("limit", limit).
				Int("got", len(page)).
				Msg("short page")
		}
		tracks = append(tracks, page...)
	}
	return tracks, nil
}

// FetchGenres looks up each track's artist, once per track, even when an
// artist appears on several tracks.
func FetchGenres(ctx context.Context, src Catalog, tracks []data.Track) ([]data.ArtistGenres, error) {
	genres := make([]data.ArtistGenres, 0, len(tracks))
	every := progress("artist genres", len(tracks))
	for _, track := range tracks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		labels, err := src.ArtistGenres(ctx, track.ArtistSpotifyID)
		if err != nil {
			return nil, fmt.Errorf("error fetching genres for artist '%s': %w", track.ArtistSpotifyID, err)
		}
		if labels == nil {
			labels = []string{}
		}
		genres = append(genres, data.ArtistGenres{
			ArtistSpotifyID: track.ArtistSpotifyID,
			Genres:          labels,
		})
		every(len(genres))
	}
	return genres, nil
}

// FetchFeatures looks up each track's audio features. Tracks the catalog has
// no analysis for get the all-zero placeholder; any other error ends the
// fetch.
func FetchFeatures(ctx context.Context, src Catalog, tracks []data.Track) ([]data.AudioFeatures, error) {
	features := make([]data.AudioFeatures, 0, len(tracks))
	missing := 0
	every := progress("audio features", len(tracks))
	for _, track := range tracks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		f, err := src.AudioFeatures(ctx, track.SpotifyID)
		if errors.Is(err, spotify.ErrNoAudioFeatures) {
			log.Debug().Str("track", track.SpotifyID).Msg("no audio features")
			f = data.NoFeatures(track.SpotifyID)
			missing++
		} else if err != nil {
			return nil, fmt.Errorf("error fetching audio features for track '%s': %w", track.SpotifyID, err)
		}
		features = append(features, f)
		every(len(features))
	}
	if missing > 0 {
		log.Info().
			Int("missing", missing).
			Int("tracks", len(tracks)).
			Msg("some tracks have no audio features")
	}
	return features, nil
}

func pageCount(total, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

// progress returns a func that logs every hundredth lookup, and the last.
func progress(what string, total int) func(done int) {
	return func(done int) {
		if done%100 == 0 || done == total {
			log.Info().
				Int("done", done).
				Int("total", total).
				Msgf("fetching %s", what)
		}
	}
}
