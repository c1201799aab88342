// Package dataset turns fetched catalog records into the tables the rest of
// the pipeline consumes: the assembled feature table, the exploded genre
// table and its aggregates, and the CSV snapshots of both.
package dataset

import (
	"fmt"
	"sort"

	"github.com/amonks/popgenres/data"
)

// Assemble joins tracks with their audio features by track id, producing one
// row per track. A track with no features entry gets the all-zero
// placeholder. Rows are ordered by popularity, highest first; ties keep the
// order the tracks were fetched in.
func Assemble(tracks []data.Track, features []data.AudioFeatures) ([]data.Row, error) {
	byTrack := make(map[string]data.AudioFeatures, len(features))
	for _, f := range features {
		byTrack[f.TrackSpotifyID] = f
	}

	rows := make([]data.Row, len(tracks))
	seen := make(map[string]struct{}, len(tracks))
	for i, track := range tracks {
		f, ok := byTrack[track.SpotifyID]
		if !ok {
			f = data.NoFeatures(track.SpotifyID)
		}
		seen[track.SpotifyID] = struct{}{}
		rows[i] = data.Row{
			TrackSpotifyID:    track.SpotifyID,
			ArtistSpotifyID:   track.ArtistSpotifyID,
			ArtistName:        track.ArtistName,
			TrackName:         track.Name,
			Danceability:      f.Danceability,
			Energy:            f.Energy,
			Loudness:          f.Loudness,
			Valence:           f.Valence,
			Tempo:             f.Tempo,
			Popularity:        track.Popularity,
			FeaturesAvailable: f.Available,
		}
	}

	for _, f := range features {
		if _, ok := seen[f.TrackSpotifyID]; !ok {
			return nil, fmt.Errorf("audio features for unknown track '%s'", f.TrackSpotifyID)
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Popularity > rows[j].Popularity
	})

	return rows, nil
}

// WithFeatures returns the rows that carry real audio features, keeping
// their order.
func WithFeatures(rows []data.Row) []data.Row {
	out := []data.Row{}
	for _, row := range rows {
		if row.HasFeatures() {
			out = append(out, row)
		}
	}
	return out
}
