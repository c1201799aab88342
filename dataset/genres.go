package dataset

import (
	"fmt"
	"sort"

	"github.com/amonks/popgenres/data"
)

// ExplodeGenres emits one GenreRow for every (track, genre) pair, joining
// each track to its artist's genres by artist id. Tracks are walked in the
// order given, and genres in the order the catalog lists them. A track whose
// artist has no genres contributes no rows.
func ExplodeGenres(tracks []data.Track, genres []data.ArtistGenres) ([]data.GenreRow, error) {
	byArtist := make(map[string][]string, len(genres))
	for _, ag := range genres {
		byArtist[ag.ArtistSpotifyID] = ag.Genres
	}

	rows := []data.GenreRow{}
	for _, track := range tracks {
		labels, ok := byArtist[track.ArtistSpotifyID]
		if !ok {
			return nil, fmt.Errorf("no genres fetched for artist '%s' of track '%s'", track.ArtistSpotifyID, track.SpotifyID)
		}
		for _, genre := range labels {
			rows = append(rows, data.GenreRow{
				ArtistName: track.ArtistName,
				TrackName:  track.Name,
				Genre:      genre,
				Popularity: track.Popularity,
			})
		}
	}
	return rows, nil
}

// Popular drops genre rows with a popularity of zero. Zero mostly means the
// catalog has no score for the track, so those rows would only drag the
// genre means down.
func Popular(rows []data.GenreRow) []data.GenreRow {
	out := []data.GenreRow{}
	for _, row := range rows {
		if row.Popularity >= 1 {
			out = append(out, row)
		}
	}
	return out
}

// AggregateGenres groups rows by genre label and returns each group's size
// and mean popularity, ordered by label.
func AggregateGenres(rows []data.GenreRow) []data.GenreStat {
	sums := map[string]int64{}
	counts := map[string]int{}
	for _, row := range rows {
		sums[row.Genre] += row.Popularity
		counts[row.Genre]++
	}

	stats := make([]data.GenreStat, 0, len(counts))
	for genre, count := range counts {
		stats = append(stats, data.GenreStat{
			Genre:          genre,
			Count:          count,
			MeanPopularity: float64(sums[genre]) / float64(count),
		})
	}
	sort.Slice(stats, func(i, j int) bool {
		return stats[i].Genre < stats[j].Genre
	})
	return stats
}

// TopGenres picks the k most frequent genres and orders them by mean
// popularity, lowest first. Genres with equal counts are picked in the order
// of stats, so the result is the same on every run.
func TopGenres(stats []data.GenreStat, k int) []data.GenreStat {
	top := make([]data.GenreStat, len(stats))
	copy(top, stats)

	sort.SliceStable(top, func(i, j int) bool {
		return top[i].Count > top[j].Count
	})
	if k < len(top) {
		top = top[:k]
	}
	sort.SliceStable(top, func(i, j int) bool {
		return top[i].MeanPopularity < top[j].MeanPopularity
	})
	return top
}
