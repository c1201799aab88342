package dataset

import (
	"sort"

	"github.com/amonks/popgenres/data"
)

// TopTracks groups details by track name and returns the n names with the
// highest mean popularity, in ascending order, so that the most popular
// track is last.
func TopTracks(details []data.TrackDetail, n int) []data.Ranked {
	ranked := meanBy(details, func(d data.TrackDetail) string { return d.TrackName })
	if n < len(ranked) {
		ranked = ranked[len(ranked)-n:]
	}
	return ranked
}

// TopArtists keeps the tracks scoring above minPopularity, groups them by
// artist name, and returns every artist's mean popularity in ascending
// order.
func TopArtists(details []data.TrackDetail, minPopularity int64) []data.Ranked {
	popular := []data.TrackDetail{}
	for _, d := range details {
		if d.PopularityScore > minPopularity {
			popular = append(popular, d)
		}
	}
	return meanBy(popular, func(d data.TrackDetail) string { return d.ArtistName })
}

// meanBy groups details by key and returns the mean popularity of each
// group, ordered by mean and then by key.
func meanBy(details []data.TrackDetail, key func(data.TrackDetail) string) []data.Ranked {
	sums := map[string]int64{}
	counts := map[string]int64{}
	for _, d := range details {
		k := key(d)
		sums[k] += d.PopularityScore
		counts[k]++
	}

	ranked := make([]data.Ranked, 0, len(counts))
	for label, count := range counts {
		ranked = append(ranked, data.Ranked{
			Label:          label,
			MeanPopularity: float64(sums[label]) / float64(count),
		})
	}
	sort.Slice(ranked, func(i, j int) bool {
		return ranked[i].Label < ranked[j].Label
	})
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].MeanPopularity < ranked[j].MeanPopularity
	})
	return ranked
}
