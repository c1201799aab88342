package data

// A GenreRow is one (track, genre) pair: the artist-to-genres relationship
// flattened against the tracks.
type GenreRow struct {
	ArtistName string
	TrackName  string
	Genre      string
	Popularity int64
}

// A GenreStat summarizes the genre rows that share a genre label.
type GenreStat struct {
	Genre          string
	Count          int
	MeanPopularity float64
}

// Ranked is a label with the mean popularity of the tracks behind it.
type Ranked struct {
	Label          string
	MeanPopularity float64
}
