package data

// A Track is one catalog search result, reduced to its first-listed artist.
type Track struct {
	SpotifyID  string
	Name       string
	Popularity int64

	ArtistSpotifyID string
	ArtistName      string
}

// A Row is one line of the assembled dataset: a track joined with its audio
// features.
type Row struct {
	TrackSpotifyID  string
	ArtistSpotifyID string
	ArtistName      string
	TrackName       string

	Danceability float64
	Energy       float64
	Loudness     float64
	Valence      float64
	Tempo        float64

	Popularity int64

	// FeaturesAvailable is false when the catalog had no audio features for
	// the track and the values above are the all-zero placeholder. It is not
	// carried through the CSV snapshot.
	FeaturesAvailable bool
}

// HasFeatures reports whether the row carries real audio features. Tracks
// without features were filled with zeros, so their sum is zero; a single
// feature that is legitimately zero doesn't exclude a row.
func (r Row) HasFeatures() bool {
	return r.Vector().Sum() > 0
}

func (r Row) Vector() Vector {
	return Vector{
		"danceability": r.Danceability,
		"energy":       r.Energy,
		"loudness":     r.Loudness,
		"valence":      r.Valence,
		"tempo":        r.Tempo,
	}
}
