package data

// FeatureNames lists the audio features we keep, in report order.
var FeatureNames = []string{"danceability", "energy", "loudness", "valence", "tempo"}

// AudioFeatures holds the acoustic measurements the catalog reports for a
// single track.
type AudioFeatures struct {
	TrackSpotifyID string

	// Available is false for the placeholder returned by NoFeatures.
	Available bool

	Danceability float64
	Energy       float64
	Loudness     float64
	Valence      float64
	Tempo        float64
}

// NoFeatures is the all-zero placeholder used for tracks the catalog has no
// audio features for.
func NoFeatures(trackSpotifyID string) AudioFeatures {
	return AudioFeatures{TrackSpotifyID: trackSpotifyID}
}

func (f AudioFeatures) Vector() Vector {
	return Vector{
		"danceability": f.Danceability,
		"energy":       f.Energy,
		"loudness":     f.Loudness,
		"valence":      f.Valence,
		"tempo":        f.Tempo,
	}
}

// Sum adds up the five feature values.
func (f AudioFeatures) Sum() float64 {
	return f.Vector().Sum()
}
