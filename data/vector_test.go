package data_test

import (
	"testing"

	"github.com/amonks/popgenres/data"
	"github.com/stretchr/testify/assert"
)

func TestSum(t *testing.T) {
	v := data.Vector{"a": 1, "b": 2.5, "c": -0.5}
	assert.Equal(t, 3.0, v.Sum())
}

func TestKeys(t *testing.T) {
	v := data.Vector{"tempo": 1, "energy": 1, "valence": 1}
	assert.Equal(t, []string{"energy", "tempo", "valence"}, v.Keys())
}

func TestNoFeatures(t *testing.T) {
	f := data.NoFeatures("zzz")
	assert.Equal(t, "zzz", f.TrackSpotifyID)
	assert.False(t, f.Available)
	assert.Equal(t, data.Vector{
		"danceability": 0, "energy": 0, "loudness": 0, "valence": 0, "tempo": 0,
	}, f.Vector())
	assert.Zero(t, f.Sum())
}

func TestHasFeatures(t *testing.T) {
	assert.False(t, data.Row{TrackSpotifyID: "zzz"}.HasFeatures())
	assert.True(t, data.Row{Danceability: 0.5}.HasFeatures())

	// a zero valence alone doesn't disqualify a row
	assert.True(t, data.Row{Energy: 0.7, Valence: 0, Tempo: 120}.HasFeatures())
}
