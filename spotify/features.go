package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/amonks/popgenres/data"
	"github.com/amonks/popgenres/request"
)

// AudioFeatures fetches the audio features of a single track. If the
// catalog has no analysis for it, which it signals with a null entry, an
// empty list, or a 404, AudioFeatures returns ErrNoAudioFeatures.
func (spo *Client) AudioFeatures(ctx context.Context, trackSpotifyID string) (data.AudioFeatures, error) {
	params := url.Values{}
	params.Set("ids", trackSpotifyID)

	var results audioFeaturesResults
	err := spo.get(ctx, "/audio-features", params, func(body []byte) error {
		var page audioFeaturesResults
		if err := json.Unmarshal(body, &page); err != nil {
			return fmt.Errorf("audio features decode error: %w: %w", ErrMalformed, err)
		}
		results = page
		return nil
	})
	if request.IsStatus(err, http.StatusNotFound) {
		return data.AudioFeatures{}, fmt.Errorf("track '%s': %w", trackSpotifyID, ErrNoAudioFeatures)
	} else if err != nil {
		return data.AudioFeatures{}, fmt.Errorf("error fetching audio features for '%s': %w", trackSpotifyID, err)
	}

	if len(results.AudioFeatures) == 0 || results.AudioFeatures[0] == nil {
		return data.AudioFeatures{}, fmt.Errorf("track '%s': %w", trackSpotifyID, ErrNoAudioFeatures)
	}

	f := results.AudioFeatures[0]
	return data.AudioFeatures{
		TrackSpotifyID: trackSpotifyID,
		Available:      true,
		Danceability:   f.Danceability,
		Energy:         f.Energy,
		Loudness:       f.Loudness,
		Valence:        f.Valence,
		Tempo:          f.Tempo,
	}, nil
}

type audioFeaturesResults struct {
	AudioFeatures []*struct {
		ID string

		Danceability float64
		Energy       float64
		Loudness     float64
		Valence      float64
		Tempo        float64
	} `json:"audio_features"`
}
