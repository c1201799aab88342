package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/amonks/popgenres/data"
)

// SearchTracks fetches one page of track search results for query, eg
// "year:2019". Each track is attributed to its first-listed artist.
//
// The request is basically,
//
//	https://api.spotify.com/v1/search?q=QUERY&type=track&limit=LIMIT&offset=OFFSET
func (spo *Client) SearchTracks(ctx context.Context, query string, limit, offset int) ([]data.Track, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("type", "track")
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(offset))

	var tracks []data.Track
	err := spo.get(ctx, "/search", params, func(body []byte) error {
		var err error
		tracks, err = decodeTrackPage(body, offset)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("error searching '%s' at offset %d: %w", query, offset, err)
	}
	return tracks, nil
}

func decodeTrackPage(body []byte, offset int) ([]data.Track, error) {
	var page trackSearchResultsPage
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("track search decode error: %w: %w", ErrMalformed, err)
	}
	if page.Tracks == nil {
		return nil, fmt.Errorf("track search at offset %d has no 'tracks': %w", offset, ErrMalformed)
	}

	tracks := make([]data.Track, len(page.Tracks.Items))
	for i, item := range page.Tracks.Items {
		if item.ID == "" {
			return nil, fmt.Errorf("track %d at offset %d has no id: %w", i, offset, ErrMalformed)
		}
		if len(item.Artists) == 0 {
			return nil, fmt.Errorf("track '%s' has no artists: %w", item.ID, ErrMalformed)
		}
		tracks[i] = data.Track{
			SpotifyID:       item.ID,
			Name:            item.Name,
			Popularity:      item.Popularity,
			ArtistSpotifyID: item.Artists[0].ID,
			ArtistName:      item.Artists[0].Name,
		}
	}
	return tracks, nil
}

type trackSearchResultsPage struct {
	Tracks *struct {
		Limit  int
		Offset int
		Total  int

		Next     string
		Previous string

		Items []struct {
			ID         string
			Name       string
			Popularity int64

			Artists []struct {
				ID   string
				Name string
			}
		}
	}
}
