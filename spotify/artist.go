package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

// ArtistGenres fetches the genre labels the catalog assigns to an artist.
// Many artists have none, in which case the list is empty but not nil.
func (spo *Client) ArtistGenres(ctx context.Context, artistSpotifyID string) ([]string, error) {
	var genres []string
	err := spo.get(ctx, "/artists/"+url.PathEscape(artistSpotifyID), nil, func(body []byte) error {
		var artist artistResult
		if err := json.Unmarshal(body, &artist); err != nil {
			return fmt.Errorf("artist decode error: %w: %w", ErrMalformed, err)
		}
		genres = artist.Genres
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error fetching artist '%s': %w", artistSpotifyID, err)
	}

	if genres == nil {
		return []string{}, nil
	}
	return genres, nil
}

type artistResult struct {
	ID     string
	Name   string
	Genres []string
}
