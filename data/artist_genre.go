package data

// ArtistGenres is the genre list the catalog reports for one artist,
// possibly empty.
type ArtistGenres struct {
	ArtistSpotifyID string
	Genres          []string
}
