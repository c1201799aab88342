package data

// TrackDetail is a row of the tracks_details table, loaded from the canonical
// CSV extract. Energy isn't part of the table.
type TrackDetail struct {
	TrackID         string `gorm:"primaryKey"`
	ArtistID        string
	ArtistName      string
	TrackName       string
	Danceability    float64
	Loudness        float64
	Valence         float64
	Tempo           float64
	PopularityScore int64
}

func (TrackDetail) TableName() string { return "tracks_details" }
