package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/amonks/popgenres/data"
)

// File names of the snapshots, relative to the resources directory.
const (
	FeaturesFile = "audio_features.csv"
	GenresFile   = "split_genre.csv"
)

var (
	RowHeader      = []string{"Track ID", "Artist Name", "Track Name", "Danceability", "Energy", "Loudness", "Valence", "Tempo", "Popularity"}
	GenreRowHeader = []string{"Artist Name", "Track Name", "Genre", "Popularity Score"}

	// TrackDetailColumns are the columns ReadTrackDetails needs from the
	// canonical extract. It may have others.
	TrackDetailColumns = []string{"Track_ID", "Artist_ID", "Artist_Name", "Track_Name", "Danceability", "Loudness", "Valence", "Tempo", "Popularity_Score"}
)

// ErrMissingColumn is returned by the readers when a required column isn't
// in the header.
var ErrMissingColumn = errors.New("missing column")

// WriteRows writes the assembled table as CSV with a header row.
func WriteRows(w io.Writer, rows []data.Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(RowHeader); err != nil {
		return fmt.Errorf("error writing header: %w", err)
	}
	for _, row := range rows {
		if err := cw.Write([]string{
			row.TrackSpotifyID,
			row.ArtistName,
			row.TrackName,
			formatFloat(row.Danceability),
			formatFloat(row.Energy),
			formatFloat(row.Loudness),
			formatFloat(row.Valence),
			formatFloat(row.Tempo),
			strconv.FormatInt(row.Popularity, 10),
		}); err != nil {
			return fmt.Errorf("error writing row for track '%s': %w", row.TrackSpotifyID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadRows reads a table written by WriteRows. The snapshot has no artist
// ids, and whether features were available is inferred from their sum.
func ReadRows(r io.Reader) ([]data.Row, error) {
	records, cols, err := readRecords(r, RowHeader)
	if err != nil {
		return nil, err
	}

	rows := make([]data.Row, 0, len(records))
	for i, rec := range records {
		p := &parser{line: i + 2}
		row := data.Row{
			TrackSpotifyID: rec[cols["Track ID"]],
			ArtistName:     rec[cols["Artist Name"]],
			TrackName:      rec[cols["Track Name"]],
			Danceability:   p.decimal("Danceability", rec[cols["Danceability"]]),
			Energy:         p.decimal("Energy", rec[cols["Energy"]]),
			Loudness:       p.decimal("Loudness", rec[cols["Loudness"]]),
			Valence:        p.decimal("Valence", rec[cols["Valence"]]),
			Tempo:          p.decimal("Tempo", rec[cols["Tempo"]]),
			Popularity:     p.integer("Popularity", rec[cols["Popularity"]]),
		}
		if p.err != nil {
			return nil, p.err
		}
		row.FeaturesAvailable = row.HasFeatures()
		rows = append(rows, row)
	}
	return rows, nil
}

// WriteGenreRows writes the exploded genre table as CSV with a header row.
func WriteGenreRows(w io.Writer, rows []data.GenreRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(GenreRowHeader); err != nil {
		return fmt.Errorf("error writing header: %w", err)
	}
	for _, row := range rows {
		if err := cw.Write([]string{
			row.ArtistName,
			row.TrackName,
			row.Genre,
			strconv.FormatInt(row.Popularity, 10),
		}); err != nil {
			return fmt.Errorf("error writing genre row '%s': %w", row.Genre, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadGenreRows reads a table written by WriteGenreRows.
func ReadGenreRows(r io.Reader) ([]data.GenreRow, error) {
	records, cols, err := readRecords(r, GenreRowHeader)
	if err != nil {
		return nil, err
	}

	rows := make([]data.GenreRow, 0, len(records))
	for i, rec := range records {
		p := &parser{line: i + 2}
		row := data.GenreRow{
			ArtistName: rec[cols["Artist Name"]],
			TrackName:  rec[cols["Track Name"]],
			Genre:      rec[cols["Genre"]],
			Popularity: p.integer("Popularity Score", rec[cols["Popularity Score"]]),
		}
		if p.err != nil {
			return nil, p.err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ReadTrackDetails reads the canonical extract, picking out
// TrackDetailColumns by name. Every numeric cell must hold a number: an empty
// one fails the whole read, naming the track it belongs to.
func ReadTrackDetails(r io.Reader) ([]data.TrackDetail, error) {
	records, cols, err := readRecords(r, TrackDetailColumns)
	if err != nil {
		return nil, err
	}

	details := make([]data.TrackDetail, 0, len(records))
	for i, rec := range records {
		p := &parser{line: i + 2}
		detail := data.TrackDetail{
			TrackID:         rec[cols["Track_ID"]],
			ArtistID:        rec[cols["Artist_ID"]],
			ArtistName:      rec[cols["Artist_Name"]],
			TrackName:       rec[cols["Track_Name"]],
			Danceability:    p.decimal("Danceability", rec[cols["Danceability"]]),
			Loudness:        p.decimal("Loudness", rec[cols["Loudness"]]),
			Valence:         p.decimal("Valence", rec[cols["Valence"]]),
			Tempo:           p.decimal("Tempo", rec[cols["Tempo"]]),
			PopularityScore: p.integer("Popularity_Score", rec[cols["Popularity_Score"]]),
		}
		if p.err != nil {
			return nil, fmt.Errorf("track '%s': %w", detail.TrackID, p.err)
		}
		details = append(details, detail)
	}
	return details, nil
}

// WriteFile creates path and its directory and hands the file to write. The
// file is written next to path and renamed into place once write succeeds.
func WriteFile(path string, write func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("error creating directory for '%s': %w", path, err)
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("error creating '%s': %w", tmp, err)
	}
	if err := write(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("error writing '%s': %w", path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("error closing '%s': %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("error moving '%s' into place: %w", path, err)
	}
	return nil
}

// ReadFile opens path and hands it to read.
func ReadFile[T any](path string, read func(io.Reader) (T, error)) (T, error) {
	var zero T
	f, err := os.Open(path)
	if err != nil {
		return zero, fmt.Errorf("error opening '%s': %w", path, err)
	}
	defer f.Close()

	out, err := read(f)
	if err != nil {
		return zero, fmt.Errorf("error reading '%s': %w", path, err)
	}
	return out, nil
}

// readRecords reads every record after the header and maps each required
// column name to its index.
func readRecords(r io.Reader, required []string) ([][]string, map[string]int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, fmt.Errorf("empty csv: %w", ErrMissingColumn)
	} else if err != nil {
		return nil, nil, fmt.Errorf("error reading header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}

	cols := make(map[string]int, len(required))
	width := 0
	for _, name := range required {
		i, ok := index[name]
		if !ok {
			return nil, nil, fmt.Errorf("column '%s': %w", name, ErrMissingColumn)
		}
		cols[name] = i
		width = max(width, i+1)
	}

	records, err := cr.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("error reading records: %w", err)
	}
	for i, rec := range records {
		if len(rec) < width {
			return nil, nil, fmt.Errorf("line %d has %d fields, want at least %d", i+2, len(rec), width)
		}
	}
	return records, cols, nil
}

// parser collects the first conversion error of a record.
type parser struct {
	line int
	err  error
}

func (p *parser) decimal(col, s string) float64 {
	if p.err != nil {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		p.err = fmt.Errorf("line %d: bad %s '%s': %w", p.line, col, s, err)
	}
	return f
}

func (p *parser) integer(col, s string) int64 {
	if p.err != nil {
		return 0
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		// integer columns sometimes come back from spreadsheets as "87.0"
		if f, ferr := strconv.ParseFloat(s, 64); ferr == nil && f == float64(int64(f)) {
			return int64(f)
		}
		p.err = fmt.Errorf("line %d: bad %s '%s': %w", p.line, col, s, err)
	}
	return n
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
