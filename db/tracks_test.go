package db_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/amonks/popgenres/data"
	"github.com/amonks/popgenres/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *db.DB {
	t.Helper()
	d, err := db.Open("sqlite", filepath.Join(t.TempDir(), "spotify.db"))
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	return d
}

func detail(id, name string, popularity int64) data.TrackDetail {
	return data.TrackDetail{
		TrackID:         id,
		ArtistID:        "artist-" + id,
		ArtistName:      "Artist " + id,
		TrackName:       name,
		Danceability:    0.5,
		Loudness:        -6,
		Valence:         0.4,
		Tempo:           120,
		PopularityScore: popularity,
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := db.Open("mysql", "root@localhost/spotify_db")
	assert.ErrorContains(t, err, "mysql")
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spotify.db")
	for i := 0; i < 2; i++ {
		d, err := db.Open("sqlite", path)
		require.NoError(t, err)
		require.NoError(t, d.Close())
	}
}

func TestLoadTrackDetailsDedup(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()

	result, err := d.LoadTrackDetails(ctx, []data.TrackDetail{
		detail("t1", "first", 90),
		detail("t2", "other", 80),
		detail("t1", "second", 10),
	})
	require.NoError(t, err)
	assert.Equal(t, db.LoadResult{Read: 3, Duplicates: 1, Inserted: 2}, result)

	details, err := d.TrackDetails(ctx)
	require.NoError(t, err)
	require.Len(t, details, 2)
	assert.Equal(t, detail("t1", "first", 90), details[0])
	assert.Equal(t, detail("t2", "other", 80), details[1])
}

func TestLoadTrackDetailsIdempotent(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()

	extract := []data.TrackDetail{
		detail("t1", "one", 90),
		detail("t2", "two", 80),
		detail("t3", "three", 70),
	}
	_, err := d.LoadTrackDetails(ctx, extract)
	require.NoError(t, err)

	result, err := d.LoadTrackDetails(ctx, extract)
	require.NoError(t, err)
	assert.Equal(t, db.LoadResult{Read: 3, Existing: 3}, result)

	count, err := d.CountTrackDetails(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestLoadTrackDetailsAppends(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()

	_, err := d.LoadTrackDetails(ctx, []data.TrackDetail{detail("t1", "one", 90)})
	require.NoError(t, err)

	// t1 keeps its stored values
	result, err := d.LoadTrackDetails(ctx, []data.TrackDetail{
		detail("t1", "renamed", 5),
		detail("t2", "two", 80),
	})
	require.NoError(t, err)
	assert.Equal(t, db.LoadResult{Read: 2, Existing: 1, Inserted: 1}, result)

	details, err := d.TrackDetails(ctx)
	require.NoError(t, err)
	assert.Equal(t, []data.TrackDetail{detail("t1", "one", 90), detail("t2", "two", 80)}, details)
}

func TestLoadTrackDetailsLarge(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()

	extract := make([]data.TrackDetail, 0, 1200)
	for i := 0; i < 1200; i++ {
		extract = append(extract, detail(fmt.Sprintf("t%04d", i%1100), "x", int64(i%100)))
	}
	result, err := d.LoadTrackDetails(ctx, extract[:600])
	require.NoError(t, err)
	assert.Equal(t, 600, result.Inserted)

	result, err = d.LoadTrackDetails(ctx, extract)
	require.NoError(t, err)
	assert.Equal(t, db.LoadResult{Read: 1200, Duplicates: 100, Existing: 600, Inserted: 500}, result)

	count, err := d.CountTrackDetails(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1100, count)
}

func TestLoadTrackDetailsRejectsEmptyID(t *testing.T) {
	d := openTestDB(t)
	_, err := d.LoadTrackDetails(context.Background(), []data.TrackDetail{detail("", "x", 1)})
	require.Error(t, err)

	count, err := d.CountTrackDetails(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}
