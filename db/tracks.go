package db

import (
	"context"
	"fmt"

	"github.com/amonks/popgenres/data"
	"gorm.io/gorm"
)

const (
	lookupChunkSize = 500
	insertBatchSize = 100
)

// LoadResult counts what LoadTrackDetails did with its input.
type LoadResult struct {
	Read       int
	Duplicates int
	Existing   int
	Inserted   int
}

// LoadTrackDetails appends details to the tracks_details table. Repeated
// track ids in details are dropped after their first occurrence, and ids
// already in the table are skipped, so loading the same extract twice adds
// nothing the second time. Existing rows are never modified.
func (db *DB) LoadTrackDetails(ctx context.Context, details []data.TrackDetail) (LoadResult, error) {
	result := LoadResult{Read: len(details)}

	unique := make([]data.TrackDetail, 0, len(details))
	seen := make(map[string]struct{}, len(details))
	for i, d := range details {
		if d.TrackID == "" {
			return result, fmt.Errorf("track detail %d has no track id", i)
		}
		if _, ok := seen[d.TrackID]; ok {
			result.Duplicates++
			continue
		}
		seen[d.TrackID] = struct{}{}
		unique = append(unique, d)
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing := map[string]struct{}{}
		for start := 0; start < len(unique); start += lookupChunkSize {
			end := min(start+lookupChunkSize, len(unique))
			ids := make([]string, 0, end-start)
			for _, d := range unique[start:end] {
				ids = append(ids, d.TrackID)
			}

			found := []string{}
			if err := tx.
				Model(&data.TrackDetail{}).
				Where("track_id in ?", ids).
				Pluck("track_id", &found).
				Error; err != nil {
				return fmt.Errorf("error looking up existing track ids: %w", err)
			}
			for _, id := range found {
				existing[id] = struct{}{}
			}
		}

		fresh := make([]data.TrackDetail, 0, len(unique))
		for _, d := range unique {
			if _, ok := existing[d.TrackID]; ok {
				result.Existing++
				continue
			}
			fresh = append(fresh, d)
		}
		if len(fresh) == 0 {
			return nil
		}

		if err := tx.CreateInBatches(fresh, insertBatchSize).Error; err != nil {
			return fmt.Errorf("error inserting %d track details: %w", len(fresh), err)
		}
		result.Inserted = len(fresh)
		return nil
	})
	if err != nil {
		return LoadResult{Read: len(details)}, err
	}

	return result, nil
}

// TrackDetails returns every row of the tracks_details table, ordered by
// track id.
func (db *DB) TrackDetails(ctx context.Context) ([]data.TrackDetail, error) {
	details := []data.TrackDetail{}
	if err := db.
		WithContext(ctx).
		Order("track_id").
		Find(&details).
		Error; err != nil {
		return nil, fmt.Errorf("error reading track details: %w", err)
	}
	return details, nil
}

func (db *DB) CountTrackDetails(ctx context.Context) (int, error) {
	var count int64
	if err := db.
		WithContext(ctx).
		Model(&data.TrackDetail{}).
		Count(&count).
		Error; err != nil {
		return 0, fmt.Errorf("error counting track details: %w", err)
	}
	return int(count), nil
}
