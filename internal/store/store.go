// Package store reads and writes the full shop record set, either from a
// local CSV file or from the per-user cloud table.
package store

import (
	"context"
	"errors"

	"shopmap/internal/models"
)

// ErrCloudUnavailable is returned when a signed-in user asks for the cloud
// store but no database is configured.
var ErrCloudUnavailable = errors.New("cloud storage is not configured")

// RecordStore loads and replaces a whole record set. Save has replace
// semantics: after it returns, the store holds exactly the given records in
// the given order.
type RecordStore interface {
	Load(ctx context.Context) ([]models.ShopRecord, error)
	Save(ctx context.Context, records []models.ShopRecord) error
}

// Mode tells callers which backend a RecordStore writes to.
type Mode string

const (
	ModeLocal Mode = "local"
	ModeCloud Mode = "cloud"
)

func normalizeAll(records []models.ShopRecord) []models.ShopRecord {
	for i := range records {
		records[i].Normalize()
	}
	return records
}
