package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"shopmap/internal/models"
)

// CloudTables hands out per-user record sets. *PostgresStore satisfies it.
type CloudTables interface {
	ForUser(user uuid.UUID) *UserTable
}

// Resolver picks the record store for a request: signed-in users work against
// the cloud table, everyone else against the local CSV file.
type Resolver struct {
	local  *CSVStore
	cloud  func(user uuid.UUID) RecordStore
	logger *zap.Logger
}

func NewResolver(local *CSVStore, cloud CloudTables, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Resolver{local: local, logger: logger}
	if cloud != nil {
		r.cloud = func(user uuid.UUID) RecordStore { return cloud.ForUser(user) }
	}
	return r
}

// For returns the store for user. uuid.Nil selects the local file.
func (r *Resolver) For(user uuid.UUID) (RecordStore, Mode, error) {
	if user == uuid.Nil {
		return r.local, ModeLocal, nil
	}
	if r.cloud == nil {
		return nil, ModeCloud, ErrCloudUnavailable
	}
	return &migratingStore{cloud: r.cloud(user), local: r.local, logger: r.logger.With(zap.String("user_id", user.String()))}, ModeCloud, nil
}

// migratingStore seeds an empty cloud record set from the local file the
// first time it is loaded.
type migratingStore struct {
	cloud  RecordStore
	local  *CSVStore
	logger *zap.Logger
}

func (m *migratingStore) Load(ctx context.Context) ([]models.ShopRecord, error) {
	records, err := m.cloud.Load(ctx)
	if err != nil {
		return nil, err
	}
	if len(records) > 0 || m.local == nil {
		return records, nil
	}
	n, err := MigrateLocal(ctx, m.local, m.cloud)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return records, nil
	}
	m.logger.Info("migrated local records to cloud", zap.Int("count", n))
	return m.cloud.Load(ctx)
}

func (m *migratingStore) Save(ctx context.Context, records []models.ShopRecord) error {
	return m.cloud.Save(ctx, records)
}

// MigrateLocal copies the local file into dst and returns how many records
// were copied. Nothing happens when the file is missing or empty.
func MigrateLocal(ctx context.Context, local *CSVStore, dst RecordStore) (int, error) {
	if !local.Exists() {
		return 0, nil
	}
	records, err := local.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("load local records: %w", err)
	}
	if len(records) == 0 {
		return 0, nil
	}
	if err := dst.Save(ctx, records); err != nil {
		return 0, fmt.Errorf("upload local records: %w", err)
	}
	return len(records), nil
}
