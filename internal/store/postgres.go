package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	"go.uber.org/zap"

	"shopmap/internal/models"
)

// Schema creates the cloud table. position keeps the user's row order, which
// is the only identity a record has.
const Schema = `
CREATE TABLE IF NOT EXISTS user_shops (
    id           UUID PRIMARY KEY,
    user_id      UUID NOT NULL,
    position     INTEGER NOT NULL,
    shop_name    TEXT NOT NULL DEFAULT '',
    city         TEXT NOT NULL DEFAULT '',
    address      TEXT NOT NULL DEFAULT '',
    latitude     DOUBLE PRECISION,
    longitude    DOUBLE PRECISION,
    shop_type    TEXT NOT NULL DEFAULT '',
    type         TEXT NOT NULL DEFAULT 'Coffee',
    visit_status TEXT NOT NULL DEFAULT 'Want to Visit',
    notes        TEXT NOT NULL DEFAULT '',
    rating       INTEGER NOT NULL DEFAULT 0,
    image_url    TEXT,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS user_shops_user_position_idx ON user_shops (user_id, position);`

const selectShops = `SELECT shop_name, city, address, latitude, longitude, shop_type, type, visit_status, notes, rating, image_url
FROM user_shops WHERE user_id = $1 ORDER BY position`

const deleteShops = `DELETE FROM user_shops WHERE user_id = $1`

const insertShop = `INSERT INTO user_shops
(id, user_id, position, shop_name, city, address, latitude, longitude, shop_type, type, visit_status, notes, rating, image_url)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

// PostgresStore holds every user's records in the user_shops table.
type PostgresStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// OpenPostgres connects through the pgx driver and verifies the connection.
func OpenPostgres(ctx context.Context, dsn string, logger *zap.Logger) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return NewPostgresStore(db, logger), nil
}

func NewPostgresStore(db *sql.DB, logger *zap.Logger) *PostgresStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PostgresStore{db: db, logger: logger}
}

// Migrate creates the table and index when missing.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("create user_shops: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// ForUser returns the record set owned by user.
func (s *PostgresStore) ForUser(user uuid.UUID) *UserTable {
	return &UserTable{db: s.db, user: user, logger: s.logger.With(zap.String("user_id", user.String()))}
}

// UserTable is one user's slice of user_shops.
type UserTable struct {
	db     *sql.DB
	user   uuid.UUID
	logger *zap.Logger
}

func (t *UserTable) User() uuid.UUID { return t.user }

func (t *UserTable) Load(ctx context.Context) ([]models.ShopRecord, error) {
	rows, err := t.db.QueryContext(ctx, selectShops, t.user.String())
	if err != nil {
		return nil, fmt.Errorf("query user_shops: %w", err)
	}
	defer rows.Close()

	records := []models.ShopRecord{}
	for rows.Next() {
		var (
			r        models.ShopRecord
			lat, lon sql.NullFloat64
			images   sql.NullString
		)
		if err := rows.Scan(&r.Name, &r.City, &r.Address, &lat, &lon, &r.Category,
			&r.JourneyType, &r.VisitStatus, &r.Notes, &r.Rating, &images); err != nil {
			return nil, fmt.Errorf("scan user_shops: %w", err)
		}
		if lat.Valid {
			r.Latitude = &lat.Float64
		}
		if lon.Valid {
			r.Longitude = &lon.Float64
		}
		r.ImageURLs = models.ParseImageList(images.String)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user_shops: %w", err)
	}
	return normalizeAll(records), nil
}

// Save deletes every row of the user and inserts records in order.
func (t *UserTable) Save(ctx context.Context, records []models.ShopRecord) error {
	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, deleteShops, t.user.String()); err != nil {
		return fmt.Errorf("delete user_shops: %w", err)
	}
	for i, r := range records {
		r.Normalize()
		if _, err := tx.ExecContext(ctx, insertShop, insertArgs(uuid.New(), t.user, i, r)...); err != nil {
			return fmt.Errorf("insert %q: %w", r.Name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	t.logger.Info("synced cloud records", zap.Int("count", len(records)))
	return nil
}

func insertArgs(id, user uuid.UUID, position int, r models.ShopRecord) []any {
	return []any{
		id.String(),
		user.String(),
		position,
		r.Name,
		r.City,
		r.Address,
		nullFloat(r.Latitude),
		nullFloat(r.Longitude),
		r.Category,
		r.JourneyType,
		r.VisitStatus,
		r.Notes,
		r.Rating,
		nullString(models.EncodeImageList(r.ImageURLs)),
	}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
