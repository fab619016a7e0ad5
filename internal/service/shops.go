package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"shopmap/internal/models"
	"shopmap/internal/store"
	"shopmap/internal/table"
	"shopmap/pkg/location"
)

type Searcher interface {
	Search(ctx context.Context, keyword, city string) ([]location.POI, error)
}

// StoreResolver picks the record store for a user; uuid.Nil is the
// anonymous local user.
type StoreResolver interface {
	For(user uuid.UUID) (store.RecordStore, store.Mode, error)
}

type PhotoStorage interface {
	Upload(ctx context.Context, owner uuid.UUID, shop, filename, contentType string, r io.Reader, size int64) (string, error)
	Delete(ctx context.Context, rawURL string) (bool, error)
	SignedURL(ctx context.Context, rawURL string) string
}

// ShopService implements the user-facing shop operations on top of the
// record store, the POI search and the photo storage. photos may be nil when
// no object storage is configured.
type ShopService struct {
	searcher Searcher
	stores   StoreResolver
	photos   PhotoStorage
	logger   *zap.Logger
}

func NewShopService(searcher Searcher, stores StoreResolver, photos PhotoStorage, logger *zap.Logger) *ShopService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ShopService{searcher: searcher, stores: stores, photos: photos, logger: logger}
}

func (s *ShopService) Search(ctx context.Context, keyword, city string) ([]location.POI, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, fmt.Errorf("%w: keyword is required", ErrInvalidInput)
	}
	pois, err := s.searcher.Search(ctx, keyword, strings.TrimSpace(city))
	if err != nil {
		return nil, err
	}
	s.logger.Debug("search", zap.String("keyword", keyword), zap.Int("hits", len(pois)))
	return pois, nil
}

// Records loads the user's full record set.
func (s *ShopService) Records(ctx context.Context, user uuid.UUID) ([]models.ShopRecord, store.Mode, error) {
	st, mode, err := s.stores.For(user)
	if err != nil {
		return nil, mode, err
	}
	records, err := st.Load(ctx)
	if err != nil {
		return nil, mode, fmt.Errorf("load records: %w", err)
	}
	return records, mode, nil
}

// AddFromSearch appends a search hit as a new "Want to Visit" record and
// returns it with its index.
func (s *ShopService) AddFromSearch(ctx context.Context, user uuid.UUID, poi location.POI, journeyType string) (models.ShopRecord, int, error) {
	if journeyType == "" {
		journeyType = models.JourneyCoffee
	}
	if !models.IsJourneyType(journeyType) {
		return models.ShopRecord{}, 0, fmt.Errorf("%w: unknown journey type %q", ErrInvalidInput, journeyType)
	}
	if strings.TrimSpace(poi.Name) == "" {
		return models.ShopRecord{}, 0, fmt.Errorf("%w: shop name is required", ErrInvalidInput)
	}

	st, _, err := s.stores.For(user)
	if err != nil {
		return models.ShopRecord{}, 0, err
	}
	records, err := st.Load(ctx)
	if err != nil {
		return models.ShopRecord{}, 0, fmt.Errorf("load records: %w", err)
	}

	category := poi.Type
	if category == "" {
		category = models.DefaultCategory
	}
	lat, lon := poi.Latitude, poi.Longitude
	record := models.ShopRecord{
		Name:        poi.Name,
		City:        poi.City,
		Address:     poi.Address,
		Latitude:    &lat,
		Longitude:   &lon,
		Category:    category,
		JourneyType: journeyType,
		VisitStatus: models.StatusWantToVisit,
	}
	record.Normalize()

	records = append(records, record)
	if err := st.Save(ctx, records); err != nil {
		return models.ShopRecord{}, 0, fmt.Errorf("save records: %w", err)
	}
	s.logger.Info("added shop", zap.String("shop", record.Name), zap.String("journey_type", journeyType))
	return record, len(records) - 1, nil
}

// Table returns the editable view of the user's records.
func (s *ShopService) Table(ctx context.Context, user uuid.UUID) ([]table.Row, error) {
	records, _, err := s.Records(ctx, user)
	if err != nil {
		return nil, err
	}
	return table.View(records), nil
}

// SaveTable merges an edited table view into the stored records. Nothing is
// written when the view is unchanged; the first result reports whether a save
// happened.
func (s *ShopService) SaveTable(ctx context.Context, user uuid.UUID, rows []table.Row) (bool, []models.ShopRecord, error) {
	st, _, err := s.stores.For(user)
	if err != nil {
		return false, nil, err
	}
	prior, err := st.Load(ctx)
	if err != nil {
		return false, nil, fmt.Errorf("load records: %w", err)
	}
	if !table.Changed(rows, prior) {
		return false, prior, nil
	}

	records := table.Reconcile(rows, prior)
	if err := st.Save(ctx, records); err != nil {
		return false, nil, fmt.Errorf("save records: %w", err)
	}
	s.logger.Info("saved table", zap.Int("before", len(prior)), zap.Int("after", len(records)))
	return true, records, nil
}

// load returns the user's store and records together, for operations that
// modify one record.
func (s *ShopService) load(ctx context.Context, user uuid.UUID) (store.RecordStore, store.Mode, []models.ShopRecord, error) {
	st, mode, err := s.stores.For(user)
	if err != nil {
		return nil, mode, nil, err
	}
	records, err := st.Load(ctx)
	if err != nil {
		return nil, mode, nil, fmt.Errorf("load records: %w", err)
	}
	return st, mode, records, nil
}

func checkIndex(records []models.ShopRecord, index int) error {
	if index < 0 || index >= len(records) {
		return fmt.Errorf("%w: shop %d", ErrNotFound, index)
	}
	return nil
}
