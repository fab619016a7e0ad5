// Package app wires configuration into the stores, clients and services
// shared by the server, the CLI and the photo watcher.
package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"shopmap/internal/cache"
	"shopmap/internal/env"
	"shopmap/internal/service"
	"shopmap/internal/storage"
	"shopmap/internal/store"
	"shopmap/pkg/location"
)

type App struct {
	Config *env.Config
	Logger *zap.Logger

	Local    *store.CSVStore
	Cloud    *store.PostgresStore // nil without DATABASE_URL
	Photos   *storage.PhotoStore  // nil without MINIO_ENDPOINT
	Resolver *store.Resolver
	Shops    *service.ShopService

	closers []func() error
}

// New connects every configured backend. Optional backends that are not
// configured stay nil.
func New(ctx context.Context, cfg *env.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &App{Config: cfg, Logger: logger}
	a.Local = store.NewCSVStore(cfg.Store.CSVPath, logger.Named("csv"))

	var cloud store.CloudTables
	if cfg.CloudEnabled() {
		pg, err := store.OpenPostgres(ctx, cfg.Store.DatabaseURL, logger.Named("postgres"))
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, pg.Close)
		if err := pg.Migrate(ctx); err != nil {
			_ = a.Close()
			return nil, err
		}
		a.Cloud = pg
		cloud = pg
	}
	a.Resolver = store.NewResolver(a.Local, cloud, logger.Named("resolver"))

	var photos service.PhotoStorage
	if cfg.StorageEnabled() {
		ps, err := storage.NewPhotoStore(storage.Config{
			Endpoint:      cfg.Storage.Endpoint,
			AccessKey:     cfg.Storage.AccessKey,
			SecretKey:     cfg.Storage.SecretKey,
			UseSSL:        cfg.Storage.UseSSL,
			Bucket:        cfg.Storage.Bucket,
			Region:        cfg.Storage.Region,
			PublicBaseURL: cfg.Storage.PublicBaseURL,
		}, storage.WithLogger(logger.Named("storage")), storage.WithPresignExpiration(cfg.Storage.PresignExpiry))
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		if err := ps.CreateBucket(ctx); err != nil {
			_ = a.Close()
			return nil, err
		}
		a.Photos = ps
		photos = ps
	}

	var searcher service.Searcher = location.NewClient(cfg.Search.APIKey, location.WithBaseURL(cfg.Search.BaseURL))
	if cfg.RedisEnabled() {
		rc, err := cache.NewRedisSearchCache(cache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, cache.WithTTL(cfg.Search.CacheTTL), cache.WithCacheLogger(logger.Named("cache")))
		if err != nil {
			// Search still works uncached.
			logger.Warn("search cache disabled", zap.Error(err))
		} else {
			a.closers = append(a.closers, rc.Close)
			searcher = cache.NewCachedSearcher(searcher, rc, logger.Named("cache"))
		}
	}

	a.Shops = service.NewShopService(searcher, a.Resolver, photos, logger.Named("shops"))
	logger.Info("backends ready",
		zap.Bool("cloud", a.Cloud != nil),
		zap.Bool("photos", a.Photos != nil),
		zap.Bool("search_key", cfg.Search.APIKey != ""),
		zap.String("csv", cfg.Store.CSVPath))
	return a, nil
}

// RequireCloud returns the Postgres store or an error naming the missing
// setting.
func (a *App) RequireCloud() (*store.PostgresStore, error) {
	if a.Cloud == nil {
		return nil, fmt.Errorf("%w: set DATABASE_URL", store.ErrCloudUnavailable)
	}
	return a.Cloud, nil
}

func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}
