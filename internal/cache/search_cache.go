package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"shopmap/pkg/location"
)

const (
	DefaultSearchTTL = 10 * time.Minute
	searchKeyPrefix  = "shopmap:search"
)

// SearchCache stores POI search results by keyword and city.
type SearchCache interface {
	Get(ctx context.Context, keyword, city string) ([]location.POI, bool, error)
	Set(ctx context.Context, keyword, city string, pois []location.POI) error
}

// Searcher is the POI lookup the cache sits in front of.
type Searcher interface {
	Search(ctx context.Context, keyword, city string) ([]location.POI, error)
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RedisSearchCache implements SearchCache using Redis.
type RedisSearchCache struct {
	client     *redis.Client
	ownsClient bool
	ttl        time.Duration
	logger     *zap.Logger
}

type RedisSearchCacheOption func(*RedisSearchCache)

func WithTTL(ttl time.Duration) RedisSearchCacheOption {
	return func(c *RedisSearchCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

func WithCacheLogger(logger *zap.Logger) RedisSearchCacheOption {
	return func(c *RedisSearchCache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewRedisSearchCache connects to Redis and verifies the connection.
func NewRedisSearchCache(cfg RedisConfig, opts ...RedisSearchCacheOption) (*RedisSearchCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	c := NewRedisSearchCacheWithClient(client, opts...)
	c.ownsClient = true
	return c, nil
}

// NewRedisSearchCacheWithClient wraps an existing client. The caller keeps
// ownership of it.
func NewRedisSearchCacheWithClient(client *redis.Client, opts ...RedisSearchCacheOption) *RedisSearchCache {
	c := &RedisSearchCache{
		client: client,
		ttl:    DefaultSearchTTL,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// searchKey escapes both parts so a ':' inside the city or keyword cannot
// collide with the separator.
func searchKey(keyword, city string) string {
	return fmt.Sprintf("%s:%s:%s", searchKeyPrefix,
		url.QueryEscape(strings.TrimSpace(city)), url.QueryEscape(strings.TrimSpace(keyword)))
}

func (c *RedisSearchCache) Get(ctx context.Context, keyword, city string) ([]location.POI, bool, error) {
	key := searchKey(keyword, city)
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		c.logger.Debug("search cache miss", zap.String("key", key))
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get search results from cache: %w", err)
	}

	var pois []location.POI
	if err := json.Unmarshal(data, &pois); err != nil {
		_ = c.client.Del(ctx, key)
		return nil, false, fmt.Errorf("failed to unmarshal cached search results: %w", err)
	}
	c.logger.Debug("search cache hit", zap.String("key", key), zap.Int("count", len(pois)))
	return pois, true, nil
}

func (c *RedisSearchCache) Set(ctx context.Context, keyword, city string, pois []location.POI) error {
	data, err := json.Marshal(pois)
	if err != nil {
		return fmt.Errorf("failed to marshal search results: %w", err)
	}
	if err := c.client.Set(ctx, searchKey(keyword, city), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache search results: %w", err)
	}
	return nil
}

func (c *RedisSearchCache) Close() error {
	if c.ownsClient {
		return c.client.Close()
	}
	return nil
}

// CachedSearcher answers from the cache when it can and fills it on a miss.
// Cache failures are logged and never fail a search.
type CachedSearcher struct {
	next   Searcher
	cache  SearchCache
	logger *zap.Logger
}

func NewCachedSearcher(next Searcher, cache SearchCache, logger *zap.Logger) *CachedSearcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedSearcher{next: next, cache: cache, logger: logger}
}

func (s *CachedSearcher) Search(ctx context.Context, keyword, city string) ([]location.POI, error) {
	if pois, ok, err := s.cache.Get(ctx, keyword, city); err != nil {
		s.logger.Warn("search cache read failed", zap.String("keyword", keyword), zap.Error(err))
	} else if ok {
		return pois, nil
	}

	pois, err := s.next.Search(ctx, keyword, city)
	if err != nil {
		return nil, err
	}
	// Empty results are not cached so a newly listed place shows up at once.
	if len(pois) > 0 {
		if err := s.cache.Set(ctx, keyword, city, pois); err != nil {
			s.logger.Warn("search cache write failed", zap.String("keyword", keyword), zap.Error(err))
		}
	}
	return pois, nil
}
