package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"shopmap/internal/keys"
)

const (
	DefaultBucket            = "shopphoto"
	DefaultPresignExpiration = time.Hour
)

// ErrForeignURL is returned for URLs that do not point into the photo bucket.
var ErrForeignURL = errors.New("url does not belong to the photo bucket")

// objectClient is the subset of *minio.Client the photo store uses.
type objectClient interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
	PresignedGetObject(ctx context.Context, bucketName, objectName string, expires time.Duration, reqParams url.Values) (*url.URL, error)
}

// Config describes the S3-compatible endpoint holding shop photos.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
	Region    string
	// PublicBaseURL prefixes public photo URLs. Defaults to the endpoint
	// with the matching scheme.
	PublicBaseURL string
}

// PhotoStore uploads, removes and signs shop photos.
type PhotoStore struct {
	client  objectClient
	bucket  string
	region  string
	baseURL string
	expiry  time.Duration
	logger  *zap.Logger
	now     func() time.Time
}

type Option func(*PhotoStore)

func WithLogger(l *zap.Logger) Option {
	return func(s *PhotoStore) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithPresignExpiration(d time.Duration) Option {
	return func(s *PhotoStore) {
		if d > 0 {
			s.expiry = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *PhotoStore) { s.now = now }
}

// NewPhotoStore connects to the MinIO endpoint described by cfg.
func NewPhotoStore(cfg Config, opts ...Option) (*PhotoStore, error) {
	if cfg.Endpoint == "" || cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("missing one or more storage settings: endpoint, access key, secret key")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	if cfg.PublicBaseURL == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		cfg.PublicBaseURL = scheme + "://" + cfg.Endpoint
	}
	return newPhotoStore(client, cfg, opts...), nil
}

func newPhotoStore(client objectClient, cfg Config, opts ...Option) *PhotoStore {
	bucket := cfg.Bucket
	if bucket == "" {
		bucket = DefaultBucket
	}
	s := &PhotoStore{
		client:  client,
		bucket:  bucket,
		region:  cfg.Region,
		baseURL: cfg.PublicBaseURL,
		expiry:  DefaultPresignExpiration,
		logger:  zap.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *PhotoStore) Bucket() string { return s.bucket }

// CreateBucket makes the photo bucket if it does not exist yet.
func (s *PhotoStore) CreateBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("error checking bucket existence: %w", err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region}); err != nil {
		return fmt.Errorf("make bucket %q: %w", s.bucket, err)
	}
	s.logger.Info("created photo bucket", zap.String("bucket", s.bucket))
	return nil
}

// Upload stores a photo for owner's shop and returns its public URL.
func (s *PhotoStore) Upload(ctx context.Context, owner uuid.UUID, shop, filename, contentType string, r io.Reader, size int64) (string, error) {
	key := keys.Photo(owner, shop, s.now(), keys.Ext(filename))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("failed to store photo %q: %w", key, err)
	}

	s.logger.Info("stored photo", zap.String("bucket", s.bucket), zap.String("key", key))
	return keys.PublicURL(s.baseURL, s.bucket, key), nil
}

// Key maps a public photo URL back to its object key.
func (s *PhotoStore) Key(rawURL string) (string, error) {
	key, ok := keys.FromURL(rawURL, s.bucket)
	if !ok {
		return "", ErrForeignURL
	}
	return key, nil
}

// URL returns the public URL of key.
func (s *PhotoStore) URL(key string) string {
	return keys.PublicURL(s.baseURL, s.bucket, key)
}

// Delete removes the photo behind rawURL. It reports false without error for
// URLs outside the bucket and for objects that are already gone.
func (s *PhotoStore) Delete(ctx context.Context, rawURL string) (bool, error) {
	key, err := s.Key(rawURL)
	if err != nil {
		return false, nil
	}

	if _, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{}); err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return false, nil
		}
		return false, fmt.Errorf("failed to check photo %q: %w", key, err)
	}

	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return false, fmt.Errorf("failed to remove photo %q: %w", key, err)
	}
	s.logger.Info("removed photo", zap.String("bucket", s.bucket), zap.String("key", key))
	return true, nil
}

// SignedURL returns a time-limited GET URL for rawURL. Foreign URLs and
// signing failures fall back to rawURL.
func (s *PhotoStore) SignedURL(ctx context.Context, rawURL string) string {
	key, err := s.Key(rawURL)
	if err != nil {
		return rawURL
	}
	signed, err := s.client.PresignedGetObject(ctx, s.bucket, key, s.expiry, nil)
	if err != nil {
		s.logger.Warn("failed to sign photo url", zap.String("key", key), zap.Error(err))
		return rawURL
	}
	return signed.String()
}
