package service

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7/pkg/notification"
	"go.uber.org/zap"

	"shopmap/internal/keys"
	"shopmap/internal/store"
)

const objectRemovedPrefix = "s3:ObjectRemoved:"

// RecordsFor returns the cloud record set of user.
type RecordsFor func(user uuid.UUID) store.RecordStore

// PhotoJanitor keeps records consistent with the photo bucket: when a photo
// object is removed, URLs pointing at it are dropped from the owner's records.
type PhotoJanitor struct {
	records RecordsFor
	bucket  string
	logger  *zap.Logger
}

func NewPhotoJanitor(records RecordsFor, bucket string, logger *zap.Logger) *PhotoJanitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PhotoJanitor{records: records, bucket: bucket, logger: logger}
}

// Handle processes one bucket event and returns how many image URLs were
// pruned. Events for other buckets, other event types and keys without an
// owner prefix are ignored.
func (j *PhotoJanitor) Handle(ctx context.Context, event notification.Event) (int, error) {
	if !strings.HasPrefix(event.EventName, objectRemovedPrefix) || event.S3.Bucket.Name != j.bucket {
		return 0, nil
	}
	key := event.S3.Object.Key
	owner, ok := keys.Owner(key)
	if !ok {
		j.logger.Debug("ignoring removed object without owner", zap.String("key", key))
		return 0, nil
	}

	records := j.records(owner)
	current, err := records.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("load records of %s: %w", owner, err)
	}

	pruned := 0
	for i := range current {
		before := len(current[i].ImageURLs)
		current[i].ImageURLs = slices.DeleteFunc(current[i].ImageURLs, func(u string) bool {
			k, ok := keys.FromURL(u, j.bucket)
			return ok && k == key
		})
		if len(current[i].ImageURLs) == 0 {
			current[i].ImageURLs = nil
		}
		pruned += before - len(current[i].ImageURLs)
	}
	if pruned == 0 {
		return 0, nil
	}

	if err := records.Save(ctx, current); err != nil {
		return 0, fmt.Errorf("save records of %s: %w", owner, err)
	}
	j.logger.Info("pruned removed photo from records",
		zap.String("user_id", owner.String()), zap.String("key", key), zap.Int("pruned", pruned))
	return pruned, nil
}
