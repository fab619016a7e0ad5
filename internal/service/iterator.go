// Package service holds the shop operations behind the HTTP API and the CLI,
// and the bucket event processing behind the photo watcher.
package service

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/minio/minio-go/v7/pkg/notification"
	"go.uber.org/zap"
)

// Iterator reads MinIO bucket notifications from a MessageIterator, runs the
// loader on every record of every message and yields the results. A message
// is committed once all of its records were handled. Messages that fail to
// decode or load are logged and skipped without a commit; there is no retry,
// so the next successful commit moves the group offset past them.
type Iterator[T any] struct {
	msgIterator MessageIterator
	loader      LoaderFunc[T]
	logger      *zap.Logger
}

func NewIterator[T any](iterator MessageIterator, loader LoaderFunc[T], logger *zap.Logger) *Iterator[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Iterator[T]{
		msgIterator: iterator,
		loader:      loader,
		logger:      logger,
	}
}

// Objects streams loader results until the message channel closes or ctx is
// done.
func (it *Iterator[T]) Objects(ctx context.Context) <-chan *FetchedObject[T] {
	out := make(chan *FetchedObject[T])
	go func() {
		defer close(out)

		for msg := range it.msgIterator.Messages() {
			if ctx.Err() != nil {
				return
			}
			log := it.logger.With(zap.Int("partition", msg.Partition), zap.Int64("offset", msg.Offset))

			var info notification.Info
			if err := json.Unmarshal(msg.Value, &info); err != nil {
				log.Warn("skipping undecodable bucket notification", zap.Error(err))
				continue
			}

			handled := true
			for _, event := range info.Records {
				key, err := url.QueryUnescape(event.S3.Object.Key)
				if err != nil {
					log.Warn("skipping event with malformed object key", zap.String("key", event.S3.Object.Key), zap.Error(err))
					handled = false
					break
				}
				event.S3.Object.Key = key

				data, err := it.loader(ctx, event)
				if err != nil {
					log.Error("failed to handle bucket event",
						zap.String("event", event.EventName), zap.String("key", key), zap.Error(err))
					handled = false
					break
				}

				select {
				case out <- &FetchedObject[T]{Data: data, Event: event}:
				case <-ctx.Done():
					return
				}
			}
			if !handled {
				continue
			}

			if err := it.msgIterator.CommitOffset(ctx, msg); err != nil {
				log.Error("failed to commit offset", zap.Error(err))
			}
		}
	}()
	return out
}
