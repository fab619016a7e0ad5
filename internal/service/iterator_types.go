package service

import (
	"context"

	"github.com/minio/minio-go/v7/pkg/notification"
	"github.com/segmentio/kafka-go"
)

// MessageIterator is the message source an Iterator drains. Implementations
// own the consumer lifecycle and close the Messages channel when they stop.
type MessageIterator interface {
	Messages() <-chan kafka.Message

	// CommitOffset acknowledges a fully handled message.
	CommitOffset(ctx context.Context, msg kafka.Message) error
}

// LoaderFunc handles one bucket event and returns its result. The event's
// object key is already URL-decoded.
type LoaderFunc[T any] func(ctx context.Context, event notification.Event) (T, error)

// FetchedObject pairs a loader result with the event that produced it.
type FetchedObject[T any] struct {
	Data  T
	Event notification.Event
}
