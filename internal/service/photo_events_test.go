package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopmap/internal/store"
)

func newTestJanitor(records *memStore) (*PhotoJanitor, *[]uuid.UUID) {
	var asked []uuid.UUID
	j := NewPhotoJanitor(func(user uuid.UUID) store.RecordStore {
		asked = append(asked, user)
		return records
	}, "shopphoto", nil)
	return j, &asked
}

func TestPhotoJanitor_Handle(t *testing.T) {
	ctx := context.Background()
	key := alice.String() + "/abc/1700000000.jpg"

	t.Run("prunes the removed photo", func(t *testing.T) {
		records := &memStore{records: sampleRecords()}
		records.records[2].ImageURLs = []string{"https://example.com/x.png", photoURL}
		j, asked := newTestJanitor(records)

		n, err := j.Handle(ctx, bucketEvent("s3:ObjectRemoved:Delete", "shopphoto", key))
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		assert.Equal(t, []uuid.UUID{alice}, *asked)
		assert.Nil(t, records.records[0].ImageURLs)
		assert.Equal(t, []string{"https://example.com/x.png"}, records.records[2].ImageURLs)
		assert.Equal(t, 1, records.saves)
	})

	t.Run("nothing to prune is not saved", func(t *testing.T) {
		records := &memStore{records: sampleRecords()}
		j, _ := newTestJanitor(records)

		n, err := j.Handle(ctx, bucketEvent("s3:ObjectRemoved:Delete", "shopphoto", alice.String()+"/other.jpg"))
		require.NoError(t, err)
		assert.Zero(t, n)
		assert.Zero(t, records.saves)
	})

	ignored := []struct {
		name  string
		event string
		bkt   string
		key   string
	}{
		{"created event", "s3:ObjectCreated:Put", "shopphoto", key},
		{"other bucket", "s3:ObjectRemoved:Delete", "backups", key},
		{"no owner prefix", "s3:ObjectRemoved:Delete", "shopphoto", "legacy/1.jpg"},
	}
	for _, tt := range ignored {
		t.Run(tt.name, func(t *testing.T) {
			records := &memStore{records: sampleRecords()}
			j, asked := newTestJanitor(records)

			n, err := j.Handle(ctx, bucketEvent(tt.event, tt.bkt, tt.key))
			require.NoError(t, err)
			assert.Zero(t, n)
			assert.Empty(t, *asked)
		})
	}

	t.Run("load error", func(t *testing.T) {
		j, _ := newTestJanitor(&memStore{loadErr: errBoom})
		_, err := j.Handle(ctx, bucketEvent("s3:ObjectRemoved:Delete", "shopphoto", key))
		assert.ErrorIs(t, err, errBoom)
	})
}
