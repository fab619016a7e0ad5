package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopmap/internal/models"
	"shopmap/internal/store"
	"shopmap/pkg/location"
)

func TestRenderPOIs(t *testing.T) {
	var buf bytes.Buffer
	err := renderPOIs(&buf, []location.POI{{Name: "Seesaw", City: "上海市", Type: "餐饮服务", Latitude: 31.22, Longitude: 121.44}})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Seesaw")
	assert.Contains(t, out, "31.220000,121.440000")
}

func TestRenderRecords(t *testing.T) {
	lat, lon := 31.22, 121.44
	var buf bytes.Buffer
	err := renderRecords(&buf, []models.ShopRecord{
		{Name: "Seesaw", Latitude: &lat, Longitude: &lon, Rating: 2, ImageURLs: []string{"a", "b"}},
		{Name: "外滩"},
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "⭐⭐")
	assert.Contains(t, out, "无评分")
	assert.Contains(t, out, "31.220000,121.440000")
}

func TestParseUser(t *testing.T) {
	id, err := parseUser("")
	require.NoError(t, err)
	assert.Equal(t, uuid.Nil, id)

	want := uuid.New()
	id, err = parseUser(want.String())
	require.NoError(t, err)
	assert.Equal(t, want, id)

	_, err = parseUser("bob")
	assert.Error(t, err)
}

type memStore struct{ records []models.ShopRecord }

func (m *memStore) Load(context.Context) ([]models.ShopRecord, error) { return m.records, nil }

func (m *memStore) Save(_ context.Context, records []models.ShopRecord) error {
	m.records = records
	return nil
}

func TestMigrate(t *testing.T) {
	ctx := context.Background()
	cmd := &cobra.Command{}
	cmd.SetContext(ctx)

	local := store.NewCSVStore(filepath.Join(t.TempDir(), "shops.csv"), nil)
	require.NoError(t, local.Save(ctx, []models.ShopRecord{{Name: "Seesaw"}, {Name: "外滩"}}))

	dst := &memStore{}
	n, err := migrate(cmd, local, dst)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Len(t, dst.records, 2)

	_, err = migrate(cmd, local, dst)
	assert.ErrorIs(t, err, errCloudNotEmpty)
}

func TestRootCmd_Wiring(t *testing.T) {
	root := newRootCmd()
	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["search"])
	assert.True(t, names["list"])
	assert.True(t, names["migrate"])
}
