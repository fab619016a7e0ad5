package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopmap/internal/models"
	"shopmap/pkg/geo"
)

func TestBuildMap(t *testing.T) {
	view := BuildMap(sampleRecords(), models.JourneyCoffee)

	assert.Equal(t, geo.DefaultZoom, view.Zoom)
	assert.Equal(t, geo.TileURL, view.TileURL)
	assert.Equal(t, 2, view.Total, "both coffee shops are counted")
	require.Len(t, view.Markers, 1, "only the one with coordinates is plotted")

	m := view.Markers[0]
	assert.Equal(t, 0, m.Index)
	assert.Equal(t, "Seesaw", m.Name)
	assert.Equal(t, "red", m.Color)
	assert.Equal(t, "cutlery", m.Icon)
	assert.Equal(t, "⭐⭐⭐⭐", m.Stars)
	assert.Equal(t, geo.Point{Lat: 31.22, Lon: 121.44}, view.Center)
}

func TestBuildMap_AllAndEmpty(t *testing.T) {
	view := BuildMap(sampleRecords(), "")
	require.Len(t, view.Markers, 2)
	scenery := view.Markers[1]
	assert.Equal(t, 1, scenery.Index, "marker index is the position in the full record set")
	assert.Equal(t, "green", scenery.Color)
	assert.Equal(t, "camera", scenery.Icon)
	assert.Equal(t, "无评分", scenery.Stars)

	empty := BuildMap(sampleRecords(), models.JourneyBar)
	assert.Equal(t, geo.DefaultCenter, empty.Center)
	assert.NotNil(t, empty.Markers)
	assert.Empty(t, empty.Markers)
	assert.Zero(t, empty.Total)
}

func TestShopService_Map(t *testing.T) {
	svc, _, _ := newTestService(nil)

	view, err := svc.Map(context.Background(), uuid.Nil, models.JourneyScenery)
	require.NoError(t, err)
	require.Len(t, view.Markers, 1)
	assert.Equal(t, "外滩", view.Markers[0].Name)

	_, err = svc.Map(context.Background(), uuid.Nil, "Museum")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestShopService_ShopAt(t *testing.T) {
	svc, _, _ := newTestService(nil)
	ctx := context.Background()

	i, record, err := svc.ShopAt(ctx, uuid.Nil, 31.24005, 121.48995)
	require.NoError(t, err)
	assert.Equal(t, 1, i)
	assert.Equal(t, "外滩", record.Name)

	_, _, err = svc.ShopAt(ctx, uuid.Nil, 31.25, 121.49)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFindAt_FirstMatchWins(t *testing.T) {
	records := []models.ShopRecord{
		{Name: "no coords"},
		{Name: "first", Latitude: ptr(30), Longitude: ptr(120)},
		{Name: "second", Latitude: ptr(30.00005), Longitude: ptr(120.00005)},
	}
	i, ok := FindAt(records, geo.Point{Lat: 30.00003, Lon: 120.00003})
	require.True(t, ok)
	assert.Equal(t, 1, i)
}
