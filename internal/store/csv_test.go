package store

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopmap/internal/models"
)

func ptr(f float64) *float64 { return &f }

func sampleRecords() []models.ShopRecord {
	return []models.ShopRecord{
		{
			Name: "Seesaw", City: "上海", Address: "愚园路, 1号", Latitude: ptr(31.22), Longitude: ptr(121.44),
			Category: "餐饮服务", JourneyType: models.JourneyCoffee, VisitStatus: models.StatusVisited,
			Notes: "line one\nline two", Rating: 4, ImageURLs: []string{"http://minio/shopphoto/a.jpg", "http://minio/shopphoto/b.jpg"},
		},
		{
			Name: "外滩", City: "上海", JourneyType: models.JourneyScenery, VisitStatus: models.StatusWantToVisit,
		},
	}
}

func TestCSVStore_LoadMissingFile(t *testing.T) {
	s := NewCSVStore(filepath.Join(t.TempDir(), "shops_data.csv"), nil)

	records, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.False(t, s.Exists())
}

func TestCSVStore_SaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shops_data.csv")
	s := NewCSVStore(path, nil)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, sampleRecords()))
	assert.True(t, s.Exists())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(raw, utf8BOM), "file should start with a UTF-8 BOM")

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleRecords(), got)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file should be cleaned up")
}

func TestReadCSV(t *testing.T) {
	tests := []struct {
		name  string
		input string
		check func(t *testing.T, got []models.ShopRecord)
	}{
		{
			name:  "empty input",
			input: "",
			check: func(t *testing.T, got []models.ShopRecord) { assert.Empty(t, got) },
		},
		{
			name:  "missing columns get defaults",
			input: "shop_name,address\nManner,南京西路\n",
			check: func(t *testing.T, got []models.ShopRecord) {
				require.Len(t, got, 1)
				assert.Equal(t, "Manner", got[0].Name)
				assert.Equal(t, models.StatusWantToVisit, got[0].VisitStatus)
				assert.Equal(t, models.JourneyCoffee, got[0].JourneyType)
				assert.Equal(t, 0, got[0].Rating)
				assert.Nil(t, got[0].Latitude)
				assert.Nil(t, got[0].ImageURLs)
			},
		},
		{
			name: "spreadsheet artefacts are cleaned",
			input: "shop_name,city,latitude,longitude,notes,rating,image_url,extra\n" +
				"Seesaw,nan,31.22,,nan,4.0,http://legacy/x.jpg,ignored\n",
			check: func(t *testing.T, got []models.ShopRecord) {
				require.Len(t, got, 1)
				assert.Equal(t, "", got[0].City)
				assert.Equal(t, "", got[0].Notes)
				assert.Equal(t, 31.22, *got[0].Latitude)
				assert.Nil(t, got[0].Longitude)
				assert.Equal(t, 4, got[0].Rating)
				assert.Equal(t, []string{"http://legacy/x.jpg"}, got[0].ImageURLs)
			},
		},
		{
			name:  "bom and short rows",
			input: string(utf8BOM) + "shop_name,city,rating\nA\nB,北京,5\n",
			check: func(t *testing.T, got []models.ShopRecord) {
				require.Len(t, got, 2)
				assert.Equal(t, "A", got[0].Name)
				assert.Equal(t, "", got[0].City)
				assert.Equal(t, "北京", got[1].City)
				assert.Equal(t, 5, got[1].Rating)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadCSV(strings.NewReader(tt.input))
			require.NoError(t, err)
			tt.check(t, got)
		})
	}
}

func TestWriteCSV_Header(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))

	out := strings.TrimPrefix(buf.String(), string(utf8BOM))
	assert.Equal(t, strings.Join(models.Columns, ",")+"\n", out)
}
