package service

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/google/uuid"

	"shopmap/internal/models"
	"shopmap/internal/store"
	"shopmap/pkg/location"
)

var (
	alice    = uuid.MustParse("5b0f1c38-2f3e-4a57-9d1b-0e4a7f1c2d3e")
	errBoom  = errors.New("boom")
	photoURL = "http://minio:9000/shopphoto/" + alice.String() + "/abc/1700000000.jpg"
)

func ptr(f float64) *float64 { return &f }

type memStore struct {
	records []models.ShopRecord
	saves   int
	loadErr error
	saveErr error
}

func (m *memStore) Load(context.Context) ([]models.ShopRecord, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	out := make([]models.ShopRecord, len(m.records))
	for i, r := range m.records {
		out[i] = r.Clone()
	}
	return out, nil
}

func (m *memStore) Save(_ context.Context, records []models.ShopRecord) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.records = records
	return nil
}

type fakeResolver struct {
	local *memStore
	cloud *memStore
}

func (f *fakeResolver) For(user uuid.UUID) (store.RecordStore, store.Mode, error) {
	if user == uuid.Nil {
		return f.local, store.ModeLocal, nil
	}
	if f.cloud == nil {
		return nil, store.ModeCloud, store.ErrCloudUnavailable
	}
	return f.cloud, store.ModeCloud, nil
}

type fakeSearcher struct {
	pois    []location.POI
	err     error
	keyword string
	city    string
}

func (f *fakeSearcher) Search(_ context.Context, keyword, city string) ([]location.POI, error) {
	f.keyword, f.city = keyword, city
	return f.pois, f.err
}

type fakePhotos struct {
	uploaded  []string
	deleted   []string
	uploadErr error
	deleteErr error
}

func (f *fakePhotos) Upload(_ context.Context, owner uuid.UUID, shop, filename, _ string, r io.Reader, _ int64) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	if _, err := io.ReadAll(r); err != nil {
		return "", err
	}
	u := "http://minio:9000/shopphoto/" + owner.String() + "/" + shop + "/" + filename
	f.uploaded = append(f.uploaded, u)
	return u, nil
}

func (f *fakePhotos) Delete(_ context.Context, rawURL string) (bool, error) {
	if f.deleteErr != nil {
		return false, f.deleteErr
	}
	f.deleted = append(f.deleted, rawURL)
	return true, nil
}

func (f *fakePhotos) SignedURL(_ context.Context, rawURL string) string {
	if !strings.Contains(rawURL, "/shopphoto/") {
		return rawURL
	}
	return rawURL + "?X-Amz-Signature=sig"
}

func sampleRecords() []models.ShopRecord {
	return []models.ShopRecord{
		{
			Name: "Seesaw", City: "上海", Address: "愚园路", Latitude: ptr(31.22), Longitude: ptr(121.44),
			Category: "餐饮服务", JourneyType: models.JourneyCoffee, VisitStatus: models.StatusVisited,
			Rating: 4, ImageURLs: []string{photoURL},
		},
		{
			Name: "外滩", City: "上海", Latitude: ptr(31.24), Longitude: ptr(121.49),
			Category: "风景名胜", JourneyType: models.JourneyScenery, VisitStatus: models.StatusWantToVisit,
		},
		{
			Name: "Manner", City: "上海", Category: "餐饮服务", JourneyType: models.JourneyCoffee,
			VisitStatus: models.StatusWantToVisit,
		},
	}
}

func newTestService(photos PhotoStorage) (*ShopService, *fakeResolver, *fakeSearcher) {
	res := &fakeResolver{
		local: &memStore{records: sampleRecords()},
		cloud: &memStore{records: sampleRecords()},
	}
	search := &fakeSearcher{}
	return NewShopService(search, res, photos, nil), res, search
}
