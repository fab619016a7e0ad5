package store

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testUser = uuid.MustParse("7d444840-9dc0-11d1-b245-5ffdce74fad2")

var shopColumns = []string{
	"shop_name", "city", "address", "latitude", "longitude", "shop_type",
	"type", "visit_status", "notes", "rating", "image_url",
}

func newMockStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresStore(db, nil), mock
}

func TestUserTable_Load(t *testing.T) {
	s, mock := newMockStore(t)

	rows := sqlmock.NewRows(shopColumns).
		AddRow("Seesaw", "上海", "愚园路", 31.22, 121.44, "餐饮服务", "Coffee", "Visited", "", 4, `["http://minio/shopphoto/a.jpg"]`).
		AddRow("外滩", "上海", "", nil, nil, "", "Scenery", "Want to Visit", "", 0, nil)
	mock.ExpectQuery(regexp.QuoteMeta("FROM user_shops WHERE user_id = $1 ORDER BY position")).
		WithArgs(testUser.String()).
		WillReturnRows(rows)

	got, err := s.ForUser(testUser).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "Seesaw", got[0].Name)
	assert.Equal(t, 31.22, *got[0].Latitude)
	assert.Equal(t, []string{"http://minio/shopphoto/a.jpg"}, got[0].ImageURLs)
	assert.Nil(t, got[1].Latitude)
	assert.Nil(t, got[1].ImageURLs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserTable_LoadQueryError(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery("FROM user_shops").WillReturnError(errors.New("connection reset"))

	_, err := s.ForUser(testUser).Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestUserTable_SaveReplacesAll(t *testing.T) {
	s, mock := newMockStore(t)
	records := sampleRecords()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(deleteShops)).
		WithArgs(testUser.String()).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO user_shops")).
		WithArgs(sqlmock.AnyArg(), testUser.String(), 0, "Seesaw", "上海", "愚园路, 1号", 31.22, 121.44,
			"餐饮服务", "Coffee", "Visited", "line one\nline two", 4,
			`["http://minio/shopphoto/a.jpg","http://minio/shopphoto/b.jpg"]`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO user_shops")).
		WithArgs(sqlmock.AnyArg(), testUser.String(), 1, "外滩", "上海", "", nil, nil,
			"", "Scenery", "Want to Visit", "", 0, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, s.ForUser(testUser).Save(context.Background(), records))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserTable_SaveEmptyOnlyDeletes(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(deleteShops)).
		WithArgs(testUser.String()).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	require.NoError(t, s.ForUser(testUser).Save(context.Background(), nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserTable_SaveRollsBackOnInsertError(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(deleteShops)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO user_shops")).WillReturnError(errors.New("value too long"))
	mock.ExpectRollback()

	err := s.ForUser(testUser).Save(context.Background(), sampleRecords())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Seesaw")
	assert.NoError(t, mock.ExpectationsWereMet())
}
