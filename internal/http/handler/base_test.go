package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopmap/internal/service"
	"shopmap/internal/store"
	"shopmap/pkg/location"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestContext(header string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		c.Request.Header.Set(UserIDHeader, header)
	}
	return c, w
}

func TestUserID(t *testing.T) {
	id := uuid.New()
	tests := []struct {
		name    string
		header  string
		want    uuid.UUID
		wantErr bool
	}{
		{"anonymous", "", uuid.Nil, false},
		{"valid", id.String(), id, false},
		{"padded", "  " + id.String() + " ", id, false},
		{"garbage", "not-a-uuid", uuid.Nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestContext(tt.header)
			got, err := userID(c)
			if tt.wantErr {
				assert.ErrorIs(t, err, errBadUserID)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHandleError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{errBadUserID, http.StatusBadRequest},
		{fmt.Errorf("%w: keyword is required", service.ErrInvalidInput), http.StatusBadRequest},
		{fmt.Errorf("%w: shop 4", service.ErrNotFound), http.StatusNotFound},
		{service.ErrCloudRequired, http.StatusUnauthorized},
		{service.ErrUnsupportedImage, http.StatusUnsupportedMediaType},
		{service.ErrStorageUnavailable, http.StatusServiceUnavailable},
		{store.ErrCloudUnavailable, http.StatusServiceUnavailable},
		{location.ErrNoAPIKey, http.StatusServiceUnavailable},
		{errors.New("amap search failed: DAILY_QUERY_OVER_LIMIT"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			c, w := newTestContext("")
			(&BaseHandler{}).HandleError(c, tt.err)

			assert.Equal(t, tt.want, w.Code)
			var body ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.err.Error(), body.Error)
		})
	}
}

func TestValidationError(t *testing.T) {
	type payload struct {
		Name   string `binding:"required"`
		Rating int    `binding:"min=0,max=5"`
	}

	c, w := newTestContext("")
	err := binding.Validator.ValidateStruct(&payload{Rating: 9})
	require.Error(t, err)
	(&BaseHandler{}).ValidationError(c, err)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "request validation failed", body.Error)
	require.Len(t, body.Details, 2)
	assert.Equal(t, "payload.Name", body.Details[0].Field)
	assert.Equal(t, "is required", body.Details[0].Message)
	assert.Equal(t, "must be at most 5", body.Details[1].Message)
}

func TestValidationError_NotValidator(t *testing.T) {
	c, w := newTestContext("")
	(&BaseHandler{}).ValidationError(c, errors.New("unexpected EOF"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"unexpected EOF"}`, w.Body.String())
}
