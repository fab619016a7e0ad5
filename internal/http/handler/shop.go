package handler

import (
	"context"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"shopmap/internal/models"
	"shopmap/internal/service"
	"shopmap/internal/store"
	"shopmap/internal/table"
	"shopmap/pkg/location"
)

// Shops is the service surface the HTTP API exposes.
type Shops interface {
	Search(ctx context.Context, keyword, city string) ([]location.POI, error)
	Records(ctx context.Context, user uuid.UUID) ([]models.ShopRecord, store.Mode, error)
	AddFromSearch(ctx context.Context, user uuid.UUID, poi location.POI, journeyType string) (models.ShopRecord, int, error)
	Table(ctx context.Context, user uuid.UUID) ([]table.Row, error)
	SaveTable(ctx context.Context, user uuid.UUID, rows []table.Row) (bool, []models.ShopRecord, error)
	Map(ctx context.Context, user uuid.UUID, journeyType string) (service.MapView, error)
	ShopAt(ctx context.Context, user uuid.UUID, lat, lng float64) (int, models.ShopRecord, error)
	Images(ctx context.Context, user uuid.UUID, index int) ([]service.Image, error)
	AttachImage(ctx context.Context, user uuid.UUID, index int, filename, contentType string, r io.Reader, size int64) (string, error)
	RemoveImage(ctx context.Context, user uuid.UUID, index, pos int) error
}

type ShopHandler struct {
	BaseHandler
	shops Shops
}

func NewShopHandler(shops Shops) *ShopHandler {
	return &ShopHandler{shops: shops}
}

type SearchQuery struct {
	Keyword string `form:"keyword" binding:"required"`
	City    string `form:"city"`
}

type POIRequest struct {
	Name      string  `json:"name" binding:"required"`
	Address   string  `json:"address"`
	City      string  `json:"city"`
	Type      string  `json:"type"`
	Latitude  float64 `json:"latitude" binding:"min=-90,max=90"`
	Longitude float64 `json:"longitude" binding:"min=-180,max=180"`
}

type AddShopRequest struct {
	POI         POIRequest `json:"poi"`
	JourneyType string     `json:"journey_type" binding:"omitempty,oneof=Coffee Scenery Food Bar Other"`
}

type AddShopResponse struct {
	Index  int               `json:"index"`
	Record models.ShopRecord `json:"record"`
}

type RecordsResponse struct {
	Mode    store.Mode          `json:"mode"`
	Records []models.ShopRecord `json:"records"`
}

type TableResponse struct {
	Columns []string    `json:"columns"`
	Rows    []table.Row `json:"rows"`
}

type SaveTableRequest struct {
	Rows []table.Row `json:"rows" binding:"required,dive"`
}

type SaveTableResponse struct {
	Saved   bool                `json:"saved"`
	Records []models.ShopRecord `json:"records"`
}

type MapQuery struct {
	JourneyType string `form:"journey_type" binding:"omitempty,oneof=Coffee Scenery Food Bar Other"`
}

type ClickQuery struct {
	Lat *float64 `form:"lat" binding:"required"`
	Lng *float64 `form:"lng" binding:"required"`
}

type ClickResponse struct {
	Index  int               `json:"index"`
	Record models.ShopRecord `json:"record"`
}

type UploadResponse struct {
	URL string `json:"url"`
}

// GET /api/search?keyword=&city=
func (h *ShopHandler) Search(c *gin.Context) {
	var q SearchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.ValidationError(c, err)
		return
	}
	pois, err := h.shops.Search(c.Request.Context(), q.Keyword, q.City)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, pois)
}

// GET /api/shops
func (h *ShopHandler) List(c *gin.Context) {
	user, err := userID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	records, mode, err := h.shops.Records(c.Request.Context(), user)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if records == nil {
		records = []models.ShopRecord{}
	}
	h.Success(c, RecordsResponse{Mode: mode, Records: records})
}

// POST /api/shops
func (h *ShopHandler) Add(c *gin.Context) {
	user, err := userID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	var req AddShopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}
	poi := location.POI{
		Name:      req.POI.Name,
		Address:   req.POI.Address,
		City:      req.POI.City,
		Type:      req.POI.Type,
		Latitude:  req.POI.Latitude,
		Longitude: req.POI.Longitude,
	}
	record, index, err := h.shops.AddFromSearch(c.Request.Context(), user, poi, req.JourneyType)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, AddShopResponse{Index: index, Record: record})
}

// GET /api/table
func (h *ShopHandler) Table(c *gin.Context) {
	user, err := userID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	rows, err := h.shops.Table(c.Request.Context(), user)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, TableResponse{Columns: table.DisplayColumns, Rows: rows})
}

// PUT /api/table
func (h *ShopHandler) SaveTable(c *gin.Context) {
	user, err := userID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	var req SaveTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}
	saved, records, err := h.shops.SaveTable(c.Request.Context(), user, req.Rows)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if records == nil {
		records = []models.ShopRecord{}
	}
	h.Success(c, SaveTableResponse{Saved: saved, Records: records})
}

// GET /api/map?journey_type=
func (h *ShopHandler) Map(c *gin.Context) {
	user, err := userID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	var q MapQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.ValidationError(c, err)
		return
	}
	view, err := h.shops.Map(c.Request.Context(), user, q.JourneyType)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}

// GET /api/map/click?lat=&lng=
func (h *ShopHandler) Click(c *gin.Context) {
	user, err := userID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	var q ClickQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.ValidationError(c, err)
		return
	}
	index, record, err := h.shops.ShopAt(c.Request.Context(), user, *q.Lat, *q.Lng)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ClickResponse{Index: index, Record: record})
}

// GET /api/shops/:index/images
func (h *ShopHandler) Images(c *gin.Context) {
	user, err := userID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	index, err := intParam(c, "index")
	if err != nil {
		h.HandleError(c, err)
		return
	}
	images, err := h.shops.Images(c.Request.Context(), user, index)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, images)
}

// POST /api/shops/:index/images (multipart field "file")
func (h *ShopHandler) Upload(c *gin.Context) {
	user, err := userID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	index, err := intParam(c, "index")
	if err != nil {
		h.HandleError(c, err)
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		h.BadRequest(c, "multipart field \"file\" is required")
		return
	}
	f, err := fh.Open()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	defer f.Close()

	u, err := h.shops.AttachImage(c.Request.Context(), user, index, fh.Filename, fh.Header.Get("Content-Type"), f, fh.Size)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, UploadResponse{URL: u})
}

// DELETE /api/shops/:index/images/:pos
func (h *ShopHandler) DeleteImage(c *gin.Context) {
	user, err := userID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	index, err := intParam(c, "index")
	if err != nil {
		h.HandleError(c, err)
		return
	}
	pos, err := intParam(c, "pos")
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if err := h.shops.RemoveImage(c.Request.Context(), user, index, pos); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
