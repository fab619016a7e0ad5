package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"shopmap/internal/http/handler"
	"shopmap/internal/logger"
)

// MaxUploadMemory bounds the in-memory part of multipart photo uploads.
const MaxUploadMemory = 16 << 20

// New builds the API engine with request logging and panic recovery.
func New(shops handler.Shops, log *zap.Logger) *gin.Engine {
	if log == nil {
		log = zap.NewNop()
	}
	r := gin.New()
	r.MaxMultipartMemory = MaxUploadMemory
	r.Use(logger.GinMiddleware(log), logger.Recovery(log))

	health := &handler.HealthHandler{}
	r.GET("/healthz", health.Health)

	h := handler.NewShopHandler(shops)
	api := r.Group("/api")
	{
		api.GET("/search", h.Search)

		api.GET("/shops", h.List)
		api.POST("/shops", h.Add)
		api.GET("/shops/:index/images", h.Images)
		api.POST("/shops/:index/images", h.Upload)
		api.DELETE("/shops/:index/images/:pos", h.DeleteImage)

		api.GET("/table", h.Table)
		api.PUT("/table", h.SaveTable)

		api.GET("/map", h.Map)
		api.GET("/map/click", h.Click)
	}
	return r
}
