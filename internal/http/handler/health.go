package handler

import "github.com/gin-gonic/gin"

type HealthHandler struct {
	BaseHandler
}

func (h *HealthHandler) Health(c *gin.Context) {
	h.Success(c, gin.H{"status": "ok"})
}
