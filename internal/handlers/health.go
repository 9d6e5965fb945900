package handlers

import (
	"context"
	"net/http"
	"time"
	"upscoverflow/internal/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db *gorm.DB
}

func NewHealthHandler(conn *gorm.DB) *HealthHandler {
	return &HealthHandler{db: conn}
}

// Health GET /health reports whether the database answers a ping.
func (h *HealthHandler) Health(c *gin.Context) {
	sqlDB, err := h.db.DB()
	if err == nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		response.Error(c, http.StatusServiceUnavailable, "Database unavailable", []string{err.Error()})
		return
	}
	response.OK(c, "ok", gin.H{"status": "healthy"})
}
