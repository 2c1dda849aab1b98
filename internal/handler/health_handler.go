package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const serviceName = "teamchat-service"

type HealthHandler struct {
	db    *gorm.DB
	redis *redis.Client
}

// NewHealthHandler accepts nil for backends that are not configured.
func NewHealthHandler(db *gorm.DB, redis *redis.Client) *HealthHandler {
	return &HealthHandler{
		db:    db,
		redis: redis,
	}
}

func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": serviceName,
	})
}

func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	connections := gin.H{
		"database": "not configured",
		"redis":    "not configured",
	}
	ready := true

	if h.db != nil {
		connections["database"] = "connected"
		sqlDB, err := h.db.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			connections["database"] = "disconnected"
			ready = false
		}
	}

	if h.redis != nil {
		connections["redis"] = "connected"
		if err := h.redis.Ping(ctx).Err(); err != nil {
			connections["redis"] = "disconnected"
			ready = false
		}
	}

	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":      "not ready",
			"service":     serviceName,
			"connections": connections,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":      "ready",
		"service":     serviceName,
		"connections": connections,
	})
}
