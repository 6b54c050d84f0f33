// internal/interfaces/http/handlers/health.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sellasticpots/shop-backend/internal/infrastructure/database/postgres"
	"github.com/sellasticpots/shop-backend/internal/infrastructure/database/redis"
)

// HealthHandler reports service health
type HealthHandler struct {
	db      *postgres.DB
	redis   *redis.Client
	version string
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db *postgres.DB, redisClient *redis.Client, version string) *HealthHandler {
	return &HealthHandler{db: db, redis: redisClient, version: version}
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": h.version})
}

// Ready handles GET /ready and checks backing services
func (h *HealthHandler) Ready(c *gin.Context) {
	checks := gin.H{}
	healthy := true

	if err := h.db.Health(); err != nil {
		checks["database"] = err.Error()
		healthy = false
	} else {
		checks["database"] = "ok"
	}

	if err := h.redis.Health(c.Request.Context()); err != nil {
		checks["redis"] = err.Error()
		healthy = false
	} else {
		checks["redis"] = "ok"
	}

	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"checks": checks})
}
