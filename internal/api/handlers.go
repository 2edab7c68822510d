package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/pageza/alchemorsel-v2/recipeform/internal/database"
	"github.com/pageza/alchemorsel-v2/recipeform/internal/types"
)

// HealthHandler reports liveness and the Redis connection state
type HealthHandler struct {
	redis *redis.Client
}

// NewHealthHandler creates a health handler. redisClient may be nil.
func NewHealthHandler(redisClient *redis.Client) *HealthHandler {
	return &HealthHandler{redis: redisClient}
}

// HealthCheck returns the health status of the service
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, types.HealthResponse{
		Status: "ok",
		Redis:  database.RedisStatus(c.Request.Context(), h.redis),
	})
}

// RegisterRoutes registers the health routes
func (h *HealthHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/health", h.HealthCheck)
	router.GET("/api/health", h.HealthCheck)
}
