package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/osmelmr/nodosiot-server/internal/app/middleware"
	"github.com/osmelmr/nodosiot-server/internal/error/response"
)

// HealthCheckController serves liveness and request-metrics endpoints
type HealthCheckController struct{}

// NewHealthCheckController creates a health check controller instance
func NewHealthCheckController() *HealthCheckController {
	return &HealthCheckController{}
}

// Ping is the liveness endpoint
func (h *HealthCheckController) Ping(c *gin.Context) {
	response.Success(c, gin.H{
		"status":  "healthy",
		"message": "pong",
	})
}

// Metrics reports the in-memory request counters
func (h *HealthCheckController) Metrics(c *gin.Context) {
	m := middleware.GetMetrics()
	response.Success(c, gin.H{
		"total_requests":       m.TotalRequests,
		"requests_by_endpoint": m.RequestsByEndpoint,
	})
}

// CacheStats reports the response cache occupancy
func (h *HealthCheckController) CacheStats(c *gin.Context) {
	response.Success(c, middleware.CacheStats())
}
