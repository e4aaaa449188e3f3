package middleware

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// requestMetrics holds the in-memory request counters behind a lock.
type requestMetrics struct {
	mu                 sync.RWMutex
	totalRequests      uint64
	requestsByEndpoint map[string]uint64
}

var metrics = &requestMetrics{
	requestsByEndpoint: make(map[string]uint64),
}

// MetricsSnapshot is a point-in-time copy of the request counters, safe to
// hand out without sharing the lock or the live map.
type MetricsSnapshot struct {
	TotalRequests      uint64
	RequestsByEndpoint map[string]uint64
}

// GetMetrics returns a snapshot of the current request metrics
func GetMetrics() MetricsSnapshot {
	metrics.mu.RLock()
	defer metrics.mu.RUnlock()
	return MetricsSnapshot{
		TotalRequests:      metrics.totalRequests,
		RequestsByEndpoint: copyMap(metrics.requestsByEndpoint),
	}
}

func copyMap(src map[string]uint64) map[string]uint64 {
	dst := make(map[string]uint64, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// StructuredLogging logs every request with latency and status, and feeds
// the in-memory per-endpoint counters.
func StructuredLogging(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		latency := time.Since(start)
		statusCode := c.Writer.Status()

		metrics.mu.Lock()
		metrics.totalRequests++
		endpoint := method + " " + path
		metrics.requestsByEndpoint[endpoint]++
		metrics.mu.Unlock()

		logger.Info("request completed",
			"method", method,
			"path", path,
			"status_code", statusCode,
			"latency_ms", latency.Milliseconds(),
			"remote_addr", c.ClientIP(),
			"bytes_written", c.Writer.Size(),
		)

		if len(c.Errors) > 0 {
			for _, err := range c.Errors {
				logger.Error("request error",
					"method", method,
					"path", path,
					"error", err.Error(),
				)
			}
		}
	}
}
