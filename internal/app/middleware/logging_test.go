package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStructuredLogging_CountsRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(StructuredLogging(slog.New(slog.NewTextHandler(io.Discard, nil))))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	before := GetMetrics()

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		require.Equal(t, http.StatusOK, w.Code)
	}

	after := GetMetrics()
	assert.Equal(t, before.TotalRequests+3, after.TotalRequests)
	assert.Equal(t, before.RequestsByEndpoint["GET /ping"]+3, after.RequestsByEndpoint["GET /ping"])

	// The snapshot map is a copy; writing to it must not leak back.
	after.RequestsByEndpoint["GET /ping"] = 0
	again := GetMetrics()
	assert.Equal(t, before.RequestsByEndpoint["GET /ping"]+3, again.RequestsByEndpoint["GET /ping"])
}
