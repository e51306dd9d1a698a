package middleware_test

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"gasdoc/internal/metrics"
	"gasdoc/internal/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestCORS_AllowedOrigin(t *testing.T) {
	r := gin.New()
	r.Use(middleware.CORS([]string{"https://app.example.com", "http://localhost:3000"}))
	r.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/test", http.NoBody)
	req.Header.Set("Origin", "https://app.example.com")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_DisallowedOrigin(t *testing.T) {
	r := gin.New()
	r.Use(middleware.CORS([]string{"https://app.example.com"}))
	r.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/test", http.NoBody)
	req.Header.Set("Origin", "https://evil.com")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_Preflight(t *testing.T) {
	r := gin.New()
	r.Use(middleware.CORS([]string{"https://app.example.com"}))
	r.POST("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodOptions, "/test", http.NoBody)
	req.Header.Set("Origin", "https://app.example.com")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "POST")
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "X-Request-ID")
}

func TestRequestID_GeneratedAndEchoed(t *testing.T) {
	r := gin.New()
	r.Use(middleware.RequestID())
	var seen string
	r.GET("/test", func(c *gin.Context) {
		seen = c.GetString("request_id")
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/test", http.NoBody)
	r.ServeHTTP(w, req)
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, w.Header().Get("X-Request-ID"))

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/test", http.NoBody)
	req.Header.Set("X-Request-ID", "abc-123")
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", seen)
}

func TestLogger_LogsAndRecordsRoute(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	m := metrics.New()
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(zap.New(core), m))
	r.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusTeapot) })

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/items/42", http.NoBody)
	r.ServeHTTP(w, req)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "request", entry.Message)
	assert.Equal(t, "/items/42", entry.ContextMap()["path"])
	assert.EqualValues(t, http.StatusTeapot, entry.ContextMap()["status"])

	expected := `
# HELP gasdoc_http_requests_total HTTP requests by method, route and status.
# TYPE gasdoc_http_requests_total counter
gasdoc_http_requests_total{method="GET",route="/items/:id",status="418"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "gasdoc_http_requests_total"))
}

func TestBodyLimit(t *testing.T) {
	r := gin.New()
	r.Use(middleware.BodyLimit(16))
	r.POST("/upload", func(c *gin.Context) {
		b, err := io.ReadAll(c.Request.Body)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		c.String(http.StatusOK, "%d", len(b))
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/upload", strings.NewReader("small body"))
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "10", w.Body.String())

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodPost, "/upload", strings.NewReader(strings.Repeat("x", 16+(64<<10)+1)))
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}
