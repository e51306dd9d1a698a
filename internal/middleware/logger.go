package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"gasdoc/internal/metrics"
)

// RequestID injects an X-Request-ID header into the request and response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// Logger logs each HTTP request with method, path, status, and latency, and records
// request metrics by route template. m may be nil.
func Logger(logger *zap.Logger, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		m.ObserveHTTP(c.Request.Method, route, status, latency)

		requestID, _ := c.Get("request_id")
		fields := []zap.Field{
			zap.Any("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("latency", latency),
		}
		if status >= 500 {
			logger.Error("request", fields...)
			return
		}
		logger.Info("request", fields...)
	}
}

// Recovery recovers from panics and returns a 500 error.
func Recovery() gin.HandlerFunc {
	return gin.Recovery()
}
