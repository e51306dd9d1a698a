package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"gasdoc/internal/handler"
	"gasdoc/internal/metrics"
	"gasdoc/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	docH *handler.DocumentHandler,
	healthH *handler.HealthHandler,
	m *metrics.Metrics,
	logger *zap.Logger,
	corsOrigins []string,
	maxUploadBytes int64,
) *gin.Engine {
	r := gin.New()
	r.MaxMultipartMemory = maxUploadBytes

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(corsOrigins))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger, m))
	r.Use(middleware.BodyLimit(maxUploadBytes))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)
	if m != nil {
		r.GET("/metrics", gin.WrapH(m.Handler()))
	}

	v1 := r.Group("/api/v1")
	v1.GET("/document-types", docH.ListTypes)

	docs := v1.Group("/documents")
	docs.POST("/classify", docH.Classify)
	docs.POST("/process", docH.Process)
	docs.POST("/:type/process", docH.ProcessAs)

	return r
}
