package router

import (
	"github.com/gin-gonic/gin"

	"chunkrelay/internal/config"
	"chunkrelay/internal/handler"
	"chunkrelay/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	cfg *config.Config,
	uploadH *handler.UploadHandler,
	objectH *handler.ObjectHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	// Upload protocol
	upload := r.Group("/upload")
	upload.POST("/initiate", uploadH.Initiate)
	upload.PUT("/object", uploadH.PutObject)
	upload.PUT("/part", uploadH.PutPart)
	upload.POST("/complete", uploadH.Complete)
	upload.POST("/abort", uploadH.Abort)

	// Browse and download
	r.GET("/objects", objectH.List)
	r.GET("/objects/:key", objectH.Download)

	return r
}
