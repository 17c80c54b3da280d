package router

import (
	"github.com/gin-gonic/gin"

	"parcelscan/internal/config"
	"parcelscan/internal/handler"
	"parcelscan/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
// historyH may be nil when history recording is disabled.
func Setup(
	cfg *config.Config,
	scanH *handler.ScanHandler,
	historyH *handler.HistoryHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(cfg.CORS))

	// Uploads are capped at 16 MiB by the validator; leave headroom here so
	// oversized files are rejected with the contract's error, not a 413 from gin.
	r.MaxMultipartMemory = 32 << 20

	r.GET("/health", healthH.Health)
	r.POST("/api/process", scanH.Process)

	if historyH != nil {
		v1 := r.Group("/api/v1")
		scans := v1.Group("/scans")
		scans.GET("", historyH.List)
		scans.GET("/stats", historyH.Stats)
		scans.GET("/export", historyH.Export)
		scans.GET("/:id", historyH.GetByID)
	}

	return r
}
