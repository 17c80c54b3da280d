package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"parcelscan/internal/service"
)

// HealthHandler handles the health check endpoint.
type HealthHandler struct {
	scans service.ScanService
	db    *sqlx.DB // nil when history is disabled
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(scans service.ScanService, db *sqlx.DB) *HealthHandler {
	return &HealthHandler{scans: scans, db: db}
}

// Health handles GET /health. The service is healthy only when the OCR
// engine is loaded; the extractor and database states are reported but do
// not fail the check.
func (h *HealthHandler) Health(c *gin.Context) {
	body := gin.H{
		"status":                 "healthy",
		"ocr_ready":              h.scans.EngineReady(),
		"typhoon_api_configured": h.scans.ExtractorConfigured(),
	}

	if h.db != nil {
		if err := h.db.PingContext(c.Request.Context()); err != nil {
			body["database"] = "unreachable"
		} else {
			body["database"] = "ok"
		}
	}

	if !h.scans.EngineReady() {
		body["status"] = "unhealthy"
		c.JSON(http.StatusServiceUnavailable, body)
		return
	}
	c.JSON(http.StatusOK, body)
}
