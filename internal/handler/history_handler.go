package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"parcelscan/internal/service"
)

// HistoryHandler handles scan history endpoints.
type HistoryHandler struct {
	history        service.HistoryService
	defaultPageLen int
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(history service.HistoryService, defaultPageLen int) *HistoryHandler {
	if defaultPageLen <= 0 {
		defaultPageLen = 20
	}
	return &HistoryHandler{history: history, defaultPageLen: defaultPageLen}
}

// List handles GET /api/v1/scans.
func (h *HistoryHandler) List(c *gin.Context) {
	offset, limit := h.pagination(c)

	records, total, err := h.history.List(c.Request.Context(), offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondPaginated(c, records, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/scans/:id.
func (h *HistoryHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid scan id")
		return
	}

	rec, err := h.history.GetByID(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, rec)
}

// Stats handles GET /api/v1/scans/stats.
func (h *HistoryHandler) Stats(c *gin.Context) {
	stats, err := h.history.Stats(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, stats)
}

// Export handles GET /api/v1/scans/export, streaming the history as CSV.
func (h *HistoryHandler) Export(c *gin.Context) {
	filename := fmt.Sprintf("scans-%s.csv", time.Now().UTC().Format("20060102-150405"))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)

	if err := h.history.ExportCSV(c.Request.Context(), c.Writer); err != nil {
		// Headers may already be out; log and abort the stream.
		requestID, _ := c.Get("request_id")
		_ = c.Error(fmt.Errorf("[%v] csv export: %w", requestID, err))
		c.Abort()
	}
}

func (h *HistoryHandler) pagination(c *gin.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if offset < 0 {
		offset = 0
	}
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(h.defaultPageLen)))
	if limit <= 0 || limit > 100 {
		limit = h.defaultPageLen
	}
	return offset, limit
}
