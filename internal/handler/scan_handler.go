package handler

import (
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"parcelscan/internal/domain"
	"parcelscan/internal/service"
)

// ProcessResponse is the flat contract for POST /api/process, kept stable for
// the browser front end: success/data/timings/error at the top level.
type ProcessResponse struct {
	Success        bool                    `json:"success"`
	Data           *domain.ExtractedFields `json:"data,omitempty"`
	Timings        *domain.StageTimings    `json:"timings,omitempty"`
	RawTextPreview string                  `json:"raw_text_preview,omitempty"`
	Error          string                  `json:"error,omitempty"`
}

// ScanHandler handles the processing endpoint.
type ScanHandler struct {
	scans service.ScanService
}

// NewScanHandler creates a new ScanHandler.
func NewScanHandler(scans service.ScanService) *ScanHandler {
	return &ScanHandler{scans: scans}
}

// Process handles POST /api/process.
func (h *ScanHandler) Process(c *gin.Context) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		h.fail(c, domain.ErrMissingImage, nil)
		return
	}
	if fileHeader.Filename == "" {
		h.fail(c, domain.ErrMissingImage, nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.fail(c, fmt.Errorf("opening upload: %w", err), nil)
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		h.fail(c, fmt.Errorf("reading upload: %w", err), nil)
		return
	}

	res, err := h.scans.Process(c.Request.Context(), service.ScanInput{
		OriginalName: fileHeader.Filename,
		ContentType:  fileHeader.Header.Get("Content-Type"),
		Data:         data,
	})
	if err != nil {
		h.fail(c, err, res)
		return
	}

	c.JSON(http.StatusOK, ProcessResponse{
		Success:        true,
		Data:           res.Fields,
		Timings:        &res.Timings,
		RawTextPreview: res.RawTextPreview,
	})
}

// fail writes a failure response, carrying timings for stages that completed
// before the fault. res may be nil when the pipeline never started.
func (h *ScanHandler) fail(c *gin.Context, err error, res *domain.ScanResult) {
	status, _, msg := MapDomainError(err)
	if status >= 500 {
		requestID, _ := c.Get("request_id")
		log.Printf("[%s] process failed: %v", requestID, err)
	}

	resp := ProcessResponse{Success: false, Error: msg}
	if res != nil && (res.Timings.PaddleOCR != nil || res.Timings.TyphoonAPI != nil) {
		resp.Timings = &res.Timings
	}
	c.JSON(status, resp)
}
