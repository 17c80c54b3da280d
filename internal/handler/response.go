package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"parcelscan/internal/domain"
)

// APIResponse is the standard envelope for the history API.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *PagMeta    `json:"meta,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PagMeta holds pagination metadata.
type PagMeta struct {
	Total  int `json:"total"`
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondPaginated sends a 200 success response with pagination metadata.
func RespondPaginated(c *gin.Context, data interface{}, meta PagMeta) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data, Meta: &meta})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// MapDomainError translates domain errors to HTTP status codes and error
// codes. Messages are user-facing; internal error detail never leaves the
// process through this path.
func MapDomainError(err error) (status int, code, msg string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND", "resource not found"
	case errors.Is(err, domain.ErrMissingImage):
		return http.StatusBadRequest, "MISSING_IMAGE", "ไม่มีไฟล์รูปภาพ"
	case errors.Is(err, domain.ErrEmptyImage):
		return http.StatusBadRequest, "EMPTY_FILE", "ไฟล์ว่างเปล่า"
	case errors.Is(err, domain.ErrUnsupportedImageType):
		return http.StatusBadRequest, "UNSUPPORTED_IMAGE_TYPE", "ประเภทไฟล์ไม่ถูกต้อง (รองรับ: jpg, jpeg, png, gif, bmp, webp)"
	case errors.Is(err, domain.ErrImageTooLarge):
		return http.StatusRequestEntityTooLarge, "IMAGE_TOO_LARGE", "ไฟล์ใหญ่เกินไป - สูงสุด 16MB"
	case errors.Is(err, domain.ErrEngineUnavailable):
		return http.StatusServiceUnavailable, "ENGINE_UNAVAILABLE", "ไม่สามารถอ่านข้อความจากภาพได้"
	case errors.Is(err, domain.ErrExtractionAuth):
		return http.StatusBadGateway, "EXTRACTION_AUTH_FAILED", "ระบบวิเคราะห์ข้อมูลไม่พร้อมใช้งาน"
	case errors.Is(err, domain.ErrExtractionUnavailable):
		return http.StatusServiceUnavailable, "EXTRACTION_UNAVAILABLE", "ระบบวิเคราะห์ข้อมูลไม่ตอบสนอง กรุณาลองใหม่อีกครั้ง"
	case errors.Is(err, domain.ErrMalformedExtraction):
		return http.StatusBadGateway, "EXTRACTION_MALFORMED", "ระบบวิเคราะห์ข้อมูลตอบกลับไม่ถูกต้อง"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "เกิดข้อผิดพลาดภายในระบบ"
	}
}

// HandleError maps a domain error and sends the appropriate envelope response.
func HandleError(c *gin.Context, err error) {
	status, code, msg := MapDomainError(err)
	if status >= 500 {
		requestID, _ := c.Get("request_id")
		log.Printf("[%s] internal error: %v", requestID, err)
	}
	RespondError(c, status, code, msg)
}
