package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"parcelscan/internal/domain"
	"parcelscan/internal/handler"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newProcessRouter(svc *mockScanService) *gin.Engine {
	r := gin.New()
	h := handler.NewScanHandler(svc)
	r.POST("/api/process", h.Process)
	return r
}

func multipartImage(t *testing.T, fieldName, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(fieldName, filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func strPtr(s string) *string { return &s }

func secsPtr(f float64) *float64 { return &f }

func TestProcessEndpoint_Success(t *testing.T) {
	svc := new(mockScanService)
	result := &domain.ScanResult{
		ID: uuid.New(),
		Fields: &domain.ExtractedFields{
			RecipientName:   strPtr("สมชาย ใจดี"),
			RoomNumber:      strPtr("304"),
			ShippingCompany: strPtr("Kerry Express"),
			TrackingNumber:  nil,
		},
		Timings: domain.StageTimings{
			PaddleOCR:  secsPtr(1.234),
			TyphoonAPI: secsPtr(0.567),
			Total:      secsPtr(1.801),
		},
		RawTextPreview: "สมชาย ใจดี ห้อง 304",
	}
	svc.On("Process", mock.Anything, mock.Anything).Return(result, nil).Once()

	body, contentType := multipartImage(t, "image", "parcel.jpg", []byte{0xFF, 0xD8, 0xFF})
	req := httptest.NewRequest(http.MethodPost, "/api/process", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	newProcessRouter(svc).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.JSONEq(t, `true`, string(resp["success"]))
	// tracking_number must serialize as an explicit null, not be omitted.
	assert.JSONEq(t, `{
		"recipient_name": "สมชาย ใจดี",
		"room_number": "304",
		"shipping_company": "Kerry Express",
		"tracking_number": null
	}`, string(resp["data"]))
	assert.JSONEq(t, `{"paddle_ocr": 1.234, "typhoon_api": 0.567, "total": 1.801}`, string(resp["timings"]))
	svc.AssertExpectations(t)
}

func TestProcessEndpoint_NoFile(t *testing.T) {
	svc := new(mockScanService)

	req := httptest.NewRequest(http.MethodPost, "/api/process", bytes.NewBufferString(""))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
	w := httptest.NewRecorder()
	newProcessRouter(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp handler.ProcessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "ไม่มีไฟล์รูปภาพ", resp.Error)
	assert.Nil(t, resp.Timings)
	svc.AssertNotCalled(t, "Process", mock.Anything, mock.Anything)
}

func TestProcessEndpoint_WrongFieldName(t *testing.T) {
	svc := new(mockScanService)

	body, contentType := multipartImage(t, "file", "parcel.jpg", []byte{0xFF, 0xD8, 0xFF})
	req := httptest.NewRequest(http.MethodPost, "/api/process", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	newProcessRouter(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "Process", mock.Anything, mock.Anything)
}

func TestProcessEndpoint_ValidationError(t *testing.T) {
	svc := new(mockScanService)
	res := &domain.ScanResult{ID: uuid.New()}
	svc.On("Process", mock.Anything, mock.Anything).
		Return(res, fmt.Errorf("%w: .txt", domain.ErrUnsupportedImageType)).Once()

	body, contentType := multipartImage(t, "image", "notes.txt", []byte("hello"))
	req := httptest.NewRequest(http.MethodPost, "/api/process", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	newProcessRouter(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp handler.ProcessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "ประเภทไฟล์ไม่ถูกต้อง")
	assert.Nil(t, resp.Timings, "no stage ran, so no timings appear")
}

func TestProcessEndpoint_TooLarge(t *testing.T) {
	svc := new(mockScanService)
	res := &domain.ScanResult{ID: uuid.New()}
	svc.On("Process", mock.Anything, mock.Anything).
		Return(res, fmt.Errorf("%w: 20MB", domain.ErrImageTooLarge)).Once()

	body, contentType := multipartImage(t, "image", "huge.jpg", []byte{0xFF, 0xD8, 0xFF})
	req := httptest.NewRequest(http.MethodPost, "/api/process", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	newProcessRouter(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestProcessEndpoint_ExtractionFailureCarriesPartialTimings(t *testing.T) {
	svc := new(mockScanService)
	res := &domain.ScanResult{
		ID:      uuid.New(),
		Timings: domain.StageTimings{PaddleOCR: secsPtr(1.5)},
	}
	svc.On("Process", mock.Anything, mock.Anything).
		Return(res, fmt.Errorf("%w: service down", domain.ErrExtractionUnavailable)).Once()

	body, contentType := multipartImage(t, "image", "parcel.jpg", []byte{0xFF, 0xD8, 0xFF})
	req := httptest.NewRequest(http.MethodPost, "/api/process", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	newProcessRouter(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var resp map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.JSONEq(t, `{"paddle_ocr": 1.5}`, string(resp["timings"]))
	_, hasData := resp["data"]
	assert.False(t, hasData, "failed run never returns partial fields")
}

func TestProcessEndpoint_EngineFailureOmitsTimings(t *testing.T) {
	svc := new(mockScanService)
	res := &domain.ScanResult{ID: uuid.New()}
	svc.On("Process", mock.Anything, mock.Anything).
		Return(res, fmt.Errorf("%w: engine not loaded", domain.ErrEngineUnavailable)).Once()

	body, contentType := multipartImage(t, "image", "parcel.jpg", []byte{0xFF, 0xD8, 0xFF})
	req := httptest.NewRequest(http.MethodPost, "/api/process", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	newProcessRouter(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var resp map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	_, hasTimings := resp["timings"]
	assert.False(t, hasTimings)
}
