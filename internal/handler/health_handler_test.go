package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parcelscan/internal/handler"
)

func newHealthRouter(svc *mockScanService) *gin.Engine {
	r := gin.New()
	h := handler.NewHealthHandler(svc, nil)
	r.GET("/health", h.Health)
	return r
}

func TestHealth_AllReady(t *testing.T) {
	svc := new(mockScanService)
	svc.On("EngineReady").Return(true)
	svc.On("ExtractorConfigured").Return(true)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	newHealthRouter(svc).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, true, body["ocr_ready"])
	assert.Equal(t, true, body["typhoon_api_configured"])
	_, hasDB := body["database"]
	assert.False(t, hasDB, "database state only reported when history is enabled")
}

func TestHealth_EngineNotReady(t *testing.T) {
	svc := new(mockScanService)
	svc.On("EngineReady").Return(false)
	svc.On("ExtractorConfigured").Return(true)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	newHealthRouter(svc).ServeHTTP(w, req)

	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "unhealthy", body["status"])
	assert.Equal(t, false, body["ocr_ready"])
}

func TestHealth_ExtractorUnconfiguredStillHealthy(t *testing.T) {
	svc := new(mockScanService)
	svc.On("EngineReady").Return(true)
	svc.On("ExtractorConfigured").Return(false)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	newHealthRouter(svc).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, false, body["typhoon_api_configured"])
}
