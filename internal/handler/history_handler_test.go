package handler_test

import (
	"encoding/json"
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
	"parcelscan/mocks"
)

func newHistoryRouter(svc *mocks.MockHistoryService) *gin.Engine {
	r := gin.New()
	h := handler.NewHistoryHandler(svc, 20)
	scans := r.Group("/api/v1/scans")
	{
		scans.GET("", h.List)
		scans.GET("/stats", h.Stats)
		scans.GET("/export", h.Export)
		scans.GET("/:id", h.GetByID)
	}
	return r
}

func TestHistoryList_DefaultPagination(t *testing.T) {
	svc := new(mocks.MockHistoryService)
	records := []domain.ScanRecord{
		{ID: uuid.New(), OriginalName: "a.jpg", Success: true},
		{ID: uuid.New(), OriginalName: "b.png", Success: false},
	}
	svc.On("List", mock.Anything, 0, 20).Return(records, 42, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/scans", nil)
	w := httptest.NewRecorder()
	newHistoryRouter(svc).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp handler.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, 42, resp.Meta.Total)
	assert.Equal(t, 0, resp.Meta.Offset)
	assert.Equal(t, 20, resp.Meta.Limit)
	svc.AssertExpectations(t)
}

func TestHistoryList_ClampsBadPagination(t *testing.T) {
	svc := new(mocks.MockHistoryService)
	svc.On("List", mock.Anything, 0, 20).Return([]domain.ScanRecord{}, 0, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/scans?offset=-5&limit=9999", nil)
	w := httptest.NewRecorder()
	newHistoryRouter(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestHistoryList_CustomPagination(t *testing.T) {
	svc := new(mocks.MockHistoryService)
	svc.On("List", mock.Anything, 40, 10).Return([]domain.ScanRecord{}, 42, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/scans?offset=40&limit=10", nil)
	w := httptest.NewRecorder()
	newHistoryRouter(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestHistoryGetByID_Success(t *testing.T) {
	svc := new(mocks.MockHistoryService)
	id := uuid.New()
	rec := &domain.ScanRecord{ID: id, OriginalName: "parcel.jpg", Success: true}
	svc.On("GetByID", mock.Anything, id).Return(rec, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/scans/"+id.String(), nil)
	w := httptest.NewRecorder()
	newHistoryRouter(svc).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool              `json:"success"`
		Data    domain.ScanRecord `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, id, resp.Data.ID)
	assert.Equal(t, "parcel.jpg", resp.Data.OriginalName)
}

func TestHistoryGetByID_InvalidID(t *testing.T) {
	svc := new(mocks.MockHistoryService)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/scans/not-a-uuid", nil)
	w := httptest.NewRecorder()
	newHistoryRouter(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp handler.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_ID", resp.Error.Code)
	svc.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestHistoryGetByID_NotFound(t *testing.T) {
	svc := new(mocks.MockHistoryService)
	id := uuid.New()
	svc.On("GetByID", mock.Anything, id).Return(nil, domain.ErrNotFound).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/scans/"+id.String(), nil)
	w := httptest.NewRecorder()
	newHistoryRouter(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)

	var resp handler.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
}

func TestHistoryStats(t *testing.T) {
	svc := new(mocks.MockHistoryService)
	stats := &domain.ScanStats{
		TotalScans:      10,
		Succeeded:       8,
		Failed:          2,
		SuccessRate:     0.8,
		AvgTotalSeconds: 2.345,
	}
	svc.On("Stats", mock.Anything).Return(stats, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/scans/stats", nil)
	w := httptest.NewRecorder()
	newHistoryRouter(svc).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data domain.ScanStats `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 10, resp.Data.TotalScans)
	assert.InDelta(t, 0.8, resp.Data.SuccessRate, 1e-9)
}

func TestHistoryExport_SetsCSVHeaders(t *testing.T) {
	svc := new(mocks.MockHistoryService)
	svc.On("ExportCSV", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		w := args.Get(1).(interface{ Write([]byte) (int, error) })
		_, _ = w.Write([]byte("Scan ID,File Name\n"))
	}).Return(nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/scans/export", nil)
	w := httptest.NewRecorder()
	newHistoryRouter(svc).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, w.Body.String(), "Scan ID")
	svc.AssertExpectations(t)
}
