package service_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"parcelscan/internal/csvexport"
	"parcelscan/internal/domain"
	"parcelscan/internal/service"
	"parcelscan/mocks"
)

func TestHistoryStats_ComputesSuccessRate(t *testing.T) {
	repo := new(mocks.MockScanRepository)
	repo.On("Stats", mock.Anything).Return(&domain.ScanStats{
		TotalScans: 10,
		Succeeded:  7,
		Failed:     3,
	}, nil).Once()

	svc := service.NewHistoryService(repo, nil)
	stats, err := svc.Stats(context.Background())

	require.NoError(t, err)
	assert.InDelta(t, 0.7, stats.SuccessRate, 1e-9)
}

func TestHistoryStats_EmptyHistory(t *testing.T) {
	repo := new(mocks.MockScanRepository)
	repo.On("Stats", mock.Anything).Return(&domain.ScanStats{}, nil).Once()

	svc := service.NewHistoryService(repo, nil)
	stats, err := svc.Stats(context.Background())

	require.NoError(t, err)
	assert.Zero(t, stats.SuccessRate)
}

func TestHistoryGetByID_PresignsArchiveURL(t *testing.T) {
	repo := new(mocks.MockScanRepository)
	storage := new(mocks.MockObjectStorage)

	id := uuid.New()
	rec := &domain.ScanRecord{
		ID:            id,
		ArchiveBucket: "parcel-archive",
		ArchiveKey:    "scans/" + id.String() + "/parcel.jpg",
	}
	repo.On("GetByID", mock.Anything, id).Return(rec, nil).Once()
	storage.On("GetPresignedURL", mock.Anything, rec.ArchiveBucket, rec.ArchiveKey, int64(900)).
		Return("https://parcel-archive.s3.example/signed", nil).Once()

	svc := service.NewHistoryService(repo, storage)
	got, err := svc.GetByID(context.Background(), id)

	require.NoError(t, err)
	assert.Equal(t, "https://parcel-archive.s3.example/signed", got.ArchiveURL)
	storage.AssertExpectations(t)
}

func TestHistoryGetByID_NoArchiveNoPresign(t *testing.T) {
	repo := new(mocks.MockScanRepository)
	storage := new(mocks.MockObjectStorage)

	id := uuid.New()
	repo.On("GetByID", mock.Anything, id).Return(&domain.ScanRecord{ID: id}, nil).Once()

	svc := service.NewHistoryService(repo, storage)
	got, err := svc.GetByID(context.Background(), id)

	require.NoError(t, err)
	assert.Empty(t, got.ArchiveURL)
	storage.AssertNotCalled(t, "GetPresignedURL", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHistoryGetByID_PresignFailureIsNonFatal(t *testing.T) {
	repo := new(mocks.MockScanRepository)
	storage := new(mocks.MockObjectStorage)

	id := uuid.New()
	rec := &domain.ScanRecord{ID: id, ArchiveBucket: "b", ArchiveKey: "k"}
	repo.On("GetByID", mock.Anything, id).Return(rec, nil).Once()
	storage.On("GetPresignedURL", mock.Anything, "b", "k", mock.Anything).
		Return("", fmt.Errorf("credentials expired")).Once()

	svc := service.NewHistoryService(repo, storage)
	got, err := svc.GetByID(context.Background(), id)

	require.NoError(t, err)
	assert.Empty(t, got.ArchiveURL)
}

func TestHistoryExportCSV_PagesThroughRepository(t *testing.T) {
	repo := new(mocks.MockScanRepository)

	firstPage := make([]domain.ScanRecord, 500)
	for i := range firstPage {
		firstPage[i] = domain.ScanRecord{ID: uuid.New(), OriginalName: "a.jpg", Success: true}
	}
	secondPage := []domain.ScanRecord{
		{ID: uuid.New(), OriginalName: "last.png", Success: true},
	}

	repo.On("List", mock.Anything, 0, 500).Return(firstPage, 501, nil).Once()
	repo.On("List", mock.Anything, 500, 500).Return(secondPage, 501, nil).Once()

	var buf bytes.Buffer
	svc := service.NewHistoryService(repo, nil)
	require.NoError(t, svc.ExportCSV(context.Background(), &buf))

	out := buf.Bytes()
	assert.True(t, bytes.HasPrefix(out, csvexport.BOM), "export starts with a UTF-8 BOM")

	rows, err := csv.NewReader(bytes.NewReader(out[len(csvexport.BOM):])).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 502, "header plus every record across pages")
	repo.AssertExpectations(t)
}

func TestHistoryExportCSV_RepoError(t *testing.T) {
	repo := new(mocks.MockScanRepository)
	repo.On("List", mock.Anything, 0, 500).Return(nil, 0, fmt.Errorf("db gone")).Once()

	var buf bytes.Buffer
	svc := service.NewHistoryService(repo, nil)
	err := svc.ExportCSV(context.Background(), &buf)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "listing scans")
}
