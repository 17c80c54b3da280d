package service

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/google/uuid"

	"parcelscan/internal/csvexport"
	"parcelscan/internal/domain"
	"parcelscan/internal/port"
)

// archiveURLExpirySecs bounds how long a presigned archive download stays valid.
const archiveURLExpirySecs = 900

// HistoryService exposes the scan history.
type HistoryService interface {
	List(ctx context.Context, offset, limit int) ([]domain.ScanRecord, int, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ScanRecord, error)
	Stats(ctx context.Context) (*domain.ScanStats, error)
	ExportCSV(ctx context.Context, w io.Writer) error
}

type historyService struct {
	scanRepo port.ScanRepository
	storage  port.ObjectStorage // nil when archival is disabled
}

// NewHistoryService creates a new HistoryService. storage may be nil; records
// then carry no archive download link.
func NewHistoryService(scanRepo port.ScanRepository, storage port.ObjectStorage) HistoryService {
	return &historyService{scanRepo: scanRepo, storage: storage}
}

func (s *historyService) List(ctx context.Context, offset, limit int) ([]domain.ScanRecord, int, error) {
	return s.scanRepo.List(ctx, offset, limit)
}

func (s *historyService) GetByID(ctx context.Context, id uuid.UUID) (*domain.ScanRecord, error) {
	rec, err := s.scanRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Attach a presigned download link for the archived image, best-effort.
	if s.storage != nil && rec.ArchiveKey != "" {
		url, err := s.storage.GetPresignedURL(ctx, rec.ArchiveBucket, rec.ArchiveKey, archiveURLExpirySecs)
		if err != nil {
			log.Printf("historyService.GetByID: presigning %s/%s: %v", rec.ArchiveBucket, rec.ArchiveKey, err)
		} else {
			rec.ArchiveURL = url
		}
	}
	return rec, nil
}

func (s *historyService) Stats(ctx context.Context) (*domain.ScanStats, error) {
	stats, err := s.scanRepo.Stats(ctx)
	if err != nil {
		return nil, err
	}
	if stats.TotalScans > 0 {
		stats.SuccessRate = float64(stats.Succeeded) / float64(stats.TotalScans)
	}
	return stats, nil
}

// ExportCSV streams the full history as CSV. Export pages through the
// repository to keep memory bounded on large histories.
func (s *historyService) ExportCSV(ctx context.Context, w io.Writer) error {
	if _, err := w.Write(csvexport.BOM); err != nil {
		return fmt.Errorf("writing BOM: %w", err)
	}

	writer := csvexport.NewWriter(w)
	if err := writer.WriteHeader(); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	const pageSize = 500
	for offset := 0; ; offset += pageSize {
		records, total, err := s.scanRepo.List(ctx, offset, pageSize)
		if err != nil {
			return fmt.Errorf("listing scans: %w", err)
		}
		if err := writer.WriteScans(records); err != nil {
			return fmt.Errorf("writing rows: %w", err)
		}
		if offset+pageSize >= total || len(records) == 0 {
			break
		}
	}

	return writer.Flush()
}
