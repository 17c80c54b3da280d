package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"parcelscan/internal/domain"
	"parcelscan/internal/port"
)

type scanRepo struct {
	db *sqlx.DB
}

// NewScanRepo creates a new PostgreSQL-backed ScanRepository.
func NewScanRepo(db *sqlx.DB) port.ScanRepository {
	return &scanRepo{db: db}
}

func (r *scanRepo) Create(ctx context.Context, rec *domain.ScanRecord) error {
	rec.CreatedAt = time.Now().UTC()

	query := `INSERT INTO scans
		(id, original_name, content_type, file_size, success, error_message,
		 recipient_name, room_number, shipping_company, tracking_number,
		 ocr_seconds, extract_seconds, total_seconds, raw_text_preview,
		 archive_bucket, archive_key, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`

	_, err := r.db.ExecContext(ctx, query,
		rec.ID, rec.OriginalName, rec.ContentType, rec.FileSize, rec.Success, rec.ErrorMessage,
		rec.RecipientName, rec.RoomNumber, rec.ShippingCompany, rec.TrackingNumber,
		rec.OcrSeconds, rec.ExtractSeconds, rec.TotalSeconds, rec.RawTextPreview,
		rec.ArchiveBucket, rec.ArchiveKey, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("scanRepo.Create: %w", err)
	}
	return nil
}

func (r *scanRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.ScanRecord, error) {
	var rec domain.ScanRecord
	err := r.db.GetContext(ctx, &rec, "SELECT * FROM scans WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanRepo.GetByID: %w", err)
	}
	return &rec, nil
}

func (r *scanRepo) List(ctx context.Context, offset, limit int) ([]domain.ScanRecord, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM scans"); err != nil {
		return nil, 0, fmt.Errorf("scanRepo.List count: %w", err)
	}

	var records []domain.ScanRecord
	err := r.db.SelectContext(ctx, &records,
		`SELECT * FROM scans ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("scanRepo.List: %w", err)
	}
	return records, total, nil
}

func (r *scanRepo) Stats(ctx context.Context) (*domain.ScanStats, error) {
	var stats domain.ScanStats
	query := `SELECT
		COUNT(*) AS total_scans,
		COUNT(*) FILTER (WHERE success) AS succeeded,
		COUNT(*) FILTER (WHERE NOT success) AS failed,
		COALESCE(AVG(ocr_seconds), 0) AS avg_ocr_seconds,
		COALESCE(AVG(extract_seconds), 0) AS avg_extract_seconds,
		COALESCE(AVG(total_seconds), 0) AS avg_total_seconds
	FROM scans`

	if err := r.db.GetContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("scanRepo.Stats: %w", err)
	}
	return &stats, nil
}

func (r *scanRepo) ListExpired(ctx context.Context, cutoff time.Time, limit int) ([]domain.ScanRecord, error) {
	var records []domain.ScanRecord
	err := r.db.SelectContext(ctx, &records,
		`SELECT * FROM scans WHERE created_at < $1 ORDER BY created_at ASC LIMIT $2`,
		cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("scanRepo.ListExpired: %w", err)
	}
	return records, nil
}

func (r *scanRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM scans WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("scanRepo.Delete: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("scanRepo.Delete rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
