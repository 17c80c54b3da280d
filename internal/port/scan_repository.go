package port

import (
	"context"
	"time"

	"github.com/google/uuid"

	"parcelscan/internal/domain"
)

// ScanRepository persists scan history rows.
type ScanRepository interface {
	Create(ctx context.Context, rec *domain.ScanRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ScanRecord, error)
	List(ctx context.Context, offset, limit int) ([]domain.ScanRecord, int, error)
	Stats(ctx context.Context) (*domain.ScanStats, error)

	// ListExpired returns rows created before cutoff, for retention sweeps.
	ListExpired(ctx context.Context, cutoff time.Time, limit int) ([]domain.ScanRecord, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
