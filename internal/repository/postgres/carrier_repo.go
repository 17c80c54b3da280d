package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"parcelscan/internal/domain"
	"parcelscan/internal/port"
)

type carrierRepo struct {
	db *sqlx.DB
}

// NewCarrierRepo creates a new PostgreSQL-backed CarrierRepository.
func NewCarrierRepo(db *sqlx.DB) port.CarrierRepository {
	return &carrierRepo{db: db}
}

func (r *carrierRepo) ListAll(ctx context.Context) ([]domain.CarrierAlias, error) {
	var aliases []domain.CarrierAlias
	err := r.db.SelectContext(ctx, &aliases,
		"SELECT * FROM carriers ORDER BY canonical, alias")
	if err != nil {
		return nil, fmt.Errorf("carrierRepo.ListAll: %w", err)
	}
	return aliases, nil
}

func (r *carrierRepo) ReplaceAll(ctx context.Context, aliases []domain.CarrierAlias) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("carrierRepo.ReplaceAll begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM carriers"); err != nil {
		return fmt.Errorf("carrierRepo.ReplaceAll delete: %w", err)
	}

	now := time.Now().UTC()
	for _, a := range aliases {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO carriers (canonical, alias, created_at) VALUES ($1, $2, $3)",
			a.Canonical, a.Alias, now)
		if err != nil {
			return fmt.Errorf("carrierRepo.ReplaceAll insert %q: %w", a.Alias, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("carrierRepo.ReplaceAll commit: %w", err)
	}
	return nil
}
