package port

import (
	"context"

	"parcelscan/internal/domain"
)

// CarrierRepository stores the shipping-company alias table.
type CarrierRepository interface {
	ListAll(ctx context.Context) ([]domain.CarrierAlias, error)

	// ReplaceAll atomically swaps the alias table, used by the seed tool.
	ReplaceAll(ctx context.Context, aliases []domain.CarrierAlias) error
}
