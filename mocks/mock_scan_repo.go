package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"parcelscan/internal/domain"
)

// MockScanRepository is a mock implementation of port.ScanRepository.
type MockScanRepository struct {
	mock.Mock
}

func (m *MockScanRepository) Create(ctx context.Context, rec *domain.ScanRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockScanRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.ScanRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ScanRecord), args.Error(1)
}

func (m *MockScanRepository) List(ctx context.Context, offset, limit int) ([]domain.ScanRecord, int, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.ScanRecord), args.Int(1), args.Error(2)
}

func (m *MockScanRepository) Stats(ctx context.Context) (*domain.ScanStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ScanStats), args.Error(1)
}

func (m *MockScanRepository) ListExpired(ctx context.Context, cutoff time.Time, limit int) ([]domain.ScanRecord, error) {
	args := m.Called(ctx, cutoff, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ScanRecord), args.Error(1)
}

func (m *MockScanRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
