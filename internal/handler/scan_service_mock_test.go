package handler_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"parcelscan/internal/domain"
	"parcelscan/internal/service"
)

// mockScanService is a testify mock for service.ScanService. It lives with
// the handler tests so the shared mocks package never imports service.
type mockScanService struct {
	mock.Mock
}

func (m *mockScanService) Process(ctx context.Context, input service.ScanInput) (*domain.ScanResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ScanResult), args.Error(1)
}

func (m *mockScanService) EngineReady() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *mockScanService) ExtractorConfigured() bool {
	args := m.Called()
	return args.Bool(0)
}
