package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"parcelscan/internal/port"
)

// MockFieldExtractor is a mock implementation of port.FieldExtractor.
type MockFieldExtractor struct {
	mock.Mock
}

func (m *MockFieldExtractor) Extract(ctx context.Context, input port.ExtractInput) (*port.RawFields, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.RawFields), args.Error(1)
}

func (m *MockFieldExtractor) Configured() bool {
	args := m.Called()
	return args.Bool(0)
}
