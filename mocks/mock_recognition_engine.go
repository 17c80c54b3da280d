package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"parcelscan/internal/domain"
)

// MockRecognitionEngine is a mock implementation of port.RecognitionEngine.
type MockRecognitionEngine struct {
	mock.Mock
}

func (m *MockRecognitionEngine) Recognize(ctx context.Context, image []byte) (*domain.Transcript, error) {
	args := m.Called(ctx, image)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transcript), args.Error(1)
}

func (m *MockRecognitionEngine) Ready() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockRecognitionEngine) Device() string {
	args := m.Called()
	return args.String(0)
}
