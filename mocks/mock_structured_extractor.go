package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"gasdoc/internal/domain"
	"gasdoc/internal/port"
)

// MockStructuredExtractor is a mock implementation of port.StructuredExtractor.
type MockStructuredExtractor struct {
	mock.Mock
}

func (m *MockStructuredExtractor) ClassifyDocument(ctx context.Context, input port.DocumentInput) (*domain.Signals, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Signals), args.Error(1)
}

func (m *MockStructuredExtractor) ExtractStructured(ctx context.Context, input port.ExtractInput) (*port.RawExtraction, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.RawExtraction), args.Error(1)
}

// MockSignalSource is a mock implementation of port.SignalSource.
type MockSignalSource struct {
	mock.Mock
}

func (m *MockSignalSource) ClassifyDocument(ctx context.Context, input port.DocumentInput) (*domain.Signals, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Signals), args.Error(1)
}
