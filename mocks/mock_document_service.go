package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"gasdoc/internal/domain"
	"gasdoc/internal/service"
)

// MockDocumentService is a mock implementation of service.DocumentService.
type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) Classify(ctx context.Context, doc domain.Document) (*domain.ClassificationResult, error) {
	args := m.Called(ctx, doc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ClassificationResult), args.Error(1)
}

func (m *MockDocumentService) Process(ctx context.Context, doc domain.Document, documentType *domain.DocumentType) (*service.ProcessResult, error) {
	args := m.Called(ctx, doc, documentType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ProcessResult), args.Error(1)
}

func (m *MockDocumentService) ListTypes() []domain.DocumentType {
	args := m.Called()
	return args.Get(0).([]domain.DocumentType)
}
