package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"gasdoc/internal/domain"
	"gasdoc/internal/port"
	"gasdoc/internal/service"
)

// MockFileService is a mock implementation of service.FileService.
type MockFileService struct {
	mock.Mock
}

func (m *MockFileService) Read(ctx context.Context, input service.FileInput) (*domain.Document, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockFileService) LoadDir(ctx context.Context, dir string) ([]domain.Document, error) {
	args := m.Called(ctx, dir)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Document), args.Error(1)
}

func (m *MockFileService) LoadS3(ctx context.Context, bucket, prefix string) ([]domain.Document, error) {
	args := m.Called(ctx, bucket, prefix)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Document), args.Error(1)
}

func (m *MockFileService) UploadExport(ctx context.Context, bucket, key, contentType string, body []byte) (*port.UploadOutput, error) {
	args := m.Called(ctx, bucket, key, contentType, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.UploadOutput), args.Error(1)
}
