package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"chunkrelay/internal/domain"
	"chunkrelay/internal/service"
)

// MockUploadService is a mock implementation of service.UploadService.
type MockUploadService struct {
	mock.Mock
}

func (m *MockUploadService) Initiate(ctx context.Context, filename string, fileSize int64) (*service.InitiateOutput, error) {
	args := m.Called(ctx, filename, fileSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.InitiateOutput), args.Error(1)
}

func (m *MockUploadService) PutSimple(ctx context.Context, key string, body io.Reader, size int64) (string, error) {
	args := m.Called(ctx, key, body, size)
	return args.String(0), args.Error(1)
}

func (m *MockUploadService) UploadPart(ctx context.Context, uploadID string, partNumber int, body io.Reader, size int64) (domain.CompletedPart, error) {
	args := m.Called(ctx, uploadID, partNumber, body, size)
	return args.Get(0).(domain.CompletedPart), args.Error(1)
}

func (m *MockUploadService) Complete(ctx context.Context, uploadID string, parts []domain.CompletedPart) error {
	args := m.Called(ctx, uploadID, parts)
	return args.Error(0)
}

func (m *MockUploadService) Abort(ctx context.Context, uploadID string) error {
	args := m.Called(ctx, uploadID)
	return args.Error(0)
}
