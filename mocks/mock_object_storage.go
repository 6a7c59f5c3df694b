package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"chunkrelay/internal/domain"
	"chunkrelay/internal/port"
)

// MockObjectStorage is a mock implementation of port.ObjectStorage.
type MockObjectStorage struct {
	mock.Mock
}

func (m *MockObjectStorage) PutObject(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error) {
	args := m.Called(ctx, key, body, size, contentType)
	return args.String(0), args.Error(1)
}

func (m *MockObjectStorage) CreateMultipart(ctx context.Context, key, contentType string) (string, error) {
	args := m.Called(ctx, key, contentType)
	return args.String(0), args.Error(1)
}

func (m *MockObjectStorage) UploadPart(ctx context.Context, key, uploadID string, partNumber int, body io.Reader, size int64) (string, error) {
	args := m.Called(ctx, key, uploadID, partNumber, body, size)
	return args.String(0), args.Error(1)
}

func (m *MockObjectStorage) CompleteMultipart(ctx context.Context, key, uploadID string, parts []domain.CompletedPart) error {
	args := m.Called(ctx, key, uploadID, parts)
	return args.Error(0)
}

func (m *MockObjectStorage) AbortMultipart(ctx context.Context, key, uploadID string) error {
	args := m.Called(ctx, key, uploadID)
	return args.Error(0)
}

func (m *MockObjectStorage) GetObject(ctx context.Context, key string) (*port.ObjectReader, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.ObjectReader), args.Error(1)
}

func (m *MockObjectStorage) ListObjects(ctx context.Context) ([]domain.ObjectInfo, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ObjectInfo), args.Error(1)
}
