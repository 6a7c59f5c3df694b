package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"chunkrelay/internal/domain"
	"chunkrelay/internal/port"
)

// MockObjectService is a mock implementation of service.ObjectService.
type MockObjectService struct {
	mock.Mock
}

func (m *MockObjectService) List(ctx context.Context) ([]domain.ObjectInfo, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ObjectInfo), args.Error(1)
}

func (m *MockObjectService) Download(ctx context.Context, key string) (*port.ObjectReader, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.ObjectReader), args.Error(1)
}
