package service

import (
	"context"

	"chunkrelay/internal/domain"
	"chunkrelay/internal/port"
)

// ObjectService exposes read-only queries over committed objects.
type ObjectService interface {
	List(ctx context.Context) ([]domain.ObjectInfo, error)
	Download(ctx context.Context, key string) (*port.ObjectReader, error)
}

type objectService struct {
	storage port.ObjectStorage
}

// NewObjectService creates a new ObjectService implementation.
func NewObjectService(storage port.ObjectStorage) ObjectService {
	return &objectService{storage: storage}
}

func (s *objectService) List(ctx context.Context) ([]domain.ObjectInfo, error) {
	return s.storage.ListObjects(ctx)
}

func (s *objectService) Download(ctx context.Context, key string) (*port.ObjectReader, error) {
	key, err := objectKey(key)
	if err != nil {
		return nil, err
	}
	return s.storage.GetObject(ctx, key)
}
