package service

import (
	"context"
	"fmt"

	"syscourse/server/catalog/domain"
)

type resourceStore interface {
	List(ctx context.Context) ([]domain.Resource, error)
	ListByCourse(ctx context.Context, courseID string) ([]domain.Resource, error)
	Get(ctx context.Context, resourceID string) (domain.Resource, error)
	Create(ctx context.Context, item domain.Resource) error
	Delete(ctx context.Context, resourceID string) error
}

type ResourceService struct {
	store resourceStore
	newID func() string
}

func NewResourceService(store resourceStore) *ResourceService {
	return &ResourceService{store: store, newID: domain.NewID}
}

func (s *ResourceService) List(ctx context.Context) ([]domain.Resource, error) {
	return s.store.List(ctx)
}

func (s *ResourceService) ListByCourse(ctx context.Context, courseID string) ([]domain.Resource, error) {
	return s.store.ListByCourse(ctx, courseID)
}

func (s *ResourceService) Get(ctx context.Context, resourceID string) (domain.Resource, error) {
	return s.store.Get(ctx, resourceID)
}

// Create stores the resource under a fresh document id. The upload id the
// front end sends in resource_id names the stored file, not the document.
func (s *ResourceService) Create(ctx context.Context, item domain.Resource) (string, error) {
	item.ResourceID = s.newID()
	item.DocumentID = item.ResourceID
	if err := s.store.Create(ctx, item); err != nil {
		return "", fmt.Errorf("create resource: %w", err)
	}
	return item.ResourceID, nil
}

// Delete succeeds whether or not the resource exists.
func (s *ResourceService) Delete(ctx context.Context, resourceID string) error {
	return s.store.Delete(ctx, resourceID)
}
