package service

import (
	"context"
	"fmt"

	"syscourse/server/catalog/domain"
	commonlog "syscourse/server/common/log"
)

const listCacheKey = "all"

type courseStore interface {
	List(ctx context.Context) ([]domain.Course, error)
	Get(ctx context.Context, courseID string) (domain.Course, error)
	Create(ctx context.Context, item domain.Course) error
	Delete(ctx context.Context, courseID string) error
}

type listCache interface {
	Get(ctx context.Context, name string, out any) (bool, error)
	Set(ctx context.Context, name string, value any) error
	Delete(ctx context.Context, names ...string) error
}

type CourseService struct {
	store courseStore
	cache listCache
	newID func() string
}

// NewCourseService accepts a nil cache; listing then always hits the store.
func NewCourseService(store courseStore, cache listCache) *CourseService {
	return &CourseService{store: store, cache: cache, newID: domain.NewID}
}

func (s *CourseService) List(ctx context.Context) ([]domain.Course, error) {
	if s.cache != nil {
		var cached []domain.Course
		found, err := s.cache.Get(ctx, listCacheKey, &cached)
		if err != nil {
			commonlog.Warnf("course list cache read failed: %v", err)
		} else if found {
			return cached, nil
		}
	}

	items, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, listCacheKey, items); err != nil {
			commonlog.Warnf("course list cache write failed: %v", err)
		}
	}
	return items, nil
}

func (s *CourseService) Get(ctx context.Context, courseID string) (domain.Course, error) {
	return s.store.Get(ctx, courseID)
}

// Create assigns a fresh document id, ignoring any id the caller sent.
func (s *CourseService) Create(ctx context.Context, item domain.Course) (string, error) {
	item.CourseID = s.newID()
	item.DocumentID = item.CourseID
	if err := s.store.Create(ctx, item); err != nil {
		return "", fmt.Errorf("create course: %w", err)
	}
	s.invalidate(ctx)
	return item.CourseID, nil
}

// DeleteOwned removes the course only when uid matches its owner.
func (s *CourseService) DeleteOwned(ctx context.Context, courseID, uid string) error {
	item, err := s.store.Get(ctx, courseID)
	if err != nil {
		return err
	}
	if item.UID != uid {
		return domain.ErrNotOwner
	}
	if err := s.store.Delete(ctx, courseID); err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	s.invalidate(ctx)
	return nil
}

func (s *CourseService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, listCacheKey); err != nil {
		commonlog.Warnf("course list cache invalidation failed: %v", err)
	}
}
