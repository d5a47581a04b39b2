// Package catalog содержит бизнес-логику чтения каталога контента
// с кешированием списка.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/content-marketplace/internal/lib/sl"
	"github.com/magabrotheeeer/content-marketplace/internal/models"
)

const (
	listCacheKey = "catalog:list"
	listCacheTTL = 5 * time.Minute
)

// ContentRepository определяет методы чтения каталога в хранилище.
type ContentRepository interface {
	ListContent(ctx context.Context, limit, offset int) ([]*models.ContentItem, error)
	GetContentBySlug(ctx context.Context, slug string) (*models.ContentItem, error)
	GetContentByID(ctx context.Context, id string) (*models.ContentItem, error)
	IncrementViewCount(ctx context.Context, id string) error
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

// Service реализует чтение каталога с кешированием.
type Service struct {
	repo  ContentRepository
	cache Cache
	log   *slog.Logger
}

// New создает Service.
func New(repo ContentRepository, cache Cache, log *slog.Logger) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// List возвращает первую страницу каталога, при возможности из кеша.
// Кеширование каталога безопасно: права доступа по нему не вычисляются.
func (s *Service) List(ctx context.Context, limit, offset int) ([]*models.ContentItem, error) {
	const op = "catalog.List"

	cacheKey := fmt.Sprintf("%s:%d:%d", listCacheKey, limit, offset)
	var cached []*models.ContentItem
	if found, err := s.cache.Get(ctx, cacheKey, &cached); err != nil {
		s.log.Error("catalog cache read failed", sl.Err(err))
	} else if found {
		return cached, nil
	}

	items, err := s.repo.ListContent(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.cache.Set(ctx, cacheKey, items, listCacheTTL); err != nil {
		s.log.Error("catalog cache write failed", sl.Err(err))
	}
	return items, nil
}

// GetBySlug возвращает элемент каталога и увеличивает счетчик просмотров.
func (s *Service) GetBySlug(ctx context.Context, slug string) (*models.ContentItem, error) {
	const op = "catalog.GetBySlug"

	item, err := s.repo.GetContentBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.repo.IncrementViewCount(ctx, item.ID); err != nil {
		// Счетчик просмотров не должен ломать выдачу страницы.
		s.log.Error("failed to bump view count", sl.Err(err), slog.String("id", item.ID))
	}
	return item, nil
}

// GetByID возвращает элемент каталога по идентификатору.
func (s *Service) GetByID(ctx context.Context, id string) (*models.ContentItem, error) {
	const op = "catalog.GetByID"

	item, err := s.repo.GetContentByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return item, nil
}
