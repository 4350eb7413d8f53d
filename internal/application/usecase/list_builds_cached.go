package usecase

import (
	"context"

	"github.com/dreschagin/perfci/internal/application/dto"
	"github.com/dreschagin/perfci/internal/application/port"
	"github.com/dreschagin/perfci/internal/infrastructure/cache/redis"
	"github.com/dreschagin/perfci/pkg/logger"
)

// ListBuildsCachedUseCase возвращает сборки проекта с кешированием
type ListBuildsCachedUseCase struct {
	inner  *ListBuildsUseCase
	cache  port.Cache
	logger *logger.Logger
}

// NewListBuildsCachedUseCase создает новый use case с кешированием
func NewListBuildsCachedUseCase(
	inner *ListBuildsUseCase,
	cache port.Cache,
	logger *logger.Logger,
) *ListBuildsCachedUseCase {
	return &ListBuildsCachedUseCase{
		inner:  inner,
		cache:  cache,
		logger: logger,
	}
}

// Execute выполняет получение сборок проекта с кешированием
func (uc *ListBuildsCachedUseCase) Execute(ctx context.Context, projectID string, limit int) ([]*dto.BuildDTO, error) {
	// Если кеш не настроен, используем стандартный путь
	if uc.cache == nil {
		return uc.inner.Execute(ctx, projectID, limit)
	}

	cacheKey := redis.BuildListCacheKey(projectID, limit)

	// Пытаемся получить из кеша
	var cached []*dto.BuildDTO
	if err := uc.cache.Get(ctx, cacheKey, &cached); err == nil {
		uc.logger.Debug("Cache hit for build list",
			"project_id", projectID,
			"count", len(cached))
		return cached, nil
	}

	// Cache miss - получаем из БД
	uc.logger.Debug("Cache miss for build list, fetching from DB", "project_id", projectID)

	dtos, err := uc.inner.Execute(ctx, projectID, limit)
	if err != nil {
		return nil, err
	}

	// Сохраняем в кеш (асинхронно, не блокируем ответ)
	go func() {
		if err := uc.cache.Set(context.Background(), cacheKey, dtos); err != nil {
			uc.logger.Warn("Failed to cache build list", "error", err.Error())
		}
	}()

	return dtos, nil
}

// Invalidate сбрасывает кешированные списки сборок проекта
// Вызывается runner'ом после появления новой сборки
func (uc *ListBuildsCachedUseCase) Invalidate(ctx context.Context, projectID string) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.DeletePattern(ctx, redis.BuildListCachePattern(projectID)); err != nil {
		uc.logger.Warn("Failed to invalidate build list cache",
			"project_id", projectID,
			"error", err.Error())
	}
}
