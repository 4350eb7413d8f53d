package repository

import (
	"context"

	"github.com/dreschagin/perfci/internal/domain/entity"
)

// BuildRepository определяет интерфейс для работы с хранилищем сборок (Port)
// Реализация будет в Infrastructure слое
type BuildRepository interface {
	// Create сохраняет новую сборку, назначает уникальный идентификатор
	// и возвращает сборку с идентификатором
	Create(ctx context.Context, build *entity.Build) (*entity.Build, error)

	// FindByID находит сборку по идентификатору
	// Возвращает (nil, nil) если сборка не найдена
	FindByID(ctx context.Context, id string) (*entity.Build, error)

	// FindByProject находит сборки проекта с ограничением количества
	FindByProject(ctx context.Context, projectID string, limit int) ([]*entity.Build, error)
}
