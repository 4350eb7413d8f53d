package repository

import (
	"context"

	"github.com/dreschagin/perfci/internal/domain/entity"
)

// RunRepository определяет интерфейс для работы с хранилищем runs (Port)
// Реализация будет в Infrastructure слое
type RunRepository interface {
	// Create сохраняет новый run, назначает уникальный идентификатор
	// и возвращает run с идентификатором
	Create(ctx context.Context, run *entity.Run) (*entity.Run, error)

	// FindByBuild находит все runs сборки в порядке создания
	FindByBuild(ctx context.Context, projectID, buildID string) ([]*entity.Run, error)
}
