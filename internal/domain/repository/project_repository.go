package repository

import (
	"context"

	"github.com/dreschagin/perfci/internal/domain/entity"
)

// ProjectRepository определяет интерфейс для работы с хранилищем проектов (Port)
// Реализация будет в Infrastructure слое
type ProjectRepository interface {
	// Save сохраняет проект
	Save(ctx context.Context, project *entity.Project) error

	// FindByID находит проект по идентификатору
	// Возвращает (nil, nil) если проект не найден
	FindByID(ctx context.Context, id string) (*entity.Project, error)

	// FindByToken находит проект по build token
	// Безопасен для произвольных токенов: возвращает (nil, nil) если проект не найден
	FindByToken(ctx context.Context, token string) (*entity.Project, error)

	// FindAll возвращает все проекты
	FindAll(ctx context.Context) ([]*entity.Project, error)
}
