package usecase

import (
	"context"
	"fmt"

	"github.com/dreschagin/perfci/internal/application/dto"
	"github.com/dreschagin/perfci/internal/domain/repository"
	"github.com/dreschagin/perfci/pkg/logger"
)

// ListProjectsUseCase возвращает все отслеживаемые проекты
type ListProjectsUseCase struct {
	projects repository.ProjectRepository
	logger   *logger.Logger
}

// NewListProjectsUseCase создает новый use case
func NewListProjectsUseCase(projects repository.ProjectRepository, logger *logger.Logger) *ListProjectsUseCase {
	return &ListProjectsUseCase{
		projects: projects,
		logger:   logger,
	}
}

// Execute выполняет получение списка проектов
func (uc *ListProjectsUseCase) Execute(ctx context.Context) ([]*dto.ProjectDTO, error) {
	projects, err := uc.projects.FindAll(ctx)
	if err != nil {
		uc.logger.Error("Failed to list projects", err)
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	uc.logger.Debug("Projects listed", "count", len(projects))
	return dto.ToProjectDTOs(projects), nil
}
