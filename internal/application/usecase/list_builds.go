package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/dreschagin/perfci/internal/application/dto"
	"github.com/dreschagin/perfci/internal/domain/repository"
	"github.com/dreschagin/perfci/pkg/logger"
)

// ErrProjectNotFound возвращается, когда проект не найден по идентификатору
var ErrProjectNotFound = errors.New("project not found")

// DefaultBuildListLimit ограничивает размер списка сборок по умолчанию
const DefaultBuildListLimit = 25

// ListBuildsUseCase возвращает сборки проекта
type ListBuildsUseCase struct {
	projects repository.ProjectRepository
	builds   repository.BuildRepository
	logger   *logger.Logger
}

// NewListBuildsUseCase создает новый use case
func NewListBuildsUseCase(
	projects repository.ProjectRepository,
	builds repository.BuildRepository,
	logger *logger.Logger,
) *ListBuildsUseCase {
	return &ListBuildsUseCase{
		projects: projects,
		builds:   builds,
		logger:   logger,
	}
}

// Execute выполняет получение сборок проекта
func (uc *ListBuildsUseCase) Execute(ctx context.Context, projectID string, limit int) ([]*dto.BuildDTO, error) {
	project, err := uc.projects.FindByID(ctx, projectID)
	if err != nil {
		uc.logger.Error("Failed to find project", err, "project_id", projectID)
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	if project == nil {
		return nil, ErrProjectNotFound
	}

	if limit <= 0 {
		limit = DefaultBuildListLimit
	}

	builds, err := uc.builds.FindByProject(ctx, projectID, limit)
	if err != nil {
		uc.logger.Error("Failed to list builds", err, "project_id", projectID)
		return nil, fmt.Errorf("failed to list builds: %w", err)
	}

	uc.logger.Debug("Builds listed", "project_id", projectID, "count", len(builds))
	return dto.ToBuildDTOs(builds), nil
}
