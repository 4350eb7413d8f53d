package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/dreschagin/perfci/internal/application/dto"
	"github.com/dreschagin/perfci/internal/domain/repository"
	"github.com/dreschagin/perfci/pkg/logger"
)

// ErrBuildNotFound возвращается, когда сборка не найдена по идентификатору
var ErrBuildNotFound = errors.New("build not found")

// GetBuildRunsUseCase возвращает сборку вместе с ее runs
type GetBuildRunsUseCase struct {
	builds repository.BuildRepository
	runs   repository.RunRepository
	logger *logger.Logger
}

// BuildWithRunsDTO объединяет сборку и ее runs для API
type BuildWithRunsDTO struct {
	Build *dto.BuildDTO `json:"build"`
	Runs  []*dto.RunDTO `json:"runs"`
}

// NewGetBuildRunsUseCase создает новый use case
func NewGetBuildRunsUseCase(
	builds repository.BuildRepository,
	runs repository.RunRepository,
	logger *logger.Logger,
) *GetBuildRunsUseCase {
	return &GetBuildRunsUseCase{
		builds: builds,
		runs:   runs,
		logger: logger,
	}
}

// Execute выполняет получение сборки и ее runs
func (uc *GetBuildRunsUseCase) Execute(ctx context.Context, buildID string) (*BuildWithRunsDTO, error) {
	build, err := uc.builds.FindByID(ctx, buildID)
	if err != nil {
		uc.logger.Error("Failed to find build", err, "build_id", buildID)
		return nil, fmt.Errorf("failed to find build: %w", err)
	}
	if build == nil {
		return nil, ErrBuildNotFound
	}

	runs, err := uc.runs.FindByBuild(ctx, build.ProjectID(), build.ID())
	if err != nil {
		uc.logger.Error("Failed to list runs", err, "build_id", buildID)
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	uc.logger.Debug("Build runs fetched", "build_id", buildID, "count", len(runs))

	return &BuildWithRunsDTO{
		Build: dto.FromBuild(build),
		Runs:  dto.ToRunDTOs(runs),
	}, nil
}
