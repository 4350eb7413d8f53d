package dto

import (
	"time"

	"github.com/dreschagin/perfci/internal/domain/entity"
)

// ProjectDTO представляет проект для передачи между слоями
type ProjectDTO struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug,omitempty"`
	ExternalURL string    `json:"external_url,omitempty"`
	BaseBranch  string    `json:"base_branch"`
	CreatedAt   time.Time `json:"created_at"`
}

// BuildDTO представляет сборку для передачи между слоями
type BuildDTO struct {
	ID               string    `json:"id"`
	ProjectID        string    `json:"project_id"`
	Branch           string    `json:"branch"`
	CommitHash       string    `json:"commit_hash"`
	CommitMessage    string    `json:"commit_message"`
	Author           string    `json:"author"`
	AvatarURL        string    `json:"avatar_url"`
	ExternalBuildURL string    `json:"external_build_url"`
	Lifecycle        string    `json:"lifecycle"`
	CommittedAt      time.Time `json:"committed_at"`
	RunAt            time.Time `json:"run_at"`
}

// RunDTO представляет run для передачи между слоями
type RunDTO struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	BuildID   string    `json:"build_id"`
	URL       string    `json:"url"`
	LHR       string    `json:"lhr"`
	CreatedAt time.Time `json:"created_at"`
}

// FromProject конвертирует Domain Entity в DTO
// Build token намеренно не попадает в DTO: это credential, а не атрибут API
func FromProject(project *entity.Project) *ProjectDTO {
	return &ProjectDTO{
		ID:          project.ID(),
		Name:        project.Name(),
		Slug:        project.Slug(),
		ExternalURL: project.ExternalURL(),
		BaseBranch:  project.BaseBranch(),
		CreatedAt:   project.CreatedAt(),
	}
}

// FromBuild конвертирует Domain Entity в DTO
func FromBuild(build *entity.Build) *BuildDTO {
	return &BuildDTO{
		ID:               build.ID(),
		ProjectID:        build.ProjectID(),
		Branch:           build.Branch(),
		CommitHash:       build.CommitHash(),
		CommitMessage:    build.CommitMessage(),
		Author:           build.Author(),
		AvatarURL:        build.AvatarURL(),
		ExternalBuildURL: build.ExternalBuildURL(),
		Lifecycle:        string(build.Lifecycle()),
		CommittedAt:      build.CommittedAt(),
		RunAt:            build.RunAt(),
	}
}

// FromRun конвертирует Domain Entity в DTO
func FromRun(run *entity.Run) *RunDTO {
	return &RunDTO{
		ID:        run.ID(),
		ProjectID: run.ProjectID(),
		BuildID:   run.BuildID(),
		URL:       run.URL(),
		LHR:       run.LHR(),
		CreatedAt: run.CreatedAt(),
	}
}

// ToProjectDTOs конвертирует слайс Entity в слайс DTO
func ToProjectDTOs(projects []*entity.Project) []*ProjectDTO {
	dtos := make([]*ProjectDTO, len(projects))
	for i, p := range projects {
		dtos[i] = FromProject(p)
	}
	return dtos
}

// ToBuildDTOs конвертирует слайс Entity в слайс DTO
func ToBuildDTOs(builds []*entity.Build) []*BuildDTO {
	dtos := make([]*BuildDTO, len(builds))
	for i, b := range builds {
		dtos[i] = FromBuild(b)
	}
	return dtos
}

// ToRunDTOs конвертирует слайс Entity в слайс DTO
func ToRunDTOs(runs []*entity.Run) []*RunDTO {
	dtos := make([]*RunDTO, len(runs))
	for i, r := range runs {
		dtos[i] = FromRun(r)
	}
	return dtos
}
