package postgres

import (
	"database/sql"
	"time"

	"github.com/dreschagin/perfci/internal/domain/entity"
)

// ProjectDBModel представляет проект в БД
type ProjectDBModel struct {
	ID          string
	Name        string
	Slug        string
	ExternalURL string
	BaseBranch  string
	BuildToken  string
	CreatedAt   time.Time
}

// BuildDBModel представляет сборку в БД
type BuildDBModel struct {
	ID               string
	ProjectID        string
	Branch           string
	CommitHash       string
	CommitMessage    string
	Author           string
	AvatarURL        string
	ExternalBuildURL string
	Lifecycle        string
	CommittedAt      time.Time
	RunAt            time.Time
}

// RunDBModel представляет run в БД
type RunDBModel struct {
	ID        string
	ProjectID string
	BuildID   string
	URL       string
	LHR       string
	CreatedAt time.Time
}

// ProjectToDBModel конвертирует Domain Entity в DB Model
func ProjectToDBModel(project *entity.Project) *ProjectDBModel {
	return &ProjectDBModel{
		ID:          project.ID(),
		Name:        project.Name(),
		Slug:        project.Slug(),
		ExternalURL: project.ExternalURL(),
		BaseBranch:  project.BaseBranch(),
		BuildToken:  project.BuildToken(),
		CreatedAt:   project.CreatedAt(),
	}
}

// ProjectToEntity конвертирует DB Model в Domain Entity
func ProjectToEntity(model *ProjectDBModel) *entity.Project {
	return entity.ReconstructProject(
		model.ID,
		model.Name,
		model.Slug,
		model.ExternalURL,
		model.BaseBranch,
		model.BuildToken,
		model.CreatedAt,
	)
}

// BuildToDBModel конвертирует Domain Entity в DB Model
func BuildToDBModel(build *entity.Build) *BuildDBModel {
	return &BuildDBModel{
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

// BuildToEntity конвертирует DB Model в Domain Entity
func BuildToEntity(model *BuildDBModel) *entity.Build {
	return entity.ReconstructBuild(
		model.ID,
		model.ProjectID,
		model.Branch,
		model.CommitHash,
		model.CommitMessage,
		model.Author,
		model.AvatarURL,
		model.ExternalBuildURL,
		entity.Lifecycle(model.Lifecycle),
		model.CommittedAt,
		model.RunAt,
	)
}

// RunToDBModel конвертирует Domain Entity в DB Model
func RunToDBModel(run *entity.Run) *RunDBModel {
	return &RunDBModel{
		ID:        run.ID(),
		ProjectID: run.ProjectID(),
		BuildID:   run.BuildID(),
		URL:       run.URL(),
		LHR:       run.LHR(),
		CreatedAt: run.CreatedAt(),
	}
}

// RunToEntity конвертирует DB Model в Domain Entity
func RunToEntity(model *RunDBModel) *entity.Run {
	return entity.ReconstructRun(
		model.ID,
		model.ProjectID,
		model.BuildID,
		model.URL,
		model.LHR,
		model.CreatedAt,
	)
}

// rowScanner покрывает *sql.Row и *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// ScanProjectRow сканирует строку БД в ProjectDBModel
func ScanProjectRow(row rowScanner) (*ProjectDBModel, error) {
	var model ProjectDBModel
	var slug, externalURL sql.NullString

	err := row.Scan(
		&model.ID,
		&model.Name,
		&slug,
		&externalURL,
		&model.BaseBranch,
		&model.BuildToken,
		&model.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	model.Slug = slug.String
	model.ExternalURL = externalURL.String

	return &model, nil
}

// ScanBuildRow сканирует строку БД в BuildDBModel
func ScanBuildRow(row rowScanner) (*BuildDBModel, error) {
	var model BuildDBModel

	err := row.Scan(
		&model.ID,
		&model.ProjectID,
		&model.Branch,
		&model.CommitHash,
		&model.CommitMessage,
		&model.Author,
		&model.AvatarURL,
		&model.ExternalBuildURL,
		&model.Lifecycle,
		&model.CommittedAt,
		&model.RunAt,
	)
	if err != nil {
		return nil, err
	}

	return &model, nil
}

// ScanRunRow сканирует строку БД в RunDBModel
func ScanRunRow(row rowScanner) (*RunDBModel, error) {
	var model RunDBModel

	err := row.Scan(
		&model.ID,
		&model.ProjectID,
		&model.BuildID,
		&model.URL,
		&model.LHR,
		&model.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &model, nil
}
