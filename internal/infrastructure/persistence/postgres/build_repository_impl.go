package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dreschagin/perfci/internal/domain/entity"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
)

// PostgresBuildRepository реализует repository.BuildRepository для PostgreSQL
type PostgresBuildRepository struct {
	db *sql.DB
}

// NewPostgresBuildRepository создает новый PostgreSQL repository
func NewPostgresBuildRepository(db *sql.DB) *PostgresBuildRepository {
	return &PostgresBuildRepository{
		db: db,
	}
}

// Create сохраняет новую сборку, назначает уникальный идентификатор
// и возвращает сборку с идентификатором
func (r *PostgresBuildRepository) Create(ctx context.Context, build *entity.Build) (*entity.Build, error) {
	created := build.WithID(uuid.New().String())
	model := BuildToDBModel(created)

	query := `
		INSERT INTO builds (
			id, project_id, branch, commit_hash, commit_message, author,
			avatar_url, external_build_url, lifecycle, committed_at, run_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.ExecContext(ctx, query,
		model.ID,
		model.ProjectID,
		model.Branch,
		model.CommitHash,
		model.CommitMessage,
		model.Author,
		model.AvatarURL,
		model.ExternalBuildURL,
		model.Lifecycle,
		model.CommittedAt,
		model.RunAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert build: %w", err)
	}

	return created, nil
}

// FindByID находит сборку по идентификатору
// Возвращает (nil, nil) если сборка не найдена
func (r *PostgresBuildRepository) FindByID(ctx context.Context, id string) (*entity.Build, error) {
	query := `
		SELECT id, project_id, branch, commit_hash, commit_message, author,
			avatar_url, external_build_url, lifecycle, committed_at, run_at
		FROM builds
		WHERE id = $1
	`

	row := r.db.QueryRowContext(ctx, query, id)
	model, err := ScanBuildRow(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan build: %w", err)
	}

	return BuildToEntity(model), nil
}

// FindByProject находит сборки проекта с ограничением количества
func (r *PostgresBuildRepository) FindByProject(ctx context.Context, projectID string, limit int) ([]*entity.Build, error) {
	query := `
		SELECT id, project_id, branch, commit_hash, commit_message, author,
			avatar_url, external_build_url, lifecycle, committed_at, run_at
		FROM builds
		WHERE project_id = $1
		ORDER BY run_at DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, projectID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query builds: %w", err)
	}
	defer rows.Close()

	var builds []*entity.Build
	for rows.Next() {
		model, err := ScanBuildRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan build row: %w", err)
		}
		builds = append(builds, BuildToEntity(model))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return builds, nil
}
