package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dreschagin/perfci/internal/domain/entity"
	_ "github.com/lib/pq"
)

// PostgresProjectRepository реализует repository.ProjectRepository для PostgreSQL
type PostgresProjectRepository struct {
	db *sql.DB
}

// NewPostgresProjectRepository создает новый PostgreSQL repository
func NewPostgresProjectRepository(db *sql.DB) *PostgresProjectRepository {
	return &PostgresProjectRepository{
		db: db,
	}
}

// Save сохраняет проект (insert или update по идентификатору)
func (r *PostgresProjectRepository) Save(ctx context.Context, project *entity.Project) error {
	model := ProjectToDBModel(project)

	query := `
		INSERT INTO projects (id, name, slug, external_url, base_branch, build_token, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			slug = EXCLUDED.slug,
			external_url = EXCLUDED.external_url,
			base_branch = EXCLUDED.base_branch,
			build_token = EXCLUDED.build_token
	`

	_, err := r.db.ExecContext(ctx, query,
		model.ID,
		model.Name,
		model.Slug,
		model.ExternalURL,
		model.BaseBranch,
		model.BuildToken,
		model.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save project: %w", err)
	}

	return nil
}

// FindByID находит проект по идентификатору
// Возвращает (nil, nil) если проект не найден
func (r *PostgresProjectRepository) FindByID(ctx context.Context, id string) (*entity.Project, error) {
	query := `
		SELECT id, name, slug, external_url, base_branch, build_token, created_at
		FROM projects
		WHERE id = $1
	`

	row := r.db.QueryRowContext(ctx, query, id)
	model, err := ScanProjectRow(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan project: %w", err)
	}

	return ProjectToEntity(model), nil
}

// FindByToken находит проект по build token
// Безопасен для произвольных токенов: возвращает (nil, nil) если проект не найден
func (r *PostgresProjectRepository) FindByToken(ctx context.Context, token string) (*entity.Project, error) {
	query := `
		SELECT id, name, slug, external_url, base_branch, build_token, created_at
		FROM projects
		WHERE build_token = $1
	`

	row := r.db.QueryRowContext(ctx, query, token)
	model, err := ScanProjectRow(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan project: %w", err)
	}

	return ProjectToEntity(model), nil
}

// FindAll возвращает все проекты
func (r *PostgresProjectRepository) FindAll(ctx context.Context) ([]*entity.Project, error) {
	query := `
		SELECT id, name, slug, external_url, base_branch, build_token, created_at
		FROM projects
		ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	defer rows.Close()

	var projects []*entity.Project
	for rows.Next() {
		model, err := ScanProjectRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project row: %w", err)
		}
		projects = append(projects, ProjectToEntity(model))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return projects, nil
}
