package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dreschagin/perfci/internal/domain/entity"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
)

// PostgresRunRepository реализует repository.RunRepository для PostgreSQL
type PostgresRunRepository struct {
	db *sql.DB
}

// NewPostgresRunRepository создает новый PostgreSQL repository
func NewPostgresRunRepository(db *sql.DB) *PostgresRunRepository {
	return &PostgresRunRepository{
		db: db,
	}
}

// Create сохраняет новый run, назначает уникальный идентификатор
// и возвращает run с идентификатором
func (r *PostgresRunRepository) Create(ctx context.Context, run *entity.Run) (*entity.Run, error) {
	created := run.WithID(uuid.New().String())
	model := RunToDBModel(created)

	query := `
		INSERT INTO runs (id, project_id, build_id, url, lhr, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		model.ID,
		model.ProjectID,
		model.BuildID,
		model.URL,
		model.LHR,
		model.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert run: %w", err)
	}

	return created, nil
}

// FindByBuild находит все runs сборки в порядке создания
func (r *PostgresRunRepository) FindByBuild(ctx context.Context, projectID, buildID string) ([]*entity.Run, error) {
	query := `
		SELECT id, project_id, build_id, url, lhr, created_at
		FROM runs
		WHERE project_id = $1 AND build_id = $2
		ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query, projectID, buildID)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*entity.Run
	for rows.Next() {
		model, err := ScanRunRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		runs = append(runs, RunToEntity(model))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return runs, nil
}
