package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/caltman24/zaptrack/internal/domain"
)

// ProjectRepository reads project data needed to resolve relationship
// facts. Project CRUD itself lives outside this service.
type ProjectRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Project, error)
}

type projectRepository struct {
	pool *pgxpool.Pool
}

// NewProjectRepository builds repository.
func NewProjectRepository(pool *pgxpool.Pool) ProjectRepository {
	return &projectRepository{pool: pool}
}

func (r *projectRepository) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	const query = `
        SELECT id, company_id, name, description, project_manager_id, is_archived, created_at, updated_at
        FROM projects WHERE id=$1`
	var project domain.Project
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&project.ID,
		&project.CompanyID,
		&project.Name,
		&project.Description,
		&project.ProjectManagerID,
		&project.IsArchived,
		&project.CreatedAt,
		&project.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &project, nil
}
