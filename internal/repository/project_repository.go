package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgProjectRepository struct {
	pool *pgxpool.Pool
}

func NewProjectRepository(pool *pgxpool.Pool) ProjectRepository {
	return &pgProjectRepository{pool: pool}
}

const projectColumns = `id, title, description, statuses, manager_id, pm_id, team_lead_id, customer_id, team_members, created_at, updated_at`

func scanProject(row pgx.Row) (*Project, error) {
	p := &Project{}
	err := row.Scan(
		&p.ID, &p.Title, &p.Description, &p.Statuses, &p.ManagerID, &p.PMID,
		&p.TeamLeadID, &p.CustomerID, &p.TeamMembers, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if p.TeamMembers == nil {
		p.TeamMembers = []string{}
	}
	return p, nil
}

func (r *pgProjectRepository) Create(ctx context.Context, project *Project) error {
	query := `
		INSERT INTO projects (title, description, statuses, manager_id, pm_id, team_lead_id, customer_id, team_members)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`
	if project.TeamMembers == nil {
		project.TeamMembers = []string{}
	}
	return r.pool.QueryRow(ctx, query,
		project.Title, project.Description, project.Statuses, project.ManagerID, project.PMID,
		project.TeamLeadID, project.CustomerID, project.TeamMembers,
	).Scan(&project.ID, &project.CreatedAt, &project.UpdatedAt)
}

func (r *pgProjectRepository) FindByID(ctx context.Context, id string) (*Project, error) {
	if !validID(id) {
		return nil, nil
	}
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`
	return scanProject(r.pool.QueryRow(ctx, query, id))
}

func (r *pgProjectRepository) FindAll(ctx context.Context) ([]*Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects ORDER BY created_at DESC`
	return r.queryProjects(ctx, query)
}

func (r *pgProjectRepository) FindByUserID(ctx context.Context, userID string) ([]*Project, error) {
	query := `
		SELECT ` + projectColumns + ` FROM projects
		WHERE manager_id = $1 OR pm_id = $1 OR team_lead_id = $1 OR customer_id = $1
		   OR $1::text = ANY(team_members)
		ORDER BY created_at DESC
	`
	return r.queryProjects(ctx, query, userID)
}

func (r *pgProjectRepository) queryProjects(ctx context.Context, query string, args ...interface{}) ([]*Project, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []*Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (r *pgProjectRepository) Update(ctx context.Context, project *Project) error {
	query := `
		UPDATE projects SET
			title = $2, description = $3, statuses = $4, manager_id = $5, pm_id = $6,
			team_lead_id = $7, customer_id = $8, team_members = $9, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	return r.pool.QueryRow(ctx, query,
		project.ID, project.Title, project.Description, project.Statuses, project.ManagerID,
		project.PMID, project.TeamLeadID, project.CustomerID, project.TeamMembers,
	).Scan(&project.UpdatedAt)
}

func (r *pgProjectRepository) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	return err
}

func (r *pgProjectRepository) AddTeamMember(ctx context.Context, projectID, userID string) error {
	query := `
		UPDATE projects SET team_members = array_append(team_members, $2::text), updated_at = NOW()
		WHERE id = $1 AND NOT ($2::text = ANY(team_members))
	`
	_, err := r.pool.Exec(ctx, query, projectID, userID)
	return err
}

func (r *pgProjectRepository) RemoveTeamMember(ctx context.Context, projectID, userID string) error {
	query := `
		UPDATE projects SET team_members = array_remove(team_members, $2::text), updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.pool.Exec(ctx, query, projectID, userID)
	return err
}
