package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Application is a customer's request for a new project.
type Application struct {
	ID           string
	RequesterID  string
	Title        string
	Description  *string
	Budget       decimal.NullDecimal
	Deadline     *time.Time
	Status       string // pending, approved, rejected
	AdminComment *string
	ProjectID    *string
	ReviewedBy   *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type ApplicationRepository interface {
	Create(ctx context.Context, app *Application) error
	FindByID(ctx context.Context, id string) (*Application, error)
	FindAll(ctx context.Context, status string) ([]*Application, error)
	FindByRequesterID(ctx context.Context, requesterID string) ([]*Application, error)
	// UpdateReview records the outcome of a review.
	UpdateReview(ctx context.Context, app *Application) error
}

type pgApplicationRepository struct {
	pool *pgxpool.Pool
}

func NewApplicationRepository(pool *pgxpool.Pool) ApplicationRepository {
	return &pgApplicationRepository{pool: pool}
}

const applicationColumns = `
	id, requester_id, title, description, budget, deadline, status,
	admin_comment, project_id, reviewed_by, created_at, updated_at`

func scanApplication(row pgx.Row) (*Application, error) {
	app := &Application{}
	err := row.Scan(
		&app.ID, &app.RequesterID, &app.Title, &app.Description, &app.Budget, &app.Deadline,
		&app.Status, &app.AdminComment, &app.ProjectID, &app.ReviewedBy, &app.CreatedAt, &app.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return app, nil
}

func (r *pgApplicationRepository) Create(ctx context.Context, app *Application) error {
	query := `
		INSERT INTO applications (requester_id, title, description, budget, deadline, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`
	return r.pool.QueryRow(ctx, query,
		app.RequesterID, app.Title, app.Description, app.Budget, app.Deadline, app.Status,
	).Scan(&app.ID, &app.CreatedAt, &app.UpdatedAt)
}

func (r *pgApplicationRepository) FindByID(ctx context.Context, id string) (*Application, error) {
	if !validID(id) {
		return nil, nil
	}
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE id = $1`
	app, err := scanApplication(r.pool.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return app, err
}

// FindAll lists applications, newest first. An empty status means any.
func (r *pgApplicationRepository) FindAll(ctx context.Context, status string) ([]*Application, error) {
	query := `
		SELECT ` + applicationColumns + ` FROM applications
		WHERE $1 = '' OR status = $1
		ORDER BY created_at DESC
	`
	return r.queryApplications(ctx, query, status)
}

func (r *pgApplicationRepository) FindByRequesterID(ctx context.Context, requesterID string) ([]*Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE requester_id = $1 ORDER BY created_at DESC`
	return r.queryApplications(ctx, query, requesterID)
}

func (r *pgApplicationRepository) queryApplications(ctx context.Context, query string, args ...interface{}) ([]*Application, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var apps []*Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}
	return apps, rows.Err()
}

func (r *pgApplicationRepository) UpdateReview(ctx context.Context, app *Application) error {
	query := `
		UPDATE applications SET
			status = $2, admin_comment = $3, project_id = $4, reviewed_by = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	return r.pool.QueryRow(ctx, query,
		app.ID, app.Status, app.AdminComment, app.ProjectID, app.ReviewedBy,
	).Scan(&app.UpdatedAt)
}
