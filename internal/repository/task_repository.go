package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Task model. AssigneeName and AssigneeEmail are copied from the user
// record when the assignee is set and are not kept in sync afterwards.
type Task struct {
	ID            string
	ProjectID     string
	Title         string
	Description   *string
	Status        string
	Priority      string
	AssigneeID    *string
	AssigneeName  *string
	AssigneeEmail *string
	DueDate       *time.Time
	Color         *string
	CreatedBy     *string
	CreatedAt     time.Time
	UpdatedBy     *string
	UpdatedAt     time.Time
}

// TaskRepository interface
type TaskRepository interface {
	Create(ctx context.Context, task *Task) error
	FindByID(ctx context.Context, id string) (*Task, error)
	// FindByProjectID returns tasks in creation order.
	FindByProjectID(ctx context.Context, projectID string) ([]*Task, error)
	Update(ctx context.Context, task *Task) error
	UpdateStatus(ctx context.Context, taskID, status, updatedBy string) error
	Delete(ctx context.Context, id string) error
	// FindOverdue returns unfinished tasks across all projects whose due
	// date is before now.
	FindOverdue(ctx context.Context, now time.Time) ([]*Task, error)
}

type taskRepository struct {
	db *sql.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *sql.DB) TaskRepository {
	return &taskRepository{db: db}
}

const taskColumns = `
	id, project_id, title, description, status, priority,
	assignee_id, assignee_name, assignee_email, due_date, color,
	created_by, created_at, updated_by, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTask(row rowScanner) (*Task, error) {
	task := &Task{}
	err := row.Scan(
		&task.ID, &task.ProjectID, &task.Title, &task.Description, &task.Status, &task.Priority,
		&task.AssigneeID, &task.AssigneeName, &task.AssigneeEmail, &task.DueDate, &task.Color,
		&task.CreatedBy, &task.CreatedAt, &task.UpdatedBy, &task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return task, nil
}

// Create inserts a new task
func (r *taskRepository) Create(ctx context.Context, task *Task) error {
	query := `
		INSERT INTO tasks (
			project_id, title, description, status, priority,
			assignee_id, assignee_name, assignee_email, due_date, color,
			created_by, updated_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(
		ctx, query,
		task.ProjectID, task.Title, task.Description, task.Status, task.Priority,
		task.AssigneeID, task.AssigneeName, task.AssigneeEmail, task.DueDate, task.Color,
		task.CreatedBy,
	).Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		return err
	}
	task.UpdatedBy = task.CreatedBy
	return nil
}

// FindByID retrieves a task by ID
func (r *taskRepository) FindByID(ctx context.Context, id string) (*Task, error) {
	if !validID(id) {
		return nil, nil
	}
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	task, err := scanTask(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return task, err
}

// FindByProjectID retrieves all tasks of a project
func (r *taskRepository) FindByProjectID(ctx context.Context, projectID string) ([]*Task, error) {
	if !validID(projectID) {
		return []*Task{}, nil
	}
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE project_id = $1 ORDER BY created_at ASC, id ASC`
	return r.queryTasks(ctx, query, projectID)
}

// Update overwrites every mutable column. Last write wins.
func (r *taskRepository) Update(ctx context.Context, task *Task) error {
	query := `
		UPDATE tasks SET
			title = $2, description = $3, status = $4, priority = $5,
			assignee_id = $6, assignee_name = $7, assignee_email = $8,
			due_date = $9, color = $10, updated_by = $11, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.QueryRowContext(
		ctx, query,
		task.ID, task.Title, task.Description, task.Status, task.Priority,
		task.AssigneeID, task.AssigneeName, task.AssigneeEmail,
		task.DueDate, task.Color, task.UpdatedBy,
	).Scan(&task.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	return err
}

// UpdateStatus writes the status as given; callers decide what is valid.
func (r *taskRepository) UpdateStatus(ctx context.Context, taskID, status, updatedBy string) error {
	query := `UPDATE tasks SET status = $2, updated_by = $3, updated_at = NOW() WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, taskID, status, nullString(updatedBy))
	return err
}

// Delete removes a task. Comments are left in place.
func (r *taskRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	return err
}

func (r *taskRepository) FindOverdue(ctx context.Context, now time.Time) ([]*Task, error) {
	query := `
		SELECT ` + taskColumns + ` FROM tasks
		WHERE due_date IS NOT NULL AND due_date < $1 AND status <> 'done'
		ORDER BY project_id, due_date ASC`
	return r.queryTasks(ctx, query, now)
}

func (r *taskRepository) queryTasks(ctx context.Context, query string, args ...interface{}) ([]*Task, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []*Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
