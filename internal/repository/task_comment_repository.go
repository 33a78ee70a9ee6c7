package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"
)

// TaskComment model. Comments are immutable once written.
type TaskComment struct {
	ID        string
	TaskID    string
	ProjectID string
	UserID    string
	Content   string
	Mentions  []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TaskCommentRepository interface
type TaskCommentRepository interface {
	Create(ctx context.Context, comment *TaskComment) error
	FindByID(ctx context.Context, id string) (*TaskComment, error)
	FindByTaskID(ctx context.Context, taskID string) ([]*TaskComment, error)
	Delete(ctx context.Context, id string) error
}

type taskCommentRepository struct {
	db *sql.DB
}

// NewTaskCommentRepository creates a new TaskCommentRepository
func NewTaskCommentRepository(db *sql.DB) TaskCommentRepository {
	return &taskCommentRepository{db: db}
}

// Create inserts a new comment
func (r *taskCommentRepository) Create(ctx context.Context, comment *TaskComment) error {
	query := `
		INSERT INTO task_comments (task_id, project_id, user_id, content, mentions)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`

	if comment.Mentions == nil {
		comment.Mentions = []string{}
	}
	return r.db.QueryRowContext(
		ctx, query,
		comment.TaskID,
		comment.ProjectID,
		comment.UserID,
		comment.Content,
		pq.Array(comment.Mentions),
	).Scan(&comment.ID, &comment.CreatedAt, &comment.UpdatedAt)
}

// FindByID retrieves a comment by ID
func (r *taskCommentRepository) FindByID(ctx context.Context, id string) (*TaskComment, error) {
	if !validID(id) {
		return nil, nil
	}
	query := `
		SELECT id, task_id, project_id, user_id, content, mentions, created_at, updated_at
		FROM task_comments WHERE id = $1`

	comment := &TaskComment{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&comment.ID, &comment.TaskID, &comment.ProjectID, &comment.UserID,
		&comment.Content, pq.Array(&comment.Mentions), &comment.CreatedAt, &comment.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return comment, nil
}

// FindByTaskID retrieves the thread of a task, oldest first. Works for
// tasks that no longer exist.
func (r *taskCommentRepository) FindByTaskID(ctx context.Context, taskID string) ([]*TaskComment, error) {
	if !validID(taskID) {
		return []*TaskComment{}, nil
	}
	query := `
		SELECT id, task_id, project_id, user_id, content, mentions, created_at, updated_at
		FROM task_comments WHERE task_id = $1
		ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []*TaskComment
	for rows.Next() {
		comment := &TaskComment{}
		if err := rows.Scan(
			&comment.ID, &comment.TaskID, &comment.ProjectID, &comment.UserID,
			&comment.Content, pq.Array(&comment.Mentions), &comment.CreatedAt, &comment.UpdatedAt,
		); err != nil {
			return nil, err
		}
		comments = append(comments, comment)
	}
	return comments, rows.Err()
}

// Delete removes a comment
func (r *taskCommentRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM task_comments WHERE id = $1`, id)
	return err
}
