package models

import "time"

// ============================================
// TASK REQUESTS & RESPONSES
// ============================================

// CreateTaskRequest uses the board client's field names: the title travels
// as "text" and the initial column as "column".
type CreateTaskRequest struct {
	Text        string     `json:"text" binding:"required"`
	Column      string     `json:"column"`
	Status      string     `json:"status"`
	Description *string    `json:"description"`
	Priority    string     `json:"priority"`
	Assignee    *string    `json:"assignee"`
	DueDate     *time.Time `json:"dueDate"`
	Color       *string    `json:"color"`
}

type CreateTaskResponse struct {
	TaskID string `json:"taskId"`
}

// UpdateTaskRequest moves a task between columns (status, or column when
// status is absent) and optionally edits its other fields.
type UpdateTaskRequest struct {
	Status       string     `json:"status"`
	Column       string     `json:"column"`
	Text         *string    `json:"text"`
	Description  *string    `json:"description"`
	Priority     *string    `json:"priority"`
	Assignee     *string    `json:"assignee"`
	DueDate      *time.Time `json:"dueDate"`
	ClearDueDate bool       `json:"clearDueDate"`
	Color        *string    `json:"color"`
}

type AssigneeResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type TaskResponse struct {
	ID          string            `json:"id"`
	ProjectID   string            `json:"projectId"`
	Text        string            `json:"text"`
	Description *string           `json:"description,omitempty"`
	Status      string            `json:"status"`
	Priority    string            `json:"priority"`
	Assignee    *AssigneeResponse `json:"assignee,omitempty"`
	DueDate     *time.Time        `json:"dueDate,omitempty"`
	Color       *string           `json:"color,omitempty"`
	CreatedBy   *string           `json:"createdBy,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedBy   *string           `json:"updatedBy,omitempty"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

type BoardColumnResponse struct {
	Status string         `json:"status"`
	Tasks  []TaskResponse `json:"tasks"`
}

// ============================================
// COMMENT REQUESTS & RESPONSES
// ============================================

type CreateCommentRequest struct {
	Content  string   `json:"content" binding:"required"`
	Mentions []string `json:"mentions"`
}

type CommentResponse struct {
	ID        string    `json:"id"`
	TaskID    string    `json:"taskId"`
	ProjectID string    `json:"projectId"`
	UserID    string    `json:"userId"`
	Content   string    `json:"content"`
	Mentions  []string  `json:"mentions"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
