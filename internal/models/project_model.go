package models

import "time"

// Request models
type CreateProjectRequest struct {
	Title       string   `json:"title" binding:"required"`
	Description *string  `json:"description"`
	Statuses    []string `json:"statuses"`
	TeamLeadID  *string  `json:"teamLeadId"`
	CustomerID  *string  `json:"customerId"`
}

type UpdateProjectRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Statuses    []string `json:"statuses"`
	TeamLeadID  *string  `json:"teamLeadId"`
	CustomerID  *string  `json:"customerId"`
}

type AddMemberRequest struct {
	UserID string `json:"userId" binding:"required"`
}

// Response models
type ProjectResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	Statuses    []string  `json:"statuses"`
	ManagerID   *string   `json:"managerId"`
	PMID        *string   `json:"pmId,omitempty"`
	TeamLeadID  *string   `json:"teamLeadId"`
	CustomerID  *string   `json:"customerId"`
	TeamMembers []string  `json:"teamMembers"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
