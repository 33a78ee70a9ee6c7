package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreateApplicationRequest struct {
	Title       string           `json:"title" binding:"required"`
	Description *string          `json:"description"`
	Budget      *decimal.Decimal `json:"budget"`
	Deadline    *time.Time       `json:"deadline"`
}

// ReviewApplicationRequest approves or rejects an application. Approval
// requires the manager that will own the new project.
type ReviewApplicationRequest struct {
	Decision   string  `json:"decision" binding:"required,oneof=approve reject"`
	Comment    *string `json:"comment"`
	ManagerID  *string `json:"managerId"`
	TeamLeadID *string `json:"teamLeadId"`
}

type ApplicationResponse struct {
	ID           string           `json:"id"`
	RequesterID  string           `json:"requesterId"`
	Title        string           `json:"title"`
	Description  *string          `json:"description,omitempty"`
	Budget       *decimal.Decimal `json:"budget,omitempty"`
	Deadline     *time.Time       `json:"deadline,omitempty"`
	Status       string           `json:"status"`
	AdminComment *string          `json:"adminComment,omitempty"`
	ProjectID    *string          `json:"projectId,omitempty"`
	ReviewedBy   *string          `json:"reviewedBy,omitempty"`
	CreatedAt    time.Time        `json:"createdAt"`
	UpdatedAt    time.Time        `json:"updatedAt"`
}

type ReviewApplicationResponse struct {
	Application ApplicationResponse `json:"application"`
	Project     *ProjectResponse    `json:"project,omitempty"`
}
