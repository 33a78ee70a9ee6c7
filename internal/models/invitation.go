package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SendInvitationRequest is the short form: a simple invitation with an
// optional cover message.
type SendInvitationRequest struct {
	ExecutorID string  `json:"executorId" binding:"required"`
	Message    *string `json:"message"`
}

// TeamInvitationRequest invites an executor with working terms.
type TeamInvitationRequest struct {
	ExecutorID string           `json:"executorId" binding:"required"`
	Message    *string          `json:"message"`
	Rate       *decimal.Decimal `json:"rate"`
	StartDate  *time.Time       `json:"startDate"`
	Duration   *string          `json:"duration"`
	Attachment *string          `json:"attachment"`
}

type RespondInvitationRequest struct {
	Action string `json:"action" binding:"required"`
}

type InvitationResponse struct {
	ID          string           `json:"id"`
	Kind        string           `json:"kind"`
	SenderID    string           `json:"senderId"`
	ReceiverID  string           `json:"receiverId"`
	ProjectID   string           `json:"projectId"`
	Rate        *decimal.Decimal `json:"rate,omitempty"`
	StartDate   *time.Time       `json:"startDate,omitempty"`
	Duration    *string          `json:"duration,omitempty"`
	Message     *string          `json:"message,omitempty"`
	Attachment  *string          `json:"attachment,omitempty"`
	Status      string           `json:"status"`
	RespondedAt *time.Time       `json:"respondedAt,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}
