package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/Marga-Ghale/taska-backend/internal/models"
	"github.com/Marga-Ghale/taska-backend/internal/repository"
	"github.com/Marga-Ghale/taska-backend/internal/service"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	Auth        *AuthHandler
	User        *UserHandler
	Project     *ProjectHandler
	Task        *TaskHandler
	Comment     *CommentHandler
	Invitation  *InvitationHandler
	Application *ApplicationHandler
}

// NewHandlers creates all handlers
func NewHandlers(services *service.Services) *Handlers {
	return &Handlers{
		Auth:        &AuthHandler{authService: services.Auth},
		User:        &UserHandler{userService: services.User},
		Project:     &ProjectHandler{projectService: services.Project},
		Task:        &TaskHandler{taskService: services.Task},
		Comment:     &CommentHandler{commentService: services.Comment},
		Invitation:  &InvitationHandler{invitationService: services.Invitation},
		Application: &ApplicationHandler{applicationService: services.Application},
	}
}

// ============================================
// Errors
// ============================================

func handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Resource not found"})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
	case errors.Is(err, service.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
	case errors.Is(err, service.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
	case errors.Is(err, service.ErrUserExists):
		c.JSON(http.StatusConflict, gin.H{"error": "User already exists"})
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "Resource conflict"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func logAPIError(c *gin.Context, action string, err error, fields map[string]interface{}) {
	log.Printf(
		"[API_ERROR] action=%s method=%s path=%s userID=%v fields=%v err=%v",
		action,
		c.Request.Method,
		c.FullPath(),
		c.GetString("userID"),
		fields,
		err,
	)
}

// fail logs unexpected errors and writes the mapped response.
func fail(c *gin.Context, action string, err error, fields map[string]interface{}) {
	if !isExpected(err) {
		logAPIError(c, action, err, fields)
	}
	handleServiceError(c, err)
}

func isExpected(err error) bool {
	for _, e := range []error{
		service.ErrNotFound, service.ErrUnauthorized, service.ErrForbidden,
		service.ErrInvalidInput, service.ErrConflict, service.ErrInvalidCredentials,
		service.ErrUserExists, service.ErrInvalidToken,
	} {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// ============================================
// Response Mappers
// ============================================

func nullDecimal(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	v := d.Decimal
	return &v
}

func toUserResponse(u *repository.User) models.UserResponse {
	return models.UserResponse{
		ID:             u.ID,
		Email:          u.Email,
		Name:           u.Name,
		Roles:          safeStringSlice(u.Roles),
		Rate:           nullDecimal(u.Rate),
		Specialization: u.Specialization,
		CreatedAt:      u.CreatedAt,
	}
}

func toProjectResponse(p *repository.Project) models.ProjectResponse {
	return models.ProjectResponse{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Statuses:    safeStringSlice(p.Statuses),
		ManagerID:   p.ManagerID,
		PMID:        p.PMID,
		TeamLeadID:  p.TeamLeadID,
		CustomerID:  p.CustomerID,
		TeamMembers: safeStringSlice(p.TeamMembers),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toTaskResponse(t *repository.Task) models.TaskResponse {
	resp := models.TaskResponse{
		ID:          t.ID,
		ProjectID:   t.ProjectID,
		Text:        t.Title,
		Description: t.Description,
		Status:      t.Status,
		Priority:    t.Priority,
		DueDate:     t.DueDate,
		Color:       t.Color,
		CreatedBy:   t.CreatedBy,
		CreatedAt:   t.CreatedAt,
		UpdatedBy:   t.UpdatedBy,
		UpdatedAt:   t.UpdatedAt,
	}
	if t.AssigneeID != nil {
		resp.Assignee = &models.AssigneeResponse{
			ID:    *t.AssigneeID,
			Name:  lo.FromPtr(t.AssigneeName),
			Email: lo.FromPtr(t.AssigneeEmail),
		}
	}
	return resp
}

func toTaskResponses(tasks []*repository.Task) []models.TaskResponse {
	return lo.Map(tasks, func(t *repository.Task, _ int) models.TaskResponse {
		return toTaskResponse(t)
	})
}

func toCommentResponse(c *repository.TaskComment) models.CommentResponse {
	return models.CommentResponse{
		ID:        c.ID,
		TaskID:    c.TaskID,
		ProjectID: c.ProjectID,
		UserID:    c.UserID,
		Content:   c.Content,
		Mentions:  safeStringSlice(c.Mentions),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func toInvitationResponse(inv *repository.Invitation) models.InvitationResponse {
	return models.InvitationResponse{
		ID:          inv.ID,
		Kind:        inv.Kind,
		SenderID:    inv.SenderID,
		ReceiverID:  inv.ReceiverID,
		ProjectID:   inv.ProjectID,
		Rate:        nullDecimal(inv.Rate),
		StartDate:   inv.StartDate,
		Duration:    inv.Duration,
		Message:     inv.Message,
		Attachment:  inv.Attachment,
		Status:      inv.Status,
		RespondedAt: inv.RespondedAt,
		CreatedAt:   inv.CreatedAt,
		UpdatedAt:   inv.UpdatedAt,
	}
}

func toApplicationResponse(a *repository.Application) models.ApplicationResponse {
	return models.ApplicationResponse{
		ID:           a.ID,
		RequesterID:  a.RequesterID,
		Title:        a.Title,
		Description:  a.Description,
		Budget:       nullDecimal(a.Budget),
		Deadline:     a.Deadline,
		Status:       a.Status,
		AdminComment: a.AdminComment,
		ProjectID:    a.ProjectID,
		ReviewedBy:   a.ReviewedBy,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

func safeStringSlice(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
