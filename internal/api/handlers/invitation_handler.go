package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/Marga-Ghale/taska-backend/internal/api/middleware"
	"github.com/Marga-Ghale/taska-backend/internal/models"
	"github.com/Marga-Ghale/taska-backend/internal/repository"
	"github.com/Marga-Ghale/taska-backend/internal/service"
	"github.com/Marga-Ghale/taska-backend/internal/types"
)

// ============================================
// Invitation Handler
// ============================================

type InvitationHandler struct {
	invitationService service.InvitationService
}

// Send creates a simple invitation from the project manager to an executor.
func (h *InvitationHandler) Send(c *gin.Context) {
	sess, ok := middleware.RequireSession(c)
	if !ok {
		return
	}

	var req models.SendInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	projectID := c.Param("id")
	inv, err := h.invitationService.Send(c.Request.Context(), sess, projectID, service.SendInvitationInput{
		Kind:       types.InvitationKindSimple,
		ReceiverID: req.ExecutorID,
		Message:    req.Message,
	})
	if err != nil {
		fail(c, "Invitation.Send", err, map[string]interface{}{"projectID": projectID, "executorID": req.ExecutorID})
		return
	}

	c.JSON(http.StatusCreated, toInvitationResponse(inv))
}

// SendTeam creates a team invitation carrying rate, start date and duration.
func (h *InvitationHandler) SendTeam(c *gin.Context) {
	sess, ok := middleware.RequireSession(c)
	if !ok {
		return
	}

	var req models.TeamInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	projectID := c.Param("id")
	inv, err := h.invitationService.Send(c.Request.Context(), sess, projectID, service.SendInvitationInput{
		Kind:       types.InvitationKindTeam,
		ReceiverID: req.ExecutorID,
		Message:    req.Message,
		Rate:       req.Rate,
		StartDate:  req.StartDate,
		Duration:   req.Duration,
		Attachment: req.Attachment,
	})
	if err != nil {
		fail(c, "Invitation.SendTeam", err, map[string]interface{}{"projectID": projectID, "executorID": req.ExecutorID})
		return
	}

	c.JSON(http.StatusCreated, toInvitationResponse(inv))
}

func (h *InvitationHandler) ListByProject(c *gin.Context) {
	sess, ok := middleware.RequireSession(c)
	if !ok {
		return
	}

	projectID := c.Param("id")
	invs, err := h.invitationService.ListByProject(c.Request.Context(), sess, projectID)
	if err != nil {
		fail(c, "Invitation.ListByProject", err, map[string]interface{}{"projectID": projectID})
		return
	}
	c.JSON(http.StatusOK, toInvitationResponses(invs))
}

// ListMine returns invitations addressed to the caller.
func (h *InvitationHandler) ListMine(c *gin.Context) {
	sess, ok := middleware.RequireSession(c)
	if !ok {
		return
	}

	invs, err := h.invitationService.ListMine(c.Request.Context(), sess)
	if err != nil {
		fail(c, "Invitation.ListMine", err, nil)
		return
	}
	c.JSON(http.StatusOK, toInvitationResponses(invs))
}

func (h *InvitationHandler) ListSent(c *gin.Context) {
	sess, ok := middleware.RequireSession(c)
	if !ok {
		return
	}

	invs, err := h.invitationService.ListSent(c.Request.Context(), sess)
	if err != nil {
		fail(c, "Invitation.ListSent", err, nil)
		return
	}
	c.JSON(http.StatusOK, toInvitationResponses(invs))
}

func (h *InvitationHandler) Get(c *gin.Context) {
	sess, ok := middleware.RequireSession(c)
	if !ok {
		return
	}

	inv, err := h.invitationService.Get(c.Request.Context(), sess, c.Param("id"))
	if err != nil {
		fail(c, "Invitation.Get", err, map[string]interface{}{"invitationID": c.Param("id")})
		return
	}
	c.JSON(http.StatusOK, toInvitationResponse(inv))
}

func (h *InvitationHandler) Accept(c *gin.Context) {
	h.respond(c, types.ActionAccept)
}

func (h *InvitationHandler) Decline(c *gin.Context) {
	h.respond(c, types.ActionReject)
}

// Respond takes the action from the body: {"action": "accept" | "reject"}.
func (h *InvitationHandler) Respond(c *gin.Context) {
	var req models.RespondInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	h.respond(c, req.Action)
}

func (h *InvitationHandler) respond(c *gin.Context, action string) {
	sess, ok := middleware.RequireSession(c)
	if !ok {
		return
	}

	invitationID := c.Param("id")
	inv, err := h.invitationService.Respond(c.Request.Context(), sess, invitationID, action)
	if err != nil {
		fail(c, "Invitation.Respond", err, map[string]interface{}{"invitationID": invitationID, "action": action})
		return
	}
	c.JSON(http.StatusOK, toInvitationResponse(inv))
}

func toInvitationResponses(invs []*repository.Invitation) []models.InvitationResponse {
	return lo.Map(invs, func(inv *repository.Invitation, _ int) models.InvitationResponse {
		return toInvitationResponse(inv)
	})
}
