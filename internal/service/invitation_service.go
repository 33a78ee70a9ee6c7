package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Marga-Ghale/taska-backend/internal/metrics"
	"github.com/Marga-Ghale/taska-backend/internal/repository"
	"github.com/Marga-Ghale/taska-backend/internal/session"
	"github.com/Marga-Ghale/taska-backend/internal/socket"
	"github.com/Marga-Ghale/taska-backend/internal/types"
)

// ============================================
// Invitation Service
// ============================================

type InvitationService interface {
	Send(ctx context.Context, sess *session.Session, projectID string, input SendInvitationInput) (*repository.Invitation, error)
	// Respond applies accept or reject. It does not look at the current
	// status, so answering twice applies both answers.
	Respond(ctx context.Context, sess *session.Session, invitationID, action string) (*repository.Invitation, error)
	Get(ctx context.Context, sess *session.Session, invitationID string) (*repository.Invitation, error)
	ListMine(ctx context.Context, sess *session.Session) ([]*repository.Invitation, error)
	ListSent(ctx context.Context, sess *session.Session) ([]*repository.Invitation, error)
	ListByProject(ctx context.Context, sess *session.Session, projectID string) ([]*repository.Invitation, error)
}

// SendInvitationInput describes an invitation. Terms (rate, start date,
// duration) are only meaningful for team invitations.
type SendInvitationInput struct {
	Kind       types.InvitationKind
	ReceiverID string
	Message    *string
	Rate       *decimal.Decimal
	StartDate  *time.Time
	Duration   *string
	Attachment *string
}

type invitationService struct {
	invitationRepo repository.InvitationRepository
	projectRepo    repository.ProjectRepository
	userRepo       repository.UserRepository
	broadcaster    *socket.Broadcaster
}

func NewInvitationService(
	invitationRepo repository.InvitationRepository,
	projectRepo repository.ProjectRepository,
	userRepo repository.UserRepository,
	broadcaster *socket.Broadcaster,
) InvitationService {
	return &invitationService{
		invitationRepo: invitationRepo,
		projectRepo:    projectRepo,
		userRepo:       userRepo,
		broadcaster:    broadcaster,
	}
}

func (s *invitationService) Send(ctx context.Context, sess *session.Session, projectID string, input SendInvitationInput) (*repository.Invitation, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	project, err := loadProject(ctx, s.projectRepo, projectID)
	if err != nil {
		return nil, err
	}
	if !Can(sess, CapInvite, Target{Project: project}) {
		return nil, ErrForbidden
	}

	receiverID := strings.TrimSpace(input.ReceiverID)
	if receiverID == "" {
		return nil, ErrInvalidInput
	}
	kind := input.Kind
	switch kind {
	case "":
		kind = types.InvitationKindTeam
	case types.InvitationKindTeam, types.InvitationKindSimple:
	default:
		return nil, ErrInvalidInput
	}
	if input.Rate != nil && input.Rate.IsNegative() {
		return nil, ErrInvalidInput
	}

	receiver, err := s.userRepo.FindByID(ctx, receiverID)
	if err != nil {
		return nil, fmt.Errorf("failed to load receiver: %w", err)
	}
	if receiver == nil {
		return nil, ErrNotFound
	}
	if !types.ParseRoles(receiver.Roles).Has(types.RoleExecutor) {
		log.Printf("[Invitation] Receiver %s of project %s does not hold the executor role", receiver.ID, projectID)
	}

	invitation := &repository.Invitation{
		Kind:       string(kind),
		SenderID:   sess.UserID,
		ReceiverID: receiver.ID,
		ProjectID:  projectID,
		StartDate:  input.StartDate,
		Duration:   input.Duration,
		Message:    input.Message,
		Attachment: input.Attachment,
		Status:     types.InvitationPending,
	}
	if input.Rate != nil {
		invitation.Rate = decimal.NewNullDecimal(*input.Rate)
	}

	if err := s.invitationRepo.Create(ctx, invitation); err != nil {
		return nil, fmt.Errorf("failed to create invitation: %w", err)
	}

	s.broadcaster.SendInvitationReceived(receiver.ID, invitationPayload(invitation, project.Title))
	log.Printf("[Invitation] %s invited %s to project %s (%s)", sess.UserID, receiver.ID, projectID, kind)
	return invitation, nil
}

func (s *invitationService) Respond(ctx context.Context, sess *session.Session, invitationID, action string) (*repository.Invitation, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	if action != types.ActionAccept && action != types.ActionReject {
		return nil, ErrInvalidInput
	}

	invitation, err := s.invitationRepo.FindByID(ctx, invitationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load invitation: %w", err)
	}
	if invitation == nil {
		return nil, ErrNotFound
	}
	if invitation.ReceiverID != sess.UserID {
		return nil, ErrForbidden
	}

	status := types.InvitationRejected
	if action == types.ActionAccept {
		status = types.InvitationKind(invitation.Kind).AcceptedStatus()
	}

	if err := s.invitationRepo.UpdateStatus(ctx, invitation.ID, status); err != nil {
		return nil, fmt.Errorf("failed to update invitation: %w", err)
	}
	now := time.Now()
	invitation.Status = status
	invitation.RespondedAt = &now
	metrics.InvitationResponses.WithLabelValues(invitation.Kind, action).Inc()

	if action == types.ActionAccept {
		// The status is already written. A failure here leaves an accepted
		// invitation without membership; it is reported, not rolled back.
		if err := s.projectRepo.AddTeamMember(ctx, invitation.ProjectID, invitation.ReceiverID); err != nil {
			log.Printf("[Invitation] %s accepted but adding %s to project %s failed: %v",
				invitation.ID, invitation.ReceiverID, invitation.ProjectID, err)
			return nil, fmt.Errorf("failed to add team member: %w", err)
		}
		s.broadcaster.BroadcastMemberAdded(invitation.ProjectID, invitation.ReceiverID, invitation.SenderID)
	}

	s.broadcaster.SendInvitationResponded(invitation.SenderID, invitationPayload(invitation, ""))
	log.Printf("[Invitation] %s %s by %s", invitation.ID, status, sess.UserID)
	return invitation, nil
}

func (s *invitationService) Get(ctx context.Context, sess *session.Session, invitationID string) (*repository.Invitation, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	invitation, err := s.invitationRepo.FindByID(ctx, invitationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load invitation: %w", err)
	}
	if invitation == nil {
		return nil, ErrNotFound
	}
	if invitation.ReceiverID != sess.UserID && invitation.SenderID != sess.UserID {
		return nil, ErrForbidden
	}
	return invitation, nil
}

func (s *invitationService) ListMine(ctx context.Context, sess *session.Session) ([]*repository.Invitation, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	return nonNil(s.invitationRepo.FindByReceiverID(ctx, sess.UserID))
}

func (s *invitationService) ListSent(ctx context.Context, sess *session.Session) ([]*repository.Invitation, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	return nonNil(s.invitationRepo.FindBySenderID(ctx, sess.UserID))
}

func (s *invitationService) ListByProject(ctx context.Context, sess *session.Session, projectID string) ([]*repository.Invitation, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	project, err := loadProject(ctx, s.projectRepo, projectID)
	if err != nil {
		return nil, err
	}
	if !Can(sess, CapManageProject, Target{Project: project}) {
		return nil, ErrForbidden
	}
	return nonNil(s.invitationRepo.FindByProjectID(ctx, projectID))
}

func nonNil[T any](items []T, err error) ([]T, error) {
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func invitationPayload(inv *repository.Invitation, projectTitle string) map[string]interface{} {
	payload := map[string]interface{}{
		"id":         inv.ID,
		"kind":       inv.Kind,
		"projectId":  inv.ProjectID,
		"senderId":   inv.SenderID,
		"receiverId": inv.ReceiverID,
		"status":     inv.Status,
	}
	if projectTitle != "" {
		payload["projectTitle"] = projectTitle
	}
	if inv.Message != nil {
		payload["message"] = *inv.Message
	}
	return payload
}
