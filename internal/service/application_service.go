package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/Marga-Ghale/taska-backend/internal/repository"
	"github.com/Marga-Ghale/taska-backend/internal/session"
	"github.com/Marga-Ghale/taska-backend/internal/types"
)

// Review decisions
const (
	DecisionApprove = "approve"
	DecisionReject  = "reject"
)

// ============================================
// Application Service
// ============================================

type ApplicationService interface {
	Submit(ctx context.Context, sess *session.Session, input ApplicationInput) (*repository.Application, error)
	List(ctx context.Context, sess *session.Session, status string) ([]*repository.Application, error)
	Get(ctx context.Context, sess *session.Session, id string) (*repository.Application, error)
	// Review decides a pending application once. Approving creates the
	// project with the requester as its customer.
	Review(ctx context.Context, sess *session.Session, id string, input ReviewInput) (*repository.Application, *repository.Project, error)
}

type ApplicationInput struct {
	Title       string
	Description *string
	Budget      *decimal.Decimal
	Deadline    *time.Time
}

type ReviewInput struct {
	Decision   string
	Comment    *string
	ManagerID  *string
	TeamLeadID *string
}

type applicationService struct {
	appRepo     repository.ApplicationRepository
	projectRepo repository.ProjectRepository
	userRepo    repository.UserRepository
}

func NewApplicationService(
	appRepo repository.ApplicationRepository,
	projectRepo repository.ProjectRepository,
	userRepo repository.UserRepository,
) ApplicationService {
	return &applicationService{appRepo: appRepo, projectRepo: projectRepo, userRepo: userRepo}
}

func (s *applicationService) Submit(ctx context.Context, sess *session.Session, input ApplicationInput) (*repository.Application, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	if !sess.HasRole(types.RoleCustomer) {
		return nil, ErrForbidden
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrInvalidInput
	}
	if input.Budget != nil && input.Budget.IsNegative() {
		return nil, ErrInvalidInput
	}

	app := &repository.Application{
		RequesterID: sess.UserID,
		Title:       title,
		Description: input.Description,
		Deadline:    input.Deadline,
		Status:      types.ApplicationPending,
	}
	if input.Budget != nil {
		app.Budget = decimal.NewNullDecimal(*input.Budget)
	}
	if err := s.appRepo.Create(ctx, app); err != nil {
		return nil, fmt.Errorf("failed to create application: %w", err)
	}
	log.Printf("[Application] %s submitted application %s", sess.UserID, app.ID)
	return app, nil
}

func (s *applicationService) List(ctx context.Context, sess *session.Session, status string) ([]*repository.Application, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	if sess.HasRole(types.RoleAdmin) {
		return nonNil(s.appRepo.FindAll(ctx, status))
	}
	if !sess.HasRole(types.RoleCustomer) {
		return nil, ErrForbidden
	}
	apps, err := s.appRepo.FindByRequesterID(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	return lo.Filter(apps, func(a *repository.Application, _ int) bool {
		return status == "" || a.Status == status
	}), nil
}

func (s *applicationService) Get(ctx context.Context, sess *session.Session, id string) (*repository.Application, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	app, err := s.appRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load application: %w", err)
	}
	if app == nil {
		return nil, ErrNotFound
	}
	if app.RequesterID != sess.UserID && !sess.HasRole(types.RoleAdmin) {
		return nil, ErrForbidden
	}
	return app, nil
}

func (s *applicationService) Review(ctx context.Context, sess *session.Session, id string, input ReviewInput) (*repository.Application, *repository.Project, error) {
	if err := requireSession(sess); err != nil {
		return nil, nil, err
	}
	if !sess.HasRole(types.RoleAdmin) {
		return nil, nil, ErrForbidden
	}
	if input.Decision != DecisionApprove && input.Decision != DecisionReject {
		return nil, nil, ErrInvalidInput
	}

	app, err := s.appRepo.FindByID(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load application: %w", err)
	}
	if app == nil {
		return nil, nil, ErrNotFound
	}
	if app.Status != types.ApplicationPending {
		return nil, nil, ErrConflict
	}

	app.AdminComment = input.Comment
	app.ReviewedBy = &sess.UserID

	var project *repository.Project
	if input.Decision == DecisionApprove {
		project, err = s.promote(ctx, app, input)
		if err != nil {
			return nil, nil, err
		}
		app.Status = types.ApplicationApproved
		app.ProjectID = &project.ID
	} else {
		app.Status = types.ApplicationRejected
	}

	if err := s.appRepo.UpdateReview(ctx, app); err != nil {
		return nil, nil, fmt.Errorf("failed to record review: %w", err)
	}
	log.Printf("[Application] %s %s by %s", app.ID, app.Status, sess.UserID)
	return app, project, nil
}

// promote turns an approved application into a project.
func (s *applicationService) promote(ctx context.Context, app *repository.Application, input ReviewInput) (*repository.Project, error) {
	project := &repository.Project{
		Title:       app.Title,
		Description: app.Description,
		Statuses:    append([]string{}, types.BoardColumns...),
		CustomerID:  &app.RequesterID,
		TeamMembers: []string{},
	}

	if id := deref(input.ManagerID); id != "" {
		manager, err := s.requireUser(ctx, id)
		if err != nil {
			return nil, err
		}
		project.ManagerID = &manager.ID
		project.PMID = &manager.ID
	}
	if id := deref(input.TeamLeadID); id != "" {
		lead, err := s.requireUser(ctx, id)
		if err != nil {
			return nil, err
		}
		project.TeamLeadID = &lead.ID
	}

	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	return project, nil
}

func (s *applicationService) requireUser(ctx context.Context, id string) (*repository.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}
