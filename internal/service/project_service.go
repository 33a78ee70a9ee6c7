package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/samber/lo"

	"github.com/Marga-Ghale/taska-backend/internal/repository"
	"github.com/Marga-Ghale/taska-backend/internal/session"
	"github.com/Marga-Ghale/taska-backend/internal/socket"
	"github.com/Marga-Ghale/taska-backend/internal/types"
)

// ============================================
// Project Service
// ============================================

type ProjectService interface {
	Create(ctx context.Context, sess *session.Session, input ProjectInput) (*repository.Project, error)
	Get(ctx context.Context, sess *session.Session, id string) (*repository.Project, error)
	// ListMine returns every project for admins, otherwise the projects the
	// caller is named on.
	ListMine(ctx context.Context, sess *session.Session) ([]*repository.Project, error)
	Update(ctx context.Context, sess *session.Session, id string, input ProjectInput) (*repository.Project, error)
	Delete(ctx context.Context, sess *session.Session, id string) error
	AddMember(ctx context.Context, sess *session.Session, projectID, userID string) (*repository.Project, error)
	RemoveMember(ctx context.Context, sess *session.Session, projectID, userID string) (*repository.Project, error)
	// CanAccessRoom decides websocket room subscriptions.
	CanAccessRoom(ctx context.Context, userID, room string) bool
}

// ProjectInput holds project fields; nil fields are left unchanged on update.
type ProjectInput struct {
	Title       *string
	Description *string
	Statuses    []string
	TeamLeadID  *string
	CustomerID  *string
}

type projectService struct {
	projectRepo repository.ProjectRepository
	userRepo    repository.UserRepository
	broadcaster *socket.Broadcaster
}

func NewProjectService(projectRepo repository.ProjectRepository, userRepo repository.UserRepository, broadcaster *socket.Broadcaster) ProjectService {
	return &projectService{projectRepo: projectRepo, userRepo: userRepo, broadcaster: broadcaster}
}

func (s *projectService) Create(ctx context.Context, sess *session.Session, input ProjectInput) (*repository.Project, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	if !sess.HasAnyRole(types.RolePM, types.RoleAdmin) {
		return nil, ErrForbidden
	}
	if input.Title == nil || strings.TrimSpace(*input.Title) == "" {
		return nil, ErrInvalidInput
	}

	project := &repository.Project{
		Title:       strings.TrimSpace(*input.Title),
		Description: input.Description,
		Statuses:    append([]string{}, types.BoardColumns...),
		ManagerID:   &sess.UserID,
		PMID:        &sess.UserID,
		TeamMembers: []string{},
	}
	if err := s.apply(ctx, project, input); err != nil {
		return nil, err
	}

	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	log.Printf("[Project] %s created project %s", sess.UserID, project.ID)
	return project, nil
}

// apply copies the optional fields of input onto project, checking that
// referenced users exist.
func (s *projectService) apply(ctx context.Context, project *repository.Project, input ProjectInput) error {
	if input.Description != nil {
		project.Description = input.Description
	}
	if input.Statuses != nil {
		statuses := lo.Uniq(lo.Compact(input.Statuses))
		if len(statuses) == 0 {
			return ErrInvalidInput
		}
		project.Statuses = statuses
	}
	if input.TeamLeadID != nil {
		lead, err := s.optionalUser(ctx, *input.TeamLeadID)
		if err != nil {
			return err
		}
		if lead != nil && !types.ParseRoles(lead.Roles).Has(types.RolePM) {
			log.Printf("[Project] Team lead %s does not hold the pm role", lead.ID)
		}
		project.TeamLeadID = stringPtr(*input.TeamLeadID)
	}
	if input.CustomerID != nil {
		if _, err := s.optionalUser(ctx, *input.CustomerID); err != nil {
			return err
		}
		project.CustomerID = stringPtr(*input.CustomerID)
	}
	return nil
}

// optionalUser loads a referenced user. An empty id clears the reference.
func (s *projectService) optionalUser(ctx context.Context, id string) (*repository.User, error) {
	if id == "" {
		return nil, nil
	}
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}

func (s *projectService) Get(ctx context.Context, sess *session.Session, id string) (*repository.Project, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	project, err := loadProject(ctx, s.projectRepo, id)
	if err != nil {
		return nil, err
	}
	if !Can(sess, CapViewProject, Target{Project: project}) {
		return nil, ErrForbidden
	}
	return project, nil
}

func (s *projectService) ListMine(ctx context.Context, sess *session.Session) ([]*repository.Project, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	if sess.HasRole(types.RoleAdmin) {
		return nonNil(s.projectRepo.FindAll(ctx))
	}
	return nonNil(s.projectRepo.FindByUserID(ctx, sess.UserID))
}

func (s *projectService) manage(ctx context.Context, sess *session.Session, id string) (*repository.Project, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	project, err := loadProject(ctx, s.projectRepo, id)
	if err != nil {
		return nil, err
	}
	if !Can(sess, CapManageProject, Target{Project: project}) {
		return nil, ErrForbidden
	}
	return project, nil
}

func (s *projectService) Update(ctx context.Context, sess *session.Session, id string, input ProjectInput) (*repository.Project, error) {
	project, err := s.manage(ctx, sess, id)
	if err != nil {
		return nil, err
	}
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, ErrInvalidInput
		}
		project.Title = title
	}
	if err := s.apply(ctx, project, input); err != nil {
		return nil, err
	}

	if err := s.projectRepo.Update(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}
	s.broadcaster.BroadcastProjectUpdated(project.ID, map[string]interface{}{
		"id":    project.ID,
		"title": project.Title,
	}, sess.UserID)
	return project, nil
}

// Delete removes the project record only. Tasks, comments and invitations
// that reference it are left in place.
func (s *projectService) Delete(ctx context.Context, sess *session.Session, id string) error {
	project, err := s.manage(ctx, sess, id)
	if err != nil {
		return err
	}
	if err := s.projectRepo.Delete(ctx, project.ID); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	s.broadcaster.BroadcastProjectDeleted(project.ID, sess.UserID)
	log.Printf("[Project] %s deleted project %s", sess.UserID, project.ID)
	return nil
}

func (s *projectService) AddMember(ctx context.Context, sess *session.Session, projectID, userID string) (*repository.Project, error) {
	project, err := s.manage(ctx, sess, projectID)
	if err != nil {
		return nil, err
	}
	if userID == "" {
		return nil, ErrInvalidInput
	}
	user, err := s.optionalUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !types.ParseRoles(user.Roles).Has(types.RoleExecutor) {
		log.Printf("[Project] Member %s of project %s does not hold the executor role", userID, projectID)
	}

	if err := s.projectRepo.AddTeamMember(ctx, projectID, userID); err != nil {
		return nil, fmt.Errorf("failed to add team member: %w", err)
	}
	if !lo.Contains(project.TeamMembers, userID) {
		project.TeamMembers = append(project.TeamMembers, userID)
	}
	s.broadcaster.BroadcastMemberAdded(projectID, userID, sess.UserID)
	return project, nil
}

func (s *projectService) RemoveMember(ctx context.Context, sess *session.Session, projectID, userID string) (*repository.Project, error) {
	project, err := s.manage(ctx, sess, projectID)
	if err != nil {
		return nil, err
	}
	if !lo.Contains(project.TeamMembers, userID) {
		return nil, ErrNotFound
	}

	if err := s.projectRepo.RemoveTeamMember(ctx, projectID, userID); err != nil {
		return nil, fmt.Errorf("failed to remove team member: %w", err)
	}
	project.TeamMembers = lo.Without(project.TeamMembers, userID)
	s.broadcaster.BroadcastMemberRemoved(projectID, userID, sess.UserID)
	return project, nil
}

func (s *projectService) CanAccessRoom(ctx context.Context, userID, room string) bool {
	if room == socket.UserRoom(userID) {
		return true
	}
	projectID, ok := strings.CutPrefix(room, "project:")
	if !ok || projectID == "" {
		return false
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil || user == nil {
		return false
	}
	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil || project == nil {
		return false
	}
	sess := &session.Session{UserID: user.ID, Roles: types.ParseRoles(user.Roles)}
	return Can(sess, CapViewProject, Target{Project: project})
}
