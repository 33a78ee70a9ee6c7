package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Marga-Ghale/taska-backend/internal/config"
	"github.com/Marga-Ghale/taska-backend/internal/repository"
	"github.com/Marga-Ghale/taska-backend/internal/session"
	"github.com/Marga-Ghale/taska-backend/internal/socket"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidToken       = errors.New("invalid token")
	ErrNotFound           = errors.New("resource not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrConflict           = errors.New("resource conflict")
	ErrInvalidInput       = errors.New("invalid input")
)

// ============================================
// Services Container
// ============================================

type Services struct {
	Auth        AuthService
	User        UserService
	Project     ProjectService
	Task        TaskService
	Comment     CommentService
	Invitation  InvitationService
	Application ApplicationService
	Broadcaster *socket.Broadcaster
}

// ServiceDeps contains all dependencies needed to create services
type ServiceDeps struct {
	Config      *config.Config
	Repos       *repository.Repositories
	Sessions    session.Store
	Broadcaster *socket.Broadcaster
}

func NewServices(deps *ServiceDeps) *Services {
	repos := deps.Repos
	sessions := deps.Sessions
	if sessions == nil {
		sessions = session.NewMemoryStore()
	}
	return &Services{
		Auth:        NewAuthService(deps.Config, repos.UserRepo, sessions),
		User:        NewUserService(repos.UserRepo, sessions),
		Project:     NewProjectService(repos.ProjectRepo, repos.UserRepo, deps.Broadcaster),
		Task:        NewTaskService(repos.TaskRepo, repos.ProjectRepo, repos.UserRepo, deps.Broadcaster),
		Comment:     NewCommentService(repos.TaskCommentRepo, repos.TaskRepo, repos.ProjectRepo, deps.Broadcaster),
		Invitation:  NewInvitationService(repos.InvitationRepo, repos.ProjectRepo, repos.UserRepo, deps.Broadcaster),
		Application: NewApplicationService(repos.ApplicationRepo, repos.ProjectRepo, repos.UserRepo),
		Broadcaster: deps.Broadcaster,
	}
}

// ============================================
// Shared lookups
// ============================================

func loadProject(ctx context.Context, repo repository.ProjectRepository, id string) (*repository.Project, error) {
	project, err := repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load project: %w", err)
	}
	if project == nil {
		return nil, ErrNotFound
	}
	return project, nil
}

// loadProjectTask returns the task only when it belongs to projectID.
func loadProjectTask(ctx context.Context, repo repository.TaskRepository, projectID, taskID string) (*repository.Task, error) {
	task, err := repo.FindByID(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to load task: %w", err)
	}
	if task == nil || task.ProjectID != projectID {
		return nil, ErrNotFound
	}
	return task, nil
}

func requireSession(sess *session.Session) error {
	if sess == nil || sess.UserID == "" {
		return ErrUnauthorized
	}
	return nil
}

func stringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
