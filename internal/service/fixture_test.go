package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Marga-Ghale/taska-backend/internal/config"
	"github.com/Marga-Ghale/taska-backend/internal/repository"
	"github.com/Marga-Ghale/taska-backend/internal/session"
	"github.com/Marga-Ghale/taska-backend/internal/types"
)

type fixture struct {
	t     *testing.T
	ctx   context.Context
	cfg   *config.Config
	repos *repository.Repositories
	store *session.MemoryStore
	svc   *Services
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := &config.Config{
		JWTSecret:     "test-secret",
		JWTExpiry:     1,
		RefreshExpiry: 1,
		SessionTTL:    time.Minute,
	}
	repos := repository.NewRepositories()
	store := session.NewMemoryStore()
	return &fixture{
		t:     t,
		ctx:   context.Background(),
		cfg:   cfg,
		repos: repos,
		store: store,
		svc:   NewServices(&ServiceDeps{Config: cfg, Repos: repos, Sessions: store}),
	}
}

// user stores a user with the given roles and returns it with its session.
func (f *fixture) user(name string, roles ...types.Role) (*repository.User, *session.Session) {
	f.t.Helper()
	u := &repository.User{
		Name:     name,
		Email:    strings.ToLower(name) + "@taska.test",
		Password: "x",
		Roles:    types.RoleSet(roles).Strings(),
	}
	require.NoError(f.t, f.repos.UserRepo.Create(f.ctx, u))
	return u, &session.Session{UserID: u.ID, Name: u.Name, Email: u.Email, Roles: types.RoleSet(roles)}
}

// project stores a project managed by manager with the given team members.
func (f *fixture) project(manager *session.Session, members ...string) *repository.Project {
	f.t.Helper()
	p := &repository.Project{
		Title:       "Website",
		Statuses:    append([]string{}, types.BoardColumns...),
		ManagerID:   &manager.UserID,
		TeamMembers: append([]string{}, members...),
	}
	require.NoError(f.t, f.repos.ProjectRepo.Create(f.ctx, p))
	return p
}

func (f *fixture) reloadProject(id string) *repository.Project {
	f.t.Helper()
	p, err := f.repos.ProjectRepo.FindByID(f.ctx, id)
	require.NoError(f.t, err)
	require.NotNil(f.t, p)
	return p
}

func strPtr(s string) *string { return &s }
