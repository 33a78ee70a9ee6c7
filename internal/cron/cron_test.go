package cron

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Marga-Ghale/taska-backend/internal/config"
	"github.com/Marga-Ghale/taska-backend/internal/repository"
	"github.com/Marga-Ghale/taska-backend/internal/service"
)

func newTestScheduler(t *testing.T) (*Scheduler, *repository.Repositories) {
	t.Helper()
	repos := repository.NewRepositories()
	services := service.NewServices(&service.ServiceDeps{Config: config.Load(), Repos: repos})
	return NewScheduler(services.Task, repos.UserRepo), repos
}

func TestCheckOverdueTasks(t *testing.T) {
	s, repos := newTestScheduler(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	yesterday := now.Add(-24 * time.Hour)
	tomorrow := now.Add(24 * time.Hour)
	for _, task := range []*repository.Task{
		{ProjectID: "p1", Title: "late", Status: "todo", Priority: "medium", DueDate: &yesterday},
		{ProjectID: "p1", Title: "late but done", Status: "done", Priority: "medium", DueDate: &yesterday},
		{ProjectID: "p2", Title: "on time", Status: "todo", Priority: "medium", DueDate: &tomorrow},
		{ProjectID: "p2", Title: "no date", Status: "todo", Priority: "medium"},
	} {
		require.NoError(t, repos.TaskRepo.Create(ctx, task))
	}

	assert.Equal(t, 1, s.CheckOverdueTasks())
}

func TestPurgeExpiredRefreshTokens(t *testing.T) {
	s, repos := newTestScheduler(t)
	ctx := context.Background()

	require.NoError(t, repos.UserRepo.SaveRefreshToken(ctx, &repository.RefreshToken{
		Token: "old", UserID: "u1", ExpiresAt: time.Now().Add(-time.Hour),
	}))
	require.NoError(t, repos.UserRepo.SaveRefreshToken(ctx, &repository.RefreshToken{
		Token: "fresh", UserID: "u1", ExpiresAt: time.Now().Add(time.Hour),
	}))

	assert.Equal(t, 1, s.PurgeExpiredRefreshTokens())

	gone, err := repos.UserRepo.FindRefreshToken(ctx, "old")
	require.NoError(t, err)
	assert.Nil(t, gone)
	kept, err := repos.UserRepo.FindRefreshToken(ctx, "fresh")
	require.NoError(t, err)
	assert.NotNil(t, kept)
}

func TestStartRejectsBadSpec(t *testing.T) {
	s, _ := newTestScheduler(t)
	assert.Error(t, s.Start("not a cron spec"))
}
