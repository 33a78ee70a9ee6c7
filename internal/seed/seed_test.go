package seed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Marga-Ghale/taska-backend/internal/repository"
)

func TestSeedDataOnce(t *testing.T) {
	ctx := context.Background()
	repos := repository.NewRepositories()

	require.NoError(t, SeedData(ctx, repos))
	require.NoError(t, SeedData(ctx, repos))

	users, err := repos.UserRepo.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 5)

	projects, err := repos.ProjectRepo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 1)

	tasks, err := repos.TaskRepo.FindByProjectID(ctx, projects[0].ID)
	require.NoError(t, err)
	assert.Len(t, tasks, 5)

	pm, err := repos.UserRepo.FindByEmail(ctx, "pm@taska.local")
	require.NoError(t, err)
	require.NotNil(t, pm)
	assert.Equal(t, []string{"pm"}, pm.Roles)
	assert.Equal(t, pm.ID, *projects[0].ManagerID)
}
