package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Marga-Ghale/taska-backend/internal/socket"
	"github.com/Marga-Ghale/taska-backend/internal/types"
)

func TestProjectLifecycle(t *testing.T) {
	f := newFixture(t)
	_, pm := f.user("Pat", types.RolePM)
	exec, execSess := f.user("Eve", types.RoleExecutor)
	_, admin := f.user("Ada", types.RoleAdmin)
	_, cust := f.user("Cid", types.RoleCustomer)

	_, err := f.svc.Project.Create(f.ctx, cust, ProjectInput{Title: strPtr("x")})
	assert.ErrorIs(t, err, ErrForbidden)

	project, err := f.svc.Project.Create(f.ctx, pm, ProjectInput{Title: strPtr("Website")})
	require.NoError(t, err)
	assert.Equal(t, pm.UserID, *project.ManagerID)
	assert.Equal(t, pm.UserID, *project.PMID)
	assert.Equal(t, types.BoardColumns, project.Statuses)

	_, err = f.svc.Project.Get(f.ctx, execSess, project.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.svc.Project.Get(f.ctx, admin, project.ID)
	require.NoError(t, err)

	_, err = f.svc.Project.AddMember(f.ctx, execSess, project.ID, exec.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	updated, err := f.svc.Project.AddMember(f.ctx, pm, project.ID, exec.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{exec.ID}, updated.TeamMembers)

	_, err = f.svc.Project.Get(f.ctx, execSess, project.ID)
	require.NoError(t, err)
	assert.True(t, f.svc.Project.CanAccessRoom(f.ctx, exec.ID, socket.ProjectRoom(project.ID)))
	assert.False(t, f.svc.Project.CanAccessRoom(f.ctx, cust.UserID, socket.ProjectRoom(project.ID)))
	assert.True(t, f.svc.Project.CanAccessRoom(f.ctx, cust.UserID, socket.UserRoom(cust.UserID)))
	assert.False(t, f.svc.Project.CanAccessRoom(f.ctx, cust.UserID, socket.UserRoom(exec.ID)))

	all, err := f.svc.Project.ListMine(f.ctx, admin)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	renamed, err := f.svc.Project.Update(f.ctx, pm, project.ID, ProjectInput{Title: strPtr("Web shop"), CustomerID: &cust.UserID})
	require.NoError(t, err)
	assert.Equal(t, "Web shop", renamed.Title)
	assert.Equal(t, cust.UserID, *renamed.CustomerID)

	_, err = f.svc.Project.RemoveMember(f.ctx, pm, project.ID, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.svc.Project.RemoveMember(f.ctx, pm, project.ID, exec.ID)
	require.NoError(t, err)
	assert.Empty(t, f.reloadProject(project.ID).TeamMembers)

	// admins outside the project cannot delete it
	assert.ErrorIs(t, f.svc.Project.Delete(f.ctx, admin, project.ID), ErrForbidden)
	require.NoError(t, f.svc.Project.Delete(f.ctx, pm, project.ID))
	_, err = f.svc.Project.Get(f.ctx, pm, project.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
