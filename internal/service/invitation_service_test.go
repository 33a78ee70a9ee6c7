package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Marga-Ghale/taska-backend/internal/types"
)

func TestInvitationAcceptAddsMember(t *testing.T) {
	f := newFixture(t)
	_, pm := f.user("Pat", types.RolePM)
	exec, execSess := f.user("Eve", types.RoleExecutor)
	project := f.project(pm)

	rate := decimal.RequireFromString("42.50")
	inv, err := f.svc.Invitation.Send(f.ctx, pm, project.ID, SendInvitationInput{
		ReceiverID: exec.ID,
		Message:    strPtr("Join us"),
		Rate:       &rate,
	})
	require.NoError(t, err)
	assert.Equal(t, types.InvitationPending, inv.Status)
	assert.Equal(t, string(types.InvitationKindTeam), inv.Kind)
	assert.True(t, inv.Rate.Decimal.Equal(rate))

	mine, err := f.svc.Invitation.ListMine(f.ctx, execSess)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, project.ID, mine[0].ProjectID)
	assert.Equal(t, types.InvitationPending, mine[0].Status)

	accepted, err := f.svc.Invitation.Respond(f.ctx, execSess, inv.ID, types.ActionAccept)
	require.NoError(t, err)
	assert.Equal(t, types.InvitationAccepted, accepted.Status)
	assert.NotNil(t, accepted.RespondedAt)

	assert.Contains(t, f.reloadProject(project.ID).TeamMembers, exec.ID)

	projects, err := f.svc.Project.ListMine(f.ctx, execSess)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, project.ID, projects[0].ID)
}

func TestSimpleInvitationIsApproved(t *testing.T) {
	f := newFixture(t)
	_, pm := f.user("Pat", types.RolePM)
	exec, execSess := f.user("Eve", types.RoleExecutor)
	project := f.project(pm)

	inv, err := f.svc.Invitation.Send(f.ctx, pm, project.ID, SendInvitationInput{
		Kind:       types.InvitationKindSimple,
		ReceiverID: exec.ID,
	})
	require.NoError(t, err)

	out, err := f.svc.Invitation.Respond(f.ctx, execSess, inv.ID, types.ActionAccept)
	require.NoError(t, err)
	assert.Equal(t, types.InvitationApproved, out.Status)
}

func TestInvitationReject(t *testing.T) {
	f := newFixture(t)
	_, pm := f.user("Pat", types.RolePM)
	exec, execSess := f.user("Eve", types.RoleExecutor)
	project := f.project(pm)

	inv, err := f.svc.Invitation.Send(f.ctx, pm, project.ID, SendInvitationInput{ReceiverID: exec.ID})
	require.NoError(t, err)

	out, err := f.svc.Invitation.Respond(f.ctx, execSess, inv.ID, types.ActionReject)
	require.NoError(t, err)
	assert.Equal(t, types.InvitationRejected, out.Status)
	assert.Empty(t, f.reloadProject(project.ID).TeamMembers)
}

func TestInvitationRespondTwiceAppliesBoth(t *testing.T) {
	f := newFixture(t)
	_, pm := f.user("Pat", types.RolePM)
	exec, execSess := f.user("Eve", types.RoleExecutor)
	project := f.project(pm)

	inv, err := f.svc.Invitation.Send(f.ctx, pm, project.ID, SendInvitationInput{ReceiverID: exec.ID})
	require.NoError(t, err)

	_, err = f.svc.Invitation.Respond(f.ctx, execSess, inv.ID, types.ActionAccept)
	require.NoError(t, err)
	_, err = f.svc.Invitation.Respond(f.ctx, execSess, inv.ID, types.ActionReject)
	require.NoError(t, err)

	stored, err := f.repos.InvitationRepo.FindByID(f.ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, types.InvitationRejected, stored.Status)
	assert.Equal(t, []string{exec.ID}, f.reloadProject(project.ID).TeamMembers)

	// accepting again does not duplicate the membership
	_, err = f.svc.Invitation.Respond(f.ctx, execSess, inv.ID, types.ActionAccept)
	require.NoError(t, err)
	assert.Equal(t, []string{exec.ID}, f.reloadProject(project.ID).TeamMembers)
}

func TestInvitationRespondErrors(t *testing.T) {
	f := newFixture(t)
	_, pm := f.user("Pat", types.RolePM)
	exec, execSess := f.user("Eve", types.RoleExecutor)
	_, other := f.user("Oz", types.RoleExecutor)
	project := f.project(pm)

	inv, err := f.svc.Invitation.Send(f.ctx, pm, project.ID, SendInvitationInput{ReceiverID: exec.ID})
	require.NoError(t, err)

	_, err = f.svc.Invitation.Respond(f.ctx, other, inv.ID, types.ActionAccept)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.svc.Invitation.Respond(f.ctx, pm, inv.ID, types.ActionAccept)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.Invitation.Respond(f.ctx, execSess, inv.ID, "maybe")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.Invitation.Respond(f.ctx, execSess, "missing", types.ActionAccept)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Empty(t, f.reloadProject(project.ID).TeamMembers)
}

func TestSendInvitationChecks(t *testing.T) {
	f := newFixture(t)
	_, pm := f.user("Pat", types.RolePM)
	exec, execSess := f.user("Eve", types.RoleExecutor)
	cust, _ := f.user("Cid", types.RoleCustomer)
	project := f.project(pm, exec.ID)

	_, err := f.svc.Invitation.Send(f.ctx, execSess, project.ID, SendInvitationInput{ReceiverID: cust.ID})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.Invitation.Send(f.ctx, pm, project.ID, SendInvitationInput{ReceiverID: "ghost"})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.Invitation.Send(f.ctx, pm, project.ID, SendInvitationInput{})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.Invitation.Send(f.ctx, pm, "missing", SendInvitationInput{ReceiverID: exec.ID})
	assert.ErrorIs(t, err, ErrNotFound)

	// a receiver without the executor role is accepted
	_, err = f.svc.Invitation.Send(f.ctx, pm, project.ID, SendInvitationInput{ReceiverID: cust.ID})
	require.NoError(t, err)

	sent, err := f.svc.Invitation.ListSent(f.ctx, pm)
	require.NoError(t, err)
	assert.Len(t, sent, 1)

	byProject, err := f.svc.Invitation.ListByProject(f.ctx, pm, project.ID)
	require.NoError(t, err)
	assert.Len(t, byProject, 1)

	_, err = f.svc.Invitation.ListByProject(f.ctx, execSess, project.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}
