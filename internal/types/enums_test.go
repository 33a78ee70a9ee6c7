package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRoles(t *testing.T) {
	rs := ParseRoles([]string{"PM", " executor", "pm", "superuser", ""})

	assert.Equal(t, RoleSet{RolePM, RoleExecutor}, rs)
	assert.True(t, rs.Has(RolePM))
	assert.False(t, rs.Has(RoleAdmin))
	assert.True(t, rs.HasAny(RoleAdmin, RoleExecutor))
	assert.Equal(t, []string{"pm", "executor"}, rs.Strings())
}

func TestParseRolesNil(t *testing.T) {
	rs := ParseRoles(nil)
	assert.Empty(t, rs)
	assert.False(t, rs.HasAny(ValidRoles...))
}

func TestInvitationKindAcceptedStatus(t *testing.T) {
	assert.Equal(t, InvitationAccepted, InvitationKindTeam.AcceptedStatus())
	assert.Equal(t, InvitationApproved, InvitationKindSimple.AcceptedStatus())
}

func TestBoardColumnsAndPriorities(t *testing.T) {
	assert.True(t, IsBoardColumn("review"))
	assert.False(t, IsBoardColumn("in_review"))
	assert.True(t, IsValidPriority("critical"))
	assert.False(t, IsValidPriority("urgent"))
}
