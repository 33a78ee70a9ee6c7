package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Marga-Ghale/taska-backend/internal/session"
	"github.com/Marga-Ghale/taska-backend/internal/types"
)

func TestRegisterLoginAuthenticate(t *testing.T) {
	f := newFixture(t)

	user, access, refresh, err := f.svc.Auth.Register(f.ctx, "Cid", " Cid@Example.com ", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "cid@example.com", user.Email)
	assert.Equal(t, []string{"customer"}, user.Roles)
	assert.NotEmpty(t, access)
	assert.NotEmpty(t, refresh)

	_, _, _, err = f.svc.Auth.Register(f.ctx, "Cid", "cid@example.com", "secret1")
	assert.ErrorIs(t, err, ErrUserExists)
	_, _, _, err = f.svc.Auth.Register(f.ctx, "Cid", "not-an-email", "secret1")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, _, _, err = f.svc.Auth.Register(f.ctx, "Cid", "x@example.com", "123")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, _, _, err = f.svc.Auth.Login(f.ctx, "cid@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, access, _, err = f.svc.Auth.Login(f.ctx, "CID@example.com", "secret1")
	require.NoError(t, err)

	sess, err := f.svc.Auth.Authenticate(f.ctx, access)
	require.NoError(t, err)
	assert.Equal(t, user.ID, sess.UserID)
	assert.True(t, sess.HasRole(types.RoleCustomer))
	assert.NotEmpty(t, sess.ID)

	var cached session.Session
	require.NoError(t, f.store.GetSession(f.ctx, user.ID, &cached))
	assert.Equal(t, user.ID, cached.UserID)

	_, err = f.svc.Auth.Authenticate(f.ctx, "garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshTokenRotation(t *testing.T) {
	f := newFixture(t)
	_, _, refresh, err := f.svc.Auth.Register(f.ctx, "Cid", "cid@example.com", "secret1")
	require.NoError(t, err)

	access, next, err := f.svc.Auth.RefreshToken(f.ctx, refresh)
	require.NoError(t, err)
	assert.NotEmpty(t, access)
	assert.NotEqual(t, refresh, next)

	_, _, err = f.svc.Auth.RefreshToken(f.ctx, refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)

	require.NoError(t, f.svc.Auth.Logout(f.ctx, "", next))
	_, _, err = f.svc.Auth.RefreshToken(f.ctx, next)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRoleChangeInvalidatesSession(t *testing.T) {
	f := newFixture(t)
	_, admin := f.user("Ada", types.RoleAdmin)
	user, access, _, err := f.svc.Auth.Register(f.ctx, "Eve", "eve@example.com", "secret1")
	require.NoError(t, err)

	sess, err := f.svc.Auth.Authenticate(f.ctx, access)
	require.NoError(t, err)
	assert.False(t, sess.HasRole(types.RoleExecutor))

	updated, err := f.svc.User.UpdateRoles(f.ctx, admin, user.ID, []string{"executor", "executor"})
	require.NoError(t, err)
	assert.Equal(t, []string{"executor"}, updated.Roles)

	sess, err = f.svc.Auth.Authenticate(f.ctx, access)
	require.NoError(t, err)
	assert.True(t, sess.HasRole(types.RoleExecutor))
	assert.False(t, sess.HasRole(types.RoleCustomer))

	_, err = f.svc.User.UpdateRoles(f.ctx, admin, user.ID, []string{"superuser"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = f.svc.User.UpdateRoles(f.ctx, sess, user.ID, []string{"admin"})
	assert.ErrorIs(t, err, ErrForbidden)
}
