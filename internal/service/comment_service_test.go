package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Marga-Ghale/taska-backend/internal/types"
)

func TestCommentThread(t *testing.T) {
	f := newFixture(t)
	_, pm := f.user("Pat", types.RolePM)
	e1, e1Sess := f.user("Eve", types.RoleExecutor)
	e2, e2Sess := f.user("Eli", types.RoleExecutor)
	_, cust := f.user("Cid", types.RoleCustomer)
	_, outsider := f.user("Oz", types.RoleExecutor)
	project := f.project(pm, e1.ID, e2.ID)
	project.CustomerID = &cust.UserID
	require.NoError(t, f.repos.ProjectRepo.Update(f.ctx, project))

	task, err := f.svc.Task.CreateTask(f.ctx, pm, project.ID, CreateTaskInput{Title: "x"})
	require.NoError(t, err)

	first, err := f.svc.Comment.AddComment(f.ctx, e1Sess, project.ID, task.ID, "ping @eli and @pat", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"eli", "pat"}, first.Mentions)

	_, err = f.svc.Comment.AddComment(f.ctx, cust, project.ID, task.ID, "any news?", []string{"pat"})
	require.NoError(t, err)

	_, err = f.svc.Comment.AddComment(f.ctx, outsider, project.ID, task.ID, "hi", nil)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.svc.Comment.AddComment(f.ctx, e1Sess, project.ID, task.ID, "  ", nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = f.svc.Comment.AddComment(f.ctx, e1Sess, project.ID, "missing", "hi", nil)
	assert.ErrorIs(t, err, ErrNotFound)

	comments, err := f.svc.Comment.ListComments(f.ctx, e2Sess, project.ID, task.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, first.ID, comments[0].ID)

	// only the author or a manager may delete
	assert.ErrorIs(t, f.svc.Comment.DeleteComment(f.ctx, e2Sess, project.ID, task.ID, first.ID), ErrForbidden)
	require.NoError(t, f.svc.Comment.DeleteComment(f.ctx, e1Sess, project.ID, task.ID, first.ID))
	require.NoError(t, f.svc.Comment.DeleteComment(f.ctx, pm, project.ID, task.ID, comments[1].ID))
	assert.ErrorIs(t, f.svc.Comment.DeleteComment(f.ctx, pm, project.ID, task.ID, first.ID), ErrNotFound)

	comments, err = f.svc.Comment.ListComments(f.ctx, pm, project.ID, task.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)
}

func TestExtractMentions(t *testing.T) {
	assert.Equal(t, []string{"ann", "bob.s"}, ExtractMentions("@ann see @bob.s and @ann"))
	assert.Empty(t, ExtractMentions("no mentions here"))
}
