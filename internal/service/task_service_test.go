package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Marga-Ghale/taska-backend/internal/types"
)

func TestCreateTaskDefaults(t *testing.T) {
	f := newFixture(t)
	_, pm := f.user("Pat", types.RolePM)
	project := f.project(pm)

	task, err := f.svc.Task.CreateTask(f.ctx, pm, project.ID, CreateTaskInput{Title: "Fix bug", Column: "todo"})
	require.NoError(t, err)
	assert.Equal(t, "todo", task.Status)
	assert.Equal(t, types.PriorityMedium, task.Priority)
	assert.Nil(t, task.AssigneeID)

	board, err := f.svc.Task.Board(f.ctx, pm, project.ID)
	require.NoError(t, err)
	require.Len(t, board[1].Tasks, 1)
	assert.Equal(t, task.ID, board[1].Tasks[0].ID)

	_, err = f.svc.Task.UpdateTaskStatus(f.ctx, pm, project.ID, task.ID, "in_progress")
	require.NoError(t, err)

	board, err = f.svc.Task.Board(f.ctx, pm, project.ID)
	require.NoError(t, err)
	for _, col := range board {
		if col.Status == "in_progress" {
			require.Len(t, col.Tasks, 1)
			assert.Equal(t, task.ID, col.Tasks[0].ID)
		} else {
			assert.Empty(t, col.Tasks, col.Status)
		}
	}
}

func TestCreateTaskStatusFallbacks(t *testing.T) {
	f := newFixture(t)
	_, pm := f.user("Pat", types.RolePM)
	project := f.project(pm)

	fromStatus, err := f.svc.Task.CreateTask(f.ctx, pm, project.ID, CreateTaskInput{Title: "a", Status: "review"})
	require.NoError(t, err)
	assert.Equal(t, "review", fromStatus.Status)

	columnWins, err := f.svc.Task.CreateTask(f.ctx, pm, project.ID, CreateTaskInput{Title: "b", Column: "done", Status: "review"})
	require.NoError(t, err)
	assert.Equal(t, "done", columnWins.Status)

	neither, err := f.svc.Task.CreateTask(f.ctx, pm, project.ID, CreateTaskInput{Title: "c"})
	require.NoError(t, err)
	assert.Equal(t, "todo", neither.Status)

	_, err = f.svc.Task.CreateTask(f.ctx, pm, project.ID, CreateTaskInput{Title: "d", Priority: "urgent"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.Task.CreateTask(f.ctx, pm, project.ID, CreateTaskInput{Title: "   "})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCreateTaskRequiresManager(t *testing.T) {
	f := newFixture(t)
	_, pm := f.user("Pat", types.RolePM)
	exec, execSess := f.user("Eve", types.RoleExecutor)
	_, otherPM := f.user("Olga", types.RolePM)
	project := f.project(pm, exec.ID)

	_, err := f.svc.Task.CreateTask(f.ctx, execSess, project.ID, CreateTaskInput{Title: "x"})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.Task.CreateTask(f.ctx, otherPM, project.ID, CreateTaskInput{Title: "x"})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.Task.CreateTask(f.ctx, nil, project.ID, CreateTaskInput{Title: "x"})
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = f.svc.Task.CreateTask(f.ctx, pm, "missing", CreateTaskInput{Title: "x"})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.Task.CreateTask(f.ctx, pm, project.ID, CreateTaskInput{Title: "x", AssigneeID: strPtr("ghost")})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateTaskStatusPermissions(t *testing.T) {
	f := newFixture(t)
	_, pm := f.user("Pat", types.RolePM)
	e1, e1Sess := f.user("Eve", types.RoleExecutor)
	e2, e2Sess := f.user("Eli", types.RoleExecutor)
	_, cust := f.user("Cid", types.RoleCustomer)
	project := f.project(pm, e1.ID, e2.ID)

	task, err := f.svc.Task.CreateTask(f.ctx, pm, project.ID, CreateTaskInput{Title: "Fix bug", AssigneeID: &e1.ID})
	require.NoError(t, err)

	_, err = f.svc.Task.UpdateTaskStatus(f.ctx, e2Sess, project.ID, task.ID, "done")
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.svc.Task.UpdateTaskStatus(f.ctx, cust, project.ID, task.ID, "done")
	assert.ErrorIs(t, err, ErrForbidden)

	stored, err := f.repos.TaskRepo.FindByID(f.ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "todo", stored.Status)

	updated, err := f.svc.Task.UpdateTaskStatus(f.ctx, e1Sess, project.ID, task.ID, "blocked")
	require.NoError(t, err)
	assert.Equal(t, "blocked", updated.Status)

	stored, err = f.repos.TaskRepo.FindByID(f.ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "blocked", stored.Status)
	assert.Equal(t, e1.ID, *stored.UpdatedBy)

	board, err := f.svc.Task.Board(f.ctx, pm, project.ID)
	require.NoError(t, err)
	assert.Len(t, board[1].Tasks, 1, "unknown status shows in todo")
}

func TestTaskScopedToProject(t *testing.T) {
	f := newFixture(t)
	_, pm := f.user("Pat", types.RolePM)
	p1 := f.project(pm)
	p2 := f.project(pm)

	task, err := f.svc.Task.CreateTask(f.ctx, pm, p1.ID, CreateTaskInput{Title: "x"})
	require.NoError(t, err)

	_, err = f.svc.Task.UpdateTaskStatus(f.ctx, pm, p2.ID, task.ID, "done")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, f.svc.Task.DeleteTask(f.ctx, pm, p2.ID, task.ID), ErrNotFound)
}

func TestReassignSnapshotsAssignee(t *testing.T) {
	f := newFixture(t)
	_, pm := f.user("Pat", types.RolePM)
	e1, e1Sess := f.user("Eve", types.RoleExecutor)
	e2, _ := f.user("Eli", types.RoleExecutor)
	project := f.project(pm, e1.ID, e2.ID)

	task, err := f.svc.Task.CreateTask(f.ctx, pm, project.ID, CreateTaskInput{Title: "x", AssigneeID: &e1.ID})
	require.NoError(t, err)
	assert.Equal(t, "Eve", *task.AssigneeName)

	// members cannot hand their task to someone else
	_, err = f.svc.Task.UpdateTask(f.ctx, e1Sess, project.ID, task.ID, UpdateTaskInput{AssigneeID: &e2.ID})
	assert.ErrorIs(t, err, ErrForbidden)

	updated, err := f.svc.Task.UpdateTask(f.ctx, pm, project.ID, task.ID, UpdateTaskInput{AssigneeID: &e2.ID})
	require.NoError(t, err)
	assert.Equal(t, e2.ID, *updated.AssigneeID)
	assert.Equal(t, "Eli", *updated.AssigneeName)
	assert.Equal(t, e2.Email, *updated.AssigneeEmail)

	e2.Name = "Elias"
	require.NoError(t, f.repos.UserRepo.Update(f.ctx, e2))

	stored, err := f.repos.TaskRepo.FindByID(f.ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Eli", *stored.AssigneeName)
}

func TestUpdateTaskFields(t *testing.T) {
	f := newFixture(t)
	_, pm := f.user("Pat", types.RolePM)
	e1, e1Sess := f.user("Eve", types.RoleExecutor)
	project := f.project(pm, e1.ID)

	due := time.Now().Add(48 * time.Hour)
	task, err := f.svc.Task.CreateTask(f.ctx, pm, project.ID, CreateTaskInput{Title: "x", AssigneeID: &e1.ID, DueDate: &due})
	require.NoError(t, err)

	updated, err := f.svc.Task.UpdateTask(f.ctx, e1Sess, project.ID, task.ID, UpdateTaskInput{
		Title:        strPtr("renamed"),
		Priority:     strPtr(types.PriorityHigh),
		Status:       strPtr("review"),
		ClearDueDate: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Title)
	assert.Equal(t, types.PriorityHigh, updated.Priority)
	assert.Equal(t, "review", updated.Status)
	assert.Nil(t, updated.DueDate)

	_, err = f.svc.Task.UpdateTask(f.ctx, e1Sess, project.ID, task.ID, UpdateTaskInput{Priority: strPtr("asap")})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestDeleteTaskKeepsComments(t *testing.T) {
	f := newFixture(t)
	_, pm := f.user("Pat", types.RolePM)
	e1, e1Sess := f.user("Eve", types.RoleExecutor)
	project := f.project(pm, e1.ID)

	task, err := f.svc.Task.CreateTask(f.ctx, pm, project.ID, CreateTaskInput{Title: "x"})
	require.NoError(t, err)
	_, err = f.svc.Comment.AddComment(f.ctx, e1Sess, project.ID, task.ID, "on it", nil)
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.Task.DeleteTask(f.ctx, e1Sess, project.ID, task.ID), ErrForbidden)
	require.NoError(t, f.svc.Task.DeleteTask(f.ctx, pm, project.ID, task.ID))

	tasks, err := f.svc.Task.ListTasks(f.ctx, pm, project.ID)
	require.NoError(t, err)
	assert.Empty(t, tasks)

	comments, err := f.svc.Comment.ListComments(f.ctx, pm, project.ID, task.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "on it", comments[0].Content)
}

func TestNotifyOverdue(t *testing.T) {
	f := newFixture(t)
	_, pm := f.user("Pat", types.RolePM)
	project := f.project(pm)

	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)
	_, err := f.svc.Task.CreateTask(f.ctx, pm, project.ID, CreateTaskInput{Title: "late", DueDate: &past})
	require.NoError(t, err)
	_, err = f.svc.Task.CreateTask(f.ctx, pm, project.ID, CreateTaskInput{Title: "late but done", Column: "done", DueDate: &past})
	require.NoError(t, err)
	_, err = f.svc.Task.CreateTask(f.ctx, pm, project.ID, CreateTaskInput{Title: "on time", DueDate: &future})
	require.NoError(t, err)

	n, err := f.svc.Task.NotifyOverdue(f.ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
