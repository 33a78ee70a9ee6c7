package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Marga-Ghale/taska-backend/internal/config"
	"github.com/Marga-Ghale/taska-backend/internal/models"
	"github.com/Marga-Ghale/taska-backend/internal/repository"
	"github.com/Marga-Ghale/taska-backend/internal/service"
	"github.com/Marga-Ghale/taska-backend/internal/types"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	t      *testing.T
	router *gin.Engine
	repos  *repository.Repositories
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cfg := config.Load()
	cfg.JWTSecret = "test-secret"
	repos := repository.NewRepositories()
	services := service.NewServices(&service.ServiceDeps{Config: cfg, Repos: repos})
	return &testEnv{
		t:      t,
		router: NewRouter(RouterDeps{Config: cfg, Services: services}),
		repos:  repos,
	}
}

// user stores a user with the given roles and logs in, returning the id and
// an access token.
func (e *testEnv) user(name, email string, roles ...types.Role) (string, string) {
	e.t.Helper()
	hash, err := service.HashPassword("secret123")
	require.NoError(e.t, err)
	u := &repository.User{Email: email, Password: hash, Name: name, Roles: types.RoleSet(roles).Strings()}
	require.NoError(e.t, e.repos.UserRepo.Create(context.Background(), u))

	w := e.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": email, "password": "secret123"})
	require.Equal(e.t, http.StatusOK, w.Code, w.Body.String())
	auth := decode[models.AuthResponse](e.t, w)
	return u.ID, auth.AccessToken
}

func (e *testEnv) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	e.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(e.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func (e *testEnv) createProject(token, title string) models.ProjectResponse {
	e.t.Helper()
	w := e.do(http.MethodPost, "/api/projects", token, gin.H{"title": title})
	require.Equal(e.t, http.StatusCreated, w.Code, w.Body.String())
	return decode[models.ProjectResponse](e.t, w)
}

func columnOf(board []models.BoardColumnResponse, taskID string) []string {
	var found []string
	for _, col := range board {
		for _, task := range col.Tasks {
			if task.ID == taskID {
				found = append(found, col.Status)
			}
		}
	}
	return found
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	e := newTestEnv(t)
	routes := []struct{ method, path string }{
		{http.MethodGet, "/api/users/me"},
		{http.MethodGet, "/api/users"},
		{http.MethodGet, "/api/projects"},
		{http.MethodPost, "/api/projects"},
		{http.MethodGet, "/api/projects/p1/tasks"},
		{http.MethodPost, "/api/projects/p1/tasks"},
		{http.MethodPut, "/api/projects/p1/tasks/t1"},
		{http.MethodDelete, "/api/projects/p1/tasks/t1"},
		{http.MethodGet, "/api/projects/p1/tasks/t1/comments"},
		{http.MethodPost, "/api/projects/p1/tasks/t1/comments"},
		{http.MethodGet, "/api/projects/p1/board"},
		{http.MethodPost, "/api/projects/p1/send-invitation"},
		{http.MethodGet, "/api/invitations"},
		{http.MethodPost, "/api/invitations/i1/accept"},
		{http.MethodPost, "/api/team-invitations/i1/respond"},
		{http.MethodGet, "/api/applications"},
	}

	for _, rt := range routes {
		w := e.do(rt.method, rt.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s without token", rt.method, rt.path)

		w = e.do(rt.method, rt.path, "not-a-jwt", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s with bad token", rt.method, rt.path)
	}
}

func TestPublicRoutes(t *testing.T) {
	e := newTestEnv(t)

	assert.Equal(t, http.StatusOK, e.do(http.MethodGet, "/health", "", nil).Code)
	assert.Equal(t, http.StatusOK, e.do(http.MethodGet, "/metrics", "", nil).Code)

	w := e.do(http.MethodPost, "/api/auth/register", "", gin.H{
		"name": "Nina", "email": "Nina@Example.com", "password": "secret123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	auth := decode[models.AuthResponse](t, w)
	assert.Equal(t, "nina@example.com", auth.User.Email)
	assert.Equal(t, []string{"customer"}, auth.User.Roles)

	w = e.do(http.MethodGet, "/api/users/me", auth.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, auth.User.ID, decode[models.UserResponse](t, w).ID)

	w = e.do(http.MethodPost, "/api/auth/register", "", gin.H{
		"name": "Nina", "email": "nina@example.com", "password": "secret123",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestTaskBoardFlow(t *testing.T) {
	e := newTestEnv(t)
	_, pmToken := e.user("Pam", "pm@example.com", types.RolePM)
	project := e.createProject(pmToken, "Portal")

	w := e.do(http.MethodPost, "/api/projects/"+project.ID+"/tasks", pmToken, gin.H{
		"text": "Fix bug", "column": "todo",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	taskID := decode[models.CreateTaskResponse](t, w).TaskID
	require.NotEmpty(t, taskID)

	w = e.do(http.MethodGet, "/api/projects/"+project.ID+"/board", pmToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	board := decode[[]models.BoardColumnResponse](t, w)
	assert.Equal(t, types.BoardColumns, lo.Map(board, func(c models.BoardColumnResponse, _ int) string { return c.Status }))
	assert.Equal(t, []string{"todo"}, columnOf(board, taskID))
	assert.Equal(t, "medium", board[1].Tasks[0].Priority)

	w = e.do(http.MethodPut, "/api/projects/"+project.ID+"/tasks/"+taskID, pmToken, gin.H{"status": "in_progress"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = e.do(http.MethodGet, "/api/projects/"+project.ID+"/board", pmToken, nil)
	assert.Equal(t, []string{"in_progress"}, columnOf(decode[[]models.BoardColumnResponse](t, w), taskID))

	// column is accepted when status is absent
	w = e.do(http.MethodPut, "/api/projects/"+project.ID+"/tasks/"+taskID, pmToken, gin.H{"column": "review"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "review", decode[models.TaskResponse](t, w).Status)

	w = e.do(http.MethodPut, "/api/projects/"+project.ID+"/tasks/"+taskID, pmToken, gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExecutorCannotMoveUnassignedTask(t *testing.T) {
	e := newTestEnv(t)
	_, pmToken := e.user("Pam", "pm@example.com", types.RolePM)
	execID, execToken := e.user("Eve", "eve@example.com", types.RoleExecutor)
	project := e.createProject(pmToken, "Portal")

	w := e.do(http.MethodPost, "/api/projects/"+project.ID+"/members", pmToken, gin.H{"userId": execID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = e.do(http.MethodPost, "/api/projects/"+project.ID+"/tasks", pmToken, gin.H{"text": "Someone else's"})
	require.Equal(t, http.StatusCreated, w.Code)
	other := decode[models.CreateTaskResponse](t, w).TaskID

	w = e.do(http.MethodPost, "/api/projects/"+project.ID+"/tasks", pmToken, gin.H{"text": "Mine", "assignee": execID})
	require.Equal(t, http.StatusCreated, w.Code)
	mine := decode[models.CreateTaskResponse](t, w).TaskID

	w = e.do(http.MethodPut, "/api/projects/"+project.ID+"/tasks/"+other, execToken, gin.H{"status": "done"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = e.do(http.MethodGet, "/api/projects/"+project.ID+"/tasks/"+other, execToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "todo", decode[models.TaskResponse](t, w).Status)

	w = e.do(http.MethodPut, "/api/projects/"+project.ID+"/tasks/"+mine, execToken, gin.H{"status": "done"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = e.do(http.MethodDelete, "/api/projects/"+project.ID+"/tasks/"+mine, execToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestInvitationFlow(t *testing.T) {
	e := newTestEnv(t)
	_, pmToken := e.user("Pam", "pm@example.com", types.RolePM)
	execID, execToken := e.user("Eve", "eve@example.com", types.RoleExecutor)
	_, otherToken := e.user("Oscar", "oscar@example.com", types.RoleExecutor)
	project := e.createProject(pmToken, "Portal")

	w := e.do(http.MethodPost, "/api/projects/"+project.ID+"/send-invitation", execToken, gin.H{"executorId": execID})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = e.do(http.MethodPost, "/api/projects/"+project.ID+"/send-invitation", pmToken, gin.H{
		"executorId": execID, "message": "Join us",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = e.do(http.MethodGet, "/api/invitations", execToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	invs := decode[[]models.InvitationResponse](t, w)
	require.Len(t, invs, 1)
	assert.Equal(t, "pending", invs[0].Status)
	assert.Equal(t, project.ID, invs[0].ProjectID)

	w = e.do(http.MethodPost, "/api/invitations/"+invs[0].ID+"/accept", otherToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = e.do(http.MethodPost, "/api/invitations/"+invs[0].ID+"/accept", execToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "approved", decode[models.InvitationResponse](t, w).Status)

	w = e.do(http.MethodGet, "/api/projects/"+project.ID, pmToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, decode[models.ProjectResponse](t, w).TeamMembers, execID)

	w = e.do(http.MethodGet, "/api/projects", execToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	ids := lo.Map(decode[[]models.ProjectResponse](t, w), func(p models.ProjectResponse, _ int) string { return p.ID })
	assert.Contains(t, ids, project.ID)
}

func TestTeamInvitationRespond(t *testing.T) {
	e := newTestEnv(t)
	_, pmToken := e.user("Pam", "pm@example.com", types.RolePM)
	execID, execToken := e.user("Eve", "eve@example.com", types.RoleExecutor)
	project := e.createProject(pmToken, "Portal")

	w := e.do(http.MethodPost, "/api/projects/"+project.ID+"/team-invitations", pmToken, gin.H{
		"executorId": execID, "rate": "42.50", "duration": "2 months",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	inv := decode[models.InvitationResponse](t, w)
	assert.Equal(t, "team", inv.Kind)
	require.NotNil(t, inv.Rate)
	assert.Equal(t, "42.5", inv.Rate.String())

	respond := "/api/team-invitations/" + inv.ID + "/respond"
	assert.Equal(t, http.StatusBadRequest, e.do(http.MethodPost, respond, execToken, gin.H{"action": "maybe"}).Code)
	assert.Equal(t, http.StatusNotFound, e.do(http.MethodPost, "/api/team-invitations/missing/respond", execToken, gin.H{"action": "accept"}).Code)
	assert.Equal(t, http.StatusForbidden, e.do(http.MethodPost, respond, pmToken, gin.H{"action": "accept"}).Code)

	w = e.do(http.MethodPost, respond, execToken, gin.H{"action": "accept"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "accepted", decode[models.InvitationResponse](t, w).Status)

	// A second answer is applied as well; membership from the first stays.
	w = e.do(http.MethodPost, respond, execToken, gin.H{"action": "reject"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "rejected", decode[models.InvitationResponse](t, w).Status)

	w = e.do(http.MethodGet, "/api/projects/"+project.ID, pmToken, nil)
	assert.Contains(t, decode[models.ProjectResponse](t, w).TeamMembers, execID)
}

func TestCommentsOutliveTasks(t *testing.T) {
	e := newTestEnv(t)
	_, pmToken := e.user("Pam", "pm@example.com", types.RolePM)
	project := e.createProject(pmToken, "Portal")

	w := e.do(http.MethodPost, "/api/projects/"+project.ID+"/tasks", pmToken, gin.H{"text": "Write docs"})
	require.Equal(t, http.StatusCreated, w.Code)
	taskID := decode[models.CreateTaskResponse](t, w).TaskID
	comments := "/api/projects/" + project.ID + "/tasks/" + taskID + "/comments"

	w = e.do(http.MethodPost, comments, pmToken, gin.H{"content": "Ping @eve about this"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, []string{"eve"}, decode[models.CommentResponse](t, w).Mentions)

	w = e.do(http.MethodDelete, "/api/projects/"+project.ID+"/tasks/"+taskID, pmToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = e.do(http.MethodGet, "/api/projects/"+project.ID+"/tasks", pmToken, nil)
	assert.Empty(t, decode[[]models.TaskResponse](t, w))

	w = e.do(http.MethodGet, comments, pmToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.CommentResponse](t, w), 1)
}

func TestApplicationApproval(t *testing.T) {
	e := newTestEnv(t)
	_, adminToken := e.user("Ada", "admin@example.com", types.RoleAdmin)
	pmID, pmToken := e.user("Pam", "pm@example.com", types.RolePM)
	customerID, customerToken := e.user("Carl", "carl@example.com", types.RoleCustomer)

	w := e.do(http.MethodPost, "/api/applications", customerToken, gin.H{"title": "Mobile app", "budget": 5000})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	app := decode[models.ApplicationResponse](t, w)

	review := "/api/applications/" + app.ID + "/review"
	assert.Equal(t, http.StatusForbidden, e.do(http.MethodPost, review, pmToken, gin.H{"decision": "approve"}).Code)

	w = e.do(http.MethodPost, review, adminToken, gin.H{"decision": "approve", "managerId": pmID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[models.ReviewApplicationResponse](t, w)
	assert.Equal(t, "approved", resp.Application.Status)
	require.NotNil(t, resp.Project)
	assert.Equal(t, customerID, *resp.Project.CustomerID)
	assert.Equal(t, pmID, *resp.Project.ManagerID)

	assert.Equal(t, http.StatusConflict, e.do(http.MethodPost, review, adminToken, gin.H{"decision": "reject"}).Code)

	w = e.do(http.MethodGet, "/api/projects/"+resp.Project.ID, customerToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
