package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// In-memory implementations back tests and database-less development runs.
// Every read hands out a copy so callers cannot mutate stored records.

// ============ Users ============

type inMemoryUserRepository struct {
	mu     sync.RWMutex
	users  map[string]*User
	tokens map[string]*RefreshToken
}

func newInMemoryUserRepository() *inMemoryUserRepository {
	return &inMemoryUserRepository{
		users:  make(map[string]*User),
		tokens: make(map[string]*RefreshToken),
	}
}

func copyUser(u *User) *User {
	c := *u
	c.Roles = append([]string{}, u.Roles...)
	return &c
}

func (r *inMemoryUserRepository) Create(ctx context.Context, user *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	user.ID = uuid.New().String()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Roles == nil {
		user.Roles = []string{}
	}
	r.users[user.ID] = copyUser(user)
	return nil
}

func (r *inMemoryUserRepository) FindByID(ctx context.Context, id string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if u, ok := r.users[id]; ok {
		return copyUser(u), nil
	}
	return nil, nil
}

func (r *inMemoryUserRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return copyUser(u), nil
		}
	}
	return nil, nil
}

func (r *inMemoryUserRepository) FindAll(ctx context.Context) ([]*User, error) {
	return r.filter(func(*User) bool { return true }), nil
}

func (r *inMemoryUserRepository) FindByRole(ctx context.Context, role string) ([]*User, error) {
	return r.filter(func(u *User) bool { return lo.Contains(u.Roles, role) }), nil
}

func (r *inMemoryUserRepository) filter(keep func(*User) bool) []*User {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*User
	for _, u := range r.users {
		if keep(u) {
			out = append(out, copyUser(u))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *inMemoryUserRepository) Update(ctx context.Context, user *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.users[user.ID]
	if !ok {
		return nil
	}
	existing.Name = user.Name
	existing.Email = user.Email
	existing.Rate = user.Rate
	existing.Specialization = user.Specialization
	existing.UpdatedAt = time.Now()
	user.UpdatedAt = existing.UpdatedAt
	return nil
}

func (r *inMemoryUserRepository) UpdateRoles(ctx context.Context, userID string, roles []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[userID]; ok {
		u.Roles = append([]string{}, roles...)
		u.UpdatedAt = time.Now()
	}
	return nil
}

func (r *inMemoryUserRepository) SaveRefreshToken(ctx context.Context, token *RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	token.ID = uuid.New().String()
	token.CreatedAt = time.Now()
	c := *token
	r.tokens[token.Token] = &c
	return nil
}

func (r *inMemoryUserRepository) FindRefreshToken(ctx context.Context, token string) (*RefreshToken, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if t, ok := r.tokens[token]; ok {
		c := *t
		return &c, nil
	}
	return nil, nil
}

func (r *inMemoryUserRepository) DeleteRefreshToken(ctx context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tokens, token)
	return nil
}

func (r *inMemoryUserRepository) DeleteUserRefreshTokens(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, t := range r.tokens {
		if t.UserID == userID {
			delete(r.tokens, k)
		}
	}
	return nil
}

func (r *inMemoryUserRepository) DeleteExpiredRefreshTokens(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	n := 0
	for k, t := range r.tokens {
		if t.ExpiresAt.Before(now) {
			delete(r.tokens, k)
			n++
		}
	}
	return n, nil
}

// ============ Projects ============

type inMemoryProjectRepository struct {
	mu       sync.RWMutex
	projects map[string]*Project
	order    []string
}

func newInMemoryProjectRepository() *inMemoryProjectRepository {
	return &inMemoryProjectRepository{projects: make(map[string]*Project)}
}

func copyProject(p *Project) *Project {
	c := *p
	c.Statuses = append([]string{}, p.Statuses...)
	c.TeamMembers = append([]string{}, p.TeamMembers...)
	return &c
}

func (r *inMemoryProjectRepository) Create(ctx context.Context, project *Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	project.ID = uuid.New().String()
	project.CreatedAt = now
	project.UpdatedAt = now
	if project.TeamMembers == nil {
		project.TeamMembers = []string{}
	}
	r.projects[project.ID] = copyProject(project)
	r.order = append(r.order, project.ID)
	return nil
}

func (r *inMemoryProjectRepository) FindByID(ctx context.Context, id string) (*Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.projects[id]; ok {
		return copyProject(p), nil
	}
	return nil, nil
}

func (r *inMemoryProjectRepository) FindAll(ctx context.Context) ([]*Project, error) {
	return r.filter(func(*Project) bool { return true }), nil
}

func (r *inMemoryProjectRepository) FindByUserID(ctx context.Context, userID string) ([]*Project, error) {
	is := func(ref *string) bool { return ref != nil && *ref == userID }
	return r.filter(func(p *Project) bool {
		return is(p.ManagerID) || is(p.PMID) || is(p.TeamLeadID) || is(p.CustomerID) ||
			lo.Contains(p.TeamMembers, userID)
	}), nil
}

// filter returns matches newest first, like the SQL implementation.
func (r *inMemoryProjectRepository) filter(keep func(*Project) bool) []*Project {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Project
	for i := len(r.order) - 1; i >= 0; i-- {
		p, ok := r.projects[r.order[i]]
		if ok && keep(p) {
			out = append(out, copyProject(p))
		}
	}
	return out
}

func (r *inMemoryProjectRepository) Update(ctx context.Context, project *Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.projects[project.ID]
	if !ok {
		return nil
	}
	project.CreatedAt = existing.CreatedAt
	project.UpdatedAt = time.Now()
	r.projects[project.ID] = copyProject(project)
	return nil
}

func (r *inMemoryProjectRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.projects, id)
	r.order = lo.Without(r.order, id)
	return nil
}

func (r *inMemoryProjectRepository) AddTeamMember(ctx context.Context, projectID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.projects[projectID]; ok && !lo.Contains(p.TeamMembers, userID) {
		p.TeamMembers = append(p.TeamMembers, userID)
		p.UpdatedAt = time.Now()
	}
	return nil
}

func (r *inMemoryProjectRepository) RemoveTeamMember(ctx context.Context, projectID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.projects[projectID]; ok {
		p.TeamMembers = lo.Without(p.TeamMembers, userID)
		p.UpdatedAt = time.Now()
	}
	return nil
}

// ============ Tasks ============

type inMemoryTaskRepository struct {
	mu    sync.RWMutex
	tasks map[string]*Task
	order []string
}

func newInMemoryTaskRepository() *inMemoryTaskRepository {
	return &inMemoryTaskRepository{tasks: make(map[string]*Task)}
}

func copyTask(t *Task) *Task {
	c := *t
	return &c
}

func (r *inMemoryTaskRepository) Create(ctx context.Context, task *Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	task.ID = uuid.New().String()
	task.CreatedAt = now
	task.UpdatedAt = now
	task.UpdatedBy = task.CreatedBy
	r.tasks[task.ID] = copyTask(task)
	r.order = append(r.order, task.ID)
	return nil
}

func (r *inMemoryTaskRepository) FindByID(ctx context.Context, id string) (*Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if t, ok := r.tasks[id]; ok {
		return copyTask(t), nil
	}
	return nil, nil
}

func (r *inMemoryTaskRepository) FindByProjectID(ctx context.Context, projectID string) ([]*Task, error) {
	return r.filter(func(t *Task) bool { return t.ProjectID == projectID }), nil
}

func (r *inMemoryTaskRepository) FindOverdue(ctx context.Context, now time.Time) ([]*Task, error) {
	return r.filter(func(t *Task) bool {
		return t.DueDate != nil && t.DueDate.Before(now) && t.Status != "done"
	}), nil
}

func (r *inMemoryTaskRepository) filter(keep func(*Task) bool) []*Task {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Task
	for _, id := range r.order {
		if t, ok := r.tasks[id]; ok && keep(t) {
			out = append(out, copyTask(t))
		}
	}
	return out
}

func (r *inMemoryTaskRepository) Update(ctx context.Context, task *Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.tasks[task.ID]
	if !ok {
		return nil
	}
	task.CreatedAt = existing.CreatedAt
	task.CreatedBy = existing.CreatedBy
	task.ProjectID = existing.ProjectID
	task.UpdatedAt = time.Now()
	r.tasks[task.ID] = copyTask(task)
	return nil
}

func (r *inMemoryTaskRepository) UpdateStatus(ctx context.Context, taskID, status, updatedBy string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.tasks[taskID]; ok {
		t.Status = status
		t.UpdatedBy = nullString(updatedBy)
		t.UpdatedAt = time.Now()
	}
	return nil
}

func (r *inMemoryTaskRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tasks, id)
	r.order = lo.Without(r.order, id)
	return nil
}

// ============ Comments ============

type inMemoryTaskCommentRepository struct {
	mu       sync.RWMutex
	comments map[string]*TaskComment
	order    []string
}

func newInMemoryTaskCommentRepository() *inMemoryTaskCommentRepository {
	return &inMemoryTaskCommentRepository{comments: make(map[string]*TaskComment)}
}

func copyComment(c *TaskComment) *TaskComment {
	out := *c
	out.Mentions = append([]string{}, c.Mentions...)
	return &out
}

func (r *inMemoryTaskCommentRepository) Create(ctx context.Context, comment *TaskComment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	comment.ID = uuid.New().String()
	comment.CreatedAt = now
	comment.UpdatedAt = now
	if comment.Mentions == nil {
		comment.Mentions = []string{}
	}
	r.comments[comment.ID] = copyComment(comment)
	r.order = append(r.order, comment.ID)
	return nil
}

func (r *inMemoryTaskCommentRepository) FindByID(ctx context.Context, id string) (*TaskComment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if c, ok := r.comments[id]; ok {
		return copyComment(c), nil
	}
	return nil, nil
}

func (r *inMemoryTaskCommentRepository) FindByTaskID(ctx context.Context, taskID string) ([]*TaskComment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*TaskComment
	for _, id := range r.order {
		if c, ok := r.comments[id]; ok && c.TaskID == taskID {
			out = append(out, copyComment(c))
		}
	}
	return out, nil
}

func (r *inMemoryTaskCommentRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.comments, id)
	r.order = lo.Without(r.order, id)
	return nil
}

// ============ Invitations ============

type inMemoryInvitationRepository struct {
	mu          sync.RWMutex
	invitations map[string]*Invitation
	order       []string
}

func newInMemoryInvitationRepository() *inMemoryInvitationRepository {
	return &inMemoryInvitationRepository{invitations: make(map[string]*Invitation)}
}

func copyInvitation(inv *Invitation) *Invitation {
	c := *inv
	return &c
}

func (r *inMemoryInvitationRepository) Create(ctx context.Context, invitation *Invitation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	invitation.ID = uuid.New().String()
	invitation.CreatedAt = now
	invitation.UpdatedAt = now
	r.invitations[invitation.ID] = copyInvitation(invitation)
	r.order = append(r.order, invitation.ID)
	return nil
}

func (r *inMemoryInvitationRepository) FindByID(ctx context.Context, id string) (*Invitation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if inv, ok := r.invitations[id]; ok {
		return copyInvitation(inv), nil
	}
	return nil, nil
}

func (r *inMemoryInvitationRepository) FindByReceiverID(ctx context.Context, receiverID string) ([]*Invitation, error) {
	return r.filter(func(inv *Invitation) bool { return inv.ReceiverID == receiverID }), nil
}

func (r *inMemoryInvitationRepository) FindBySenderID(ctx context.Context, senderID string) ([]*Invitation, error) {
	return r.filter(func(inv *Invitation) bool { return inv.SenderID == senderID }), nil
}

func (r *inMemoryInvitationRepository) FindByProjectID(ctx context.Context, projectID string) ([]*Invitation, error) {
	return r.filter(func(inv *Invitation) bool { return inv.ProjectID == projectID }), nil
}

func (r *inMemoryInvitationRepository) filter(keep func(*Invitation) bool) []*Invitation {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Invitation
	for i := len(r.order) - 1; i >= 0; i-- {
		if inv, ok := r.invitations[r.order[i]]; ok && keep(inv) {
			out = append(out, copyInvitation(inv))
		}
	}
	return out
}

func (r *inMemoryInvitationRepository) UpdateStatus(ctx context.Context, id, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invitations[id]
	if !ok {
		return nil
	}
	now := time.Now()
	inv.Status = status
	if status != "pending" {
		inv.RespondedAt = &now
	}
	inv.UpdatedAt = now
	return nil
}

// ============ Applications ============

type inMemoryApplicationRepository struct {
	mu    sync.RWMutex
	apps  map[string]*Application
	order []string
}

func newInMemoryApplicationRepository() *inMemoryApplicationRepository {
	return &inMemoryApplicationRepository{apps: make(map[string]*Application)}
}

func copyApplication(a *Application) *Application {
	c := *a
	return &c
}

func (r *inMemoryApplicationRepository) Create(ctx context.Context, app *Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	app.ID = uuid.New().String()
	app.CreatedAt = now
	app.UpdatedAt = now
	r.apps[app.ID] = copyApplication(app)
	r.order = append(r.order, app.ID)
	return nil
}

func (r *inMemoryApplicationRepository) FindByID(ctx context.Context, id string) (*Application, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if a, ok := r.apps[id]; ok {
		return copyApplication(a), nil
	}
	return nil, nil
}

func (r *inMemoryApplicationRepository) FindAll(ctx context.Context, status string) ([]*Application, error) {
	return r.filter(func(a *Application) bool { return status == "" || a.Status == status }), nil
}

func (r *inMemoryApplicationRepository) FindByRequesterID(ctx context.Context, requesterID string) ([]*Application, error) {
	return r.filter(func(a *Application) bool { return a.RequesterID == requesterID }), nil
}

func (r *inMemoryApplicationRepository) filter(keep func(*Application) bool) []*Application {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Application
	for i := len(r.order) - 1; i >= 0; i-- {
		if a, ok := r.apps[r.order[i]]; ok && keep(a) {
			out = append(out, copyApplication(a))
		}
	}
	return out
}

func (r *inMemoryApplicationRepository) UpdateReview(ctx context.Context, app *Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.apps[app.ID]
	if !ok {
		return nil
	}
	existing.Status = app.Status
	existing.AdminComment = app.AdminComment
	existing.ProjectID = app.ProjectID
	existing.ReviewedBy = app.ReviewedBy
	existing.UpdatedAt = time.Now()
	app.UpdatedAt = existing.UpdatedAt
	return nil
}
