package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/Marga-Ghale/taska-backend/internal/metrics"
	"github.com/Marga-Ghale/taska-backend/internal/repository"
	"github.com/Marga-Ghale/taska-backend/internal/session"
	"github.com/Marga-Ghale/taska-backend/internal/socket"
	"github.com/Marga-Ghale/taska-backend/internal/types"
)

// ============================================
// Task Service
// ============================================

type TaskService interface {
	ListTasks(ctx context.Context, sess *session.Session, projectID string) ([]*repository.Task, error)
	GetTask(ctx context.Context, sess *session.Session, projectID, taskID string) (*repository.Task, error)
	CreateTask(ctx context.Context, sess *session.Session, projectID string, input CreateTaskInput) (*repository.Task, error)
	UpdateTaskStatus(ctx context.Context, sess *session.Session, projectID, taskID, status string) (*repository.Task, error)
	UpdateTask(ctx context.Context, sess *session.Session, projectID, taskID string, input UpdateTaskInput) (*repository.Task, error)
	DeleteTask(ctx context.Context, sess *session.Session, projectID, taskID string) error
	Board(ctx context.Context, sess *session.Session, projectID string) ([]BoardColumn, error)
	// NotifyOverdue publishes one overdue event per project with late tasks
	// and returns how many tasks were late.
	NotifyOverdue(ctx context.Context, now time.Time) (int, error)
}

// CreateTaskInput is a new task. Column wins over Status when both are set.
type CreateTaskInput struct {
	Title       string
	Description *string
	Column      string
	Status      string
	Priority    string
	AssigneeID  *string
	DueDate     *time.Time
	Color       *string
}

// UpdateTaskInput holds optional task changes; nil fields are kept. An
// empty AssigneeID unassigns the task.
type UpdateTaskInput struct {
	Title        *string
	Description  *string
	Status       *string
	Priority     *string
	AssigneeID   *string
	DueDate      *time.Time
	ClearDueDate bool
	Color        *string
}

type taskService struct {
	taskRepo    repository.TaskRepository
	projectRepo repository.ProjectRepository
	userRepo    repository.UserRepository
	broadcaster *socket.Broadcaster
}

func NewTaskService(
	taskRepo repository.TaskRepository,
	projectRepo repository.ProjectRepository,
	userRepo repository.UserRepository,
	broadcaster *socket.Broadcaster,
) TaskService {
	return &taskService{
		taskRepo:    taskRepo,
		projectRepo: projectRepo,
		userRepo:    userRepo,
		broadcaster: broadcaster,
	}
}

func (s *taskService) authorize(ctx context.Context, sess *session.Session, projectID string, c Capability) (*repository.Project, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	project, err := loadProject(ctx, s.projectRepo, projectID)
	if err != nil {
		return nil, err
	}
	if !Can(sess, c, Target{Project: project}) {
		return nil, ErrForbidden
	}
	return project, nil
}

func (s *taskService) ListTasks(ctx context.Context, sess *session.Session, projectID string) ([]*repository.Task, error) {
	if _, err := s.authorize(ctx, sess, projectID, CapViewProject); err != nil {
		return nil, err
	}
	tasks, err := s.taskRepo.FindByProjectID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	if tasks == nil {
		tasks = []*repository.Task{}
	}
	return tasks, nil
}

func (s *taskService) GetTask(ctx context.Context, sess *session.Session, projectID, taskID string) (*repository.Task, error) {
	if _, err := s.authorize(ctx, sess, projectID, CapViewProject); err != nil {
		return nil, err
	}
	return loadProjectTask(ctx, s.taskRepo, projectID, taskID)
}

func (s *taskService) Board(ctx context.Context, sess *session.Session, projectID string) ([]BoardColumn, error) {
	tasks, err := s.ListTasks(ctx, sess, projectID)
	if err != nil {
		return nil, err
	}
	return ProjectBoard(tasks), nil
}

func (s *taskService) CreateTask(ctx context.Context, sess *session.Session, projectID string, input CreateTaskInput) (*repository.Task, error) {
	if _, err := s.authorize(ctx, sess, projectID, CapCreateTask); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrInvalidInput
	}
	priority := input.Priority
	if priority == "" {
		priority = types.PriorityMedium
	}
	if !types.IsValidPriority(priority) {
		return nil, ErrInvalidInput
	}
	status := lo.CoalesceOrEmpty(input.Column, input.Status, types.StatusTodo)

	task := &repository.Task{
		ProjectID:   projectID,
		Title:       title,
		Description: input.Description,
		Status:      status,
		Priority:    priority,
		DueDate:     input.DueDate,
		Color:       input.Color,
		CreatedBy:   &sess.UserID,
	}
	if input.AssigneeID != nil && *input.AssigneeID != "" {
		if err := s.snapshotAssignee(ctx, task, *input.AssigneeID); err != nil {
			return nil, err
		}
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	metrics.TasksCreated.Inc()

	payload := taskPayload(task)
	s.broadcaster.BroadcastTaskCreated(projectID, payload, sess.UserID)
	if task.AssigneeID != nil {
		s.broadcaster.BroadcastTaskAssigned(*task.AssigneeID, payload, sess.UserID)
	}
	return task, nil
}

// snapshotAssignee copies the assignee's current name and email onto the task.
func (s *taskService) snapshotAssignee(ctx context.Context, task *repository.Task, assigneeID string) error {
	user, err := s.userRepo.FindByID(ctx, assigneeID)
	if err != nil {
		return fmt.Errorf("failed to load assignee: %w", err)
	}
	if user == nil {
		return ErrNotFound
	}
	task.AssigneeID = &user.ID
	task.AssigneeName = &user.Name
	task.AssigneeEmail = &user.Email
	return nil
}

// UpdateTaskStatus stores status verbatim. Unknown values are kept and shown
// in the todo column of the board.
func (s *taskService) UpdateTaskStatus(ctx context.Context, sess *session.Session, projectID, taskID, status string) (*repository.Task, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	if status == "" {
		return nil, ErrInvalidInput
	}
	project, task, err := s.loadForMutation(ctx, projectID, taskID)
	if err != nil {
		return nil, err
	}
	if !Can(sess, CapUpdateTaskStatus, Target{Project: project, Task: task}) {
		return nil, ErrForbidden
	}

	oldStatus := task.Status
	if err := s.taskRepo.UpdateStatus(ctx, task.ID, status, sess.UserID); err != nil {
		return nil, fmt.Errorf("failed to update task status: %w", err)
	}
	task.Status = status
	task.UpdatedBy = &sess.UserID
	task.UpdatedAt = time.Now()

	s.broadcaster.BroadcastTaskStatusChanged(projectID, taskPayload(task), oldStatus, status, sess.UserID)
	return task, nil
}

func (s *taskService) UpdateTask(ctx context.Context, sess *session.Session, projectID, taskID string, input UpdateTaskInput) (*repository.Task, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	project, task, err := s.loadForMutation(ctx, projectID, taskID)
	if err != nil {
		return nil, err
	}
	if !Can(sess, CapEditTask, Target{Project: project, Task: task}) {
		return nil, ErrForbidden
	}

	var changes []string
	oldStatus := task.Status

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, ErrInvalidInput
		}
		task.Title = title
		changes = append(changes, "title")
	}
	if input.Description != nil {
		task.Description = input.Description
		changes = append(changes, "description")
	}
	if input.Status != nil && *input.Status != "" {
		task.Status = *input.Status
		changes = append(changes, "status")
	}
	if input.Priority != nil {
		if !types.IsValidPriority(*input.Priority) {
			return nil, ErrInvalidInput
		}
		task.Priority = *input.Priority
		changes = append(changes, "priority")
	}
	if input.DueDate != nil || input.ClearDueDate {
		task.DueDate = input.DueDate
		changes = append(changes, "dueDate")
	}
	if input.Color != nil {
		task.Color = input.Color
		changes = append(changes, "color")
	}

	reassigned := false
	if input.AssigneeID != nil && *input.AssigneeID != deref(task.AssigneeID) {
		if !Can(sess, CapReassignTask, Target{Project: project, Task: task}) {
			return nil, ErrForbidden
		}
		if *input.AssigneeID == "" {
			task.AssigneeID, task.AssigneeName, task.AssigneeEmail = nil, nil, nil
		} else if err := s.snapshotAssignee(ctx, task, *input.AssigneeID); err != nil {
			return nil, err
		}
		reassigned = task.AssigneeID != nil
		changes = append(changes, "assignee")
	}

	if len(changes) == 0 {
		return task, nil
	}

	task.UpdatedBy = &sess.UserID
	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	payload := taskPayload(task)
	s.broadcaster.BroadcastTaskUpdated(projectID, payload, changes, sess.UserID)
	if task.Status != oldStatus {
		s.broadcaster.BroadcastTaskStatusChanged(projectID, payload, oldStatus, task.Status, sess.UserID)
	}
	if reassigned {
		s.broadcaster.BroadcastTaskAssigned(*task.AssigneeID, payload, sess.UserID)
	}
	return task, nil
}

// DeleteTask removes the task only. Its comments stay in the store.
func (s *taskService) DeleteTask(ctx context.Context, sess *session.Session, projectID, taskID string) error {
	if err := requireSession(sess); err != nil {
		return err
	}
	project, task, err := s.loadForMutation(ctx, projectID, taskID)
	if err != nil {
		return err
	}
	if !Can(sess, CapDeleteTask, Target{Project: project, Task: task}) {
		return ErrForbidden
	}

	if err := s.taskRepo.Delete(ctx, task.ID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	s.broadcaster.BroadcastTaskDeleted(projectID, task.ID, sess.UserID)
	return nil
}

func (s *taskService) loadForMutation(ctx context.Context, projectID, taskID string) (*repository.Project, *repository.Task, error) {
	project, err := loadProject(ctx, s.projectRepo, projectID)
	if err != nil {
		return nil, nil, err
	}
	task, err := loadProjectTask(ctx, s.taskRepo, projectID, taskID)
	if err != nil {
		return nil, nil, err
	}
	return project, task, nil
}

func (s *taskService) NotifyOverdue(ctx context.Context, now time.Time) (int, error) {
	tasks, err := s.taskRepo.FindOverdue(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("failed to find overdue tasks: %w", err)
	}

	byProject := lo.GroupBy(tasks, func(t *repository.Task) string { return t.ProjectID })
	for projectID, late := range byProject {
		ids := lo.Map(late, func(t *repository.Task, _ int) string { return t.ID })
		s.broadcaster.BroadcastTasksOverdue(projectID, ids)
	}
	if len(tasks) > 0 {
		log.Printf("[Task] %d overdue tasks across %d projects", len(tasks), len(byProject))
	}
	return len(tasks), nil
}

func taskPayload(t *repository.Task) map[string]interface{} {
	payload := map[string]interface{}{
		"id":        t.ID,
		"projectId": t.ProjectID,
		"text":      t.Title,
		"status":    t.Status,
		"column":    BoardColumnOf(t.Status),
		"priority":  t.Priority,
		"updatedAt": t.UpdatedAt,
	}
	if t.AssigneeID != nil {
		payload["assignee"] = map[string]interface{}{
			"id":    *t.AssigneeID,
			"name":  deref(t.AssigneeName),
			"email": deref(t.AssigneeEmail),
		}
	}
	if t.DueDate != nil {
		payload["dueDate"] = *t.DueDate
	}
	return payload
}
