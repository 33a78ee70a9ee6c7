package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/Marga-Ghale/taska-backend/internal/api/middleware"
	"github.com/Marga-Ghale/taska-backend/internal/models"
	"github.com/Marga-Ghale/taska-backend/internal/repository"
	"github.com/Marga-Ghale/taska-backend/internal/service"
)

type TaskHandler struct {
	taskService service.TaskService
}

// ============================================
// TASK CRUD
// ============================================

func (h *TaskHandler) Create(c *gin.Context) {
	sess, ok := middleware.RequireSession(c)
	if !ok {
		return
	}

	projectID := c.Param("id")

	var req models.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	task, err := h.taskService.CreateTask(c.Request.Context(), sess, projectID, service.CreateTaskInput{
		Title:       req.Text,
		Description: req.Description,
		Column:      req.Column,
		Status:      req.Status,
		Priority:    req.Priority,
		AssigneeID:  req.Assignee,
		DueDate:     req.DueDate,
		Color:       req.Color,
	})
	if err != nil {
		fail(c, "Task.Create", err, map[string]interface{}{
			"projectID": projectID,
			"text":      req.Text,
		})
		return
	}

	c.JSON(http.StatusCreated, models.CreateTaskResponse{TaskID: task.ID})
}

func (h *TaskHandler) List(c *gin.Context) {
	sess, ok := middleware.RequireSession(c)
	if !ok {
		return
	}

	projectID := c.Param("id")
	tasks, err := h.taskService.ListTasks(c.Request.Context(), sess, projectID)
	if err != nil {
		fail(c, "Task.List", err, map[string]interface{}{"projectID": projectID})
		return
	}

	c.JSON(http.StatusOK, toTaskResponses(tasks))
}

func (h *TaskHandler) Get(c *gin.Context) {
	sess, ok := middleware.RequireSession(c)
	if !ok {
		return
	}

	projectID, taskID := c.Param("id"), c.Param("taskId")
	task, err := h.taskService.GetTask(c.Request.Context(), sess, projectID, taskID)
	if err != nil {
		fail(c, "Task.Get", err, map[string]interface{}{"projectID": projectID, "taskID": taskID})
		return
	}

	c.JSON(http.StatusOK, toTaskResponse(task))
}

// Update moves a task to another column. When any other field is present the
// request becomes a general edit carrying the new status along.
func (h *TaskHandler) Update(c *gin.Context) {
	sess, ok := middleware.RequireSession(c)
	if !ok {
		return
	}

	projectID, taskID := c.Param("id"), c.Param("taskId")

	var req models.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	status := lo.CoalesceOrEmpty(req.Status, req.Column)
	edits := req.Text != nil || req.Description != nil || req.Priority != nil ||
		req.Assignee != nil || req.DueDate != nil || req.ClearDueDate || req.Color != nil

	var (
		task *repository.Task
		err  error
	)
	switch {
	case edits:
		task, err = h.taskService.UpdateTask(c.Request.Context(), sess, projectID, taskID, service.UpdateTaskInput{
			Title:        req.Text,
			Description:  req.Description,
			Status:       lo.EmptyableToPtr(status),
			Priority:     req.Priority,
			AssigneeID:   req.Assignee,
			DueDate:      req.DueDate,
			ClearDueDate: req.ClearDueDate,
			Color:        req.Color,
		})
	case status != "":
		task, err = h.taskService.UpdateTaskStatus(c.Request.Context(), sess, projectID, taskID, status)
	default:
		badRequest(c, errors.New("status or column is required"))
		return
	}
	if err != nil {
		fail(c, "Task.Update", err, map[string]interface{}{
			"projectID": projectID,
			"taskID":    taskID,
			"status":    status,
		})
		return
	}

	c.JSON(http.StatusOK, toTaskResponse(task))
}

func (h *TaskHandler) Delete(c *gin.Context) {
	sess, ok := middleware.RequireSession(c)
	if !ok {
		return
	}

	projectID, taskID := c.Param("id"), c.Param("taskId")
	if err := h.taskService.DeleteTask(c.Request.Context(), sess, projectID, taskID); err != nil {
		fail(c, "Task.Delete", err, map[string]interface{}{"projectID": projectID, "taskID": taskID})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task deleted"})
}

// Board returns the project's tasks grouped into the fixed columns.
func (h *TaskHandler) Board(c *gin.Context) {
	sess, ok := middleware.RequireSession(c)
	if !ok {
		return
	}

	projectID := c.Param("id")
	columns, err := h.taskService.Board(c.Request.Context(), sess, projectID)
	if err != nil {
		fail(c, "Task.Board", err, map[string]interface{}{"projectID": projectID})
		return
	}

	c.JSON(http.StatusOK, lo.Map(columns, func(col service.BoardColumn, _ int) models.BoardColumnResponse {
		return models.BoardColumnResponse{Status: col.Status, Tasks: toTaskResponses(col.Tasks)}
	}))
}
