package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/Marga-Ghale/taska-backend/internal/api/middleware"
	"github.com/Marga-Ghale/taska-backend/internal/models"
	"github.com/Marga-Ghale/taska-backend/internal/repository"
	"github.com/Marga-Ghale/taska-backend/internal/service"
)

type CommentHandler struct {
	commentService service.CommentService
}

func (h *CommentHandler) Create(c *gin.Context) {
	sess, ok := middleware.RequireSession(c)
	if !ok {
		return
	}

	projectID, taskID := c.Param("id"), c.Param("taskId")

	var req models.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	comment, err := h.commentService.AddComment(c.Request.Context(), sess, projectID, taskID, req.Content, req.Mentions)
	if err != nil {
		fail(c, "Comment.Create", err, map[string]interface{}{"projectID": projectID, "taskID": taskID})
		return
	}

	c.JSON(http.StatusCreated, toCommentResponse(comment))
}

func (h *CommentHandler) List(c *gin.Context) {
	sess, ok := middleware.RequireSession(c)
	if !ok {
		return
	}

	projectID, taskID := c.Param("id"), c.Param("taskId")
	comments, err := h.commentService.ListComments(c.Request.Context(), sess, projectID, taskID)
	if err != nil {
		fail(c, "Comment.List", err, map[string]interface{}{"projectID": projectID, "taskID": taskID})
		return
	}

	c.JSON(http.StatusOK, lo.Map(comments, func(cm *repository.TaskComment, _ int) models.CommentResponse {
		return toCommentResponse(cm)
	}))
}

func (h *CommentHandler) Delete(c *gin.Context) {
	sess, ok := middleware.RequireSession(c)
	if !ok {
		return
	}

	projectID, taskID, commentID := c.Param("id"), c.Param("taskId"), c.Param("commentId")
	if err := h.commentService.DeleteComment(c.Request.Context(), sess, projectID, taskID, commentID); err != nil {
		fail(c, "Comment.Delete", err, map[string]interface{}{
			"projectID": projectID,
			"taskID":    taskID,
			"commentID": commentID,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted"})
}
