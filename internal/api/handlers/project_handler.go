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

type ProjectHandler struct {
	projectService service.ProjectService
}

func (h *ProjectHandler) Create(c *gin.Context) {
	sess, ok := middleware.RequireSession(c)
	if !ok {
		return
	}

	var req models.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	project, err := h.projectService.Create(c.Request.Context(), sess, service.ProjectInput{
		Title:       &req.Title,
		Description: req.Description,
		Statuses:    req.Statuses,
		TeamLeadID:  req.TeamLeadID,
		CustomerID:  req.CustomerID,
	})
	if err != nil {
		fail(c, "Project.Create", err, map[string]interface{}{"title": req.Title})
		return
	}

	c.JSON(http.StatusCreated, toProjectResponse(project))
}

// List returns the caller's projects.
func (h *ProjectHandler) List(c *gin.Context) {
	sess, ok := middleware.RequireSession(c)
	if !ok {
		return
	}

	projects, err := h.projectService.ListMine(c.Request.Context(), sess)
	if err != nil {
		fail(c, "Project.List", err, nil)
		return
	}

	c.JSON(http.StatusOK, lo.Map(projects, func(p *repository.Project, _ int) models.ProjectResponse {
		return toProjectResponse(p)
	}))
}

func (h *ProjectHandler) Get(c *gin.Context) {
	sess, ok := middleware.RequireSession(c)
	if !ok {
		return
	}

	project, err := h.projectService.Get(c.Request.Context(), sess, c.Param("id"))
	if err != nil {
		fail(c, "Project.Get", err, map[string]interface{}{"projectID": c.Param("id")})
		return
	}

	c.JSON(http.StatusOK, toProjectResponse(project))
}

func (h *ProjectHandler) Update(c *gin.Context) {
	sess, ok := middleware.RequireSession(c)
	if !ok {
		return
	}

	var req models.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	projectID := c.Param("id")
	project, err := h.projectService.Update(c.Request.Context(), sess, projectID, service.ProjectInput{
		Title:       req.Title,
		Description: req.Description,
		Statuses:    req.Statuses,
		TeamLeadID:  req.TeamLeadID,
		CustomerID:  req.CustomerID,
	})
	if err != nil {
		fail(c, "Project.Update", err, map[string]interface{}{"projectID": projectID})
		return
	}

	c.JSON(http.StatusOK, toProjectResponse(project))
}

func (h *ProjectHandler) Delete(c *gin.Context) {
	sess, ok := middleware.RequireSession(c)
	if !ok {
		return
	}

	projectID := c.Param("id")
	if err := h.projectService.Delete(c.Request.Context(), sess, projectID); err != nil {
		fail(c, "Project.Delete", err, map[string]interface{}{"projectID": projectID})
		return
	}

	c.Status(http.StatusNoContent)
}

// ============================================
// Members
// ============================================

func (h *ProjectHandler) AddMember(c *gin.Context) {
	sess, ok := middleware.RequireSession(c)
	if !ok {
		return
	}

	var req models.AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	projectID := c.Param("id")
	project, err := h.projectService.AddMember(c.Request.Context(), sess, projectID, req.UserID)
	if err != nil {
		fail(c, "Project.AddMember", err, map[string]interface{}{"projectID": projectID, "memberID": req.UserID})
		return
	}

	c.JSON(http.StatusOK, toProjectResponse(project))
}

func (h *ProjectHandler) RemoveMember(c *gin.Context) {
	sess, ok := middleware.RequireSession(c)
	if !ok {
		return
	}

	projectID := c.Param("id")
	memberID := c.Param("userId")
	project, err := h.projectService.RemoveMember(c.Request.Context(), sess, projectID, memberID)
	if err != nil {
		fail(c, "Project.RemoveMember", err, map[string]interface{}{"projectID": projectID, "memberID": memberID})
		return
	}

	c.JSON(http.StatusOK, toProjectResponse(project))
}
