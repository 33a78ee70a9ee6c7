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

type ApplicationHandler struct {
	applicationService service.ApplicationService
}

func (h *ApplicationHandler) Submit(c *gin.Context) {
	sess, ok := middleware.RequireSession(c)
	if !ok {
		return
	}

	var req models.CreateApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	app, err := h.applicationService.Submit(c.Request.Context(), sess, service.ApplicationInput{
		Title:       req.Title,
		Description: req.Description,
		Budget:      req.Budget,
		Deadline:    req.Deadline,
	})
	if err != nil {
		fail(c, "Application.Submit", err, map[string]interface{}{"title": req.Title})
		return
	}

	c.JSON(http.StatusCreated, toApplicationResponse(app))
}

// List accepts an optional ?status= filter.
func (h *ApplicationHandler) List(c *gin.Context) {
	sess, ok := middleware.RequireSession(c)
	if !ok {
		return
	}

	apps, err := h.applicationService.List(c.Request.Context(), sess, c.Query("status"))
	if err != nil {
		fail(c, "Application.List", err, nil)
		return
	}

	c.JSON(http.StatusOK, lo.Map(apps, func(a *repository.Application, _ int) models.ApplicationResponse {
		return toApplicationResponse(a)
	}))
}

func (h *ApplicationHandler) Get(c *gin.Context) {
	sess, ok := middleware.RequireSession(c)
	if !ok {
		return
	}

	app, err := h.applicationService.Get(c.Request.Context(), sess, c.Param("id"))
	if err != nil {
		fail(c, "Application.Get", err, map[string]interface{}{"applicationID": c.Param("id")})
		return
	}
	c.JSON(http.StatusOK, toApplicationResponse(app))
}

func (h *ApplicationHandler) Review(c *gin.Context) {
	sess, ok := middleware.RequireSession(c)
	if !ok {
		return
	}

	var req models.ReviewApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	applicationID := c.Param("id")
	app, project, err := h.applicationService.Review(c.Request.Context(), sess, applicationID, service.ReviewInput{
		Decision:   req.Decision,
		Comment:    req.Comment,
		ManagerID:  req.ManagerID,
		TeamLeadID: req.TeamLeadID,
	})
	if err != nil {
		fail(c, "Application.Review", err, map[string]interface{}{"applicationID": applicationID, "decision": req.Decision})
		return
	}

	resp := models.ReviewApplicationResponse{Application: toApplicationResponse(app)}
	if project != nil {
		p := toProjectResponse(project)
		resp.Project = &p
	}
	c.JSON(http.StatusOK, resp)
}
