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

// ============================================
// Auth Handler
// ============================================

type AuthHandler struct {
	authService service.AuthService
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	user, accessToken, refreshToken, err := h.authService.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		fail(c, "Auth.Register", err, map[string]interface{}{"email": req.Email})
		return
	}

	c.JSON(http.StatusCreated, models.AuthResponse{
		User:         toUserResponse(user),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	user, accessToken, refreshToken, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		fail(c, "Auth.Login", err, nil)
		return
	}

	c.JSON(http.StatusOK, models.AuthResponse{
		User:         toUserResponse(user),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	})
}

func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req models.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	accessToken, refreshToken, err := h.authService.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		fail(c, "Auth.RefreshToken", err, nil)
		return
	}

	c.JSON(http.StatusOK, models.TokenResponse{AccessToken: accessToken, RefreshToken: refreshToken})
}

// Logout revokes the given refresh token. A valid bearer token, when sent,
// also evicts the caller's cached session.
func (h *AuthHandler) Logout(c *gin.Context) {
	var req models.LogoutRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}

	userID := ""
	if token, ok := middleware.BearerToken(c.GetHeader("Authorization")); ok {
		if sess, err := h.authService.Authenticate(c.Request.Context(), token); err == nil {
			userID = sess.UserID
		}
	}

	if err := h.authService.Logout(c.Request.Context(), userID, req.RefreshToken); err != nil {
		fail(c, "Auth.Logout", err, map[string]interface{}{"userID": userID})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// ============================================
// User Handler
// ============================================

type UserHandler struct {
	userService service.UserService
}

func (h *UserHandler) GetCurrentUser(c *gin.Context) {
	sess, ok := middleware.RequireSession(c)
	if !ok {
		return
	}

	user, err := h.userService.GetByID(c.Request.Context(), sess.UserID)
	if err != nil {
		fail(c, "User.GetCurrentUser", err, nil)
		return
	}

	c.JSON(http.StatusOK, toUserResponse(user))
}

func (h *UserHandler) UpdateCurrentUser(c *gin.Context) {
	sess, ok := middleware.RequireSession(c)
	if !ok {
		return
	}

	var req models.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), sess, service.UpdateProfileInput{
		Name:           req.Name,
		Rate:           req.Rate,
		Specialization: req.Specialization,
	})
	if err != nil {
		fail(c, "User.UpdateCurrentUser", err, nil)
		return
	}

	c.JSON(http.StatusOK, toUserResponse(user))
}

func (h *UserHandler) List(c *gin.Context) {
	sess, ok := middleware.RequireSession(c)
	if !ok {
		return
	}

	users, err := h.userService.List(c.Request.Context(), sess)
	if err != nil {
		fail(c, "User.List", err, nil)
		return
	}
	c.JSON(http.StatusOK, toUserResponses(users))
}

// ListExecutors returns the users that can be invited to projects.
func (h *UserHandler) ListExecutors(c *gin.Context) {
	sess, ok := middleware.RequireSession(c)
	if !ok {
		return
	}

	users, err := h.userService.ListExecutors(c.Request.Context(), sess)
	if err != nil {
		fail(c, "User.ListExecutors", err, nil)
		return
	}
	c.JSON(http.StatusOK, toUserResponses(users))
}

func (h *UserHandler) UpdateRoles(c *gin.Context) {
	sess, ok := middleware.RequireSession(c)
	if !ok {
		return
	}

	var req models.UpdateRolesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	userID := c.Param("id")
	user, err := h.userService.UpdateRoles(c.Request.Context(), sess, userID, req.Roles)
	if err != nil {
		fail(c, "User.UpdateRoles", err, map[string]interface{}{"targetUserID": userID, "roles": req.Roles})
		return
	}
	c.JSON(http.StatusOK, toUserResponse(user))
}

func toUserResponses(users []*repository.User) []models.UserResponse {
	return lo.Map(users, func(u *repository.User, _ int) models.UserResponse {
		return toUserResponse(u)
	})
}
