package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Marga-Ghale/taska-backend/internal/api/handlers"
	"github.com/Marga-Ghale/taska-backend/internal/api/middleware"
	"github.com/Marga-Ghale/taska-backend/internal/config"
	"github.com/Marga-Ghale/taska-backend/internal/metrics"
	"github.com/Marga-Ghale/taska-backend/internal/service"
	"github.com/Marga-Ghale/taska-backend/internal/socket"
)

// RouterDeps is what NewRouter wires into the HTTP surface. Hub may be nil,
// in which case the websocket route is not registered.
type RouterDeps struct {
	Config   *config.Config
	Services *service.Services
	Hub      *socket.Hub
	// Reported by /health
	DatabaseStatus string
	CacheStatus    string
}

func NewRouter(deps RouterDeps) *gin.Engine {
	cfg := deps.Config
	services := deps.Services
	h := handlers.NewHandlers(services)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.Metrics())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		wsClients := 0
		if deps.Hub != nil {
			wsClients = deps.Hub.GetConnectedClientsCount()
		}
		c.JSON(http.StatusOK, gin.H{
			"status":     "healthy",
			"timestamp":  time.Now(),
			"database":   deps.DatabaseStatus,
			"cache":      deps.CacheStatus,
			"ws_clients": wsClients,
		})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group("/api")
	{
		// ============================================
		// Public routes (no auth required)
		// ============================================
		auth := api.Group("/auth")
		{
			auth.POST("/register", h.Auth.Register)
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.RefreshToken)
			auth.POST("/logout", h.Auth.Logout)
		}

		// The websocket authenticates itself from the query or header token.
		if deps.Hub != nil {
			wsHandler := socket.NewHandler(deps.Hub, services.Auth)
			api.GET("/ws", wsHandler.HandleWebSocket)
		}

		// ============================================
		// Protected routes (require auth middleware)
		// ============================================
		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware(services.Auth))
		{
			users := protected.Group("/users")
			{
				users.GET("", h.User.List)
				users.GET("/me", h.User.GetCurrentUser)
				users.PUT("/me", h.User.UpdateCurrentUser)
				users.GET("/executors", h.User.ListExecutors)
				users.PUT("/:id/roles", h.User.UpdateRoles)
			}

			projects := protected.Group("/projects")
			{
				projects.GET("", h.Project.List)
				projects.POST("", h.Project.Create)
				projects.GET("/:id", h.Project.Get)
				projects.PUT("/:id", h.Project.Update)
				projects.DELETE("/:id", h.Project.Delete)

				projects.POST("/:id/members", h.Project.AddMember)
				projects.DELETE("/:id/members/:userId", h.Project.RemoveMember)

				projects.GET("/:id/board", h.Task.Board)
				projects.GET("/:id/tasks", h.Task.List)
				projects.POST("/:id/tasks", h.Task.Create)
				projects.GET("/:id/tasks/:taskId", h.Task.Get)
				projects.PUT("/:id/tasks/:taskId", h.Task.Update)
				projects.DELETE("/:id/tasks/:taskId", h.Task.Delete)

				projects.GET("/:id/tasks/:taskId/comments", h.Comment.List)
				projects.POST("/:id/tasks/:taskId/comments", h.Comment.Create)
				projects.DELETE("/:id/tasks/:taskId/comments/:commentId", h.Comment.Delete)

				projects.POST("/:id/send-invitation", h.Invitation.Send)
				projects.POST("/:id/team-invitations", h.Invitation.SendTeam)
				projects.GET("/:id/invitations", h.Invitation.ListByProject)
			}

			invitations := protected.Group("/invitations")
			{
				invitations.GET("", h.Invitation.ListMine)
				invitations.GET("/sent", h.Invitation.ListSent)
				invitations.GET("/:id", h.Invitation.Get)
				invitations.POST("/:id/accept", h.Invitation.Accept)
				invitations.POST("/:id/decline", h.Invitation.Decline)
			}

			protected.POST("/team-invitations/:id/respond", h.Invitation.Respond)

			applications := protected.Group("/applications")
			{
				applications.GET("", h.Application.List)
				applications.POST("", h.Application.Submit)
				applications.GET("/:id", h.Application.Get)
				applications.POST("/:id/review", h.Application.Review)
			}
		}
	}

	return r
}
