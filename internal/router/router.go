package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/synergy-dev/synergy/internal/auth"
	"github.com/synergy-dev/synergy/internal/handlers"
	"github.com/synergy-dev/synergy/internal/middleware"
	"github.com/synergy-dev/synergy/internal/services"
	"github.com/synergy-dev/synergy/internal/types"
)

// Dependencies carries everything the router needs; services are constructed
// here so main stays a thin wiring layer.
type Dependencies struct {
	DB     *gorm.DB
	Logger *logrus.Logger
	Tokens *auth.Manager
}

func New(deps Dependencies) *gin.Engine {
	memberships := services.NewMembershipService(deps.DB)
	notifications := services.NewNotificationService(deps.DB, deps.Logger)
	projects := services.NewProjectService(deps.DB, memberships, notifications)
	tasks := services.NewTaskService(deps.DB, memberships, notifications)
	users := services.NewUserService(deps.DB)

	authHandler := handlers.NewAuthHandler(users, deps.Tokens)
	projectHandler := handlers.NewProjectHandler(projects)
	taskHandler := handlers.NewTaskHandler(tasks)
	notificationHandler := handlers.NewNotificationHandler(notifications)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID(deps.Logger))

	r.Use(cors.New(cors.Config{
		AllowOrigins:     types.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	authenticated := middleware.Auth(deps.Tokens, deps.DB)

	api := r.Group("/api/v1")
	{
		api.GET("/health", handlers.HealthCheck)

		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.GET("/me", authenticated, authHandler.Me)
			authGroup.PUT("/profile", authenticated, authHandler.UpdateProfile)
		}

		projectGroup := api.Group("/projects", authenticated)
		{
			projectGroup.POST("", projectHandler.Create)
			projectGroup.GET("", projectHandler.List)
			projectGroup.GET("/:project_id", projectHandler.Get)
			projectGroup.PUT("/:project_id", projectHandler.Update)
			projectGroup.DELETE("/:project_id", projectHandler.Delete)

			projectGroup.POST("/:project_id/members", projectHandler.AddMember)
			projectGroup.DELETE("/:project_id/members/:user_id", projectHandler.RemoveMember)
		}

		taskGroup := api.Group("/tasks", authenticated)
		{
			taskGroup.POST("", taskHandler.Create)
			taskGroup.GET("", taskHandler.List)
			taskGroup.GET("/:task_id", taskHandler.Get)
			taskGroup.PUT("/:task_id", taskHandler.Update)
			taskGroup.PATCH("/:task_id/status", taskHandler.UpdateStatus)
			taskGroup.DELETE("/:task_id", taskHandler.Delete)
		}

		notificationGroup := api.Group("/notifications", authenticated)
		{
			notificationGroup.GET("", notificationHandler.List)
			notificationGroup.GET("/unread-count", notificationHandler.UnreadCount)
			notificationGroup.PUT("/:notification_id/read", notificationHandler.MarkRead)
			notificationGroup.PUT("/read-all", notificationHandler.MarkAllRead)
		}
	}

	return r
}
