package main

import (
	"github.com/brightpath/opsconsole/backend/internal/handlers"
	"github.com/brightpath/opsconsole/backend/internal/middleware"
	"github.com/brightpath/opsconsole/backend/internal/models"
	"github.com/brightpath/opsconsole/backend/internal/services"
	"github.com/brightpath/opsconsole/backend/pkg/logger"
	"github.com/gin-gonic/gin"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, svc *appServices) {
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.CORS())

	loginLimiter := middleware.NewRateLimiter(5, 10)

	healthHandler := handlers.NewHealthHandler()
	r.GET("/health", healthHandler.CheckHealth)

	api := r.Group("/api")
	{
		// Auth routes (public, rate limited)
		auth := api.Group("/auth", loginLimiter.Middleware())
		{
			auth.POST("/login", svc.authHandler.Login)
			auth.POST("/refresh", svc.authHandler.Refresh)
			auth.GET("/config", svc.authHandler.GetAuthConfig)
		}

		// SSE events (public route with internal token validation)
		sseHandler := handlers.NewSSEHandler(services.GetSSEHub())
		api.GET("/events/board", sseHandler.StreamBoardEvents)

		// Protected routes
		protected := api.Group("")
		protected.Use(middleware.AuthRequired())
		{
			protected.GET("/auth/me", svc.authHandler.GetCurrentUser)
			protected.POST("/auth/logout", svc.authHandler.Logout)
			protected.PUT("/auth/password", svc.authHandler.ChangePassword)

			dashboardHandler := handlers.NewDashboardHandler(models.GetDB())
			protected.GET("/dashboard/stats", dashboardHandler.GetStats)

			// Projects: reads for everyone in scope, moves checked by
			// capability inside the service
			projectHandler := handlers.NewProjectHandler(models.GetDB())
			protected.GET("/projects", projectHandler.List)
			protected.GET("/projects/columns", projectHandler.Columns)
			protected.GET("/projects/:id", projectHandler.Get)
			protected.PUT("/projects/:id/status", projectHandler.ChangeStatus)
			protected.GET("/projects/:id/assignable-pool", projectHandler.AssignablePool)

			assignmentHandler := handlers.NewAssignmentHandler(models.GetDB(), svc.queue)
			protected.GET("/projects/:id/assignments", assignmentHandler.List)
			protected.POST("/projects/:id/assignments", assignmentHandler.Create)
			protected.PUT("/projects/:id/assignments/:userID", assignmentHandler.Update)
			protected.DELETE("/projects/:id/assignments/:userID", assignmentHandler.Remove)
			protected.GET("/assignments/mine", assignmentHandler.ListMine)

			delegationHandler := handlers.NewDelegationHandler(models.GetDB(), svc.queue)
			protected.GET("/delegations", delegationHandler.List)

			clientHandler := handlers.NewClientHandler(models.GetDB())
			protected.GET("/clients", clientHandler.List)
			protected.GET("/clients/:id", clientHandler.Get)

			userHandler := handlers.NewUserHandler(models.GetDB())
			protected.GET("/users", userHandler.List)
			protected.GET("/users/:id", userHandler.Get)
		}

		// Manager routes (admin or project manager)
		manager := api.Group("")
		manager.Use(middleware.AuthRequired(), middleware.ManagerRequired(), middleware.AuditLog())
		{
			projectHandler := handlers.NewProjectHandler(models.GetDB())
			manager.POST("/projects", projectHandler.Create)
			manager.PUT("/projects/:id", projectHandler.Update)

			clientHandler := handlers.NewClientHandler(models.GetDB())
			manager.POST("/clients", clientHandler.Create)
			manager.PUT("/clients/:id", clientHandler.Update)
		}

		// Admin only routes
		admin := api.Group("")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired(), middleware.AuditLog())
		{
			projectHandler := handlers.NewProjectHandler(models.GetDB())
			admin.DELETE("/projects/:id", projectHandler.Delete)

			delegationHandler := handlers.NewDelegationHandler(models.GetDB(), svc.queue)
			admin.POST("/delegations", delegationHandler.Link)
			admin.DELETE("/delegations/:memberID", delegationHandler.Unlink)

			clientHandler := handlers.NewClientHandler(models.GetDB())
			admin.DELETE("/clients/:id", clientHandler.Delete)
			admin.POST("/clients/:id/delegations", clientHandler.Delegate)
			admin.DELETE("/clients/:id/delegations/:managerID", clientHandler.RevokeDelegation)

			userHandler := handlers.NewUserHandler(models.GetDB())
			admin.POST("/users", userHandler.Create)
			admin.PUT("/users/:id", userHandler.Update)
			admin.DELETE("/users/:id", userHandler.Delete)

			systemLogHandler := handlers.NewSystemLogHandler(models.GetDB())
			admin.GET("/system-logs", systemLogHandler.List)
			admin.GET("/system-logs/modules", systemLogHandler.GetModules)
			admin.GET("/system-logs/retention", systemLogHandler.GetRetention)
			admin.PUT("/system-logs/retention", systemLogHandler.SetRetention)
		}
	}
}
