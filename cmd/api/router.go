package api

import (
	"net/http"

	"timesync-backend/internal/auth/delivery"
	authUsecase "timesync-backend/internal/auth/usecase"
	taskDelivery "timesync-backend/internal/task/delivery"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, authUsecase authUsecase.AuthUsecase, taskHandler *taskDelivery.TaskHandler, settingsHandler *SettingsHandler) {
	authHandler := delivery.NewAuthHandler(authUsecase)
	requireAuth := delivery.AuthMiddleware(authUsecase)

	api := r.Group("/api")
	{
		// Health check (no auth required)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// Auth routes
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
			auth.POST("/firebase", authHandler.FirebaseSignIn)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.POST("/logout", authHandler.Logout)
			auth.POST("/forgot-password", authHandler.ForgotPassword)
			auth.GET("/me", requireAuth, authHandler.Me)
		}

		// FCM routes (protected)
		fcm := api.Group("/fcm")
		fcm.Use(requireAuth)
		{
			fcm.POST("/register", authHandler.RegisterFCMToken)
			fcm.DELETE("/:token", authHandler.UnregisterFCMToken)
		}

		// Task routes (protected)
		tasks := api.Group("/tasks")
		tasks.Use(requireAuth)
		{
			tasks.GET("", taskHandler.GetTasks)
			tasks.POST("", taskHandler.CreateTask)
			tasks.GET("/archived", taskHandler.GetArchived)
			tasks.POST("/migrate", taskHandler.MigrateLegacy)
			tasks.GET("/:id", taskHandler.GetTaskByID)
			tasks.PUT("/:id", taskHandler.UpdateTask)
			tasks.DELETE("/:id", taskHandler.DeleteTask)
			tasks.PATCH("/:id/complete", taskHandler.ToggleCompletion)
			tasks.PATCH("/:id/archive", taskHandler.SetArchived)
			tasks.POST("/:id/reminder", taskHandler.SetReminder)
			tasks.DELETE("/:id/reminder", taskHandler.ClearReminder)
			tasks.POST("/:id/share", taskHandler.ShareTask)
		}

		// Incoming shared tasks (protected)
		shared := api.Group("/shared")
		shared.Use(requireAuth)
		{
			shared.GET("", taskHandler.ListIncoming)
			shared.POST("/:id/accept", taskHandler.AcceptShare)
			shared.POST("/:id/decline", taskHandler.DeclineShare)
		}

		categories := api.Group("/categories")
		categories.Use(requireAuth)
		{
			categories.GET("", taskHandler.ListCategories)
			categories.POST("", taskHandler.RegisterCategory)
		}

		// Dashboard panels (protected)
		api.GET("/analytics", requireAuth, taskHandler.GetAnalytics)
		api.GET("/calendar", requireAuth, taskHandler.GetCalendar)
		api.GET("/dashboard", requireAuth, taskHandler.GetDashboard)
		api.POST("/schedule/suggest", requireAuth, taskHandler.SuggestSchedule)

		// Runtime configuration (protected)
		settings := api.Group("/settings")
		settings.Use(requireAuth)
		{
			settings.GET("/ollama", settingsHandler.GetOllama)
			settings.PUT("/ollama", settingsHandler.UpdateOllama)
			settings.POST("/ollama/test", settingsHandler.TestOllama)
		}
	}
}
