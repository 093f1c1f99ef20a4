package routes

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mravi/bloodconnect/internal/app/controllers"
	"github.com/mravi/bloodconnect/internal/app/models"
	"github.com/mravi/bloodconnect/internal/app/models/dto"
	"github.com/mravi/bloodconnect/internal/config"
	"github.com/mravi/bloodconnect/internal/middleware"
	"github.com/mravi/bloodconnect/internal/pkg/websocket"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	cfg *config.Config,
	authController *controllers.AuthController,
	requestController *controllers.RequestController,
	studentController *controllers.StudentController,
	notificationController *controllers.NotificationController,
	certificateController *controllers.CertificateController,
	adminController *controllers.AdminController,
	logsController *controllers.LogsController,
	wsHandler *websocket.Handler,
	authMiddleware *middleware.AuthMiddleware,
	rateLimiter *middleware.RateLimiter,
) {
	generalLimit := rateLimiter.Limit("general",
		cfg.RateLimit.GeneralLimit, time.Duration(cfg.RateLimit.GeneralWindow)*time.Second)
	authLimit := rateLimiter.Limit("auth",
		cfg.RateLimit.AuthLimit, time.Duration(cfg.RateLimit.AuthWindow)*time.Second)
	bloodReqLimit := rateLimiter.Limit("requests",
		cfg.RateLimit.BloodReqLimit, time.Duration(cfg.RateLimit.BloodReqWindow)*time.Second)

	api := router.Group("/api")
	api.Use(generalLimit)

	// --- Public auth routes ---
	auth := api.Group("/auth")
	{
		auth.POST("/register", authLimit, authController.Register)
		auth.POST("/login", authLimit, authController.Login)
	}

	// --- Authenticated auth routes ---
	authProtected := api.Group("/auth")
	authProtected.Use(authMiddleware.JWTAuth())
	{
		authProtected.POST("/logout", authController.Logout)
		authProtected.GET("/me", authController.Me)
		authProtected.PUT("/profile", authController.UpdateProfile)
		authProtected.PUT("/password", authController.ChangePassword)
		authProtected.GET("/login-history", authController.LoginHistory)
	}

	// --- Blood request routes ---
	requests := api.Group("/requests")
	{
		// Requestors submit without an account
		requests.POST("", bloodReqLimit, requestController.Create)

		requestsProtected := requests.Group("")
		requestsProtected.Use(authMiddleware.JWTAuth())
		{
			requestsProtected.GET("/:id", requestController.GetByID)

			requestsStudent := requestsProtected.Group("")
			requestsStudent.Use(authMiddleware.RoleRequired(string(models.RoleStudent)))
			{
				requestsStudent.GET("/matching", requestController.Matching)
				requestsStudent.GET("/opt-ins", requestController.MyOptIns)
				requestsStudent.POST("/:id/opt-in", requestController.OptIn)
			}

			requestsAdmin := requestsProtected.Group("")
			requestsAdmin.Use(authMiddleware.RoleRequired(string(models.RoleAdmin)))
			{
				requestsAdmin.GET("", requestController.List)
				requestsAdmin.PUT("/:id/approve", requestController.Approve)
				requestsAdmin.PUT("/:id/reject", requestController.Reject)
				requestsAdmin.PUT("/:id/assign-donor", requestController.AssignDonor)
				requestsAdmin.PUT("/:id/fulfill", requestController.Fulfill)
				requestsAdmin.POST("/:id/complete-donation", requestController.CompleteDonation)
				requestsAdmin.DELETE("/:id", requestController.Delete)
			}
		}
	}

	// --- Student management routes ---
	students := api.Group("/students")
	students.Use(authMiddleware.JWTAuth())
	{
		// Students toggle their own donor availability
		students.PUT("/availability",
			authMiddleware.RoleRequired(string(models.RoleStudent)),
			studentController.UpdateAvailability)

		studentsAdmin := students.Group("")
		studentsAdmin.Use(authMiddleware.RoleRequired(string(models.RoleAdmin)))
		{
			studentsAdmin.POST("", studentController.Create)
			studentsAdmin.GET("", studentController.List)
			studentsAdmin.POST("/upload", studentController.BulkUpload)
			studentsAdmin.GET("/:id", studentController.GetByID)
			studentsAdmin.PUT("/:id", studentController.Update)
			studentsAdmin.DELETE("/:id", studentController.Delete)
		}
	}

	// --- Notification routes ---
	notifications := api.Group("/notifications")
	notifications.Use(authMiddleware.JWTAuth())
	{
		notifications.GET("", notificationController.List)
		notifications.GET("/unread-count", notificationController.UnreadCount)
		notifications.PUT("/read-all", notificationController.MarkAllRead)
		notifications.PUT("/:id/read", notificationController.MarkRead)
	}

	// --- Certificate routes ---
	certificates := api.Group("/certificates")
	certificates.Use(authMiddleware.JWTAuth())
	{
		// Ownership checks inside the handlers: admins see everything,
		// students only their own certificates.
		certificates.GET("/:id", certificateController.GetByID)
		certificates.GET("/:id/download", certificateController.Download)
		certificates.DELETE("/:id", certificateController.Delete)

		certificatesStudent := certificates.Group("")
		certificatesStudent.Use(authMiddleware.RoleRequired(string(models.RoleStudent)))
		{
			certificatesStudent.POST("/request", certificateController.Request)
			certificatesStudent.GET("/my", certificateController.Mine)
		}

		certificatesAdmin := certificates.Group("")
		certificatesAdmin.Use(authMiddleware.RoleRequired(string(models.RoleAdmin)))
		{
			certificatesAdmin.GET("", certificateController.List)
			certificatesAdmin.PUT("/:id/approve", certificateController.Approve)
			certificatesAdmin.PUT("/:id/generate", certificateController.Generate)
			certificatesAdmin.PUT("/:id/approve-generate", certificateController.ApproveAndGenerate)
		}
	}

	// --- Admin routes ---
	admins := api.Group("/admins")
	admins.Use(authMiddleware.JWTAuth(), authMiddleware.RoleRequired(string(models.RoleAdmin)))
	{
		admins.POST("", adminController.Create)
		admins.GET("", adminController.List)
		admins.GET("/dashboard", adminController.DashboardStats)
		admins.GET("/blood-groups", adminController.BloodGroupStats)
		admins.PUT("/:id", adminController.Update)
		admins.DELETE("/:id", adminController.Delete)
	}

	// --- System log routes ---
	logs := api.Group("/logs")
	logs.Use(authMiddleware.JWTAuth(), authMiddleware.RoleRequired(string(models.RoleAdmin)))
	{
		logs.GET("", logsController.List)
		logs.GET("/stats", logsController.Stats)
		logs.GET("/export", logsController.Export)
	}

	// --- WebSocket endpoint ---
	// Browsers cannot set the Authorization header on the upgrade request,
	// so the middleware also accepts the token as a query parameter.
	api.GET("/ws", authMiddleware.JWTAuth(), wsHandler.HandleConnection)

	// Health check endpoint (public)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, dto.APIResponse{
			Data: gin.H{"status": "ok"},
		})
	})
}
