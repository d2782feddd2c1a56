package server

import (
	"net/http"
	"time"

	"anoa.com/learnhub/internal/entity"
	"anoa.com/learnhub/internal/middleware"
	"anoa.com/learnhub/pkg/ratelimiter"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func registerRoutes(router *gin.Engine, authMiddleware *middleware.AuthMiddleware, redisClient *redis.Client, h handlers) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")

	// Public routes (no auth required)
	auth := api.Group("/auth")
	{
		auth.POST("/register", ratelimiter.PerIP(redisClient, "register", 5, time.Hour), h.auth.Register)
		auth.POST("/login", ratelimiter.PerIP(redisClient, "login", 10, time.Minute), h.auth.Login)
		auth.GET("/google/login", h.auth.GoogleLogin)
		auth.GET("/google/callback", h.auth.GoogleCallback)
	}

	api.POST("/payments/webhook", h.payment.Webhook)
	api.GET("/certificates/verify/:number", h.certificate.Verify)

	// Catalog routes: anonymous callers allowed, a token widens what they see
	catalog := api.Group("")
	catalog.Use(authMiddleware.OptionalAuth())
	{
		catalog.GET("/courses", h.course.List)
		catalog.GET("/courses/:id", h.course.GetBySlug)
		catalog.GET("/courses/:id/lessons", h.lesson.ListByCourse)
		catalog.GET("/lessons/:id", h.lesson.Get)
		catalog.GET("/search/courses", h.course.Search)
	}

	// Protected routes
	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		adminGroup := protected.Group("/admin")
		adminGroup.Use(authMiddleware.RequireRoles(entity.RoleAdmin))
		{
			adminGroup.POST("/users", h.admin.CreateUser)
			adminGroup.GET("/users", h.admin.GetAllUsers)
			adminGroup.PUT("/users/:id", h.admin.UpdateUser)
			adminGroup.DELETE("/users/:id", h.admin.DeleteUser)
			adminGroup.PUT("/courses/:id/assessors", h.course.SetAssessors)
			adminGroup.GET("/activity", h.activity.List)
		}

		assessorGroup := protected.Group("/assessor")
		assessorGroup.Use(authMiddleware.RequireRoles(entity.RoleAssessor, entity.RoleAdmin))
		{
			assessorGroup.GET("/certificates", h.certificate.ListForReview)
			assessorGroup.POST("/certificates/:id/approve", h.certificate.Approve)
			assessorGroup.POST("/certificates/:id/reject", h.certificate.Reject)
		}

		// Profile
		protected.GET("/profile/me", h.profile.GetCurrentProfile)
		protected.PUT("/profile", h.profile.UpdateProfile)

		// Courses
		protected.POST("/courses", h.course.Create)
		protected.PUT("/courses/:id", h.course.Update)
		protected.DELETE("/courses/:id", h.course.Delete)
		protected.POST("/courses/:id/publish", h.course.Publish)
		protected.POST("/courses/:id/archive", h.course.Archive)
		protected.POST("/courses/:id/thumbnail", h.course.UploadThumbnail)

		// Lessons
		protected.POST("/courses/:id/lessons", h.lesson.Create)
		protected.PUT("/courses/:id/lessons/order", h.lesson.Reorder)
		protected.PUT("/lessons/:id", h.lesson.Update)
		protected.DELETE("/lessons/:id", h.lesson.Delete)

		// Enrollment and progress
		protected.POST("/courses/:id/enroll", h.enrollment.Enroll)
		protected.GET("/courses/:id/enrollments", h.enrollment.ListByCourse)
		protected.GET("/enrollments/me", h.enrollment.ListMine)
		protected.DELETE("/enrollments/:id", h.enrollment.Cancel)
		protected.POST("/lessons/:id/complete", h.enrollment.CompleteLesson)

		// Quizzes
		protected.POST("/lessons/:id/quiz/attempts", h.quiz.Submit)
		protected.GET("/lessons/:id/quiz/attempts", h.quiz.ListAttempts)
		protected.POST("/lessons/:id/quiz/generate", h.quiz.Generate)

		// Certificates
		protected.POST("/courses/:id/certificate", h.certificate.Request)
		protected.GET("/certificates/me", h.certificate.ListMine)

		// Payments
		protected.POST("/courses/:id/payment-intents", h.payment.CreateIntent)
		protected.GET("/payments/me", h.payment.ListMine)

		// Discussions
		protected.POST("/courses/:id/threads", h.discussion.CreateThread)
		protected.GET("/courses/:id/threads", h.discussion.ListThreads)
		protected.GET("/threads/:id", h.discussion.GetThread)
		protected.DELETE("/threads/:id", h.discussion.DeleteThread)
		protected.POST("/threads/:id/replies", h.discussion.Reply)
		protected.POST("/threads/:id/pin", h.discussion.TogglePin)
		protected.DELETE("/replies/:id", h.discussion.DeleteReply)

		// Notifications
		protected.GET("/notifications", h.notification.GetNotifications)
		protected.GET("/notifications/unread-count", h.notification.UnreadCount)
		protected.PUT("/notifications/:id/read", h.notification.MarkAsRead)
		protected.PUT("/notifications/read-all", h.notification.MarkAllAsRead)
		protected.GET("/notifications/ws", h.notification.HandleWebSocket)

		protected.POST("/upload", h.attachment.UploadAttachment)
		protected.GET("/dashboard", h.dashboard.Get)
	}
}
