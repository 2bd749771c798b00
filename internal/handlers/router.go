package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prodbrandon/CSE360HW4-sub000/internal/cache"
	"github.com/prodbrandon/CSE360HW4-sub000/internal/models"
	"github.com/prodbrandon/CSE360HW4-sub000/internal/repositories"
	"github.com/prodbrandon/CSE360HW4-sub000/internal/services"
	"github.com/prodbrandon/CSE360HW4-sub000/internal/utils"
)

type HandlerManager struct {
	authHandler       *AuthHandler
	userHandler       *UserHandler
	contentHandler    *ContentHandler
	reviewHandler     *ReviewHandler
	promotionHandler  *PromotionHandler
	messageHandler    *MessageHandler
	moderationHandler *ModerationHandler
	authMiddleware    *SessionAuthMiddleware
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	sessions *cache.CacheHelper,
	userRepo repositories.UserRepository,
	logger utils.Logger,
) *HandlerManager {
	authMiddleware := NewSessionAuthMiddleware(sessions, userRepo)

	return &HandlerManager{
		authHandler:       NewAuthHandler(serviceManager.Users(), authMiddleware, logger),
		userHandler:       NewUserHandler(serviceManager.Users(), logger),
		contentHandler:    NewContentHandler(serviceManager.Content(), logger),
		reviewHandler:     NewReviewHandler(serviceManager.Reviews(), logger),
		promotionHandler:  NewPromotionHandler(serviceManager.Promotions(), logger),
		messageHandler:    NewMessageHandler(serviceManager.Messages(), logger),
		moderationHandler: NewModerationHandler(serviceManager.Moderation(), serviceManager.Export(), logger),
		authMiddleware:    authMiddleware,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "qa-service",
		})
	})

	// Public auth routes
	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/register", hm.authHandler.Register)
		auth.POST("/login", hm.authHandler.Login)
		auth.POST("/reset-password", hm.authHandler.ResetPassword)
	}

	// API v1 routes with authentication
	v1 := router.Group("/api/v1")
	v1.Use(hm.authMiddleware.AuthMiddleware())
	{
		v1.POST("/auth/logout", hm.authHandler.Logout)

		// User and account routes
		users := v1.Group("/users")
		{
			users.GET("/me", hm.userHandler.GetCurrentUser)
			users.GET("", hm.userHandler.ListUsers)
			users.GET("/:id", hm.userHandler.GetUser)
			users.GET("/:id/reviewer", hm.reviewHandler.GetReviewerProfile)

			// Account administration - Admins only
			users.PUT("/:id/roles", hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin), hm.userHandler.UpdateRoles)
			users.POST("/:id/one-time-password", hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin), hm.userHandler.SetOneTimePassword)
			users.DELETE("/:id", hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin), hm.userHandler.DeleteUser)
		}

		v1.POST("/invitations", hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin), hm.userHandler.CreateInvitation)

		// Question and answer routes
		questions := v1.Group("/questions")
		{
			questions.POST("", hm.contentHandler.CreateQuestion)
			questions.GET("", hm.contentHandler.ListQuestions)
			questions.GET("/search", hm.contentHandler.SearchQuestions)
			questions.GET("/:id", hm.contentHandler.GetQuestion)
			questions.PUT("/:id", hm.contentHandler.UpdateQuestion)
			questions.DELETE("/:id", hm.contentHandler.DeleteQuestion)

			questions.POST("/:id/answers", hm.contentHandler.CreateAnswer)
			questions.GET("/:id/answers", hm.contentHandler.GetAnswers)

			questions.POST("/:id/resolve/:answer_id", hm.contentHandler.MarkResolved)
			questions.POST("/:id/resolve", hm.contentHandler.MarkResolvedWithoutAnswer)
			questions.DELETE("/:id/resolve", hm.contentHandler.UnmarkResolved)

			questions.GET("/:id/reviews", hm.reviewHandler.GetReviewsForQuestion)
		}

		answers := v1.Group("/answers")
		{
			answers.PUT("/:id", hm.contentHandler.UpdateAnswer)
			answers.DELETE("/:id", hm.contentHandler.DeleteAnswer)
			answers.PUT("/:id/clarification", hm.contentHandler.SetClarification)
			answers.GET("/:id/reviews", hm.reviewHandler.GetReviewsForAnswer)
		}

		// Review routes - creation gated on the reviewer role
		reviews := v1.Group("/reviews")
		{
			reviews.POST("", hm.authMiddleware.RequireRoleMiddleware(models.RoleReviewer), hm.reviewHandler.CreateReview)
			reviews.GET("/:id", hm.reviewHandler.GetReview)
			reviews.PUT("/:id", hm.authMiddleware.RequireRoleMiddleware(models.RoleReviewer), hm.reviewHandler.UpdateReview)
			reviews.DELETE("/:id", hm.authMiddleware.RequireRoleMiddleware(models.RoleReviewer), hm.reviewHandler.DeleteReview)
		}

		reviewers := v1.Group("/reviewers")
		{
			reviewers.GET("/:id/reviews", hm.reviewHandler.GetReviewsByReviewer)
			reviewers.PUT("/:id/weight", hm.authMiddleware.RequireRoleMiddleware(models.RoleInstructor, models.RoleStaff, models.RoleAdmin), hm.reviewHandler.UpdateWeight)
		}

		// Reviewer promotion workflow
		promotions := v1.Group("/promotions")
		{
			promotions.POST("", hm.authMiddleware.RequireRoleMiddleware(models.RoleStudent), hm.promotionHandler.SubmitRequest)
			promotions.GET("/mine", hm.promotionHandler.GetMyRequests)
			promotions.GET("/pending", hm.authMiddleware.RequireRoleMiddleware(models.RoleInstructor, models.RoleStaff, models.RoleAdmin), hm.promotionHandler.ListPending)
			promotions.POST("/:id/approve", hm.authMiddleware.RequireRoleMiddleware(models.RoleInstructor, models.RoleStaff, models.RoleAdmin), hm.promotionHandler.Approve)
			promotions.POST("/:id/reject", hm.authMiddleware.RequireRoleMiddleware(models.RoleInstructor, models.RoleStaff, models.RoleAdmin), hm.promotionHandler.Reject)
		}

		// Private messages
		messages := v1.Group("/messages")
		{
			messages.POST("", hm.messageHandler.SendMessage)
			messages.GET("", hm.messageHandler.ListMessages)
			messages.GET("/unread", hm.messageHandler.GetUnread)
			messages.PUT("/:id/read", hm.messageHandler.MarkRead)
		}

		// Moderation - Instructors, Staff and Admins only
		moderation := v1.Group("/moderation")
		moderation.Use(hm.authMiddleware.RequireRoleMiddleware(models.RoleInstructor, models.RoleStaff, models.RoleAdmin))
		{
			moderation.DELETE("/questions/:id", hm.moderationHandler.DeleteQuestion)
			moderation.DELETE("/answers/:id", hm.moderationHandler.DeleteAnswer)
			moderation.PUT("/answers/:id/clarification", hm.moderationHandler.ToggleClarification)
			moderation.DELETE("/reviews/:id", hm.moderationHandler.DeleteReview)
			moderation.PUT("/reviews/:id", hm.moderationHandler.EditReview)
		}

		// Spreadsheet exports - Staff and Admins only
		exports := v1.Group("/exports")
		exports.Use(hm.authMiddleware.RequireRoleMiddleware(models.RoleStaff, models.RoleAdmin))
		{
			exports.GET("/users", hm.moderationHandler.ExportUsers)
			exports.GET("/questions", hm.moderationHandler.ExportQuestions)
		}
	}
}
