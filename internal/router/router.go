// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ideabay/ideabay-backend/internal/config"
	"github.com/ideabay/ideabay-backend/internal/handlers"
	"github.com/ideabay/ideabay-backend/internal/middleware"
	"github.com/ideabay/ideabay-backend/internal/services"
	"github.com/ideabay/ideabay-backend/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config) *gin.Engine {
	// Initialize services
	gateway := services.NewSideShiftClient(cfg.SideShift)
	scorer := services.NewAIService(cfg.AI)
	storageService, _ := services.NewStorageService(cfg)

	authService := services.NewAuthService(db, cfg)
	userService := services.NewUserService(db)
	ideaService := services.NewIdeaService(db, scorer)
	purchaseService := services.NewPurchaseService(db, gateway, cfg)
	webhookService := services.NewWebhookService(purchaseService, gateway)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService, storageService)
	ideaHandler := handlers.NewIdeaHandler(ideaService, purchaseService)
	paymentHandler := handlers.NewPaymentHandler(purchaseService, webhookService)
	webhookHandler := handlers.NewWebhookHandler(webhookService)
	adminHandler := handlers.NewAdminHandler(purchaseService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg.Frontend.BaseURL))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// Settlement webhooks are registered before the rate limiter; throttling
	// the payment provider's deliveries loses settlements. The provider
	// authenticates deliveries out of band, so no bearer auth either.
	r.POST("/v1/webhooks/sideshift", webhookHandler.HandleSideShift)

	// API v1 routes
	v1 := r.Group("/v1")
	v1.Use(middleware.GeneralRateLimit())
	{
		// Authentication routes
		auth := v1.Group("/auth")
		auth.Use(middleware.AuthRateLimit())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.Refresh)
			auth.GET("/me", middleware.AuthRequired(), authHandler.GetProfile)
		}

		// User routes
		users := v1.Group("/users")
		{
			users.GET("/:id/public", userHandler.GetPublicProfile)
			users.PUT("/profile", middleware.AuthRequired(), userHandler.UpdateProfile)
		}

		// Idea routes
		ideas := v1.Group("/ideas")
		{
			ideas.GET("", ideaHandler.GetIdeas)
			ideas.GET("/mine", middleware.AuthRequired(), ideaHandler.GetMyIdeas)
			ideas.GET("/:id", middleware.OptionalAuth(), ideaHandler.GetIdea)
			ideas.POST("", middleware.AuthRequired(), ideaHandler.CreateIdea)
		}

		// Payment routes
		payments := v1.Group("/payments")
		payments.Use(middleware.AuthRequired())
		{
			payments.POST("/checkout", paymentHandler.CreateCheckout)
			payments.GET("/purchases", paymentHandler.GetPurchaseHistory)
			payments.GET("/shifts/:shiftId/purchase", paymentHandler.GetShiftPurchase)
		}

		// Upload routes
		uploads := v1.Group("/uploads")
		uploads.Use(middleware.AuthRequired())
		{
			uploads.POST("/image", middleware.UploadRateLimit(), userHandler.UploadImage)
		}

		// Admin routes
		admin := v1.Group("/admin")
		admin.Use(middleware.AuthRequired())
		{
			admin.GET("/commission", adminHandler.GetCommissionSummary)
		}

		// Category routes
		v1.GET("/categories", ideaHandler.GetCategories)
	}

	return r
}
