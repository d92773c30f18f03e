package main

import (
	"fmt"
	"net/http"
	"os"

	"kvitto/internal/config"
	"kvitto/internal/database"
	"kvitto/internal/handlers"
	"kvitto/internal/logger"
	"kvitto/internal/middleware"
	"kvitto/internal/services"
	"kvitto/internal/validator"
	"kvitto/internal/web"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "kvitto/internal/docs" // Import swagger docs
)

// @title           kvitto API
// @version         1.0
// @description     kvitto is a personal expense tracker: receipts with line items, split payments and tags, per-category budgets, notifications, and spending analytics.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey TokenAuth
// @in header
// @name Authorization
// @description Type "Token" followed by a space and your API token.

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	validator.Register()

	// Services
	db := dbManager.DB()
	userService := services.NewUserService(db)
	tokenService := services.NewTokenService(db)
	categoryService := services.NewCategoryService(db)
	paymentMethodService := services.NewPaymentMethodService(db)
	tagService := services.NewTagService(db)
	receiptService := services.NewReceiptService(db)
	budgetService := services.NewBudgetService(db)
	notificationService := services.NewNotificationService(db)

	// API handlers
	authHandler := handlers.NewAuthHandler(userService, tokenService)
	userHandler := handlers.NewUserHandler(userService)
	categoryHandler := handlers.NewCategoryHandler(categoryService)
	paymentMethodHandler := handlers.NewPaymentMethodHandler(paymentMethodService)
	tagHandler := handlers.NewTagHandler(tagService)
	receiptHandler := handlers.NewReceiptHandler(receiptService)
	itemHandler := handlers.NewReceiptItemHandler(receiptService)
	paymentHandler := handlers.NewReceiptPaymentHandler(receiptService)
	receiptTagHandler := handlers.NewReceiptTagHandler(receiptService)
	budgetHandler := handlers.NewBudgetHandler(budgetService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	router.Use(cors.New(corsConfig))

	// Server-rendered pages
	templates, err := web.Templates()
	if err != nil {
		return fmt.Errorf("failed to parse templates: %w", err)
	}
	router.SetHTMLTemplate(templates)
	webHandler := web.NewHandler(userService, receiptService, budgetService, categoryService, notificationService)
	webHandler.RegisterRoutes(router)

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 group
	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.TokenAuth(tokenService))

	protected.POST("/auth/logout", authHandler.Logout)

	users := protected.Group("/users")
	users.GET("/profile", userHandler.Profile)
	users.PUT("/update_profile", userHandler.UpdateProfile)
	users.PATCH("/update_profile", userHandler.UpdateProfile)
	users.POST("/deactivate", userHandler.Deactivate)

	categories := protected.Group("/categories")
	categories.POST("", categoryHandler.Create)
	categories.GET("", categoryHandler.List)
	categories.GET("/:id", categoryHandler.Get)
	categories.PUT("/:id", categoryHandler.Update)
	categories.DELETE("/:id", categoryHandler.Delete)

	methods := protected.Group("/payment-methods")
	methods.POST("", paymentMethodHandler.Create)
	methods.GET("", paymentMethodHandler.List)
	methods.GET("/:id", paymentMethodHandler.Get)
	methods.PUT("/:id", paymentMethodHandler.Update)
	methods.DELETE("/:id", paymentMethodHandler.Delete)

	tags := protected.Group("/tags")
	tags.POST("", tagHandler.Create)
	tags.GET("", tagHandler.List)
	tags.GET("/:id", tagHandler.Get)
	tags.PUT("/:id", tagHandler.Update)
	tags.DELETE("/:id", tagHandler.Delete)

	receipts := protected.Group("/receipts")
	receipts.POST("", receiptHandler.Create)
	receipts.GET("", receiptHandler.List)
	receipts.GET("/analytics", receiptHandler.Analytics)
	receipts.GET("/:id", receiptHandler.Get)
	receipts.PUT("/:id", receiptHandler.Update)
	receipts.DELETE("/:id", receiptHandler.Delete)
	receipts.POST("/:id/items", itemHandler.Create)
	receipts.POST("/:id/payments", paymentHandler.Create)
	receipts.POST("/:id/tags", receiptTagHandler.Attach)

	items := protected.Group("/receipt-items")
	items.GET("", itemHandler.List)
	items.GET("/:id", itemHandler.Get)
	items.PUT("/:id", itemHandler.Update)
	items.DELETE("/:id", itemHandler.Delete)

	payments := protected.Group("/receipt-payments")
	payments.GET("", paymentHandler.List)
	payments.GET("/:id", paymentHandler.Get)
	payments.PUT("/:id", paymentHandler.Update)
	payments.DELETE("/:id", paymentHandler.Delete)

	receiptTags := protected.Group("/receipt-tags")
	receiptTags.GET("", receiptTagHandler.List)
	receiptTags.GET("/:id", receiptTagHandler.Get)
	receiptTags.DELETE("/:id", receiptTagHandler.Detach)

	budgets := protected.Group("/budgets")
	budgets.POST("", budgetHandler.Create)
	budgets.GET("", budgetHandler.List)
	budgets.GET("/:id", budgetHandler.Get)
	budgets.PUT("/:id", budgetHandler.Update)
	budgets.DELETE("/:id", budgetHandler.Delete)

	notifications := protected.Group("/notifications")
	notifications.GET("", notificationHandler.List)
	notifications.POST("/:id/read", notificationHandler.MarkRead)
	notifications.POST("/read-all", notificationHandler.MarkAllRead)

	log.Infof("Starting kvitto server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
