package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"centavo/internal/config"
	"centavo/internal/database"
	"centavo/internal/handlers"
	"centavo/internal/logger"
	"centavo/internal/middleware"
	"centavo/internal/services"
	"centavo/internal/session"
	"centavo/internal/validator"
)

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Named("boot")

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Open the embedded store
	dbManager, err := database.NewManager(appConfig.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	// Create the schema; the app cannot proceed without its store
	if err := dbManager.InitSchema(); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	// Device session: restore a previous login, silently staying anonymous
	// when there is nothing to restore
	sessions := session.NewManager(session.NewFileStore(appConfig.SessionPath))

	// Initialize services
	db := dbManager.DB()
	authService := services.NewAuthService(db, sessions)
	categoryService := services.NewCategoryService(db)
	expenseService := services.NewExpenseService(db)

	if user := authService.Restore(); user != nil {
		log.Infow("session restored", "user_id", user.ID, "username", user.Username)
	}

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, sessions)
	categoryHandler := handlers.NewCategoryHandler(categoryService)
	expenseHandler := handlers.NewExpenseHandler(expenseService)
	summaryHandler := handlers.NewSummaryHandler(expenseService)

	// Custom binding validations
	validator.Register()

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

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
	auth.GET("/session", authHandler.Session)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.POST("/auth/logout", authHandler.Logout)
	protected.GET("/profile", authHandler.GetProfile)

	// Category routes
	categories := protected.Group("/categories")
	categories.GET("", categoryHandler.ListCategories)
	categories.POST("", categoryHandler.CreateCategory)
	categories.PUT("/:id", categoryHandler.RenameCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

	// Expense routes
	expenses := protected.Group("/expenses")
	expenses.POST("", expenseHandler.CreateExpense)
	expenses.GET("", expenseHandler.ListExpenses)
	expenses.GET("/history", expenseHandler.ListHistory)
	expenses.GET("/weeks", expenseHandler.MonthWeekGroups)
	expenses.GET("/total", expenseHandler.MonthlyTotal)
	expenses.PUT("/:id", expenseHandler.UpdateExpense)
	expenses.DELETE("/:id", expenseHandler.DeleteExpense)

	// Summary
	protected.GET("/summary", summaryHandler.GetMonthlySummary)

	log.Infof("Starting Centavo backend server on port %s", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
