package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"pennypilot/internal/config"
	"pennypilot/internal/database"
	"pennypilot/internal/handlers"
	"pennypilot/internal/logger"
	"pennypilot/internal/middleware"
	"pennypilot/internal/services"
	"pennypilot/internal/validator"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "pennypilot/internal/docs" // Import swagger docs
)

// @title           PennyPilot API
// @version         1.0
// @description     PennyPilot is a personal finance API for tracking transactions, category budgets, savings goals, and recurring transactions, with receipt scanning.

// @host      localhost:8080
// @BasePath  /api/v1

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize database configuration
	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	// Run migrations
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	validator.Register()

	// Initialize services
	db := dbManager.DB()
	transactionService := services.NewTransactionService(db)
	budgetService := services.NewBudgetService(db, transactionService)
	goalService := services.NewGoalService(db)
	recurringService := services.NewRecurringService(db)

	// Receipt analysis is optional; without a configured model or API key
	// the endpoint reports 503 and everything else keeps working.
	var analyzer services.ReceiptAnalyzer
	if appConfig.ReceiptModel != "" {
		analyzer, err = services.NewGeminiAnalyzer(context.Background(), appConfig.ReceiptModel)
		if err != nil {
			log.Warnf("Receipt analyzer disabled: %v", err)
			analyzer = nil
		}
	}
	receiptService := services.NewReceiptService(db, analyzer)

	// Initialize handlers
	transactionHandler := handlers.NewTransactionHandler(transactionService)
	budgetHandler := handlers.NewBudgetHandler(budgetService)
	goalHandler := handlers.NewGoalHandler(goalService)
	recurringHandler := handlers.NewRecurringHandler(recurringService)
	receiptHandler := handlers.NewReceiptHandler(receiptService)

	// Catch up on recurring transactions that came due while the server was
	// down, then keep generating daily.
	go services.StartGenerationScheduler(recurringService)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 group
	v1 := router.Group("/api/v1")

	// Transaction routes
	transactions := v1.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.GetTransactions)
	transactions.GET("/:id", transactionHandler.GetTransaction)
	transactions.PUT("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)
	transactions.POST("/:id/items", transactionHandler.AddLineItem)
	transactions.GET("/:id/items", transactionHandler.GetLineItems)

	// Line item routes
	lineItems := v1.Group("/line-items")
	lineItems.PUT("/:id", transactionHandler.UpdateLineItem)
	lineItems.DELETE("/:id", transactionHandler.DeleteLineItem)

	// Budget routes
	budgets := v1.Group("/budgets")
	budgets.POST("", budgetHandler.SetBudget)
	budgets.GET("", budgetHandler.GetBudgets)
	budgets.GET("/progress", budgetHandler.GetBudgetProgress)
	budgets.GET("/summary", budgetHandler.GetMonthlySummary)
	budgets.GET("/alerts", budgetHandler.GetBudgetAlerts)
	budgets.DELETE("/:id", budgetHandler.DeleteBudget)

	// Goal routes
	goals := v1.Group("/goals")
	goals.POST("", goalHandler.CreateGoal)
	goals.GET("", goalHandler.GetGoals)
	goals.GET("/:id", goalHandler.GetGoal)
	goals.PUT("/:id", goalHandler.UpdateGoal)
	goals.POST("/:id/contributions", goalHandler.AddContribution)
	goals.DELETE("/:id", goalHandler.DeleteGoal)

	// Recurring transaction routes
	recurring := v1.Group("/recurring")
	recurring.POST("", recurringHandler.CreateRecurring)
	recurring.GET("", recurringHandler.GetRecurring)
	recurring.GET("/preview", recurringHandler.Preview)
	recurring.POST("/generate", recurringHandler.Generate)
	recurring.GET("/:id", recurringHandler.GetRecurringByID)
	recurring.PUT("/:id", recurringHandler.UpdateRecurring)
	recurring.PATCH("/:id/active", recurringHandler.SetActive)
	recurring.DELETE("/:id", recurringHandler.DeleteRecurring)

	// Receipt routes
	receipts := v1.Group("/receipts")
	receipts.POST("/analyze", receiptHandler.AnalyzeReceipt)
	receipts.POST("/import", receiptHandler.ImportReceipt)

	log.Infof("Starting PennyPilot backend server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
