// Package server wires services, handlers and middleware into the HTTP API.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"fintrack/internal/config"
	_ "fintrack/internal/docs" // Import swagger docs
	"fintrack/internal/handlers"
	"fintrack/internal/middleware"
	"fintrack/internal/services"
	"fintrack/internal/validator"
)

// NewRouter builds the API router on top of db.
func NewRouter(db *gorm.DB, cfg *config.Config) *gin.Engine {
	// Initialize services
	userService := services.NewUserService(db)
	incomeService := services.NewIncomeService(db)
	expenseService := services.NewExpenseService(db)
	goalService := services.NewSavingsGoalService(db)
	dashboardService := services.NewDashboardService(userService, incomeService, expenseService, goalService)
	auditService := services.NewAuditService(db)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService, auditService)
	incomeHandler := handlers.NewIncomeHandler(incomeService, auditService)
	expenseHandler := handlers.NewExpenseHandler(expenseService, auditService)
	goalHandler := handlers.NewSavingsGoalHandler(goalService, auditService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService, auditService)

	validator.Register()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.CORS(cfg.CORSOrigin))

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")

	// Public auth routes
	auth := api.Group("/auth")
	auth.POST("/register/", authHandler.Register)
	auth.POST("/login/", authHandler.Login)
	auth.POST("/refresh/", authHandler.RefreshToken)

	// Protected routes
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.POST("/auth/logout/", authHandler.Logout)
	protected.GET("/auth/profile/", authHandler.GetProfile)

	income := protected.Group("/income")
	income.GET("/", incomeHandler.GetIncomes)
	income.POST("/", incomeHandler.CreateIncome)
	income.GET("/monthly_total/", incomeHandler.GetMonthlyTotal)
	income.GET("/:id/", incomeHandler.GetIncome)
	income.PUT("/:id/", incomeHandler.UpdateIncome)
	income.PATCH("/:id/", incomeHandler.PatchIncome)
	income.DELETE("/:id/", incomeHandler.DeleteIncome)

	expenses := protected.Group("/expenses")
	expenses.GET("/", expenseHandler.GetExpenses)
	expenses.POST("/", expenseHandler.CreateExpense)
	expenses.GET("/monthly_total/", expenseHandler.GetMonthlyTotal)
	expenses.GET("/by_category/", expenseHandler.GetByCategory)
	expenses.GET("/:id/", expenseHandler.GetExpense)
	expenses.PUT("/:id/", expenseHandler.UpdateExpense)
	expenses.PATCH("/:id/", expenseHandler.PatchExpense)
	expenses.DELETE("/:id/", expenseHandler.DeleteExpense)

	goals := protected.Group("/savings-goals")
	goals.GET("/", goalHandler.GetGoals)
	goals.POST("/", goalHandler.CreateGoal)
	goals.GET("/:id/", goalHandler.GetGoal)
	goals.PUT("/:id/", goalHandler.UpdateGoal)
	goals.PATCH("/:id/", goalHandler.PatchGoal)
	goals.DELETE("/:id/", goalHandler.DeleteGoal)
	goals.PATCH("/:id/add_funds/", goalHandler.AddFunds)

	protected.GET("/dashboard/", dashboardHandler.GetSummary)
	protected.GET("/activity/", dashboardHandler.GetActivity)

	return router
}
