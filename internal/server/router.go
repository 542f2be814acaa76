// Package server assembles the HTTP router shared by the API binary and the
// end-to-end tests.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/Willysmile/cash-stuffing/internal/config"
	_ "github.com/Willysmile/cash-stuffing/internal/docs" // swagger spec
	"github.com/Willysmile/cash-stuffing/internal/handlers"
	"github.com/Willysmile/cash-stuffing/internal/metrics"
	"github.com/Willysmile/cash-stuffing/internal/middleware"
	"github.com/Willysmile/cash-stuffing/internal/services"
)

// NewRouter wires services and handlers over db and registers every route.
func NewRouter(db *gorm.DB, cfg *config.Config) *gin.Engine {
	// Services
	userService := services.NewUserService(db)
	bankAccountService := services.NewBankAccountService(db)
	categoryService := services.NewCategoryService(db)
	envelopeService := services.NewEnvelopeService(db)
	payeeService := services.NewPayeeService(db)
	transactionService := services.NewTransactionService(db)
	wishListService := services.NewWishListService(db)
	dashboardService := services.NewDashboardService(db)
	reconcileService := services.NewReconcileService(db)
	auditService := services.NewAuditService(db)

	// Handlers
	authHandler := handlers.NewAuthHandler(userService)
	bankAccountHandler := handlers.NewBankAccountHandler(bankAccountService, transactionService, auditService)
	categoryHandler := handlers.NewCategoryHandler(categoryService, auditService)
	envelopeHandler := handlers.NewEnvelopeHandler(envelopeService, auditService)
	payeeHandler := handlers.NewPayeeHandler(payeeService, auditService)
	transactionHandler := handlers.NewTransactionHandler(transactionService, auditService)
	wishListHandler := handlers.NewWishListHandler(wishListService, auditService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)
	pipelineHandler := handlers.NewPipelineHandler(reconcileService)

	router := gin.New()
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())
	router.Use(cors(cfg.CORSAllowedOrigin))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/metrics", metrics.Handler())
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	// Machine-to-machine routes
	pipeline := v1.Group("/pipeline")
	pipeline.Use(middleware.PipelineAuthMiddleware(cfg.PipelineAPIKey))
	pipeline.POST("/reconcile", pipelineHandler.Reconcile)

	// Protected routes
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware())

	protected.GET("/profile", authHandler.GetProfile)
	protected.GET("/dashboard", dashboardHandler.GetDashboard)

	bankAccounts := protected.Group("/bank-accounts")
	bankAccounts.POST("", bankAccountHandler.CreateBankAccount)
	bankAccounts.GET("", bankAccountHandler.GetBankAccounts)
	bankAccounts.GET("/:id", bankAccountHandler.GetBankAccountByID)
	bankAccounts.PUT("/:id", bankAccountHandler.UpdateBankAccount)
	bankAccounts.DELETE("/:id", bankAccountHandler.DeleteBankAccount)
	bankAccounts.POST("/:id/adjust", bankAccountHandler.AdjustBalance)
	bankAccounts.POST("/:id/recalculate", bankAccountHandler.RecalculateBalance)
	bankAccounts.GET("/:id/transactions", bankAccountHandler.GetBankAccountTransactions)

	categories := protected.Group("/categories")
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("", categoryHandler.GetCategories)
	categories.GET("/tree", categoryHandler.GetCategoryTree)
	categories.GET("/:id", categoryHandler.GetCategoryByID)
	categories.PUT("/:id", categoryHandler.UpdateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

	envelopes := protected.Group("/envelopes")
	envelopes.POST("", envelopeHandler.CreateEnvelope)
	envelopes.GET("", envelopeHandler.GetEnvelopes)
	envelopes.POST("/reallocate", envelopeHandler.Reallocate)
	envelopes.GET("/:id", envelopeHandler.GetEnvelopeByID)
	envelopes.PUT("/:id", envelopeHandler.UpdateEnvelope)
	envelopes.DELETE("/:id", envelopeHandler.DeleteEnvelope)
	envelopes.POST("/:id/adjust", envelopeHandler.AdjustEnvelope)
	envelopes.GET("/:id/history", envelopeHandler.GetEnvelopeHistory)

	payees := protected.Group("/payees")
	payees.POST("", payeeHandler.CreatePayee)
	payees.GET("", payeeHandler.GetPayees)
	payees.GET("/:id", payeeHandler.GetPayeeByID)
	payees.PUT("/:id", payeeHandler.UpdatePayee)
	payees.DELETE("/:id", payeeHandler.DeletePayee)

	transactions := protected.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.GetUserTransactions)
	transactions.GET("/summary", transactionHandler.GetSummary)
	transactions.GET("/:id", transactionHandler.GetTransactionByID)
	transactions.PUT("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	wishLists := protected.Group("/wish-lists")
	wishLists.POST("", wishListHandler.CreateWishList)
	wishLists.GET("", wishListHandler.GetWishLists)
	wishLists.PUT("/items/:item_id", wishListHandler.UpdateItem)
	wishLists.DELETE("/items/:item_id", wishListHandler.DeleteItem)
	wishLists.POST("/items/:item_id/purchase", wishListHandler.MarkPurchased)
	wishLists.GET("/:id", wishListHandler.GetWishList)
	wishLists.PUT("/:id", wishListHandler.UpdateWishList)
	wishLists.DELETE("/:id", wishListHandler.DeleteWishList)
	wishLists.POST("/:id/items", wishListHandler.AddItem)
	wishLists.GET("/:id/items", wishListHandler.GetItems)

	return router
}

func cors(allowedOrigin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-API-Key, X-Request-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
