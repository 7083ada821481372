// Package server assembles the HTTP router.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"bukukas/internal/handlers"
	"bukukas/internal/middleware"
	"bukukas/internal/policy"
	"bukukas/internal/services"
	"bukukas/internal/simpaskor"
)

// Services bundles everything the routes call into.
type Services struct {
	Users            services.UserServicer
	Transactions     services.TransactionServicer
	Groups           services.GroupServicer
	EmployeePayments services.EmployeePaymentServicer
	HayabusaPayments services.HayabusaPaymentServicer
	Audit            services.AuditServicer
	Schedule         simpaskor.ScheduleFetcher
}

// Options tunes router behavior.
type Options struct {
	// UploadDir is served under /storage when set.
	UploadDir string
	// Swagger mounts the API docs under /swagger.
	Swagger bool
}

// NewRouter builds the gin engine with global middleware and every /api route.
func NewRouter(svc Services, tokens *middleware.TokenManager, opts Options) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.CORS())

	if opts.Swagger {
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}
	if opts.UploadDir != "" {
		router.Static("/storage", opts.UploadDir)
	}

	authHandler := handlers.NewAuthHandler(svc.Users, tokens, svc.Audit)
	transactionHandler := handlers.NewTransactionHandler(svc.Transactions, svc.Audit)
	groupHandler := handlers.NewGroupHandler(svc.Groups, svc.Audit)
	employeeHandler := handlers.NewEmployeePaymentHandler(svc.EmployeePayments, svc.Audit)
	hayabusaHandler := handlers.NewHayabusaPaymentHandler(svc.HayabusaPayments, svc.Audit)
	userHandler := handlers.NewUserHandler(svc.Users, svc.Audit)
	simpaskorHandler := handlers.NewSimpaskorHandler(svc.Schedule)

	api := router.Group("/api")

	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Public routes
	api.POST("/login", authHandler.Login)

	// Protected routes
	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(tokens, svc.Users))

	protected.POST("/logout", authHandler.Logout)
	protected.GET("/user", authHandler.User)

	protected.GET("/dashboard/stats", allow(policy.ActionView, policy.ResourceReport), transactionHandler.GetStatistics)

	// Transaction routes; static segments before :id
	transactions := protected.Group("/transactions")
	transactions.GET("/statistics", allow(policy.ActionView, policy.ResourceReport), transactionHandler.GetStatistics)
	transactions.GET("/reports", allow(policy.ActionView, policy.ResourceReport), transactionHandler.GetReport)
	transactions.GET("/reports/export", allow(policy.ActionView, policy.ResourceReport), transactionHandler.ExportReport)
	transactions.GET("", allow(policy.ActionList, policy.ResourceTransaction), transactionHandler.ListTransactions)
	transactions.POST("", allow(policy.ActionCreate, policy.ResourceTransaction), transactionHandler.CreateTransaction)
	transactions.GET("/:id", allow(policy.ActionView, policy.ResourceTransaction), transactionHandler.GetTransaction)
	transactions.PUT("/:id", allow(policy.ActionUpdate, policy.ResourceTransaction), transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", allow(policy.ActionDelete, policy.ResourceTransaction), transactionHandler.DeleteTransaction)

	// Transaction group routes
	groups := protected.Group("/transaction-groups")
	groups.GET("/options", allow(policy.ActionList, policy.ResourceTransactionGroup), groupHandler.GetGroupOptions)
	groups.GET("", allow(policy.ActionList, policy.ResourceTransactionGroup), groupHandler.ListGroups)
	groups.POST("", allow(policy.ActionCreate, policy.ResourceTransactionGroup), groupHandler.CreateGroup)
	groups.GET("/:id", allow(policy.ActionView, policy.ResourceTransactionGroup), groupHandler.GetGroup)
	groups.PUT("/:id", allow(policy.ActionUpdate, policy.ResourceTransactionGroup), groupHandler.UpdateGroup)
	groups.DELETE("/:id", allow(policy.ActionDelete, policy.ResourceTransactionGroup), groupHandler.DeleteGroup)

	// Employee payment routes
	employees := protected.Group("/employee-payments")
	employees.GET("/employees", allow(policy.ActionList, policy.ResourceEmployeePayment), employeeHandler.ListEmployees)
	employees.GET("", allow(policy.ActionList, policy.ResourceEmployeePayment), employeeHandler.ListEmployeePayments)
	employees.POST("", allow(policy.ActionCreate, policy.ResourceEmployeePayment), employeeHandler.CreateEmployeePayment)
	employees.GET("/:id", allow(policy.ActionView, policy.ResourceEmployeePayment), employeeHandler.GetEmployeePayment)
	employees.PUT("/:id", allow(policy.ActionUpdate, policy.ResourceEmployeePayment), employeeHandler.UpdateEmployeePayment)
	employees.DELETE("/:id", allow(policy.ActionDelete, policy.ResourceEmployeePayment), employeeHandler.DeleteEmployeePayment)
	employees.POST("/:id/approve", allow(policy.ActionApprove, policy.ResourceEmployeePayment), employeeHandler.ApproveEmployeePayment)

	// Hayabusa payout routes
	hayabusa := protected.Group("/hayabusa-payments")
	hayabusa.GET("/users", allow(policy.ActionCreate, policy.ResourceHayabusaPayment), hayabusaHandler.ListHayabusaUsers)
	hayabusa.GET("/statistics", allow(policy.ActionList, policy.ResourceHayabusaPayment), hayabusaHandler.GetHayabusaStatistics)
	hayabusa.GET("", allow(policy.ActionList, policy.ResourceHayabusaPayment), hayabusaHandler.ListHayabusaPayments)
	hayabusa.POST("", allow(policy.ActionCreate, policy.ResourceHayabusaPayment), hayabusaHandler.CreateHayabusaPayment)
	hayabusa.GET("/:id", allow(policy.ActionView, policy.ResourceHayabusaPayment), hayabusaHandler.GetHayabusaPayment)
	hayabusa.PUT("/:id", allow(policy.ActionUpdate, policy.ResourceHayabusaPayment), hayabusaHandler.UpdateHayabusaPayment)
	hayabusa.DELETE("/:id", allow(policy.ActionDelete, policy.ResourceHayabusaPayment), hayabusaHandler.DeleteHayabusaPayment)
	hayabusa.PATCH("/:id/status", allow(policy.ActionUpdateStatus, policy.ResourceHayabusaPayment), hayabusaHandler.UpdateHayabusaPaymentStatus)

	// User administration
	users := protected.Group("/users")
	users.GET("", allow(policy.ActionList, policy.ResourceUser), userHandler.ListUsers)
	users.POST("", allow(policy.ActionCreate, policy.ResourceUser), userHandler.CreateUser)
	users.GET("/:id", allow(policy.ActionView, policy.ResourceUser), userHandler.GetUser)
	users.PUT("/:id", allow(policy.ActionUpdate, policy.ResourceUser), userHandler.UpdateUser)

	protected.GET("/simpaskor/schedule", allow(policy.ActionView, policy.ResourceSchedule), simpaskorHandler.GetSchedule)

	return router
}

func allow(action policy.Action, resource policy.Resource) gin.HandlerFunc {
	return middleware.Authorize(action, resource)
}
