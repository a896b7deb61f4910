package router

import (
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/chanikul/edenclinic/internal/config"
	"github.com/chanikul/edenclinic/internal/server/http/handlers"
	"github.com/chanikul/edenclinic/internal/server/http/middleware"
	"github.com/chanikul/edenclinic/internal/usecase"
)

// Deps bundles everything Setup needs to assemble the route table.
type Deps struct {
	Auth     *usecase.AuthUseCase
	Checkout *usecase.CheckoutUseCase
	Webhooks *usecase.WebhookUseCase
	Catalog  *usecase.CatalogUseCase
	Admins   *usecase.AdminUseCase
	Clients  *usecase.ClientUseCase
	Orders   *usecase.OrderUseCase
	Results  *usecase.ResultUseCase
	Addrs    *usecase.AddressUseCase

	DB     handlers.Pinger
	Config *config.Config
	Logger *slog.Logger
}

// Setup configures the gin router with handlers and middleware.
func Setup(d Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(d.Logger))
	engine.Use(middleware.DecompressRequest())
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	authHandler := handlers.NewAuthHandler(d.Auth)
	checkoutHandler := handlers.NewCheckoutHandler(d.Checkout, d.Catalog)
	webhookHandler := handlers.NewWebhookHandler(d.Webhooks)
	adminHandler := handlers.NewAdminHandler(d.Admins, d.Catalog)
	clientHandler := handlers.NewClientHandler(d.Clients)
	orderHandler := handlers.NewOrderHandler(d.Orders)
	resultHandler := handlers.NewResultHandler(d.Results)
	patientHandler := handlers.NewPatientHandler(d.Clients, d.Orders, d.Results, d.Addrs)
	diagnosticHandler := handlers.NewDiagnosticHandler(d.DB, d.Config)

	api := engine.Group("/api")

	// Public surface.
	api.GET("/blood-tests", checkoutHandler.ListTests)
	api.GET("/blood-tests/:slug", checkoutHandler.GetTest)
	api.POST("/checkout", middleware.PatientOptional(d.Auth), checkoutHandler.Checkout)
	api.GET("/verify-payment", checkoutHandler.VerifyPayment)
	api.POST("/webhooks", webhookHandler.Handle)
	api.GET("/diagnostic", diagnosticHandler.Status)

	authGroup := api.Group("/auth")
	authGroup.POST("/admin/login", authHandler.AdminLogin)
	authGroup.POST("/admin/forgot-password", authHandler.AdminForgotPassword)
	authGroup.POST("/admin/reset-password", authHandler.AdminResetPassword)
	authGroup.POST("/patient/login", authHandler.PatientLogin)
	authGroup.POST("/patient/forgot-password", authHandler.PatientForgotPassword)
	authGroup.POST("/patient/reset-password", authHandler.PatientResetPassword)
	authGroup.POST("/google", authHandler.GoogleLogin)
	authGroup.POST("/logout", authHandler.Logout)

	// Back office.
	admin := api.Group("/admin")
	admin.Use(middleware.AdminRequired(d.Auth))
	admin.GET("/users", adminHandler.ListUsers)
	admin.POST("/users", adminHandler.CreateUser)
	admin.GET("/users/:id", adminHandler.GetUser)
	admin.PATCH("/users/:id", adminHandler.UpdateUser)
	admin.POST("/users/reset-password", adminHandler.TriggerReset)
	admin.GET("/audit-log", adminHandler.AuditLog)
	admin.GET("/blood-tests", adminHandler.ListAllTests)
	admin.POST("/blood-tests/sync", adminHandler.SyncCatalog)
	admin.GET("/clients", clientHandler.List)
	admin.POST("/clients", clientHandler.Create)
	admin.GET("/clients/:id", clientHandler.Get)
	admin.PATCH("/clients/:id", clientHandler.Update)
	admin.GET("/orders", orderHandler.List)
	admin.GET("/orders/:id", orderHandler.Get)
	admin.PATCH("/orders/:id", orderHandler.UpdateStatus)
	admin.POST("/test-results", resultHandler.Create)
	admin.POST("/test-results/:id/file", resultHandler.UploadFile)

	// Result rows are read and mutated by admins; downloads are shared
	// between roles with ownership enforced in the usecase.
	results := api.Group("/test-results")
	results.GET("/download",
		middleware.AdminOptional(d.Auth),
		middleware.PatientOptional(d.Auth),
		resultHandler.Download)
	resultAdmin := results.Group("")
	resultAdmin.Use(middleware.AdminRequired(d.Auth))
	resultAdmin.GET("/:id", resultHandler.Get)
	resultAdmin.PATCH("/:id", resultHandler.Update)
	resultAdmin.DELETE("/:id", resultHandler.Delete)

	// Patient portal.
	client := api.Group("/client")
	client.Use(middleware.PatientRequired(d.Auth))
	client.GET("/account", patientHandler.Account)
	client.PATCH("/account", patientHandler.UpdateAccount)
	client.GET("/addresses", patientHandler.Addresses)
	client.POST("/addresses", patientHandler.CreateAddress)
	client.PATCH("/addresses/:id", patientHandler.UpdateAddress)
	client.DELETE("/addresses/:id", patientHandler.DeleteAddress)
	client.GET("/payment-methods", patientHandler.PaymentMethods)
	client.GET("/orders", patientHandler.Orders)
	client.GET("/test-results", patientHandler.Results)

	api.POST("/payment-methods/default",
		middleware.PatientRequired(d.Auth),
		patientHandler.SetDefaultPaymentMethod)

	return engine
}
