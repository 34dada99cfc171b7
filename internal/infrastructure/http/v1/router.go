// Package v1 wires the HTTP API: routes, middleware and handlers.
package v1

import (
	"github.com/gin-gonic/gin"

	"puntoventa/internal/domain/audit"
	"puntoventa/internal/domain/auth"
	"puntoventa/internal/domain/catalogs/client"
	"puntoventa/internal/domain/catalogs/product"
	"puntoventa/internal/domain/config"
	"puntoventa/internal/domain/returns"
	"puntoventa/internal/domain/sales"
	"puntoventa/internal/infrastructure/http/v1/handlers"
	"puntoventa/internal/infrastructure/http/v1/middleware"
	"puntoventa/pkg/logger"
)

// RouterConfig collects everything the router needs.
type RouterConfig struct {
	Logger *logger.Logger
	DB     handlers.Pinger
	JWT    middleware.JWTValidator

	Auth     *auth.Service
	Products *product.Service
	Clients  *client.Service
	Sales    *sales.Service
	Returns  *returns.Service
	Config   *config.Service
	Audit    *audit.Recorder
}

// NewRouter builds the Gin engine with all routes registered.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	healthHandler := handlers.NewHealthHandler(cfg.DB)
	authHandler := handlers.NewAuthHandler(cfg.Auth)
	productHandler := handlers.NewProductHandler(cfg.Products)
	clientHandler := handlers.NewClientHandler(cfg.Clients)
	saleHandler := handlers.NewSaleHandler(cfg.Sales)
	returnHandler := handlers.NewReturnHandler(cfg.Returns)
	configHandler := handlers.NewConfigHandler(cfg.Config)
	auditHandler := handlers.NewAuditHandler(cfg.Audit)

	// Probes stay outside authentication.
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
	}

	api := router.Group("/api/v1")

	api.POST("/auth/login", authHandler.Login)

	authed := api.Group("")
	authed.Use(middleware.Auth(cfg.JWT))
	{
		authed.GET("/auth/me", authHandler.Me)
		authed.POST("/auth/password", authHandler.ChangePassword)

		products := authed.Group("/products")
		{
			products.GET("", productHandler.List)
			products.GET("/:id", productHandler.Get)
			products.GET("/code/:code", productHandler.GetByCode)
			products.POST("", productHandler.Create)
			products.PUT("/:id", productHandler.Update)
			products.POST("/:id/restock", productHandler.Restock)
			products.DELETE("/:id", middleware.RequireAdmin(), productHandler.Delete)
		}

		clients := authed.Group("/clients")
		{
			clients.GET("", clientHandler.List)
			clients.GET("/:id", clientHandler.Get)
			clients.GET("/cedula/:cedula", clientHandler.GetByCedula)
			clients.POST("", clientHandler.Create)
			clients.PUT("/:id", clientHandler.Update)
			clients.DELETE("/:id", middleware.RequireAdmin(), clientHandler.Delete)
		}

		salesGroup := authed.Group("/sales")
		{
			salesGroup.GET("", saleHandler.List)
			salesGroup.GET("/summary", saleHandler.Summary)
			salesGroup.GET("/invoice/:number", saleHandler.GetByInvoice)
			salesGroup.GET("/:id", saleHandler.Get)
			salesGroup.GET("/:id/returns", returnHandler.ListBySale)
			salesGroup.POST("", saleHandler.Checkout)
			salesGroup.POST("/:id/cancel", saleHandler.Cancel)
		}

		returnsGroup := authed.Group("/returns")
		{
			returnsGroup.GET("", returnHandler.List)
			returnsGroup.GET("/:id", returnHandler.Get)
			returnsGroup.POST("", returnHandler.Create)
		}

		authed.GET("/config", configHandler.Get)

		admin := authed.Group("")
		admin.Use(middleware.RequireAdmin())
		{
			admin.POST("/auth/register", authHandler.Register)
			admin.GET("/users", authHandler.ListUsers)
			admin.PUT("/config", configHandler.Update)
			admin.GET("/audit", auditHandler.List)
		}
	}

	return router
}
