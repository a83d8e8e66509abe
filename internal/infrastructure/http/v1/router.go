// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"dispensary/internal/domain/auth"
	"dispensary/internal/domain/cart"
	"dispensary/internal/domain/catalogs/medicine"
	"dispensary/internal/domain/inventory"
	"dispensary/internal/domain/orders"
	"dispensary/internal/infrastructure/http/v1/handlers"
	"dispensary/internal/infrastructure/http/v1/middleware"
	"dispensary/pkg/logger"
)

// RouterConfig holds everything the router wires together.
type RouterConfig struct {
	Pool *pgxpool.Pool

	Logger *logger.Logger

	JWTValidator middleware.JWTValidator

	AuthService     *auth.Service
	MedicineService *medicine.Service
	Ledger          *inventory.Service
	Availability    *inventory.Calculator
	CartService     *cart.Service
	OrderService    *orders.Service
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth)
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	authHandler := handlers.NewAuthHandler(cfg.AuthService)
	medicineHandler := handlers.NewMedicineHandler(cfg.MedicineService, cfg.Availability)
	batchHandler := handlers.NewBatchHandler(cfg.Ledger)
	cartHandler := handlers.NewCartHandler(cfg.CartService)
	orderHandler := handlers.NewOrderHandler(cfg.OrderService)

	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/auth/register", authHandler.Register)
		apiV1.POST("/auth/login", authHandler.Login)

		protected := apiV1.Group("")
		protected.Use(middleware.Auth(cfg.JWTValidator))
		{
			// Catalog browsing and availability for any signed-in user.
			protected.GET("/medicines", medicineHandler.List)
			protected.GET("/medicines/:id", medicineHandler.Get)
			protected.GET("/medicines/:id/availability", medicineHandler.Availability)

			// Cart and orders.
			protected.GET("/cart", cartHandler.Get)
			protected.POST("/cart/items", cartHandler.Add)
			protected.PUT("/cart/items/:medicineId", cartHandler.SetQuantity)
			protected.DELETE("/cart/items/:medicineId", cartHandler.Remove)

			protected.POST("/orders", orderHandler.Place)
			protected.GET("/orders", orderHandler.List)
			protected.GET("/orders/:id", orderHandler.Get)

			// Back office: catalog management and the batch ledger.
			staff := protected.Group("")
			staff.Use(middleware.RequireStaff())
			{
				staff.POST("/medicines", medicineHandler.Create)
				staff.PUT("/medicines/:id", medicineHandler.Update)
				staff.DELETE("/medicines/:id", medicineHandler.Delete)
				staff.GET("/medicines/:id/batches", batchHandler.ListByMedicine)

				staff.POST("/batches", batchHandler.Add)
				staff.GET("/batches/expiring", batchHandler.Expiring)
				staff.GET("/batches/expired", batchHandler.Expired)
				staff.GET("/batches/:id", batchHandler.Get)
				staff.PATCH("/batches/:id", batchHandler.Update)
				staff.POST("/batches/:id/dispose", batchHandler.Dispose)
			}
		}
	}

	return router
}
