// Package main is the entry point for the dispensary API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dispensary/internal/config"
	"dispensary/internal/domain/auth"
	"dispensary/internal/domain/cart"
	"dispensary/internal/domain/catalogs/medicine"
	"dispensary/internal/domain/inventory"
	"dispensary/internal/domain/orders"
	"dispensary/internal/domain/prescription"
	v1 "dispensary/internal/infrastructure/http/v1"
	"dispensary/internal/infrastructure/storage/postgres"
	"dispensary/internal/infrastructure/storage/postgres/auth_repo"
	"dispensary/internal/infrastructure/storage/postgres/cart_repo"
	"dispensary/internal/infrastructure/storage/postgres/catalog_repo"
	"dispensary/internal/infrastructure/storage/postgres/inventory_repo"
	"dispensary/internal/infrastructure/storage/postgres/order_repo"
	"dispensary/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development,
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting dispensary server")

	// --- Database ---
	poolCfg := postgres.DefaultPoolConfig(cfg.Database.URL)
	poolCfg.MaxConns = int32(cfg.Database.MaxConns)
	poolCfg.MinConns = int32(cfg.Database.MinConns)
	poolCfg.MaxConnLifetime = cfg.Database.ConnMaxLifetime

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)

	auditService, err := postgres.NewAuditService(txManager)
	if err != nil {
		log.Fatalw("failed to initialize audit service", "error", err)
	}
	auditor := postgres.NewAuditRecorder(auditService)

	// --- Repositories ---
	medicineRepo := catalog_repo.NewMedicineRepo(txManager)
	batchRepo := inventory_repo.NewBatchRepo(txManager)
	cartRepo := cart_repo.NewCartRepo(txManager)
	orderRepo := order_repo.NewOrderRepo(txManager)
	userRepo := auth_repo.NewUserRepo(txManager)

	// --- Auth ---
	jwtConfig := auth.DefaultJWTConfig(cfg.Auth.JWTSecret)
	if cfg.Auth.AccessTokenTTL > 0 {
		jwtConfig.AccessTokenTTL = cfg.Auth.AccessTokenTTL
	}
	jwtService := auth.NewJWTService(jwtConfig)
	authService := auth.NewService(userRepo, jwtService)

	// --- Domain services ---
	medicineService := medicine.NewService(medicineRepo, txManager)
	ledger := inventory.NewService(batchRepo, medicineRepo, txManager, auditor)
	availability := inventory.NewCalculator(batchRepo, cartRepo)
	allocator := inventory.NewAllocator(batchRepo)
	cartService := cart.NewService(cartRepo, availability, medicineRepo)

	policy, err := prescription.NewPolicy(cfg.Prescription.Rule)
	if err != nil {
		log.Fatalw("failed to compile dispensing rule", "error", err)
	}

	orderService := orders.NewService(
		orderRepo,
		cartRepo,
		medicineRepo,
		allocator,
		policy,
		txManager,
		auditor,
	)

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:            pool.Pool,
		Logger:          log,
		JWTValidator:    jwtService,
		AuthService:     authService,
		MedicineService: medicineService,
		Ledger:          ledger,
		Availability:    availability,
		CartService:     cartService,
		OrderService:    orderService,
	})

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}
