package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/stwalsh4118/devrights/internal/config"
	"github.com/stwalsh4118/devrights/internal/database"
	"github.com/stwalsh4118/devrights/internal/filter"
	"github.com/stwalsh4118/devrights/internal/handlers"
	"github.com/stwalsh4118/devrights/internal/logger"
	"github.com/stwalsh4118/devrights/internal/metrics"
	"github.com/stwalsh4118/devrights/internal/middleware"
	"github.com/stwalsh4118/devrights/internal/repository"
	"github.com/stwalsh4118/devrights/internal/services"
	"github.com/stwalsh4118/devrights/internal/version"
)

const (
	shutdownTimeout = 30 * time.Second
	migrateTimeout  = time.Minute
)

func main() {
	// Load configuration from environment variables
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewWithOptions(logger.Options{Env: cfg.Server.Env, Level: cfg.Server.LogLevel})
	log.Info("Starting devrights API", map[string]interface{}{
		"version":     version.Version,
		"commit":      version.Commit,
		"environment": cfg.Server.Env,
		"port":        cfg.Server.Port,
	})

	// Create database connection pool
	ctx := context.Background()
	db, err := database.NewPostgresPool(ctx, cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", err, map[string]interface{}{
			"host": cfg.Database.Host,
			"port": cfg.Database.Port,
			"name": cfg.Database.Name,
		})
	}
	defer db.Close()

	log.Info("Database connection established", map[string]interface{}{
		"host":     cfg.Database.Host,
		"port":     cfg.Database.Port,
		"database": cfg.Database.Name,
		"pool_min": cfg.Database.PoolMin,
		"pool_max": cfg.Database.PoolMax,
	})

	enrichedRepo := repository.NewEnrichedTransactionRepository(db, cfg.Export.Table)

	migrateCtx, cancel := context.WithTimeout(ctx, migrateTimeout)
	if err := db.Migrate(migrateCtx); err != nil {
		cancel()
		log.Fatal("Failed to apply source schema", err, nil)
	}
	if err := enrichedRepo.EnsureTable(migrateCtx); err != nil {
		cancel()
		log.Fatal("Failed to create enriched table", err, map[string]interface{}{
			"table": cfg.Export.Table,
		})
	}
	cancel()

	evaluator, err := filter.NewEvaluator()
	if err != nil {
		log.Fatal("Failed to build row filter environment", err, nil)
	}
	collector := metrics.NewCollector(metrics.DefaultNamespace)
	collector.TrackPool(metrics.DefaultNamespace, func() metrics.PoolStats {
		stat := db.Stats()
		return metrics.PoolStats{
			Acquired: stat.AcquiredConns(),
			Idle:     stat.IdleConns(),
			Total:    stat.TotalConns(),
		}
	})

	// Setup Gin router
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Add middleware in order: RequestID -> Logger -> Metrics -> Recovery -> CORS
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.Metrics(collector))
	router.Use(middleware.Recovery(log, collector))
	router.Use(middleware.CORS(cfg.CORS.Origins))

	// Register health check routes
	healthHandler := handlers.NewHealthHandler(db, cfg.Server.Env)
	router.GET("/health", healthHandler.Health)
	router.GET("/health/ready", healthHandler.Ready)
	router.GET("/api/v1/info", healthHandler.Info)
	router.GET("/metrics", gin.WrapH(collector.Handler()))

	// Initialize repository and service layers
	parcelRepo := repository.NewParcelRepository(db)
	historyRepo := repository.NewHistoryRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)

	parcelService := services.NewParcelService(parcelRepo, historyRepo, log)
	transferService := services.NewTransferService(services.Store{
		Parcels:      parcelRepo,
		History:      historyRepo,
		Transactions: transactionRepo,
		Enriched:     enrichedRepo,
	}, evaluator, collector, log)

	// Initialize handlers
	parcelHandler := handlers.NewParcelHandler(parcelService)
	transferHandler := handlers.NewTransferHandler(transferService)

	// Register API v1 routes
	v1 := router.Group("/api/v1")
	{
		parcels := v1.Group("/parcels")
		{
			parcels.GET("/:apn/successors", parcelHandler.GetSuccessors)
		}

		transfers := v1.Group("/transfers")
		{
			transfers.POST("/reconcile", transferHandler.Reconcile)
			transfers.POST("/refresh", transferHandler.Refresh)
		}
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server listening", map[string]interface{}{
			"port": cfg.Server.Port,
			"addr": srv.Addr,
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start", err, nil)
		}
	}()

	// Wait for interrupt signal (SIGINT or SIGTERM)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// Graceful shutdown
	log.Info("Shutting down server...", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", err, map[string]interface{}{
			"timeout": shutdownTimeout.String(),
		})
	}

	log.Info("Server exited", nil)
}
