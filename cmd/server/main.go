package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/amble-mobility/offline-engine/internal/application"
	"github.com/amble-mobility/offline-engine/internal/config"
	"github.com/amble-mobility/offline-engine/internal/connectivity"
	"github.com/amble-mobility/offline-engine/internal/handler"
	"github.com/amble-mobility/offline-engine/internal/logger"
	"github.com/amble-mobility/offline-engine/internal/remote"
	"github.com/amble-mobility/offline-engine/internal/repository"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, "offline-engine")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting offline-engine",
		zap.String("port", cfg.Port),
		zap.String("db_path", cfg.DBPath),
	)

	// Open the local store. Without it there is no offline mode; the app
	// shell detects the missing engine and runs online-only.
	store := repository.NewStore(cfg.DBPath)
	db, err := store.Open()
	if err != nil {
		log.Fatal("failed to open local store", zap.Error(err))
	}
	defer func() { _ = store.Close() }()

	// Initialize repositories
	routeRepo := repository.NewGormRouteRepository(db)
	placeRepo := repository.NewGormPlaceRepository(db)
	sessionRepo := repository.NewGormSessionRepository(db)
	tileRepo := repository.NewGormTileRepository(db)

	// Initialize the sync endpoint client
	syncClient := remote.NewClient(cfg.SyncEndpoint)

	// Initialize application services
	cacheService := application.NewCacheService(routeRepo, placeRepo, tileRepo, store, log)
	sessionService := application.NewSessionService(sessionRepo, log)
	syncService := application.NewSyncService(sessionRepo, syncClient, cfg.SyncTimeout, log)
	retentionService := application.NewRetentionService(
		routeRepo,
		placeRepo,
		tileRepo,
		sessionRepo,
		cfg.RetentionMaxAge,
		cfg.SyncedSessionRetention,
		log,
	)

	// Wire the connectivity monitor: every offline→online edge drains
	// pending sessions.
	monitor := connectivity.NewMonitor(false, log)
	monitor.OnOnline(syncService.SweepOnConnectivity)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start the reachability probe in a goroutine
	prober := connectivity.NewProber(cfg.SyncEndpoint, cfg.ProbeInterval, cfg.SyncTimeout, monitor, log)
	go func() {
		if err := prober.Start(ctx); err != nil && err != context.Canceled {
			log.Error("connectivity prober error", zap.Error(err))
		}
	}()

	// Start the retention timer in a goroutine
	go func() {
		if err := retentionService.Start(ctx, cfg.RetentionInterval); err != nil && err != context.Canceled {
			log.Error("retention sweeper error", zap.Error(err))
		}
	}()

	// Initialize HTTP handlers
	cacheHandler := handler.NewCacheHandler(cacheService)
	sessionHandler := handler.NewSessionHandler(sessionService)
	engineHandler := handler.NewEngineHandler(syncService, retentionService, monitor)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	// Register routes
	cacheHandler.RegisterRoutes(&router.RouterGroup)
	sessionHandler.RegisterRoutes(&router.RouterGroup)
	engineHandler.RegisterRoutes(&router.RouterGroup)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down offline-engine...")

	// Stop the prober and retention timer
	cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info("offline-engine stopped")
}
