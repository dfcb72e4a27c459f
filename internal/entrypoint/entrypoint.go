package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/library-ms/internal/config"
	"github.com/mrlokans/library-ms/internal/database"
	"github.com/mrlokans/library-ms/internal/exports"
	http_controllers "github.com/mrlokans/library-ms/internal/http"
	"github.com/mrlokans/library-ms/internal/postgres"
	"github.com/mrlokans/library-ms/internal/scheduler"
	"github.com/mrlokans/library-ms/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Call shutdown callback first (e.g., to stop the task queue)
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Library Management Service v%s", version)

	// Initialize the storage backend
	var store http_controllers.Store
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		log.Printf("Storage backend: postgres (%s:%d/%s)", cfg.Database.Host, cfg.Database.Port, cfg.Database.Name)

		pgStore, err := postgres.NewStore(context.Background(), cfg.Database)
		if err != nil {
			log.Fatalf("Failed to initialize postgres store: %v", err)
		}
		defer pgStore.Close()
		store = pgStore

	case config.DriverSQLite, "":
		log.Printf("Storage backend: sqlite (%s)", cfg.Database.Path)

		db, err := database.NewDatabase(cfg.Database.Path)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		defer func() {
			if err := db.Close(); err != nil {
				log.Printf("Error closing database: %v", err)
			}
		}()
		store = database.NewStore(db)

	default:
		log.Fatalf("Unknown database driver %q (want %q or %q)", cfg.Database.Driver, config.DriverSQLite, config.DriverPostgres)
	}

	// Create the CSV report exporter
	exporter, err := exports.NewExporter(cfg.Exports.Dir)
	if err != nil {
		log.Fatalf("Failed to initialize exports directory: %v", err)
	}

	// Initialize the task queue if enabled
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	var cleanupScheduler *scheduler.ExportsCleanupScheduler
	if cfg.Tasks.Enabled {
		taskCfg := tasks.Config{
			Workers:         cfg.Tasks.Workers,
			ReleaseAfter:    cfg.Tasks.ReleaseAfter,
			CleanupInterval: cfg.Tasks.CleanupInterval,
		}

		taskClient, err = tasks.NewClient(cfg.Tasks.DBPath, taskCfg)
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(
			tasks.NewCleanupExportsQueue(exporter),
		)

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)

		// Schedule periodic cleanup of leftover export files
		if cfg.Cleanup.Enabled {
			cleanupScheduler = scheduler.NewExportsCleanupScheduler(taskClient, cfg.Cleanup.Schedule, cfg.Exports.Retention)
			if err := cleanupScheduler.Start(taskCtx); err != nil {
				log.Fatalf("Failed to start exports cleanup scheduler: %v", err)
			}
		}
	}

	// Rate limiter for the two catalog listing routes
	var rateLimiter *http_controllers.RateLimiter
	if cfg.RateLimit.Enabled {
		rateLimiter = http_controllers.NewRateLimiter(http_controllers.RateLimitConfig{
			MaxRequests:    cfg.RateLimit.MaxRequests,
			WindowDuration: cfg.RateLimit.Window,
		})
	}

	router := http_controllers.NewRouter(http_controllers.RouterConfig{
		Store:       store,
		Exporter:    exporter,
		RateLimiter: rateLimiter,
		Version:     version,
	})

	onShutdown := func(ctx context.Context) {
		if cleanupScheduler != nil {
			cleanupScheduler.Stop()
		}
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
		if rateLimiter != nil {
			rateLimiter.Stop()
		}
	}

	Serve(router, cfg, onShutdown)
}
