package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/example/task-manager/modules/api"
	"github.com/example/task-manager/modules/cache"
	"github.com/example/task-manager/modules/controller"
	"github.com/example/task-manager/modules/notification"
	"github.com/example/task-manager/modules/store"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
)

func main() {
	cfg := loadConfig()

	log.Println("=== Task Manager ===")

	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(cfg.ShutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}
	logger := app.Logger()

	// Register modules in start order:
	// - cache: optional Redis snapshot of the task list
	// - notification: toast queue + consumer of store events
	// - store: GORM/SQLite task table, emits task events
	// - controller: application state, depends on store
	// - api: Fiber HTTP adapter over the controller
	var snapshots store.SnapshotCache
	if cfg.RedisAddr != "" {
		cacheModule := cache.NewModule(cache.Config{
			RedisAddr: cfg.RedisAddr,
			Prefix:    cfg.CachePrefix,
			TTL:       cfg.CacheTTL,
		})
		app.Register(cacheModule)
		snapshots = cacheModule.Cache()
	}

	notificationModule, err := notification.NewModule(cfg.NotificationTTL, logger.WithModule("notification"))
	if err != nil {
		log.Fatalf("Failed to create notification module: %v", err)
	}
	storeModule := store.NewModule(store.Config{
		DBPath: cfg.DBPath,
		Debug:  cfg.DBDebug,
		Owner:  cfg.TaskOwner,
	}, snapshots)
	controllerModule := controller.NewModule(notificationModule.Center(), logger.WithModule("controller"))
	apiModule := api.NewModule(
		api.Config{
			Addr:           fmt.Sprintf(":%d", cfg.HTTPPort),
			AllowedOrigins: cfg.CORSAllowedOrigins,
		},
		controllerModule.Controller(),
		notificationModule.Center(),
		notificationModule,
		logger.WithModule("api"),
	)

	app.Register(notificationModule)
	app.Register(storeModule)
	app.Register(controllerModule)
	app.Register(apiModule)

	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	printStartupInfo(cfg)

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

func printStartupInfo(cfg Config) {
	cacheInfo := "disabled"
	if cfg.RedisAddr != "" {
		cacheInfo = fmt.Sprintf("%s (prefix: %s, TTL: %s)", cfg.RedisAddr, cfg.CachePrefix, cfg.CacheTTL)
	}

	log.Println("")
	log.Println("Application started successfully!")
	log.Println("")
	log.Printf("  Database: %s", cfg.DBPath)
	log.Printf("  Snapshot cache: %s", cacheInfo)
	log.Printf("  Owner: %s", cfg.TaskOwner)
	log.Printf("  Notification TTL: %s", cfg.NotificationTTL)
	log.Println("")
	log.Printf("REST API Endpoints (http://localhost:%d):", cfg.HTTPPort)
	log.Println("  GET    /health                           - Health check")
	log.Println("  GET    /api/v1/view                      - Derived task view")
	log.Println("  POST   /api/v1/reload                    - Reload tasks from storage")
	log.Println("  PUT    /api/v1/view/search               - Set search query")
	log.Println("  PUT    /api/v1/view/filter               - Set status filter (all|active|completed)")
	log.Println("  POST   /api/v1/tasks                     - Add task, or save the task being edited")
	log.Println("  POST   /api/v1/tasks/:id/toggle          - Toggle completed")
	log.Println("  POST   /api/v1/tasks/:id/edit            - Begin editing")
	log.Println("  DELETE /api/v1/edit                      - Cancel editing")
	log.Println("  POST   /api/v1/tasks/:id/delete          - Request delete confirmation")
	log.Println("  POST   /api/v1/tasks/:id/delete/confirm  - Confirm delete")
	log.Println("  DELETE /api/v1/delete                    - Cancel delete confirmation")
	log.Println("  GET    /api/v1/notifications             - Active notifications")
	log.Println("  DELETE /api/v1/notifications/:id         - Dismiss notification")
	log.Println("  GET    /api/v1/activity                  - Store event activity log")
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}
