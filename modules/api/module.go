package api

import (
	"context"
	"fmt"
	"time"

	"github.com/example/task-manager/modules/controller"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// Config holds HTTP server settings.
type Config struct {
	Addr           string
	AllowedOrigins string
}

// Module serves the task manager over HTTP using Fiber.
type Module struct {
	app      *fiber.App
	handlers *Handlers
	config   Config
	logger   types.Logger
}

var _ mono.Module = (*Module)(nil)
var _ mono.HealthCheckableModule = (*Module)(nil)

// NewModule creates the HTTP API module.
func NewModule(
	cfg Config,
	ctrl *controller.Controller,
	notifications Notifications,
	activity ActivityLog,
	moduleLogger types.Logger,
) *Module {
	if cfg.Addr == "" {
		cfg.Addr = ":3000"
	}
	if cfg.AllowedOrigins == "" {
		cfg.AllowedOrigins = "http://localhost:3000,http://localhost:5173"
	}
	return &Module{
		config:   cfg,
		handlers: NewHandlers(ctrl, notifications, activity, moduleLogger),
		logger:   moduleLogger,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "api"
}

// Start builds the Fiber app and starts listening.
func (m *Module) Start(_ context.Context) error {
	m.app = m.newApp()

	errCh := make(chan error, 1)
	go func() {
		if err := m.app.Listen(m.config.Addr); err != nil {
			errCh <- err
		}
	}()

	// Catch immediate startup errors such as a port already in use.
	select {
	case err := <-errCh:
		return fmt.Errorf("HTTP server failed to start: %w", err)
	case <-time.After(100 * time.Millisecond):
	}

	m.logger.Info("HTTP server started", "addr", m.config.Addr)
	return nil
}

// Stop gracefully shuts down the HTTP server.
func (m *Module) Stop(ctx context.Context) error {
	if m.app != nil {
		if err := m.app.ShutdownWithContext(ctx); err != nil {
			return fmt.Errorf("failed to shutdown server: %w", err)
		}
	}
	m.logger.Info("HTTP server stopped")
	return nil
}

// Health reports whether the server is running.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: m.app != nil,
		Message: "operational",
		Details: map[string]any{
			"addr": m.config.Addr,
		},
	}
}

func (m *Module) newApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "Task Manager",
		DisableStartupMessage: true,
		ErrorHandler:          m.errorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} ${method} ${path} ${latency}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: m.config.AllowedOrigins,
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Content-Type",
	}))

	m.registerRoutes(app)
	return app
}

func (m *Module) registerRoutes(app *fiber.App) {
	h := m.handlers

	app.Get("/health", h.HealthCheck)

	api := app.Group("/api/v1")

	// View state
	api.Get("/view", h.GetView)
	api.Post("/reload", h.Reload)
	api.Put("/view/search", h.SetSearch)
	api.Put("/view/filter", h.SetFilter)

	// Task actions
	api.Post("/tasks", h.SubmitTask)
	api.Post("/tasks/:id/toggle", h.ToggleTask)
	api.Post("/tasks/:id/edit", h.BeginEdit)
	api.Delete("/edit", h.CancelEdit)
	api.Post("/tasks/:id/delete", h.RequestDelete)
	api.Post("/tasks/:id/delete/confirm", h.ConfirmDelete)
	api.Delete("/delete", h.CancelDelete)

	// Notifications and activity
	api.Get("/notifications", h.ListNotifications)
	api.Delete("/notifications/:id", h.DismissNotification)
	api.Get("/activity", h.GetActivity)
}

// errorHandler handles errors not written by a handler.
func (m *Module) errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	m.logger.Error("HTTP error", "code", code, "message", message, "error", err)

	return c.Status(code).JSON(ErrorResponse{
		Error:   "server_error",
		Message: message,
	})
}
