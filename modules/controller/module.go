package controller

import (
	"context"

	"github.com/example/task-manager/modules/store"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
)

// Module hosts the Controller and connects it to the store module.
type Module struct {
	controller *Controller
	logger     types.Logger
}

var _ mono.Module = (*Module)(nil)
var _ mono.DependentModule = (*Module)(nil)
var _ mono.HealthCheckableModule = (*Module)(nil)

// NewModule creates the controller module. The store is connected when the
// framework hands over the store module's service container.
func NewModule(notifier Notifier, logger types.Logger) *Module {
	return &Module{
		controller: New(nil, notifier, logger),
		logger:     logger,
	}
}

func (m *Module) Name() string {
	return "controller"
}

// Controller returns the application controller.
func (m *Module) Controller() *Controller {
	return m.controller
}

func (m *Module) Dependencies() []string {
	return []string{"store"}
}

func (m *Module) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	if dependency == "store" {
		m.controller.store = store.NewAdapter(container)
	}
}

// Start performs the initial load. A failed load is logged and leaves the
// collection empty; the application keeps running.
func (m *Module) Start(ctx context.Context) error {
	if err := m.controller.Load(ctx); err != nil {
		m.logger.Warn("Initial load failed, starting with an empty collection", "error", err)
	}
	m.logger.Info("Controller module started")
	return nil
}

func (m *Module) Stop(_ context.Context) error {
	m.logger.Info("Controller module stopped")
	return nil
}

// Health reports whether the collection was loaded from the store.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	v := m.controller.View()
	details := map[string]any{
		"tasks": v.Total,
		"mode":  string(v.Mode),
	}
	if !v.Loaded {
		msg := "tasks not loaded"
		if v.LoadError != "" {
			msg = "tasks not loaded: " + v.LoadError
		}
		return mono.HealthStatus{Healthy: false, Message: msg, Details: details}
	}
	return mono.HealthStatus{Healthy: true, Message: "operational", Details: details}
}
