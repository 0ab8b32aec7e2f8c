package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/example/task-manager/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Config holds the store module settings.
type Config struct {
	DBPath string
	Debug  bool
	Owner  string
}

// StoreModule owns the persistent task table and exposes it as
// request-reply services.
type StoreModule struct {
	config   Config
	cache    SnapshotCache
	db       *gorm.DB
	service  *Service
	eventBus mono.EventBus
}

// Compile-time interface checks.
var _ mono.Module = (*StoreModule)(nil)
var _ mono.ServiceProviderModule = (*StoreModule)(nil)
var _ mono.EventEmitterModule = (*StoreModule)(nil)
var _ mono.HealthCheckableModule = (*StoreModule)(nil)

// NewModule creates a new StoreModule. cache may be nil to disable the
// list snapshot.
func NewModule(cfg Config, cache SnapshotCache) *StoreModule {
	if cfg.DBPath == "" {
		cfg.DBPath = "tasks.db"
	}
	return &StoreModule{
		config: cfg,
		cache:  cache,
	}
}

// Name returns the module name.
func (m *StoreModule) Name() string {
	return "store"
}

// SetEventBus is called by the framework to inject the event bus.
func (m *StoreModule) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

// EmitEvents declares the events published by this module.
func (m *StoreModule) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.TaskCreatedV1.ToBase(),
		events.TaskUpdatedV1.ToBase(),
		events.TaskDeletedV1.ToBase(),
	}
}

// RegisterServices registers request-reply services in the service container.
// Names are prefixed by the framework, so "list" becomes "services.store.list".
func (m *StoreModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "list", json.Unmarshal, json.Marshal, m.handleList,
	); err != nil {
		return fmt.Errorf("failed to register list service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "create", json.Unmarshal, json.Marshal, m.handleCreate,
	); err != nil {
		return fmt.Errorf("failed to register create service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "update", json.Unmarshal, json.Marshal, m.handleUpdate,
	); err != nil {
		return fmt.Errorf("failed to register update service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "delete", json.Unmarshal, json.Marshal, m.handleDelete,
	); err != nil {
		return fmt.Errorf("failed to register delete service: %w", err)
	}

	log.Printf("[store] Registered services: services.store.{list,create,update,delete}")
	return nil
}

// Health reports whether the task table is reachable.
func (m *StoreModule) Health(ctx context.Context) mono.HealthStatus {
	if m.service == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "database not initialized",
		}
	}

	if err := m.service.Ping(ctx); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("database ping failed: %v", err),
		}
	}

	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"driver": "sqlite",
			"path":   m.config.DBPath,
			"cached": m.cache != nil,
		},
	}
}

// Start opens the database and runs migrations.
func (m *StoreModule) Start(_ context.Context) error {
	log.Printf("[store] Connecting to SQLite database: %s", m.config.DBPath)

	logLevel := logger.Silent
	if m.config.Debug {
		logLevel = logger.Info
	}

	db, err := gorm.Open(sqlite.Open(m.config.DBPath), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	repo := NewRepository(db, m.config.Owner)
	if err := repo.Migrate(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	m.db = db
	m.service = NewService(repo, m.cache)

	if m.eventBus == nil {
		log.Println("[store] Warning: eventBus not set, events will not be published")
	}
	log.Println("[store] Module started successfully")
	return nil
}

// Stop closes the database connection.
func (m *StoreModule) Stop(_ context.Context) error {
	if m.db == nil {
		return nil
	}

	log.Println("[store] Closing database connection...")

	sqlDB, err := m.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}

	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	log.Println("[store] Database connection closed")
	return nil
}
