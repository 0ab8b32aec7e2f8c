package notification

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/example/task-manager/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
)

// maxActivity bounds the activity log.
const maxActivity = 200

// ActivityEntry records one store event.
type ActivityEntry struct {
	TaskID    string    `json:"task_id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Module owns the notification center and consumes store events into the
// activity log.
type Module struct {
	center *Center
	logger types.Logger

	mu       sync.RWMutex
	activity []ActivityEntry
}

var _ mono.Module = (*Module)(nil)
var _ mono.EventConsumerModule = (*Module)(nil)

// NewModule creates the notification module.
func NewModule(ttl time.Duration, logger types.Logger) (*Module, error) {
	center, err := NewCenter(ttl)
	if err != nil {
		return nil, err
	}
	return &Module{
		center:   center,
		logger:   logger,
		activity: make([]ActivityEntry, 0),
	}, nil
}

func (m *Module) Name() string {
	return "notification"
}

// Center returns the notification center shared with the controller.
func (m *Module) Center() *Center {
	return m.center
}

func (m *Module) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskCreatedV1, m.handleTaskCreated, m); err != nil {
		return fmt.Errorf("failed to register TaskCreated consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskUpdatedV1, m.handleTaskUpdated, m); err != nil {
		return fmt.Errorf("failed to register TaskUpdated consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskDeletedV1, m.handleTaskDeleted, m); err != nil {
		return fmt.Errorf("failed to register TaskDeleted consumer: %w", err)
	}

	m.logger.Info("Registered event consumers", "events", "TaskCreated, TaskUpdated, TaskDeleted")
	return nil
}

func (m *Module) handleTaskCreated(_ context.Context, event events.TaskCreatedEvent, _ *mono.Msg) error {
	m.record(event.TaskID, "task_created", fmt.Sprintf("Task '%s' created", event.Name), event.CreatedAt)
	return nil
}

func (m *Module) handleTaskUpdated(_ context.Context, event events.TaskUpdatedEvent, _ *mono.Msg) error {
	msg := fmt.Sprintf("Task '%s' updated", event.Name)
	if len(event.Fields) == 1 && event.Fields[0] == "completed" {
		if event.Completed {
			msg = fmt.Sprintf("Task '%s' completed", event.Name)
		} else {
			msg = fmt.Sprintf("Task '%s' reopened", event.Name)
		}
	}
	m.record(event.TaskID, "task_updated", msg, event.UpdatedAt)
	return nil
}

func (m *Module) handleTaskDeleted(_ context.Context, event events.TaskDeletedEvent, _ *mono.Msg) error {
	m.record(event.TaskID, "task_deleted", fmt.Sprintf("Task %s deleted", event.TaskID), event.DeletedAt)
	return nil
}

func (m *Module) record(taskID, entryType, message string, at time.Time) {
	if at.IsZero() {
		at = time.Now()
	}

	m.mu.Lock()
	m.activity = append(m.activity, ActivityEntry{
		TaskID:    taskID,
		Type:      entryType,
		Message:   message,
		Timestamp: at,
	})
	if over := len(m.activity) - maxActivity; over > 0 {
		m.activity = append(m.activity[:0:0], m.activity[over:]...)
	}
	m.mu.Unlock()

	m.logger.Info("Task activity", "type", entryType, "task_id", taskID, "message", message)
}

// Activity returns a copy of the activity log, newest last.
func (m *Module) Activity() []ActivityEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]ActivityEntry, len(m.activity))
	copy(result, m.activity)
	return result
}

func (m *Module) Start(_ context.Context) error {
	m.logger.Info("Notification module started", "ttl", m.center.ttl.String())
	return nil
}

func (m *Module) Stop(_ context.Context) error {
	m.logger.Info("Notification module stopped")
	return nil
}
