package notification

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/example/task-manager/events"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockLogger implements types.Logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(_ string, _ ...any) {}
func (m *mockLogger) Info(_ string, _ ...any)  {}
func (m *mockLogger) Warn(_ string, _ ...any)  {}
func (m *mockLogger) Error(_ string, _ ...any) {}
func (m *mockLogger) With(_ ...any) types.Logger {
	return m
}
func (m *mockLogger) WithModule(_ string) types.Logger {
	return m
}
func (m *mockLogger) WithError(_ error) types.Logger {
	return m
}

func TestModule_Activity(t *testing.T) {
	m, err := NewModule(time.Second, &mockLogger{})
	require.NoError(t, err)
	assert.Equal(t, "notification", m.Name())
	assert.NotNil(t, m.Center())

	ctx := context.Background()
	now := time.Now()

	require.NoError(t, m.handleTaskCreated(ctx, events.TaskCreatedEvent{TaskID: "t1", Name: "Buy milk", CreatedAt: now}, nil))
	require.NoError(t, m.handleTaskUpdated(ctx, events.TaskUpdatedEvent{TaskID: "t1", Name: "Buy milk", Completed: true, Fields: []string{"completed"}, UpdatedAt: now}, nil))
	require.NoError(t, m.handleTaskUpdated(ctx, events.TaskUpdatedEvent{TaskID: "t1", Name: "Buy oat milk", Fields: []string{"name", "description"}, UpdatedAt: now}, nil))
	require.NoError(t, m.handleTaskDeleted(ctx, events.TaskDeletedEvent{TaskID: "t1"}, nil))

	activity := m.Activity()
	require.Len(t, activity, 4)
	assert.Equal(t, "task_created", activity[0].Type)
	assert.Equal(t, "Task 'Buy milk' created", activity[0].Message)
	assert.Equal(t, "Task 'Buy milk' completed", activity[1].Message)
	assert.Equal(t, "Task 'Buy oat milk' updated", activity[2].Message)
	assert.Equal(t, "task_deleted", activity[3].Type)
	assert.False(t, activity[3].Timestamp.IsZero())

	// Returned slice is a copy.
	activity[0].Message = "changed"
	assert.Equal(t, "Task 'Buy milk' created", m.Activity()[0].Message)
}

func TestModule_ActivityBounded(t *testing.T) {
	m, err := NewModule(time.Second, &mockLogger{})
	require.NoError(t, err)

	for i := 0; i < maxActivity+10; i++ {
		m.record(fmt.Sprintf("t%d", i), "task_created", "x", time.Now())
	}

	activity := m.Activity()
	require.Len(t, activity, maxActivity)
	assert.Equal(t, "t10", activity[0].TaskID)
}

func TestModule_StartStop(t *testing.T) {
	m, err := NewModule(0, &mockLogger{})
	require.NoError(t, err)

	assert.NoError(t, m.Start(context.Background()))
	assert.NoError(t, m.Stop(context.Background()))
}
