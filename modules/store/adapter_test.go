package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/example/task-manager/domain/task"
	"github.com/go-monolith/mono"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storeClient is a minimal dependent module that captures the store's
// service container.
type storeClient struct {
	container mono.ServiceContainer
}

var _ mono.DependentModule = (*storeClient)(nil)

func (c *storeClient) Name() string                  { return "storeclient" }
func (c *storeClient) Start(_ context.Context) error { return nil }
func (c *storeClient) Stop(_ context.Context) error  { return nil }
func (c *storeClient) Dependencies() []string        { return []string{"store"} }
func (c *storeClient) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	if dependency == "store" {
		c.container = container
	}
}

// newTestAdapter starts a mono application hosting the store module and
// returns an adapter over its registered services.
func newTestAdapter(t *testing.T) TaskPort {
	t.Helper()

	app, err := mono.NewMonoApplication(
		mono.WithLogLevel(mono.LogLevelError),
	)
	require.NoError(t, err)

	storeModule := NewModule(Config{DBPath: filepath.Join(t.TempDir(), "tasks.db")}, newMockSnapshotCache())
	client := &storeClient{}
	require.NoError(t, app.Register(storeModule))
	require.NoError(t, app.Register(client))

	require.NoError(t, app.Start(context.Background()))
	t.Cleanup(func() {
		_ = app.Stop(context.Background())
	})

	require.NotNil(t, client.container, "store container injected")
	return NewAdapter(client.container)
}

func TestAdapter_RoundTrip(t *testing.T) {
	adapter := newTestAdapter(t)
	ctx := context.Background()

	tasks, err := adapter.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, tasks)

	created, err := adapter.Create(ctx, "Buy milk", "2 liters")
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Buy milk", created.Name)
	assert.False(t, created.Completed)

	done := true
	updated, err := adapter.Update(ctx, created.ID, task.Patch{Completed: &done})
	require.NoError(t, err)
	assert.True(t, updated.Completed)
	assert.Equal(t, "Buy milk", updated.Name)

	tasks, err = adapter.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, created.ID, tasks[0].ID)
	assert.True(t, tasks[0].Completed)

	require.NoError(t, adapter.Delete(ctx, created.ID))

	tasks, err = adapter.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestAdapter_NotFound(t *testing.T) {
	adapter := newTestAdapter(t)
	ctx := context.Background()

	name := "Renamed"
	_, err := adapter.Update(ctx, "missing", task.Patch{Name: &name})
	assert.True(t, errors.Is(err, task.ErrNotFound), "update: %v", err)

	err = adapter.Delete(ctx, "missing")
	assert.True(t, errors.Is(err, task.ErrNotFound), "delete: %v", err)
}

func TestAdapter_ValidationError(t *testing.T) {
	adapter := newTestAdapter(t)

	_, err := adapter.Create(context.Background(), "   ", "")
	assert.ErrorIs(t, err, task.ErrValidation)
}

func TestAdapter_CancelledCall(t *testing.T) {
	adapter := newTestAdapter(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := adapter.ListAll(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, task.ErrStorageUnavailable)
}

func TestNewAdapter_NilContainer(t *testing.T) {
	assert.Panics(t, func() { NewAdapter(nil) })
}

func TestUnwrapTask(t *testing.T) {
	want := task.Task{ID: "id-1", Name: "Write report"}

	got, err := unwrapTask(TaskResponse{Task: &want})
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = unwrapTask(TaskResponse{})
	assert.ErrorIs(t, err, task.ErrStorageWrite, "empty reply")

	_, err = unwrapTask(TaskResponse{Error: &ServiceError{Code: CodeNotFound}})
	assert.ErrorIs(t, err, task.ErrNotFound)
}

func TestUnwrapDelete(t *testing.T) {
	assert.NoError(t, unwrapDelete("id-1", DeleteTaskResponse{ID: "id-1", Deleted: true}))

	err := unwrapDelete("id-1", DeleteTaskResponse{ID: "id-1"})
	assert.ErrorIs(t, err, task.ErrStorageWrite, "reply without deletion")

	err = unwrapDelete("id-1", DeleteTaskResponse{ID: "id-1", Error: &ServiceError{Code: CodeNotFound}})
	assert.ErrorIs(t, err, task.ErrNotFound)
}

func TestTransportError(t *testing.T) {
	err := transportError("list", errors.New("no responders"))
	assert.ErrorIs(t, err, task.ErrStorageUnavailable)
	assert.Contains(t, err.Error(), "list service call failed")
}
