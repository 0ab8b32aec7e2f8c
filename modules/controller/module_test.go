package controller

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModule_Basics(t *testing.T) {
	m := NewModule(nil, &mockLogger{})

	assert.Equal(t, "controller", m.Name())
	assert.Equal(t, []string{"store"}, m.Dependencies())
	require.NotNil(t, m.Controller())
}

func TestModule_StartWithoutStore(t *testing.T) {
	m := NewModule(nil, &mockLogger{})
	ctx := context.Background()

	// A failed initial load does not stop the application.
	require.NoError(t, m.Start(ctx))

	status := m.Health(ctx)
	assert.False(t, status.Healthy)
	assert.Contains(t, status.Message, "tasks not loaded")

	assert.NoError(t, m.Stop(ctx))
}

func TestModule_StartLoads(t *testing.T) {
	m := NewModule(nil, &mockLogger{})
	m.controller.store = newFakeStore(seedTask("a", "First", false))
	ctx := context.Background()

	require.NoError(t, m.Start(ctx))

	status := m.Health(ctx)
	assert.True(t, status.Healthy)
	assert.Equal(t, 1, status.Details["tasks"])
}
