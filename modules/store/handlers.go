package store

import (
	"context"
	"log"
	"time"

	"github.com/example/task-manager/domain/task"
	"github.com/example/task-manager/events"
	"github.com/go-monolith/mono"
)

// Domain failures are returned inside the reply, never as a handler error,
// so the caller can tell "task not found" apart from a broken transport.

// handleList handles the store.list service request.
func (m *StoreModule) handleList(ctx context.Context, _ ListTasksRequest, _ *mono.Msg) (ListTasksResponse, error) {
	tasks, err := m.service.ListAll(ctx)
	if err != nil {
		log.Printf("[store] List failed: %v", err)
		return ListTasksResponse{Tasks: []task.Task{}, Error: toServiceError(err)}, nil
	}
	return ListTasksResponse{Tasks: tasks, Total: len(tasks)}, nil
}

// handleCreate handles the store.create service request.
func (m *StoreModule) handleCreate(ctx context.Context, req CreateTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	created, err := m.service.Create(ctx, req.Name, req.Description)
	if err != nil {
		log.Printf("[store] Create failed: %v", err)
		return TaskResponse{Error: toServiceError(err)}, nil
	}

	if m.eventBus != nil {
		event := events.TaskCreatedEvent{
			TaskID:    created.ID,
			Name:      created.Name,
			Owner:     created.Owner,
			CreatedAt: created.CreatedAt,
		}
		if err := events.TaskCreatedV1.Publish(m.eventBus, event, nil); err != nil {
			log.Printf("[store] Warning: failed to publish TaskCreated event for task %s: %v", created.ID, err)
		}
	}

	return TaskResponse{Task: created}, nil
}

// handleUpdate handles the store.update service request.
func (m *StoreModule) handleUpdate(ctx context.Context, req UpdateTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	updated, err := m.service.Update(ctx, req.ID, req.Patch)
	if err != nil {
		log.Printf("[store] Update of task %s failed: %v", req.ID, err)
		return TaskResponse{Error: toServiceError(err)}, nil
	}

	if m.eventBus != nil {
		event := events.TaskUpdatedEvent{
			TaskID:    updated.ID,
			Name:      updated.Name,
			Completed: updated.Completed,
			Fields:    patchedFields(req.Patch),
			UpdatedAt: updated.UpdatedAt,
		}
		if err := events.TaskUpdatedV1.Publish(m.eventBus, event, nil); err != nil {
			log.Printf("[store] Warning: failed to publish TaskUpdated event for task %s: %v", updated.ID, err)
		}
	}

	return TaskResponse{Task: updated}, nil
}

// handleDelete handles the store.delete service request.
func (m *StoreModule) handleDelete(ctx context.Context, req DeleteTaskRequest, _ *mono.Msg) (DeleteTaskResponse, error) {
	if err := m.service.Delete(ctx, req.ID); err != nil {
		log.Printf("[store] Delete of task %s failed: %v", req.ID, err)
		return DeleteTaskResponse{ID: req.ID, Error: toServiceError(err)}, nil
	}

	if m.eventBus != nil {
		event := events.TaskDeletedEvent{
			TaskID:    req.ID,
			DeletedAt: time.Now(),
		}
		if err := events.TaskDeletedV1.Publish(m.eventBus, event, nil); err != nil {
			log.Printf("[store] Warning: failed to publish TaskDeleted event for task %s: %v", req.ID, err)
		}
	}

	return DeleteTaskResponse{ID: req.ID, Deleted: true}, nil
}

func patchedFields(p task.Patch) []string {
	fields := make([]string, 0, 3)
	if p.Name != nil {
		fields = append(fields, "name")
	}
	if p.Description != nil {
		fields = append(fields, "description")
	}
	if p.Completed != nil {
		fields = append(fields, "completed")
	}
	return fields
}
