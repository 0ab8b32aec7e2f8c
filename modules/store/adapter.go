package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/example/task-manager/domain/task"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// taskAdapter wraps the store's ServiceContainer for typed calls.
type taskAdapter struct {
	container mono.ServiceContainer
}

// NewAdapter creates a TaskPort over the store module's services.
// container is received via SetDependencyServiceContainer.
func NewAdapter(container mono.ServiceContainer) TaskPort {
	if container == nil {
		panic("store adapter requires non-nil ServiceContainer")
	}
	return &taskAdapter{container: container}
}

// ListAll fetches every task via the list service.
func (a *taskAdapter) ListAll(ctx context.Context) ([]task.Task, error) {
	req := ListTasksRequest{}
	var resp ListTasksResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"list",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, transportError("list", err)
	}
	if err := resp.Error.Err(); err != nil {
		return nil, err
	}
	if resp.Tasks == nil {
		return []task.Task{}, nil
	}
	return resp.Tasks, nil
}

// Create stores a new task via the create service.
func (a *taskAdapter) Create(ctx context.Context, name, description string) (task.Task, error) {
	req := CreateTaskRequest{Name: name, Description: description}
	var resp TaskResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"create",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return task.Task{}, transportError("create", err)
	}
	return unwrapTask(resp)
}

// Update patches a task via the update service.
func (a *taskAdapter) Update(ctx context.Context, id string, patch task.Patch) (task.Task, error) {
	req := UpdateTaskRequest{ID: id, Patch: patch}
	var resp TaskResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"update",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return task.Task{}, transportError("update", err)
	}
	return unwrapTask(resp)
}

// Delete removes a task via the delete service.
func (a *taskAdapter) Delete(ctx context.Context, id string) error {
	req := DeleteTaskRequest{ID: id}
	var resp DeleteTaskResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"delete",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return transportError("delete", err)
	}
	return unwrapDelete(id, resp)
}

// transportError marks a failed round trip: the store could not be reached.
func transportError(service string, err error) error {
	return fmt.Errorf("%w: %s service call failed: %v", task.ErrStorageUnavailable, service, err)
}

func unwrapTask(resp TaskResponse) (task.Task, error) {
	if err := resp.Error.Err(); err != nil {
		return task.Task{}, err
	}
	if resp.Task == nil {
		return task.Task{}, fmt.Errorf("%w: empty reply", task.ErrStorageWrite)
	}
	return *resp.Task, nil
}

func unwrapDelete(id string, resp DeleteTaskResponse) error {
	if err := resp.Error.Err(); err != nil {
		return err
	}
	if !resp.Deleted {
		return fmt.Errorf("%w: task not deleted: %s", task.ErrStorageWrite, id)
	}
	return nil
}
