package store

import (
	"context"
	"errors"

	"github.com/example/task-manager/domain/task"
)

// Service error codes carried in replies so callers can recover the
// domain error after the NATS hop.
const (
	CodeNotFound           = "not_found"
	CodeStorageWrite       = "storage_write"
	CodeStorageUnavailable = "storage_unavailable"
	CodeValidation         = "validation"
)

// ServiceError is a domain failure encoded into a service reply.
type ServiceError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *ServiceError) Error() string {
	return e.Message
}

// Err converts the reply error back to an error wrapping the matching
// sentinel from the task package. A nil receiver yields nil.
func (e *ServiceError) Err() error {
	if e == nil {
		return nil
	}
	var sentinel error
	switch e.Code {
	case CodeNotFound:
		sentinel = task.ErrNotFound
	case CodeValidation:
		sentinel = task.ErrValidation
	case CodeStorageUnavailable:
		sentinel = task.ErrStorageUnavailable
	default:
		sentinel = task.ErrStorageWrite
	}
	if e.Message == "" || e.Message == sentinel.Error() {
		return sentinel
	}
	return &remoteError{sentinel: sentinel, msg: e.Message}
}

// remoteError keeps the server-side message while matching the sentinel.
type remoteError struct {
	sentinel error
	msg      string
}

func (e *remoteError) Error() string { return e.msg }
func (e *remoteError) Unwrap() error { return e.sentinel }

// toServiceError encodes err for a reply. Unknown errors are treated as
// write failures.
func toServiceError(err error) *ServiceError {
	if err == nil {
		return nil
	}
	code := CodeStorageWrite
	switch {
	case errors.Is(err, task.ErrNotFound):
		code = CodeNotFound
	case errors.Is(err, task.ErrValidation):
		code = CodeValidation
	case errors.Is(err, task.ErrStorageUnavailable):
		code = CodeStorageUnavailable
	}
	return &ServiceError{Code: code, Message: err.Error()}
}

// ListTasksRequest is the request for the list service.
type ListTasksRequest struct{}

// ListTasksResponse carries every persisted task, newest first.
type ListTasksResponse struct {
	Tasks []task.Task   `json:"tasks"`
	Total int           `json:"total"`
	Error *ServiceError `json:"error,omitempty"`
}

// CreateTaskRequest is the request for the create service.
type CreateTaskRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// UpdateTaskRequest is the request for the update service.
type UpdateTaskRequest struct {
	ID    string     `json:"id"`
	Patch task.Patch `json:"patch"`
}

// TaskResponse carries a single stored task.
type TaskResponse struct {
	Task  *task.Task    `json:"task,omitempty"`
	Error *ServiceError `json:"error,omitempty"`
}

// DeleteTaskRequest is the request for the delete service.
type DeleteTaskRequest struct {
	ID string `json:"id"`
}

// DeleteTaskResponse reports the outcome of a delete.
type DeleteTaskResponse struct {
	ID      string        `json:"id"`
	Deleted bool          `json:"deleted"`
	Error   *ServiceError `json:"error,omitempty"`
}

// TaskPort is the typed view of the store used by other modules.
type TaskPort interface {
	ListAll(ctx context.Context) ([]task.Task, error)
	Create(ctx context.Context, name, description string) (task.Task, error)
	Update(ctx context.Context, id string, patch task.Patch) (task.Task, error)
	Delete(ctx context.Context, id string) error
}
