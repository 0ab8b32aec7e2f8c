// Package controller owns the in-memory task collection and turns user
// actions into store calls and notifications.
package controller

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/example/task-manager/domain/task"
	"github.com/example/task-manager/modules/notification"
	"github.com/go-monolith/mono/pkg/types"
)

var (
	// ErrTaskBusy is returned when another operation on the same task is
	// still waiting for the store.
	ErrTaskBusy = errors.New("task has an operation in flight")

	// ErrNoPendingDelete is returned by ConfirmDelete without a matching
	// open confirmation.
	ErrNoPendingDelete = errors.New("no pending delete confirmation for task")
)

// User-facing notification messages.
const (
	msgAdded        = "Task added successfully!"
	msgAddFailed    = "Failed to add task. Please try again."
	msgUpdated      = "Task updated successfully!"
	msgUpdateFailed = "Failed to update task. Please try again."
	msgDeleted      = "Task deleted successfully!"
	msgDeleteFailed = "Failed to delete task. Please try again."
	msgCompleted    = "Task marked as completed!"
	msgReopened     = "Task marked as active!"
)

// TaskStore is the persistence port the controller drives.
type TaskStore interface {
	ListAll(ctx context.Context) ([]task.Task, error)
	Create(ctx context.Context, name, description string) (task.Task, error)
	Update(ctx context.Context, id string, patch task.Patch) (task.Task, error)
	Delete(ctx context.Context, id string) error
}

// Notifier receives the outcome messages of user actions.
type Notifier interface {
	Push(kind notification.Kind, message string) notification.Notification
}

// Mode is the controller's interaction state.
type Mode string

const (
	ModeBrowsing Mode = "browsing"
	ModeEditing  Mode = "editing"
)

// Confirmation is an open delete confirmation.
type Confirmation struct {
	TaskID   string `json:"task_id"`
	TaskName string `json:"task_name"`
}

// SubmitResult describes what a successful Submit did.
type SubmitResult struct {
	Task    task.Task `json:"task"`
	Created bool      `json:"created"`
}

// Controller is the application state machine. It is safe for concurrent
// use; store calls are made without holding the lock.
type Controller struct {
	store    TaskStore
	notifier Notifier
	logger   types.Logger

	mu            sync.Mutex
	mode          Mode
	editingID     string
	tasks         []task.Task
	searchQuery   string
	statusFilter  task.StatusFilter
	pendingDelete *Confirmation
	formError     string
	inflight      map[string]struct{}
	loading       bool
	loaded        bool
	loadError     string

	// generation counts store results applied to the collection. Load
	// discards a listing taken before the latest one.
	generation uint64
}

// maxLoadAttempts bounds how often Load re-lists while writes keep landing.
const maxLoadAttempts = 3

// New creates a controller in Browsing mode with an empty collection.
func New(store TaskStore, notifier Notifier, logger types.Logger) *Controller {
	return &Controller{
		store:        store,
		notifier:     notifier,
		logger:       logger,
		mode:         ModeBrowsing,
		tasks:        make([]task.Task, 0),
		statusFilter: task.FilterAll,
		inflight:     make(map[string]struct{}),
	}
}

// Load replaces the collection with the persisted snapshot. On failure the
// collection is emptied and the error is logged and returned. A listing
// that raced a write applied meanwhile is taken again; if writes keep
// landing, the collection is kept and ErrTaskBusy is returned.
func (c *Controller) Load(ctx context.Context) error {
	c.mu.Lock()
	c.loading = true
	c.mu.Unlock()

	for attempt := 1; ; attempt++ {
		c.mu.Lock()
		seen := c.generation
		c.mu.Unlock()

		tasks, err := c.listAll(ctx)

		c.mu.Lock()
		if err != nil {
			c.loading = false
			c.tasks = make([]task.Task, 0)
			c.loaded = false
			c.loadError = err.Error()
			c.generation++
			c.mu.Unlock()
			c.logger.Error("Failed to load tasks", "error", err)
			return fmt.Errorf("load tasks: %w", err)
		}

		if c.generation != seen {
			if attempt < maxLoadAttempts {
				c.mu.Unlock()
				continue
			}
			c.loading = false
			c.mu.Unlock()
			c.logger.Warn("Load kept racing writes, collection kept", "attempts", attempt)
			return fmt.Errorf("load tasks: %w", ErrTaskBusy)
		}

		c.loading = false
		c.tasks = tasks
		c.loaded = true
		c.loadError = ""
		c.generation++
		c.mu.Unlock()
		c.logger.Info("Tasks loaded", "count", len(tasks))
		return nil
	}
}

// Submit saves the form. In Editing mode it updates the edited task and
// returns to Browsing; otherwise it creates a new task at the top of the
// collection. Name and description are trimmed; an empty name is rejected
// before any store call.
func (c *Controller) Submit(ctx context.Context, name, description string) (SubmitResult, error) {
	name = strings.TrimSpace(name)
	description = strings.TrimSpace(description)

	c.mu.Lock()
	if err := task.ValidateName(name); err != nil {
		c.formError = validationMessage(err)
		c.mu.Unlock()
		return SubmitResult{}, err
	}
	if err := task.ValidateDescription(description); err != nil {
		c.formError = validationMessage(err)
		c.mu.Unlock()
		return SubmitResult{}, err
	}

	if c.mode == ModeEditing {
		id := c.editingID
		if _, busy := c.inflight[id]; busy {
			c.mu.Unlock()
			return SubmitResult{}, ErrTaskBusy
		}
		c.formError = ""
		c.inflight[id] = struct{}{}
		c.mu.Unlock()
		return c.submitUpdate(ctx, id, name, description)
	}

	c.formError = ""
	c.mu.Unlock()
	return c.submitCreate(ctx, name, description)
}

func (c *Controller) submitCreate(ctx context.Context, name, description string) (SubmitResult, error) {
	created, err := c.create(ctx, name, description)
	if err != nil {
		c.logger.Error("Failed to create task", "error", err)
		c.notify(notification.KindError, msgAddFailed)
		return SubmitResult{}, err
	}

	c.mu.Lock()
	if _, ok := c.find(created.ID); ok {
		// A reload already picked the new task up.
		c.replace(created)
	} else {
		c.tasks = append([]task.Task{created}, c.tasks...)
	}
	c.generation++
	c.mu.Unlock()

	c.logger.Info("Task created", "task_id", created.ID)
	c.notify(notification.KindSuccess, msgAdded)
	return SubmitResult{Task: created, Created: true}, nil
}

func (c *Controller) submitUpdate(ctx context.Context, id, name, description string) (SubmitResult, error) {
	defer c.release(id)

	updated, err := c.update(ctx, id, task.Patch{Name: &name, Description: &description})
	if err != nil {
		c.logger.Error("Failed to update task", "task_id", id, "error", err)
		c.notify(notification.KindError, msgUpdateFailed)
		return SubmitResult{}, err
	}

	c.mu.Lock()
	c.replace(updated)
	c.generation++
	if c.mode == ModeEditing && c.editingID == id {
		c.mode = ModeBrowsing
		c.editingID = ""
	}
	c.mu.Unlock()

	c.logger.Info("Task updated", "task_id", id)
	c.notify(notification.KindSuccess, msgUpdated)
	return SubmitResult{Task: updated}, nil
}

// ToggleComplete flips the completed flag of the task with the given id.
func (c *Controller) ToggleComplete(ctx context.Context, id string) (task.Task, error) {
	c.mu.Lock()
	current, ok := c.find(id)
	if !ok {
		c.mu.Unlock()
		return task.Task{}, task.ErrNotFound
	}
	if _, busy := c.inflight[id]; busy {
		c.mu.Unlock()
		return task.Task{}, ErrTaskBusy
	}
	c.inflight[id] = struct{}{}
	c.mu.Unlock()
	defer c.release(id)

	completed := !current.Completed
	updated, err := c.update(ctx, id, task.Patch{Completed: &completed})
	if err != nil {
		c.logger.Error("Failed to toggle task", "task_id", id, "error", err)
		c.notify(notification.KindError, msgUpdateFailed)
		return task.Task{}, err
	}

	c.mu.Lock()
	c.replace(updated)
	c.generation++
	c.mu.Unlock()

	if updated.Completed {
		c.notify(notification.KindSuccess, msgCompleted)
	} else {
		c.notify(notification.KindSuccess, msgReopened)
	}
	return updated, nil
}

// RequestDelete opens a delete confirmation. It reports false, changing
// nothing, when the task is the one being edited.
func (c *Controller) RequestDelete(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.mode == ModeEditing && c.editingID == id {
		return false
	}

	name := ""
	if t, ok := c.find(id); ok {
		name = t.Name
	}
	c.pendingDelete = &Confirmation{TaskID: id, TaskName: name}
	return true
}

// CancelDelete closes any open delete confirmation.
func (c *Controller) CancelDelete() {
	c.mu.Lock()
	c.pendingDelete = nil
	c.mu.Unlock()
}

// ConfirmDelete deletes the task whose confirmation is open. On failure the
// collection and mode are left unchanged.
func (c *Controller) ConfirmDelete(ctx context.Context, id string) error {
	c.mu.Lock()
	if c.pendingDelete == nil || c.pendingDelete.TaskID != id {
		c.mu.Unlock()
		return ErrNoPendingDelete
	}
	if _, busy := c.inflight[id]; busy {
		c.mu.Unlock()
		return ErrTaskBusy
	}
	c.pendingDelete = nil
	c.inflight[id] = struct{}{}
	c.mu.Unlock()
	defer c.release(id)

	if err := c.delete(ctx, id); err != nil {
		c.logger.Error("Failed to delete task", "task_id", id, "error", err)
		c.notify(notification.KindError, msgDeleteFailed)
		return err
	}

	c.mu.Lock()
	c.tasks = slices.DeleteFunc(c.tasks, func(t task.Task) bool { return t.ID == id })
	c.generation++
	if c.mode == ModeEditing && c.editingID == id {
		c.mode = ModeBrowsing
		c.editingID = ""
	}
	c.mu.Unlock()

	c.logger.Info("Task deleted", "task_id", id)
	c.notify(notification.KindSuccess, msgDeleted)
	return nil
}

// BeginEdit switches to Editing the given task and returns it so the form
// can be pre-filled. A delete confirmation for the same task is closed.
func (c *Controller) BeginEdit(id string) (task.Task, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	t, ok := c.find(id)
	if !ok {
		return task.Task{}, task.ErrNotFound
	}
	c.mode = ModeEditing
	c.editingID = id
	c.formError = ""
	if c.pendingDelete != nil && c.pendingDelete.TaskID == id {
		c.pendingDelete = nil
	}
	return t, nil
}

// CancelEdit returns to Browsing. Calling it while browsing is a no-op.
func (c *Controller) CancelEdit() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.mode = ModeBrowsing
	c.editingID = ""
	c.formError = ""
}

// SetSearchQuery sets the name search used by the derived view.
func (c *Controller) SetSearchQuery(query string) {
	c.mu.Lock()
	c.searchQuery = query
	c.mu.Unlock()
}

// SetStatusFilter parses and sets the status filter.
func (c *Controller) SetStatusFilter(raw string) (task.StatusFilter, error) {
	f, err := task.ParseStatusFilter(raw)
	if err != nil {
		return "", err
	}
	c.mu.Lock()
	c.statusFilter = f
	c.mu.Unlock()
	return f, nil
}

// find returns the task with id from the collection. Callers hold mu.
func (c *Controller) find(id string) (task.Task, bool) {
	for _, t := range c.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return task.Task{}, false
}

// replace swaps in the updated record at its current position. Callers hold mu.
func (c *Controller) replace(updated task.Task) {
	for i := range c.tasks {
		if c.tasks[i].ID == updated.ID {
			c.tasks[i] = updated
			return
		}
	}
}

func (c *Controller) release(id string) {
	c.mu.Lock()
	delete(c.inflight, id)
	c.mu.Unlock()
}

func (c *Controller) notify(kind notification.Kind, message string) {
	if c.notifier != nil {
		c.notifier.Push(kind, message)
	}
}

func (c *Controller) listAll(ctx context.Context) ([]task.Task, error) {
	if c.store == nil {
		return nil, fmt.Errorf("%w: store not connected", task.ErrStorageUnavailable)
	}
	return c.store.ListAll(ctx)
}

func (c *Controller) create(ctx context.Context, name, description string) (task.Task, error) {
	if c.store == nil {
		return task.Task{}, fmt.Errorf("%w: store not connected", task.ErrStorageUnavailable)
	}
	return c.store.Create(ctx, name, description)
}

func (c *Controller) update(ctx context.Context, id string, patch task.Patch) (task.Task, error) {
	if c.store == nil {
		return task.Task{}, fmt.Errorf("%w: store not connected", task.ErrStorageUnavailable)
	}
	return c.store.Update(ctx, id, patch)
}

func (c *Controller) delete(ctx context.Context, id string) error {
	if c.store == nil {
		return fmt.Errorf("%w: store not connected", task.ErrStorageUnavailable)
	}
	return c.store.Delete(ctx, id)
}

// validationMessage strips the sentinel prefix for inline display.
func validationMessage(err error) string {
	return strings.TrimPrefix(err.Error(), task.ErrValidation.Error()+": ")
}
