package api

import (
	"errors"

	"github.com/example/task-manager/domain/task"
	"github.com/example/task-manager/modules/controller"
	"github.com/example/task-manager/modules/notification"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/fiber/v2"
)

// Notifications is the read/dismiss side of the notification center.
type Notifications interface {
	Active() []notification.Notification
	Dismiss(id string) bool
}

// ActivityLog exposes the store event history.
type ActivityLog interface {
	Activity() []notification.ActivityEntry
}

// Handlers contains the HTTP handlers over the controller.
type Handlers struct {
	controller    *controller.Controller
	notifications Notifications
	activity      ActivityLog
	logger        types.Logger
}

// NewHandlers creates a new handlers instance.
func NewHandlers(ctrl *controller.Controller, notifications Notifications, activity ActivityLog, logger types.Logger) *Handlers {
	return &Handlers{
		controller:    ctrl,
		notifications: notifications,
		activity:      activity,
		logger:        logger,
	}
}

// HealthCheck handles GET /health.
func (h *Handlers) HealthCheck(c *fiber.Ctx) error {
	v := h.controller.View()
	status := "healthy"
	code := fiber.StatusOK
	if !v.Loaded {
		status = "degraded"
		code = fiber.StatusServiceUnavailable
	}
	return c.Status(code).JSON(HealthResponse{
		Status: status,
		Details: map[string]any{
			"tasks":      v.Total,
			"load_error": v.LoadError,
		},
	})
}

// GetView handles GET /api/v1/view.
func (h *Handlers) GetView(c *fiber.Ctx) error {
	return c.JSON(h.view())
}

// Reload handles POST /api/v1/reload.
func (h *Handlers) Reload(c *fiber.Ctx) error {
	if err := h.controller.Load(c.Context()); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{
			Error:   "load_failed",
			Message: err.Error(),
		})
	}
	return c.JSON(h.view())
}

// SetSearch handles PUT /api/v1/view/search.
func (h *Handlers) SetSearch(c *fiber.Ctx) error {
	var req SearchRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}
	h.controller.SetSearchQuery(req.Query)
	return c.JSON(h.view())
}

// SetFilter handles PUT /api/v1/view/filter.
func (h *Handlers) SetFilter(c *fiber.Ctx) error {
	var req FilterRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}
	if _, err := h.controller.SetStatusFilter(req.Filter); err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(h.view())
}

// SubmitTask handles POST /api/v1/tasks. It creates a task, or saves the
// task being edited.
func (h *Handlers) SubmitTask(c *fiber.Ctx) error {
	var req SubmitTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}

	res, err := h.controller.Submit(c.Context(), req.Name, req.Description)
	if err != nil {
		return h.writeError(c, err)
	}

	code := fiber.StatusOK
	if res.Created {
		code = fiber.StatusCreated
	}
	return c.Status(code).JSON(res)
}

// ToggleTask handles POST /api/v1/tasks/:id/toggle.
func (h *Handlers) ToggleTask(c *fiber.Ctx) error {
	updated, err := h.controller.ToggleComplete(c.Context(), c.Params("id"))
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(updated)
}

// BeginEdit handles POST /api/v1/tasks/:id/edit.
func (h *Handlers) BeginEdit(c *fiber.Ctx) error {
	t, err := h.controller.BeginEdit(c.Params("id"))
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(t)
}

// CancelEdit handles DELETE /api/v1/edit.
func (h *Handlers) CancelEdit(c *fiber.Ctx) error {
	h.controller.CancelEdit()
	return c.JSON(h.view())
}

// RequestDelete handles POST /api/v1/tasks/:id/delete.
func (h *Handlers) RequestDelete(c *fiber.Ctx) error {
	if !h.controller.RequestDelete(c.Params("id")) {
		return c.Status(fiber.StatusConflict).JSON(ErrorResponse{
			Error:   "task_being_edited",
			Message: "a task cannot be deleted while it is being edited",
		})
	}
	return c.JSON(h.view())
}

// ConfirmDelete handles POST /api/v1/tasks/:id/delete/confirm.
func (h *Handlers) ConfirmDelete(c *fiber.Ctx) error {
	if err := h.controller.ConfirmDelete(c.Context(), c.Params("id")); err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(h.view())
}

// CancelDelete handles DELETE /api/v1/delete.
func (h *Handlers) CancelDelete(c *fiber.Ctx) error {
	h.controller.CancelDelete()
	return c.JSON(h.view())
}

// ListNotifications handles GET /api/v1/notifications.
func (h *Handlers) ListNotifications(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"notifications": h.notifications.Active(),
	})
}

// DismissNotification handles DELETE /api/v1/notifications/:id.
func (h *Handlers) DismissNotification(c *fiber.Ctx) error {
	if !h.notifications.Dismiss(c.Params("id")) {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Error:   "not_found",
			Message: "notification not found",
		})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetActivity handles GET /api/v1/activity.
func (h *Handlers) GetActivity(c *fiber.Ctx) error {
	entries := h.activity.Activity()
	return c.JSON(fiber.Map{
		"activity": entries,
		"total":    len(entries),
	})
}

func (h *Handlers) view() ViewResponse {
	return ViewResponse{
		View:          h.controller.View(),
		Notifications: h.notifications.Active(),
	}
}

// writeError maps controller and domain errors to HTTP statuses.
func (h *Handlers) writeError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	kind := "internal_error"

	switch {
	case errors.Is(err, task.ErrValidation):
		code, kind = fiber.StatusUnprocessableEntity, "validation_failed"
	case errors.Is(err, task.ErrInvalidFilter):
		code, kind = fiber.StatusBadRequest, "invalid_filter"
	case errors.Is(err, controller.ErrTaskBusy):
		code, kind = fiber.StatusConflict, "task_busy"
	case errors.Is(err, controller.ErrNoPendingDelete):
		code, kind = fiber.StatusConflict, "no_pending_delete"
	case errors.Is(err, task.ErrNotFound):
		code, kind = fiber.StatusNotFound, "not_found"
	case errors.Is(err, task.ErrStorageWrite), errors.Is(err, task.ErrStorageUnavailable):
		code, kind = fiber.StatusBadGateway, "storage_failed"
	}

	if code >= fiber.StatusInternalServerError {
		h.logger.Error("Request failed", "path", c.Path(), "error", err)
	}

	return c.Status(code).JSON(ErrorResponse{
		Error:   kind,
		Message: err.Error(),
	})
}

func badRequest(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
		Error:   "invalid_request",
		Message: err.Error(),
	})
}
