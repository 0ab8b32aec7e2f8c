package api

import (
	"github.com/example/task-manager/modules/controller"
	"github.com/example/task-manager/modules/notification"
)

// SubmitTaskRequest is the form payload for POST /api/v1/tasks.
type SubmitTaskRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// SearchRequest is the payload for PUT /api/v1/view/search.
type SearchRequest struct {
	Query string `json:"query"`
}

// FilterRequest is the payload for PUT /api/v1/view/filter.
type FilterRequest struct {
	Filter string `json:"filter"`
}

// ViewResponse is the derived view plus the active notifications.
type ViewResponse struct {
	controller.View
	Notifications []notification.Notification `json:"notifications"`
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  string         `json:"status"`
	Details map[string]any `json:"details,omitempty"`
}
