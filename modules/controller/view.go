package controller

import (
	"maps"
	"slices"

	"github.com/example/task-manager/domain/task"
)

// View is a snapshot of everything the presentation layer draws.
type View struct {
	Tasks         []task.Task       `json:"tasks"`
	Shown         int               `json:"shown"`
	Total         int               `json:"total"`
	Mode          Mode              `json:"mode"`
	EditingID     string            `json:"editing_id,omitempty"`
	Editing       *task.Task        `json:"editing,omitempty"`
	SearchQuery   string            `json:"search_query"`
	StatusFilter  task.StatusFilter `json:"status_filter"`
	PendingDelete *Confirmation     `json:"pending_delete,omitempty"`
	FormError     string            `json:"form_error,omitempty"`
	Busy          []string          `json:"busy"`
	Loading       bool              `json:"loading"`
	Loaded        bool              `json:"loaded"`
	LoadError     string            `json:"load_error,omitempty"`
}

// View returns the derived view of the current state.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	tasks := task.Derive(c.tasks, c.searchQuery, c.statusFilter)
	v := View{
		Tasks:        tasks,
		Shown:        len(tasks),
		Total:        len(c.tasks),
		Mode:         c.mode,
		SearchQuery:  c.searchQuery,
		StatusFilter: c.statusFilter,
		FormError:    c.formError,
		Busy:         slices.Sorted(maps.Keys(c.inflight)),
		Loading:      c.loading,
		Loaded:       c.loaded,
		LoadError:    c.loadError,
	}
	if v.Busy == nil {
		v.Busy = []string{}
	}
	if c.mode == ModeEditing {
		v.EditingID = c.editingID
		if t, ok := c.find(c.editingID); ok {
			v.Editing = &t
		}
	}
	if c.pendingDelete != nil {
		p := *c.pendingDelete
		v.PendingDelete = &p
	}
	return v
}

// Mode returns the current mode and, when editing, the edited task id.
func (c *Controller) Mode() (Mode, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode, c.editingID
}

// Tasks returns a copy of the full collection, newest first.
func (c *Controller) Tasks() []task.Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.tasks)
}
