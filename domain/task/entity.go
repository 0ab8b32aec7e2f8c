package task

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Name and description limits, in characters, enforced by the store.
const (
	MaxNameLength        = 200
	MaxDescriptionLength = 2000
)

// DefaultOwner is the owner recorded on every task in a single-user deployment.
const DefaultOwner = "local"

// Task is the single persisted entity: one to-do item.
type Task struct {
	ID          string    `gorm:"primarykey;size:36" json:"id"`
	Name        string    `gorm:"size:200;not null" json:"name"`
	Description string    `gorm:"size:2000" json:"description"`
	Completed   bool      `gorm:"not null;default:false;index" json:"completed"`
	Owner       string    `gorm:"size:64;not null;index" json:"owner"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName returns the table name for Task model.
func (Task) TableName() string {
	return "tasks"
}

// Patch carries a partial update. Nil fields are left unchanged.
type Patch struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Completed   *bool   `json:"completed,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Name == nil && p.Description == nil && p.Completed == nil
}

// Apply merges the patch into t. It does not touch UpdatedAt.
func (p Patch) Apply(t *Task) {
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
}

// ValidateName checks a (trimmed) task name.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrNameRequired
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return ErrNameTooLong
	}
	return nil
}

// ValidateDescription checks a task description.
func ValidateDescription(description string) error {
	if utf8.RuneCountInString(description) > MaxDescriptionLength {
		return ErrDescriptionTooLong
	}
	return nil
}
