package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/task-manager/domain/task"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository provides access to the persistent task table.
type Repository struct {
	db    *gorm.DB
	owner string
	now   func() time.Time
}

// NewRepository creates a new task repository. Every task it creates is
// recorded under owner.
func NewRepository(db *gorm.DB, owner string) *Repository {
	if owner == "" {
		owner = task.DefaultOwner
	}
	return &Repository{db: db, owner: owner, now: time.Now}
}

// Migrate creates or updates the tasks table.
func (r *Repository) Migrate() error {
	return r.db.AutoMigrate(&task.Task{})
}

// ListAll returns every persisted task, newest first.
func (r *Repository) ListAll(ctx context.Context) ([]task.Task, error) {
	tasks := make([]task.Task, 0)
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list tasks: %v", task.ErrStorageUnavailable, err)
	}
	return tasks, nil
}

// Create stores a new task with a generated ID, completed=false and fresh timestamps.
func (r *Repository) Create(ctx context.Context, name, description string) (*task.Task, error) {
	if err := task.ValidateName(name); err != nil {
		return nil, err
	}
	if err := task.ValidateDescription(description); err != nil {
		return nil, err
	}

	now := r.now()
	t := &task.Task{
		ID:          uuid.New().String(),
		Name:        name,
		Description: description,
		Completed:   false,
		Owner:       r.owner,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := r.db.WithContext(ctx).Create(t).Error; err != nil {
		return nil, fmt.Errorf("%w: failed to create task: %v", task.ErrStorageWrite, err)
	}
	return t, nil
}

// Update merges patch into the task with the given ID and refreshes UpdatedAt.
func (r *Repository) Update(ctx context.Context, id string, patch task.Patch) (*task.Task, error) {
	if patch.Name != nil {
		if err := task.ValidateName(*patch.Name); err != nil {
			return nil, err
		}
	}
	if patch.Description != nil {
		if err := task.ValidateDescription(*patch.Description); err != nil {
			return nil, err
		}
	}

	var updated task.Task
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&updated, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return task.ErrNotFound
			}
			return fmt.Errorf("%w: failed to load task: %v", task.ErrStorageWrite, err)
		}

		patch.Apply(&updated)
		updated.UpdatedAt = r.touch(updated.CreatedAt)

		result := tx.Model(&task.Task{}).Where("id = ?", id).Updates(map[string]any{
			"name":        updated.Name,
			"description": updated.Description,
			"completed":   updated.Completed,
			"updated_at":  updated.UpdatedAt,
		})
		if result.Error != nil {
			return fmt.Errorf("%w: failed to update task: %v", task.ErrStorageWrite, result.Error)
		}
		if result.RowsAffected == 0 {
			return task.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes the task with the given ID.
func (r *Repository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&task.Task{}, "id = ?", id)
	if err := result.Error; err != nil {
		return fmt.Errorf("%w: failed to delete task: %v", task.ErrStorageWrite, err)
	}
	if result.RowsAffected == 0 {
		return task.ErrNotFound
	}
	return nil
}

// Ping checks that the underlying database connection is usable.
func (r *Repository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("%w: %v", task.ErrStorageUnavailable, err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", task.ErrStorageUnavailable, err)
	}
	return nil
}

// touch returns the new UpdatedAt value, never earlier than createdAt.
func (r *Repository) touch(createdAt time.Time) time.Time {
	now := r.now()
	if now.Before(createdAt) {
		return createdAt
	}
	return now
}
