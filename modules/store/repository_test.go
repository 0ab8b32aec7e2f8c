package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/task-manager/domain/task"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(&task.Task{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return db
}

// fixedClock returns a clock that advances by one second on every call.
func fixedClock(start time.Time) func() time.Time {
	current := start
	return func() time.Time {
		now := current
		current = current.Add(time.Second)
		return now
	}
}

func TestRepository_Create(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db, "")
	ctx := context.Background()

	created, err := repo.Create(ctx, "Buy milk", "2 liters")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if created.ID == "" {
		t.Error("expected generated ID")
	}
	if created.Completed {
		t.Error("expected new task to be active")
	}
	if created.Owner != task.DefaultOwner {
		t.Errorf("expected owner %q, got %q", task.DefaultOwner, created.Owner)
	}
	if created.UpdatedAt.Before(created.CreatedAt) {
		t.Error("expected updated_at >= created_at")
	}

	// Verify task was persisted
	var found task.Task
	if err := db.First(&found, "id = ?", created.ID).Error; err != nil {
		t.Fatalf("failed to find created task: %v", err)
	}
	if found.Name != "Buy milk" {
		t.Errorf("expected name %q, got %q", "Buy milk", found.Name)
	}
	if found.Description != "2 liters" {
		t.Errorf("expected description %q, got %q", "2 liters", found.Description)
	}

	t.Run("empty name rejected", func(t *testing.T) {
		_, err := repo.Create(ctx, "  ", "x")
		if !errors.Is(err, task.ErrValidation) {
			t.Errorf("expected ErrValidation, got %v", err)
		}

		var count int64
		db.Model(&task.Task{}).Count(&count)
		if count != 1 {
			t.Errorf("expected 1 stored task, got %d", count)
		}
	})

	t.Run("ids are unique", func(t *testing.T) {
		other, err := repo.Create(ctx, "Another", "")
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if other.ID == created.ID {
			t.Error("expected distinct IDs")
		}
	})
}

func TestRepository_ListAll(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db, "local")
	repo.now = fixedClock(time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC))
	ctx := context.Background()

	t.Run("empty database", func(t *testing.T) {
		tasks, err := repo.ListAll(ctx)
		if err != nil {
			t.Fatalf("ListAll() error = %v", err)
		}
		if len(tasks) != 0 {
			t.Errorf("expected 0 tasks, got %d", len(tasks))
		}
	})

	for _, name := range []string{"first", "second", "third"} {
		if _, err := repo.Create(ctx, name, ""); err != nil {
			t.Fatalf("failed to create test task: %v", err)
		}
	}

	t.Run("newest first", func(t *testing.T) {
		tasks, err := repo.ListAll(ctx)
		if err != nil {
			t.Fatalf("ListAll() error = %v", err)
		}
		if len(tasks) != 3 {
			t.Fatalf("expected 3 tasks, got %d", len(tasks))
		}
		want := []string{"third", "second", "first"}
		for i, name := range want {
			if tasks[i].Name != name {
				t.Errorf("tasks[%d].Name = %q, want %q", i, tasks[i].Name, name)
			}
		}
	})

	t.Run("closed database is unavailable", func(t *testing.T) {
		sqlDB, _ := db.DB()
		sqlDB.Close()

		_, err := repo.ListAll(ctx)
		if !errors.Is(err, task.ErrStorageUnavailable) {
			t.Errorf("expected ErrStorageUnavailable, got %v", err)
		}
	})
}

func TestRepository_Update(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db, "local")
	repo.now = fixedClock(time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC))
	ctx := context.Background()

	original, err := repo.Create(ctx, "Original", "Original description")
	if err != nil {
		t.Fatalf("failed to create test task: %v", err)
	}

	t.Run("toggle completed", func(t *testing.T) {
		done := true
		updated, err := repo.Update(ctx, original.ID, task.Patch{Completed: &done})
		if err != nil {
			t.Fatalf("Update() error = %v", err)
		}

		if !updated.Completed {
			t.Error("expected task to be completed")
		}
		if updated.Name != original.Name || updated.Description != original.Description {
			t.Error("expected name and description unchanged")
		}
		if updated.ID != original.ID {
			t.Errorf("ID changed: %q -> %q", original.ID, updated.ID)
		}
		if !updated.CreatedAt.Equal(original.CreatedAt) {
			t.Errorf("created_at changed: %v -> %v", original.CreatedAt, updated.CreatedAt)
		}
		if !updated.UpdatedAt.After(original.UpdatedAt) {
			t.Errorf("expected updated_at refreshed, got %v (was %v)", updated.UpdatedAt, original.UpdatedAt)
		}

		var found task.Task
		if err := db.First(&found, "id = ?", original.ID).Error; err != nil {
			t.Fatalf("failed to find updated task: %v", err)
		}
		if !found.Completed {
			t.Error("expected persisted task to be completed")
		}
	})

	t.Run("un-toggle persists false", func(t *testing.T) {
		active := false
		updated, err := repo.Update(ctx, original.ID, task.Patch{Completed: &active})
		if err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		if updated.Completed {
			t.Error("expected task to be active")
		}

		var found task.Task
		db.First(&found, "id = ?", original.ID)
		if found.Completed {
			t.Error("expected persisted task to be active")
		}
	})

	t.Run("rename", func(t *testing.T) {
		name, desc := "Renamed", ""
		updated, err := repo.Update(ctx, original.ID, task.Patch{Name: &name, Description: &desc})
		if err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		if updated.Name != "Renamed" || updated.Description != "" {
			t.Errorf("unexpected task after rename: %+v", updated)
		}
	})

	t.Run("empty name rejected", func(t *testing.T) {
		empty := ""
		_, err := repo.Update(ctx, original.ID, task.Patch{Name: &empty})
		if !errors.Is(err, task.ErrValidation) {
			t.Errorf("expected ErrValidation, got %v", err)
		}
	})

	t.Run("update non-existent task", func(t *testing.T) {
		done := true
		_, err := repo.Update(ctx, "non-existent-id", task.Patch{Completed: &done})
		if !errors.Is(err, task.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestRepository_Update_ClockSkew(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db, "local")
	created := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return created }
	ctx := context.Background()

	original, err := repo.Create(ctx, "Skewed", "")
	if err != nil {
		t.Fatalf("failed to create test task: %v", err)
	}

	repo.now = func() time.Time { return created.Add(-time.Hour) }
	done := true
	updated, err := repo.Update(ctx, original.ID, task.Patch{Completed: &done})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.UpdatedAt.Before(updated.CreatedAt) {
		t.Errorf("updated_at %v before created_at %v", updated.UpdatedAt, updated.CreatedAt)
	}
}

func TestRepository_Delete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db, "local")
	ctx := context.Background()

	created, err := repo.Create(ctx, "To Be Deleted", "")
	if err != nil {
		t.Fatalf("failed to create test task: %v", err)
	}

	t.Run("delete existing task", func(t *testing.T) {
		if err := repo.Delete(ctx, created.ID); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}

		var count int64
		db.Model(&task.Task{}).Where("id = ?", created.ID).Count(&count)
		if count != 0 {
			t.Errorf("expected task to be removed, found %d rows", count)
		}

		tasks, err := repo.ListAll(ctx)
		if err != nil {
			t.Fatalf("ListAll() error = %v", err)
		}
		if len(tasks) != 0 {
			t.Errorf("expected empty list after delete, got %d", len(tasks))
		}
	})

	t.Run("delete non-existent task", func(t *testing.T) {
		err := repo.Delete(ctx, "non-existent-id")
		if !errors.Is(err, task.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("delete on closed database", func(t *testing.T) {
		sqlDB, _ := db.DB()
		sqlDB.Close()

		err := repo.Delete(ctx, "any-id")
		if !errors.Is(err, task.ErrStorageWrite) {
			t.Errorf("expected ErrStorageWrite, got %v", err)
		}
	})
}
