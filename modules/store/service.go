package store

import (
	"context"
	"log"
	"sync/atomic"

	"github.com/example/task-manager/domain/task"
	"golang.org/x/sync/singleflight"
)

// snapshotKey is the cache key holding the full task list.
const snapshotKey = "snapshot"

// SnapshotCache stores the serialized task list between reads.
type SnapshotCache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, key string) error
}

// Service provides task operations over the repository, with an optional
// snapshot cache in front of ListAll.
type Service struct {
	repo    *Repository
	cache   SnapshotCache
	sfGroup singleflight.Group

	// version is bumped by every successful write before the snapshot is
	// dropped; a read only caches what it loaded if no write happened since.
	version atomic.Uint64
}

// NewService creates a new task service. cache may be nil.
func NewService(repo *Repository, cache SnapshotCache) *Service {
	return &Service{repo: repo, cache: cache}
}

// ListAll returns all tasks, served from the snapshot cache when possible.
// Concurrent misses share a single database read.
func (s *Service) ListAll(ctx context.Context) ([]task.Task, error) {
	if s.cache != nil {
		var cached []task.Task
		found, err := s.cache.Get(ctx, snapshotKey, &cached)
		if err != nil {
			log.Printf("[store] Cache error for snapshot: %v", err)
		}
		if found {
			return cached, nil
		}
	}

	val, err, _ := s.sfGroup.Do(snapshotKey, func() (any, error) {
		seen := s.version.Load()
		tasks, err := s.repo.ListAll(ctx)
		if err != nil {
			return nil, err
		}
		s.storeSnapshot(ctx, seen, tasks)
		return tasks, nil
	})
	if err != nil {
		return nil, err
	}
	tasks := val.([]task.Task)

	// Callers of a shared flight must not alias each other's slice.
	out := make([]task.Task, len(tasks))
	copy(out, tasks)
	return out, nil
}

// Create stores a new task and invalidates the snapshot.
func (s *Service) Create(ctx context.Context, name, description string) (*task.Task, error) {
	created, err := s.repo.Create(ctx, name, description)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return created, nil
}

// Update patches a task and invalidates the snapshot.
func (s *Service) Update(ctx context.Context, id string, patch task.Patch) (*task.Task, error) {
	updated, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return updated, nil
}

// Delete removes a task and invalidates the snapshot.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// Ping checks the repository connection.
func (s *Service) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

// storeSnapshot caches tasks read at version seen. A write that lands
// while the snapshot is being stored drops it again.
func (s *Service) storeSnapshot(ctx context.Context, seen uint64, tasks []task.Task) {
	if s.cache == nil || s.version.Load() != seen {
		return
	}
	if err := s.cache.Set(ctx, snapshotKey, tasks); err != nil {
		log.Printf("[store] Warning: failed to cache snapshot: %v", err)
		return
	}
	if s.version.Load() != seen {
		if err := s.cache.Delete(ctx, snapshotKey); err != nil {
			log.Printf("[store] Warning: failed to drop stale snapshot: %v", err)
		}
	}
}

func (s *Service) invalidate(ctx context.Context) {
	s.version.Add(1)
	// Reads started after this write must not join a flight that began before it.
	s.sfGroup.Forget(snapshotKey)
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, snapshotKey); err != nil {
		log.Printf("[store] Warning: failed to invalidate snapshot: %v", err)
	}
}
