package filestore

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/taskpad/internal/domain"
	"github.com/phrazzld/taskpad/internal/store"
)

// TaskStore implements store.TaskStore on top of a Persister.
type TaskStore struct {
	mu        sync.RWMutex
	tasks     []domain.Task
	persister Persister
	logger    *slog.Logger
}

var _ store.TaskStore = (*TaskStore)(nil)

// Open loads the collection from persister and returns a ready store.
// Load failures are fatal: the store refuses to start rather than replace
// unreadable data with an empty collection. Tasks persisted with the running
// flag set (an execution interrupted by a crash) are reset and saved back.
func Open(ctx context.Context, persister Persister, logger *slog.Logger) (*TaskStore, error) {
	if persister == nil {
		return nil, fmt.Errorf("persister cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	tasks, err := persister.Load(ctx)
	if err != nil {
		return nil, store.NewStoreError("task", "load", "could not load tasks", fmt.Errorf("%w: %v", store.ErrLoadFailed, err))
	}

	s := &TaskStore{
		tasks:     tasks,
		persister: persister,
		logger:    logger.With("component", "task_store"),
	}

	reset := 0
	for i := range s.tasks {
		if s.tasks[i].IsRunning {
			s.tasks[i].IsRunning = false
			reset++
		}
	}
	if reset > 0 {
		s.logger.Warn("reset stale running flags", "count", reset)
		if err := persister.Save(ctx, s.tasks); err != nil {
			return nil, store.NewStoreError("task", "load", "could not save recovered tasks", fmt.Errorf("%w: %v", store.ErrPersistFailed, err))
		}
	}

	s.logger.Info("task store loaded", "task_count", len(s.tasks))
	return s, nil
}

// List implements store.TaskStore.
func (s *TaskStore) List(ctx context.Context) ([]domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Task, len(s.tasks))
	for i := range s.tasks {
		out[i] = cloneTask(s.tasks[i])
	}
	return out, nil
}

// Get implements store.TaskStore.
func (s *TaskStore) Get(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return nil, store.ErrTaskNotFound
	}
	task := cloneTask(s.tasks[idx])
	return &task, nil
}

// Create implements store.TaskStore.
func (s *TaskStore) Create(ctx context.Context, task *domain.Task) error {
	if err := task.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(task.ID) >= 0 {
		return fmt.Errorf("%w: duplicate task id %s", store.ErrInvalidEntity, task.ID)
	}

	next := s.snapshot(len(s.tasks) + 1)
	next = append(next, cloneTask(*task))
	if err := s.commit(ctx, next, "create"); err != nil {
		return err
	}
	return nil
}

// Update implements store.TaskStore.
func (s *TaskStore) Update(
	ctx context.Context,
	id uuid.UUID,
	fn func(task *domain.Task) error,
) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return nil, store.ErrTaskNotFound
	}

	updated := cloneTask(s.tasks[idx])
	if err := fn(&updated); err != nil {
		return nil, err
	}
	updated.ID = id

	next := s.snapshot(len(s.tasks))
	next[idx] = updated
	if err := s.commit(ctx, next, "update"); err != nil {
		return nil, err
	}

	result := cloneTask(updated)
	return &result, nil
}

// Release implements store.TaskStore.
func (s *TaskStore) Release(
	ctx context.Context,
	id uuid.UUID,
	fn func(task *domain.Task),
) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return nil, store.ErrTaskNotFound
	}

	updated := cloneTask(s.tasks[idx])
	fn(&updated)
	updated.ID = id

	next := s.snapshot(len(s.tasks))
	next[idx] = updated
	err := s.commit(ctx, next, "release")
	if err != nil {
		// Disk still holds the old record; Open resets its running flag.
		s.tasks = next
	}

	result := cloneTask(updated)
	return &result, err
}

// Delete implements store.TaskStore.
func (s *TaskStore) Delete(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return nil, store.ErrTaskNotFound
	}
	removed := cloneTask(s.tasks[idx])

	next := make([]domain.Task, 0, len(s.tasks)-1)
	next = append(next, s.tasks[:idx]...)
	next = append(next, s.tasks[idx+1:]...)
	if err := s.commit(ctx, next, "delete"); err != nil {
		return nil, err
	}
	return &removed, nil
}

// commit persists next and swaps it in. Caller must hold the write lock.
func (s *TaskStore) commit(ctx context.Context, next []domain.Task, operation string) error {
	if err := s.persister.Save(ctx, next); err != nil {
		s.logger.Error("failed to persist tasks", "operation", operation, "error", err)
		return store.NewStoreError("task", operation, "could not persist tasks", fmt.Errorf("%w: %v", store.ErrPersistFailed, err))
	}
	s.tasks = next
	return nil
}

// snapshot copies the current collection with room for capacity entries.
func (s *TaskStore) snapshot(capacity int) []domain.Task {
	next := make([]domain.Task, len(s.tasks), capacity)
	copy(next, s.tasks)
	return next
}

func (s *TaskStore) indexOf(id uuid.UUID) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func cloneTask(t domain.Task) domain.Task {
	if t.LastExecutedAt != nil {
		at := *t.LastExecutedAt
		t.LastExecutedAt = &at
	}
	return t
}
