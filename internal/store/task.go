package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/taskpad/internal/domain"
)

// TaskStore defines the interface for task persistence.
// Implementations must be safe for concurrent use. Returned tasks are copies;
// mutating them has no effect on stored state.
type TaskStore interface {
	// List returns all tasks in creation order.
	List(ctx context.Context) ([]domain.Task, error)

	// Get retrieves a task by its unique ID.
	// Returns ErrTaskNotFound if the task does not exist.
	Get(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// Create inserts a new task.
	// Returns ErrInvalidEntity if the task fails validation.
	Create(ctx context.Context, task *domain.Task) error

	// Update loads the task, calls fn on a copy and stores the copy if fn
	// returns nil. The read-modify-write happens under the store's lock, so
	// fn may be used as a compare-and-set. Returns ErrTaskNotFound if the
	// task does not exist, or fn's error unchanged.
	Update(ctx context.Context, id uuid.UUID, fn func(task *domain.Task) error) (*domain.Task, error)

	// Release applies fn like Update, but keeps the change in memory even
	// when it cannot be persisted. It is used to clear transient state, such
	// as the running flag, that must not stay set because of a write error.
	// On a persist failure it returns the updated task together with an
	// ErrPersistFailed error.
	Release(ctx context.Context, id uuid.UUID, fn func(task *domain.Task)) (*domain.Task, error)

	// Delete removes a task and returns the removed record.
	// Returns ErrTaskNotFound if the task does not exist.
	Delete(ctx context.Context, id uuid.UUID) (*domain.Task, error)
}
