package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskpad/internal/domain"
	"github.com/phrazzld/taskpad/internal/events"
	"github.com/phrazzld/taskpad/internal/redact"
	"github.com/phrazzld/taskpad/internal/store"
)

// CommandRunner launches a command and waits for it to finish.
// *executor.Executor satisfies this interface.
type CommandRunner interface {
	Execute(ctx context.Context, commandType domain.CommandType, command string) (*domain.ExecutionResult, error)
}

// CreateTaskParams holds the fields supplied when creating a task.
type CreateTaskParams struct {
	Name        string
	Description string
	Command     string
	CommandType domain.CommandType
}

// ExecutionOutcome is the task state after an execution plus what the
// process produced. Result is nil when the process never started.
type ExecutionOutcome struct {
	Task   *domain.Task
	Result *domain.ExecutionResult
}

// TaskService provides task-related operations.
type TaskService interface {
	// ListTasks returns every task in creation order.
	ListTasks(ctx context.Context) ([]domain.Task, error)

	// GetTask retrieves a task by ID.
	GetTask(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// CreateTask validates and stores a new task.
	CreateTask(ctx context.Context, params CreateTaskParams) (*domain.Task, error)

	// UpdateTask applies a partial update to a task. An empty patch returns
	// the task unchanged without saving.
	UpdateTask(ctx context.Context, id uuid.UUID, patch domain.TaskPatch) (*domain.Task, error)

	// DeleteTask removes a task and returns the removed record.
	DeleteTask(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// ExecuteTask runs the task's command and records the outcome.
	// The returned outcome is non-nil whenever the task was marked running,
	// even if the execution itself failed; the error is the runner's error.
	ExecuteTask(ctx context.Context, id uuid.UUID) (*ExecutionOutcome, error)
}

// taskServiceImpl implements the TaskService interface
type taskServiceImpl struct {
	store        store.TaskStore
	runner       CommandRunner
	eventEmitter events.EventEmitter
	logger       *slog.Logger
	now          func() time.Time
}

// NewTaskService creates a new TaskService.
// It returns an error if any of the required dependencies are nil.
func NewTaskService(
	taskStore store.TaskStore,
	runner CommandRunner,
	eventEmitter events.EventEmitter,
	logger *slog.Logger,
) (TaskService, error) {
	if taskStore == nil {
		return nil, &TaskServiceError{Operation: "create_service", Message: "taskStore cannot be nil"}
	}
	if runner == nil {
		return nil, &TaskServiceError{Operation: "create_service", Message: "runner cannot be nil"}
	}
	if eventEmitter == nil {
		return nil, &TaskServiceError{Operation: "create_service", Message: "eventEmitter cannot be nil"}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &taskServiceImpl{
		store:        taskStore,
		runner:       runner,
		eventEmitter: eventEmitter,
		logger:       logger.With("component", "task_service"),
		now:          time.Now,
	}, nil
}

// ListTasks implements TaskService.
func (s *taskServiceImpl) ListTasks(ctx context.Context) ([]domain.Task, error) {
	tasks, err := s.store.List(ctx)
	if err != nil {
		return nil, NewTaskServiceError("list_tasks", "failed to list tasks", err)
	}
	return tasks, nil
}

// GetTask implements TaskService.
func (s *taskServiceImpl) GetTask(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	task, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, NewTaskServiceError("get_task", "failed to get task", err)
	}
	return task, nil
}

// CreateTask implements TaskService.
func (s *taskServiceImpl) CreateTask(ctx context.Context, params CreateTaskParams) (*domain.Task, error) {
	task, err := domain.NewTask(params.Name, params.Description, params.Command, params.CommandType)
	if err != nil {
		return nil, err
	}

	if err := s.store.Create(ctx, task); err != nil {
		return nil, NewTaskServiceError("create_task", "failed to save task", err)
	}
	s.warnUnknownType(task)

	s.logger.Info("task created",
		"task_id", task.ID,
		"command_type", string(task.CommandType))
	s.emit(ctx, events.TaskCreated, task.ID, nil)
	return task, nil
}

// UpdateTask implements TaskService.
func (s *taskServiceImpl) UpdateTask(
	ctx context.Context,
	id uuid.UUID,
	patch domain.TaskPatch,
) (*domain.Task, error) {
	if patch.IsEmpty() {
		return s.GetTask(ctx, id)
	}

	task, err := s.store.Update(ctx, id, patch.Apply)
	if err != nil {
		return nil, NewTaskServiceError("update_task", "failed to update task", err)
	}
	if patch.CommandType != nil {
		s.warnUnknownType(task)
	}

	s.logger.Info("task updated", "task_id", id)
	s.emit(ctx, events.TaskUpdated, id, nil)
	return task, nil
}

// DeleteTask implements TaskService.
func (s *taskServiceImpl) DeleteTask(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	task, err := s.store.Delete(ctx, id)
	if err != nil {
		return nil, NewTaskServiceError("delete_task", "failed to delete task", err)
	}

	s.logger.Info("task deleted", "task_id", id)
	s.emit(ctx, events.TaskDeleted, id, nil)
	return task, nil
}

// ExecuteTask implements TaskService.
//
// The running flag is checked and set in a single store update, so two
// concurrent requests for the same task cannot both start a process; the
// loser gets ErrTaskRunning. The outcome is recorded with a context detached
// from the request so a disconnecting client cannot leave the flag set.
func (s *taskServiceImpl) ExecuteTask(ctx context.Context, id uuid.UUID) (*ExecutionOutcome, error) {
	log := s.logger.With("task_id", id)

	task, err := s.store.Update(ctx, id, func(t *domain.Task) error {
		if t.IsRunning {
			return ErrTaskRunning
		}
		t.MarkRunning()
		return nil
	})
	if err != nil {
		return nil, NewTaskServiceError("execute_task", "failed to mark task running", err)
	}

	log.Info("executing task", "command_type", string(task.CommandType))
	s.emit(ctx, events.TaskExecutionStarted, id, nil)

	result, runErr := s.runner.Execute(ctx, task.CommandType, task.Command)

	status := domain.ExecutionStatusSuccess
	if runErr != nil {
		status = domain.ExecutionStatusError
	}
	finishedAt := s.now()

	recordCtx := context.WithoutCancel(ctx)
	updated, err := s.store.Release(recordCtx, id, func(t *domain.Task) {
		t.RecordOutcome(status, finishedAt)
	})
	if err != nil {
		if store.IsNotFoundError(err) {
			// Deleted while running; report the run against the snapshot.
			log.Warn("task deleted during execution")
			task.RecordOutcome(status, finishedAt)
			updated = task
		} else {
			// The running flag is already cleared in memory; only the
			// saved copy is stale.
			log.Error("failed to record execution outcome", "error", err)
			if updated == nil {
				task.RecordOutcome(status, finishedAt)
				updated = task
			}
			return &ExecutionOutcome{Task: updated, Result: result},
				NewTaskServiceError("execute_task", "failed to record execution outcome", err)
		}
	}

	payload := events.ExecutionFinishedPayload{Status: string(status), ExitCode: -1}
	if result != nil {
		payload.ExitCode = result.ExitCode
		payload.DurationMs = result.Duration.Milliseconds()
	}
	if runErr != nil {
		payload.Error = runErr.Error()
		log.Warn("task execution failed", "error", redact.Error(runErr))
	}
	s.emit(recordCtx, events.TaskExecutionFinished, id, payload)

	return &ExecutionOutcome{Task: updated, Result: result}, runErr
}

// warnUnknownType logs tasks stored with a command type the executor will
// reject. They are kept so the user can correct them.
func (s *taskServiceImpl) warnUnknownType(task *domain.Task) {
	if !task.CommandType.IsKnown() {
		s.logger.Warn("task has unsupported command type",
			"task_id", task.ID,
			"command_type", string(task.CommandType))
	}
}

// emit publishes a lifecycle event. Handler failures are logged and never
// fail the operation that produced the event.
func (s *taskServiceImpl) emit(ctx context.Context, eventType events.EventType, taskID uuid.UUID, payload interface{}) {
	event, err := events.NewTaskEvent(eventType, taskID, payload)
	if err != nil {
		s.logger.Error("failed to build event", "event_type", string(eventType), "error", err)
		return
	}
	if err := s.eventEmitter.EmitEvent(ctx, event); err != nil {
		s.logger.Warn("failed to emit event",
			"event_type", string(eventType),
			"task_id", taskID,
			"error", err)
	}
}
