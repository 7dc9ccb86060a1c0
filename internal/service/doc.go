// Package service implements the task manager's application logic: task
// CRUD on top of a store.TaskStore and the execute flow that flags a task as
// running, hands its command to a CommandRunner and records the outcome.
//
// Services return sentinel errors for expected conditions (ErrTaskNotFound,
// ErrTaskRunning, domain.ErrValidation) and wrap everything else in a
// *TaskServiceError, so the API layer can map errors with errors.Is.
package service
