package api

import (
	"time"

	"github.com/phrazzld/taskpad/internal/domain"
)

// CreateTaskRequest is the body of POST /api/tasks.
type CreateTaskRequest struct {
	Name        string `json:"name"        validate:"required"`
	Description string `json:"description"`
	Command     string `json:"command"     validate:"required"`
	CommandType string `json:"commandType" validate:"required"`
}

// UpdateTaskRequest is the body of PUT /api/tasks/{id}. Absent fields are
// left unchanged.
type UpdateTaskRequest struct {
	Name        *string `json:"name"        validate:"omitnil,min=1"`
	Description *string `json:"description"`
	Command     *string `json:"command"     validate:"omitnil,min=1"`
	CommandType *string `json:"commandType" validate:"omitnil,min=1"`
}

// Patch converts the request to a domain.TaskPatch.
func (r UpdateTaskRequest) Patch() domain.TaskPatch {
	patch := domain.TaskPatch{
		Name:        r.Name,
		Description: r.Description,
		Command:     r.Command,
	}
	if r.CommandType != nil {
		ct := domain.CommandType(*r.CommandType)
		patch.CommandType = &ct
	}
	return patch
}

// TaskResponse is the JSON representation of a task.
type TaskResponse struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Description    string     `json:"description"`
	Command        string     `json:"command"`
	CommandType    string     `json:"commandType"`
	CreatedAt      time.Time  `json:"createdAt"`
	IsRunning      bool       `json:"isRunning"`
	LastExecutedAt *time.Time `json:"lastExecutedAt,omitempty"`
	LastStatus     string     `json:"lastStatus,omitempty"`
}

// ExecutionResultResponse carries what the process produced.
type ExecutionResultResponse struct {
	Stdout     string `json:"stdout"`
	Stderr     string `json:"stderr"`
	ExitCode   int    `json:"exitCode"`
	DurationMs int64  `json:"durationMs"`
	Truncated  bool   `json:"truncated"`
}

// ExecuteResponse is the body returned by a successful execute request.
type ExecuteResponse struct {
	Success bool                    `json:"success"`
	Message string                  `json:"message"`
	Result  ExecutionResultResponse `json:"result"`
}

func taskToResponse(t *domain.Task) TaskResponse {
	return TaskResponse{
		ID:             t.ID.String(),
		Name:           t.Name,
		Description:    t.Description,
		Command:        t.Command,
		CommandType:    string(t.CommandType),
		CreatedAt:      t.CreatedAt,
		IsRunning:      t.IsRunning,
		LastExecutedAt: t.LastExecutedAt,
		LastStatus:     string(t.LastStatus),
	}
}

func tasksToResponse(tasks []domain.Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for i := range tasks {
		out = append(out, taskToResponse(&tasks[i]))
	}
	return out
}

func resultToResponse(r *domain.ExecutionResult) ExecutionResultResponse {
	if r == nil {
		return ExecutionResultResponse{}
	}
	return ExecutionResultResponse{
		Stdout:     r.Stdout,
		Stderr:     r.Stderr,
		ExitCode:   r.ExitCode,
		DurationMs: r.Duration.Milliseconds(),
		Truncated:  r.Truncated,
	}
}
