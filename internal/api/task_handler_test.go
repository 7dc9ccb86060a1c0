package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/taskpad/internal/api/shared"
	"github.com/phrazzld/taskpad/internal/domain"
	"github.com/phrazzld/taskpad/internal/executor"
	"github.com/phrazzld/taskpad/internal/service"
	"github.com/phrazzld/taskpad/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockTaskService is a mock implementation of service.TaskService for testing
type MockTaskService struct {
	ListTasksFn   func(ctx context.Context) ([]domain.Task, error)
	GetTaskFn     func(ctx context.Context, id uuid.UUID) (*domain.Task, error)
	CreateTaskFn  func(ctx context.Context, params service.CreateTaskParams) (*domain.Task, error)
	UpdateTaskFn  func(ctx context.Context, id uuid.UUID, patch domain.TaskPatch) (*domain.Task, error)
	DeleteTaskFn  func(ctx context.Context, id uuid.UUID) (*domain.Task, error)
	ExecuteTaskFn func(ctx context.Context, id uuid.UUID) (*service.ExecutionOutcome, error)
}

func (m *MockTaskService) ListTasks(ctx context.Context) ([]domain.Task, error) {
	if m.ListTasksFn != nil {
		return m.ListTasksFn(ctx)
	}
	return []domain.Task{}, nil
}

func (m *MockTaskService) GetTask(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	if m.GetTaskFn != nil {
		return m.GetTaskFn(ctx, id)
	}
	return nil, service.ErrTaskNotFound
}

func (m *MockTaskService) CreateTask(ctx context.Context, params service.CreateTaskParams) (*domain.Task, error) {
	if m.CreateTaskFn != nil {
		return m.CreateTaskFn(ctx, params)
	}
	return domain.NewTask(params.Name, params.Description, params.Command, params.CommandType)
}

func (m *MockTaskService) UpdateTask(ctx context.Context, id uuid.UUID, patch domain.TaskPatch) (*domain.Task, error) {
	if m.UpdateTaskFn != nil {
		return m.UpdateTaskFn(ctx, id, patch)
	}
	return nil, service.ErrTaskNotFound
}

func (m *MockTaskService) DeleteTask(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	if m.DeleteTaskFn != nil {
		return m.DeleteTaskFn(ctx, id)
	}
	return nil, service.ErrTaskNotFound
}

func (m *MockTaskService) ExecuteTask(ctx context.Context, id uuid.UUID) (*service.ExecutionOutcome, error) {
	if m.ExecuteTaskFn != nil {
		return m.ExecuteTaskFn(ctx, id)
	}
	return nil, service.ErrTaskNotFound
}

var (
	fixedTaskID = uuid.MustParse("22222222-2222-2222-2222-222222222222")
	fixedTime   = time.Date(2025, time.April, 1, 12, 0, 0, 0, time.UTC)
)

func sampleTask() *domain.Task {
	return &domain.Task{
		ID:          fixedTaskID,
		Name:        "Backup",
		Description: "nightly",
		Command:     "echo ok",
		CommandType: domain.CommandTypeBatch,
		CreatedAt:   fixedTime,
	}
}

func newTestRouter(svc service.TaskService) http.Handler {
	h := NewTaskHandler(svc, nil)
	r := chi.NewRouter()
	r.Get("/api/tasks", h.ListTasks)
	r.Post("/api/tasks", h.CreateTask)
	r.Get("/api/tasks/{id}", h.GetTask)
	r.Put("/api/tasks/{id}", h.UpdateTask)
	r.Delete("/api/tasks/{id}", h.DeleteTask)
	r.Post("/api/tasks/{id}/execute", h.ExecuteTask)
	return r
}

func doRequest(t *testing.T, handler http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) shared.ErrorResponse {
	t.Helper()
	var resp shared.ErrorResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	return resp
}

func TestTaskHandler_ListTasks(t *testing.T) {
	t.Run("returns tasks in order", func(t *testing.T) {
		first := *sampleTask()
		second := *sampleTask()
		second.ID = uuid.New()
		second.Name = "Deploy"
		status := domain.ExecutionStatusSuccess
		second.LastStatus = status
		second.LastExecutedAt = &fixedTime

		svc := &MockTaskService{ListTasksFn: func(ctx context.Context) ([]domain.Task, error) {
			return []domain.Task{first, second}, nil
		}}

		rr := doRequest(t, newTestRouter(svc), http.MethodGet, "/api/tasks", nil)
		require.Equal(t, http.StatusOK, rr.Code)

		var got []TaskResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
		require.Len(t, got, 2)
		assert.Equal(t, "Backup", got[0].Name)
		assert.Equal(t, "Deploy", got[1].Name)
		assert.Equal(t, "success", got[1].LastStatus)
		assert.Equal(t, "batch", got[0].CommandType)
	})

	t.Run("empty collection encodes as array", func(t *testing.T) {
		svc := &MockTaskService{ListTasksFn: func(ctx context.Context) ([]domain.Task, error) {
			return nil, nil
		}}
		rr := doRequest(t, newTestRouter(svc), http.MethodGet, "/api/tasks", nil)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `[]`, rr.Body.String())
	})

	t.Run("store failure", func(t *testing.T) {
		svc := &MockTaskService{ListTasksFn: func(ctx context.Context) ([]domain.Task, error) {
			return nil, errors.New("boom")
		}}
		rr := doRequest(t, newTestRouter(svc), http.MethodGet, "/api/tasks", nil)
		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.Equal(t, "Failed to load tasks", decodeError(t, rr).Error)
	})
}

func TestTaskHandler_GetTask(t *testing.T) {
	svc := &MockTaskService{GetTaskFn: func(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
		if id == fixedTaskID {
			return sampleTask(), nil
		}
		return nil, service.ErrTaskNotFound
	}}
	router := newTestRouter(svc)

	rr := doRequest(t, router, http.MethodGet, "/api/tasks/"+fixedTaskID.String(), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var got TaskResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
	assert.Equal(t, fixedTaskID.String(), got.ID)
	assert.False(t, got.IsRunning)
	assert.Nil(t, got.LastExecutedAt)

	rr = doRequest(t, router, http.MethodGet, "/api/tasks/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Task not found", decodeError(t, rr).Error)

	rr = doRequest(t, router, http.MethodGet, "/api/tasks/not-a-uuid", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestTaskHandler_CreateTask(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		createFn       func(ctx context.Context, params service.CreateTaskParams) (*domain.Task, error)
		expectedStatus int
		expectedErrMsg string
		called         bool
	}{
		{
			name: "success",
			body: map[string]string{
				"name": "Backup", "description": "nightly", "command": "echo ok", "commandType": "batch",
			},
			expectedStatus: http.StatusCreated,
			called:         true,
		},
		{
			name:           "description optional",
			body:           map[string]string{"name": "Backup", "command": "echo ok", "commandType": "batch"},
			expectedStatus: http.StatusCreated,
			called:         true,
		},
		{
			name:           "unknown command type accepted",
			body:           map[string]string{"name": "Ruby", "command": "puts 1", "commandType": "ruby"},
			expectedStatus: http.StatusCreated,
			called:         true,
		},
		{
			name:           "missing name",
			body:           map[string]string{"command": "echo ok", "commandType": "batch"},
			expectedStatus: http.StatusBadRequest,
			expectedErrMsg: "Missing required fields: name, command, commandType",
		},
		{
			name:           "missing command type",
			body:           map[string]string{"name": "Backup", "command": "echo ok"},
			expectedStatus: http.StatusBadRequest,
			expectedErrMsg: "Missing required fields: name, command, commandType",
		},
		{
			name:           "empty body",
			body:           nil,
			expectedStatus: http.StatusBadRequest,
			expectedErrMsg: "Missing required fields: name, command, commandType",
		},
		{
			name:           "malformed json",
			body:           `{"name":`,
			expectedStatus: http.StatusBadRequest,
			expectedErrMsg: "Invalid request format",
		},
		{
			name: "persist failure",
			body: map[string]string{"name": "Backup", "command": "echo ok", "commandType": "batch"},
			createFn: func(ctx context.Context, params service.CreateTaskParams) (*domain.Task, error) {
				return nil, service.NewTaskServiceError("create_task", "failed to save task",
					store.NewStoreError("task", "create", "failed to persist", store.ErrPersistFailed))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedErrMsg: "Failed to save tasks",
			called:         true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			var gotParams service.CreateTaskParams
			svc := &MockTaskService{CreateTaskFn: func(ctx context.Context, params service.CreateTaskParams) (*domain.Task, error) {
				called = true
				gotParams = params
				if tt.createFn != nil {
					return tt.createFn(ctx, params)
				}
				return domain.NewTask(params.Name, params.Description, params.Command, params.CommandType)
			}}

			rr := doRequest(t, newTestRouter(svc), http.MethodPost, "/api/tasks", tt.body)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.Equal(t, tt.called, called)
			if tt.expectedErrMsg != "" {
				assert.Equal(t, tt.expectedErrMsg, decodeError(t, rr).Error)
				return
			}

			var got TaskResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
			assert.Equal(t, gotParams.Name, got.Name)
			assert.Equal(t, string(gotParams.CommandType), got.CommandType)
			assert.NotEmpty(t, got.ID)
			assert.False(t, got.IsRunning)
		})
	}
}

func TestTaskHandler_UpdateTask(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		body           interface{}
		expectedStatus int
		expectedErrMsg string
		checkPatch     func(t *testing.T, patch domain.TaskPatch)
	}{
		{
			name:           "partial update",
			path:           "/api/tasks/" + fixedTaskID.String(),
			body:           map[string]string{"name": "Renamed"},
			expectedStatus: http.StatusOK,
			checkPatch: func(t *testing.T, patch domain.TaskPatch) {
				require.NotNil(t, patch.Name)
				assert.Equal(t, "Renamed", *patch.Name)
				assert.Nil(t, patch.Command)
				assert.Nil(t, patch.CommandType)
				assert.Nil(t, patch.Description)
			},
		},
		{
			name:           "description cleared",
			path:           "/api/tasks/" + fixedTaskID.String(),
			body:           map[string]string{"description": ""},
			expectedStatus: http.StatusOK,
			checkPatch: func(t *testing.T, patch domain.TaskPatch) {
				require.NotNil(t, patch.Description)
				assert.Empty(t, *patch.Description)
			},
		},
		{
			name:           "command type converted",
			path:           "/api/tasks/" + fixedTaskID.String(),
			body:           map[string]string{"commandType": "python"},
			expectedStatus: http.StatusOK,
			checkPatch: func(t *testing.T, patch domain.TaskPatch) {
				require.NotNil(t, patch.CommandType)
				assert.Equal(t, domain.CommandTypePython, *patch.CommandType)
			},
		},
		{
			name:           "empty body is a no-op",
			path:           "/api/tasks/" + fixedTaskID.String(),
			body:           nil,
			expectedStatus: http.StatusOK,
			checkPatch: func(t *testing.T, patch domain.TaskPatch) {
				assert.True(t, patch.IsEmpty())
			},
		},
		{
			name:           "empty name rejected",
			path:           "/api/tasks/" + fixedTaskID.String(),
			body:           map[string]string{"name": ""},
			expectedStatus: http.StatusBadRequest,
			expectedErrMsg: "Invalid name: cannot be empty",
		},
		{
			name:           "empty command type rejected",
			path:           "/api/tasks/" + fixedTaskID.String(),
			body:           map[string]string{"commandType": ""},
			expectedStatus: http.StatusBadRequest,
			expectedErrMsg: "Invalid commandType: cannot be empty",
		},
		{
			name:           "unknown id",
			path:           "/api/tasks/" + uuid.NewString(),
			body:           map[string]string{"name": "x"},
			expectedStatus: http.StatusNotFound,
			expectedErrMsg: "Task not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockTaskService{UpdateTaskFn: func(ctx context.Context, id uuid.UUID, patch domain.TaskPatch) (*domain.Task, error) {
				if id != fixedTaskID {
					return nil, service.ErrTaskNotFound
				}
				if tt.checkPatch != nil {
					tt.checkPatch(t, patch)
				}
				task := sampleTask()
				if err := patch.Apply(task); err != nil {
					return nil, err
				}
				return task, nil
			}}

			rr := doRequest(t, newTestRouter(svc), http.MethodPut, tt.path, tt.body)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			if tt.expectedErrMsg != "" {
				assert.Equal(t, tt.expectedErrMsg, decodeError(t, rr).Error)
			}
		})
	}
}

func TestTaskHandler_UpdateTask_DomainValidation(t *testing.T) {
	svc := &MockTaskService{UpdateTaskFn: func(ctx context.Context, id uuid.UUID, patch domain.TaskPatch) (*domain.Task, error) {
		return nil, domain.NewValidationError("command", "cannot be empty", domain.ErrValidation)
	}}

	rr := doRequest(t, newTestRouter(svc), http.MethodPut, "/api/tasks/"+fixedTaskID.String(),
		map[string]string{"command": " "})

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "invalid command: cannot be empty", decodeError(t, rr).Error)
}

func TestTaskHandler_DeleteTask(t *testing.T) {
	deleted := false
	svc := &MockTaskService{DeleteTaskFn: func(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
		if id != fixedTaskID || deleted {
			return nil, service.ErrTaskNotFound
		}
		deleted = true
		return sampleTask(), nil
	}}
	router := newTestRouter(svc)

	rr := doRequest(t, router, http.MethodDelete, "/api/tasks/"+fixedTaskID.String(), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var got TaskResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
	assert.Equal(t, fixedTaskID.String(), got.ID)

	rr = doRequest(t, router, http.MethodDelete, "/api/tasks/"+fixedTaskID.String(), nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Task not found", decodeError(t, rr).Error)
}

func TestTaskHandler_ExecuteTask(t *testing.T) {
	finished := func(status domain.ExecutionStatus) *domain.Task {
		task := sampleTask()
		task.RecordOutcome(status, fixedTime)
		return task
	}

	tests := []struct {
		name           string
		path           string
		executeFn      func(ctx context.Context, id uuid.UUID) (*service.ExecutionOutcome, error)
		expectedStatus int
		expectedErrMsg string
		checkBody      func(t *testing.T, resp ExecuteResponse)
	}{
		{
			name: "success",
			path: "/api/tasks/" + fixedTaskID.String() + "/execute",
			executeFn: func(ctx context.Context, id uuid.UUID) (*service.ExecutionOutcome, error) {
				return &service.ExecutionOutcome{
					Task: finished(domain.ExecutionStatusSuccess),
					Result: &domain.ExecutionResult{
						Stdout:   "ok\n",
						ExitCode: 0,
						Duration: 1500 * time.Millisecond,
					},
				}, nil
			},
			expectedStatus: http.StatusOK,
			checkBody: func(t *testing.T, resp ExecuteResponse) {
				assert.True(t, resp.Success)
				assert.Equal(t, "Task executed successfully", resp.Message)
				assert.Equal(t, "ok\n", resp.Result.Stdout)
				assert.Equal(t, 0, resp.Result.ExitCode)
				assert.Equal(t, int64(1500), resp.Result.DurationMs)
			},
		},
		{
			name: "nonzero exit",
			path: "/api/tasks/" + fixedTaskID.String() + "/execute",
			executeFn: func(ctx context.Context, id uuid.UUID) (*service.ExecutionOutcome, error) {
				return &service.ExecutionOutcome{
						Task:   finished(domain.ExecutionStatusError),
						Result: &domain.ExecutionResult{Stderr: "disk full", ExitCode: 3},
					},
					&executor.ExitError{ExitCode: 3, Stderr: "disk full\n"}
			},
			expectedStatus: http.StatusInternalServerError,
			expectedErrMsg: "process exited with code 3: disk full",
		},
		{
			name: "unknown command type",
			path: "/api/tasks/" + fixedTaskID.String() + "/execute",
			executeFn: func(ctx context.Context, id uuid.UUID) (*service.ExecutionOutcome, error) {
				return &service.ExecutionOutcome{Task: finished(domain.ExecutionStatusError)},
					fmt.Errorf("%w: ruby", executor.ErrUnknownCommandType)
			},
			expectedStatus: http.StatusInternalServerError,
			expectedErrMsg: "unknown command type: ruby",
		},
		{
			name: "outcome not recorded",
			path: "/api/tasks/" + fixedTaskID.String() + "/execute",
			executeFn: func(ctx context.Context, id uuid.UUID) (*service.ExecutionOutcome, error) {
				return &service.ExecutionOutcome{Task: sampleTask(), Result: &domain.ExecutionResult{}},
					service.NewTaskServiceError("execute_task", "failed to record execution outcome",
						store.NewStoreError("task", "update", "write /var/lib/taskpad/tasks.json", store.ErrPersistFailed))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedErrMsg: "Failed to save tasks",
		},
		{
			name: "already running",
			path: "/api/tasks/" + fixedTaskID.String() + "/execute",
			executeFn: func(ctx context.Context, id uuid.UUID) (*service.ExecutionOutcome, error) {
				return nil, service.ErrTaskRunning
			},
			expectedStatus: http.StatusConflict,
			expectedErrMsg: "Task is already running",
		},
		{
			name:           "unknown id",
			path:           "/api/tasks/" + uuid.NewString() + "/execute",
			expectedStatus: http.StatusNotFound,
			expectedErrMsg: "Task not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockTaskService{ExecuteTaskFn: tt.executeFn}

			rr := doRequest(t, newTestRouter(svc), http.MethodPost, tt.path, nil)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			if tt.expectedErrMsg != "" {
				assert.Equal(t, tt.expectedErrMsg, decodeError(t, rr).Error)
				return
			}
			var resp ExecuteResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
			if tt.checkBody != nil {
				tt.checkBody(t, resp)
			}
		})
	}
}

func TestMapErrorToStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", domain.NewValidationError("name", "cannot be empty", nil), http.StatusBadRequest},
		{"service not found", service.ErrTaskNotFound, http.StatusNotFound},
		{"store not found", fmt.Errorf("get: %w", store.ErrTaskNotFound), http.StatusNotFound},
		{"running", service.ErrTaskRunning, http.StatusConflict},
		{"spawn", executor.ErrSpawnFailed, http.StatusInternalServerError},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MapErrorToStatusCode(tt.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	assert.Equal(t, "An unexpected error occurred", GetSafeErrorMessage(nil))
	assert.Equal(t, "An unexpected error occurred",
		GetSafeErrorMessage(errors.New("open /home/alice/secret.json: permission denied")))
	assert.Equal(t, "Task not found", GetSafeErrorMessage(service.ErrTaskNotFound))
	assert.Equal(t, "invalid name: cannot be empty",
		GetSafeErrorMessage(domain.NewValidationError("name", "cannot be empty", nil)))
}
