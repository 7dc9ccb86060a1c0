package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// CommandType selects the interpreter used to launch a task's command.
type CommandType string

// Supported command types.
const (
	CommandTypePowerShell  CommandType = "powershell"
	CommandTypeBatch       CommandType = "batch"
	CommandTypePython      CommandType = "python"
	CommandTypeApplication CommandType = "application"
)

// CommandTypes lists every supported command type.
var CommandTypes = []CommandType{
	CommandTypePowerShell,
	CommandTypeBatch,
	CommandTypePython,
	CommandTypeApplication,
}

// Normalize returns the lower-cased, trimmed form of the command type.
func (c CommandType) Normalize() CommandType {
	return CommandType(strings.ToLower(strings.TrimSpace(string(c))))
}

// IsKnown reports whether c (after normalization) is a supported command type.
func (c CommandType) IsKnown() bool {
	n := c.Normalize()
	for _, known := range CommandTypes {
		if n == known {
			return true
		}
	}
	return false
}

// ExecutionStatus is the outcome recorded after a task was executed.
type ExecutionStatus string

const (
	ExecutionStatusSuccess ExecutionStatus = "success"
	ExecutionStatusError   ExecutionStatus = "error"
)

// Task is a stored, named command definition.
type Task struct {
	ID             uuid.UUID       `json:"id"`
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	Command        string          `json:"command"`
	CommandType    CommandType     `json:"commandType"`
	CreatedAt      time.Time       `json:"createdAt"`
	IsRunning      bool            `json:"isRunning"`
	LastExecutedAt *time.Time      `json:"lastExecutedAt,omitempty"`
	LastStatus     ExecutionStatus `json:"lastStatus,omitempty"`
}

// NewTask creates a task with a fresh identifier and creation time.
// It returns a validation error if any required field is empty.
func NewTask(name, description, command string, commandType CommandType) (*Task, error) {
	t := &Task{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
		Command:     command,
		CommandType: commandType,
		CreatedAt:   time.Now().UTC(),
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate checks that the task has the fields required to be stored.
// The command type is not checked against the known set: unknown types are
// stored as-is and rejected when the task is executed.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return NewValidationError("id", "cannot be empty", ErrEmptyTaskID)
	}
	if strings.TrimSpace(t.Name) == "" {
		return NewValidationError("name", "cannot be empty", ErrValidation)
	}
	if strings.TrimSpace(t.Command) == "" {
		return NewValidationError("command", "cannot be empty", ErrValidation)
	}
	if strings.TrimSpace(string(t.CommandType)) == "" {
		return NewValidationError("commandType", "cannot be empty", ErrValidation)
	}
	return nil
}

// TaskPatch holds the mutable fields of a task. Nil fields are left unchanged.
type TaskPatch struct {
	Name        *string
	Description *string
	Command     *string
	CommandType *CommandType
}

// IsEmpty reports whether the patch changes nothing.
func (p TaskPatch) IsEmpty() bool {
	return p.Name == nil && p.Description == nil && p.Command == nil && p.CommandType == nil
}

// Apply merges the patch into t and validates the result.
func (p TaskPatch) Apply(t *Task) error {
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Command != nil {
		t.Command = *p.Command
	}
	if p.CommandType != nil {
		t.CommandType = *p.CommandType
	}
	return t.Validate()
}

// MarkRunning flags the task as having an execution in flight.
func (t *Task) MarkRunning() {
	t.IsRunning = true
}

// RecordOutcome clears the running flag and stores the result of an execution.
func (t *Task) RecordOutcome(status ExecutionStatus, at time.Time) {
	at = at.UTC()
	t.IsRunning = false
	t.LastStatus = status
	t.LastExecutedAt = &at
}

// ExecutionResult is the captured output of a finished process.
type ExecutionResult struct {
	Stdout    string        `json:"stdout"`
	Stderr    string        `json:"stderr"`
	ExitCode  int           `json:"exitCode"`
	Duration  time.Duration `json:"-"`
	Truncated bool          `json:"truncated"`
}
