package executor

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownCommandType is returned for a command type with no invocation strategy.
	ErrUnknownCommandType = errors.New("unknown command type")

	// ErrEmptyCommand is returned when there is nothing to execute.
	ErrEmptyCommand = errors.New("command cannot be empty")

	// ErrSpawnFailed is returned when the process could not be started,
	// for example because the interpreter is not installed.
	ErrSpawnFailed = errors.New("failed to execute command")

	// ErrTimeout is returned when the configured timeout elapsed.
	ErrTimeout = errors.New("command timed out")
)

// ExitError reports a process that ran to completion with a nonzero exit code.
type ExitError struct {
	ExitCode int
	Stderr   string
}

// Error implements the error interface.
func (e *ExitError) Error() string {
	stderr := strings.TrimSpace(e.Stderr)
	if stderr == "" {
		return fmt.Sprintf("process exited with code %d", e.ExitCode)
	}
	return fmt.Sprintf("process exited with code %d: %s", e.ExitCode, stderr)
}
