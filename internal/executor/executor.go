package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"time"

	"github.com/phrazzld/taskpad/internal/domain"
	"github.com/phrazzld/taskpad/internal/redact"
)

// waitDelay bounds how long Wait blocks on output pipes after the process
// was killed, in case it left children holding them open.
const waitDelay = 2 * time.Second

// Executor runs task commands as external processes.
type Executor struct {
	cfg    Config
	logger *slog.Logger
}

// New creates an Executor. Empty interpreter fields in cfg fall back to the
// platform defaults.
func New(cfg Config, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{
		cfg:    cfg.withDefaults(),
		logger: logger.With("component", "executor"),
	}
}

// Execute launches command using the strategy for commandType and blocks
// until the process exits.
//
// On a zero exit code it returns the captured result and a nil error. When
// the process ran but failed (nonzero exit or timeout) the result is returned
// alongside the error so callers can still report what was captured.
func (e *Executor) Execute(
	ctx context.Context,
	commandType domain.CommandType,
	command string,
) (*domain.ExecutionResult, error) {
	inv, err := e.invocationFor(commandType, command)
	if err != nil {
		return nil, err
	}

	if e.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.Timeout)
		defer cancel()
	}

	log := e.logger.With(
		"command_type", string(commandType.Normalize()),
		"program", inv.name,
	)
	log.Debug("starting process", "command", redact.String(command))

	stdout := newCappedBuffer(e.cfg.MaxOutputBytes)
	stderr := newCappedBuffer(e.cfg.MaxOutputBytes)

	cmd := exec.CommandContext(ctx, inv.name, inv.args...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.WaitDelay = waitDelay

	start := time.Now()
	if err := cmd.Start(); err != nil {
		log.Warn("failed to start process", "error", redact.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrSpawnFailed, err)
	}

	waitErr := cmd.Wait()
	result := &domain.ExecutionResult{
		Stdout:    stdout.String(),
		Stderr:    stderr.String(),
		ExitCode:  cmd.ProcessState.ExitCode(),
		Duration:  time.Since(start),
		Truncated: stdout.Truncated() || stderr.Truncated(),
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		result.ExitCode = -1
		if errors.Is(ctxErr, context.DeadlineExceeded) && e.cfg.Timeout > 0 {
			log.Warn("process timed out", "timeout", e.cfg.Timeout)
			return result, fmt.Errorf("%w after %v", ErrTimeout, e.cfg.Timeout)
		}
		log.Warn("process canceled", "error", ctxErr)
		return result, fmt.Errorf("command canceled: %w", ctxErr)
	}

	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			log.Info("process exited with error",
				"exit_code", result.ExitCode,
				"duration_ms", result.Duration.Milliseconds())
			return result, &ExitError{ExitCode: result.ExitCode, Stderr: result.Stderr}
		}
		log.Warn("process wait failed", "error", redact.Error(waitErr))
		return result, fmt.Errorf("%w: %v", ErrSpawnFailed, waitErr)
	}

	log.Info("process completed",
		"exit_code", result.ExitCode,
		"duration_ms", result.Duration.Milliseconds(),
		"truncated", result.Truncated)
	return result, nil
}
