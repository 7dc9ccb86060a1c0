package executor

import (
	"fmt"
	"strings"

	"github.com/phrazzld/taskpad/internal/domain"
)

// invocation is the program and argument list for one process launch.
type invocation struct {
	name string
	args []string
}

// invocationFor resolves the launch strategy for a command type.
func (e *Executor) invocationFor(commandType domain.CommandType, command string) (invocation, error) {
	if strings.TrimSpace(command) == "" {
		return invocation{}, ErrEmptyCommand
	}

	switch commandType.Normalize() {
	case domain.CommandTypePowerShell:
		return invocation{
			name: e.cfg.PowerShell,
			args: []string{"-NoProfile", "-NonInteractive", "-Command", command},
		}, nil

	case domain.CommandTypeBatch:
		return e.shellInvocation(command), nil

	case domain.CommandTypePython:
		return e.shellInvocation(quoteProgram(e.cfg.Shell, e.cfg.Python) + " " + command), nil

	case domain.CommandTypeApplication:
		return e.shellInvocation(command), nil

	default:
		return invocation{}, fmt.Errorf("%w: %s", ErrUnknownCommandType, commandType)
	}
}

// shellFlag returns the "run this string" flag understood by shell.
func shellFlag(shell string) string {
	base := strings.ToLower(shell[strings.LastIndexAny(shell, `/\`)+1:])
	base = strings.TrimSuffix(base, ".exe")
	if base == "cmd" {
		return "/c"
	}
	return "-c"
}

// shellInvocation runs line through the configured native shell, so quoting,
// paths with spaces and redirection behave as they would at a prompt.
func (e *Executor) shellInvocation(line string) invocation {
	return invocation{
		name: e.cfg.Shell,
		args: []string{shellFlag(e.cfg.Shell), line},
	}
}

// quoteProgram quotes program for shell when it contains whitespace or quotes.
func quoteProgram(shell, program string) string {
	if !strings.ContainsAny(program, " \t'\"") {
		return program
	}
	if shellFlag(shell) == "/c" {
		return `"` + program + `"`
	}
	return "'" + strings.ReplaceAll(program, "'", `'\''`) + "'"
}
