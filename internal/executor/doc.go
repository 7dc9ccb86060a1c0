// Package executor launches a task's command as an external process and
// captures its result.
//
// Each domain.CommandType maps to one invocation strategy. PowerShell
// commands go to the PowerShell executable; batch, python and application
// commands are handed to the native command shell as one line, so quoted
// paths and arguments keep their meaning. Standard output and standard error are buffered up to a
// configurable cap, and the process is bound to the caller's context plus an
// optional timeout.
//
// Errors are typed so callers can tell the failure modes apart:
//   - ErrUnknownCommandType: the task's command type has no strategy
//   - ErrSpawnFailed: the process could not be started (for shell-launched
//     types a missing program is reported by the shell as a nonzero exit)
//   - *ExitError: the process ran and exited with a nonzero code
//   - ErrTimeout: the configured timeout elapsed and the process was killed
package executor
