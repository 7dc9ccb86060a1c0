package executor

import (
	"runtime"
	"time"
)

// DefaultMaxOutputBytes caps each captured stream at 1 MiB.
const DefaultMaxOutputBytes int64 = 1 << 20

// Config controls how commands are launched.
type Config struct {
	// Timeout bounds a single execution. Zero means no timeout.
	Timeout time.Duration

	// MaxOutputBytes caps stdout and stderr individually. Zero means unbounded.
	MaxOutputBytes int64

	// PowerShell is the PowerShell executable.
	PowerShell string

	// Shell is the native command shell. Batch, python and application
	// commands run through it.
	Shell string

	// Python is the Python interpreter.
	Python string
}

// DefaultConfig returns interpreter defaults for the current platform.
func DefaultConfig() Config {
	cfg := Config{
		MaxOutputBytes: DefaultMaxOutputBytes,
		PowerShell:     "pwsh",
		Shell:          "sh",
		Python:         "python3",
	}
	if runtime.GOOS == "windows" {
		cfg.PowerShell = "powershell.exe"
		cfg.Shell = "cmd.exe"
		cfg.Python = "python"
	}
	return cfg
}

// withDefaults fills empty interpreter fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.PowerShell == "" {
		c.PowerShell = d.PowerShell
	}
	if c.Shell == "" {
		c.Shell = d.Shell
	}
	if c.Python == "" {
		c.Python = d.Python
	}
	if c.MaxOutputBytes < 0 {
		c.MaxOutputBytes = 0
	}
	return c
}
