package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Storage  StorageConfig  `mapstructure:"storage"  validate:"required"`
	Executor ExecutorConfig `mapstructure:"executor" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"             validate:"required,gt=0,lt=65536"`
	LogLevel        string        `mapstructure:"log_level"        validate:"required,oneof=debug info warn error"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gte=0"`
	// AllowedOrigins lists origins permitted to call the API cross-origin.
	// Empty (the default) means same-origin only: the bundled UI works, other
	// browser origins are refused. Use ["*"] to accept any origin.
	AllowedOrigins []string `mapstructure:"allowed_origins" validate:"dive,required"`
}

// Address returns the host:port the HTTP server listens on.
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// StorageConfig contains task persistence settings.
type StorageConfig struct {
	// DataFile is the JSON file holding the task collection.
	DataFile string `mapstructure:"data_file" validate:"required"`
}

// ExecutorConfig contains command execution settings.
// Empty interpreter paths fall back to platform defaults.
type ExecutorConfig struct {
	Timeout        time.Duration `mapstructure:"timeout"          validate:"gte=0"`
	MaxOutputBytes int64         `mapstructure:"max_output_bytes" validate:"gte=0"`
	PowerShell     string        `mapstructure:"powershell"`
	Shell          string        `mapstructure:"shell"`
	Python         string        `mapstructure:"python"`
}
