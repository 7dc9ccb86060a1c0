package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment variable overrides,
// e.g. TASKPAD_SERVER_PORT for server.port.
const EnvPrefix = "TASKPAD"

// Default values.
const (
	DefaultPort            = 3000
	DefaultLogLevel        = "info"
	DefaultShutdownTimeout = 10 * time.Second
	DefaultDataFile        = "data/tasks.json"
	DefaultMaxOutputBytes  = 1 << 20
)

// Option customizes the viper instance before configuration is read.
type Option func(v *viper.Viper) error

// WithConfigFile reads settings from the given file. The file must exist.
func WithConfigFile(path string) Option {
	return func(v *viper.Viper) error {
		if path == "" {
			return nil
		}
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		return nil
	}
}

// WithSearchPaths looks for an optional config.yaml in the given directories.
// A missing file is not an error.
func WithSearchPaths(paths ...string) Option {
	return func(v *viper.Viper) error {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		for _, p := range paths {
			v.AddConfigPath(p)
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if errors.As(err, &notFound) {
				return nil
			}
			return fmt.Errorf("failed to read config file: %w", err)
		}
		return nil
	}
}

// setDefaults registers every key so environment variables are picked up on Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "")
	v.SetDefault("server.port", DefaultPort)
	v.SetDefault("server.log_level", DefaultLogLevel)
	v.SetDefault("server.shutdown_timeout", DefaultShutdownTimeout)
	v.SetDefault("server.allowed_origins", []string{})

	v.SetDefault("storage.data_file", DefaultDataFile)

	v.SetDefault("executor.timeout", time.Duration(0))
	v.SetDefault("executor.max_output_bytes", DefaultMaxOutputBytes)
	v.SetDefault("executor.powershell", "")
	v.SetDefault("executor.shell", "")
	v.SetDefault("executor.python", "")
}

// Load builds the configuration from defaults, the sources added by opts and
// environment variables, in increasing order of precedence. Options run in
// order, so a flag-binding option should come after file options.
// Returns a populated Config or an error if loading or validation fails.
func Load(opts ...Option) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for _, opt := range opts {
		if err := opt(v); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Server.LogLevel = strings.ToLower(strings.TrimSpace(cfg.Server.LogLevel))

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cfg against its struct tags.
func Validate(cfg *Config) error {
	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}
