// Package main implements the taskpad server: a browser UI and JSON API for
// saving named commands and running them on demand.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/phrazzld/taskpad/internal/config"
	"github.com/phrazzld/taskpad/internal/platform/logger"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func main() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "taskpad:", err)
		os.Exit(1)
	}
}

// flagKeys maps command-line flags to configuration keys.
var flagKeys = map[string]string{
	"port":      "server.port",
	"data-file": "storage.data_file",
}

func newRootCommand() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:           "taskpad",
		Short:         "Serve the taskpad web UI and task API",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(configFile, cmd.Flags())
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&configFile, "config", "", "path to a YAML config file (default ./config.yaml if present)")
	cmd.Flags().Int("port", config.DefaultPort, "HTTP listen port")
	cmd.Flags().String("data-file", config.DefaultDataFile, "JSON file holding the task collection")

	return cmd
}

// loadConfig reads configuration with explicitly set flags taking precedence
// over the file and environment.
func loadConfig(configFile string, flags *pflag.FlagSet) (*config.Config, error) {
	source := config.WithSearchPaths(".")
	if configFile != "" {
		source = config.WithConfigFile(configFile)
	}

	cfg, err := config.Load(source, bindChangedFlags(flags))
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

func bindChangedFlags(flags *pflag.FlagSet) config.Option {
	return func(v *viper.Viper) error {
		for name, key := range flagKeys {
			f := flags.Lookup(name)
			if f == nil || !f.Changed {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return fmt.Errorf("failed to bind flag --%s: %w", name, err)
			}
		}
		return nil
	}
}

// run sets up logging, builds the application and serves until ctx is
// canceled or the process receives SIGINT/SIGTERM.
func run(ctx context.Context, cfg *config.Config) error {
	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	log.Info("server configuration loaded",
		"address", cfg.Server.Address(),
		"log_level", cfg.Server.LogLevel,
		"data_file", cfg.Storage.DataFile,
		"executor_timeout", cfg.Executor.Timeout.String())

	app, err := newApplication(ctx, cfg, log, afero.NewOsFs())
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	return app.Run(ctx)
}
