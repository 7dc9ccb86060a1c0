package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/taskpad/internal/config"
	"github.com/phrazzld/taskpad/internal/events"
	"github.com/phrazzld/taskpad/internal/executor"
	"github.com/phrazzld/taskpad/internal/platform/filestore"
	"github.com/phrazzld/taskpad/internal/service"
	"github.com/phrazzld/taskpad/internal/store"
	"github.com/spf13/afero"
)

// application holds the shared dependencies of a running server.
type application struct {
	config *config.Config
	logger *slog.Logger

	taskStore    store.TaskStore
	executor     *executor.Executor
	eventEmitter events.EventEmitter
	taskService  service.TaskService
}

// newApplication wires the store, executor, event emitter and task service.
// The data file is read from fs; a corrupt file aborts startup.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, fs afero.Fs) (*application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	app := &application{
		config: cfg,
		logger: logger,
	}

	persister, err := filestore.NewJSONPersister(fs, cfg.Storage.DataFile)
	if err != nil {
		return nil, fmt.Errorf("failed to create task persister: %w", err)
	}

	taskStore, err := filestore.Open(ctx, persister, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open task store: %w", err)
	}
	app.taskStore = taskStore
	logger.Info("task store opened", "data_file", persister.Path())

	app.executor = executor.New(executor.Config{
		Timeout:        cfg.Executor.Timeout,
		MaxOutputBytes: cfg.Executor.MaxOutputBytes,
		PowerShell:     cfg.Executor.PowerShell,
		Shell:          cfg.Executor.Shell,
		Python:         cfg.Executor.Python,
	}, logger)

	emitter := events.NewInMemoryEventEmitter(logger)
	emitter.RegisterHandler(events.NewAuditLogHandler(logger))
	app.eventEmitter = emitter

	app.taskService, err = service.NewTaskService(app.taskStore, app.executor, app.eventEmitter, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create task service: %w", err)
	}

	logger.Info("application initialized successfully")
	return app, nil
}

// Run serves HTTP until ctx is canceled or a shutdown signal arrives.
func (app *application) Run(ctx context.Context) error {
	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup releases application resources after the server has stopped.
// Every mutation is persisted synchronously, so there is nothing to flush.
func (app *application) cleanup() {
	app.logger.Info("application resources released")
}
