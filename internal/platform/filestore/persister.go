package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/phrazzld/taskpad/internal/domain"
	"github.com/spf13/afero"
)

// Persister loads and saves the full task collection.
type Persister interface {
	// Load returns the persisted tasks. A missing backing file is not an
	// error and yields an empty collection.
	Load(ctx context.Context) ([]domain.Task, error)

	// Save replaces the persisted collection with tasks.
	Save(ctx context.Context, tasks []domain.Task) error
}

// JSONPersister stores tasks as an indented JSON array in a single file.
type JSONPersister struct {
	fs   afero.Fs
	path string
}

// NewJSONPersister creates a JSONPersister for path on fs and makes sure the
// containing directory exists.
func NewJSONPersister(fs afero.Fs, path string) (*JSONPersister, error) {
	if path == "" {
		return nil, errors.New("data file path cannot be empty")
	}
	if dir := filepath.Dir(path); dir != "." {
		exists, err := afero.DirExists(fs, dir)
		if err != nil {
			return nil, fmt.Errorf("failed to stat data directory %q: %w", dir, err)
		}
		if !exists {
			if err := fs.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create data directory %q: %w", dir, err)
			}
		}
	}
	return &JSONPersister{fs: fs, path: path}, nil
}

// Path returns the file the persister writes to.
func (p *JSONPersister) Path() string {
	return p.path
}

// Load implements Persister.
func (p *JSONPersister) Load(ctx context.Context) ([]domain.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := afero.ReadFile(p.fs, p.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []domain.Task{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", p.path, err)
	}

	if len(data) == 0 {
		return []domain.Task{}, nil
	}

	var tasks []domain.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", p.path, err)
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	return tasks, nil
}

// Save implements Persister.
func (p *JSONPersister) Save(ctx context.Context, tasks []domain.Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}

	data, err := json.MarshalIndent(tasks, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode tasks: %w", err)
	}

	tmp, err := afero.TempFile(p.fs, filepath.Dir(p.path), filepath.Base(p.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = p.fs.Remove(tmpName)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = p.fs.Remove(tmpName)
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = p.fs.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := p.fs.Rename(tmpName, p.path); err != nil {
		_ = p.fs.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", p.path, err)
	}
	return nil
}
