// Package file implements the config repository on a local JSON file.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/turtacn/tgroups/internal/domain/models"
	"github.com/turtacn/tgroups/internal/domain/repository"
	"github.com/turtacn/tgroups/pkg/logger"
)

var _ repository.ConfigRepository = (*ConfigStore)(nil)

// ConfigStore keeps the AppConfig record in a pretty-printed JSON file.
// Reads are served from an in-memory snapshot that is dropped whenever the file changes on disk.
type ConfigStore struct {
	path   string
	logger logger.Logger

	mu       sync.Mutex
	snapshot *models.AppConfig

	watcher *fsnotify.Watcher
	done    chan struct{}
	wg      sync.WaitGroup
}

// NewConfigStore creates a store for path. With watch set, external edits to the file are
// picked up without a restart.
func NewConfigStore(path string, watch bool, log logger.Logger) (*ConfigStore, error) {
	s := &ConfigStore{
		path:   path,
		logger: log.WithComponent("FileConfigStore"),
		done:   make(chan struct{}),
	}
	if !watch {
		return s, nil
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create config watcher: %w", err)
	}
	// the file itself may not exist yet, so watch its directory
	dir := filepath.Dir(path)
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	s.watcher = w
	s.wg.Add(1)
	go s.watch()
	return s, nil
}

// Load implements repository.ConfigRepository.
func (s *ConfigStore) Load(ctx context.Context) (*models.AppConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snapshot != nil {
		return s.snapshot.Clone(), nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Info(ctx, "Config file not found, starting with an empty configuration", logger.String("path", s.path))
		} else {
			s.logger.Error(ctx, "Failed to read config file", err, logger.String("path", s.path))
		}
		return models.NewEmptyAppConfig(), nil
	}

	cfg := models.NewEmptyAppConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		s.logger.Error(ctx, "Config file is not valid JSON, ignoring it", err, logger.String("path", s.path))
		return models.NewEmptyAppConfig(), nil
	}
	s.snapshot = cfg
	return cfg.Clone(), nil
}

// Save implements repository.ConfigRepository. The file is replaced atomically.
func (s *ConfigStore) Save(ctx context.Context, cfg *models.AppConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		s.logger.Error(ctx, "Failed to save config", err, logger.String("path", s.path))
		return fmt.Errorf("failed to create temp config file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		s.logger.Error(ctx, "Failed to save config", err, logger.String("path", s.path))
		return fmt.Errorf("failed to write config: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to set config file mode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp config file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		s.logger.Error(ctx, "Failed to save config", err, logger.String("path", s.path))
		return fmt.Errorf("failed to replace config file: %w", err)
	}

	s.snapshot = cfg.Clone()
	s.logger.Info(ctx, "Configuration saved", logger.String("path", s.path))
	return nil
}

// Close stops the watcher.
func (s *ConfigStore) Close() error {
	if s.watcher == nil {
		return nil
	}
	close(s.done)
	err := s.watcher.Close()
	s.wg.Wait()
	return err
}

func (s *ConfigStore) watch() {
	defer s.wg.Done()
	target := filepath.Clean(s.path)
	for {
		select {
		case <-s.done:
			return
		case ev, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			s.invalidate()
			s.logger.Debug(context.Background(), "Config file changed on disk", logger.String("op", ev.Op.String()))
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.logger.Warn(context.Background(), "Config watcher error", logger.Error(err))
		}
	}
}

func (s *ConfigStore) invalidate() {
	s.mu.Lock()
	s.snapshot = nil
	s.mu.Unlock()
}
