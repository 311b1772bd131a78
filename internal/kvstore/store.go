package kvstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"

	"holocron/internal/config"
	"holocron/internal/logging"
)

// ErrNotFound is returned by Get when the key holds no value.
var ErrNotFound = errors.New("key not found")

// Store persists opaque blobs by key.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

var keyPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]*$`)

func validateKey(key string) error {
	if !keyPattern.MatchString(key) {
		return fmt.Errorf("invalid storage key %q", key)
	}
	return nil
}

// Open builds the backend selected by cfg.Storage, creating directories as needed.
func Open(cfg *config.Config, logger *slog.Logger) (Store, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "kvstore")

	if cfg.Storage.Backend != config.BackendMemory {
		if err := cfg.EnsureDirectories(); err != nil {
			return nil, fmt.Errorf("ensure directories: %w", err)
		}
	}

	path := cfg.StoragePath()
	var (
		store Store
		err   error
	)
	switch cfg.Storage.Backend {
	case config.BackendMemory:
		store = NewMemory()
	case config.BackendFile:
		store, err = OpenFile(path)
	case config.BackendSQLite:
		store, err = OpenSQLite(path)
	case config.BackendBolt:
		store, err = OpenBolt(path)
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.Storage.Backend)
	}
	if err != nil {
		return nil, err
	}
	logger.Debug("storage opened",
		logging.String("backend", cfg.Storage.Backend),
		logging.String("path", path))
	return store, nil
}
