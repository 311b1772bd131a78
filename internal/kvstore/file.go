package kvstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"holocron/internal/fileutil"
)

const lockRetryDelay = 25 * time.Millisecond

// File stores each key as <dir>/<key>.json. Writes are atomic renames taken
// under an advisory lock on <dir>/.lock.
type File struct {
	dir  string
	lock *flock.Flock
}

// OpenFile prepares dir for use as a file-backed store.
func OpenFile(dir string) (*File, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("storage path is required")
	}
	dir = filepath.Clean(dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	return &File{
		dir:  dir,
		lock: flock.New(filepath.Join(dir, ".lock")),
	}, nil
}

func (f *File) path(key string) string {
	return filepath.Join(f.dir, key+".json")
}

// Get reads the blob stored under key.
func (f *File) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validateKey(key); err != nil {
		return nil, err
	}
	data, ok, err := fileutil.ReadFileIfExists(f.path(key))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	if !ok {
		return nil, ErrNotFound
	}
	return data, nil
}

// Put atomically replaces the blob stored under key.
func (f *File) Put(ctx context.Context, key string, value []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}
	return f.withLock(ctx, func() error {
		if err := fileutil.WriteFileAtomic(f.path(key), value, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", key, err)
		}
		return nil
	})
}

// Delete removes the blob stored under key.
func (f *File) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	return f.withLock(ctx, func() error {
		if err := os.Remove(f.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("delete %s: %w", key, err)
		}
		return nil
	})
}

// Close releases the lock if held.
func (f *File) Close() error {
	if f == nil || f.lock == nil {
		return nil
	}
	return f.lock.Close()
}

func (f *File) withLock(ctx context.Context, fn func() error) error {
	ok, err := f.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("acquire storage lock: %w", err)
	}
	if !ok {
		return errors.New("acquire storage lock: lock held by another process")
	}
	defer func() {
		_ = f.lock.Unlock()
	}()
	return fn()
}
