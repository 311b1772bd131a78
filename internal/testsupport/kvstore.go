package testsupport

import (
	"path/filepath"
	"testing"

	"holocron/internal/config"
	"holocron/internal/kvstore"
	"holocron/internal/logging"
)

// MustOpenKV opens the storage backend named by cfg and registers cleanup.
func MustOpenKV(t testing.TB, cfg *config.Config) kvstore.Store {
	t.Helper()

	store, err := kvstore.Open(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("kvstore.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

// MustOpenFileKV opens a file-backed store inside a fresh temp dir.
func MustOpenFileKV(t testing.TB) kvstore.Store {
	t.Helper()

	store, err := kvstore.OpenFile(filepath.Join(t.TempDir(), "state"))
	if err != nil {
		t.Fatalf("kvstore.OpenFile: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}
