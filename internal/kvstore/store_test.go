package kvstore_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"holocron/internal/config"
	"holocron/internal/kvstore"
	"holocron/internal/testsupport"
)

func backends(t *testing.T) map[string]func(t *testing.T) kvstore.Store {
	return map[string]func(t *testing.T) kvstore.Store{
		config.BackendMemory: func(t *testing.T) kvstore.Store { return kvstore.NewMemory() },
		config.BackendFile: func(t *testing.T) kvstore.Store {
			return testsupport.MustOpenFileKV(t)
		},
		config.BackendSQLite: func(t *testing.T) kvstore.Store {
			store, err := kvstore.OpenSQLite(filepath.Join(t.TempDir(), "holocron.db"))
			if err != nil {
				t.Fatalf("OpenSQLite: %v", err)
			}
			t.Cleanup(func() { _ = store.Close() })
			return store
		},
		config.BackendBolt: func(t *testing.T) kvstore.Store {
			store, err := kvstore.OpenBolt(filepath.Join(t.TempDir(), "holocron.bolt"))
			if err != nil {
				t.Fatalf("OpenBolt: %v", err)
			}
			t.Cleanup(func() { _ = store.Close() })
			return store
		},
	}
}

func TestBackendsRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			store := open(t)

			if _, err := store.Get(ctx, "album"); !errors.Is(err, kvstore.ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}
			if err := store.Put(ctx, "album", []byte(`{"movies":[]}`)); err != nil {
				t.Fatalf("Put: %v", err)
			}
			if err := store.Put(ctx, "album", []byte(`{"movies":[null]}`)); err != nil {
				t.Fatalf("Put overwrite: %v", err)
			}
			got, err := store.Get(ctx, "album")
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if string(got) != `{"movies":[null]}` {
				t.Fatalf("unexpected value %q", got)
			}
			if err := store.Put(ctx, "envelope-cooldowns", []byte(`{}`)); err != nil {
				t.Fatalf("Put second key: %v", err)
			}
			if err := store.Delete(ctx, "album"); err != nil {
				t.Fatalf("Delete: %v", err)
			}
			if _, err := store.Get(ctx, "album"); !errors.Is(err, kvstore.ErrNotFound) {
				t.Fatalf("expected ErrNotFound after delete, got %v", err)
			}
			if err := store.Delete(ctx, "album"); err != nil {
				t.Fatalf("Delete missing key: %v", err)
			}
			if got, err := store.Get(ctx, "envelope-cooldowns"); err != nil || string(got) != "{}" {
				t.Fatalf("second key disturbed: %q %v", got, err)
			}
		})
	}
}

func TestBackendsRejectInvalidKeys(t *testing.T) {
	ctx := context.Background()
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			store := open(t)
			for _, key := range []string{"", "../escape", "Album", "a/b"} {
				if err := store.Put(ctx, key, []byte("x")); err == nil {
					t.Fatalf("expected error for key %q", key)
				}
			}
		})
	}
}

func TestPersistentBackendsSurviveReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	sqlitePath := filepath.Join(dir, "holocron.db")
	s1, err := kvstore.OpenSQLite(sqlitePath)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	if err := s1.Put(ctx, "album", []byte("v1")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	_ = s1.Close()
	s2, err := kvstore.OpenSQLite(sqlitePath)
	if err != nil {
		t.Fatalf("reopen sqlite: %v", err)
	}
	defer s2.Close()
	if got, err := s2.Get(ctx, "album"); err != nil || string(got) != "v1" {
		t.Fatalf("sqlite reopen: %q %v", got, err)
	}

	boltPath := filepath.Join(dir, "holocron.bolt")
	b1, err := kvstore.OpenBolt(boltPath)
	if err != nil {
		t.Fatalf("OpenBolt: %v", err)
	}
	if err := b1.Put(ctx, "album", []byte("v2")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	_ = b1.Close()
	b2, err := kvstore.OpenBolt(boltPath)
	if err != nil {
		t.Fatalf("reopen bolt: %v", err)
	}
	defer b2.Close()
	if got, err := b2.Get(ctx, "album"); err != nil || string(got) != "v2" {
		t.Fatalf("bolt reopen: %q %v", got, err)
	}

	filePath := filepath.Join(dir, "state")
	f1, err := kvstore.OpenFile(filePath)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	if err := f1.Put(ctx, "album", []byte("v3")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	_ = f1.Close()
	if raw, err := os.ReadFile(filepath.Join(filePath, "album.json")); err != nil || string(raw) != "v3" {
		t.Fatalf("file layout: %q %v", raw, err)
	}
	f2, err := kvstore.OpenFile(filePath)
	if err != nil {
		t.Fatalf("reopen file: %v", err)
	}
	defer f2.Close()
	if got, err := f2.Get(ctx, "album"); err != nil || string(got) != "v3" {
		t.Fatalf("file reopen: %q %v", got, err)
	}
}

func TestOpenSelectsBackendFromConfig(t *testing.T) {
	ctx := context.Background()
	for _, backend := range []string{config.BackendMemory, config.BackendFile, config.BackendSQLite, config.BackendBolt} {
		t.Run(backend, func(t *testing.T) {
			cfg := testsupport.NewConfig(t, testsupport.WithStorageBackend(backend))
			store := testsupport.MustOpenKV(t, cfg)
			if err := store.Put(ctx, "album", []byte("ok")); err != nil {
				t.Fatalf("Put: %v", err)
			}
			if backend != config.BackendMemory {
				if _, err := os.Stat(cfg.StoragePath()); err != nil {
					t.Fatalf("expected storage at %s: %v", cfg.StoragePath(), err)
				}
			}
		})
	}

	cfg := testsupport.NewConfig(t)
	cfg.Storage.Backend = "redis"
	if _, err := kvstore.Open(cfg, nil); err == nil {
		t.Fatal("expected error for unsupported backend")
	}
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	store := kvstore.NewMemory()
	if err := store.Put(ctx, "album", []byte("x")); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
