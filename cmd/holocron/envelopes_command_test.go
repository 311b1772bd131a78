package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"holocron/internal/cooldown"
	"holocron/internal/kvstore"
	"holocron/internal/testsupport"
)

func TestEnvelopesWatchReturnsWhenAllReady(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"envelopes", "--watch"}, env.configPath, "")
	if err != nil {
		t.Fatalf("envelopes --watch: %v", err)
	}
	requireContains(t, out, "READY IN")
	requireContains(t, out, "ready")
	requireContains(t, out, "all ready")
	if strings.Contains(out, "recharging") {
		t.Fatalf("fresh state should have no recharging slots:\n%s", out)
	}

	if _, _, err := runCLI(t, []string{"envelopes", "--watch", "--json"}, env.configPath, ""); err == nil {
		t.Fatal("expected --watch with --json to fail")
	}
}

func TestRenderEnvelopesFormatsRemaining(t *testing.T) {
	var buf bytes.Buffer
	renderEnvelopes(&buf, []cooldown.SlotStatus{
		{Slot: "1", Available: true},
		{Slot: "2", Remaining: 61*time.Second + 200*time.Millisecond},
	}, false)
	out := buf.String()
	requireContains(t, out, "ready")
	requireContains(t, out, "recharging")
	requireContains(t, out, "1:02")
}

func TestRenderStatusLine(t *testing.T) {
	plain := renderStatusLine("Kept", statusOK, "3", false)
	if plain != "  Kept:          [OK] 3" {
		t.Fatalf("unexpected status line %q", plain)
	}
	colored := renderStatusLine("Dropped", statusWarn, "", true)
	if !strings.HasPrefix(colored, ansiYellow) || !strings.HasSuffix(colored, ansiReset) {
		t.Fatalf("expected colored line, got %q", colored)
	}
}

// closeTrackingStore counts writes that arrive after Close.
type closeTrackingStore struct {
	kvstore.Store

	mu         sync.Mutex
	closed     bool
	lateWrites int
}

func (s *closeTrackingStore) Put(ctx context.Context, key string, value []byte) error {
	s.noteWrite()
	return s.Store.Put(ctx, key, value)
}

func (s *closeTrackingStore) Delete(ctx context.Context, key string) error {
	s.noteWrite()
	return s.Store.Delete(ctx, key)
}

func (s *closeTrackingStore) noteWrite() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		s.lateWrites++
	}
}

func (s *closeTrackingStore) lateWriteCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lateWrites
}

func (s *closeTrackingStore) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return s.Store.Close()
}

func TestWatchEnvelopesStopsPurgeLoopBeforeReturning(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Envelopes.PurgeIntervalSeconds = 1
	kv := &closeTrackingStore{Store: kvstore.NewMemory()}
	cooldowns := cooldown.New(context.Background(), kv, cooldown.WithDuration(1500*time.Millisecond))
	cooldowns.StartAll(context.Background())
	rt := &runtime{cfg: cfg, kv: kv, cooldowns: cooldowns}

	var buf bytes.Buffer
	if err := watchEnvelopes(context.Background(), &buf, rt, false); err != nil {
		t.Fatalf("watchEnvelopes: %v", err)
	}
	requireContains(t, buf.String(), "all ready")
	if err := rt.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	time.Sleep(50 * time.Millisecond)
	if late := kv.lateWriteCount(); late != 0 {
		t.Fatalf("purge loop wrote %d times after the store closed", late)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cooldowns.StartAll(context.Background())
	if err := watchEnvelopes(ctx, &buf, rt, false); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
}
