package cooldown_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"holocron/internal/cooldown"
	"holocron/internal/kvstore"
)

func newManager(t *testing.T, store kvstore.Store, clock clockwork.Clock) *cooldown.Manager {
	t.Helper()
	return cooldown.New(context.Background(), store, cooldown.WithClock(clock))
}

// newClock starts on a whole millisecond so persisted deadlines reload exactly.
func newClock() *clockwork.FakeClock {
	return clockwork.NewFakeClockAt(time.UnixMilli(1_700_000_000_000))
}

func TestStartThenRechargeAfterDuration(t *testing.T) {
	ctx := context.Background()
	clock := newClock()
	m := newManager(t, kvstore.NewMemory(), clock)

	if !m.IsAvailable("1") || m.Remaining("1") != 0 {
		t.Fatal("fresh slot should be available")
	}

	m.Start(ctx, "1")
	if m.IsAvailable("1") {
		t.Fatal("slot should be cooling down after Start")
	}
	if got := m.Remaining("1"); got != time.Minute {
		t.Fatalf("expected 60s remaining, got %v", got)
	}
	if !m.IsAvailable("2") {
		t.Fatal("Start must only affect its own slot")
	}

	clock.Advance(59 * time.Second)
	if m.IsAvailable("1") || m.Remaining("1") != time.Second {
		t.Fatalf("expected 1s remaining, got %v", m.Remaining("1"))
	}

	clock.Advance(time.Second)
	if !m.IsAvailable("1") || m.Remaining("1") != 0 {
		t.Fatal("slot should be available exactly at its deadline")
	}
}

func TestStartAllCoolsEverySlot(t *testing.T) {
	clock := newClock()
	m := newManager(t, kvstore.NewMemory(), clock)

	m.StartAll(context.Background())
	for _, slot := range m.Slots() {
		if m.IsAvailable(slot) {
			t.Fatalf("slot %s should be cooling down", slot)
		}
	}
	if m.AllAvailable() {
		t.Fatal("AllAvailable should be false")
	}
	status := m.Status()
	if len(status) != 4 || status[0].Slot != "1" || status[3].Slot != "4" {
		t.Fatalf("unexpected status: %+v", status)
	}
	for _, s := range status {
		if s.Available || s.Deadline == nil || s.Remaining != time.Minute {
			t.Fatalf("unexpected slot status: %+v", s)
		}
	}
}

func TestDeadlinesSurviveReload(t *testing.T) {
	ctx := context.Background()
	clock := newClock()
	store := kvstore.NewMemory()

	m := newManager(t, store, clock)
	m.Start(ctx, "3")

	raw, err := store.Get(ctx, cooldown.StorageKey)
	if err != nil {
		t.Fatalf("expected persisted cooldowns: %v", err)
	}
	var persisted map[string]int64
	if err := json.Unmarshal(raw, &persisted); err != nil {
		t.Fatalf("decode persisted: %v", err)
	}
	if persisted["3"] != clock.Now().Add(time.Minute).UnixMilli() {
		t.Fatalf("unexpected persisted deadline: %v", persisted)
	}

	clock.Advance(20 * time.Second)
	reloaded := newManager(t, store, clock)
	if reloaded.IsAvailable("3") || reloaded.Remaining("3") != 40*time.Second {
		t.Fatalf("expected 40s remaining after reload, got %v", reloaded.Remaining("3"))
	}
}

func TestLoadDropsExpiredUnknownAndMalformedEntries(t *testing.T) {
	ctx := context.Background()
	clock := newClock()
	store := kvstore.NewMemory()
	now := clock.Now().UnixMilli()
	blob := []byte(`{"1":` + itoa(now-1000) + `,"2":` + itoa(now+30000) + `,"9":` + itoa(now+30000) + `,"3":"soon"}`)
	if err := store.Put(ctx, cooldown.StorageKey, blob); err != nil {
		t.Fatal(err)
	}

	m := newManager(t, store, clock)
	if !m.IsAvailable("1") || !m.IsAvailable("3") {
		t.Fatal("expired and malformed entries should not block slots")
	}
	if m.Remaining("2") != 30*time.Second {
		t.Fatalf("expected 30s on slot 2, got %v", m.Remaining("2"))
	}
	if m.HasSlot("9") || m.Remaining("9") != 0 {
		t.Fatal("unknown slot ids should be ignored")
	}
}

func TestMalformedBlobMeansNoCooldowns(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemory()
	if err := store.Put(ctx, cooldown.StorageKey, []byte("not json")); err != nil {
		t.Fatal(err)
	}
	m := newManager(t, store, newClock())
	if !m.AllAvailable() {
		t.Fatal("malformed storage should fall back to no cooldowns")
	}
}

func TestPurgeAndReset(t *testing.T) {
	ctx := context.Background()
	clock := newClock()
	store := kvstore.NewMemory()
	m := newManager(t, store, clock)

	m.Start(ctx, "1")
	clock.Advance(30 * time.Second)
	m.Start(ctx, "2")
	clock.Advance(31 * time.Second)

	if removed := m.Purge(ctx); removed != 1 {
		t.Fatalf("expected 1 purged deadline, got %d", removed)
	}
	if removed := m.Purge(ctx); removed != 0 {
		t.Fatalf("second purge should be a no-op, got %d", removed)
	}
	raw, _ := store.Get(ctx, cooldown.StorageKey)
	var persisted map[string]int64
	_ = json.Unmarshal(raw, &persisted)
	if _, ok := persisted["1"]; ok || len(persisted) != 1 {
		t.Fatalf("expected only slot 2 persisted, got %v", persisted)
	}

	m.Reset(ctx)
	if !m.AllAvailable() {
		t.Fatal("Reset should clear every deadline")
	}
	if _, err := store.Get(ctx, cooldown.StorageKey); !errors.Is(err, kvstore.ErrNotFound) {
		t.Fatalf("expected Reset to delete the persisted blob, got %v", err)
	}
	if reloaded := newManager(t, store, clock); !reloaded.AllAvailable() {
		t.Fatal("reset must survive a reload")
	}
}

func TestRunPurgesOnInterval(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	clock := newClock()
	store := kvstore.NewMemory()
	m := newManager(t, store, clock)
	m.Start(ctx, "4")

	done := make(chan struct{})
	go func() {
		m.Run(ctx, time.Minute)
		close(done)
	}()

	waitCtx, waitCancel := context.WithTimeout(ctx, time.Second)
	defer waitCancel()
	if err := clock.BlockUntilContext(waitCtx, 1); err != nil {
		t.Fatalf("ticker never registered: %v", err)
	}
	clock.Advance(time.Minute)

	deadline := time.Now().Add(time.Second)
	for {
		raw, _ := store.Get(ctx, cooldown.StorageKey)
		if string(raw) == "{}" {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("expected purge to persist an empty map, got %s", raw)
		}
		time.Sleep(5 * time.Millisecond)
	}

	cancel()
	<-done
}

func TestCustomSlotsAndDuration(t *testing.T) {
	clock := newClock()
	m := cooldown.New(context.Background(), nil,
		cooldown.WithClock(clock),
		cooldown.WithSlots([]string{"a", "b"}),
		cooldown.WithDuration(5*time.Second))
	m.StartAll(context.Background())
	if m.Duration() != 5*time.Second || m.Remaining("a") != 5*time.Second || m.Remaining("b") != 5*time.Second {
		t.Fatalf("unexpected remaining: a=%v b=%v", m.Remaining("a"), m.Remaining("b"))
	}
	if len(m.Slots()) != 2 || m.HasSlot("1") {
		t.Fatalf("unexpected slots %v", m.Slots())
	}
}

func TestFormatRemaining(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0:00"},
		{-time.Second, "0:00"},
		{time.Millisecond, "0:01"},
		{59 * time.Second, "0:59"},
		{59*time.Second + time.Millisecond, "1:00"},
		{time.Minute, "1:00"},
		{61500 * time.Millisecond, "1:02"},
		{10 * time.Minute, "10:00"},
	}
	for _, tc := range tests {
		if got := cooldown.FormatRemaining(tc.in); got != tc.want {
			t.Fatalf("FormatRemaining(%v) = %q want %q", tc.in, got, tc.want)
		}
	}
}

func itoa(v int64) string {
	b, _ := json.Marshal(v)
	return string(b)
}
