package cooldown

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"holocron/internal/kvstore"
	"holocron/internal/logging"
)

const (
	// StorageKey names the persisted cooldown blob.
	StorageKey = "envelope-cooldowns"
	// DefaultDuration is how long a slot recharges.
	DefaultDuration = 60 * time.Second
	// DefaultPurgeInterval is how often Run drops expired deadlines.
	DefaultPurgeInterval = 60 * time.Second
)

// DefaultSlots are the envelope slot ids.
var DefaultSlots = []string{"1", "2", "3", "4"}

// SlotStatus is a point-in-time view of one slot.
type SlotStatus struct {
	Slot      string        `json:"slot"`
	Available bool          `json:"available"`
	Remaining time.Duration `json:"remaining"`
	Deadline  *time.Time    `json:"deadline,omitempty"`
}

// Manager owns slot deadlines. It is safe for concurrent use.
type Manager struct {
	store    kvstore.Store
	clock    clockwork.Clock
	duration time.Duration
	slots    []string
	logger   *slog.Logger

	mu        sync.Mutex
	deadlines map[string]time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock injects the time source.
func WithClock(clock clockwork.Clock) Option {
	return func(m *Manager) {
		if clock != nil {
			m.clock = clock
		}
	}
}

// WithDuration overrides the recharge duration.
func WithDuration(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.duration = d
		}
	}
}

// WithSlots overrides the slot ids.
func WithSlots(slots []string) Option {
	return func(m *Manager) {
		if len(slots) > 0 {
			m.slots = slices.Clone(slots)
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// New creates a manager and loads persisted deadlines from store, dropping
// expired ones and ids that are not configured slots.
func New(ctx context.Context, store kvstore.Store, opts ...Option) *Manager {
	m := &Manager{
		store:     store,
		clock:     clockwork.NewRealClock(),
		duration:  DefaultDuration,
		slots:     slices.Clone(DefaultSlots),
		logger:    logging.NewNop(),
		deadlines: make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = logging.NewComponentLogger(m.logger, "cooldown")

	if err := m.load(ctx); err != nil {
		logging.WarnWithContext(m.logger, "failed to load envelope cooldowns", "cooldowns_load_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "cooldown state will start empty"),
			logging.String(logging.FieldImpact, "every envelope is available immediately"))
		m.deadlines = make(map[string]time.Time)
	}
	return m
}

// Slots returns the configured slot ids.
func (m *Manager) Slots() []string {
	return slices.Clone(m.slots)
}

// Duration returns the recharge duration.
func (m *Manager) Duration() time.Duration {
	return m.duration
}

// HasSlot reports whether slot is configured.
func (m *Manager) HasSlot(slot string) bool {
	return slices.Contains(m.slots, slot)
}

// Start sets slot's deadline to now plus the recharge duration and persists.
func (m *Manager) Start(ctx context.Context, slot string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deadlines[slot] = m.clock.Now().Add(m.duration)
	m.persistLocked(ctx)
}

// StartAll starts every configured slot with the same deadline and persists once.
func (m *Manager) StartAll(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	deadline := m.clock.Now().Add(m.duration)
	for _, slot := range m.slots {
		m.deadlines[slot] = deadline
	}
	m.persistLocked(ctx)
}

// IsAvailable reports whether slot has no deadline or its deadline has passed.
func (m *Manager) IsAvailable(slot string) bool {
	return m.Remaining(slot) == 0
}

// Remaining returns max(0, deadline - now) for slot.
func (m *Manager) Remaining(slot string) time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	deadline, ok := m.deadlines[slot]
	if !ok {
		return 0
	}
	if remaining := deadline.Sub(m.clock.Now()); remaining > 0 {
		return remaining
	}
	return 0
}

// AllAvailable reports whether every configured slot is available.
func (m *Manager) AllAvailable() bool {
	for _, slot := range m.slots {
		if !m.IsAvailable(slot) {
			return false
		}
	}
	return true
}

// Status reports every configured slot in order.
func (m *Manager) Status() []SlotStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.clock.Now()
	out := make([]SlotStatus, 0, len(m.slots))
	for _, slot := range m.slots {
		status := SlotStatus{Slot: slot, Available: true}
		if deadline, ok := m.deadlines[slot]; ok && deadline.After(now) {
			d := deadline
			status.Available = false
			status.Remaining = deadline.Sub(now)
			status.Deadline = &d
		}
		out = append(out, status)
	}
	return out
}

// Purge drops expired deadlines, persisting when anything changed. It returns
// the number of deadlines removed. Availability is unaffected.
func (m *Manager) Purge(ctx context.Context) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := m.dropExpiredLocked()
	if removed > 0 {
		m.persistLocked(ctx)
		m.logger.Debug("purged expired cooldowns", logging.Int("removed", removed))
	}
	return removed
}

// Reset clears every deadline and removes the persisted blob.
func (m *Manager) Reset(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deadlines = make(map[string]time.Time)
	if m.store == nil {
		return
	}
	if err := m.store.Delete(ctx, StorageKey); err != nil {
		logging.WarnWithContext(m.logger, "failed to clear envelope cooldowns", "cooldowns_persist_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the storage path is writable"),
			logging.String(logging.FieldImpact, "cleared cooldowns may return after a restart"))
	}
}

// Run purges expired deadlines every interval until ctx is done.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultPurgeInterval
	}
	ticker := m.clock.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			m.Purge(ctx)
		}
	}
}

func (m *Manager) dropExpiredLocked() int {
	now := m.clock.Now()
	removed := 0
	for slot, deadline := range m.deadlines {
		if !deadline.After(now) {
			delete(m.deadlines, slot)
			removed++
		}
	}
	return removed
}

func (m *Manager) load(ctx context.Context) error {
	if m.store == nil {
		return nil
	}
	data, err := m.store.Get(ctx, StorageKey)
	if errors.Is(err, kvstore.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read cooldowns: %w", err)
	}
	if len(data) == 0 {
		return nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse cooldowns: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for slot, value := range raw {
		if !m.HasSlot(slot) {
			continue
		}
		ms, ok := parseMillis(value)
		if !ok {
			continue
		}
		m.deadlines[slot] = time.UnixMilli(ms)
	}
	m.dropExpiredLocked()
	m.logger.Debug("loaded envelope cooldowns", logging.Int("active", len(m.deadlines)))
	return nil
}

func parseMillis(value json.RawMessage) (int64, bool) {
	var number float64
	if err := json.Unmarshal(value, &number); err != nil {
		return 0, false
	}
	if math.IsNaN(number) || math.IsInf(number, 0) {
		return 0, false
	}
	return int64(number), true
}

func (m *Manager) persistLocked(ctx context.Context) {
	if m.store == nil {
		return
	}
	payload := make(map[string]int64, len(m.deadlines))
	for slot, deadline := range m.deadlines {
		payload[slot] = deadline.UnixMilli()
	}
	data, err := json.Marshal(payload)
	if err == nil {
		err = m.store.Put(ctx, StorageKey, data)
	}
	if err != nil {
		logging.WarnWithContext(m.logger, "failed to persist envelope cooldowns", "cooldowns_persist_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the storage path is writable"),
			logging.String(logging.FieldImpact, "cooldowns will not survive a restart"))
	}
}

// FormatRemaining renders d as m:ss with seconds rounded up.
func FormatRemaining(d time.Duration) string {
	if d <= 0 {
		return "0:00"
	}
	seconds := int64(math.Ceil(d.Seconds()))
	return strconv.FormatInt(seconds/60, 10) + ":" + fmt.Sprintf("%02d", seconds%60)
}
