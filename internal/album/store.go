package album

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"holocron/internal/card"
	"holocron/internal/catalog"
	"holocron/internal/kvstore"
	"holocron/internal/logging"
)

// StorageKey names the persisted album blob.
const StorageKey = "album"

// ErrUnknownCategory is returned when resetting a category that does not exist.
var ErrUnknownCategory = errors.New("unknown category")

// CooldownResetter clears envelope cooldowns on a full reset.
type CooldownResetter interface {
	Reset(ctx context.Context)
}

// Store owns the album. It is safe for concurrent use.
type Store struct {
	kv        kvstore.Store
	cooldowns CooldownResetter
	logger    *slog.Logger

	mu    sync.RWMutex
	album Album
}

// Option configures a Store.
type Option func(*Store)

// WithCooldowns wires the cooldown state cleared by ResetAll.
func WithCooldowns(cooldowns CooldownResetter) Option {
	return func(s *Store) {
		s.cooldowns = cooldowns
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a store and loads the persisted album from kv.
func New(ctx context.Context, kv kvstore.Store, opts ...Option) *Store {
	s := &Store{
		kv:     kv,
		logger: logging.NewNop(),
		album:  Empty(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.NewComponentLogger(s.logger, "album")

	loaded, dropped, err := s.load(ctx)
	if err != nil {
		logging.WarnWithContext(s.logger, "failed to load album", "album_load_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "album will start empty"),
			logging.String(logging.FieldImpact, "previously collected cards are not shown"))
		return s
	}
	if dropped > 0 {
		logging.WarnWithContext(s.logger, "dropped misplaced album entries", "album_entries_dropped",
			logging.Int("dropped", dropped),
			logging.String(logging.FieldErrorHint, "stored entries did not match their slots"),
			logging.String(logging.FieldImpact, "those cards must be collected again"))
	}
	s.album = loaded
	return s
}

// Snapshot returns the current album value. Callers must not modify it.
func (s *Store) Snapshot() Album {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.album
}

// HasCard reports whether the slot for id is occupied.
func (s *Store) HasCard(id catalog.CardID) bool {
	_, ok := s.Get(id)
	return ok
}

// Get returns the card held in the slot for id.
func (s *Store) Get(id catalog.CardID) (card.Card, bool) {
	index, ok := id.SlotIndex()
	if !ok {
		return card.Card{}, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	held := s.album.Section(id.Category)[index]
	if held == nil {
		return card.Card{}, false
	}
	return *held, true
}

// Add stores c in its slot. It returns false when the identifier is invalid
// or the slot is already occupied.
func (s *Store) Add(ctx context.Context, c card.Card) bool {
	index, ok := c.SlotIndex()
	if !ok {
		s.logger.Debug("rejected card with invalid identifier", logging.String(logging.FieldCardID, c.CardID.String()))
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	section := s.album.Section(c.Category)
	if section[index] != nil {
		return false
	}
	next := make([]*card.Card, len(section))
	copy(next, section)
	stored := c
	next[index] = &stored
	s.replaceLocked(ctx, s.album.withSection(c.Category, next))
	s.logger.Debug("card added", logging.String(logging.FieldCardID, c.CardID.String()))
	return true
}

// Remove empties the slot for id. It returns false when the slot is empty or
// the identifier is invalid.
func (s *Store) Remove(ctx context.Context, id catalog.CardID) bool {
	index, ok := id.SlotIndex()
	if !ok {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	section := s.album.Section(id.Category)
	if section[index] == nil {
		return false
	}
	next := make([]*card.Card, len(section))
	copy(next, section)
	next[index] = nil
	s.replaceLocked(ctx, s.album.withSection(id.Category, next))
	s.logger.Debug("card removed", logging.String(logging.FieldCardID, id.String()))
	return true
}

// Stats derives completion figures from the current album.
func (s *Store) Stats() Stats {
	return s.Snapshot().Stats()
}

// ResetAll empties every section and clears envelope cooldowns.
func (s *Store) ResetAll(ctx context.Context) {
	s.mu.Lock()
	s.replaceLocked(ctx, Empty())
	s.mu.Unlock()

	if s.cooldowns != nil {
		s.cooldowns.Reset(ctx)
	}
	s.logger.Info("album reset", logging.String(logging.FieldEventType, "album_reset"))
}

// ResetCategory empties one section. Cooldowns are untouched.
func (s *Store) ResetCategory(ctx context.Context, category catalog.Category) error {
	if !category.Valid() {
		return fmt.Errorf("reset %q: %w", category, ErrUnknownCategory)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replaceLocked(ctx, s.album.withSection(category, make([]*card.Card, catalog.SlotCount(category))))
	s.logger.Info("album category reset",
		logging.String(logging.FieldEventType, "album_category_reset"),
		logging.String(logging.FieldCategory, string(category)))
	return nil
}

func (s *Store) replaceLocked(ctx context.Context, next Album) {
	s.album = next
	if s.kv == nil {
		return
	}
	data, err := json.Marshal(next)
	if err == nil {
		err = s.kv.Put(ctx, StorageKey, data)
	}
	if err != nil {
		logging.WarnWithContext(s.logger, "failed to persist album", "album_persist_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the storage path is writable"),
			logging.String(logging.FieldImpact, "album changes will not survive a restart"))
	}
}

// load reads the persisted album, keeping only entries that resolve to their slot.
func (s *Store) load(ctx context.Context) (Album, int, error) {
	if s.kv == nil {
		return Empty(), 0, nil
	}
	data, err := s.kv.Get(ctx, StorageKey)
	if errors.Is(err, kvstore.ErrNotFound) {
		return Empty(), 0, nil
	}
	if err != nil {
		return Album{}, 0, fmt.Errorf("read album: %w", err)
	}
	if len(data) == 0 {
		return Empty(), 0, nil
	}

	var raw Album
	if err := json.Unmarshal(data, &raw); err != nil {
		return Album{}, 0, fmt.Errorf("parse album: %w", err)
	}

	album := Empty()
	dropped := 0
	for _, category := range catalog.Categories() {
		target := album.Section(category)
		for index, entry := range raw.Section(category) {
			if entry == nil {
				continue
			}
			want, ok := entry.SlotIndex()
			if entry.Category != category || !ok || want != index {
				dropped++
				continue
			}
			target[index] = entry
		}
	}
	return album, dropped, nil
}
