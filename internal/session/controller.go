package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"holocron/internal/card"
	"holocron/internal/catalog"
	"holocron/internal/loader"
	"holocron/internal/logging"
	"holocron/internal/pack"
	"holocron/internal/services"
)

var (
	// ErrBusy is returned when a transaction is already open or opening.
	ErrBusy = errors.New("an envelope is already open")
	// ErrOnCooldown is returned when opening a slot that is still recharging.
	ErrOnCooldown = errors.New("envelope is recharging")
	// ErrUnknownSlot is returned when opening a slot that does not exist.
	ErrUnknownSlot = errors.New("unknown envelope slot")
	// ErrDecisionsPending is returned by Close while a loaded item lacks a
	// decision or an item is still loading.
	ErrDecisionsPending = errors.New("cards still need a decision")
	// ErrNotLoaded is returned when deciding on an item that is not loaded.
	ErrNotLoaded = errors.New("card is not loaded")
	// ErrNoSession is returned when no transaction awaits decisions.
	ErrNoSession = errors.New("no envelope is open")
)

// State is the controller's lifecycle state.
type State string

const (
	StateIdle              State = "idle"
	StateOpening           State = "opening"
	StateAwaitingDecisions State = "awaiting_decisions"
)

// Decision is the user's choice for a loaded card.
type Decision string

const (
	Keep    Decision = "keep"
	Discard Decision = "discard"
)

// Valid reports whether d is keep or discard.
func (d Decision) Valid() bool {
	return d == Keep || d == Discard
}

// Cooldowns gates envelope slots.
type Cooldowns interface {
	HasSlot(slot string) bool
	IsAvailable(slot string) bool
	Remaining(slot string) time.Duration
	StartAll(ctx context.Context)
}

// Composer draws pack contents.
type Composer interface {
	Compose() (pack.Recipe, []catalog.CardID)
}

// Loader resolves drawn identifiers into cards.
type Loader interface {
	LoadBatch(ctx context.Context, ids []catalog.CardID) []loader.Item
	Retry(ctx context.Context, index int) (loader.Item, error)
	Items() []loader.Item
	Item(index int) (loader.Item, error)
	Pending() bool
	Reset()
}

// Album receives decisions.
type Album interface {
	Add(ctx context.Context, c card.Card) bool
	Remove(ctx context.Context, id catalog.CardID) bool
	HasCard(id catalog.CardID) bool
}

// Snapshot is a point-in-time view of the open transaction.
type Snapshot struct {
	ID        string           `json:"id"`
	Slot      string           `json:"slot"`
	State     State            `json:"state"`
	Recipe    pack.Recipe      `json:"recipe"`
	OpenedAt  time.Time        `json:"opened_at"`
	Items     []loader.Item    `json:"items"`
	Decisions map[int]Decision `json:"decisions"`
	CanClose  bool             `json:"can_close"`
}

// Undecided returns the indexes of loaded items without a decision.
func (s Snapshot) Undecided() []int {
	var out []int
	for _, item := range s.Items {
		if item.State != loader.StateLoaded {
			continue
		}
		if _, ok := s.Decisions[item.Index]; !ok {
			out = append(out, item.Index)
		}
	}
	return out
}

// Failed returns the indexes of failed items.
func (s Snapshot) Failed() []int {
	var out []int
	for _, item := range s.Items {
		if item.State == loader.StateFailed {
			out = append(out, item.Index)
		}
	}
	return out
}

// Summary reports what a closed transaction did.
type Summary struct {
	ID        string           `json:"id"`
	Slot      string           `json:"slot"`
	Kept      []catalog.CardID `json:"kept"`
	Discarded []catalog.CardID `json:"discarded"`
	Dropped   []catalog.CardID `json:"dropped"`
}

type transaction struct {
	id        string
	slot      string
	recipe    pack.Recipe
	openedAt  time.Time
	decisions map[int]Decision
}

// Controller serializes envelope transactions. It is safe for concurrent use.
type Controller struct {
	cooldowns Cooldowns
	composer  Composer
	loader    Loader
	album     Album
	clock     clockwork.Clock
	newID     func() string
	logger    *slog.Logger

	mu    sync.Mutex
	state State
	tx    *transaction
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithClock injects the time source for transaction timestamps.
func WithClock(clock clockwork.Clock) Option {
	return func(c *Controller) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithIDGenerator overrides transaction id generation.
func WithIDGenerator(fn func() string) Option {
	return func(c *Controller) {
		if fn != nil {
			c.newID = fn
		}
	}
}

// New wires a controller.
func New(cooldowns Cooldowns, composer Composer, l Loader, album Album, opts ...Option) *Controller {
	c := &Controller{
		cooldowns: cooldowns,
		composer:  composer,
		loader:    l,
		album:     album,
		clock:     clockwork.NewRealClock(),
		newID:     uuid.NewString,
		logger:    logging.NewNop(),
		state:     StateIdle,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.NewComponentLogger(c.logger, "session")
	return c
}

// State returns the lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Open starts a transaction on slot. Every slot starts recharging, a pack is
// composed, and all of its cards are loaded before Open returns.
func (c *Controller) Open(ctx context.Context, slot string) (Snapshot, error) {
	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		return Snapshot{}, ErrBusy
	}
	if !c.cooldowns.HasSlot(slot) {
		c.mu.Unlock()
		return Snapshot{}, fmt.Errorf("open %q: %w", slot, ErrUnknownSlot)
	}
	if !c.cooldowns.IsAvailable(slot) {
		c.mu.Unlock()
		return Snapshot{}, fmt.Errorf("open %q (%v remaining): %w", slot, c.cooldowns.Remaining(slot).Round(time.Second), ErrOnCooldown)
	}
	tx := &transaction{
		id:        c.newID(),
		slot:      slot,
		openedAt:  c.clock.Now(),
		decisions: make(map[int]Decision),
	}
	c.state = StateOpening
	c.tx = tx
	c.mu.Unlock()

	ctx = services.WithEnvelope(services.WithSessionID(ctx, tx.id), slot)
	logger := logging.WithContext(ctx, c.logger)

	c.cooldowns.StartAll(ctx)
	recipe, ids := c.composer.Compose()
	logger.Info("envelope opened",
		logging.String(logging.FieldEventType, "envelope_opened"),
		logging.String("recipe", recipe.String()),
		logging.Int("cards", len(ids)))

	items := c.loader.LoadBatch(ctx, ids)

	c.mu.Lock()
	tx.recipe = recipe
	c.state = StateAwaitingDecisions
	snapshot := c.snapshotLocked()
	c.mu.Unlock()

	failed := 0
	for _, item := range items {
		if item.State == loader.StateFailed {
			failed++
		}
	}
	logger.Info("envelope loaded",
		logging.String(logging.FieldEventType, "envelope_loaded"),
		logging.Int("loaded", len(items)-failed),
		logging.Int("failed", failed))
	return snapshot, nil
}

// Decide records decision for the loaded item at index and applies it to the
// album: keep adds the card, discard removes it if present. Re-deciding
// overwrites the previous decision and re-applies the album effect. The
// returned flag reports whether the album changed.
func (c *Controller) Decide(ctx context.Context, index int, decision Decision) (bool, error) {
	if !decision.Valid() {
		return false, fmt.Errorf("unknown decision %q", decision)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireAwaitingLocked(); err != nil {
		return false, err
	}
	item, err := c.loader.Item(index)
	if err != nil {
		return false, err
	}
	if item.State != loader.StateLoaded || item.Card == nil {
		return false, fmt.Errorf("decide %s (%s): %w", item.ID, item.State, ErrNotLoaded)
	}

	c.tx.decisions[index] = decision
	var changed bool
	switch decision {
	case Keep:
		changed = c.album.Add(ctx, *item.Card)
	case Discard:
		changed = c.album.Remove(ctx, item.ID)
	}

	ctx = services.WithEnvelope(services.WithSessionID(ctx, c.tx.id), c.tx.slot)
	result := "unchanged"
	if changed {
		result = "applied"
	}
	logging.WithContext(ctx, c.logger).Info("card decision",
		logging.Args(append(logging.DecisionAttrs("card_"+string(decision), result, item.ID.String()),
			logging.String(logging.FieldCardID, item.ID.String()))...)...)
	return changed, nil
}

// Retry re-attempts the failed item at index. The controller lock is not held
// while the fetch is in flight, so the item reads as pending meanwhile.
func (c *Controller) Retry(ctx context.Context, index int) (loader.Item, error) {
	c.mu.Lock()
	if err := c.requireAwaitingLocked(); err != nil {
		c.mu.Unlock()
		return loader.Item{}, err
	}
	ctx = services.WithEnvelope(services.WithSessionID(ctx, c.tx.id), c.tx.slot)
	c.mu.Unlock()

	return c.loader.Retry(ctx, index)
}

// CanClose reports whether every loaded item has a decision and nothing is pending.
func (c *Controller) CanClose() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.canCloseLocked()
}

// Close ends the transaction and returns to idle. Failed items are dropped.
func (c *Controller) Close(ctx context.Context) (Summary, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireAwaitingLocked(); err != nil {
		return Summary{}, err
	}
	if !c.canCloseLocked() {
		return Summary{}, ErrDecisionsPending
	}

	summary := Summary{ID: c.tx.id, Slot: c.tx.slot}
	for _, item := range c.loader.Items() {
		switch item.State {
		case loader.StateLoaded:
			if c.tx.decisions[item.Index] == Keep {
				summary.Kept = append(summary.Kept, item.ID)
			} else {
				summary.Discarded = append(summary.Discarded, item.ID)
			}
		default:
			summary.Dropped = append(summary.Dropped, item.ID)
		}
	}

	ctx = services.WithEnvelope(services.WithSessionID(ctx, c.tx.id), c.tx.slot)
	logging.WithContext(ctx, c.logger).Info("envelope closed",
		logging.String(logging.FieldEventType, "envelope_closed"),
		logging.Int("kept", len(summary.Kept)),
		logging.Int("discarded", len(summary.Discarded)),
		logging.Int("dropped", len(summary.Dropped)))

	c.loader.Reset()
	c.tx = nil
	c.state = StateIdle
	return summary, nil
}

// Current returns the open transaction, if any.
func (c *Controller) Current() (Snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tx == nil {
		return Snapshot{}, false
	}
	return c.snapshotLocked(), true
}

func (c *Controller) requireAwaitingLocked() error {
	switch c.state {
	case StateAwaitingDecisions:
		return nil
	case StateOpening:
		return ErrBusy
	default:
		return ErrNoSession
	}
}

func (c *Controller) canCloseLocked() bool {
	if c.state != StateAwaitingDecisions || c.tx == nil {
		return false
	}
	for _, item := range c.loader.Items() {
		switch item.State {
		case loader.StatePending:
			return false
		case loader.StateLoaded:
			if _, ok := c.tx.decisions[item.Index]; !ok {
				return false
			}
		}
	}
	return true
}

func (c *Controller) snapshotLocked() Snapshot {
	decisions := make(map[int]Decision, len(c.tx.decisions))
	for k, v := range c.tx.decisions {
		decisions[k] = v
	}
	return Snapshot{
		ID:        c.tx.id,
		Slot:      c.tx.slot,
		State:     c.state,
		Recipe:    c.tx.recipe,
		OpenedAt:  c.tx.openedAt,
		Items:     c.loader.Items(),
		Decisions: decisions,
		CanClose:  c.canCloseLocked(),
	}
}
