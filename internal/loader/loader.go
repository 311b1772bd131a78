package loader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"holocron/internal/card"
	"holocron/internal/catalog"
	"holocron/internal/logging"
	"holocron/internal/services"
	"holocron/internal/swapi"
)

var (
	// ErrIndexOutOfRange is returned when an item index does not exist.
	ErrIndexOutOfRange = errors.New("item index out of range")
	// ErrNotFailed is returned when retrying an item that is not failed.
	ErrNotFailed = errors.New("item is not in failed state")
)

// Loader tracks the items of one envelope. It is safe for concurrent use.
type Loader struct {
	gateway swapi.Gateway
	timeout time.Duration
	clock   clockwork.Clock
	tracker *Tracker
	logger  *slog.Logger

	mu    sync.Mutex
	items []Item
	// generation changes whenever items are replaced so late results from a
	// previous batch are discarded.
	generation uint64
}

// Option configures a Loader.
type Option func(*Loader)

// WithTimeout bounds each item fetch. Defaults to swapi.DefaultTimeout.
func WithTimeout(timeout time.Duration) Option {
	return func(l *Loader) {
		if timeout > 0 {
			l.timeout = timeout
		}
	}
}

// WithClock injects the clock used for load-time measurement.
func WithClock(clock clockwork.Clock) Option {
	return func(l *Loader) {
		if clock != nil {
			l.clock = clock
		}
	}
}

// WithTracker records every attempt into tracker.
func WithTracker(tracker *Tracker) Option {
	return func(l *Loader) {
		l.tracker = tracker
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// New creates a loader fetching through gateway.
func New(gateway swapi.Gateway, opts ...Option) *Loader {
	l := &Loader{
		gateway: gateway,
		timeout: swapi.DefaultTimeout,
		clock:   clockwork.NewRealClock(),
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = logging.NewComponentLogger(l.logger, "loader")
	return l
}

// LoadBatch replaces the current items with ids, all pending, fetches every
// item concurrently, and returns once each has settled.
func (l *Loader) LoadBatch(ctx context.Context, ids []catalog.CardID) []Item {
	l.mu.Lock()
	l.generation++
	generation := l.generation
	l.items = make([]Item, len(ids))
	for i, id := range ids {
		l.items[i] = Item{Index: i, ID: id, State: StatePending}
	}
	l.mu.Unlock()

	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.settle(generation, i, l.fetch(ctx, id, 1))
		}()
	}
	wg.Wait()

	return l.Items()
}

// Retry re-attempts the failed item at index: it moves to pending, is fetched
// once more, and the settled item is returned.
func (l *Loader) Retry(ctx context.Context, index int) (Item, error) {
	l.mu.Lock()
	if index < 0 || index >= len(l.items) {
		l.mu.Unlock()
		return Item{}, fmt.Errorf("retry %d: %w", index, ErrIndexOutOfRange)
	}
	item := l.items[index]
	if item.State != StateFailed {
		l.mu.Unlock()
		return Item{}, fmt.Errorf("retry %s (%s): %w", item.ID, item.State, ErrNotFailed)
	}
	item.State = StatePending
	item.Card = nil
	item.Err = nil
	item.Error = ""
	item.Kind = ""
	l.items[index] = item
	attempt := item.Attempts + 1
	generation := l.generation
	l.mu.Unlock()

	l.logger.Info("retrying card load",
		logging.String(logging.FieldCardID, item.ID.String()),
		logging.Int("attempt", attempt))

	l.settle(generation, index, l.fetch(ctx, item.ID, attempt))
	return l.Item(index)
}

// Items returns a snapshot of every item in draw order.
func (l *Loader) Items() []Item {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Item, len(l.items))
	copy(out, l.items)
	return out
}

// Item returns a snapshot of the item at index.
func (l *Loader) Item(index int) (Item, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if index < 0 || index >= len(l.items) {
		return Item{}, fmt.Errorf("item %d: %w", index, ErrIndexOutOfRange)
	}
	return l.items[index], nil
}

// Pending reports whether any item is still in flight.
func (l *Loader) Pending() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, item := range l.items {
		if item.State == StatePending {
			return true
		}
	}
	return false
}

// Reset drops every item.
func (l *Loader) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.generation++
	l.items = nil
}

type outcome struct {
	card     *card.Card
	err      error
	attempt  int
	loadTime time.Duration
}

func (l *Loader) fetch(ctx context.Context, id catalog.CardID, attempt int) outcome {
	start := l.clock.Now()
	itemCtx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	entity, err := l.gateway.Fetch(itemCtx, id)
	if err == nil {
		var built card.Card
		built, err = card.New(id, entity)
		if err != nil {
			err = services.Wrap(services.ErrShape, "loader", "build "+id.String(), "", err)
		} else {
			return outcome{card: &built, attempt: attempt, loadTime: l.clock.Since(start)}
		}
	}
	if errors.Is(itemCtx.Err(), context.DeadlineExceeded) && !errors.Is(err, services.ErrTimeout) {
		err = services.Wrap(services.ErrTimeout, "loader", "fetch "+id.String(), fmt.Sprintf("exceeded %v", l.timeout), err)
	}
	return outcome{err: err, attempt: attempt, loadTime: l.clock.Since(start)}
}

func (l *Loader) settle(generation uint64, index int, result outcome) {
	l.mu.Lock()
	if generation != l.generation || index >= len(l.items) {
		l.mu.Unlock()
		return
	}
	item := l.items[index]
	item.Attempts = result.attempt
	if result.err != nil {
		item.State = StateFailed
		item.Err = result.err
		item.Error = result.err.Error()
		item.Kind = services.Kind(result.err)
	} else {
		item.State = StateLoaded
		item.Card = result.card
	}
	l.items[index] = item
	l.mu.Unlock()

	if l.tracker != nil {
		if result.err != nil {
			l.tracker.RecordError(item.ID, result.err, result.attempt)
		} else {
			l.tracker.RecordSuccess(item.ID, result.loadTime)
		}
	}

	if result.err != nil {
		logging.WarnWithContext(l.logger, "card load failed", "card_load_failed",
			logging.String(logging.FieldCardID, item.ID.String()),
			logging.Int("attempt", result.attempt),
			logging.ErrorKind(result.err),
			logging.Error(result.err),
			logging.String(logging.FieldErrorHint, "retry the card once the catalog is reachable"),
			logging.String(logging.FieldImpact, "card cannot be kept until it loads"))
		return
	}
	l.logger.Debug("card loaded",
		logging.String(logging.FieldCardID, item.ID.String()),
		logging.String("rarity", string(item.Card.Rarity)),
		logging.Duration("load_time", result.loadTime))
}
