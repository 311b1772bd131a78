package loader

import (
	"math"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"holocron/internal/catalog"
)

// RecentWindow bounds the "recent errors" figure.
const RecentWindow = 60 * time.Second

// ErrorRecord is one failed attempt.
type ErrorRecord struct {
	At       time.Time        `json:"at"`
	Category catalog.Category `json:"category"`
	Number   int              `json:"number"`
	Error    string           `json:"error"`
	Attempt  int              `json:"attempt"`
}

// SuccessRecord is one successful load.
type SuccessRecord struct {
	At       time.Time        `json:"at"`
	Category catalog.Category `json:"category"`
	Number   int              `json:"number"`
	LoadTime time.Duration    `json:"load_time"`
}

// Stats summarizes recorded attempts.
type Stats struct {
	TotalErrors        int                      `json:"total_errors"`
	TotalSuccesses     int                      `json:"total_successes"`
	AverageLoadTimeMS  int64                    `json:"average_load_time_ms"`
	ErrorsByCategory   map[catalog.Category]int `json:"errors_by_category"`
	RecentErrors       int                      `json:"recent_errors"`
	SuccessRatePercent int                      `json:"success_rate_percent"`
}

// Tracker accumulates load attempts. It is safe for concurrent use.
type Tracker struct {
	clock clockwork.Clock

	mu        sync.Mutex
	errors    []ErrorRecord
	successes []SuccessRecord
}

// NewTracker creates a tracker. A nil clock uses the real clock.
func NewTracker(clock clockwork.Clock) *Tracker {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Tracker{clock: clock}
}

// RecordError logs a failed attempt.
func (t *Tracker) RecordError(id catalog.CardID, err error, attempt int) {
	message := ""
	if err != nil {
		message = err.Error()
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.errors = append(t.errors, ErrorRecord{
		At:       t.clock.Now(),
		Category: id.Category,
		Number:   id.Number,
		Error:    message,
		Attempt:  attempt,
	})
}

// RecordSuccess logs a successful load.
func (t *Tracker) RecordSuccess(id catalog.CardID, loadTime time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.successes = append(t.successes, SuccessRecord{
		At:       t.clock.Now(),
		Category: id.Category,
		Number:   id.Number,
		LoadTime: loadTime,
	})
}

// Errors returns a copy of the error log.
func (t *Tracker) Errors() []ErrorRecord {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]ErrorRecord, len(t.errors))
	copy(out, t.errors)
	return out
}

// Stats derives the summary figures. The success rate is 100 when nothing
// has been recorded.
func (t *Tracker) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()

	stats := Stats{
		TotalErrors:        len(t.errors),
		TotalSuccesses:     len(t.successes),
		ErrorsByCategory:   make(map[catalog.Category]int),
		SuccessRatePercent: 100,
	}

	if len(t.successes) > 0 {
		var total time.Duration
		for _, s := range t.successes {
			total += s.LoadTime
		}
		avgMS := float64(total) / float64(len(t.successes)) / float64(time.Millisecond)
		stats.AverageLoadTimeMS = int64(math.Round(avgMS))
	}

	now := t.clock.Now()
	for _, e := range t.errors {
		stats.ErrorsByCategory[e.Category]++
		if now.Sub(e.At) < RecentWindow {
			stats.RecentErrors++
		}
	}

	if attempts := stats.TotalErrors + stats.TotalSuccesses; attempts > 0 {
		stats.SuccessRatePercent = int(math.Round(float64(stats.TotalSuccesses) / float64(attempts) * 100))
	}
	return stats
}

// Clear drops every record.
func (t *Tracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.errors = nil
	t.successes = nil
}
