package loader

import (
	"holocron/internal/card"
	"holocron/internal/catalog"
)

// State is the load state of one drawn identifier.
type State string

const (
	StatePending State = "pending"
	StateLoaded  State = "loaded"
	StateFailed  State = "failed"
)

// Item is the load record for one drawn identifier.
type Item struct {
	Index    int            `json:"index"`
	ID       catalog.CardID `json:"id"`
	State    State          `json:"state"`
	Card     *card.Card     `json:"card,omitempty"`
	Err      error          `json:"-"`
	Error    string         `json:"error,omitempty"`
	Kind     string         `json:"error_kind,omitempty"`
	Attempts int            `json:"attempts"`
}

// Settled reports whether the item reached a terminal state.
func (i Item) Settled() bool {
	return i.State == StateLoaded || i.State == StateFailed
}
