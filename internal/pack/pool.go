package pack

import (
	"holocron/internal/catalog"
)

// Pool samples identifiers from the static valid-id sets.
type Pool struct {
	rng Rand
}

// NewPool creates a pool backed by rng. A nil rng uses an entropy-seeded source.
func NewPool(rng Rand) *Pool {
	if rng == nil {
		rng = NewRand()
	}
	return &Pool{rng: rng}
}

// SampleUnique draws min(count, |valid ids|) distinct identifiers from category
// uniformly without replacement. Unknown categories and non-positive counts
// yield nothing.
func (p *Pool) SampleUnique(category catalog.Category, count int) []catalog.CardID {
	working := catalog.ValidIDs(category)
	if count <= 0 || len(working) == 0 {
		return nil
	}
	if count > len(working) {
		count = len(working)
	}
	out := make([]catalog.CardID, 0, count)
	for range count {
		i := p.rng.IntN(len(working))
		out = append(out, catalog.NewCardID(category, working[i]))
		working[i] = working[len(working)-1]
		working = working[:len(working)-1]
	}
	return out
}
