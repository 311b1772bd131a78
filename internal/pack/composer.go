package pack

import (
	"fmt"
	"sync"

	"holocron/internal/catalog"
)

// Recipe fixes how many cards of each category an envelope holds.
type Recipe struct {
	Movies     int `json:"movies"`
	Characters int `json:"characters"`
	Starships  int `json:"starships"`
}

// Recipes enumerates the envelope compositions; one is chosen uniformly per opening.
var Recipes = []Recipe{
	{Movies: 1, Characters: 3, Starships: 1},
	{Movies: 0, Characters: 3, Starships: 2},
}

// Count returns the number of cards the recipe draws from category.
func (r Recipe) Count(category catalog.Category) int {
	switch category {
	case catalog.Movies:
		return r.Movies
	case catalog.Characters:
		return r.Characters
	case catalog.Starships:
		return r.Starships
	default:
		return 0
	}
}

// Total returns the number of cards in the envelope.
func (r Recipe) Total() int {
	return r.Movies + r.Characters + r.Starships
}

func (r Recipe) String() string {
	return fmt.Sprintf("movies:%d characters:%d starships:%d", r.Movies, r.Characters, r.Starships)
}

// Matches reports whether ids has exactly the recipe's category composition.
func (r Recipe) Matches(ids []catalog.CardID) bool {
	counts := make(map[catalog.Category]int, 3)
	for _, id := range ids {
		counts[id.Category]++
	}
	for _, c := range catalog.Categories() {
		if counts[c] != r.Count(c) {
			return false
		}
		delete(counts, c)
	}
	return len(counts) == 0
}

// Composer assembles envelopes. It is safe for concurrent use.
type Composer struct {
	mu      sync.Mutex
	rng     Rand
	pool    *Pool
	recipes []Recipe
}

// NewComposer creates a composer drawing from rng. Without recipes the
// package-level Recipes are used.
func NewComposer(rng Rand, recipes ...Recipe) *Composer {
	if rng == nil {
		rng = NewRand()
	}
	if len(recipes) == 0 {
		recipes = Recipes
	}
	owned := make([]Recipe, len(recipes))
	copy(owned, recipes)
	return &Composer{
		rng:     rng,
		pool:    NewPool(rng),
		recipes: owned,
	}
}

// Compose picks a recipe, samples each category it names, and returns the
// combined identifiers in uniformly shuffled order.
func (c *Composer) Compose() (Recipe, []catalog.CardID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	recipe := c.recipes[c.rng.IntN(len(c.recipes))]
	ids := make([]catalog.CardID, 0, recipe.Total())
	for _, category := range catalog.Categories() {
		if n := recipe.Count(category); n > 0 {
			ids = append(ids, c.pool.SampleUnique(category, n)...)
		}
	}
	for i := len(ids) - 1; i > 0; i-- {
		j := c.rng.IntN(i + 1)
		ids[i], ids[j] = ids[j], ids[i]
	}
	return recipe, ids
}
