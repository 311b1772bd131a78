package album

import (
	"math"

	"holocron/internal/card"
	"holocron/internal/catalog"
)

// Album is an immutable snapshot of every slot. Nil entries are uncollected.
type Album struct {
	Movies     []*card.Card `json:"movies"`
	Characters []*card.Card `json:"characters"`
	Starships  []*card.Card `json:"starships"`
}

// Empty returns an album with every slot uncollected.
func Empty() Album {
	return Album{
		Movies:     make([]*card.Card, catalog.SlotCount(catalog.Movies)),
		Characters: make([]*card.Card, catalog.SlotCount(catalog.Characters)),
		Starships:  make([]*card.Card, catalog.SlotCount(catalog.Starships)),
	}
}

// Section returns the slot array for category.
func (a Album) Section(category catalog.Category) []*card.Card {
	switch category {
	case catalog.Movies:
		return a.Movies
	case catalog.Characters:
		return a.Characters
	case catalog.Starships:
		return a.Starships
	default:
		return nil
	}
}

// withSection returns a copy of a whose category section is replaced.
func (a Album) withSection(category catalog.Category, section []*card.Card) Album {
	switch category {
	case catalog.Movies:
		a.Movies = section
	case catalog.Characters:
		a.Characters = section
	case catalog.Starships:
		a.Starships = section
	}
	return a
}

// Collected returns the non-empty cards of category in slot order.
func (a Album) Collected(category catalog.Category) []card.Card {
	var out []card.Card
	for _, c := range a.Section(category) {
		if c != nil {
			out = append(out, *c)
		}
	}
	return out
}

// CategoryStats counts collected slots against the fixed total.
type CategoryStats struct {
	Collected  int `json:"collected"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

// Stats summarizes completion per category and overall.
type Stats struct {
	Movies     CategoryStats `json:"movies"`
	Characters CategoryStats `json:"characters"`
	Starships  CategoryStats `json:"starships"`
	Overall    CategoryStats `json:"overall"`
}

// Category returns the stats for category.
func (s Stats) Category(category catalog.Category) CategoryStats {
	switch category {
	case catalog.Movies:
		return s.Movies
	case catalog.Characters:
		return s.Characters
	case catalog.Starships:
		return s.Starships
	default:
		return CategoryStats{}
	}
}

// Stats derives completion counts. Percentages are rounded to the nearest integer.
func (a Album) Stats() Stats {
	count := func(category catalog.Category) CategoryStats {
		collected := 0
		for _, c := range a.Section(category) {
			if c != nil {
				collected++
			}
		}
		return newCategoryStats(collected, catalog.SlotCount(category))
	}
	stats := Stats{
		Movies:     count(catalog.Movies),
		Characters: count(catalog.Characters),
		Starships:  count(catalog.Starships),
	}
	stats.Overall = newCategoryStats(
		stats.Movies.Collected+stats.Characters.Collected+stats.Starships.Collected,
		catalog.TotalSlots())
	return stats
}

func newCategoryStats(collected, total int) CategoryStats {
	stats := CategoryStats{Collected: collected, Total: total}
	if total > 0 {
		stats.Percentage = int(math.Round(float64(collected) / float64(total) * 100))
	}
	return stats
}
