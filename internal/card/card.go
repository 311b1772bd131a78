// Package card materializes fetched catalog entities into collectible cards.
package card

import (
	"fmt"

	"holocron/internal/catalog"
	"holocron/internal/swapi"
)

// Card is a materialized, collectible catalog entity.
type Card struct {
	catalog.CardID
	Name   string         `json:"name"`
	Rarity catalog.Rarity `json:"rarity"`
	Image  string         `json:"image,omitempty"`

	Movie     *swapi.Movie     `json:"movie,omitempty"`
	Character *swapi.Character `json:"character,omitempty"`
	Starship  *swapi.Starship  `json:"starship,omitempty"`
}

// New builds a Card for id from the fetched entity, deriving rarity and the
// presentational image reference.
func New(id catalog.CardID, entity swapi.Entity) (Card, error) {
	if entity.Category != id.Category {
		return Card{}, fmt.Errorf("entity category %q does not match card %s", entity.Category, id)
	}
	name := entity.Name()
	return Card{
		CardID:    id,
		Name:      name,
		Rarity:    id.Rarity(),
		Image:     catalog.ImageURL(id, name),
		Movie:     entity.Movie,
		Character: entity.Character,
		Starship:  entity.Starship,
	}, nil
}

// Special reports whether the card carries the special rarity tag.
func (c Card) Special() bool {
	return c.Rarity == catalog.RaritySpecial
}

// Details returns category-specific display fields in a stable order.
func (c Card) Details() []Field {
	switch {
	case c.Movie != nil:
		return compact([]Field{
			{"Episode", fmt.Sprintf("%d", c.Movie.EpisodeID)},
			{"Director", c.Movie.Director},
			{"Producer", c.Movie.Producer},
			{"Released", c.Movie.ReleaseDate},
		})
	case c.Character != nil:
		return compact([]Field{
			{"Height", c.Character.Height},
			{"Mass", c.Character.Mass},
			{"Birth year", c.Character.BirthYear},
			{"Gender", c.Character.Gender},
			{"Eyes", c.Character.EyeColor},
		})
	case c.Starship != nil:
		return compact([]Field{
			{"Model", c.Starship.Model},
			{"Manufacturer", c.Starship.Manufacturer},
			{"Class", c.Starship.StarshipClass},
			{"Crew", c.Starship.Crew},
			{"MGLT", c.Starship.MGLT},
		})
	}
	return nil
}

// Field is one labelled display value.
type Field struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

func compact(fields []Field) []Field {
	out := fields[:0]
	for _, f := range fields {
		if f.Value == "" || f.Value == "0" || f.Value == "unknown" || f.Value == "n/a" {
			continue
		}
		out = append(out, f)
	}
	return out
}
