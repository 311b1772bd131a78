package catalog

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	characterImageTemplate = "https://vieraboschkova.github.io/swapi-gallery/static/assets/img/people/%d.jpg"
	movieImageTemplate     = "https://dummyimage.com/300x400/000000/FFD700.png&text=STAR+WARS%%0A%s"
	starshipImageTemplate  = "https://dummyimage.com/300x400/1E3A8A/FFFFFF.png&text=STARSHIP%%0A%s"

	movieLabelLimit    = 20
	starshipLabelLimit = 18
)

// ImageURL synthesizes the presentational image reference for a card.
// Characters use a direct templated lookup; the other categories get a
// generated placeholder graphic carrying the entity name.
func ImageURL(id CardID, name string) string {
	switch id.Category {
	case Characters:
		return fmt.Sprintf(characterImageTemplate, id.Number)
	case Movies:
		return fmt.Sprintf(movieImageTemplate, placeholderLabel(name, movieLabelLimit, fmt.Sprintf("Episode+%d", id.Number)))
	case Starships:
		return fmt.Sprintf(starshipImageTemplate, placeholderLabel(name, starshipLabelLimit, fmt.Sprintf("Starship+%d", id.Number)))
	default:
		return ""
	}
}

// placeholderLabel collapses whitespace runs, truncates to limit runes, and
// query-escapes the result so spaces become "+".
func placeholderLabel(name string, limit int, fallback string) string {
	label := strings.Join(strings.Fields(name), " ")
	if label == "" {
		return fallback
	}
	runes := []rune(label)
	if len(runes) > limit {
		runes = runes[:limit]
	}
	return url.QueryEscape(string(runes))
}
