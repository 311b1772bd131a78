package card_test

import (
	"strings"
	"testing"

	"holocron/internal/card"
	"holocron/internal/catalog"
	"holocron/internal/swapi"
)

func TestNewDerivesRarityAndImage(t *testing.T) {
	tests := []struct {
		name       string
		id         catalog.CardID
		entity     swapi.Entity
		wantName   string
		wantRarity catalog.Rarity
		wantImage  string
	}{
		{
			name:       "movie",
			id:         catalog.NewCardID(catalog.Movies, 4),
			entity:     swapi.Entity{Category: catalog.Movies, Movie: &swapi.Movie{Title: "A New Hope", EpisodeID: 4}},
			wantName:   "A New Hope",
			wantRarity: catalog.RaritySpecial,
			wantImage:  "text=STAR+WARS%0AA+New+Hope",
		},
		{
			name:       "regular character",
			id:         catalog.NewCardID(catalog.Characters, 21),
			entity:     swapi.Entity{Category: catalog.Characters, Character: &swapi.Character{Name: "Palpatine"}},
			wantName:   "Palpatine",
			wantRarity: catalog.RarityRegular,
			wantImage:  "/people/21.jpg",
		},
		{
			name:       "special starship",
			id:         catalog.NewCardID(catalog.Starships, 10),
			entity:     swapi.Entity{Category: catalog.Starships, Starship: &swapi.Starship{Name: "Millennium Falcon"}},
			wantName:   "Millennium Falcon",
			wantRarity: catalog.RaritySpecial,
			wantImage:  "text=STARSHIP%0AMillennium+Falcon",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c, err := card.New(tc.id, tc.entity)
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			if c.CardID != tc.id || c.Name != tc.wantName || c.Rarity != tc.wantRarity {
				t.Fatalf("unexpected card: %+v", c)
			}
			if !strings.HasSuffix(c.Image, tc.wantImage) {
				t.Fatalf("image %q does not end with %q", c.Image, tc.wantImage)
			}
			if c.Special() != (tc.wantRarity == catalog.RaritySpecial) {
				t.Fatalf("Special mismatch for %+v", c)
			}
		})
	}
}

func TestNewRejectsCategoryMismatch(t *testing.T) {
	_, err := card.New(catalog.NewCardID(catalog.Movies, 1), swapi.Entity{Category: catalog.Characters, Character: &swapi.Character{Name: "Luke"}})
	if err == nil {
		t.Fatal("expected mismatch error")
	}
}

func TestDetailsSkipsUnknownValues(t *testing.T) {
	c, err := card.New(catalog.NewCardID(catalog.Characters, 2), swapi.Entity{
		Category:  catalog.Characters,
		Character: &swapi.Character{Name: "C-3PO", Height: "167", Mass: "75", BirthYear: "112BBY", Gender: "n/a"},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	details := c.Details()
	labels := make([]string, 0, len(details))
	for _, f := range details {
		labels = append(labels, f.Label)
	}
	if got := strings.Join(labels, ","); got != "Height,Mass,Birth year" {
		t.Fatalf("unexpected detail labels %q", got)
	}
}
