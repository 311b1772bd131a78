package catalog

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Category is one of the fixed catalog partitions.
type Category string

const (
	Movies     Category = "movies"
	Characters Category = "characters"
	Starships  Category = "starships"
)

var categories = []Category{Movies, Characters, Starships}

// resources maps categories to the remote collection that serves them.
var resources = map[Category]string{
	Movies:     "films",
	Characters: "people",
	Starships:  "starships",
}

var validIDs = map[Category][]int{
	Movies:     consecutive(6),
	Characters: consecutive(82),
	Starships: {
		2, 3, 5, 9, 10, 11, 12, 13, 15, 17, 21, 22, 23, 27, 28, 29, 31, 39, 40, 41,
		43, 47, 48, 49, 52, 58, 59, 61, 63, 64, 65, 66, 68, 74, 75, 77,
	},
}

// sparseIndex resolves starship ids to their positional slot.
var sparseIndex = func() map[int]int {
	index := make(map[int]int, len(validIDs[Starships]))
	for pos, id := range validIDs[Starships] {
		index[id] = pos
	}
	return index
}()

var titleCaser = cases.Title(language.English)

func consecutive(n int) []int {
	ids := make([]int, n)
	for i := range ids {
		ids[i] = i + 1
	}
	return ids
}

// Categories returns every category in album order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// ParseCategory accepts a category name or its remote resource name.
func ParseCategory(value string) (Category, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, c := range categories {
		if normalized == string(c) || normalized == resources[c] {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q (expected movies, characters, or starships)", value)
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	_, ok := resources[c]
	return ok
}

// Resource returns the remote collection path segment for c.
func (c Category) Resource() string {
	return resources[c]
}

// DisplayName returns a title-cased label for output.
func (c Category) DisplayName() string {
	return titleCaser.String(string(c))
}

func (c Category) String() string { return string(c) }

// ValidIDs returns a copy of the ids the remote catalog serves for c, in slot order.
func ValidIDs(c Category) []int {
	ids := validIDs[c]
	out := make([]int, len(ids))
	copy(out, ids)
	return out
}

// SlotCount returns the fixed number of album slots for c.
func SlotCount(c Category) int {
	return len(validIDs[c])
}

// TotalSlots returns the number of album slots across all categories.
func TotalSlots() int {
	total := 0
	for _, c := range categories {
		total += SlotCount(c)
	}
	return total
}

// CardID identifies one catalog entity.
type CardID struct {
	Category Category `json:"category"`
	Number   int      `json:"number"`
}

// NewCardID builds a CardID without validating it.
func NewCardID(c Category, number int) CardID {
	return CardID{Category: c, Number: number}
}

// ParseCardID parses the "category/number" form produced by String.
func ParseCardID(value string) (CardID, error) {
	catPart, numPart, ok := strings.Cut(strings.TrimSpace(value), "/")
	if !ok {
		return CardID{}, fmt.Errorf("invalid card id %q (expected category/number)", value)
	}
	c, err := ParseCategory(catPart)
	if err != nil {
		return CardID{}, err
	}
	number, err := strconv.Atoi(strings.TrimSpace(numPart))
	if err != nil {
		return CardID{}, fmt.Errorf("invalid card number %q: %w", numPart, err)
	}
	return CardID{Category: c, Number: number}, nil
}

func (id CardID) String() string {
	return string(id.Category) + "/" + strconv.Itoa(id.Number)
}

// IsValid reports whether number is served by the remote catalog for c.
func IsValid(c Category, number int) bool {
	return NewCardID(c, number).Valid()
}

// Valid reports whether the number belongs to the category's valid-id set.
func (id CardID) Valid() bool {
	_, ok := id.SlotIndex()
	return ok
}

// SlotIndex resolves the album slot for id. Movies and characters are 1-based
// and consecutive so they map to number-1; starships are sparse and map to the
// position of the number within their valid-id list.
func (id CardID) SlotIndex() (int, bool) {
	switch id.Category {
	case Movies, Characters:
		index := id.Number - 1
		if index < 0 || index >= SlotCount(id.Category) {
			return -1, false
		}
		return index, true
	case Starships:
		index, ok := sparseIndex[id.Number]
		if !ok {
			return -1, false
		}
		return index, true
	default:
		return -1, false
	}
}

// Rarity returns the deterministic rarity tag for id.
func (id CardID) Rarity() Rarity {
	return RarityOf(id.Category, id.Number)
}
