package catalog

// Rarity classifies a card as special or regular.
type Rarity string

const (
	RaritySpecial Rarity = "special"
	RarityRegular Rarity = "regular"
)

const (
	specialCharacterMaxID = 20
	specialStarshipMaxID  = 10
)

// RarityOf derives the rarity from the id range. Every movie is special.
func RarityOf(c Category, number int) Rarity {
	switch c {
	case Movies:
		return RaritySpecial
	case Characters:
		if number <= specialCharacterMaxID {
			return RaritySpecial
		}
	case Starships:
		if number <= specialStarshipMaxID {
			return RaritySpecial
		}
	}
	return RarityRegular
}

// DisplayName returns a human label for r.
func (r Rarity) DisplayName() string {
	if r == RaritySpecial {
		return "Special"
	}
	return "Regular"
}
