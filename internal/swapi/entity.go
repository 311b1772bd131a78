package swapi

import (
	"errors"
	"strings"

	"holocron/internal/catalog"
)

// Movie is the remote payload for one film.
type Movie struct {
	Title        string   `json:"title"`
	EpisodeID    int      `json:"episode_id"`
	OpeningCrawl string   `json:"opening_crawl"`
	Director     string   `json:"director"`
	Producer     string   `json:"producer"`
	ReleaseDate  string   `json:"release_date"`
	Characters   []string `json:"characters"`
	Planets      []string `json:"planets"`
	Starships    []string `json:"starships"`
	Vehicles     []string `json:"vehicles"`
	Species      []string `json:"species"`
	URL          string   `json:"url"`
}

// Character is the remote payload for one person.
type Character struct {
	Name      string   `json:"name"`
	Height    string   `json:"height"`
	Mass      string   `json:"mass"`
	HairColor string   `json:"hair_color"`
	SkinColor string   `json:"skin_color"`
	EyeColor  string   `json:"eye_color"`
	BirthYear string   `json:"birth_year"`
	Gender    string   `json:"gender"`
	Homeworld string   `json:"homeworld"`
	Films     []string `json:"films"`
	Species   []string `json:"species"`
	Vehicles  []string `json:"vehicles"`
	Starships []string `json:"starships"`
	URL       string   `json:"url"`
}

// Starship is the remote payload for one vessel.
type Starship struct {
	Name                 string   `json:"name"`
	Model                string   `json:"model"`
	Manufacturer         string   `json:"manufacturer"`
	CostInCredits        string   `json:"cost_in_credits"`
	Length               string   `json:"length"`
	MaxAtmospheringSpeed string   `json:"max_atmosphering_speed"`
	Crew                 string   `json:"crew"`
	Passengers           string   `json:"passengers"`
	CargoCapacity        string   `json:"cargo_capacity"`
	Consumables          string   `json:"consumables"`
	HyperdriveRating     string   `json:"hyperdrive_rating"`
	MGLT                 string   `json:"MGLT"`
	StarshipClass        string   `json:"starship_class"`
	Pilots               []string `json:"pilots"`
	Films                []string `json:"films"`
	URL                  string   `json:"url"`
}

// Entity is a fetched payload tagged with its category. Exactly one of the
// payload pointers is set, matching Category.
type Entity struct {
	Category  catalog.Category `json:"category"`
	Movie     *Movie           `json:"movie,omitempty"`
	Character *Character       `json:"character,omitempty"`
	Starship  *Starship        `json:"starship,omitempty"`
}

// Name returns the display name carried by the payload: the title for movies
// and the name for the other categories.
func (e Entity) Name() string {
	switch e.Category {
	case catalog.Movies:
		if e.Movie != nil {
			return e.Movie.Title
		}
	case catalog.Characters:
		if e.Character != nil {
			return e.Character.Name
		}
	case catalog.Starships:
		if e.Starship != nil {
			return e.Starship.Name
		}
	}
	return ""
}

// validate reports which required field is missing, if any.
func (e Entity) validate() error {
	switch e.Category {
	case catalog.Movies:
		if e.Movie == nil || strings.TrimSpace(e.Movie.Title) == "" {
			return errors.New("film payload missing title")
		}
	case catalog.Characters:
		if e.Character == nil || strings.TrimSpace(e.Character.Name) == "" {
			return errors.New("person payload missing name")
		}
	case catalog.Starships:
		if e.Starship == nil || strings.TrimSpace(e.Starship.Name) == "" {
			return errors.New("starship payload missing name")
		}
	default:
		return errors.New("unknown category")
	}
	return nil
}
