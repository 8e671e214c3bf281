package game

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DeckFile represents the top-level YAML structure: a catalogue of moment
// records and named decks referencing them by moment ID.
type DeckFile struct {
	Moments []Moment    `yaml:"moments"`
	Decks   []DeckEntry `yaml:"decks"`
}

// DeckEntry represents a single deck in the YAML file.
type DeckEntry struct {
	Name    string   `yaml:"name"`
	Moments []string `yaml:"moments"`
}

// ValidationResult reports whether data passed validation and, if not, why.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// LoadDeckFile reads and parses a YAML deck file.
func LoadDeckFile(path string) (*DeckFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseDeckYAML(data)
}

// ParseDeckYAML parses deck file contents.
func ParseDeckYAML(data []byte) (*DeckFile, error) {
	var df DeckFile
	if err := yaml.Unmarshal(data, &df); err != nil {
		return nil, fmt.Errorf("parse deck YAML: %w", err)
	}
	return &df, nil
}

// Catalogue indexes the moment records by ID.
func (df *DeckFile) Catalogue() map[string]Moment {
	idx := make(map[string]Moment, len(df.Moments))
	for _, m := range df.Moments {
		idx[m.MomentID] = m
	}
	return idx
}

// Cards converts a deck entry into cards, in listed order.
func (df *DeckFile) Cards(entry DeckEntry) ([]*Card, error) {
	idx := df.Catalogue()
	cards := make([]*Card, 0, len(entry.Moments))
	for _, id := range entry.Moments {
		m, ok := idx[id]
		if !ok {
			return nil, fmt.Errorf("deck %q: unknown moment %s", entry.Name, id)
		}
		cards = append(cards, MomentToCard(m))
	}
	return cards, nil
}

// DeckByNumber returns the Nth deck (1-indexed) from the deck file.
func DeckByNumber(path string, n int) (string, []*Card, error) {
	df, err := LoadDeckFile(path)
	if err != nil {
		return "", nil, err
	}
	if n < 1 || n > len(df.Decks) {
		return "", nil, fmt.Errorf("deck %d not found (have %d decks)", n, len(df.Decks))
	}
	entry := df.Decks[n-1]
	cards, err := df.Cards(entry)
	if err != nil {
		return "", nil, err
	}
	return entry.Name, cards, nil
}

// LoadDeck loads deck n from path and rejects it unless it is a legal deck
// of exactly size cards.
func LoadDeck(path string, n, size int) (string, []*Card, error) {
	name, cards, err := DeckByNumber(path, n)
	if err != nil {
		return "", nil, err
	}
	if res := ValidateDeck(cards, size); !res.Valid {
		return name, nil, fmt.Errorf("deck %q: %s", name, strings.Join(res.Errors, "; "))
	}
	return name, cards, nil
}

// BuildDeck returns a shuffled copy of cards capped at maxSize.
func BuildDeck(cards []*Card, maxSize int, rng *SeededRandom) []*Card {
	deck := append([]*Card(nil), cards...)
	if rng != nil {
		ShuffleCards(rng, deck)
	}
	if maxSize > 0 && len(deck) > maxSize {
		deck = deck[:maxSize]
	}
	return deck
}

// ValidateDeck checks a submitted deck: exactly size cards, at least two
// offense and two defense cards, and no moment used twice.
func ValidateDeck(cards []*Card, size int) ValidationResult {
	errs := []string{}
	if len(cards) != size {
		errs = append(errs, fmt.Sprintf("Deck must contain exactly %d cards (currently %d)", size, len(cards)))
	}

	var offense, defense int
	seen := make(map[string]bool)
	for _, c := range cards {
		switch c.Type {
		case CardTypeOffense:
			offense++
		case CardTypeDefense:
			defense++
		}
		key := c.MomentID
		if key == "" {
			key = c.ID
		}
		if seen[key] {
			errs = append(errs, fmt.Sprintf("Duplicate moment: %s", c.Name))
		}
		seen[key] = true
	}
	if offense < 2 {
		errs = append(errs, "Deck must contain at least 2 OFFENSE cards")
	}
	if defense < 2 {
		errs = append(errs, "Deck must contain at least 2 DEFENSE cards")
	}

	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}
