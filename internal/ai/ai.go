// Package ai implements the opponent decision policies.
package ai

import (
	"fmt"
	"strings"

	"github.com/peterkuimelis/momentrivals/internal/game"
)

// Difficulty selects an opponent policy.
type Difficulty int

const (
	DifficultyBaseline Difficulty = iota
	DifficultyEasy
	DifficultyMedium
	DifficultyHard
)

func (d Difficulty) String() string {
	switch d {
	case DifficultyBaseline:
		return "baseline"
	case DifficultyEasy:
		return "easy"
	case DifficultyMedium:
		return "medium"
	case DifficultyHard:
		return "hard"
	default:
		return fmt.Sprintf("Difficulty(%d)", int(d))
	}
}

func (d Difficulty) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Difficulty) UnmarshalText(b []byte) error {
	parsed, err := ParseDifficulty(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ParseDifficulty accepts the difficulty names case-insensitively. An empty
// string selects the baseline policy.
func ParseDifficulty(s string) (Difficulty, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "baseline", "default":
		return DifficultyBaseline, nil
	case "easy":
		return DifficultyEasy, nil
	case "medium":
		return DifficultyMedium, nil
	case "hard":
		return DifficultyHard, nil
	}
	return DifficultyBaseline, fmt.Errorf("unknown difficulty %q", s)
}

// PolicySeed is the seed for the policy sitting in seat of a match seeded
// with matchSeed. It never equals the match seed, so the policy's rolls do
// not repeat the deck shuffle.
func PolicySeed(matchSeed int64, seat int) int64 {
	return game.MixSeed(matchSeed, 1+seat)
}

// NewPolicy creates the opponent policy for the given difficulty. Each
// policy owns its generator, so identical seeds and match trajectories
// give identical decisions.
func NewPolicy(d Difficulty, seed int64) (game.Policy, error) {
	switch d {
	case DifficultyBaseline:
		return NewBaseline(seed), nil
	case DifficultyEasy:
		return NewEasy(seed), nil
	case DifficultyMedium:
		return NewMedium(seed), nil
	case DifficultyHard:
		return NewHard(seed), nil
	default:
		return nil, fmt.Errorf("unknown difficulty: %d", d)
	}
}
