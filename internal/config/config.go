// Package config loads match and server settings. Values start from
// Default, are overlaid by an optional YAML file and finally by
// environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"

	"github.com/peterkuimelis/momentrivals/internal/ai"
	"github.com/peterkuimelis/momentrivals/internal/game"
)

type Server struct {
	Addr    string `yaml:"addr" json:"addr"`
	BaseURL string `yaml:"base_url" json:"baseUrl"` // used in replay QR links
}

type Config struct {
	Game       game.Config   `yaml:"game" json:"game"`
	Difficulty ai.Difficulty `yaml:"difficulty" json:"difficulty"`
	DecksFile  string        `yaml:"decks_file" json:"decksFile"`
	DeckNumber int           `yaml:"deck" json:"deck"`
	Server     Server        `yaml:"server" json:"server"`
}

func Default() Config {
	return Config{
		Game:       game.DefaultConfig(),
		Difficulty: ai.DifficultyBaseline,
		DecksFile:  "decks.yaml",
		DeckNumber: 1,
		Server:     Server{Addr: ":8080"},
	}
}

// Load applies path (skipped when empty) and then the process environment
// on top of Default.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return cfg, err
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// LoadFile overlays the settings present in a YAML file. Keys missing from
// the file keep their current values.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	return c.Parse(data)
}

func (c *Config) Parse(data []byte) error {
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

// Validate checks the match settings and the deck selection.
func (c Config) Validate() error {
	var errs []error
	if err := c.Game.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.DeckNumber < 1 {
		errs = append(errs, fmt.Errorf("deck number must be >= 1 (got %d)", c.DeckNumber))
	}
	return errors.Join(errs...)
}

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

type intVar struct {
	keys []string
	dst  *int
}

// ApplyEnv overlays environment variables. Unset or empty variables are
// ignored; a variable that does not parse is an error naming the key.
func (c *Config) ApplyEnv(lookup LookupFunc) error {
	get := func(keys ...string) (string, string, bool) {
		for _, k := range keys {
			if v, ok := lookup(k); ok && strings.TrimSpace(v) != "" {
				return k, strings.TrimSpace(v), true
			}
		}
		return "", "", false
	}

	g := &c.Game
	ints := []intVar{
		{[]string{"ROUNDS"}, &g.Rounds},
		{[]string{"TURNS_PER_ROUND"}, &g.TurnsPerRound},
		{[]string{"START_ENERGY", "STARTING_ENERGY"}, &g.StartingEnergy},
		{[]string{"ENERGY_PER_TURN"}, &g.EnergyPerTurn},
		{[]string{"MAX_DECK_SIZE", "DECK_SIZE"}, &g.MaxDeckSize},
		{[]string{"MAX_HAND_SIZE"}, &g.MaxHandSize},
		{[]string{"STARTING_HAND_SIZE"}, &g.StartingHandSize},
		{[]string{"CYCLE_COST"}, &g.CycleCost},
		{[]string{"PASS_BONUS"}, &g.PassBonus},
		{[]string{"ROUNDS_TO_WIN"}, &g.RoundsToWin},
		{[]string{"DECK"}, &c.DeckNumber},
	}
	var errs []error
	for _, iv := range ints {
		key, val, ok := get(iv.keys...)
		if !ok {
			continue
		}
		n, err := cast.ToIntE(val)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
			continue
		}
		*iv.dst = n
	}

	if key, val, ok := get("TURN_TIMEOUT"); ok {
		d, err := parseTimeout(val)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
		} else {
			g.TurnTimeout = d
		}
	}
	if key, val, ok := get("SEED"); ok {
		seed, err := cast.ToInt64E(val)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
		} else {
			g.Seed = seed
		}
	}
	if key, val, ok := get("NO_SHUFFLE"); ok {
		b, err := cast.ToBoolE(val)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
		} else {
			g.NoShuffle = b
		}
	}
	if key, val, ok := get("RULESET", "RULE_SET"); ok {
		kind, err := game.ParseRuleSet(val)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
		} else {
			g.RuleSet = kind
		}
	}
	if key, val, ok := get("DIFFICULTY"); ok {
		d, err := ai.ParseDifficulty(val)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
		} else {
			c.Difficulty = d
		}
	}
	if _, val, ok := get("DECKS_FILE"); ok {
		c.DecksFile = val
	}
	if _, val, ok := get("ADDR"); ok {
		c.Server.Addr = val
	}
	if _, val, ok := get("BASE_URL"); ok {
		c.Server.BaseURL = val
	}
	return errors.Join(errs...)
}

// parseTimeout accepts a Go duration ("90s", "2m") or a bare number of
// seconds. Zero disables the turn timer.
func parseTimeout(s string) (time.Duration, error) {
	if n, err := cast.ToIntE(s); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("negative timeout %d", n)
		}
		return time.Duration(n) * time.Second, nil
	}
	d, err := cast.ToDurationE(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative timeout %s", d)
	}
	return d, nil
}
