package game

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// RuleSetKind selects the scoring and energy rules of a match.
type RuleSetKind int

const (
	RuleSetPowerMomentum RuleSetKind = iota
	RuleSetClassic
)

func (k RuleSetKind) String() string {
	if k == RuleSetClassic {
		return "classic"
	}
	return "power_momentum"
}

func (k RuleSetKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *RuleSetKind) UnmarshalText(b []byte) error {
	parsed, err := ParseRuleSet(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseRuleSet accepts "classic" or "power_momentum" (also "powermomentum", "power").
func ParseRuleSet(s string) (RuleSetKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "power_momentum", "powermomentum", "power", "momentum":
		return RuleSetPowerMomentum, nil
	case "classic", "legacy":
		return RuleSetClassic, nil
	}
	return RuleSetPowerMomentum, fmt.Errorf("unknown rule set %q", s)
}

// Config is the full set of match tunables. It is passed by value into
// NewMatch; nothing in the engine reads configuration from anywhere else.
type Config struct {
	Rounds           int           `yaml:"rounds" json:"rounds"`
	TurnsPerRound    int           `yaml:"turns_per_round" json:"turnsPerRound"`
	StartingEnergy   int           `yaml:"starting_energy" json:"startingEnergy"`
	EnergyPerTurn    int           `yaml:"energy_per_turn" json:"energyPerTurn"`
	MaxDeckSize      int           `yaml:"max_deck_size" json:"maxDeckSize"`
	MaxHandSize      int           `yaml:"max_hand_size" json:"maxHandSize"`
	StartingHandSize int           `yaml:"starting_hand_size" json:"startingHandSize"`
	CycleCost        int           `yaml:"cycle_cost" json:"cycleCost"`
	PassBonus        int           `yaml:"pass_bonus" json:"passBonus"`
	RoundsToWin      int           `yaml:"rounds_to_win" json:"roundsToWin"`
	TurnTimeout      time.Duration `yaml:"turn_timeout" json:"turnTimeout"`
	RuleSet          RuleSetKind   `yaml:"ruleset" json:"ruleSet"`
	Seed             int64         `yaml:"seed" json:"seed"`
	NoShuffle        bool          `yaml:"no_shuffle" json:"noShuffle,omitempty"`
}

// DefaultConfig returns the canonical power/momentum settings.
func DefaultConfig() Config {
	return Config{
		Rounds:           4,
		TurnsPerRound:    3,
		StartingEnergy:   3,
		EnergyPerTurn:    1,
		MaxDeckSize:      25,
		MaxHandSize:      7,
		StartingHandSize: 7,
		CycleCost:        1,
		PassBonus:        1,
		RoundsToWin:      3,
		TurnTimeout:      60 * time.Second,
		RuleSet:          RuleSetPowerMomentum,
	}
}

// ClassicConfig returns the settings of the classic rule set.
func ClassicConfig() Config {
	cfg := DefaultConfig()
	cfg.RuleSet = RuleSetClassic
	return cfg
}

// Validate rejects configurations the state machine cannot run.
func (c Config) Validate() error {
	var errs []error
	if c.Rounds < 1 {
		errs = append(errs, fmt.Errorf("rounds must be >= 1 (got %d)", c.Rounds))
	}
	if c.TurnsPerRound < 1 {
		errs = append(errs, fmt.Errorf("turns per round must be >= 1 (got %d)", c.TurnsPerRound))
	}
	if c.MaxHandSize < 1 {
		errs = append(errs, fmt.Errorf("max hand size must be >= 1 (got %d)", c.MaxHandSize))
	}
	if c.StartingHandSize < 0 {
		errs = append(errs, fmt.Errorf("starting hand size must be >= 0 (got %d)", c.StartingHandSize))
	}
	if c.StartingEnergy < 0 || c.EnergyPerTurn < 0 || c.CycleCost < 0 || c.PassBonus < 0 {
		errs = append(errs, errors.New("energy settings must not be negative"))
	}
	if c.MaxDeckSize < 1 {
		errs = append(errs, fmt.Errorf("max deck size must be >= 1 (got %d)", c.MaxDeckSize))
	}
	return errors.Join(errs...)
}
