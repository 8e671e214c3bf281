package game

import "fmt"

// RuleSet is the part of the rules that differs between the power/momentum
// and classic variants. Both run on the same state machine.
type RuleSet interface {
	Kind() RuleSetKind
	// CheckCombo validates a main/support pairing. support may be nil.
	CheckCombo(main, support *Card) error
	// Score returns points for (player, opponent).
	Score(player, opponent Play) (int, int)
	// Defer reports whether a turn's reveal waits for a later turn.
	Defer(turn, turnsPerRound int) bool
	// RefreshEnergy runs the energy step of a turn and returns the gain.
	RefreshEnergy(p *PlayerState, cfg Config, turn int) int
	// StartRound adjusts a player's energy at a round boundary.
	StartRound(p *PlayerState, cfg Config)
	// Decided reports whether the match ends before all rounds are played.
	Decided(players [2]*PlayerState, cfg Config) bool
	// Winner picks the match winner once play has stopped.
	Winner(players [2]*PlayerState, cfg Config, rng *SeededRandom) (Outcome, string)
}

// NewRuleSet returns the rules for kind.
func NewRuleSet(kind RuleSetKind) RuleSet {
	if kind == RuleSetClassic {
		return Classic{}
	}
	return PowerMomentum{}
}

func checkShape(main, support *Card) error {
	if main == nil {
		return ErrNeedsMain
	}
	if !main.Type.IsMain() {
		return fmt.Errorf("%w: %s cannot anchor a play", ErrInvalidCombo, main.Type)
	}
	if support != nil && support.Type != CardTypeSupport {
		return fmt.Errorf("%w: %s is not a support card", ErrInvalidCombo, support.Name)
	}
	return nil
}

// PowerMomentum is the canonical draw-based rule set.
type PowerMomentum struct{}

func (PowerMomentum) Kind() RuleSetKind { return RuleSetPowerMomentum }

func (PowerMomentum) CheckCombo(main, support *Card) error {
	return checkShape(main, support)
}

func (PowerMomentum) Score(player, opponent Play) (int, int) {
	return ScorePlays(player, opponent)
}

// Defer holds back even-numbered turns that are not the last of the round,
// so with three turns: turn 1 reveals, turn 2 waits, turn 3 reveals both.
func (PowerMomentum) Defer(turn, turnsPerRound int) bool {
	return turn%2 == 0 && turn < turnsPerRound
}

func (PowerMomentum) RefreshEnergy(p *PlayerState, _ Config, _ int) int {
	return p.Refill()
}

func (PowerMomentum) StartRound(p *PlayerState, cfg Config) {
	p.MaxEnergy += cfg.EnergyPerTurn
}

func (PowerMomentum) Decided([2]*PlayerState, Config) bool {
	return false
}

// Winner compares total score, then rounds won, then remaining energy, and
// finally flips a coin on the match generator.
func (PowerMomentum) Winner(players [2]*PlayerState, _ Config, rng *SeededRandom) (Outcome, string) {
	p, o := players[PlayerHuman], players[PlayerOpponent]
	switch {
	case p.TotalScore != o.TotalScore:
		return better(p.TotalScore, o.TotalScore), fmt.Sprintf("total score %d - %d", p.TotalScore, o.TotalScore)
	case p.RoundsWon != o.RoundsWon:
		return better(p.RoundsWon, o.RoundsWon), fmt.Sprintf("rounds won %d - %d", p.RoundsWon, o.RoundsWon)
	case p.Energy != o.Energy:
		return better(p.Energy, o.Energy), fmt.Sprintf("remaining energy %d - %d", p.Energy, o.Energy)
	}
	if rng.NextInt(0, 1) == 0 {
		return OutcomePlayer, "coin flip"
	}
	return OutcomeOpponent, "coin flip"
}

// Classic is the energy/offense-defense rule set.
type Classic struct{}

func (Classic) Kind() RuleSetKind { return RuleSetClassic }

func (Classic) CheckCombo(main, support *Card) error {
	if err := checkShape(main, support); err != nil {
		return err
	}
	if main.Type == CardTypeDefense && support != nil {
		return fmt.Errorf("%w: defense cannot be combined", ErrInvalidCombo)
	}
	return nil
}

func (Classic) Score(player, opponent Play) (int, int) {
	return ScoreClassic(player, opponent)
}

func (Classic) Defer(int, int) bool {
	return false
}

// RefreshEnergy regenerates energy on every turn but the first of a round.
func (Classic) RefreshEnergy(p *PlayerState, cfg Config, turn int) int {
	if turn <= 1 {
		return 0
	}
	gained := p.Regen(cfg.EnergyPerTurn, cfg.PassBonus)
	p.PassedLastTurn = false
	return gained
}

func (Classic) StartRound(p *PlayerState, cfg Config) {
	p.Energy = cfg.StartingEnergy
	p.PassedLastTurn = false
}

func (Classic) Decided(players [2]*PlayerState, cfg Config) bool {
	return cfg.RoundsToWin > 0 &&
		(players[PlayerHuman].RoundsWon >= cfg.RoundsToWin || players[PlayerOpponent].RoundsWon >= cfg.RoundsToWin)
}

// Winner compares rounds won, then total score, hand strength, remaining
// energy, and finally the parity of the remaining decks.
func (Classic) Winner(players [2]*PlayerState, cfg Config, _ *SeededRandom) (Outcome, string) {
	p, o := players[PlayerHuman], players[PlayerOpponent]
	if cfg.RoundsToWin > 0 && (p.RoundsWon >= cfg.RoundsToWin || o.RoundsWon >= cfg.RoundsToWin) {
		return better(p.RoundsWon, o.RoundsWon), fmt.Sprintf("first to %d rounds", cfg.RoundsToWin)
	}
	hp, ho := HandStrength(p.Hand), HandStrength(o.Hand)
	switch {
	case p.RoundsWon != o.RoundsWon:
		return better(p.RoundsWon, o.RoundsWon), fmt.Sprintf("rounds won %d - %d", p.RoundsWon, o.RoundsWon)
	case p.TotalScore != o.TotalScore:
		return better(p.TotalScore, o.TotalScore), fmt.Sprintf("total score %d - %d", p.TotalScore, o.TotalScore)
	case hp != ho:
		return better(hp, ho), fmt.Sprintf("hand strength %d - %d", hp, ho)
	case p.Energy != o.Energy:
		return better(p.Energy, o.Energy), fmt.Sprintf("remaining energy %d - %d", p.Energy, o.Energy)
	}
	if (len(p.Deck)+len(o.Deck))%2 == 0 {
		return OutcomePlayer, "coin flip"
	}
	return OutcomeOpponent, "coin flip"
}

func better(player, opponent int) Outcome {
	if player > opponent {
		return OutcomePlayer
	}
	return OutcomeOpponent
}
