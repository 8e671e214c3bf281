package game

import (
	"errors"
	"testing"
)

func TestPowerMomentumDefer(t *testing.T) {
	rules := PowerMomentum{}
	tests := []struct {
		turn, perRound int
		want           bool
	}{
		{1, 3, false},
		{2, 3, true},
		{3, 3, false},
		{2, 2, false},
		{2, 5, true},
		{3, 5, false},
		{4, 5, true},
		{5, 5, false},
	}
	for _, tt := range tests {
		if got := rules.Defer(tt.turn, tt.perRound); got != tt.want {
			t.Errorf("Defer(%d, %d) = %v, want %v", tt.turn, tt.perRound, got, tt.want)
		}
	}
	if (Classic{}).Defer(2, 3) {
		t.Error("classic rules never defer")
	}
}

func TestCheckCombo(t *testing.T) {
	off := offenseCard("off", 3, 1)
	def := defenseCard("def", 3, 1)
	sup := supportCard("sup", 2, 1)

	pm, classic := PowerMomentum{}, Classic{}
	if err := pm.CheckCombo(def, sup); err != nil {
		t.Errorf("power/momentum should allow defense + support: %v", err)
	}
	if err := classic.CheckCombo(def, sup); !errors.Is(err, ErrInvalidCombo) {
		t.Errorf("classic should reject defense + support, got %v", err)
	}
	if err := classic.CheckCombo(off, sup); err != nil {
		t.Errorf("classic should allow offense + support: %v", err)
	}
	if err := pm.CheckCombo(sup, nil); !errors.Is(err, ErrInvalidCombo) {
		t.Errorf("support cannot anchor a play, got %v", err)
	}
	if err := pm.CheckCombo(off, def); !errors.Is(err, ErrInvalidCombo) {
		t.Errorf("second main card is not a support, got %v", err)
	}
	if err := pm.CheckCombo(nil, sup); !errors.Is(err, ErrNeedsMain) {
		t.Errorf("expected ErrNeedsMain, got %v", err)
	}
}

func TestEnergyRules(t *testing.T) {
	cfg := DefaultConfig()

	p := &PlayerState{Energy: 1, MaxEnergy: 3}
	if gained := (PowerMomentum{}).RefreshEnergy(p, cfg, 2); gained != 2 || p.Energy != 3 {
		t.Errorf("refill: gained %d, energy %d", gained, p.Energy)
	}
	(PowerMomentum{}).StartRound(p, cfg)
	if p.MaxEnergy != 4 {
		t.Errorf("max energy should grow each round, got %d", p.MaxEnergy)
	}

	c := &PlayerState{Energy: 5, PassedLastTurn: true}
	if gained := (Classic{}).RefreshEnergy(c, cfg, 1); gained != 0 || c.Energy != 5 {
		t.Errorf("classic turn 1 should not regenerate, gained %d", gained)
	}
	if gained := (Classic{}).RefreshEnergy(c, cfg, 2); gained != 2 || c.Energy != 7 {
		t.Errorf("classic regen with pass bonus: gained %d, energy %d", gained, c.Energy)
	}
	if c.PassedLastTurn {
		t.Error("pass bonus flag should be consumed")
	}
	(Classic{}).StartRound(c, cfg)
	if c.Energy != cfg.StartingEnergy {
		t.Errorf("classic round start resets energy, got %d", c.Energy)
	}

	s := &PlayerState{Energy: 1}
	s.Spend(3)
	if s.Energy != 0 {
		t.Errorf("energy must not go negative, got %d", s.Energy)
	}
}

func TestPowerMomentumWinner(t *testing.T) {
	cfg := DefaultConfig()
	tests := []struct {
		name       string
		p, o       PlayerState
		want       Outcome
		wantReason string
	}{
		{"total score", PlayerState{TotalScore: 10}, PlayerState{TotalScore: 8, RoundsWon: 3}, OutcomePlayer, "total score 10 - 8"},
		{"rounds won", PlayerState{TotalScore: 8, RoundsWon: 1}, PlayerState{TotalScore: 8, RoundsWon: 2}, OutcomeOpponent, "rounds won 1 - 2"},
		{"energy", PlayerState{TotalScore: 8, Energy: 4}, PlayerState{TotalScore: 8, Energy: 2}, OutcomePlayer, "remaining energy 4 - 2"},
		// Seed 42 draws 0.8859..., which lands on 1.
		{"coin flip", PlayerState{}, PlayerState{}, OutcomeOpponent, "coin flip"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, o := tt.p, tt.o
			got, reason := PowerMomentum{}.Winner([2]*PlayerState{&p, &o}, cfg, NewSeededRandom(42))
			if got != tt.want || reason != tt.wantReason {
				t.Errorf("Winner = %s (%s), want %s (%s)", got, reason, tt.want, tt.wantReason)
			}
		})
	}
}

func TestClassicWinner(t *testing.T) {
	cfg := ClassicConfig()
	strong := []*Card{{Type: CardTypeOffense, Offense: 9}}
	weak := []*Card{{Type: CardTypeOffense, Offense: 2}}
	tests := []struct {
		name       string
		p, o       PlayerState
		want       Outcome
		wantReason string
	}{
		{"first to three", PlayerState{RoundsWon: 1, TotalScore: 30}, PlayerState{RoundsWon: 3}, OutcomeOpponent, "first to 3 rounds"},
		{"rounds won", PlayerState{RoundsWon: 2}, PlayerState{RoundsWon: 1, TotalScore: 30}, OutcomePlayer, "rounds won 2 - 1"},
		{"total score", PlayerState{TotalScore: 4}, PlayerState{TotalScore: 6}, OutcomeOpponent, "total score 4 - 6"},
		{"hand strength", PlayerState{Hand: strong}, PlayerState{Hand: weak}, OutcomePlayer, "hand strength 9 - 2"},
		{"energy", PlayerState{Energy: 1}, PlayerState{Energy: 3}, OutcomeOpponent, "remaining energy 1 - 3"},
		{"deck parity even", PlayerState{Deck: weak}, PlayerState{Deck: strong}, OutcomePlayer, "coin flip"},
		{"deck parity odd", PlayerState{Deck: weak}, PlayerState{}, OutcomeOpponent, "coin flip"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, o := tt.p, tt.o
			got, reason := Classic{}.Winner([2]*PlayerState{&p, &o}, cfg, nil)
			if got != tt.want || reason != tt.wantReason {
				t.Errorf("Winner = %s (%s), want %s (%s)", got, reason, tt.want, tt.wantReason)
			}
		})
	}
}
