package game

import (
	"context"
	"fmt"
	"testing"

	"github.com/peterkuimelis/momentrivals/internal/log"
)

// ScriptedPolicy is a Policy that follows a predefined list of plays,
// looked up by card ID in the opponent's hand. Used in tests to
// deterministically drive the opponent. Once the script runs out it passes.
type ScriptedPolicy struct {
	t     *testing.T
	plays []ScriptedPlay
	pos   int
	views []DecisionView
}

type ScriptedPlay struct {
	Main    string // empty means pass
	Support string
}

func NewScriptedPolicy(t *testing.T) *ScriptedPolicy {
	return &ScriptedPolicy{t: t}
}

func (sp *ScriptedPolicy) AddPlay(main, support string) *ScriptedPolicy {
	sp.plays = append(sp.plays, ScriptedPlay{Main: main, Support: support})
	return sp
}

func (sp *ScriptedPolicy) AddPass() *ScriptedPolicy {
	sp.plays = append(sp.plays, ScriptedPlay{})
	return sp
}

func (sp *ScriptedPolicy) ChoosePlay(view DecisionView) Play {
	sp.views = append(sp.views, view)
	if sp.pos >= len(sp.plays) {
		return Pass()
	}
	scripted := sp.plays[sp.pos]
	sp.pos++
	if scripted.Main == "" {
		return Pass()
	}
	main := findCard(view.Hand, scripted.Main)
	if main == nil {
		sp.t.Errorf("scripted opponent play: %s not in hand", scripted.Main)
		return Pass()
	}
	var support *Card
	if scripted.Support != "" {
		support = findCard(view.Hand, scripted.Support)
	}
	return CardPlay(main, support)
}

func findCard(cards []*Card, id string) *Card {
	for _, c := range cards {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// greedyPolicy plays the strongest affordable main card, never a support.
var greedyPolicy = PolicyFunc(func(view DecisionView) Play {
	var best *Card
	for _, c := range view.Hand {
		if c.Type.IsMain() && c.Cost <= view.Energy && (best == nil || c.Power > best.Power) {
			best = c
		}
	}
	if best == nil {
		return Pass()
	}
	return CardPlay(best, nil)
})

// --- Test card helpers ---

func offenseCard(id string, power, cost int) *Card {
	return &Card{ID: id, Name: id, Type: CardTypeOffense, Power: power, Cost: cost, Offense: power, Defense: 1, Agility: 1, Speed: 1}
}

func defenseCard(id string, power, cost int) *Card {
	return &Card{ID: id, Name: id, Type: CardTypeDefense, Power: power, Cost: cost, Offense: 1, Defense: power, Agility: 1, Speed: 1}
}

func supportCard(id string, power, cost int) *Card {
	return &Card{ID: id, Name: id, Type: CardTypeSupport, Power: power, Cost: cost, Offense: 1, Defense: 1, Agility: power, Speed: 1}
}

// makePaddedDeck creates a deck with the given cards on top (index 0 drawn
// first) and cheap filler offense cards below to reach minSize.
func makePaddedDeck(prefix string, topCards []*Card, minSize int) []*Card {
	deck := make([]*Card, 0, minSize)
	deck = append(deck, topCards...)
	for i := 0; len(deck) < minSize; i++ {
		deck = append(deck, offenseCard(fmt.Sprintf("%s_filler_%d", prefix, i), 1, 1))
	}
	return deck
}

// testConfig is the default configuration with shuffling disabled.
func testConfig() Config {
	cfg := DefaultConfig()
	cfg.NoShuffle = true
	cfg.Seed = 42
	return cfg
}

// newTestMatch builds a match and fails the test on error.
func newTestMatch(t *testing.T, cfg Config, playerDeck, opponentDeck []*Card, policy Policy) (*Match, *log.MemoryLogger) {
	t.Helper()
	logger := log.NewMemoryLogger()
	m, err := NewMatch(MatchConfig{
		Config:       cfg,
		PlayerDeck:   playerDeck,
		OpponentDeck: opponentDeck,
		Policy:       policy,
		Logger:       logger,
		ID:           "test-match",
	})
	if err != nil {
		t.Fatalf("NewMatch: %v", err)
	}
	return m, logger
}

// mustOK fails the test when a driver call is rejected.
func mustOK(t *testing.T, logger *log.MemoryLogger, _ *Snapshot, err error) {
	t.Helper()
	if err != nil {
		t.Logf("Event log:\n%s", log.FormatAll(logger.Events()))
		t.Fatalf("unexpected rejection: %v", err)
	}
}

// playGreedyHuman drives the human side with the greedy policy until the
// match ends, releasing draw gates as they come.
func playGreedyHuman(t *testing.T, m *Match) {
	t.Helper()
	if err := m.PlayOut(context.Background(), greedyPolicy); err != nil {
		t.Fatalf("PlayOut: %v (state %s, round %d, turn %d)", err, m.State, m.Round, m.Turn)
	}
}
