package ai

import "github.com/peterkuimelis/momentrivals/internal/game"

// Memory tracks what the rival has shown so far in a match: the last
// revealed play and two running tendencies.
type Memory struct {
	LastPlay *game.Play
	// Aggression runs from -1 (always defends) to 1 (always attacks).
	Aggression float64
	// PassFrequency runs from 0 to 1.
	PassFrequency float64

	seen int
}

// Observe folds in rival plays revealed since the last call. A history
// shorter than what was already seen means a new match, which resets the
// memory.
func (m *Memory) Observe(view game.DecisionView) {
	if len(view.RivalHistory) < m.seen {
		*m = Memory{}
	}
	for _, p := range view.RivalHistory[m.seen:] {
		play := p
		m.LastPlay = &play
		switch {
		case play.IsPass():
			m.PassFrequency += 0.1
		case play.Main.Type == game.CardTypeOffense:
			m.Aggression += 0.1
		case play.Main.Type == game.CardTypeDefense:
			m.Aggression -= 0.1
		}
		m.Aggression = max(-1, min(1, m.Aggression))
		m.PassFrequency = max(0, min(1, m.PassFrequency))
	}
	m.seen = len(view.RivalHistory)
}

// LastWasOffense reports whether the rival's last revealed play was led by
// an offense card.
func (m *Memory) LastWasOffense() bool {
	return m.LastPlay != nil && !m.LastPlay.IsPass() && m.LastPlay.Main.Type == game.CardTypeOffense
}
