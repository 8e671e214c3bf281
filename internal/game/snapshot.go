package game

import "time"

// Snapshot is a deep copy of a match handed to the presentation layer.
// Mutating it has no effect on the match. Cards are shared by pointer
// since they are immutable.
type Snapshot struct {
	ID             string
	Config         Config
	Seed           int64
	RuleSet        RuleSetKind
	State          State
	WaitingForDraw bool
	Round          int
	Turn           int
	Players        [2]*PlayerState
	Rounds         []*Round
	Winner         Outcome
	Reason         string
	ActionSeq      int
	StartedAt      time.Time
	EndedAt        time.Time
}

// Snapshot returns a read-only copy of the match.
func (m *Match) Snapshot() *Snapshot {
	s := &Snapshot{
		ID:             m.ID,
		Config:         m.Config,
		Seed:           m.Seed,
		RuleSet:        m.Rules.Kind(),
		State:          m.State,
		WaitingForDraw: m.WaitingForDraw,
		Round:          m.Round,
		Turn:           m.Turn,
		Winner:         m.Winner,
		Reason:         m.Reason,
		ActionSeq:      m.ActionSeq,
		StartedAt:      m.StartedAt,
		EndedAt:        m.EndedAt,
		Rounds:         make([]*Round, len(m.Rounds)),
	}
	for i, p := range m.Players {
		s.Players[i] = p.clone()
	}
	for i, r := range m.Rounds {
		s.Rounds[i] = r.clone()
	}
	return s
}

// Over reports whether the match had ended when the snapshot was taken.
func (s *Snapshot) Over() bool {
	return s.State == StateMatchEnd
}

// Player returns the human side.
func (s *Snapshot) Player() *PlayerState {
	return s.Players[PlayerHuman]
}

// Opponent returns the AI side.
func (s *Snapshot) Opponent() *PlayerState {
	return s.Players[PlayerOpponent]
}

// AwaitingAction reports whether the human may select, play, pass or cycle.
func (s *Snapshot) AwaitingAction() bool {
	return s.State == StateAction && s.Player().Locked == nil
}

// TotalTurns counts turns with both plays recorded.
func (s *Snapshot) TotalTurns() int {
	n := 0
	for _, r := range s.Rounds {
		for _, t := range r.Turns {
			if t.Revealed() {
				n++
			}
		}
	}
	return n
}
