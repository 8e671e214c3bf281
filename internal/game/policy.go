package game

// Policy chooses the opponent's play each turn.
type Policy interface {
	ChoosePlay(view DecisionView) Play
}

// PolicyFunc adapts a plain function to the Policy interface.
type PolicyFunc func(view DecisionView) Play

func (f PolicyFunc) ChoosePlay(view DecisionView) Play {
	return f(view)
}

// DecisionView is what the opponent may see when choosing a play. The
// rival's plays appear only once they have been revealed.
type DecisionView struct {
	RuleSet       RuleSet
	Round         int
	Turn          int
	Rounds        int
	TurnsPerRound int
	MaxHandSize   int

	Hand   []*Card
	Energy int

	TotalScore      int
	RivalTotalScore int
	RoundScore      int
	RivalRoundScore int
	RoundsWon       int
	RivalRoundsWon  int
	RivalHandCount  int

	// RivalHistory holds the rival's revealed plays, oldest first.
	RivalHistory []Play
}

// TurnsRemaining counts the current turn and those after it in the round.
func (v DecisionView) TurnsRemaining() int {
	return v.TurnsPerRound - v.Turn + 1
}

// Affordable returns every legal non-pass play from the hand within the
// energy budget: offense cards first (alone, then with each support), then
// defense cards the same way.
func (v DecisionView) Affordable() []Play {
	var plays []Play
	for _, mainType := range []CardType{CardTypeOffense, CardTypeDefense} {
		for _, main := range v.Hand {
			if main.Type != mainType || main.Cost > v.Energy {
				continue
			}
			plays = append(plays, CardPlay(main, nil))
			for _, sup := range v.Hand {
				if sup.Type != CardTypeSupport || main.Cost+sup.Cost > v.Energy {
					continue
				}
				if v.RuleSet != nil && v.RuleSet.CheckCombo(main, sup) != nil {
					continue
				}
				plays = append(plays, CardPlay(main, sup))
			}
		}
	}
	return plays
}
