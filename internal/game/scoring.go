package game

// ScorePlays scores a revealed pair under the power/momentum rules and
// returns (points for a, points for b). Swapping the arguments swaps the
// result.
func ScorePlays(a, b Play) (int, int) {
	switch {
	case a.IsPass() && b.IsPass():
		return 0, 0
	case b.IsPass():
		return a.BoostedPower(), 0
	case a.IsPass():
		return 0, b.BoostedPower()
	}

	pa, pb := a.BoostedPower(), b.BoostedPower()
	ta, tb := a.Main.Type, b.Main.Type
	switch {
	case ta == CardTypeOffense && tb == CardTypeDefense:
		return max(0, pa-pb), 0
	case ta == CardTypeDefense && tb == CardTypeOffense:
		return 0, max(0, pb-pa)
	case ta == CardTypeOffense && tb == CardTypeOffense:
		return pa, pb
	default:
		return 0, 0
	}
}

// ClassicOffense is the offensive value of a play under the classic rules:
// the offense card's Offense plus half the support's Agility.
func ClassicOffense(p Play) int {
	if p.IsPass() || p.Main.Type != CardTypeOffense {
		return 0
	}
	value := p.Main.Offense
	if p.Support != nil {
		value += p.Support.Agility / 2
	}
	return value
}

// ClassicDefense is the defensive value of a play under the classic rules:
// a defense card's Defense, or 30% of an offense card's Defense.
func ClassicDefense(p Play) int {
	if p.IsPass() {
		return 0
	}
	if p.Main.Type == CardTypeDefense {
		return p.Main.Defense
	}
	return p.Main.Defense * 3 / 10
}

// ScoreClassic scores a revealed pair under the classic rules. A pass
// concedes the other side's full offensive value.
func ScoreClassic(a, b Play) (int, int) {
	switch {
	case a.IsPass() && b.IsPass():
		return 0, 0
	case b.IsPass():
		return ClassicOffense(a), 0
	case a.IsPass():
		return 0, ClassicOffense(b)
	}
	return max(0, ClassicOffense(a)-ClassicDefense(b)), max(0, ClassicOffense(b)-ClassicDefense(a))
}

// HandStrength sums the three highest Offense values among offense cards in hand.
func HandStrength(hand []*Card) int {
	var top [3]int
	for _, c := range hand {
		if c.Type != CardTypeOffense {
			continue
		}
		v := c.Offense
		for i := range top {
			if v > top[i] {
				v, top[i] = top[i], v
			}
		}
	}
	return top[0] + top[1] + top[2]
}
