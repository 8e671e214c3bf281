package ai

import "github.com/peterkuimelis/momentrivals/internal/game"

// DefaultSupportChance is how often Baseline attaches a support card when
// it can afford one.
const DefaultSupportChance = 0.3

// Baseline plays the strongest affordable main card and sometimes boosts it
// with the cheapest affordable support.
type Baseline struct {
	rng           *game.SeededRandom
	SupportChance float64
}

func NewBaseline(seed int64) *Baseline {
	return &Baseline{rng: game.NewSeededRandom(seed), SupportChance: DefaultSupportChance}
}

func (b *Baseline) ChoosePlay(view game.DecisionView) game.Play {
	var main *game.Card
	for _, c := range view.Hand {
		if c.Type.IsMain() && c.Cost <= view.Energy && (main == nil || c.Power > main.Power) {
			main = c
		}
	}
	if main == nil {
		return game.Pass()
	}

	support := cheapestSupport(view, main, view.Energy-main.Cost)
	if support != nil && b.rng.Chance(b.SupportChance) {
		return game.CardPlay(main, support)
	}
	return game.CardPlay(main, nil)
}

// cheapestSupport returns the lowest-cost support that fits budget and may
// legally join main. The first card wins ties.
func cheapestSupport(view game.DecisionView, main *game.Card, budget int) *game.Card {
	var best *game.Card
	for _, c := range view.Hand {
		if c.Type != game.CardTypeSupport || c.Cost > budget {
			continue
		}
		if view.RuleSet != nil && view.RuleSet.CheckCombo(main, c) != nil {
			continue
		}
		if best == nil || c.Cost < best.Cost {
			best = c
		}
	}
	return best
}
