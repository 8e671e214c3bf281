package ai

import (
	"math"
	"sort"

	"github.com/peterkuimelis/momentrivals/internal/game"
)

// tier is the state shared by the difficulty tiers.
type tier struct {
	rng    *game.SeededRandom
	memory Memory
}

func newTier(seed int64) tier {
	return tier{rng: game.NewSeededRandom(seed)}
}

// Memory exposes what the policy has learned about the rival.
func (t *tier) Memory() Memory {
	return t.memory
}

// --- Easy ---

// Easy passes one time in five, otherwise plays a random offense option,
// falling back to any random option.
type Easy struct{ tier }

func NewEasy(seed int64) *Easy {
	return &Easy{newTier(seed)}
}

func (e *Easy) ChoosePlay(view game.DecisionView) game.Play {
	e.memory.Observe(view)
	plays := view.Affordable()
	if len(plays) == 0 {
		return game.Pass()
	}

	if e.rng.Next() < 0.2 {
		return game.Pass()
	}
	if offense := withType(plays, game.CardTypeOffense); len(offense) > 0 {
		return offense[e.rng.Choice(len(offense))]
	}
	options := append(plays, game.Pass())
	return options[e.rng.Choice(len(options))]
}

// --- Medium ---

// Medium saves energy early, answers aggression with its best defense and
// otherwise samples from its three best-scored plays.
type Medium struct{ tier }

func NewMedium(seed int64) *Medium {
	return &Medium{newTier(seed)}
}

func (md *Medium) ChoosePlay(view game.DecisionView) game.Play {
	md.memory.Observe(view)
	plays := view.Affordable()
	if len(plays) == 0 {
		return game.Pass()
	}

	if view.Energy <= 2 && view.Turn <= 2 && md.rng.Next() < 0.3 {
		return game.Pass()
	}

	if md.memory.LastWasOffense() {
		if defense := withType(plays, game.CardTypeDefense); len(defense) > 0 && md.rng.Next() < 0.6 {
			best := defense[0]
			for _, p := range defense[1:] {
				if DefenseValue(p) > DefenseValue(best) {
					best = p
				}
			}
			return best
		}
	}

	ranked := rank(plays, func(p game.Play) float64 { return md.score(p) })
	top := ranked[:min(3, len(ranked))]
	weights := make([]float64, len(top))
	var total float64
	for i := range top {
		weights[i] = math.Pow(2, float64(len(top)-i))
		total += weights[i]
	}
	r := md.rng.Next() * total
	for i, p := range top {
		r -= weights[i]
		if r <= 0 {
			return p
		}
	}
	return top[0]
}

func (md *Medium) score(p game.Play) float64 {
	return jitteredScore(p, md.rng)
}

// --- Hard ---

// Hard plans around the round: it goes all in on a starved last turn,
// banks energy earlier, counters the rival's last offense and otherwise
// takes the best play by an expected-value score, with a small chance of
// taking the runner-up.
type Hard struct{ tier }

func NewHard(seed int64) *Hard {
	return &Hard{newTier(seed)}
}

func (h *Hard) ChoosePlay(view game.DecisionView) game.Play {
	h.memory.Observe(view)
	plays := view.Affordable()
	if len(plays) == 0 {
		return game.Pass()
	}

	remaining := view.TurnsRemaining()
	if remaining == 1 && view.Energy < 4 {
		allIn := append([]game.Play(nil), plays...)
		sort.SliceStable(allIn, func(i, j int) bool { return allIn[i].Cost() > allIn[j].Cost() })
		return allIn[0]
	} else if remaining > 1 && view.Energy < 3 && h.rng.Next() < 0.7 {
		return game.Pass()
	}

	if h.memory.LastPlay != nil {
		if counter, ok := findCounter(plays, *h.memory.LastPlay); ok && h.rng.Next() < 0.8 {
			return counter
		}
	}

	ranked := rank(plays, func(p game.Play) float64 { return h.score(p, view) })
	if len(ranked) > 1 && h.rng.Next() < 0.2 {
		return ranked[1]
	}
	return ranked[0]
}

func (h *Hard) score(p game.Play, view game.DecisionView) float64 {
	score := jitteredScore(p, h.rng)
	lead := view.TotalScore - view.RivalTotalScore
	if lead < 0 {
		score += float64(OffenseValue(p)) * 0.5
	} else if lead > 5 {
		score += DefenseValue(p) * 0.5
	}
	if len(view.Hand) <= 3 {
		score *= 1.2
	}
	return score
}

// findCounter returns the first play holding a defense card at least as
// strong as the offense the rival last led with.
func findCounter(plays []game.Play, last game.Play) (game.Play, bool) {
	if last.IsPass() || last.Main.Type != game.CardTypeOffense {
		return game.Play{}, false
	}
	for _, p := range plays {
		for _, c := range p.Cards() {
			if c.Type == game.CardTypeDefense && c.Defense >= last.Main.Offense {
				return p, true
			}
		}
	}
	return game.Play{}, false
}

// --- Evaluation ---

// OffenseValue sums the Offense of the offense cards in a play.
func OffenseValue(p game.Play) int {
	total := 0
	for _, c := range p.Cards() {
		if c.Type == game.CardTypeOffense {
			total += c.Offense
		}
	}
	return total
}

// DefenseValue counts defense cards at full Defense and offense cards at 30%.
func DefenseValue(p game.Play) float64 {
	var total float64
	for _, c := range p.Cards() {
		switch c.Type {
		case game.CardTypeDefense:
			total += float64(c.Defense)
		case game.CardTypeOffense:
			total += float64(c.Defense) * 0.3
		}
	}
	return total
}

// Efficiency is offense per point of energy spent.
func Efficiency(p game.Play) float64 {
	cost := p.Cost()
	if cost == 0 {
		return 0
	}
	return float64(OffenseValue(p)) / float64(cost)
}

// jitteredScore is 2x offense + 1.5x defense + 10x efficiency, scaled by a
// random factor in [0.9, 1.1).
func jitteredScore(p game.Play, rng *game.SeededRandom) float64 {
	if p.IsPass() {
		return 0
	}
	score := float64(OffenseValue(p))*2 + DefenseValue(p)*1.5 + Efficiency(p)*10
	return score * (0.9 + rng.Next()*0.2)
}

// rank scores every play once, in order, and sorts them best first.
func rank(plays []game.Play, score func(game.Play) float64) []game.Play {
	type scored struct {
		play  game.Play
		score float64
	}
	list := make([]scored, len(plays))
	for i, p := range plays {
		list[i] = scored{p, score(p)}
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].score > list[j].score })
	out := make([]game.Play, len(list))
	for i, s := range list {
		out[i] = s.play
	}
	return out
}

func withType(plays []game.Play, t game.CardType) []game.Play {
	var out []game.Play
	for _, p := range plays {
		for _, c := range p.Cards() {
			if c.Type == t {
				out = append(out, p)
				break
			}
		}
	}
	return out
}
