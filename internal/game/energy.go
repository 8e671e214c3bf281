package game

// CanAfford reports whether the player can pay cost.
func (p *PlayerState) CanAfford(cost int) bool {
	return cost <= p.Energy
}

// Spend debits energy, never going below zero.
func (p *PlayerState) Spend(cost int) {
	p.Energy -= cost
	if p.Energy < 0 {
		p.Energy = 0
	}
}

// Refill restores energy to the current maximum.
func (p *PlayerState) Refill() int {
	gained := p.MaxEnergy - p.Energy
	p.Energy = p.MaxEnergy
	return gained
}

// Regen adds the per-turn increment plus the pass bonus when the player
// passed last turn. Energy is uncapped.
func (p *PlayerState) Regen(perTurn, passBonus int) int {
	gained := perTurn
	if p.PassedLastTurn {
		gained += passBonus
	}
	p.Energy += gained
	return gained
}
