package game

// PlayerState is one side of the table. Deck draws from the front; Hand is
// kept in draw order so index 0 is always the oldest card.
type PlayerState struct {
	Deck      []*Card
	Hand      []*Card
	Graveyard []*Card

	Energy    int
	MaxEnergy int

	Selected       Selection
	Locked         *Play
	Cycled         bool
	PassedLastTurn bool

	TotalScore int
	RoundScore int
	RoundsWon  int
}

// DeckCount returns the number of cards remaining in the deck.
func (p *PlayerState) DeckCount() int {
	return len(p.Deck)
}

// HandCount returns the number of cards in hand.
func (p *PlayerState) HandCount() int {
	return len(p.Hand)
}

// DrawCard moves the front card of the deck into the hand.
// Returns nil if the deck is empty.
func (p *PlayerState) DrawCard() *Card {
	if len(p.Deck) == 0 {
		return nil
	}
	card := p.Deck[0]
	p.Deck = p.Deck[1:]
	p.Hand = append(p.Hand, card)
	return card
}

// DiscardOldest sends the oldest hand card to the graveyard.
func (p *PlayerState) DiscardOldest() *Card {
	if len(p.Hand) == 0 {
		return nil
	}
	card := p.Hand[0]
	p.Hand = p.Hand[1:]
	p.Graveyard = append(p.Graveyard, card)
	return card
}

// FindInHand returns the hand card with the given id.
func (p *PlayerState) FindInHand(id string) *Card {
	for _, c := range p.Hand {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// RemoveFromHand removes a card from the hand by ID.
func (p *PlayerState) RemoveFromHand(card *Card) bool {
	for i, c := range p.Hand {
		if c.ID == card.ID {
			p.Hand = append(p.Hand[:i:i], p.Hand[i+1:]...)
			return true
		}
	}
	return false
}

// SendToGraveyard appends cards to the graveyard.
func (p *PlayerState) SendToGraveyard(cards ...*Card) {
	p.Graveyard = append(p.Graveyard, cards...)
}

// resetTurn clears per-turn flags.
func (p *PlayerState) resetTurn() {
	p.Selected = Selection{}
	p.Locked = nil
	p.Cycled = false
}

func (p *PlayerState) clone() *PlayerState {
	cp := *p
	cp.Deck = append([]*Card(nil), p.Deck...)
	cp.Hand = append([]*Card(nil), p.Hand...)
	cp.Graveyard = append([]*Card(nil), p.Graveyard...)
	if p.Locked != nil {
		locked := *p.Locked
		cp.Locked = &locked
	}
	return &cp
}

// Turn records both plays of one turn and the points they scored.
type Turn struct {
	Number         int   `json:"turnNumber"`
	PlayerPlay     *Play `json:"playerPlay"`
	OpponentPlay   *Play `json:"opponentPlay"`
	PlayerPoints   int   `json:"playerPoints"`
	OpponentPoints int   `json:"opponentPoints"`
	Resolved       bool  `json:"resolved"`
}

// Revealed reports whether both plays are stored.
func (t *Turn) Revealed() bool {
	return t.PlayerPlay != nil && t.OpponentPlay != nil
}

// Score is a player/opponent pair of points.
type Score struct {
	Player   int `json:"player"`
	Opponent int `json:"opponent"`
}

// Round is a fixed-length sequence of turns.
type Round struct {
	Number     int     `json:"roundNumber"`
	Turns      []*Turn `json:"turns"`
	Winner     Outcome `json:"winner"`
	FinalScore Score   `json:"finalScore"`
}

func newRounds(cfg Config) []*Round {
	rounds := make([]*Round, cfg.Rounds)
	for r := range rounds {
		round := &Round{Number: r + 1, Turns: make([]*Turn, cfg.TurnsPerRound)}
		for t := range round.Turns {
			round.Turns[t] = &Turn{Number: t + 1}
		}
		rounds[r] = round
	}
	return rounds
}

func (r *Round) clone() *Round {
	cp := *r
	cp.Turns = make([]*Turn, len(r.Turns))
	for i, t := range r.Turns {
		tc := *t
		if t.PlayerPlay != nil {
			pp := *t.PlayerPlay
			tc.PlayerPlay = &pp
		}
		if t.OpponentPlay != nil {
			op := *t.OpponentPlay
			tc.OpponentPlay = &op
		}
		cp.Turns[i] = &tc
	}
	return &cp
}
