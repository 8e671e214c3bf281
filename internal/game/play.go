package game

import "fmt"

// PlayKind tags a Play as a pass or a card play.
type PlayKind int

const (
	PlayPass PlayKind = iota
	PlayCard
)

func (k PlayKind) String() string {
	if k == PlayCard {
		return "CARD"
	}
	return "PASS"
}

func (k PlayKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *PlayKind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "PASS":
		*k = PlayPass
	case "CARD":
		*k = PlayCard
	default:
		return fmt.Errorf("unknown play kind %q", b)
	}
	return nil
}

// Play is one side's committed action for a turn. A CARD play always has a
// Main card (OFFENSE or DEFENSE) and at most one SUPPORT card.
type Play struct {
	Kind    PlayKind `json:"type"`
	Main    *Card    `json:"mainCard,omitempty"`
	Support *Card    `json:"supportCard,omitempty"`
}

// Pass returns the pass play.
func Pass() Play {
	return Play{Kind: PlayPass}
}

// CardPlay builds a CARD play. support may be nil.
func CardPlay(main, support *Card) Play {
	return Play{Kind: PlayCard, Main: main, Support: support}
}

// IsPass reports whether the play is a pass.
func (p Play) IsPass() bool {
	return p.Kind == PlayPass || p.Main == nil
}

// Cards returns the cards in the play, main first.
func (p Play) Cards() []*Card {
	if p.IsPass() {
		return nil
	}
	if p.Support != nil {
		return []*Card{p.Main, p.Support}
	}
	return []*Card{p.Main}
}

// Cost is the total energy cost of the play.
func (p Play) Cost() int {
	total := 0
	for _, c := range p.Cards() {
		total += c.Cost
	}
	return total
}

// BoostedPower is main power plus support power.
func (p Play) BoostedPower() int {
	if p.IsPass() {
		return 0
	}
	power := p.Main.Power
	if p.Support != nil {
		power += p.Support.Power
	}
	return power
}

func (p Play) String() string {
	if p.IsPass() {
		return "PASS"
	}
	if p.Support != nil {
		return fmt.Sprintf("%s + %s", p.Main.DisplayString(), p.Support.DisplayString())
	}
	return p.Main.DisplayString()
}

// Selection is a combo being built during the action step.
type Selection struct {
	Main    *Card `json:"main,omitempty"`
	Support *Card `json:"support,omitempty"`
}

// Cost is the total cost of the selected cards.
func (s Selection) Cost() int {
	total := 0
	if s.Main != nil {
		total += s.Main.Cost
	}
	if s.Support != nil {
		total += s.Support.Cost
	}
	return total
}

// Empty reports whether nothing is selected.
func (s Selection) Empty() bool {
	return s.Main == nil && s.Support == nil
}

// Contains reports whether the card with id is selected.
func (s Selection) Contains(id string) bool {
	return (s.Main != nil && s.Main.ID == id) || (s.Support != nil && s.Support.ID == id)
}
