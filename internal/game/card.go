package game

import (
	"fmt"
	"strings"
)

// Card is an immutable card definition. Power and Cost drive the
// power/momentum rules; Offense, Defense, Speed and Agility drive the
// classic rules. Cost doubles as the classic energy cost.
type Card struct {
	ID       string   `json:"id" yaml:"id"`
	MomentID string   `json:"momentId,omitempty" yaml:"moment_id,omitempty"`
	Name     string   `json:"playerName" yaml:"name"`
	Team     string   `json:"team,omitempty" yaml:"team,omitempty"`
	Type     CardType `json:"cardType" yaml:"type"`
	Cost     int      `json:"cost" yaml:"cost"`
	Power    int      `json:"power" yaml:"power"`
	Offense  int      `json:"offense" yaml:"offense"`
	Defense  int      `json:"defense" yaml:"defense"`
	Speed    int      `json:"speed" yaml:"speed"`
	Agility  int      `json:"agility" yaml:"agility"`
	Tier     string   `json:"tier,omitempty" yaml:"tier,omitempty"`
	Serial   int      `json:"serial,omitempty" yaml:"serial,omitempty"`
	SetName  string   `json:"setName,omitempty" yaml:"set_name,omitempty"`
	PlayType string   `json:"playType,omitempty" yaml:"play_type,omitempty"`
}

func (c *Card) String() string {
	return c.Name
}

// DisplayString returns a short description for the event log.
func (c *Card) DisplayString() string {
	if c == nil {
		return "(none)"
	}
	return fmt.Sprintf("%s (%s %d, cost %d)", c.Name, c.Type, c.Power, c.Cost)
}

// Moment is an externally sourced collectible record.
type Moment struct {
	MomentID     string `json:"momentId" yaml:"moment_id"`
	PlayerName   string `json:"playerName" yaml:"player_name"`
	Team         string `json:"team" yaml:"team"`
	Tier         string `json:"tier" yaml:"tier"`
	SerialNumber int    `json:"serialNumber" yaml:"serial_number"`
	PlayCategory string `json:"playCategory" yaml:"play_category"`
	SetName      string `json:"setName" yaml:"set_name"`
	PlayType     string `json:"playType" yaml:"play_type"`
}

// missingSerial is the serial assumed when a record carries none.
const missingSerial = 999

type tierStats struct {
	offense, defense, speed, agility, cost int
}

var tierBase = map[string]tierStats{
	"legendary": {8, 7, 7, 7, 3},
	"rare":      {6, 5, 6, 6, 2},
	"fandom":    {5, 4, 5, 5, 2},
	"common":    {4, 3, 4, 4, 1},
}

var (
	offenseKeywords = []string{"dunk", "shot", "score", "three", "3pt"}
	defenseKeywords = []string{"block", "steal", "rebound", "def"}
	supportKeywords = []string{"assist", "layup", "pass"}
)

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// ClassifyCategory maps a play category to a card type. Offense keywords
// win over defense, defense over support; anything else is offense.
func ClassifyCategory(category string) CardType {
	c := strings.ToLower(category)
	switch {
	case containsAny(c, offenseKeywords):
		return CardTypeOffense
	case containsAny(c, defenseKeywords):
		return CardTypeDefense
	case containsAny(c, supportKeywords):
		return CardTypeSupport
	}
	return CardTypeOffense
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// MomentToCard derives a card from a moment record. It is pure.
func MomentToCard(m Moment) *Card {
	base, ok := tierBase[strings.ToLower(strings.TrimSpace(m.Tier))]
	if !ok {
		base = tierBase["common"]
	}
	offense, defense, speed, agility := base.offense, base.defense, base.speed, base.agility

	serial := m.SerialNumber
	if serial <= 0 {
		serial = missingSerial
	}
	switch {
	case serial <= 50:
		offense += 2
		defense += 2
	case serial <= 100:
		offense++
		defense++
	case serial <= 500:
		offense++
	}

	category := strings.ToLower(m.PlayCategory)
	switch {
	case strings.Contains(category, "dunk"):
		offense++
	case strings.Contains(category, "block"):
		defense++
	case strings.Contains(category, "assist"):
		agility++
	case strings.Contains(category, "three"), strings.Contains(category, "3pt"):
		speed++
	}

	card := &Card{
		ID:       "moment_" + m.MomentID,
		MomentID: m.MomentID,
		Name:     m.PlayerName,
		Team:     m.Team,
		Type:     ClassifyCategory(m.PlayCategory),
		Cost:     clamp(base.cost, 1, 3),
		Offense:  clamp(offense, 1, 10),
		Defense:  clamp(defense, 1, 10),
		Speed:    clamp(speed, 1, 10),
		Agility:  clamp(agility, 1, 10),
		Tier:     m.Tier,
		Serial:   serial,
		SetName:  m.SetName,
		PlayType: m.PlayType,
	}
	switch card.Type {
	case CardTypeDefense:
		card.Power = card.Defense
	case CardTypeSupport:
		card.Power = card.Agility
	default:
		card.Power = card.Offense
	}
	return card
}

// MomentsToCards converts a batch of records in order.
func MomentsToCards(moments []Moment) []*Card {
	cards := make([]*Card, 0, len(moments))
	for _, m := range moments {
		cards = append(cards, MomentToCard(m))
	}
	return cards
}

// DefaultOpponentDeck builds the synthetic 25-card AI deck: ten offense,
// ten defense and five support cards on a rising power curve.
func DefaultOpponentDeck() []*Card {
	deck := make([]*Card, 0, 25)
	for i := 0; i < 10; i++ {
		deck = append(deck, &Card{
			ID:    fmt.Sprintf("ai_off_%d", i),
			Name:  fmt.Sprintf("AI Offense %d", i+1),
			Type:  CardTypeOffense,
			Power: 1 + i/2,
			Cost:  1 + i/3,
		})
	}
	for i := 0; i < 10; i++ {
		deck = append(deck, &Card{
			ID:    fmt.Sprintf("ai_def_%d", i),
			Name:  fmt.Sprintf("AI Defense %d", i+1),
			Type:  CardTypeDefense,
			Power: 1 + i/2,
			Cost:  1 + i/3,
		})
	}
	for i := 0; i < 5; i++ {
		deck = append(deck, &Card{
			ID:    fmt.Sprintf("ai_sup_%d", i),
			Name:  fmt.Sprintf("AI Support %d", i+1),
			Type:  CardTypeSupport,
			Power: 2 + i/2,
			Cost:  1 + i/2,
		})
	}
	// Mirror power into the classic stats so either rule set can score these cards.
	for _, c := range deck {
		c.Offense, c.Defense, c.Agility, c.Speed = c.Power, c.Power, c.Power, c.Power
	}
	return deck
}
