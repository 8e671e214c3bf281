package game

import (
	"fmt"
	"strings"
)

// --- Enums ---

type CardType int

const (
	CardTypeOffense CardType = iota
	CardTypeDefense
	CardTypeSupport
)

func (ct CardType) String() string {
	switch ct {
	case CardTypeOffense:
		return "OFFENSE"
	case CardTypeDefense:
		return "DEFENSE"
	case CardTypeSupport:
		return "SUPPORT"
	default:
		return "UNKNOWN"
	}
}

// IsMain reports whether a card of this type can anchor a play.
func (ct CardType) IsMain() bool {
	return ct == CardTypeOffense || ct == CardTypeDefense
}

func (ct CardType) MarshalText() ([]byte, error) {
	return []byte(ct.String()), nil
}

func (ct *CardType) UnmarshalText(b []byte) error {
	parsed, err := ParseCardType(string(b))
	if err != nil {
		return err
	}
	*ct = parsed
	return nil
}

// ParseCardType accepts OFFENSE, DEFENSE or SUPPORT in any case.
func ParseCardType(s string) (CardType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "OFFENSE":
		return CardTypeOffense, nil
	case "DEFENSE":
		return CardTypeDefense, nil
	case "SUPPORT":
		return CardTypeSupport, nil
	}
	return CardTypeOffense, fmt.Errorf("unknown card type %q", s)
}

// State is a step of the match state machine.
type State int

const (
	StateDraw State = iota
	StateEnergyRefresh
	StateAction
	StateLocked
	StateReveal
	StateScoring
	StateTurnEnd
	StateRoundEnd
	StateMatchEnd
)

func (s State) String() string {
	switch s {
	case StateDraw:
		return "DRAW"
	case StateEnergyRefresh:
		return "ENERGY_REFRESH"
	case StateAction:
		return "ACTION"
	case StateLocked:
		return "LOCKED"
	case StateReveal:
		return "REVEAL"
	case StateScoring:
		return "SCORING"
	case StateTurnEnd:
		return "TURN_END"
	case StateRoundEnd:
		return "ROUND_END"
	case StateMatchEnd:
		return "MATCH_END"
	default:
		return "UNKNOWN"
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Player indices. The human always sits in slot 0.
const (
	PlayerHuman    = 0
	PlayerOpponent = 1
)

// Outcome is the winner of a round or match.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomePlayer
	OutcomeOpponent
	OutcomeTie
)

func (o Outcome) String() string {
	switch o {
	case OutcomePlayer:
		return "player"
	case OutcomeOpponent:
		return "opponent"
	case OutcomeTie:
		return "tie"
	default:
		return ""
	}
}

func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

func (o *Outcome) UnmarshalText(b []byte) error {
	switch string(b) {
	case "player":
		*o = OutcomePlayer
	case "opponent":
		*o = OutcomeOpponent
	case "tie":
		*o = OutcomeTie
	case "":
		*o = OutcomeNone
	default:
		return fmt.Errorf("unknown outcome %q", b)
	}
	return nil
}

// outcomeFor converts a player index to the outcome where that player wins.
func outcomeFor(p int) Outcome {
	if p == PlayerOpponent {
		return OutcomeOpponent
	}
	return OutcomePlayer
}

// --- Intents (driver actions) ---

type IntentKind int

const (
	IntentSelect IntentKind = iota
	IntentDeselect
	IntentPass
	IntentPlay
	IntentCycle
	IntentDraw
	IntentForfeit
)

func (k IntentKind) String() string {
	switch k {
	case IntentSelect:
		return "select"
	case IntentDeselect:
		return "deselect"
	case IntentPass:
		return "pass"
	case IntentPlay:
		return "play"
	case IntentCycle:
		return "cycle"
	case IntentDraw:
		return "draw"
	case IntentForfeit:
		return "forfeit"
	default:
		return "unknown"
	}
}

// ParseIntentKind maps a wire name to an IntentKind.
func ParseIntentKind(s string) (IntentKind, bool) {
	for k := IntentSelect; k <= IntentForfeit; k++ {
		if k.String() == s {
			return k, true
		}
	}
	return 0, false
}

// Intent is one driver action. CardID is used by select, deselect and cycle.
type Intent struct {
	Kind   IntentKind
	CardID string
}

func (i Intent) String() string {
	if i.CardID != "" {
		return fmt.Sprintf("%s %s", i.Kind, i.CardID)
	}
	return i.Kind.String()
}
