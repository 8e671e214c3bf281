package log

import "fmt"

// EventType enumerates all observable match events.
type EventType int

const (
	EventMatchStart EventType = iota
	EventNewRound
	EventNewTurn
	EventDraw
	EventDeckEmpty
	EventHandOverflow
	EventWaitingForDraw
	EventEnergyRefresh
	EventSelect
	EventDeselect
	EventLockIn
	EventPass
	EventAutoPass
	EventPassDiscard
	EventCycle
	EventReveal
	EventDeferred
	EventScore
	EventRoundEnd
	EventMatchEnd
	EventForfeit
	EventRejected
	EventPolicyFallback
)

func (e EventType) String() string {
	switch e {
	case EventMatchStart:
		return "MatchStart"
	case EventNewRound:
		return "NewRound"
	case EventNewTurn:
		return "NewTurn"
	case EventDraw:
		return "Draw"
	case EventDeckEmpty:
		return "DeckEmpty"
	case EventHandOverflow:
		return "HandOverflow"
	case EventWaitingForDraw:
		return "WaitingForDraw"
	case EventEnergyRefresh:
		return "EnergyRefresh"
	case EventSelect:
		return "Select"
	case EventDeselect:
		return "Deselect"
	case EventLockIn:
		return "LockIn"
	case EventPass:
		return "Pass"
	case EventAutoPass:
		return "AutoPass"
	case EventPassDiscard:
		return "PassDiscard"
	case EventCycle:
		return "Cycle"
	case EventReveal:
		return "Reveal"
	case EventDeferred:
		return "Deferred"
	case EventScore:
		return "Score"
	case EventRoundEnd:
		return "RoundEnd"
	case EventMatchEnd:
		return "MatchEnd"
	case EventForfeit:
		return "Forfeit"
	case EventRejected:
		return "Rejected"
	case EventPolicyFallback:
		return "PolicyFallback"
	default:
		return "Unknown"
	}
}

func (e EventType) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

func (e *EventType) UnmarshalText(b []byte) error {
	for t := EventMatchStart; t <= EventPolicyFallback; t++ {
		if t.String() == string(b) {
			*e = t
			return nil
		}
	}
	return fmt.Errorf("unknown event type %q", b)
}

// GameEvent represents a single observable event in a match.
type GameEvent struct {
	Seq     int       `json:"seq"`            // monotonic sequence number
	Round   int       `json:"round"`          // 1-based round
	Turn    int       `json:"turn"`           // 1-based turn within the round
	State   string    `json:"state"`          // state machine step (e.g. "ACTION")
	Player  int       `json:"player"`         // acting side (0 player, 1 opponent, -1 none)
	Type    EventType `json:"type"`           // event type
	Card    string    `json:"card,omitempty"` // card name (if applicable)
	Details string    `json:"details"`        // human-readable detail string
}
