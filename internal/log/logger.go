package log

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// EventLogger is the interface for logging match events.
type EventLogger interface {
	Log(event GameEvent)
	Events() []GameEvent
}

// NoPlayer marks events that belong to neither side.
const NoPlayer = -1

// --- MemoryLogger: stores events in memory ---

type MemoryLogger struct {
	mu     sync.Mutex
	events []GameEvent
	seq    int
}

func NewMemoryLogger() *MemoryLogger {
	return &MemoryLogger{}
}

func (l *MemoryLogger) Log(event GameEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seq++
	event.Seq = l.seq
	l.events = append(l.events, event)
}

// Events returns a copy of all events logged so far.
func (l *MemoryLogger) Events() []GameEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]GameEvent(nil), l.events...)
}

// Since returns events with a sequence number greater than seq.
func (l *MemoryLogger) Since(seq int) []GameEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	if seq < 0 {
		seq = 0
	}
	if seq >= len(l.events) {
		return nil
	}
	return append([]GameEvent(nil), l.events[seq:]...)
}

// EventsOfType returns all events matching the given type.
func (l *MemoryLogger) EventsOfType(t EventType) []GameEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	var result []GameEvent
	for _, e := range l.events {
		if e.Type == t {
			result = append(result, e)
		}
	}
	return result
}

// LastEvent returns the most recent event, or a zero event if none.
func (l *MemoryLogger) LastEvent() GameEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.events) == 0 {
		return GameEvent{}
	}
	return l.events[len(l.events)-1]
}

// --- TextLogger: writes human-readable lines to an io.Writer ---

type TextLogger struct {
	MemoryLogger
	w io.Writer
}

func NewTextLogger(w io.Writer) *TextLogger {
	return &TextLogger{w: w}
}

func (l *TextLogger) Log(event GameEvent) {
	l.MemoryLogger.Log(event)
	fmt.Fprintln(l.w, FormatEvent(event))
}

// --- Formatting ---

// PlayerName returns "Player" or "Opponent" for display.
func PlayerName(p int) string {
	switch p {
	case 0:
		return "Player"
	case 1:
		return "Opponent"
	default:
		return "-"
	}
}

// FormatEvent formats a single event as a human-readable line.
func FormatEvent(e GameEvent) string {
	state := e.State
	// Pad state to 15 chars for alignment
	for len(state) < 15 {
		state += " "
	}
	return fmt.Sprintf("R%d T%d %s| %s", e.Round, e.Turn, state, e.Details)
}

// FormatAll formats all events as a multi-line string.
func FormatAll(events []GameEvent) string {
	var sb strings.Builder
	for _, e := range events {
		sb.WriteString(FormatEvent(e))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Lines returns the formatted event strings in order.
func Lines(events []GameEvent) []string {
	lines := make([]string, len(events))
	for i, e := range events {
		lines[i] = FormatEvent(e)
	}
	return lines
}

// --- Helper constructors for common events ---

func NewMatchStartEvent(matchID, ruleSet string, seed int64) GameEvent {
	return GameEvent{
		Round:   1,
		Turn:    1,
		Player:  NoPlayer,
		Type:    EventMatchStart,
		Details: fmt.Sprintf("Match %s started (%s rules, seed %d)", matchID, ruleSet, seed),
	}
}

func NewRoundEvent(round int) GameEvent {
	return GameEvent{
		Round:   round,
		Turn:    1,
		Player:  NoPlayer,
		Type:    EventNewRound,
		Details: fmt.Sprintf("=== Round %d ===", round),
	}
}

func NewTurnEvent(round, turn int) GameEvent {
	return GameEvent{
		Round:   round,
		Turn:    turn,
		Player:  NoPlayer,
		Type:    EventNewTurn,
		Details: fmt.Sprintf("--- Round %d, Turn %d ---", round, turn),
	}
}

func NewDrawEvent(round, turn, player int, cardName string) GameEvent {
	return GameEvent{
		Round:   round,
		Turn:    turn,
		Player:  player,
		Type:    EventDraw,
		Card:    cardName,
		Details: fmt.Sprintf("%s draws %s", PlayerName(player), cardName),
	}
}

func NewDeckEmptyEvent(round, turn, player int) GameEvent {
	return GameEvent{
		Round:   round,
		Turn:    turn,
		Player:  player,
		Type:    EventDeckEmpty,
		Details: fmt.Sprintf("%s deck is empty - no card drawn", PlayerName(player)),
	}
}

func NewHandOverflowEvent(round, turn, player int, cardName string) GameEvent {
	return GameEvent{
		Round:   round,
		Turn:    turn,
		Player:  player,
		Type:    EventHandOverflow,
		Card:    cardName,
		Details: fmt.Sprintf("%s hand is full, %s is discarded", PlayerName(player), cardName),
	}
}

func NewWaitingForDrawEvent(round int) GameEvent {
	return GameEvent{
		Round:   round,
		Turn:    1,
		Player:  NoPlayer,
		Type:    EventWaitingForDraw,
		Details: fmt.Sprintf("Waiting for draw to start round %d", round),
	}
}

func NewEnergyRefreshEvent(round, turn, player, energy, gained int) GameEvent {
	return GameEvent{
		Round:   round,
		Turn:    turn,
		Player:  player,
		Type:    EventEnergyRefresh,
		Details: fmt.Sprintf("%s energy: %d (+%d)", PlayerName(player), energy, gained),
	}
}

func NewSelectEvent(round, turn, player int, cardName, role string) GameEvent {
	return GameEvent{
		Round:   round,
		Turn:    turn,
		Player:  player,
		Type:    EventSelect,
		Card:    cardName,
		Details: fmt.Sprintf("%s selects %s as %s", PlayerName(player), cardName, role),
	}
}

func NewDeselectEvent(round, turn, player int, cardName string) GameEvent {
	return GameEvent{
		Round:   round,
		Turn:    turn,
		Player:  player,
		Type:    EventDeselect,
		Card:    cardName,
		Details: fmt.Sprintf("%s deselects %s", PlayerName(player), cardName),
	}
}

func NewLockInEvent(round, turn, player int, cost int) GameEvent {
	return GameEvent{
		Round:   round,
		Turn:    turn,
		Player:  player,
		Type:    EventLockIn,
		Details: fmt.Sprintf("%s locks in a play (cost %d)", PlayerName(player), cost),
	}
}

func NewPassEvent(round, turn, player int) GameEvent {
	return GameEvent{
		Round:   round,
		Turn:    turn,
		Player:  player,
		Type:    EventPass,
		Details: fmt.Sprintf("%s passes", PlayerName(player)),
	}
}

func NewAutoPassEvent(round, turn, player int) GameEvent {
	return GameEvent{
		Round:   round,
		Turn:    turn,
		Player:  player,
		Type:    EventAutoPass,
		Details: fmt.Sprintf("%s ran out of time and passes", PlayerName(player)),
	}
}

func NewPassDiscardEvent(round, turn, player int, cardName string) GameEvent {
	return GameEvent{
		Round:   round,
		Turn:    turn,
		Player:  player,
		Type:    EventPassDiscard,
		Card:    cardName,
		Details: fmt.Sprintf("%s passed with a full hand and discards %s", PlayerName(player), cardName),
	}
}

func NewCycleEvent(round, turn, player int, discarded, drawn string) GameEvent {
	details := fmt.Sprintf("%s cycles %s", PlayerName(player), discarded)
	if drawn != "" {
		details += fmt.Sprintf(" and draws %s", drawn)
	} else {
		details += " (deck is empty - no card drawn)"
	}
	return GameEvent{
		Round:   round,
		Turn:    turn,
		Player:  player,
		Type:    EventCycle,
		Card:    discarded,
		Details: details,
	}
}

func NewRevealEvent(round, turn int, playerPlay, opponentPlay string) GameEvent {
	return GameEvent{
		Round:   round,
		Turn:    turn,
		Player:  NoPlayer,
		Type:    EventReveal,
		Details: fmt.Sprintf("Turn %d reveal: Player %s vs Opponent %s", turn, playerPlay, opponentPlay),
	}
}

func NewDeferredEvent(round, turn int) GameEvent {
	return GameEvent{
		Round:   round,
		Turn:    turn,
		Player:  NoPlayer,
		Type:    EventDeferred,
		Details: fmt.Sprintf("Turn %d plays are locked face-down until the next reveal", turn),
	}
}

func NewScoreEvent(round, turn, playerPoints, opponentPoints int) GameEvent {
	return GameEvent{
		Round:   round,
		Turn:    turn,
		Player:  NoPlayer,
		Type:    EventScore,
		Details: fmt.Sprintf("Turn %d scored: Player +%d, Opponent +%d", turn, playerPoints, opponentPoints),
	}
}

func NewRoundEndEvent(round int, winner string, playerScore, opponentScore int) GameEvent {
	details := fmt.Sprintf("Round %d ended in a tie (%d - %d)", round, playerScore, opponentScore)
	if winner != "tie" {
		details = fmt.Sprintf("Round %d won by %s (%d - %d)", round, winner, playerScore, opponentScore)
	}
	return GameEvent{
		Round:   round,
		Player:  NoPlayer,
		Type:    EventRoundEnd,
		Details: details,
	}
}

func NewMatchEndEvent(round, turn int, winner, reason string) GameEvent {
	return GameEvent{
		Round:   round,
		Turn:    turn,
		Player:  NoPlayer,
		Type:    EventMatchEnd,
		Details: fmt.Sprintf("Match over: %s wins (%s)", winner, reason),
	}
}

func NewForfeitEvent(round, turn, player int) GameEvent {
	return GameEvent{
		Round:   round,
		Turn:    turn,
		Player:  player,
		Type:    EventForfeit,
		Details: fmt.Sprintf("%s forfeits", PlayerName(player)),
	}
}

func NewRejectedEvent(round, turn, player int, action, reason string) GameEvent {
	return GameEvent{
		Round:   round,
		Turn:    turn,
		Player:  player,
		Type:    EventRejected,
		Details: fmt.Sprintf("%s %s rejected: %s", PlayerName(player), action, reason),
	}
}

func NewPolicyFallbackEvent(round, turn int, reason string) GameEvent {
	return GameEvent{
		Round:   round,
		Turn:    turn,
		Player:  1,
		Type:    EventPolicyFallback,
		Details: fmt.Sprintf("Opponent play replaced by a pass (%s)", reason),
	}
}
