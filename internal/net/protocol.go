package net

import "encoding/json"

// Message types for the JSON protocol. The same messages travel over TCP
// (one JSON document per line) and over the browser WebSocket.

// --- Server → Client messages ---

// ServerMessage is the envelope for all server-to-client messages.
type ServerMessage struct {
	Type string `json:"type"`

	// For "welcome"
	MatchID string `json:"match_id,omitempty"`
	Deck    string `json:"deck,omitempty"`

	// For "event"
	Event *EventView `json:"event,omitempty"`

	// For "state"
	State *StateView `json:"state,omitempty"`

	// For "error"
	Error string `json:"error,omitempty"`

	// For "replay"
	Replay json.RawMessage `json:"replay,omitempty"`

	// For "game_over"
	Winner string `json:"winner,omitempty"`
	Result string `json:"result,omitempty"`
}

// EventView is a simplified match event for the client.
type EventView struct {
	Round   int    `json:"round"`
	Turn    int    `json:"turn"`
	State   string `json:"state"`
	Player  int    `json:"player"`
	Type    string `json:"type"`
	Card    string `json:"card,omitempty"`
	Details string `json:"details"`
}

// CardView describes a card in the player's hand. Index is 1-based and is
// what clients send back in commands.
type CardView struct {
	Index    int    `json:"index"`
	ID       string `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	Cost     int    `json:"cost"`
	Power    int    `json:"power"`
	Offense  int    `json:"offense"`
	Defense  int    `json:"defense"`
	Selected bool   `json:"selected,omitempty"`
}

// PlayView is a revealed play.
type PlayView struct {
	Pass  bool     `json:"pass,omitempty"`
	Type  string   `json:"type,omitempty"`
	Cards []string `json:"cards,omitempty"`
	Cost  int      `json:"cost,omitempty"`
}

// TurnView is a scored turn of the current round.
type TurnView struct {
	Turn           int      `json:"turn"`
	You            PlayView `json:"you"`
	Opponent       PlayView `json:"opponent"`
	YourPoints     int      `json:"your_points"`
	OpponentPoints int      `json:"opponent_points"`
}

// PlayerView shows one side of the table.
type PlayerView struct {
	Energy         int        `json:"energy"`
	MaxEnergy      int        `json:"max_energy"`
	HandCount      int        `json:"hand_count"`
	Hand           []CardView `json:"hand,omitempty"` // only for "you"
	DeckCount      int        `json:"deck_count"`
	GraveyardCount int        `json:"graveyard_count"`
	TotalScore     int        `json:"total_score"`
	RoundScore     int        `json:"round_score"`
	RoundsWon      int        `json:"rounds_won"`
	Locked         bool       `json:"locked"`
	Cycled         bool       `json:"cycled,omitempty"`
}

// StateView is the match from the human player's perspective.
type StateView struct {
	MatchID        string     `json:"match_id"`
	RuleSet        string     `json:"rule_set"`
	Round          int        `json:"round"`
	Rounds         int        `json:"rounds"`
	Turn           int        `json:"turn"`
	TurnsPerRound  int        `json:"turns_per_round"`
	State          string     `json:"state"`
	WaitingForDraw bool       `json:"waiting_for_draw,omitempty"`
	YourMove       bool       `json:"your_move"`
	SelectionCost  int        `json:"selection_cost"`
	CycleCost      int        `json:"cycle_cost"`
	Deadline       int64      `json:"deadline,omitempty"` // unix milliseconds
	You            PlayerView `json:"you"`
	Opponent       PlayerView `json:"opponent"`
	History        []TurnView `json:"history,omitempty"`
	Over           bool       `json:"over,omitempty"`
	Winner         string     `json:"winner,omitempty"`
	Reason         string     `json:"reason,omitempty"`
}

// --- Client → Server messages ---

// ClientMessage is the envelope for all client-to-server messages. Type is
// one of join, select, deselect, play, pass, cycle, draw, forfeit, replay.
type ClientMessage struct {
	Type string `json:"type"`

	// For "select", "deselect", "cycle": either the card ID or its
	// 1-based hand index.
	CardID string `json:"card_id,omitempty"`
	Index  int    `json:"index,omitempty"`

	// For "join" (initial handshake)
	DeckNumber int    `json:"deck_number,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`
}
