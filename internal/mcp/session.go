package mcp

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/peterkuimelis/momentrivals/internal/config"
	rivalsnet "github.com/peterkuimelis/momentrivals/internal/net"
	"github.com/peterkuimelis/momentrivals/internal/replay"
	"github.com/peterkuimelis/momentrivals/internal/session"
)

var (
	ErrNoMatch      = errors.New("no match is running, use start_match first")
	ErrMatchRunning = errors.New("a match is already running, finish or forfeit it first")
)

// ToolResponse is the JSON envelope returned by all MCP tools.
type ToolResponse struct {
	MatchID  string                `json:"match_id,omitempty"`
	Deck     string                `json:"deck,omitempty"`
	Events   []rivalsnet.EventView `json:"events"`
	State    *rivalsnet.StateView  `json:"state,omitempty"`
	Rejected string                `json:"rejected,omitempty"`
	GameOver bool                  `json:"game_over"`
	Winner   string                `json:"winner,omitempty"`
	Result   string                `json:"result,omitempty"`
}

// Manager holds the single match an agent plays per stdio process.
type Manager struct {
	mu     sync.Mutex
	games  *rivalsnet.Server
	active *MCPController
}

// NewManager prepares matches from cfg. Finished matches go to store when
// it is non-nil.
func NewManager(cfg config.Config, store *replay.Store) *Manager {
	return &Manager{games: &rivalsnet.Server{
		DeckFile:   cfg.DecksFile,
		Game:       cfg.Game,
		Difficulty: cfg.Difficulty,
		Store:      store,
	}}
}

// SetClock replaces the clock driving turn timers.
func (m *Manager) SetClock(c session.Clock) {
	m.games.Clock = c
}

// Start begins a match with deck n against the AI. A finished match is
// replaced; a running one is not.
func (m *Manager) Start(deckNumber int, difficulty string, seed int64) (*ToolResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active != nil && !m.active.Over() {
		return nil, ErrMatchRunning
	}

	games := *m.games
	if seed != 0 {
		games.Game.Seed = seed
	}
	sess, deck, err := games.NewSession(rivalsnet.ClientMessage{
		Type:       "join",
		DeckNumber: deckNumber,
		Difficulty: difficulty,
	})
	if err != nil {
		return nil, err
	}
	if m.active != nil {
		m.active.Close()
	}
	m.active = NewMCPController(sess, deck)

	resp := m.active.Respond(nil)
	resp.MatchID = sess.ID()
	resp.Deck = deck
	return resp, nil
}

// Active returns the controller of the current match.
func (m *Manager) Active() (*MCPController, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return nil, ErrNoMatch
	}
	return m.active, nil
}

// Close ends the current match, if any.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active != nil {
		m.active.Close()
		m.active = nil
	}
}

// respondJSON marshals a ToolResponse to a JSON string.
func respondJSON(resp *ToolResponse) string {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Sprintf(`{"error": "marshal error: %v"}`, err)
	}
	return string(data)
}
