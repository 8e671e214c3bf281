package mcp

import (
	"sync"

	"github.com/peterkuimelis/momentrivals/internal/game"
	rivalsnet "github.com/peterkuimelis/momentrivals/internal/net"
	"github.com/peterkuimelis/momentrivals/internal/replay"
	"github.com/peterkuimelis/momentrivals/internal/session"
)

// MCPController plays the human side of a session on behalf of an agent.
// Events logged between tool calls, including turn timer auto-passes, are
// buffered and returned with the next response.
type MCPController struct {
	sess *session.Session
	deck string

	mu     sync.Mutex
	events []rivalsnet.EventView
}

// NewMCPController wraps sess. The events logged while the match was set
// up are buffered for the first response.
func NewMCPController(sess *session.Session, deck string) *MCPController {
	c := &MCPController{sess: sess, deck: deck}
	for _, e := range sess.Events() {
		c.events = append(c.events, *rivalsnet.NewEventView(e))
	}
	sess.OnUpdate(c.notify)
	return c
}

func (c *MCPController) notify(u session.Update) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range u.Events {
		c.events = append(c.events, *rivalsnet.NewEventView(e))
	}
}

// drainEvents returns all accumulated events and clears the buffer.
func (c *MCPController) drainEvents() []rivalsnet.EventView {
	c.mu.Lock()
	defer c.mu.Unlock()
	events := c.events
	c.events = nil
	if events == nil {
		events = []rivalsnet.EventView{}
	}
	return events
}

// Command runs a protocol command such as "select 2" or "pass". A rejected
// command is reported in the response rather than as an error.
func (c *MCPController) Command(msg rivalsnet.ClientMessage) *ToolResponse {
	_, err := c.sess.ApplyCommand(func(snap *game.Snapshot) (game.Intent, error) {
		return rivalsnet.ParseIntent(msg, snap)
	})
	return c.Respond(err)
}

// Respond builds the response for the current state. rejected, if non-nil,
// is the reason the last command did nothing.
func (c *MCPController) Respond(rejected error) *ToolResponse {
	snap := c.sess.Snapshot()
	resp := &ToolResponse{
		Events:   c.drainEvents(),
		State:    rivalsnet.BuildStateView(snap, c.sess.Deadline()),
		GameOver: snap.Over(),
	}
	if rejected != nil {
		resp.Rejected = rejected.Error()
	}
	if snap.Over() {
		resp.Winner = snap.Winner.String()
		resp.Result = rivalsnet.GameOverText(snap)
	}
	return resp
}

// Replay exports the match as it stands.
func (c *MCPController) Replay() *replay.Replay {
	return c.sess.Replay()
}

func (c *MCPController) Over() bool {
	return c.sess.Snapshot().Over()
}

func (c *MCPController) Close() {
	c.sess.OnUpdate(nil)
	c.sess.Close()
}
