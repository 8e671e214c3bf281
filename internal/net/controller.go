package net

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/peterkuimelis/momentrivals/internal/game"
	"github.com/peterkuimelis/momentrivals/internal/log"
	"github.com/peterkuimelis/momentrivals/internal/replay"
	"github.com/peterkuimelis/momentrivals/internal/session"
)

// Conn carries protocol messages for one player.
type Conn interface {
	Send(msg ServerMessage) error
	Recv() (ClientMessage, error)
}

// jsonConn speaks newline-delimited JSON over a stream.
type jsonConn struct {
	enc *json.Encoder
	dec *json.Decoder
}

// NewJSONConn wraps a stream such as a net.Conn.
func NewJSONConn(rw io.ReadWriter) Conn {
	return &jsonConn{enc: json.NewEncoder(rw), dec: json.NewDecoder(rw)}
}

func (c *jsonConn) Send(msg ServerMessage) error {
	return c.enc.Encode(msg)
}

func (c *jsonConn) Recv() (ClientMessage, error) {
	var msg ClientMessage
	err := c.dec.Decode(&msg)
	return msg, err
}

// Controller drives a session from a client connection: it turns client
// commands into intents and publishes every session update back.
type Controller struct {
	conn Conn
	sess *session.Session
	mu   sync.Mutex // serializes sends from the reader and the turn timer
}

// NewController creates a new controller for the given connection.
func NewController(conn Conn, sess *session.Session) *Controller {
	return &Controller{conn: conn, sess: sess}
}

// Run sends the opening state and applies client commands until the match
// ends or the client goes away. Rejected commands are reported with an
// "error" message and do not stop the loop.
func (c *Controller) Run(ctx context.Context) error {
	c.sess.OnUpdate(func(u session.Update) {
		_ = c.publish(u)
	})
	defer c.sess.OnUpdate(nil)

	opening := session.Update{
		Snapshot: c.sess.Snapshot(),
		Events:   c.sess.Events(),
		Deadline: c.sess.Deadline(),
	}
	if err := c.publish(opening); err != nil {
		return fmt.Errorf("send opening state: %w", err)
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if c.sess.Snapshot().Over() {
			return nil
		}
		msg, err := c.conn.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("recv command: %w", err)
		}
		if err := c.handle(msg); err != nil {
			if sendErr := c.send(ServerMessage{Type: "error", Error: err.Error()}); sendErr != nil {
				return sendErr
			}
		}
	}
}

func (c *Controller) handle(msg ClientMessage) error {
	if msg.Type == "replay" {
		data, err := replay.Marshal(c.sess.Replay())
		if err != nil {
			return err
		}
		return c.send(ServerMessage{Type: "replay", Replay: data})
	}
	_, err := c.sess.ApplyCommand(func(snap *game.Snapshot) (game.Intent, error) {
		return ParseIntent(msg, snap)
	})
	return err
}

// ParseIntent maps a client command to a match intent, resolving a hand
// index against snap.
func ParseIntent(msg ClientMessage, snap *game.Snapshot) (game.Intent, error) {
	kind, ok := game.ParseIntentKind(msg.Type)
	if !ok {
		return game.Intent{}, fmt.Errorf("unknown command %q", msg.Type)
	}
	in := game.Intent{Kind: kind}
	switch kind {
	case game.IntentSelect, game.IntentDeselect, game.IntentCycle:
		id := msg.CardID
		if id == "" {
			hand := snap.Player().Hand
			if msg.Index < 1 || msg.Index > len(hand) {
				return in, fmt.Errorf("%s: card index must be between 1 and %d", msg.Type, len(hand))
			}
			id = hand[msg.Index-1].ID
		}
		in.CardID = id
	}
	return in, nil
}

func (c *Controller) send(msg ServerMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.Send(msg)
}

// publish sends the new events, then the state, then game_over once the
// match has ended.
func (c *Controller) publish(u session.Update) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range u.Events {
		if err := c.conn.Send(ServerMessage{Type: "event", Event: NewEventView(e)}); err != nil {
			return err
		}
	}
	if err := c.conn.Send(ServerMessage{Type: "state", State: BuildStateView(u.Snapshot, u.Deadline)}); err != nil {
		return err
	}
	if u.Snapshot.Over() {
		return c.conn.Send(ServerMessage{
			Type:   "game_over",
			Winner: u.Snapshot.Winner.String(),
			Result: GameOverText(u.Snapshot),
		})
	}
	return nil
}

// GameOverText summarizes a finished match for the player.
func GameOverText(snap *game.Snapshot) string {
	var headline string
	switch snap.Winner {
	case game.OutcomePlayer:
		headline = "You win!"
	case game.OutcomeOpponent:
		headline = "You lose."
	default:
		headline = "It's a draw."
	}
	return fmt.Sprintf("%s Final score %d - %d, rounds %d - %d (%s)", headline,
		snap.Player().TotalScore, snap.Opponent().TotalScore,
		snap.Player().RoundsWon, snap.Opponent().RoundsWon, snap.Reason)
}

// NewEventView converts a logged event for the wire.
func NewEventView(e log.GameEvent) *EventView {
	return &EventView{
		Round:   e.Round,
		Turn:    e.Turn,
		State:   e.State,
		Player:  e.Player,
		Type:    e.Type.String(),
		Card:    e.Card,
		Details: e.Details,
	}
}

// BuildStateView creates a StateView from the human player's perspective.
// The opponent's hand and unrevealed plays stay hidden.
func BuildStateView(snap *game.Snapshot, deadline time.Time) *StateView {
	me, opp := snap.Player(), snap.Opponent()
	sv := &StateView{
		MatchID:        snap.ID,
		RuleSet:        snap.RuleSet.String(),
		Round:          snap.Round,
		Rounds:         snap.Config.Rounds,
		Turn:           snap.Turn,
		TurnsPerRound:  snap.Config.TurnsPerRound,
		State:          snap.State.String(),
		WaitingForDraw: snap.WaitingForDraw,
		YourMove:       snap.AwaitingAction(),
		SelectionCost:  me.Selected.Cost(),
		CycleCost:      snap.Config.CycleCost,
		You:            sideView(me),
		Opponent:       sideView(opp),
		Over:           snap.Over(),
		Reason:         snap.Reason,
	}
	if !deadline.IsZero() {
		sv.Deadline = deadline.UnixMilli()
	}
	if snap.Over() {
		sv.Winner = snap.Winner.String()
	}

	for i, c := range me.Hand {
		sv.You.Hand = append(sv.You.Hand, CardView{
			Index:    i + 1,
			ID:       c.ID,
			Name:     c.Name,
			Type:     c.Type.String(),
			Cost:     c.Cost,
			Power:    c.Power,
			Offense:  c.Offense,
			Defense:  c.Defense,
			Selected: me.Selected.Contains(c.ID),
		})
	}

	if snap.Round >= 1 && snap.Round <= len(snap.Rounds) {
		for _, t := range snap.Rounds[snap.Round-1].Turns {
			if !t.Resolved {
				continue
			}
			sv.History = append(sv.History, TurnView{
				Turn:           t.Number,
				You:            NewPlayView(*t.PlayerPlay),
				Opponent:       NewPlayView(*t.OpponentPlay),
				YourPoints:     t.PlayerPoints,
				OpponentPoints: t.OpponentPoints,
			})
		}
	}
	return sv
}

func sideView(p *game.PlayerState) PlayerView {
	return PlayerView{
		Energy:         p.Energy,
		MaxEnergy:      p.MaxEnergy,
		HandCount:      p.HandCount(),
		DeckCount:      p.DeckCount(),
		GraveyardCount: len(p.Graveyard),
		TotalScore:     p.TotalScore,
		RoundScore:     p.RoundScore,
		RoundsWon:      p.RoundsWon,
		Locked:         p.Locked != nil,
		Cycled:         p.Cycled,
	}
}

// NewPlayView describes a revealed play.
func NewPlayView(p game.Play) PlayView {
	if p.IsPass() {
		return PlayView{Pass: true, Type: "PASS"}
	}
	pv := PlayView{Type: p.Main.Type.String(), Cost: p.Cost()}
	for _, c := range p.Cards() {
		pv.Cards = append(pv.Cards, c.Name)
	}
	return pv
}
