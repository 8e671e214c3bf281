package net

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/peterkuimelis/momentrivals/internal/log"
	"github.com/peterkuimelis/momentrivals/internal/replay"
)

// Client connects to a game server and provides a terminal REPL.
type Client struct {
	conn io.ReadWriter
	in   io.Reader
	out  io.Writer
	// ReplayDir is where exported replays are written.
	ReplayDir string
	matchID   string
}

// NewClient creates a REPL client over an established connection.
func NewClient(conn io.ReadWriter, in io.Reader, out io.Writer) *Client {
	return &Client{conn: conn, in: in, out: out, ReplayDir: "."}
}

// Connect connects to a server, sends the deck choice, and runs the REPL
// on the terminal.
func Connect(ctx context.Context, addr string, deckNumber int, difficulty string) error {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close()

	client := NewClient(conn, os.Stdin, os.Stdout)
	if err := client.Join(deckNumber, difficulty); err != nil {
		return err
	}
	fmt.Println("Connected! Type 'help' for commands.")
	return client.RunREPL(ctx)
}

// Join sends the handshake message.
func (c *Client) Join(deckNumber int, difficulty string) error {
	msg := ClientMessage{Type: "join", DeckNumber: deckNumber, Difficulty: difficulty}
	if err := json.NewEncoder(c.conn).Encode(msg); err != nil {
		return fmt.Errorf("send join: %w", err)
	}
	return nil
}

const helpText = `Commands:
  <n> | select <n>    select hand card n (main card first, then a support)
  deselect <n>        remove card n from the selection
  play                lock in the selection
  pass                pass this turn
  cycle <n>           discard card n and draw a replacement
  draw                start the next round
  forfeit             concede the match
  replay              save the replay to a file
  help                show this help
  quit                leave`

// ParseCommand turns a REPL line into a client message. Cards may be given
// by 1-based hand index or by card ID.
func ParseCommand(line string) (ClientMessage, error) {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(line)))
	if len(fields) == 0 {
		return ClientMessage{}, errors.New("empty command")
	}
	if n, err := strconv.Atoi(fields[0]); err == nil && len(fields) == 1 {
		return ClientMessage{Type: "select", Index: n}, nil
	}

	var typ string
	needsCard := false
	switch fields[0] {
	case "s", "select":
		typ, needsCard = "select", true
	case "d", "deselect":
		typ, needsCard = "deselect", true
	case "c", "cycle":
		typ, needsCard = "cycle", true
	case "p", "play", "lock":
		typ = "play"
	case "pass":
		typ = "pass"
	case "draw":
		typ = "draw"
	case "ff", "forfeit":
		typ = "forfeit"
	case "replay", "export":
		typ = "replay"
	default:
		return ClientMessage{}, fmt.Errorf("unknown command %q (type 'help')", fields[0])
	}

	msg := ClientMessage{Type: typ}
	if !needsCard {
		return msg, nil
	}
	if len(fields) != 2 {
		return ClientMessage{}, fmt.Errorf("%s needs a card number", typ)
	}
	// Card IDs are case sensitive, so take the argument from the raw line.
	arg := strings.Fields(strings.TrimSpace(line))[1]
	if n, err := strconv.Atoi(arg); err == nil {
		msg.Index = n
	} else {
		msg.CardID = arg
	}
	return msg, nil
}

// RunREPL renders server messages as they arrive and sends commands typed
// by the player until the match ends.
func (c *Client) RunREPL(ctx context.Context) error {
	enc := json.NewEncoder(c.conn)

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- c.readServer()
	}()

	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(c.in)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-serverDone:
			return err
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			switch strings.TrimSpace(strings.ToLower(line)) {
			case "":
				continue
			case "help", "?":
				fmt.Fprintln(c.out, helpText)
				continue
			case "q", "quit", "exit":
				return nil
			}
			msg, err := ParseCommand(line)
			if err != nil {
				fmt.Fprintln(c.out, err)
				continue
			}
			if err := enc.Encode(msg); err != nil {
				return fmt.Errorf("send command: %w", err)
			}
		}
	}
}

// readServer renders messages until game_over or the connection closes.
func (c *Client) readServer() error {
	dec := json.NewDecoder(c.conn)
	for {
		var msg ServerMessage
		if err := dec.Decode(&msg); err != nil {
			if errors.Is(err, io.EOF) {
				return errors.New("server closed the connection")
			}
			return fmt.Errorf("read message: %w", err)
		}

		switch msg.Type {
		case "welcome":
			c.matchID = msg.MatchID
			fmt.Fprintf(c.out, "Match %s with deck %q\n", msg.MatchID, msg.Deck)
		case "event":
			c.renderEvent(msg.Event)
		case "state":
			c.renderState(msg.State)
		case "error":
			fmt.Fprintf(c.out, "! %s\n", msg.Error)
		case "replay":
			c.saveReplay(msg.Replay)
		case "game_over":
			fmt.Fprintln(c.out)
			fmt.Fprintln(c.out, "═══════════════════════════════════")
			fmt.Fprintln(c.out, "          GAME OVER")
			fmt.Fprintln(c.out, "═══════════════════════════════════")
			fmt.Fprintln(c.out, msg.Result)
			fmt.Fprintln(c.out, "═══════════════════════════════════")
			return nil
		}
	}
}

func (c *Client) saveReplay(data json.RawMessage) {
	path := filepath.Join(c.ReplayDir, replay.Filename(c.matchID))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		fmt.Fprintf(c.out, "! could not save replay: %v\n", err)
		return
	}
	fmt.Fprintf(c.out, "Replay saved to %s\n", path)
}

func (c *Client) renderEvent(ev *EventView) {
	if ev == nil {
		return
	}
	fmt.Fprintln(c.out, log.FormatEvent(log.GameEvent{
		Round:   ev.Round,
		Turn:    ev.Turn,
		State:   ev.State,
		Details: ev.Details,
	}))
}

func (c *Client) renderState(sv *StateView) {
	if sv == nil || sv.Over {
		return
	}
	w := c.out

	fmt.Fprintln(w)
	fmt.Fprintln(w, "╔══════════════════════════════════════════════════════╗")
	opp := sv.Opponent
	fmt.Fprintf(w, "║  OPPONENT  Score: %d (round %d)  Rounds: %d  Energy: %d/%d  Hand: %d  Deck: %d\n",
		opp.TotalScore, opp.RoundScore, opp.RoundsWon, opp.Energy, opp.MaxEnergy, opp.HandCount, opp.DeckCount)
	fmt.Fprintln(w, "║──────────────────────────────────────────────────────")
	for _, t := range sv.History {
		fmt.Fprintf(w, "║  T%d  %-28s vs %-28s +%d / +%d\n",
			t.Turn, formatPlay(t.You), formatPlay(t.Opponent), t.YourPoints, t.OpponentPoints)
	}
	if len(sv.History) > 0 {
		fmt.Fprintln(w, "║──────────────────────────────────────────────────────")
	}
	you := sv.You
	fmt.Fprintf(w, "║  YOU       Score: %d (round %d)  Rounds: %d  Energy: %d/%d  Hand: %d  Deck: %d\n",
		you.TotalScore, you.RoundScore, you.RoundsWon, you.Energy, you.MaxEnergy, you.HandCount, you.DeckCount)
	fmt.Fprintln(w, "╚══════════════════════════════════════════════════════╝")

	info := fmt.Sprintf("Round %d/%d | Turn %d/%d | %s | %s rules", sv.Round, sv.Rounds, sv.Turn, sv.TurnsPerRound, sv.State, sv.RuleSet)
	switch {
	case sv.WaitingForDraw:
		info += " | type 'draw' to start the round"
	case sv.YourMove:
		info += " | Your move"
		if sv.Deadline > 0 {
			left := time.Until(time.UnixMilli(sv.Deadline)).Round(time.Second)
			info += fmt.Sprintf(" (%s left)", max(left, 0))
		}
	}
	fmt.Fprintln(w, info)

	if len(you.Hand) > 0 {
		fmt.Fprintln(w, "\nHand:")
		for _, cv := range you.Hand {
			mark := " "
			if cv.Selected {
				mark = "*"
			}
			fmt.Fprintf(w, " %s[%d] %-24s %-8s power %-2d cost %d\n", mark, cv.Index, cv.Name, cv.Type, cv.Power, cv.Cost)
		}
		if sv.SelectionCost > 0 {
			fmt.Fprintf(w, "Selection cost: %d\n", sv.SelectionCost)
		}
	}
}

func formatPlay(p PlayView) string {
	if p.Pass {
		return "PASS"
	}
	return strings.Join(p.Cards, " + ")
}
