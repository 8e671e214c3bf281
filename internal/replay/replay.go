// Package replay records finished matches as versioned JSON documents.
package replay

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/peterkuimelis/momentrivals/internal/game"
	"github.com/peterkuimelis/momentrivals/internal/log"
)

// Version is written into every replay.
const Version = "1.0"

// Card is the replay form of a card: identity, type, cost and stats only.
type Card struct {
	ID         string `json:"id"`
	MomentID   string `json:"momentId,omitempty"`
	PlayerName string `json:"playerName"`
	CardType   string `json:"cardType"`
	EnergyCost int    `json:"energyCost"`
	Offense    int    `json:"offense"`
	Defense    int    `json:"defense"`
	Speed      int    `json:"speed"`
	Agility    int    `json:"agility"`
	Power      int    `json:"power"`
}

// Play is a revealed play. Type is PASS or the main card's type.
type Play struct {
	Type  string `json:"type"`
	Cards []Card `json:"cards,omitempty"`
}

type Turn struct {
	TurnNumber     int   `json:"turnNumber"`
	PlayerPlay     *Play `json:"playerPlay"`
	OpponentPlay   *Play `json:"opponentPlay"`
	PlayerPoints   int   `json:"playerPoints"`
	OpponentPoints int   `json:"opponentPoints"`
	// Resolved is false for a deferred turn the match ended before scoring.
	Resolved bool `json:"resolved"`
}

type Round struct {
	RoundNumber int        `json:"roundNumber"`
	FinalScore  game.Score `json:"finalScore"`
	Winner      string     `json:"winner"`
	Turns       []Turn     `json:"turns"`
}

// Side is one player's record.
type Side struct {
	ID         string `json:"id"`
	Deck       []Card `json:"deck"`
	FinalScore int    `json:"finalScore"`
	RoundsWon  int    `json:"roundsWon"`
}

type Players struct {
	Player   *Side `json:"player"`
	Opponent *Side `json:"opponent"`
}

type Metadata struct {
	RuleSet    string `json:"ruleSet"`
	Seed       int64  `json:"seed"`
	PolicySeed int64  `json:"policySeed,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`
	Reason     string `json:"reason,omitempty"`
	TotalTurns int    `json:"totalTurns"`
	Timestamp  string `json:"timestamp"`
}

// Replay is the exported record of a match.
type Replay struct {
	Version   string          `json:"version"`
	MatchID   string          `json:"matchId"`
	StartTime int64           `json:"startTime"` // unix milliseconds
	EndTime   int64           `json:"endTime"`
	Duration  int64           `json:"duration"` // milliseconds
	Config    game.Config     `json:"config"`
	Players   Players         `json:"players"`
	Winner    string          `json:"winner"`
	Rounds    []Round         `json:"rounds"`
	Events    []log.GameEvent `json:"events"`
	Metadata  Metadata        `json:"metadata"`
}

// Options carries the details a snapshot does not know about.
type Options struct {
	PlayerID   string
	OpponentID string
	Difficulty string
	// PolicySeed is the seed the opponent policy was built with, if known.
	PolicySeed int64
	// Now stamps unfinished matches and the metadata timestamp.
	Now func() time.Time
}

// Create builds a replay from a match snapshot and its event log. Only
// turns with both plays stored are included; a deferred turn cut short by
// the end of the match is kept with Resolved false and no points.
func Create(snap *game.Snapshot, events []log.GameEvent, opts Options) *Replay {
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	end := snap.EndedAt
	if end.IsZero() {
		end = now()
	}
	if opts.PlayerID == "" {
		opts.PlayerID = "player"
	}
	if opts.OpponentID == "" {
		opts.OpponentID = "ai"
	}

	r := &Replay{
		Version:   Version,
		MatchID:   snap.ID,
		StartTime: snap.StartedAt.UnixMilli(),
		EndTime:   end.UnixMilli(),
		Duration:  end.Sub(snap.StartedAt).Milliseconds(),
		Config:    snap.Config,
		Players: Players{
			Player:   side(opts.PlayerID, snap.Player(), pending(snap, game.PlayerHuman)),
			Opponent: side(opts.OpponentID, snap.Opponent(), pending(snap, game.PlayerOpponent)),
		},
		Winner: snap.Winner.String(),
		Rounds: make([]Round, 0, len(snap.Rounds)),
		Events: append([]log.GameEvent(nil), events...),
		Metadata: Metadata{
			RuleSet:    snap.RuleSet.String(),
			Seed:       snap.Seed,
			PolicySeed: opts.PolicySeed,
			Difficulty: opts.Difficulty,
			Reason:     snap.Reason,
			TotalTurns: snap.TotalTurns(),
			Timestamp:  now().UTC().Format(time.RFC3339),
		},
	}
	for _, round := range snap.Rounds {
		rr := Round{
			RoundNumber: round.Number,
			FinalScore:  round.FinalScore,
			Winner:      round.Winner.String(),
			Turns:       []Turn{},
		}
		for _, t := range round.Turns {
			if !t.Revealed() {
				continue
			}
			rr.Turns = append(rr.Turns, Turn{
				TurnNumber:     t.Number,
				PlayerPlay:     simplifyPlay(*t.PlayerPlay),
				OpponentPlay:   simplifyPlay(*t.OpponentPlay),
				PlayerPoints:   t.PlayerPoints,
				OpponentPoints: t.OpponentPoints,
				Resolved:       t.Resolved,
			})
		}
		if len(rr.Turns) > 0 || round.Winner != game.OutcomeNone {
			r.Rounds = append(r.Rounds, rr)
		}
	}
	return r
}

// pending returns the cards one side locked into turns that were revealed
// but never scored. They sit in no zone until scoring moves them.
func pending(snap *game.Snapshot, p int) []*game.Card {
	var cards []*game.Card
	for _, round := range snap.Rounds {
		for _, t := range round.Turns {
			if !t.Revealed() || t.Resolved {
				continue
			}
			if p == game.PlayerHuman {
				cards = append(cards, t.PlayerPlay.Cards()...)
			} else {
				cards = append(cards, t.OpponentPlay.Cards()...)
			}
		}
	}
	return cards
}

func side(id string, p *game.PlayerState, unscored []*game.Card) *Side {
	s := &Side{ID: id, FinalScore: p.TotalScore, RoundsWon: p.RoundsWon}
	for _, zone := range [][]*game.Card{p.Deck, p.Hand, p.Graveyard, unscored} {
		for _, c := range zone {
			s.Deck = append(s.Deck, simplifyCard(c))
		}
	}
	return s
}

func simplifyCard(c *game.Card) Card {
	return Card{
		ID:         c.ID,
		MomentID:   c.MomentID,
		PlayerName: c.Name,
		CardType:   c.Type.String(),
		EnergyCost: c.Cost,
		Offense:    c.Offense,
		Defense:    c.Defense,
		Speed:      c.Speed,
		Agility:    c.Agility,
		Power:      c.Power,
	}
}

func simplifyPlay(p game.Play) *Play {
	if p.IsPass() {
		return &Play{Type: "PASS"}
	}
	out := &Play{Type: p.Main.Type.String()}
	for _, c := range p.Cards() {
		out.Cards = append(out.Cards, simplifyCard(c))
	}
	return out
}

// Marshal encodes a replay as indented JSON.
func Marshal(r *Replay) ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// Export writes a replay as indented JSON.
func Export(w io.Writer, r *Replay) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// Filename is the suggested download name for a replay.
func Filename(matchID string) string {
	return fmt.Sprintf("moment-rivals-replay-%s.json", matchID)
}

// Import validates and decodes a replay document.
func Import(data []byte) (*Replay, error) {
	if res := Validate(data); !res.Valid {
		return nil, fmt.Errorf("invalid replay: %s", strings.Join(res.Errors, "; "))
	}
	var r Replay
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode replay: %w", err)
	}
	return &r, nil
}

// Validate checks the fields every replay must carry without decoding the
// rest, so documents from other versions can still be inspected.
func Validate(data []byte) game.ValidationResult {
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return game.ValidationResult{Errors: []string{fmt.Sprintf("Invalid JSON: %v", err)}}
	}
	errs := []string{}
	if v, _ := doc["version"].(string); v == "" {
		errs = append(errs, "Missing version")
	}
	if id, _ := doc["matchId"].(string); id == "" {
		errs = append(errs, "Missing matchId")
	}
	players, _ := doc["players"].(map[string]any)
	player, _ := players["player"].(map[string]any)
	opponent, _ := players["opponent"].(map[string]any)
	if player == nil || opponent == nil {
		errs = append(errs, "Invalid players data")
	}
	if _, ok := doc["rounds"].([]any); !ok {
		errs = append(errs, "Invalid rounds data")
	}
	return game.ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

// Summary is a one-line overview of a replay.
type Summary struct {
	MatchID    string `json:"matchId"`
	Duration   string `json:"duration"`
	Winner     string `json:"winner"`
	FinalScore string `json:"finalScore"`
	RoundsWon  string `json:"roundsWon"`
	TotalTurns int    `json:"totalTurns"`
	Date       string `json:"date"`
}

// Summarize condenses a replay for listings.
func Summarize(r *Replay) Summary {
	s := Summary{
		MatchID:  r.MatchID,
		Duration: FormatDuration(r.Duration),
		Winner:   r.Winner,
		Date:     r.Metadata.Timestamp,
	}
	if s.Date == "" {
		s.Date = "Unknown"
	}
	if p, o := r.Players.Player, r.Players.Opponent; p != nil && o != nil {
		s.FinalScore = fmt.Sprintf("%d - %d", p.FinalScore, o.FinalScore)
		s.RoundsWon = fmt.Sprintf("%d - %d", p.RoundsWon, o.RoundsWon)
	}
	for _, round := range r.Rounds {
		s.TotalTurns += len(round.Turns)
	}
	return s
}

// FormatDuration renders milliseconds as "Xm Ys", or "Xs" under a minute.
func FormatDuration(ms int64) string {
	seconds := ms / 1000
	minutes := seconds / 60
	if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds%60)
	}
	return fmt.Sprintf("%ds", seconds)
}

// Format renders a replay as readable text: the header, each round's turns
// and the event log.
func Format(r *Replay) string {
	var sb strings.Builder
	s := Summarize(r)
	fmt.Fprintf(&sb, "Match %s (%s rules, seed %d)\n", r.MatchID, r.Metadata.RuleSet, r.Metadata.Seed)
	fmt.Fprintf(&sb, "Winner: %s  Score: %s  Rounds: %s  Duration: %s\n", s.Winner, s.FinalScore, s.RoundsWon, s.Duration)
	for _, round := range r.Rounds {
		fmt.Fprintf(&sb, "\nRound %d (%s, %d - %d)\n", round.RoundNumber, round.Winner, round.FinalScore.Player, round.FinalScore.Opponent)
		for _, t := range round.Turns {
			points := fmt.Sprintf("%d - %d", t.PlayerPoints, t.OpponentPoints)
			if !t.Resolved {
				points = "unscored"
			}
			fmt.Fprintf(&sb, "  T%d  %-40s %-40s %s\n", t.TurnNumber, describe(t.PlayerPlay), describe(t.OpponentPlay), points)
		}
	}
	if len(r.Events) > 0 {
		sb.WriteString("\nEvents:\n")
		sb.WriteString(log.FormatAll(r.Events))
	}
	return sb.String()
}

func describe(p *Play) string {
	if p == nil {
		return "-"
	}
	if len(p.Cards) == 0 {
		return p.Type
	}
	names := make([]string, len(p.Cards))
	for i, c := range p.Cards {
		names[i] = fmt.Sprintf("%s (%d)", c.PlayerName, c.Power)
	}
	return strings.Join(names, " + ")
}
