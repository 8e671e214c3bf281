// Package session hosts one match for a frontend: it serializes access to
// the state machine, runs the turn timer and publishes updates.
package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/peterkuimelis/momentrivals/internal/ai"
	"github.com/peterkuimelis/momentrivals/internal/game"
	"github.com/peterkuimelis/momentrivals/internal/log"
	"github.com/peterkuimelis/momentrivals/internal/replay"
)

var ErrClosed = errors.New("session is closed")

// Options configures a new session.
type Options struct {
	Config       game.Config
	PlayerDeck   []*game.Card
	OpponentDeck []*game.Card // nil uses the default opponent deck
	Difficulty   ai.Difficulty
	Policy       game.Policy // overrides Difficulty when set
	ID           string
	PlayerID     string // recorded in the replay
	Clock        Clock
	Logger       log.EventLogger
	// Store receives the replay once the match ends.
	Store *replay.Store
}

// Update is published after every change to the match. Events holds only
// what was logged since the previous update; events logged while the match
// was created are available from Events.
type Update struct {
	Snapshot *game.Snapshot
	Events   []log.GameEvent
	Deadline time.Time // zero when no turn timer is running
}

type Session struct {
	mu       sync.Mutex
	match    *game.Match
	logger   log.EventLogger
	clock    Clock
	timeout  time.Duration
	opts     Options
	onUpdate func(Update)
	sent     int
	closed   bool
	archived bool

	// policySeed seeds the built-in AI; zero when Options.Policy was given.
	policySeed int64

	// Turn timer. gen is bumped whenever the timer is armed or cancelled;
	// a callback carrying an older gen does nothing.
	timer    Timer
	gen      uint64
	armedSeq int
	deadline time.Time
}

// New creates the match and arms the timer for the first action step.
func New(opts Options) (*Session, error) {
	if opts.Clock == nil {
		opts.Clock = RealClock{}
	}
	if opts.Logger == nil {
		opts.Logger = log.NewMemoryLogger()
	}
	cfg := opts.Config
	if cfg.Seed == 0 {
		cfg.Seed = opts.Clock.Now().UnixNano()
	}
	policy := opts.Policy
	var policySeed int64
	if policy == nil {
		policySeed = ai.PolicySeed(cfg.Seed, game.PlayerOpponent)
		p, err := ai.NewPolicy(opts.Difficulty, policySeed)
		if err != nil {
			return nil, err
		}
		policy = p
	}

	m, err := game.NewMatch(game.MatchConfig{
		Config:       cfg,
		PlayerDeck:   opts.PlayerDeck,
		OpponentDeck: opts.OpponentDeck,
		Policy:       policy,
		Logger:       opts.Logger,
		ID:           opts.ID,
		Now:          opts.Clock.Now,
	})
	if err != nil {
		return nil, fmt.Errorf("create match: %w", err)
	}

	s := &Session{
		match:      m,
		logger:     opts.Logger,
		clock:      opts.Clock,
		timeout:    cfg.TurnTimeout,
		opts:       opts,
		sent:       len(opts.Logger.Events()),
		policySeed: policySeed,
	}
	s.mu.Lock()
	s.syncTimer()
	s.mu.Unlock()
	return s, nil
}

func (s *Session) ID() string {
	return s.match.ID
}

func (s *Session) Difficulty() ai.Difficulty {
	return s.opts.Difficulty
}

// OnUpdate registers the update callback, replacing any previous one. The
// callback runs without the session lock held.
func (s *Session) OnUpdate(fn func(Update)) {
	s.mu.Lock()
	s.onUpdate = fn
	s.mu.Unlock()
}

// Apply runs one driver intent. A rejected intent returns the unchanged
// snapshot and the rejection error.
func (s *Session) Apply(in game.Intent) (*game.Snapshot, error) {
	return s.ApplyCommand(func(*game.Snapshot) (game.Intent, error) { return in, nil })
}

// ApplyCommand builds the intent from the current snapshot and runs it
// without releasing the lock in between, so a hand index resolved by
// resolve cannot be shifted by a timer auto-pass. An error from resolve is
// returned with the unchanged snapshot.
func (s *Session) ApplyCommand(resolve func(*game.Snapshot) (game.Intent, error)) (*game.Snapshot, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	snap := s.match.Snapshot()
	in, err := resolve(snap)
	if err != nil {
		s.mu.Unlock()
		return snap, err
	}
	snap, err = s.match.Apply(in)
	u, notify := s.changed()
	s.mu.Unlock()

	notify(u)
	return snap, err
}

func (s *Session) Snapshot() *game.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.match.Snapshot()
}

// View is what the human may know when choosing a play.
func (s *Session) View() game.DecisionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.match.PlayerView()
}

func (s *Session) Events() []log.GameEvent {
	return s.logger.Events()
}

// Deadline returns when the running turn timer expires, or zero.
func (s *Session) Deadline() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deadline
}

// Replay records the match as it stands.
func (s *Session) Replay() *replay.Replay {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.replay()
}

func (s *Session) replay() *replay.Replay {
	return replay.Create(s.match.Snapshot(), s.logger.Events(), replay.Options{
		PlayerID:   s.opts.PlayerID,
		Difficulty: s.opts.Difficulty.String(),
		PolicySeed: s.policySeed,
		Now:        s.clock.Now,
	})
}

// Close cancels the turn timer. Later intents fail with ErrClosed.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.cancelTimer()
}

// changed re-evaluates the timer, archives a finished match and builds the
// update to publish. Called with s.mu held.
func (s *Session) changed() (Update, func(Update)) {
	s.syncTimer()
	if s.match.Over() && !s.archived {
		s.archived = true
		if s.opts.Store != nil {
			s.opts.Store.Put(s.replay())
		}
	}

	events := s.logger.Events()
	fresh := events[min(s.sent, len(events)):]
	s.sent = len(events)
	u := Update{
		Snapshot: s.match.Snapshot(),
		Events:   fresh,
		Deadline: s.deadline,
	}
	fn := s.onUpdate
	if fn == nil {
		fn = func(Update) {}
	}
	return u, fn
}

// awaitingHuman reports whether the human is in the action step with
// nothing locked.
func (s *Session) awaitingHuman() bool {
	m := s.match
	return !m.Over() && m.State == game.StateAction && m.Players[game.PlayerHuman].Locked == nil
}

// syncTimer arms the timer once per action step and cancels it when the
// match leaves the action step. Called with s.mu held.
func (s *Session) syncTimer() {
	if s.closed || !s.awaitingHuman() {
		s.cancelTimer()
		return
	}
	if s.timer != nil && s.armedSeq == s.match.ActionSeq {
		return
	}
	s.cancelTimer()
	if s.timeout <= 0 {
		return
	}
	gen := s.gen
	s.armedSeq = s.match.ActionSeq
	s.deadline = s.clock.Now().Add(s.timeout)
	s.timer = s.clock.AfterFunc(s.timeout, func() { s.expire(gen) })
}

func (s *Session) cancelTimer() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.gen++
	s.deadline = time.Time{}
}

// expire is the timer callback. It auto-passes only if the timer that
// fired is still the armed one.
func (s *Session) expire(gen uint64) {
	s.mu.Lock()
	if s.closed || gen != s.gen || !s.awaitingHuman() {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	s.match.AutoPass()
	u, notify := s.changed()
	s.mu.Unlock()

	notify(u)
}
