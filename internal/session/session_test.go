package session

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peterkuimelis/momentrivals/internal/ai"
	"github.com/peterkuimelis/momentrivals/internal/game"
	"github.com/peterkuimelis/momentrivals/internal/log"
	"github.com/peterkuimelis/momentrivals/internal/replay"
)

var start = time.Date(2026, 5, 1, 20, 0, 0, 0, time.UTC)

func newTestSession(t *testing.T, mutate func(*Options)) (*Session, *FakeClock) {
	t.Helper()
	clock := NewFakeClock(start)
	cfg := game.DefaultConfig()
	cfg.Seed = 7
	cfg.TurnTimeout = time.Minute
	opts := Options{
		Config:     cfg,
		PlayerDeck: game.DefaultOpponentDeck(),
		Difficulty: ai.DifficultyBaseline,
		ID:         "session-test",
		Clock:      clock,
	}
	if mutate != nil {
		mutate(&opts)
	}
	s, err := New(opts)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s, clock
}

func countType(events []log.GameEvent, typ log.EventType) int {
	n := 0
	for _, e := range events {
		if e.Type == typ {
			n++
		}
	}
	return n
}

func pass(t *testing.T, s *Session) *game.Snapshot {
	t.Helper()
	snap, err := s.Apply(game.Intent{Kind: game.IntentPass})
	require.NoError(t, err)
	return snap
}

func TestTimerArmedOnFirstAction(t *testing.T) {
	s, clock := newTestSession(t, nil)

	assert.Equal(t, 1, clock.Pending())
	assert.Equal(t, start.Add(time.Minute), s.Deadline())
	assert.True(t, s.Snapshot().AwaitingAction())
}

func TestTimerExpiryAutoPasses(t *testing.T) {
	s, clock := newTestSession(t, nil)

	clock.Advance(59 * time.Second)
	assert.Equal(t, 0, countType(s.Events(), log.EventAutoPass))

	clock.Advance(time.Second)
	assert.Equal(t, 1, countType(s.Events(), log.EventAutoPass))

	snap := s.Snapshot()
	assert.Equal(t, 2, snap.Turn)
	require.NotNil(t, snap.Rounds[0].Turns[0].PlayerPlay)
	assert.True(t, snap.Rounds[0].Turns[0].PlayerPlay.IsPass())

	// The next action step gets a fresh timer.
	assert.Equal(t, 1, clock.Pending())
	assert.Equal(t, start.Add(2*time.Minute), s.Deadline())
}

func TestLockInCancelsTimer(t *testing.T) {
	s, clock := newTestSession(t, nil)
	stale := s.gen

	clock.Advance(30 * time.Second)
	pass(t, s)

	assert.Equal(t, 1, clock.Pending(), "only the next turn's timer remains")
	assert.Equal(t, start.Add(90*time.Second), s.Deadline())

	// A callback from the cancelled timer that fires late changes nothing.
	before := len(s.Events())
	s.expire(stale)
	assert.Len(t, s.Events(), before)
	assert.Equal(t, 0, countType(s.Events(), log.EventAutoPass))
}

func TestRejectedIntentKeepsTimer(t *testing.T) {
	s, clock := newTestSession(t, nil)
	deadline := s.Deadline()

	_, err := s.Apply(game.Intent{Kind: game.IntentSelect, CardID: "no-such-card"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, game.ErrNotInHand))

	assert.Equal(t, 1, clock.Pending())
	assert.Equal(t, deadline, s.Deadline())
	assert.Equal(t, 1, countType(s.Events(), log.EventRejected))
}

func TestNoTimerWhileWaitingForDraw(t *testing.T) {
	s, clock := newTestSession(t, nil)

	var snap *game.Snapshot
	for i := 0; i < 3; i++ {
		snap = pass(t, s)
	}
	require.Equal(t, 2, snap.Round)
	require.True(t, snap.WaitingForDraw)
	assert.Equal(t, 0, clock.Pending())
	assert.True(t, s.Deadline().IsZero())

	// Time passing at the draw gate does nothing.
	clock.Advance(10 * time.Minute)
	assert.Equal(t, 0, countType(s.Events(), log.EventAutoPass))

	snap, err := s.Apply(game.Intent{Kind: game.IntentDraw})
	require.NoError(t, err)
	assert.True(t, snap.AwaitingAction())
	assert.Equal(t, 1, clock.Pending())
}

func TestForfeitCancelsTimer(t *testing.T) {
	s, clock := newTestSession(t, nil)

	snap, err := s.Apply(game.Intent{Kind: game.IntentForfeit})
	require.NoError(t, err)
	assert.True(t, snap.Over())
	assert.Equal(t, game.OutcomeOpponent, snap.Winner)
	assert.Equal(t, 0, clock.Pending())

	_, err = s.Apply(game.Intent{Kind: game.IntentForfeit})
	assert.True(t, errors.Is(err, game.ErrMatchOver))
}

func TestCloseCancelsTimer(t *testing.T) {
	s, clock := newTestSession(t, nil)
	s.Close()

	assert.Equal(t, 0, clock.Pending())
	_, err := s.Apply(game.Intent{Kind: game.IntentPass})
	assert.ErrorIs(t, err, ErrClosed)

	s.Close()
}

func TestZeroTimeoutDisablesTimer(t *testing.T) {
	s, clock := newTestSession(t, func(o *Options) { o.Config.TurnTimeout = 0 })

	assert.Equal(t, 0, clock.Pending())
	pass(t, s)
	assert.Equal(t, 0, clock.Pending())
	assert.True(t, s.Deadline().IsZero())
}

func TestUpdatesCarryNewEvents(t *testing.T) {
	s, clock := newTestSession(t, nil)
	initial := len(s.Events())

	var mu sync.Mutex
	var updates []Update
	s.OnUpdate(func(u Update) {
		mu.Lock()
		updates = append(updates, u)
		mu.Unlock()
	})

	pass(t, s)
	clock.Advance(time.Minute)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, updates, 2)

	var seen []log.GameEvent
	for _, u := range updates {
		assert.NotEmpty(t, u.Events)
		seen = append(seen, u.Events...)
	}
	all := s.Events()
	assert.Equal(t, all, append(append([]log.GameEvent(nil), all[:initial]...), seen...))
	assert.Equal(t, 1, countType(updates[0].Events, log.EventPass))
	assert.Equal(t, 0, countType(updates[0].Events, log.EventAutoPass))
	assert.Equal(t, 1, countType(updates[1].Events, log.EventAutoPass))
	assert.False(t, updates[1].Deadline.IsZero())
}

func TestFinishedMatchIsStored(t *testing.T) {
	store := replay.NewStore(0)
	s, _ := newTestSession(t, func(o *Options) {
		o.Store = store
		o.PlayerID = "alice"
		o.Difficulty = ai.DifficultyHard
	})

	for !s.Snapshot().Over() {
		snap := s.Snapshot()
		intent := game.Intent{Kind: game.IntentPass}
		if snap.WaitingForDraw {
			intent = game.Intent{Kind: game.IntentDraw}
		}
		_, err := s.Apply(intent)
		require.NoError(t, err)
	}

	require.Equal(t, 1, store.Len())
	r, ok := store.Get("session-test")
	require.True(t, ok)
	assert.Equal(t, "alice", r.Players.Player.ID)
	assert.Equal(t, "hard", r.Metadata.Difficulty)
	assert.Equal(t, 12, r.Metadata.TotalTurns)
	assert.Equal(t, s.Snapshot().Winner.String(), r.Winner)
}

func TestNewRejectsBadConfig(t *testing.T) {
	cfg := game.DefaultConfig()
	cfg.Rounds = 0
	_, err := New(Options{Config: cfg, PlayerDeck: game.DefaultOpponentDeck(), Clock: NewFakeClock(start)})
	assert.Error(t, err)

	_, err = New(Options{Config: game.DefaultConfig(), PlayerDeck: game.DefaultOpponentDeck(), Difficulty: ai.Difficulty(42)})
	assert.Error(t, err)
}

func TestPolicyHasItsOwnSeed(t *testing.T) {
	s, _ := newTestSession(t, nil)

	r := s.Replay()
	assert.Equal(t, int64(7), r.Metadata.Seed)
	assert.Equal(t, ai.PolicySeed(7, game.PlayerOpponent), r.Metadata.PolicySeed)
	assert.NotEqual(t, game.NewSeededRandom(7).State(), game.NewSeededRandom(r.Metadata.PolicySeed).State())

	custom, _ := newTestSession(t, func(o *Options) { o.Policy = ai.NewBaseline(1) })
	assert.Zero(t, custom.Replay().Metadata.PolicySeed)
}

func TestTimerWaitsForCommandResolution(t *testing.T) {
	s, clock := newTestSession(t, nil)

	started := make(chan struct{})
	fired := make(chan struct{})
	var chosen string
	_, err := s.ApplyCommand(func(snap *game.Snapshot) (game.Intent, error) {
		go func() {
			close(started)
			clock.Advance(time.Minute)
			close(fired)
		}()
		<-started
		select {
		case <-fired:
			t.Error("turn timer ran while a command was being resolved")
		case <-time.After(20 * time.Millisecond):
		}
		p := snap.Player()
		for _, c := range p.Hand {
			if c.Type.IsMain() && c.Cost <= p.Energy {
				chosen = c.Name
				return game.Intent{Kind: game.IntentSelect, CardID: c.ID}, nil
			}
		}
		return game.Intent{}, errors.New("no affordable main card")
	})
	require.NoError(t, err)
	<-fired

	events := s.Events()
	selectAt, autoPassAt := -1, -1
	for i, e := range events {
		switch e.Type {
		case log.EventSelect:
			selectAt = i
			assert.Contains(t, e.Details, chosen)
		case log.EventAutoPass:
			autoPassAt = i
		}
	}
	require.NotEqual(t, -1, selectAt)
	require.NotEqual(t, -1, autoPassAt)
	assert.Less(t, selectAt, autoPassAt)
}

func TestApplyCommandResolveError(t *testing.T) {
	s, clock := newTestSession(t, nil)
	before := len(s.Events())

	snap, err := s.ApplyCommand(func(*game.Snapshot) (game.Intent, error) {
		return game.Intent{}, errors.New("card index must be between 1 and 7")
	})
	require.Error(t, err)
	require.NotNil(t, snap)
	assert.Len(t, s.Events(), before)
	assert.Equal(t, 1, clock.Pending())
}
