package game

import (
	"errors"
	"testing"

	"github.com/peterkuimelis/momentrivals/internal/log"
)

func TestOpeningHandAndFirstDraw(t *testing.T) {
	cfg := testConfig()
	m, logger := newTestMatch(t, cfg, makePaddedDeck("p", nil, 25), nil, NewScriptedPolicy(t))

	if m.State != StateAction || m.Round != 1 || m.Turn != 1 {
		t.Fatalf("expected ACTION at R1 T1, got %s at R%d T%d", m.State, m.Round, m.Turn)
	}
	for i, p := range m.Players {
		// Seven dealt plus the turn-one draw overflows by one.
		if p.HandCount() != cfg.MaxHandSize {
			t.Errorf("player %d: expected %d cards in hand, got %d", i, cfg.MaxHandSize, p.HandCount())
		}
		if p.DeckCount() != 25-8 {
			t.Errorf("player %d: expected 17 cards in deck, got %d", i, p.DeckCount())
		}
		if len(p.Graveyard) != 1 {
			t.Errorf("player %d: expected 1 overflow discard, got %d", i, len(p.Graveyard))
		}
		if p.Energy != cfg.StartingEnergy || p.MaxEnergy != cfg.StartingEnergy {
			t.Errorf("player %d: expected energy %d/%d, got %d/%d", i, cfg.StartingEnergy, cfg.StartingEnergy, p.Energy, p.MaxEnergy)
		}
	}
	if got := m.Players[PlayerHuman].Graveyard[0].ID; got != "p_filler_0" {
		t.Errorf("expected oldest card p_filler_0 discarded, got %s", got)
	}
	if n := len(logger.EventsOfType(log.EventHandOverflow)); n != 2 {
		t.Errorf("expected 2 hand overflow events, got %d", n)
	}
	if m.ActionSeq != 1 {
		t.Errorf("expected action sequence 1, got %d", m.ActionSeq)
	}
	for _, e := range logger.EventsOfType(log.EventHandOverflow) {
		if e.Player == PlayerOpponent && e.Card != "a card" {
			t.Errorf("opponent discard leaked card name %q", e.Card)
		}
	}
}

func TestOffenseBeatsDefenseOnTurnOne(t *testing.T) {
	cfg := testConfig()
	playerDeck := makePaddedDeck("p", []*Card{
		offenseCard("h_first", 1, 1),
		offenseCard("h_star", 5, 2),
	}, 25)
	oppDeck := makePaddedDeck("o", []*Card{
		offenseCard("o_first", 1, 1),
		defenseCard("o_wall", 3, 1),
	}, 25)
	policy := NewScriptedPolicy(t).AddPlay("o_wall", "")
	m, logger := newTestMatch(t, cfg, playerDeck, oppDeck, policy)

	snap, err := m.SelectCard("h_star")
	mustOK(t, logger, snap, err)
	snap, err = m.PlayCard()
	mustOK(t, logger, snap, err)
	t.Logf("Event log:\n%s", log.FormatAll(logger.Events()))

	turn := snap.Rounds[0].Turns[0]
	if !turn.Resolved || turn.PlayerPoints != 2 || turn.OpponentPoints != 0 {
		t.Fatalf("expected resolved turn scoring 2-0, got %+v", turn)
	}
	if snap.Player().TotalScore != 2 || snap.Opponent().TotalScore != 0 {
		t.Errorf("expected totals 2-0, got %d-%d", snap.Player().TotalScore, snap.Opponent().TotalScore)
	}
	if !containsCard(snap.Player().Graveyard, "h_star") {
		t.Error("h_star should be in the player graveyard")
	}
	if !containsCard(snap.Opponent().Graveyard, "o_wall") {
		t.Error("o_wall should be in the opponent graveyard")
	}
	if snap.Turn != 2 || snap.State != StateAction {
		t.Errorf("expected ACTION on turn 2, got %s on turn %d", snap.State, snap.Turn)
	}

	// Energy after lock-in was 1 (player) and 2 (opponent); turn 2 refills to 3.
	want := map[int]string{
		PlayerHuman:    "Player energy: 3 (+2)",
		PlayerOpponent: "Opponent energy: 3 (+1)",
	}
	for _, e := range logger.EventsOfType(log.EventEnergyRefresh) {
		if e.Turn == 2 && e.Details != want[e.Player] {
			t.Errorf("turn 2 refresh: expected %q, got %q", want[e.Player], e.Details)
		}
	}

	if len(policy.views) != 1 {
		t.Fatalf("expected 1 policy call, got %d", len(policy.views))
	}
	view := policy.views[0]
	if view.Energy != 3 || len(view.RivalHistory) != 0 {
		t.Errorf("unexpected first decision view: energy %d, history %d", view.Energy, len(view.RivalHistory))
	}
}

func TestPassWithFullHandDiscardsOldest(t *testing.T) {
	cfg := testConfig()
	m, logger := newTestMatch(t, cfg, makePaddedDeck("p", nil, 25), nil, NewScriptedPolicy(t))

	oldest := m.Players[PlayerHuman].Hand[0].ID
	snap, err := m.SelectPass()
	mustOK(t, logger, snap, err)

	if !containsCard(snap.Player().Graveyard, oldest) {
		t.Errorf("expected %s discarded on pass", oldest)
	}
	// 6 after the discard, back to 7 after the turn-two draw.
	if snap.Player().HandCount() != cfg.MaxHandSize {
		t.Errorf("expected %d cards in hand, got %d", cfg.MaxHandSize, snap.Player().HandCount())
	}
	if n := len(logger.EventsOfType(log.EventPassDiscard)); n != 2 {
		t.Errorf("expected both sides to discard on pass, got %d events", n)
	}
	turn := snap.Rounds[0].Turns[0]
	if !turn.PlayerPlay.IsPass() || !turn.OpponentPlay.IsPass() {
		t.Errorf("expected two passes, got %s vs %s", turn.PlayerPlay, turn.OpponentPlay)
	}
	if turn.PlayerPoints != 0 || turn.OpponentPoints != 0 {
		t.Errorf("double pass should score 0-0, got %d-%d", turn.PlayerPoints, turn.OpponentPoints)
	}
}

func TestEvenTurnRevealIsDeferred(t *testing.T) {
	cfg := testConfig()
	playerDeck := makePaddedDeck("p", []*Card{
		offenseCard("h_first", 1, 1),
		offenseCard("a", 3, 1),
		offenseCard("b", 4, 1),
		offenseCard("c", 2, 1),
	}, 25)
	policy := NewScriptedPolicy(t)
	m, logger := newTestMatch(t, cfg, playerDeck, nil, policy)

	for _, id := range []string{"a", "b"} {
		snap, err := m.SelectCard(id)
		mustOK(t, logger, snap, err)
		snap, err = m.PlayCard()
		mustOK(t, logger, snap, err)
	}

	snap := m.Snapshot()
	turn2 := snap.Rounds[0].Turns[1]
	if !turn2.Revealed() {
		t.Fatal("turn 2 plays should be stored")
	}
	if turn2.Resolved || turn2.PlayerPoints != 0 {
		t.Fatalf("turn 2 must not be scored on turn 2, got %+v", turn2)
	}
	if snap.Player().TotalScore != 3 {
		t.Errorf("expected only turn 1 scored (3), got %d", snap.Player().TotalScore)
	}
	if n := len(logger.EventsOfType(log.EventDeferred)); n != 1 {
		t.Errorf("expected 1 deferred event, got %d", n)
	}

	snap, err := m.SelectCard("c")
	mustOK(t, logger, snap, err)
	snap, err = m.PlayCard()
	mustOK(t, logger, snap, err)
	t.Logf("Event log:\n%s", log.FormatAll(logger.Events()))

	round := snap.Rounds[0]
	wantPoints := []int{3, 4, 2}
	for i, turn := range round.Turns {
		if !turn.Resolved || turn.PlayerPoints != wantPoints[i] {
			t.Errorf("turn %d: expected resolved with %d points, got %+v", i+1, wantPoints[i], turn)
		}
	}
	var scoredTurns []int
	for _, e := range logger.EventsOfType(log.EventScore) {
		scoredTurns = append(scoredTurns, e.Turn)
	}
	if len(scoredTurns) != 3 || scoredTurns[0] != 1 || scoredTurns[1] != 2 || scoredTurns[2] != 3 {
		t.Errorf("expected turns scored in order 1,2,3, got %v", scoredTurns)
	}
	if round.Winner != OutcomePlayer || round.FinalScore.Player != 9 {
		t.Errorf("expected round won by player 9-0, got %s %+v", round.Winner, round.FinalScore)
	}

	// The turn-3 decision only saw the turn-1 play.
	if len(policy.views) != 3 || len(policy.views[2].RivalHistory) != 1 {
		t.Errorf("opponent should only see revealed plays, views=%d", len(policy.views))
	}
}

func TestSelectionRules(t *testing.T) {
	cfg := testConfig()
	playerDeck := makePaddedDeck("p", []*Card{
		offenseCard("h_first", 1, 1),
		offenseCard("o1", 5, 2),
		offenseCard("o2", 4, 2),
		supportCard("s1", 2, 1),
		supportCard("s2", 3, 2),
		defenseCard("d1", 3, 1),
		offenseCard("big", 9, 4),
	}, 25)
	m, logger := newTestMatch(t, cfg, playerDeck, nil, NewScriptedPolicy(t))

	expectErr := func(want error, snap *Snapshot, err error) {
		t.Helper()
		if !errors.Is(err, want) {
			t.Fatalf("expected %v, got %v", want, err)
		}
		if snap.State != StateAction {
			t.Fatalf("rejection changed state to %s", snap.State)
		}
	}

	snap, err := m.SelectCard("s1")
	expectErr(ErrNeedsMain, snap, err)
	snap, err = m.SelectCard("big")
	expectErr(ErrInsufficientEnergy, snap, err)
	snap, err = m.SelectCard("nope")
	expectErr(ErrNotInHand, snap, err)
	snap, err = m.PlayCard()
	expectErr(ErrNoSelection, snap, err)

	snap, err = m.SelectCard("o1")
	mustOK(t, logger, snap, err)
	snap, err = m.SelectCard("o2")
	mustOK(t, logger, snap, err)
	if snap.Player().Selected.Main.ID != "o2" {
		t.Fatalf("selecting a second main should replace the first, got %s", snap.Player().Selected.Main.ID)
	}

	snap, err = m.SelectCard("s1")
	mustOK(t, logger, snap, err)
	snap, err = m.SelectCard("s2")
	expectErr(ErrInsufficientEnergy, snap, err)
	if snap.Player().Selected.Support.ID != "s1" {
		t.Fatal("rejected support must leave the selection unchanged")
	}

	// Selecting a selected card toggles it off.
	snap, err = m.SelectCard("s1")
	mustOK(t, logger, snap, err)
	if snap.Player().Selected.Support != nil {
		t.Fatal("expected support deselected")
	}

	snap, err = m.SelectCard("s1")
	mustOK(t, logger, snap, err)
	snap, err = m.DeselectCard("o2")
	mustOK(t, logger, snap, err)
	if !snap.Player().Selected.Empty() {
		t.Fatal("deselecting the main card should drop the support too")
	}
	snap, err = m.DeselectCard("o1")
	expectErr(ErrNotSelected, snap, err)

	// Defense with support is legal under power/momentum.
	snap, err = m.SelectCard("d1")
	mustOK(t, logger, snap, err)
	snap, err = m.SelectCard("s1")
	mustOK(t, logger, snap, err)
	snap, err = m.PlayCard()
	mustOK(t, logger, snap, err)
	if got := snap.Rounds[0].Turns[0].PlayerPlay; got.Main.ID != "d1" || got.Support.ID != "s1" {
		t.Errorf("expected d1 + s1 locked, got %s", got)
	}

	if n := len(logger.EventsOfType(log.EventRejected)); n != 6 {
		t.Errorf("expected 6 rejected events, got %d", n)
	}
}

func TestClassicRejectsDefenseWithSupport(t *testing.T) {
	cfg := ClassicConfig()
	cfg.NoShuffle = true
	cfg.Seed = 42
	playerDeck := makePaddedDeck("p", []*Card{
		offenseCard("h_first", 1, 1),
		defenseCard("d1", 3, 1),
		supportCard("s1", 2, 1),
	}, 25)
	m, logger := newTestMatch(t, cfg, playerDeck, nil, NewScriptedPolicy(t))

	snap, err := m.SelectCard("d1")
	mustOK(t, logger, snap, err)
	_, err = m.SelectCard("s1")
	if !errors.Is(err, ErrInvalidCombo) {
		t.Fatalf("expected ErrInvalidCombo, got %v", err)
	}
}

func TestClassicDefenseMainReleasesSupport(t *testing.T) {
	cfg := ClassicConfig()
	cfg.NoShuffle = true
	cfg.Seed = 42
	playerDeck := makePaddedDeck("p", []*Card{
		offenseCard("h_first", 1, 1),
		defenseCard("d1", 3, 1),
		supportCard("s1", 2, 1),
	}, 25)
	m, logger := newTestMatch(t, cfg, playerDeck, nil, NewScriptedPolicy(t))

	// h_first is discarded by the opening overflow; p_filler_0 is in hand.
	snap, err := m.SelectCard("p_filler_0")
	mustOK(t, logger, snap, err)
	snap, err = m.SelectCard("s1")
	mustOK(t, logger, snap, err)

	snap, err = m.SelectCard("d1")
	mustOK(t, logger, snap, err)
	sel := snap.Player().Selected
	if sel.Main == nil || sel.Main.ID != "d1" || sel.Support != nil {
		t.Fatalf("expected d1 alone, got %+v", sel)
	}
	deselects := logger.EventsOfType(log.EventDeselect)
	if len(deselects) != 1 || deselects[0].Card != "s1" {
		t.Errorf("expected one deselect of s1, got %v", deselects)
	}
	if n := len(logger.EventsOfType(log.EventRejected)); n != 0 {
		t.Errorf("expected no rejections, got %d", n)
	}
}

func TestCycleOncePerTurn(t *testing.T) {
	cfg := testConfig()
	playerDeck := makePaddedDeck("p", []*Card{
		offenseCard("h_first", 1, 1),
		offenseCard("o1", 5, 2),
	}, 25)
	m, logger := newTestMatch(t, cfg, playerDeck, nil, NewScriptedPolicy(t))

	nextDraw := m.Players[PlayerHuman].Deck[0].ID
	snap, err := m.SelectCard("o1")
	mustOK(t, logger, snap, err)
	snap, err = m.CycleCard("o1")
	mustOK(t, logger, snap, err)

	p := snap.Player()
	if !p.Selected.Empty() {
		t.Error("cycling a selected card should deselect it")
	}
	if !containsCard(p.Graveyard, "o1") || p.FindInHand("o1") != nil {
		t.Error("cycled card should move to the graveyard")
	}
	if p.FindInHand(nextDraw) == nil {
		t.Errorf("expected replacement %s drawn", nextDraw)
	}
	if p.HandCount() != cfg.MaxHandSize {
		t.Errorf("hand size should be unchanged, got %d", p.HandCount())
	}
	if p.Energy != cfg.StartingEnergy-cfg.CycleCost {
		t.Errorf("expected energy %d after cycling, got %d", cfg.StartingEnergy-cfg.CycleCost, p.Energy)
	}

	_, err = m.CycleCard(p.Hand[0].ID)
	if !errors.Is(err, ErrAlreadyCycled) {
		t.Fatalf("expected ErrAlreadyCycled, got %v", err)
	}

	// The flag resets on the next turn.
	snap, err = m.SelectPass()
	mustOK(t, logger, snap, err)
	snap, err = m.CycleCard(snap.Player().Hand[0].ID)
	mustOK(t, logger, snap, err)
}

func TestRoundTwoWaitsForDraw(t *testing.T) {
	cfg := testConfig()
	m, logger := newTestMatch(t, cfg, makePaddedDeck("p", nil, 25), nil, NewScriptedPolicy(t))

	for i := 0; i < cfg.TurnsPerRound; i++ {
		snap, err := m.SelectPass()
		mustOK(t, logger, snap, err)
	}

	snap := m.Snapshot()
	if !snap.WaitingForDraw || snap.Round != 2 || snap.State != StateDraw {
		t.Fatalf("expected round 2 waiting for draw, got %s R%d waiting=%v", snap.State, snap.Round, snap.WaitingForDraw)
	}
	if snap.Rounds[0].Winner != OutcomeTie {
		t.Errorf("expected 0-0 round to be a tie, got %s", snap.Rounds[0].Winner)
	}
	handBefore := snap.Player().HandCount()

	if _, err := m.SelectCard(snap.Player().Hand[0].ID); !errors.Is(err, ErrWrongState) {
		t.Errorf("select while waiting: expected ErrWrongState, got %v", err)
	}
	if _, err := m.SelectPass(); !errors.Is(err, ErrWrongState) {
		t.Errorf("pass while waiting: expected ErrWrongState, got %v", err)
	}

	snap, err := m.AdvanceManualDraw()
	mustOK(t, logger, snap, err)
	if snap.State != StateAction || snap.WaitingForDraw {
		t.Fatalf("expected ACTION after draw, got %s", snap.State)
	}
	if snap.Player().HandCount() != handBefore+1 {
		t.Errorf("expected one card drawn, hand %d -> %d", handBefore, snap.Player().HandCount())
	}
	if snap.Player().MaxEnergy != cfg.StartingEnergy+cfg.EnergyPerTurn || snap.Player().Energy != snap.Player().MaxEnergy {
		t.Errorf("expected energy refilled to %d, got %d/%d", cfg.StartingEnergy+cfg.EnergyPerTurn, snap.Player().Energy, snap.Player().MaxEnergy)
	}

	if _, err := m.AdvanceManualDraw(); !errors.Is(err, ErrWrongState) {
		t.Errorf("second draw: expected ErrWrongState, got %v", err)
	}
}

func TestForfeitEndsMatch(t *testing.T) {
	m, logger := newTestMatch(t, testConfig(), makePaddedDeck("p", nil, 25), nil, NewScriptedPolicy(t))

	snap, err := m.Forfeit()
	mustOK(t, logger, snap, err)
	if !snap.Over() || snap.Winner != OutcomeOpponent || snap.Reason != "player forfeited" {
		t.Fatalf("expected opponent win by forfeit, got %s/%s (%s)", snap.State, snap.Winner, snap.Reason)
	}
	if snap.EndedAt.IsZero() {
		t.Error("EndedAt should be stamped")
	}

	if _, err := m.SelectCard(snap.Player().Hand[0].ID); !errors.Is(err, ErrMatchOver) {
		t.Errorf("expected ErrMatchOver, got %v", err)
	}
	if _, err := m.Forfeit(); !errors.Is(err, ErrMatchOver) {
		t.Errorf("expected ErrMatchOver, got %v", err)
	}
	if _, err := m.AdvanceManualDraw(); !errors.Is(err, ErrMatchOver) {
		t.Errorf("expected ErrMatchOver, got %v", err)
	}
	if m.State != StateMatchEnd {
		t.Errorf("rejections must not leave MATCH_END, got %s", m.State)
	}
}

func TestEmptyDeckDrawIsSkipped(t *testing.T) {
	cfg := testConfig()
	m, logger := newTestMatch(t, cfg, makePaddedDeck("p", nil, cfg.StartingHandSize), nil, NewScriptedPolicy(t))

	if m.State != StateAction {
		t.Fatalf("expected ACTION, got %s", m.State)
	}
	var empty int
	for _, e := range logger.EventsOfType(log.EventDeckEmpty) {
		if e.Player == PlayerHuman {
			empty++
		}
	}
	if empty != 1 {
		t.Errorf("expected 1 deck-empty event for the player, got %d", empty)
	}
	if m.Players[PlayerHuman].HandCount() != cfg.StartingHandSize {
		t.Errorf("expected hand %d, got %d", cfg.StartingHandSize, m.Players[PlayerHuman].HandCount())
	}
}

func TestIllegalPolicyPlayBecomesPass(t *testing.T) {
	cfg := testConfig()
	oppDeck := makePaddedDeck("o", []*Card{
		offenseCard("o_first", 1, 1),
		offenseCard("o_big", 9, 5),
		supportCard("o_sup", 2, 1),
	}, 25)

	tests := []struct {
		name string
		play func(view DecisionView) Play
	}{
		{"card not in hand", func(DecisionView) Play { return CardPlay(offenseCard("ghost", 9, 1), nil) }},
		{"unaffordable", func(v DecisionView) Play { return CardPlay(findCard(v.Hand, "o_big"), nil) }},
		{"support as main", func(v DecisionView) Play { return CardPlay(findCard(v.Hand, "o_sup"), nil) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, logger := newTestMatch(t, cfg, makePaddedDeck("p", nil, 25), oppDeck, PolicyFunc(tt.play))
			snap, err := m.SelectPass()
			mustOK(t, logger, snap, err)

			if n := len(logger.EventsOfType(log.EventPolicyFallback)); n != 1 {
				t.Errorf("expected 1 fallback event, got %d", n)
			}
			if !snap.Rounds[0].Turns[0].OpponentPlay.IsPass() {
				t.Errorf("expected opponent pass, got %s", snap.Rounds[0].Turns[0].OpponentPlay)
			}
		})
	}
}

func TestFullMatchIsDeterministic(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Seed = 7

	run := func() (*Match, *log.MemoryLogger) {
		m, logger := newTestMatch(t, cfg, DefaultOpponentDeck(), nil, greedyPolicy)
		playGreedyHuman(t, m)
		return m, logger
	}
	first, firstLog := run()
	second, secondLog := run()
	t.Logf("Event log:\n%s", log.FormatAll(firstLog.Events()))

	if first.State != StateMatchEnd || first.Winner == OutcomeNone {
		t.Fatalf("expected finished match with a winner, got %s/%s", first.State, first.Winner)
	}
	if first.Round != cfg.Rounds {
		t.Errorf("expected %d rounds played, got %d", cfg.Rounds, first.Round)
	}
	for _, r := range first.Rounds {
		if r.Winner == OutcomeNone {
			t.Errorf("round %d has no result", r.Number)
		}
		for _, turn := range r.Turns {
			if !turn.Resolved {
				t.Errorf("round %d turn %d left unresolved", r.Number, turn.Number)
			}
		}
	}
	for i, p := range first.Players {
		if p.HandCount() > cfg.MaxHandSize {
			t.Errorf("player %d hand exceeds limit: %d", i, p.HandCount())
		}
	}

	if first.Winner != second.Winner || first.Reason != second.Reason {
		t.Errorf("same seed produced different results: %s (%s) vs %s (%s)", first.Winner, first.Reason, second.Winner, second.Reason)
	}
	a, b := log.Lines(firstLog.Events()), log.Lines(secondLog.Events())
	if len(a) != len(b) {
		t.Fatalf("event logs differ in length: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("event %d differs:\n  %s\n  %s", i, a[i], b[i])
		}
	}
}

func TestClassicFirstToThreeEndsEarly(t *testing.T) {
	cfg := ClassicConfig()
	cfg.NoShuffle = true
	cfg.Seed = 42
	m, logger := newTestMatch(t, cfg, makePaddedDeck("p", nil, 25), nil, NewScriptedPolicy(t))

	playGreedyHuman(t, m)
	t.Logf("Event log:\n%s", log.FormatAll(logger.Events()))

	if m.Winner != OutcomePlayer || m.Reason != "first to 3 rounds" {
		t.Fatalf("expected player to win first to 3, got %s (%s)", m.Winner, m.Reason)
	}
	if m.Round != 3 {
		t.Errorf("expected match to stop after round 3, got round %d", m.Round)
	}
	if m.Rounds[3].Winner != OutcomeNone {
		t.Errorf("round 4 should not have been played, got %s", m.Rounds[3].Winner)
	}
}

func containsCard(cards []*Card, id string) bool {
	return findCard(cards, id) != nil
}
