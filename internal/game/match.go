package game

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/peterkuimelis/momentrivals/internal/log"
)

// MatchConfig holds everything needed to create a match.
type MatchConfig struct {
	Config
	PlayerDeck   []*Card // validated human deck
	OpponentDeck []*Card // nil uses DefaultOpponentDeck
	Policy       Policy  // opponent decision policy
	Logger       log.EventLogger
	ID           string           // empty generates a UUID
	Now          func() time.Time // clock for start/end stamps
}

// Match is the turn/round state machine. It is not safe for concurrent use;
// callers serialize access (see internal/session).
type Match struct {
	ID             string
	Config         Config
	Seed           int64
	Rules          RuleSet
	State          State
	WaitingForDraw bool
	Round          int
	Turn           int
	Players        [2]*PlayerState
	Rounds         []*Round
	Winner         Outcome
	Reason         string
	StartedAt      time.Time
	EndedAt        time.Time
	// ActionSeq increments every time the match enters the action step.
	ActionSeq int

	Logger   log.EventLogger
	policy   Policy
	rng      *SeededRandom
	revealed [2][]Play
	now      func() time.Time
}

// NewMatch shuffles both decks, deals opening hands and runs the state
// machine up to the first decision point.
func NewMatch(mc MatchConfig) (*Match, error) {
	cfg := mc.Config
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if mc.Policy == nil {
		return nil, errors.New("opponent policy is required")
	}
	if len(mc.PlayerDeck) == 0 {
		return nil, errors.New("player deck is empty")
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	logger := mc.Logger
	if logger == nil {
		logger = log.NewMemoryLogger()
	}
	id := mc.ID
	if id == "" {
		id = uuid.NewString()
	}
	now := mc.Now
	if now == nil {
		now = time.Now
	}
	oppDeck := mc.OpponentDeck
	if oppDeck == nil {
		oppDeck = DefaultOpponentDeck()
	}

	m := &Match{
		ID:      id,
		Config:  cfg,
		Seed:    seed,
		Rules:   NewRuleSet(cfg.RuleSet),
		Round:   1,
		Turn:    1,
		Rounds:  newRounds(cfg),
		Logger:  logger,
		policy:  mc.Policy,
		rng:     NewSeededRandom(seed),
		now:     now,
		Players: [2]*PlayerState{{}, {}},
	}
	m.Players[PlayerHuman].Deck = append([]*Card(nil), mc.PlayerDeck...)
	m.Players[PlayerOpponent].Deck = append([]*Card(nil), oppDeck...)

	m.start()
	return m, nil
}

func (m *Match) start() {
	m.StartedAt = m.now()
	m.State = StateDraw
	m.log(log.NewMatchStartEvent(m.ID, m.Rules.Kind().String(), m.Seed))

	if !m.Config.NoShuffle {
		for _, p := range m.Players {
			ShuffleCards(m.rng, p.Deck)
		}
	}
	for p := range m.Players {
		for i := 0; i < m.Config.StartingHandSize; i++ {
			m.drawFor(p)
		}
		m.Players[p].Energy = m.Config.StartingEnergy
		m.Players[p].MaxEnergy = m.Config.StartingEnergy
	}

	m.log(log.NewRoundEvent(m.Round))
	m.startTurn()
}

// Over reports whether the match has reached its terminal state.
func (m *Match) Over() bool {
	return m.State == StateMatchEnd
}

// CurrentTurn returns the record of the turn in progress.
func (m *Match) CurrentTurn() *Turn {
	return m.Rounds[m.Round-1].Turns[m.Turn-1]
}

// --- Driver operations ---

// Apply dispatches a driver intent.
func (m *Match) Apply(in Intent) (*Snapshot, error) {
	switch in.Kind {
	case IntentSelect:
		return m.SelectCard(in.CardID)
	case IntentDeselect:
		return m.DeselectCard(in.CardID)
	case IntentPass:
		return m.SelectPass()
	case IntentPlay:
		return m.PlayCard()
	case IntentCycle:
		return m.CycleCard(in.CardID)
	case IntentDraw:
		return m.AdvanceManualDraw()
	case IntentForfeit:
		return m.Forfeit()
	}
	return m.reject(in.Kind.String(), ErrUnknownIntent)
}

// SelectCard adds a hand card to the combo being built. Selecting a main
// card replaces the current main and drops a support it cannot carry;
// selecting a support replaces the current support. Selecting an already
// selected card deselects it.
func (m *Match) SelectCard(id string) (*Snapshot, error) {
	if err := m.requireAction(); err != nil {
		return m.reject("select", err)
	}
	p := m.Players[PlayerHuman]
	card := p.FindInHand(id)
	if card == nil {
		return m.reject("select", fmt.Errorf("%w: %s", ErrNotInHand, id))
	}
	if p.Selected.Contains(id) {
		return m.DeselectCard(id)
	}

	next := p.Selected
	role := "main"
	var dropped *Card
	if card.Type.IsMain() {
		next.Main = card
		// A support the new main cannot carry is released.
		if next.Support != nil && m.Rules.CheckCombo(next.Main, next.Support) != nil {
			dropped, next.Support = next.Support, nil
		}
	} else {
		if next.Main == nil {
			return m.reject("select", ErrNeedsMain)
		}
		next.Support = card
		role = "support"
	}
	if err := m.Rules.CheckCombo(next.Main, next.Support); err != nil {
		return m.reject("select", err)
	}
	if !p.CanAfford(next.Cost()) {
		return m.reject("select", fmt.Errorf("%w: cost %d, energy %d", ErrInsufficientEnergy, next.Cost(), p.Energy))
	}

	p.Selected = next
	if dropped != nil {
		m.log(log.NewDeselectEvent(m.Round, m.Turn, PlayerHuman, dropped.Name))
	}
	m.log(log.NewSelectEvent(m.Round, m.Turn, PlayerHuman, card.Name, role))
	return m.Snapshot(), nil
}

// DeselectCard removes a card from the combo. Removing the main card also
// drops the support, which cannot stand alone.
func (m *Match) DeselectCard(id string) (*Snapshot, error) {
	if err := m.requireAction(); err != nil {
		return m.reject("deselect", err)
	}
	p := m.Players[PlayerHuman]
	if !p.Selected.Contains(id) {
		return m.reject("deselect", fmt.Errorf("%w: %s", ErrNotSelected, id))
	}
	m.deselect(p, id)
	return m.Snapshot(), nil
}

func (m *Match) deselect(p *PlayerState, id string) {
	sel := p.Selected
	if sel.Main != nil && sel.Main.ID == id {
		m.log(log.NewDeselectEvent(m.Round, m.Turn, PlayerHuman, sel.Main.Name))
		if sel.Support != nil {
			m.log(log.NewDeselectEvent(m.Round, m.Turn, PlayerHuman, sel.Support.Name))
		}
		p.Selected = Selection{}
		return
	}
	if sel.Support != nil && sel.Support.ID == id {
		m.log(log.NewDeselectEvent(m.Round, m.Turn, PlayerHuman, sel.Support.Name))
		p.Selected.Support = nil
	}
}

// PlayCard locks in the current selection.
func (m *Match) PlayCard() (*Snapshot, error) {
	if err := m.requireAction(); err != nil {
		return m.reject("play", err)
	}
	p := m.Players[PlayerHuman]
	sel := p.Selected
	if sel.Main == nil {
		return m.reject("play", ErrNoSelection)
	}
	if err := m.Rules.CheckCombo(sel.Main, sel.Support); err != nil {
		return m.reject("play", err)
	}
	if !p.CanAfford(sel.Cost()) {
		return m.reject("play", fmt.Errorf("%w: cost %d, energy %d", ErrInsufficientEnergy, sel.Cost(), p.Energy))
	}

	m.lock(PlayerHuman, CardPlay(sel.Main, sel.Support))
	m.afterHumanLock()
	return m.Snapshot(), nil
}

// SelectPass locks in a pass. Passing with a full hand discards the oldest card.
func (m *Match) SelectPass() (*Snapshot, error) {
	if err := m.requireAction(); err != nil {
		return m.reject("pass", err)
	}
	m.lockPass(PlayerHuman, false)
	m.afterHumanLock()
	return m.Snapshot(), nil
}

// AutoPass is the turn-timer expiry path. It behaves like SelectPass.
func (m *Match) AutoPass() (*Snapshot, error) {
	if err := m.requireAction(); err != nil {
		return m.reject("auto-pass", err)
	}
	m.lockPass(PlayerHuman, true)
	m.afterHumanLock()
	return m.Snapshot(), nil
}

// CycleCard discards a hand card and draws a replacement for CycleCost
// energy, once per turn.
func (m *Match) CycleCard(id string) (*Snapshot, error) {
	if err := m.requireAction(); err != nil {
		return m.reject("cycle", err)
	}
	p := m.Players[PlayerHuman]
	if p.Cycled {
		return m.reject("cycle", ErrAlreadyCycled)
	}
	card := p.FindInHand(id)
	if card == nil {
		return m.reject("cycle", fmt.Errorf("%w: %s", ErrNotInHand, id))
	}
	if !p.CanAfford(m.Config.CycleCost) {
		return m.reject("cycle", fmt.Errorf("%w: cycling costs %d, energy %d", ErrInsufficientEnergy, m.Config.CycleCost, p.Energy))
	}

	if p.Selected.Contains(id) {
		m.deselect(p, id)
	}
	p.RemoveFromHand(card)
	p.SendToGraveyard(card)
	drawn := p.DrawCard()
	p.Spend(m.Config.CycleCost)
	p.Cycled = true

	drawnName := ""
	if drawn != nil {
		drawnName = drawn.Name
	}
	m.log(log.NewCycleEvent(m.Round, m.Turn, PlayerHuman, card.Name, drawnName))
	return m.Snapshot(), nil
}

// AdvanceManualDraw releases the pacing gate at the start of rounds after
// the first.
func (m *Match) AdvanceManualDraw() (*Snapshot, error) {
	if m.Over() {
		return m.reject("draw", ErrMatchOver)
	}
	if !m.WaitingForDraw {
		return m.reject("draw", fmt.Errorf("%w: %s", ErrWrongState, m.State))
	}
	m.WaitingForDraw = false
	m.drawStep()
	return m.Snapshot(), nil
}

// Forfeit ends the match immediately in the opponent's favour.
func (m *Match) Forfeit() (*Snapshot, error) {
	if m.Over() {
		return m.reject("forfeit", ErrMatchOver)
	}
	m.log(log.NewForfeitEvent(m.Round, m.Turn, PlayerHuman))
	m.finish(OutcomeOpponent, "player forfeited")
	return m.Snapshot(), nil
}

func (m *Match) requireAction() error {
	if m.Over() {
		return ErrMatchOver
	}
	if m.State != StateAction || m.Players[PlayerHuman].Locked != nil {
		return fmt.Errorf("%w: %s", ErrWrongState, m.State)
	}
	return nil
}

func (m *Match) reject(action string, err error) (*Snapshot, error) {
	m.log(log.NewRejectedEvent(m.Round, m.Turn, PlayerHuman, action, err.Error()))
	return m.Snapshot(), err
}

// --- Turn flow ---

func (m *Match) startTurn() {
	for _, p := range m.Players {
		p.resetTurn()
	}
	m.log(log.NewTurnEvent(m.Round, m.Turn))

	if m.Round > 1 && m.Turn == 1 {
		m.State = StateDraw
		m.WaitingForDraw = true
		m.log(log.NewWaitingForDrawEvent(m.Round))
		return
	}
	m.drawStep()
}

func (m *Match) drawStep() {
	m.State = StateDraw
	for p := range m.Players {
		m.drawFor(p)
	}

	m.State = StateEnergyRefresh
	for p, ps := range m.Players {
		gained := m.Rules.RefreshEnergy(ps, m.Config, m.Turn)
		m.log(log.NewEnergyRefreshEvent(m.Round, m.Turn, p, ps.Energy, gained))
	}

	m.State = StateAction
	m.ActionSeq++
}

// drawFor draws one card for player p and enforces the hand limit.
func (m *Match) drawFor(p int) {
	ps := m.Players[p]
	card := ps.DrawCard()
	if card == nil {
		m.log(log.NewDeckEmptyEvent(m.Round, m.Turn, p))
		return
	}
	m.log(log.NewDrawEvent(m.Round, m.Turn, p, m.visibleName(p, card)))
	for len(ps.Hand) > m.Config.MaxHandSize {
		discarded := ps.DiscardOldest()
		m.log(log.NewHandOverflowEvent(m.Round, m.Turn, p, m.visibleName(p, discarded)))
	}
}

// visibleName hides opponent hand cards from the log.
func (m *Match) visibleName(p int, c *Card) string {
	if p == PlayerOpponent {
		return "a card"
	}
	return c.Name
}

func (m *Match) lock(p int, play Play) {
	ps := m.Players[p]
	for _, c := range play.Cards() {
		ps.RemoveFromHand(c)
	}
	ps.Spend(play.Cost())
	ps.Locked = &play
	ps.Selected = Selection{}
	ps.PassedLastTurn = false
	m.log(log.NewLockInEvent(m.Round, m.Turn, p, play.Cost()))
}

func (m *Match) lockPass(p int, auto bool) {
	ps := m.Players[p]
	if len(ps.Hand) >= m.Config.MaxHandSize {
		discarded := ps.DiscardOldest()
		m.log(log.NewPassDiscardEvent(m.Round, m.Turn, p, m.visibleName(p, discarded)))
	}
	pass := Pass()
	ps.Locked = &pass
	ps.Selected = Selection{}
	ps.PassedLastTurn = true
	if auto {
		m.log(log.NewAutoPassEvent(m.Round, m.Turn, p))
	} else {
		m.log(log.NewPassEvent(m.Round, m.Turn, p))
	}
}

func (m *Match) afterHumanLock() {
	m.State = StateLocked
	m.opponentTurn()
	m.reveal()
}

func (m *Match) opponentTurn() {
	o := m.Players[PlayerOpponent]
	play, err := m.checkPlay(o, m.policy.ChoosePlay(m.viewFor(PlayerOpponent)))
	if err != nil {
		m.log(log.NewPolicyFallbackEvent(m.Round, m.Turn, err.Error()))
		play = Pass()
	}
	if play.IsPass() {
		m.lockPass(PlayerOpponent, false)
		return
	}
	m.lock(PlayerOpponent, play)
}

// checkPlay resolves a policy's play against the actual hand so a policy
// cannot conjure cards, and verifies combo and cost.
func (m *Match) checkPlay(ps *PlayerState, play Play) (Play, error) {
	if play.IsPass() {
		return Pass(), nil
	}
	main := ps.FindInHand(play.Main.ID)
	if main == nil {
		return Play{}, fmt.Errorf("%w: %s", ErrNotInHand, play.Main.ID)
	}
	var support *Card
	if play.Support != nil {
		if play.Support.ID == main.ID {
			return Play{}, fmt.Errorf("%w: same card used twice", ErrInvalidCombo)
		}
		if support = ps.FindInHand(play.Support.ID); support == nil {
			return Play{}, fmt.Errorf("%w: %s", ErrNotInHand, play.Support.ID)
		}
	}
	if err := m.Rules.CheckCombo(main, support); err != nil {
		return Play{}, err
	}
	checked := CardPlay(main, support)
	if !ps.CanAfford(checked.Cost()) {
		return Play{}, fmt.Errorf("%w: cost %d, energy %d", ErrInsufficientEnergy, checked.Cost(), ps.Energy)
	}
	return checked, nil
}

// PlayerView returns what a policy driving the human side may see.
func (m *Match) PlayerView() DecisionView {
	return m.viewFor(PlayerHuman)
}

func (m *Match) viewFor(me int) DecisionView {
	rival := 1 - me
	p, r := m.Players[me], m.Players[rival]
	return DecisionView{
		RuleSet:         m.Rules,
		Round:           m.Round,
		Turn:            m.Turn,
		Rounds:          m.Config.Rounds,
		TurnsPerRound:   m.Config.TurnsPerRound,
		MaxHandSize:     m.Config.MaxHandSize,
		Hand:            append([]*Card(nil), p.Hand...),
		Energy:          p.Energy,
		TotalScore:      p.TotalScore,
		RivalTotalScore: r.TotalScore,
		RoundScore:      p.RoundScore,
		RivalRoundScore: r.RoundScore,
		RoundsWon:       p.RoundsWon,
		RivalRoundsWon:  r.RoundsWon,
		RivalHandCount:  len(r.Hand),
		RivalHistory:    append([]Play(nil), m.revealed[rival]...),
	}
}

// reveal stores both locked plays in the turn record, then either defers
// them or scores every pending turn of the round in order.
func (m *Match) reveal() {
	round := m.Rounds[m.Round-1]
	turn := m.CurrentTurn()
	pp, op := *m.Players[PlayerHuman].Locked, *m.Players[PlayerOpponent].Locked
	turn.PlayerPlay, turn.OpponentPlay = &pp, &op

	if m.Rules.Defer(m.Turn, m.Config.TurnsPerRound) {
		m.log(log.NewDeferredEvent(m.Round, m.Turn))
	} else {
		for _, t := range round.Turns[:m.Turn] {
			if t.Revealed() && !t.Resolved {
				m.scoreTurn(t)
			}
		}
	}
	m.endTurn()
}

func (m *Match) scoreTurn(t *Turn) {
	m.State = StateReveal
	m.revealed[PlayerHuman] = append(m.revealed[PlayerHuman], *t.PlayerPlay)
	m.revealed[PlayerOpponent] = append(m.revealed[PlayerOpponent], *t.OpponentPlay)
	m.log(log.NewRevealEvent(m.Round, t.Number, t.PlayerPlay.String(), t.OpponentPlay.String()))

	m.State = StateScoring
	pp, op := m.Rules.Score(*t.PlayerPlay, *t.OpponentPlay)
	t.PlayerPoints, t.OpponentPoints = pp, op
	t.Resolved = true

	h, o := m.Players[PlayerHuman], m.Players[PlayerOpponent]
	h.RoundScore += pp
	h.TotalScore += pp
	o.RoundScore += op
	o.TotalScore += op
	h.SendToGraveyard(t.PlayerPlay.Cards()...)
	o.SendToGraveyard(t.OpponentPlay.Cards()...)
	m.log(log.NewScoreEvent(m.Round, t.Number, pp, op))
}

func (m *Match) endTurn() {
	m.State = StateTurnEnd
	if m.Turn < m.Config.TurnsPerRound {
		m.Turn++
		m.startTurn()
		return
	}
	m.endRound()
}

func (m *Match) endRound() {
	m.State = StateRoundEnd
	h, o := m.Players[PlayerHuman], m.Players[PlayerOpponent]
	round := m.Rounds[m.Round-1]
	round.FinalScore = Score{Player: h.RoundScore, Opponent: o.RoundScore}
	switch {
	case h.RoundScore > o.RoundScore:
		round.Winner = OutcomePlayer
		h.RoundsWon++
	case o.RoundScore > h.RoundScore:
		round.Winner = OutcomeOpponent
		o.RoundsWon++
	default:
		round.Winner = OutcomeTie
	}
	m.log(log.NewRoundEndEvent(m.Round, round.Winner.String(), h.RoundScore, o.RoundScore))

	if m.Rules.Decided(m.Players, m.Config) || m.Round >= m.Config.Rounds {
		winner, reason := m.Rules.Winner(m.Players, m.Config, m.rng)
		m.finish(winner, reason)
		return
	}

	m.Round++
	m.Turn = 1
	for _, p := range m.Players {
		p.RoundScore = 0
		m.Rules.StartRound(p, m.Config)
	}
	m.log(log.NewRoundEvent(m.Round))
	m.startTurn()
}

func (m *Match) finish(winner Outcome, reason string) {
	m.State = StateMatchEnd
	m.WaitingForDraw = false
	m.Winner = winner
	m.Reason = reason
	m.EndedAt = m.now()
	m.log(log.NewMatchEndEvent(m.Round, m.Turn, winner.String(), reason))
}

// log emits a match event stamped with the current state.
func (m *Match) log(event log.GameEvent) {
	event.State = m.State.String()
	m.Logger.Log(event)
}
