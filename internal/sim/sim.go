// Package sim plays batches of AI-versus-AI matches to compare policies
// and rule settings.
package sim

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/peterkuimelis/momentrivals/internal/ai"
	"github.com/peterkuimelis/momentrivals/internal/game"
	"github.com/peterkuimelis/momentrivals/internal/log"
)

// Config holds the configuration for a simulation run. The player seat is
// driven by a policy just like the opponent.
type Config struct {
	Game         game.Config
	Player       ai.Difficulty
	Opponent     ai.Difficulty
	PlayerDeck   []*game.Card // nil uses the default deck
	OpponentDeck []*game.Card
	Runs         int
	Seed         int64
	Workers      int // 0 uses one per CPU
}

func (c Config) Validate() error {
	if c.Runs < 1 {
		return errors.New("runs must be at least 1")
	}
	if c.Workers < 0 {
		return errors.New("workers cannot be negative")
	}
	if c.Seed == 0 {
		return errors.New("seed must be non-zero")
	}
	if _, err := ai.NewPolicy(c.Player, 1); err != nil {
		return fmt.Errorf("player: %w", err)
	}
	if _, err := ai.NewPolicy(c.Opponent, 1); err != nil {
		return fmt.Errorf("opponent: %w", err)
	}
	return c.Game.Validate()
}

// Outcome records one simulated match.
type Outcome struct {
	Index          int
	Seed           int64
	Winner         game.Outcome
	Reason         string
	PlayerScore    int
	OpponentScore  int
	PlayerRounds   int
	OpponentRounds int
	Turns          int
	Fallbacks      int
}

// Results collates the matches of a run.
type Results struct {
	Runs                 int
	PlayerWins           int
	OpponentWins         int
	Ties                 int
	CoinFlips            int
	Fallbacks            int
	AveragePlayerScore   float64
	AverageOpponentScore float64
	AverageTurns         float64
}

func (r Results) PlayerWinRate() float64 {
	if r.Runs == 0 {
		return 0
	}
	return float64(r.PlayerWins) / float64(r.Runs)
}

func (r Results) OpponentWinRate() float64 {
	if r.Runs == 0 {
		return 0
	}
	return float64(r.OpponentWins) / float64(r.Runs)
}

func (r Results) String() string {
	return fmt.Sprintf("%d matches: player %d (%.1f%%), opponent %d (%.1f%%), ties %d, coin flips %d\n"+
		"average score %.2f - %.2f, average turns %.2f, policy fallbacks %d",
		r.Runs, r.PlayerWins, r.PlayerWinRate()*100, r.OpponentWins, r.OpponentWinRate()*100, r.Ties, r.CoinFlips,
		r.AveragePlayerScore, r.AverageOpponentScore, r.AverageTurns, r.Fallbacks)
}

// Run plays cfg.Runs matches on a worker pool. Each match gets its own
// seed derived from cfg.Seed and its index, so results do not depend on
// scheduling.
func Run(ctx context.Context, cfg Config) (Results, error) {
	if err := cfg.Validate(); err != nil {
		return Results{}, err
	}
	workerCount := cfg.Workers
	if workerCount == 0 {
		workerCount = runtime.NumCPU()
	}
	workerCount = min(workerCount, cfg.Runs)

	jobs := make(chan int, workerCount)
	output := make(chan Outcome, workerCount)
	errs := make(chan error, workerCount)

	workers := &sync.WaitGroup{}
	workers.Add(workerCount)
	for i := 0; i < workerCount; i++ {
		go func() {
			defer workers.Done()
			for idx := range jobs {
				out, err := Play(ctx, cfg, idx)
				if err != nil {
					select {
					case errs <- err:
					default:
					}
					continue
				}
				output <- out
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := 0; i < cfg.Runs; i++ {
			select {
			case jobs <- i:
			case <-ctx.Done():
				return
			}
		}
	}()
	go func() {
		workers.Wait()
		close(output)
	}()

	var results Results
	var playerSum, opponentSum, turnSum int
	for out := range output {
		results.Runs++
		switch out.Winner {
		case game.OutcomePlayer:
			results.PlayerWins++
		case game.OutcomeOpponent:
			results.OpponentWins++
		default:
			results.Ties++
		}
		if out.Reason == "coin flip" {
			results.CoinFlips++
		}
		results.Fallbacks += out.Fallbacks
		playerSum += out.PlayerScore
		opponentSum += out.OpponentScore
		turnSum += out.Turns
	}

	if err := ctx.Err(); err != nil {
		return results, err
	}
	select {
	case err := <-errs:
		return results, err
	default:
	}

	if results.Runs > 0 {
		n := float64(results.Runs)
		results.AveragePlayerScore = float64(playerSum) / n
		results.AverageOpponentScore = float64(opponentSum) / n
		results.AverageTurns = float64(turnSum) / n
	}
	return results, nil
}

// Play runs the match with the given index to completion.
func Play(ctx context.Context, cfg Config, index int) (Outcome, error) {
	seed := Seed(cfg.Seed, index)
	gc := cfg.Game
	gc.Seed = seed

	opponent, err := ai.NewPolicy(cfg.Opponent, ai.PolicySeed(seed, game.PlayerOpponent))
	if err != nil {
		return Outcome{}, err
	}
	player, err := ai.NewPolicy(cfg.Player, ai.PolicySeed(seed, game.PlayerHuman))
	if err != nil {
		return Outcome{}, err
	}
	playerDeck := cfg.PlayerDeck
	if playerDeck == nil {
		playerDeck = game.DefaultOpponentDeck()
	}

	logger := log.NewMemoryLogger()
	m, err := game.NewMatch(game.MatchConfig{
		Config:       gc,
		PlayerDeck:   playerDeck,
		OpponentDeck: cfg.OpponentDeck,
		Policy:       opponent,
		Logger:       logger,
		ID:           fmt.Sprintf("sim-%d", index),
	})
	if err != nil {
		return Outcome{}, err
	}
	if err := m.PlayOut(ctx, player); err != nil {
		return Outcome{}, fmt.Errorf("match %d: %w", index, err)
	}

	snap := m.Snapshot()
	return Outcome{
		Index:          index,
		Seed:           seed,
		Winner:         snap.Winner,
		Reason:         snap.Reason,
		PlayerScore:    snap.Player().TotalScore,
		OpponentScore:  snap.Opponent().TotalScore,
		PlayerRounds:   snap.Player().RoundsWon,
		OpponentRounds: snap.Opponent().RoundsWon,
		Turns:          snap.TotalTurns(),
		Fallbacks:      len(logger.EventsOfType(log.EventPolicyFallback)),
	}, nil
}

// Seed mixes the base seed with a match index into a distinct, non-zero
// match seed.
func Seed(base int64, index int) int64 {
	return game.MixSeed(base, index)
}
