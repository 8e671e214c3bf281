package main

import (
	"context"
	"flag"
	"fmt"
	stdnet "net"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/peterkuimelis/momentrivals/internal/ai"
	"github.com/peterkuimelis/momentrivals/internal/config"
	"github.com/peterkuimelis/momentrivals/internal/game"
	"github.com/peterkuimelis/momentrivals/internal/log"
	rivalsnet "github.com/peterkuimelis/momentrivals/internal/net"
	"github.com/peterkuimelis/momentrivals/internal/replay"
	"github.com/peterkuimelis/momentrivals/internal/sim"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var err error
	switch os.Args[1] {
	case "play":
		err = runPlay(ctx, os.Args[2:])
	case "host":
		err = runHost(ctx, os.Args[2:])
	case "join":
		err = runJoin(ctx, os.Args[2:])
	case "replay":
		err = runReplay(os.Args[2:])
	case "sim":
		err = runSim(ctx, os.Args[2:])
	default:
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  rivals-cli play   [--config FILE] [--deck N] [--difficulty D] [--auto D] [--out DIR]")
	fmt.Println("  rivals-cli host   [--config FILE] [--addr ADDR]")
	fmt.Println("  rivals-cli join   [--addr ADDR] [--deck N] [--difficulty D]")
	fmt.Println("  rivals-cli replay FILE")
	fmt.Println("  rivals-cli sim    [--config FILE] [--runs N] [--seed S] [--player D] [--opponent D] [--deck N]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  play    Play a match against the AI in this terminal")
	fmt.Println("  host    Start a game server; each client plays its own match against the AI")
	fmt.Println("  join    Connect to a game server and play")
	fmt.Println("  replay  Print an exported replay")
	fmt.Println("  sim     Play AI-versus-AI matches and report win rates")
	fmt.Println()
	fmt.Println("Settings come from the config file, then the environment (ROUNDS, TURNS_PER_ROUND, RULESET, ...).")
}

// loadConfig reads the config file named by --config and applies the
// deck and difficulty flags when they were given.
func loadConfig(path string, deck int, difficulty string) (config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	if deck > 0 {
		cfg.DeckNumber = deck
	}
	if difficulty != "" {
		d, err := ai.ParseDifficulty(difficulty)
		if err != nil {
			return cfg, err
		}
		cfg.Difficulty = d
	}
	return cfg, nil
}

func runPlay(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("play", flag.ExitOnError)
	configFile := fs.String("config", "", "path to config YAML file")
	deck := fs.Int("deck", 0, "deck number to use (default from config)")
	difficulty := fs.String("difficulty", "", "AI difficulty: baseline, easy, medium, hard")
	auto := fs.String("auto", "", "let an AI of this difficulty play your side and print the match")
	out := fs.String("out", ".", "directory for exported replays")
	fs.Parse(args)

	cfg, err := loadConfig(*configFile, *deck, *difficulty)
	if err != nil {
		return err
	}
	if *auto != "" {
		return autoPlay(ctx, cfg, *auto, *out)
	}

	srv := &rivalsnet.Server{
		DeckFile:   cfg.DecksFile,
		Game:       cfg.Game,
		Difficulty: cfg.Difficulty,
	}
	ln, err := stdnet.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go srv.Serve(ctx, ln)

	conn, err := stdnet.Dial("tcp", ln.Addr().String())
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close()

	client := rivalsnet.NewClient(conn, os.Stdin, os.Stdout)
	client.ReplayDir = *out
	if err := client.Join(cfg.DeckNumber, cfg.Difficulty.String()); err != nil {
		return err
	}
	fmt.Println("Type 'help' for commands.")
	return client.RunREPL(ctx)
}

// autoPlay runs a whole match with a policy on the human side, printing
// the event log as it happens and saving the replay.
func autoPlay(ctx context.Context, cfg config.Config, playerDifficulty, out string) error {
	pd, err := ai.ParseDifficulty(playerDifficulty)
	if err != nil {
		return err
	}
	deckName, cards, err := game.LoadDeck(cfg.DecksFile, cfg.DeckNumber, cfg.Game.MaxDeckSize)
	if err != nil {
		return err
	}
	if cfg.Game.Seed == 0 {
		cfg.Game.Seed = time.Now().UnixNano()
	}
	opponent, err := ai.NewPolicy(cfg.Difficulty, ai.PolicySeed(cfg.Game.Seed, game.PlayerOpponent))
	if err != nil {
		return err
	}
	player, err := ai.NewPolicy(pd, ai.PolicySeed(cfg.Game.Seed, game.PlayerHuman))
	if err != nil {
		return err
	}

	logger := log.NewTextLogger(os.Stdout)
	m, err := game.NewMatch(game.MatchConfig{
		Config:     cfg.Game,
		PlayerDeck: cards,
		Policy:     opponent,
		Logger:     logger,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Deck %q (%s AI) vs %s AI\n", deckName, pd, cfg.Difficulty)
	if err := m.PlayOut(ctx, player); err != nil {
		return err
	}

	snap := m.Snapshot()
	fmt.Println(rivalsnet.GameOverText(snap))

	r := replay.Create(snap, logger.Events(), replay.Options{
		Difficulty: cfg.Difficulty.String(),
		PolicySeed: ai.PolicySeed(cfg.Game.Seed, game.PlayerOpponent),
	})
	path := filepath.Join(out, replay.Filename(r.MatchID))
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := replay.Export(f, r); err != nil {
		return err
	}
	fmt.Printf("Replay saved to %s\n", path)
	return nil
}

func runHost(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("host", flag.ExitOnError)
	configFile := fs.String("config", "", "path to config YAML file")
	addr := fs.String("addr", ":9000", "TCP address to listen on")
	fs.Parse(args)

	cfg, err := loadConfig(*configFile, 0, "")
	if err != nil {
		return err
	}
	srv := &rivalsnet.Server{
		Addr:       *addr,
		DeckFile:   cfg.DecksFile,
		Game:       cfg.Game,
		Difficulty: cfg.Difficulty,
		Store:      replay.NewStore(0),
		Log:        os.Stdout,
		Ready: func(a stdnet.Addr) {
			fmt.Printf("Listening on %s (%s rules, %s AI)\n", a, cfg.Game.RuleSet, cfg.Difficulty)
		},
	}
	return srv.Run(ctx)
}

func runJoin(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("join", flag.ExitOnError)
	deck := fs.Int("deck", 1, "deck number to use (from the server's decks file)")
	difficulty := fs.String("difficulty", "", "AI difficulty (default: the server's)")
	addr := fs.String("addr", "localhost:9000", "server address to connect to")
	fs.Parse(args)

	return rivalsnet.Connect(ctx, *addr, *deck, *difficulty)
}

func runReplay(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: rivals-cli replay FILE")
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	r, err := replay.Import(data)
	if err != nil {
		return err
	}
	fmt.Print(replay.Format(r))
	return nil
}

func runSim(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("sim", flag.ExitOnError)
	configFile := fs.String("config", "", "path to config YAML file")
	runs := fs.Int("runs", 1000, "number of matches")
	seed := fs.Int64("seed", 1, "base seed")
	workers := fs.Int("workers", 0, "parallel workers (default: one per CPU)")
	player := fs.String("player", "baseline", "difficulty of the AI in the player seat")
	opponent := fs.String("opponent", "", "difficulty of the opponent AI (default from config)")
	deck := fs.Int("deck", 0, "player deck number from the decks file (default: the built-in deck)")
	fs.Parse(args)

	cfg, err := loadConfig(*configFile, 0, *opponent)
	if err != nil {
		return err
	}
	pd, err := ai.ParseDifficulty(*player)
	if err != nil {
		return err
	}

	sc := sim.Config{
		Game:     cfg.Game,
		Player:   pd,
		Opponent: cfg.Difficulty,
		Runs:     *runs,
		Seed:     *seed,
		Workers:  *workers,
	}
	if *deck > 0 {
		_, cards, err := game.LoadDeck(cfg.DecksFile, *deck, cfg.Game.MaxDeckSize)
		if err != nil {
			return err
		}
		sc.PlayerDeck = cards
	}

	res, err := sim.Run(ctx, sc)
	if err != nil {
		return err
	}
	fmt.Printf("%s (%s) vs %s, %s rules\n", pd, deckLabel(*deck), cfg.Difficulty, cfg.Game.RuleSet)
	fmt.Println(res)
	return nil
}

func deckLabel(n int) string {
	if n == 0 {
		return "default deck"
	}
	return fmt.Sprintf("deck %d", n)
}
