package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/peterkuimelis/momentrivals/internal/config"
	rivalsmcp "github.com/peterkuimelis/momentrivals/internal/mcp"
	"github.com/peterkuimelis/momentrivals/internal/replay"
)

func main() {
	configFile := flag.String("config", "", "path to config YAML file")
	decks := flag.String("decks", "", "path to decks YAML file (overrides config)")
	noTimer := flag.Bool("no-timer", true, "disable the turn timer")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *decks != "" {
		cfg.DecksFile = *decks
	}
	if *noTimer {
		cfg.Game.TurnTimeout = 0
	}

	m := rivalsmcp.NewManager(cfg, replay.NewStore(0))
	defer m.Close()

	s := server.NewMCPServer("moment-rivals", "1.0.0")
	rivalsmcp.RegisterTools(s, m)

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
