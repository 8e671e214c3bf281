package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/peterkuimelis/momentrivals/internal/config"
	"github.com/peterkuimelis/momentrivals/internal/web"
)

func main() {
	configFile := flag.String("config", "", "path to config YAML file")
	addr := flag.String("addr", "", "HTTP address to listen on (overrides config)")
	decksFile := flag.String("decks", "", "path to decks YAML file (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *decksFile != "" {
		cfg.DecksFile = *decksFile
	}

	srv := web.NewServer(cfg, nil)
	log.Printf("Moment Rivals web UI listening on %s (%s rules, %s AI)", cfg.Server.Addr, cfg.Game.RuleSet, cfg.Difficulty)
	if err := srv.ListenAndServe(cfg.Server.Addr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
