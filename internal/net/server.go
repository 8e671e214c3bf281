package net

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/peterkuimelis/momentrivals/internal/ai"
	"github.com/peterkuimelis/momentrivals/internal/game"
	"github.com/peterkuimelis/momentrivals/internal/log"
	"github.com/peterkuimelis/momentrivals/internal/replay"
	"github.com/peterkuimelis/momentrivals/internal/session"
)

// Server hosts matches against the AI, one per TCP client.
type Server struct {
	Addr       string
	DeckFile   string
	Game       game.Config
	Difficulty ai.Difficulty // used when the client does not ask for one
	Store      *replay.Store
	Clock      session.Clock
	// Log receives every match event as text; nil discards them.
	Log io.Writer
	// Ready, if set, is called with the bound address before accepting.
	Ready func(addr net.Addr)
}

// Run listens on s.Addr and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts clients on ln until ctx is cancelled. Each client gets its
// own session.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	defer ln.Close()
	if s.Ready != nil {
		s.Ready(ln.Addr())
	}

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	var wg sync.WaitGroup
	defer wg.Wait()
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer conn.Close()
			s.printf("Player connected from %s\n", conn.RemoteAddr())
			if err := s.serveConn(ctx, conn); err != nil {
				s.printf("Connection %s: %v\n", conn.RemoteAddr(), err)
			}
		}()
	}
}

func (s *Server) serveConn(ctx context.Context, conn net.Conn) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	jc := NewJSONConn(conn)
	join, err := jc.Recv()
	if err != nil {
		return fmt.Errorf("read join message: %w", err)
	}
	if join.Type != "join" {
		_ = jc.Send(ServerMessage{Type: "error", Error: "expected join message"})
		return errors.New("expected join message")
	}

	sess, deckName, err := s.NewSession(join)
	if err != nil {
		_ = jc.Send(ServerMessage{Type: "error", Error: err.Error()})
		return err
	}
	defer sess.Close()

	s.printf("Match %s: deck %q vs %s AI\n", sess.ID(), deckName, sess.Difficulty())
	if err := jc.Send(ServerMessage{Type: "welcome", MatchID: sess.ID(), Deck: deckName}); err != nil {
		return err
	}
	return NewController(jc, sess).Run(ctx)
}

// NewSession loads the deck a join message asks for and starts a match
// against the AI.
func (s *Server) NewSession(join ClientMessage) (*session.Session, string, error) {
	deckNumber := join.DeckNumber
	if deckNumber == 0 {
		deckNumber = 1
	}
	name, cards, err := game.LoadDeck(s.DeckFile, deckNumber, s.Game.MaxDeckSize)
	if err != nil {
		return nil, "", fmt.Errorf("load deck: %w", err)
	}

	difficulty := s.Difficulty
	if join.Difficulty != "" {
		difficulty, err = ai.ParseDifficulty(join.Difficulty)
		if err != nil {
			return nil, "", err
		}
	}

	var logger log.EventLogger = log.NewMemoryLogger()
	if s.Log != nil {
		logger = log.NewTextLogger(s.Log)
	}
	sess, err := session.New(session.Options{
		Config:     s.Game,
		PlayerDeck: cards,
		Difficulty: difficulty,
		Clock:      s.Clock,
		Logger:     logger,
		Store:      s.Store,
	})
	if err != nil {
		return nil, "", err
	}
	return sess, name, nil
}

func (s *Server) printf(format string, args ...any) {
	if s.Log != nil {
		fmt.Fprintf(s.Log, format, args...)
	}
}
