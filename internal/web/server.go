package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"net/http"
	"strings"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/skip2/go-qrcode"

	"github.com/peterkuimelis/momentrivals/internal/config"
	"github.com/peterkuimelis/momentrivals/internal/game"
	rivalsnet "github.com/peterkuimelis/momentrivals/internal/net"
	"github.com/peterkuimelis/momentrivals/internal/replay"
	"github.com/peterkuimelis/momentrivals/internal/session"
)

//go:embed static
var staticFiles embed.FS

const maxBodySize = 1 << 20

// Server is the Moment Rivals web UI server.
type Server struct {
	decksFile string
	game      game.Config
	baseURL   string
	store     *replay.Store
	games     *rivalsnet.Server
	logger    *log.Logger
	mux       *http.ServeMux
}

// NewServer creates a new web server. Finished matches are kept in store;
// a nil store gets a fresh one.
func NewServer(cfg config.Config, store *replay.Store) *Server {
	if store == nil {
		store = replay.NewStore(0)
	}
	s := &Server{
		decksFile: cfg.DecksFile,
		game:      cfg.Game,
		baseURL:   strings.TrimSuffix(cfg.Server.BaseURL, "/"),
		store:     store,
		games: &rivalsnet.Server{
			DeckFile:   cfg.DecksFile,
			Game:       cfg.Game,
			Difficulty: cfg.Difficulty,
			Store:      store,
		},
		logger: log.Default(),
		mux:    http.NewServeMux(),
	}
	s.setupRoutes()
	return s
}

// SetClock replaces the clock driving turn timers.
func (s *Server) SetClock(c session.Clock) {
	s.games.Clock = c
}

// SetLogger replaces the diagnostics logger.
func (s *Server) SetLogger(l *log.Logger) {
	s.logger = l
}

func (s *Server) setupRoutes() {
	staticFS, _ := fs.Sub(staticFiles, "static")

	s.mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		f, err := staticFS.Open("index.html")
		if err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		defer f.Close()
		io.Copy(w, f)
	})
	s.mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	s.mux.HandleFunc("GET /api/cards", s.handleCards)
	s.mux.HandleFunc("GET /api/decks", s.handleDecks)
	s.mux.HandleFunc("POST /api/decks/validate", s.handleValidateDeck)

	s.mux.HandleFunc("GET /api/replays", s.handleReplays)
	s.mux.HandleFunc("GET /api/replays/{id}", s.handleReplay)
	s.mux.HandleFunc("GET /api/replays/{id}/qr", s.handleReplayQR)
	s.mux.HandleFunc("POST /api/replays/validate", s.handleValidateReplay)

	s.mux.HandleFunc("GET /ws", s.handleWebSocket)
}

// Handler returns the HTTP handler serving every route.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s.mux)
}

func (s *Server) logf(format string, args ...any) {
	s.logger.Printf(format, args...)
}

// wsConn carries protocol messages over a WebSocket, one JSON document per
// text frame.
type wsConn struct {
	ctx context.Context
	c   *websocket.Conn
}

func (w *wsConn) Send(msg rivalsnet.ServerMessage) error {
	return wsjson.Write(w.ctx, w.c, msg)
}

func (w *wsConn) Recv() (rivalsnet.ClientMessage, error) {
	var msg rivalsnet.ClientMessage
	err := wsjson.Read(w.ctx, w.c, &msg)
	if websocket.CloseStatus(err) != -1 {
		return msg, io.EOF
	}
	return msg, err
}

// handleWebSocket plays one match against the AI. The browser sends a join
// message first and then speaks the same protocol as the terminal client.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // Allow connections from any origin
	})
	if err != nil {
		s.logf("WebSocket accept error: %v", err)
		return
	}
	defer c.CloseNow()

	ctx := r.Context()
	conn := &wsConn{ctx: ctx, c: c}

	join, err := conn.Recv()
	if err != nil {
		s.logf("WebSocket read join: %v", err)
		return
	}
	if join.Type != "join" {
		c.Close(websocket.StatusPolicyViolation, "expected join message")
		return
	}

	sess, deckName, err := s.games.NewSession(join)
	if err != nil {
		_ = conn.Send(rivalsnet.ServerMessage{Type: "error", Error: err.Error()})
		c.Close(websocket.StatusNormalClosure, "could not start match")
		return
	}
	defer sess.Close()

	s.logf("Match %s: deck %q vs %s AI", sess.ID(), deckName, sess.Difficulty())
	if err := conn.Send(rivalsnet.ServerMessage{Type: "welcome", MatchID: sess.ID(), Deck: deckName}); err != nil {
		return
	}
	if err := rivalsnet.NewController(conn, sess).Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		s.logf("Match %s: %v", sess.ID(), err)
		return
	}
	c.Close(websocket.StatusNormalClosure, "game ended")
}

func (s *Server) handleReplays(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.List())
}

func (s *Server) handleReplay(w http.ResponseWriter, r *http.Request) {
	rp, ok := s.store.Get(r.PathValue("id"))
	if !ok {
		http.Error(w, "replay not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", replay.Filename(rp.MatchID)))
	if err := replay.Export(w, rp); err != nil {
		s.logf("export replay %s: %v", rp.MatchID, err)
	}
}

// handleReplayQR renders a QR code linking to the replay download.
func (s *Server) handleReplayQR(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, ok := s.store.Get(id); !ok {
		http.Error(w, "replay not found", http.StatusNotFound)
		return
	}
	base := s.baseURL
	if base == "" {
		base = "http://" + r.Host
	}
	png, err := qrcode.Encode(base+"/api/replays/"+id, qrcode.Medium, 256)
	if err != nil {
		http.Error(w, "could not render QR code", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}

// ReplayCheck is the response of POST /api/replays/validate.
type ReplayCheck struct {
	game.ValidationResult
	Summary *replay.Summary `json:"summary,omitempty"`
}

func (s *Server) handleValidateReplay(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		writeJSON(w, http.StatusRequestEntityTooLarge, ReplayCheck{
			ValidationResult: game.ValidationResult{Errors: []string{err.Error()}},
		})
		return
	}
	check := ReplayCheck{ValidationResult: replay.Validate(data)}
	if check.Valid {
		rp, err := replay.Import(data)
		if err != nil {
			check.Valid = false
			check.Errors = append(check.Errors, err.Error())
		} else {
			sum := replay.Summarize(rp)
			check.Summary = &sum
		}
	}
	writeJSON(w, http.StatusOK, check)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
