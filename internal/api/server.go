// Package api serves the bot over HTTP and WebSocket.
package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hailam/chessbot/internal/board"
	"github.com/hailam/chessbot/internal/engine"
	"github.com/hailam/chessbot/internal/storage"
)

const maxJSONBodyBytes int64 = 1 << 20

// Config controls request handling.
type Config struct {
	MaxLevel     int  // Highest accepted intelligence level, 0 = unlimited
	Strict       bool // Reject malformed boards instead of reading them leniently
	HistoryLimit int  // Default page size of /api/history
}

// DefaultConfig returns the server defaults.
func DefaultConfig() Config {
	return Config{
		MaxLevel:     5,
		HistoryLimit: 20,
	}
}

// Server wires the HTTP layer to the engine and the decision store.
type Server struct {
	engine *engine.Engine
	store  *storage.Storage // nil disables history
	cfg    Config

	srvMu sync.Mutex
	srv   *http.Server
}

// NewServer builds a Server. store may be nil.
func NewServer(eng *engine.Engine, store *storage.Storage, cfg Config) *Server {
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = DefaultConfig().HistoryLimit
	}
	return &Server{
		engine: eng,
		store:  store,
		cfg:    cfg,
	}
}

// Routes returns the HTTP handler of the server.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(allowCORS)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(limitBody)
		r.Get("/initial-board", s.handleInitialBoard)
		r.Get("/actions", s.handleActions)
		r.Get("/decision", s.handleDecision)
		r.Post("/decision", s.handleMoveAndDecide)
		r.Post("/result", s.handleResult)
		r.Get("/board.png", s.handleBoardPNG)
		r.Get("/history", s.handleHistory)
	})

	r.Get("/ws", s.handleWS)
	return r
}

// Listen starts the HTTP server and blocks until it stops.
func (s *Server) Listen(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 16,
	}

	s.srvMu.Lock()
	s.srv = srv
	s.srvMu.Unlock()
	defer func() {
		s.srvMu.Lock()
		s.srv = nil
		s.srvMu.Unlock()
	}()

	log.Printf("[api] listening on %s", addr)
	err := srv.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close attempts a graceful shutdown of the HTTP server.
func (s *Server) Close(ctx context.Context) error {
	s.srvMu.Lock()
	srv := s.srv
	s.srvMu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// parseBoard reads a board from a request, leniently unless configured strict.
func (s *Server) parseBoard(text string, botTurn bool) (board.Position, error) {
	if s.cfg.Strict {
		return board.ParseBoardStrict(text, botTurn)
	}
	return board.ParseBoard(text, botTurn), nil
}

// checkLevel validates an intelligence level against the configuration.
func (s *Server) checkLevel(level int) error {
	if level < 1 || (s.cfg.MaxLevel > 0 && level > s.cfg.MaxLevel) {
		return &levelError{level: level, max: s.cfg.MaxLevel}
	}
	return nil
}

// decide runs the engine and records the decision.
func (s *Server) decide(ctx context.Context, pos *board.Position, level int) (engine.DecisionRecord, error) {
	if err := s.checkLevel(level); err != nil {
		return engine.DecisionRecord{}, err
	}
	rec, err := s.engine.Decide(ctx, pos, level)
	if err != nil {
		return rec, err
	}
	if s.store != nil {
		if err := s.store.SaveDecision(storage.NewDecisionEntry(pos, rec)); err != nil {
			log.Printf("[api] failed to store decision: %v", err)
		}
	}
	return rec, nil
}
