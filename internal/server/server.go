// Package server exposes the environment over websockets. Each connection
// gets its own environment, so many training clients can share one process.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"github.com/lox/buckshot/internal/env"
	"github.com/lox/buckshot/internal/game"
	"github.com/lox/buckshot/internal/gameid"
	"github.com/lox/buckshot/internal/randutil"
)

// Config holds the session policy and the environment settings every session
// is built with.
type Config struct {
	IdleTimeout time.Duration
	MaxSessions int
	// Seed is the base of the sequence used for resets that carry no seed.
	Seed       int64
	EnvOptions []env.Option
}

// Server is the websocket environment server.
type Server struct {
	addr      string
	cfg       Config
	upgrader  websocket.Upgrader
	validator *Validator
	logger    *log.Logger
	clock     quartz.Clock
	ids       *gameid.Generator

	mu       sync.RWMutex
	sessions map[string]*Session
	http     *http.Server

	seeds         atomic.Int64
	gamesStarted  atomic.Int64
	gamesFinished atomic.Int64
}

// NewServer creates a server listening on addr. A nil clock uses real time
// and a nil logger discards output.
func NewServer(addr string, cfg Config, logger *log.Logger, clock quartz.Clock) *Server {
	validator, err := NewValidator()
	if err != nil {
		panic(fmt.Sprintf("embedded schemas: %v", err))
	}
	if clock == nil {
		clock = quartz.NewReal()
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = 5 * time.Minute
	}
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = 64
	}
	return &Server{
		addr: addr,
		cfg:  cfg,
		upgrader: websocket.Upgrader{
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		validator: validator,
		logger:    logger.WithPrefix("server"),
		clock:     clock,
		ids:       gameid.NewGenerator(clock, randutil.Derive(cfg.Seed, randutil.StreamAgent+2)),
		sessions:  make(map[string]*Session),
	}
}

// Handler returns the HTTP routes of the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/stats", s.handleStats)
	return mux
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	s.mu.Lock()
	s.http = &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv := s.http
	s.mu.Unlock()

	s.logger.Info("Starting websocket server", "addr", s.addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown closes every session and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.RLock()
	sessions := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	srv := s.http
	s.mu.RUnlock()

	for _, sess := range sessions {
		_ = sess.Close()
	}
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// SessionCount returns the number of open sessions.
func (s *Server) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *Server) nextSeed() int64 {
	return randutil.GameSeed(s.cfg.Seed, int(s.seeds.Add(1)-1))
}

// reserve claims a session slot, or reports that the server is full.
func (s *Server) reserve(sess *Session) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.sessions) >= s.cfg.MaxSessions {
		return false
	}
	s.sessions[sess.id] = sess
	return true
}

func (s *Server) remove(sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sess.id]; ok {
		delete(s.sessions, sess.id)
		s.logger.Info("Session closed", "session", sess.id, "sessions", len(s.sessions))
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.SessionCount() >= s.cfg.MaxSessions {
		http.Error(w, "too many sessions", http.StatusServiceUnavailable)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("WebSocket upgrade failed", "error", err)
		return
	}

	sess := newSession(s, conn, s.ids.Generate())
	if !s.reserve(sess) {
		// lost a race for the last slot
		sess.idle.Stop()
		sess.cancel()
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "too many sessions"),
			time.Now().Add(writeWait))
		_ = conn.Close()
		return
	}
	s.logger.Info("Session opened", "session", sess.id, "remote", r.RemoteAddr)

	sess.reply("", MessageTypeWelcome, WelcomeData{
		Session:         sess.id,
		Actions:         actionNames(),
		ObservationSize: game.ObservationSize,
	})
	sess.Start()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// StatsData is the body of /stats.
type StatsData struct {
	Sessions      int   `json:"sessions"`
	GamesStarted  int64 `json:"gamesStarted"`
	GamesFinished int64 `json:"gamesFinished"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(StatsData{
		Sessions:      s.SessionCount(),
		GamesStarted:  s.gamesStarted.Load(),
		GamesFinished: s.gamesFinished.Load(),
	})
}
