// Package server answers solve requests and streams simulated sessions
// over WebSocket.
package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/icheered/RummikubBot/internal/session"
	"github.com/icheered/RummikubBot/internal/solver"
	"github.com/icheered/RummikubBot/internal/store"
	"github.com/icheered/RummikubBot/internal/tile"
)

// maxCachedHands bounds the per-server SOLVE cache; it is cleared when full.
const maxCachedHands = 4096

// DefaultMemoCapacity bounds each solver memo when Options leaves it at 0.
// The memos live as long as the server, across unrelated requests.
const DefaultMemoCapacity = 1 << 18

type Options struct {
	// Mode answers requests that name no mode. Defaults to exhaustive.
	Mode    solver.Mode
	Session session.Config
	// MemoCapacity is the LRU bound of each solver memo; 0 picks
	// DefaultMemoCapacity.
	MemoCapacity int
	// Store, when set, journals every finished SIMULATE session.
	Store store.Store
}

// Server keeps one Solver per mode, shared by every connection.
type Server struct {
	opts    Options
	solvers map[solver.Mode]*solver.Solver
	runID   string
	seeds   atomic.Int64

	upgrader websocket.Upgrader

	mu    sync.RWMutex
	cache map[string]solver.Report
}

func New(opts Options) *Server {
	if opts.MemoCapacity <= 0 {
		opts.MemoCapacity = DefaultMemoCapacity
	}
	s := &Server{
		opts: opts,
		solvers: map[solver.Mode]*solver.Solver{
			solver.ModeGreedy:     solver.New(solver.Options{Mode: solver.ModeGreedy, MemoCapacity: opts.MemoCapacity}),
			solver.ModeExhaustive: solver.New(solver.Options{Mode: solver.ModeExhaustive, MemoCapacity: opts.MemoCapacity}),
		},
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		cache: make(map[string]solver.Report),
	}
	if opts.Store != nil {
		s.runID = opts.Store.NewRunID()
	}
	return s
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)
	mux.HandleFunc("/ws", s.wsHandler)
	return mux
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Handler()}

	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("API listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	log.Info().Msg("API stopped")
	return nil
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (s *Server) wsHandler(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("WS upgrade error")
		return
	}
	c := newConn(s, ws)
	go c.writePump()
	c.readPump()
}

func (s *Server) solverFor(mode string) (*solver.Solver, error) {
	if mode == "" {
		mode = string(s.opts.Mode)
	}
	m, err := solver.ParseMode(mode)
	if err != nil {
		return nil, err
	}
	return s.solvers[m], nil
}

// maxHand is the size of the full tile set the server deals from.
func (s *Server) maxHand() int {
	return s.opts.Session.Copies*tile.MaxNumber*tile.NumColors + s.opts.Session.Jokers
}

// nextSeed picks the seed of a SIMULATE request. Without a requested seed,
// a configured base seed is handed out in sequence; otherwise 0 lets the
// session seed itself from the clock.
func (s *Server) nextSeed(requested int64) int64 {
	if requested != 0 {
		return requested
	}
	if base := s.opts.Session.Seed; base != 0 {
		return base + s.seeds.Add(1) - 1
	}
	return 0
}

func (s *Server) cached(key string) (solver.Report, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rep, ok := s.cache[key]
	return rep, ok
}

func (s *Server) remember(key string, rep solver.Report) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.cache) >= maxCachedHands {
		s.cache = make(map[string]solver.Report)
	}
	s.cache[key] = rep
}
