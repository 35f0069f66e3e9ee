// Package solver decides whether an inventory can be split exactly into
// melds, and returns one such split when it can.
//
// Two search modes exist. ModeExhaustive, the default, tries every meld
// containing the lowest remaining tile and is a decision procedure.
// ModeGreedy proposes a single group and a single run per starting tile
// (see meld.FindGroup and meld.FindRun), so it can answer "not found" for a
// hand that does have a partition through other meld boundaries. Greedy
// branches at every cell, so its work grows exponentially once a hand
// passes a few dozen tiles; use it on small hands only. Results are
// memoized per inventory state for the life of the Solver.
package solver

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"github.com/icheered/RummikubBot/internal/meld"
	"github.com/icheered/RummikubBot/internal/tile"
)

type Mode string

const (
	ModeGreedy     Mode = "GREEDY"
	ModeExhaustive Mode = "EXHAUSTIVE"
)

func ParseMode(s string) (Mode, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", string(ModeExhaustive):
		return ModeExhaustive, nil
	case string(ModeGreedy):
		return ModeGreedy, nil
	}
	return "", fmt.Errorf("unknown solve mode %q", s)
}

// Result is either Found with its melds or not found. Not found is an
// ordinary answer, not an error.
type Result struct {
	Found bool        `json:"found"`
	Melds []meld.Meld `json:"melds"`
}

type Options struct {
	Mode Mode
	// MemoCapacity bounds the memo table (LRU). 0 means unbounded.
	MemoCapacity int
}

// Stats counts search work since the Solver was created or last reset.
type Stats struct {
	Calls      int64 `json:"calls"`
	MemoHits   int64 `json:"memoHits"`
	MemoMisses int64 `json:"memoMisses"`
	MaxDepth   int64 `json:"maxDepth"`
	MemoSize   int   `json:"memoSize"`
}

// Solver owns one memo table. It is safe to share between goroutines; each
// Solve call itself runs synchronously.
type Solver struct {
	mode Mode
	memo *memo

	calls    atomic.Int64
	hits     atomic.Int64
	misses   atomic.Int64
	maxDepth atomic.Int64
}

func New(opts Options) *Solver {
	mode := opts.Mode
	if mode == "" {
		mode = ModeExhaustive
	}
	return &Solver{mode: mode, memo: newMemo(opts.MemoCapacity)}
}

func (s *Solver) Mode() Mode { return s.mode }

// ctxCheckEvery is how many search calls pass between context checks.
var ctxCheckEvery = 4096

// control carries the cancellation state of one Solve call.
type control struct {
	ctx   context.Context
	calls int
	err   error
}

func (c *control) stopped() bool {
	if c.err != nil {
		return true
	}
	c.calls++
	if c.calls%ctxCheckEvery == 0 {
		c.err = c.ctx.Err()
	}
	return c.err != nil
}

// Solve searches for a partition of inv. inv is never modified, and the
// returned melds are owned by the caller.
func (s *Solver) Solve(inv tile.Inventory) Result {
	res, _ := s.SolveContext(context.Background(), inv)
	return res
}

// SolveContext is Solve that gives up when ctx is done, returning ctx.Err().
// States left unfinished by the cancellation are not memoized.
func (s *Solver) SolveContext(ctx context.Context, inv tile.Inventory) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	ctl := &control{ctx: ctx}
	res := s.search(inv, 0, ctl)
	if ctl.err != nil {
		log.Debug().Err(ctl.err).Int("tiles", inv.Size()).Int("calls", ctl.calls).Msg("solve cancelled")
		return Result{}, ctl.err
	}
	log.Debug().
		Int("tiles", inv.Size()).
		Int("jokers", inv.Jokers()).
		Bool("found", res.Found).
		Int("melds", len(res.Melds)).
		Msg("solve")
	return clone(res), nil
}

func (s *Solver) Stats() Stats {
	return Stats{
		Calls:      s.calls.Load(),
		MemoHits:   s.hits.Load(),
		MemoMisses: s.misses.Load(),
		MaxDepth:   s.maxDepth.Load(),
		MemoSize:   s.memo.len(),
	}
}

// Reset drops the memo table and zeroes the counters.
func (s *Solver) Reset() {
	s.memo.reset()
	s.calls.Store(0)
	s.hits.Store(0)
	s.misses.Store(0)
	s.maxDepth.Store(0)
}

func (s *Solver) search(inv tile.Inventory, depth int, ctl *control) Result {
	if ctl.stopped() {
		return Result{}
	}
	s.calls.Add(1)
	s.noteDepth(depth)

	key := inv.Key()
	if r, ok := s.memo.get(key); ok {
		s.hits.Add(1)
		return r
	}
	s.misses.Add(1)

	var r Result
	switch {
	case inv.RealCount() == 0:
		// Leftover jokers are allowed.
		r = Result{Found: true, Melds: []meld.Meld{}}
	case !allCoverable(inv):
		// Some tile fits no meld at all.
		r = Result{}
	case s.mode == ModeExhaustive:
		r = s.exhaustive(inv, depth, ctl)
	default:
		r = s.greedy(inv, depth, ctl)
	}
	// A cancelled subtree is not a real NotFound.
	if ctl.err == nil {
		s.memo.put(key, r)
	}
	return r
}

func (s *Solver) greedy(inv tile.Inventory, depth int, ctl *control) Result {
	for n := tile.MinNumber; n <= tile.MaxNumber; n++ {
		groupTried := false
		for c := tile.Color(0); c < tile.NumColors; c++ {
			if !inv.Has(n, c) {
				continue
			}
			// FindGroup does not depend on c.
			if !groupTried {
				groupTried = true
				if m, ok := meld.FindGroup(inv, n); ok {
					if r, ok := s.commit(inv, m, depth, ctl); ok {
						return r
					}
				}
			}
			if m, ok := meld.FindRun(inv, n, c); ok {
				if r, ok := s.commit(inv, m, depth, ctl); ok {
					return r
				}
			}
		}
	}
	return Result{}
}

// exhaustive branches on every meld that can hold the lowest remaining
// tile. Every partition puts that tile in one of them, so trying them all
// is complete.
func (s *Solver) exhaustive(inv tile.Inventory, depth int, ctl *control) Result {
	n, c, ok := lowest(inv)
	if !ok {
		return Result{Found: true, Melds: []meld.Meld{}}
	}
	for _, m := range meld.Candidates(inv, n, c) {
		if r, ok := s.commit(inv, m, depth, ctl); ok {
			return r
		}
	}
	return Result{}
}

func (s *Solver) commit(inv tile.Inventory, m meld.Meld, depth int, ctl *control) (Result, bool) {
	sub := s.search(inv.Without(m.Tiles), depth+1, ctl)
	if !sub.Found {
		return Result{}, false
	}
	melds := make([]meld.Meld, 0, len(sub.Melds)+1)
	melds = append(melds, m)
	melds = append(melds, sub.Melds...)
	return Result{Found: true, Melds: melds}, true
}

func (s *Solver) noteDepth(depth int) {
	d := int64(depth)
	for {
		cur := s.maxDepth.Load()
		if d <= cur || s.maxDepth.CompareAndSwap(cur, d) {
			return
		}
	}
}

func allCoverable(inv tile.Inventory) bool {
	for n := tile.MinNumber; n <= tile.MaxNumber; n++ {
		for c := tile.Color(0); c < tile.NumColors; c++ {
			if inv.Has(n, c) && !meld.Coverable(inv, n, c) {
				return false
			}
		}
	}
	return true
}

func lowest(inv tile.Inventory) (int, tile.Color, bool) {
	for n := tile.MinNumber; n <= tile.MaxNumber; n++ {
		for c := tile.Color(0); c < tile.NumColors; c++ {
			if inv.Has(n, c) {
				return n, c, true
			}
		}
	}
	return 0, 0, false
}

func clone(r Result) Result {
	out := Result{Found: r.Found}
	if r.Melds == nil {
		return out
	}
	out.Melds = make([]meld.Meld, len(r.Melds))
	for i, m := range r.Melds {
		ts := make([]tile.Tile, len(m.Tiles))
		copy(ts, m.Tiles)
		out.Melds[i] = meld.Meld{Tiles: ts}
	}
	return out
}
