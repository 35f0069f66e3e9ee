// Package session runs the draw-and-solve loop: deal a starting hand, then
// draw one unit at a time and try to partition the hand after each draw
// until a partition exists.
package session

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/icheered/RummikubBot/internal/draw"
	"github.com/icheered/RummikubBot/internal/solver"
	"github.com/icheered/RummikubBot/internal/tile"
)

type Config struct {
	InitialHand int
	Copies      int
	Jokers      int
	// Seed for the first session; 0 picks a time-based seed. Session i of
	// RunMany uses Seed+i.
	Seed int64
}

func DefaultConfig() Config {
	return Config{InitialHand: 14, Copies: 2, Jokers: 2}
}

// Step is one solve attempt.
type Step struct {
	Seq       int    `json:"seq"`
	Drawn     string `json:"drawn,omitempty"`
	TileCount int    `json:"tileCount"`
	Found     bool   `json:"found"`
}

// Outcome is a finished session.
type Outcome struct {
	ID        string         `json:"id"`
	Seed      int64          `json:"seed"`
	Mode      solver.Mode    `json:"mode"`
	Draws     int            `json:"draws"`
	Hand      tile.Inventory `json:"-"`
	Result    solver.Result  `json:"result"`
	Steps     []Step         `json:"steps"`
	StartedAt time.Time      `json:"startedAt"`
	Duration  time.Duration  `json:"duration"`
}

func (o *Outcome) Report() solver.Report {
	return solver.BuildReport(o.Hand, o.Result, o.Mode)
}

// Runner runs sessions against one shared Solver, so hand states that recur
// across sessions are solved once.
type Runner struct {
	solver *solver.Solver
	cfg    Config
}

func NewRunner(s *solver.Solver, cfg Config) *Runner {
	return &Runner{solver: s, cfg: cfg}
}

func (r *Runner) Solver() *solver.Solver { return r.solver }

// Run plays one session with the given seed (0 = time-based). It returns
// draw.ErrSupplyEmpty (wrapped) if the supply runs out first, and ctx.Err()
// if ctx is done, including in the middle of a solve. emit may be nil.
func (r *Runner) Run(ctx context.Context, seed int64, emit Emitter) (*Outcome, error) {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if emit == nil {
		emit = func(Event) {}
	}

	out := &Outcome{
		ID:        ulid.Make().String(),
		Seed:      seed,
		Mode:      r.solver.Mode(),
		StartedAt: time.Now().UTC(),
	}
	defer func() { out.Duration = time.Since(out.StartedAt) }()

	supply, err := draw.NewSupply(r.cfg.Copies, r.cfg.Jokers, rand.New(rand.NewSource(seed)))
	if err != nil {
		return nil, err
	}

	var hand tile.Inventory
	dealt, err := supply.Deal(&hand, r.cfg.InitialHand)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", out.ID, err)
	}
	ids := make([]string, len(dealt))
	for i, t := range dealt {
		ids[i] = tileID(t)
	}
	emit(Event{SessionID: out.ID, Kind: EventHandDealt, Payload: HandDealtPayload{Tiles: ids}})

	drawn := ""
	for seq := 0; ; seq++ {
		res, err := r.solver.SolveContext(ctx, hand)
		if err != nil {
			return nil, err
		}
		rep := solver.BuildReport(hand, res, out.Mode)
		out.Steps = append(out.Steps, Step{Seq: seq, Drawn: drawn, TileCount: hand.Size(), Found: res.Found})
		emit(Event{SessionID: out.ID, Kind: EventSolveAttempted, Seq: seq, Payload: SolveAttemptedPayload{TileCount: hand.Size(), Report: rep}})

		if res.Found {
			out.Hand = hand
			out.Result = res
			emit(Event{SessionID: out.ID, Kind: EventSessionSolved, Seq: seq, Payload: SessionSolvedPayload{Draws: out.Draws, TileCount: hand.Size(), Report: rep}})
			log.Info().
				Str("session", out.ID).
				Int64("seed", seed).
				Int("draws", out.Draws).
				Int("tiles", hand.Size()).
				Int("melds", len(res.Melds)).
				Msg("session solved")
			return out, nil
		}

		if err := ctx.Err(); err != nil {
			return nil, err
		}
		t, err := supply.DrawInto(&hand)
		if err != nil {
			return nil, fmt.Errorf("session %s after %d draws: %w", out.ID, out.Draws, err)
		}
		out.Draws++
		drawn = tileID(t)
		emit(Event{SessionID: out.ID, Kind: EventTileDrawn, Seq: seq + 1, Payload: TileDrawnPayload{Tile: drawn, Remaining: supply.Remaining()}})
	}
}

// RunMany plays n independent sessions on up to workers goroutines. The
// first error cancels the rest. Outcomes are returned in session order.
func (r *Runner) RunMany(ctx context.Context, n, workers int, emit Emitter) ([]*Outcome, error) {
	if workers < 1 {
		workers = 1
	}
	base := r.cfg.Seed
	if base == 0 {
		base = time.Now().UnixNano()
	}

	outcomes := make([]*Outcome, n)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			o, err := r.Run(ctx, base+int64(i), emit)
			if err != nil {
				return err
			}
			outcomes[i] = o
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

func tileID(t tile.Tile) string {
	if t.Joker {
		return "JOKER"
	}
	return t.ID()
}
