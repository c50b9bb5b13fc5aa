// Package sim hosts games: it owns the single mutable state, feeds it to the
// AI engine and advances it on a timer, or as fast as possible for benchmarks.
package sim

import (
	"context"
	"math/rand"
	"runtime"
	"time"

	"github.com/vovakirdan/snakelab/internal/ai"
	"github.com/vovakirdan/snakelab/internal/engine"
)

// Config describes one hosted game.
type Config struct {
	Width    int
	Height   int
	Strategy ai.Strategy
	Seed     int64
	// MaxTicks stops a game that runs this long without ending. Zero disables it.
	MaxTicks uint64
	// Manual leaves steering to Steer; Step then never consults the AI.
	Manual bool
}

// Frame is the outcome of one Step.
type Frame struct {
	State engine.State
	Move  ai.Move
	// Decided is false for manual steps and for steps taken while not running.
	Decided bool
}

// Runner drives one game. It is not safe for concurrent use; hosts call it
// from a single loop.
type Runner struct {
	cfg    Config
	ai     *ai.Engine
	rng    *rand.Rand
	state  engine.State
	last   ai.Move
	counts map[ai.Tag]int
}

// NewRunner starts a game from cfg.Seed.
func NewRunner(e *ai.Engine, cfg Config) *Runner {
	if e == nil {
		e = ai.New(nil)
	}
	if cfg.Strategy == "" {
		cfg.Strategy = ai.DefaultStrategy
	}
	r := &Runner{
		cfg: cfg,
		ai:  e,
		rng: rand.New(rand.NewSource(cfg.Seed)),
	}
	r.reset()
	return r
}

func (r *Runner) reset() {
	r.state = engine.NewState(r.cfg.Width, r.cfg.Height, r.rng.Float64)
	r.last = ai.Move{}
	r.counts = make(map[ai.Tag]int)
}

// Restart begins a new game. The RNG stream continues, so consecutive games
// differ but the whole session stays reproducible from the seed.
func (r *Runner) Restart() {
	r.reset()
}

// State returns the current state.
func (r *Runner) State() engine.State { return r.state }

// Config returns the runner's configuration.
func (r *Runner) Config() Config { return r.cfg }

// LastMove returns the most recent AI decision.
func (r *Runner) LastMove() ai.Move { return r.last }

// Strategy returns the active strategy.
func (r *Runner) Strategy() ai.Strategy { return r.cfg.Strategy }

// SetStrategy switches strategy; it applies from the next Step.
func (r *Runner) SetStrategy(s ai.Strategy) { r.cfg.Strategy = s }

// Manual reports whether the runner is steered by hand.
func (r *Runner) Manual() bool { return r.cfg.Manual }

// SetManual toggles between hand steering and AI control.
func (r *Runner) SetManual(manual bool) { r.cfg.Manual = manual }

// Steer buffers a direction from the player.
func (r *Runner) Steer(d engine.Direction) {
	r.state = engine.SetPendingDirection(r.state, d)
}

// TogglePause pauses or resumes the game.
func (r *Runner) TogglePause() {
	r.state = engine.TogglePause(r.state)
}

// TagCounts returns how many AI moves each tag produced this game.
func (r *Runner) TagCounts() map[ai.Tag]int {
	out := make(map[ai.Tag]int, len(r.counts))
	for k, v := range r.counts {
		out[k] = v
	}
	return out
}

// Stalled reports whether the tick cap was reached.
func (r *Runner) Stalled() bool {
	return r.cfg.MaxTicks > 0 && r.state.Tick >= r.cfg.MaxTicks
}

// Done reports whether the loop should stop.
func (r *Runner) Done() bool {
	return r.state.Status.Terminal() || r.Stalled()
}

// Step decides (unless manual), applies the direction and advances one tick.
func (r *Runner) Step(ctx context.Context) Frame {
	if r.state.Status != engine.StatusRunning {
		return Frame{State: r.state}
	}

	f := Frame{}
	if !r.cfg.Manual {
		m := r.ai.DecideContext(ctx, r.state, r.cfg.Strategy)
		r.state = engine.SetPendingDirection(r.state, m.Direction)
		r.last = m
		r.counts[m.Tag]++
		f.Move, f.Decided = m, true
	}

	r.state = engine.Advance(r.state, r.rng.Float64)
	f.State = r.state
	return f
}

// Run steps until the game ends, the tick cap is hit, ctx is cancelled or
// onFrame returns an error. Turbo speed yields to the scheduler between ticks
// instead of sleeping.
func (r *Runner) Run(ctx context.Context, speed Speed, onFrame func(Frame) error) error {
	interval := speed.Interval()
	var tick <-chan time.Time
	if interval > 0 {
		t := time.NewTicker(interval)
		defer t.Stop()
		tick = t.C
	}

	for !r.Done() {
		if tick != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-tick:
			}
		} else {
			if err := ctx.Err(); err != nil {
				return err
			}
			runtime.Gosched()
		}

		f := r.Step(ctx)
		if onFrame != nil {
			if err := onFrame(f); err != nil {
				return err
			}
		}
	}
	return nil
}
