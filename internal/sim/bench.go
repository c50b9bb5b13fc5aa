package sim

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vovakirdan/snakelab/internal/ai"
	"github.com/vovakirdan/snakelab/internal/engine"
)

// BenchConfig describes a batch of headless games.
type BenchConfig struct {
	Width    int
	Height   int
	Strategy ai.Strategy
	Games    int
	// Workers bounds concurrency; zero means GOMAXPROCS.
	Workers int
	// Seed of the first game; game i uses Seed+i.
	Seed int64
	// MaxTicks caps each game; zero picks DefaultMaxTicks for the board.
	MaxTicks uint64
	// Trajectory keeps one TickRecord per tick in each Result.
	Trajectory bool
}

// DefaultMaxTicks is the tick cap used when none is configured: generous
// enough for a full Hamiltonian clear, small enough to stop tail-chasing loops.
func DefaultMaxTicks(width, height int) uint64 {
	cells := uint64(max(width, engine.MinBoardSize) * max(height, engine.MinBoardSize))
	return cells * cells
}

// TickRecord is one row of a game trajectory.
type TickRecord struct {
	Tick      uint64
	Head      engine.Cell
	Food      engine.Cell
	Length    int
	Score     int
	Direction engine.Direction
	Move      ai.Move
	Status    engine.Status
}

// Result summarises one finished game.
type Result struct {
	Strategy   ai.Strategy
	Width      int
	Height     int
	Seed       int64
	Score      int
	Length     int
	Ticks      uint64
	Status     engine.Status
	Stalled    bool
	FinalScore int
	Duration   time.Duration
	Tags       map[ai.Tag]int
	Trajectory []TickRecord
}

// Play runs a single game to completion at turbo speed.
func Play(ctx context.Context, e *ai.Engine, cfg Config, trajectory bool) (Result, error) {
	if cfg.MaxTicks == 0 {
		cfg.MaxTicks = DefaultMaxTicks(cfg.Width, cfg.Height)
	}
	cfg.Manual = false

	r := NewRunner(e, cfg)
	var records []TickRecord
	start := time.Now()

	err := r.Run(ctx, SpeedTurbo, func(f Frame) error {
		if trajectory {
			records = append(records, TickRecord{
				Tick:      f.State.Tick,
				Head:      f.State.Head(),
				Food:      f.State.Food,
				Length:    len(f.State.Snake),
				Score:     f.State.Score,
				Direction: f.Move.Direction,
				Move:      f.Move,
				Status:    f.State.Status,
			})
		}
		return nil
	})
	if err != nil {
		return Result{}, fmt.Errorf("sim: play seed %d: %w", cfg.Seed, err)
	}

	s := r.State()
	return Result{
		Strategy:   r.Strategy(),
		Width:      s.Width,
		Height:     s.Height,
		Seed:       cfg.Seed,
		Score:      s.Score,
		Length:     len(s.Snake),
		Ticks:      s.Tick,
		Status:     s.Status,
		Stalled:    r.Stalled() && !s.Status.Terminal(),
		FinalScore: engine.FinalScore(len(s.Snake), int(s.Tick)),
		Duration:   time.Since(start),
		Tags:       r.TagCounts(),
		Trajectory: records,
	}, nil
}

// Bench plays cfg.Games games concurrently and returns results in game order.
func Bench(ctx context.Context, e *ai.Engine, cfg BenchConfig) ([]Result, error) {
	if cfg.Games <= 0 {
		return nil, fmt.Errorf("sim: games must be positive, got %d", cfg.Games)
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if e == nil {
		e = ai.New(nil)
	}

	results := make([]Result, cfg.Games)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := range cfg.Games {
		g.Go(func() error {
			res, err := Play(ctx, e, Config{
				Width:    cfg.Width,
				Height:   cfg.Height,
				Strategy: cfg.Strategy,
				Seed:     cfg.Seed + int64(i),
				MaxTicks: cfg.MaxTicks,
			}, cfg.Trajectory)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Summary aggregates a batch of results.
type Summary struct {
	Games      int
	Passed     int
	GameOver   int
	Stalled    int
	MeanScore  float64
	MeanLength float64
	MeanTicks  float64
	BestScore  int
	BestFinal  int
	Tags       map[ai.Tag]int
}

// Summarize folds results into a Summary.
func Summarize(results []Result) Summary {
	sum := Summary{Games: len(results), Tags: make(map[ai.Tag]int)}
	if len(results) == 0 {
		return sum
	}

	var score, length, ticks float64
	for _, r := range results {
		switch {
		case r.Status == engine.StatusPassed:
			sum.Passed++
		case r.Status == engine.StatusGameOver:
			sum.GameOver++
		case r.Stalled:
			sum.Stalled++
		}
		score += float64(r.Score)
		length += float64(r.Length)
		ticks += float64(r.Ticks)
		sum.BestScore = max(sum.BestScore, r.Score)
		sum.BestFinal = max(sum.BestFinal, r.FinalScore)
		for tag, n := range r.Tags {
			sum.Tags[tag] += n
		}
	}

	n := float64(len(results))
	sum.MeanScore = score / n
	sum.MeanLength = length / n
	sum.MeanTicks = ticks / n
	return sum
}
