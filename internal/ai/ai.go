// Package ai picks the next move for a snake. Every strategy is a pure
// function of the state; the Engine only carries the shared cycle cache and
// the optional custom script.
package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/vovakirdan/snakelab/internal/engine"
	"github.com/vovakirdan/snakelab/internal/hamilton"
	"github.com/vovakirdan/snakelab/internal/script"
)

// Strategy selects the decision algorithm.
type Strategy string

const (
	StrategyGreedy      Strategy = "greedy"
	StrategySafe        Strategy = "safe"
	StrategyStrong      Strategy = "strong"
	StrategyHamiltonian Strategy = "hamiltonian"
	StrategyCustom      Strategy = "custom"
)

// DefaultStrategy is used when the host has no preference.
const DefaultStrategy = StrategyStrong

// Strategies lists every strategy in menu order.
var Strategies = []Strategy{
	StrategyGreedy,
	StrategySafe,
	StrategyStrong,
	StrategyHamiltonian,
	StrategyCustom,
}

// ParseStrategy converts a name such as "strong" into a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	name := Strategy(strings.ToLower(strings.TrimSpace(s)))
	for _, st := range Strategies {
		if st == name {
			return st, nil
		}
	}
	return "", fmt.Errorf("ai: unknown strategy %q", s)
}

// Description returns a one-line summary for menus and help output.
func (s Strategy) Description() string {
	switch s {
	case StrategyGreedy:
		return "closest step to food, no lookahead"
	case StrategySafe:
		return "shortest path to food, else chase tail, else most space"
	case StrategyStrong:
		return "food path only if the tail stays reachable after eating"
	case StrategyHamiltonian:
		return "follow a board-covering cycle with guarded shortcuts"
	case StrategyCustom:
		return "user script, safe fallback on any failure"
	default:
		return ""
	}
}

// Tag names the algorithm that actually produced a move.
type Tag string

const (
	TagToFood      Tag = "to_food"
	TagToTail      Tag = "to_tail"
	TagMaxSpace    Tag = "max_space"
	TagFallback    Tag = "fallback"
	TagGreedy      Tag = "greedy"
	TagHamiltonian Tag = "hamiltonian"
	TagCustom      Tag = "custom"
)

// Tags lists every tag, for stable reporting order.
var Tags = []Tag{TagToFood, TagToTail, TagMaxSpace, TagFallback, TagGreedy, TagHamiltonian, TagCustom}

// Move is a decision. PathLength is the planned path length for BFS-driven
// moves and zero otherwise.
type Move struct {
	Direction  engine.Direction
	Tag        Tag
	PathLength int
}

// Engine dispatches Decide calls to the strategies.
type Engine struct {
	cycles      *hamilton.Cache
	script      *script.Script
	onScriptErr func(error)
}

// Option configures an Engine.
type Option func(*Engine)

// WithScript sets the script used by StrategyCustom.
func WithScript(s *script.Script) Option {
	return func(e *Engine) {
		e.script = s
	}
}

// WithScriptErrors registers fn to observe custom script failures. The move
// still degrades to the safe strategy.
func WithScriptErrors(fn func(error)) Option {
	return func(e *Engine) {
		e.onScriptErr = fn
	}
}

// New returns an Engine sharing cycles. A nil cache gets a private one.
func New(cycles *hamilton.Cache, opts ...Option) *Engine {
	if cycles == nil {
		cycles = hamilton.NewCache()
	}
	e := &Engine{cycles: cycles}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Script returns the configured custom script, or nil.
func (e *Engine) Script() *script.Script { return e.script }

// Decide returns a move for s without modifying it.
func (e *Engine) Decide(s engine.State, strategy Strategy) Move {
	return e.DecideContext(context.Background(), s, strategy)
}

// DecideContext is Decide with a context bounding the custom script.
func (e *Engine) DecideContext(ctx context.Context, s engine.State, strategy Strategy) Move {
	legal := engine.LegalDirections(s)
	if len(legal) == 0 {
		return Move{Direction: s.Direction, Tag: TagFallback}
	}

	switch strategy {
	case StrategyGreedy:
		return greedyMove(s, legal)
	case StrategyStrong:
		return strongMove(s, legal)
	case StrategyHamiltonian:
		return e.hamiltonianMove(s, legal)
	case StrategyCustom:
		return e.customMove(ctx, s, legal)
	default:
		return safeMove(s, legal)
	}
}

func contains(legal []engine.Direction, d engine.Direction) bool {
	for _, l := range legal {
		if l == d {
			return true
		}
	}
	return false
}

// pathMove turns the first step of path into a move when that step is legal.
func pathMove(s engine.State, legal []engine.Direction, path []engine.Cell, tag Tag) (Move, bool) {
	if len(path) == 0 {
		return Move{}, false
	}
	d := dirFromTo(s.Head(), path[0])
	if engine.IsOpposite(s.Direction, d) || !contains(legal, d) {
		return Move{}, false
	}
	return Move{Direction: d, Tag: tag, PathLength: len(path)}, true
}

func greedyMove(s engine.State, legal []engine.Direction) Move {
	head := s.Head()
	best := legal[0]
	bestDist := -1
	for _, d := range legal {
		dist := head.Move(d).Manhattan(s.Food)
		if bestDist < 0 || dist < bestDist {
			best, bestDist = d, dist
		}
	}
	return Move{Direction: best, Tag: TagGreedy}
}

func safeMove(s engine.State, legal []engine.Direction) Move {
	path, ok := bfsPath(s.Head(), s.Food, bodyGrid(s, true))
	if ok {
		if m, ok := pathMove(s, legal, path, TagToFood); ok {
			return m
		}
	}
	return tailOrSpace(s, legal)
}

// tailOrSpace chases the current tail, and failing that maximises free area.
func tailOrSpace(s engine.State, legal []engine.Direction) Move {
	path, ok := bfsPath(s.Head(), s.Tail(), bodyGrid(s, true))
	if ok {
		if m, ok := pathMove(s, legal, path, TagToTail); ok {
			return m
		}
	}
	return maxSpaceMove(s, legal)
}

func strongMove(s engine.State, legal []engine.Direction) Move {
	path, ok := bfsPath(s.Head(), s.Food, bodyGrid(s, true))
	if ok && len(path) > 0 && escapesAfterEating(s, path) {
		if m, ok := pathMove(s, legal, path, TagToFood); ok {
			return m
		}
	}
	return tailOrSpace(s, legal)
}

// escapesAfterEating predicts the body once path has been walked and the food
// eaten, then checks the food cell can still reach the new tail.
//
// After len(path) moves with one growth, the first keep segments of the
// current body survive. When the path consumes the whole body, the current
// tail is used as the target; it is an approximation, as that cell is free
// in the predicted position rather than part of the snake.
func escapesAfterEating(s engine.State, path []engine.Cell) bool {
	keep := len(s.Snake) - (len(path) - 1)

	g := newGrid(s.Width, s.Height)
	for _, c := range path {
		g.set(c, true)
	}
	for i := 0; i < keep; i++ {
		g.set(s.Snake[i], true)
	}

	tail := s.Tail()
	if keep > 0 {
		tail = s.Snake[keep-1]
	}
	g.set(tail, false)

	_, ok := bfsPath(s.Food, tail, g)
	return ok
}

func maxSpaceMove(s engine.State, legal []engine.Direction) Move {
	best := legal[0]
	bestScore := -1
	for _, d := range legal {
		next := simulateSnake(s, d)
		g := newGrid(s.Width, s.Height)
		for _, c := range next {
			g.set(c, true)
		}
		head := next[0]
		g.set(head, false)

		score := floodFill(head, g)*1000 - head.Manhattan(s.Food)
		if score > bestScore {
			best, bestScore = d, score
		}
	}
	return Move{Direction: best, Tag: TagMaxSpace}
}

// hamiltonianMove follows the cached cycle and shortcuts toward the food when
// the jump stays well ahead of the tail on the cycle. Boards without a cycle
// and off-cycle positions are handled by safeMove.
func (e *Engine) hamiltonianMove(s engine.State, legal []engine.Direction) Move {
	cycle, err := e.cycles.Get(s.Width, s.Height)
	if err != nil {
		return safeMove(s, legal)
	}

	head := s.Head()
	headIdx := cycle.IndexOf(head)
	tailIdx := cycle.IndexOf(s.Tail())
	foodIdx := cycle.IndexOf(s.Food)
	if headIdx < 0 || tailIdx < 0 || foodIdx < 0 {
		return safeMove(s, legal)
	}

	nextIdx := cycle.Next(headIdx)
	successor := cycle.At(nextIdx)

	best, found := engine.DirUp, false
	for _, d := range legal {
		if head.Move(d) == successor {
			best, found = d, true
			break
		}
	}
	if !found {
		return safeMove(s, legal)
	}

	bestDist := cycle.Distance(headIdx, foodIdx)
	space := cycle.Distance(headIdx, tailIdx)
	length := len(s.Snake)

	for _, d := range legal {
		idx := cycle.IndexOf(head.Move(d))
		if idx == nextIdx {
			continue
		}
		toFood := cycle.Distance(idx, foodIdx)
		jump := cycle.Distance(headIdx, idx)
		if toFood < bestDist && jump < space && space-jump > length+4 {
			best, bestDist = d, toFood
		}
	}

	return Move{Direction: best, Tag: TagHamiltonian}
}

func (e *Engine) customMove(ctx context.Context, s engine.State, legal []engine.Direction) Move {
	if e.script == nil {
		return safeMove(s, legal)
	}
	d, err := e.script.Run(ctx, s)
	if err == nil && !contains(legal, d) {
		err = fmt.Errorf("ai: script chose illegal direction %s", d)
	}
	if err != nil {
		if e.onScriptErr != nil {
			e.onScriptErr(err)
		}
		return safeMove(s, legal)
	}
	return Move{Direction: d, Tag: TagCustom}
}
