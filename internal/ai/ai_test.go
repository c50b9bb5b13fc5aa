package ai

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/vovakirdan/snakelab/internal/engine"
	"github.com/vovakirdan/snakelab/internal/hamilton"
	"github.com/vovakirdan/snakelab/internal/script"
)

func cells(xy ...int) []engine.Cell {
	out := make([]engine.Cell, 0, len(xy)/2)
	for i := 0; i+1 < len(xy); i += 2 {
		out = append(out, engine.Cell{X: xy[i], Y: xy[i+1]})
	}
	return out
}

func makeState(width, height int, snake []engine.Cell, dir engine.Direction, food engine.Cell) engine.State {
	return engine.State{
		Width:     width,
		Height:    height,
		Snake:     snake,
		Direction: dir,
		Pending:   dir,
		Food:      food,
		Status:    engine.StatusRunning,
	}
}

func defaultState() engine.State {
	return makeState(7, 7, cells(3, 3, 2, 3, 1, 3), engine.DirRight, engine.Cell{X: 5, Y: 3})
}

func TestParseStrategy(t *testing.T) {
	for _, s := range Strategies {
		got, err := ParseStrategy(string(s))
		if err != nil || got != s {
			t.Errorf("ParseStrategy(%q) = %q, %v", s, got, err)
		}
		if s.Description() == "" {
			t.Errorf("%s has no description", s)
		}
	}
	if got, err := ParseStrategy(" Strong "); err != nil || got != StrategyStrong {
		t.Errorf("ParseStrategy(\" Strong \") = %q, %v", got, err)
	}
	if _, err := ParseStrategy("maxspace"); err == nil {
		t.Error("expected error for unknown strategy")
	}
}

func TestDecideChoosesLegalDirection(t *testing.T) {
	e := New(nil)
	s := defaultState()
	legal := engine.LegalDirections(s)

	for _, strategy := range Strategies {
		m := e.Decide(s, strategy)
		if !contains(legal, m.Direction) {
			t.Errorf("%s chose %v, legal %v", strategy, m.Direction, legal)
		}
	}
}

func TestDecideMovesTowardFood(t *testing.T) {
	e := New(nil)
	s := defaultState()
	s.Food = engine.Cell{X: 4, Y: 3}

	for _, strategy := range []Strategy{StrategyGreedy, StrategySafe, StrategyStrong} {
		m := e.Decide(s, strategy)
		if m.Direction != engine.DirRight {
			t.Errorf("%s chose %v, expected right", strategy, m.Direction)
		}
	}

	m := e.Decide(s, StrategySafe)
	if m.Tag != TagToFood || m.PathLength != 1 {
		t.Errorf("safe move = %+v, expected to_food with path length 1", m)
	}
}

func TestDecideFallbackWhenBoxedIn(t *testing.T) {
	s := makeState(5, 5,
		cells(2, 2, 2, 3, 1, 3, 1, 2, 1, 1, 2, 1, 3, 1, 3, 2, 3, 3),
		engine.DirUp, engine.Cell{X: 0, Y: 0})

	if legal := engine.LegalDirections(s); len(legal) != 0 {
		t.Fatalf("expected no legal directions, got %v", legal)
	}

	e := New(nil)
	for _, strategy := range Strategies {
		m := e.Decide(s, strategy)
		if m.Tag != TagFallback || m.Direction != engine.DirUp {
			t.Errorf("%s = %+v, expected fallback up", strategy, m)
		}
	}
}

func TestDecideNotRunning(t *testing.T) {
	s := defaultState()
	s.Status = engine.StatusPaused

	m := New(nil).Decide(s, StrategySafe)
	if m.Tag != TagFallback || m.Direction != s.Direction {
		t.Errorf("paused decide = %+v, expected fallback", m)
	}
}

func TestGreedyTieBreak(t *testing.T) {
	s := defaultState()
	s.Food = engine.Cell{X: 5, Y: 5}

	m := New(nil).Decide(s, StrategyGreedy)
	if m.Direction != engine.DirDown || m.Tag != TagGreedy {
		t.Errorf("greedy = %+v, expected down (first of tied down/right)", m)
	}
}

// A dead-end column: the food sits at its bottom and the snake's own body
// walls it off, so eating there leaves no route back to the tail.
func trapState() engine.State {
	return makeState(4, 3,
		cells(1, 0, 1, 1, 1, 2, 2, 2, 2, 1, 2, 0),
		engine.DirUp, engine.Cell{X: 0, Y: 2})
}

func TestSafeTakesFoodPath(t *testing.T) {
	m := New(nil).Decide(trapState(), StrategySafe)
	expected := Move{Direction: engine.DirLeft, Tag: TagToFood, PathLength: 3}
	if m != expected {
		t.Errorf("safe = %+v, expected %+v", m, expected)
	}
}

func TestStrongRejectsTrappingFoodPath(t *testing.T) {
	s := trapState()
	m := New(nil).Decide(s, StrategyStrong)

	if m.Tag == TagToFood {
		t.Fatalf("strong committed to the trapping food path: %+v", m)
	}
	expected := Move{Direction: engine.DirRight, Tag: TagToTail, PathLength: 1}
	if m != expected {
		t.Errorf("strong = %+v, expected %+v", m, expected)
	}
	if !engine.IsLegal(s, m.Direction) {
		t.Errorf("strong chose illegal %v", m.Direction)
	}
}

func TestEscapesAfterEating(t *testing.T) {
	s := trapState()
	path, ok := bfsPath(s.Head(), s.Food, bodyGrid(s, true))
	if !ok {
		t.Fatal("expected a food path")
	}
	if escapesAfterEating(s, path) {
		t.Error("expected trapped prediction")
	}

	open := defaultState()
	path, ok = bfsPath(open.Head(), open.Food, bodyGrid(open, true))
	if !ok {
		t.Fatal("expected a food path")
	}
	if !escapesAfterEating(open, path) {
		t.Error("expected escape on an open board")
	}
}

func TestMaxSpacePrefersLargerRegion(t *testing.T) {
	s := makeState(5, 5,
		cells(3, 0, 3, 1, 3, 2, 3, 3, 3, 4, 2, 4),
		engine.DirUp, engine.Cell{X: 4, Y: 4})

	m := maxSpaceMove(s, engine.LegalDirections(s))
	if m.Direction != engine.DirLeft || m.Tag != TagMaxSpace {
		t.Errorf("max space = %+v, expected left", m)
	}
}

func hamiltonianState(food engine.Cell) engine.State {
	return makeState(4, 4, cells(0, 2, 0, 1, 0, 0), engine.DirDown, food)
}

func TestHamiltonianFollowsCycle(t *testing.T) {
	e := New(hamilton.NewCache())
	m := e.Decide(hamiltonianState(engine.Cell{X: 0, Y: 3}), StrategyHamiltonian)

	if m.Direction != engine.DirDown || m.Tag != TagHamiltonian {
		t.Errorf("hamiltonian = %+v, expected down along the cycle", m)
	}
}

func TestHamiltonianShortcut(t *testing.T) {
	e := New(hamilton.NewCache())
	m := e.Decide(hamiltonianState(engine.Cell{X: 3, Y: 0}), StrategyHamiltonian)

	if m.Direction != engine.DirRight || m.Tag != TagHamiltonian {
		t.Errorf("hamiltonian = %+v, expected right shortcut", m)
	}
}

func TestHamiltonianSuccessorBlocked(t *testing.T) {
	s := makeState(4, 4, cells(0, 2, 0, 3, 1, 3), engine.DirUp, engine.Cell{X: 3, Y: 0})

	m := New(nil).Decide(s, StrategyHamiltonian)
	if m.Tag != TagToFood {
		t.Errorf("hamiltonian = %+v, expected safe to_food fallback", m)
	}
}

func TestHamiltonianOddWidthDegradesToSafe(t *testing.T) {
	cache := hamilton.NewCache()
	e := New(cache)
	s := makeState(5, 5, cells(2, 2, 1, 2, 0, 2), engine.DirRight, engine.Cell{X: 4, Y: 2})

	m := e.Decide(s, StrategyHamiltonian)
	if m.Tag != TagToFood || m.Direction != engine.DirRight {
		t.Errorf("hamiltonian on odd width = %+v, expected safe to_food right", m)
	}
	if cache.Len() != 1 {
		t.Errorf("cache.Len() = %d, expected the failed size to be cached", cache.Len())
	}
}

func TestCustomStrategy(t *testing.T) {
	up, err := script.Compile(`"up"`)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	left, err := script.Compile(`"left"`)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	s := defaultState()

	m := New(nil, WithScript(up)).Decide(s, StrategyCustom)
	if m.Direction != engine.DirUp || m.Tag != TagCustom {
		t.Errorf("custom = %+v, expected up", m)
	}

	var failures []error
	e := New(nil, WithScript(left), WithScriptErrors(func(err error) {
		failures = append(failures, err)
	}))
	m = e.Decide(s, StrategyCustom)
	if m.Tag != TagToFood || m.Direction != engine.DirRight {
		t.Errorf("custom with reversing script = %+v, expected safe to_food", m)
	}
	if len(failures) != 1 {
		t.Errorf("expected one reported failure, got %d", len(failures))
	}

	m = New(nil).Decide(s, StrategyCustom)
	if m.Tag != TagToFood {
		t.Errorf("custom without script = %+v, expected safe fallback", m)
	}
}

func TestCustomStrategyTimeout(t *testing.T) {
	// Nested counts over the four direction labels take far longer than 1ms.
	src := `# != ""`
	for range 10 {
		src = `count(directions, ` + src + `) > 0`
	}
	slow, err := script.Compile(src+` ? "up" : "down"`, script.WithTimeout(time.Millisecond))
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	var failures []error
	e := New(nil, WithScript(slow), WithScriptErrors(func(err error) {
		failures = append(failures, err)
	}))

	s := defaultState()
	m := e.Decide(s, StrategyCustom)
	if m.Tag != TagToFood || m.Direction != engine.DirRight {
		t.Errorf("custom with slow script = %+v, expected safe to_food", m)
	}
	if len(failures) != 1 {
		t.Fatalf("expected one reported failure, got %d", len(failures))
	}
	if !errors.Is(failures[0], script.ErrTimeout) {
		t.Errorf("reported %v, expected ErrTimeout", failures[0])
	}
}

func TestStrategiesNeverChooseFatalMoves(t *testing.T) {
	def, err := script.Compile(script.DefaultSource)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	e := New(hamilton.NewCache(), WithScript(def))

	for _, strategy := range Strategies {
		for seed := int64(1); seed <= 5; seed++ {
			rng := rand.New(rand.NewSource(seed))
			s := engine.NewState(8, 8, rng.Float64)

			for range 400 {
				if s.Status != engine.StatusRunning {
					break
				}
				legal := engine.LegalDirections(s)
				m := e.Decide(s, strategy)
				if len(legal) == 0 {
					if m.Tag != TagFallback {
						t.Fatalf("%s seed %d: expected fallback, got %+v", strategy, seed, m)
					}
					break
				}
				if !contains(legal, m.Direction) {
					t.Fatalf("%s seed %d tick %d: %v not in %v", strategy, seed, s.Tick, m.Direction, legal)
				}
				s = engine.Advance(engine.SetPendingDirection(s, m.Direction), rng.Float64)
				if s.Status == engine.StatusGameOver {
					t.Fatalf("%s seed %d: legal move %v ended the game", strategy, seed, m.Direction)
				}
			}
		}
	}
}
