// Package script runs user-supplied move heuristics inside an expression
// sandbox. A script sees a read-only copy of the board plus a handful of
// helpers and must evaluate to a direction label such as "up".
package script

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/vovakirdan/snakelab/internal/engine"
)

const (
	// DefaultTimeout bounds a single evaluation.
	DefaultTimeout = 50 * time.Millisecond
	// MaxSourceLen caps the script size accepted by Compile.
	MaxSourceLen = 8 << 10
	// MaxNodes caps the expression tree built by Compile.
	MaxNodes = 1000
	// MemoryBudget caps what one evaluation may allocate through ranges,
	// array literals and builtins, in expr's allocation units.
	MemoryBudget = 1 << 16
)

var (
	ErrEmpty     = errors.New("script: empty source")
	ErrTooLong   = errors.New("script: source too long")
	ErrTimeout   = errors.New("script: evaluation timed out")
	ErrBadResult = errors.New("script: result is not a direction")
)

// DefaultSource steers toward the food without reversing, and otherwise takes
// the first non-reversing direction.
const DefaultSource = `food.X > head.X && !opposite(direction, "right") ? "right" :
food.X < head.X && !opposite(direction, "left") ? "left" :
food.Y > head.Y && !opposite(direction, "down") ? "down" :
food.Y < head.Y && !opposite(direction, "up") ? "up" :
!opposite(direction, "up") ? "up" :
"down"`

// Script is a compiled heuristic. It is safe to share between goroutines.
//
// An evaluation that outlives its timeout cannot be interrupted, so it keeps
// its in-flight slot until it finishes. Once every slot is held by such
// evaluations, Run waits at most one timeout for a slot and then fails with
// ErrTimeout without starting more work.
type Script struct {
	source  string
	program *vm.Program
	timeout time.Duration
	slots   chan struct{}
}

// Option configures Compile.
type Option func(*Script)

// WithTimeout overrides DefaultTimeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(s *Script) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithMaxInFlight bounds how many evaluations of the script may run at
// once. The default is GOMAXPROCS. Non-positive values are ignored.
func WithMaxInFlight(n int) Option {
	return func(s *Script) {
		if n > 0 {
			s.slots = make(chan struct{}, n)
		}
	}
}

// Compile parses and type-checks src against the sandbox environment.
func Compile(src string, opts ...Option) (*Script, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return nil, ErrEmpty
	}
	if len(src) > MaxSourceLen {
		return nil, fmt.Errorf("%w: %d bytes, limit %d", ErrTooLong, len(src), MaxSourceLen)
	}

	program, err := expr.Compile(src,
		expr.Env(newEnv(engine.State{})),
		expr.MaxNodes(MaxNodes),
	)
	if err != nil {
		return nil, fmt.Errorf("script: compile: %w", err)
	}

	s := &Script{source: src, program: program, timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(s)
	}
	if s.slots == nil {
		s.slots = make(chan struct{}, max(1, runtime.GOMAXPROCS(0)))
	}
	return s, nil
}

// Source returns the trimmed source the script was compiled from.
func (s *Script) Source() string { return s.source }

// Timeout returns the per-evaluation limit.
func (s *Script) Timeout() time.Duration { return s.timeout }

type outcome struct {
	value any
	err   error
}

// Run evaluates the script against st. Any failure, including a panic inside
// a helper, an exhausted memory budget, a timeout or a non-direction result,
// is returned as an error.
func (s *Script) Run(ctx context.Context, st engine.State) (engine.Direction, error) {
	if err := ctx.Err(); err != nil {
		return st.Direction, err
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	select {
	case s.slots <- struct{}{}:
	case <-ctx.Done():
		return st.Direction, s.ctxErr(ctx, "waiting for a free slot")
	}

	env := newEnv(st.Clone())
	done := make(chan outcome, 1)
	go func() {
		defer func() { <-s.slots }()
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("script: panic: %v", r)}
			}
		}()
		machine := vm.VM{MemoryBudget: MemoryBudget}
		v, err := machine.Run(s.program, env)
		done <- outcome{value: v, err: err}
	}()

	var out outcome
	select {
	case <-ctx.Done():
		return st.Direction, s.ctxErr(ctx, "evaluating")
	case out = <-done:
	}

	if out.err != nil {
		return st.Direction, fmt.Errorf("script: run: %w", out.err)
	}
	label, ok := out.value.(string)
	if !ok {
		return st.Direction, fmt.Errorf("%w: got %T", ErrBadResult, out.value)
	}
	d, err := engine.ParseDirection(label)
	if err != nil {
		return st.Direction, fmt.Errorf("%w: %q", ErrBadResult, label)
	}
	return d, nil
}

func (s *Script) ctxErr(ctx context.Context, stage string) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s %s", ErrTimeout, s.timeout, stage)
	}
	return ctx.Err()
}
