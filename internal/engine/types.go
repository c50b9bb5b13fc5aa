// Package engine implements the deterministic Snake state machine.
// Every function takes a State by value and returns a new one; nothing here
// mutates caller-owned slices, logs, or touches global randomness.
package engine

import (
	"fmt"
	"strings"
)

// Cell is a board coordinate. (0,0) is the top-left corner.
type Cell struct {
	X, Y int
}

// Move returns the neighbouring cell in the given direction.
func (c Cell) Move(d Direction) Cell {
	switch d {
	case DirUp:
		return Cell{X: c.X, Y: c.Y - 1}
	case DirDown:
		return Cell{X: c.X, Y: c.Y + 1}
	case DirLeft:
		return Cell{X: c.X - 1, Y: c.Y}
	default:
		return Cell{X: c.X + 1, Y: c.Y}
	}
}

// Manhattan returns the taxicab distance between two cells.
func (c Cell) Manhattan(o Cell) int {
	return abs(c.X-o.X) + abs(c.Y-o.Y)
}

func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// FoodNone is the sentinel food cell used once the board is full.
var FoodNone = Cell{X: -1, Y: -1}

// Direction is one of the four compass moves.
type Direction int

const (
	DirUp Direction = iota
	DirDown
	DirLeft
	DirRight
)

// Directions is the fixed enumeration order used for legal-move listing and tie-breaks.
var Directions = [4]Direction{DirUp, DirDown, DirLeft, DirRight}

// Opposite returns the 180-degree reverse of d.
func (d Direction) Opposite() Direction {
	switch d {
	case DirUp:
		return DirDown
	case DirDown:
		return DirUp
	case DirLeft:
		return DirRight
	default:
		return DirLeft
	}
}

// IsOpposite reports whether a and b point in reverse directions.
func IsOpposite(a, b Direction) bool {
	return a.Opposite() == b
}

func (d Direction) String() string {
	switch d {
	case DirUp:
		return "up"
	case DirDown:
		return "down"
	case DirLeft:
		return "left"
	case DirRight:
		return "right"
	default:
		return "unknown"
	}
}

// ParseDirection converts a label such as "up" or "Left" into a Direction.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up":
		return DirUp, nil
	case "down":
		return DirDown, nil
	case "left":
		return DirLeft, nil
	case "right":
		return DirRight, nil
	}
	return DirUp, fmt.Errorf("engine: unknown direction %q", s)
}

// Status is the lifecycle phase of a game.
type Status string

const (
	StatusRunning  Status = "running"
	StatusPaused   Status = "paused"
	StatusGameOver Status = "game_over"
	StatusPassed   Status = "passed"
)

// Terminal reports whether no further transitions are possible.
func (s Status) Terminal() bool {
	return s == StatusGameOver || s == StatusPassed
}

// RNG returns a float in [0, 1). Hosts inject it so replays stay deterministic.
type RNG func() float64

// State is one immutable tick of a game.
type State struct {
	Width     int
	Height    int
	Snake     []Cell // head first
	Direction Direction
	Pending   Direction // buffered direction applied on the next Advance
	Food      Cell
	Score     int
	Tick      uint64
	Status    Status
}

// Head returns the first snake segment.
func (s State) Head() Cell {
	return s.Snake[0]
}

// Tail returns the last snake segment.
func (s State) Tail() Cell {
	return s.Snake[len(s.Snake)-1]
}

// InBounds reports whether c lies on the board.
func (s State) InBounds(c Cell) bool {
	return InBounds(c, s.Width, s.Height)
}

// Occupies reports whether any snake segment is on c.
func (s State) Occupies(c Cell) bool {
	return occupies(s.Snake, c)
}

// InBounds reports whether c lies on a width x height board.
func InBounds(c Cell, width, height int) bool {
	return c.X >= 0 && c.X < width && c.Y >= 0 && c.Y < height
}

func occupies(snake []Cell, c Cell) bool {
	for _, seg := range snake {
		if seg == c {
			return true
		}
	}
	return false
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
