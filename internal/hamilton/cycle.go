// Package hamilton builds closed tours that visit every board cell once and
// answers cyclic-distance queries over them.
package hamilton

import (
	"errors"
	"fmt"

	"github.com/vovakirdan/snakelab/internal/engine"
)

var (
	// ErrOddWidth is returned for boards the serpentine construction cannot close.
	ErrOddWidth = errors.New("hamilton: serpentine cycle requires an even width")
	// ErrTooSmall is returned for boards without room for a closed tour.
	ErrTooSmall = errors.New("hamilton: board must be at least 2x2")
)

// Cycle is an immutable Hamiltonian cycle: cells[i] is the i-th stop and
// index[y*width+x] is the inverse lookup.
type Cycle struct {
	width  int
	height int
	cells  []engine.Cell
	index  []int
}

// New constructs the serpentine cycle for a width x height board.
//
// Column 0 is walked top to bottom, columns 1..width-1 alternate bottom-up
// (odd) and top-down (even) over rows 1..height-1, and the top row returns
// right to left to (0,0). The last column must be odd for the walk to end on
// row 1, so width has to be even.
func New(width, height int) (*Cycle, error) {
	if width < 2 || height < 2 {
		return nil, fmt.Errorf("%w: got %dx%d", ErrTooSmall, width, height)
	}
	if width%2 != 0 {
		return nil, fmt.Errorf("%w: got %d", ErrOddWidth, width)
	}

	c := &Cycle{
		width:  width,
		height: height,
		cells:  make([]engine.Cell, 0, width*height),
		index:  make([]int, width*height),
	}

	for y := range height {
		c.record(0, y)
	}
	for x := 1; x < width; x++ {
		if x%2 == 1 {
			for y := height - 1; y >= 1; y-- {
				c.record(x, y)
			}
		} else {
			for y := 1; y < height; y++ {
				c.record(x, y)
			}
		}
	}
	for x := width - 1; x > 0; x-- {
		c.record(x, 0)
	}

	return c, nil
}

func (c *Cycle) record(x, y int) {
	c.index[y*c.width+x] = len(c.cells)
	c.cells = append(c.cells, engine.Cell{X: x, Y: y})
}

// Len returns the number of cells on the cycle.
func (c *Cycle) Len() int { return len(c.cells) }

// At returns the cell at cycle position i (taken modulo Len).
func (c *Cycle) At(i int) engine.Cell {
	n := len(c.cells)
	return c.cells[((i%n)+n)%n]
}

// IndexOf returns the cycle position of cell, or -1 when it is off the board.
func (c *Cycle) IndexOf(cell engine.Cell) int {
	if !engine.InBounds(cell, c.width, c.height) {
		return -1
	}
	return c.index[cell.Y*c.width+cell.X]
}

// Next returns the position following i.
func (c *Cycle) Next(i int) int {
	return (i + 1) % len(c.cells)
}

// Distance is the forward distance from position a to position b.
// It is directional: Distance(a, b) + Distance(b, a) == Len for a != b.
func (c *Cycle) Distance(a, b int) int {
	n := len(c.cells)
	return ((b-a)%n + n) % n
}

