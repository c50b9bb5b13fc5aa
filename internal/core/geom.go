// Package core provides the terminal drawing primitives shared by the TUI
// and SSH front ends. It has no Bubble Tea dependency so drawing stays
// testable.
package core

// CellWidth is the number of terminal columns used per board cell, which
// keeps cells roughly square in most fonts.
const CellWidth = 2

// Rect is an axis-aligned area on the screen.
type Rect struct {
	X, Y int // Top-left corner position
	W, H int // Width and height
}

// NewRect creates a new rectangle with the given position and dimensions.
func NewRect(x, y, w, h int) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

// Right returns the x-coordinate of the right edge.
func (r Rect) Right() int {
	return r.X + r.W
}

// Bottom returns the y-coordinate of the bottom edge.
func (r Rect) Bottom() int {
	return r.Y + r.H
}

// Contains returns true if the point (x, y) is inside this rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.Right() && y >= r.Y && y < r.Bottom()
}

// Center returns the center point of the rectangle.
func (r Rect) Center() (int, int) {
	return r.X + r.W/2, r.Y + r.H/2
}

// Clamp restricts a value to be within [lo, hi].
func Clamp(val, lo, hi int) int {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}

// BoardFrame returns the bordered area a width x height board occupies,
// centered on a screen of screenW x screenH with hudRows reserved below.
// ok is false when the board does not fit.
func BoardFrame(width, height, screenW, screenH, hudRows int) (frame Rect, ok bool) {
	w := width*CellWidth + 2
	h := height + 2
	x := Clamp((screenW-w)/2, 0, screenW)
	y := Clamp((screenH-hudRows-h)/2, 0, screenH)
	frame = NewRect(x, y, w, h)
	return frame, w <= screenW && h+hudRows <= screenH
}
