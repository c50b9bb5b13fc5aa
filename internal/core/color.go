package core

// Color represents a foreground color for a screen cell.
// The platform layer maps each value to an ANSI 256-color style.
type Color uint8

// Palette used by the board and HUD.
const (
	ColorDefault Color = iota
	ColorHead
	ColorBody
	ColorTail
	ColorFood
	ColorBorder
	ColorText
	ColorAccent
	ColorWarn
	ColorDim
)
