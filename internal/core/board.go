package core

import "github.com/vovakirdan/snakelab/internal/engine"

// Glyphs for board cells. Each is drawn CellWidth times.
const (
	GlyphHead  = '█'
	GlyphBody  = '▓'
	GlyphTail  = '▒'
	GlyphFood  = '●'
	GlyphEmpty = '·'
)

// DrawBoard draws st inside frame, which must come from BoardFrame.
func DrawBoard(s *Screen, st engine.State, frame Rect) {
	s.DrawBox(frame, ColorBorder)

	for y := 0; y < st.Height; y++ {
		for x := 0; x < st.Width; x++ {
			sx, sy := cellOrigin(frame, engine.Cell{X: x, Y: y})
			s.SetColored(sx, sy, GlyphEmpty, ColorDim)
			s.SetColored(sx+1, sy, ' ', ColorDefault)
		}
	}

	if st.Food != engine.FoodNone {
		sx, sy := cellOrigin(frame, st.Food)
		s.SetColored(sx, sy, GlyphFood, ColorFood)
		s.SetColored(sx+1, sy, ' ', ColorDefault)
	}

	// Draw tail first so the head wins if segments ever overlap on screen.
	for i := len(st.Snake) - 1; i >= 0; i-- {
		glyph, color := rune(GlyphBody), ColorBody
		switch {
		case i == 0:
			glyph, color = GlyphHead, ColorHead
		case i == len(st.Snake)-1:
			glyph, color = GlyphTail, ColorTail
		}
		sx, sy := cellOrigin(frame, st.Snake[i])
		for dx := 0; dx < CellWidth; dx++ {
			s.SetColored(sx+dx, sy, glyph, color)
		}
	}

	switch st.Status {
	case engine.StatusPaused:
		drawBanner(s, frame, "PAUSED", ColorAccent)
	case engine.StatusGameOver:
		drawBanner(s, frame, "GAME OVER", ColorWarn)
	case engine.StatusPassed:
		drawBanner(s, frame, "BOARD FILLED", ColorAccent)
	}
}

// cellOrigin returns the screen position of the left column of a board cell.
func cellOrigin(frame Rect, c engine.Cell) (int, int) {
	return frame.X + 1 + c.X*CellWidth, frame.Y + 1 + c.Y
}

func drawBanner(s *Screen, frame Rect, text string, c Color) {
	text = " " + text + " "
	cx, cy := frame.Center()
	s.DrawText(cx-len(text)/2, cy, text, c)
}
