package core

import (
	"strings"
	"testing"

	"github.com/vovakirdan/snakelab/internal/engine"
)

func boardState() engine.State {
	return engine.State{
		Width:     5,
		Height:    5,
		Snake:     []engine.Cell{{X: 2, Y: 2}, {X: 1, Y: 2}, {X: 0, Y: 2}},
		Direction: engine.DirRight,
		Pending:   engine.DirRight,
		Food:      engine.Cell{X: 4, Y: 0},
		Status:    engine.StatusRunning,
	}
}

func TestDrawBoard(t *testing.T) {
	st := boardState()
	frame, ok := BoardFrame(st.Width, st.Height, 12, 7, 0)
	if !ok {
		t.Fatal("5x5 board should fit in 12x7")
	}
	s := NewScreen(12, 7)
	DrawBoard(s, st, frame)

	want := []string{
		"┌──────────┐",
		"│· · · · ● │",
		"│· · · · · │",
		"│▒▒▓▓██· · │",
		"│· · · · · │",
		"│· · · · · │",
		"└──────────┘",
	}
	for y, line := range want {
		if got := s.Row(y); got != line {
			t.Errorf("row %d = %q, expected %q", y, got, line)
		}
	}

	colors := []struct {
		x, y int
		want Color
	}{
		{5, 3, ColorHead},
		{3, 3, ColorBody},
		{1, 3, ColorTail},
		{9, 1, ColorFood},
		{1, 1, ColorDim},
		{0, 0, ColorBorder},
	}
	for _, c := range colors {
		if got := s.GetCell(c.x, c.y).Color; got != c.want {
			t.Errorf("color at (%d, %d) = %d, expected %d", c.x, c.y, got, c.want)
		}
	}
}

func TestDrawBoardBanners(t *testing.T) {
	tests := []struct {
		status engine.Status
		banner string
	}{
		{engine.StatusPaused, "PAUSED"},
		{engine.StatusGameOver, "GAME OVER"},
		{engine.StatusPassed, "BOARD FILLED"},
	}

	for _, tc := range tests {
		t.Run(string(tc.status), func(t *testing.T) {
			st := boardState()
			st.Width, st.Height = 10, 6
			st.Status = tc.status
			frame, _ := BoardFrame(st.Width, st.Height, 40, 10, 0)
			s := NewScreen(40, 10)
			DrawBoard(s, st, frame)

			if !strings.Contains(s.String(), tc.banner) {
				t.Errorf("expected banner %q in\n%s", tc.banner, s.String())
			}
		})
	}
}

func TestDrawBoardWithoutFood(t *testing.T) {
	st := boardState()
	st.Food = engine.FoodNone
	frame, _ := BoardFrame(st.Width, st.Height, 12, 7, 0)
	s := NewScreen(12, 7)
	DrawBoard(s, st, frame)

	if strings.ContainsRune(s.String(), GlyphFood) {
		t.Error("no food glyph expected when the board is full")
	}
}

func TestActionDirection(t *testing.T) {
	tests := []struct {
		action Action
		want   engine.Direction
		ok     bool
	}{
		{ActionUp, engine.DirUp, true},
		{ActionDown, engine.DirDown, true},
		{ActionLeft, engine.DirLeft, true},
		{ActionRight, engine.DirRight, true},
		{ActionPause, engine.DirUp, false},
		{ActionNone, engine.DirUp, false},
	}

	for _, tc := range tests {
		t.Run(tc.action.String(), func(t *testing.T) {
			d, ok := tc.action.Direction()
			if d != tc.want || ok != tc.ok {
				t.Errorf("Direction() = %v, %v; expected %v, %v", d, ok, tc.want, tc.ok)
			}
		})
	}
}
