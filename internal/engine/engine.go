package engine

// MinBoardSize is the smallest side length accepted by NewState.
const MinBoardSize = 5

// NewState builds the starting position: a three-segment snake centred on the
// board heading right, with food on a random free cell.
func NewState(width, height int, rng RNG) State {
	width = max(MinBoardSize, width)
	height = max(MinBoardSize, height)
	cx, cy := width/2, height/2

	snake := []Cell{
		{X: cx, Y: cy},
		{X: cx - 1, Y: cy},
		{X: cx - 2, Y: cy},
	}

	return State{
		Width:     width,
		Height:    height,
		Snake:     snake,
		Direction: DirRight,
		Pending:   DirRight,
		Food:      PlaceFood(width, height, snake, rng),
		Status:    StatusRunning,
	}
}

// LegalDirections lists every direction that does not reverse, leave the
// board, or run into the body. The tail is only passable when the move does
// not eat, matching Advance.
func LegalDirections(s State) []Direction {
	if s.Status != StatusRunning || len(s.Snake) == 0 {
		return nil
	}

	head := s.Head()
	out := make([]Direction, 0, 4)
	for _, d := range Directions {
		if IsOpposite(s.Direction, d) {
			continue
		}
		next := head.Move(d)
		if !s.InBounds(next) {
			continue
		}
		if hitsBody(s.Snake, next, next == s.Food) {
			continue
		}
		out = append(out, d)
	}
	return out
}

// IsLegal reports whether d is in LegalDirections(s).
func IsLegal(s State, d Direction) bool {
	for _, l := range LegalDirections(s) {
		if l == d {
			return true
		}
	}
	return false
}

// hitsBody checks next against the current body. When the snake does not eat,
// its tail vacates this tick and is exempt.
func hitsBody(snake []Cell, next Cell, willEat bool) bool {
	last := len(snake) - 1
	for i, seg := range snake {
		if !willEat && i == last {
			continue
		}
		if seg == next {
			return true
		}
	}
	return false
}

// Advance runs one tick using the pending direction. Non-running states are
// returned unchanged.
func Advance(s State, rng RNG) State {
	if s.Status != StatusRunning || len(s.Snake) == 0 {
		return s
	}

	dir := s.Pending
	next := s.Head().Move(dir)

	if !s.InBounds(next) {
		s.Status = StatusGameOver
		return s
	}

	willEat := next == s.Food
	if hitsBody(s.Snake, next, willEat) {
		s.Status = StatusGameOver
		return s
	}

	keep := len(s.Snake)
	if !willEat {
		keep--
	}
	snake := make([]Cell, 0, keep+1)
	snake = append(snake, next)
	snake = append(snake, s.Snake[:keep]...)

	s.Snake = snake
	s.Direction = dir
	s.Pending = dir
	s.Tick++

	if !willEat {
		return s
	}

	s.Score++
	if len(snake) >= s.Width*s.Height {
		s.Food = FoodNone
		s.Status = StatusPassed
		return s
	}
	s.Food = PlaceFood(s.Width, s.Height, snake, rng)
	return s
}

// SetPendingDirection buffers d for the next tick. Reversals and repeats are ignored.
func SetPendingDirection(s State, d Direction) State {
	if IsOpposite(s.Direction, d) || s.Pending == d {
		return s
	}
	s.Pending = d
	return s
}

// TogglePause flips between running and paused. Terminal states are untouched.
func TogglePause(s State) State {
	switch s.Status {
	case StatusRunning:
		s.Status = StatusPaused
	case StatusPaused:
		s.Status = StatusRunning
	}
	return s
}
