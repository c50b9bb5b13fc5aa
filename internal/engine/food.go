package engine

// PlaceFood picks a uniformly random cell not covered by the snake.
// It returns (0,0) when the board has no free cell left.
func PlaceFood(width, height int, snake []Cell, rng RNG) Cell {
	taken := make(map[Cell]struct{}, len(snake))
	for _, seg := range snake {
		taken[seg] = struct{}{}
	}

	free := make([]Cell, 0, width*height-len(taken))
	for y := range height {
		for x := range width {
			c := Cell{X: x, Y: y}
			if _, ok := taken[c]; !ok {
				free = append(free, c)
			}
		}
	}

	if len(free) == 0 {
		return Cell{}
	}
	idx := int(rng()*float64(len(free))) % len(free)
	if idx < 0 {
		idx = 0
	}
	return free[idx]
}

// Score weights for FinalScore.
const (
	ScoreLengthWeight = 10_000
	ScoreStepWeight   = 1
)

// FinalScore rates a finished run: long snakes reached in few steps score highest.
func FinalScore(length, steps int) int {
	length = max(0, length)
	steps = max(0, steps)
	return length * ScoreLengthWeight / (steps*ScoreStepWeight + 1)
}
