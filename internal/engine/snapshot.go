package engine

// Snapshot captures a flat summary of a state for determinism checks, storage
// and spectator frames.
type Snapshot struct {
	Tick      uint64 `json:"tick"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Score     int    `json:"score"`
	SnakeLen  int    `json:"snake_len"`
	HeadX     int    `json:"head_x"`
	HeadY     int    `json:"head_y"`
	FoodX     int    `json:"food_x"`
	FoodY     int    `json:"food_y"`
	Direction string `json:"direction"`
	Status    Status `json:"status"`
}

// Snapshot returns the current summary of s.
func (s State) Snapshot() Snapshot {
	headX, headY := 0, 0
	if len(s.Snake) > 0 {
		headX, headY = s.Snake[0].X, s.Snake[0].Y
	}

	return Snapshot{
		Tick:      s.Tick,
		Width:     s.Width,
		Height:    s.Height,
		Score:     s.Score,
		SnakeLen:  len(s.Snake),
		HeadX:     headX,
		HeadY:     headY,
		FoodX:     s.Food.X,
		FoodY:     s.Food.Y,
		Direction: s.Direction.String(),
		Status:    s.Status,
	}
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	s.Snake = append([]Cell(nil), s.Snake...)
	return s
}
