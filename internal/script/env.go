package script

import "github.com/vovakirdan/snakelab/internal/engine"

// newEnv exposes st to a script. Values are copies, so nothing a script
// does can reach the caller's state.
func newEnv(st engine.State) map[string]any {
	snake := append([]engine.Cell(nil), st.Snake...)
	var head, tail engine.Cell
	if len(snake) > 0 {
		head, tail = snake[0], snake[len(snake)-1]
	}

	labels := make([]string, 0, len(engine.Directions))
	for _, d := range engine.Directions {
		labels = append(labels, d.String())
	}

	return map[string]any{
		"width":      st.Width,
		"height":     st.Height,
		"snake":      snake,
		"head":       head,
		"tail":       tail,
		"food":       st.Food,
		"direction":  st.Direction.String(),
		"pending":    st.Pending.String(),
		"score":      st.Score,
		"tick":       int(st.Tick),
		"directions": labels,

		"move": func(c engine.Cell, dir string) engine.Cell {
			d, err := engine.ParseDirection(dir)
			if err != nil {
				panic(err)
			}
			return c.Move(d)
		},
		"same": func(a, b engine.Cell) bool {
			return a == b
		},
		"opposite": func(a, b string) bool {
			da, errA := engine.ParseDirection(a)
			db, errB := engine.ParseDirection(b)
			if errA != nil || errB != nil {
				return false
			}
			return engine.IsOpposite(da, db)
		},
		"inBounds": func(c engine.Cell) bool {
			return engine.InBounds(c, st.Width, st.Height)
		},
		"occupied": func(c engine.Cell) bool {
			for _, seg := range snake {
				if seg == c {
					return true
				}
			}
			return false
		},
	}
}
