package ai

import "github.com/vovakirdan/snakelab/internal/engine"

// grid is a row-major occupancy mask.
type grid struct {
	width   int
	height  int
	blocked []bool
}

func newGrid(width, height int) *grid {
	return &grid{width: width, height: height, blocked: make([]bool, width*height)}
}

func (g *grid) inBounds(c engine.Cell) bool {
	return engine.InBounds(c, g.width, g.height)
}

func (g *grid) set(c engine.Cell, v bool) {
	if g.inBounds(c) {
		g.blocked[c.Y*g.width+c.X] = v
	}
}

func (g *grid) isBlocked(c engine.Cell) bool {
	return g.blocked[c.Y*g.width+c.X]
}

// bodyGrid blocks every snake segment. With allowTail the last segment stays
// open, since it moves away before the head could arrive.
func bodyGrid(s engine.State, allowTail bool) *grid {
	g := newGrid(s.Width, s.Height)
	last := len(s.Snake) - 1
	for i, seg := range s.Snake {
		if allowTail && i == last {
			continue
		}
		g.set(seg, true)
	}
	return g
}

// bfsPath finds a shortest path from start to goal. The goal may be entered
// even when blocked. The returned path excludes start and ends at goal; it is
// empty when start == goal. ok is false when goal is unreachable.
func bfsPath(start, goal engine.Cell, g *grid) (path []engine.Cell, ok bool) {
	if start == goal {
		return []engine.Cell{}, true
	}
	if !g.inBounds(start) || !g.inBounds(goal) {
		return nil, false
	}

	prev := make([]int, g.width*g.height)
	for i := range prev {
		prev[i] = -1
	}
	key := func(c engine.Cell) int { return c.Y*g.width + c.X }

	startKey := key(start)
	prev[startKey] = startKey
	queue := []engine.Cell{start}

	found := false
	for head := 0; head < len(queue) && !found; head++ {
		cur := queue[head]
		for _, d := range engine.Directions {
			n := cur.Move(d)
			if !g.inBounds(n) {
				continue
			}
			if n != goal && g.isBlocked(n) {
				continue
			}
			nk := key(n)
			if prev[nk] != -1 {
				continue
			}
			prev[nk] = key(cur)
			if n == goal {
				found = true
				break
			}
			queue = append(queue, n)
		}
	}
	if !found {
		return nil, false
	}

	for k := key(goal); k != startKey; k = prev[k] {
		path = append(path, engine.Cell{X: k % g.width, Y: k / g.width})
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, true
}

// floodFill counts cells reachable from start without crossing blocked cells.
func floodFill(start engine.Cell, g *grid) int {
	if !g.inBounds(start) || g.isBlocked(start) {
		return 0
	}

	seen := make([]bool, g.width*g.height)
	seen[start.Y*g.width+start.X] = true
	queue := []engine.Cell{start}

	for head := 0; head < len(queue); head++ {
		cur := queue[head]
		for _, d := range engine.Directions {
			n := cur.Move(d)
			if !g.inBounds(n) || g.isBlocked(n) {
				continue
			}
			k := n.Y*g.width + n.X
			if seen[k] {
				continue
			}
			seen[k] = true
			queue = append(queue, n)
		}
	}
	return len(queue)
}

// dirFromTo returns the direction that steps from a onto the adjacent cell b.
func dirFromTo(a, b engine.Cell) engine.Direction {
	for _, d := range engine.Directions {
		if a.Move(d) == b {
			return d
		}
	}
	return engine.DirRight
}

// simulateSnake returns the body after one step in d, without checking safety.
func simulateSnake(s engine.State, d engine.Direction) []engine.Cell {
	next := s.Head().Move(d)
	keep := len(s.Snake)
	if next != s.Food {
		keep--
	}
	out := make([]engine.Cell, 0, keep+1)
	out = append(out, next)
	return append(out, s.Snake[:keep]...)
}
