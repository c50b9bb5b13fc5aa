// Package tui provides the Bubble Tea front ends for snakelab: the game
// viewer, the strategy menu, the runs board and the SSH server.
package tui

import (
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// minFrame caps the redraw rate; faster speeds take several steps per frame.
const minFrame = 16 * time.Millisecond

// TickMsg is sent to trigger a game step. Gen ties it to the loop that
// scheduled it, so restarts and speed changes drop stale ticks.
type TickMsg struct {
	Time time.Time
	Gen  int
}

var tickGen atomic.Int64

// nextGen returns a tick generation unique across every model in the
// process, so a tick scheduled by a closed game never drives a new one.
func nextGen() int {
	return int(tickGen.Add(1))
}

// tickCmd returns a Bubble Tea command that sends one tick after interval.
func tickCmd(interval time.Duration, gen int) tea.Cmd {
	return tea.Tick(max(interval, minFrame), func(t time.Time) tea.Msg {
		return TickMsg{Time: t, Gen: gen}
	})
}

// stepsPerFrame returns how many steps to take per tick so that an interval
// shorter than a frame still advances at roughly the requested rate.
func stepsPerFrame(interval time.Duration) int {
	if interval <= 0 {
		return 32
	}
	if interval >= minFrame {
		return 1
	}
	return int(minFrame / interval)
}
