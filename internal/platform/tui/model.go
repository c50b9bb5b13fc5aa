package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/snakelab/internal/ai"
	"github.com/vovakirdan/snakelab/internal/config"
	"github.com/vovakirdan/snakelab/internal/core"
	"github.com/vovakirdan/snakelab/internal/engine"
	"github.com/vovakirdan/snakelab/internal/sim"
	"github.com/vovakirdan/snakelab/internal/storage"
)

// hudRows is the number of screen rows below the board used by the HUD.
const hudRows = 3

// ViewerConfig describes a game shown in the terminal.
type ViewerConfig struct {
	Width    int
	Height   int
	Strategy ai.Strategy
	Speed    sim.Speed
	Seed     int64 // 0 = random based on time
	MaxTicks uint64
	Human    bool // start under keyboard control
	Play     config.PlayConfig
	ScreenW  int
	ScreenH  int
}

// Model is the Bubble Tea model for watching or playing one game.
// The arrow keys take the snake over from the AI at any time; Tab hands it back.
type Model struct {
	cfg        ViewerConfig
	runner     *sim.Runner
	screen     *core.Screen
	store      *storage.Store
	keys       *KeyMapper
	difficulty *config.DifficultyManager
	speed      sim.Speed
	gen        int
	started    time.Time
	steered    bool // the player steered at some point this game
	opening    ai.Strategy
	mixed      bool // a tick was played by a strategy other than opening
	best       int
	saved      bool
	saveErr    error
	embedded   bool // running inside a SessionModel
	quitting   bool
	backToMenu bool
}

// NewModel creates a viewer for cfg. A nil store disables run saving.
func NewModel(e *ai.Engine, store *storage.Store, cfg ViewerConfig) Model {
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	if cfg.Strategy == "" {
		cfg.Strategy = ai.DefaultStrategy
	}
	if cfg.Speed == "" {
		cfg.Speed = sim.SpeedNormal
	}
	if cfg.ScreenW <= 0 || cfg.ScreenH <= 0 {
		cfg.ScreenW, cfg.ScreenH = 80, 24
	}

	runner := sim.NewRunner(e, sim.Config{
		Width:    cfg.Width,
		Height:   cfg.Height,
		Strategy: cfg.Strategy,
		Seed:     cfg.Seed,
		MaxTicks: cfg.MaxTicks,
		Manual:   cfg.Human,
	})

	m := Model{
		cfg:        cfg,
		runner:     runner,
		screen:     core.NewScreen(cfg.ScreenW, cfg.ScreenH),
		store:      store,
		keys:       NewKeyMapper(),
		difficulty: config.NewDifficultyManager(cfg.Play),
		speed:      cfg.Speed,
		gen:        nextGen(),
		started:    time.Now(),
		steered:    cfg.Human,
		opening:    cfg.Strategy,
	}
	m.loadBest()
	return m
}

// Init starts the tick loop.
func (m Model) Init() tea.Cmd {
	return tickCmd(m.interval(), m.gen)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.cfg.ScreenW = msg.Width
		m.cfg.ScreenH = msg.Height
		m.screen.Resize(msg.Width, msg.Height)
		return m, nil

	case TickMsg:
		if msg.Gen != m.gen {
			return m, nil
		}
		return m.handleTick()
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+s" {
		_, m.saveErr = m.saveScreenshot()
		return m, nil
	}

	action := m.keys.MapKey(msg)

	if d, ok := action.Direction(); ok {
		if !m.runner.Manual() {
			m.runner.SetManual(true)
		}
		m.steered = true
		m.runner.Steer(d)
		return m, nil
	}

	switch action {
	case core.ActionQuit:
		m.quitting = true
		m.save()
		return m, tea.Quit

	case core.ActionBack:
		m.save()
		m.backToMenu = true
		if !m.embedded {
			return m, tea.Quit
		}
		return m, nil

	case core.ActionPause:
		m.runner.TogglePause()

	case core.ActionRestart:
		m.save()
		m.runner.Restart()
		m.restarted()
		m.gen = nextGen()
		return m, tickCmd(m.interval(), m.gen)

	case core.ActionToggleAI:
		m.runner.SetManual(!m.runner.Manual())
		if m.runner.Manual() {
			m.steered = true
		}
		m.gen = nextGen()
		return m, tickCmd(m.interval(), m.gen)

	case core.ActionNextStrategy, core.ActionPrevStrategy:
		step := 1
		if action == core.ActionPrevStrategy {
			step = len(ai.Strategies) - 1
		}
		m.runner.SetStrategy(cycleStrategy(m.runner.Strategy(), step))
		if m.runner.State().Tick == 0 {
			m.opening = m.runner.Strategy()
		}
		m.loadBest()

	case core.ActionSpeedUp:
		m.speed = shiftSpeed(m.speed, -1)
		m.gen = nextGen()
		return m, tickCmd(m.interval(), m.gen)

	case core.ActionSlowDown:
		m.speed = shiftSpeed(m.speed, 1)
		m.gen = nextGen()
		return m, tickCmd(m.interval(), m.gen)
	}

	return m, nil
}

// handleTick advances the game and schedules the next tick while it lasts.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	if m.runner.Done() {
		m.save()
		return m, nil
	}

	steps := stepsPerFrame(m.interval())
	for i := 0; i < steps && !m.runner.Done(); i++ {
		m.runner.Step(context.Background())
	}
	if m.runner.Strategy() != m.opening {
		m.mixed = true
	}

	if m.runner.Done() {
		m.save()
		return m, nil
	}
	return m, tickCmd(m.interval(), m.gen)
}

// interval is the delay between steps: the difficulty curve for the player,
// the chosen speed for the AI.
func (m Model) interval() time.Duration {
	if m.runner.Manual() {
		st := m.runner.State()
		return m.difficulty.Interval(st.Score, st.Tick)
	}
	return m.speed.Interval()
}

func (m *Model) restarted() {
	m.started = time.Now()
	m.steered = m.runner.Manual()
	m.opening = m.runner.Strategy()
	m.mixed = false
	m.saved = false
	m.saveErr = nil
	m.loadBest()
}

// label is the strategy a finished game is filed under. Games the AI played
// with more than one strategy are filed as mixed.
func (m Model) label() string {
	switch {
	case m.steered:
		return storage.StrategyHuman
	case m.mixed:
		return storage.StrategyMixed
	}
	return string(m.opening)
}

func (m *Model) loadBest() {
	if m.store == nil {
		return
	}
	if best, err := m.store.HighScore(m.label()); err == nil {
		m.best = best
	}
}

// save records the current game once, if it ended or made progress.
func (m *Model) save() {
	if m.saved || m.store == nil {
		return
	}
	st := m.runner.State()
	if !m.runner.Done() && st.Tick == 0 {
		return
	}
	m.saved = true

	status := string(st.Status)
	switch {
	case st.Status.Terminal():
	case m.runner.Stalled():
		status = storage.StatusStalled
	default:
		status = storage.StatusAbandoned
	}
	_, m.saveErr = m.store.SaveRun(storage.Run{
		Strategy:   m.label(),
		Width:      st.Width,
		Height:     st.Height,
		Seed:       m.runner.Config().Seed,
		Score:      st.Score,
		Length:     len(st.Snake),
		Ticks:      int64(st.Tick),
		Status:     status,
		FinalScore: engine.FinalScore(len(st.Snake), int(st.Tick)),
		Duration:   time.Since(m.started),
	})
	if m.saveErr == nil && st.Score > m.best {
		m.best = st.Score
	}
}

// View renders the board and HUD.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	m.draw()
	return RenderScreen(m.screen)
}

func (m Model) draw() {
	s := m.screen
	s.Clear()
	st := m.runner.State()

	frame, ok := core.BoardFrame(st.Width, st.Height, s.Width(), s.Height(), hudRows)
	if !ok {
		s.DrawTextCentered(s.Height()/2, fmt.Sprintf("Terminal too small: need %dx%d",
			frame.W, frame.H+hudRows), core.ColorWarn)
		return
	}
	core.DrawBoard(s, st, frame)

	y := frame.Bottom()
	s.DrawText(frame.X, y, fmt.Sprintf("Score %d  Length %d  Tick %d  Best %d",
		st.Score, len(st.Snake), st.Tick, m.best), core.ColorText)

	if m.runner.Manual() {
		s.DrawText(frame.X, y+1, fmt.Sprintf("You  %v/tick", m.interval()), core.ColorAccent)
	} else {
		mv := m.runner.LastMove()
		line := fmt.Sprintf("AI %s  %s", m.runner.Strategy(), m.speed)
		if mv.Tag != "" {
			line += fmt.Sprintf("  %s %s", mv.Tag, mv.Direction)
			if mv.PathLength > 0 {
				line += fmt.Sprintf(" (path %d)", mv.PathLength)
			}
		}
		s.DrawText(frame.X, y+1, line, core.ColorAccent)
	}

	help := "arrows steer  tab AI  [ ] strategy  +/- speed  p pause  r restart  q quit"
	if m.saveErr != nil {
		s.DrawText(frame.X, y+2, "save failed: "+m.saveErr.Error(), core.ColorWarn)
	} else {
		s.DrawTextCentered(y+2, help, core.ColorDim)
	}
}

// saveScreenshot writes the plain-text board to ~/.snakelab/screenshots.
func (m Model) saveScreenshot() (string, error) {
	m.draw()
	dir := config.ExpandHome(filepath.Join("~", ".snakelab", "screenshots"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.txt", m.label(), time.Now().Format("20060102_150405")))
	return path, os.WriteFile(path, []byte(m.screen.String()), 0o600)
}

// IsQuitting returns true if user requested to quit entirely.
func (m Model) IsQuitting() bool {
	return m.quitting
}

// BackToMenu returns true if user requested to go back to menu.
func (m Model) BackToMenu() bool {
	return m.backToMenu
}

// State returns the current game state.
func (m Model) State() engine.State {
	return m.runner.State()
}

// cycleStrategy moves step places through ai.Strategies.
func cycleStrategy(s ai.Strategy, step int) ai.Strategy {
	for i, st := range ai.Strategies {
		if st == s {
			return ai.Strategies[(i+step)%len(ai.Strategies)]
		}
	}
	return ai.DefaultStrategy
}

// shiftSpeed moves delta places through sim.Speeds without wrapping.
// Negative deltas go faster.
func shiftSpeed(s sim.Speed, delta int) sim.Speed {
	for i, sp := range sim.Speeds {
		if sp == s {
			return sim.Speeds[core.Clamp(i+delta, 0, len(sim.Speeds)-1)]
		}
	}
	return sim.SpeedNormal
}

// Run starts the viewer as a full-screen program.
func Run(e *ai.Engine, store *storage.Store, cfg ViewerConfig) error {
	model := NewModel(e, store, cfg)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	_, err := p.Run()
	return err
}
