package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/snakelab/internal/ai"
	"github.com/vovakirdan/snakelab/internal/storage"
)

type sessionScreen int

const (
	screenMenu sessionScreen = iota
	screenGame
	screenRuns
)

// SessionModel manages the full flow: menu -> game or runs board -> menu.
// It backs both the local `snakelab play` menu and every SSH session.
type SessionModel struct {
	engine   *ai.Engine
	store    *storage.Store
	base     ViewerConfig
	screen   sessionScreen
	menu     MenuModel
	game     Model
	runs     ScoreboardModel
	width    int
	height   int
	quitting bool
}

// NewSessionModel creates a session. base supplies board size, speed, seed
// and play pacing for every game started from the menu.
func NewSessionModel(e *ai.Engine, store *storage.Store, base ViewerConfig) SessionModel {
	if base.ScreenW <= 0 || base.ScreenH <= 0 {
		base.ScreenW, base.ScreenH = 80, 24
	}
	return SessionModel{
		engine: e,
		store:  store,
		base:   base,
		menu:   NewMenuModel(store, base.ScreenW, base.ScreenH),
		width:  base.ScreenW,
		height: base.ScreenH,
	}
}

// Init initializes the session.
func (m SessionModel) Init() tea.Cmd {
	return m.menu.Init()
}

// Update routes messages to the active screen.
func (m SessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		m.width, m.height = wsm.Width, wsm.Height
	}

	switch m.screen {
	case screenGame:
		return m.updateGame(msg)
	case screenRuns:
		return m.updateRuns(msg)
	default:
		return m.updateMenu(msg)
	}
}

func (m SessionModel) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	newMenu, cmd := m.menu.Update(msg)
	if menuModel, ok := newMenu.(MenuModel); ok {
		m.menu = menuModel
	}

	switch {
	case m.menu.IsQuitting():
		m.quitting = true
		return m, tea.Quit

	case m.menu.WantsScoreboard():
		m.runs = NewScoreboardModel(m.store, m.width, m.height)
		m.screen = screenRuns
		return m, m.runs.Init()

	case m.menu.Selected() != nil:
		item := m.menu.Selected()
		cfg := m.base
		cfg.Strategy = item.Strategy
		cfg.Human = item.Human
		cfg.ScreenW, cfg.ScreenH = m.width, m.height
		m.game = NewModel(m.engine, m.store, cfg)
		m.game.embedded = true
		m.screen = screenGame
		return m, m.game.Init()
	}

	return m, cmd
}

func (m SessionModel) updateGame(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel, cmd := m.game.Update(msg)
	if gameModel, ok := newModel.(Model); ok {
		m.game = gameModel
	}

	switch {
	case m.game.IsQuitting():
		m.quitting = true
		return m, tea.Quit

	case m.game.BackToMenu():
		return m.toMenu()
	}

	return m, cmd
}

func (m SessionModel) updateRuns(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel, cmd := m.runs.Update(msg)
	if runsModel, ok := newModel.(ScoreboardModel); ok {
		m.runs = runsModel
	}

	switch {
	case m.runs.IsQuitting():
		m.quitting = true
		return m, tea.Quit

	case m.runs.IsGoingBack():
		return m.toMenu()
	}

	return m, cmd
}

// toMenu rebuilds the menu so its best scores reflect the last game.
func (m SessionModel) toMenu() (tea.Model, tea.Cmd) {
	m.menu = NewMenuModel(m.store, m.width, m.height)
	m.screen = screenMenu
	return m, m.menu.Init()
}

// View renders the active screen.
func (m SessionModel) View() string {
	if m.quitting {
		return ""
	}

	switch m.screen {
	case screenGame:
		return m.game.View()
	case screenRuns:
		return m.runs.View()
	default:
		return m.menu.View()
	}
}

// RunSession starts the menu-driven session as a full-screen program.
func RunSession(e *ai.Engine, store *storage.Store, base ViewerConfig) error {
	p := tea.NewProgram(
		NewSessionModel(e, store, base),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
