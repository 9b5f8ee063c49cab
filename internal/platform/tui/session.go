package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/lanerunner/internal/config"
	"github.com/vovakirdan/lanerunner/internal/core"
	"github.com/vovakirdan/lanerunner/internal/games/runner"
	"github.com/vovakirdan/lanerunner/internal/storage"
)

type screen int

const (
	screenMenu screen = iota
	screenGame
	screenScores
)

// SessionModel manages the full flow: menu, run, scoreboard and back.
// It is the top-level model for SSH sessions and the bare CLI.
type SessionModel struct {
	store    *storage.Store
	source   string
	engine   config.EngineConfig
	config   core.RuntimeConfig
	username string

	current  screen
	menu     MenuModel
	game     Model
	scores   ScoreboardModel
	quitting bool
}

// NewSessionModel creates a session. Runs are recorded with source and use
// engineCfg adjusted by the chosen difficulty.
func NewSessionModel(store *storage.Store, source string, engineCfg config.EngineConfig, cfg core.RuntimeConfig, username string) SessionModel {
	return SessionModel{
		store:    store,
		source:   source,
		engine:   engineCfg,
		config:   cfg,
		username: username,
		menu:     NewMenuModel(store, cfg),
	}
}

func (m SessionModel) Init() tea.Cmd {
	return m.menu.Init()
}

// Update routes messages to the active screen.
func (m SessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		m.config.ScreenW = wsm.Width
		m.config.ScreenH = wsm.Height
	}

	switch m.current {
	case screenGame:
		return m.updateGame(msg)
	case screenScores:
		return m.updateScores(msg)
	default:
		return m.updateMenu(msg)
	}
}

func (m SessionModel) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.menu.Update(msg)
	if mm, ok := next.(MenuModel); ok {
		m.menu = mm
	}

	if m.menu.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}

	selected := m.menu.Selected()
	if selected == nil {
		return m, cmd
	}

	// The menu quits on selection; that command is dropped here.
	switch selected.Choice {
	case ChoiceScores:
		m.current = screenScores
		m.scores = NewScoreboardModel(m.store, m.config.ScreenW, m.config.ScreenH)
		return m, m.scores.Init()

	case ChoicePlay:
		cfg := m.engine
		config.ApplyPreset(&cfg, selected.Preset)
		runtime := m.config
		runtime.Seed = time.Now().UnixNano()

		m.game = NewModel(runner.NewWithConfig(cfg), Options{
			Store:    m.store,
			Source:   m.source,
			Embedded: true,
		}, runtime)
		m.current = screenGame
		return m, m.game.Init()
	}

	m.quitting = true
	return m, tea.Quit
}

func (m SessionModel) updateGame(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.game.Update(msg)
	if gm, ok := next.(Model); ok {
		m.game = gm
	}

	if m.game.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}
	if m.game.BackToMenu() {
		return m.backToMenu()
	}
	return m, cmd
}

func (m SessionModel) updateScores(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.scores.Update(msg)
	if sm, ok := next.(ScoreboardModel); ok {
		m.scores = sm
	}

	if m.scores.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}
	if m.scores.IsGoingBack() {
		return m.backToMenu()
	}
	return m, cmd
}

func (m SessionModel) backToMenu() (tea.Model, tea.Cmd) {
	m.current = screenMenu
	m.menu = NewMenuModel(m.store, m.config)
	return m, m.menu.Init()
}

// View renders the active screen.
func (m SessionModel) View() string {
	if m.quitting {
		return ""
	}

	switch m.current {
	case screenGame:
		return m.game.View()
	case screenScores:
		return m.scores.View()
	default:
		return m.menu.View()
	}
}

// Username returns the SSH user, or "" for local sessions.
func (m SessionModel) Username() string {
	return m.username
}

// RunSession starts the menu-driven session in the local terminal.
func RunSession(store *storage.Store, engineCfg config.EngineConfig, cfg core.RuntimeConfig) error {
	p := tea.NewProgram(
		NewSessionModel(store, storage.SourceLocal, engineCfg, cfg, ""),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
