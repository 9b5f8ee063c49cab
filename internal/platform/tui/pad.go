package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/lanerunner/internal/session"
)

// PadSender is the controller side of a relay session.
type PadSender interface {
	Send(direction string) error
	StartGame() error
	RestartGame() error
}

// PadKeyMap holds the controller pad bindings.
type PadKeyMap struct {
	Left    key.Binding
	Right   key.Binding
	Up      key.Binding
	Down    key.Binding
	Start   key.Binding
	Restart key.Binding
	Quit    key.Binding
}

func (k PadKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Left, k.Right, k.Up, k.Down, k.Start, k.Restart, k.Quit}
}

func (k PadKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// DefaultPadKeyMap returns the default pad bindings.
func DefaultPadKeyMap() PadKeyMap {
	return PadKeyMap{
		Left:    key.NewBinding(key.WithKeys("left", "a"), key.WithHelp("←", "left")),
		Right:   key.NewBinding(key.WithKeys("right", "d"), key.WithHelp("→", "right")),
		Up:      key.NewBinding(key.WithKeys("up", "w", " "), key.WithHelp("↑", "jump")),
		Down:    key.NewBinding(key.WithKeys("down", "s"), key.WithHelp("↓", "slide")),
		Start:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "start")),
		Restart: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "restart")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// PadEventMsg wraps one envelope received from the relay.
type PadEventMsg session.Envelope

// PadClosedMsg is sent when the relay connection ends.
type PadClosedMsg struct{}

// PadModel turns key presses into controller events and shows what the
// desktop reports back.
type PadModel struct {
	sender    PadSender
	events    <-chan session.Envelope
	sessionID string
	keys      PadKeyMap
	help      help.Model
	width     int

	last     string
	score    int
	coins    int
	status   string
	err      error
	closed   bool
	quitting bool
}

// NewPadModel creates a pad. events is typically remote.Controller.Events.
func NewPadModel(sender PadSender, events <-chan session.Envelope, sessionID string) PadModel {
	return PadModel{
		sender:    sender,
		events:    events,
		sessionID: sessionID,
		keys:      DefaultPadKeyMap(),
		help:      help.New(),
		status:    "waiting for the run",
	}
}

func (m PadModel) Init() tea.Cmd {
	return waitForPadEvent(m.events)
}

func waitForPadEvent(events <-chan session.Envelope) tea.Cmd {
	return func() tea.Msg {
		env, ok := <-events
		if !ok {
			return PadClosedMsg{}
		}
		return PadEventMsg(env)
	}
}

// Update handles messages for the pad.
func (m PadModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width

	case PadEventMsg:
		m.apply(session.Envelope(msg))
		return m, waitForPadEvent(m.events)

	case PadClosedMsg:
		m.closed = true
		m.status = "disconnected"
	}
	return m, nil
}

func (m PadModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var err error
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Left):
		m.last, err = "left", m.sender.Send("left")
	case key.Matches(msg, m.keys.Right):
		m.last, err = "right", m.sender.Send("right")
	case key.Matches(msg, m.keys.Up):
		m.last, err = "up", m.sender.Send("up")
	case key.Matches(msg, m.keys.Down):
		m.last, err = "down", m.sender.Send("down")
	case key.Matches(msg, m.keys.Start):
		err = m.sender.StartGame()
	case key.Matches(msg, m.keys.Restart):
		err = m.sender.RestartGame()
	}
	m.err = err
	return m, nil
}

func (m *PadModel) apply(env session.Envelope) {
	switch env.Event {
	case session.EventDesktopReady:
		m.status = "desktop ready"
	case session.EventPlayerJoined:
		p, _ := session.DecodePayload[session.PlayerJoined](env)
		m.status = p.Name + " joined"
	case session.EventGameStarted, session.EventRestartGame:
		m.status = "running"
		m.score, m.coins = 0, 0
	case session.EventScoreUpdate:
		s, _ := session.DecodePayload[session.Score](env)
		m.score, m.coins = s.Score, s.Coins
	case session.EventGameEnded:
		s, _ := session.DecodePayload[session.Score](env)
		m.score, m.coins = s.Score, s.Coins
		m.status = "game over"
	case session.EventError:
		e, _ := session.DecodePayload[session.ErrorMessage](env)
		m.status = "error: " + e.Message
	}
}

// View renders the pad.
func (m PadModel) View() string {
	if m.quitting {
		return ""
	}

	title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(1, 3)

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", title.Render("CONTROLLER  "+m.sessionID))
	fmt.Fprintf(&b, "Status: %s\n", m.status)
	fmt.Fprintf(&b, "Score:  %d   Coins: %d\n", m.score, m.coins)
	if m.last != "" {
		fmt.Fprintf(&b, "Sent:   %s\n", m.last)
	}
	if m.err != nil {
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Render(m.err.Error()))
		b.WriteString("\n")
	}

	helpLine := lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render(m.help.View(m.keys))
	return box.Render(strings.TrimRight(b.String(), "\n")) + "\n" + helpLine
}

// Score returns the last score reported by the desktop.
func (m PadModel) Score() (score, coins int) {
	return m.score, m.coins
}

// Status returns the pad's status line.
func (m PadModel) Status() string {
	return m.status
}

// RunPad starts the controller pad in the local terminal.
func RunPad(sender PadSender, events <-chan session.Envelope, sessionID string) error {
	p := tea.NewProgram(NewPadModel(sender, events, sessionID))
	_, err := p.Run()
	return err
}
