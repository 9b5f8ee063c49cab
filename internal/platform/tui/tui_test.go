package tui

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/lanerunner/internal/config"
	"github.com/vovakirdan/lanerunner/internal/core"
	"github.com/vovakirdan/lanerunner/internal/games/runner"
	"github.com/vovakirdan/lanerunner/internal/session"
	"github.com/vovakirdan/lanerunner/internal/storage"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func openStore(t *testing.T) *storage.Store {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("storage.Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func testRuntime() core.RuntimeConfig {
	return core.RuntimeConfig{ScreenW: 80, ScreenH: 24, TickRate: 60, Seed: 3}
}

func TestKeyMapActions(t *testing.T) {
	keys := DefaultKeyMap()
	tests := []struct {
		msg  tea.KeyMsg
		want core.Action
	}{
		{tea.KeyMsg{Type: tea.KeyLeft}, core.ActionLeft},
		{runes("a"), core.ActionLeft},
		{tea.KeyMsg{Type: tea.KeyRight}, core.ActionRight},
		{runes("d"), core.ActionRight},
		{tea.KeyMsg{Type: tea.KeyUp}, core.ActionJump},
		{runes("w"), core.ActionJump},
		{runes(" "), core.ActionJump},
		{tea.KeyMsg{Type: tea.KeyDown}, core.ActionSlide},
		{runes("s"), core.ActionSlide},
		{runes("e"), core.ActionEnd},
		{runes("r"), core.ActionRestart},
		{runes("p"), core.ActionPause},
		{tea.KeyMsg{Type: tea.KeyEsc}, core.ActionPause},
		{runes("b"), core.ActionBack},
		{runes("q"), core.ActionQuit},
		{tea.KeyMsg{Type: tea.KeyCtrlC}, core.ActionQuit},
		{runes("x"), core.ActionNone},
	}

	for _, tt := range tests {
		t.Run(tt.msg.String(), func(t *testing.T) {
			if got := keys.Action(tt.msg); got != tt.want {
				t.Errorf("Action(%q) = %v, expected %v", tt.msg.String(), got, tt.want)
			}
		})
	}
}

func step(m Model, msg tea.Msg) Model {
	next, _ := m.Update(msg)
	return next.(Model)
}

func tick(m Model, n int) Model {
	for range n {
		m = step(m, TickMsg(time.Now()))
	}
	return m
}

func TestModelSavesFinishedRunOnce(t *testing.T) {
	store := openStore(t)
	game := runner.NewWithConfig(config.DefaultEngineConfig())
	m := NewModel(game, Options{Store: store, Status: "session abc123"}, testRuntime())
	m.Init()

	// Descent, landing, then a stretch of running.
	m = tick(m, 300)
	if m.GameState().GameOver {
		t.Fatal("run ended before the end key was pressed")
	}
	if m.GameState().Score <= 0 {
		t.Fatalf("score = %d after running, expected > 0", m.GameState().Score)
	}

	m = step(m, runes("e"))
	m = tick(m, 400)
	if !m.GameState().GameOver {
		t.Fatal("expected game over after ending the run")
	}

	runs, err := store.TopRuns(10)
	if err != nil {
		t.Fatalf("TopRuns: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("saved %d runs, expected 1", len(runs))
	}
	if runs[0].Source != storage.SourceLocal || runs[0].Level < 1 || runs[0].Distance <= 0 {
		t.Errorf("unexpected saved run %+v", runs[0])
	}
	if runs[0].Score != m.GameState().Score {
		t.Errorf("saved score %d, expected %d", runs[0].Score, m.GameState().Score)
	}

	if view := m.View(); !strings.Contains(view, "session abc123") {
		t.Error("status line missing from view")
	}

	m = step(m, runes("r"))
	m = tick(m, 1)
	if m.GameState().GameOver {
		t.Error("restart did not start a new run")
	}
}

// fixedGame ends after a set number of steps and reports a fixed result.
type fixedGame struct {
	steps, endAfter int
	result          core.RunResult
}

func (g *fixedGame) ID() string               { return "fixed" }
func (g *fixedGame) Title() string            { return "Fixed" }
func (g *fixedGame) Reset(core.RuntimeConfig) { g.steps = 0 }
func (g *fixedGame) Render(*core.Screen)      {}
func (g *fixedGame) Result() core.RunResult   { return g.result }

func (g *fixedGame) Step(core.InputFrame) core.StepResult {
	g.steps++
	return core.StepResult{State: g.State()}
}

func (g *fixedGame) State() core.GameState {
	return core.GameState{
		Score:    g.result.Score,
		Coins:    g.result.Coins,
		GameOver: g.steps >= g.endAfter,
	}
}

func TestModelSavesResultOfAnyGame(t *testing.T) {
	store := openStore(t)
	game := &fixedGame{endAfter: 3, result: core.RunResult{Score: 420, Coins: 7, Level: 4, Distance: 380.5}}
	m := NewModel(game, Options{Store: store, Source: storage.SourceSSH}, testRuntime())
	m.Init()
	m = tick(m, 10)

	runs, err := store.TopRuns(10)
	if err != nil {
		t.Fatalf("TopRuns: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("saved %d runs, expected 1", len(runs))
	}
	got := runs[0]
	if got.Score != 420 || got.Coins != 7 || got.Level != 4 || got.Distance != 380.5 || got.Source != storage.SourceSSH {
		t.Errorf("unexpected saved run %+v", got)
	}
}

func TestModelIgnoresRestartWhileRunning(t *testing.T) {
	game := runner.NewWithConfig(config.DefaultEngineConfig())
	m := NewModel(game, Options{}, testRuntime())
	m.Init()
	m = tick(m, 10)

	m = step(m, runes("r"))
	if m.inputFrame.Has(core.ActionRestart) {
		t.Error("restart queued while the run is live")
	}
}

func TestModelPauseAndBack(t *testing.T) {
	game := runner.NewWithConfig(config.DefaultEngineConfig())
	m := NewModel(game, Options{Embedded: true}, testRuntime())
	m.Init()
	m = tick(m, 5)

	m = step(m, runes("b"))
	if m.BackToMenu() {
		t.Fatal("back accepted during a live run")
	}

	m = step(m, runes("p"))
	m = tick(m, 1)
	if !m.GameState().Paused {
		t.Fatal("expected paused state")
	}
	m = step(m, runes("b"))
	if !m.BackToMenu() {
		t.Error("back should leave a paused run")
	}
	if m.IsQuitting() {
		t.Error("embedded back must not quit")
	}
}

func TestModelQuit(t *testing.T) {
	m := NewModel(runner.NewWithConfig(config.DefaultEngineConfig()), Options{}, testRuntime())
	m.Init()
	next, cmd := m.Update(runes("q"))
	if !next.(Model).IsQuitting() || cmd == nil {
		t.Error("q should quit")
	}
	if next.(Model).View() != "" {
		t.Error("quitting view should be empty")
	}
}

func TestSessionFlow(t *testing.T) {
	store := openStore(t)
	s := NewSessionModel(store, storage.SourceSSH, config.DefaultEngineConfig(), testRuntime(), "ana")
	s.Init()

	update := func(msg tea.Msg) {
		next, _ := s.Update(msg)
		s = next.(SessionModel)
	}

	if !strings.Contains(s.View(), "L A N E") {
		t.Fatal("menu title missing")
	}

	update(tea.KeyMsg{Type: tea.KeyTab})
	if s.current != screenScores {
		t.Fatalf("tab should open scores, screen = %v", s.current)
	}
	if !strings.Contains(s.View(), "No runs recorded yet") {
		t.Error("empty scoreboard message missing")
	}
	update(tea.KeyMsg{Type: tea.KeyEsc})
	if s.current != screenMenu {
		t.Fatalf("esc should return to the menu, screen = %v", s.current)
	}

	update(tea.KeyMsg{Type: tea.KeyEnter})
	if s.current != screenGame {
		t.Fatalf("enter should start a run, screen = %v", s.current)
	}
	if s.game.opts.Source != storage.SourceSSH {
		t.Errorf("run source = %q", s.game.opts.Source)
	}
	update(TickMsg(time.Now()))
	if s.View() == "" {
		t.Error("empty view during a run")
	}

	update(runes("p"))
	update(TickMsg(time.Now()))
	update(runes("b"))
	if s.current != screenMenu {
		t.Errorf("back from a paused run should show the menu, screen = %v", s.current)
	}
	if s.Username() != "ana" {
		t.Errorf("username = %q", s.Username())
	}
}

func TestScoreboardViews(t *testing.T) {
	store := openStore(t)
	for _, score := range []int{50, 300, 120} {
		if _, err := store.SaveRun(storage.Run{Score: score, Coins: 2, Distance: 40}); err != nil {
			t.Fatalf("SaveRun: %v", err)
		}
	}

	m := NewScoreboardModel(store, 120, 30)
	if len(m.runs) != 3 || m.runs[0].Score != 300 {
		t.Fatalf("top view runs = %+v", m.runs)
	}
	if !m.showSidebar {
		t.Error("wide terminal should show stats")
	}
	if view := m.View(); !strings.Contains(view, "Best:") || !strings.Contains(view, "Top runs") {
		t.Error("stats or title missing from view")
	}

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(ScoreboardModel)
	if m.view != ViewRecent || m.runs[0].Score != 120 {
		t.Errorf("recent view first run = %+v", m.runs[0])
	}

	next, _ = m.Update(tea.WindowSizeMsg{Width: 60, Height: 20})
	m = next.(ScoreboardModel)
	if m.showSidebar {
		t.Error("narrow terminal should hide stats")
	}
}

type fakeSender struct {
	sent     []string
	starts   int
	restarts int
	err      error
}

func (f *fakeSender) Send(direction string) error {
	f.sent = append(f.sent, direction)
	return f.err
}

func (f *fakeSender) StartGame() error {
	f.starts++
	return f.err
}

func (f *fakeSender) RestartGame() error {
	f.restarts++
	return f.err
}

func TestPadSendsDirections(t *testing.T) {
	sender := &fakeSender{}
	events := make(chan session.Envelope)
	m := NewPadModel(sender, events, "abcd1234")

	for _, msg := range []tea.KeyMsg{
		{Type: tea.KeyLeft}, runes("d"), runes(" "), runes("s"),
		{Type: tea.KeyEnter}, runes("r"),
	} {
		next, _ := m.Update(msg)
		m = next.(PadModel)
	}

	want := []string{"left", "right", "up", "down"}
	if strings.Join(sender.sent, ",") != strings.Join(want, ",") {
		t.Errorf("sent %v, expected %v", sender.sent, want)
	}
	if sender.starts != 1 || sender.restarts != 1 {
		t.Errorf("starts=%d restarts=%d", sender.starts, sender.restarts)
	}

	sender.err = errors.New("socket closed")
	next, _ := m.Update(runes("a"))
	m = next.(PadModel)
	if !strings.Contains(m.View(), "socket closed") {
		t.Error("send error not shown")
	}
}

func TestPadShowsRelayEvents(t *testing.T) {
	events := make(chan session.Envelope, 1)
	m := NewPadModel(&fakeSender{}, events, "abcd1234")

	feed := func(name, data string) {
		next, cmd := m.Update(PadEventMsg(session.Envelope{Event: name, Data: json.RawMessage(data)}))
		m = next.(PadModel)
		if cmd == nil {
			t.Fatalf("%s: pad stopped listening", name)
		}
	}

	feed(session.EventGameStarted, `{}`)
	if m.Status() != "running" {
		t.Errorf("status = %q", m.Status())
	}
	feed(session.EventScoreUpdate, `{"score":77,"coins":3}`)
	if s, c := m.Score(); s != 77 || c != 3 {
		t.Errorf("score = %d/%d", s, c)
	}
	feed(session.EventGameEnded, `{"score":90,"coins":4}`)
	if s, _ := m.Score(); s != 90 || m.Status() != "game over" {
		t.Errorf("after game_ended score=%d status=%q", s, m.Status())
	}

	close(events)
	msg := waitForPadEvent(events)()
	if _, ok := msg.(PadClosedMsg); !ok {
		t.Fatalf("closed channel produced %T", msg)
	}
	next, _ := m.Update(msg)
	if next.(PadModel).Status() != "disconnected" {
		t.Error("expected disconnected status")
	}
}
