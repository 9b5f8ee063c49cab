// Package runner adapts the lane runner engine to the terminal host contract.
// It turns host actions into engine intents, drives the engine clock from the
// host tick rate, and projects the track onto a character screen.
package runner

import (
	"sync"

	"github.com/vovakirdan/lanerunner/internal/config"
	"github.com/vovakirdan/lanerunner/internal/core"
	"github.com/vovakirdan/lanerunner/internal/engine"
	"github.com/vovakirdan/lanerunner/internal/registry"
)

// ID is the registry identifier of the runner.
const ID = "runner"

// toastTicks is how long a pickup message stays on screen.
const toastTicks = 90

var (
	configPath       string
	difficultyPreset config.DifficultyPreset
)

// SetConfigPath sets the custom config path used by Reset.
func SetConfigPath(path string) {
	configPath = path
}

// SetDifficultyPreset sets the difficulty preset applied on Reset.
func SetDifficultyPreset(preset string) {
	difficultyPreset = config.ParsePreset(preset)
}

// Game implements registry.Game on top of one engine.
type Game struct {
	eng     *engine.Engine
	cfg     config.EngineConfig
	fixed   bool // cfg was supplied by the caller, skip loading
	runtime core.RuntimeConfig
	paused  bool
	frame   int

	mu       sync.Mutex // guards the fields written by engine callbacks
	external engine.Listener
	toast    string
	toastAge int
	flash    int // Frames left of the shield-break flash
}

// New creates a runner that loads its tunables on Reset.
func New() *Game {
	return &Game{}
}

// NewWithConfig creates a runner with fixed tunables.
func NewWithConfig(cfg config.EngineConfig) *Game {
	return &Game{cfg: cfg, fixed: true}
}

// ID returns the unique identifier for this game.
func (g *Game) ID() string {
	return ID
}

// Title returns the display name for this game.
func (g *Game) Title() string {
	return "Lane Runner"
}

// SetListener attaches an observer that receives every engine event in
// addition to the game's own effects. It may be called before or after Reset.
func (g *Game) SetListener(l engine.Listener) {
	g.mu.Lock()
	g.external = l
	g.mu.Unlock()
	if g.eng != nil {
		g.eng.SetListener(g.listener())
	}
}

// Engine exposes the underlying engine so transports can deliver intents.
// It is nil until the first Reset.
func (g *Game) Engine() *engine.Engine {
	return g.eng
}

// Reset starts a new run.
func (g *Game) Reset(runtime core.RuntimeConfig) {
	g.runtime = runtime

	if !g.fixed {
		rc, err := config.LoadRunner(configPath)
		if err != nil {
			rc = config.DefaultRunnerConfig()
		}
		g.cfg = rc.Engine
		if difficultyPreset != "" {
			config.ApplyPreset(&g.cfg, difficultyPreset)
		}
	}

	if g.eng == nil || g.eng.Config() != g.cfg {
		g.eng = engine.New(g.cfg, engine.WithSeed(runtime.Seed), engine.WithListener(g.listener()))
	} else {
		g.eng.Reseed(runtime.Seed)
	}

	g.paused = false
	g.frame = 0
	g.mu.Lock()
	g.toast = ""
	g.toastAge = 0
	g.flash = 0
	g.mu.Unlock()

	g.eng.Start()
}

// listener combines the game's own effect hooks with the external observer.
func (g *Game) listener() engine.Listener {
	own := engine.ListenerFuncs{
		PowerUp: func(kind engine.PowerUpKind) {
			g.setToast(kind.String() + " up")
		},
		ShieldBreak: func() {
			g.mu.Lock()
			g.flash = 12
			g.mu.Unlock()
			g.setToast("shield broken")
		},
	}

	g.mu.Lock()
	ext := g.external
	g.mu.Unlock()
	if ext == nil {
		return own
	}
	return engine.MultiListener{own, ext}
}

func (g *Game) setToast(msg string) {
	g.mu.Lock()
	g.toast = msg
	g.toastAge = 0
	g.mu.Unlock()
}

// Step applies the frame's actions in order and advances one tick.
func (g *Game) Step(in core.InputFrame) core.StepResult {
	if g.eng == nil {
		return core.StepResult{}
	}

	for _, a := range in.Actions {
		switch a {
		case core.ActionPause:
			if g.eng.Phase() != engine.PhaseGameOver {
				g.paused = !g.paused
			}
		case core.ActionLeft:
			g.eng.MoveLeft()
		case core.ActionRight:
			g.eng.MoveRight()
		case core.ActionJump:
			g.eng.Jump()
		case core.ActionSlide:
			g.eng.Slide()
		case core.ActionEnd:
			g.eng.EndGame()
		}
	}

	if !g.paused {
		g.frame++
		g.eng.Advance(g.runtime.TickSeconds())
		g.mu.Lock()
		if g.toast != "" {
			g.toastAge++
			if g.toastAge > toastTicks {
				g.toast = ""
			}
		}
		if g.flash > 0 {
			g.flash--
		}
		g.mu.Unlock()
	}

	return core.StepResult{State: g.State()}
}

// State returns the current game state.
func (g *Game) State() core.GameState {
	if g.eng == nil {
		return core.GameState{}
	}
	s := g.eng.State()
	return core.GameState{
		Score:    s.Score(),
		Coins:    s.Coins,
		GameOver: s.Phase == engine.PhaseGameOver,
		Paused:   g.paused,
	}
}

// Result returns the totals of the current run.
func (g *Game) Result() core.RunResult {
	if g.eng == nil {
		return core.RunResult{}
	}
	s := g.eng.State()
	return core.RunResult{Score: s.Score(), Coins: s.Coins, Level: s.Level, Distance: s.Distance}
}

func init() {
	registry.Register(ID, func() registry.Game {
		return New()
	})
}
