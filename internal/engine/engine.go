package engine

import (
	"fmt"
	"math"
	"math/rand"
	"sync"

	"github.com/vovakirdan/lanerunner/internal/config"
	"github.com/vovakirdan/lanerunner/internal/core"
)

// Engine owns one run. All exported methods are safe for concurrent use.
type Engine struct {
	mu sync.Mutex

	cfg      config.EngineConfig
	seed     int64
	rng      *rand.Rand
	listener Listener

	pools   *pools
	state   RunState
	started bool

	pending []event
	nearby  []int // scratch for the lane scan
}

// Option configures an Engine at construction.
type Option func(*Engine)

// WithSeed fixes the random source so runs are reproducible.
func WithSeed(seed int64) Option {
	return func(e *Engine) {
		e.seed = seed
	}
}

// WithListener sets the observer of run events.
func WithListener(l Listener) Option {
	return func(e *Engine) {
		e.listener = l
	}
}

// New creates an idle engine. Call Start to begin a run.
func New(cfg config.EngineConfig, opts ...Option) *Engine {
	e := &Engine{
		cfg:  cfg,
		seed: 1,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.rng = rand.New(rand.NewSource(e.seed))
	e.pending = make([]event, 0, 8)
	return e
}

// SetListener replaces the observer. A nil listener drops events.
func (e *Engine) SetListener(l Listener) {
	e.mu.Lock()
	e.listener = l
	e.mu.Unlock()
}

// Reseed resets the random source. It affects the next Start.
func (e *Engine) Reseed(seed int64) {
	e.mu.Lock()
	e.seed = seed
	e.rng = rand.New(rand.NewSource(seed))
	e.mu.Unlock()
}

// Config returns the tunables the engine was built with.
func (e *Engine) Config() config.EngineConfig {
	return e.cfg
}

// Start resets the run state and every pool and enters the intro descent.
// It is valid at any time, including mid-run.
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.pools == nil || !e.pools.fits(e.cfg.Pools) {
		e.pools = newPools(e.cfg.Pools)
	}
	e.state = RunState{
		Phase:       PhaseIntro,
		Speed:       e.cfg.Speed.Initial,
		Level:       1,
		NextLevelAt: e.cfg.Speed.LevelDistance,
		Vertical:    e.cfg.Intro.Altitude,
		Combo:       1,
		HitSlot:     -1,
	}
	e.pending = e.pending[:0]
	e.layoutPools()
	e.started = true
}

// Destroy releases the pools. Until the next Start every call is a no-op.
func (e *Engine) Destroy() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.started {
		return
	}
	e.started = false
	e.pools = nil
	e.pending = e.pending[:0]
	e.state = RunState{Phase: PhaseGameOver, HitSlot: -1}
}

// Started reports whether a run exists.
func (e *Engine) Started() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.started
}

// Phase returns the current phase.
func (e *Engine) Phase() Phase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Phase
}

// MoveLeft shifts the target lane one step left.
func (e *Engine) MoveLeft() {
	e.intent(func() { e.shiftLane(-1) })
}

// MoveRight shifts the target lane one step right.
func (e *Engine) MoveRight() {
	e.intent(func() { e.shiftLane(1) })
}

// Jump starts a jump unless one is in flight.
func (e *Engine) Jump() {
	e.intent(e.startJump)
}

// Slide starts or refreshes a slide.
func (e *Engine) Slide() {
	e.intent(e.startSlide)
}

// intent applies fn only while running.
func (e *Engine) intent(fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.started || e.state.Phase != PhaseRunning {
		return
	}
	fn()
}

// EndGame forces the collision sequence. It is a no-op once the run is
// already colliding or over.
func (e *Engine) EndGame() {
	e.mu.Lock()
	if !e.started {
		e.mu.Unlock()
		return
	}
	switch e.state.Phase {
	case PhaseIntro, PhaseLanding, PhaseRunning:
		s := &e.state
		if s.Phase == PhaseIntro {
			s.Vertical = 0
			s.Lateral = 0
		}
		s.HitSlot = -1
		e.enterImpact()
	}
	events := e.drain()
	l := e.listener
	e.mu.Unlock()

	dispatch(l, events)
}

// Advance steps the simulation by dt seconds, clamped to the configured
// maximum. Events raised during the step are delivered before it returns,
// outside the engine lock.
func (e *Engine) Advance(dt float64) {
	e.mu.Lock()
	if !e.started || e.state.Phase == PhaseGameOver || !(dt > 0) {
		e.mu.Unlock()
		return
	}
	if dt > e.cfg.Cadence.MaxDelta {
		dt = e.cfg.Cadence.MaxDelta
	}

	switch e.state.Phase {
	case PhaseIntro:
		e.stepIntro(dt)
	case PhaseLanding:
		e.stepLanding(dt)
	case PhaseRunning:
		e.stepRunning(dt)
	case PhaseCollidingImpact, PhaseCollidingFalling, PhaseCollidingLying:
		e.stepColliding(dt)
	default:
		panic(fmt.Sprintf("engine: advance in unknown phase %v", e.state.Phase))
	}

	events := e.drain()
	l := e.listener
	e.mu.Unlock()

	dispatch(l, events)
}

// drain returns a copy of the queued events and clears the queue.
func (e *Engine) drain() []event {
	if len(e.pending) == 0 {
		return nil
	}
	events := make([]event, len(e.pending))
	copy(events, e.pending)
	e.pending = e.pending[:0]
	return events
}

func (e *Engine) stepIntro(dt float64) {
	s := &e.state
	ic := e.cfg.Intro

	s.IntroElapsed += dt
	s.Vertical -= ic.DescentRate * dt
	if s.Vertical <= 0 {
		s.Vertical = 0
		s.Lateral = 0
		s.Phase = PhaseLanding
		s.LandingTimer = 0
		return
	}
	// Sway fades out as the avatar nears the ground.
	fade := s.Vertical / ic.Altitude
	s.Lateral = ic.SwayAmplitude * math.Sin(ic.SwayFrequency*s.IntroElapsed) * fade
}

func (e *Engine) stepLanding(dt float64) {
	s := &e.state
	d := e.cfg.Intro.LandingDuration

	s.LandingTimer += dt
	if s.LandingTimer >= d {
		s.LandingTimer = d
		s.Crouch = 0
		s.Phase = PhaseRunning
		e.emit(event{kind: eventRunStart})
		return
	}
	s.Crouch = math.Sin(math.Pi * s.LandingTimer / d)
}

func (e *Engine) stepRunning(dt float64) {
	travel := e.stepProgress(dt)
	e.stepMotion(dt)
	e.stepTimers(dt)
	e.advancePools(travel)
	e.pullCoins(dt)
	if e.resolveObstacles(travel) {
		return
	}
	e.collectCoins(travel)
	e.collectPowerUps(travel)
	e.recyclePools()
	e.stepScoreClock(dt)
}

// enterImpact freezes forward motion and starts the collision sequence.
func (e *Engine) enterImpact() {
	s := &e.state
	s.Phase = PhaseCollidingImpact
	s.CollisionTimer = 0
	s.Shake = true
	s.Crouch = 0
	s.Jumping = false
	s.VerticalVelocity = 0
	s.Sliding = false
	s.SlideRemaining = 0
	e.emit(event{kind: eventImpact})
}

// stepColliding runs the impact, falling and lying sub-phases. Time left over
// when a sub-phase expires carries into the next one.
func (e *Engine) stepColliding(dt float64) {
	s := &e.state
	cc := e.cfg.Crash

	s.CollisionTimer += dt

	if s.Phase == PhaseCollidingImpact {
		s.AvatarZ += cc.ImpactDrift * dt
		if s.CollisionTimer < cc.ImpactDuration {
			return
		}
		s.CollisionTimer -= cc.ImpactDuration
		s.Shake = false
		s.FallFrom = s.Vertical
		s.Phase = PhaseCollidingFalling
	}

	if s.Phase == PhaseCollidingFalling {
		t := core.ClampF(s.CollisionTimer/cc.FallingDuration, 0, 1)
		s.Pitch = t * math.Pi / 2
		s.Vertical = core.Lerp(s.FallFrom, cc.LyingHeight, core.EaseOutQuad(t))
		if s.CollisionTimer < cc.FallingDuration {
			return
		}
		s.CollisionTimer -= cc.FallingDuration
		s.Pitch = math.Pi / 2
		s.Vertical = cc.LyingHeight
		s.Phase = PhaseCollidingLying
	}

	if s.Phase == PhaseCollidingLying {
		if s.CollisionTimer < cc.LyingDuration {
			return
		}
		s.CollisionTimer = cc.LyingDuration
		s.Phase = PhaseGameOver
		e.emit(event{kind: eventGameOver, score: s.Score(), coins: s.Coins})
	}
}
