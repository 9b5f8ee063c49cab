package engine

// Listener observes a run. Calls are made from the goroutine that drives
// Advance, after the engine lock is released, so implementations may call
// back into the engine.
type Listener interface {
	// OnScoreUpdate is called periodically while running, not every tick.
	OnScoreUpdate(score, coins int)
	// OnGameOver is called exactly once per run, when the avatar has lain
	// prone for the full duration.
	OnGameOver(score, coins int)
	// OnPowerUp is called once per power-up acquisition.
	OnPowerUp(kind PowerUpKind)
}

// EffectListener is an optional extension for presentation cues.
// The engine type-asserts its Listener against it.
type EffectListener interface {
	OnRunStart()    // Landing finished; start music and ambience
	OnImpact()      // Fatal contact or forced end; shake the camera
	OnShieldBreak() // Shield absorbed a hit; clear its visual
}

// ListenerFuncs adapts plain functions to Listener and EffectListener.
// Nil fields are skipped.
type ListenerFuncs struct {
	ScoreUpdate func(score, coins int)
	GameOver    func(score, coins int)
	PowerUp     func(kind PowerUpKind)
	RunStart    func()
	Impact      func()
	ShieldBreak func()
}

func (f ListenerFuncs) OnScoreUpdate(score, coins int) {
	if f.ScoreUpdate != nil {
		f.ScoreUpdate(score, coins)
	}
}

func (f ListenerFuncs) OnGameOver(score, coins int) {
	if f.GameOver != nil {
		f.GameOver(score, coins)
	}
}

func (f ListenerFuncs) OnPowerUp(kind PowerUpKind) {
	if f.PowerUp != nil {
		f.PowerUp(kind)
	}
}

func (f ListenerFuncs) OnRunStart() {
	if f.RunStart != nil {
		f.RunStart()
	}
}

func (f ListenerFuncs) OnImpact() {
	if f.Impact != nil {
		f.Impact()
	}
}

func (f ListenerFuncs) OnShieldBreak() {
	if f.ShieldBreak != nil {
		f.ShieldBreak()
	}
}

// MultiListener fans events out to several listeners in order.
// Effect cues reach only the listeners that implement EffectListener.
type MultiListener []Listener

func (m MultiListener) OnScoreUpdate(score, coins int) {
	for _, l := range m {
		l.OnScoreUpdate(score, coins)
	}
}

func (m MultiListener) OnGameOver(score, coins int) {
	for _, l := range m {
		l.OnGameOver(score, coins)
	}
}

func (m MultiListener) OnPowerUp(kind PowerUpKind) {
	for _, l := range m {
		l.OnPowerUp(kind)
	}
}

func (m MultiListener) OnRunStart() {
	for _, l := range m {
		if el, ok := l.(EffectListener); ok {
			el.OnRunStart()
		}
	}
}

func (m MultiListener) OnImpact() {
	for _, l := range m {
		if el, ok := l.(EffectListener); ok {
			el.OnImpact()
		}
	}
}

func (m MultiListener) OnShieldBreak() {
	for _, l := range m {
		if el, ok := l.(EffectListener); ok {
			el.OnShieldBreak()
		}
	}
}

type eventKind int

const (
	eventScore eventKind = iota
	eventGameOver
	eventPowerUp
	eventRunStart
	eventImpact
	eventShieldBreak
)

// event is a callback queued during a tick and delivered after it.
type event struct {
	kind  eventKind
	score int
	coins int
	power PowerUpKind
}

func (e *Engine) emit(ev event) {
	e.pending = append(e.pending, ev)
}

func dispatch(l Listener, events []event) {
	if l == nil {
		return
	}
	el, hasEffects := l.(EffectListener)
	for _, ev := range events {
		switch ev.kind {
		case eventScore:
			l.OnScoreUpdate(ev.score, ev.coins)
		case eventGameOver:
			l.OnGameOver(ev.score, ev.coins)
		case eventPowerUp:
			l.OnPowerUp(ev.power)
		case eventRunStart:
			if hasEffects {
				el.OnRunStart()
			}
		case eventImpact:
			if hasEffects {
				el.OnImpact()
			}
		case eventShieldBreak:
			if hasEffects {
				el.OnShieldBreak()
			}
		}
	}
}
