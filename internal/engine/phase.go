// Package engine implements the real-time simulation core of the lane runner:
// the run lifecycle, lane and vertical motion, fixed-capacity world pools with
// wraparound recycling, collision policy, and the scoring and power-up timers.
//
// The engine is host-agnostic. A host feeds it time deltas through Advance and
// input intents through MoveLeft, MoveRight, Jump, Slide and EndGame, and
// observes it through a Listener and Snapshot.
package engine

import "fmt"

// Phase is the top-level state of a run.
type Phase int

const (
	PhaseIntro Phase = iota
	PhaseLanding
	PhaseRunning
	PhaseCollidingImpact
	PhaseCollidingFalling
	PhaseCollidingLying
	PhaseGameOver
)

// String returns a human-readable name for the phase.
func (p Phase) String() string {
	switch p {
	case PhaseIntro:
		return "Intro"
	case PhaseLanding:
		return "Landing"
	case PhaseRunning:
		return "Running"
	case PhaseCollidingImpact:
		return "CollidingImpact"
	case PhaseCollidingFalling:
		return "CollidingFalling"
	case PhaseCollidingLying:
		return "CollidingLying"
	case PhaseGameOver:
		return "GameOver"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// Colliding reports whether p is one of the three collision sub-phases.
func (p Phase) Colliding() bool {
	return p == PhaseCollidingImpact || p == PhaseCollidingFalling || p == PhaseCollidingLying
}
