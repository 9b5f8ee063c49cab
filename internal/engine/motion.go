package engine

import (
	"math"

	"github.com/vovakirdan/lanerunner/internal/core"
)

// laneX returns the lateral coordinate of a lane centre.
func (e *Engine) laneX(lane int) float64 {
	return float64(lane) * e.cfg.Track.LaneWidth
}

// shiftLane moves the target lane by delta, clamped to the track.
func (e *Engine) shiftLane(delta int) {
	e.state.TargetLane = core.Clamp(e.state.TargetLane+delta, MinLane, MaxLane)
}

// startJump begins a jump. A slide in progress is ended: jump and slide are
// kept mutually exclusive and the most recent intent wins.
func (e *Engine) startJump() {
	s := &e.state
	if s.Jumping {
		return
	}
	s.Sliding = false
	s.SlideRemaining = 0
	s.Jumping = true
	s.VerticalVelocity = e.cfg.Motion.JumpForce
}

// startSlide begins or refreshes a slide, cancelling any jump in flight.
func (e *Engine) startSlide() {
	s := &e.state
	if s.Jumping {
		s.Jumping = false
		s.Vertical = 0
		s.VerticalVelocity = 0
	}
	s.Sliding = true
	s.SlideRemaining = e.cfg.Motion.SlideDuration
}

// stepMotion advances lateral easing, jump integration and the slide timer.
func (e *Engine) stepMotion(dt float64) {
	s := &e.state

	s.Lateral = core.Approach(s.Lateral, e.laneX(s.TargetLane), e.cfg.Track.LateralRate, dt)
	s.CurrentLane = core.Clamp(int(math.Round(s.Lateral/e.cfg.Track.LaneWidth)), MinLane, MaxLane)

	if s.Jumping {
		s.VerticalVelocity -= e.cfg.Motion.Gravity * dt
		s.Vertical += s.VerticalVelocity * dt
		if s.Vertical <= 0 {
			s.Vertical = 0
			s.VerticalVelocity = 0
			s.Jumping = false
		}
	}

	if s.Sliding {
		s.SlideRemaining -= dt
		if s.SlideRemaining <= 0 {
			s.SlideRemaining = 0
			s.Sliding = false
		}
	}
}
