package engine

import "math"

// stepProgress advances speed, distance and level for one Running tick.
func (e *Engine) stepProgress(dt float64) float64 {
	s := &e.state
	sp := e.cfg.Speed

	s.Speed = math.Min(s.Speed+sp.Step, sp.Max)
	travel := s.Speed * dt
	s.Distance += travel
	s.RunTime += dt

	for s.Distance >= s.NextLevelAt {
		s.Level++
		s.NextLevelAt += sp.LevelDistance
		s.Speed = math.Min(s.Speed+sp.LevelBoost, sp.Max)
	}
	return travel
}

// stepTimers decrements the combo, shield and magnet countdowns.
func (e *Engine) stepTimers(dt float64) {
	s := &e.state

	if s.ComboRemaining > 0 {
		s.ComboRemaining -= dt
		if s.ComboRemaining <= 0 {
			s.ComboRemaining = 0
			s.Combo = 1
		}
	}

	if s.ShieldActive {
		s.ShieldRemaining -= dt
		if s.ShieldRemaining <= 0 {
			s.ShieldRemaining = 0
			s.ShieldActive = false
		}
	}

	if s.MagnetActive {
		s.MagnetRemaining -= dt
		if s.MagnetRemaining <= 0 {
			s.MagnetRemaining = 0
			s.MagnetActive = false
		}
	}
}

// stepScoreClock emits a score snapshot every ScoreInterval seconds.
func (e *Engine) stepScoreClock(dt float64) {
	s := &e.state
	s.ScoreClock += dt
	if s.ScoreClock >= e.cfg.Cadence.ScoreInterval {
		s.ScoreClock -= e.cfg.Cadence.ScoreInterval
		e.emit(event{kind: eventScore, score: s.Score(), coins: s.Coins})
	}
}
