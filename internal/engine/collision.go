package engine

import (
	"math"

	"github.com/vovakirdan/lanerunner/internal/core"
)

// passCondition is how an avatar gets past an obstacle it overlaps.
type passCondition int

const (
	passNever passCondition = iota // Always fatal unless shielded
	passAbove                      // Height at or above the clearance
	passBelow                      // Sliding under the ceiling
)

// obstacleRules is the full pass table, indexed by kind.
var obstacleRules = [...]passCondition{
	ObstacleBlock:    passNever,
	ObstacleBarrier:  passAbove,
	ObstacleOverhead: passBelow,
}

// clears reports whether the avatar passes obstacle o under its kind's rule.
func (e *Engine) clears(o *Obstacle) bool {
	s := &e.state
	switch obstacleRules[o.Kind] {
	case passNever:
		return false
	case passAbove:
		return s.Vertical >= o.HalfHeight*e.cfg.Hitbox.BarrierClearFactor
	case passBelow:
		return s.Sliding && s.Vertical < e.cfg.Hitbox.OverheadSlideCeiling
	default:
		panic("engine: obstacle rule table is incomplete")
	}
}

// swept reports whether a slot that moved travel units to z passed through
// the window of half-width half around center during the tick.
func swept(z, travel, center, half float64) bool {
	return z-travel < center+half && z > center-half
}

// resolveObstacles tests the avatar against every active obstacle that swept
// through the contact window this tick.
// A shield absorbs the first fatal contact and retires that obstacle; any later
// fatal contact, including one in the same tick, ends the run. Returns true if
// the run ended.
func (e *Engine) resolveObstacles(travel float64) bool {
	s := &e.state
	hb := e.cfg.Hitbox

	for i := range e.pools.obstacles {
		o := &e.pools.obstacles[i]
		if !o.Active {
			continue
		}
		if math.Abs(s.Lateral-e.laneX(o.Lane)) >= hb.Lateral || !swept(o.Z, travel, s.AvatarZ, hb.Longitudinal) {
			continue
		}
		if e.clears(o) {
			continue
		}

		if s.ShieldActive {
			s.ShieldActive = false
			s.ShieldRemaining = 0
			o.Active = false
			s.Dodged++
			e.emit(event{kind: eventShieldBreak})
			continue
		}

		s.HitSlot = i
		s.HitKind = o.Kind
		e.enterImpact()
		return true
	}
	return false
}

// pullCoins drags coins inside the magnet radius toward the avatar.
func (e *Engine) pullCoins(dt float64) {
	s := &e.state
	if !s.MagnetActive {
		return
	}
	p := e.cfg.Pickups
	for i := range e.pools.coins {
		c := &e.pools.coins[i]
		if !c.Active {
			continue
		}
		if math.Hypot(c.X-s.Lateral, c.Z-s.AvatarZ) >= p.MagnetRadius {
			continue
		}
		c.X = core.Approach(c.X, s.Lateral, p.MagnetPullRate, dt)
		c.Z = core.Approach(c.Z, s.AvatarZ, p.MagnetPullRate, dt)
	}
}

// collectCoins picks up every active coin that swept through contact. The
// combo grows before the coin's value is added.
func (e *Engine) collectCoins(travel float64) {
	s := &e.state
	p := e.cfg.Pickups
	for i := range e.pools.coins {
		c := &e.pools.coins[i]
		if !c.Active {
			continue
		}
		if math.Abs(c.X-s.Lateral) >= p.CoinContact || !swept(c.Z, travel, s.AvatarZ, p.CoinContact) {
			continue
		}
		c.Active = false
		s.Coins++
		s.Combo = math.Min(s.Combo+p.ComboStep, p.ComboMax)
		s.ComboRemaining = p.ComboWindow
		s.Bonus += int(math.Floor(p.CoinValue * s.Combo))
	}
}

// collectPowerUps activates every power-up that swept through contact.
func (e *Engine) collectPowerUps(travel float64) {
	s := &e.state
	p := e.cfg.Pickups
	for i := range e.pools.powerUps {
		pu := &e.pools.powerUps[i]
		if !pu.Active {
			continue
		}
		if math.Abs(e.laneX(pu.Lane)-s.Lateral) >= p.PowerUpContact || !swept(pu.Z, travel, s.AvatarZ, p.PowerUpContact) {
			continue
		}
		pu.Active = false
		switch pu.Kind {
		case PowerUpShield:
			s.ShieldActive = true
			s.ShieldRemaining = p.ShieldDuration
		case PowerUpMagnet:
			s.MagnetActive = true
			s.MagnetRemaining = p.MagnetDuration
		default:
			panic("engine: unknown power-up kind")
		}
		e.emit(event{kind: eventPowerUp, power: pu.Kind})
	}
}
