package engine

import (
	"fmt"
	"math"

	"github.com/vovakirdan/lanerunner/internal/config"
)

// ObstacleKind selects the pass rule of an obstacle.
type ObstacleKind int

const (
	ObstacleBlock    ObstacleKind = iota // Full-height, only a shield survives contact
	ObstacleBarrier                      // Low, cleared by jumping
	ObstacleOverhead                     // High, cleared by sliding
)

var obstacleKinds = [...]ObstacleKind{ObstacleBlock, ObstacleBarrier, ObstacleOverhead}

func (k ObstacleKind) String() string {
	switch k {
	case ObstacleBlock:
		return "block"
	case ObstacleBarrier:
		return "barrier"
	case ObstacleOverhead:
		return "overhead"
	default:
		return fmt.Sprintf("ObstacleKind(%d)", int(k))
	}
}

// PowerUpKind selects the effect granted by a power-up.
type PowerUpKind int

const (
	PowerUpShield PowerUpKind = iota
	PowerUpMagnet
)

func (k PowerUpKind) String() string {
	switch k {
	case PowerUpShield:
		return "shield"
	case PowerUpMagnet:
		return "magnet"
	default:
		return fmt.Sprintf("PowerUpKind(%d)", int(k))
	}
}

// Lanes are -1, 0 and 1.
const (
	MinLane = -1
	MaxLane = 1
)

// Obstacle is one fixed slot of the obstacle pool.
// Z is the longitudinal position relative to the avatar; ahead is negative.
type Obstacle struct {
	Kind       ObstacleKind
	Lane       int
	Z          float64
	Active     bool
	HalfHeight float64
}

// Coin is one fixed slot of the coin pool. X is continuous so the magnet can
// pull a coin off its lane.
type Coin struct {
	Lane   int
	X      float64
	Z      float64
	Active bool
}

// PowerUp is one fixed slot of the power-up pool.
type PowerUp struct {
	Kind   PowerUpKind
	Lane   int
	Z      float64
	Active bool
}

// pools holds the three arenas. Slices are sized once and never resized;
// recycling only rewrites slot fields.
type pools struct {
	obstacles []Obstacle
	coins     []Coin
	powerUps  []PowerUp
}

func newPools(cfg config.PoolsConfig) *pools {
	return &pools{
		obstacles: make([]Obstacle, cfg.Obstacles.Count),
		coins:     make([]Coin, cfg.Coins.Count),
		powerUps:  make([]PowerUp, cfg.PowerUps.Count),
	}
}

// fits reports whether the arenas match the configured capacities.
func (p *pools) fits(cfg config.PoolsConfig) bool {
	return len(p.obstacles) == cfg.Obstacles.Count &&
		len(p.coins) == cfg.Coins.Count &&
		len(p.powerUps) == cfg.PowerUps.Count
}

// layoutPools places every slot for a fresh run.
func (e *Engine) layoutPools() {
	pc := e.cfg.Pools

	for i := range e.pools.obstacles {
		e.pools.obstacles[i].Active = false
	}
	jitter := pc.Obstacles.Spacing * 0.4
	for i := range e.pools.obstacles {
		z := -(pc.Obstacles.First + float64(i)*pc.Obstacles.Spacing) + e.randRange(-jitter, jitter)
		e.placeObstacle(i, z)
	}

	for i := range e.pools.coins {
		e.placeCoin(i, -(pc.Coins.First + float64(i)*pc.Coins.Spacing))
	}

	for i := range e.pools.powerUps {
		e.placePowerUp(i, -(pc.PowerUps.First + float64(i)*pc.PowerUps.Spacing))
	}
}

// placeObstacle puts slot i at z with a fresh kind and a safe lane. If every
// lane would close the track the slot stays inactive until it recycles.
func (e *Engine) placeObstacle(i int, z float64) {
	o := &e.pools.obstacles[i]
	o.Active = false // exclude the slot itself from the lane scan
	o.Kind = obstacleKinds[e.rng.Intn(len(obstacleKinds))]
	o.HalfHeight = e.halfHeight(o.Kind)
	o.Z = z
	lane, ok := e.safeLane(i, z)
	o.Lane = lane
	o.Active = ok
}

// safeLane chooses a lane for an obstacle at z. If two distinct lanes are
// already blocked by other active obstacles within the window, one of those
// two is reused so the third stays open; otherwise any lane may be chosen.
// When all three lanes appear in the window, a lane is only allowed if it
// does not complete a triple of mutually close obstacles.
func (e *Engine) safeLane(slot int, z float64) (int, bool) {
	window := e.cfg.Hitbox.SafeLaneWindow
	near := e.nearby[:0]
	var occupied [3]bool
	count := 0
	for j := range e.pools.obstacles {
		o := &e.pools.obstacles[j]
		if j == slot || !o.Active || math.Abs(o.Z-z) >= window {
			continue
		}
		near = append(near, j)
		idx := o.Lane - MinLane
		if !occupied[idx] {
			occupied[idx] = true
			count++
		}
	}
	e.nearby = near

	if count < 2 {
		return MinLane + e.rng.Intn(3), true
	}

	var candidates [3]int
	n := 0
	for idx, used := range occupied {
		lane := MinLane + idx
		if count == 2 && !used {
			continue
		}
		if count == 3 && e.closesTrack(near, lane, window) {
			continue
		}
		candidates[n] = lane
		n++
	}
	if n == 0 {
		return 0, false
	}
	return candidates[e.rng.Intn(n)], true
}

// closesTrack reports whether two nearby obstacles in the two lanes other
// than lane are within window of each other.
func (e *Engine) closesTrack(near []int, lane int, window float64) bool {
	for a := 0; a < len(near); a++ {
		p := &e.pools.obstacles[near[a]]
		if p.Lane == lane {
			continue
		}
		for b := a + 1; b < len(near); b++ {
			q := &e.pools.obstacles[near[b]]
			if q.Lane == lane || q.Lane == p.Lane {
				continue
			}
			if math.Abs(p.Z-q.Z) < window {
				return true
			}
		}
	}
	return false
}

func (e *Engine) halfHeight(kind ObstacleKind) float64 {
	switch kind {
	case ObstacleBlock:
		return e.cfg.Hitbox.BlockHalfHeight
	case ObstacleBarrier:
		return e.cfg.Hitbox.BarrierHalfHeight
	case ObstacleOverhead:
		return e.cfg.Hitbox.OverheadHalfHeight
	default:
		panic(fmt.Sprintf("engine: unknown obstacle kind %d", int(kind)))
	}
}

func (e *Engine) placeCoin(i int, z float64) {
	c := &e.pools.coins[i]
	c.Lane = MinLane + e.rng.Intn(3)
	c.X = float64(c.Lane) * e.cfg.Track.LaneWidth
	c.Z = z
	c.Active = true
}

func (e *Engine) placePowerUp(i int, z float64) {
	p := &e.pools.powerUps[i]
	p.Kind = PowerUpKind(e.rng.Intn(2))
	p.Lane = MinLane + e.rng.Intn(3)
	p.Z = z
	p.Active = true
}

// advancePools moves every slot by the frame's travel distance.
func (e *Engine) advancePools(travel float64) {
	for i := range e.pools.obstacles {
		e.pools.obstacles[i].Z += travel
	}
	for i := range e.pools.coins {
		e.pools.coins[i].Z += travel
	}
	for i := range e.pools.powerUps {
		e.pools.powerUps[i].Z += travel
	}
}

// recyclePools wraps the slots that fell behind the avatar. It runs after
// every slot has moved so safeLane measures gaps against current positions.
// Obstacles that slip past the contact window untouched are retired as
// dodged.
func (e *Engine) recyclePools() {
	pc := e.cfg.Pools
	passed := e.cfg.Hitbox.Longitudinal

	for i := range e.pools.obstacles {
		o := &e.pools.obstacles[i]
		if o.Active && o.Z-e.state.AvatarZ > passed {
			o.Active = false
			e.state.Dodged++
		}
		if o.Z > pc.Obstacles.RecycleBehind {
			e.placeObstacle(i, o.Z-e.randRange(pc.Obstacles.OffsetMin, pc.Obstacles.OffsetMax))
		}
	}

	for i := range e.pools.coins {
		c := &e.pools.coins[i]
		if c.Z > pc.Coins.RecycleBehind {
			e.placeCoin(i, c.Z-e.randRange(pc.Coins.OffsetMin, pc.Coins.OffsetMax))
		}
	}

	for i := range e.pools.powerUps {
		p := &e.pools.powerUps[i]
		if p.Z > pc.PowerUps.RecycleBehind {
			e.placePowerUp(i, p.Z-e.randRange(pc.PowerUps.OffsetMin, pc.PowerUps.OffsetMax))
		}
	}
}

// randRange returns a uniform value in [lo, hi).
func (e *Engine) randRange(lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + e.rng.Float64()*(hi-lo)
}
