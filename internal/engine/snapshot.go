package engine

// Snapshot is a point-in-time copy of a run for renderers and tests.
// Slices are owned by the caller.
type Snapshot struct {
	RunState
	Started   bool
	Obstacles []Obstacle
	CoinSlots []Coin
	PowerUps  []PowerUp
}

// Snapshot copies the run state and all pool slots.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	snap := Snapshot{
		RunState: e.state,
		Started:  e.started,
	}
	if e.pools != nil {
		snap.Obstacles = append([]Obstacle(nil), e.pools.obstacles...)
		snap.CoinSlots = append([]Coin(nil), e.pools.coins...)
		snap.PowerUps = append([]PowerUp(nil), e.pools.powerUps...)
	}
	return snap
}

// State returns a copy of the run state without the pools.
func (e *Engine) State() RunState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}
