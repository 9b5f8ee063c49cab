package core

// RuntimeConfig contains configuration passed to games at initialization.
type RuntimeConfig struct {
	ScreenW  int   // Screen width in characters
	ScreenH  int   // Screen height in characters
	TickRate int   // Host ticks per second (default 60)
	Seed     int64 // RNG seed for deterministic gameplay
}

// DefaultConfig returns a RuntimeConfig with sensible defaults.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		ScreenW:  80,
		ScreenH:  24,
		TickRate: 60,
		Seed:     0, // 0 means use current time in platform layer
	}
}

// TickSeconds returns the simulated duration of one host tick.
func (c RuntimeConfig) TickSeconds() float64 {
	if c.TickRate <= 0 {
		return 1.0 / 60
	}
	return 1.0 / float64(c.TickRate)
}

// GameState is the coarse status a game reports to its host.
type GameState struct {
	Score    int
	Coins    int
	GameOver bool
	Paused   bool
}

// RunResult summarizes a finished run for the ledger.
type RunResult struct {
	Score    int
	Coins    int
	Level    int
	Distance float64
}

// StepResult is returned by Game.Step after each host tick.
type StepResult struct {
	State GameState
}
