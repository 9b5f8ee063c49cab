package engine

import "math"

// RunState is the single mutable aggregate of one run.
// It is owned by exactly one Engine; hosts only ever see copies.
type RunState struct {
	Phase Phase

	Distance    float64
	Bonus       int // Coin score on top of the distance score
	Coins       int
	Speed       float64
	Level       int
	NextLevelAt float64
	Dodged      int
	RunTime     float64 // Seconds spent in PhaseRunning

	CurrentLane int // Lane nearest to Lateral
	TargetLane  int
	Lateral     float64

	Vertical         float64
	VerticalVelocity float64
	Jumping          bool

	Sliding        bool
	SlideRemaining float64

	Combo          float64
	ComboRemaining float64

	ShieldActive    bool
	ShieldRemaining float64
	MagnetActive    bool
	MagnetRemaining float64

	IntroElapsed   float64
	LandingTimer   float64
	CollisionTimer float64
	ScoreClock     float64

	// Presentation state for hosts.
	AvatarZ  float64 // Backward drift while colliding
	Pitch    float64 // 0 upright, pi/2 prone
	Crouch   float64 // 0..1 during landing
	Shake    bool
	FallFrom float64
	HitSlot  int // Obstacle slot that ended the run, -1 if none
	HitKind  ObstacleKind
}

// Score returns the derived score: whole distance units plus coin bonus.
func (s RunState) Score() int {
	return int(math.Floor(s.Distance)) + s.Bonus
}
