// Package config provides YAML-based configuration loading and difficulty
// presets for the runner engine and the session relay.
package config

import "time"

// RunnerConfig contains all configuration for the lanerunner binary.
type RunnerConfig struct {
	Engine EngineConfig `yaml:"engine"`
	Relay  RelayConfig  `yaml:"relay"`
}

// EngineConfig holds every tunable of the simulation engine.
type EngineConfig struct {
	Track   TrackConfig   `yaml:"track"`
	Speed   SpeedConfig   `yaml:"speed"`
	Motion  MotionConfig  `yaml:"motion"`
	Intro   IntroConfig   `yaml:"intro"`
	Crash   CrashConfig   `yaml:"crash"`
	Hitbox  HitboxConfig  `yaml:"hitbox"`
	Pickups PickupConfig  `yaml:"pickups"`
	Pools   PoolsConfig   `yaml:"pools"`
	Cadence CadenceConfig `yaml:"cadence"`
}

// TrackConfig defines lane geometry.
type TrackConfig struct {
	LaneWidth   float64 `yaml:"lane_width"`
	LateralRate float64 `yaml:"lateral_rate"` // Closing rate of the lateral filter, 1/s
}

// SpeedConfig defines forward speed and level progression.
type SpeedConfig struct {
	Initial       float64 `yaml:"initial"`
	Max           float64 `yaml:"max"`
	Step          float64 `yaml:"step"` // Added every Running tick
	LevelDistance float64 `yaml:"level_distance"`
	LevelBoost    float64 `yaml:"level_boost"`
}

// MotionConfig defines vertical motion.
type MotionConfig struct {
	Gravity       float64 `yaml:"gravity"`
	JumpForce     float64 `yaml:"jump_force"`
	SlideDuration float64 `yaml:"slide_duration"`
}

// IntroConfig defines the descent and landing phases.
type IntroConfig struct {
	Altitude        float64 `yaml:"altitude"`
	DescentRate     float64 `yaml:"descent_rate"`
	SwayAmplitude   float64 `yaml:"sway_amplitude"`
	SwayFrequency   float64 `yaml:"sway_frequency"` // rad/s
	LandingDuration float64 `yaml:"landing_duration"`
}

// CrashConfig defines the collision sequence sub-phases.
type CrashConfig struct {
	ImpactDuration  float64 `yaml:"impact_duration"`
	ImpactDrift     float64 `yaml:"impact_drift"` // Backward drift, units/s
	FallingDuration float64 `yaml:"falling_duration"`
	LyingHeight     float64 `yaml:"lying_height"`
	LyingDuration   float64 `yaml:"lying_duration"`
}

// HitboxConfig defines the obstacle contact policy.
type HitboxConfig struct {
	Lateral              float64 `yaml:"lateral"`
	Longitudinal         float64 `yaml:"longitudinal"`
	BarrierClearFactor   float64 `yaml:"barrier_clear_factor"`
	OverheadSlideCeiling float64 `yaml:"overhead_slide_ceiling"`
	BlockHalfHeight      float64 `yaml:"block_half_height"`
	BarrierHalfHeight    float64 `yaml:"barrier_half_height"`
	OverheadHalfHeight   float64 `yaml:"overhead_half_height"`
	SafeLaneWindow       float64 `yaml:"safe_lane_window"`
}

// PickupConfig defines coins, combo and power-up effects.
type PickupConfig struct {
	CoinContact    float64 `yaml:"coin_contact"`
	PowerUpContact float64 `yaml:"power_up_contact"`
	CoinValue      float64 `yaml:"coin_value"`
	ComboStep      float64 `yaml:"combo_step"`
	ComboMax       float64 `yaml:"combo_max"`
	ComboWindow    float64 `yaml:"combo_window"`
	ShieldDuration float64 `yaml:"shield_duration"`
	MagnetDuration float64 `yaml:"magnet_duration"`
	MagnetRadius   float64 `yaml:"magnet_radius"`
	MagnetPullRate float64 `yaml:"magnet_pull_rate"`
}

// PoolConfig sizes and spaces one fixed pool of world objects.
type PoolConfig struct {
	Count         int     `yaml:"count"`
	Spacing       float64 `yaml:"spacing"`        // Distance between initial placements
	First         float64 `yaml:"first"`          // Distance ahead of the first entry
	RecycleBehind float64 `yaml:"recycle_behind"` // Wrap once this far behind the avatar
	OffsetMin     float64 `yaml:"offset_min"`     // Wrap distance range
	OffsetMax     float64 `yaml:"offset_max"`
}

// PoolsConfig groups the three pools.
type PoolsConfig struct {
	Obstacles PoolConfig `yaml:"obstacles"`
	Coins     PoolConfig `yaml:"coins"`
	PowerUps  PoolConfig `yaml:"power_ups"`
}

// CadenceConfig defines driver limits and observer cadence.
type CadenceConfig struct {
	MaxDelta      float64 `yaml:"max_delta"`      // Per-tick dt clamp, seconds
	ScoreInterval float64 `yaml:"score_interval"` // Seconds between score snapshots
}

// RelayConfig holds settings for the session relay server.
type RelayConfig struct {
	Address        string        `yaml:"address"`
	PublicPort     int           `yaml:"public_port"` // Port reported to controllers
	DBPath         string        `yaml:"db_path"`
	OutboundBuffer int           `yaml:"outbound_buffer"`
	SessionTTL     time.Duration `yaml:"session_ttl"`
	CleanupPeriod  time.Duration `yaml:"cleanup_period"`
}
