package config

import (
	_ "embed"
	"time"
)

//go:embed defaults/runner.yaml
var defaultRunnerYAML []byte

// DefaultEngineConfig returns the default engine tunables.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Track: TrackConfig{
			LaneWidth:   2.5,
			LateralRate: 14,
		},
		Speed: SpeedConfig{
			Initial:       12,
			Max:           30,
			Step:          0.002,
			LevelDistance: 500,
			LevelBoost:    1.5,
		},
		Motion: MotionConfig{
			Gravity:       30,
			JumpForce:     12,
			SlideDuration: 0.8,
		},
		Intro: IntroConfig{
			Altitude:        24,
			DescentRate:     12,
			SwayAmplitude:   1.2,
			SwayFrequency:   3,
			LandingDuration: 0.8,
		},
		Crash: CrashConfig{
			ImpactDuration:  0.3,
			ImpactDrift:     2.5,
			FallingDuration: 0.5,
			LyingHeight:     -0.3,
			LyingDuration:   2.0,
		},
		Hitbox: HitboxConfig{
			Lateral:              0.9,
			Longitudinal:         0.8,
			BarrierClearFactor:   0.7,
			OverheadSlideCeiling: 1.5,
			BlockHalfHeight:      1.2,
			BarrierHalfHeight:    1.0,
			OverheadHalfHeight:   1.5,
			SafeLaneWindow:       5,
		},
		Pickups: PickupConfig{
			CoinContact:    1.0,
			PowerUpContact: 1.2,
			CoinValue:      15,
			ComboStep:      0.5,
			ComboMax:       5,
			ComboWindow:    2,
			ShieldDuration: 8,
			MagnetDuration: 6,
			MagnetRadius:   6,
			MagnetPullRate: 10,
		},
		Pools: PoolsConfig{
			Obstacles: PoolConfig{Count: 12, Spacing: 16, First: 40, RecycleBehind: 8, OffsetMin: 180, OffsetMax: 220},
			Coins:     PoolConfig{Count: 20, Spacing: 7, First: 20, RecycleBehind: 5, OffsetMin: 130, OffsetMax: 160},
			PowerUps:  PoolConfig{Count: 2, Spacing: 110, First: 90, RecycleBehind: 5, OffsetMin: 200, OffsetMax: 280},
		},
		Cadence: CadenceConfig{
			MaxDelta:      0.1,
			ScoreInterval: 0.5,
		},
	}
}

// DefaultRelayConfig returns the default relay server settings.
func DefaultRelayConfig() RelayConfig {
	return RelayConfig{
		Address:        ":5002",
		PublicPort:     5173,
		DBPath:         "~/.lanerunner/runs.db",
		OutboundBuffer: 64,
		SessionTTL:     2 * time.Hour,
		CleanupPeriod:  time.Minute,
	}
}

// DefaultRunnerConfig returns the complete default configuration.
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		Engine: DefaultEngineConfig(),
		Relay:  DefaultRelayConfig(),
	}
}

// GetDefaultYAML returns the embedded default YAML.
func GetDefaultYAML() []byte {
	return defaultRunnerYAML
}
