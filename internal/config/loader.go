package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ConfigFileName is the file looked up in the user and local config directories.
const ConfigFileName = "runner.yaml"

// LoadRunner loads the lanerunner configuration.
// Search order: customPath -> ~/.lanerunner/configs/runner.yaml -> ./configs/runner.yaml -> embedded default.
// Files are decoded over the defaults, so a partial file only overrides the keys it names.
func LoadRunner(customPath string) (RunnerConfig, error) {
	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return RunnerConfig{}, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		cfg, err := parseRunner(data)
		if err != nil {
			return RunnerConfig{}, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return cfg, nil
	}

	// Try user config directory
	if userCfgPath := userConfigPath(ConfigFileName); userCfgPath != "" {
		if data, err := os.ReadFile(userCfgPath); err == nil {
			if cfg, err := parseRunner(data); err == nil {
				return cfg, nil
			}
		}
	}

	// Try local configs directory
	if data, err := os.ReadFile(filepath.Join("configs", ConfigFileName)); err == nil {
		if cfg, err := parseRunner(data); err == nil {
			return cfg, nil
		}
	}

	// Use embedded default YAML
	cfg, err := parseRunner(defaultRunnerYAML)
	if err != nil {
		return DefaultRunnerConfig(), nil // Fallback to hardcoded if embed fails
	}
	return cfg, nil
}

func parseRunner(data []byte) (RunnerConfig, error) {
	cfg := DefaultRunnerConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return RunnerConfig{}, err
	}
	if err := cfg.Engine.Validate(); err != nil {
		return RunnerConfig{}, err
	}
	return cfg, nil
}

// userConfigPath returns the path to a user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".lanerunner", "configs", filename)
}

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Validate rejects configurations the engine cannot run with.
func (c EngineConfig) Validate() error {
	pools := map[string]PoolConfig{
		"obstacles": c.Pools.Obstacles,
		"coins":     c.Pools.Coins,
		"power_ups": c.Pools.PowerUps,
	}
	for name, p := range pools {
		if p.Count <= 0 {
			return fmt.Errorf("%w: pools.%s.count must be positive", ErrInvalidConfig, name)
		}
		if p.OffsetMax < p.OffsetMin || p.OffsetMin <= 0 {
			return fmt.Errorf("%w: pools.%s offsets must satisfy 0 < offset_min <= offset_max", ErrInvalidConfig, name)
		}
	}

	positive := map[string]float64{
		"track.lane_width":        c.Track.LaneWidth,
		"track.lateral_rate":      c.Track.LateralRate,
		"speed.initial":           c.Speed.Initial,
		"speed.level_distance":    c.Speed.LevelDistance,
		"motion.gravity":          c.Motion.Gravity,
		"motion.jump_force":       c.Motion.JumpForce,
		"motion.slide_duration":   c.Motion.SlideDuration,
		"intro.descent_rate":      c.Intro.DescentRate,
		"intro.landing_duration":  c.Intro.LandingDuration,
		"crash.impact_duration":   c.Crash.ImpactDuration,
		"crash.falling_duration":  c.Crash.FallingDuration,
		"crash.lying_duration":    c.Crash.LyingDuration,
		"hitbox.lateral":          c.Hitbox.Lateral,
		"hitbox.longitudinal":     c.Hitbox.Longitudinal,
		"hitbox.safe_lane_window": c.Hitbox.SafeLaneWindow,
		"pickups.coin_value":      c.Pickups.CoinValue,
		"pickups.combo_window":    c.Pickups.ComboWindow,
		"cadence.max_delta":       c.Cadence.MaxDelta,
		"cadence.score_interval":  c.Cadence.ScoreInterval,
	}
	for name, v := range positive {
		if v <= 0 {
			return fmt.Errorf("%w: %s must be positive", ErrInvalidConfig, name)
		}
	}

	if c.Speed.Max < c.Speed.Initial {
		return fmt.Errorf("%w: speed.max must not be below speed.initial", ErrInvalidConfig)
	}
	if c.Pickups.ComboMax < 1 {
		return fmt.Errorf("%w: pickups.combo_max must be at least 1", ErrInvalidConfig)
	}
	return nil
}
