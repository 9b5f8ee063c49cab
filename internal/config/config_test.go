package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestEmbeddedDefaultsMatchHardcoded(t *testing.T) {
	cfg, err := parseRunner(GetDefaultYAML())
	if err != nil {
		t.Fatalf("embedded default YAML does not parse: %v", err)
	}
	if !reflect.DeepEqual(cfg, DefaultRunnerConfig()) {
		t.Errorf("embedded YAML and DefaultRunnerConfig diverge:\nyaml: %+v\ncode: %+v", cfg, DefaultRunnerConfig())
	}
}

func TestLoadRunnerCustomPathPartialOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runner.yaml")
	data := []byte("engine:\n  speed:\n    initial: 15\n    max: 40\nrelay:\n  session_ttl: 10m\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadRunner(path)
	if err != nil {
		t.Fatalf("LoadRunner() failed: %v", err)
	}
	if cfg.Engine.Speed.Initial != 15 || cfg.Engine.Speed.Max != 40 {
		t.Errorf("speed override not applied: %+v", cfg.Engine.Speed)
	}
	if cfg.Engine.Motion.Gravity != DefaultEngineConfig().Motion.Gravity {
		t.Errorf("keys absent from the file should keep defaults, gravity=%v", cfg.Engine.Motion.Gravity)
	}
	if cfg.Relay.SessionTTL != 10*time.Minute {
		t.Errorf("SessionTTL = %v, expected 10m", cfg.Relay.SessionTTL)
	}
}

func TestLoadRunnerCustomPathErrors(t *testing.T) {
	if _, err := LoadRunner(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing custom config")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("engine:\n  pools:\n    coins:\n      count: 0\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	_, err := LoadRunner(path)
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for empty coin pool, got %v", err)
	}
}

func TestLoadRunnerFallsBackToDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(wd) //nolint:errcheck

	cfg, err := LoadRunner("")
	if err != nil {
		t.Fatalf("LoadRunner(\"\") failed: %v", err)
	}
	if !reflect.DeepEqual(cfg, DefaultRunnerConfig()) {
		t.Error("expected embedded defaults when no file is present")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*EngineConfig)
		ok     bool
	}{
		{"defaults", func(*EngineConfig) {}, true},
		{"zero obstacles", func(c *EngineConfig) { c.Pools.Obstacles.Count = 0 }, false},
		{"inverted offsets", func(c *EngineConfig) { c.Pools.Coins.OffsetMax = 1 }, false},
		{"max below initial", func(c *EngineConfig) { c.Speed.Max = 5 }, false},
		{"zero max delta", func(c *EngineConfig) { c.Cadence.MaxDelta = 0 }, false},
		{"combo cap below one", func(c *EngineConfig) { c.Pickups.ComboMax = 0.5 }, false},
		{"frozen lane changes", func(c *EngineConfig) { c.Track.LateralRate = 0 }, false},
		{"zero lateral hitbox", func(c *EngineConfig) { c.Hitbox.Lateral = 0 }, false},
		{"negative longitudinal hitbox", func(c *EngineConfig) { c.Hitbox.Longitudinal = -0.8 }, false},
		{"zero safe lane window", func(c *EngineConfig) { c.Hitbox.SafeLaneWindow = 0 }, false},
		{"worthless coins", func(c *EngineConfig) { c.Pickups.CoinValue = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultEngineConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestApplyPreset(t *testing.T) {
	base := DefaultEngineConfig()

	easy := DefaultEngineConfig()
	ApplyPreset(&easy, DifficultyEasy)
	if easy.Speed.Initial >= base.Speed.Initial {
		t.Errorf("easy should start slower: %v", easy.Speed.Initial)
	}

	hard := DefaultEngineConfig()
	ApplyPreset(&hard, DifficultyHard)
	if math.Abs(hard.Speed.Initial-15) > 1e-9 {
		t.Errorf("hard initial speed = %v, expected 15", hard.Speed.Initial)
	}

	fixed := DefaultEngineConfig()
	ApplyPreset(&fixed, DifficultyFixed)
	if fixed.Speed.Step != 0 || fixed.Speed.LevelBoost != 0 {
		t.Errorf("fixed should disable speed growth: %+v", fixed.Speed)
	}

	normal := DefaultEngineConfig()
	ApplyPreset(&normal, DifficultyNormal)
	if !reflect.DeepEqual(normal, base) {
		t.Error("normal should leave the config untouched")
	}
}

func TestParsePreset(t *testing.T) {
	if ParsePreset("hard") != DifficultyHard {
		t.Error("ParsePreset(hard) failed")
	}
	if ParsePreset("insane") != "" {
		t.Error("unknown presets should parse to empty")
	}
}

func TestApplyEnv(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	content := "LANERUNNER_ADDR=:7000\nLANERUNNER_PUBLIC_PORT=6100\n"
	if err := os.WriteFile(envFile, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		os.Unsetenv(EnvAddress)
		os.Unsetenv(EnvPublicPort)
	})
	t.Setenv(EnvDBPath, "/tmp/runs.db")

	cfg := DefaultRelayConfig()
	if err := ApplyEnv(&cfg, envFile); err != nil {
		t.Fatalf("ApplyEnv() failed: %v", err)
	}
	if cfg.Address != ":7000" || cfg.PublicPort != 6100 || cfg.DBPath != "/tmp/runs.db" {
		t.Errorf("overrides not applied: %+v", cfg)
	}
}

func TestApplyEnvMissingFileIsIgnored(t *testing.T) {
	cfg := DefaultRelayConfig()
	if err := ApplyEnv(&cfg, filepath.Join(t.TempDir(), "nope.env")); err != nil {
		t.Errorf("missing env file should be ignored, got %v", err)
	}
}

func TestApplyEnvBadPort(t *testing.T) {
	t.Setenv(EnvPublicPort, "many")
	cfg := DefaultRelayConfig()
	if err := ApplyEnv(&cfg, ""); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}
