package config

// DifficultyPreset represents a named difficulty level.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
	DifficultyFixed  DifficultyPreset = "fixed"
)

// ParsePreset converts a CLI flag value into a preset.
// Unknown or empty values return "" meaning "use the config as loaded".
func ParsePreset(s string) DifficultyPreset {
	switch DifficultyPreset(s) {
	case DifficultyEasy, DifficultyNormal, DifficultyHard, DifficultyFixed:
		return DifficultyPreset(s)
	default:
		return ""
	}
}

// ApplyPreset modifies the engine speed profile for a difficulty preset.
// Normal leaves the loaded values untouched; fixed disables all speed growth.
func ApplyPreset(cfg *EngineConfig, preset DifficultyPreset) {
	switch preset {
	case DifficultyEasy:
		cfg.Speed.Initial *= 0.8
		cfg.Speed.Max *= 0.8
		cfg.Speed.Step *= 0.5
		cfg.Pickups.ComboWindow *= 1.25
	case DifficultyHard:
		cfg.Speed.Initial *= 1.25
		cfg.Speed.Max *= 1.2
		cfg.Speed.Step *= 1.5
		cfg.Pickups.ShieldDuration *= 0.75
	case DifficultyFixed:
		cfg.Speed.Step = 0
		cfg.Speed.LevelBoost = 0
	}
}
