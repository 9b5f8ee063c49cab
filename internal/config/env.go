package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variables recognised by ApplyEnv.
const (
	EnvAddress    = "LANERUNNER_ADDR"
	EnvPublicPort = "LANERUNNER_PUBLIC_PORT"
	EnvDBPath     = "LANERUNNER_DB"
)

// ApplyEnv loads envFile (if it exists) into the process environment and applies
// LANERUNNER_* overrides to the relay settings. A missing file is not an error.
func ApplyEnv(cfg *RelayConfig, envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	}

	if v := os.Getenv(EnvAddress); v != "" {
		cfg.Address = v
	}
	if v := os.Getenv(EnvPublicPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not a port", ErrInvalidConfig, EnvPublicPort, v)
		}
		cfg.PublicPort = port
	}
	if v := os.Getenv(EnvDBPath); v != "" {
		cfg.DBPath = v
	}
	return nil
}
