// lanerunner is an endless three-lane runner for the terminal.
//
// Usage:
//
//	lanerunner               - Start menu (difficulty, scores)
//	lanerunner play          - Start a run directly
//	lanerunner serve         - Start the session relay for remote controllers
//	lanerunner ssh           - Start the SSH server for remote play
//	lanerunner pad <session> - Act as a controller for a remote run
//	lanerunner scores        - Show the leaderboard
//
// Global flags:
//
//	--fps <rate>          - Set tick rate (default: 60)
//	--seed <value>        - Set RNG seed for reproducible runs
//	--db <path>           - Set database path (default: ~/.lanerunner/runs.db)
//	--config <path>       - Custom runner.yaml
//	--difficulty <preset> - easy, normal, hard, fixed
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/lanerunner/internal/config"
	"github.com/vovakirdan/lanerunner/internal/core"
	"github.com/vovakirdan/lanerunner/internal/platform/tui"
	"github.com/vovakirdan/lanerunner/internal/storage"
)

var (
	flagFPS        int
	flagSeed       int64
	flagDBPath     string
	flagConfig     string
	flagDifficulty string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "lanerunner",
	Short: "Lane Runner - an endless runner in your terminal",
	Long: `Lane Runner drops you onto a three-lane track. Dodge blocks, jump barriers,
slide under overheads, and collect coins and power-ups as the pace rises.

Available commands:
  play     - Start a run (optionally paired with a remote controller)
  serve    - Start the session relay for phone or terminal controllers
  ssh      - Start the SSH server for remote play
  pad      - Use this terminal as a controller
  scores   - View the leaderboard

Examples:
  lanerunner
  lanerunner play --difficulty hard
  lanerunner serve
  lanerunner play --remote http://localhost:5002
  lanerunner pad 1a2b3c4d --relay http://192.168.1.20:5002`,
	Run: runMenu,
}

func init() {
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 60, "Tick rate (frames per second)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.lanerunner/runs.db", "Path to runs database")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to custom runner config YAML")
	rootCmd.PersistentFlags().StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard, fixed")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(sshCmd)
	rootCmd.AddCommand(padCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(listCmd)
}

// loadConfig reads runner.yaml and applies --difficulty. Errors are fatal.
func loadConfig() config.RunnerConfig {
	rc, err := config.LoadRunner(flagConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if preset := config.ParsePreset(flagDifficulty); preset != "" {
		config.ApplyPreset(&rc.Engine, preset)
	} else if flagDifficulty != "" {
		fmt.Fprintf(os.Stderr, "Warning: unknown difficulty %q, using config values\n", flagDifficulty)
	}
	return rc
}

// runtimeConfig sizes the screen from the terminal.
func runtimeConfig() core.RuntimeConfig {
	width, height := 80, 24
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width = w
		height = h
	}
	return core.RuntimeConfig{
		ScreenW:  width,
		ScreenH:  height,
		TickRate: flagFPS,
		Seed:     flagSeed,
	}
}

// openStore opens the runs database. Play continues without it.
func openStore() *storage.Store {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open runs database: %v\n", err)
		return nil
	}
	return store
}

func runMenu(_ *cobra.Command, _ []string) {
	rc := loadConfig()
	store := openStore()

	runErr := tui.RunSession(store, rc.Engine, runtimeConfig())

	if store != nil {
		store.Close()
	}
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", runErr)
		os.Exit(1)
	}
}
