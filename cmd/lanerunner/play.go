package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/lanerunner/internal/core"
	"github.com/vovakirdan/lanerunner/internal/games/runner"
	"github.com/vovakirdan/lanerunner/internal/platform/tui"
	"github.com/vovakirdan/lanerunner/internal/remote"
)

var (
	flagRemote  string
	flagLogFile string
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Start a run",
	Long: `Start a run directly, skipping the menu.

Controls:
  Left/A, Right/D   - Change lane
  Up/W/Space        - Jump
  Down/S            - Slide
  E                 - End the run
  P/Esc             - Pause
  R                 - Restart (after game over)
  Q/Ctrl+C          - Quit

With --remote the run also joins a new session on a relay, so phones or
'lanerunner pad' can steer it. The session code is shown at the bottom.

Examples:
  lanerunner play
  lanerunner play --difficulty easy --seed 42
  lanerunner play --remote http://localhost:5002`,
	Run: runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagRemote, "remote", "", "Relay base URL to pair with remote controllers")
	playCmd.Flags().StringVar(&flagLogFile, "log", "", "Write remote bridge logs to this file")
}

func runPlay(_ *cobra.Command, _ []string) {
	rc := loadConfig()
	cfg := runtimeConfig()
	game := runner.NewWithConfig(rc.Engine)

	store := openStore()
	defer func() {
		if store != nil {
			store.Close()
		}
	}()

	opts := tui.Options{Store: store}

	if flagRemote != "" {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		bridge, err := startBridge(ctx, game, cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		opts.Status = fmt.Sprintf("session %s  |  lanerunner pad %s --relay %s",
			bridge.SessionID(), bridge.SessionID(), flagRemote)
	}

	if err := tui.Run(game, opts, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error running game: %v\n", err)
		os.Exit(1)
	}
}

// startBridge creates a relay session and forwards its controllers to game.
func startBridge(ctx context.Context, game *runner.Game, cfg core.RuntimeConfig) (*remote.Bridge, error) {
	logger := log.New(io.Discard)
	if flagLogFile != "" {
		f, err := os.OpenFile(flagLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, fmt.Errorf("cannot open log file: %w", err)
		}
		logger = log.NewWithOptions(f, log.Options{ReportTimestamp: true, Prefix: "lanerunner-bridge"})
	}

	info, err := remote.CreateSession(ctx, flagRemote)
	if err != nil {
		return nil, err
	}
	conn, err := remote.Dial(ctx, flagRemote)
	if err != nil {
		return nil, err
	}

	// The engine must exist before the bridge can target it. The host's own
	// Reset reuses it because the tunables are fixed.
	game.Reset(cfg)
	bridge := remote.NewBridge(conn, info.SessionID, game.Engine(), logger)
	game.SetListener(bridge)

	if err := bridge.Join(); err != nil {
		conn.Close()
		return nil, err
	}
	go func() {
		if err := bridge.Run(ctx); err != nil {
			logger.Warn("relay connection lost", "error", err)
		}
	}()

	logger.Info("joined session", "session", info.SessionID, "ip", info.IP, "port", info.Port)
	return bridge, nil
}
