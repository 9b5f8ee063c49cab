package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/lanerunner/internal/platform/tui"
	"github.com/vovakirdan/lanerunner/internal/remote"
)

var (
	flagRelayURL   string
	flagPlayerName string
)

var padCmd = &cobra.Command{
	Use:   "pad <session>",
	Short: "Use this terminal as a controller",
	Long: `Join a relay session as a controller and steer the desktop's run.

Arrows or WASD send directions, Enter starts the run, R restarts it.

Examples:
  lanerunner pad 1a2b3c4d
  lanerunner pad 1a2b3c4d --relay http://192.168.1.20:5002 --name Ana`,
	Args: cobra.ExactArgs(1),
	Run:  runPad,
}

func init() {
	padCmd.Flags().StringVar(&flagRelayURL, "relay", "http://localhost:5002", "Relay base URL")
	padCmd.Flags().StringVar(&flagPlayerName, "name", "", "Player name shown to the desktop")
}

func runPad(_ *cobra.Command, args []string) {
	sessionID := args[0]
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	conn, err := remote.Dial(ctx, flagRelayURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctrl := remote.NewController(conn, sessionID)
	go ctrl.Run(ctx) //nolint:errcheck // The pad shows the disconnect

	if err := ctrl.Join(flagPlayerName); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := tui.RunPad(ctrl, ctrl.Events(), sessionID); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
