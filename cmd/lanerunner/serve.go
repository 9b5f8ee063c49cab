package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/lanerunner/internal/config"
	"github.com/vovakirdan/lanerunner/internal/relay"
	"github.com/vovakirdan/lanerunner/internal/session"
	"github.com/vovakirdan/lanerunner/internal/storage"
)

var (
	flagRelayAddr  string
	flagPublicPort int
	flagEnvFile    string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the session relay",
	Long: `Start the HTTP and websocket relay that pairs a desktop run with
remote controllers.

  POST /api/session       - create a session, returns its code and LAN address
  GET  /api/session/{id}  - session status
  /ws                     - websocket for desktops and controllers

Settings come from runner.yaml (relay section), then the .env file
(LANERUNNER_ADDR, LANERUNNER_PUBLIC_PORT, LANERUNNER_DB), then flags.
Finished remote runs are recorded in the runs database.

Examples:
  lanerunner serve
  lanerunner serve --addr :8080 --public-port 5173
  lanerunner serve --env ./relay.env`,
	Run: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagRelayAddr, "addr", "", "Listen address (host:port)")
	serveCmd.Flags().IntVar(&flagPublicPort, "public-port", 0, "Port reported to controllers")
	serveCmd.Flags().StringVar(&flagEnvFile, "env", ".env", "Path to .env overrides")
}

func runServe(cmd *cobra.Command, _ []string) {
	rc := loadConfig()
	cfg := rc.Relay

	if err := config.ApplyEnv(&cfg, flagEnvFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if flagRelayAddr != "" {
		cfg.Address = flagRelayAddr
	}
	if flagPublicPort > 0 {
		cfg.PublicPort = flagPublicPort
	}
	if cmd.Flags().Changed("db") {
		cfg.DBPath = flagDBPath
	}

	hub := session.NewHub()
	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open runs database: %v\n", err)
	} else {
		hub.SetResultSaver(store)
		defer store.Close()
	}

	server := relay.NewServer(cfg, hub, nil)
	fmt.Printf("Relay listening on %s (controllers use %s:%d)\n", cfg.Address, relay.LocalIP(), cfg.PublicPort)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.ListenAndServe(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}
