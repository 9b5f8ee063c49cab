package tui

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"

	"github.com/vovakirdan/lanerunner/internal/config"
	"github.com/vovakirdan/lanerunner/internal/core"
	"github.com/vovakirdan/lanerunner/internal/storage"
)

// SSHServerConfig configures the hosted runner.
type SSHServerConfig struct {
	Address string // host:port, e.g. ":23234"

	// HostKeyPath defaults to ~/.lanerunner/host_key, created on first start.
	HostKeyPath string

	// DBPath is the shared run ledger. Every player lands on one leaderboard.
	DBPath string

	IdleTimeout time.Duration
	TickRate    int

	// Engine is the base tuning; the menu preset is applied per run.
	Engine config.EngineConfig
}

// DefaultSSHServerConfig listens on :23234 with a 60 Hz clock.
func DefaultSSHServerConfig() SSHServerConfig {
	return SSHServerConfig{
		Address:     ":23234",
		DBPath:      "~/.lanerunner/runs.db",
		IdleTimeout: 30 * time.Minute,
		TickRate:    60,
		Engine:      config.DefaultEngineConfig(),
	}
}

// SSHServer hands every PTY connection its own menu, run and scoreboard.
type SSHServer struct {
	config SSHServerConfig
	server *ssh.Server
	store  *storage.Store
	logger *log.Logger
	active atomic.Int64
}

// NewSSHServer prepares the Wish server. A nil logger writes to stderr. The
// server still starts when the ledger cannot be opened; runs just go unsaved.
func NewSSHServer(cfg SSHServerConfig, logger *log.Logger) (*SSHServer, error) {
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Prefix:          "lanerunner-ssh",
		})
	}

	keyPath, err := hostKeyFile(cfg.HostKeyPath)
	if err != nil {
		return nil, err
	}

	s := &SSHServer{config: cfg, logger: logger}
	if s.store, err = storage.Open(cfg.DBPath); err != nil {
		logger.Warn("runs will not be saved", "db", cfg.DBPath, "error", err)
		s.store = nil
	}

	s.server, err = wish.NewServer(
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(keyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			bubbletea.Middleware(s.teaHandler),
			s.trackSessions,
		),
	)
	if err != nil {
		s.closeStore()
		return nil, fmt.Errorf("ssh: %w", err)
	}
	return s, nil
}

// hostKeyFile resolves the key location and makes sure its directory exists.
// Wish generates the key itself when the file is missing.
func hostKeyFile(path string) (string, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("ssh: no home directory for the host key: %w", err)
		}
		path = filepath.Join(home, ".lanerunner", "host_key")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return "", fmt.Errorf("ssh: host key directory: %w", err)
	}
	return path, nil
}

// teaHandler sizes the runtime to the client's terminal. Connections without
// a PTY (ssh host command) have nothing to draw on and are refused.
func (s *SSHServer) teaHandler(sess ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, ok := sess.Pty()
	if !ok {
		s.logger.Warn("refusing session without a terminal", "user", sess.User())
		return nil, nil
	}

	rt := core.RuntimeConfig{
		ScreenW:  pty.Window.Width,
		ScreenH:  pty.Window.Height,
		TickRate: s.config.TickRate,
		Seed:     time.Now().UnixNano(),
	}
	return NewSessionModel(s.store, storage.SourceSSH, s.config.Engine, rt, sess.User()),
		[]tea.ProgramOption{tea.WithAltScreen()}
}

// trackSessions logs each connection with the number of players online.
func (s *SSHServer) trackSessions(next ssh.Handler) ssh.Handler {
	return func(sess ssh.Session) {
		start := time.Now()
		online := s.active.Add(1)
		s.logger.Info("player joined", "user", sess.User(), "remote", sess.RemoteAddr().String(), "online", online)
		defer func() {
			online := s.active.Add(-1)
			s.logger.Info("player left", "user", sess.User(), "played", time.Since(start).Round(time.Second), "online", online)
		}()
		next(sess)
	}
}

// Online returns the number of connected players.
func (s *SSHServer) Online() int {
	return int(s.active.Load())
}

// ListenAndServe accepts players until ctx is done or the process receives
// SIGINT/SIGTERM, then drains the server and closes the ledger.
func (s *SSHServer) ListenAndServe(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		s.closeStore()
		return err
	}
	s.logger.Info("starting SSH server", "address", ln.Addr().String(), "tick_rate", s.config.TickRate)

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		s.closeStore()
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down...", "online", s.Online())
	return s.Shutdown()
}

// Shutdown stops accepting players, waits up to ten seconds for open sessions
// and closes the ledger.
func (s *SSHServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := s.server.Shutdown(ctx)
	s.closeStore()
	return err
}

func (s *SSHServer) closeStore() {
	if s.store != nil {
		s.store.Close()
		s.store = nil
	}
}

// Addr returns the configured listen address.
func (s *SSHServer) Addr() string {
	return s.config.Address
}
