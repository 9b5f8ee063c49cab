package tui

import (
	"io"
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
)

// fakeSession answers the few calls the server makes on a connection.
type fakeSession struct {
	ssh.Session
	user          string
	width, height int
}

func (f fakeSession) User() string { return f.user }

func (f fakeSession) RemoteAddr() net.Addr {
	return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 50022}
}

func (f fakeSession) Pty() (ssh.Pty, <-chan ssh.Window, bool) {
	if f.width == 0 {
		return ssh.Pty{}, nil, false
	}
	return ssh.Pty{Term: "xterm-256color", Window: ssh.Window{Width: f.width, Height: f.height}}, nil, true
}

func newTestSSHServer(t *testing.T) (*SSHServer, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := DefaultSSHServerConfig()
	cfg.Address = "127.0.0.1:0"
	cfg.HostKeyPath = filepath.Join(dir, "keys", "host_key")
	cfg.DBPath = filepath.Join(dir, "runs.db")
	cfg.TickRate = 30

	srv, err := NewSSHServer(cfg, log.New(io.Discard))
	if err != nil {
		t.Fatalf("NewSSHServer: %v", err)
	}
	t.Cleanup(func() { srv.Shutdown() })
	return srv, dir
}

func TestSSHServerPreparesHostKeyDir(t *testing.T) {
	_, dir := newTestSSHServer(t)
	info, err := os.Stat(filepath.Join(dir, "keys"))
	if err != nil || !info.IsDir() {
		t.Fatalf("host key directory missing: %v", err)
	}
}

func TestSSHServerSizesSessionToTerminal(t *testing.T) {
	srv, _ := newTestSSHServer(t)

	model, opts := srv.teaHandler(fakeSession{user: "ana", width: 100, height: 30})
	sm, ok := model.(SessionModel)
	if !ok {
		t.Fatalf("model = %T, expected SessionModel", model)
	}
	if sm.Username() != "ana" || sm.config.ScreenW != 100 || sm.config.ScreenH != 30 || sm.config.TickRate != 30 {
		t.Errorf("session runtime = %+v for %q", sm.config, sm.Username())
	}
	if len(opts) != 1 {
		t.Errorf("program options = %d, expected alt screen only", len(opts))
	}

	if model, _ := srv.teaHandler(fakeSession{user: "bob"}); model != nil {
		t.Error("session without a terminal should be refused")
	}
}

func TestSSHServerCountsPlayers(t *testing.T) {
	srv, _ := newTestSSHServer(t)

	var during int
	handler := srv.trackSessions(func(ssh.Session) { during = srv.Online() })
	handler(fakeSession{user: "ana"})

	if during != 1 {
		t.Errorf("online during session = %d, expected 1", during)
	}
	if srv.Online() != 0 {
		t.Errorf("online after session = %d, expected 0", srv.Online())
	}
}
