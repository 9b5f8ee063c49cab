// Package relay serves the session hub over HTTP and websockets.
// Desktops create a session with POST /api/session, then both the desktop and
// its controllers connect to /ws and exchange event envelopes.
package relay

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/vovakirdan/lanerunner/internal/config"
	"github.com/vovakirdan/lanerunner/internal/session"
)

// SessionResponse is the body of POST /api/session.
type SessionResponse struct {
	SessionID string `json:"sessionId"`
	IP        string `json:"ip"`
	Port      int    `json:"port"`
}

// SessionStatus is the body of GET /api/session/{id}.
type SessionStatus struct {
	SessionID string   `json:"sessionId"`
	Status    string   `json:"status"`
	Players   []string `json:"players"`
	Desktop   bool     `json:"desktop"`
}

// Server exposes a hub over HTTP.
type Server struct {
	config   config.RelayConfig
	hub      *session.Hub
	logger   *log.Logger
	upgrader websocket.Upgrader
	localIP  func() string
	http     *http.Server
}

// NewServer creates a relay for hub. A nil logger gets the default prefix.
func NewServer(cfg config.RelayConfig, hub *session.Hub, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Prefix:          "lanerunner-relay",
		})
	}
	s := &Server{
		config: cfg,
		hub:    hub,
		logger: logger,
		upgrader: websocket.Upgrader{
			// Controllers are served from another origin on the LAN.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		localIP: LocalIP,
	}
	s.http = &http.Server{
		Addr:              cfg.Address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the relay's routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/session", s.withCORS(s.handleCreateSession))
	mux.HandleFunc("/api/session/{id}", s.withCORS(s.handleSessionStatus))
	mux.HandleFunc("/ws", s.handleWS)
	return mux
}

// withCORS allows any origin, as the pairing page is served elsewhere.
func (s *Server) withCORS(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next(w, r)
	}
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST, OPTIONS")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	info := s.hub.Create()
	s.logger.Info("session created", "session", info.ID, "remote", r.RemoteAddr)
	writeJSON(w, http.StatusOK, SessionResponse{
		SessionID: string(info.ID),
		IP:        s.localIP(),
		Port:      s.config.PublicPort,
	})
}

func (s *Server) handleSessionStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET, OPTIONS")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	info, ok := s.hub.Lookup(session.ID(r.PathValue("id")))
	if !ok {
		writeJSON(w, http.StatusNotFound, session.ErrorMessage{Message: "Session not found"})
		return
	}
	players := info.Players
	if players == nil {
		players = []string{}
	}
	writeJSON(w, http.StatusOK, SessionStatus{
		SessionID: string(info.ID),
		Status:    string(info.Status),
		Players:   players,
		Desktop:   info.Desktop,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck // The client may already be gone
	json.NewEncoder(w).Encode(v)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	client := session.NewChannelClient(session.ClientID(uuid.NewString()), s.config.OutboundBuffer)
	s.hub.Connect(client)
	s.logger.Debug("client connected", "client", client.ID(), "remote", conn.RemoteAddr().String())

	c := &wsConn{conn: conn, client: client, hub: s.hub, logger: s.logger}
	c.serve()

	s.hub.Disconnect(client.ID())
	s.logger.Debug("client disconnected", "client", client.ID())
}

// ListenAndServe starts the relay and blocks until SIGINT/SIGTERM or ctx is
// done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return err
	}
	s.logger.Info("starting relay", "address", ln.Addr().String(), "ip", s.localIP(), "public_port", s.config.PublicPort)

	if s.config.CleanupPeriod > 0 {
		go s.hub.RunCleanup(ctx, s.config.CleanupPeriod, s.config.SessionTTL, func(n int) {
			s.logger.Info("expired idle sessions", "count", n)
		})
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.http.Shutdown(shutdownCtx)
}
