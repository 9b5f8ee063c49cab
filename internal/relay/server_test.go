package relay

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/vovakirdan/lanerunner/internal/config"
	"github.com/vovakirdan/lanerunner/internal/session"
)

func newTestServer(t *testing.T) (*httptest.Server, *session.Hub) {
	t.Helper()
	hub := session.NewHub()
	logger := log.New(io.Discard)
	srv := NewServer(config.DefaultRelayConfig(), hub, logger)
	srv.localIP = func() string { return "192.168.1.20" }
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, hub
}

func createSession(t *testing.T, ts *httptest.Server) SessionResponse {
	t.Helper()
	resp, err := http.Post(ts.URL+"/api/session", "application/json", nil)
	if err != nil {
		t.Fatalf("POST /api/session: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, expected 200", resp.StatusCode)
	}
	var out SessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return out
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, event string, data any) {
	t.Helper()
	b, err := session.Encode(event, data)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func expect(t *testing.T, conn *websocket.Conn, event string) session.Envelope {
	t.Helper()
	if err := conn.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
		t.Fatalf("deadline: %v", err)
	}
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("waiting for %s: %v", event, err)
		}
		env, err := session.DecodeEnvelope(msg)
		if err != nil {
			t.Fatalf("decode %s: %v", msg, err)
		}
		if env.Event == event {
			return env
		}
	}
}

func TestCreateSession(t *testing.T) {
	ts, hub := newTestServer(t)

	out := createSession(t, ts)
	if len(out.SessionID) != 8 {
		t.Errorf("session id %q, expected 8 characters", out.SessionID)
	}
	if out.IP != "192.168.1.20" {
		t.Errorf("ip = %q", out.IP)
	}
	if out.Port != 5173 {
		t.Errorf("port = %d, expected public port 5173", out.Port)
	}
	if _, ok := hub.Lookup(session.ID(out.SessionID)); !ok {
		t.Error("session not registered in hub")
	}
}

func TestCreateSessionCORS(t *testing.T) {
	ts, _ := newTestServer(t)

	req, _ := http.NewRequest(http.MethodOptions, ts.URL+"/api/session", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("OPTIONS: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("preflight status = %d, expected 204", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("allow origin = %q", got)
	}

	resp, err = http.Get(ts.URL + "/api/session")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("GET status = %d, expected 405", resp.StatusCode)
	}
}

func TestSessionStatus(t *testing.T) {
	ts, _ := newTestServer(t)
	out := createSession(t, ts)

	resp, err := http.Get(ts.URL + "/api/session/" + out.SessionID)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	var status SessionStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if status.Status != string(session.StatusWaiting) || status.Desktop || len(status.Players) != 0 {
		t.Errorf("unexpected status %+v", status)
	}

	resp2, err := http.Get(ts.URL + "/api/session/nope")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp2.Body.Close()
	if resp2.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, expected 404", resp2.StatusCode)
	}
}

func TestRelayRoundTrip(t *testing.T) {
	ts, _ := newTestServer(t)
	id := createSession(t, ts).SessionID

	desktop := dial(t, ts)
	send(t, desktop, session.EventJoinSession, session.JoinRequest{SessionID: id, Role: session.RoleDesktop})
	expect(t, desktop, session.EventDesktopReady)

	pad := dial(t, ts)
	send(t, pad, session.EventJoinSession, session.JoinRequest{SessionID: id, Role: session.RoleController, Name: "Ana"})
	env := expect(t, desktop, session.EventPlayerJoined)
	joined, err := session.DecodePayload[session.PlayerJoined](env)
	if err != nil || joined.Name != "Ana" {
		t.Fatalf("player_joined = %+v, %v", joined, err)
	}

	send(t, pad, session.EventControl, session.ControlRequest{SessionID: id, Direction: "left"})
	ctl, err := session.DecodePayload[session.Control](expect(t, desktop, session.EventControl))
	if err != nil || ctl.Direction != "left" {
		t.Fatalf("control = %+v, %v", ctl, err)
	}

	send(t, pad, session.EventStartGame, nil)
	expect(t, desktop, session.EventGameStarted)
	expect(t, pad, session.EventGameStarted)

	send(t, desktop, session.EventEndGame, session.ScoreRequest{SessionID: id, Score: 420, Coins: 9})
	score, err := session.DecodePayload[session.Score](expect(t, pad, session.EventGameEnded))
	if err != nil || score.Score != 420 || score.Coins != 9 {
		t.Fatalf("game_ended = %+v, %v", score, err)
	}
}

func TestRelayReportsErrors(t *testing.T) {
	ts, _ := newTestServer(t)

	conn := dial(t, ts)
	if err := conn.WriteMessage(websocket.TextMessage, []byte("not json")); err != nil {
		t.Fatalf("write: %v", err)
	}
	expect(t, conn, session.EventError)

	send(t, conn, session.EventJoinSession, session.JoinRequest{SessionID: "missing", Role: session.RoleController})
	msg, err := session.DecodePayload[session.ErrorMessage](expect(t, conn, session.EventError))
	if err != nil || msg.Message != "Session not found" {
		t.Fatalf("error = %+v, %v", msg, err)
	}
}

func TestControllerDisconnectNotifiesDesktop(t *testing.T) {
	ts, _ := newTestServer(t)
	id := createSession(t, ts).SessionID

	desktop := dial(t, ts)
	send(t, desktop, session.EventJoinSession, session.JoinRequest{SessionID: id, Role: session.RoleDesktop})
	expect(t, desktop, session.EventDesktopReady)

	pad := dial(t, ts)
	send(t, pad, session.EventJoinSession, session.JoinRequest{SessionID: id, Role: session.RoleController})
	expect(t, desktop, session.EventPlayerJoined)

	pad.Close()
	expect(t, desktop, session.EventControllerGone)
}
