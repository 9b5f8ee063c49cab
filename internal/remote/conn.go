// Package remote holds websocket clients for the session relay: the desktop
// bridge that feeds a run and the phone-style controller.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vovakirdan/lanerunner/internal/relay"
	"github.com/vovakirdan/lanerunner/internal/session"
)

const writeWait = 5 * time.Second

// Conn is a websocket connection to the relay. Writes are serialized so
// several goroutines may send.
type Conn struct {
	ws *websocket.Conn
	mu sync.Mutex
}

// Dial opens the relay websocket at baseURL (http or ws scheme).
func Dial(ctx context.Context, baseURL string) (*Conn, error) {
	u, err := WebsocketURL(baseURL)
	if err != nil {
		return nil, err
	}
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return nil, fmt.Errorf("remote: dial %s: %w", u, err)
	}
	return &Conn{ws: ws}, nil
}

// Send writes one event to the relay.
func (c *Conn) Send(event string, payload any) error {
	b, err := session.Encode(event, payload)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.ws.WriteMessage(websocket.TextMessage, b); err != nil {
		return fmt.Errorf("remote: send %s: %w", event, err)
	}
	return nil
}

// Next blocks until the relay sends an envelope. Malformed frames are skipped.
func (c *Conn) Next() (session.Envelope, error) {
	for {
		_, msg, err := c.ws.ReadMessage()
		if err != nil {
			return session.Envelope{}, err
		}
		env, err := session.DecodeEnvelope(msg)
		if err != nil {
			continue
		}
		return env, nil
	}
}

// Close sends a close frame and closes the socket.
func (c *Conn) Close() error {
	c.mu.Lock()
	_ = c.ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
	c.mu.Unlock()
	return c.ws.Close()
}

// WebsocketURL converts a relay base URL to its /ws endpoint.
func WebsocketURL(baseURL string) (string, error) {
	u, err := parseBase(baseURL)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/ws"
	return u.String(), nil
}

func parseBase(baseURL string) (*url.URL, error) {
	if !strings.Contains(baseURL, "://") {
		baseURL = "http://" + baseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("remote: relay url %q: %w", baseURL, err)
	}
	return u, nil
}

// CreateSession asks the relay for a new session.
func CreateSession(ctx context.Context, baseURL string) (relay.SessionResponse, error) {
	var out relay.SessionResponse
	u, err := parseBase(baseURL)
	if err != nil {
		return out, err
	}
	switch u.Scheme {
	case "ws":
		u.Scheme = "http"
	case "wss":
		u.Scheme = "https"
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/api/session"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), nil)
	if err != nil {
		return out, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return out, fmt.Errorf("remote: create session: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return out, fmt.Errorf("remote: create session: %s", resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return out, fmt.Errorf("remote: create session: %w", err)
	}
	return out, nil
}
