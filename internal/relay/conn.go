package relay

import (
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/vovakirdan/lanerunner/internal/session"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 25 * time.Second
	maxMessageSize = 1 << 16
)

// wsConn pumps frames between one websocket and the hub.
type wsConn struct {
	conn   *websocket.Conn
	client *session.ChannelClient
	hub    *session.Hub
	logger *log.Logger
}

// serve runs the write pump in the background and the read pump until the
// connection fails.
func (c *wsConn) serve() {
	done := make(chan struct{})
	go func() {
		c.writePump()
		close(done)
	}()

	c.readPump()
	c.client.Close()
	<-done
	c.conn.Close()
}

func (c *wsConn) readPump() {
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("read failed", "client", c.client.ID(), "error", err)
			}
			return
		}

		env, err := session.DecodeEnvelope(msg)
		if err != nil {
			c.client.Send(session.Event{Name: session.EventError, Data: session.ErrorMessage{Message: "malformed message"}})
			c.logger.Debug("dropped frame", "client", c.client.ID(), "error", err)
			continue
		}
		if err := c.hub.Dispatch(c.client.ID(), env); err != nil {
			level := log.DebugLevel
			if !isClientError(err) {
				level = log.ErrorLevel
			}
			c.logger.Log(level, "dispatch failed", "client", c.client.ID(), "event", env.Event, "error", err)
		}
	}
}

// isClientError reports whether err was caused by the sender's message.
func isClientError(err error) bool {
	return errors.Is(err, session.ErrBadEnvelope) ||
		errors.Is(err, session.ErrUnknownSession) ||
		errors.Is(err, session.ErrBadRole) ||
		errors.Is(err, session.ErrNotJoined) ||
		errors.Is(err, session.ErrUnknownEvent)
}

func (c *wsConn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case evt := <-c.client.Events():
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(evt); err != nil {
				c.client.Close()
				c.conn.Close()
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.client.Close()
				c.conn.Close()
				return
			}
		case <-c.client.Done():
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
