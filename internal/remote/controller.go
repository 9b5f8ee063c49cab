package remote

import (
	"context"

	"github.com/vovakirdan/lanerunner/internal/session"
)

// Controller joins a session as a controller and sends directions.
type Controller struct {
	conn      *Conn
	sessionID string
	events    chan session.Envelope
}

// NewController wraps an open connection.
func NewController(conn *Conn, sessionID string) *Controller {
	return &Controller{
		conn:      conn,
		sessionID: sessionID,
		events:    make(chan session.Envelope, 32),
	}
}

// Join registers as a controller under name.
func (c *Controller) Join(name string) error {
	return c.conn.Send(session.EventJoinSession, session.JoinRequest{
		SessionID: c.sessionID,
		Role:      session.RoleController,
		Name:      name,
	})
}

// Send relays one of "left", "right", "up" or "down".
func (c *Controller) Send(direction string) error {
	return c.conn.Send(session.EventControl, session.ControlRequest{SessionID: c.sessionID, Direction: direction})
}

func (c *Controller) StartGame() error {
	return c.conn.Send(session.EventStartGame, nil)
}

func (c *Controller) RestartGame() error {
	return c.conn.Send(session.EventRestartGame, nil)
}

// Events delivers everything the relay sends this controller. Run must be
// running for it to fill.
func (c *Controller) Events() <-chan session.Envelope {
	return c.events
}

// Run reads relay events until the connection closes or ctx is done, then
// closes Events.
func (c *Controller) Run(ctx context.Context) error {
	defer close(c.events)
	stop := context.AfterFunc(ctx, func() { c.conn.Close() })
	defer stop()

	for {
		env, err := c.conn.Next()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		select {
		case c.events <- env:
		case <-ctx.Done():
			return nil
		}
	}
}
