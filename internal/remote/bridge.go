package remote

import (
	"context"
	"io"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/lanerunner/internal/core"
	"github.com/vovakirdan/lanerunner/internal/engine"
	"github.com/vovakirdan/lanerunner/internal/session"
)

// Target receives intents from remote controllers. *engine.Engine satisfies it.
type Target interface {
	MoveLeft()
	MoveRight()
	Jump()
	Slide()
	Start()
}

// Bridge joins a session as the desktop. Controller input is forwarded to a
// Target, and the run's score events go back to the room.
type Bridge struct {
	conn      *Conn
	sessionID string
	target    Target
	logger    *log.Logger
	players   chan string
}

// NewBridge creates a bridge over an open connection. Call Join, then Run.
func NewBridge(conn *Conn, sessionID string, target Target, logger *log.Logger) *Bridge {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Bridge{
		conn:      conn,
		sessionID: sessionID,
		target:    target,
		logger:    logger,
		players:   make(chan string, 8),
	}
}

// SessionID returns the joined session.
func (b *Bridge) SessionID() string {
	return b.sessionID
}

// Players delivers the names of controllers as they join. Names are dropped
// if nobody reads them.
func (b *Bridge) Players() <-chan string {
	return b.players
}

// Join registers the bridge as the session's desktop.
func (b *Bridge) Join() error {
	return b.conn.Send(session.EventJoinSession, session.JoinRequest{
		SessionID: b.sessionID,
		Role:      session.RoleDesktop,
	})
}

// Run reads relay events until the connection closes or ctx is done.
// Losing the connection only stops remote input.
func (b *Bridge) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() { b.conn.Close() })
	defer stop()

	for {
		env, err := b.conn.Next()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		b.handle(env)
	}
}

func (b *Bridge) handle(env session.Envelope) {
	switch env.Event {
	case session.EventControl:
		ctl, err := session.DecodePayload[session.Control](env)
		if err != nil {
			b.logger.Debug("bad control payload", "error", err)
			return
		}
		b.apply(core.ActionForDirection(ctl.Direction))

	case session.EventGameStarted, session.EventRestartGame:
		b.target.Start()

	case session.EventPlayerJoined:
		p, _ := session.DecodePayload[session.PlayerJoined](env)
		b.logger.Info("controller joined", "session", b.sessionID, "name", p.Name)
		select {
		case b.players <- p.Name:
		default:
		}

	case session.EventControllerGone:
		b.logger.Info("controller left", "session", b.sessionID)

	case session.EventError:
		msg, _ := session.DecodePayload[session.ErrorMessage](env)
		b.logger.Warn("relay error", "session", b.sessionID, "message", msg.Message)
	}
}

func (b *Bridge) apply(a core.Action) {
	switch a {
	case core.ActionLeft:
		b.target.MoveLeft()
	case core.ActionRight:
		b.target.MoveRight()
	case core.ActionJump:
		b.target.Jump()
	case core.ActionSlide:
		b.target.Slide()
	}
}

// OnScoreUpdate forwards the running score to controllers.
func (b *Bridge) OnScoreUpdate(score, coins int) {
	b.send(session.EventScoreUpdate, session.ScoreRequest{SessionID: b.sessionID, Score: score, Coins: coins})
}

// OnGameOver reports the final score, which the relay records.
func (b *Bridge) OnGameOver(score, coins int) {
	b.send(session.EventEndGame, session.ScoreRequest{SessionID: b.sessionID, Score: score, Coins: coins})
}

func (b *Bridge) OnPowerUp(engine.PowerUpKind) {}

func (b *Bridge) send(event string, payload any) {
	if err := b.conn.Send(event, payload); err != nil {
		b.logger.Debug("send failed", "event", event, "error", err)
	}
}

var _ engine.Listener = (*Bridge)(nil)
