// Package session implements the pairing relay between a desktop runner and
// phone-style controllers. It is transport-neutral: connections are
// represented by Handle values and messages by JSON envelopes.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Event names carried in envelopes.
const (
	EventJoinSession    = "join_session"
	EventControl        = "control"
	EventStartGame      = "start_game"
	EventEndGame        = "end_game"
	EventScoreUpdate    = "score_update"
	EventRestartGame    = "restart_game"
	EventPlayerJoined   = "player_joined"
	EventDesktopReady   = "desktop_ready"
	EventGameStarted    = "game_started"
	EventGameEnded      = "game_ended"
	EventControllerGone = "controller_disconnected"
	EventError          = "error"
)

// ErrBadEnvelope is returned for frames that are not a valid envelope.
var ErrBadEnvelope = errors.New("session: malformed envelope")

// Envelope is the wire frame: {"event": name, "data": {...}}.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Event is an outbound message queued on a Handle.
type Event struct {
	Name string
	Data any
}

// MarshalJSON encodes the event as an envelope.
func (e Event) MarshalJSON() ([]byte, error) {
	data := e.Data
	if data == nil {
		data = struct{}{}
	}
	return json.Marshal(struct {
		Event string `json:"event"`
		Data  any    `json:"data"`
	}{e.Name, data})
}

// Encode builds a wire frame.
func Encode(name string, payload any) ([]byte, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty event name", ErrBadEnvelope)
	}
	return json.Marshal(Event{Name: name, Data: payload})
}

// DecodeEnvelope parses a wire frame.
func DecodeEnvelope(b []byte) (Envelope, error) {
	if len(b) == 0 {
		return Envelope{}, fmt.Errorf("%w: empty frame", ErrBadEnvelope)
	}
	var env Envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrBadEnvelope, err)
	}
	if env.Event == "" {
		return Envelope{}, fmt.Errorf("%w: missing event name", ErrBadEnvelope)
	}
	return env, nil
}

// DecodePayload unmarshals the envelope data into T. Missing data yields
// the zero value.
func DecodePayload[T any](env Envelope) (T, error) {
	var out T
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return out, nil
	}
	if err := json.Unmarshal(env.Data, &out); err != nil {
		return out, fmt.Errorf("%w: %s payload: %v", ErrBadEnvelope, env.Event, err)
	}
	return out, nil
}

// Inbound payloads.

type JoinRequest struct {
	SessionID string `json:"sessionId"`
	Role      Role   `json:"role"`
	Name      string `json:"name,omitempty"`
}

type ControlRequest struct {
	SessionID string `json:"sessionId,omitempty"`
	Direction string `json:"direction"`
}

type ScoreRequest struct {
	SessionID string `json:"sessionId,omitempty"`
	Score     int    `json:"score"`
	Coins     int    `json:"coins"`
}

// Outbound payloads.

type PlayerJoined struct {
	Name string `json:"name"`
}

type DesktopReady struct {
	SessionID string `json:"sessionId"`
}

type Control struct {
	Direction string `json:"direction"`
}

type Score struct {
	Score int `json:"score"`
	Coins int `json:"coins"`
}

type ErrorMessage struct {
	Message string `json:"message"`
}
