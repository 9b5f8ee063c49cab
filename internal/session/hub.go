package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ID is the short pairing code of a session.
type ID string

// Role is the part a connection plays in a session.
type Role string

const (
	RoleController Role = "controller"
	RoleDesktop    Role = "desktop"
)

// Status is the lifecycle state of a session.
type Status string

const (
	StatusWaiting Status = "waiting"
	StatusPlaying Status = "playing"
	StatusEnded   Status = "ended"
)

// DefaultPlayerName is used when a controller joins without a name.
const DefaultPlayerName = "Player"

var (
	ErrUnknownSession = errors.New("session: unknown session")
	ErrBadRole        = errors.New("session: bad role")
	ErrNotJoined      = errors.New("session: client has not joined a session")
	ErrUnknownEvent   = errors.New("session: unknown event")
)

// Result is a finished run reported through a session.
type Result struct {
	SessionID ID
	Score     int
	Coins     int
}

// ResultSaver persists finished runs. The hub calls it outside its lock.
type ResultSaver interface {
	SaveSessionResult(result Result) error
}

// Info is a read-only view of a session.
type Info struct {
	ID         ID
	Status     Status
	Players    []string
	Desktop    bool
	Members    int
	CreatedAt  time.Time
	LastActive time.Time
}

type room struct {
	id         ID
	status     Status
	players    []string
	desktop    bool
	members    map[ClientID]Handle
	createdAt  time.Time
	lastActive time.Time
}

func (r *room) info() Info {
	return Info{
		ID:         r.id,
		Status:     r.status,
		Players:    append([]string(nil), r.players...),
		Desktop:    r.desktop,
		Members:    len(r.members),
		CreatedAt:  r.createdAt,
		LastActive: r.lastActive,
	}
}

// broadcast sends evt to every member except skip.
func (r *room) broadcast(evt Event, skip ClientID) {
	for id, h := range r.members {
		if id == skip {
			continue
		}
		h.Send(evt)
	}
}

type member struct {
	handle  Handle
	session ID
	role    Role
	name    string
}

// Hub tracks sessions and their connections. Safe for concurrent use.
type Hub struct {
	mu      sync.Mutex
	rooms   map[ID]*room
	clients map[ClientID]*member
	saver   ResultSaver
	now     func() time.Time
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		rooms:   make(map[ID]*room),
		clients: make(map[ClientID]*member),
		now:     time.Now,
	}
}

// SetResultSaver sets the optional saver for end_game results.
func (h *Hub) SetResultSaver(s ResultSaver) {
	h.mu.Lock()
	h.saver = s
	h.mu.Unlock()
}

// Create opens a new waiting session with a fresh pairing code.
func (h *Hub) Create() Info {
	h.mu.Lock()
	defer h.mu.Unlock()

	var id ID
	for {
		id = ID(uuid.NewString()[:8])
		if _, taken := h.rooms[id]; !taken {
			break
		}
	}
	now := h.now()
	r := &room{
		id:         id,
		status:     StatusWaiting,
		members:    make(map[ClientID]Handle),
		createdAt:  now,
		lastActive: now,
	}
	h.rooms[id] = r
	return r.info()
}

// Lookup returns the session with the given code.
func (h *Hub) Lookup(id ID) (Info, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	r, ok := h.rooms[id]
	if !ok {
		return Info{}, false
	}
	return r.info(), true
}

// Count returns the number of open sessions.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms)
}

// Connect registers a connection. It has no session until it joins one.
func (h *Hub) Connect(c Handle) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.ID()] = &member{handle: c}
}

// Disconnect removes a connection from its session. If it was a controller
// the remaining members are told.
func (h *Hub) Disconnect(id ClientID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	m, ok := h.clients[id]
	if !ok {
		return
	}
	delete(h.clients, id)
	h.leave(id, m)
}

// leave detaches m from its room. Caller holds h.mu.
func (h *Hub) leave(id ClientID, m *member) {
	r, ok := h.rooms[m.session]
	if !ok {
		return
	}
	delete(r.members, id)
	r.lastActive = h.now()

	switch m.role {
	case RoleController:
		for i, name := range r.players {
			if name == m.name {
				r.players = append(r.players[:i], r.players[i+1:]...)
				break
			}
		}
		r.broadcast(Event{Name: EventControllerGone}, "")
	case RoleDesktop:
		r.desktop = false
	}
	m.session = ""
	m.role = ""
}

// Dispatch handles one inbound envelope from a connection. Errors that the
// sender should see are also delivered to it as an error event.
func (h *Hub) Dispatch(from ClientID, env Envelope) error {
	if env.Event == EventJoinSession {
		req, err := DecodePayload[JoinRequest](env)
		if err != nil {
			return err
		}
		return h.join(from, req)
	}

	h.mu.Lock()
	m, r, err := h.resolve(from)
	if err != nil {
		h.mu.Unlock()
		return err
	}
	r.lastActive = h.now()

	var saved *Result
	switch env.Event {
	case EventControl:
		req, err := DecodePayload[ControlRequest](env)
		if err != nil {
			h.mu.Unlock()
			return err
		}
		r.broadcast(Event{Name: EventControl, Data: Control{Direction: req.Direction}}, from)

	case EventStartGame:
		r.status = StatusPlaying
		r.broadcast(Event{Name: EventGameStarted}, "")

	case EventEndGame:
		req, err := DecodePayload[ScoreRequest](env)
		if err != nil {
			h.mu.Unlock()
			return err
		}
		r.status = StatusEnded
		r.broadcast(Event{Name: EventGameEnded, Data: Score{Score: req.Score, Coins: req.Coins}}, "")
		saved = &Result{SessionID: r.id, Score: req.Score, Coins: req.Coins}

	case EventScoreUpdate:
		req, err := DecodePayload[ScoreRequest](env)
		if err != nil {
			h.mu.Unlock()
			return err
		}
		r.broadcast(Event{Name: EventScoreUpdate, Data: Score{Score: req.Score, Coins: req.Coins}}, from)

	case EventRestartGame:
		r.status = StatusPlaying
		r.broadcast(Event{Name: EventRestartGame}, from)

	default:
		h.mu.Unlock()
		m.handle.Send(errorEvent(fmt.Sprintf("unknown event %q", env.Event)))
		return fmt.Errorf("%w: %q", ErrUnknownEvent, env.Event)
	}
	saver := h.saver
	h.mu.Unlock()

	if saved != nil && saver != nil {
		if err := saver.SaveSessionResult(*saved); err != nil {
			return fmt.Errorf("session: save result for %s: %w", saved.SessionID, err)
		}
	}
	return nil
}

// resolve finds the member and its room. Caller holds h.mu.
func (h *Hub) resolve(from ClientID) (*member, *room, error) {
	m, ok := h.clients[from]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrNotJoined, from)
	}
	r, ok := h.rooms[m.session]
	if !ok {
		m.handle.Send(errorEvent("join a session first"))
		return nil, nil, fmt.Errorf("%w: %s", ErrNotJoined, from)
	}
	return m, r, nil
}

func (h *Hub) join(from ClientID, req JoinRequest) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	m, ok := h.clients[from]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotJoined, from)
	}
	r, ok := h.rooms[ID(req.SessionID)]
	if !ok {
		m.handle.Send(errorEvent("Session not found"))
		return fmt.Errorf("%w: %q", ErrUnknownSession, req.SessionID)
	}
	if req.Role != RoleController && req.Role != RoleDesktop {
		m.handle.Send(errorEvent(fmt.Sprintf("unknown role %q", req.Role)))
		return fmt.Errorf("%w: %q", ErrBadRole, req.Role)
	}

	if m.session != "" {
		h.leave(from, m)
	}
	m.session = r.id
	m.role = req.Role
	r.members[from] = m.handle
	r.lastActive = h.now()

	switch req.Role {
	case RoleController:
		name := req.Name
		if name == "" {
			name = DefaultPlayerName
		}
		m.name = name
		r.players = append(r.players, name)
		r.broadcast(Event{Name: EventPlayerJoined, Data: PlayerJoined{Name: name}}, "")
	case RoleDesktop:
		r.desktop = true
		r.broadcast(Event{Name: EventDesktopReady, Data: DesktopReady{SessionID: string(r.id)}}, "")
	}
	return nil
}

// Expire removes sessions with no members that have been idle longer than
// maxIdle. It returns the number removed.
func (h *Hub) Expire(maxIdle time.Duration) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	cutoff := h.now().Add(-maxIdle)
	removed := 0
	for id, r := range h.rooms {
		if len(r.members) == 0 && r.lastActive.Before(cutoff) {
			delete(h.rooms, id)
			removed++
		}
	}
	return removed
}

// RunCleanup calls Expire every period until ctx is done.
func (h *Hub) RunCleanup(ctx context.Context, period, maxIdle time.Duration, onExpire func(n int)) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if n := h.Expire(maxIdle); n > 0 && onExpire != nil {
				onExpire(n)
			}
		case <-ctx.Done():
			return
		}
	}
}

func errorEvent(msg string) Event {
	return Event{Name: EventError, Data: ErrorMessage{Message: msg}}
}
