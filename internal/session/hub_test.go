package session

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"
)

func envelope(t *testing.T, name string, payload any) Envelope {
	t.Helper()
	b, err := Encode(name, payload)
	if err != nil {
		t.Fatalf("encode %s: %v", name, err)
	}
	env, err := DecodeEnvelope(b)
	if err != nil {
		t.Fatalf("decode %s: %v", name, err)
	}
	return env
}

func next(t *testing.T, c *ChannelClient) Event {
	t.Helper()
	select {
	case evt := <-c.Events():
		return evt
	case <-time.After(time.Second):
		t.Fatalf("%s: timed out waiting for an event", c.ID())
		return Event{}
	}
}

func expectNone(t *testing.T, c *ChannelClient) {
	t.Helper()
	select {
	case evt := <-c.Events():
		t.Fatalf("%s: unexpected event %s", c.ID(), evt.Name)
	default:
	}
}

type pair struct {
	hub        *Hub
	id         ID
	desktop    *ChannelClient
	controller *ChannelClient
}

// newPair creates a session with a joined desktop and controller and drains
// the join notifications.
func newPair(t *testing.T) pair {
	t.Helper()
	h := NewHub()
	info := h.Create()
	d := NewChannelClient("desk", 16)
	c := NewChannelClient("pad", 16)
	h.Connect(d)
	h.Connect(c)

	if err := h.Dispatch(d.ID(), envelope(t, EventJoinSession, JoinRequest{SessionID: string(info.ID), Role: RoleDesktop})); err != nil {
		t.Fatalf("desktop join: %v", err)
	}
	next(t, d) // desktop_ready
	if err := h.Dispatch(c.ID(), envelope(t, EventJoinSession, JoinRequest{SessionID: string(info.ID), Role: RoleController, Name: "Ana"})); err != nil {
		t.Fatalf("controller join: %v", err)
	}
	next(t, d) // player_joined
	next(t, c) // player_joined
	return pair{hub: h, id: info.ID, desktop: d, controller: c}
}

func TestCreateSession(t *testing.T) {
	h := NewHub()
	info := h.Create()
	if len(info.ID) != 8 {
		t.Errorf("session id %q, want 8 characters", info.ID)
	}
	if info.Status != StatusWaiting || len(info.Players) != 0 {
		t.Errorf("new session = %+v", info)
	}
	if got, ok := h.Lookup(info.ID); !ok || got.ID != info.ID {
		t.Error("Lookup did not find the new session")
	}
	if h.Count() != 1 {
		t.Errorf("Count = %d", h.Count())
	}
}

func TestJoinNotifications(t *testing.T) {
	h := NewHub()
	info := h.Create()
	d := NewChannelClient("desk", 8)
	c := NewChannelClient("pad", 8)
	h.Connect(d)
	h.Connect(c)

	if err := h.Dispatch(d.ID(), envelope(t, EventJoinSession, JoinRequest{SessionID: string(info.ID), Role: RoleDesktop})); err != nil {
		t.Fatal(err)
	}
	evt := next(t, d)
	if evt.Name != EventDesktopReady || evt.Data.(DesktopReady).SessionID != string(info.ID) {
		t.Errorf("desktop got %+v", evt)
	}

	if err := h.Dispatch(c.ID(), envelope(t, EventJoinSession, JoinRequest{SessionID: string(info.ID), Role: RoleController})); err != nil {
		t.Fatal(err)
	}
	for _, cl := range []*ChannelClient{d, c} {
		evt := next(t, cl)
		if evt.Name != EventPlayerJoined || evt.Data.(PlayerJoined).Name != DefaultPlayerName {
			t.Errorf("%s got %+v", cl.ID(), evt)
		}
	}

	got, _ := h.Lookup(info.ID)
	if !got.Desktop || got.Members != 2 || len(got.Players) != 1 {
		t.Errorf("session after joins = %+v", got)
	}
}

func TestJoinErrors(t *testing.T) {
	h := NewHub()
	info := h.Create()
	c := NewChannelClient("pad", 8)
	h.Connect(c)

	err := h.Dispatch(c.ID(), envelope(t, EventJoinSession, JoinRequest{SessionID: "nope", Role: RoleController}))
	if !errors.Is(err, ErrUnknownSession) {
		t.Errorf("err = %v, want ErrUnknownSession", err)
	}
	if evt := next(t, c); evt.Name != EventError {
		t.Errorf("sender got %s, want error", evt.Name)
	}

	err = h.Dispatch(c.ID(), envelope(t, EventJoinSession, JoinRequest{SessionID: string(info.ID), Role: "spectator"}))
	if !errors.Is(err, ErrBadRole) {
		t.Errorf("err = %v, want ErrBadRole", err)
	}
	next(t, c)

	err = h.Dispatch(c.ID(), envelope(t, EventControl, ControlRequest{Direction: "left"}))
	if !errors.Is(err, ErrNotJoined) {
		t.Errorf("err = %v, want ErrNotJoined", err)
	}
	next(t, c)

	if err := h.Dispatch("ghost", envelope(t, EventStartGame, nil)); !errors.Is(err, ErrNotJoined) {
		t.Errorf("unregistered client err = %v", err)
	}
}

func TestControlRelayedToOthers(t *testing.T) {
	p := newPair(t)

	for _, dir := range []string{"left", "right", "up", "down"} {
		if err := p.hub.Dispatch(p.controller.ID(), envelope(t, EventControl, ControlRequest{SessionID: string(p.id), Direction: dir})); err != nil {
			t.Fatal(err)
		}
		evt := next(t, p.desktop)
		if evt.Name != EventControl || evt.Data.(Control).Direction != dir {
			t.Errorf("desktop got %+v, want control %s", evt, dir)
		}
	}
	expectNone(t, p.controller)
}

func TestGameLifecycle(t *testing.T) {
	p := newPair(t)
	saver := &memSaver{}
	p.hub.SetResultSaver(saver)

	if err := p.hub.Dispatch(p.controller.ID(), envelope(t, EventStartGame, nil)); err != nil {
		t.Fatal(err)
	}
	for _, c := range []*ChannelClient{p.desktop, p.controller} {
		if evt := next(t, c); evt.Name != EventGameStarted {
			t.Errorf("%s got %s", c.ID(), evt.Name)
		}
	}
	if info, _ := p.hub.Lookup(p.id); info.Status != StatusPlaying {
		t.Errorf("status = %s", info.Status)
	}

	if err := p.hub.Dispatch(p.desktop.ID(), envelope(t, EventScoreUpdate, ScoreRequest{Score: 120, Coins: 4})); err != nil {
		t.Fatal(err)
	}
	evt := next(t, p.controller)
	if evt.Name != EventScoreUpdate || evt.Data.(Score) != (Score{Score: 120, Coins: 4}) {
		t.Errorf("controller got %+v", evt)
	}
	expectNone(t, p.desktop)

	if err := p.hub.Dispatch(p.desktop.ID(), envelope(t, EventEndGame, ScoreRequest{Score: 300, Coins: 9})); err != nil {
		t.Fatal(err)
	}
	for _, c := range []*ChannelClient{p.desktop, p.controller} {
		evt := next(t, c)
		if evt.Name != EventGameEnded || evt.Data.(Score) != (Score{Score: 300, Coins: 9}) {
			t.Errorf("%s got %+v", c.ID(), evt)
		}
	}
	if info, _ := p.hub.Lookup(p.id); info.Status != StatusEnded {
		t.Errorf("status = %s", info.Status)
	}
	if got := saver.all(); len(got) != 1 || got[0] != (Result{SessionID: p.id, Score: 300, Coins: 9}) {
		t.Errorf("saved results = %+v", got)
	}

	if err := p.hub.Dispatch(p.controller.ID(), envelope(t, EventRestartGame, nil)); err != nil {
		t.Fatal(err)
	}
	if evt := next(t, p.desktop); evt.Name != EventRestartGame {
		t.Errorf("desktop got %s", evt.Name)
	}
	expectNone(t, p.controller)
	if info, _ := p.hub.Lookup(p.id); info.Status != StatusPlaying {
		t.Errorf("status = %s", info.Status)
	}
}

func TestEndGameDefaultsToZero(t *testing.T) {
	p := newPair(t)
	if err := p.hub.Dispatch(p.desktop.ID(), envelope(t, EventEndGame, nil)); err != nil {
		t.Fatal(err)
	}
	if evt := next(t, p.controller); evt.Data.(Score) != (Score{}) {
		t.Errorf("payload = %+v", evt.Data)
	}
}

func TestSaverErrorIsReported(t *testing.T) {
	p := newPair(t)
	p.hub.SetResultSaver(&memSaver{err: errors.New("disk full")})
	err := p.hub.Dispatch(p.desktop.ID(), envelope(t, EventEndGame, ScoreRequest{Score: 1}))
	if err == nil {
		t.Fatal("expected saver error")
	}
	// The room is still notified.
	next(t, p.controller)
}

func TestUnknownEvent(t *testing.T) {
	p := newPair(t)
	err := p.hub.Dispatch(p.controller.ID(), envelope(t, "dance", nil))
	if !errors.Is(err, ErrUnknownEvent) {
		t.Errorf("err = %v", err)
	}
	if evt := next(t, p.controller); evt.Name != EventError {
		t.Errorf("sender got %s", evt.Name)
	}
	expectNone(t, p.desktop)
}

func TestControllerDisconnect(t *testing.T) {
	p := newPair(t)
	p.hub.Disconnect(p.controller.ID())

	if evt := next(t, p.desktop); evt.Name != EventControllerGone {
		t.Errorf("desktop got %s", evt.Name)
	}
	info, _ := p.hub.Lookup(p.id)
	if info.Members != 1 || len(info.Players) != 0 {
		t.Errorf("session after disconnect = %+v", info)
	}

	// A desktop leaving tells nobody.
	p.hub.Disconnect(p.desktop.ID())
	p.hub.Disconnect(p.desktop.ID())
	if info, _ := p.hub.Lookup(p.id); info.Desktop || info.Members != 0 {
		t.Errorf("session after desktop left = %+v", info)
	}
}

func TestRejoinMovesSessions(t *testing.T) {
	p := newPair(t)
	other := p.hub.Create()

	if err := p.hub.Dispatch(p.controller.ID(), envelope(t, EventJoinSession, JoinRequest{SessionID: string(other.ID), Role: RoleController})); err != nil {
		t.Fatal(err)
	}
	if evt := next(t, p.desktop); evt.Name != EventControllerGone {
		t.Errorf("old room got %s", evt.Name)
	}
	if info, _ := p.hub.Lookup(other.ID); info.Members != 1 {
		t.Errorf("new room members = %d", info.Members)
	}
}

func TestExpire(t *testing.T) {
	h := NewHub()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	h.now = func() time.Time { return now }

	idle := h.Create()
	busy := h.Create()
	c := NewChannelClient("pad", 4)
	h.Connect(c)
	if err := h.Dispatch(c.ID(), envelope(t, EventJoinSession, JoinRequest{SessionID: string(busy.ID), Role: RoleController})); err != nil {
		t.Fatal(err)
	}

	now = now.Add(30 * time.Minute)
	if n := h.Expire(time.Hour); n != 0 {
		t.Errorf("expired %d sessions too early", n)
	}
	now = now.Add(2 * time.Hour)
	if n := h.Expire(time.Hour); n != 1 {
		t.Errorf("expired %d sessions, want 1", n)
	}
	if _, ok := h.Lookup(idle.ID); ok {
		t.Error("idle session survived")
	}
	if _, ok := h.Lookup(busy.ID); !ok {
		t.Error("session with a member was expired")
	}
}

func TestChannelClientDropsOldest(t *testing.T) {
	c := NewChannelClient("x", 2)
	c.Send(Event{Name: "a"})
	c.Send(Event{Name: "b"})
	c.Send(Event{Name: "c"})

	if got := next(t, c).Name; got != "b" {
		t.Errorf("first = %s, want b", got)
	}
	if got := next(t, c).Name; got != "c" {
		t.Errorf("second = %s, want c", got)
	}

	c.Close()
	c.Close()
	c.Send(Event{Name: "d"})
	expectNone(t, c)
}

func TestEnvelopeCodec(t *testing.T) {
	b, err := Encode(EventGameStarted, nil)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"event":"game_started","data":{}}` {
		t.Errorf("encoded %s", b)
	}

	b, _ = json.Marshal(Event{Name: EventControl, Data: Control{Direction: "up"}})
	env, err := DecodeEnvelope(b)
	if err != nil {
		t.Fatal(err)
	}
	ctl, err := DecodePayload[ControlRequest](env)
	if err != nil || ctl.Direction != "up" {
		t.Errorf("decoded %+v, %v", ctl, err)
	}

	for _, bad := range []string{"", "{", `{"data":{}}`} {
		if _, err := DecodeEnvelope([]byte(bad)); !errors.Is(err, ErrBadEnvelope) {
			t.Errorf("DecodeEnvelope(%q) err = %v", bad, err)
		}
	}
	if _, err := DecodePayload[ScoreRequest](Envelope{Event: EventEndGame, Data: json.RawMessage(`"x"`)}); !errors.Is(err, ErrBadEnvelope) {
		t.Errorf("bad payload err = %v", err)
	}
	if _, err := Encode("", nil); err == nil {
		t.Error("Encode accepted an empty name")
	}
}

type memSaver struct {
	mu      sync.Mutex
	results []Result
	err     error
}

func (s *memSaver) SaveSessionResult(r Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.results = append(s.results, r)
	return nil
}

func (s *memSaver) all() []Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Result(nil), s.results...)
}
