package session

import "sync"

// ClientID identifies one connection to the relay.
type ClientID string

// Handle is the hub's view of a connection.
type Handle interface {
	// ID returns the connection identifier.
	ID() ClientID

	// Send queues an event. It must not block.
	Send(evt Event)

	// Done returns a channel that closes when the connection ends.
	Done() <-chan struct{}
}

// ChannelClient is a Handle backed by a buffered channel. The transport
// drains Events and writes each one to the wire.
type ChannelClient struct {
	id       ClientID
	events   chan Event
	done     chan struct{}
	doneOnce sync.Once
}

// NewChannelClient creates a channel-backed handle.
// bufferSize controls how many events are held before the oldest is dropped.
func NewChannelClient(id ClientID, bufferSize int) *ChannelClient {
	if bufferSize < 1 {
		bufferSize = 64
	}
	return &ChannelClient{
		id:     id,
		events: make(chan Event, bufferSize),
		done:   make(chan struct{}),
	}
}

// ID returns the connection identifier.
func (c *ChannelClient) ID() ClientID {
	return c.id
}

// Send queues evt. If the buffer is full the oldest event is dropped.
func (c *ChannelClient) Send(evt Event) {
	select {
	case <-c.done:
		return
	default:
	}

	select {
	case c.events <- evt:
	default:
		select {
		case <-c.events:
		default:
		}
		select {
		case c.events <- evt:
		default:
		}
	}
}

// Events returns the outbound queue.
func (c *ChannelClient) Events() <-chan Event {
	return c.events
}

// Done returns the done channel.
func (c *ChannelClient) Done() <-chan struct{} {
	return c.done
}

// Close marks the connection as finished. Safe to call multiple times.
func (c *ChannelClient) Close() {
	c.doneOnce.Do(func() {
		close(c.done)
	})
}
