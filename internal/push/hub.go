// Package push delivers command responses to the originating connection.
package push

import (
	"errors"
	"strings"
	"sync"
)

const (
	DefaultBufferSize       = 16
	DefaultSubscriberBuffer = 16
)

// Envelope is one message on the push channel.
type Envelope struct {
	Name string `json:"name"`
	Data any    `json:"data,omitempty"`
}

// Hub fans envelopes out to per-connection subscribers. Messages published
// before a connection subscribes are buffered and replayed on subscribe, so a
// command response is never silently dropped during reconnects.
type Hub struct {
	mu               sync.RWMutex
	streams          map[string]*stream
	bufferSize       int
	subscriberBuffer int
}

type stream struct {
	mu     sync.Mutex
	buffer []Envelope
	subs   map[uint64]chan Envelope
	nextID uint64
}

type Subscription struct {
	hub          *Hub
	connectionID string
	id           uint64
	ch           chan Envelope
	once         sync.Once
}

func NewHub() *Hub {
	return &Hub{
		streams:          make(map[string]*stream),
		bufferSize:       DefaultBufferSize,
		subscriberBuffer: DefaultSubscriberBuffer,
	}
}

// Publish delivers the envelope to every subscriber of the connection.
// Only envelopes that reached no live subscriber enter the replay buffer;
// a delivered response must not be pushed again after a reconnect.
func (h *Hub) Publish(connectionID string, envelope Envelope) {
	if h == nil {
		return
	}
	id := strings.TrimSpace(connectionID)
	if id == "" {
		return
	}

	stream := h.ensureStream(id)
	stream.mu.Lock()
	defer stream.mu.Unlock()

	delivered := false
	for _, ch := range stream.subs {
		select {
		case ch <- envelope:
			delivered = true
		default:
		}
	}
	if delivered {
		return
	}

	stream.buffer = append(stream.buffer, envelope)
	if len(stream.buffer) > h.bufferSize {
		stream.buffer = stream.buffer[len(stream.buffer)-h.bufferSize:]
	}
}

// Subscribe attaches to a connection's stream and returns any buffered
// backlog for replay.
func (h *Hub) Subscribe(connectionID string) (*Subscription, []Envelope, error) {
	if h == nil {
		return nil, nil, errors.New("hub_unavailable")
	}
	id := strings.TrimSpace(connectionID)
	if id == "" {
		return nil, nil, errors.New("invalid_connection_id")
	}

	stream := h.ensureStream(id)
	stream.mu.Lock()
	if stream.subs == nil {
		stream.subs = make(map[uint64]chan Envelope)
	}
	subID := stream.nextID
	stream.nextID++
	ch := make(chan Envelope, h.subscriberBuffer)
	stream.subs[subID] = ch
	backlog := append([]Envelope(nil), stream.buffer...)
	stream.buffer = nil
	stream.mu.Unlock()

	return &Subscription{
		hub:          h,
		connectionID: id,
		id:           subID,
		ch:           ch,
	}, backlog, nil
}

func (h *Hub) ensureStream(connectionID string) *stream {
	h.mu.RLock()
	current := h.streams[connectionID]
	h.mu.RUnlock()
	if current != nil {
		return current
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	current = h.streams[connectionID]
	if current == nil {
		current = &stream{subs: make(map[uint64]chan Envelope)}
		h.streams[connectionID] = current
	}
	return current
}

func (h *Hub) unsubscribe(connectionID string, id uint64) {
	if h == nil {
		return
	}

	h.mu.RLock()
	stream := h.streams[connectionID]
	h.mu.RUnlock()
	if stream == nil {
		return
	}

	stream.mu.Lock()
	delete(stream.subs, id)
	remaining := len(stream.subs)
	pending := len(stream.buffer)
	stream.mu.Unlock()
	if remaining != 0 || pending != 0 {
		return
	}

	h.mu.Lock()
	current := h.streams[connectionID]
	if current != stream {
		h.mu.Unlock()
		return
	}
	stream.mu.Lock()
	empty := len(stream.subs) == 0 && len(stream.buffer) == 0
	stream.mu.Unlock()
	if empty {
		delete(h.streams, connectionID)
	}
	h.mu.Unlock()
}

func (s *Subscription) Events() <-chan Envelope {
	if s == nil {
		return nil
	}
	return s.ch
}

func (s *Subscription) Close() {
	if s == nil || s.hub == nil {
		return
	}
	s.once.Do(func() {
		s.hub.unsubscribe(s.connectionID, s.id)
	})
}
