package feed

import (
	"context"
	"sync/atomic"

	"github.com/mroshb/kudos/pkg/logger"
)

// Subscriber receives encoded envelopes. Deliver must not block; it returns
// false when the subscriber cannot keep up. Close must be safe to call more
// than once.
type Subscriber interface {
	Deliver(msg []byte) bool
	Close()
}

// Hub is the registry of connected subscribers. The registry is owned by the
// Run goroutine; every other method talks to it over channels.
type Hub struct {
	register   chan Subscriber
	unregister chan Subscriber
	broadcast  chan []byte
	done       chan struct{}

	subscribers map[Subscriber]struct{}
	count       atomic.Int64
}

func NewHub(buffer int) *Hub {
	if buffer < 1 {
		buffer = 1
	}
	return &Hub{
		register:    make(chan Subscriber),
		unregister:  make(chan Subscriber),
		broadcast:   make(chan []byte, buffer),
		done:        make(chan struct{}),
		subscribers: make(map[Subscriber]struct{}),
	}
}

// Run serves the registry until ctx is done, then closes every subscriber.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		for s := range h.subscribers {
			s.Close()
			delete(h.subscribers, s)
		}
		h.count.Store(0)
		close(h.done)
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case s := <-h.register:
			h.subscribers[s] = struct{}{}
			h.count.Store(int64(len(h.subscribers)))

		case s := <-h.unregister:
			if _, ok := h.subscribers[s]; ok {
				delete(h.subscribers, s)
				s.Close()
				h.count.Store(int64(len(h.subscribers)))
			}

		case msg := <-h.broadcast:
			for s := range h.subscribers {
				if !s.Deliver(msg) {
					logger.Warn("Dropping slow feed subscriber")
					delete(h.subscribers, s)
					s.Close()
				}
			}
			h.count.Store(int64(len(h.subscribers)))
		}
	}
}

// Join adds s to the room. It returns false, after closing s, when the hub
// has stopped.
func (h *Hub) Join(s Subscriber) bool {
	select {
	case h.register <- s:
		return true
	case <-h.done:
		s.Close()
		return false
	}
}

func (h *Hub) Leave(s Subscriber) {
	select {
	case h.unregister <- s:
	case <-h.done:
	}
}

// Publish encodes ev once and queues it for every subscriber. When the queue
// is full the event is dropped.
func (h *Hub) Publish(ev Event) {
	msg, err := ev.Encode()
	if err != nil {
		logger.Error("Failed to encode feed event", "event", ev.Name, "error", err)
		return
	}

	select {
	case h.broadcast <- msg:
	case <-h.done:
	default:
		logger.Warn("Feed queue full, dropping event", "event", ev.Name)
	}
}

// Count is the number of subscribers currently in the room.
func (h *Hub) Count() int {
	return int(h.count.Load())
}

// Done is closed once Run has returned.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}
