package api

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/alphonsez1/ARSmoothDesk/internal/logger"
)

// StatusEvent is one pipeline status notification as exposed over the
// websocket feed.
type StatusEvent struct {
	Kind    string    `json:"kind"`
	Backend string    `json:"backend,omitempty"`
	Error   string    `json:"error,omitempty"`
	Time    time.Time `json:"time"`
}

// StatusFeed fans pipeline status events out to websocket subscribers.
// Slow subscribers drop events rather than block the pipeline.
type StatusFeed struct {
	mu      sync.RWMutex
	clients map[string]chan StatusEvent
	last    *StatusEvent
}

// NewStatusFeed creates an empty feed.
func NewStatusFeed() *StatusFeed {
	return &StatusFeed{
		clients: make(map[string]chan StatusEvent),
	}
}

// Subscribe registers a new subscriber and returns its id and channel.
// The channel delivers the most recent event immediately when one
// exists.
func (f *StatusFeed) Subscribe() (string, <-chan StatusEvent) {
	id := uuid.NewString()
	ch := make(chan StatusEvent, 8)

	f.mu.Lock()
	if f.last != nil {
		ch <- *f.last
	}
	f.clients[id] = ch
	count := len(f.clients)
	f.mu.Unlock()

	logger.WithComponent("status-feed").Debug().
		Str("client", id).
		Int("clients", count).
		Msg("Status subscriber added")
	return id, ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (f *StatusFeed) Unsubscribe(id string) {
	f.mu.Lock()
	if ch, ok := f.clients[id]; ok {
		delete(f.clients, id)
		close(ch)
	}
	f.mu.Unlock()
}

// Publish delivers an event to all subscribers.
func (f *StatusFeed) Publish(ev StatusEvent) {
	if ev.Time.IsZero() {
		ev.Time = time.Now()
	}

	f.mu.Lock()
	f.last = &ev
	for _, ch := range f.clients {
		select {
		case ch <- ev:
		default:
		}
	}
	f.mu.Unlock()
}

// Close disconnects all subscribers.
func (f *StatusFeed) Close() {
	f.mu.Lock()
	for id, ch := range f.clients {
		delete(f.clients, id)
		close(ch)
	}
	f.mu.Unlock()
}
