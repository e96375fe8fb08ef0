// Package feed fans user change events out to live subscribers such as
// WebSocket clients.
package feed

import (
	"log"
	"sync"

	"github.com/alfagnish/usuarios/internal/users"
	"github.com/google/uuid"
)

// EventType names the mutation an Event describes.
type EventType string

const (
	EventCreated EventType = "created"
	EventUpdated EventType = "updated"
	EventDeleted EventType = "deleted"
)

// Event is a single change to the user collection.
type Event struct {
	Type EventType  `json:"type"`
	User users.User `json:"user"`
}

// subscriberBuffer is how many events a subscriber may lag behind before
// new events are dropped for it.
const subscriberBuffer = 32

// Subscription receives events until Close is called.
type Subscription struct {
	ID     string
	Events <-chan Event

	hub  *Hub
	ch   chan Event
	once sync.Once
}

// Close detaches the subscription from its hub and closes Events.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.remove(s.ID)
	})
}

// Hub is a thread-safe registry of subscribers.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]*Subscription
}

// NewHub creates a hub with no subscribers.
func NewHub() *Hub {
	return &Hub{subs: make(map[string]*Subscription)}
}

// Subscribe registers a new subscriber.
func (h *Hub) Subscribe() *Subscription {
	ch := make(chan Event, subscriberBuffer)
	sub := &Subscription{
		ID:     uuid.New().String(),
		Events: ch,
		hub:    h,
		ch:     ch,
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.subs[sub.ID] = sub
	return sub
}

// Publish delivers e to every subscriber without blocking. Subscribers
// whose buffer is full miss the event.
func (h *Hub) Publish(e Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for id, sub := range h.subs {
		select {
		case sub.ch <- e:
		default:
			log.Printf("feed: subscriber %s is lagging, dropped %s event for user %d", id, e.Type, e.User.ID)
		}
	}
}

// Len returns the number of active subscribers.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

func (h *Hub) remove(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	sub, ok := h.subs[id]
	if !ok {
		return
	}
	delete(h.subs, id)
	close(sub.ch)
}
