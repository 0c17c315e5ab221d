package events

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Bus is an in-process publish/subscribe hub for system events.
// Handlers run synchronously on the emitting goroutine and must not block.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[EventType]map[string]func(*Event)
	log         zerolog.Logger
}

// NewBus creates a new event bus.
func NewBus(log zerolog.Logger) *Bus {
	return &Bus{
		subscribers: make(map[EventType]map[string]func(*Event)),
		log:         log.With().Str("service", "event_bus").Logger(),
	}
}

// Subscribe registers a handler for an event type and returns a subscription
// ID that can later be passed to Unsubscribe.
func (b *Bus) Subscribe(eventType EventType, handler func(*Event)) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := uuid.New().String()
	handlers, ok := b.subscribers[eventType]
	if !ok {
		handlers = make(map[string]func(*Event))
		b.subscribers[eventType] = handlers
	}
	handlers[id] = handler

	b.log.Debug().
		Str("event_type", string(eventType)).
		Str("subscription_id", id).
		Msg("Subscriber registered")

	return id
}

// Unsubscribe removes a subscription. Unknown IDs are a no-op.
func (b *Bus) Unsubscribe(eventType EventType, id string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	handlers, ok := b.subscribers[eventType]
	if !ok {
		return
	}
	delete(handlers, id)
	if len(handlers) == 0 {
		delete(b.subscribers, eventType)
	}
}

// SubscriberCount reports how many handlers are registered for an event type.
func (b *Bus) SubscriberCount(eventType EventType) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.subscribers[eventType])
}

// Emit builds an event and delivers it to every subscriber of its type.
func (b *Bus) Emit(eventType EventType, module string, data map[string]interface{}) {
	event := &Event{
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      data,
		Module:    module,
	}

	// Snapshot subscribers so a handler calling Subscribe or Unsubscribe
	// cannot deadlock against the dispatch loop.
	b.mu.RLock()
	handlers := make([]func(*Event), 0, len(b.subscribers[eventType]))
	for _, handler := range b.subscribers[eventType] {
		handlers = append(handlers, handler)
	}
	b.mu.RUnlock()

	for _, handler := range handlers {
		handler(event)
	}
}
