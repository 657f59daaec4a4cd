// Package bus provides an internal event bus for tracking session events
package bus

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// EventType identifies different event types
type EventType string

// Event types for Hologram
const (
	// Detector connection events
	EventTypeDetectorConnected    EventType = "detector.connected"
	EventTypeDetectorDisconnected EventType = "detector.disconnected"

	// Tracking events
	EventTypeFaceFound EventType = "tracking.face_found"
	EventTypeFaceLost  EventType = "tracking.face_lost"
	EventTypeBodyFound EventType = "tracking.body_found"
	EventTypeBodyLost  EventType = "tracking.body_lost"

	// Rig events
	EventTypeRigLoaded      EventType = "rig.loaded"
	EventTypeAttachment     EventType = "rig.attachment"
	EventTypeOptionsChanged EventType = "rig.options_changed"

	// Session events
	EventTypeSessionStarted EventType = "session.started"
	EventTypeSessionStopped EventType = "session.stopped"
)

// AllEventTypes lists every event type published on the bus.
var AllEventTypes = []EventType{
	EventTypeDetectorConnected,
	EventTypeDetectorDisconnected,
	EventTypeFaceFound,
	EventTypeFaceLost,
	EventTypeBodyFound,
	EventTypeBodyLost,
	EventTypeRigLoaded,
	EventTypeAttachment,
	EventTypeOptionsChanged,
	EventTypeSessionStarted,
	EventTypeSessionStopped,
}

// Event represents a bus event
type Event struct {
	Type    EventType
	Session string
	Time    time.Time
	Data    map[string]any
}

// Handler is a function that handles events
type Handler func(Event)

type subscription struct {
	id      uint64
	handler Handler
}

// EventBus is a simple pub/sub event bus
type EventBus struct {
	mu       sync.RWMutex
	nextID   uint64
	handlers map[EventType][]subscription
}

// NewEventBus creates a new event bus
func NewEventBus() *EventBus {
	return &EventBus{
		handlers: make(map[EventType][]subscription),
	}
}

// Subscribe adds a handler for an event type. The returned function removes
// it again.
func (b *EventBus) Subscribe(eventType EventType, handler Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.handlers[eventType] = append(b.handlers[eventType], subscription{id: id, handler: handler})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		subs := b.handlers[eventType]
		for i, s := range subs {
			if s.id == id {
				b.handlers[eventType] = append(subs[:i:i], subs[i+1:]...)
				return
			}
		}
	}
}

// SubscribeMultiple adds a handler for multiple event types
func (b *EventBus) SubscribeMultiple(eventTypes []EventType, handler Handler) func() {
	cancels := make([]func(), 0, len(eventTypes))
	for _, et := range eventTypes {
		cancels = append(cancels, b.Subscribe(et, handler))
	}
	return func() {
		for _, c := range cancels {
			c()
		}
	}
}

// SubscribeAll adds a handler for every event type
func (b *EventBus) SubscribeAll(handler Handler) func() {
	return b.SubscribeMultiple(AllEventTypes, handler)
}

// LogEvents writes every event to logger at debug level until the returned
// function is called.
func LogEvents(b *EventBus, logger zerolog.Logger) func() {
	logger = logger.With().Str("component", "bus").Logger()
	return b.SubscribeAll(func(e Event) {
		ev := logger.Debug().Str("event", string(e.Type)).Time("at", e.Time)
		if e.Session != "" {
			ev = ev.Str("session", e.Session)
		}
		if len(e.Data) > 0 {
			ev = ev.Fields(e.Data)
		}
		ev.Msg("Event")
	})
}

func (b *EventBus) snapshot(event *Event) []Handler {
	if event.Time.IsZero() {
		event.Time = time.Now()
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	subs := b.handlers[event.Type]
	handlers := make([]Handler, len(subs))
	for i, s := range subs {
		handlers[i] = s.handler
	}
	return handlers
}

// Publish sends an event to all subscribed handlers without waiting for
// them. The frame loop publishes this way.
func (b *EventBus) Publish(event Event) {
	for _, handler := range b.snapshot(&event) {
		go handler(event)
	}
}

// PublishSync sends an event and waits for all handlers to complete
func (b *EventBus) PublishSync(event Event) {
	handlers := b.snapshot(&event)

	var wg sync.WaitGroup
	for _, handler := range handlers {
		wg.Add(1)
		go func(h Handler) {
			defer wg.Done()
			h(event)
		}(handler)
	}
	wg.Wait()
}

// Clear removes all handlers
func (b *EventBus) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = make(map[EventType][]subscription)
}
