package event

import (
	"fmt"
	"runtime/debug"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/Iron-Ham/teamforge/internal/logging"
)

// Handler receives one published event.
type Handler func(Event)

// wildcard is the key of handlers that receive every event.
const wildcard = "*"

type subscription struct {
	id      string
	handler Handler
}

// Bus is a synchronous publish/subscribe hub. Handlers run on the
// publishing goroutine, so a pipeline stage's event is fully handled
// before the next stage starts.
type Bus struct {
	mu     sync.RWMutex
	byType map[string][]subscription
	typeOf map[string]string // subscription id -> key in byType
	logger *logging.Logger
}

// BusOption configures a Bus.
type BusOption func(*Bus)

// WithBusLogger sets where recovered handler panics are reported.
func WithBusLogger(l *logging.Logger) BusOption {
	return func(b *Bus) {
		if l != nil {
			b.logger = l
		}
	}
}

// NewBus creates an empty bus.
func NewBus(opts ...BusOption) *Bus {
	b := &Bus{
		byType: make(map[string][]subscription),
		typeOf: make(map[string]string),
		logger: logging.NopLogger(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers handler for events of eventType and returns an ID
// for Unsubscribe.
func (b *Bus) Subscribe(eventType string, handler Handler) string {
	id := uuid.NewString()

	b.mu.Lock()
	defer b.mu.Unlock()
	b.byType[eventType] = append(b.byType[eventType], subscription{id: id, handler: handler})
	b.typeOf[id] = eventType
	return id
}

// SubscribeAll registers handler for every event.
func (b *Bus) SubscribeAll(handler Handler) string {
	return b.Subscribe(wildcard, handler)
}

// Unsubscribe removes a subscription. It reports whether id was known.
func (b *Bus) Unsubscribe(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	key, ok := b.typeOf[id]
	if !ok {
		return false
	}
	delete(b.typeOf, id)
	b.byType[key] = slices.DeleteFunc(slices.Clone(b.byType[key]), func(s subscription) bool {
		return s.id == id
	})
	if len(b.byType[key]) == 0 {
		delete(b.byType, key)
	}
	return true
}

// Publish hands event to the handlers of its type, then to the wildcard
// handlers, each in subscription order. A handler that panics is logged
// and the remaining handlers still run.
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	targets := slices.Concat(b.byType[event.EventType()], b.byType[wildcard])
	b.mu.RUnlock()

	for _, s := range targets {
		b.deliver(s.handler, event)
	}
}

func (b *Bus) deliver(handler Handler, event Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked",
				"event_type", event.EventType(),
				"panic", fmt.Sprint(r),
				"stack", string(debug.Stack()),
			)
		}
	}()
	handler(event)
}

// Clear removes every subscription.
func (b *Bus) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	clear(b.byType)
	clear(b.typeOf)
}

// SubscriptionCount returns the number of active subscriptions.
func (b *Bus) SubscriptionCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.typeOf)
}
