// Package messaging provides in-process domain event delivery.
package messaging

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"loom-backend/domain/events"
)

// EventHandler consumes one domain event
type EventHandler func(ctx context.Context, event events.DomainEvent)

// EventBus is a synchronous in-memory dispatcher. Handlers run inline on
// the publishing goroutine; a panicking handler is recovered and logged so
// one bad subscriber cannot break a command.
type EventBus struct {
	mu       sync.RWMutex
	handlers map[string][]EventHandler
	logger   *zap.Logger
}

// NewEventBus creates an event bus with no subscriptions
func NewEventBus(logger *zap.Logger) *EventBus {
	return &EventBus{
		handlers: make(map[string][]EventHandler),
		logger:   logger,
	}
}

// Subscribe registers a handler for an event type such as "node.forked".
// The wildcard "*" receives every event.
func (b *EventBus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// Publish delivers events to their subscribers in order
func (b *EventBus) Publish(ctx context.Context, toPublish ...events.DomainEvent) error {
	for _, event := range toPublish {
		if event == nil {
			continue
		}

		b.mu.RLock()
		matched := append([]EventHandler{}, b.handlers[event.GetEventType()]...)
		matched = append(matched, b.handlers["*"]...)
		b.mu.RUnlock()

		for _, handler := range matched {
			b.dispatch(ctx, handler, event)
		}
	}
	return nil
}

func (b *EventBus) dispatch(ctx context.Context, handler EventHandler, event events.DomainEvent) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked",
				zap.String("event_type", event.GetEventType()),
				zap.Any("panic", r))
		}
	}()
	handler(ctx, event)
}
