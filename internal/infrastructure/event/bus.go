package event

import (
	"context"
	"sync"

	"github.com/institute/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// queueCapacity bounds the pending event backlog of a started bus. Publish
// blocks once the worker falls this far behind.
const queueCapacity = 256

// InMemoryEventBus implements EventBus with in-memory pub/sub. A started bus
// hands events to a worker goroutine so slow receivers (mail providers) never
// sit on the request path; before Start, or after Stop, delivery happens
// inline on the publishing goroutine. Either way a failing handler is logged
// and never fails the publish, so a broken receipt email cannot roll back a
// recorded payment.
type InMemoryEventBus struct {
	registry *HandlerRegistry
	logger   *zap.Logger

	mu      sync.RWMutex
	running bool
	queue   chan shared.DomainEvent
	wg      sync.WaitGroup
}

// NewInMemoryEventBus creates a new in-memory event bus
func NewInMemoryEventBus(logger *zap.Logger) *InMemoryEventBus {
	return &InMemoryEventBus{
		registry: NewHandlerRegistry(),
		logger:   logger,
	}
}

// Publish hands events to the worker when the bus is running, or delivers
// them inline otherwise. It never returns a handler error.
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	for _, event := range events {
		b.mu.RLock()
		if b.running {
			b.queue <- event
			b.mu.RUnlock()
			continue
		}
		b.mu.RUnlock()
		b.deliver(ctx, event)
	}
	return nil
}

// Subscribe registers a handler for specific event types
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	// If handler specifies its own event types, use those
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	b.registry.Register(handler, eventTypes...)
	b.logger.Debug("handler subscribed",
		zap.Strings("event_types", eventTypes),
	)
}

// Unsubscribe removes a handler
func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	b.registry.Unregister(handler)
	b.logger.Debug("handler unsubscribed")
}

// Start launches the delivery worker. Starting a running bus is a no-op.
func (b *InMemoryEventBus) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.running {
		return nil
	}
	b.queue = make(chan shared.DomainEvent, queueCapacity)
	b.running = true
	b.wg.Add(1)
	go b.work(b.queue)
	b.logger.Info("event bus started")
	return nil
}

// Stop drains the queue and waits for the worker to finish. Events published
// after Stop returns are delivered inline again.
func (b *InMemoryEventBus) Stop(ctx context.Context) error {
	b.mu.Lock()
	if !b.running {
		b.mu.Unlock()
		return nil
	}
	b.running = false
	close(b.queue)
	b.mu.Unlock()

	b.wg.Wait()
	b.logger.Info("event bus stopped")
	return nil
}

// work delivers queued events until the queue is closed and drained.
func (b *InMemoryEventBus) work(queue <-chan shared.DomainEvent) {
	defer b.wg.Done()
	for event := range queue {
		b.deliver(context.Background(), event)
	}
}

// deliver fans an event out to every handler registered for its type.
func (b *InMemoryEventBus) deliver(ctx context.Context, event shared.DomainEvent) {
	handlers := b.registry.GetHandlers(event.EventType())

	for _, handler := range handlers {
		if err := b.dispatchToHandler(ctx, handler, event); err != nil {
			// Log error but continue with other handlers
			b.logger.Error("handler failed to process event",
				zap.String("event_type", event.EventType()),
				zap.String("event_id", event.EventID().String()),
				zap.Error(err),
			)
		}
	}
}

// dispatchToHandler safely dispatches an event to a handler
func (b *InMemoryEventBus) dispatchToHandler(ctx context.Context, handler shared.EventHandler, event shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("handler panicked",
				zap.String("event_type", event.EventType()),
				zap.Any("panic", r),
			)
		}
	}()

	return handler.Handle(ctx, event)
}

// Ensure InMemoryEventBus implements EventBus
var _ shared.EventBus = (*InMemoryEventBus)(nil)
