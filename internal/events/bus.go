// Package events fans domain events out to interested listeners.
package events

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rovshanmuradov/coinwatch/internal/domain"
	"go.uber.org/zap"
)

var (
	ErrBusClosed = errors.New("event bus is shutting down")
	ErrBusFull   = errors.New("event channel full")
)

// topic is an event type, or allTopics for subscribers of every type.
type topic int

const allTopics topic = -1

// Bus is an in-memory asynchronous event bus.
type Bus struct {
	mu        sync.RWMutex
	handlers  map[topic]map[string]Handler
	logger    *zap.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	eventChan chan domain.Event

	dropped uint64
}

// NewBus starts a bus with room for bufferSize pending events.
func NewBus(logger *zap.Logger, bufferSize int) *Bus {
	ctx, cancel := context.WithCancel(context.Background())
	b := &Bus{
		handlers:  make(map[topic]map[string]Handler),
		logger:    logger.Named("event_bus"),
		ctx:       ctx,
		cancel:    cancel,
		eventChan: make(chan domain.Event, bufferSize),
	}

	b.wg.Add(1)
	go b.processEvents()
	return b
}

// Subscribe registers h for one event type.
func (b *Bus) Subscribe(t domain.EventType, h Handler) Subscription {
	return b.subscribe(topic(t), h)
}

// SubscribeAll registers h for every event type.
func (b *Bus) SubscribeAll(h Handler) Subscription {
	return b.subscribe(allTopics, h)
}

func (b *Bus) subscribe(key topic, h Handler) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := uuid.New().String()
	if b.handlers[key] == nil {
		b.handlers[key] = make(map[string]Handler)
	}
	b.handlers[key][id] = h

	b.logger.Debug("Handler subscribed", zap.Int("topic", int(key)), zap.String("subscription_id", id))
	return &subscription{id: id, bus: b, key: key}
}

// Publish queues event without blocking. It is dropped when the queue is full.
func (b *Bus) Publish(event domain.Event) error {
	select {
	case <-b.ctx.Done():
		return ErrBusClosed
	default:
	}

	select {
	case b.eventChan <- event:
		return nil
	default:
		b.mu.Lock()
		b.dropped++
		b.mu.Unlock()
		b.logger.Warn("Event channel full, dropping event", zap.Stringer("event_type", event.Type))
		return ErrBusFull
	}
}

// PublishSync delivers event to its handlers on the calling goroutine.
func (b *Bus) PublishSync(ctx context.Context, event domain.Event) error {
	b.mu.RLock()
	targets := make(map[string]Handler)
	for id, h := range b.handlers[topic(event.Type)] {
		targets[id] = h
	}
	for id, h := range b.handlers[allTopics] {
		targets[id] = h
	}
	b.mu.RUnlock()

	var errs []error
	for id, h := range targets {
		if err := h.Handle(ctx, event); err != nil {
			b.logger.Error("Handler error",
				zap.Stringer("event_type", event.Type),
				zap.String("handler_id", id),
				zap.Error(err))
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%d handler(s) failed: %w", len(errs), errors.Join(errs...))
	}
	return nil
}

// processEvents delivers queued events in order.
func (b *Bus) processEvents() {
	defer b.wg.Done()

	for {
		select {
		case <-b.ctx.Done():
			// Drain remaining events
			for {
				select {
				case event := <-b.eventChan:
					_ = b.PublishSync(context.Background(), event)
				default:
					return
				}
			}
		case event := <-b.eventChan:
			_ = b.PublishSync(b.ctx, event)
		}
	}
}

func (b *Bus) unsubscribe(id string, key topic) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if handlers, ok := b.handlers[key]; ok {
		delete(handlers, id)
		if len(handlers) == 0 {
			delete(b.handlers, key)
		}
	}
	b.logger.Debug("Handler unsubscribed", zap.String("subscription_id", id))
}

// Shutdown stops accepting events, delivers the queued ones and waits for the
// delivery goroutine or ctx, whichever comes first.
func (b *Bus) Shutdown(ctx context.Context) error {
	b.logger.Debug("Shutting down event bus")
	b.cancel()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		b.logger.Warn("Event bus shutdown timeout")
		return ctx.Err()
	}
}

// Stats returns counters for the logs screen.
func (b *Bus) Stats() map[string]interface{} {
	b.mu.RLock()
	defer b.mu.RUnlock()

	subs := 0
	for _, hs := range b.handlers {
		subs += len(hs)
	}
	return map[string]interface{}{
		"buffer_size":    cap(b.eventChan),
		"pending_events": len(b.eventChan),
		"subscriptions":  subs,
		"dropped":        b.dropped,
	}
}
