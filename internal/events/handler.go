package events

import (
	"context"

	"github.com/rovshanmuradov/coinwatch/internal/domain"
)

// Handler reacts to domain events. Handlers run on bus goroutines and must
// not block for long.
type Handler interface {
	Handle(ctx context.Context, event domain.Event) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, event domain.Event) error

func (f HandlerFunc) Handle(ctx context.Context, event domain.Event) error {
	return f(ctx, event)
}

// Subscription is returned by Subscribe.
type Subscription interface {
	Unsubscribe()
}

type subscription struct {
	id  string
	bus *Bus
	key topic
}

func (s *subscription) Unsubscribe() {
	s.bus.unsubscribe(s.id, s.key)
}
