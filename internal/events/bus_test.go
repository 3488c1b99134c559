package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rovshanmuradov/coinwatch/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestBusDeliversByType(t *testing.T) {
	bus := NewBus(zap.NewNop(), 16)

	var mu sync.Mutex
	var added, all []domain.EventType
	bus.Subscribe(domain.EventTokenAdded, HandlerFunc(func(_ context.Context, e domain.Event) error {
		mu.Lock()
		defer mu.Unlock()
		added = append(added, e.Type)
		return nil
	}))
	bus.SubscribeAll(HandlerFunc(func(_ context.Context, e domain.Event) error {
		mu.Lock()
		defer mu.Unlock()
		all = append(all, e.Type)
		return nil
	}))

	require.NoError(t, bus.Publish(domain.NewEvent(domain.EventTokenAdded, nil)))
	require.NoError(t, bus.Publish(domain.NewEvent(domain.EventMarketReconciled, nil)))
	require.NoError(t, bus.Shutdown(context.Background()))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []domain.EventType{domain.EventTokenAdded}, added)
	assert.Equal(t, []domain.EventType{domain.EventTokenAdded, domain.EventMarketReconciled}, all)
}

func TestBusUnsubscribe(t *testing.T) {
	bus := NewBus(zap.NewNop(), 4)
	calls := 0
	sub := bus.SubscribeAll(HandlerFunc(func(context.Context, domain.Event) error {
		calls++
		return nil
	}))
	sub.Unsubscribe()

	require.NoError(t, bus.PublishSync(context.Background(), domain.NewEvent(domain.EventTokenRemoved, nil)))
	assert.Zero(t, calls)
	assert.Equal(t, 0, bus.Stats()["subscriptions"])
	require.NoError(t, bus.Shutdown(context.Background()))
}

func TestBusHandlerErrors(t *testing.T) {
	bus := NewBus(zap.NewNop(), 4)
	defer bus.Shutdown(context.Background())

	boom := errors.New("boom")
	bus.SubscribeAll(HandlerFunc(func(context.Context, domain.Event) error { return boom }))

	err := bus.PublishSync(context.Background(), domain.NewEvent(domain.EventPersisted, nil))
	assert.ErrorIs(t, err, boom)
}

func TestBusRejectsAfterShutdown(t *testing.T) {
	bus := NewBus(zap.NewNop(), 4)
	require.NoError(t, bus.Shutdown(context.Background()))
	assert.ErrorIs(t, bus.Publish(domain.NewEvent(domain.EventTokenAdded, nil)), ErrBusClosed)
}

func TestBusDropsWhenFull(t *testing.T) {
	bus := NewBus(zap.NewNop(), 1)
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	bus.SubscribeAll(HandlerFunc(func(context.Context, domain.Event) error {
		select {
		case started <- struct{}{}:
		default:
		}
		<-release
		return nil
	}))

	require.NoError(t, bus.Publish(domain.NewEvent(domain.EventTokenAdded, nil)))
	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("handler did not start")
	}
	require.NoError(t, bus.Publish(domain.NewEvent(domain.EventTokenAdded, nil)))
	assert.ErrorIs(t, bus.Publish(domain.NewEvent(domain.EventTokenAdded, nil)), ErrBusFull)

	close(release)
	require.NoError(t, bus.Shutdown(context.Background()))
	assert.Equal(t, uint64(1), bus.Stats()["dropped"])
}
