package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestShutdownClosesInReverseOrder(t *testing.T) {
	sh := NewShutdownHandler(zap.NewNop(), time.Second)

	var mu sync.Mutex
	var order []string
	record := func(name string) func() error {
		return func() error {
			mu.Lock()
			defer mu.Unlock()
			order = append(order, name)
			return nil
		}
	}
	sh.AddFunc("logs", record("logs"))
	sh.AddFunc("bus", record("bus"))
	sh.AddFunc("ui", record("ui"))

	require.NoError(t, sh.Shutdown(context.Background()))
	assert.Equal(t, []string{"ui", "bus", "logs"}, order)

	// Services are closed once.
	require.NoError(t, sh.Shutdown(context.Background()))
	assert.Len(t, order, 3)
}

func TestShutdownCollectsErrors(t *testing.T) {
	sh := NewShutdownHandler(zap.NewNop(), 50*time.Millisecond)

	block := make(chan struct{})
	defer close(block)
	sh.AddFunc("stuck", func() error {
		<-block
		return nil
	})
	sh.AddFunc("broken", func() error { return errors.New("disk full") })
	closed := false
	sh.AddFunc("first", func() error {
		closed = true
		return nil
	})

	err := sh.Shutdown(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken: disk full")
	assert.Contains(t, err.Error(), "stuck: shutdown timeout")
	assert.True(t, closed, "a failing service does not stop the others")
}
