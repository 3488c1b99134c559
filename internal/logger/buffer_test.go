package logger

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memSpill struct {
	mu     sync.Mutex
	buf    bytes.Buffer
	closed bool
}

func (m *memSpill) Write(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.buf.Write(p)
}

func (m *memSpill) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *memSpill) lines(t *testing.T) []LogEntry {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []LogEntry
	sc := bufio.NewScanner(bytes.NewReader(m.buf.Bytes()))
	for sc.Scan() {
		var e LogEntry
		require.NoError(t, json.Unmarshal(sc.Bytes(), &e))
		out = append(out, e)
	}
	return out
}

func TestLogBufferConcurrentAccess(t *testing.T) {
	spill := &memSpill{}
	buffer := NewLogBuffer(100, spill, zap.NewNop())

	done := buffer.StartPeriodicFlush(10 * time.Millisecond)
	defer close(done)

	var wg sync.WaitGroup
	const goroutines, perGoroutine = 10, 100

	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func(id int) {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				fields := map[string]interface{}{"goroutine": id, "iteration": j}
				assert.NoError(t, buffer.Add("info", fmt.Sprintf("log %d/%d", id, j), fields))
			}
		}(i)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 20; i++ {
			_ = buffer.GetRecentLogs(10)
			_, _ = buffer.GetStats()
		}
	}()
	wg.Wait()

	total, spilled := buffer.GetStats()
	assert.Equal(t, uint64(goroutines*perGoroutine), total)
	assert.Equal(t, total-100, spilled)

	require.NoError(t, buffer.Close())
	assert.Len(t, spill.lines(t), goroutines*perGoroutine, "close writes everything still in memory")
	assert.True(t, spill.closed)
}

func TestLogBufferRingBehavior(t *testing.T) {
	spill := &memSpill{}
	buffer := NewLogBuffer(5, spill, zap.NewNop())

	for i := 0; i < 10; i++ {
		require.NoError(t, buffer.Add("info", fmt.Sprintf("Log %d", i), nil))
	}

	logs := buffer.GetRecentLogs(0)
	require.Len(t, logs, 5)
	assert.Equal(t, "Log 5", logs[0].Message)
	assert.Equal(t, "Log 9", logs[4].Message)

	last := buffer.GetRecentLogs(2)
	require.Len(t, last, 2)
	assert.Equal(t, "Log 8", last[0].Message)
	assert.Equal(t, "Log 9", last[1].Message)

	require.NoError(t, buffer.Flush())
	spilled := spill.lines(t)
	require.Len(t, spilled, 5)
	assert.Equal(t, "Log 0", spilled[0].Message, "oldest entry leaves the ring first")
	assert.Equal(t, "Log 4", spilled[4].Message)
}

func TestLogBufferPartiallyFilled(t *testing.T) {
	buffer := NewLogBuffer(5, &memSpill{}, zap.NewNop())
	require.NoError(t, buffer.Add("info", "a", nil))
	require.NoError(t, buffer.Add("warn", "b", nil))

	logs := buffer.GetRecentLogs(10)
	require.Len(t, logs, 2)
	assert.Equal(t, "a", logs[0].Message)
	assert.Equal(t, "warn", logs[1].Level)
}

func TestTUILoggerWritesIntoBuffer(t *testing.T) {
	buffer := NewLogBuffer(10, &memSpill{}, zap.NewNop())
	log, err := CreateTUILogger(false, buffer)
	require.NoError(t, err)

	log.Named("scheduler").Info("Quotes fetched", zap.Int("count", 3))
	log.Debug("hidden")

	logs := buffer.GetRecentLogs(0)
	require.Len(t, logs, 1)
	assert.Equal(t, "info", logs[0].Level)
	assert.Equal(t, "Quotes fetched", logs[0].Message)
	assert.Equal(t, float64(3), logs[0].Fields["count"])
	assert.Equal(t, "scheduler", logs[0].Fields["logger"])
	assert.WithinDuration(t, time.Now(), logs[0].Timestamp, time.Minute)

	_, err = CreateTUILogger(false, nil)
	assert.Error(t, err)
}

func TestFormatMessage(t *testing.T) {
	msg := FormatMessage("Quotes fetched", zap.Int("requested", 4), zap.Int("received", 3))
	assert.Contains(t, msg, "Fetched quotes for 3/4 tokens")

	msg = FormatMessage("Fetch failed", zap.Error(errors.New("boom")))
	assert.Contains(t, msg, "Fetch failed: boom")

	msg = FormatMessage("Config saved", zap.String("path", "config.json"))
	assert.Contains(t, msg, "config.json")

	assert.Equal(t, "something else", FormatMessage("something else"))
}
