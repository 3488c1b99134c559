package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rovshanmuradov/coinwatch/internal/domain"
	"github.com/rovshanmuradov/coinwatch/internal/reconcile"
	"github.com/rovshanmuradov/coinwatch/internal/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeFetcher struct {
	calls   atomic.Int32
	err     error
	snap    reconcile.Snapshot
	gate    chan struct{} // when set, Quotes waits for it
	entered chan struct{}
}

func (f *fakeFetcher) Quotes(ctx context.Context, ids []domain.TokenID) (reconcile.Snapshot, error) {
	f.calls.Add(1)
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.gate != nil {
		<-f.gate
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.snap, nil
}

// storeSink reconciles straight into a store.
type storeSink struct {
	mu    sync.Mutex
	st    *store.Store
	calls int
}

func (s *storeSink) Reconcile(_ context.Context, snap reconcile.Snapshot, at time.Time) (reconcile.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return reconcile.Reconcile(s.st, snap, at), nil
}

func (s *storeSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func seededStore(t *testing.T) *store.Store {
	t.Helper()
	st := store.New(zap.NewNop())
	_, _, err := st.UpsertMembership("bitcoin", domain.Watchlist, nil)
	require.NoError(t, err)
	_, _, err = st.UpsertMembership("solana", domain.Portfolio,
		&domain.Holding{Amount: decimal.NewFromInt(10), AvgBuyPrice: decimal.NewFromInt(200)})
	require.NoError(t, err)
	return st
}

func runScheduler(t *testing.T, s *Scheduler) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		assert.NoError(t, s.Run(ctx))
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
}

func TestStartupFetchReconciles(t *testing.T) {
	st := seededStore(t)
	f := &fakeFetcher{snap: reconcile.Snapshot{"bitcoin": {Symbol: "BTC", Price: decimal.NewFromInt(50000)}}}
	sink := &storeSink{st: st}
	s := New(f, sink, st.IDs, time.Hour, zap.NewNop())
	runScheduler(t, s)

	require.Eventually(t, func() bool { return !s.Status().LastSuccess.IsZero() }, time.Second, 5*time.Millisecond)

	status := s.Status()
	assert.Equal(t, Idle, status.State)
	assert.NoError(t, status.LastErr)
	assert.True(t, status.Stale(), "solana was not in the snapshot")
	assert.Equal(t, []domain.TokenID{"solana"}, status.Last.Missing)

	btc, _ := st.Get("bitcoin")
	require.NotNil(t, btc.Market)
	assert.Equal(t, "BTC", btc.Market.Symbol)
}

func TestFetchFailureLeavesStateUntouched(t *testing.T) {
	st := seededStore(t)
	before := st.GetAll()
	f := &fakeFetcher{err: errors.New("connection refused")}
	sink := &storeSink{st: st}
	s := New(f, sink, st.IDs, time.Hour, zap.NewNop())
	runScheduler(t, s)

	require.Eventually(t, func() bool { return s.Status().State == FailedBackoff }, time.Second, 5*time.Millisecond)

	status := s.Status()
	var fe *domain.FetchError
	require.ErrorAs(t, status.LastErr, &fe)
	assert.Equal(t, uint64(1), status.Failures)
	assert.Zero(t, sink.count())
	assert.Equal(t, before, st.GetAll())
}

func TestManualRefresh(t *testing.T) {
	st := seededStore(t)
	f := &fakeFetcher{snap: reconcile.Snapshot{}}
	sink := &storeSink{st: st}
	s := New(f, sink, st.IDs, time.Hour, zap.NewNop())
	runScheduler(t, s)

	require.Eventually(t, func() bool { return sink.count() == 1 }, time.Second, 5*time.Millisecond)
	require.Eventually(t, s.Refresh, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool { return sink.count() == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(2), f.calls.Load())
}

func TestRefreshIgnoredWhileFetching(t *testing.T) {
	st := seededStore(t)
	f := &fakeFetcher{
		snap:    reconcile.Snapshot{},
		gate:    make(chan struct{}),
		entered: make(chan struct{}, 4),
	}
	var states []State
	var mu sync.Mutex
	s := New(f, &storeSink{st: st}, st.IDs, time.Hour, zap.NewNop(), WithOnChange(func(status Status) {
		mu.Lock()
		states = append(states, status.State)
		mu.Unlock()
	}))
	runScheduler(t, s)

	<-f.entered
	assert.Equal(t, Fetching, s.Status().State)
	assert.False(t, s.Refresh())
	close(f.gate)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(states) == 3
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(1), f.calls.Load())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []State{Fetching, Reconciling, Idle}, states)
}

// gatedSink holds the first Reconcile until released.
type gatedSink struct {
	storeSink
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (g *gatedSink) Reconcile(ctx context.Context, snap reconcile.Snapshot, at time.Time) (reconcile.Result, error) {
	g.once.Do(func() {
		g.entered <- struct{}{}
		<-g.release
	})
	return g.storeSink.Reconcile(ctx, snap, at)
}

func TestRefreshDuringReconcileRunsAnotherFetch(t *testing.T) {
	st := seededStore(t)
	f := &fakeFetcher{snap: reconcile.Snapshot{}}
	sink := &gatedSink{
		storeSink: storeSink{st: st},
		entered:   make(chan struct{}, 1),
		release:   make(chan struct{}),
	}
	s := New(f, sink, st.IDs, time.Hour, zap.NewNop())
	runScheduler(t, s)

	<-sink.entered
	assert.Equal(t, Reconciling, s.Status().State)
	assert.True(t, s.Refresh())
	close(sink.release)

	require.Eventually(t, func() bool { return sink.count() == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(2), f.calls.Load())
}

func TestShutdownDiscardsInFlightFetch(t *testing.T) {
	st := seededStore(t)
	f := &fakeFetcher{
		snap:    reconcile.Snapshot{"bitcoin": {Price: decimal.NewFromInt(1)}},
		gate:    make(chan struct{}),
		entered: make(chan struct{}, 1),
	}
	sink := &storeSink{st: st}
	s := New(f, sink, st.IDs, time.Hour, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	<-f.entered
	cancel()
	close(f.gate)
	require.NoError(t, <-done)

	assert.Zero(t, sink.count())
	btc, _ := st.Get("bitcoin")
	assert.Nil(t, btc.Market)
}

func TestNothingTrackedSkipsFetch(t *testing.T) {
	st := store.New(zap.NewNop())
	f := &fakeFetcher{}
	s := New(f, &storeSink{st: st}, st.IDs, 10*time.Millisecond, zap.NewNop())
	runScheduler(t, s)

	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, f.calls.Load())
	assert.Equal(t, Idle, s.Status().State)
}

func TestRunRejectsBadInterval(t *testing.T) {
	s := New(&fakeFetcher{}, &storeSink{}, func() []domain.TokenID { return nil }, 0, zap.NewNop())
	assert.Error(t, s.Run(context.Background()))
}
