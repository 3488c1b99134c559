// Package scheduler drives periodic and manual market refreshes.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rovshanmuradov/coinwatch/internal/domain"
	"github.com/rovshanmuradov/coinwatch/internal/reconcile"
	"go.uber.org/zap"
)

// State of the refresh state machine.
type State int

const (
	Idle State = iota
	Fetching
	Reconciling
	FailedBackoff
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Fetching:
		return "fetching"
	case Reconciling:
		return "reconciling"
	case FailedBackoff:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Fetcher loads quotes for a set of tokens.
type Fetcher interface {
	Quotes(ctx context.Context, ids []domain.TokenID) (reconcile.Snapshot, error)
}

// Sink merges a fetched snapshot into the state.
type Sink interface {
	Reconcile(ctx context.Context, snap reconcile.Snapshot, at time.Time) (reconcile.Result, error)
}

// Status is a point-in-time view of the scheduler for display.
type Status struct {
	State State
	// LastSuccess is the completion time of the last reconciled fetch.
	LastSuccess time.Time
	LastAttempt time.Time
	// LastErr is the error of the last failed fetch, cleared on success.
	LastErr  error
	Last     reconcile.Result
	Fetches  uint64
	Failures uint64
}

// Stale reports whether the last completed fetch did not cover every token.
func (s Status) Stale() bool { return s.Last.Partial() }

// Scheduler runs the Idle → Fetching → Reconciling loop.
type Scheduler struct {
	fetcher  Fetcher
	sink     Sink
	ids      func() []domain.TokenID
	interval time.Duration
	timeout  time.Duration
	logger   *zap.Logger
	onChange func(Status)
	now      func() time.Time

	refresh chan struct{}

	mu     sync.RWMutex
	status Status
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithOnChange registers a callback invoked after every state transition.
// It runs on the scheduler goroutine and must not block.
func WithOnChange(fn func(Status)) Option {
	return func(s *Scheduler) { s.onChange = fn }
}

// WithFetchTimeout bounds a single fetch. Zero means no bound besides the
// run context.
func WithFetchTimeout(d time.Duration) Option {
	return func(s *Scheduler) { s.timeout = d }
}

// New creates a scheduler. ids is called at the start of every fetch to get
// the tokens currently tracked.
func New(fetcher Fetcher, sink Sink, ids func() []domain.TokenID, interval time.Duration, logger *zap.Logger, opts ...Option) *Scheduler {
	s := &Scheduler{
		fetcher:  fetcher,
		sink:     sink,
		ids:      ids,
		interval: interval,
		logger:   logger.Named("scheduler"),
		onChange: func(Status) {},
		now:      time.Now,
		refresh:  make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run fetches once immediately and then on every interval tick or manual
// refresh until ctx is cancelled. A fetch still in flight at cancellation is
// abandoned and its result discarded.
func (s *Scheduler) Run(ctx context.Context) error {
	if s.interval <= 0 {
		return fmt.Errorf("refresh interval must be positive, got %s", s.interval)
	}
	s.logger.Info("Starting refresh scheduler", zap.Duration("interval", s.interval))

	s.cycle(ctx, "startup")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("Refresh scheduler stopped")
			return nil
		case <-ticker.C:
			s.cycle(ctx, "tick")
		case <-s.refresh:
			s.cycle(ctx, "manual")
			ticker.Reset(s.interval)
		}
	}
}

// Refresh requests an immediate fetch. It returns false when a fetch is
// already running or a request is already pending.
func (s *Scheduler) Refresh() bool {
	s.mu.RLock()
	fetching := s.status.State == Fetching
	s.mu.RUnlock()
	if fetching {
		return false
	}

	select {
	case s.refresh <- struct{}{}:
		return true
	default:
		return false
	}
}

// Status returns the current status.
func (s *Scheduler) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

func (s *Scheduler) transition(update func(st *Status)) {
	s.mu.Lock()
	update(&s.status)
	snapshot := s.status
	s.mu.Unlock()
	s.onChange(snapshot)
}

func (s *Scheduler) cycle(ctx context.Context, trigger string) {
	if ctx.Err() != nil {
		return
	}
	ids := s.ids()
	if len(ids) == 0 {
		s.transition(func(st *Status) { st.State = Idle })
		return
	}

	// This cycle serves any manual request queued before it started.
	select {
	case <-s.refresh:
	default:
	}

	started := s.now()
	s.transition(func(st *Status) {
		st.State = Fetching
		st.LastAttempt = started
		st.Fetches++
	})
	log := s.logger.With(zap.String("trigger", trigger), zap.Int("tokens", len(ids)))

	fetchCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	snap, err := s.fetcher.Quotes(fetchCtx, ids)
	if ctx.Err() != nil {
		log.Debug("Discarding fetch result after shutdown")
		return
	}
	if err != nil {
		var fe *domain.FetchError
		if !errors.As(err, &fe) {
			err = &domain.FetchError{Source: "quotes", Err: err}
		}
		log.Warn("Fetch failed", zap.Error(err))
		s.transition(func(st *Status) {
			st.State = FailedBackoff
			st.LastErr = err
			st.Failures++
		})
		return
	}

	s.transition(func(st *Status) { st.State = Reconciling })
	at := s.now()
	res, err := s.sink.Reconcile(ctx, snap, at)
	if err != nil {
		// Only happens when the engine is shutting down.
		log.Debug("Reconcile not applied", zap.Error(err))
		s.transition(func(st *Status) { st.State = Idle })
		return
	}

	if res.Partial() {
		log.Info("Fetch did not cover every token", zap.Int("missing", len(res.Missing)))
	}
	log.Debug("Refresh complete",
		zap.Int("updated", len(res.Updated)),
		zap.Duration("took", at.Sub(started)))

	s.transition(func(st *Status) {
		st.State = Idle
		st.LastSuccess = at
		st.LastErr = nil
		st.Last = res
	})
}
