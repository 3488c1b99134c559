// Package engine serializes every state mutation through one goroutine.
//
// Commands from the keyboard and reconciliations from the refresh scheduler
// are submitted as intents; the engine applies them one at a time against the
// store and writes the persisted snapshot after each command that changed
// something.
package engine

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rovshanmuradov/coinwatch/internal/command"
	"github.com/rovshanmuradov/coinwatch/internal/domain"
	"github.com/rovshanmuradov/coinwatch/internal/reconcile"
	"github.com/rovshanmuradov/coinwatch/internal/store"
	"go.uber.org/zap"
)

// Persister writes the tracked tokens to the persistence boundary.
type Persister interface {
	Save(tokens []domain.TrackedToken) error
}

// PersisterFunc adapts a function to Persister.
type PersisterFunc func(tokens []domain.TrackedToken) error

func (f PersisterFunc) Save(tokens []domain.TrackedToken) error { return f(tokens) }

// Mutation is one unit of work applied by the engine goroutine.
type Mutation interface {
	Kind() string
	Apply(st *store.Store) (Result, error)
}

// Result of an applied mutation.
type Result struct {
	Outcome   *command.Outcome
	Reconcile *reconcile.Result
	// Persist requests a snapshot write after the mutation.
	Persist bool
	Events  []domain.Event
}

type intent struct {
	id    uuid.UUID
	ctx   context.Context
	m     Mutation
	reply chan reply
}

type reply struct {
	res Result
	err error
}

// Engine owns all writes to a store.
type Engine struct {
	store     *store.Store
	persister Persister
	notify    func(domain.Event)
	logger    *zap.Logger

	intents chan intent
	done    chan struct{}
	once    sync.Once
	running atomic.Bool

	applied uint64
	failed  uint64
}

// Option configures an Engine.
type Option func(*Engine)

// WithNotify sets the callback that receives domain events after each
// applied mutation. It runs on the engine goroutine.
func WithNotify(fn func(domain.Event)) Option {
	return func(e *Engine) { e.notify = fn }
}

// WithQueueSize sets how many intents may wait for the engine.
func WithQueueSize(n int) Option {
	return func(e *Engine) { e.intents = make(chan intent, n) }
}

// New creates an engine. persister may be nil for in-memory use.
func New(st *store.Store, persister Persister, logger *zap.Logger, opts ...Option) *Engine {
	e := &Engine{
		store:     st,
		persister: persister,
		notify:    func(domain.Event) {},
		logger:    logger.Named("engine"),
		intents:   make(chan intent, 16),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Store returns the store for read access.
func (e *Engine) Store() *store.Store { return e.store }

// Run applies intents until ctx is cancelled. An intent being applied when
// ctx ends, including its snapshot write, is finished before Run returns.
// Intents still queued are rejected with domain.ErrEngineClosed.
func (e *Engine) Run(ctx context.Context) error {
	if !e.running.CompareAndSwap(false, true) {
		return errors.New("engine already started")
	}
	e.logger.Debug("Engine started")
	defer e.close()

	for {
		select {
		case <-ctx.Done():
			e.logger.Debug("Engine stopping", zap.Uint64("applied", atomic.LoadUint64(&e.applied)))
			return nil
		case in := <-e.intents:
			in.reply <- e.apply(in)
		}
	}
}

func (e *Engine) close() {
	e.once.Do(func() {
		close(e.done)
		for {
			select {
			case in := <-e.intents:
				in.reply <- reply{err: domain.ErrEngineClosed}
			default:
				return
			}
		}
	})
}

// Submit queues m and waits for its result. It fails with
// domain.ErrEngineClosed once the engine has stopped, or with ctx.Err() when
// ctx ends first. A mutation whose ctx ended while queued is not applied.
func (e *Engine) Submit(ctx context.Context, m Mutation) (Result, error) {
	in := intent{id: uuid.New(), ctx: ctx, m: m, reply: make(chan reply, 1)}

	select {
	case <-e.done:
		return Result{}, domain.ErrEngineClosed
	default:
	}

	select {
	case e.intents <- in:
	case <-e.done:
		return Result{}, domain.ErrEngineClosed
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}

	select {
	case r := <-in.reply:
		return r.res, r.err
	case <-e.done:
		// Run has returned, so an applied intent has its reply buffered.
		select {
		case r := <-in.reply:
			return r.res, r.err
		default:
			return Result{}, domain.ErrEngineClosed
		}
	}
}

func (e *Engine) apply(in intent) reply {
	if err := in.ctx.Err(); err != nil {
		return reply{err: err}
	}

	log := e.logger.With(zap.String("intent_id", in.id.String()), zap.String("kind", in.m.Kind()))
	start := time.Now()

	res, err := in.m.Apply(e.store)
	if err != nil {
		atomic.AddUint64(&e.failed, 1)
		if domain.IsUserError(err) {
			log.Debug("Mutation rejected", zap.Error(err))
		} else {
			log.Warn("Mutation failed", zap.Error(err))
		}
		return reply{err: err}
	}
	atomic.AddUint64(&e.applied, 1)

	for _, ev := range res.Events {
		e.notify(ev)
	}

	if res.Persist && e.persister != nil {
		tokens := e.store.GetAll()
		if perr := e.persister.Save(tokens); perr != nil {
			var pe *domain.PersistenceError
			if !errors.As(perr, &pe) {
				perr = &domain.PersistenceError{Op: "save", Err: perr}
			}
			log.Error("Failed to persist state", zap.Error(perr))
			return reply{res: res, err: perr}
		}
		data := domain.PersistedData{Tokens: len(tokens)}
		if p, ok := e.persister.(interface{ Path() string }); ok {
			data.Path = p.Path()
		}
		e.notify(domain.NewEvent(domain.EventPersisted, data))
	}

	log.Debug("Mutation applied", zap.Duration("took", time.Since(start)))
	return reply{res: res}
}

// Stats returns the number of applied and failed mutations.
func (e *Engine) Stats() (applied, failed uint64) {
	return atomic.LoadUint64(&e.applied), atomic.LoadUint64(&e.failed)
}
