// Package app assembles the dashboard: state, engine, refresh scheduler,
// event bus and terminal UI, and runs them until the user quits.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rovshanmuradov/coinwatch/internal/coinmarketcap"
	"github.com/rovshanmuradov/coinwatch/internal/config"
	"github.com/rovshanmuradov/coinwatch/internal/domain"
	"github.com/rovshanmuradov/coinwatch/internal/engine"
	"github.com/rovshanmuradov/coinwatch/internal/events"
	"github.com/rovshanmuradov/coinwatch/internal/logger"
	"github.com/rovshanmuradov/coinwatch/internal/scheduler"
	"github.com/rovshanmuradov/coinwatch/internal/store"
	"github.com/rovshanmuradov/coinwatch/internal/ui"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	logBufferSize     = 1000
	logFileMaxSizeMB  = 10
	logFileMaxBackups = 3
	eventBufferSize   = 100
	uiUpdateBuffer    = 100
	fearGreedMaxWait  = 20 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// App is the assembled program.
type App struct {
	cfg    *config.Config
	logger *zap.Logger
	logs   *logger.LogBuffer

	store     *store.Store
	engine    *engine.Engine
	bus       *events.Bus
	updates   *ui.UpdateSender
	client    *coinmarketcap.Client
	scheduler *scheduler.Scheduler
	shutdown  *ShutdownHandler

	// runUI blocks until the interface exits.
	runUI func(ctx context.Context) error
}

// Option configures an App.
type Option func(*options)

type options struct {
	logger     *zap.Logger
	logs       *logger.LogBuffer
	baseURL    string
	httpClient *http.Client
	runUI      func(ctx context.Context, m tea.Model) error
}

// WithLogger replaces the file-backed log buffer. logs may be nil, in which
// case the logs screen is disabled.
func WithLogger(l *zap.Logger, logs *logger.LogBuffer) Option {
	return func(o *options) {
		o.logger = l
		o.logs = logs
	}
}

// WithAPI points the market data client at another server.
func WithAPI(baseURL string, httpClient *http.Client) Option {
	return func(o *options) {
		o.baseURL = baseURL
		o.httpClient = httpClient
	}
}

func withUIRunner(run func(ctx context.Context, m tea.Model) error) Option {
	return func(o *options) { o.runUI = run }
}

// New builds the program from cfg. configPath is where mutations are
// persisted.
func New(cfg *config.Config, configPath string, opts ...Option) (*App, error) {
	if err := cfg.RequireAPIKey(); err != nil {
		return nil, err
	}
	fgLimit, err := cfg.FearGreedLimit()
	if err != nil {
		return nil, err
	}
	tokens, err := cfg.TrackedTokens()
	if err != nil {
		return nil, err
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	a := &App{cfg: cfg}
	if err := a.setupLogging(o); err != nil {
		return nil, err
	}
	a.shutdown = NewShutdownHandler(a.logger, shutdownTimeout)
	if a.logs != nil {
		a.shutdown.Add("log_buffer", a.logs)
	}

	a.store = store.New(a.logger)
	if err := a.store.Load(tokens); err != nil {
		return nil, err
	}

	a.updates = ui.NewUpdateSender(uiUpdateBuffer, a.logger)
	a.shutdown.Add("ui_updates", a.updates)

	// Registered after the updates sender so it drains first.
	a.bus = events.NewBus(a.logger, eventBufferSize)
	a.shutdown.AddFunc("event_bus", func() error {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return a.bus.Shutdown(ctx)
	})
	a.bus.SubscribeAll(events.HandlerFunc(a.updates.HandleEvent))
	a.bus.SubscribeAll(events.HandlerFunc(a.logEvent))

	a.engine = engine.New(a.store, config.NewFilePersister(configPath, cfg), a.logger,
		engine.WithNotify(a.publish))

	clientOpts := []coinmarketcap.Option{coinmarketcap.WithLogger(a.logger)}
	if o.baseURL != "" {
		clientOpts = append(clientOpts, coinmarketcap.WithBaseURL(o.baseURL))
	}
	if o.httpClient != nil {
		clientOpts = append(clientOpts, coinmarketcap.WithHTTPClient(o.httpClient))
	}
	a.client = coinmarketcap.NewClient(cfg.APIKey, clientOpts...)

	a.scheduler = scheduler.New(a.client, a.engine, a.store.IDs, cfg.Interval(), a.logger,
		scheduler.WithOnChange(a.updates.HandleStatus))

	svc := ui.Services{
		State:          a.store,
		Commands:       a.engine,
		Scheduler:      a.scheduler,
		FearGreed:      fearGreedRetry{client: a.client, maxElapsed: fearGreedMaxWait},
		FearGreedLimit: fgLimit,
	}
	if a.logs != nil {
		svc.Logs = a.logs
	}

	run := o.runUI
	if run == nil {
		run = a.runTerminal
	}
	a.runUI = func(ctx context.Context) error {
		svc.Ctx = ctx
		return run(ctx, NewModel(svc, a.updates, a.logger))
	}

	a.logger.Info("Application initialized",
		zap.Int("tokens", a.store.Len()),
		zap.Duration("refresh_interval", cfg.Interval()),
		zap.String("config", configPath))
	return a, nil
}

func (a *App) setupLogging(o options) error {
	if o.logger != nil {
		a.logger = o.logger
		a.logs = o.logs
		return nil
	}

	spill, err := logger.RotatingFile(a.cfg.LogFile, logFileMaxSizeMB, logFileMaxBackups)
	if err != nil {
		return err
	}
	a.logs = logger.NewLogBuffer(logBufferSize, spill, nil)
	l, err := logger.CreateTUILogger(a.cfg.DebugLogging, a.logs)
	if err != nil {
		return err
	}
	a.logger = l
	return nil
}

// Logger returns the application logger.
func (a *App) Logger() *zap.Logger { return a.logger }

// Store returns the tracked token state.
func (a *App) Store() *store.Store { return a.store }

// Scheduler returns the refresh scheduler.
func (a *App) Scheduler() *scheduler.Scheduler { return a.scheduler }

// Run starts the engine, the scheduler and the UI. It returns when the UI
// exits or ctx is cancelled, after every background part has stopped and
// the registered resources are closed.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.engine.Run(gctx)
	})
	g.Go(func() error {
		return a.scheduler.Run(gctx)
	})
	g.Go(func() error {
		// Leaving the UI ends the program.
		defer cancel()
		return a.runUI(gctx)
	})

	runErr := g.Wait()
	applied, failed := a.engine.Stats()
	a.logger.Info("Application stopped",
		zap.Uint64("mutations_applied", applied),
		zap.Uint64("mutations_failed", failed))

	closeErr := a.shutdown.Shutdown(context.Background())
	return errors.Join(runErr, closeErr)
}

func (a *App) runTerminal(ctx context.Context, model tea.Model) error {
	recovery := ui.NewRecoveryHandler(a.logger, func() (tea.Model, []tea.ProgramOption) {
		return ui.NewSafeUIWrapper(model, a.logger), []tea.ProgramOption{
			tea.WithAltScreen(),
			tea.WithMouseCellMotion(),
		}
	})
	return recovery.Run(ctx)
}

func (a *App) publish(event domain.Event) {
	if err := a.bus.Publish(event); err != nil {
		a.logger.Warn("Failed to publish event", zap.Stringer("type", event.Type), zap.Error(err))
	}
}

func (a *App) logEvent(_ context.Context, event domain.Event) error {
	a.logger.Debug("Domain event", zap.Stringer("type", event.Type), zap.Any("data", event.Data))
	return nil
}

type fearGreedRetry struct {
	client     *coinmarketcap.Client
	maxElapsed time.Duration
}

func (f fearGreedRetry) FearGreed(ctx context.Context, limit int) (domain.FearGreedSeries, error) {
	series, err := f.client.FearGreedWithRetry(ctx, limit, f.maxElapsed)
	if err != nil {
		return nil, fmt.Errorf("fear and greed: %w", err)
	}
	return series, nil
}
