package ui

import (
	"context"

	"github.com/rovshanmuradov/coinwatch/internal/command"
	"github.com/rovshanmuradov/coinwatch/internal/domain"
	"github.com/rovshanmuradov/coinwatch/internal/logger"
	"github.com/rovshanmuradov/coinwatch/internal/scheduler"
)

// StateReader returns copies of the tracked tokens.
type StateReader interface {
	GetAll() []domain.TrackedToken
}

// Commander applies command-mode input.
type Commander interface {
	Exec(ctx context.Context, text string) (command.Outcome, error)
}

// Refresher controls the refresh scheduler.
type Refresher interface {
	Refresh() bool
	Status() scheduler.Status
}

// FearGreedSource loads the Fear & Greed history.
type FearGreedSource interface {
	FearGreed(ctx context.Context, limit int) (domain.FearGreedSeries, error)
}

// LogSource exposes the in-memory log ring.
type LogSource interface {
	GetRecentLogs(limit int) []logger.LogEntry
}

// Services is everything the screens need from the rest of the program.
type Services struct {
	Ctx       context.Context
	State     StateReader
	Commands  Commander
	Scheduler Refresher
	FearGreed FearGreedSource
	Logs      LogSource

	FearGreedLimit int
}

// Context returns the program context, never nil.
func (s Services) Context() context.Context {
	if s.Ctx == nil {
		return context.Background()
	}
	return s.Ctx
}
