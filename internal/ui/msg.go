package ui

import (
	"time"

	"github.com/rovshanmuradov/coinwatch/internal/command"
	"github.com/rovshanmuradov/coinwatch/internal/domain"
	"github.com/rovshanmuradov/coinwatch/internal/scheduler"
)

// Tea message types for UI communication

// RouterMsg represents navigation between screens
type RouterMsg struct {
	To Route
}

// DomainEventMsg wraps engine events for the UI
type DomainEventMsg struct {
	Event domain.Event
}

// StateMsg carries a fresh copy of the tracked tokens.
type StateMsg struct {
	Tokens []domain.TrackedToken
	At     time.Time
}

// SchedulerStatusMsg is sent on every refresh scheduler transition.
type SchedulerStatusMsg struct {
	Status scheduler.Status
}

// FearGreedMsg carries the result of a Fear & Greed fetch.
type FearGreedMsg struct {
	Series domain.FearGreedSeries
	Err    error
}

// CommandResultMsg is the outcome of a command typed in command mode.
// Outcome is meaningful even when Err is a persistence error.
type CommandResultMsg struct {
	Input  string
	Result command.Outcome
	Err    error
}

// LogsTickMsg asks the logs screen to reload the buffer.
type LogsTickMsg struct{}

// Route represents different screens in the application
type Route int

const (
	RouteDashboard Route = iota
	RouteHelp
	RouteLogs
)

// String returns the string representation of the route
func (r Route) String() string {
	switch r {
	case RouteDashboard:
		return "dashboard"
	case RouteHelp:
		return "help"
	case RouteLogs:
		return "logs"
	default:
		return "unknown"
	}
}
