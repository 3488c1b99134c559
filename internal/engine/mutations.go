package engine

import (
	"context"
	"time"

	"github.com/rovshanmuradov/coinwatch/internal/command"
	"github.com/rovshanmuradov/coinwatch/internal/domain"
	"github.com/rovshanmuradov/coinwatch/internal/reconcile"
	"github.com/rovshanmuradov/coinwatch/internal/store"
)

// CommandMutation applies a parsed command.
type CommandMutation struct {
	Command command.Command
}

func (CommandMutation) Kind() string { return "command" }

func (m CommandMutation) Apply(st *store.Store) (Result, error) {
	out, err := command.Apply(st, m.Command)
	if err != nil {
		return Result{}, err
	}
	res := Result{Outcome: &out, Persist: out.Changed}
	if !out.Changed {
		return res, nil
	}

	data := domain.TokenChangedData{ID: m.Command.ID, Membership: out.After}
	switch {
	case out.Removed:
		res.Events = append(res.Events, domain.NewEvent(domain.EventTokenRemoved, data))
	case out.Created:
		res.Events = append(res.Events, domain.NewEvent(domain.EventTokenAdded, data))
	default:
		res.Events = append(res.Events, domain.NewEvent(domain.EventTokenUpdated, data))
	}
	return res, nil
}

// ReconcileMutation merges a market snapshot. It never requests persistence.
type ReconcileMutation struct {
	Snapshot reconcile.Snapshot
	At       time.Time
}

func (ReconcileMutation) Kind() string { return "reconcile" }

func (m ReconcileMutation) Apply(st *store.Store) (Result, error) {
	r := reconcile.Reconcile(st, m.Snapshot, m.At)
	ev := domain.NewEvent(domain.EventMarketReconciled, domain.MarketReconciledData{
		Updated: len(r.Updated),
		Missing: r.Missing,
	})
	return Result{Reconcile: &r, Events: []domain.Event{ev}}, nil
}

// ApplyCommand submits cmd and returns its outcome.
func (e *Engine) ApplyCommand(ctx context.Context, cmd command.Command) (command.Outcome, error) {
	res, err := e.Submit(ctx, CommandMutation{Command: cmd})
	if res.Outcome == nil {
		return command.Outcome{}, err
	}
	return *res.Outcome, err
}

// Exec parses text and applies it. Syntax errors never reach the engine
// goroutine.
func (e *Engine) Exec(ctx context.Context, text string) (command.Outcome, error) {
	cmd, err := command.Parse(text)
	if err != nil {
		return command.Outcome{}, err
	}
	return e.ApplyCommand(ctx, cmd)
}

// Reconcile submits a market snapshot fetched at at.
func (e *Engine) Reconcile(ctx context.Context, snap reconcile.Snapshot, at time.Time) (reconcile.Result, error) {
	res, err := e.Submit(ctx, ReconcileMutation{Snapshot: snap, At: at})
	if err != nil || res.Reconcile == nil {
		return reconcile.Result{}, err
	}
	return *res.Reconcile, nil
}
