package command

import (
	"fmt"

	"github.com/rovshanmuradov/coinwatch/internal/domain"
)

// Store is the part of the state store commands operate on.
type Store interface {
	Get(id domain.TokenID) (domain.TrackedToken, bool)
	UpsertMembership(id domain.TokenID, m domain.Membership, holding *domain.Holding) (domain.TrackedToken, bool, error)
}

// Outcome reports what applying a command did.
type Outcome struct {
	Command Command
	Token   domain.TrackedToken
	Before  domain.Membership
	After   domain.Membership
	// Created is true when the token did not exist before.
	Created bool
	Removed bool
	// Changed is false for commands with nothing to do.
	Changed bool
}

// Describe returns a one-line, user facing summary.
func (o Outcome) Describe() string {
	id := o.Command.ID
	switch {
	case !o.Changed:
		return fmt.Sprintf("%s: nothing to change", id)
	case o.Removed:
		return fmt.Sprintf("removed %s", id)
	case o.Command.Op == Remove:
		return fmt.Sprintf("removed %s from %s", id, o.Command.Flags)
	case o.Command.Holding != nil:
		return fmt.Sprintf("%s: %s @ %s in portfolio", id, o.Command.Holding.Amount, o.Command.Holding.AvgBuyPrice)
	default:
		return fmt.Sprintf("added %s to %s", id, o.Command.Flags)
	}
}

// Apply executes cmd against st. Each flag is handled independently: add
// sets the named flags, rm clears them, and untouched flags keep their value.
// A portfolio add replaces the previous holding. Commands that change
// nothing, including rm of an unknown token, succeed with Changed false.
//
// Apply is not safe for concurrent use against the same store; callers
// serialize it.
func Apply(st Store, cmd Command) (Outcome, error) {
	if cmd.ID == "" {
		return Outcome{}, &domain.ValidationError{Field: "id", Msg: "must not be empty"}
	}
	if cmd.Op == Add && cmd.Flags.Has(domain.Portfolio) && cmd.Holding == nil {
		return Outcome{}, &domain.ValidationError{Field: "holding", Msg: "amount and price are required for the portfolio"}
	}

	current, exists := st.Get(cmd.ID)
	out := Outcome{Command: cmd, Token: current, Before: current.Membership()}

	next := out.Before
	holding := current.Holding
	switch cmd.Op {
	case Add:
		next |= cmd.Flags
		if cmd.Flags.Has(domain.Portfolio) {
			holding = cmd.Holding
		}
	case Remove:
		if !exists {
			out.After = domain.NoMembership
			return out, nil
		}
		next &^= cmd.Flags
		if !next.Has(domain.Portfolio) {
			holding = nil
		}
	}
	out.After = next

	if exists && next == out.Before && sameHolding(current.Holding, holding) {
		return out, nil
	}

	token, removed, err := st.UpsertMembership(cmd.ID, next, holding)
	if err != nil {
		return Outcome{}, err
	}
	out.Token = token
	out.Removed = removed
	out.Created = !exists
	out.Changed = true
	return out, nil
}

func sameHolding(a, b *domain.Holding) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Amount.Equal(b.Amount) && a.AvgBuyPrice.Equal(b.AvgBuyPrice)
}
