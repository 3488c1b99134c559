package sorting

import "github.com/rovshanmuradov/coinwatch/internal/domain"

// State is the sort selection of one view.
//
// Policy: toggling only flips the direction; cycling to another column always
// starts that column in Ascending order.
type State struct {
	View      View
	Column    Column
	Direction Direction
}

// DefaultState returns the state a view starts with: watchlist by market cap
// and portfolio by current value, both largest first.
func DefaultState(v View) State {
	if v == PortfolioView {
		return State{View: v, Column: CurrentValue, Direction: Descending}
	}
	return State{View: WatchlistView, Column: MarketCap, Direction: Descending}
}

// Toggle flips the direction and keeps the column.
func (s State) Toggle() State {
	if s.Direction == Ascending {
		s.Direction = Descending
	} else {
		s.Direction = Ascending
	}
	return s
}

// Next moves to the following column of the view, wrapping around, and
// resets the direction to Ascending.
func (s State) Next() State {
	cols := viewColumns[s.View]
	next := cols[0]
	for i, c := range cols {
		if c == s.Column {
			next = cols[(i+1)%len(cols)]
			break
		}
	}
	return State{View: s.View, Column: next, Direction: Ascending}
}

// Apply sorts tokens with the state's settings.
func (s State) Apply(tokens []domain.TrackedToken) []domain.TrackedToken {
	out, err := Sort(s.View, tokens, s.Column, s.Direction)
	if err != nil {
		// Column from another view: fall back to the view default.
		out, _ = Sort(s.View, tokens, DefaultState(s.View).Column, s.Direction)
	}
	return out
}
