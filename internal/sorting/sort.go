// Package sorting produces ordered, read-only views over tracked tokens.
package sorting

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rovshanmuradov/coinwatch/internal/domain"
	"github.com/shopspring/decimal"
)

// Direction of a sort.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

func (d Direction) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

// Indicator is the arrow drawn next to the active column header.
func (d Direction) Indicator() string {
	if d == Descending {
		return "↓"
	}
	return "↑"
}

// Filter keeps the tokens that belong to v, preserving order.
func Filter(v View, tokens []domain.TrackedToken) []domain.TrackedToken {
	out := make([]domain.TrackedToken, 0, len(tokens))
	for _, t := range tokens {
		switch v {
		case WatchlistView:
			if t.InWatchlist {
				out = append(out, t)
			}
		case PortfolioView:
			if t.InPortfolio() {
				out = append(out, t)
			}
		}
	}
	return out
}

// Sort filters tokens to v and orders them by col. The sort is stable, and
// tokens lacking a value for col always come last whatever the direction.
// The input slice is not modified.
func Sort(v View, tokens []domain.TrackedToken, col Column, dir Direction) ([]domain.TrackedToken, error) {
	if !Supports(v, col) {
		return nil, fmt.Errorf("column %q is not available in the %s view", col.Header(), v)
	}

	rows := Filter(v, tokens)
	keys := make([]sortKey, len(rows))
	for i := range rows {
		keys[i] = keyOf(rows[i], col)
	}
	idx := make([]int, len(rows))
	for i := range idx {
		idx[i] = i
	}

	sort.SliceStable(idx, func(a, b int) bool {
		ka, kb := keys[idx[a]], keys[idx[b]]
		if !ka.ok || !kb.ok {
			return ka.ok && !kb.ok
		}
		c := ka.compare(kb)
		if dir == Descending {
			return c > 0
		}
		return c < 0
	})

	out := make([]domain.TrackedToken, len(rows))
	for i, j := range idx {
		out[i] = rows[j]
	}
	return out, nil
}

type sortKey struct {
	ok  bool
	str string
	num decimal.Decimal
	// text marks string keys
	text bool
}

func (k sortKey) compare(o sortKey) int {
	if k.text {
		return strings.Compare(strings.ToUpper(k.str), strings.ToUpper(o.str))
	}
	return k.num.Cmp(o.num)
}

func numKey(d decimal.Decimal) sortKey { return sortKey{ok: true, num: d} }

func nullKey(d decimal.NullDecimal) sortKey {
	if !d.Valid {
		return sortKey{}
	}
	return numKey(d.Decimal)
}

func keyOf(t domain.TrackedToken, col Column) sortKey {
	switch col {
	case Holdings:
		if t.Holding == nil {
			return sortKey{}
		}
		return numKey(t.Holding.Amount)
	case AvgBuy:
		if t.Holding == nil {
			return sortKey{}
		}
		return numKey(t.Holding.AvgBuyPrice)
	case CostBasis, CurrentValue, ProfitLoss, ProfitLossPercent:
		d, ok := domain.Derive(t)
		if !ok {
			return sortKey{}
		}
		switch col {
		case CostBasis:
			return numKey(d.CostBasis)
		case CurrentValue:
			return nullKey(d.CurrentValue)
		case ProfitLoss:
			return nullKey(d.PnL)
		default:
			return nullKey(d.PnLPercent)
		}
	}

	m := t.Market
	if m == nil {
		return sortKey{}
	}
	switch col {
	case Symbol:
		return sortKey{ok: true, text: true, str: m.Symbol}
	case Price:
		return numKey(m.Price)
	case Change1h:
		return nullKey(m.PercentChange1h)
	case Change24h:
		return nullKey(m.PercentChange24h)
	case Change7d:
		return nullKey(m.PercentChange7d)
	case Change30d:
		return nullKey(m.PercentChange30d)
	case Change90d:
		return nullKey(m.PercentChange90d)
	case Volume24h:
		return nullKey(m.Volume24h)
	case VolumeChange:
		return nullKey(m.VolumeChange24h)
	case MarketCap:
		return nullKey(m.MarketCap)
	}
	return sortKey{}
}
