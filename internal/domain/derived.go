package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Derived holds the computed portfolio columns of a token. Nothing here is
// stored; it is recomputed from Holding and Market on every read.
type Derived struct {
	CostBasis    decimal.Decimal
	CurrentValue decimal.NullDecimal
	PnL          decimal.NullDecimal
	// PnLPercent is invalid when there is no quote or the cost basis is zero.
	PnLPercent decimal.NullDecimal
}

// Derive computes the derived fields of a portfolio token. ok is false for
// tokens without a holding.
func Derive(t TrackedToken) (d Derived, ok bool) {
	if t.Holding == nil {
		return Derived{}, false
	}
	h := t.Holding
	d.CostBasis = h.Amount.Mul(h.AvgBuyPrice)
	if t.Market == nil {
		return d, true
	}

	value := h.Amount.Mul(t.Market.Price)
	pnl := value.Sub(d.CostBasis)
	d.CurrentValue = valid(value)
	d.PnL = valid(pnl)
	if !d.CostBasis.IsZero() {
		d.PnLPercent = valid(pnl.Div(d.CostBasis).Mul(hundred))
	}
	return d, true
}

// Allocation is the share of one token in the portfolio net worth.
type Allocation struct {
	ID     TokenID
	Symbol string
	Value  decimal.Decimal
	// Share is a percentage of the net worth.
	Share decimal.Decimal
}

// Summary aggregates the portfolio tokens that have a quote.
type Summary struct {
	NetWorth         decimal.Decimal
	TotalCost        decimal.Decimal
	PnL              decimal.Decimal
	PnLPercent       decimal.NullDecimal
	Change24h        decimal.Decimal
	Change24hPercent decimal.NullDecimal
	Assets           int
	Allocations      []Allocation
}

// Summarize computes portfolio totals. Tokens without a quote are skipped
// entirely so totals never mix priced and unpriced holdings.
func Summarize(tokens []TrackedToken) Summary {
	var s Summary
	for _, t := range tokens {
		d, ok := Derive(t)
		if !ok || !d.CurrentValue.Valid {
			continue
		}
		value := d.CurrentValue.Decimal
		s.Assets++
		s.NetWorth = s.NetWorth.Add(value)
		s.TotalCost = s.TotalCost.Add(d.CostBasis)
		if pct := t.Market.PercentChange24h; pct.Valid {
			s.Change24h = s.Change24h.Add(value.Mul(pct.Decimal).Div(hundred))
		}
		s.Allocations = append(s.Allocations, Allocation{ID: t.ID, Symbol: t.Symbol(), Value: value})
	}

	s.PnL = s.NetWorth.Sub(s.TotalCost)
	if !s.TotalCost.IsZero() {
		s.PnLPercent = valid(s.PnL.Div(s.TotalCost).Mul(hundred))
	}
	if !s.NetWorth.IsZero() {
		s.Change24hPercent = valid(s.Change24h.Div(s.NetWorth).Mul(hundred))
		for i := range s.Allocations {
			s.Allocations[i].Share = s.Allocations[i].Value.Div(s.NetWorth).Mul(hundred)
		}
	}
	sort.SliceStable(s.Allocations, func(i, j int) bool {
		return s.Allocations[i].Value.GreaterThan(s.Allocations[j].Value)
	})
	return s
}

func valid(d decimal.Decimal) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: d, Valid: true}
}
