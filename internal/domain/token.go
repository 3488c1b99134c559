package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TokenID is the canonical slug of a tracked asset (e.g. "bitcoin").
type TokenID string

// NormalizeID trims and lowercases a user or config supplied identifier.
func NormalizeID(raw string) TokenID {
	return TokenID(strings.ToLower(strings.TrimSpace(raw)))
}

func (id TokenID) String() string { return string(id) }

// Membership is a set of list flags carried by commands.
type Membership uint8

const (
	Watchlist Membership = 1 << iota
	Portfolio

	NoMembership Membership = 0
	Both                    = Watchlist | Portfolio
)

// Has reports whether all flags of other are set in m.
func (m Membership) Has(other Membership) bool { return m&other == other && other != 0 }

func (m Membership) String() string {
	switch m {
	case Watchlist:
		return "watchlist"
	case Portfolio:
		return "portfolio"
	case Both:
		return "watchlist+portfolio"
	default:
		return "none"
	}
}

// MarketFields is the quote of one token returned by a single fetch.
// It is always replaced wholesale.
type MarketFields struct {
	Symbol string
	Name   string

	Price           decimal.Decimal
	Volume24h       decimal.NullDecimal
	VolumeChange24h decimal.NullDecimal
	MarketCap       decimal.NullDecimal

	PercentChange1h  decimal.NullDecimal
	PercentChange24h decimal.NullDecimal
	PercentChange7d  decimal.NullDecimal
	PercentChange30d decimal.NullDecimal
	PercentChange90d decimal.NullDecimal
}

// MaxExponent bounds the decimal exponent accepted from user input. Larger
// exponents expand into strings too long to render or persist.
const MaxExponent = 40

// InRange reports whether d is within the exponent bound.
func InRange(d decimal.Decimal) bool {
	exp := d.Exponent()
	return exp <= MaxExponent && exp >= -MaxExponent
}

// Holding is the user-owned position of a portfolio token.
type Holding struct {
	Amount      decimal.Decimal
	AvgBuyPrice decimal.Decimal
}

// NewHolding validates and builds a holding. Both values must be non-negative.
func NewHolding(amount, avgBuyPrice decimal.Decimal) (Holding, error) {
	if amount.IsNegative() {
		return Holding{}, &ValidationError{Field: "amount", Msg: "must not be negative, got " + amount.String()}
	}
	if avgBuyPrice.IsNegative() {
		return Holding{}, &ValidationError{Field: "avg_buy_price", Msg: "must not be negative, got " + avgBuyPrice.String()}
	}
	return Holding{Amount: amount, AvgBuyPrice: avgBuyPrice}, nil
}

// TrackedToken is one entry of the state store.
//
// Portfolio membership is expressed by the presence of Holding: a token is in
// the portfolio if and only if Holding is non-nil, so a portfolio token without
// holding data cannot be represented.
type TrackedToken struct {
	ID          TokenID
	InWatchlist bool
	Holding     *Holding

	// Market is nil until the first successful fetch that contains ID.
	Market    *MarketFields
	UpdatedAt time.Time
}

// InPortfolio reports portfolio membership.
func (t TrackedToken) InPortfolio() bool { return t.Holding != nil }

// Orphaned reports whether the token belongs to neither list.
func (t TrackedToken) Orphaned() bool { return !t.InWatchlist && t.Holding == nil }

// Membership returns the flags currently set on the token.
func (t TrackedToken) Membership() Membership {
	var m Membership
	if t.InWatchlist {
		m |= Watchlist
	}
	if t.InPortfolio() {
		m |= Portfolio
	}
	return m
}

// Symbol returns the ticker from the last quote, or the upper-cased id when
// no quote has been received yet.
func (t TrackedToken) Symbol() string {
	if t.Market != nil && t.Market.Symbol != "" {
		return t.Market.Symbol
	}
	return strings.ToUpper(string(t.ID))
}

// Clone returns a deep copy so callers can hold it without sharing pointers
// with the store.
func (t TrackedToken) Clone() TrackedToken {
	out := t
	if t.Holding != nil {
		h := *t.Holding
		out.Holding = &h
	}
	if t.Market != nil {
		m := *t.Market
		out.Market = &m
	}
	return out
}
