package config

import (
	"errors"

	"github.com/rovshanmuradov/coinwatch/internal/domain"
	"github.com/shopspring/decimal"
)

func flagOrTrue(b *bool) bool { return b == nil || *b }

// inPortfolio applies the legacy rule: any positive owned amount puts the
// token in the portfolio whatever in_portfolio says.
func (t TokenConfig) inPortfolio() bool {
	if t.Owned != nil && t.Owned.IsPositive() {
		return true
	}
	return flagOrTrue(t.InPortfolio)
}

// TrackedTokens converts the persisted entries into store tokens. Entries in
// neither list are dropped.
func (c *Config) TrackedTokens() ([]domain.TrackedToken, error) {
	seen := make(map[domain.TokenID]struct{}, len(c.Tokens))
	out := make([]domain.TrackedToken, 0, len(c.Tokens))

	for _, tc := range c.Tokens {
		id := domain.NormalizeID(tc.Name)
		if id == "" {
			return nil, &domain.ValidationError{Field: "tokens.name", Msg: "must not be empty"}
		}
		if _, dup := seen[id]; dup {
			return nil, &domain.ValidationError{Field: "tokens.name", Msg: "duplicate token " + id.String()}
		}
		seen[id] = struct{}{}

		t := domain.TrackedToken{ID: id, InWatchlist: flagOrTrue(tc.InWatchlist)}
		if tc.inPortfolio() {
			amount, price := decimal.Zero, decimal.Zero
			if tc.Owned != nil {
				amount = *tc.Owned
			}
			if tc.AvgBuyPrice != nil {
				price = *tc.AvgBuyPrice
			}
			h, err := domain.NewHolding(amount, price)
			if err != nil {
				var ve *domain.ValidationError
				if errors.As(err, &ve) {
					return nil, &domain.ValidationError{Field: "tokens." + id.String() + "." + ve.Field, Msg: ve.Msg}
				}
				return nil, err
			}
			t.Holding = &h
		}
		if t.Orphaned() {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

// SetTokens replaces the token entries with the given store content. Flags
// are always written explicitly; holdings only for portfolio tokens.
func (c *Config) SetTokens(tokens []domain.TrackedToken) {
	out := make([]TokenConfig, 0, len(tokens))
	for _, t := range tokens {
		watch, port := t.InWatchlist, t.InPortfolio()
		tc := TokenConfig{Name: t.ID.String(), InWatchlist: &watch, InPortfolio: &port}
		if t.Holding != nil {
			amount, price := t.Holding.Amount, t.Holding.AvgBuyPrice
			tc.Owned, tc.AvgBuyPrice = &amount, &price
		}
		out = append(out, tc)
	}
	c.Tokens = out
}
