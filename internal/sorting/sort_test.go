package sorting

import (
	"testing"

	"github.com/rovshanmuradov/coinwatch/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func watched(id, symbol string, price int64, capUSD *int64) domain.TrackedToken {
	m := &domain.MarketFields{Symbol: symbol, Price: decimal.NewFromInt(price)}
	if capUSD != nil {
		m.MarketCap = decimal.NewNullDecimal(decimal.NewFromInt(*capUSD))
	}
	return domain.TrackedToken{ID: domain.TokenID(id), InWatchlist: true, Market: m}
}

func i64(v int64) *int64 { return &v }

func ids(tokens []domain.TrackedToken) []domain.TokenID {
	out := make([]domain.TokenID, len(tokens))
	for i, t := range tokens {
		out[i] = t.ID
	}
	return out
}

func TestSortMissingValuesLast(t *testing.T) {
	tokens := []domain.TrackedToken{
		watched("a", "A", 1, i64(300)),
		watched("b", "B", 2, nil),
		watched("c", "C", 3, i64(100)),
		{ID: "d", InWatchlist: true},
		watched("e", "E", 5, i64(200)),
	}

	asc, err := Sort(WatchlistView, tokens, MarketCap, Ascending)
	require.NoError(t, err)
	assert.Equal(t, []domain.TokenID{"c", "e", "a", "b", "d"}, ids(asc))

	desc, err := Sort(WatchlistView, tokens, MarketCap, Descending)
	require.NoError(t, err)
	assert.Equal(t, []domain.TokenID{"a", "e", "c", "b", "d"}, ids(desc))
}

func TestSortIsStable(t *testing.T) {
	tokens := []domain.TrackedToken{
		watched("x", "X", 10, nil),
		watched("y", "Y", 5, nil),
		watched("z", "Z", 10, nil),
		watched("w", "W", 5, nil),
	}

	asc, err := Sort(WatchlistView, tokens, Price, Ascending)
	require.NoError(t, err)
	assert.Equal(t, []domain.TokenID{"y", "w", "x", "z"}, ids(asc))

	desc, err := Sort(WatchlistView, tokens, Price, Descending)
	require.NoError(t, err)
	assert.Equal(t, []domain.TokenID{"x", "z", "y", "w"}, ids(desc))
}

func TestToggleTwiceRestoresOrder(t *testing.T) {
	tokens := []domain.TrackedToken{
		watched("a", "A", 1, i64(300)),
		watched("b", "B", 2, nil),
		watched("c", "C", 3, i64(100)),
	}
	st := DefaultState(WatchlistView)
	before := st.Apply(tokens)

	st = st.Toggle()
	assert.Equal(t, Ascending, st.Direction)
	assert.NotEqual(t, ids(before), ids(st.Apply(tokens)))

	st = st.Toggle()
	assert.Equal(t, MarketCap, st.Column)
	assert.Equal(t, ids(before), ids(st.Apply(tokens)))
}

func TestSortDoesNotModifyInput(t *testing.T) {
	tokens := []domain.TrackedToken{
		watched("b", "B", 2, nil),
		watched("a", "A", 1, nil),
	}
	_, err := Sort(WatchlistView, tokens, Symbol, Ascending)
	require.NoError(t, err)
	assert.Equal(t, []domain.TokenID{"b", "a"}, ids(tokens))
}

func TestPortfolioViewExcludesWatchOnly(t *testing.T) {
	h := func(amount, avg int64) *domain.Holding {
		return &domain.Holding{Amount: decimal.NewFromInt(amount), AvgBuyPrice: decimal.NewFromInt(avg)}
	}
	tokens := []domain.TrackedToken{
		watched("bitcoin", "BTC", 50000, nil),
		{ID: "solana", Holding: h(10, 200), Market: &domain.MarketFields{Symbol: "SOL", Price: decimal.NewFromInt(250)}},
		{ID: "ethereum", InWatchlist: true, Holding: h(2, 1100), Market: &domain.MarketFields{Symbol: "ETH", Price: decimal.NewFromInt(3000)}},
		{ID: "fresh", Holding: h(1, 1)},
	}

	out := DefaultState(PortfolioView).Apply(tokens)
	assert.Equal(t, []domain.TokenID{"ethereum", "solana", "fresh"}, ids(out))

	byCost, err := Sort(PortfolioView, tokens, CostBasis, Ascending)
	require.NoError(t, err)
	assert.Equal(t, []domain.TokenID{"fresh", "solana", "ethereum"}, ids(byCost))
}

func TestSortRejectsForeignColumn(t *testing.T) {
	_, err := Sort(WatchlistView, nil, Holdings, Ascending)
	assert.Error(t, err)
	_, err = Sort(PortfolioView, nil, MarketCap, Ascending)
	assert.Error(t, err)
}

func TestNextResetsDirection(t *testing.T) {
	st := DefaultState(WatchlistView)
	require.Equal(t, Descending, st.Direction)

	next := st.Next()
	assert.Equal(t, Symbol, next.Column, "market cap wraps to the first column")
	assert.Equal(t, Ascending, next.Direction)

	cols := Columns(PortfolioView)
	p := State{View: PortfolioView, Column: cols[0], Direction: Descending}
	for i := 1; i <= len(cols); i++ {
		p = p.Next()
		assert.Equal(t, cols[i%len(cols)], p.Column)
		assert.Equal(t, Ascending, p.Direction)
	}
}

func TestSymbolSortIgnoresCase(t *testing.T) {
	tokens := []domain.TrackedToken{
		watched("b", "bnb", 1, nil),
		watched("a", "ADA", 1, nil),
		watched("c", "Celo", 1, nil),
	}
	out, err := Sort(WatchlistView, tokens, Symbol, Ascending)
	require.NoError(t, err)
	assert.Equal(t, []domain.TokenID{"a", "b", "c"}, ids(out))
}
