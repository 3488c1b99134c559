package command

import (
	"errors"
	"testing"
	"time"

	"github.com/rovshanmuradov/coinwatch/internal/domain"
	"github.com/rovshanmuradov/coinwatch/internal/reconcile"
	"github.com/rovshanmuradov/coinwatch/internal/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func run(t *testing.T, st *store.Store, lines ...string) {
	t.Helper()
	for _, line := range lines {
		cmd, err := Parse(line)
		require.NoError(t, err, line)
		_, err = Apply(st, cmd)
		require.NoError(t, err, line)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Command
		wantErr bool
	}{
		{name: "watch", input: "add bitcoin -w", want: Command{Op: Add, ID: "bitcoin", Flags: domain.Watchlist}},
		{name: "default add", input: "add Bitcoin", want: Command{Op: Add, ID: "bitcoin", Flags: domain.Watchlist}},
		{name: "default rm", input: "rm bitcoin", want: Command{Op: Remove, ID: "bitcoin", Flags: domain.Both}},
		{name: "rm portfolio", input: "rm solana -p", want: Command{Op: Remove, ID: "solana", Flags: domain.Portfolio}},
		{name: "pw alias", input: "rm solana -pw", want: Command{Op: Remove, ID: "solana", Flags: domain.Both}},
		{
			name:  "portfolio",
			input: "add solana -p 10 200.5",
			want: Command{Op: Add, ID: "solana", Flags: domain.Portfolio,
				Holding: &domain.Holding{Amount: dec("10"), AvgBuyPrice: dec("200.5")}},
		},
		{
			name:  "extra spaces",
			input: "  add   ethereum  -wp  5   1800 ",
			want: Command{Op: Add, ID: "ethereum", Flags: domain.Both,
				Holding: &domain.Holding{Amount: dec("5"), AvgBuyPrice: dec("1800")}},
		},
		{
			name:  "exponent within range",
			input: "add x -p 1e3 0.5",
			want: Command{Op: Add, ID: "x", Flags: domain.Portfolio,
				Holding: &domain.Holding{Amount: dec("1000"), AvgBuyPrice: dec("0.5")}},
		},
		{name: "zero holding", input: "add x -p 0 0", want: Command{Op: Add, ID: "x", Flags: domain.Portfolio,
			Holding: &domain.Holding{Amount: dec("0"), AvgBuyPrice: dec("0")}}},

		{name: "empty", input: "   ", wantErr: true},
		{name: "unknown keyword", input: "buy bitcoin", wantErr: true},
		{name: "keyword case", input: "ADD bitcoin", wantErr: true},
		{name: "missing id", input: "add", wantErr: true},
		{name: "flag as id", input: "rm -w", wantErr: true},
		{name: "unknown flag", input: "add bitcoin -x", wantErr: true},
		{name: "missing amount", input: "add solana -p", wantErr: true},
		{name: "missing price", input: "add solana -wp 10", wantErr: true},
		{name: "bad amount", input: "add solana -p ten 200", wantErr: true},
		{name: "bad price", input: "add solana -p 10 abc", wantErr: true},
		{name: "negative amount", input: "add solana -p -1 200", wantErr: true},
		{name: "negative price", input: "add solana -p 1 -200", wantErr: true},
		{name: "huge exponent amount", input: "add btc -p 1e100000000 1", wantErr: true},
		{name: "huge exponent price", input: "add btc -p 1 1e2147483647", wantErr: true},
		{name: "tiny exponent", input: "add btc -wp 1e-50 1", wantErr: true},
		{name: "trailing args", input: "add solana -p 1 2 3", wantErr: true},
		{name: "rm with amounts", input: "rm solana -p 1 2", wantErr: true},
		{name: "watch with amounts", input: "add solana -w 1 2", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr {
				var se *domain.SyntaxError
				require.True(t, errors.As(err, &se), "want SyntaxError, got %v", err)
				assert.Equal(t, tt.input, se.Input)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want.Op, got.Op)
			assert.Equal(t, tt.want.ID, got.ID)
			assert.Equal(t, tt.want.Flags, got.Flags)
			if tt.want.Holding == nil {
				assert.Nil(t, got.Holding)
				return
			}
			require.NotNil(t, got.Holding)
			assert.True(t, tt.want.Holding.Amount.Equal(got.Holding.Amount))
			assert.True(t, tt.want.Holding.AvgBuyPrice.Equal(got.Holding.AvgBuyPrice))
		})
	}
}

func TestPortfolioAddOverwrites(t *testing.T) {
	st := store.New(zap.NewNop())
	run(t, st, "add x -p 10 200", "add x -p 5 300")

	tok, ok := st.Get("x")
	require.True(t, ok)
	require.NotNil(t, tok.Holding)
	assert.True(t, tok.Holding.Amount.Equal(dec("5")))
	assert.True(t, tok.Holding.AvgBuyPrice.Equal(dec("300")))
}

func TestRemoveBothDeletes(t *testing.T) {
	st := store.New(zap.NewNop())
	run(t, st, "add x -wp 1 1", "rm x -wp")
	_, ok := st.Get("x")
	assert.False(t, ok)
	assert.Empty(t, st.GetAll())
}

func TestRemoveWatchOnPortfolioOnlyIsNoop(t *testing.T) {
	st := store.New(zap.NewNop())
	run(t, st, "add x -p 10 200")

	cmd, err := Parse("rm x -w")
	require.NoError(t, err)
	out, err := Apply(st, cmd)
	require.NoError(t, err)
	assert.False(t, out.Changed)
	assert.False(t, out.Removed)

	tok, ok := st.Get("x")
	require.True(t, ok)
	assert.False(t, tok.InWatchlist)
	assert.True(t, tok.InPortfolio())
}

func TestRemoveUnknownTokenIsNoop(t *testing.T) {
	st := store.New(zap.NewNop())
	for _, line := range []string{"rm ghost -p", "rm ghost -w", "rm ghost"} {
		cmd, err := Parse(line)
		require.NoError(t, err)
		out, err := Apply(st, cmd)
		require.NoError(t, err, line)
		assert.False(t, out.Changed)
	}
	assert.Zero(t, st.Len())
}

func TestIdempotentAdd(t *testing.T) {
	st := store.New(zap.NewNop())
	run(t, st, "add bitcoin -w")

	cmd, _ := Parse("add bitcoin -w")
	out, err := Apply(st, cmd)
	require.NoError(t, err)
	assert.False(t, out.Changed)
	assert.Equal(t, 1, st.Len())
}

func TestFlagsAreIndependent(t *testing.T) {
	st := store.New(zap.NewNop())
	run(t, st, "add x -w", "add x -p 3 4", "rm x -p")

	tok, ok := st.Get("x")
	require.True(t, ok)
	assert.True(t, tok.InWatchlist, "watchlist flag set by the first command survives")
	assert.Nil(t, tok.Holding)

	run(t, st, "add x -p 1 1", "rm x -w")
	tok, ok = st.Get("x")
	require.True(t, ok)
	assert.False(t, tok.InWatchlist)
	assert.True(t, tok.InPortfolio())

	run(t, st, "rm x -p")
	_, ok = st.Get("x")
	assert.False(t, ok)
}

// Replays command sequences and checks that each flag ends up as the
// last command touching it left it.
func TestLastWriterWinsPerFlag(t *testing.T) {
	sequences := [][]string{
		{"add x -w", "add x -p 1 1", "rm x -w"},
		{"add x -wp 1 1", "rm x -p", "add x -p 2 2"},
		{"add x -p 1 1", "add x -w", "rm x -wp", "add x -w"},
		{"rm x -w", "add x -p 5 5", "rm x -p", "add x -wp 7 7", "rm x -w"},
		{"add x", "rm x", "add x -p 1 2", "add x -pw 3 4"},
	}

	for _, seq := range sequences {
		st := store.New(zap.NewNop())
		var watch, port bool
		for _, line := range seq {
			cmd, err := Parse(line)
			require.NoError(t, err)
			if cmd.Flags.Has(domain.Watchlist) {
				watch = cmd.Op == Add
			}
			if cmd.Flags.Has(domain.Portfolio) {
				port = cmd.Op == Add
			}
			_, err = Apply(st, cmd)
			require.NoError(t, err)
		}

		tok, ok := st.Get("x")
		if !watch && !port {
			assert.False(t, ok, "%v", seq)
			continue
		}
		require.True(t, ok, "%v", seq)
		assert.Equal(t, watch, tok.InWatchlist, "%v", seq)
		assert.Equal(t, port, tok.InPortfolio(), "%v", seq)
	}
}

func TestFullScenario(t *testing.T) {
	st := store.New(zap.NewNop())
	run(t, st, "add bitcoin -w", "add solana -p 10 200", "add ethereum -wp 5 1800")

	price := func(p int64) domain.MarketFields { return domain.MarketFields{Price: decimal.NewFromInt(p)} }
	reconcile.Reconcile(st, reconcile.Snapshot{
		"bitcoin":  price(50000),
		"solana":   price(250),
		"ethereum": price(2000),
	}, time.Now())

	require.Equal(t, 3, st.Len())

	sol, _ := st.Get("solana")
	d, ok := domain.Derive(sol)
	require.True(t, ok)
	assert.True(t, d.CurrentValue.Decimal.Equal(dec("2500")))
	assert.True(t, d.CostBasis.Equal(dec("2000")))
	assert.True(t, d.PnL.Decimal.Equal(dec("500")))
	assert.True(t, d.PnLPercent.Decimal.Equal(dec("25")))

	eth, _ := st.Get("ethereum")
	d, ok = domain.Derive(eth)
	require.True(t, ok)
	assert.True(t, d.CurrentValue.Decimal.Equal(dec("10000")))
	assert.True(t, d.CostBasis.Equal(dec("9000")))
	assert.True(t, d.PnL.Decimal.Equal(dec("1000")))
	assert.Equal(t, "11.1", d.PnLPercent.Decimal.StringFixed(1))

	btc, _ := st.Get("bitcoin")
	assert.Nil(t, btc.Holding)
	_, ok = domain.Derive(btc)
	assert.False(t, ok)
}

func TestDescribe(t *testing.T) {
	st := store.New(zap.NewNop())
	cmd, _ := Parse("add bitcoin")
	out, err := Apply(st, cmd)
	require.NoError(t, err)
	assert.True(t, out.Created)
	assert.Equal(t, "added bitcoin to watchlist", out.Describe())

	cmd, _ = Parse("rm bitcoin")
	out, err = Apply(st, cmd)
	require.NoError(t, err)
	assert.True(t, out.Removed)
	assert.Equal(t, "removed bitcoin", out.Describe())
}
