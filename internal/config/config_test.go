package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rovshanmuradov/coinwatch/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var validConfigJSON = `{
    "api_key": "test-key",
    "tokens": [
        {"name": "Bitcoin", "in_watchlist": true, "in_portfolio": false},
        {"name": "solana", "owned": 10, "avg_buy_price": 200.5, "in_watchlist": false, "in_portfolio": true},
        {"name": "ethereum", "owned": 5, "avg_buy_price": 1800, "in_portfolio": false},
        {"name": "dogecoin"},
        {"name": "gone", "in_watchlist": false, "in_portfolio": false}
    ],
    "refresh_interval": 30,
    "fear_and_greed_limit": "7"
}`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("COINWATCH_API_KEY", "")
	t.Setenv("COINWATCH_REFRESH_INTERVAL", "")

	cfg, err := Load(writeConfig(t, validConfigJSON), nil)
	require.NoError(t, err)

	assert.Equal(t, "test-key", cfg.APIKey)
	assert.Equal(t, 30, cfg.RefreshInterval)
	assert.Equal(t, DefaultLogFile, cfg.LogFile)
	limit, err := cfg.FearGreedLimit()
	require.NoError(t, err)
	assert.Equal(t, 7, limit)

	tokens, err := cfg.TrackedTokens()
	require.NoError(t, err)
	require.Len(t, tokens, 4, "tokens in neither list are dropped")

	byID := map[domain.TokenID]domain.TrackedToken{}
	for _, tok := range tokens {
		byID[tok.ID] = tok
	}

	btc := byID["bitcoin"]
	assert.True(t, btc.InWatchlist)
	assert.Nil(t, btc.Holding)

	sol := byID["solana"]
	assert.False(t, sol.InWatchlist)
	require.NotNil(t, sol.Holding)
	assert.True(t, sol.Holding.AvgBuyPrice.Equal(decimal.RequireFromString("200.5")))

	eth := byID["ethereum"]
	require.NotNil(t, eth.Holding, "positive owned implies portfolio")
	assert.True(t, eth.InWatchlist, "missing in_watchlist defaults to true")

	doge := byID["dogecoin"]
	assert.True(t, doge.InWatchlist)
	require.NotNil(t, doge.Holding)
	assert.True(t, doge.Holding.Amount.IsZero())
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("COINWATCH_REFRESH_INTERVAL", "")
	cfg, err := Load(writeConfig(t, `{"api_key": "k", "tokens": []}`), nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultRefreshInterval, cfg.RefreshInterval)
	assert.Equal(t, DefaultFearAndGreedLimit, cfg.FearAndGreedLimit)
	assert.Equal(t, "60s", cfg.Interval().String())
}

func TestLoadConfigInvalid(t *testing.T) {
	t.Setenv("COINWATCH_REFRESH_INTERVAL", "")
	tests := []struct {
		name    string
		content string
		field   string
	}{
		{name: "negative interval", content: `{"refresh_interval": -1}`, field: "refresh_interval"},
		{name: "bad limit", content: `{"fear_and_greed_limit": "many"}`, field: "fear_and_greed_limit"},
		{name: "duplicate token", content: `{"tokens": [{"name": "btc"}, {"name": " BTC "}]}`, field: "tokens.name"},
		{name: "empty name", content: `{"tokens": [{"name": ""}]}`, field: "tokens.name"},
		{name: "negative owned", content: `{"tokens": [{"name": "x", "owned": -1}]}`, field: "tokens.x.amount"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content), nil)
			var ve *domain.ValidationError
			require.True(t, errors.As(err, &ve), "got %v", err)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"), nil)
	var pe *domain.PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "load", pe.Op)
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("COINWATCH_API_KEY", "env-key")
	t.Setenv("COINWATCH_REFRESH_INTERVAL", "15")
	path := writeConfig(t, `{"api_key": "file-key", "tokens": []}`)

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "env-key", cfg.APIKey)
	assert.Equal(t, 15, cfg.RefreshInterval)

	require.NoError(t, Save(path, cfg))
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"file-key"`)
	assert.NotContains(t, string(raw), "env-key")
}

func TestFlagOverrides(t *testing.T) {
	t.Setenv("COINWATCH_REFRESH_INTERVAL", "")
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("refresh-interval", DefaultRefreshInterval, "")
	flags.Bool("debug", false, "")
	require.NoError(t, flags.Parse([]string{"--refresh-interval=5", "--debug"}))

	cfg, err := Load(writeConfig(t, `{"refresh_interval": 30}`), flags)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.RefreshInterval)
	assert.True(t, cfg.DebugLogging)

	unchanged := pflag.NewFlagSet("test", pflag.ContinueOnError)
	unchanged.Int("refresh-interval", DefaultRefreshInterval, "")
	cfg, err = Load(writeConfig(t, `{"refresh_interval": 30}`), unchanged)
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.RefreshInterval, "unset flags do not override the file")
}

func TestSaveRoundTrip(t *testing.T) {
	t.Setenv("COINWATCH_API_KEY", "")
	t.Setenv("COINWATCH_REFRESH_INTERVAL", "")
	path := writeConfig(t, validConfigJSON)
	cfg, err := Load(path, nil)
	require.NoError(t, err)
	before, err := cfg.TrackedTokens()
	require.NoError(t, err)

	cfg.SetTokens(before)
	require.NoError(t, Save(path, cfg))

	var raw map[string]any
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &raw))
	first := raw["tokens"].([]any)[1].(map[string]any)
	assert.Equal(t, 10.0, first["owned"], "amounts are written as JSON numbers")

	again, err := Load(path, nil)
	require.NoError(t, err)
	after, err := again.TrackedTokens()
	require.NoError(t, err)
	require.Len(t, after, len(before))
	for i := range before {
		assert.Equal(t, before[i].ID, after[i].ID)
		assert.Equal(t, before[i].Membership(), after[i].Membership())
		if before[i].Holding != nil {
			assert.True(t, before[i].Holding.Amount.Equal(after[i].Holding.Amount))
			assert.True(t, before[i].Holding.AvgBuyPrice.Equal(after[i].Holding.AvgBuyPrice))
		}
	}

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestSaveFailureCleansUp(t *testing.T) {
	dir := t.TempDir()
	// A non-empty directory at the target path makes the final rename fail.
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.Mkdir(path, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(path, "keep"), []byte("x"), 0o600))

	err := Save(path, &Config{RefreshInterval: 1})
	var pe *domain.PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "save", pe.Op)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
	data, err := os.ReadFile(filepath.Join(path, "keep"))
	require.NoError(t, err)
	assert.Equal(t, "x", string(data))

	err = Save(filepath.Join(dir, "missing", "config.json"), &Config{})
	assert.ErrorAs(t, err, &pe)
}

func TestFilePersister(t *testing.T) {
	t.Setenv("COINWATCH_API_KEY", "")
	t.Setenv("COINWATCH_REFRESH_INTERVAL", "")
	path := writeConfig(t, `{"api_key": "k", "refresh_interval": 45, "tokens": []}`)
	cfg, err := Load(path, nil)
	require.NoError(t, err)

	p := NewFilePersister(path, cfg)
	h := domain.Holding{Amount: decimal.NewFromInt(2), AvgBuyPrice: decimal.NewFromInt(3)}
	require.NoError(t, p.Save([]domain.TrackedToken{
		{ID: "bitcoin", InWatchlist: true},
		{ID: "solana", Holding: &h},
	}))

	again, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, 45, again.RefreshInterval)
	assert.Equal(t, "k", again.APIKey)
	tokens, err := again.TrackedTokens()
	require.NoError(t, err)
	require.Len(t, tokens, 2)
	assert.Equal(t, domain.Watchlist, tokens[0].Membership())
	assert.Equal(t, domain.Portfolio, tokens[1].Membership())
	assert.Empty(t, cfg.Tokens, "the base config is not modified")
}
