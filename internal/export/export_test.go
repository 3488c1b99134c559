package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/rovshanmuradov/coinwatch/internal/domain"
	"github.com/rovshanmuradov/coinwatch/internal/sorting"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func newTestExporter() *Exporter {
	e := NewExporter(zap.NewNop())
	e.now = func() time.Time { return time.Date(2024, 5, 2, 10, 30, 0, 0, time.UTC) }
	return e
}

func generateTestTokens() []domain.TrackedToken {
	return []domain.TrackedToken{
		{
			ID:          "bitcoin",
			InWatchlist: true,
			Holding:     &domain.Holding{Amount: decimal.NewFromInt(2), AvgBuyPrice: decimal.NewFromInt(40000)},
			Market: &domain.MarketFields{
				Symbol:           "BTC",
				Price:            decimal.NewFromInt(50000),
				PercentChange24h: decimal.NewNullDecimal(decimal.RequireFromString("1.5")),
			},
		},
		{ID: "newcoin", InWatchlist: true},
		{
			ID:      "solana",
			Holding: &domain.Holding{Amount: decimal.NewFromInt(10), AvgBuyPrice: decimal.NewFromInt(100)},
		},
	}
}

func TestExportCSV(t *testing.T) {
	exporter := newTestExporter()
	tempDir := t.TempDir()

	outputPath, err := exporter.Export(generateTestTokens(), Options{Format: FormatCSV, OutputDir: tempDir})
	if err != nil {
		t.Fatalf("Failed to export tokens: %v", err)
	}
	if !strings.HasSuffix(outputPath, "tokens_all_20240502_103000.csv") {
		t.Errorf("unexpected file name %s", outputPath)
	}

	f, err := os.Open(outputPath)
	if err != nil {
		t.Fatalf("Failed to open export: %v", err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("Failed to read CSV: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("expected header and 3 rows, got %d records", len(records))
	}

	btc := records[1]
	if btc[0] != "bitcoin" || btc[1] != "BTC" || btc[4] != "50000" {
		t.Errorf("unexpected bitcoin row %v", btc)
	}
	if btc[9] != "80000" || btc[10] != "100000" || btc[11] != "20000" || btc[12] != "25" {
		t.Errorf("unexpected bitcoin portfolio columns %v", btc)
	}

	// No quote: price and value columns stay empty, the holding is kept.
	sol := records[3]
	if sol[4] != "" || sol[10] != "" || sol[7] != "10" || sol[9] != "1000" {
		t.Errorf("unexpected solana row %v", sol)
	}
}

func TestExportJSONPortfolioOnly(t *testing.T) {
	exporter := newTestExporter()
	view := sorting.PortfolioView

	outputPath, err := exporter.Export(generateTestTokens(), Options{Format: FormatJSON, View: &view, OutputDir: t.TempDir()})
	if err != nil {
		t.Fatalf("Failed to export tokens: %v", err)
	}
	if !strings.Contains(outputPath, "tokens_portfolio_") {
		t.Errorf("unexpected file name %s", outputPath)
	}

	content, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("Failed to read export file: %v", err)
	}
	var data struct {
		TokenCount int     `json:"token_count"`
		Tokens     []Row   `json:"tokens"`
		Summary    Summary `json:"summary"`
	}
	if err := json.Unmarshal(content, &data); err != nil {
		t.Fatalf("Failed to decode export: %v", err)
	}

	if data.TokenCount != 2 {
		t.Errorf("expected 2 portfolio tokens, got %d", data.TokenCount)
	}
	if data.Tokens[0].ID != "bitcoin" {
		t.Errorf("expected the priced holding first, got %s", data.Tokens[0].ID)
	}
	if data.Summary.NetWorth != "100000" || data.Summary.PnL != "20000" || data.Summary.Priced != 1 {
		t.Errorf("unexpected summary %+v", data.Summary)
	}
}

func TestExportErrors(t *testing.T) {
	exporter := newTestExporter()
	tempDir := t.TempDir()

	if _, err := exporter.Export(nil, Options{Format: FormatCSV, OutputDir: tempDir}); err == nil {
		t.Error("expected an error for an empty export")
	}
	if _, err := exporter.Export(generateTestTokens(), Options{Format: "xml", OutputDir: tempDir}); err == nil {
		t.Error("expected an error for an unknown format")
	}
}
