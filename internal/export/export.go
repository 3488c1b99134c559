package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rovshanmuradov/coinwatch/internal/domain"
	"github.com/rovshanmuradov/coinwatch/internal/sorting"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Format represents the export file format
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// Options configures the export behavior
type Options struct {
	Format Format
	// View limits the export to one list. Nil exports every tracked token.
	View      *sorting.View
	OutputDir string
}

// Exporter writes snapshots of the tracked tokens to disk.
type Exporter struct {
	logger *zap.Logger
	now    func() time.Time
}

// NewExporter creates a new exporter
func NewExporter(logger *zap.Logger) *Exporter {
	return &Exporter{
		logger: logger.Named("export"),
		now:    time.Now,
	}
}

// Row is one exported token. Missing quote values are empty strings.
type Row struct {
	ID           string `json:"id"`
	Symbol       string `json:"symbol"`
	InWatchlist  bool   `json:"in_watchlist"`
	InPortfolio  bool   `json:"in_portfolio"`
	Price        string `json:"price"`
	Change24h    string `json:"percent_change_24h"`
	MarketCap    string `json:"market_cap"`
	Amount       string `json:"amount"`
	AvgBuyPrice  string `json:"avg_buy_price"`
	CostBasis    string `json:"cost_basis"`
	CurrentValue string `json:"current_value"`
	PnL          string `json:"pnl"`
	PnLPercent   string `json:"pnl_percent"`
}

var csvHeaders = []string{
	"id", "symbol", "in_watchlist", "in_portfolio", "price", "percent_change_24h", "market_cap",
	"amount", "avg_buy_price", "cost_basis", "current_value", "pnl", "pnl_percent",
}

func (r Row) csv() []string {
	return []string{
		r.ID, r.Symbol, strconv.FormatBool(r.InWatchlist), strconv.FormatBool(r.InPortfolio),
		r.Price, r.Change24h, r.MarketCap,
		r.Amount, r.AvgBuyPrice, r.CostBasis, r.CurrentValue, r.PnL, r.PnLPercent,
	}
}

func null(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.String()
}

// NewRow flattens a token for export.
func NewRow(t domain.TrackedToken) Row {
	r := Row{
		ID:          t.ID.String(),
		Symbol:      t.Symbol(),
		InWatchlist: t.InWatchlist,
		InPortfolio: t.InPortfolio(),
	}
	if m := t.Market; m != nil {
		r.Price = m.Price.String()
		r.Change24h = null(m.PercentChange24h)
		r.MarketCap = null(m.MarketCap)
	}
	if d, ok := domain.Derive(t); ok {
		r.Amount = t.Holding.Amount.String()
		r.AvgBuyPrice = t.Holding.AvgBuyPrice.String()
		r.CostBasis = d.CostBasis.String()
		r.CurrentValue = null(d.CurrentValue)
		r.PnL = null(d.PnL)
		r.PnLPercent = null(d.PnLPercent)
	}
	return r
}

// Summary contains the portfolio totals of an export
type Summary struct {
	NetWorth   string `json:"net_worth"`
	TotalCost  string `json:"total_cost"`
	PnL        string `json:"pnl"`
	PnLPercent string `json:"pnl_percent"`
	Priced     int    `json:"priced_assets"`
}

func summarize(tokens []domain.TrackedToken) Summary {
	s := domain.Summarize(sorting.Filter(sorting.PortfolioView, tokens))
	return Summary{
		NetWorth:   s.NetWorth.String(),
		TotalCost:  s.TotalCost.String(),
		PnL:        s.PnL.String(),
		PnLPercent: null(s.PnLPercent),
		Priced:     s.Assets,
	}
}

// Export writes tokens to a new file in opts.OutputDir and returns its path.
func (e *Exporter) Export(tokens []domain.TrackedToken, opts Options) (string, error) {
	selected := tokens
	if opts.View != nil {
		selected = sorting.DefaultState(*opts.View).Apply(tokens)
	}
	if len(selected) == 0 {
		return "", fmt.Errorf("no tokens to export")
	}

	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	outputPath := filepath.Join(opts.OutputDir, e.filename(opts))

	rows := make([]Row, len(selected))
	for i, t := range selected {
		rows[i] = NewRow(t)
	}

	var err error
	switch opts.Format {
	case FormatCSV:
		err = writeCSV(rows, outputPath)
	case FormatJSON:
		err = e.writeJSON(rows, summarize(selected), outputPath)
	default:
		err = fmt.Errorf("unsupported format: %s", opts.Format)
	}
	if err != nil {
		return "", err
	}

	e.logger.Info("Tokens exported",
		zap.String("file", outputPath),
		zap.Int("count", len(rows)),
		zap.String("format", string(opts.Format)))
	return outputPath, nil
}

func (e *Exporter) filename(opts Options) string {
	prefix := "tokens_all"
	if opts.View != nil {
		prefix = "tokens_" + opts.View.String()
	}
	return fmt.Sprintf("%s_%s.%s", prefix, e.now().Format("20060102_150405"), opts.Format)
}

func writeCSV(rows []Row, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(csvHeaders); err != nil {
		return fmt.Errorf("failed to write CSV headers: %w", err)
	}
	for _, r := range rows {
		if err := writer.Write(r.csv()); err != nil {
			return fmt.Errorf("failed to write token %s: %w", r.ID, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

func (e *Exporter) writeJSON(rows []Row, summary Summary, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create JSON file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")

	data := struct {
		ExportTime time.Time `json:"export_time"`
		TokenCount int       `json:"token_count"`
		Tokens     []Row     `json:"tokens"`
		Summary    Summary   `json:"summary"`
	}{
		ExportTime: e.now(),
		TokenCount: len(rows),
		Tokens:     rows,
		Summary:    summary,
	}
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
