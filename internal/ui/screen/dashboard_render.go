package screen

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rovshanmuradov/coinwatch/internal/domain"
	"github.com/rovshanmuradov/coinwatch/internal/sorting"
	"github.com/rovshanmuradov/coinwatch/internal/ui/component"
	"github.com/rovshanmuradov/coinwatch/internal/ui/format"
	"github.com/rovshanmuradov/coinwatch/internal/ui/style"
	"github.com/shopspring/decimal"
)

var (
	palette = style.DefaultPalette()
	invalid = decimal.NullDecimal{}
)

func valid(d decimal.Decimal) decimal.NullDecimal { return decimal.NewNullDecimal(d) }

func columnWidth(c sorting.Column) int {
	switch c {
	case sorting.Symbol:
		return 10
	case sorting.Change1h, sorting.Change24h, sorting.Change7d, sorting.Change30d, sorting.Change90d,
		sorting.VolumeChange, sorting.ProfitLossPercent:
		return 11
	case sorting.Volume24h, sorting.MarketCap:
		return 14
	default:
		return 16
	}
}

func columnAlign(c sorting.Column) lipgloss.Position {
	if c == sorting.Symbol {
		return lipgloss.Left
	}
	return lipgloss.Right
}

// quote reads an optional market field, invalid when there is no quote.
func quote(t domain.TrackedToken, field func(m *domain.MarketFields) decimal.NullDecimal) decimal.NullDecimal {
	if t.Market == nil {
		return invalid
	}
	return field(t.Market)
}

func changeCell(d decimal.NullDecimal) component.Cell {
	return component.Cell{Text: format.Percent(d), Color: palette.ChangeColor(d)}
}

// CellFor renders one column of a token for display.
func CellFor(t domain.TrackedToken, c sorting.Column) component.Cell {
	switch c {
	case sorting.Symbol:
		return component.Cell{Text: t.Symbol(), Color: palette.Header}
	case sorting.Price:
		if t.Market == nil {
			return component.Cell{Text: format.NA}
		}
		return component.Cell{Text: format.Price(t.Market.Price)}
	case sorting.Change1h:
		return changeCell(quote(t, func(m *domain.MarketFields) decimal.NullDecimal { return m.PercentChange1h }))
	case sorting.Change24h:
		return changeCell(quote(t, func(m *domain.MarketFields) decimal.NullDecimal { return m.PercentChange24h }))
	case sorting.Change7d:
		return changeCell(quote(t, func(m *domain.MarketFields) decimal.NullDecimal { return m.PercentChange7d }))
	case sorting.Change30d:
		return changeCell(quote(t, func(m *domain.MarketFields) decimal.NullDecimal { return m.PercentChange30d }))
	case sorting.Change90d:
		return changeCell(quote(t, func(m *domain.MarketFields) decimal.NullDecimal { return m.PercentChange90d }))
	case sorting.Volume24h:
		return component.Cell{Text: format.Compact(quote(t, func(m *domain.MarketFields) decimal.NullDecimal { return m.Volume24h }))}
	case sorting.VolumeChange:
		return changeCell(quote(t, func(m *domain.MarketFields) decimal.NullDecimal { return m.VolumeChange24h }))
	case sorting.MarketCap:
		return component.Cell{Text: format.Compact(quote(t, func(m *domain.MarketFields) decimal.NullDecimal { return m.MarketCap }))}
	}

	d, ok := domain.Derive(t)
	if !ok {
		return component.Cell{Text: format.NA}
	}
	switch c {
	case sorting.Holdings:
		return component.Cell{Text: format.Amount(t.Holding.Amount)}
	case sorting.AvgBuy:
		return component.Cell{Text: format.Price(t.Holding.AvgBuyPrice)}
	case sorting.CostBasis:
		return component.Cell{Text: format.USD(d.CostBasis)}
	case sorting.CurrentValue:
		return component.Cell{Text: format.OptionalUSD(d.CurrentValue)}
	case sorting.ProfitLoss:
		if !d.PnL.Valid {
			return component.Cell{Text: format.NA}
		}
		return component.Cell{Text: format.SignedUSD(d.PnL.Decimal), Color: palette.ChangeColor(d.PnL)}
	case sorting.ProfitLossPercent:
		return changeCell(d.PnLPercent)
	}
	return component.Cell{Text: format.NA}
}

func (s *DashboardScreen) renderPortfolio() string {
	summary := domain.Summarize(sorting.Filter(sorting.PortfolioView, s.tokens))

	change := func(amount decimal.Decimal, pct decimal.NullDecimal) string {
		text := format.SignedUSD(amount) + " (" + format.Percent(pct) + ")"
		return lipgloss.NewStyle().Foreground(palette.ChangeColor(valid(amount))).Render(text)
	}

	line := func(label, value string) string {
		return style.LabelStyle.Render(fmt.Sprintf("%-12s", label)) + " " + value
	}

	metrics := strings.Join([]string{
		style.PanelTitleStyle.Render("Portfolio Metrics"),
		line("Net Worth", style.ValueStyle.Render(format.USD(summary.NetWorth))),
		line("Total Cost", style.ValueStyle.Render(format.USD(summary.TotalCost))),
		line("Total P/L", change(summary.PnL, summary.PnLPercent)),
		line("24h Change", change(summary.Change24h, summary.Change24hPercent)),
		line("Assets", style.ValueStyle.Render(fmt.Sprintf("%d priced", summary.Assets))),
	}, "\n")

	allocation := style.PanelTitleStyle.Render("Allocation") + "\n" + s.alloc.View()

	panels := style.AdaptiveJoinHorizontal(s.width,
		style.PanelStyle.Render(metrics),
		style.PanelStyle.Render(allocation),
	)
	return panels + "\n" + s.table.View()
}

func (s *DashboardScreen) renderMarket() string {
	var content strings.Builder

	current, ok := s.fearGreed.Current()
	switch {
	case !ok && s.fgErr != nil:
		return style.PanelStyle.Render(style.ErrorStyle.Render("Fear & Greed unavailable: " + s.fgErr.Error()))
	case !ok && s.fgLoading:
		return style.PanelStyle.Render(style.MutedStyle.Render("Loading Fear & Greed Index..."))
	case !ok:
		return style.PanelStyle.Render(style.MutedStyle.Render("No Fear & Greed data. Press r to fetch."))
	}

	lo, hi := s.fearGreed.Range()
	title := fmt.Sprintf("Fear & Greed Index: %d %s (%s) | Min: %d | Max: %d",
		current.Value, trendArrow(s.fearGreed.Trend()), current.Classification, lo, hi)
	content.WriteString(lipgloss.NewStyle().Foreground(style.SentimentColor(current.Value)).Bold(true).Render(title))
	content.WriteString("\n\n")

	s.spark.SetData(s.fearGreed.Chronological()).SetColor(style.SentimentColor(current.Value))
	content.WriteString(s.spark.View())
	content.WriteString("\n")
	content.WriteString(style.MutedStyle.Render(fmt.Sprintf("last %d days, oldest on the left", len(s.fearGreed))))
	content.WriteString("\n\n")

	for i, p := range s.fearGreed {
		if i == 7 {
			break
		}
		value := lipgloss.NewStyle().Foreground(style.SentimentColor(p.Value)).Render(fmt.Sprintf("%3d", p.Value))
		content.WriteString(fmt.Sprintf("%s  %s  %s\n",
			style.LabelStyle.Render(p.Timestamp.Format("2006-01-02")), value, p.Classification))
	}

	if s.fgErr != nil {
		content.WriteString(style.WarningStyle.Render("last update failed: " + s.fgErr.Error()))
	}

	return style.PanelStyle.Render(strings.TrimRight(content.String(), "\n"))
}

func trendArrow(trend int) string {
	switch {
	case trend > 0:
		return "↑"
	case trend < 0:
		return "↓"
	default:
		return "→"
	}
}
