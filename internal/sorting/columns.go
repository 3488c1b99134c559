package sorting

import "fmt"

// View selects which list a sort applies to.
type View int

const (
	WatchlistView View = iota
	PortfolioView
)

func (v View) String() string {
	switch v {
	case WatchlistView:
		return "watchlist"
	case PortfolioView:
		return "portfolio"
	default:
		return fmt.Sprintf("view(%d)", int(v))
	}
}

// Column is a sortable column of a view.
type Column int

const (
	Symbol Column = iota
	Price
	Change1h
	Change24h
	Change7d
	Change30d
	Change90d
	Volume24h
	VolumeChange
	MarketCap
	Holdings
	AvgBuy
	CurrentValue
	CostBasis
	ProfitLoss
	ProfitLossPercent
)

var columnHeaders = map[Column]string{
	Symbol:            "Symbol",
	Price:             "Price",
	Change1h:          "1h %",
	Change24h:         "24h %",
	Change7d:          "7d %",
	Change30d:         "30d %",
	Change90d:         "90d %",
	Volume24h:         "Volume 24h",
	VolumeChange:      "Vol Chg %",
	MarketCap:         "Market Cap",
	Holdings:          "Holdings",
	AvgBuy:            "Avg Buy",
	CurrentValue:      "Value",
	CostBasis:         "Cost Basis",
	ProfitLoss:        "P/L",
	ProfitLossPercent: "P/L %",
}

// Header returns the table header of the column.
func (c Column) Header() string {
	if h, ok := columnHeaders[c]; ok {
		return h
	}
	return fmt.Sprintf("column(%d)", int(c))
}

func (c Column) String() string { return c.Header() }

var viewColumns = map[View][]Column{
	WatchlistView: {Symbol, Price, Change1h, Change24h, Change7d, Change30d, Change90d, Volume24h, VolumeChange, MarketCap},
	PortfolioView: {Symbol, Price, Holdings, AvgBuy, CurrentValue, CostBasis, ProfitLoss, ProfitLossPercent, Change24h},
}

// Columns returns the columns of v in display and cycling order.
func Columns(v View) []Column {
	cols := viewColumns[v]
	out := make([]Column, len(cols))
	copy(out, cols)
	return out
}

// Supports reports whether c belongs to v.
func Supports(v View, c Column) bool {
	for _, col := range viewColumns[v] {
		if col == c {
			return true
		}
	}
	return false
}
