// Package format renders prices, amounts and percentages for the dashboard.
package format

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// NA is shown for values the price source did not provide.
const NA = "N/A"

var (
	printer = message.NewPrinter(language.English)

	thousand = decimal.NewFromInt(1_000)
	million  = decimal.NewFromInt(1_000_000)
	billion  = decimal.NewFromInt(1_000_000_000)
	one      = decimal.NewFromInt(1)
)

func grouped(d decimal.Decimal, places int) string {
	return printer.Sprint(number.Decimal(d.InexactFloat64(), number.Scale(places)))
}

// Price formats a quote: 2 decimals from $1000, 3 from $1 and 6 below.
func Price(d decimal.Decimal) string {
	places := 6
	switch abs := d.Abs(); {
	case abs.GreaterThanOrEqual(thousand):
		places = 2
	case abs.GreaterThanOrEqual(one):
		places = 3
	}
	d = d.Round(int32(places))
	if d.IsNegative() {
		return "-$" + grouped(d.Neg(), places)
	}
	return "$" + grouped(d, places)
}

// Compact formats volumes and market caps as $x.yB or $x.yM.
func Compact(d decimal.NullDecimal) string {
	if !d.Valid {
		return NA
	}
	if d.Decimal.Abs().GreaterThanOrEqual(billion) {
		return "$" + d.Decimal.Div(billion).StringFixed(1) + "B"
	}
	return "$" + d.Decimal.Div(million).StringFixed(1) + "M"
}

// Percent formats a signed percentage with two decimals.
func Percent(d decimal.NullDecimal) string {
	if !d.Valid {
		return NA
	}
	s := d.Decimal.StringFixed(2) + "%"
	if d.Decimal.IsPositive() || d.Decimal.StringFixed(2) == "0.00" {
		return "+" + s
	}
	return s
}

// USD formats a money amount in cents precision, e.g. $1,234.56.
func USD(d decimal.Decimal) string {
	cents := d.Shift(2).Round(0).IntPart()
	return money.New(cents, money.USD).Display()
}

// SignedUSD is USD with an explicit plus sign for gains.
func SignedUSD(d decimal.Decimal) string {
	if d.Round(2).IsPositive() {
		return "+" + USD(d)
	}
	return USD(d)
}

// OptionalUSD is USD or N/A.
func OptionalUSD(d decimal.NullDecimal) string {
	if !d.Valid {
		return NA
	}
	return USD(d.Decimal)
}

// Amount formats a holding quantity with four decimals and grouping.
func Amount(d decimal.Decimal) string {
	return grouped(d.Round(4), 4)
}

// Share formats an allocation percentage.
func Share(d decimal.Decimal) string {
	return d.StringFixed(1) + "%"
}
