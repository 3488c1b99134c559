package format

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func nd(s string) decimal.NullDecimal { return decimal.NullDecimal{Decimal: d(s), Valid: true} }

func TestPrice(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"50000.5", "$50,000.50"},
		{"1000", "$1,000.00"},
		{"250", "$250.000"},
		{"1", "$1.000"},
		{"0.5", "$0.500000"},
		{"0.000125", "$0.000125"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Price(d(tt.in)))
		})
	}
}

func TestCompact(t *testing.T) {
	assert.Equal(t, "$980.0B", Compact(nd("980000000000")))
	assert.Equal(t, "$1.5B", Compact(nd("1500000000")))
	assert.Equal(t, "$250.0M", Compact(nd("250000000")))
	assert.Equal(t, NA, Compact(decimal.NullDecimal{}))
}

func TestPercent(t *testing.T) {
	assert.Equal(t, "+2.50%", Percent(nd("2.5")))
	assert.Equal(t, "-3.25%", Percent(nd("-3.25")))
	assert.Equal(t, "+0.00%", Percent(nd("0")))
	assert.Equal(t, NA, Percent(decimal.NullDecimal{}))
}

func TestUSD(t *testing.T) {
	assert.Equal(t, "$2,500.00", USD(d("2500")))
	assert.Equal(t, "$0.13", USD(d("0.125")))
	assert.Equal(t, "-$500.00", USD(d("-500")))
	assert.Equal(t, "+$1,000.00", SignedUSD(d("1000")))
	assert.Equal(t, "-$1.00", SignedUSD(d("-1")))
	assert.Equal(t, "$0.00", SignedUSD(d("0")))
	assert.Equal(t, NA, OptionalUSD(decimal.NullDecimal{}))
}

func TestAmountAndShare(t *testing.T) {
	assert.Equal(t, "10.0000", Amount(d("10")))
	assert.Equal(t, "12,345.6789", Amount(d("12345.6789")))
	assert.Equal(t, "33.3%", Share(d("33.333")))
}
