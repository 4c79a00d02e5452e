package view

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScaledCurrency(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		decimals int
		want     string
	}{
		{"millions", 1_500_000, 2, "$1.50M"},
		{"below thousand", 999, 2, "$999.00"},
		{"exact thousand", 1000, 2, "$1.00K"},
		{"thousands", 12_345, 2, "$12.35K"},
		{"billions", 2_750_000_000, 2, "$2.75B"},
		{"thousands of billions are grouped", 1_234_000_000_000, 2, "$1,234.00B"},
		{"one decimal", 2_345_678, 1, "$2.3M"},
		{"zero decimals", 1_500_000, 0, "$2M"},
		{"half rounds away from zero", 1_050, 1, "$1.1K"},
		{"zero", 0, 2, "$0.00"},
		{"small", 0.125, 2, "$0.13"},
		{"negative not scaled", -2_500_000, 2, "-$2,500,000.00"},
		{"negative decimals clamp", 42.4, -1, "$42"},
		{"nan", math.NaN(), 2, NotAvailable},
		{"inf", math.Inf(1), 2, NotAvailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ScaledCurrency(tt.value, tt.decimals))
		})
	}
}

func TestCurrencyNegativeZero(t *testing.T) {
	assert.Equal(t, "$0.00", Currency(-0.001, 2))
}

func TestOptionalCurrency(t *testing.T) {
	v := 2_000_000.0
	assert.Equal(t, "$2.00M", OptionalCurrency(&v, 2))
	assert.Equal(t, NotAvailable, OptionalCurrency(nil, 2))
}

func TestPercentChange(t *testing.T) {
	tests := []struct {
		value float64
		want  string
	}{
		{-3.456, "-3.46%"},
		{0, "+0.00%"},
		{12.5, "+12.50%"},
		{0.004, "+0.00%"},
		{-0.004, "-0.00%"},
		{-100, "-100.00%"},
		{math.NaN(), NotAvailable},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, PercentChange(tt.value), "value %v", tt.value)
	}
}

func TestOptionalPercent(t *testing.T) {
	_, ok := OptionalPercent(nil)
	assert.False(t, ok)

	v := 1.234
	got, ok := OptionalPercent(&v)
	assert.True(t, ok)
	assert.Equal(t, "+1.23%", got)
}

func TestPrice(t *testing.T) {
	assert.Equal(t, "$0.66", Price("0.655", 2))
	assert.Equal(t, "$0.655", Price("0.655", 3))
	assert.Equal(t, "$0.00", Price("", 2))
	assert.Equal(t, "$0.00", Price("abc", 2))
	assert.Equal(t, "$1.000", Price(" 1 ", 3))
	assert.Equal(t, "$0.33", PriceFloat(1.0/3.0, 2))
	assert.Equal(t, NotAvailable, PriceFloat(math.NaN(), 2))
}

func TestPercent(t *testing.T) {
	assert.Equal(t, "65%", Percent("0.65"))
	assert.Equal(t, "0%", Percent("nope"))
	assert.Equal(t, "100%", Percent("0.999"))
}
