// Package view turns decoded Gamma API records into the values pages print:
// outcome prices, averages, abbreviated currency and signed percentages.
// Everything here is pure.
package view

import (
	"math"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// NotAvailable is printed for missing or non-numeric amounts
const NotAvailable = "N/A"

var scaleUnits = []struct {
	threshold float64
	suffix    string
}{
	{1e9, "B"},
	{1e6, "M"},
	{1e3, "K"},
}

// ScaledCurrency formats an amount as abbreviated USD, e.g. 1_500_000 with
// 2 decimals is "$1.50M" and 999 is "$999.00". Rounding is half away from
// zero. Negative amounts are never scaled.
func ScaledCurrency(value float64, decimals int) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return NotAvailable
	}
	if decimals < 0 {
		decimals = 0
	}

	for _, unit := range scaleUnits {
		if value >= unit.threshold {
			return Currency(value/unit.threshold, decimals) + unit.suffix
		}
	}
	return Currency(value, decimals)
}

// Currency formats an amount as USD with thousands separators, "$1,234.50".
func Currency(value float64, decimals int) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return NotAvailable
	}
	if decimals < 0 {
		decimals = 0
	}

	d := decimal.NewFromFloat(value).Round(int32(decimals))
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}

	intPart, fracPart, _ := strings.Cut(d.StringFixed(int32(decimals)), ".")
	if whole, err := strconv.ParseInt(intPart, 10, 64); err == nil {
		intPart = humanize.Comma(whole)
	}

	if fracPart == "" {
		return sign + "$" + intPart
	}
	return sign + "$" + intPart + "." + fracPart
}

// OptionalCurrency is ScaledCurrency for fields the upstream may omit
func OptionalCurrency(value *float64, decimals int) string {
	if value == nil {
		return NotAvailable
	}
	return ScaledCurrency(*value, decimals)
}

// PercentChange formats a signed percentage with two decimals; non-negative
// values get an explicit "+", so 0 is "+0.00%" and -3.456 is "-3.46%".
func PercentChange(value float64) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return NotAvailable
	}
	sign := "+"
	if value < 0 {
		sign = "-"
	}
	return sign + decimal.NewFromFloat(math.Abs(value)).StringFixed(2) + "%"
}

// OptionalPercent formats a change the upstream may omit; ok is false when
// there is nothing to show.
func OptionalPercent(value *float64) (string, bool) {
	if value == nil || math.IsNaN(*value) || math.IsInf(*value, 0) {
		return "", false
	}
	return PercentChange(*value), true
}

// Price formats a decimal price string such as "0.655" as "$0.66".
// Unparseable input prints as zero.
func Price(raw string, decimals int) string {
	if decimals < 0 {
		decimals = 0
	}
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		d = decimal.Zero
	}
	return "$" + d.StringFixed(int32(decimals))
}

// PriceFloat is Price for an already numeric value
func PriceFloat(value float64, decimals int) string {
	fixed := Fixed(value, decimals)
	if fixed == NotAvailable {
		return fixed
	}
	return "$" + fixed
}

// Fixed prints value with exactly decimals fractional digits
func Fixed(value float64, decimals int) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return NotAvailable
	}
	if decimals < 0 {
		decimals = 0
	}
	return decimal.NewFromFloat(value).StringFixed(int32(decimals))
}

// Percent renders a probability price (0..1) as a whole percentage, "65%".
func Percent(raw string) string {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		d = decimal.Zero
	}
	return d.Mul(decimal.NewFromInt(100)).StringFixed(0) + "%"
}
