package utils

import (
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// Placeholder is rendered for any value that is not available.
const Placeholder = "--"

// -----------------------------------------------------------------------------

// Round2 converts f to a decimal rounded to two places.
func Round2(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f).Round(2)
}

// -----------------------------------------------------------------------------

// FormatVolume groups digits with commas: 1234567 -> "1,234,567".
func FormatVolume(v int64) string {
	return humanize.Comma(v)
}

// -----------------------------------------------------------------------------

// ParseVolume reads a display volume back into a number, ignoring grouping
// commas. Anything unparsable counts as zero.
func ParseVolume(s string) int64 {
	d, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(s), ",", ""))
	if err != nil {
		return 0
	}
	return d.IntPart()
}

// -----------------------------------------------------------------------------

// FormatMoney renders "$185.50".
func FormatMoney(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

// -----------------------------------------------------------------------------

// FormatSigned renders "+1.25" or "-0.40".
func FormatSigned(d decimal.Decimal) string {
	if d.IsNegative() {
		return d.StringFixed(2)
	}
	return "+" + d.StringFixed(2)
}

// -----------------------------------------------------------------------------

// FormatSignedPercent renders "+0.66%".
func FormatSignedPercent(d decimal.Decimal) string {
	return FormatSigned(d) + "%"
}
