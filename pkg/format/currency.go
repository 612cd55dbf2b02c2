// Package format renders valuation figures for display.
package format

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/iwvelando/dcf-valuation/pkg/constants"
	"github.com/iwvelando/dcf-valuation/pkg/mathutil"
)

// Missing is shown in place of undefined values.
const Missing = "-"

var printer = message.NewPrinter(language.English)

// Currency returns a currency string with a dollar sign and thousands separators (e.g., "-$1,234.56").
func Currency(amount float64) string {
	if !mathutil.IsFinite(amount) {
		return Missing
	}
	formatted := printer.Sprintf("%.2f", math.Abs(amount))
	if amount < 0 {
		return "-$" + formatted
	}
	return "$" + formatted
}

var scales = []struct {
	divisor float64
	suffix  string
}{
	{1e12, "T"},
	{1e9, "B"},
	{1e6, "M"},
	{1e3, "K"},
}

// Compact abbreviates large amounts with a magnitude suffix (e.g., "$18.40B").
// Amounts below one thousand fall back to Currency.
func Compact(amount float64) string {
	if !mathutil.IsFinite(amount) {
		return Missing
	}
	abs := math.Abs(amount)
	for _, s := range scales {
		if abs >= s.divisor {
			sign := ""
			if amount < 0 {
				sign = "-"
			}
			return printer.Sprintf("%s$%.2f%s", sign, abs/s.divisor, s.suffix)
		}
	}
	return Currency(amount)
}

// Percent formats a rate as a percentage with two decimals (e.g., 0.0815 -> "8.15%").
func Percent(rate float64) string {
	if !mathutil.IsFinite(rate) {
		return Missing
	}
	return printer.Sprintf("%.2f%%", rate*constants.PercentageMultiplier)
}

// Ratio formats a plain multiple with two decimals.
func Ratio(value float64) string {
	if !mathutil.IsFinite(value) {
		return Missing
	}
	return printer.Sprintf("%.2f", value)
}
