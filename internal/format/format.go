// Package format renders engine numbers the way the dashboard displays
// them: whole US dollars and grouped integers.
package format

import (
	"math"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const notANumber = "-"

var printer = message.NewPrinter(language.AmericanEnglish)

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Currency rounds to whole dollars and groups thousands: 1234.5 -> "$1,235".
// Non-finite values render as "-".
func Currency(v float64) string {
	if !finite(v) {
		return notANumber
	}
	n := decimal.NewFromFloat(v).Round(0).IntPart()
	if n < 0 {
		return printer.Sprintf("-$%d", -n)
	}
	return printer.Sprintf("$%d", n)
}

// Number groups thousands: 12345 -> "12,345".
func Number(n int) string {
	return printer.Sprintf("%d", n)
}

// Percent renders a one-decimal percentage: 12.345 -> "12.3%".
func Percent(v float64) string {
	if !finite(v) {
		return notANumber
	}
	return decimal.NewFromFloat(v).StringFixed(1) + "%"
}
