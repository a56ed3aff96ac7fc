package report

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func printer() *message.Printer { return message.NewPrinter(language.English) }

// Currency renders d as US dollars with two decimals and thousands
// separators: $1,200.50.
func Currency(d decimal.Decimal) string {
	d = d.Round(2)
	fixed := d.StringFixed(2)
	frac := fixed[strings.IndexByte(fixed, '.')+1:]
	whole := printer().Sprintf("%d", d.Abs().IntPart())
	if d.IsNegative() {
		return "-$" + whole + "." + frac
	}
	return "$" + whole + "." + frac
}

// Compact abbreviates counts the way the KPI cards do: 1.2K, 3.4M.
func Compact(n int64) string {
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%.1fK", float64(n)/1_000)
	}
	return Count(n)
}

// Count renders n with thousands separators.
func Count(n int64) string { return printer().Sprintf("%d", n) }

func Percent(v float64) string { return fmt.Sprintf("%.2f%%", v) }
