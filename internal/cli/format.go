// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	printer    = message.NewPrinter(language.AmericanEnglish)
	titleCaser = cases.Title(language.English)
)

// SetLocale switches the number grouping used by the currency formatters.
func SetLocale(tag string) error {
	t, err := language.Parse(tag)
	if err != nil {
		return fmt.Errorf("parsing locale %q: %w", tag, err)
	}
	printer = message.NewPrinter(t)
	return nil
}

// FormatCurrency formats a dollar amount with no cents.
// e.g., 1234.56 -> "$1,235"
func FormatCurrency(d decimal.Decimal) string {
	return currency(d, 0)
}

// FormatCurrencyFull formats a dollar amount with cents.
// e.g., 1234.5 -> "$1,234.50"
func FormatCurrencyFull(d decimal.Decimal) string {
	return currency(d, 2)
}

func currency(d decimal.Decimal, places int32) string {
	d = d.Round(places)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	if places == 0 {
		return sign + "$" + printer.Sprintf("%.0f", d.InexactFloat64())
	}
	return sign + "$" + printer.Sprintf("%.2f", d.InexactFloat64())
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}

	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatPercent formats a 0-100 percentage, dropping a zero fraction.
// e.g., 50 -> "50%", 37.5 -> "37.5%"
func FormatPercent(p float64) string {
	if p == math.Trunc(p) {
		return fmt.Sprintf("%.0f%%", p)
	}
	return fmt.Sprintf("%.1f%%", p)
}

// FormatPercentDelta formats the change between two percentages with sign.
func FormatPercentDelta(current, suggested float64) string {
	delta := suggested - current
	switch {
	case delta > 0:
		return "+" + FormatPercent(delta)
	case delta < 0:
		return "-" + FormatPercent(-delta)
	default:
		return "="
	}
}

// FormatMonths formats a fractional month count with one decimal.
func FormatMonths(m float64) string {
	return fmt.Sprintf("%.1f mo", m)
}

// FormatRunway formats an optional runway value.
func FormatRunway(m *float64) string {
	if m == nil {
		return "n/a"
	}
	return FormatMonths(*m)
}

// Title converts a snake_case or lower-case word to title case.
// e.g., "over_budget" -> "Over Budget"
func Title(s string) string {
	return titleCaser.String(strings.ReplaceAll(s, "_", " "))
}
