package services

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// IST is India Standard Time. India observes no DST so a fixed zone is exact
// and does not depend on the host's tzdata.
var IST = time.FixedZone("IST", 5*3600+30*60)

// FormatINR formats an amount in Indian Rupee notation with 2 decimal
// places, grouping digits the Indian way: ₹1,23,45,678.90.
func FormatINR(amount float64) string {
	return formatRupees(amount, 2)
}

// FormatINRWhole is FormatINR rounded to whole rupees, for summary cards.
func FormatINRWhole(amount float64) string {
	return formatRupees(math.Round(amount), 0)
}

// FormatDecimalINR formats an aggregated decimal total like FormatINR.
func FormatDecimalINR(d decimal.Decimal) string {
	return FormatINR(d.InexactFloat64())
}

func formatRupees(amount float64, decimals int) string {
	negative := false
	if amount < 0 {
		negative = true
		amount = -amount
	}

	raw := fmt.Sprintf("%.*f", decimals, amount)

	intPart, decPart, hasDec := strings.Cut(raw, ".")
	result := "₹" + applyIndianGrouping(intPart)
	if hasDec {
		result += "." + decPart
	}
	if negative && strings.Trim(raw, "0.") != "" {
		result = "-" + result
	}
	return result
}

// applyIndianGrouping inserts commas into an integer string using the
// Indian numbering system: the rightmost 3 digits form the first group,
// then every 2 digits form subsequent groups.
func applyIndianGrouping(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}

	result := s[n-3:]
	remaining := s[:n-3]

	for len(remaining) > 2 {
		result = remaining[len(remaining)-2:] + "," + result
		remaining = remaining[:len(remaining)-2]
	}
	if len(remaining) > 0 {
		result = remaining + "," + result
	}

	return result
}

// FormatDate renders t as DD/MM/YYYY in IST.
func FormatDate(t time.Time) string {
	return t.In(IST).Format("02/01/2006")
}

// FormatDateLong renders t in the en-IN long form, e.g. "5 October 2026", in IST.
func FormatDateLong(t time.Time) string {
	return t.In(IST).Format("2 January 2006")
}

// FormatFileDate renders t as DD-MM-YYYY in IST, safe for filenames.
func FormatFileDate(t time.Time) string {
	return t.In(IST).Format("02-01-2006")
}

// FormatOptionalDate renders a nullable date, or "N/A".
func FormatOptionalDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "N/A"
	}
	return FormatDate(*t)
}

// FormatPercent renders a rate with one decimal place.
func FormatPercent(p float64) string {
	return fmt.Sprintf("%.1f%%", p)
}

// FormatArea renders a property's area with its unit, dropping a zero fraction.
func FormatArea(area float64, t PropertyType) string {
	return formatQty(area) + " " + t.AreaUnit()
}

// formatQty renders whole numbers without decimals and others with two.
func formatQty(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.2f", v)
}
