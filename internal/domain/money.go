package domain

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// CentPlaces is the number of decimal places money is kept at
const CentPlaces = 2

// RoundCents rounds d to the nearest cent, half away from zero.
// Every monetary intermediate goes through here so that any two
// computations of the same inputs produce identical cents.
func RoundCents(d decimal.Decimal) decimal.Decimal {
	return d.Round(CentPlaces)
}

// DecimalPtr returns a pointer to d
func DecimalPtr(d decimal.Decimal) *decimal.Decimal {
	return &d
}

// IntPtr returns a pointer to i
func IntPtr(i int) *int {
	return &i
}

// EqualCents reports whether two optional amounts are both unknown or equal to the cent
func EqualCents(a, b *decimal.Decimal) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return RoundCents(*a).Equal(RoundCents(*b))
}

// FormatMonths renders an optional month count, using a dash while unknown
func FormatMonths(m *int) string {
	if m == nil {
		return "—"
	}
	return strconv.Itoa(*m)
}

// FormatAmount renders an optional amount with two decimals, using a dash while unknown
func FormatAmount(d *decimal.Decimal) string {
	if d == nil {
		return "—"
	}
	return d.StringFixed(CentPlaces)
}

// FormatRate renders an optional ratio or rate to four places, using a dash while undefined
func FormatRate(d *decimal.Decimal) string {
	if d == nil {
		return "—"
	}
	return d.StringFixed(4)
}

// FormatPercent renders an optional rate as a percentage, using a dash while undefined
func FormatPercent(d *decimal.Decimal) string {
	if d == nil {
		return "—"
	}
	return d.Shift(2).StringFixed(2) + "%"
}
