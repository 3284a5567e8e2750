package calculation

import (
	"math"

	"github.com/rgehrsitz/dispo/internal/domain"
	"github.com/rgehrsitz/dispo/pkg/dateutil"
	"github.com/shopspring/decimal"
)

// DaysPerYear is the year length used for date-sensitive discounting
const DaysPerYear = 365.0

// RatePlaces is the precision rates are reported at
const RatePlaces = 6

// SolverOptions bounds the XIRR root search
type SolverOptions struct {
	MaxIterations int
	Tolerance     float64
}

// DefaultSolverOptions returns the standard XIRR search settings
func DefaultSolverOptions() SolverOptions {
	return SolverOptions{
		MaxIterations: 100,
		Tolerance:     1e-7,
	}
}

// flowTerms converts a series into (amount, years since first event) pairs
func flowTerms(events []domain.CashFlowEvent) (amounts, years []float64) {
	amounts = make([]float64, len(events))
	years = make([]float64, len(events))
	d0 := events[0].Date
	for i, e := range events {
		amounts[i] = e.Amount.InexactFloat64()
		years[i] = float64(dateutil.DaysBetween(d0, e.Date)) / DaysPerYear
	}
	return amounts, years
}

func presentValue(amounts, years []float64, rate float64) float64 {
	pv := 0.0
	for i, a := range amounts {
		pv += a / math.Pow(1+rate, years[i])
	}
	return pv
}

func presentValueSlope(amounts, years []float64, rate float64) float64 {
	d := 0.0
	for i, a := range amounts {
		d -= years[i] * a / math.Pow(1+rate, years[i]+1)
	}
	return d
}

// XIRR solves Σ a_i / (1+r)^((d_i-d_0)/365) = 0 for r. It returns nil when
// the rate is undefined: fewer than two events, no sign change, every event
// on the same date, or no convergence within the iteration bound.
func XIRR(events []domain.CashFlowEvent, opts SolverOptions) *decimal.Decimal {
	if len(events) < 2 {
		return nil
	}
	if opts.MaxIterations <= 0 {
		opts = DefaultSolverOptions()
	}

	hasIn, hasOut, spread := false, false, false
	for _, e := range events {
		if e.Amount.IsPositive() {
			hasIn = true
		}
		if e.Amount.IsNegative() {
			hasOut = true
		}
		if dateutil.DaysBetween(events[0].Date, e.Date) != 0 {
			spread = true
		}
	}
	if !hasIn || !hasOut || !spread {
		return nil
	}

	amounts, years := flowTerms(events)

	rate, ok := newtonRate(amounts, years, opts)
	if !ok {
		rate, ok = bisectRate(amounts, years, opts)
	}
	if !ok {
		return nil
	}

	r := decimal.NewFromFloat(rate).Round(RatePlaces)
	return &r
}

func newtonRate(amounts, years []float64, opts SolverOptions) (float64, bool) {
	rate := 0.1
	for i := 0; i < opts.MaxIterations; i++ {
		f := presentValue(amounts, years, rate)
		df := presentValueSlope(amounts, years, rate)
		if df == 0 || math.IsNaN(df) || math.IsInf(df, 0) {
			return 0, false
		}
		next := rate - f/df
		if next <= -1 || math.IsNaN(next) || math.IsInf(next, 0) {
			return 0, false
		}
		if math.Abs(next-rate) < opts.Tolerance {
			return next, true
		}
		rate = next
	}
	return 0, false
}

// bisectRate brackets a root in (-1, hi] by growing hi, then halves the
// bracket until it is narrower than the tolerance
func bisectRate(amounts, years []float64, opts SolverOptions) (float64, bool) {
	lo := -0.999999
	hi := 1.0
	fLo := presentValue(amounts, years, lo)
	fHi := presentValue(amounts, years, hi)
	for i := 0; sameSign(fLo, fHi); i++ {
		if i >= opts.MaxIterations || hi > 1e6 {
			return 0, false
		}
		hi *= 2
		fHi = presentValue(amounts, years, hi)
	}

	for i := 0; i < opts.MaxIterations; i++ {
		mid := (lo + hi) / 2
		fMid := presentValue(amounts, years, mid)
		if math.IsNaN(fMid) {
			return 0, false
		}
		if sameSign(fLo, fMid) {
			lo, fLo = mid, fMid
		} else {
			hi = mid
		}
		if hi-lo < opts.Tolerance {
			return (lo + hi) / 2, true
		}
	}
	return 0, false
}

func sameSign(a, b float64) bool {
	return (a > 0 && b > 0) || (a < 0 && b < 0)
}
