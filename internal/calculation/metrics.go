package calculation

import (
	"math"

	"github.com/rgehrsitz/dispo/internal/domain"
	"github.com/shopspring/decimal"
)

// GrossCost returns price + total cost, the capital put into the asset
func GrossCost(price, totalCost *decimal.Decimal) *decimal.Decimal {
	if price == nil || totalCost == nil {
		return nil
	}
	return domain.DecimalPtr(domain.RoundCents(price.Add(*totalCost)))
}

// NetProfit returns proceeds - total cost - price
func NetProfit(proceeds, price, totalCost *decimal.Decimal) *decimal.Decimal {
	gross := GrossCost(price, totalCost)
	if proceeds == nil || gross == nil {
		return nil
	}
	return domain.DecimalPtr(domain.RoundCents(proceeds.Sub(*gross)))
}

// MOIC returns proceeds / (total cost + price). It is undefined when the
// denominator is zero or negative.
func MOIC(proceeds, price, totalCost *decimal.Decimal) *decimal.Decimal {
	gross := GrossCost(price, totalCost)
	if proceeds == nil || gross == nil || !gross.IsPositive() {
		return nil
	}
	m := proceeds.DivRound(*gross, RatePlaces)
	return &m
}

// AnnualizedReturn compounds the holding-period return to a yearly rate:
// (netPL/gross + 1)^(12/months) - 1
func AnnualizedReturn(proceeds, price, totalCost *decimal.Decimal, months *int) *decimal.Decimal {
	gross := GrossCost(price, totalCost)
	if proceeds == nil || gross == nil || months == nil || *months <= 0 || !gross.IsPositive() {
		return nil
	}

	// decimal.Pow only takes integer exponents
	base := proceeds.Div(*gross).InexactFloat64()
	if base < 0 {
		return nil
	}
	rate := math.Pow(base, 12/float64(*months)) - 1
	if math.IsNaN(rate) || math.IsInf(rate, 0) {
		return nil
	}
	r := decimal.NewFromFloat(rate).Round(RatePlaces)
	return &r
}

// NPV discounts each event to the first event's date at the annual rate,
// rounding each term to the cent. At a zero rate it is the plain sum.
func NPV(events []domain.CashFlowEvent, rate decimal.Decimal) *decimal.Decimal {
	if len(events) == 0 {
		return nil
	}
	if rate.IsZero() {
		return domain.DecimalPtr(domain.RoundCents(SumFlows(events)))
	}

	r := rate.InexactFloat64()
	if r <= -1 {
		return nil
	}

	_, years := flowTerms(events)
	sum := decimal.Zero
	for i, e := range events {
		factor := math.Pow(1+r, -years[i])
		if math.IsNaN(factor) || math.IsInf(factor, 0) {
			return nil
		}
		sum = sum.Add(domain.RoundCents(e.Amount.Mul(decimal.NewFromFloat(factor))))
	}
	return &sum
}

// ComputeMetrics derives every return metric for one scenario
func ComputeMetrics(proceeds, price *decimal.Decimal, costs domain.CostBreakdown, months *int,
	events []domain.CashFlowEvent, discountRate decimal.Decimal, opts SolverOptions) domain.ReturnMetrics {
	m := domain.ReturnMetrics{
		GrossCost:        GrossCost(price, costs.Total),
		NetProfit:        NetProfit(proceeds, price, costs.Total),
		MOIC:             MOIC(proceeds, price, costs.Total),
		AnnualizedReturn: AnnualizedReturn(proceeds, price, costs.Total, months),
	}
	if events != nil {
		m.IRR = XIRR(events, opts)
		m.NPV = NPV(events, discountRate)
	}
	return m
}
