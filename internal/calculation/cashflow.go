package calculation

import (
	"time"

	"github.com/rgehrsitz/dispo/internal/domain"
	"github.com/rgehrsitz/dispo/pkg/dateutil"
	"github.com/shopspring/decimal"
)

// SeriesInput carries everything the cash-flow builder needs. Any nil field
// makes the series unknown.
type SeriesInput struct {
	AcquisitionDate  *time.Time
	AcquisitionPrice *decimal.Decimal
	OneTimeCosts     *decimal.Decimal
	TotalCost        *decimal.Decimal
	Proceeds         *decimal.Decimal
	Months           *int
}

func (in SeriesInput) complete() bool {
	return in.AcquisitionDate != nil && in.AcquisitionPrice != nil && in.OneTimeCosts != nil &&
		in.TotalCost != nil && in.Proceeds != nil && in.Months != nil
}

// BuildCashFlows produces the dated series for one scenario:
//
//	t0:        -(price + one-time costs)
//	t0+1..N:   -carry/N each, the last month absorbing the rounding residual
//	t0+N:      + proceeds, folded into the last month
//
// With N = 0 the carry and proceeds land on the acquisition date as a second
// event. The series sums exactly to proceeds - price - total cost.
func BuildCashFlows(in SeriesInput) []domain.CashFlowEvent {
	if !in.complete() {
		return nil
	}

	start := *in.AcquisitionDate
	n := *in.Months
	if n < 0 {
		n = 0
	}
	carry := domain.RoundCents(in.TotalCost.Sub(*in.OneTimeCosts))

	events := make([]domain.CashFlowEvent, 0, n+1)
	events = append(events, domain.CashFlowEvent{
		Date:   start,
		Amount: domain.RoundCents(in.AcquisitionPrice.Add(*in.OneTimeCosts)).Neg(),
	})

	if n == 0 {
		events = append(events, domain.CashFlowEvent{
			Date:   start,
			Amount: domain.RoundCents(in.Proceeds.Sub(carry)),
		})
		return events
	}

	perMonth := domain.RoundCents(carry.Div(decimal.NewFromInt(int64(n))))
	spent := decimal.Zero
	for m := 1; m <= n; m++ {
		amount := perMonth
		if m == n {
			amount = carry.Sub(spent)
		}
		spent = spent.Add(amount)

		flow := amount.Neg()
		if m == n {
			flow = flow.Add(*in.Proceeds)
		}
		events = append(events, domain.CashFlowEvent{
			Date:   dateutil.AddMonths(start, m),
			Amount: domain.RoundCents(flow),
		})
	}
	return events
}

// SumFlows returns the plain sum of the series
func SumFlows(events []domain.CashFlowEvent) decimal.Decimal {
	sum := decimal.Zero
	for _, e := range events {
		sum = sum.Add(e.Amount)
	}
	return sum
}
