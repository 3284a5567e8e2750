package calculation

import (
	"github.com/rgehrsitz/dispo/internal/domain"
	"github.com/shopspring/decimal"
)

// AccrualOptions controls a cost recompute. Components listed in Skip keep
// the line they had in Previous instead of being recomputed.
type AccrualOptions struct {
	Previous *domain.CostBreakdown
	Skip     map[string]bool
}

// SkipUnaffected returns the components whose amount cannot change when
// changedPhaseID's override moves: static lines and accruing lines that do
// not accrue over that phase.
func SkipUnaffected(asset *domain.Asset, changedPhaseID string) map[string]bool {
	skip := make(map[string]bool, len(asset.Costs))
	for _, c := range asset.Costs {
		if !c.AccruesOver(changedPhaseID) {
			skip[c.ID] = true
		}
	}
	return skip
}

// SkipAll marks every component as unaffected, used for price and proceeds edits
func SkipAll(asset *domain.Asset) map[string]bool {
	skip := make(map[string]bool, len(asset.Costs))
	for _, c := range asset.Costs {
		skip[c.ID] = true
	}
	return skip
}

// AccrueCosts computes the cost breakdown for the timeline's scenario.
// Each line is rounded to the cent as soon as it is produced and the totals
// are sums of those rounded lines.
func AccrueCosts(asset *domain.Asset, tl domain.Timeline, opts AccrualOptions) domain.CostBreakdown {
	var out domain.CostBreakdown

	for _, c := range asset.Costs {
		if !c.AppliesTo(tl.Scenario) {
			continue
		}
		if opts.Skip[c.ID] && opts.Previous != nil {
			if prev, ok := opts.Previous.Line(c.ID); ok {
				out.Lines = append(out.Lines, prev)
				continue
			}
		}
		out.Lines = append(out.Lines, accrueLine(c, tl))
	}

	total := decimal.Zero
	oneTime := decimal.Zero
	known := true
	for _, l := range out.Lines {
		if l.Amount == nil {
			known = false
			continue
		}
		total = total.Add(*l.Amount)
		if l.AtAcquisition {
			oneTime = oneTime.Add(*l.Amount)
		}
	}

	out.OneTime = domain.DecimalPtr(domain.RoundCents(oneTime))
	if known {
		out.Total = domain.DecimalPtr(domain.RoundCents(total))
		out.Carry = domain.DecimalPtr(domain.RoundCents(total.Sub(oneTime)))
	}
	return out
}

func accrueLine(c domain.CostComponent, tl domain.Timeline) domain.CostLine {
	line := domain.CostLine{
		ComponentID:   c.ID,
		Name:          c.Name,
		Kind:          c.Kind,
		AtAcquisition: c.AtAcquisition,
	}

	switch c.Kind {
	case domain.CostAccruing:
		months := monthsOver(tl, c.Phases)
		line.Months = months
		if months != nil {
			line.Amount = domain.DecimalPtr(domain.RoundCents(c.MonthlyRate.Mul(decimal.NewFromInt(int64(*months)))))
		}
	default:
		line.Amount = domain.DecimalPtr(domain.RoundCents(c.Amount))
	}
	return line
}
