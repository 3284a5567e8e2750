package compare

import (
	"fmt"

	"github.com/rgehrsitz/dispo/internal/domain"
	"github.com/shopspring/decimal"
)

// ComparisonResult holds the headline figures of one computed scenario and,
// for alternatives, their differences from the base. Nil means unknown.
type ComparisonResult struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	Scenario    domain.ScenarioKind    `json:"scenario"`
	Result      *domain.ScenarioResult `json:"-"`

	// Key Metrics
	TotalMonths *int             `json:"totalMonths"`
	TotalCost   *decimal.Decimal `json:"totalCost"`
	NetProfit   *decimal.Decimal `json:"netProfit"`
	MOIC        *decimal.Decimal `json:"moic"`
	IRR         *decimal.Decimal `json:"irr"`
	NPV         *decimal.Decimal `json:"npv"`

	// Comparison to Base
	MonthsDiff    *int             `json:"monthsDiff,omitempty"`
	CostDiff      *decimal.Decimal `json:"costDiff,omitempty"`
	NetProfitDiff *decimal.Decimal `json:"netProfitDiff,omitempty"`
	IRRDiff       *decimal.Decimal `json:"irrDiff,omitempty"`
	NPVDiff       *decimal.Decimal `json:"npvDiff,omitempty"`
}

// ComparisonSet is a base result and the alternatives measured against it
type ComparisonSet struct {
	AssetID            string             `json:"assetId"`
	BaseName           string             `json:"baseName"`
	BaseResult         *ComparisonResult  `json:"baseResult"`
	AlternativeResults []ComparisonResult `json:"alternativeResults"`
	Recommendations    []string           `json:"recommendations"`
	ConfigPath         string             `json:"configPath,omitempty"`
}

// MetricsCalculator extracts comparison figures from scenario results
type MetricsCalculator struct{}

// NewMetricsCalculator creates a new metrics calculator
func NewMetricsCalculator() *MetricsCalculator {
	return &MetricsCalculator{}
}

// CalculateMetrics pulls the headline figures out of a scenario result
func (mc *MetricsCalculator) CalculateMetrics(name string, r *domain.ScenarioResult) ComparisonResult {
	return ComparisonResult{
		Name:        name,
		Scenario:    r.Scenario,
		Result:      r,
		TotalMonths: r.Timeline.TotalMonths,
		TotalCost:   r.Costs.Total,
		NetProfit:   r.Metrics.NetProfit,
		MOIC:        r.Metrics.MOIC,
		IRR:         r.Metrics.IRR,
		NPV:         r.Metrics.NPV,
	}
}

// CalculateComparison fills in the differences of scenario from base
func (mc *MetricsCalculator) CalculateComparison(scenario, base ComparisonResult) ComparisonResult {
	if scenario.TotalMonths != nil && base.TotalMonths != nil {
		d := *scenario.TotalMonths - *base.TotalMonths
		scenario.MonthsDiff = &d
	}
	scenario.CostDiff = diff(scenario.TotalCost, base.TotalCost)
	scenario.NetProfitDiff = diff(scenario.NetProfit, base.NetProfit)
	scenario.IRRDiff = diff(scenario.IRR, base.IRR)
	scenario.NPVDiff = diff(scenario.NPV, base.NPV)
	return scenario
}

func diff(a, b *decimal.Decimal) *decimal.Decimal {
	if a == nil || b == nil {
		return nil
	}
	d := a.Sub(*b)
	return &d
}

// GenerateRecommendations picks out the alternatives that beat the base
func GenerateRecommendations(compSet *ComparisonSet) []string {
	recommendations := []string{}

	if compSet.BaseResult == nil || len(compSet.AlternativeResults) == 0 {
		return recommendations
	}
	base := compSet.BaseResult

	// Highest net profit
	best := base
	for i := range compSet.AlternativeResults {
		alt := &compSet.AlternativeResults[i]
		if greater(alt.NetProfit, best.NetProfit) {
			best = alt
		}
	}
	if best != base {
		msg := "Best Profit: " + best.Name + " nets $" + best.NetProfit.StringFixed(2)
		if base.NetProfit != nil {
			gain := best.NetProfit.Sub(*base.NetProfit)
			msg = "Best Profit: " + best.Name + " nets $" + gain.StringFixed(2) + " more than " + base.Name
		}
		recommendations = append(recommendations, msg)
	}

	// Highest IRR
	best = base
	for i := range compSet.AlternativeResults {
		alt := &compSet.AlternativeResults[i]
		if greater(alt.IRR, best.IRR) {
			best = alt
		}
	}
	if best != base {
		recommendations = append(recommendations,
			"Best IRR: "+best.Name+" at "+domain.FormatPercent(best.IRR)+
				" vs "+domain.FormatPercent(base.IRR))
	}

	// Shortest hold
	fastest := base
	for i := range compSet.AlternativeResults {
		alt := &compSet.AlternativeResults[i]
		if alt.TotalMonths != nil && (fastest.TotalMonths == nil || *alt.TotalMonths < *fastest.TotalMonths) {
			fastest = alt
		}
	}
	if fastest != base && base.TotalMonths != nil {
		recommendations = append(recommendations,
			"Shortest Hold: "+fastest.Name+" exits "+
				fmt.Sprintf("%d months", *base.TotalMonths-*fastest.TotalMonths)+" sooner")
	}

	// Losses
	for _, alt := range compSet.AlternativeResults {
		if alt.NetProfit != nil && alt.NetProfit.IsNegative() {
			recommendations = append(recommendations,
				"Loss Warning: "+alt.Name+" loses $"+alt.NetProfit.Abs().StringFixed(2))
		}
	}

	return recommendations
}

// greater reports a > b; an unknown a never wins and an unknown b always loses
func greater(a, b *decimal.Decimal) bool {
	if a == nil {
		return false
	}
	if b == nil {
		return true
	}
	return a.GreaterThan(*b)
}
