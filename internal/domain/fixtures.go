package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SampleAsset returns a fully specified asset with a four-phase
// foreclosure-to-resale timeline. It backs the golden-value tests shared by
// the interactive and the stored computation paths, and the CLI demo.
func SampleAsset() *Asset {
	acquired := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)
	return &Asset{
		ID:               "REO-1042",
		Name:             "1042 Juniper Ct",
		AcquisitionPrice: DecimalPtr(decimal.NewFromInt(142500)),
		AcquisitionDate:  &acquired,
		Valuation: Valuation{
			BrokerPriceOpinion: DecimalPtr(decimal.NewFromInt(210000)),
			UnpaidBalance:      DecimalPtr(decimal.NewFromInt(188400)),
		},
		Phases: []Phase{
			{ID: "transfer", Name: "Servicing transfer", BaseMonths: IntPtr(2)},
			{ID: "foreclosure", Name: "Foreclosure", BaseMonths: IntPtr(6)},
			{ID: "renovation", Name: "Renovation", BaseMonths: IntPtr(3), Scenarios: []ScenarioKind{ScenarioRehab}},
			{ID: "marketing", Name: "Marketing", BaseMonths: IntPtr(3)},
		},
		Costs: []CostComponent{
			{ID: "taxes", Name: "Property taxes", Kind: CostAccruing, MonthlyRate: decimal.RequireFromString("412.17")},
			{ID: "insurance", Name: "Insurance", Kind: CostAccruing, MonthlyRate: decimal.RequireFromString("138.40")},
			{ID: "servicing", Name: "Servicing fees", Kind: CostAccruing, MonthlyRate: decimal.RequireFromString("95"), Phases: []string{"transfer", "foreclosure"}},
			{ID: "holding", Name: "Holding costs", Kind: CostAccruing, MonthlyRate: decimal.RequireFromString("350.33"), Phases: []string{"renovation", "marketing"}},
			{ID: "legal", Name: "Legal & title", Kind: CostStatic, Amount: decimal.RequireFromString("4850"), AtAcquisition: true},
			{ID: "rehab_budget", Name: "Renovation budget", Kind: CostStatic, Amount: decimal.RequireFromString("38500"), Scenarios: []ScenarioKind{ScenarioRehab}},
			{ID: "commission", Name: "Sales commission", Kind: CostStatic, Amount: decimal.RequireFromString("9600")},
		},
		Scenarios: []ScenarioDef{
			{Kind: ScenarioAsIs, Name: "As-is sale", Proceeds: DecimalPtr(decimal.NewFromInt(189000))},
			{Kind: ScenarioRehab, Name: "Renovate and sell", Proceeds: DecimalPtr(decimal.NewFromInt(262000))},
		},
		Assumptions: Assumptions{
			DiscountRate:   decimal.RequireFromString("0.10"),
			OverridePolicy: OverrideClamp,
		},
	}
}
