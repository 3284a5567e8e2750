package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PhaseDuration is the resolved duration of one phase within a scenario
type PhaseDuration struct {
	PhaseID        string `json:"phaseId"`
	Name           string `json:"name"`
	BaseMonths     *int   `json:"baseMonths"`
	OverrideMonths int    `json:"overrideMonths"`
	Months         *int   `json:"months"` // nil while the base is unknown
}

// Timeline is the resolved phase list for a scenario
type Timeline struct {
	Scenario    ScenarioKind    `json:"scenario"`
	Phases      []PhaseDuration `json:"phases"`
	TotalMonths *int            `json:"totalMonths"`
}

// Months returns the effective months of phaseID in this timeline.
// The second value is false when the phase is not part of the scenario.
func (t Timeline) Months(phaseID string) (*int, bool) {
	for _, p := range t.Phases {
		if p.PhaseID == phaseID {
			return p.Months, true
		}
	}
	return nil, false
}

// CostLine is the computed amount of one cost component
type CostLine struct {
	ComponentID   string           `json:"componentId"`
	Name          string           `json:"name"`
	Kind          CostKind         `json:"kind"`
	Months        *int             `json:"months,omitempty"` // accrual months, accruing lines only
	Amount        *decimal.Decimal `json:"amount"`
	AtAcquisition bool             `json:"atAcquisition"`
}

// CostBreakdown holds per-category subtotals and their rolled-up totals
type CostBreakdown struct {
	Lines   []CostLine       `json:"lines"`
	Total   *decimal.Decimal `json:"total"`
	OneTime *decimal.Decimal `json:"oneTime"` // paid at the acquisition date
	Carry   *decimal.Decimal `json:"carry"`   // spread across the holding months
}

// Line returns the cost line for componentID
func (b CostBreakdown) Line(componentID string) (CostLine, bool) {
	for _, l := range b.Lines {
		if l.ComponentID == componentID {
			return l, true
		}
	}
	return CostLine{}, false
}

// CashFlowEvent is a single dated, signed amount; negative values are outflows
type CashFlowEvent struct {
	Date   time.Time       `json:"date"`
	Amount decimal.Decimal `json:"amount"`
}

// ReturnMetrics are derived from the cash-flow series and cost totals.
// A nil field means the metric is undefined for the current inputs.
type ReturnMetrics struct {
	GrossCost        *decimal.Decimal `json:"grossCost"`
	NetProfit        *decimal.Decimal `json:"netProfit"`
	MOIC             *decimal.Decimal `json:"moic"`
	AnnualizedReturn *decimal.Decimal `json:"annualizedReturn"`
	IRR              *decimal.Decimal `json:"irr"`
	NPV              *decimal.Decimal `json:"npv"`
}

// ScenarioResult is the full computed state of one scenario
type ScenarioResult struct {
	Scenario         ScenarioKind     `json:"scenario"`
	Name             string           `json:"name"`
	AcquisitionPrice *decimal.Decimal `json:"acquisitionPrice"`
	Proceeds         *decimal.Decimal `json:"proceeds"`
	Timeline         Timeline         `json:"timeline"`
	Costs            CostBreakdown    `json:"costs"`
	CashFlows        []CashFlowEvent  `json:"cashFlows"`
	Metrics          ReturnMetrics    `json:"metrics"`
}

// TotalsSnapshot is the persisted summary of a scenario result, used to
// check that two computations of the same inputs agree to the cent
type TotalsSnapshot struct {
	AssetID     string           `json:"assetId"`
	Scenario    ScenarioKind     `json:"scenario"`
	TotalMonths *int             `json:"totalMonths"`
	TotalCost   *decimal.Decimal `json:"totalCost"`
	NetProfit   *decimal.Decimal `json:"netProfit"`
	MOIC        *decimal.Decimal `json:"moic"`
	IRR         *decimal.Decimal `json:"irr"`
	NPV         *decimal.Decimal `json:"npv"`
	ComputedAt  time.Time        `json:"computedAt"`
}

// Snapshot summarizes the result for persistence
func (r *ScenarioResult) Snapshot(assetID string, at time.Time) TotalsSnapshot {
	return TotalsSnapshot{
		AssetID:     assetID,
		Scenario:    r.Scenario,
		TotalMonths: r.Timeline.TotalMonths,
		TotalCost:   r.Costs.Total,
		NetProfit:   r.Metrics.NetProfit,
		MOIC:        r.Metrics.MOIC,
		IRR:         r.Metrics.IRR,
		NPV:         r.Metrics.NPV,
		ComputedAt:  at,
	}
}
