package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ScenarioKind identifies one of the disposition paths modeled for an asset
type ScenarioKind string

const (
	ScenarioAsIs  ScenarioKind = "as_is"
	ScenarioRehab ScenarioKind = "rehab"
)

// ScenarioKinds lists the closed set of disposition paths in display order
var ScenarioKinds = []ScenarioKind{ScenarioAsIs, ScenarioRehab}

// Valid reports whether k is one of the supported scenario kinds
func (k ScenarioKind) Valid() bool {
	return k == ScenarioAsIs || k == ScenarioRehab
}

// CostKind distinguishes duration-driven costs from fixed line items
type CostKind string

const (
	CostAccruing CostKind = "accruing"
	CostStatic   CostKind = "static"
)

// OverridePolicy decides what happens when a decrement would push a phase below zero months
type OverridePolicy string

const (
	// OverrideClamp ignores the decrement and keeps the phase at zero months
	OverrideClamp OverridePolicy = "clamp"
	// OverrideReject surfaces ErrNegativeDuration to the caller
	OverrideReject OverridePolicy = "reject"
)

var (
	// ErrUnknownPhase is returned when a phase identifier is not part of the asset timeline
	ErrUnknownPhase = errors.New("unknown phase")
	// ErrNegativeDuration is returned under OverrideReject when an override would make a phase negative
	ErrNegativeDuration = errors.New("override would make phase duration negative")
	// ErrUnknownScenario is returned when a scenario kind is not defined on the asset
	ErrUnknownScenario = errors.New("unknown scenario")
)

// Asset is the property or loan being modeled. It owns its timeline, cost
// components and scenario definitions. Assets are treated as immutable
// values: every change produces a new copy via DeepCopy.
type Asset struct {
	ID               string           `yaml:"id" json:"id"`
	Name             string           `yaml:"name" json:"name"`
	AcquisitionPrice *decimal.Decimal `yaml:"acquisition_price,omitempty" json:"acquisition_price,omitempty"`
	AcquisitionDate  *time.Time       `yaml:"acquisition_date,omitempty" json:"acquisition_date,omitempty"`
	Valuation        Valuation        `yaml:"valuation" json:"valuation"`
	Phases           []Phase          `yaml:"phases" json:"phases"`
	Costs            []CostComponent  `yaml:"costs" json:"costs"`
	Scenarios        []ScenarioDef    `yaml:"scenarios" json:"scenarios"`
	Assumptions      Assumptions      `yaml:"assumptions" json:"assumptions"`
}

// Valuation holds reference figures used for display ratios only
type Valuation struct {
	BrokerPriceOpinion *decimal.Decimal `yaml:"broker_price_opinion,omitempty" json:"broker_price_opinion,omitempty"`
	UnpaidBalance      *decimal.Decimal `yaml:"unpaid_balance,omitempty" json:"unpaid_balance,omitempty"`
}

// Assumptions are the per-asset model parameters
type Assumptions struct {
	DiscountRate   decimal.Decimal `yaml:"discount_rate" json:"discount_rate"`
	OverridePolicy OverridePolicy  `yaml:"override_policy,omitempty" json:"override_policy,omitempty"`
}

// ScenarioDef describes one disposition path and its terminal proceeds estimate
type ScenarioDef struct {
	Kind     ScenarioKind     `yaml:"kind" json:"kind"`
	Name     string           `yaml:"name" json:"name"`
	Proceeds *decimal.Decimal `yaml:"proceeds,omitempty" json:"proceeds,omitempty"`
}

// Phase is one ordered step of the disposition timeline. BaseMonths is nil
// until the external data source supplies it.
type Phase struct {
	ID             string         `yaml:"id" json:"id"`
	Name           string         `yaml:"name" json:"name"`
	BaseMonths     *int           `yaml:"base_months,omitempty" json:"base_months,omitempty"`
	OverrideMonths int            `yaml:"override_months" json:"override_months"`
	Scenarios      []ScenarioKind `yaml:"scenarios,omitempty" json:"scenarios,omitempty"` // empty = every scenario
}

// AppliesTo reports whether the phase is part of the given scenario
func (p Phase) AppliesTo(kind ScenarioKind) bool {
	return appliesTo(p.Scenarios, kind)
}

// EffectiveMonths returns max(0, base+override), or nil while the base is unknown
func (p Phase) EffectiveMonths() *int {
	if p.BaseMonths == nil {
		return nil
	}
	months := *p.BaseMonths + p.OverrideMonths
	if months < 0 {
		months = 0
	}
	return &months
}

// CostComponent is a cost category. Accruing components multiply MonthlyRate
// by the months of the phases they accrue over; static components contribute
// Amount regardless of duration.
type CostComponent struct {
	ID            string          `yaml:"id" json:"id"`
	Name          string          `yaml:"name" json:"name"`
	Kind          CostKind        `yaml:"kind" json:"kind"`
	MonthlyRate   decimal.Decimal `yaml:"monthly_rate,omitempty" json:"monthly_rate,omitempty"`
	Amount        decimal.Decimal `yaml:"amount,omitempty" json:"amount,omitempty"`
	Phases        []string        `yaml:"phases,omitempty" json:"phases,omitempty"` // accrual phases; empty = all scenario phases
	Scenarios     []ScenarioKind  `yaml:"scenarios,omitempty" json:"scenarios,omitempty"`
	AtAcquisition bool            `yaml:"at_acquisition,omitempty" json:"at_acquisition,omitempty"`
}

// AppliesTo reports whether the component is part of the given scenario
func (c CostComponent) AppliesTo(kind ScenarioKind) bool {
	return appliesTo(c.Scenarios, kind)
}

// AccruesOver reports whether a change to phaseID can change this component's amount
func (c CostComponent) AccruesOver(phaseID string) bool {
	if c.Kind != CostAccruing {
		return false
	}
	if len(c.Phases) == 0 {
		return true
	}
	for _, id := range c.Phases {
		if id == phaseID {
			return true
		}
	}
	return false
}

func appliesTo(kinds []ScenarioKind, kind ScenarioKind) bool {
	if len(kinds) == 0 {
		return true
	}
	for _, k := range kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// Phase returns the phase with the given id
func (a *Asset) Phase(id string) (*Phase, int, error) {
	for i := range a.Phases {
		if a.Phases[i].ID == id {
			return &a.Phases[i], i, nil
		}
	}
	return nil, -1, fmt.Errorf("%w: %s", ErrUnknownPhase, id)
}

// Scenario returns the scenario definition for kind
func (a *Asset) Scenario(kind ScenarioKind) (*ScenarioDef, error) {
	for i := range a.Scenarios {
		if a.Scenarios[i].Kind == kind {
			return &a.Scenarios[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownScenario, kind)
}

// Policy returns the configured override policy, defaulting to clamp
func (a *Asset) Policy() OverridePolicy {
	if a.Assumptions.OverridePolicy == "" {
		return OverrideClamp
	}
	return a.Assumptions.OverridePolicy
}

// PriceToValue returns acquisition price / broker price opinion for display
func (a *Asset) PriceToValue() *decimal.Decimal {
	return ratio(a.AcquisitionPrice, a.Valuation.BrokerPriceOpinion)
}

// PriceToUnpaidBalance returns acquisition price / unpaid principal balance for display
func (a *Asset) PriceToUnpaidBalance() *decimal.Decimal {
	return ratio(a.AcquisitionPrice, a.Valuation.UnpaidBalance)
}

func ratio(num, den *decimal.Decimal) *decimal.Decimal {
	if num == nil || den == nil || !den.IsPositive() {
		return nil
	}
	r := num.DivRound(*den, 4)
	return &r
}

// DeepCopy returns a copy of the asset that shares no mutable state with the original
func (a *Asset) DeepCopy() *Asset {
	if a == nil {
		return nil
	}
	cp := *a
	cp.AcquisitionPrice = copyDecimal(a.AcquisitionPrice)
	if a.AcquisitionDate != nil {
		d := *a.AcquisitionDate
		cp.AcquisitionDate = &d
	}
	cp.Valuation = Valuation{
		BrokerPriceOpinion: copyDecimal(a.Valuation.BrokerPriceOpinion),
		UnpaidBalance:      copyDecimal(a.Valuation.UnpaidBalance),
	}

	if a.Phases != nil {
		cp.Phases = make([]Phase, len(a.Phases))
		for i, p := range a.Phases {
			cp.Phases[i] = p
			if p.BaseMonths != nil {
				m := *p.BaseMonths
				cp.Phases[i].BaseMonths = &m
			}
			cp.Phases[i].Scenarios = append([]ScenarioKind(nil), p.Scenarios...)
		}
	}

	if a.Costs != nil {
		cp.Costs = make([]CostComponent, len(a.Costs))
		for i, c := range a.Costs {
			cp.Costs[i] = c
			cp.Costs[i].Phases = append([]string(nil), c.Phases...)
			cp.Costs[i].Scenarios = append([]ScenarioKind(nil), c.Scenarios...)
		}
	}

	if a.Scenarios != nil {
		cp.Scenarios = make([]ScenarioDef, len(a.Scenarios))
		for i, s := range a.Scenarios {
			cp.Scenarios[i] = s
			cp.Scenarios[i].Proceeds = copyDecimal(s.Proceeds)
		}
	}

	return &cp
}

func copyDecimal(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	v := *d
	return &v
}
