package transform

import (
	"fmt"

	"github.com/rgehrsitz/dispo/internal/domain"
	"github.com/shopspring/decimal"
)

// SetAcquisitionPrice replaces the asset's acquisition price. A nil price
// marks it unknown again.
type SetAcquisitionPrice struct {
	Price *decimal.Decimal
}

func (sp *SetAcquisitionPrice) Name() string {
	return "set_price"
}

func (sp *SetAcquisitionPrice) Description() string {
	return fmt.Sprintf("Set acquisition price to %s", domain.FormatAmount(sp.Price))
}

func (sp *SetAcquisitionPrice) Validate(base *domain.Asset) error {
	if base == nil {
		return NewTransformError(sp.Name(), "validate", "base asset cannot be nil", nil)
	}
	if sp.Price != nil && sp.Price.IsNegative() {
		return NewTransformError(sp.Name(), "validate", fmt.Sprintf("price must be non-negative, got %s", sp.Price), nil)
	}
	return nil
}

func (sp *SetAcquisitionPrice) Apply(base *domain.Asset) (*domain.Asset, error) {
	modified := base.DeepCopy()
	if sp.Price == nil {
		modified.AcquisitionPrice = nil
		return modified, nil
	}
	modified.AcquisitionPrice = domain.DecimalPtr(domain.RoundCents(*sp.Price))
	return modified, nil
}

// SetProceeds replaces the terminal sale proceeds estimate of one scenario
type SetProceeds struct {
	Scenario domain.ScenarioKind
	Amount   *decimal.Decimal
}

func (sp *SetProceeds) Name() string {
	return "set_proceeds"
}

func (sp *SetProceeds) Description() string {
	return fmt.Sprintf("Set %s proceeds to %s", sp.Scenario, domain.FormatAmount(sp.Amount))
}

func (sp *SetProceeds) Validate(base *domain.Asset) error {
	if base == nil {
		return NewTransformError(sp.Name(), "validate", "base asset cannot be nil", nil)
	}
	if _, err := base.Scenario(sp.Scenario); err != nil {
		return NewTransformError(sp.Name(), "validate", "scenario not found", err)
	}
	if sp.Amount != nil && sp.Amount.IsNegative() {
		return NewTransformError(sp.Name(), "validate", fmt.Sprintf("proceeds must be non-negative, got %s", sp.Amount), nil)
	}
	return nil
}

func (sp *SetProceeds) Apply(base *domain.Asset) (*domain.Asset, error) {
	modified := base.DeepCopy()
	def, err := modified.Scenario(sp.Scenario)
	if err != nil {
		return nil, NewTransformError(sp.Name(), "apply", "scenario not found", err)
	}
	if sp.Amount == nil {
		def.Proceeds = nil
		return modified, nil
	}
	def.Proceeds = domain.DecimalPtr(domain.RoundCents(*sp.Amount))
	return modified, nil
}
