package config

import (
	"fmt"
	"os"

	"github.com/rgehrsitz/dispo/internal/domain"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// InputParser handles parsing of asset payload files
type InputParser struct{}

// NewInputParser creates a new input parser
func NewInputParser() *InputParser {
	return &InputParser{}
}

// LoadFromFile loads an asset from a YAML (or JSON) file
func (ip *InputParser) LoadFromFile(filename string) (*domain.Asset, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	return ip.Parse(data)
}

// Parse decodes and validates an asset payload
func (ip *InputParser) Parse(data []byte) (*domain.Asset, error) {
	var asset domain.Asset
	if err := yaml.Unmarshal(data, &asset); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := ip.ValidateAsset(&asset); err != nil {
		return nil, fmt.Errorf("asset validation failed: %w", err)
	}

	return &asset, nil
}

// SaveToFile writes the asset back out as YAML
func (ip *InputParser) SaveToFile(filename string, asset *domain.Asset) error {
	data, err := yaml.Marshal(asset)
	if err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("failed to write file %s: %w", filename, err)
	}
	return nil
}

// ValidateAsset validates a loaded asset. Unknown values (nil price, nil
// base months, nil proceeds) are legal; malformed ones are not.
func (ip *InputParser) ValidateAsset(asset *domain.Asset) error {
	if asset == nil {
		return fmt.Errorf("asset is required")
	}
	if asset.ID == "" {
		return fmt.Errorf("asset id is required")
	}
	if asset.AcquisitionPrice != nil && asset.AcquisitionPrice.IsNegative() {
		return fmt.Errorf("acquisition price cannot be negative")
	}
	if err := ip.validateValuation(&asset.Valuation); err != nil {
		return fmt.Errorf("valuation validation failed: %w", err)
	}

	if len(asset.Phases) == 0 {
		return fmt.Errorf("at least one phase is required")
	}
	phaseIDs := make(map[string]bool, len(asset.Phases))
	for i := range asset.Phases {
		p := &asset.Phases[i]
		if err := ip.validatePhase(p); err != nil {
			return fmt.Errorf("phase %d (%s) validation failed: %w", i, p.ID, err)
		}
		if phaseIDs[p.ID] {
			return fmt.Errorf("duplicate phase id %s", p.ID)
		}
		phaseIDs[p.ID] = true
	}

	costIDs := make(map[string]bool, len(asset.Costs))
	for i := range asset.Costs {
		c := &asset.Costs[i]
		if err := ip.validateCost(c, phaseIDs); err != nil {
			return fmt.Errorf("cost %d (%s) validation failed: %w", i, c.ID, err)
		}
		if costIDs[c.ID] {
			return fmt.Errorf("duplicate cost id %s", c.ID)
		}
		costIDs[c.ID] = true
	}

	if len(asset.Scenarios) == 0 {
		return fmt.Errorf("at least one scenario is required")
	}
	seen := make(map[domain.ScenarioKind]bool, len(asset.Scenarios))
	for i := range asset.Scenarios {
		s := &asset.Scenarios[i]
		if !s.Kind.Valid() {
			return fmt.Errorf("scenario %d has unknown kind %q", i, s.Kind)
		}
		if seen[s.Kind] {
			return fmt.Errorf("duplicate scenario %s", s.Kind)
		}
		seen[s.Kind] = true
		if s.Proceeds != nil && s.Proceeds.IsNegative() {
			return fmt.Errorf("scenario %s proceeds cannot be negative", s.Kind)
		}
	}

	if err := ip.validateAssumptions(&asset.Assumptions); err != nil {
		return fmt.Errorf("assumptions validation failed: %w", err)
	}

	return nil
}

func (ip *InputParser) validateValuation(v *domain.Valuation) error {
	if v.BrokerPriceOpinion != nil && v.BrokerPriceOpinion.IsNegative() {
		return fmt.Errorf("broker price opinion cannot be negative")
	}
	if v.UnpaidBalance != nil && v.UnpaidBalance.IsNegative() {
		return fmt.Errorf("unpaid balance cannot be negative")
	}
	return nil
}

func (ip *InputParser) validatePhase(p *domain.Phase) error {
	if p.ID == "" {
		return fmt.Errorf("id is required")
	}
	if p.BaseMonths != nil && *p.BaseMonths < 0 {
		return fmt.Errorf("base months cannot be negative, got %d", *p.BaseMonths)
	}
	for _, k := range p.Scenarios {
		if !k.Valid() {
			return fmt.Errorf("unknown scenario %q", k)
		}
	}
	return nil
}

func (ip *InputParser) validateCost(c *domain.CostComponent, phaseIDs map[string]bool) error {
	if c.ID == "" {
		return fmt.Errorf("id is required")
	}

	switch c.Kind {
	case domain.CostAccruing:
		if c.MonthlyRate.IsNegative() {
			return fmt.Errorf("monthly rate cannot be negative")
		}
		if c.AtAcquisition {
			return fmt.Errorf("only static costs can be paid at acquisition")
		}
	case domain.CostStatic:
		if c.Amount.IsNegative() {
			return fmt.Errorf("amount cannot be negative")
		}
		if len(c.Phases) > 0 {
			return fmt.Errorf("static costs do not accrue over phases")
		}
	default:
		return fmt.Errorf("unknown kind %q", c.Kind)
	}

	for _, id := range c.Phases {
		if !phaseIDs[id] {
			return fmt.Errorf("%w: %s", domain.ErrUnknownPhase, id)
		}
	}
	for _, k := range c.Scenarios {
		if !k.Valid() {
			return fmt.Errorf("unknown scenario %q", k)
		}
	}
	return nil
}

func (ip *InputParser) validateAssumptions(a *domain.Assumptions) error {
	if a.DiscountRate.LessThanOrEqual(decimal.NewFromInt(-1)) || a.DiscountRate.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("discount rate must be between -100%% and 100%%, got %s%%",
			a.DiscountRate.Mul(decimal.NewFromInt(100)).StringFixed(2))
	}
	switch a.OverridePolicy {
	case "", domain.OverrideClamp, domain.OverrideReject:
	default:
		return fmt.Errorf("unknown override policy %q", a.OverridePolicy)
	}
	return nil
}
