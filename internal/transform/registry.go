package transform

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/rgehrsitz/dispo/internal/domain"
	"github.com/shopspring/decimal"
)

// TransformRegistry provides a central registry for all available transforms.
// It enables creation of transforms from string parameters, useful for CLI commands.
type TransformRegistry struct {
	factories map[string]TransformFactory
}

// TransformFactory is a function that creates a transform from parameters.
type TransformFactory func(params map[string]string) (AssetTransform, error)

// NewTransformRegistry creates a new registry with all built-in transforms registered.
func NewTransformRegistry() *TransformRegistry {
	registry := &TransformRegistry{
		factories: make(map[string]TransformFactory),
	}

	registry.Register("adjust_phase", createAdjustPhase)
	registry.Register("reset_overrides", createResetOverrides)
	registry.Register("set_price", createSetAcquisitionPrice)
	registry.Register("set_proceeds", createSetProceeds)

	return registry
}

// Register adds a transform factory to the registry.
func (r *TransformRegistry) Register(name string, factory TransformFactory) {
	r.factories[name] = factory
}

// Create creates a transform by name with the given parameters.
func (r *TransformRegistry) Create(name string, params map[string]string) (AssetTransform, error) {
	factory, exists := r.factories[name]
	if !exists {
		return nil, fmt.Errorf("unknown transform: %s", name)
	}

	return factory(params)
}

// List returns the names of all registered transforms, sorted.
func (r *TransformRegistry) List() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseTransformSpec parses a transform specification string.
// Format: "transform_name:param1=value1,param2=value2"
// Example: "adjust_phase:phase=foreclosure,step=1"
func (r *TransformRegistry) ParseTransformSpec(spec string) (AssetTransform, error) {
	name, paramsStr, _ := strings.Cut(spec, ":")
	name = strings.TrimSpace(name)
	paramsStr = strings.TrimSpace(paramsStr)
	if name == "" {
		return nil, fmt.Errorf("invalid transform spec format, expected 'name:params', got: %s", spec)
	}

	params := make(map[string]string)
	if paramsStr != "" {
		for _, paramPair := range strings.Split(paramsStr, ",") {
			kv := strings.SplitN(paramPair, "=", 2)
			if len(kv) != 2 {
				return nil, fmt.Errorf("invalid parameter format, expected 'key=value', got: %s", paramPair)
			}
			params[strings.TrimSpace(kv[0])] = strings.TrimSpace(kv[1])
		}
	}

	return r.Create(name, params)
}

// ParseTransformSpecs parses every spec in order
func (r *TransformRegistry) ParseTransformSpecs(specs []string) ([]AssetTransform, error) {
	transforms := make([]AssetTransform, 0, len(specs))
	for _, spec := range specs {
		t, err := r.ParseTransformSpec(spec)
		if err != nil {
			return nil, err
		}
		transforms = append(transforms, t)
	}
	return transforms, nil
}

// Factory functions for each transform

func createAdjustPhase(params map[string]string) (AssetTransform, error) {
	phase, ok := params["phase"]
	if !ok {
		return nil, fmt.Errorf("adjust_phase requires 'phase' parameter")
	}

	stepStr, ok := params["step"]
	if !ok {
		return nil, fmt.Errorf("adjust_phase requires 'step' parameter")
	}

	step, err := strconv.Atoi(strings.TrimPrefix(stepStr, "+"))
	if err != nil {
		return nil, fmt.Errorf("invalid step value: %w", err)
	}

	return &AdjustPhase{PhaseID: phase, Step: step}, nil
}

func createResetOverrides(map[string]string) (AssetTransform, error) {
	return &ResetOverrides{}, nil
}

func createSetAcquisitionPrice(params map[string]string) (AssetTransform, error) {
	priceStr, ok := params["price"]
	if !ok {
		return nil, fmt.Errorf("set_price requires 'price' parameter")
	}

	price, err := parseOptionalAmount(priceStr)
	if err != nil {
		return nil, fmt.Errorf("invalid price value: %w", err)
	}

	return &SetAcquisitionPrice{Price: price}, nil
}

func createSetProceeds(params map[string]string) (AssetTransform, error) {
	scenario, ok := params["scenario"]
	if !ok {
		return nil, fmt.Errorf("set_proceeds requires 'scenario' parameter")
	}

	amountStr, ok := params["amount"]
	if !ok {
		return nil, fmt.Errorf("set_proceeds requires 'amount' parameter")
	}

	amount, err := parseOptionalAmount(amountStr)
	if err != nil {
		return nil, fmt.Errorf("invalid amount value: %w", err)
	}

	return &SetProceeds{Scenario: domain.ScenarioKind(scenario), Amount: amount}, nil
}

// parseOptionalAmount accepts a decimal or "unknown" for a nil amount
func parseOptionalAmount(s string) (*decimal.Decimal, error) {
	if strings.EqualFold(s, "unknown") || s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(s, "_", ""))
	if err != nil {
		return nil, err
	}
	return &d, nil
}
