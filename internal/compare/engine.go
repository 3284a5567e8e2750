package compare

import (
	"fmt"

	"github.com/rgehrsitz/dispo/internal/calculation"
	"github.com/rgehrsitz/dispo/internal/domain"
	"github.com/rgehrsitz/dispo/internal/transform"
)

// CompareEngine orchestrates scenario comparison
type CompareEngine struct {
	CalcEngine        *calculation.CalculationEngine
	MetricsCalculator *MetricsCalculator
	TemplateRegistry  *transform.TemplateRegistry
}

// NewCompareEngine creates a new comparison engine
func NewCompareEngine(calcEngine *calculation.CalculationEngine) *CompareEngine {
	if calcEngine == nil {
		calcEngine = calculation.NewCalculationEngine()
	}
	return &CompareEngine{
		CalcEngine:        calcEngine,
		MetricsCalculator: NewMetricsCalculator(),
	}
}

// CompareOptions configures comparison behavior
type CompareOptions struct {
	Scenario  domain.ScenarioKind // scenario to stress
	Templates []string            // template names to apply
}

// Compare runs one scenario under each template and measures it against the
// unmodified scenario
func (ce *CompareEngine) Compare(asset *domain.Asset, options CompareOptions) (*ComparisonSet, error) {
	def, err := asset.Scenario(options.Scenario)
	if err != nil {
		return nil, err
	}

	ce.TemplateRegistry = transform.CreateBuiltInTemplates(asset)

	baseRun, err := ce.CalcEngine.RunScenario(asset, def.Kind)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate base scenario: %w", err)
	}
	baseResult := ce.MetricsCalculator.CalculateMetrics(def.Name, baseRun)

	alternatives := []ComparisonResult{}
	for _, templateName := range options.Templates {
		template, ok := ce.TemplateRegistry.Get(templateName)
		if !ok {
			return nil, fmt.Errorf("template %s not found", templateName)
		}

		modified, err := transform.ApplyTemplate(asset, template)
		if err != nil {
			return nil, fmt.Errorf("failed to apply template %s: %w", templateName, err)
		}

		altRun, err := ce.CalcEngine.RunScenario(modified, def.Kind)
		if err != nil {
			return nil, fmt.Errorf("failed to calculate scenario %s: %w", templateName, err)
		}

		altResult := ce.MetricsCalculator.CalculateMetrics(def.Name+" / "+templateName, altRun)
		altResult.Description = template.Description
		altResult = ce.MetricsCalculator.CalculateComparison(altResult, baseResult)
		alternatives = append(alternatives, altResult)
	}

	compSet := &ComparisonSet{
		AssetID:            asset.ID,
		BaseName:           def.Name,
		BaseResult:         &baseResult,
		AlternativeResults: alternatives,
	}
	compSet.Recommendations = GenerateRecommendations(compSet)
	return compSet, nil
}

// CompareScenarios measures every other scenario of the asset against base
func (ce *CompareEngine) CompareScenarios(asset *domain.Asset, base domain.ScenarioKind) (*ComparisonSet, error) {
	results, err := ce.CalcEngine.RunAll(asset)
	if err != nil {
		return nil, err
	}

	var baseResult *ComparisonResult
	for _, r := range results {
		if r.Scenario == base {
			res := ce.MetricsCalculator.CalculateMetrics(r.Name, r)
			baseResult = &res
			break
		}
	}
	if baseResult == nil {
		return nil, fmt.Errorf("base scenario %s: %w", base, domain.ErrUnknownScenario)
	}

	alternatives := []ComparisonResult{}
	for _, r := range results {
		if r.Scenario == base {
			continue
		}
		alt := ce.MetricsCalculator.CalculateMetrics(r.Name, r)
		alternatives = append(alternatives, ce.MetricsCalculator.CalculateComparison(alt, *baseResult))
	}

	compSet := &ComparisonSet{
		AssetID:            asset.ID,
		BaseName:           baseResult.Name,
		BaseResult:         baseResult,
		AlternativeResults: alternatives,
	}
	compSet.Recommendations = GenerateRecommendations(compSet)
	return compSet, nil
}
