package calculation

import (
	"fmt"
	"time"

	"github.com/rgehrsitz/dispo/internal/domain"
)

// CalculationEngine runs the Timeline -> Cost -> Cash-Flow -> Metrics pipeline
// for an asset. It holds no per-asset state; every call is a pure function of
// the asset it is given.
type CalculationEngine struct {
	Logger Logger
	Solver SolverOptions
	Clock  func() time.Time // stamps snapshots taken from results
	Debug  bool             // log every intermediate figure
}

// NewCalculationEngine creates a new calculation engine
func NewCalculationEngine() *CalculationEngine {
	return &CalculationEngine{
		Logger: NopLogger{},
		Solver: DefaultSolverOptions(),
		Clock:  time.Now,
	}
}

// SetLogger replaces the engine logger; nil restores the no-op logger
func (ce *CalculationEngine) SetLogger(l Logger) {
	if l == nil {
		ce.Logger = NopLogger{}
		return
	}
	ce.Logger = l
}

// Change describes what moved since a previous result so that Recompute can
// leave unaffected cost categories alone
type Change struct {
	PhaseID        string // phase whose override moved, empty when none did
	CostsUnchanged bool   // price or proceeds edit: no cost line can move
}

// RunScenario computes the full result for one scenario of the asset
func (ce *CalculationEngine) RunScenario(asset *domain.Asset, kind domain.ScenarioKind) (*domain.ScenarioResult, error) {
	return ce.Recompute(asset, kind, nil, Change{})
}

// RunAll computes every scenario defined on the asset, in display order
func (ce *CalculationEngine) RunAll(asset *domain.Asset) ([]*domain.ScenarioResult, error) {
	if asset == nil {
		return nil, fmt.Errorf("asset is required")
	}

	var results []*domain.ScenarioResult
	for _, kind := range domain.ScenarioKinds {
		if _, err := asset.Scenario(kind); err != nil {
			continue
		}
		r, err := ce.RunScenario(asset, kind)
		if err != nil {
			return nil, fmt.Errorf("failed to run scenario %s: %w", kind, err)
		}
		results = append(results, r)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("asset %s defines no scenarios", asset.ID)
	}
	return results, nil
}

// Recompute derives a scenario result, reusing the cost lines of prev that
// the change cannot have touched. With prev nil it is a full computation.
func (ce *CalculationEngine) Recompute(asset *domain.Asset, kind domain.ScenarioKind, prev *domain.ScenarioResult, change Change) (*domain.ScenarioResult, error) {
	if asset == nil {
		return nil, fmt.Errorf("asset is required")
	}
	def, err := asset.Scenario(kind)
	if err != nil {
		return nil, err
	}

	tl := ResolveTimeline(asset, kind)

	opts := AccrualOptions{}
	if prev != nil && prev.Scenario == kind {
		opts.Previous = &prev.Costs
		switch {
		case change.CostsUnchanged:
			opts.Skip = SkipAll(asset)
		case change.PhaseID != "":
			opts.Skip = SkipUnaffected(asset, change.PhaseID)
		}
	}
	costs := AccrueCosts(asset, tl, opts)

	events := BuildCashFlows(SeriesInput{
		AcquisitionDate:  asset.AcquisitionDate,
		AcquisitionPrice: asset.AcquisitionPrice,
		OneTimeCosts:     costs.OneTime,
		TotalCost:        costs.Total,
		Proceeds:         def.Proceeds,
		Months:           tl.TotalMonths,
	})

	metrics := ComputeMetrics(def.Proceeds, asset.AcquisitionPrice, costs, tl.TotalMonths,
		events, asset.Assumptions.DiscountRate, ce.Solver)

	if ce.Debug {
		ce.logger().Debugf("%s/%s: months=%s cost=%s net=%s moic=%s irr=%s npv=%s",
			asset.ID, kind,
			domain.FormatMonths(tl.TotalMonths),
			domain.FormatAmount(costs.Total),
			domain.FormatAmount(metrics.NetProfit),
			domain.FormatRate(metrics.MOIC),
			domain.FormatRate(metrics.IRR),
			domain.FormatAmount(metrics.NPV))
	}

	return &domain.ScenarioResult{
		Scenario:         kind,
		Name:             def.Name,
		AcquisitionPrice: asset.AcquisitionPrice,
		Proceeds:         def.Proceeds,
		Timeline:         tl,
		Costs:            costs,
		CashFlows:        events,
		Metrics:          metrics,
	}, nil
}

func (ce *CalculationEngine) logger() Logger {
	if ce.Logger == nil {
		return NopLogger{}
	}
	return ce.Logger
}
