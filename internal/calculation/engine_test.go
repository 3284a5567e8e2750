package calculation

import (
	"testing"
	"time"

	"github.com/rgehrsitz/dispo/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLogger records messages for assertions
type TestLogger struct {
	Messages []string
}

func (l *TestLogger) Debugf(format string, args ...any) { l.Messages = append(l.Messages, format) }
func (l *TestLogger) Infof(format string, args ...any)  { l.Messages = append(l.Messages, format) }
func (l *TestLogger) Warnf(format string, args ...any)  { l.Messages = append(l.Messages, format) }
func (l *TestLogger) Errorf(format string, args ...any) { l.Messages = append(l.Messages, format) }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestNewCalculationEngine(t *testing.T) {
	engine := NewCalculationEngine()

	assert.NotNil(t, engine, "Should create engine")
	assert.NotNil(t, engine.Logger, "Should initialize logger")
	assert.NotNil(t, engine.Clock, "Should initialize clock")
	assert.Equal(t, DefaultSolverOptions(), engine.Solver)
}

func TestCalculationEngine_SetLogger(t *testing.T) {
	engine := NewCalculationEngine()

	customLogger := &TestLogger{}
	engine.SetLogger(customLogger)
	assert.Equal(t, customLogger, engine.Logger, "Should set custom logger")

	engine.SetLogger(nil)
	assert.NotNil(t, engine.Logger, "Should not be nil")
	assert.IsType(t, NopLogger{}, engine.Logger, "Should be no-op logger")
}

func TestCalculationEngine_DebugLogsFigures(t *testing.T) {
	engine := NewCalculationEngine()
	logger := &TestLogger{}
	engine.SetLogger(logger)
	engine.Debug = true

	_, err := engine.RunScenario(domain.SampleAsset(), domain.ScenarioAsIs)
	require.NoError(t, err)
	assert.Len(t, logger.Messages, 1)
}

func TestRunScenario_SampleAsIs(t *testing.T) {
	engine := NewCalculationEngine()

	r, err := engine.RunScenario(domain.SampleAsset(), domain.ScenarioAsIs)
	require.NoError(t, err)

	require.NotNil(t, r.Timeline.TotalMonths)
	assert.Equal(t, 11, *r.Timeline.TotalMonths)
	assert.Len(t, r.Timeline.Phases, 3)

	assert.Equal(t, "22317.26", r.Costs.Total.StringFixed(2))
	assert.Equal(t, "4850.00", r.Costs.OneTime.StringFixed(2))
	assert.Equal(t, "17467.26", r.Costs.Carry.StringFixed(2))

	assert.Equal(t, "164817.26", r.Metrics.GrossCost.StringFixed(2))
	assert.Equal(t, "24182.74", r.Metrics.NetProfit.StringFixed(2))
	assert.Equal(t, "1.146725", r.Metrics.MOIC.StringFixed(6))
	require.NotNil(t, r.Metrics.IRR)
	require.NotNil(t, r.Metrics.NPV)
	require.NotNil(t, r.Metrics.AnnualizedReturn)
	assert.True(t, r.Metrics.IRR.IsPositive())
	assert.True(t, r.Metrics.NPV.LessThan(*r.Metrics.NetProfit), "discounting must shrink a profitable series")

	require.Len(t, r.CashFlows, 12)
	assert.Equal(t, "-147350.00", r.CashFlows[0].Amount.StringFixed(2))
	assert.Equal(t, "-1587.93", r.CashFlows[1].Amount.StringFixed(2))
	assert.Equal(t, "187412.04", r.CashFlows[11].Amount.StringFixed(2))
	assert.Equal(t, time.Date(2025, time.February, 15, 0, 0, 0, 0, time.UTC), r.CashFlows[11].Date)
	assert.True(t, SumFlows(r.CashFlows).Equal(*r.Metrics.NetProfit), "series must sum to net profit")
}

func TestRunScenario_SampleRehab(t *testing.T) {
	engine := NewCalculationEngine()

	r, err := engine.RunScenario(domain.SampleAsset(), domain.ScenarioRehab)
	require.NoError(t, err)

	assert.Equal(t, 14, *r.Timeline.TotalMonths)
	assert.Equal(t, "63519.96", r.Costs.Total.StringFixed(2))
	assert.Equal(t, "55980.04", r.Metrics.NetProfit.StringFixed(2))
	assert.Equal(t, "1.271721", r.Metrics.MOIC.StringFixed(6))
	assert.Len(t, r.CashFlows, 15)
}

func TestRunScenario_UnknownScenario(t *testing.T) {
	asset := domain.SampleAsset()
	asset.Scenarios = asset.Scenarios[:1]

	_, err := NewCalculationEngine().RunScenario(asset, domain.ScenarioRehab)
	assert.ErrorIs(t, err, domain.ErrUnknownScenario)
}

func TestRunScenario_NilAsset(t *testing.T) {
	_, err := NewCalculationEngine().RunScenario(nil, domain.ScenarioAsIs)
	assert.Error(t, err)
}

func TestRunAll(t *testing.T) {
	results, err := NewCalculationEngine().RunAll(domain.SampleAsset())
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, domain.ScenarioAsIs, results[0].Scenario)
	assert.Equal(t, domain.ScenarioRehab, results[1].Scenario)

	asset := domain.SampleAsset()
	asset.Scenarios = nil
	_, err = NewCalculationEngine().RunAll(asset)
	assert.Error(t, err)
}

func TestScenariosDifferOnlyByRenovation(t *testing.T) {
	engine := NewCalculationEngine()
	asset := domain.SampleAsset()
	asset.Phases[2].OverrideMonths = 2 // renovation 3 -> 5

	asIs, err := engine.RunScenario(asset, domain.ScenarioAsIs)
	require.NoError(t, err)
	rehab, err := engine.RunScenario(asset, domain.ScenarioRehab)
	require.NoError(t, err)

	assert.Equal(t, 5, *rehab.Timeline.TotalMonths-*asIs.Timeline.TotalMonths)

	// categories that never accrue over renovation and are shared by both paths
	for _, id := range []string{"servicing", "legal", "commission"} {
		a, ok := asIs.Costs.Line(id)
		require.True(t, ok, id)
		b, ok := rehab.Costs.Line(id)
		require.True(t, ok, id)
		assert.True(t, a.Amount.Equal(*b.Amount), id)
	}

	_, ok := asIs.Costs.Line("rehab_budget")
	assert.False(t, ok, "rehab budget belongs to the rehab path only")
}

func TestRunScenario_UnknownInputsPropagate(t *testing.T) {
	engine := NewCalculationEngine()

	t.Run("unknown base duration", func(t *testing.T) {
		asset := domain.SampleAsset()
		asset.Phases[1].BaseMonths = nil

		r, err := engine.RunScenario(asset, domain.ScenarioAsIs)
		require.NoError(t, err)
		assert.Nil(t, r.Timeline.TotalMonths)
		assert.Nil(t, r.Costs.Total)
		assert.Nil(t, r.CashFlows)
		assert.Nil(t, r.Metrics.IRR)
		assert.Nil(t, r.Metrics.NPV)
		assert.Nil(t, r.Metrics.MOIC)

		holding, _ := r.Costs.Line("holding")
		assert.NotNil(t, holding.Amount, "holding does not accrue over foreclosure")
		servicing, _ := r.Costs.Line("servicing")
		assert.Nil(t, servicing.Amount)
	})

	t.Run("unknown price", func(t *testing.T) {
		asset := domain.SampleAsset()
		asset.AcquisitionPrice = nil

		r, err := engine.RunScenario(asset, domain.ScenarioAsIs)
		require.NoError(t, err)
		assert.NotNil(t, r.Costs.Total)
		assert.Nil(t, r.CashFlows)
		assert.Nil(t, r.Metrics.NetProfit)
		assert.Nil(t, r.Metrics.MOIC)
	})

	t.Run("unknown proceeds", func(t *testing.T) {
		asset := domain.SampleAsset()
		asset.Scenarios[0].Proceeds = nil

		r, err := engine.RunScenario(asset, domain.ScenarioAsIs)
		require.NoError(t, err)
		assert.Nil(t, r.CashFlows)
		assert.Nil(t, r.Metrics.NetProfit)
		assert.NotNil(t, r.Metrics.GrossCost)
	})
}

func TestRunScenario_UnknownAcquisitionDate(t *testing.T) {
	asset := domain.SampleAsset()
	asset.AcquisitionDate = nil

	var results []*domain.ScenarioResult
	for _, now := range []time.Time{
		time.Date(2023, time.November, 30, 12, 0, 0, 0, time.UTC),
		time.Date(2027, time.March, 31, 12, 0, 0, 0, time.UTC),
	} {
		engine := NewCalculationEngine()
		engine.Clock = func() time.Time { return now }

		r, err := engine.RunScenario(asset, domain.ScenarioAsIs)
		require.NoError(t, err)
		assert.Nil(t, r.CashFlows)
		assert.Nil(t, r.Metrics.IRR)
		assert.Nil(t, r.Metrics.NPV)
		require.NotNil(t, r.Metrics.NetProfit)
		assert.Equal(t, "24182.74", r.Metrics.NetProfit.StringFixed(2))
		results = append(results, r)
	}

	assert.Equal(t, results[0].Metrics, results[1].Metrics, "metrics must not depend on the run date")
}

func TestRecompute_PartialMatchesFull(t *testing.T) {
	engine := NewCalculationEngine()
	asset := domain.SampleAsset()

	prev, err := engine.RunScenario(asset, domain.ScenarioRehab)
	require.NoError(t, err)

	next := asset.DeepCopy()
	next.Phases[1].OverrideMonths = 1

	partial, err := engine.Recompute(next, domain.ScenarioRehab, prev, Change{PhaseID: "foreclosure"})
	require.NoError(t, err)
	full, err := engine.RunScenario(next, domain.ScenarioRehab)
	require.NoError(t, err)

	assert.Equal(t, full.Costs, partial.Costs)
	assert.Equal(t, full.Metrics, partial.Metrics)

	holdingBefore, _ := prev.Costs.Line("holding")
	holdingAfter, _ := partial.Costs.Line("holding")
	assert.True(t, holdingBefore.Amount.Equal(*holdingAfter.Amount))

	taxesBefore, _ := prev.Costs.Line("taxes")
	taxesAfter, _ := partial.Costs.Line("taxes")
	assert.Equal(t, "412.17", taxesAfter.Amount.Sub(*taxesBefore.Amount).StringFixed(2))
}

func TestRecompute_PriceChangeKeepsCosts(t *testing.T) {
	engine := NewCalculationEngine()
	asset := domain.SampleAsset()

	prev, err := engine.RunScenario(asset, domain.ScenarioAsIs)
	require.NoError(t, err)

	next := asset.DeepCopy()
	next.AcquisitionPrice = domain.DecimalPtr(dec("150000"))

	r, err := engine.Recompute(next, domain.ScenarioAsIs, prev, Change{CostsUnchanged: true})
	require.NoError(t, err)
	assert.Equal(t, prev.Costs, r.Costs)
	assert.Equal(t, "16682.74", r.Metrics.NetProfit.StringFixed(2))
}
