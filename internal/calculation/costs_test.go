package calculation

import (
	"testing"

	"github.com/rgehrsitz/dispo/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccrueCosts_AccruingAndStatic(t *testing.T) {
	asset := domain.SampleAsset()
	tl := ResolveTimeline(asset, domain.ScenarioRehab)

	b := AccrueCosts(asset, tl, AccrualOptions{})

	want := map[string]string{
		"taxes":        "5770.38",
		"insurance":    "1937.60",
		"servicing":    "760.00",
		"holding":      "2101.98",
		"legal":        "4850.00",
		"rehab_budget": "38500.00",
		"commission":   "9600.00",
	}
	require.Len(t, b.Lines, len(want))
	for id, amount := range want {
		line, ok := b.Line(id)
		require.True(t, ok, id)
		assert.Equal(t, amount, line.Amount.StringFixed(2), id)
	}

	holding, _ := b.Line("holding")
	assert.Equal(t, 6, *holding.Months)
	legal, _ := b.Line("legal")
	assert.Nil(t, legal.Months)
}

func TestAccrueCosts_TotalIsSumOfRoundedLines(t *testing.T) {
	asset := &domain.Asset{
		Phases: []domain.Phase{{ID: "p", BaseMonths: domain.IntPtr(3)}},
		Costs: []domain.CostComponent{
			{ID: "a", Kind: domain.CostAccruing, MonthlyRate: dec("0.335")},
			{ID: "b", Kind: domain.CostAccruing, MonthlyRate: dec("0.335")},
			{ID: "c", Kind: domain.CostStatic, Amount: dec("10.005")},
		},
	}

	b := AccrueCosts(asset, ResolveTimeline(asset, domain.ScenarioAsIs), AccrualOptions{})

	// 1.005 rounds to 1.01 per line; a rounding of the raw sum would give 12.02
	sum := decimal.Zero
	for _, l := range b.Lines {
		assert.Equal(t, int32(-2), l.Amount.Exponent(), l.ComponentID)
		sum = sum.Add(*l.Amount)
	}
	assert.True(t, sum.Equal(*b.Total))
	assert.Equal(t, "12.03", b.Total.StringFixed(2))
}

func TestAccrueCosts_OneTimeAndCarry(t *testing.T) {
	asset := domain.SampleAsset()
	b := AccrueCosts(asset, ResolveTimeline(asset, domain.ScenarioAsIs), AccrualOptions{})

	assert.Equal(t, "4850.00", b.OneTime.StringFixed(2))
	assert.True(t, b.OneTime.Add(*b.Carry).Equal(*b.Total))
}

func TestAccrueCosts_PartialRecomputeInvariant(t *testing.T) {
	asset := threePhaseAsset()
	before := AccrueCosts(asset, ResolveTimeline(asset, domain.ScenarioAsIs), AccrualOptions{})

	next := asset.DeepCopy()
	next.Phases[0].OverrideMonths = 2
	skip := SkipUnaffected(next, "p1")
	assert.True(t, skip["late"])
	assert.False(t, skip["tax"])

	after := AccrueCosts(next, ResolveTimeline(next, domain.ScenarioAsIs), AccrualOptions{Previous: &before, Skip: skip})
	full := AccrueCosts(next, ResolveTimeline(next, domain.ScenarioAsIs), AccrualOptions{})

	lateBefore, _ := before.Line("late")
	lateAfter, _ := after.Line("late")
	assert.Equal(t, "2250.90", lateBefore.Amount.StringFixed(2))
	assert.True(t, lateBefore.Amount.Equal(*lateAfter.Amount))

	taxAfter, _ := after.Line("tax")
	assert.Equal(t, "1300.00", taxAfter.Amount.StringFixed(2))
	assert.Equal(t, full, after)
}

func TestAccrueCosts_SkipWithoutPreviousComputes(t *testing.T) {
	asset := threePhaseAsset()
	b := AccrueCosts(asset, ResolveTimeline(asset, domain.ScenarioAsIs), AccrualOptions{Skip: SkipAll(asset)})

	require.Len(t, b.Lines, 2)
	assert.NotNil(t, b.Total)
}

func TestSkipUnaffected_StaticAlwaysSkipped(t *testing.T) {
	skip := SkipUnaffected(domain.SampleAsset(), "foreclosure")

	assert.True(t, skip["legal"])
	assert.True(t, skip["commission"])
	assert.True(t, skip["holding"])
	assert.False(t, skip["servicing"])
	assert.False(t, skip["taxes"])
}
