package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPhase_EffectiveMonths(t *testing.T) {
	tests := []struct {
		name     string
		base     *int
		override int
		want     *int
	}{
		{"base only", IntPtr(6), 0, IntPtr(6)},
		{"extended", IntPtr(2), 2, IntPtr(4)},
		{"clamped at zero", IntPtr(2), -5, IntPtr(0)},
		{"unknown base", nil, 3, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Phase{ID: "p", BaseMonths: tt.base, OverrideMonths: tt.override}
			assert.Equal(t, tt.want, p.EffectiveMonths())
		})
	}
}

func TestCostComponent_AccruesOver(t *testing.T) {
	holding := CostComponent{Kind: CostAccruing, Phases: []string{"renovation", "marketing"}}
	assert.True(t, holding.AccruesOver("marketing"))
	assert.False(t, holding.AccruesOver("foreclosure"))

	taxes := CostComponent{Kind: CostAccruing}
	assert.True(t, taxes.AccruesOver("foreclosure"))

	legal := CostComponent{Kind: CostStatic, Phases: []string{"foreclosure"}}
	assert.False(t, legal.AccruesOver("foreclosure"))
}

func TestAsset_Lookups(t *testing.T) {
	a := SampleAsset()

	p, idx, err := a.Phase("renovation")
	require.NoError(t, err)
	assert.Equal(t, 2, idx)
	assert.True(t, p.AppliesTo(ScenarioRehab))
	assert.False(t, p.AppliesTo(ScenarioAsIs))

	_, _, err = a.Phase("appraisal")
	assert.True(t, errors.Is(err, ErrUnknownPhase))

	s, err := a.Scenario(ScenarioAsIs)
	require.NoError(t, err)
	assert.Equal(t, "As-is sale", s.Name)

	_, err = a.Scenario(ScenarioKind("auction"))
	assert.True(t, errors.Is(err, ErrUnknownScenario))
	assert.False(t, ScenarioKind("auction").Valid())
}

func TestAsset_Policy(t *testing.T) {
	a := SampleAsset()
	a.Assumptions.OverridePolicy = ""
	assert.Equal(t, OverrideClamp, a.Policy())

	a.Assumptions.OverridePolicy = OverrideReject
	assert.Equal(t, OverrideReject, a.Policy())
}

func TestAsset_DisplayRatios(t *testing.T) {
	a := SampleAsset()
	assert.Equal(t, "67.86%", FormatPercent(a.PriceToValue()))
	assert.Equal(t, "75.64%", FormatPercent(a.PriceToUnpaidBalance()))

	a.AcquisitionPrice = nil
	assert.Nil(t, a.PriceToValue())

	a = SampleAsset()
	a.Valuation.UnpaidBalance = DecimalPtr(decimal.Zero)
	assert.Nil(t, a.PriceToUnpaidBalance())
}

func TestAsset_DeepCopy(t *testing.T) {
	orig := SampleAsset()
	cp := orig.DeepCopy()
	require.Equal(t, orig, cp)

	cp.Phases[0].OverrideMonths = 3
	*cp.Phases[1].BaseMonths = 9
	cp.Phases[2].Scenarios[0] = ScenarioAsIs
	cp.Costs[2].Phases[0] = "marketing"
	*cp.AcquisitionPrice = decimal.NewFromInt(1)
	*cp.Scenarios[0].Proceeds = decimal.NewFromInt(1)
	*cp.AcquisitionDate = cp.AcquisitionDate.AddDate(1, 0, 0)

	fresh := SampleAsset()
	assert.Equal(t, fresh, orig)

	var nilAsset *Asset
	assert.Nil(t, nilAsset.DeepCopy())
}

func TestRoundCents(t *testing.T) {
	tests := []struct{ in, want string }{
		{"37800.999999", "37801"},
		{"2.345", "2.35"},
		{"-2.345", "-2.35"},
		{"4533.87", "4533.87"},
	}
	for _, tt := range tests {
		got := RoundCents(decimal.RequireFromString(tt.in))
		assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "RoundCents(%s) = %s", tt.in, got)
	}
}

func TestEqualCents(t *testing.T) {
	assert.True(t, EqualCents(nil, nil))
	assert.False(t, EqualCents(nil, DecimalPtr(decimal.Zero)))
	assert.True(t, EqualCents(DecimalPtr(decimal.RequireFromString("10.004")), DecimalPtr(decimal.RequireFromString("10"))))
	assert.False(t, EqualCents(DecimalPtr(decimal.RequireFromString("10.01")), DecimalPtr(decimal.RequireFromString("10"))))
}

func TestFormatters(t *testing.T) {
	assert.Equal(t, "—", FormatMonths(nil))
	assert.Equal(t, "11", FormatMonths(IntPtr(11)))
	assert.Equal(t, "—", FormatAmount(nil))
	assert.Equal(t, "24182.74", FormatAmount(DecimalPtr(decimal.RequireFromString("24182.74"))))
	assert.Equal(t, "1.5000", FormatRate(DecimalPtr(decimal.RequireFromString("1.5"))))
	assert.Equal(t, "—", FormatPercent(nil))
	assert.Equal(t, "50.00%", FormatPercent(DecimalPtr(decimal.RequireFromString("0.5"))))
}

func TestChangeEvent_String(t *testing.T) {
	e := NewChangeEvent("REO-1042", ChangePhaseOverride, 7, SampleAsset().AcquisitionDate.UTC())
	e.PhaseID = "foreclosure"
	e.Delta = 2
	assert.NotEmpty(t, e.ID)
	assert.Equal(t, "REO-1042 phase foreclosure delta=2 (seq 7)", e.String())

	reset := NewChangeEvent("REO-1042", ChangeResetOverrides, 8, e.At)
	assert.NotEqual(t, e.ID, reset.ID)
	assert.Equal(t, "REO-1042 reset_overrides (seq 8)", reset.String())
}
