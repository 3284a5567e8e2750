package compare

import (
	"errors"
	"strings"
	"testing"

	"github.com/rgehrsitz/dispo/internal/calculation"
	"github.com/rgehrsitz/dispo/internal/domain"
)

func TestCompareScenarios_AsIsVersusRehab(t *testing.T) {
	ce := NewCompareEngine(calculation.NewCalculationEngine())

	compSet, err := ce.CompareScenarios(domain.SampleAsset(), domain.ScenarioAsIs)
	if err != nil {
		t.Fatalf("CompareScenarios failed: %v", err)
	}

	if compSet.BaseName != "As-is sale" {
		t.Errorf("Expected base 'As-is sale', got %s", compSet.BaseName)
	}
	if len(compSet.AlternativeResults) != 1 {
		t.Fatalf("Expected 1 alternative, got %d", len(compSet.AlternativeResults))
	}

	rehab := compSet.AlternativeResults[0]
	if rehab.Scenario != domain.ScenarioRehab {
		t.Errorf("Expected rehab alternative, got %s", rehab.Scenario)
	}
	if rehab.MonthsDiff == nil || *rehab.MonthsDiff != 3 {
		t.Errorf("Expected months diff 3, got %v", rehab.MonthsDiff)
	}
	if got := rehab.CostDiff.StringFixed(2); got != "41202.70" {
		t.Errorf("Expected cost diff 41202.70, got %s", got)
	}
	if got := rehab.NetProfitDiff.StringFixed(2); got != "31797.30" {
		t.Errorf("Expected net profit diff 31797.30, got %s", got)
	}

	want := "Best Profit: Renovate and sell nets $31797.30 more than As-is sale"
	if len(compSet.Recommendations) == 0 || compSet.Recommendations[0] != want {
		t.Errorf("Expected first recommendation %q, got %v", want, compSet.Recommendations)
	}
}

func TestCompareScenarios_UnknownBase(t *testing.T) {
	ce := NewCompareEngine(nil)

	asset := domain.SampleAsset()
	asset.Scenarios = asset.Scenarios[:1]

	_, err := ce.CompareScenarios(asset, domain.ScenarioRehab)
	if !errors.Is(err, domain.ErrUnknownScenario) {
		t.Errorf("Expected ErrUnknownScenario, got %v", err)
	}
}

func TestCompare_Templates(t *testing.T) {
	ce := NewCompareEngine(nil)

	compSet, err := ce.Compare(domain.SampleAsset(), CompareOptions{
		Scenario:  domain.ScenarioAsIs,
		Templates: []string{"quick_sale", "slow_sale"},
	})
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}

	if len(compSet.AlternativeResults) != 2 {
		t.Fatalf("Expected 2 alternatives, got %d", len(compSet.AlternativeResults))
	}

	quick := compSet.AlternativeResults[0]
	if quick.Name != "As-is sale / quick_sale" {
		t.Errorf("Unexpected name %s", quick.Name)
	}
	if quick.Description == "" {
		t.Error("Expected template description to be carried over")
	}
	if quick.MonthsDiff == nil || *quick.MonthsDiff != -1 {
		t.Errorf("Expected months diff -1, got %v", quick.MonthsDiff)
	}
	// taxes + insurance + holding for one marketing month
	if got := quick.CostDiff.StringFixed(2); got != "-900.90" {
		t.Errorf("Expected cost diff -900.90, got %s", got)
	}

	slow := compSet.AlternativeResults[1]
	if got := slow.NetProfitDiff.StringFixed(2); got != "-2702.70" {
		t.Errorf("Expected net profit diff -2702.70, got %s", got)
	}
	if !slow.IRRDiff.IsNegative() {
		t.Errorf("Expected a slower sale to lower the IRR, got %s", slow.IRRDiff)
	}

	recs := strings.Join(compSet.Recommendations, "\n")
	if !strings.Contains(recs, "Best Profit: As-is sale / quick_sale nets $900.90 more") {
		t.Errorf("Missing profit recommendation in:\n%s", recs)
	}
	if !strings.Contains(recs, "Shortest Hold: As-is sale / quick_sale exits 1 months sooner") {
		t.Errorf("Missing hold recommendation in:\n%s", recs)
	}
}

func TestCompare_Errors(t *testing.T) {
	ce := NewCompareEngine(nil)

	if _, err := ce.Compare(domain.SampleAsset(), CompareOptions{Scenario: "auction"}); err == nil {
		t.Error("Expected error for unknown scenario")
	}

	_, err := ce.Compare(domain.SampleAsset(), CompareOptions{
		Scenario:  domain.ScenarioAsIs,
		Templates: []string{"no_such_template"},
	})
	if err == nil || !strings.Contains(err.Error(), "no_such_template") {
		t.Errorf("Expected template not found error, got %v", err)
	}
}
