package breakeven

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rgehrsitz/dispo/internal/calculation"
	"github.com/rgehrsitz/dispo/internal/domain"
	"github.com/shopspring/decimal"
)

func TestSolve_BreakEven(t *testing.T) {
	solver := NewDefaultSolver(calculation.NewCalculationEngine())

	result, err := solver.Solve(context.Background(), Request{
		Asset:    domain.SampleAsset(),
		Scenario: domain.ScenarioAsIs,
		Goal:     GoalBreakEven,
	})
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}

	if !result.Success {
		t.Error("Expected success")
	}
	if got := result.RequiredProceeds.StringFixed(2); got != "164817.26" {
		t.Errorf("Expected required proceeds 164817.26, got %s", got)
	}
	if result.NetProfit == nil || !result.NetProfit.IsZero() {
		t.Errorf("Expected zero net profit at break-even, got %v", result.NetProfit)
	}
	if result.Cushion == nil || result.Cushion.StringFixed(2) != "24182.74" {
		t.Errorf("Expected cushion 24182.74, got %v", result.Cushion)
	}
	if result.Name != "As-is sale" {
		t.Errorf("Expected scenario name, got %s", result.Name)
	}
	if result.Iterations != 0 {
		t.Errorf("Closed form should not iterate, got %d", result.Iterations)
	}
}

func TestSolve_TargetProfit(t *testing.T) {
	solver := NewDefaultSolver(nil)

	result, err := solver.Solve(context.Background(), Request{
		Asset:    domain.SampleAsset(),
		Scenario: domain.ScenarioRehab,
		Goal:     GoalTargetProfit,
		Target:   decimal.NewFromInt(50000),
	})
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}

	if got := result.RequiredProceeds.StringFixed(2); got != "256019.96" {
		t.Errorf("Expected required proceeds 256019.96, got %s", got)
	}
	if result.NetProfit == nil || result.NetProfit.StringFixed(2) != "50000.00" {
		t.Errorf("Expected net profit 50000.00, got %v", result.NetProfit)
	}
}

func TestSolve_TargetMOIC(t *testing.T) {
	solver := NewDefaultSolver(nil)

	result, err := solver.Solve(context.Background(), Request{
		Asset:    domain.SampleAsset(),
		Scenario: domain.ScenarioAsIs,
		Goal:     GoalTargetMOIC,
		Target:   decimal.RequireFromString("1.2"),
	})
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}

	// 164817.26 × 1.2 = 197780.712, rounded up to the cent
	if got := result.RequiredProceeds.StringFixed(2); got != "197780.72" {
		t.Errorf("Expected required proceeds 197780.72, got %s", got)
	}
	if result.MOIC == nil || result.MOIC.StringFixed(4) != "1.2000" {
		t.Errorf("Expected MOIC 1.2000, got %v", result.MOIC)
	}
	if result.Cushion == nil || !result.Cushion.IsNegative() {
		t.Errorf("Expected a shortfall against the 189000 estimate, got %v", result.Cushion)
	}
}

func TestSolve_TargetIRR(t *testing.T) {
	solver := NewDefaultSolver(nil)
	target := decimal.RequireFromString("0.15")

	result, err := solver.Solve(context.Background(), Request{
		Asset:    domain.SampleAsset(),
		Scenario: domain.ScenarioAsIs,
		Goal:     GoalTargetIRR,
		Target:   target,
	})
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}

	if !result.Success {
		t.Fatalf("Expected convergence: %s", result.ConvergenceInfo)
	}
	if result.Iterations == 0 {
		t.Error("Expected the IRR search to iterate")
	}
	if result.IRR == nil || result.IRR.LessThan(target) {
		t.Errorf("Expected IRR at required proceeds >= 0.15, got %v", result.IRR)
	}
	if result.IRR != nil && result.IRR.Sub(target).GreaterThan(decimal.RequireFromString("0.0001")) {
		t.Errorf("Expected IRR close to target, got %s", result.IRR)
	}
	// a positive return needs more than the gross cost back
	if !result.RequiredProceeds.GreaterThan(result.GrossCost) {
		t.Errorf("Expected required proceeds above gross cost %s, got %s",
			result.GrossCost.StringFixed(2), result.RequiredProceeds.StringFixed(2))
	}
	if result.Scenario == nil || result.Scenario.Proceeds == nil ||
		!result.Scenario.Proceeds.Equal(result.RequiredProceeds) {
		t.Error("Expected the scenario result at the required proceeds")
	}
}

func TestSolve_TargetIRR_Unreachable(t *testing.T) {
	solver := NewSolver(nil, SolverOptions{MaxIterations: 100, MaxExpansions: 0})

	_, err := solver.Solve(context.Background(), Request{
		Asset:    domain.SampleAsset(),
		Scenario: domain.ScenarioAsIs,
		Goal:     GoalTargetIRR,
		Target:   decimal.NewFromInt(50),
	})

	var beErr *BreakEvenError
	if !errors.As(err, &beErr) {
		t.Fatalf("Expected BreakEvenError, got %v", err)
	}
	if beErr.Operation != "solve_irr" {
		t.Errorf("Expected solve_irr operation, got %s", beErr.Operation)
	}
}

func TestSolve_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewDefaultSolver(nil).Solve(ctx, Request{
		Asset:    domain.SampleAsset(),
		Scenario: domain.ScenarioAsIs,
		Goal:     GoalTargetIRR,
		Target:   decimal.RequireFromString("0.1"),
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestSolve_UnknownGrossCost(t *testing.T) {
	asset := domain.SampleAsset()
	asset.AcquisitionPrice = nil

	_, err := NewDefaultSolver(nil).Solve(context.Background(), Request{
		Asset:    asset,
		Scenario: domain.ScenarioAsIs,
		Goal:     GoalBreakEven,
	})
	if err == nil || !strings.Contains(err.Error(), "gross cost is unknown") {
		t.Errorf("Expected unknown gross cost error, got %v", err)
	}
}

func TestSolve_NoProceedsEstimate(t *testing.T) {
	asset := domain.SampleAsset()
	asset.Scenarios[0].Proceeds = nil

	result, err := NewDefaultSolver(nil).Solve(context.Background(), Request{
		Asset:    asset,
		Scenario: domain.ScenarioAsIs,
		Goal:     GoalBreakEven,
	})
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	if result.Cushion != nil || result.CushionPercent() != nil {
		t.Errorf("Expected no cushion without an estimate, got %v", result.Cushion)
	}
}

func TestRequest_Validate(t *testing.T) {
	asset := domain.SampleAsset()

	tests := []struct {
		name string
		req  Request
	}{
		{"nil asset", Request{Scenario: domain.ScenarioAsIs, Goal: GoalBreakEven}},
		{"unknown scenario", Request{Asset: asset, Scenario: "auction", Goal: GoalBreakEven}},
		{"zero MOIC", Request{Asset: asset, Scenario: domain.ScenarioAsIs, Goal: GoalTargetMOIC}},
		{"IRR at -100%", Request{Asset: asset, Scenario: domain.ScenarioAsIs, Goal: GoalTargetIRR, Target: decimal.NewFromInt(-1)}},
		{"unknown goal", Request{Asset: asset, Scenario: domain.ScenarioAsIs, Goal: "max_profit"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if err == nil {
				t.Fatal("Expected validation error")
			}
			if _, ok := err.(*BreakEvenError); !ok {
				t.Errorf("Expected BreakEvenError, got %T", err)
			}
		})
	}
}

func TestParseGoal(t *testing.T) {
	for _, g := range Goals {
		got, err := ParseGoal(string(g))
		if err != nil || got != g {
			t.Errorf("ParseGoal(%s) = %s, %v", g, got, err)
		}
	}
	if _, err := ParseGoal("fastest"); err == nil {
		t.Error("Expected error for unknown goal")
	}
}

func TestBreakEvenError(t *testing.T) {
	cause := errors.New("boom")
	err := &BreakEvenError{Operation: "evaluate", Message: "failed", Cause: cause}

	if err.Error() != "evaluate: failed: boom" {
		t.Errorf("Unexpected message %q", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Error("Expected Unwrap to expose the cause")
	}
	if (&BreakEvenError{Operation: "op", Message: "msg"}).Error() != "op: msg" {
		t.Error("Unexpected message without cause")
	}
}
