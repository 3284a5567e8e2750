package breakeven

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rgehrsitz/dispo/internal/domain"
	"github.com/shopspring/decimal"
)

func solved(t *testing.T) *Result {
	t.Helper()
	result, err := NewDefaultSolver(nil).Solve(context.Background(), Request{
		Asset:    domain.SampleAsset(),
		Scenario: domain.ScenarioAsIs,
		Goal:     GoalBreakEven,
	})
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	return result
}

func TestTableFormatter_Format(t *testing.T) {
	output := (&TableFormatter{}).Format(solved(t))

	for _, want := range []string{
		"REQUIRED PROCEEDS",
		"Scenario:         As-is sale",
		"Goal:             break even (net profit = 0)",
		"✓ Converged",
		"Required:         $164817.26",
		"Current Estimate: $189000.00",
		"Cushion:          +$24182.74 (12.80%)",
		"Hold Period:      11 months",
		"Net Profit:       $0.00",
		"MOIC:             1.0000",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected output to contain %q\n%s", want, output)
		}
	}
}

func TestTableFormatter_FormatMulti(t *testing.T) {
	mr, err := NewDefaultSolver(nil).SolveScenarios(context.Background(), domain.SampleAsset(), GoalBreakEven, decimal.Zero)
	if err != nil {
		t.Fatalf("SolveScenarios failed: %v", err)
	}

	output := (&TableFormatter{}).FormatMulti(mr)
	for _, want := range []string{
		"REQUIRED PROCEEDS BY SCENARIO",
		"Asset: REO-1042",
		"$164817.26",
		"$206019.96",
		"+$24.2K",
		"+$56.0K",
		"RECOMMENDATIONS",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected output to contain %q\n%s", want, output)
		}
	}
}

func TestTableFormatter_DescribeGoal(t *testing.T) {
	tf := &TableFormatter{}
	tests := []struct {
		req  Request
		want string
	}{
		{Request{Goal: GoalTargetProfit, Target: decimal.NewFromInt(25000)}, "net profit of $25000.00"},
		{Request{Goal: GoalTargetMOIC, Target: decimal.RequireFromString("1.25")}, "MOIC of 1.25x"},
		{Request{Goal: GoalTargetIRR, Target: decimal.RequireFromString("0.18")}, "IRR of 18.00%"},
	}
	for _, tt := range tests {
		if got := tf.describeGoal(tt.req); got != tt.want {
			t.Errorf("describeGoal(%s) = %q, want %q", tt.req.Goal, got, tt.want)
		}
	}
}

func TestJSONFormatter_Format(t *testing.T) {
	for _, pretty := range []bool{false, true} {
		output, err := (&JSONFormatter{Pretty: pretty}).Format(solved(t))
		if err != nil {
			t.Fatalf("Format failed: %v", err)
		}

		var decoded map[string]any
		if err := json.Unmarshal([]byte(output), &decoded); err != nil {
			t.Fatalf("Output is not valid JSON: %v", err)
		}
		if decoded["requiredProceeds"] != "164817.26" {
			t.Errorf("Expected requiredProceeds 164817.26, got %v", decoded["requiredProceeds"])
		}
		if _, ok := decoded["Scenario"]; ok {
			t.Error("Scenario result should not be serialized")
		}
	}
}
