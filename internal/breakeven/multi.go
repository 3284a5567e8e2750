package breakeven

import (
	"context"
	"fmt"

	"github.com/rgehrsitz/dispo/internal/domain"
	"github.com/shopspring/decimal"
)

// SolveScenarios runs the same goal against every scenario of the asset
func (s *Solver) SolveScenarios(ctx context.Context, asset *domain.Asset, goal Goal, target decimal.Decimal) (*MultiResult, error) {
	if asset == nil {
		return nil, &BreakEvenError{Operation: "solve_scenarios", Message: "asset is required"}
	}

	var results []Result
	var failures []error
	for _, kind := range domain.ScenarioKinds {
		if _, err := asset.Scenario(kind); err != nil {
			continue
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		res, err := s.Solve(ctx, Request{Asset: asset, Scenario: kind, Goal: goal, Target: target})
		if err != nil {
			failures = append(failures, fmt.Errorf("%s: %w", kind, err))
			continue
		}
		results = append(results, *res)
	}

	if len(results) == 0 {
		var cause error
		if len(failures) > 0 {
			cause = failures[0]
		}
		return nil, &BreakEvenError{
			Operation: "solve_scenarios",
			Message:   "no scenario could be solved",
			Cause:     cause,
		}
	}

	mr := &MultiResult{
		AssetID: asset.ID,
		Goal:    goal,
		Results: results,
	}
	for i := range mr.Results {
		r := &mr.Results[i]
		if r.Cushion == nil {
			continue
		}
		if mr.Tightest == nil || r.Cushion.LessThan(*mr.Tightest.Cushion) {
			mr.Tightest = r
		}
	}
	mr.Recommendations = generateRecommendations(mr)
	return mr, nil
}

func generateRecommendations(mr *MultiResult) []string {
	var recommendations []string

	for _, r := range mr.Results {
		switch {
		case r.CurrentProceeds == nil:
			recommendations = append(recommendations,
				fmt.Sprintf("%s: no proceeds estimate; sale must bring at least $%s", r.Name, r.RequiredProceeds.StringFixed(2)))
		case r.Cushion == nil:
		case r.Cushion.IsNegative():
			recommendations = append(recommendations,
				fmt.Sprintf("Shortfall: %s needs $%s more than the $%s estimate", r.Name,
					r.Cushion.Abs().StringFixed(2), r.CurrentProceeds.StringFixed(2)))
		default:
			line := fmt.Sprintf("%s: proceeds can fall $%s", r.Name, r.Cushion.StringFixed(2))
			if pct := r.CushionPercent(); pct != nil {
				line += " (" + domain.FormatPercent(pct) + ")"
			}
			recommendations = append(recommendations, line+" before the goal is missed")
		}
	}

	if len(mr.Results) > 1 && mr.Tightest != nil {
		recommendations = append(recommendations,
			fmt.Sprintf("Tightest margin: %s", mr.Tightest.Name))
	}

	return recommendations
}
