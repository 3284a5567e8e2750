package breakeven

import (
	"context"
	"fmt"

	"github.com/rgehrsitz/dispo/internal/calculation"
	"github.com/rgehrsitz/dispo/internal/domain"
	"github.com/rgehrsitz/dispo/internal/transform"
	"github.com/shopspring/decimal"
)

// Solver finds the sale proceeds a scenario needs to meet a return goal
type Solver struct {
	CalcEngine *calculation.CalculationEngine
	Options    SolverOptions
}

// NewSolver creates a new break-even solver
func NewSolver(calcEngine *calculation.CalculationEngine, options SolverOptions) *Solver {
	if calcEngine == nil {
		calcEngine = calculation.NewCalculationEngine()
	}
	return &Solver{
		CalcEngine: calcEngine,
		Options:    options,
	}
}

// NewDefaultSolver creates a solver with default options
func NewDefaultSolver(calcEngine *calculation.CalculationEngine) *Solver {
	return NewSolver(calcEngine, DefaultSolverOptions())
}

// Solve computes the required proceeds for the request
func (s *Solver) Solve(ctx context.Context, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if req.MaxIterations == 0 {
		req.MaxIterations = s.Options.MaxIterations
	}
	if !req.Tolerance.IsPositive() {
		req.Tolerance = s.Options.Tolerance
	}
	if !req.Tolerance.IsPositive() {
		req.Tolerance = decimal.NewFromFloat(0.01)
	}

	current, err := s.CalcEngine.RunScenario(req.Asset, req.Scenario)
	if err != nil {
		return nil, &BreakEvenError{Operation: "solve", Message: "failed to calculate scenario", Cause: err}
	}
	if current.Metrics.GrossCost == nil {
		return nil, &BreakEvenError{
			Operation: "solve",
			Message:   "gross cost is unknown (acquisition price, a phase duration or a cost is missing)",
		}
	}
	gross := *current.Metrics.GrossCost

	var result *Result
	switch req.Goal {
	case GoalBreakEven:
		result, err = s.closedForm(req, gross, gross, "net profit = 0 at proceeds = gross cost")
	case GoalTargetProfit:
		result, err = s.closedForm(req, gross, domain.RoundCents(gross.Add(req.Target)),
			fmt.Sprintf("net profit = %s at proceeds = gross cost + target", req.Target.StringFixed(2)))
	case GoalTargetMOIC:
		// rounded up so the MOIC at the required amount never falls short
		required := gross.Mul(req.Target).RoundCeil(domain.CentPlaces)
		result, err = s.closedForm(req, gross, required,
			fmt.Sprintf("MOIC %s at proceeds = gross cost × target", req.Target.StringFixed(4)))
	case GoalTargetIRR:
		result, err = s.solveIRR(ctx, req, gross)
	}
	if err != nil {
		return nil, err
	}

	result.Name = current.Name
	result.CurrentProceeds = current.Proceeds
	if current.Proceeds != nil && result.Success {
		c := current.Proceeds.Sub(result.RequiredProceeds)
		result.Cushion = &c
	}
	return result, nil
}

func (s *Solver) closedForm(req Request, gross, required decimal.Decimal, info string) (*Result, error) {
	if required.IsNegative() {
		return &Result{
			Request:         req,
			GrossCost:       gross,
			ConvergenceInfo: "goal is met at zero proceeds",
			Success:         true,
		}, nil
	}
	res, err := s.evaluate(req, required)
	if err != nil {
		return nil, err
	}
	return s.newResult(req, gross, required, res, 0, true, info), nil
}

// solveIRR bisects over whole-cent proceeds. IRR rises with the terminal
// inflow, so the smallest amount whose IRR reaches the target is unique.
// An undefined IRR (every flow an outflow) counts as below any target.
func (s *Solver) solveIRR(ctx context.Context, req Request, gross decimal.Decimal) (*Result, error) {
	reaches := func(proceeds decimal.Decimal) (bool, error) {
		res, err := s.evaluate(req, proceeds)
		if err != nil {
			return false, err
		}
		irr := res.Metrics.IRR
		return irr != nil && irr.GreaterThanOrEqual(req.Target), nil
	}

	lo := decimal.Zero
	hi := domain.RoundCents(gross.Mul(decimal.NewFromInt(2)))
	if !hi.IsPositive() {
		hi = decimal.NewFromInt(1)
	}

	expansions := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ok, err := reaches(hi)
		if err != nil {
			return nil, err
		}
		if ok {
			break
		}
		expansions++
		if expansions > s.Options.MaxExpansions {
			return nil, &BreakEvenError{
				Operation: "solve_irr",
				Message:   fmt.Sprintf("target IRR %s is not reachable below proceeds of %s", req.Target, hi.StringFixed(2)),
			}
		}
		lo = hi
		hi = hi.Mul(decimal.NewFromInt(2))
	}

	two := decimal.NewFromInt(2)
	iterations := 0
	for hi.Sub(lo).GreaterThan(req.Tolerance) && iterations < req.MaxIterations {
		iterations++

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		mid := domain.RoundCents(lo.Add(hi).Div(two))
		if mid.Equal(lo) || mid.Equal(hi) {
			break
		}
		ok, err := reaches(mid)
		if err != nil {
			return nil, err
		}
		if ok {
			hi = mid
		} else {
			lo = mid
		}
	}

	res, err := s.evaluate(req, hi)
	if err != nil {
		return nil, err
	}

	converged := !hi.Sub(lo).GreaterThan(req.Tolerance)
	info := fmt.Sprintf("IRR %s reached within $%s after %d iterations",
		domain.FormatPercent(&req.Target), req.Tolerance.StringFixed(2), iterations)
	if !converged {
		info = fmt.Sprintf("stopped after %d iterations with a $%s bracket",
			iterations, hi.Sub(lo).StringFixed(2))
	}
	return s.newResult(req, gross, hi, res, iterations, converged, info), nil
}

// evaluate runs the scenario with its proceeds replaced
func (s *Solver) evaluate(req Request, proceeds decimal.Decimal) (*domain.ScenarioResult, error) {
	modified, err := transform.ApplyTransforms(req.Asset, []transform.AssetTransform{
		&transform.SetProceeds{Scenario: req.Scenario, Amount: &proceeds},
	})
	if err != nil {
		return nil, &BreakEvenError{Operation: "evaluate", Message: "failed to apply proceeds", Cause: err}
	}
	res, err := s.CalcEngine.RunScenario(modified, req.Scenario)
	if err != nil {
		return nil, &BreakEvenError{Operation: "evaluate", Message: "failed to calculate scenario", Cause: err}
	}
	return res, nil
}

func (s *Solver) newResult(req Request, gross, required decimal.Decimal, res *domain.ScenarioResult,
	iterations int, success bool, info string) *Result {
	return &Result{
		Request:          req,
		Success:          success,
		Iterations:       iterations,
		ConvergenceInfo:  info,
		GrossCost:        gross,
		RequiredProceeds: required,
		TotalMonths:      res.Timeline.TotalMonths,
		NetProfit:        res.Metrics.NetProfit,
		MOIC:             res.Metrics.MOIC,
		IRR:              res.Metrics.IRR,
		Scenario:         res,
	}
}
