package breakeven

import (
	"fmt"

	"github.com/rgehrsitz/dispo/internal/domain"
	"github.com/shopspring/decimal"
)

// Goal selects what the required proceeds must achieve
type Goal string

const (
	// GoalBreakEven solves for net profit = 0
	GoalBreakEven Goal = "break_even"
	// GoalTargetProfit solves for net profit = target
	GoalTargetProfit Goal = "target_profit"
	// GoalTargetMOIC solves for proceeds / gross cost = target
	GoalTargetMOIC Goal = "target_moic"
	// GoalTargetIRR solves for the smallest proceeds whose IRR reaches target
	GoalTargetIRR Goal = "target_irr"
)

// Goals lists every supported goal
var Goals = []Goal{GoalBreakEven, GoalTargetProfit, GoalTargetMOIC, GoalTargetIRR}

// ParseGoal maps a CLI name onto a goal
func ParseGoal(s string) (Goal, error) {
	for _, g := range Goals {
		if string(g) == s {
			return g, nil
		}
	}
	return "", &BreakEvenError{
		Operation: "parse_goal",
		Message:   fmt.Sprintf("unknown goal %q (want break_even, target_profit, target_moic or target_irr)", s),
	}
}

// Request describes one required-proceeds solve
type Request struct {
	Asset    *domain.Asset       `json:"-"`
	Scenario domain.ScenarioKind `json:"scenario"`
	Goal     Goal                `json:"goal"`
	Target   decimal.Decimal     `json:"target"` // ignored for GoalBreakEven

	// Search bounds; zero values fall back to the solver options
	MaxIterations int             `json:"-"`
	Tolerance     decimal.Decimal `json:"-"`
}

// Validate checks the request before any computation runs
func (r Request) Validate() error {
	if r.Asset == nil {
		return &BreakEvenError{Operation: "validate_request", Message: "asset is required"}
	}
	if _, err := r.Asset.Scenario(r.Scenario); err != nil {
		return &BreakEvenError{Operation: "validate_request", Message: "scenario not found", Cause: err}
	}

	switch r.Goal {
	case GoalBreakEven, GoalTargetProfit:
	case GoalTargetMOIC:
		if !r.Target.IsPositive() {
			return &BreakEvenError{
				Operation: "validate_request",
				Message:   fmt.Sprintf("target MOIC must be positive, got %s", r.Target),
			}
		}
	case GoalTargetIRR:
		if r.Target.LessThanOrEqual(decimal.NewFromInt(-1)) {
			return &BreakEvenError{
				Operation: "validate_request",
				Message:   fmt.Sprintf("target IRR must be above -100%%, got %s", r.Target),
			}
		}
	default:
		return &BreakEvenError{
			Operation: "validate_request",
			Message:   fmt.Sprintf("unsupported goal: %s", r.Goal),
		}
	}
	return nil
}

// Result is the outcome of a solve. RequiredProceeds is the smallest
// whole-cent amount that meets the goal.
type Result struct {
	Request         Request `json:"request"`
	Name            string  `json:"name"`
	Success         bool    `json:"success"`
	Iterations      int     `json:"iterations"`
	ConvergenceInfo string  `json:"convergenceInfo"`

	GrossCost        decimal.Decimal  `json:"grossCost"`
	RequiredProceeds decimal.Decimal  `json:"requiredProceeds"`
	CurrentProceeds  *decimal.Decimal `json:"currentProceeds"`
	// Cushion is current minus required proceeds: how far the sale estimate
	// can fall before the goal is missed. Negative means a shortfall.
	Cushion *decimal.Decimal `json:"cushion"`

	// Metrics at the required proceeds
	TotalMonths *int             `json:"totalMonths"`
	NetProfit   *decimal.Decimal `json:"netProfit"`
	MOIC        *decimal.Decimal `json:"moic"`
	IRR         *decimal.Decimal `json:"irr"`

	Scenario *domain.ScenarioResult `json:"-"`
}

// CushionPercent returns the cushion as a share of the current proceeds
func (r *Result) CushionPercent() *decimal.Decimal {
	if r.Cushion == nil || r.CurrentProceeds == nil || !r.CurrentProceeds.IsPositive() {
		return nil
	}
	p := r.Cushion.DivRound(*r.CurrentProceeds, 6)
	return &p
}

// MultiResult holds one solve per scenario of an asset
type MultiResult struct {
	AssetID         string   `json:"assetId"`
	Goal            Goal     `json:"goal"`
	Results         []Result `json:"results"`
	Tightest        *Result  `json:"-"` // smallest cushion
	Recommendations []string `json:"recommendations"`
}

// SolverOptions bounds the iterative searches
type SolverOptions struct {
	Tolerance     decimal.Decimal // proceeds precision of the IRR search
	MaxIterations int             // bisection steps
	MaxExpansions int             // upper bound doublings before giving up
}

// DefaultSolverOptions returns default solver settings
func DefaultSolverOptions() SolverOptions {
	return SolverOptions{
		Tolerance:     decimal.NewFromFloat(0.01),
		MaxIterations: 100,
		MaxExpansions: 30,
	}
}

// BreakEvenError represents an error during a solve
type BreakEvenError struct {
	Operation string
	Message   string
	Cause     error
}

func (e *BreakEvenError) Error() string {
	if e.Cause != nil {
		return e.Operation + ": " + e.Message + ": " + e.Cause.Error()
	}
	return e.Operation + ": " + e.Message
}

func (e *BreakEvenError) Unwrap() error {
	return e.Cause
}
