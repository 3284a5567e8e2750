package breakeven

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rgehrsitz/dispo/internal/domain"
	"github.com/shopspring/decimal"
)

// TableFormatter formats solver results as console tables
type TableFormatter struct{}

// Format generates a formatted table for one solve
func (tf *TableFormatter) Format(result *Result) string {
	var sb strings.Builder

	sb.WriteString("REQUIRED PROCEEDS\n")
	sb.WriteString(strings.Repeat("=", 72) + "\n\n")

	sb.WriteString(fmt.Sprintf("Scenario:         %s\n", result.Name))
	sb.WriteString(fmt.Sprintf("Goal:             %s\n", tf.describeGoal(result.Request)))
	sb.WriteString(fmt.Sprintf("Status:           %s\n", tf.formatStatus(result.Success)))
	if result.Iterations > 0 {
		sb.WriteString(fmt.Sprintf("Iterations:       %d\n", result.Iterations))
	}
	sb.WriteString(fmt.Sprintf("Info:             %s\n\n", result.ConvergenceInfo))

	sb.WriteString("PROCEEDS\n")
	sb.WriteString(strings.Repeat("-", 72) + "\n")
	sb.WriteString(fmt.Sprintf("Gross Cost:       $%s\n", result.GrossCost.StringFixed(2)))
	sb.WriteString(fmt.Sprintf("Required:         $%s\n", result.RequiredProceeds.StringFixed(2)))
	sb.WriteString(fmt.Sprintf("Current Estimate: %s\n", tf.formatCurrency(result.CurrentProceeds)))
	if result.Cushion != nil {
		sb.WriteString(fmt.Sprintf("Cushion:          %s$%s", tf.deltaSymbol(*result.Cushion), result.Cushion.Abs().StringFixed(2)))
		if pct := result.CushionPercent(); pct != nil {
			sb.WriteString(fmt.Sprintf(" (%s)", domain.FormatPercent(pct)))
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	sb.WriteString("AT REQUIRED PROCEEDS\n")
	sb.WriteString(strings.Repeat("-", 72) + "\n")
	sb.WriteString(fmt.Sprintf("Hold Period:      %s months\n", domain.FormatMonths(result.TotalMonths)))
	sb.WriteString(fmt.Sprintf("Net Profit:       %s\n", tf.formatCurrency(result.NetProfit)))
	sb.WriteString(fmt.Sprintf("MOIC:             %s\n", domain.FormatRate(result.MOIC)))
	sb.WriteString(fmt.Sprintf("IRR:              %s\n", domain.FormatPercent(result.IRR)))

	return sb.String()
}

// FormatMulti formats the per-scenario solves side by side
func (tf *TableFormatter) FormatMulti(result *MultiResult) string {
	var sb strings.Builder

	sb.WriteString("REQUIRED PROCEEDS BY SCENARIO\n")
	sb.WriteString(strings.Repeat("=", 80) + "\n")
	sb.WriteString(fmt.Sprintf("Asset: %s\n", result.AssetID))
	if len(result.Results) > 0 {
		sb.WriteString(fmt.Sprintf("Goal:  %s\n", tf.describeGoal(result.Results[0].Request)))
	}
	sb.WriteString("\n")

	sb.WriteString(fmt.Sprintf("%-22s %14s %14s %14s %12s\n",
		"Scenario", "Gross Cost", "Required", "Estimate", "Cushion"))
	sb.WriteString(strings.Repeat("-", 80) + "\n")
	for _, r := range result.Results {
		cushion := "—"
		if r.Cushion != nil {
			cushion = tf.deltaSymbol(*r.Cushion) + tf.formatShort(r.Cushion.Abs())
		}
		sb.WriteString(fmt.Sprintf("%-22s %14s %14s %14s %12s\n",
			tf.truncate(r.Name, 22),
			"$"+r.GrossCost.StringFixed(2),
			"$"+r.RequiredProceeds.StringFixed(2),
			tf.formatCurrency(r.CurrentProceeds),
			cushion))
	}
	sb.WriteString("\n")

	if len(result.Recommendations) > 0 {
		sb.WriteString("RECOMMENDATIONS\n")
		sb.WriteString(strings.Repeat("-", 80) + "\n")
		for _, rec := range result.Recommendations {
			sb.WriteString(fmt.Sprintf("• %s\n", rec))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// JSONFormatter formats results as JSON
type JSONFormatter struct {
	Pretty bool
}

// Format generates JSON output
func (jf *JSONFormatter) Format(result *Result) (string, error) {
	return jf.marshal(result)
}

// FormatMulti formats per-scenario results as JSON
func (jf *JSONFormatter) FormatMulti(result *MultiResult) (string, error) {
	return jf.marshal(result)
}

func (jf *JSONFormatter) marshal(v any) (string, error) {
	var data []byte
	var err error

	if jf.Pretty {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return "", err
	}

	return string(data), nil
}

// Helper methods

func (tf *TableFormatter) describeGoal(req Request) string {
	switch req.Goal {
	case GoalBreakEven:
		return "break even (net profit = 0)"
	case GoalTargetProfit:
		return "net profit of $" + req.Target.StringFixed(2)
	case GoalTargetMOIC:
		return "MOIC of " + req.Target.StringFixed(2) + "x"
	case GoalTargetIRR:
		return "IRR of " + domain.FormatPercent(&req.Target)
	}
	return string(req.Goal)
}

func (tf *TableFormatter) formatStatus(success bool) string {
	if success {
		return "✓ Converged"
	}
	return "⚠ Did not converge"
}

func (tf *TableFormatter) formatCurrency(d *decimal.Decimal) string {
	if d == nil {
		return "—"
	}
	if d.IsNegative() {
		return "-$" + d.Abs().StringFixed(2)
	}
	return "$" + d.StringFixed(2)
}

func (tf *TableFormatter) formatShort(d decimal.Decimal) string {
	if d.Abs().GreaterThanOrEqual(decimal.NewFromInt(1000000)) {
		millions := d.Div(decimal.NewFromInt(1000000))
		return "$" + millions.StringFixed(2) + "M"
	} else if d.Abs().GreaterThanOrEqual(decimal.NewFromInt(1000)) {
		thousands := d.Div(decimal.NewFromInt(1000))
		return "$" + thousands.StringFixed(1) + "K"
	}
	return "$" + d.StringFixed(0)
}

func (tf *TableFormatter) deltaSymbol(delta decimal.Decimal) string {
	if delta.IsPositive() {
		return "+"
	} else if delta.IsNegative() {
		return "-"
	}
	return " "
}

func (tf *TableFormatter) truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
