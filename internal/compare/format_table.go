package compare

import (
	"fmt"
	"strings"

	"github.com/rgehrsitz/dispo/internal/domain"
	"github.com/shopspring/decimal"
)

// TableFormatter formats comparison results as a console table
type TableFormatter struct{}

// Format generates a formatted table comparing scenarios
func (tf *TableFormatter) Format(compSet *ComparisonSet) string {
	var sb strings.Builder

	sb.WriteString("DISPOSITION SCENARIO COMPARISON\n")
	sb.WriteString(strings.Repeat("=", 88) + "\n")
	sb.WriteString(fmt.Sprintf("Asset: %s\n", compSet.AssetID))
	sb.WriteString(fmt.Sprintf("Base Scenario: %s\n", compSet.BaseName))
	if compSet.ConfigPath != "" {
		sb.WriteString(fmt.Sprintf("Input: %s\n", compSet.ConfigPath))
	}
	sb.WriteString("\n")

	nameWidth := 30
	numWidth := 11

	sb.WriteString(fmt.Sprintf("%-*s %*s %*s %*s %*s %*s\n",
		nameWidth, "Scenario",
		6, "Months",
		numWidth, "Total Cost",
		numWidth, "Net Profit",
		8, "MOIC",
		numWidth, "IRR"))
	sb.WriteString(strings.Repeat("-", 88) + "\n")

	if compSet.BaseResult != nil {
		sb.WriteString(tf.formatRow(compSet.BaseResult, nameWidth, numWidth, true))
	}

	if len(compSet.AlternativeResults) > 0 {
		sb.WriteString(strings.Repeat("-", 88) + "\n")
		for _, alt := range compSet.AlternativeResults {
			sb.WriteString(tf.formatRow(&alt, nameWidth, numWidth, false))
		}
	}

	sb.WriteString(strings.Repeat("=", 88) + "\n")

	if len(compSet.AlternativeResults) > 0 {
		sb.WriteString("\nCOMPARISON TO BASE\n")
		sb.WriteString(strings.Repeat("-", 88) + "\n")

		for _, alt := range compSet.AlternativeResults {
			sb.WriteString(fmt.Sprintf("\n%s:\n", alt.Name))
			if alt.Description != "" {
				sb.WriteString(fmt.Sprintf("  %s\n", alt.Description))
			}

			if alt.MonthsDiff != nil && *alt.MonthsDiff != 0 {
				sb.WriteString(fmt.Sprintf("  Hold Period:  %+d months\n", *alt.MonthsDiff))
			}
			if alt.CostDiff != nil && !alt.CostDiff.IsZero() {
				sb.WriteString(fmt.Sprintf("  Total Cost:   %s\n", tf.signedAmount(*alt.CostDiff)))
			}
			if alt.NetProfitDiff != nil {
				sb.WriteString(fmt.Sprintf("  Net Profit:   %s\n", tf.signedAmount(*alt.NetProfitDiff)))
			} else {
				sb.WriteString("  Net Profit:   unknown\n")
			}
			if alt.IRRDiff != nil {
				sb.WriteString(fmt.Sprintf("  IRR:          %s pts\n", tf.signed(alt.IRRDiff.Shift(2), 2)))
			}
			if alt.NPVDiff != nil {
				sb.WriteString(fmt.Sprintf("  NPV:          %s\n", tf.signedAmount(*alt.NPVDiff)))
			}
		}
		sb.WriteString("\n")
	}

	if len(compSet.Recommendations) > 0 {
		sb.WriteString("\nRECOMMENDATIONS\n")
		sb.WriteString(strings.Repeat("-", 88) + "\n")
		for _, rec := range compSet.Recommendations {
			sb.WriteString(fmt.Sprintf("• %s\n", rec))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// formatRow formats a single scenario row
func (tf *TableFormatter) formatRow(result *ComparisonResult, nameWidth, numWidth int, isBase bool) string {
	name := result.Name
	if isBase {
		name += " (base)"
	}

	return fmt.Sprintf("%-*s %*s %*s %*s %*s %*s\n",
		nameWidth, tf.truncate(name, nameWidth),
		6, domain.FormatMonths(result.TotalMonths),
		numWidth, tf.formatAmount(result.TotalCost),
		numWidth, tf.formatAmount(result.NetProfit),
		8, domain.FormatRate(result.MOIC),
		numWidth, domain.FormatPercent(result.IRR))
}

// formatAmount renders an amount in thousands or millions for the table
func (tf *TableFormatter) formatAmount(d *decimal.Decimal) string {
	if d == nil {
		return "—"
	}
	sign := ""
	if d.IsNegative() {
		sign = "-"
	}
	abs := d.Abs()
	if abs.GreaterThanOrEqual(decimal.NewFromInt(1000000)) {
		return sign + "$" + abs.Div(decimal.NewFromInt(1000000)).StringFixed(2) + "M"
	} else if abs.GreaterThanOrEqual(decimal.NewFromInt(1000)) {
		return sign + "$" + abs.Div(decimal.NewFromInt(1000)).StringFixed(1) + "K"
	}
	return sign + "$" + abs.StringFixed(0)
}

func (tf *TableFormatter) signedAmount(d decimal.Decimal) string {
	return tf.signed(d, 2)
}

func (tf *TableFormatter) signed(d decimal.Decimal, places int32) string {
	if d.IsNegative() {
		return "-" + d.Abs().StringFixed(places)
	}
	return "+" + d.StringFixed(places)
}

// truncate truncates a string to maxLen
func (tf *TableFormatter) truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// FormatCompact creates a compact single-line summary for each alternative
func (tf *TableFormatter) FormatCompact(compSet *ComparisonSet) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Base: %s | ", compSet.BaseName))

	for i, alt := range compSet.AlternativeResults {
		if i > 0 {
			sb.WriteString(" | ")
		}
		change := "?"
		if alt.NetProfitDiff != nil {
			switch {
			case alt.NetProfitDiff.IsPositive():
				change = "+" + tf.formatAmount(alt.NetProfitDiff)
			case alt.NetProfitDiff.IsNegative():
				change = tf.formatAmount(alt.NetProfitDiff)
			default:
				change = "="
			}
		}
		sb.WriteString(fmt.Sprintf("%s: %s", alt.Name, change))
	}

	return sb.String()
}
