package compare

import (
	"encoding/csv"
	"strings"

	"github.com/rgehrsitz/dispo/internal/domain"
	"github.com/shopspring/decimal"
)

// CSVFormatter formats comparison results as CSV
type CSVFormatter struct{}

// Format generates CSV output for comparison results
func (cf *CSVFormatter) Format(compSet *ComparisonSet) (string, error) {
	var sb strings.Builder
	writer := csv.NewWriter(&sb)

	header := []string{
		"Scenario",
		"Type",
		"Months",
		"Total Cost",
		"Net Profit",
		"MOIC",
		"IRR",
		"NPV",
		"Months Diff",
		"Cost Diff",
		"Net Profit Diff",
		"IRR Diff",
		"NPV Diff",
	}
	if err := writer.Write(header); err != nil {
		return "", err
	}

	if compSet.BaseResult != nil {
		if err := writer.Write(cf.formatRow(compSet.BaseResult, "base")); err != nil {
			return "", err
		}
	}

	for _, alt := range compSet.AlternativeResults {
		if err := writer.Write(cf.formatRow(&alt, "alternative")); err != nil {
			return "", err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", err
	}

	return sb.String(), nil
}

// formatRow formats a comparison result as a CSV row; unknown figures are empty
func (cf *CSVFormatter) formatRow(result *ComparisonResult, scenarioType string) []string {
	return []string{
		result.Name,
		scenarioType,
		months(result.TotalMonths),
		fixed(result.TotalCost, 2),
		fixed(result.NetProfit, 2),
		fixed(result.MOIC, 6),
		fixed(result.IRR, 6),
		fixed(result.NPV, 2),
		months(result.MonthsDiff),
		fixed(result.CostDiff, 2),
		fixed(result.NetProfitDiff, 2),
		fixed(result.IRRDiff, 6),
		fixed(result.NPVDiff, 2),
	}
}

func months(m *int) string {
	if m == nil {
		return ""
	}
	return domain.FormatMonths(m)
}

func fixed(d *decimal.Decimal, places int32) string {
	if d == nil {
		return ""
	}
	return d.StringFixed(places)
}
