package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/rgehrsitz/dispo/internal/domain"
)

// ConsoleFormatter prints one summary line per scenario
type ConsoleFormatter struct{}

func (c ConsoleFormatter) Name() string { return "console-lite" }

func (c ConsoleFormatter) Format(report *Report) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintln(&buf, "DISPOSITION SCENARIO SUMMARY")
	fmt.Fprintln(&buf, strings.Repeat("=", 72))
	fmt.Fprintf(&buf, "Asset: %s (%s)\n", report.AssetName, report.AssetID)
	fmt.Fprintf(&buf, "Acquisition Price: %s\n", FormatCurrency(report.AcquisitionPrice))
	fmt.Fprintln(&buf)

	for _, r := range report.Results {
		fmt.Fprintf(&buf, "%-22s %3s mo  net %s  MOIC %s  IRR %s\n",
			r.Name,
			domain.FormatMonths(r.Timeline.TotalMonths),
			FormatCurrency(r.Metrics.NetProfit),
			domain.FormatRate(r.Metrics.MOIC),
			domain.FormatPercent(r.Metrics.IRR))
	}

	if best := bestByNetProfit(report.Results); best != nil && len(report.Results) > 1 {
		fmt.Fprintf(&buf, "\nHighest net profit: %s\n", best.Name)
	}
	return buf.Bytes(), nil
}

// bestByNetProfit returns the result with the highest known net profit
func bestByNetProfit(results []*domain.ScenarioResult) *domain.ScenarioResult {
	var best *domain.ScenarioResult
	for _, r := range results {
		if r.Metrics.NetProfit == nil {
			continue
		}
		if best == nil || r.Metrics.NetProfit.GreaterThan(*best.Metrics.NetProfit) {
			best = r
		}
	}
	return best
}
