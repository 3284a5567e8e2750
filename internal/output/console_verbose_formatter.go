package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/rgehrsitz/dispo/internal/domain"
)

// ConsoleVerboseFormatter renders the full per-scenario breakdown: timeline,
// cost lines, cash-flow series and return metrics
type ConsoleVerboseFormatter struct{}

func (c ConsoleVerboseFormatter) Name() string { return "console" }

func (c ConsoleVerboseFormatter) Format(report *Report) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintln(&buf, strings.Repeat("=", 80))
	fmt.Fprintln(&buf, "DETAILED ASSET DISPOSITION ANALYSIS")
	fmt.Fprintln(&buf, strings.Repeat("=", 80))
	fmt.Fprintln(&buf)

	fmt.Fprintf(&buf, "Asset:              %s (%s)\n", report.AssetName, report.AssetID)
	fmt.Fprintf(&buf, "Acquisition Price:  %s\n", FormatCurrency(report.AcquisitionPrice))
	if report.AcquisitionDate != nil {
		fmt.Fprintf(&buf, "Acquisition Date:   %s\n", report.AcquisitionDate.Format("2006-01-02"))
	} else {
		fmt.Fprintln(&buf, "Acquisition Date:   — (today assumed)")
	}
	fmt.Fprintf(&buf, "Price / BPO:        %s\n", domain.FormatRate(report.PriceToValue))
	fmt.Fprintf(&buf, "Price / UPB:        %s\n", domain.FormatRate(report.PriceToUPB))
	fmt.Fprintln(&buf)

	if len(report.Assumptions) > 0 {
		fmt.Fprintln(&buf, "KEY ASSUMPTIONS:")
		for _, a := range report.Assumptions {
			fmt.Fprintf(&buf, "• %s\n", a)
		}
		fmt.Fprintln(&buf)
	}

	for i, r := range report.Results {
		fmt.Fprintf(&buf, "SCENARIO %d: %s\n", i+1, r.Name)
		fmt.Fprintln(&buf, strings.Repeat("=", 50))

		fmt.Fprintln(&buf, "TIMELINE:")
		for _, p := range r.Timeline.Phases {
			override := ""
			if p.OverrideMonths != 0 {
				override = fmt.Sprintf(" (base %s, override %+d)", domain.FormatMonths(p.BaseMonths), p.OverrideMonths)
			}
			fmt.Fprintf(&buf, "  %-24s %4s months%s\n", p.Name, domain.FormatMonths(p.Months), override)
		}
		fmt.Fprintf(&buf, "  %-24s %4s months\n", "TOTAL HOLD", domain.FormatMonths(r.Timeline.TotalMonths))
		fmt.Fprintln(&buf)

		fmt.Fprintln(&buf, "COSTS:")
		for _, l := range r.Costs.Lines {
			basis := "fixed"
			if l.Kind == domain.CostAccruing {
				basis = domain.FormatMonths(l.Months) + " mo"
			} else if l.AtAcquisition {
				basis = "at close"
			}
			fmt.Fprintf(&buf, "  %-24s %14s  (%s)\n", l.Name, FormatCurrency(l.Amount), basis)
		}
		fmt.Fprintf(&buf, "  %-24s %14s\n", "One-time", FormatCurrency(r.Costs.OneTime))
		fmt.Fprintf(&buf, "  %-24s %14s\n", "Carry", FormatCurrency(r.Costs.Carry))
		fmt.Fprintf(&buf, "  %-24s %14s\n", "TOTAL COST", FormatCurrency(r.Costs.Total))
		fmt.Fprintln(&buf)

		fmt.Fprintln(&buf, "CASH FLOWS:")
		if r.CashFlows == nil {
			fmt.Fprintln(&buf, "  — (price, date, duration, costs or proceeds unknown)")
		}
		for _, e := range r.CashFlows {
			fmt.Fprintf(&buf, "  %s %16s\n", e.Date.Format("2006-01-02"), FormatCurrency(&e.Amount))
		}
		fmt.Fprintln(&buf)

		fmt.Fprintln(&buf, "RETURNS:")
		fmt.Fprintf(&buf, "  Proceeds:            %s\n", FormatCurrency(r.Proceeds))
		fmt.Fprintf(&buf, "  Gross Cost:          %s\n", FormatCurrency(r.Metrics.GrossCost))
		fmt.Fprintf(&buf, "  Net Profit:          %s\n", FormatCurrency(r.Metrics.NetProfit))
		fmt.Fprintf(&buf, "  MOIC:                %s\n", domain.FormatRate(r.Metrics.MOIC))
		fmt.Fprintf(&buf, "  Annualized Return:   %s\n", domain.FormatPercent(r.Metrics.AnnualizedReturn))
		fmt.Fprintf(&buf, "  IRR:                 %s\n", domain.FormatPercent(r.Metrics.IRR))
		fmt.Fprintf(&buf, "  NPV @ %-6s         %s\n", domain.FormatPercent(&report.DiscountRate)+":", FormatCurrency(r.Metrics.NPV))
		fmt.Fprintln(&buf)
	}

	if best := bestByNetProfit(report.Results); best != nil && len(report.Results) > 1 {
		fmt.Fprintln(&buf, "RECOMMENDATION:")
		fmt.Fprintln(&buf, "---------------")
		fmt.Fprintf(&buf, "  Highest net profit: %s (%s)\n", best.Name, FormatCurrency(best.Metrics.NetProfit))
	}

	return buf.Bytes(), nil
}
