package output

import (
	"bytes"
	"encoding/csv"

	"github.com/rgehrsitz/dispo/internal/domain"
	"github.com/shopspring/decimal"
)

// CSVSummarizer implements the simple summary CSV output (one row per scenario).
// Unknown figures are written as empty cells.
type CSVSummarizer struct{}

func (c CSVSummarizer) Name() string { return "csv" }

func (c CSVSummarizer) Format(report *Report) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	header := []string{"AssetID", "Scenario", "TotalMonths", "TotalCost", "OneTimeCost", "Proceeds",
		"NetProfit", "MOIC", "AnnualizedReturn", "IRR", "NPV"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, r := range report.Results {
		months := ""
		if r.Timeline.TotalMonths != nil {
			months = domain.FormatMonths(r.Timeline.TotalMonths)
		}
		row := []string{
			report.AssetID,
			string(r.Scenario),
			months,
			cell(r.Costs.Total, 2),
			cell(r.Costs.OneTime, 2),
			cell(r.Proceeds, 2),
			cell(r.Metrics.NetProfit, 2),
			cell(r.Metrics.MOIC, 6),
			cell(r.Metrics.AnnualizedReturn, 6),
			cell(r.Metrics.IRR, 6),
			cell(r.Metrics.NPV, 2),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// CashFlowCSV writes every dated cash-flow event of every scenario
type CashFlowCSV struct{}

func (c CashFlowCSV) Name() string { return "detailed-csv" }

func (c CashFlowCSV) Format(report *Report) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	if err := w.Write([]string{"AssetID", "Scenario", "Date", "Amount"}); err != nil {
		return nil, err
	}
	for _, r := range report.Results {
		for _, e := range r.CashFlows {
			row := []string{report.AssetID, string(r.Scenario), e.Date.Format("2006-01-02"), e.Amount.StringFixed(2)}
			if err := w.Write(row); err != nil {
				return nil, err
			}
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func cell(d *decimal.Decimal, places int32) string {
	if d == nil {
		return ""
	}
	return d.StringFixed(places)
}
