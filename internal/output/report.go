package output

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rgehrsitz/dispo/internal/domain"
	"github.com/shopspring/decimal"
)

// Report is everything a formatter renders: the asset as computed and one
// result per scenario, in display order
type Report struct {
	AssetID          string                   `json:"assetId"`
	AssetName        string                   `json:"assetName"`
	AcquisitionPrice *decimal.Decimal         `json:"acquisitionPrice"`
	AcquisitionDate  *time.Time               `json:"acquisitionDate"`
	PriceToValue     *decimal.Decimal         `json:"priceToValue"`
	PriceToUPB       *decimal.Decimal         `json:"priceToUnpaidBalance"`
	DiscountRate     decimal.Decimal          `json:"discountRate"`
	Assumptions      []string                 `json:"assumptions"`
	Results          []*domain.ScenarioResult `json:"results"`
	GeneratedAt      time.Time                `json:"generatedAt"`
}

// NewReport assembles a report from an asset and its computed scenarios
func NewReport(asset *domain.Asset, results []*domain.ScenarioResult, at time.Time) *Report {
	return &Report{
		AssetID:          asset.ID,
		AssetName:        asset.Name,
		AcquisitionPrice: asset.AcquisitionPrice,
		AcquisitionDate:  asset.AcquisitionDate,
		PriceToValue:     asset.PriceToValue(),
		PriceToUPB:       asset.PriceToUnpaidBalance(),
		DiscountRate:     asset.Assumptions.DiscountRate,
		Assumptions:      Assumptions(asset),
		Results:          results,
		GeneratedAt:      at,
	}
}

// WriteFormatted renders the report with f and writes it to a timestamped
// file in the working directory, returning the file name
func WriteFormatted(f Formatter, report *Report, ext string) (string, error) {
	data, err := f.Format(report)
	if err != nil {
		return "", err
	}

	filename := fmt.Sprintf("disposition_report_%s_%s.%s",
		safeName(report.AssetID), report.GeneratedAt.Format("20060102_150405"), ext)
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", filename, err)
	}
	return filename, nil
}

func safeName(s string) string {
	if s == "" {
		return "asset"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, s)
}

// FormatCurrency formats an optional amount as currency, "—" while unknown
func FormatCurrency(amount *decimal.Decimal) string {
	if amount == nil {
		return "—"
	}
	if amount.IsNegative() {
		return "-$" + amount.Abs().StringFixed(2)
	}
	return "$" + amount.StringFixed(2)
}

// FormatPercentage formats an optional rate as a percentage
func FormatPercentage(rate *decimal.Decimal) string {
	return domain.FormatPercent(rate)
}
