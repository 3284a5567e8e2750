package output

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/rgehrsitz/dispo/internal/calculation"
	"github.com/rgehrsitz/dispo/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var generatedAt = time.Date(2024, time.May, 1, 9, 30, 0, 0, time.UTC)

func buildTestReport(t *testing.T, asset *domain.Asset) *Report {
	t.Helper()
	results, err := calculation.NewCalculationEngine().RunAll(asset)
	require.NoError(t, err)
	return NewReport(asset, results, generatedAt)
}

func TestNewReport(t *testing.T) {
	report := buildTestReport(t, domain.SampleAsset())

	assert.Equal(t, "REO-1042", report.AssetID)
	assert.Len(t, report.Results, 2)
	assert.Equal(t, "0.6786", report.PriceToValue.StringFixed(4))
	assert.Equal(t, "0.7564", report.PriceToUPB.StringFixed(4))
	assert.Contains(t, report.Assumptions[0], "10.00%")
}

func TestFormatterFunc(t *testing.T) {
	var received *Report
	formatter := FormatterFunc{
		ID: "test-formatter",
		F: func(report *Report) ([]byte, error) {
			received = report
			return []byte("test output"), nil
		},
	}

	report := &Report{AssetID: "A-1"}
	out, err := formatter.Format(report)

	assert.NoError(t, err)
	assert.Equal(t, "test-formatter", formatter.Name())
	assert.Same(t, report, received)
	assert.Equal(t, []byte("test output"), out)
}

func TestWriteFormatted(t *testing.T) {
	t.Chdir(t.TempDir())

	formatter := FormatterFunc{
		ID: "test-formatter",
		F: func(*Report) ([]byte, error) {
			return []byte("test output content"), nil
		},
	}

	filename, err := WriteFormatted(formatter, &Report{AssetID: "REO/1042", GeneratedAt: generatedAt}, "txt")
	require.NoError(t, err)
	assert.Equal(t, "disposition_report_REO_1042_20240501_093000.txt", filename)

	content, err := os.ReadFile(filename)
	require.NoError(t, err)
	assert.Equal(t, "test output content", string(content))
}

func TestWriteFormatted_FormatterError(t *testing.T) {
	formatter := FormatterFunc{
		ID: "error-formatter",
		F: func(*Report) ([]byte, error) {
			return nil, fmt.Errorf("formatter error")
		},
	}

	filename, err := WriteFormatted(formatter, &Report{}, "txt")
	assert.Error(t, err)
	assert.Empty(t, filename)
	assert.Contains(t, err.Error(), "formatter error")
}

func TestConsoleFormatter_Format(t *testing.T) {
	out, err := ConsoleFormatter{}.Format(buildTestReport(t, domain.SampleAsset()))
	require.NoError(t, err)

	content := string(out)
	assert.Contains(t, content, "DISPOSITION SCENARIO SUMMARY")
	assert.Contains(t, content, "Asset: 1042 Juniper Ct (REO-1042)")
	assert.Contains(t, content, "net $24182.74  MOIC 1.1467")
	assert.Contains(t, content, "net $55980.04  MOIC 1.2717")
	assert.Contains(t, content, "Highest net profit: Renovate and sell")
}

func TestConsoleFormatter_UnknownPrice(t *testing.T) {
	asset := domain.SampleAsset()
	asset.AcquisitionPrice = nil

	out, err := ConsoleFormatter{}.Format(buildTestReport(t, asset))
	require.NoError(t, err)

	content := string(out)
	assert.Contains(t, content, "Acquisition Price: —")
	assert.Contains(t, content, "net —  MOIC —  IRR —")
	assert.NotContains(t, content, "Highest net profit")
}

func TestConsoleVerboseFormatter_Format(t *testing.T) {
	asset := domain.SampleAsset()
	asset.Phases[1].OverrideMonths = 2

	out, err := ConsoleVerboseFormatter{}.Format(buildTestReport(t, asset))
	require.NoError(t, err)

	content := string(out)
	for _, want := range []string{
		"DETAILED ASSET DISPOSITION ANALYSIS",
		"Acquisition Date:   2024-03-15",
		"Price / BPO:        0.6786",
		"Price / UPB:        0.7564",
		"KEY ASSUMPTIONS:",
		"SCENARIO 1: As-is sale",
		"SCENARIO 2: Renovate and sell",
		"(base 6, override +2)",
		"(at close)",
		"-$147350.00",
		"RECOMMENDATION:",
	} {
		assert.Contains(t, content, want)
	}
}

func TestConsoleVerboseFormatter_UnknownSeries(t *testing.T) {
	asset := domain.SampleAsset()
	asset.Scenarios[0].Proceeds = nil

	out, err := ConsoleVerboseFormatter{}.Format(buildTestReport(t, asset))
	require.NoError(t, err)
	assert.Contains(t, string(out), "— (price, date, duration, costs or proceeds unknown)")
}

func TestCSVSummarizer_Format(t *testing.T) {
	out, err := CSVSummarizer{}.Format(buildTestReport(t, domain.SampleAsset()))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "AssetID,Scenario,TotalMonths,TotalCost"))
	assert.True(t, strings.HasPrefix(lines[1], "REO-1042,as_is,11,22317.26,4850.00,189000.00,24182.74,1.146725,"), lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "REO-1042,rehab,14,63519.96,4850.00,262000.00,55980.04,1.271721,"), lines[2])
}

func TestCSVSummarizer_UnknownFigures(t *testing.T) {
	asset := domain.SampleAsset()
	asset.AcquisitionPrice = nil

	out, err := CSVSummarizer{}.Format(buildTestReport(t, asset))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	assert.Equal(t, "REO-1042,as_is,11,22317.26,4850.00,189000.00,,,,,", lines[1])
}

func TestCashFlowCSV_Format(t *testing.T) {
	out, err := CashFlowCSV{}.Format(buildTestReport(t, domain.SampleAsset()))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	// header + 12 as-is events + 15 rehab events
	require.Len(t, lines, 28)
	assert.Equal(t, "REO-1042,as_is,2024-03-15,-147350.00", lines[1])
	assert.Equal(t, "REO-1042,as_is,2025-02-15,187412.04", lines[12])
}

func TestJSONFormatter_Format(t *testing.T) {
	out, err := JSONFormatter{}.Format(buildTestReport(t, domain.SampleAsset()))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, "REO-1042", decoded["assetId"])
	assert.Len(t, decoded["results"], 2)
}

func TestHTMLFormatter_Format(t *testing.T) {
	out, err := HTMLFormatter{}.Format(buildTestReport(t, domain.SampleAsset()))
	require.NoError(t, err)

	content := string(out)
	assert.Contains(t, content, "<!DOCTYPE html>")
	assert.Contains(t, content, "<title>1042 Juniper Ct disposition analysis</title>")
	assert.Contains(t, content, "<td>$24182.74</td>")
}

func TestAvailableFormatterNames(t *testing.T) {
	assert.Equal(t, []string{"console", "console-lite", "csv", "detailed-csv", "html", "json"}, AvailableFormatterNames())
	assert.Contains(t, AvailableFormatAliases(), "verbose")
}

func TestGetFormatterByName(t *testing.T) {
	f := GetFormatterByName("console-lite")
	require.NotNil(t, f)
	assert.Equal(t, "console-lite", f.Name())

	f = GetFormatterByName("verbose")
	require.NotNil(t, f)
	assert.Equal(t, "console", f.Name())

	assert.Nil(t, GetFormatterByName("non-existent"))
}
