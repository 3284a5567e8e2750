package output

import (
	"bytes"
	"html/template"

	"github.com/rgehrsitz/dispo/internal/domain"
)

// HTMLFormatter produces a standalone HTML report
type HTMLFormatter struct{}

func (h HTMLFormatter) Name() string { return "html" }

var htmlTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"curr":   FormatCurrency,
	"pct":    domain.FormatPercent,
	"rate":   domain.FormatRate,
	"months": domain.FormatMonths,
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.AssetName}} disposition analysis</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; margin-bottom: 1.5em; }
th, td { border: 1px solid #ccc; padding: 4px 10px; text-align: right; }
th:first-child, td:first-child { text-align: left; }
</style>
</head>
<body>
<h1>Asset Disposition Analysis</h1>
<p>{{.AssetName}} ({{.AssetID}}), acquisition price {{curr .AcquisitionPrice}},
price/BPO {{rate .PriceToValue}}, price/UPB {{rate .PriceToUPB}}</p>
<table>
<tr><th>Scenario</th><th>Months</th><th>Total Cost</th><th>Proceeds</th><th>Net Profit</th><th>MOIC</th><th>IRR</th><th>NPV</th></tr>
{{range .Results}}<tr><td>{{.Name}}</td><td>{{months .Timeline.TotalMonths}}</td><td>{{curr .Costs.Total}}</td><td>{{curr .Proceeds}}</td><td>{{curr .Metrics.NetProfit}}</td><td>{{rate .Metrics.MOIC}}</td><td>{{pct .Metrics.IRR}}</td><td>{{curr .Metrics.NPV}}</td></tr>
{{end}}</table>
<h2>Assumptions</h2>
<ul>{{range .Assumptions}}<li>{{.}}</li>{{end}}</ul>
</body>
</html>
`))

func (h HTMLFormatter) Format(report *Report) ([]byte, error) {
	var buf bytes.Buffer
	if err := htmlTemplate.Execute(&buf, report); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
