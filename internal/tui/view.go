package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/rgehrsitz/dispo/internal/domain"
	"github.com/rgehrsitz/dispo/internal/tui/components"
)

// View renders the current state (required by tea.Model interface)
func (m Model) View() string {
	asset := m.session.Asset()
	result, ok := m.session.Result(m.scenario)

	sections := []string{
		m.renderTitleBar(asset),
		m.renderTabs(),
	}
	if !ok {
		sections = append(sections, ErrorStyle.Render("no result for scenario "+string(m.scenario)))
	} else {
		sections = append(sections,
			m.renderPricing(asset, result),
			BorderStyle.Render(components.NewPhaseList(asset.Phases, result.Timeline, m.cursor).Render()),
			m.renderMetrics(result),
		)
	}
	if m.mode != modeBrowse {
		sections = append(sections, ActiveBorderStyle.Render(m.input.View()+"\n"+
			SubtitleStyle.Render("enter to apply • empty marks unknown • esc to cancel")))
	}
	sections = append(sections, m.renderStatusBar(), m.help.View(m.keys))

	return lipgloss.NewStyle().Padding(0, 1).Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m Model) renderTitleBar(asset *domain.Asset) string {
	title := TitleStyle.Render("dispo")
	name := SubtitleStyle.Render(fmt.Sprintf("%s  %s", asset.ID, asset.Name))
	return lipgloss.JoinHorizontal(lipgloss.Center, title, " ", name)
}

func (m Model) renderTabs() string {
	var tabs []string
	for _, r := range m.session.Results() {
		if r.Scenario == m.scenario {
			tabs = append(tabs, ActiveTabStyle.Render(r.Name))
		} else {
			tabs = append(tabs, TabStyle.Render(r.Name))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) renderPricing(asset *domain.Asset, result *domain.ScenarioResult) string {
	parts := []string{
		components.NewMetricCard("Price", FormatCurrency(asset.AcquisitionPrice)).RenderCompact(),
		components.NewMetricCard("Proceeds", FormatCurrency(result.Proceeds)).RenderCompact(),
		components.NewMetricCard("Price/BPO", domain.FormatPercent(asset.PriceToValue())).RenderCompact(),
		components.NewMetricCard("Price/UPB", domain.FormatPercent(asset.PriceToUnpaidBalance())).RenderCompact(),
	}
	return strings.Join(parts, "   ")
}

func (m Model) renderMetrics(result *domain.ScenarioResult) string {
	var base domain.ScenarioResult
	if b, ok := m.baseline[result.Scenario]; ok {
		base = *b
	}
	money := func(d decimal.Decimal) string { return FormatCurrency(&d) }
	pct := func(d decimal.Decimal) string { return domain.FormatPercent(&d) }
	rate := func(d decimal.Decimal) string { return d.StringFixed(4) }

	cards := []*components.MetricCard{
		components.NewMetricCard("Hold", domain.FormatMonths(result.Timeline.TotalMonths)+" mo").
			WithDelta(monthsDecimal(result.Timeline.TotalMonths), monthsDecimal(base.Timeline.TotalMonths), false,
				func(d decimal.Decimal) string { return d.String() + " mo" }),
		components.NewMetricCard("Total Cost", FormatCurrency(result.Costs.Total)).
			WithDelta(result.Costs.Total, base.Costs.Total, false, money),
		components.NewMetricCard("Net Profit", FormatCurrency(result.Metrics.NetProfit)).
			WithDelta(result.Metrics.NetProfit, base.Metrics.NetProfit, true, money),
		components.NewMetricCard("MOIC", domain.FormatRate(result.Metrics.MOIC)).
			WithDelta(result.Metrics.MOIC, base.Metrics.MOIC, true, rate),
		components.NewMetricCard("IRR", domain.FormatPercent(result.Metrics.IRR)).
			WithDelta(result.Metrics.IRR, base.Metrics.IRR, true, pct),
		components.NewMetricCard("NPV", FormatCurrency(result.Metrics.NPV)).
			WithDelta(result.Metrics.NPV, base.Metrics.NPV, true, money),
		components.NewMetricCard("Annualized", domain.FormatPercent(result.Metrics.AnnualizedReturn)).
			WithDelta(result.Metrics.AnnualizedReturn, base.Metrics.AnnualizedReturn, true, pct),
	}

	columns := max(1, m.width/24)
	return components.MetricGrid(cards, columns)
}

func (m Model) renderStatusBar() string {
	if m.status == "" {
		return StatusBarStyle.Width(m.width).Render(SubtitleStyle.Render("ready"))
	}
	if m.statusErr {
		return StatusBarStyle.Width(m.width).Render(ErrorStyle.Render("✗ " + m.status))
	}
	return StatusBarStyle.Width(m.width).Render(InfoStyle.Render(m.status))
}

func monthsDecimal(m *int) *decimal.Decimal {
	if m == nil {
		return nil
	}
	return domain.DecimalPtr(decimal.NewFromInt(int64(*m)))
}
