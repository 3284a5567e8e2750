package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/rgehrsitz/dispo/internal/tui/tuistyles"
	"github.com/shopspring/decimal"
)

// MetricCard displays a single metric with label, value, and optional trend
type MetricCard struct {
	Label       string
	Value       string
	Trend       *Trend
	Description string
	Width       int
}

// Trend is the change of a metric since the session started
type Trend struct {
	IsUp   bool
	IsGood bool
	Change string
}

// NewMetricCard creates a new metric card
func NewMetricCard(label, value string) *MetricCard {
	return &MetricCard{
		Label: label,
		Value: value,
		Width: 22,
	}
}

// WithTrend adds a trend indicator to the metric card
func (m *MetricCard) WithTrend(isUp, isGood bool, change string) *MetricCard {
	m.Trend = &Trend{IsUp: isUp, IsGood: isGood, Change: change}
	return m
}

// WithDelta derives the trend from the current and baseline values. Nothing
// is shown when either side is unknown or the two agree.
func (m *MetricCard) WithDelta(current, baseline *decimal.Decimal, higherIsBetter bool, format func(decimal.Decimal) string) *MetricCard {
	if current == nil || baseline == nil || current.Equal(*baseline) {
		return m
	}
	delta := current.Sub(*baseline)
	isUp := delta.IsPositive()
	change := format(delta.Abs())
	if isUp {
		change = "+" + change
	} else {
		change = "-" + change
	}
	return m.WithTrend(isUp, isUp == higherIsBetter, change)
}

// WithDescription adds a description/subtitle
func (m *MetricCard) WithDescription(desc string) *MetricCard {
	m.Description = desc
	return m
}

// WithWidth sets the card width
func (m *MetricCard) WithWidth(width int) *MetricCard {
	m.Width = width
	return m
}

func (m *MetricCard) trend(sep string) string {
	if m.Trend == nil {
		return ""
	}
	arrow := tuistyles.TrendIndicator(m.Trend.IsUp)
	return sep + tuistyles.MetricTrendStyle(m.Trend.IsGood).Render(fmt.Sprintf("%s %s", arrow, m.Trend.Change))
}

// Render returns the styled metric card
func (m *MetricCard) Render() string {
	content := tuistyles.MetricLabelStyle.Render(m.Label) + "\n" +
		tuistyles.MetricValueStyle.Render(m.Value) + m.trend("\n")

	if m.Description != "" {
		content += "\n" + tuistyles.SubtitleStyle.Render(m.Description)
	}

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(tuistyles.ColorBorder).
		Padding(0, 1).
		Width(m.Width)

	return cardStyle.Render(content)
}

// RenderCompact returns a compact inline version without border
func (m *MetricCard) RenderCompact() string {
	label := tuistyles.MetricLabelStyle.Render(m.Label + ":")
	value := tuistyles.MetricValueStyle.Render(m.Value)
	return label + " " + value + m.trend(" ")
}

// MetricGrid renders multiple metric cards in a grid layout
func MetricGrid(cards []*MetricCard, columns int) string {
	if len(cards) == 0 {
		return ""
	}
	if columns < 1 {
		columns = 1
	}

	var rows, currentRow []string
	for i, card := range cards {
		currentRow = append(currentRow, card.Render())
		if (i+1)%columns == 0 || i == len(cards)-1 {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, currentRow...))
			currentRow = nil
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
