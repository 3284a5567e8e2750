package components

import (
	"fmt"
	"strings"

	"github.com/rgehrsitz/dispo/internal/domain"
	"github.com/rgehrsitz/dispo/internal/tui/tuistyles"
)

// PhaseList renders the asset timeline as seen by one scenario, with a
// cursor on the phase the adjustment keys act on
type PhaseList struct {
	Phases   []domain.Phase
	Timeline domain.Timeline
	Cursor   int
}

// NewPhaseList creates a phase list for the given timeline
func NewPhaseList(phases []domain.Phase, timeline domain.Timeline, cursor int) *PhaseList {
	return &PhaseList{Phases: phases, Timeline: timeline, Cursor: cursor}
}

// Row returns the unstyled text of one phase row
func (p *PhaseList) Row(i int) string {
	phase := p.Phases[i]
	base := domain.FormatMonths(phase.BaseMonths)

	months, ok := p.Timeline.Months(phase.ID)
	if !ok {
		return fmt.Sprintf("%-22s %4s mo  (base %s)  n/a", phase.Name, "", base)
	}

	row := fmt.Sprintf("%-22s %4s mo  (base %s", phase.Name, domain.FormatMonths(months), base)
	if phase.OverrideMonths != 0 {
		row += fmt.Sprintf(", override %+d", phase.OverrideMonths)
	}
	return row + ")"
}

// Render returns the styled list
func (p *PhaseList) Render() string {
	var sb strings.Builder
	for i, phase := range p.Phases {
		cursor := "  "
		if i == p.Cursor {
			cursor = "▸ "
		}

		row := p.Row(i)
		_, inScenario := p.Timeline.Months(phase.ID)
		switch {
		case !inScenario:
			row = tuistyles.DisabledItemStyle.Render(row)
		case i == p.Cursor:
			row = tuistyles.SelectedItemStyle.Render(row)
		case phase.OverrideMonths != 0:
			row = tuistyles.OverrideStyle.Render(row)
		default:
			row = tuistyles.UnselectedItemStyle.Render(row)
		}

		sb.WriteString(cursor + row)
		if i < len(p.Phases)-1 {
			sb.WriteString("\n")
		}
	}

	total := domain.FormatMonths(p.Timeline.TotalMonths)
	sb.WriteString("\n" + tuistyles.SubtitleStyle.Render(fmt.Sprintf("  %-22s %4s mo", "Total hold", total)))
	return sb.String()
}
