package calculation

import "github.com/rgehrsitz/dispo/internal/domain"

// ResolveTimeline resolves every phase that applies to the scenario into its
// effective duration and sums the scenario total. The total stays unknown
// while any included phase has no base duration yet.
func ResolveTimeline(asset *domain.Asset, kind domain.ScenarioKind) domain.Timeline {
	tl := domain.Timeline{Scenario: kind}

	total := 0
	known := true
	for _, p := range asset.Phases {
		if !p.AppliesTo(kind) {
			continue
		}
		months := p.EffectiveMonths()
		tl.Phases = append(tl.Phases, domain.PhaseDuration{
			PhaseID:        p.ID,
			Name:           p.Name,
			BaseMonths:     p.BaseMonths,
			OverrideMonths: p.OverrideMonths,
			Months:         months,
		})
		if months == nil {
			known = false
			continue
		}
		total += *months
	}

	if known {
		tl.TotalMonths = &total
	}
	return tl
}

// monthsOver sums the effective months of the listed phases that are part of
// the timeline. Phases outside the scenario contribute nothing; an unknown
// phase makes the whole sum unknown. An empty list means the whole timeline.
func monthsOver(tl domain.Timeline, phaseIDs []string) *int {
	if len(phaseIDs) == 0 {
		return tl.TotalMonths
	}

	sum := 0
	for _, id := range phaseIDs {
		months, ok := tl.Months(id)
		if !ok {
			continue
		}
		if months == nil {
			return nil
		}
		sum += *months
	}
	return &sum
}
