package transform

import (
	"fmt"

	"github.com/rgehrsitz/dispo/internal/domain"
)

// AdjustPhase moves one phase's override delta by exactly one month.
// A decrement that would take the effective duration below zero follows the
// asset's override policy: clamp leaves the asset unchanged, reject fails
// with domain.ErrNegativeDuration.
type AdjustPhase struct {
	PhaseID string
	Step    int // +1 or -1
}

func (ap *AdjustPhase) Name() string {
	return "adjust_phase"
}

func (ap *AdjustPhase) Description() string {
	if ap.Step > 0 {
		return fmt.Sprintf("Extend phase %s by one month", ap.PhaseID)
	}
	return fmt.Sprintf("Shorten phase %s by one month", ap.PhaseID)
}

func (ap *AdjustPhase) Validate(base *domain.Asset) error {
	if ap.Step != 1 && ap.Step != -1 {
		return NewTransformError(ap.Name(), "validate", fmt.Sprintf("step must be +1 or -1, got %d", ap.Step), nil)
	}

	if base == nil {
		return NewTransformError(ap.Name(), "validate", "base asset cannot be nil", nil)
	}

	if _, _, err := base.Phase(ap.PhaseID); err != nil {
		return NewTransformError(ap.Name(), "validate", "phase not found", err)
	}

	return nil
}

func (ap *AdjustPhase) Apply(base *domain.Asset) (*domain.Asset, error) {
	modified := base.DeepCopy()

	phase, _, err := modified.Phase(ap.PhaseID)
	if err != nil {
		return nil, NewTransformError(ap.Name(), "apply", "phase not found", err)
	}

	if ap.Step < 0 {
		if months := phase.EffectiveMonths(); months != nil && *months+ap.Step < 0 {
			if modified.Policy() == domain.OverrideReject {
				return nil, NewTransformError(ap.Name(), "apply",
					fmt.Sprintf("phase %s is already at 0 months", ap.PhaseID), domain.ErrNegativeDuration)
			}
			return modified, nil
		}
	}

	phase.OverrideMonths += ap.Step
	return modified, nil
}

// ResetOverrides sets every phase's override delta back to zero
type ResetOverrides struct{}

func (ro *ResetOverrides) Name() string {
	return "reset_overrides"
}

func (ro *ResetOverrides) Description() string {
	return "Reset all phase overrides to their base durations"
}

func (ro *ResetOverrides) Validate(base *domain.Asset) error {
	if base == nil {
		return NewTransformError(ro.Name(), "validate", "base asset cannot be nil", nil)
	}
	return nil
}

func (ro *ResetOverrides) Apply(base *domain.Asset) (*domain.Asset, error) {
	modified := base.DeepCopy()
	for i := range modified.Phases {
		modified.Phases[i].OverrideMonths = 0
	}
	return modified, nil
}
