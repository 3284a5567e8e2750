package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ChangeType identifies what a ChangeEvent carries
type ChangeType string

const (
	ChangePhaseOverride    ChangeType = "phase_override"
	ChangeAcquisitionPrice ChangeType = "acquisition_price"
	ChangeResetOverrides   ChangeType = "reset_overrides"
	ChangeProceeds         ChangeType = "proceeds"
)

// ChangeEvent is a discrete user edit emitted for the authoritative store.
// Events for the same field are last-write-wins ordered by Seq.
type ChangeEvent struct {
	ID       string           `json:"id"`
	AssetID  string           `json:"assetId"`
	Type     ChangeType       `json:"type"`
	PhaseID  string           `json:"phaseId,omitempty"`
	Delta    int              `json:"delta,omitempty"` // new override delta, not the step
	Price    *decimal.Decimal `json:"price,omitempty"`
	Scenario ScenarioKind     `json:"scenario,omitempty"`
	Seq      uint64           `json:"seq"`
	At       time.Time        `json:"at"`
}

// NewChangeEvent stamps a new event with a fresh id and time
func NewChangeEvent(assetID string, typ ChangeType, seq uint64, at time.Time) ChangeEvent {
	return ChangeEvent{
		ID:      uuid.NewString(),
		AssetID: assetID,
		Type:    typ,
		Seq:     seq,
		At:      at,
	}
}

func (e ChangeEvent) String() string {
	switch e.Type {
	case ChangePhaseOverride:
		return fmt.Sprintf("%s phase %s delta=%d (seq %d)", e.AssetID, e.PhaseID, e.Delta, e.Seq)
	case ChangeAcquisitionPrice:
		return fmt.Sprintf("%s acquisition price=%s (seq %d)", e.AssetID, FormatAmount(e.Price), e.Seq)
	case ChangeProceeds:
		return fmt.Sprintf("%s %s proceeds=%s (seq %d)", e.AssetID, e.Scenario, FormatAmount(e.Price), e.Seq)
	default:
		return fmt.Sprintf("%s %s (seq %d)", e.AssetID, e.Type, e.Seq)
	}
}
