package store

import (
	"time"

	"github.com/rgehrsitz/dispo/internal/domain"
	"github.com/shopspring/decimal"
)

// Decimals are kept as text so every driver round-trips them exactly.

// AssetRecord is the asset row. PriceSeq is the Seq of the last applied
// acquisition price change.
type AssetRecord struct {
	ID                 string              `gorm:"primaryKey;size:64"`
	Name               string              `gorm:"size:255"`
	AcquisitionPrice   decimal.NullDecimal `gorm:"type:varchar(40)"`
	PriceSeq           uint64
	AcquisitionDate    *time.Time
	BrokerPriceOpinion decimal.NullDecimal `gorm:"type:varchar(40)"`
	UnpaidBalance      decimal.NullDecimal `gorm:"type:varchar(40)"`
	DiscountRate       decimal.Decimal     `gorm:"type:varchar(40)"`
	OverridePolicy     string              `gorm:"size:16"`
	CreatedAt          time.Time
	UpdatedAt          time.Time

	Phases    []PhaseRecord    `gorm:"foreignKey:AssetID;constraint:OnDelete:CASCADE"`
	Costs     []CostRecord     `gorm:"foreignKey:AssetID;constraint:OnDelete:CASCADE"`
	Scenarios []ScenarioRecord `gorm:"foreignKey:AssetID;constraint:OnDelete:CASCADE"`
}

func (AssetRecord) TableName() string { return "assets" }

// PhaseRecord is one timeline phase. OverrideSeq orders override writes.
type PhaseRecord struct {
	ID             uint   `gorm:"primaryKey"`
	AssetID        string `gorm:"size:64;uniqueIndex:idx_phase_asset"`
	PhaseID        string `gorm:"size:64;uniqueIndex:idx_phase_asset"`
	Position       int
	Name           string `gorm:"size:255"`
	BaseMonths     *int
	OverrideMonths int
	OverrideSeq    uint64
	Scenarios      []string `gorm:"serializer:json"`
}

func (PhaseRecord) TableName() string { return "asset_phases" }

// CostRecord is one cost component
type CostRecord struct {
	ID            uint   `gorm:"primaryKey"`
	AssetID       string `gorm:"size:64;uniqueIndex:idx_cost_asset"`
	CostID        string `gorm:"size:64;uniqueIndex:idx_cost_asset"`
	Position      int
	Name          string          `gorm:"size:255"`
	Kind          string          `gorm:"size:16"`
	MonthlyRate   decimal.Decimal `gorm:"type:varchar(40)"`
	Amount        decimal.Decimal `gorm:"type:varchar(40)"`
	Phases        []string        `gorm:"serializer:json"`
	Scenarios     []string        `gorm:"serializer:json"`
	AtAcquisition bool
}

func (CostRecord) TableName() string { return "asset_costs" }

// ScenarioRecord is one scenario definition. ProceedsSeq orders proceeds writes.
type ScenarioRecord struct {
	ID          uint   `gorm:"primaryKey"`
	AssetID     string `gorm:"size:64;uniqueIndex:idx_scenario_asset"`
	Kind        string `gorm:"size:16;uniqueIndex:idx_scenario_asset"`
	Position    int
	Name        string              `gorm:"size:255"`
	Proceeds    decimal.NullDecimal `gorm:"type:varchar(40)"`
	ProceedsSeq uint64
}

func (ScenarioRecord) TableName() string { return "asset_scenarios" }

// EventRecord is the change log. Event ids are unique so redelivery is a no-op.
type EventRecord struct {
	ID       string `gorm:"primaryKey;size:36"`
	AssetID  string `gorm:"size:64;index"`
	Type     string `gorm:"size:32"`
	PhaseID  string `gorm:"size:64"`
	Delta    int
	Price    decimal.NullDecimal `gorm:"type:varchar(40)"`
	Scenario string              `gorm:"size:16"`
	Seq      uint64              `gorm:"index"`
	At       time.Time
	Applied  bool // false when a newer write already held the field
}

func (EventRecord) TableName() string { return "change_events" }

// SnapshotRecord holds the latest authoritative totals of one scenario
type SnapshotRecord struct {
	AssetID     string `gorm:"primaryKey;size:64"`
	Scenario    string `gorm:"primaryKey;size:16"`
	TotalMonths *int
	TotalCost   decimal.NullDecimal `gorm:"type:varchar(40)"`
	NetProfit   decimal.NullDecimal `gorm:"type:varchar(40)"`
	MOIC        decimal.NullDecimal `gorm:"type:varchar(40)"`
	IRR         decimal.NullDecimal `gorm:"type:varchar(40)"`
	NPV         decimal.NullDecimal `gorm:"type:varchar(40)"`
	EventSeq    uint64
	ComputedAt  time.Time
}

func (SnapshotRecord) TableName() string { return "scenario_snapshots" }

func toRecord(a *domain.Asset) AssetRecord {
	rec := AssetRecord{
		ID:                 a.ID,
		Name:               a.Name,
		AcquisitionPrice:   nullDecimal(a.AcquisitionPrice),
		AcquisitionDate:    a.AcquisitionDate,
		BrokerPriceOpinion: nullDecimal(a.Valuation.BrokerPriceOpinion),
		UnpaidBalance:      nullDecimal(a.Valuation.UnpaidBalance),
		DiscountRate:       a.Assumptions.DiscountRate,
		OverridePolicy:     string(a.Assumptions.OverridePolicy),
	}

	for i, p := range a.Phases {
		rec.Phases = append(rec.Phases, PhaseRecord{
			AssetID:        a.ID,
			PhaseID:        p.ID,
			Position:       i,
			Name:           p.Name,
			BaseMonths:     p.BaseMonths,
			OverrideMonths: p.OverrideMonths,
			Scenarios:      kindStrings(p.Scenarios),
		})
	}
	for i, c := range a.Costs {
		rec.Costs = append(rec.Costs, CostRecord{
			AssetID:       a.ID,
			CostID:        c.ID,
			Position:      i,
			Name:          c.Name,
			Kind:          string(c.Kind),
			MonthlyRate:   c.MonthlyRate,
			Amount:        c.Amount,
			Phases:        append([]string(nil), c.Phases...),
			Scenarios:     kindStrings(c.Scenarios),
			AtAcquisition: c.AtAcquisition,
		})
	}
	for i, s := range a.Scenarios {
		rec.Scenarios = append(rec.Scenarios, ScenarioRecord{
			AssetID:  a.ID,
			Kind:     string(s.Kind),
			Position: i,
			Name:     s.Name,
			Proceeds: nullDecimal(s.Proceeds),
		})
	}
	return rec
}

func (r AssetRecord) toDomain() *domain.Asset {
	a := &domain.Asset{
		ID:               r.ID,
		Name:             r.Name,
		AcquisitionPrice: decimalPtr(r.AcquisitionPrice),
		Valuation: domain.Valuation{
			BrokerPriceOpinion: decimalPtr(r.BrokerPriceOpinion),
			UnpaidBalance:      decimalPtr(r.UnpaidBalance),
		},
		Assumptions: domain.Assumptions{
			DiscountRate:   r.DiscountRate,
			OverridePolicy: domain.OverridePolicy(r.OverridePolicy),
		},
	}
	if r.AcquisitionDate != nil {
		d := r.AcquisitionDate.UTC()
		a.AcquisitionDate = &d
	}

	for _, p := range r.Phases {
		a.Phases = append(a.Phases, domain.Phase{
			ID:             p.PhaseID,
			Name:           p.Name,
			BaseMonths:     p.BaseMonths,
			OverrideMonths: p.OverrideMonths,
			Scenarios:      scenarioKinds(p.Scenarios),
		})
	}
	for _, c := range r.Costs {
		a.Costs = append(a.Costs, domain.CostComponent{
			ID:            c.CostID,
			Name:          c.Name,
			Kind:          domain.CostKind(c.Kind),
			MonthlyRate:   c.MonthlyRate,
			Amount:        c.Amount,
			Phases:        c.Phases,
			Scenarios:     scenarioKinds(c.Scenarios),
			AtAcquisition: c.AtAcquisition,
		})
	}
	for _, s := range r.Scenarios {
		a.Scenarios = append(a.Scenarios, domain.ScenarioDef{
			Kind:     domain.ScenarioKind(s.Kind),
			Name:     s.Name,
			Proceeds: decimalPtr(s.Proceeds),
		})
	}
	return a
}

func snapshotRecord(s domain.TotalsSnapshot, seq uint64) SnapshotRecord {
	return SnapshotRecord{
		AssetID:     s.AssetID,
		Scenario:    string(s.Scenario),
		TotalMonths: s.TotalMonths,
		TotalCost:   nullDecimal(s.TotalCost),
		NetProfit:   nullDecimal(s.NetProfit),
		MOIC:        nullDecimal(s.MOIC),
		IRR:         nullDecimal(s.IRR),
		NPV:         nullDecimal(s.NPV),
		EventSeq:    seq,
		ComputedAt:  s.ComputedAt,
	}
}

func (r SnapshotRecord) toDomain() domain.TotalsSnapshot {
	return domain.TotalsSnapshot{
		AssetID:     r.AssetID,
		Scenario:    domain.ScenarioKind(r.Scenario),
		TotalMonths: r.TotalMonths,
		TotalCost:   decimalPtr(r.TotalCost),
		NetProfit:   decimalPtr(r.NetProfit),
		MOIC:        decimalPtr(r.MOIC),
		IRR:         decimalPtr(r.IRR),
		NPV:         decimalPtr(r.NPV),
		ComputedAt:  r.ComputedAt.UTC(),
	}
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(*d)
}

func decimalPtr(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	v := d.Decimal
	return &v
}

func kindStrings(kinds []domain.ScenarioKind) []string {
	if len(kinds) == 0 {
		return nil
	}
	out := make([]string, len(kinds))
	for i, k := range kinds {
		out[i] = string(k)
	}
	return out
}

func scenarioKinds(s []string) []domain.ScenarioKind {
	if len(s) == 0 {
		return nil
	}
	out := make([]domain.ScenarioKind, len(s))
	for i, k := range s {
		out[i] = domain.ScenarioKind(k)
	}
	return out
}
