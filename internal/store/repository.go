package store

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/rgehrsitz/dispo/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrAssetNotFound is returned when no asset has the requested id
var ErrAssetNotFound = errors.New("asset not found")

// Repository reads and writes assets, change events and snapshots
type Repository struct{ db *gorm.DB }

func NewRepository(db *gorm.DB) *Repository { return &Repository{db: db} }

// Tx runs fn inside a transaction with a repository bound to it
func (r *Repository) Tx(ctx context.Context, fn func(tx *Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repository{db: tx})
	})
}

// SaveAsset stores the asset, replacing any existing copy. Field sequence
// numbers start over, so later events of any Seq apply.
func (r *Repository) SaveAsset(ctx context.Context, a *domain.Asset) error {
	if a == nil || a.ID == "" {
		return fmt.Errorf("asset id is required")
	}
	rec := toRecord(a)

	return r.Tx(ctx, func(tx *Repository) error {
		if err := tx.deleteChildren(a.ID); err != nil {
			return err
		}
		if err := tx.db.Where("id = ?", a.ID).Delete(&AssetRecord{}).Error; err != nil {
			return fmt.Errorf("failed to clear asset %s: %w", a.ID, err)
		}
		if err := tx.db.Omit(clause.Associations).Create(&rec).Error; err != nil {
			return fmt.Errorf("failed to save asset %s: %w", a.ID, err)
		}
		return tx.createChildren(rec)
	})
}

// SyncBase stores figures that come from the external data source: base
// phase durations, cost rates and amounts, acquisition date, valuation and
// the assumptions (discount rate, override policy).
// User edits already applied to a stored asset are kept. An asset the store
// has never seen is saved whole.
func (r *Repository) SyncBase(ctx context.Context, a *domain.Asset) error {
	if a == nil || a.ID == "" {
		return fmt.Errorf("asset id is required")
	}

	return r.Tx(ctx, func(tx *Repository) error {
		current, err := tx.lockAsset(a.ID)
		if errors.Is(err, ErrAssetNotFound) {
			rec := toRecord(a)
			if err := tx.db.Omit(clause.Associations).Create(&rec).Error; err != nil {
				return fmt.Errorf("failed to create asset %s: %w", a.ID, err)
			}
			return tx.createChildren(rec)
		}
		if err != nil {
			return err
		}

		incoming := toRecord(a)
		updates := map[string]any{
			"name":                 incoming.Name,
			"broker_price_opinion": incoming.BrokerPriceOpinion,
			"unpaid_balance":       incoming.UnpaidBalance,
			"discount_rate":        incoming.DiscountRate,
			"override_policy":      incoming.OverridePolicy,
		}
		if a.AcquisitionDate != nil {
			updates["acquisition_date"] = *a.AcquisitionDate
		}
		if err := tx.db.Model(current).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update asset %s: %w", a.ID, err)
		}

		for _, p := range incoming.Phases {
			res := tx.db.Model(&PhaseRecord{}).
				Where("asset_id = ? AND phase_id = ?", a.ID, p.PhaseID).
				Update("base_months", p.BaseMonths)
			if res.Error != nil {
				return fmt.Errorf("failed to update phase %s: %w", p.PhaseID, res.Error)
			}
		}
		for _, c := range incoming.Costs {
			res := tx.db.Model(&CostRecord{}).
				Where("asset_id = ? AND cost_id = ?", a.ID, c.CostID).
				Updates(map[string]any{"monthly_rate": c.MonthlyRate, "amount": c.Amount})
			if res.Error != nil {
				return fmt.Errorf("failed to update cost %s: %w", c.CostID, res.Error)
			}
		}
		return nil
	})
}

// LoadAsset returns the stored asset with phases, costs and scenarios in order
func (r *Repository) LoadAsset(ctx context.Context, id string) (*domain.Asset, error) {
	var rec AssetRecord
	err := r.db.WithContext(ctx).
		Preload("Phases", ordered).
		Preload("Costs", ordered).
		Preload("Scenarios", ordered).
		Where("id = ?", id).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrAssetNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load asset %s: %w", id, err)
	}
	return rec.toDomain(), nil
}

// ListAssets returns the ids of every stored asset
func (r *Repository) ListAssets(ctx context.Context) ([]string, error) {
	var ids []string
	if err := r.db.WithContext(ctx).Model(&AssetRecord{}).Order("id").Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}
	return ids, nil
}

// ApplyEvent records a change event and writes it to the field it targets
// unless that field already holds a write with a higher Seq. It reports
// whether the event changed the stored asset. Redelivered events are no-ops.
func (r *Repository) ApplyEvent(ctx context.Context, ev domain.ChangeEvent) (bool, error) {
	var applied bool
	err := r.Tx(ctx, func(tx *Repository) error {
		var err error
		applied, err = tx.applyEvent(ev)
		return err
	})
	return applied, err
}

func (r *Repository) applyEvent(ev domain.ChangeEvent) (bool, error) {
	var seen int64
	if err := r.db.Model(&EventRecord{}).Where("id = ?", ev.ID).Count(&seen).Error; err != nil {
		return false, err
	}
	if seen > 0 {
		return false, nil
	}

	asset, err := r.lockAsset(ev.AssetID)
	if err != nil {
		return false, err
	}

	var applied bool
	switch ev.Type {
	case domain.ChangePhaseOverride:
		applied, err = r.applyOverride(ev)
	case domain.ChangeResetOverrides:
		applied, err = r.applyReset(ev)
	case domain.ChangeAcquisitionPrice:
		applied, err = r.applyPrice(asset, ev)
	case domain.ChangeProceeds:
		applied, err = r.applyProceeds(ev)
	default:
		err = fmt.Errorf("unknown change type %q", ev.Type)
	}
	if err != nil {
		return false, err
	}

	log := EventRecord{
		ID:       ev.ID,
		AssetID:  ev.AssetID,
		Type:     string(ev.Type),
		PhaseID:  ev.PhaseID,
		Delta:    ev.Delta,
		Price:    nullDecimal(ev.Price),
		Scenario: string(ev.Scenario),
		Seq:      ev.Seq,
		At:       ev.At,
		Applied:  applied,
	}
	if err := r.db.Create(&log).Error; err != nil {
		return false, fmt.Errorf("failed to record event %s: %w", ev.ID, err)
	}
	return applied, nil
}

func (r *Repository) applyOverride(ev domain.ChangeEvent) (bool, error) {
	var phase PhaseRecord
	err := r.db.Where("asset_id = ? AND phase_id = ?", ev.AssetID, ev.PhaseID).First(&phase).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("%w: %s", domain.ErrUnknownPhase, ev.PhaseID)
	}
	if err != nil {
		return false, err
	}
	if ev.Seq <= phase.OverrideSeq {
		return false, nil
	}
	err = r.db.Model(&phase).Updates(map[string]any{
		"override_months": ev.Delta,
		"override_seq":    ev.Seq,
	}).Error
	return err == nil, err
}

func (r *Repository) applyReset(ev domain.ChangeEvent) (bool, error) {
	res := r.db.Model(&PhaseRecord{}).
		Where("asset_id = ? AND override_seq < ?", ev.AssetID, ev.Seq).
		Updates(map[string]any{"override_months": 0, "override_seq": ev.Seq})
	return res.RowsAffected > 0, res.Error
}

func (r *Repository) applyPrice(asset *AssetRecord, ev domain.ChangeEvent) (bool, error) {
	if ev.Seq <= asset.PriceSeq {
		return false, nil
	}
	err := r.db.Model(asset).Updates(map[string]any{
		"acquisition_price": nullDecimal(ev.Price),
		"price_seq":         ev.Seq,
	}).Error
	return err == nil, err
}

func (r *Repository) applyProceeds(ev domain.ChangeEvent) (bool, error) {
	var sc ScenarioRecord
	err := r.db.Where("asset_id = ? AND kind = ?", ev.AssetID, string(ev.Scenario)).First(&sc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("%w: %s", domain.ErrUnknownScenario, ev.Scenario)
	}
	if err != nil {
		return false, err
	}
	if ev.Seq <= sc.ProceedsSeq {
		return false, nil
	}
	err = r.db.Model(&sc).Updates(map[string]any{
		"proceeds":     nullDecimal(ev.Price),
		"proceeds_seq": ev.Seq,
	}).Error
	return err == nil, err
}

// Events returns the recorded change events of an asset in Seq order
func (r *Repository) Events(ctx context.Context, assetID string) ([]domain.ChangeEvent, error) {
	var recs []EventRecord
	if err := r.db.WithContext(ctx).Where("asset_id = ?", assetID).Order("seq").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("failed to load events for %s: %w", assetID, err)
	}
	out := make([]domain.ChangeEvent, len(recs))
	for i, rec := range recs {
		out[i] = domain.ChangeEvent{
			ID:       rec.ID,
			AssetID:  rec.AssetID,
			Type:     domain.ChangeType(rec.Type),
			PhaseID:  rec.PhaseID,
			Delta:    rec.Delta,
			Price:    decimalPtr(rec.Price),
			Scenario: domain.ScenarioKind(rec.Scenario),
			Seq:      rec.Seq,
			At:       rec.At.UTC(),
		}
	}
	return out, nil
}

// SaveSnapshots stores the totals computed after the event with the given
// Seq. A snapshot already stored for a higher Seq is kept.
func (r *Repository) SaveSnapshots(ctx context.Context, seq uint64, snaps []domain.TotalsSnapshot) error {
	return r.Tx(ctx, func(tx *Repository) error {
		return tx.saveSnapshots(seq, snaps)
	})
}

func (r *Repository) saveSnapshots(seq uint64, snaps []domain.TotalsSnapshot) error {
	for _, s := range snaps {
		var existing []SnapshotRecord
		err := r.db.Where("asset_id = ? AND scenario = ?", s.AssetID, string(s.Scenario)).Limit(1).Find(&existing).Error
		if err != nil {
			return err
		}
		if len(existing) > 0 && existing[0].EventSeq > seq {
			continue
		}
		rec := snapshotRecord(s, seq)
		if err := r.db.Save(&rec).Error; err != nil {
			return fmt.Errorf("failed to save snapshot %s/%s: %w", s.AssetID, s.Scenario, err)
		}
	}
	return nil
}

// Snapshots returns the latest stored totals of an asset in display order
func (r *Repository) Snapshots(ctx context.Context, assetID string) ([]domain.TotalsSnapshot, error) {
	var recs []SnapshotRecord
	if err := r.db.WithContext(ctx).Where("asset_id = ?", assetID).Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("failed to load snapshots for %s: %w", assetID, err)
	}
	sort.Slice(recs, func(i, j int) bool {
		return scenarioOrder(recs[i].Scenario) < scenarioOrder(recs[j].Scenario)
	})
	out := make([]domain.TotalsSnapshot, len(recs))
	for i, rec := range recs {
		out[i] = rec.toDomain()
	}
	return out, nil
}

func (r *Repository) latestSeq(assetID string) (uint64, error) {
	var seq uint64
	err := r.db.Model(&EventRecord{}).
		Where("asset_id = ?", assetID).
		Select("COALESCE(MAX(seq), 0)").
		Scan(&seq).Error
	return seq, err
}

func (r *Repository) lockAsset(id string) (*AssetRecord, error) {
	var rec AssetRecord
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrAssetNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *Repository) deleteChildren(assetID string) error {
	for _, model := range []any{&PhaseRecord{}, &CostRecord{}, &ScenarioRecord{}} {
		if err := r.db.Where("asset_id = ?", assetID).Delete(model).Error; err != nil {
			return fmt.Errorf("failed to clear asset %s: %w", assetID, err)
		}
	}
	return nil
}

func (r *Repository) createChildren(rec AssetRecord) error {
	if len(rec.Phases) > 0 {
		if err := r.db.Create(&rec.Phases).Error; err != nil {
			return fmt.Errorf("failed to save phases: %w", err)
		}
	}
	if len(rec.Costs) > 0 {
		if err := r.db.Create(&rec.Costs).Error; err != nil {
			return fmt.Errorf("failed to save costs: %w", err)
		}
	}
	if len(rec.Scenarios) > 0 {
		if err := r.db.Create(&rec.Scenarios).Error; err != nil {
			return fmt.Errorf("failed to save scenarios: %w", err)
		}
	}
	return nil
}

func ordered(db *gorm.DB) *gorm.DB { return db.Order("position") }

func scenarioOrder(kind string) int {
	for i, k := range domain.ScenarioKinds {
		if string(k) == kind {
			return i
		}
	}
	return len(domain.ScenarioKinds)
}
