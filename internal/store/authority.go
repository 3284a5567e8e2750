package store

import (
	"context"
	"fmt"
	"time"

	"github.com/rgehrsitz/dispo/internal/calculation"
	"github.com/rgehrsitz/dispo/internal/domain"
	"github.com/shopspring/decimal"
)

// Authority is the authoritative computation path. Each persisted event is
// applied to the stored asset, every scenario is recomputed from the stored
// copy and the totals are saved as snapshots. It satisfies session.Persister.
type Authority struct {
	repo   *Repository
	engine *calculation.CalculationEngine
	logger calculation.Logger
}

// NewAuthority creates an authority over repo; a nil engine gets the defaults
func NewAuthority(repo *Repository, engine *calculation.CalculationEngine) *Authority {
	if engine == nil {
		engine = calculation.NewCalculationEngine()
	}
	return &Authority{repo: repo, engine: engine, logger: calculation.NopLogger{}}
}

// SetLogger replaces the logger; nil restores the no-op logger
func (a *Authority) SetLogger(l calculation.Logger) {
	if l == nil {
		l = calculation.NopLogger{}
	}
	a.logger = l
}

// Persist applies ev and returns the stored asset as it stands afterwards.
// The asset row stays locked until the snapshots are written so concurrent
// events for one asset are serialized.
func (a *Authority) Persist(ctx context.Context, ev domain.ChangeEvent) (*domain.Asset, error) {
	var stored *domain.Asset
	err := a.repo.Tx(ctx, func(tx *Repository) error {
		applied, err := tx.applyEvent(ev)
		if err != nil {
			return err
		}
		if !applied {
			a.logger.Debugf("event %s superseded or already seen", ev)
		}

		asset, err := tx.LoadAsset(ctx, ev.AssetID)
		if err != nil {
			return err
		}
		if _, err := tx.snapshot(asset, a.engine, a.now()); err != nil {
			return err
		}
		stored = asset
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to persist %s: %w", ev, err)
	}
	return stored, nil
}

// Recompute runs every scenario on the stored asset and refreshes its
// snapshots without applying an event
func (a *Authority) Recompute(ctx context.Context, assetID string) ([]*domain.ScenarioResult, error) {
	var results []*domain.ScenarioResult
	err := a.repo.Tx(ctx, func(tx *Repository) error {
		if _, err := tx.lockAsset(assetID); err != nil {
			return err
		}
		asset, err := tx.LoadAsset(ctx, assetID)
		if err != nil {
			return err
		}
		results, err = tx.snapshot(asset, a.engine, a.now())
		return err
	})
	return results, err
}

// Mismatch is one figure where a computation disagrees with the stored snapshot
type Mismatch struct {
	Scenario domain.ScenarioKind
	Field    string
	Stored   string
	Computed string
}

func (m Mismatch) String() string {
	return fmt.Sprintf("%s %s: stored %s, computed %s", m.Scenario, m.Field, m.Stored, m.Computed)
}

// Verify compares results against the stored snapshots of assetID, to the cent
func (a *Authority) Verify(ctx context.Context, assetID string, results []*domain.ScenarioResult) ([]Mismatch, error) {
	stored, err := a.repo.Snapshots(ctx, assetID)
	if err != nil {
		return nil, err
	}
	byKind := make(map[domain.ScenarioKind]domain.TotalsSnapshot, len(stored))
	for _, s := range stored {
		byKind[s.Scenario] = s
	}

	var out []Mismatch
	for _, r := range results {
		s, ok := byKind[r.Scenario]
		if !ok {
			out = append(out, Mismatch{Scenario: r.Scenario, Field: "snapshot", Stored: "missing", Computed: "present"})
			continue
		}
		out = append(out, CompareSnapshots(s, r.Snapshot(assetID, s.ComputedAt))...)
	}
	return out, nil
}

// CompareSnapshots lists every figure on which two snapshots differ
func CompareSnapshots(stored, computed domain.TotalsSnapshot) []Mismatch {
	var out []Mismatch
	check := func(field, s, c string) {
		if s != c {
			out = append(out, Mismatch{Scenario: stored.Scenario, Field: field, Stored: s, Computed: c})
		}
	}
	check("total_months", domain.FormatMonths(stored.TotalMonths), domain.FormatMonths(computed.TotalMonths))
	check("total_cost", domain.FormatAmount(stored.TotalCost), domain.FormatAmount(computed.TotalCost))
	check("net_profit", domain.FormatAmount(stored.NetProfit), domain.FormatAmount(computed.NetProfit))
	check("moic", exact(stored.MOIC), exact(computed.MOIC))
	check("irr", exact(stored.IRR), exact(computed.IRR))
	check("npv", domain.FormatAmount(stored.NPV), domain.FormatAmount(computed.NPV))
	return out
}

// snapshot computes and stores totals tagged with the newest event Seq seen
// for the asset. Callers hold the asset lock, so the last writer has seen
// every event and its snapshot wins.
func (r *Repository) snapshot(asset *domain.Asset, engine *calculation.CalculationEngine, at time.Time) ([]*domain.ScenarioResult, error) {
	results, err := engine.RunAll(asset)
	if err != nil {
		return nil, err
	}
	seq, err := r.latestSeq(asset.ID)
	if err != nil {
		return nil, err
	}
	return results, r.saveSnapshots(seq, snapshots(asset.ID, results, at))
}

func snapshots(assetID string, results []*domain.ScenarioResult, at time.Time) []domain.TotalsSnapshot {
	out := make([]domain.TotalsSnapshot, len(results))
	for i, r := range results {
		out[i] = r.Snapshot(assetID, at)
	}
	return out
}

func (a *Authority) now() time.Time {
	if a.engine.Clock != nil {
		return a.engine.Clock().UTC()
	}
	return time.Now().UTC()
}

func exact(d *decimal.Decimal) string {
	if d == nil {
		return "—"
	}
	return d.String()
}
