// Package session is the instant side of the model: it applies user edits to
// an in-memory asset, recomputes every scenario synchronously and hands each
// edit to the authoritative store in the background.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rgehrsitz/dispo/internal/calculation"
	"github.com/rgehrsitz/dispo/internal/domain"
	"github.com/rgehrsitz/dispo/internal/transform"
	"github.com/shopspring/decimal"
)

// DefaultPersistTimeout bounds a single background persist call
const DefaultPersistTimeout = 5 * time.Second

// Notice reports the outcome of a background persist. Err is nil on success.
type Notice struct {
	Event domain.ChangeEvent
	Err   error
}

// Options configures a Session
type Options struct {
	Engine         *calculation.CalculationEngine
	Persister      Persister
	Logger         calculation.Logger
	PersistTimeout time.Duration
	Clock          func() time.Time
}

// Session owns the working copy of one asset. All methods are safe for
// concurrent use; edits are serialized and each one swaps in a whole new
// asset value and result set.
type Session struct {
	engine    *calculation.CalculationEngine
	persister Persister
	logger    calculation.Logger
	timeout   time.Duration
	clock     func() time.Time

	mu      sync.RWMutex
	asset   *domain.Asset
	results map[domain.ScenarioKind]*domain.ScenarioResult
	pending *domain.Asset // authoritative base figures not yet reconciled
	heard   uint64        // seq of the newest event the store has answered
	seq     uint64

	notices chan Notice
	wg      sync.WaitGroup
}

// New starts a session on a copy of asset and computes every scenario
func New(asset *domain.Asset, opts Options) (*Session, error) {
	if asset == nil {
		return nil, fmt.Errorf("asset is required")
	}

	s := &Session{
		engine:    opts.Engine,
		persister: opts.Persister,
		logger:    opts.Logger,
		timeout:   opts.PersistTimeout,
		clock:     opts.Clock,
		notices:   make(chan Notice, 32),
	}
	if s.engine == nil {
		s.engine = calculation.NewCalculationEngine()
	}
	if s.persister == nil {
		s.persister = Discard
	}
	if s.logger == nil {
		s.logger = calculation.NopLogger{}
	}
	if s.timeout <= 0 {
		s.timeout = DefaultPersistTimeout
	}
	if s.clock == nil {
		s.clock = time.Now
	}
	s.seq = uint64(s.clock().UnixMicro())

	working := asset.DeepCopy()
	results, err := s.computeAll(working, nil, calculation.Change{})
	if err != nil {
		return nil, err
	}
	s.asset = working
	s.results = results
	return s, nil
}

// Asset returns a copy of the current working asset
func (s *Session) Asset() *domain.Asset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.asset.DeepCopy()
}

// Result returns the current result of one scenario
func (s *Session) Result(kind domain.ScenarioKind) (*domain.ScenarioResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.results[kind]
	return r, ok
}

// Results returns the current results in display order
func (s *Session) Results() []*domain.ScenarioResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.ScenarioResult, 0, len(s.results))
	for _, kind := range domain.ScenarioKinds {
		if r, ok := s.results[kind]; ok {
			out = append(out, r)
		}
	}
	return out
}

// Notices delivers persistence outcomes. Sends never block: when nobody is
// reading, notices are dropped after being logged.
func (s *Session) Notices() <-chan Notice {
	return s.notices
}

// Wait blocks until every in-flight persist has finished
func (s *Session) Wait() {
	s.wg.Wait()
}

// AdjustPhase moves a phase's override by one month (+1 or -1)
func (s *Session) AdjustPhase(phaseID string, step int) error {
	return s.apply(&transform.AdjustPhase{PhaseID: phaseID, Step: step}, func(prev, next *domain.Asset) (calculation.Change, *domain.ChangeEvent) {
		before, _, _ := prev.Phase(phaseID)
		after, _, _ := next.Phase(phaseID)
		if before.OverrideMonths == after.OverrideMonths {
			return calculation.Change{}, nil
		}
		ev := s.newEvent(next.ID, domain.ChangePhaseOverride)
		ev.PhaseID = phaseID
		ev.Delta = after.OverrideMonths
		return calculation.Change{PhaseID: phaseID}, &ev
	})
}

// ResetOverrides clears every phase override
func (s *Session) ResetOverrides() error {
	return s.apply(&transform.ResetOverrides{}, func(_, next *domain.Asset) (calculation.Change, *domain.ChangeEvent) {
		ev := s.newEvent(next.ID, domain.ChangeResetOverrides)
		return calculation.Change{}, &ev
	})
}

// SetAcquisitionPrice replaces the acquisition price; nil marks it unknown
func (s *Session) SetAcquisitionPrice(price *decimal.Decimal) error {
	return s.apply(&transform.SetAcquisitionPrice{Price: price}, func(_, next *domain.Asset) (calculation.Change, *domain.ChangeEvent) {
		ev := s.newEvent(next.ID, domain.ChangeAcquisitionPrice)
		ev.Price = next.AcquisitionPrice
		return calculation.Change{CostsUnchanged: true}, &ev
	})
}

// SetProceeds replaces one scenario's terminal proceeds; nil marks them unknown
func (s *Session) SetProceeds(kind domain.ScenarioKind, amount *decimal.Decimal) error {
	return s.apply(&transform.SetProceeds{Scenario: kind, Amount: amount}, func(_, next *domain.Asset) (calculation.Change, *domain.ChangeEvent) {
		def, _ := next.Scenario(kind)
		ev := s.newEvent(next.ID, domain.ChangeProceeds)
		ev.Scenario = kind
		ev.Price = def.Proceeds
		return calculation.Change{CostsUnchanged: true}, &ev
	})
}

// Refresh replaces the working asset with the store's copy and recomputes
// everything from scratch. Pending reconciles are dropped. Edits are held
// off until the swap is done, so every later edit builds on the store's copy.
func (s *Session) Refresh(asset *domain.Asset) error {
	if asset == nil {
		return fmt.Errorf("asset is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	working := asset.DeepCopy()
	results, err := s.computeAll(working, nil, calculation.Change{})
	if err != nil {
		return err
	}
	s.asset = working
	s.results = results
	s.pending = nil
	return nil
}

// ApplyPending reconciles authoritative base figures received since the last
// edit, without waiting for the next edit. It reports whether anything was pending.
func (s *Session) ApplyPending() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending == nil {
		return false, nil
	}
	working := reconcile(s.asset, s.pending)
	results, err := s.computeAll(working, nil, calculation.Change{})
	if err != nil {
		return true, err
	}
	s.asset = working
	s.results = results
	s.pending = nil
	return true, nil
}

// eventFunc inspects a transform's outcome and returns the recompute hint and
// the event to persist; a nil event means the edit changed nothing.
type eventFunc func(prev, next *domain.Asset) (calculation.Change, *domain.ChangeEvent)

func (s *Session) apply(t transform.AssetTransform, describe eventFunc) error {
	s.mu.Lock()

	base := s.asset
	prevResults := s.results
	reconciled := false
	if s.pending != nil {
		base = reconcile(s.asset, s.pending)
		reconciled = true
	}

	next, err := transform.ApplyTransforms(base, []transform.AssetTransform{t})
	if err != nil {
		s.mu.Unlock()
		return err
	}

	change, ev := describe(base, next)
	if ev == nil && !reconciled {
		s.mu.Unlock()
		return nil
	}
	if reconciled {
		// base figures may have moved under every cost line
		prevResults = nil
	}

	results, err := s.computeAll(next, prevResults, change)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.asset = next
	s.results = results
	s.pending = nil
	s.mu.Unlock()

	if ev != nil {
		s.dispatch(*ev)
	}
	return nil
}

func (s *Session) computeAll(asset *domain.Asset, prev map[domain.ScenarioKind]*domain.ScenarioResult, change calculation.Change) (map[domain.ScenarioKind]*domain.ScenarioResult, error) {
	results := make(map[domain.ScenarioKind]*domain.ScenarioResult, len(asset.Scenarios))
	for _, def := range asset.Scenarios {
		r, err := s.engine.Recompute(asset, def.Kind, prev[def.Kind], change)
		if err != nil {
			return nil, fmt.Errorf("failed to recompute scenario %s: %w", def.Kind, err)
		}
		results[def.Kind] = r
	}
	return results, nil
}

// newEvent must be called with s.mu held
func (s *Session) newEvent(assetID string, typ domain.ChangeType) domain.ChangeEvent {
	s.seq++
	return domain.NewChangeEvent(assetID, typ, s.seq, s.clock().UTC())
}

func (s *Session) dispatch(ev domain.ChangeEvent) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		authoritative, err := s.persister.Persist(ctx, ev)
		if err != nil {
			s.logger.Warnf("persist failed for %s: %v", ev, err)
			s.notify(Notice{Event: ev, Err: err})
			return
		}

		if authoritative != nil {
			s.mu.Lock()
			if ev.Seq > s.heard {
				s.heard = ev.Seq
				s.pending = authoritative.DeepCopy()
			}
			s.mu.Unlock()
		}
		s.logger.Debugf("persisted %s", ev)
		s.notify(Notice{Event: ev})
	}()
}

func (s *Session) notify(n Notice) {
	select {
	case s.notices <- n:
	default:
		s.logger.Warnf("notice dropped for %s", n.Event)
	}
}

// reconcile takes the base figures and assumptions from authoritative and
// keeps the session's own user-editable fields: overrides, price and proceeds
func reconcile(local, authoritative *domain.Asset) *domain.Asset {
	out := local.DeepCopy()
	auth := authoritative.DeepCopy()

	if auth.AcquisitionDate != nil {
		out.AcquisitionDate = auth.AcquisitionDate
	}
	out.Valuation = auth.Valuation
	out.Assumptions = auth.Assumptions

	for i := range out.Phases {
		if p, _, err := auth.Phase(out.Phases[i].ID); err == nil {
			out.Phases[i].BaseMonths = p.BaseMonths
		}
	}

	for i := range out.Costs {
		for _, c := range auth.Costs {
			if c.ID == out.Costs[i].ID {
				out.Costs[i].MonthlyRate = c.MonthlyRate
				out.Costs[i].Amount = c.Amount
				break
			}
		}
	}

	return out
}
