package integration

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rgehrsitz/dispo/internal/calculation"
	"github.com/rgehrsitz/dispo/internal/config"
	"github.com/rgehrsitz/dispo/internal/domain"
	"github.com/rgehrsitz/dispo/internal/events"
	"github.com/rgehrsitz/dispo/internal/output"
	"github.com/rgehrsitz/dispo/internal/session"
	"github.com/rgehrsitz/dispo/internal/store"
)

const stream = "dispo:test"

// loadFixture round-trips the sample asset through a YAML file
func loadFixture(t *testing.T) *domain.Asset {
	t.Helper()
	path := filepath.Join(t.TempDir(), "asset.yaml")
	parser := config.NewInputParser()
	require.NoError(t, parser.SaveToFile(path, domain.SampleAsset()))
	asset, err := parser.LoadFromFile(path)
	require.NoError(t, err)
	return asset
}

func newStore(t *testing.T, asset *domain.Asset) (*store.Repository, *store.Authority) {
	t.Helper()
	db, err := store.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	require.NoError(t, store.Migrate(db))

	repo := store.NewRepository(db)
	require.NoError(t, repo.SyncBase(context.Background(), asset))
	return repo, store.NewAuthority(repo, calculation.NewCalculationEngine())
}

func drain(s *session.Session) []session.Notice {
	var out []session.Notice
	for {
		select {
		case n := <-s.Notices():
			out = append(out, n)
		default:
			return out
		}
	}
}

// TestPipeline_SessionStoreAndStreamAgree drives one session whose edits fan
// out to the store and the change stream, then rebuilds a second store from
// the stream alone. All three must agree to the cent.
func TestPipeline_SessionStoreAndStreamAgree(t *testing.T) {
	ctx := context.Background()
	asset := loadFixture(t)

	mr := miniredis.RunT(t)
	rdb, err := events.OpenRedis(mr.Addr(), 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	_, primary := newStore(t, asset)
	s, err := session.New(asset, session.Options{
		Persister:      session.Chain(primary, events.NewStreamPublisher(rdb, stream)),
		PersistTimeout: 5 * time.Second,
	})
	require.NoError(t, err)

	require.NoError(t, s.AdjustPhase("foreclosure", 1))
	require.NoError(t, s.AdjustPhase("foreclosure", 1))
	require.NoError(t, s.AdjustPhase("marketing", -1))
	price := decimal.RequireFromString("139900")
	require.NoError(t, s.SetAcquisitionPrice(&price))
	proceeds := decimal.RequireFromString("258500")
	require.NoError(t, s.SetProceeds(domain.ScenarioRehab, &proceeds))
	s.Wait()

	notices := drain(s)
	assert.Len(t, notices, 5)
	for _, n := range notices {
		assert.NoError(t, n.Err, n.Event.String())
	}

	results := s.Results()
	asIs, _ := s.Result(domain.ScenarioAsIs)
	require.NotNil(t, asIs.Timeline.TotalMonths)
	assert.Equal(t, 12, *asIs.Timeline.TotalMonths)

	mismatches, err := primary.Verify(ctx, asset.ID, results)
	require.NoError(t, err)
	assert.Empty(t, mismatches, "primary store")

	// a second store fed only by the stream
	replicaRepo, replica := newStore(t, asset)
	_, n, err := events.NewStreamReader(rdb, stream).Replay(ctx, "0", func(ctx context.Context, ev domain.ChangeEvent) error {
		_, err := replica.Persist(ctx, ev)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	mismatches, err = replica.Verify(ctx, asset.ID, results)
	require.NoError(t, err)
	assert.Empty(t, mismatches, "replica store")

	stored, err := replicaRepo.LoadAsset(ctx, asset.ID)
	require.NoError(t, err)
	assert.True(t, stored.AcquisitionPrice.Equal(price))
	foreclosure, _, err := stored.Phase("foreclosure")
	require.NoError(t, err)
	assert.Equal(t, 2, foreclosure.OverrideMonths)

	report := output.NewReport(stored, results, time.Now())
	data, err := output.GetFormatterByName("console-lite").Format(report)
	require.NoError(t, err)
	assert.Contains(t, string(data), "As-is sale")
}

// TestPipeline_StoreDownKeepsLocalState checks that a failing persister
// never rolls back what the user sees
func TestPipeline_StoreDownKeepsLocalState(t *testing.T) {
	asset := loadFixture(t)

	mr := miniredis.RunT(t)
	rdb, err := events.OpenRedis(mr.Addr(), 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })
	mr.Close()

	s, err := session.New(asset, session.Options{
		Persister:      events.NewStreamPublisher(rdb, stream),
		PersistTimeout: time.Second,
	})
	require.NoError(t, err)

	require.NoError(t, s.AdjustPhase("foreclosure", 1))
	s.Wait()

	notices := drain(s)
	require.Len(t, notices, 1)
	assert.Error(t, notices[0].Err)

	asIs, _ := s.Result(domain.ScenarioAsIs)
	assert.Equal(t, 12, *asIs.Timeline.TotalMonths)
}
