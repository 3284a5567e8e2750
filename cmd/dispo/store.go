package main

import (
	"context"
	"fmt"

	"github.com/rgehrsitz/dispo/internal/domain"
	"github.com/rgehrsitz/dispo/internal/events"
	"github.com/rgehrsitz/dispo/internal/logger"
	"github.com/rgehrsitz/dispo/internal/output"
	"github.com/rgehrsitz/dispo/internal/store"
	"github.com/spf13/cobra"
)

// openAuthority connects to the configured database and migrates it
func openAuthority(cmd *cobra.Command) (*store.Repository, *store.Authority, func(), error) {
	db, err := store.Open(settings.DBDriver, settings.DBDSN)
	if err != nil {
		return nil, nil, nil, err
	}
	closeDB := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	if err := store.Migrate(db); err != nil {
		closeDB()
		return nil, nil, nil, err
	}

	repo := store.NewRepository(db)
	authority := store.NewAuthority(repo, newEngine(cmd))
	authority.SetLogger(logger.Named("store"))
	return repo, authority, closeDB, nil
}

func printTotals(cmd *cobra.Command, results []*domain.ScenarioResult) {
	for _, r := range results {
		fmt.Fprintf(cmd.OutOrStdout(), "  %-22s %3s mo  cost %s  net %s  MOIC %s  IRR %s\n", r.Name,
			domain.FormatMonths(r.Timeline.TotalMonths),
			output.FormatCurrency(r.Costs.Total),
			output.FormatCurrency(r.Metrics.NetProfit),
			domain.FormatRate(r.Metrics.MOIC),
			domain.FormatPercent(r.Metrics.IRR))
	}
}

var syncCmd = &cobra.Command{
	Use:   "sync [asset-file]",
	Short: "Load base figures into the store and replay queued edits",
	Long: `Store the base figures of an asset file (durations, rates, amounts,
valuation), keeping edits already recorded for the asset. When
DISPO_REDIS_ADDR is set, change events on the stream are applied afterwards.
The scenario totals are then recomputed and snapshotted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asset, err := loadAsset(args[0])
		if err != nil {
			return err
		}

		repo, authority, closeDB, err := openAuthority(cmd)
		if err != nil {
			return err
		}
		defer closeDB()

		ctx := context.Background()
		if err := repo.SyncBase(ctx, asset); err != nil {
			return err
		}

		if settings.RedisAddr != "" {
			rdb, err := events.OpenRedis(settings.RedisAddr, settings.RedisDB)
			if err != nil {
				return err
			}
			defer rdb.Close()

			after, _ := cmd.Flags().GetString("after")
			reader := events.NewStreamReader(rdb, settings.RedisStream)
			last, n, err := reader.Replay(ctx, after, func(ctx context.Context, ev domain.ChangeEvent) error {
				if ev.AssetID != asset.ID {
					return nil
				}
				_, err := authority.Persist(ctx, ev)
				return err
			})
			if err != nil {
				return fmt.Errorf("replay stopped at %s: %w", last, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Replayed %d stream entries (last %s)\n", n, last)
		}

		results, err := authority.Recompute(ctx, asset.ID)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Synced %s\n", asset.ID)
		printTotals(cmd, results)
		return nil
	},
}

var verifyCmd = &cobra.Command{
	Use:   "verify [asset-id]",
	Short: "Recompute a stored asset and check its snapshots to the cent",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, authority, closeDB, err := openAuthority(cmd)
		if err != nil {
			return err
		}
		defer closeDB()

		ctx := context.Background()
		asset, err := repo.LoadAsset(ctx, args[0])
		if err != nil {
			return err
		}
		results, err := newEngine(cmd).RunAll(asset)
		if err != nil {
			return err
		}

		mismatches, err := authority.Verify(ctx, asset.ID, results)
		if err != nil {
			return err
		}
		if len(mismatches) > 0 {
			for _, m := range mismatches {
				fmt.Fprintf(cmd.OutOrStdout(), "✗ %s\n", m)
			}
			return fmt.Errorf("%d figure(s) of %s disagree with the stored snapshots", len(mismatches), asset.ID)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ %s matches its stored snapshots\n", asset.ID)
		printTotals(cmd, results)
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history [asset-id]",
	Short: "List the change events recorded for a stored asset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, _, closeDB, err := openAuthority(cmd)
		if err != nil {
			return err
		}
		defer closeDB()

		evs, err := repo.Events(context.Background(), args[0])
		if err != nil {
			return err
		}
		for _, ev := range evs {
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", ev.At.Format("2006-01-02 15:04:05"), ev)
		}
		if len(evs) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "No events recorded for %s\n", args[0])
		}
		return nil
	},
}

func init() {
	syncCmd.Flags().String("after", "0", "Replay stream entries after this id")
	syncCmd.Flags().Bool("debug", false, "Enable debug output for detailed calculations")
	verifyCmd.Flags().Bool("debug", false, "Enable debug output for detailed calculations")
	historyCmd.Flags().Bool("debug", false, "Enable debug output for detailed calculations")
}
