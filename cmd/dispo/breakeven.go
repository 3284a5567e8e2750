package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/rgehrsitz/dispo/internal/breakeven"
	"github.com/rgehrsitz/dispo/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var breakEvenCmd = &cobra.Command{
	Use:   "break-even [asset-file]",
	Short: "Solve for the sale proceeds each scenario needs to meet a goal",
	Long: `Solve for the smallest sale proceeds that meet a return goal.

Goals:
  break_even     net profit of zero (default)
  target_profit  net profit of --target dollars
  target_moic    proceeds / gross cost of --target (e.g. 1.2)
  target_irr     IRR of --target (e.g. 0.15 for 15%)

Examples:
  dispo break-even asset.yaml
  dispo break-even asset.yaml --goal target_irr --target 0.15 --scenario rehab`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asset, err := loadAsset(args[0])
		if err != nil {
			return err
		}

		goalStr, _ := cmd.Flags().GetString("goal")
		goal, err := breakeven.ParseGoal(goalStr)
		if err != nil {
			return err
		}

		var target decimal.Decimal
		if targetStr, _ := cmd.Flags().GetString("target"); targetStr != "" {
			target, err = decimal.NewFromString(targetStr)
			if err != nil {
				return fmt.Errorf("invalid --target %q: %w", targetStr, err)
			}
		} else if goal != breakeven.GoalBreakEven {
			return fmt.Errorf("--target is required for goal %s", goal)
		}

		solver := breakeven.NewDefaultSolver(newEngine(cmd))
		scenario, _ := cmd.Flags().GetString("scenario")
		outputFormat, _ := cmd.Flags().GetString("format")
		ctx := context.Background()
		out := cmd.OutOrStdout()

		if scenario == "" {
			multi, err := solver.SolveScenarios(ctx, asset, goal, target)
			if err != nil {
				return err
			}
			switch strings.ToLower(outputFormat) {
			case "json":
				text, err := (&breakeven.JSONFormatter{Pretty: true}).FormatMulti(multi)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, text)
			case "table", "console", "":
				fmt.Fprint(out, (&breakeven.TableFormatter{}).FormatMulti(multi))
			default:
				return fmt.Errorf("unknown output format: %s (valid: table, json)", outputFormat)
			}
			return nil
		}

		result, err := solver.Solve(ctx, breakeven.Request{
			Asset:    asset,
			Scenario: domain.ScenarioKind(scenario),
			Goal:     goal,
			Target:   target,
		})
		if err != nil {
			return err
		}
		switch strings.ToLower(outputFormat) {
		case "json":
			text, err := (&breakeven.JSONFormatter{Pretty: true}).Format(result)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, text)
		case "table", "console", "":
			fmt.Fprint(out, (&breakeven.TableFormatter{}).Format(result))
		default:
			return fmt.Errorf("unknown output format: %s (valid: table, json)", outputFormat)
		}
		return nil
	},
}

func init() {
	breakEvenCmd.Flags().String("goal", string(breakeven.GoalBreakEven), "Goal (break_even, target_profit, target_moic, target_irr)")
	breakEvenCmd.Flags().String("target", "", "Goal target (dollars, multiple or rate)")
	breakEvenCmd.Flags().String("scenario", "", "Solve one scenario only (as_is or rehab); default is every scenario")
	breakEvenCmd.Flags().StringP("format", "f", "table", "Output format (table, json)")
	breakEvenCmd.Flags().Bool("debug", false, "Enable debug output for detailed calculations")
}
