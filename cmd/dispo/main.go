package main

import (
	"fmt"
	"os"
	"runtime/debug"
	"sort"
	"strings"
	"time"

	"github.com/rgehrsitz/dispo/internal/calculation"
	"github.com/rgehrsitz/dispo/internal/compare"
	"github.com/rgehrsitz/dispo/internal/config"
	"github.com/rgehrsitz/dispo/internal/domain"
	"github.com/rgehrsitz/dispo/internal/logger"
	"github.com/rgehrsitz/dispo/internal/output"
	"github.com/rgehrsitz/dispo/internal/transform"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// settings is loaded once per invocation by the root command
var settings *config.Settings

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "dispo %s (commit %s, built %s)\n", version, commit, date)
			if info := buildInfo(); info != "" {
				fmt.Fprintln(cmd.OutOrStdout(), info)
			}
		},
	}
}

func buildInfo() string {
	if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
		return bi.String()
	}
	return ""
}

var rootCmd = &cobra.Command{
	Use:   "dispo",
	Short: "Asset disposition scenario calculator",
	Long: `Models the hold period, carrying costs and returns of a distressed
real-estate asset under each disposition path (as-is sale, renovate and sell).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		envFile, _ := cmd.Flags().GetString("env-file")
		s, err := config.LoadSettings(envFile)
		if err != nil {
			return err
		}
		settings = s
		logger.Init(s.Env)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
}

// newEngine builds a calculation engine, logging through zap in debug mode
func newEngine(cmd *cobra.Command) *calculation.CalculationEngine {
	engine := calculation.NewCalculationEngine()
	if debugMode, _ := cmd.Flags().GetBool("debug"); debugMode {
		engine.SetLogger(logger.Named("calculation"))
		engine.Debug = true
	}
	return engine
}

// loadAsset parses and validates an asset file and applies the process settings
func loadAsset(path string) (*domain.Asset, error) {
	asset, err := config.NewInputParser().LoadFromFile(path)
	if err != nil {
		return nil, err
	}
	if settings != nil {
		asset = settings.ApplyTo(asset)
	}
	return asset, nil
}

// applySpecs applies --transform specs in order
func applySpecs(asset *domain.Asset, specs []string) (*domain.Asset, error) {
	if len(specs) == 0 {
		return asset, nil
	}
	transforms, err := transform.NewTransformRegistry().ParseTransformSpecs(specs)
	if err != nil {
		return nil, err
	}
	return transform.ApplyTransforms(asset, transforms)
}

func reportExtension(format string) string {
	switch format {
	case "json":
		return "json"
	case "html":
		return "html"
	case "csv", "detailed-csv", "cashflows":
		return "csv"
	}
	return "txt"
}

var calculateCmd = &cobra.Command{
	Use:   "calculate [asset-file]",
	Short: "Calculate every disposition scenario of an asset",
	Long: `Calculate timeline, costs, cash flows and return metrics for each scenario.

Examples:
  dispo calculate asset.yaml
  dispo calculate asset.yaml --format csv
  dispo calculate asset.yaml --transform adjust_phase:phase=foreclosure,step=2
  dispo calculate asset.yaml --format html --save`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asset, err := loadAsset(args[0])
		if err != nil {
			return err
		}
		specs, _ := cmd.Flags().GetStringArray("transform")
		if asset, err = applySpecs(asset, specs); err != nil {
			return err
		}

		results, err := newEngine(cmd).RunAll(asset)
		if err != nil {
			return err
		}

		outputFormat, _ := cmd.Flags().GetString("format")
		f := output.GetFormatterByName(outputFormat)
		if f == nil {
			return fmt.Errorf("unknown output format %q (valid: %s; aliases: %s)", outputFormat,
				strings.Join(output.AvailableFormatterNames(), ", "),
				strings.Join(output.AvailableFormatAliases(), ", "))
		}

		report := output.NewReport(asset, results, time.Now())
		if save, _ := cmd.Flags().GetBool("save"); save {
			path, err := output.WriteFormatted(f, report, reportExtension(f.Name()))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", path)
			return nil
		}

		data, err := f.Format(report)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate [asset-file]",
	Short: "Validate an asset file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := config.NewInputParser().LoadFromFile(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Asset file %s is valid\n", args[0])
		return nil
	},
}

var adjustCmd = &cobra.Command{
	Use:   "adjust [asset-file]",
	Short: "Apply phase overrides and pricing edits to an asset file",
	Long: `Apply transforms to an asset and show the effect on every scenario.

Transforms:
  adjust_phase:phase=<id>,step=<+1|-1>
  reset_overrides
  set_price:price=<amount|unknown>
  set_proceeds:scenario=<as_is|rehab>,amount=<amount|unknown>

Examples:
  dispo adjust asset.yaml -t adjust_phase:phase=foreclosure,step=1
  dispo adjust asset.yaml -t reset_overrides -o asset.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		specs, _ := cmd.Flags().GetStringArray("transform")
		if len(specs) == 0 {
			return fmt.Errorf("at least one --transform is required (available: %s)",
				strings.Join(transform.NewTransformRegistry().List(), ", "))
		}

		asset, err := loadAsset(args[0])
		if err != nil {
			return err
		}
		modified, err := applySpecs(asset, specs)
		if err != nil {
			return err
		}

		engine := newEngine(cmd)
		before, err := engine.RunAll(asset)
		if err != nil {
			return err
		}
		after, err := engine.RunAll(modified)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for i, r := range after {
			b := before[i]
			fmt.Fprintf(out, "%-22s %3s → %3s mo  net %s → %s\n", r.Name,
				domain.FormatMonths(b.Timeline.TotalMonths), domain.FormatMonths(r.Timeline.TotalMonths),
				output.FormatCurrency(b.Metrics.NetProfit), output.FormatCurrency(r.Metrics.NetProfit))
		}

		if path, _ := cmd.Flags().GetString("output"); path != "" {
			if err := config.NewInputParser().SaveToFile(path, modified); err != nil {
				return err
			}
			fmt.Fprintf(out, "Saved %s\n", path)
		}
		return nil
	},
}

var compareCmd = &cobra.Command{
	Use:   "compare [asset-file]",
	Short: "Compare disposition scenarios or timeline what-ifs",
	Long: `Compare one scenario against the others, or against built-in timeline templates.

Examples:
  dispo compare asset.yaml                           # as-is vs rehab
  dispo compare asset.yaml --with delay_foreclosure_3mo,quick_sale
  dispo compare asset.yaml --list-templates`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asset, err := loadAsset(args[0])
		if err != nil {
			return err
		}

		if listTemplates, _ := cmd.Flags().GetBool("list-templates"); listTemplates {
			fmt.Fprint(cmd.OutOrStdout(), transform.GetTemplateHelp(transform.CreateBuiltInTemplates(asset)))
			return nil
		}

		scenario, _ := cmd.Flags().GetString("scenario")
		templatesStr, _ := cmd.Flags().GetString("with")
		outputFormat, _ := cmd.Flags().GetString("format")

		compareEngine := compare.NewCompareEngine(newEngine(cmd))
		var comparisonSet *compare.ComparisonSet
		if templatesStr == "" {
			comparisonSet, err = compareEngine.CompareScenarios(asset, domain.ScenarioKind(scenario))
		} else {
			templateNames := transform.ParseTemplateList(templatesStr)
			if len(templateNames) == 0 {
				return fmt.Errorf("no valid templates specified in --with flag")
			}
			comparisonSet, err = compareEngine.Compare(asset, compare.CompareOptions{
				Scenario:  domain.ScenarioKind(scenario),
				Templates: templateNames,
			})
		}
		if err != nil {
			return fmt.Errorf("comparison failed: %w", err)
		}
		comparisonSet.ConfigPath = args[0]

		var text string
		switch strings.ToLower(outputFormat) {
		case "csv":
			text, err = (&compare.CSVFormatter{}).Format(comparisonSet)
		case "json":
			text, err = (&compare.JSONFormatter{Pretty: true}).Format(comparisonSet)
		case "table", "console", "":
			text = (&compare.TableFormatter{}).Format(comparisonSet)
		default:
			return fmt.Errorf("unknown output format: %s (valid: table, csv, json)", outputFormat)
		}
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), text)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("env-file", ".env", "Path to a .env file with DISPO_* settings")

	calculateCmd.Flags().StringP("format", "f", "console-lite", "Output format ("+strings.Join(formatNames(), ", ")+")")
	calculateCmd.Flags().StringArrayP("transform", "t", nil, "Transform spec applied before calculating (repeatable)")
	calculateCmd.Flags().Bool("save", false, "Write the report to a timestamped file instead of stdout")
	calculateCmd.Flags().Bool("debug", false, "Enable debug output for detailed calculations")

	adjustCmd.Flags().StringArrayP("transform", "t", nil, "Transform spec (repeatable, applied in order)")
	adjustCmd.Flags().StringP("output", "o", "", "Write the adjusted asset to this YAML file")
	adjustCmd.Flags().Bool("debug", false, "Enable debug output for detailed calculations")

	compareCmd.Flags().String("scenario", string(domain.ScenarioAsIs), "Base scenario (as_is or rehab)")
	compareCmd.Flags().String("with", "", "Comma-separated list of templates to compare")
	compareCmd.Flags().StringP("format", "f", "table", "Output format (table, csv, json)")
	compareCmd.Flags().Bool("list-templates", false, "List the templates available for the asset")
	compareCmd.Flags().Bool("debug", false, "Enable debug output for detailed calculations")

	rootCmd.AddCommand(calculateCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(adjustCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(breakEvenCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd())
}

func formatNames() []string {
	names := append(output.AvailableFormatterNames(), output.AvailableFormatAliases()...)
	sort.Strings(names)
	return names
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
