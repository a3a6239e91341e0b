package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/k0kubun/pp/v3"
	"github.com/spf13/cobra"

	"budgetu/pkg/config"
	"budgetu/pkg/export"
	"budgetu/pkg/filter"
	"budgetu/pkg/job"
	"budgetu/pkg/pipeline"
)

var (
	cliFilters filters
	cfgFile    string
	debugDump  bool
)

var rootCmd = &cobra.Command{
	Use:   "budgetu",
	Short: "Budget export analysis from the command line",
	RunE: func(cmd *cobra.Command, _ []string) error {
		// Show help when no subcommand is provided
		return cmd.Help()
	},
}

var summarizeCmd = &cobra.Command{
	Use:   "summarize [flags] <file>",
	Short: "Print KPIs and groupings for a budget export",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()
		processor, err := newProcessor(cmd, logger)
		if err != nil {
			return err
		}

		result, err := processor.ProcessFile(args[0], cliFilters.toOptions())
		if errors.Is(err, filter.ErrNoRows) {
			fmt.Println("Warning:", err)
			return nil
		}
		if err != nil {
			return err
		}

		if debugDump {
			pp.Println(result.Summary)
		}

		printSummary(result)
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export [flags] <file>",
	Short: "Write the filtered rows as CSV (stdout by default)",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()
		processor, err := newProcessor(cmd, logger)
		if err != nil {
			return err
		}

		result, err := processor.ProcessFile(args[0], cliFilters.toOptions())
		if errors.Is(err, filter.ErrNoRows) {
			fmt.Println("Warning:", err)
			return nil
		}
		if err != nil {
			return err
		}

		data := export.CSV(result.Table, result.Filtered)

		out, _ := cmd.Flags().GetString("output")
		if out == "" {
			fmt.Print(string(data))
			return nil
		}
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		logger.Info("wrote filtered export", "file", out, "rows", len(result.Filtered))
		return nil
	},
	Args: cobra.ExactArgs(1),
}

var reportCmd = &cobra.Command{
	Use:   "report <job.yaml>",
	Short: "Run every report in a YAML job manifest",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()
		processor, err := newProcessor(cmd, logger)
		if err != nil {
			return err
		}

		j, err := job.Load(args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Running jobs from %s\n", args[0])
		j.Print()

		for _, r := range j.Reports {
			result, err := processor.ProcessFile(r.File, r.Options())
			if errors.Is(err, filter.ErrNoRows) {
				logger.Warn("report matched no rows", "file", r.File)
				continue
			}
			if err != nil {
				return fmt.Errorf("report %s: %w", r.File, err)
			}

			printSummary(result)
			if r.Output != "" {
				data := export.CSV(result.Table, result.Filtered)
				if err := os.WriteFile(r.Output, data, 0o644); err != nil {
					return fmt.Errorf("report %s: failed to write output: %w", r.File, err)
				}
				logger.Info("wrote filtered export", "file", r.Output, "rows", len(result.Filtered))
			}
		}
		return nil
	},
}

func newLogger() *log.Logger {
	opts := log.Options{
		ReportCaller:    true,
		ReportTimestamp: true,
		Prefix:          "budgetu",
	}
	if debugDump {
		opts.Level = log.DebugLevel
	}
	return log.NewWithOptions(os.Stderr, opts)
}

func newProcessor(cmd *cobra.Command, logger *log.Logger) (*pipeline.Processor, error) {
	cfg, err := config.Build(cfgFile, cmd.Flags())
	if err != nil {
		return nil, err
	}
	return pipeline.NewProcessor(cfg, logger), nil
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Config file (default is config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debugDump, "debug", false, "Verbose logging plus a dump of the computed summary")

	// Column mapping and filter flags (global)
	rootCmd.PersistentFlags().StringVar(&cliFilters.dateCol, "date-col", "", "Column holding the transaction date")
	rootCmd.PersistentFlags().StringVar(&cliFilters.amountCol, "amount-col", "", "Column holding the amount")
	rootCmd.PersistentFlags().StringVar(&cliFilters.categoryCol, "category-col", "", "Column holding the category, or \"(none)\"")
	rootCmd.PersistentFlags().StringVar(&cliFilters.start, "start", "", "Range start (YYYY-MM-DD, requires --end)")
	rootCmd.PersistentFlags().StringVar(&cliFilters.end, "end", "", "Range end (YYYY-MM-DD, requires --start)")
	rootCmd.PersistentFlags().StringSliceVar(&cliFilters.categories, "category", nil, "Allowed category (repeatable, default all)")

	// Flags specific to the export subcommand
	exportCmd.Flags().StringP("output", "o", "", "Output file (default stdout)")

	rootCmd.AddCommand(summarizeCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(reportCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
