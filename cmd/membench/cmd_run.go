package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/membench/membench/internal/metrics"
	"github.com/membench/membench/internal/models"
	"github.com/membench/membench/internal/runner"
)

var runFlags struct {
	datasets []string
	fresh    bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the benchmark pipeline against the configured datasets",
	Long: "Runs ingest, answer and judge for each dataset, then writes report.md\n" +
		"and report.json to the results directory. Completed work found in the\n" +
		"checkpoint store is reused; pass --fresh to discard it first.",
	RunE: runRun,
}

func init() {
	f := runCmd.Flags()
	f.StringSliceVar(&runFlags.datasets, "dataset", nil, "Datasets to run (default: from config)")
	f.BoolVar(&runFlags.fresh, "fresh", false, "Clear checkpoints before running")
}

func runRun(cmd *cobra.Command, _ []string) error {
	if len(runFlags.datasets) > 0 {
		cfg.Datasets.Run = runFlags.datasets
	}

	metrics.Init()

	r, err := runner.New(cfg)
	if err != nil {
		return err
	}
	defer r.Close()

	if runFlags.fresh {
		for _, name := range cfg.Datasets.Run {
			removed, err := r.Checkpoints().Clear(name)
			if err != nil {
				return fmt.Errorf("failed to clear %s checkpoints: %w", name, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d checkpoints for %s\n", removed, name)
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	results, runErr := r.Run(ctx)
	if len(results) > 0 {
		printSummary(cmd, results)
	}
	if runErr != nil {
		return runErr
	}
	if len(results) == 0 {
		return fmt.Errorf("no datasets produced results")
	}
	return nil
}

func printSummary(cmd *cobra.Command, results []models.BenchmarkResult) {
	w := table.NewWriter()
	w.SetOutputMirror(cmd.OutOrStdout())
	w.SetStyle(table.StyleLight)
	w.AppendHeader(table.Row{"Dataset", "Accuracy", "Correct", "Questions"})
	for _, r := range results {
		w.AppendRow(table.Row{
			r.Dataset,
			fmt.Sprintf("%.1f%%", r.Accuracy),
			r.Correct,
			r.TotalQuestions,
		})
	}
	w.Render()
}
