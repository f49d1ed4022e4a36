package main

import (
	"github.com/spf13/cobra"

	"github.com/membench/membench/internal/runner"
)

var reportFlags struct {
	datasets []string
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Regenerate the report from existing checkpoints",
	Long: "Rebuilds per-dataset results from the checkpoint store and rewrites\n" +
		"report.md and report.json. Makes no network calls and touches no\n" +
		"checkpoints.",
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringSliceVar(&reportFlags.datasets, "dataset", nil, "Datasets to include (default: from config)")
}

func runReport(cmd *cobra.Command, _ []string) error {
	if len(reportFlags.datasets) > 0 {
		cfg.Datasets.Run = reportFlags.datasets
	}

	ckpt, err := checkpointStore()
	if err != nil {
		return err
	}

	// Report-only mode never ingests, answers or judges; no network clients.
	r := runner.NewWithDeps(cfg, nil, nil, nil, ckpt, nil)
	results, err := r.ReportOnly()
	if err != nil {
		return err
	}
	printSummary(cmd, results)
	return nil
}
