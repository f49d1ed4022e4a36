package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/membench/membench/internal/checkpoint"
)

var clearCmd = &cobra.Command{
	Use:   "clear <dataset>...",
	Short: "Delete checkpoints for the given datasets",
	Long: "Removes every per-question checkpoint for the named datasets so the\n" +
		"next run starts from scratch. Generated reports are left in place.",
	Args: cobra.MinimumNArgs(1),
	RunE: runClear,
}

func runClear(cmd *cobra.Command, args []string) error {
	ckpt, err := checkpointStore()
	if err != nil {
		return err
	}

	for _, name := range args {
		removed, err := ckpt.Clear(name)
		if err != nil {
			return fmt.Errorf("failed to clear %s checkpoints: %w", name, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d checkpoints for %s\n", removed, name)
	}
	return nil
}

func checkpointStore() (*checkpoint.Store, error) {
	return checkpoint.New(cfg.Paths.ResultsDir)
}
