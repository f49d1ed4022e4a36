package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/membench/membench/pkg/config"
	"github.com/membench/membench/pkg/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	dataDir    string
	resultsDir string
	verbose    bool
}

// cfg is loaded once in the root PersistentPreRunE and shared by all
// subcommands.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "membench",
	Short: "Memory benchmark harness for conversational QA services",
	Long: "Membench evaluates a memory-augmented QA service against the LoCoMo,\n" +
		"LongMemEval and TOFU benchmarks, checkpointing every step so interrupted\n" +
		"runs resume without re-paying LLM cost.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if rootFlags.dataDir != "" {
			cfg.Paths.DataDir = rootFlags.dataDir
		}
		if rootFlags.resultsDir != "" {
			cfg.Paths.ResultsDir = rootFlags.resultsDir
		}
		level := cfg.Logging.Level
		if rootFlags.verbose {
			level = "debug"
		}

		if err := logger.Init(level, cfg.Logging.Format, cfg.Logging.OutputPath); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(*cobra.Command, []string) {
		logger.Sync()
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&rootFlags.dataDir, "data-dir", "", "Override dataset directory")
	pf.StringVar(&rootFlags.resultsDir, "results-dir", "", "Override results directory")
	pf.BoolVarP(&rootFlags.verbose, "verbose", "v", false, "Debug logging")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.Version = version
}
