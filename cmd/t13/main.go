package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/danielpatrickdp/t13-mirror/internal/config"
	"github.com/danielpatrickdp/t13-mirror/internal/logging"
)

var (
	// Global flags
	configPath string
	verbose    bool
	jsonLog    bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "t13",
	Short: "Deterministic T13 collapse of numbers and text",
	Long: `t13 reduces an integer (or text, encoded letter by letter) to one of
eight truth labels: three digit functions are summed modulo a base, XOR-fused
with the harmonic constant H_D = 13(D-8) and mapped onto a label set.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Resolve(configPath)
		if err != nil {
			return err
		}
		logger, err = logging.NewLogger(verbose || cfg.Logging.Verbose, jsonLog || cfg.Logging.JSON)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (.toml, .yaml, .json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging; collapse also prints its step-by-step trace")
	rootCmd.PersistentFlags().BoolVar(&jsonLog, "json-log", false, "Write logs as JSON")

	addCollapseFlags(collapseCmd)
	addCollapseFlags(batchCmd)

	rootCmd.AddCommand(collapseCmd)
	rootCmd.AddCommand(batchCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
