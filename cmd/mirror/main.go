// Command mirror runs the blind and calibration sweeps against a language
// model oracle and prints a per-seed comparison.
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
	backend    string

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "mirror",
	Short: "Mirror-lock sweeps of T13 seeds against a model oracle",
	Long: `mirror shows a model the T13 collapse of each seed, one cycle at a time,
and watches its replies for the handshake phrases. The blind condition hides
the handshakes; calibration shows them together with decoys.

Running mirror with no subcommand performs the blind sweep, pauses, runs the
calibration sweep and prints both summaries and a comparison.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		cfg.ApplyEnvOverrides()
		if backend != "" {
			cfg.SetBackend(backend)
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("validation failed: %w", err)
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
	RunE: runSweeps,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (.toml, .yaml, .json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().BoolVar(&jsonLog, "json-log", false, "Write logs as JSON")
	rootCmd.PersistentFlags().StringVar(&backend, "backend", "", "Oracle backend: anthropic, gemini or grpc")

	addRunFlags(rootCmd)
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
