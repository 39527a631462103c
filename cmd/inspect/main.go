// Command inspect reads stored sweep runs and JSONL cycle logs.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/danielpatrickdp/t13-mirror/internal/config"
	"github.com/danielpatrickdp/t13-mirror/internal/logging"
	"github.com/danielpatrickdp/t13-mirror/internal/store"
)

var (
	configPath string
	dbPath     string
	verbose    bool
	jsonOut    bool

	cfg    *config.Config
	logger *zap.Logger
)

// #region main

var rootCmd = &cobra.Command{
	Use:          "inspect",
	Short:        "Inspect stored sweep runs and cycle logs",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Resolve(configPath)
		if err != nil {
			return err
		}
		if dbPath == "" {
			dbPath = cfg.Storage.DBPath
		}
		logger, err = logging.NewLogger(verbose || cfg.Logging.Verbose, cfg.Logging.JSON)
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
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to the run store (default from config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output as JSON instead of tables")

	rootCmd.AddCommand(runsCmd, showCmd, compareCmd, logCmd, fixtureCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func openStore() (*store.Store, error) {
	if _, err := os.Stat(dbPath); err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return store.NewStore(dbPath)
}

// #endregion main

// #region output

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// #endregion output
