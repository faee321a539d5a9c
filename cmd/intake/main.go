// Command intake runs guided applications and the eligibility quiz in a
// terminal and serves the draft API.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-intake/internal/config"
	"github.com/goliatone/go-intake/internal/logging"
	"github.com/goliatone/go-intake/pkg/catalog"
)

var (
	// Global flags
	verbose    bool
	configPath string
	catalogDir string

	cfg    config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "intake",
	Short: "Guided, resumable business financing applications",
	Long: `intake walks an applicant through a multi-step application, saving a
draft after every step so the session can be resumed later.

Drafts are kept in a local SQLite database, a Postgres database or a remote
intake API. The same binary serves that API.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.Load()
		if configPath != "" {
			loaded, err := config.LoadFile(configPath, cfg)
			if err != nil {
				return err
			}
			cfg = loaded
		}
		if strings.TrimSpace(catalogDir) != "" {
			cfg.CatalogDir = catalogDir
		}

		level := cfg.LogLevel
		if verbose {
			level = "debug"
		}
		var err error
		logger, err = logging.New(level, false)
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
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file overlaid on INTAKE_* environment settings")
	rootCmd.PersistentFlags().StringVar(&catalogDir, "catalog", "", "Directory of flow and quiz definitions (default: embedded)")

	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(quizCmd)
	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(serveCmd)
}

func loadCatalog() (*catalog.Catalog, error) {
	cat, err := catalog.Load(cfg.CatalogDir)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return cat, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
