package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dbflute/dbflute-core-sub011/internal/config"
	"github.com/dbflute/dbflute-core-sub011/internal/engine"
	"github.com/dbflute/dbflute-core-sub011/internal/logging"
)

var (
	cfgFile  string
	logLevel string
	version  = "dev"
	commit   = "none"
	date     = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "dfmeta",
	Short: "dfmeta: database metadata extraction for code generation",
	Long: `dfmeta reads the metadata of a relational database (tables, columns,
keys, indexes, foreign keys and stored procedures) and writes a normalized
snapshot for code generators.

Supported engines: Oracle, PostgreSQL, MySQL, SQL Server, SQLite and H2.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	rootCmd.Version = fmt.Sprintf("%s (commit %s, built %s)", version, commit, date)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.dfmeta/dfmeta.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error); overrides the config")
}

// newEngine loads the config and sets up the run logger.
func newEngine() (*engine.Engine, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	logger, _, err := logging.Setup(cfg.Logging.Level, cfg.Logging.Directory)
	if err != nil {
		return nil, fmt.Errorf("setting up logging: %w", err)
	}
	return engine.New(cfg, logger), nil
}
