package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/cerennceyhan/e-commerce-churn-prediction/internal/contract"
	"github.com/cerennceyhan/e-commerce-churn-prediction/internal/outwriter"
	"github.com/cerennceyhan/e-commerce-churn-prediction/internal/persist"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// openStore returns the store opened by sharedSetup.
func openStore() (contract.SentimentStore, error) {
	if storeManager == nil || storeManager.GetSentimentStore() == nil {
		return nil, errors.New("sentiment store is not initialized")
	}
	return storeManager.GetSentimentStore(), nil
}

// storeCmd focused on sentiment store management.
//
// Note: clear and migrate only validate the configuration and never open the store,
// so they also work on a missing or outdated schema.
var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage the persisted sentiment store",
	Long: `Manage the sentiment store written by 'churnrisk extract'.

The store holds one row per product with the extracted sentiment, the risk label
computed at extraction time, the run id and the extraction time. SQL backends also
keep one row per extraction run.

Supported backends: SQLite (default), MySQL, PostgreSQL, or CSV (append-only file)

Subcommands:
  status  - Show row counts, runs and extraction times
  export  - Export data to Parquet for analytics
  clear   - Remove all persisted sentiment
  migrate - Run database schema migrations

Examples:
  # Check store status
  churnrisk store status

  # Export for analysis in pandas/DuckDB
  churnrisk store export --output-file sentiment`,
}

// storeStatusCmd shows store status.
var storeStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display store statistics and connection details",
	Long: `Show detailed information about the sentiment store.

Displays:
- Backend type, location and connection status
- Number of persisted products and extraction runs
- Last and oldest extraction timestamps
- Persisted products per risk class
- Table sizes

Examples:
  # Check the default SQLite store
  churnrisk store status

  # Machine readable
  churnrisk store status --output json`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		store, err := openStore()
		if err != nil {
			contract.LogFatal("Failed to open store", err)
		}
		status, err := store.GetStatus(rootCtx)
		if err != nil {
			contract.LogFatal("Failed to get store status", err)
		}
		if err := outwriter.WriteStoreStatus(status, cfg); err != nil {
			contract.LogFatal("Failed to write store status", err)
		}
	},
}

// storeClearCmd clears the store.
var storeClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all persisted sentiment and run metadata",
	Long: `Delete all persisted sentiment from the configured backend.

For SQLite and CSV the store file is removed. For MySQL and PostgreSQL the
tables are dropped.

WARNING: This action cannot be undone. The next extraction run will send
every product to the model again. Consider exporting data first.

Examples:
  # Export before clearing
  churnrisk store export --output-file backup
  churnrisk store clear`,
	PreRunE: configSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := persist.ClearStore(cfg.StoreBackend, cfg.StoreConnect); err != nil {
			contract.LogFatal("Failed to clear store", err)
		}
		fmt.Println("Sentiment store cleared successfully.")
	},
}

// storeExportCmd exports the store to Parquet files.
var storeExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export persisted sentiment to Parquet for BI tools and analytics",
	Long: `Export all stored sentiment data to Parquet format.

Exports up to two datasets, named after --output-file:
- <file>.sentiment_results.parquet - one row per product
- <file>.extraction_runs.parquet   - one row per run (SQL backends only)

Requires: --output-file parameter

Examples:
  # Export all data
  churnrisk store export --output-file sentiment

  # Use with DuckDB for analysis
  duckdb -c "SELECT risk_class, count(*) FROM read_parquet('sentiment.sentiment_results.parquet') GROUP BY 1"`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		store, err := openStore()
		if err != nil {
			contract.LogFatal("Failed to open store", err)
		}
		if _, err := persist.Export(rootCtx, store, cfg.OutputFile, os.Stdout); err != nil {
			contract.LogFatal("Failed to export store", err)
		}
	},
}

// storeMigrateCmd runs database migrations for the sentiment store.
var storeMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the sentiment store.

By default, migrates to the latest version. Use --target-version for specific versions.
The CSV backend has no schema and cannot be migrated.

Examples:
  # Migrate to latest version (default)
  churnrisk store migrate

  # Rollback every migration
  churnrisk store migrate --target-version 0`,
	PreRunE: configSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := persist.Migrate(cfg.StoreBackend, cfg.StoreConnect, targetVersion, os.Stdout); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
