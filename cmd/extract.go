package cmd

import (
	"github.com/cerennceyhan/e-commerce-churn-prediction/core"
	"github.com/spf13/cobra"
)

// extractCmd runs the checkpointed sentiment extraction.
var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract review sentiment per product and persist it with its risk label.",
	Long: `Send each product's most recent reviews to the model, parse the structured
sentiment, classify the product and append the result to the sentiment store.

The run is checkpointed: every product is persisted before the next one starts,
and products already in the store are never sent again. Interrupt the run at any
time (Ctrl-C) and rerun the same command to resume where it stopped.

Products whose extraction fails are logged and stay eligible for the next run.

Requires an API key: --api-key, CHURNRISK_API_KEY or ANTHROPIC_API_KEY.

Examples:
  # Process every pending product
  churnrisk extract --reviews reviews.csv

  # Try the first 10 pending products without delay
  churnrisk extract --reviews reviews.csv --max-products 10 --delay 0

  # Persist into PostgreSQL instead of the local SQLite file
  churnrisk extract --reviews reviews.csv --store-backend postgresql \
    --store-connect "host=localhost user=churn dbname=churn sslmode=disable"`,
	PreRunE: sharedSetupWrapper,
	Run:     runStage("Cannot run extraction", core.ExecuteExtract),
}
