package cmd

import (
	"github.com/cerennceyhan/e-commerce-churn-prediction/core"
	"github.com/spf13/cobra"
)

// reportCmd merges features and persisted sentiment into the modeling table.
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Merge features with persisted sentiment and label every product.",
	Long: `Left-join the feature table with the sentiment store and classify every
product in batch.

Products without persisted sentiment get the neutral default and are marked
has_sentiment=false. The class distribution and risk score statistics are
printed after the table. A product whose persisted risk differs from the batch
risk is reported as a warning.

The CSV, JSON and Parquet outputs are the modeling table for downstream training:
features, sentiment, risk_class, risk_class_code (0 Healthy, 1 QualityChurn,
2 EngagementChurn) and risk_score.

Examples:
  # Show labels and distribution
  churnrisk report --reviews reviews.csv

  # Reuse a saved feature table
  churnrisk report --features features.csv --output csv --output-file model.csv`,
	PreRunE: sharedSetupWrapper,
	Run:     runStage("Cannot build report", core.ExecuteReport),
}
