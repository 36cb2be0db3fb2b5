package cmd

import (
	"github.com/cerennceyhan/e-commerce-churn-prediction/core"
	"github.com/spf13/cobra"
)

// featuresCmd builds the aggregate feature table.
var featuresCmd = &cobra.Command{
	Use:   "features",
	Short: "Build the per-product aggregate feature table from reviews.",
	Long: `Group the review file by product and compute one feature row per product.

Each row holds:
- Vendor rating and review count
- Star rating spread (standard deviation, min, max)
- Share of reviews per star, negative (1-2 stars) and positive (4-5 stars) ratios
- Review velocity (reviews per day over the product's review span)

Features never depend on sentiment or on the risk label, so the table is safe
to use as model input.

Examples:
  # Show the feature table
  churnrisk features --reviews reviews.csv

  # Save it for later stages (accepted by --features)
  churnrisk features --reviews reviews.csv --output csv --output-file features.csv

  # Columnar copy for pandas or DuckDB
  churnrisk features --reviews reviews.csv --output parquet --output-file features.parquet`,
	PreRunE: configSetupWrapper,
	Run:     runStage("Cannot build features", core.ExecuteFeatures),
}
