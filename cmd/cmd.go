// Package cmd defines the command-line interface for churnrisk.
package cmd

import (
	"github.com/cerennceyhan/e-commerce-churn-prediction/internal/contract"
	"github.com/cerennceyhan/e-commerce-churn-prediction/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(featuresCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(storeCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the store subcommands to the parent store command
	storeCmd.AddCommand(storeStatusCmd)
	storeCmd.AddCommand(storeClearCmd)
	storeCmd.AddCommand(storeExportCmd)
	storeCmd.AddCommand(storeMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("reviews", "", "Path to the review CSV exported from the storefront")
	rootCmd.PersistentFlags().String("features", "", "Path to a feature table CSV written by 'churnrisk features --output csv'")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log debug details to stderr")
	rootCmd.PersistentFlags().String("store-backend", string(schema.SQLiteBackend), "Sentiment store backend: sqlite or mysql or postgresql or csv")
	rootCmd.PersistentFlags().String("store-connect", "", "Store location: a file path for sqlite/csv or a DSN for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of extractCmd to Viper
	extractCmd.Flags().String("api-key", "", "Anthropic API key (prefer CHURNRISK_API_KEY or ANTHROPIC_API_KEY)")
	extractCmd.Flags().String("model", contract.DefaultModel, "Model used for sentiment extraction")
	extractCmd.Flags().Int64("max-tokens", contract.DefaultMaxTokens, "Maximum tokens of one model response")
	extractCmd.Flags().String("base-url", "", "Override the API base URL")
	extractCmd.Flags().String("timeout", contract.DefaultTimeout.String(), "Timeout of one API request (e.g., 90s)")
	extractCmd.Flags().Int("max-retries", contract.DefaultMaxRetries, "Retries of one API request on transient errors")
	extractCmd.Flags().String("delay", contract.DefaultDelay.String(), "Pause between consecutive API calls (e.g., 1s or 0)")
	extractCmd.Flags().Int("max-reviews", contract.DefaultMaxReviews, "Most recent reviews sent per product")
	extractCmd.Flags().Int("max-products", 0, "Process at most this many pending products (0 = all)")
	if err := viper.BindPFlags(extractCmd.Flags()); err != nil {
		contract.LogFatal("Error binding extract flags", err)
	}

	// classifyCmd flags are read directly; they are never part of the config file.
	addClassifyFlags(classifyCmd)

	// Bind all flags of storeMigrateCmd to Viper
	storeMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(storeMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding store migrate flags", err)
	}
}

// addClassifyFlags defines the ad-hoc classifier input flags on c.
func addClassifyFlags(c *cobra.Command) {
	c.Flags().Int("review-count", 0, "Number of reviews of the product")
	c.Flags().String("product", "", "Optional product id shown with the result")
	c.Flags().Bool("fitment-problem", false, "Reviews report sizing or fit problems")
	c.Flags().Int("fitment-severity", 0, "Severity of the fit problem, 1-10 (0 = not reported)")
	c.Flags().Int("quality-sentiment", 0, "Perceived quality, 1-5 (0 = not reported)")
	c.Flags().Bool("delivery-issue", false, "Reviews report delivery problems")
	c.Flags().Bool("color-mismatch", false, "Reviews report a color mismatch")
	c.Flags().Bool("fabric-quality-issue", false, "Reviews report fabric quality problems")
	c.Flags().Int("price-value-perception", 0, "Perceived value for money, 1-10 (0 = not reported)")
	_ = c.MarkFlagRequired("review-count")
}
