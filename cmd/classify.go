package cmd

import (
	"github.com/cerennceyhan/e-commerce-churn-prediction/core"
	"github.com/cerennceyhan/e-commerce-churn-prediction/internal/contract"
	"github.com/cerennceyhan/e-commerce-churn-prediction/internal/outwriter"
	"github.com/cerennceyhan/e-commerce-churn-prediction/schema"
	"github.com/spf13/cobra"
)

// classificationFromFlags reads, validates and classifies the input given on the command line.
// The flags are all defined on classifyCmd, so lookups cannot fail.
func classificationFromFlags(cmd *cobra.Command) (outwriter.Classification, error) {
	flags := cmd.Flags()
	var c outwriter.Classification
	c.ReviewCount, _ = flags.GetInt("review-count")
	c.ProductID, _ = flags.GetString("product")
	c.Sentiment.FitmentProblem, _ = flags.GetBool("fitment-problem")
	c.Sentiment.FitmentSeverity, _ = flags.GetInt("fitment-severity")
	c.Sentiment.QualitySentiment, _ = flags.GetInt("quality-sentiment")
	c.Sentiment.DeliveryIssue, _ = flags.GetBool("delivery-issue")
	c.Sentiment.ColorMismatch, _ = flags.GetBool("color-mismatch")
	c.Sentiment.FabricQualityIssue, _ = flags.GetBool("fabric-quality-issue")
	c.Sentiment.PriceValuePerception, _ = flags.GetInt("price-value-perception")

	if err := core.ValidateClassifierInput(c.ReviewCount, c.Sentiment); err != nil {
		return c, err
	}
	c.Risk = core.Classify(c.ReviewCount, c.Sentiment)
	return c, nil
}

// classifyCmd classifies one ad-hoc input.
var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Classify one product from its review count and sentiment flags.",
	Long: `Run the risk rule engine on a single input, without reviews or a store.

Rules, in order:
- Fewer than 5 reviews: EngagementChurn (score 0), whatever the sentiment
- Otherwise the quality risk adds severe fitment (+3, severity >= 7) or mild
  fitment (+1), fabric issues (+2), low quality sentiment (+3 when <= 2, +1 when 3)
  and delivery issues (+1)
- A quality risk of 4 or more is QualityChurn, anything lower is Healthy

Examples:
  # A well reviewed product with severe sizing complaints
  churnrisk classify --review-count 40 --fitment-problem --fitment-severity 8 --quality-sentiment 2

  # JSON for scripting
  churnrisk classify --review-count 3 --output json`,
	PreRunE: configSetupWrapper,
	Run: func(cmd *cobra.Command, _ []string) {
		c, err := classificationFromFlags(cmd)
		if err != nil {
			contract.LogFatal("Invalid classifier input", err)
		}
		if cfg.Output == schema.ParquetOut {
			cfg.Output = schema.TextOut
		}
		if err := outwriter.WriteClassification(c, cfg); err != nil {
			contract.LogFatal("Cannot write classification", err)
		}
	},
}
