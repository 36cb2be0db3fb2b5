package outwriter

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/cerennceyhan/e-commerce-churn-prediction/internal/contract"
	"github.com/cerennceyhan/e-commerce-churn-prediction/internal/parquet"
	"github.com/cerennceyhan/e-commerce-churn-prediction/internal/tabular"
	"github.com/cerennceyhan/e-commerce-churn-prediction/schema"
)

// WriteFeatures outputs the aggregate feature table in the configured format.
// The CSV form is the feature file accepted by --features.
func WriteFeatures(features []schema.ProductFeatures, summary schema.FeatureSummary, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, features)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return tabular.WriteFeatures(w, features)
		}, "Wrote CSV")
	case schema.ParquetOut:
		if err := parquet.WriteFeaturesParquet(parquet.ConvertFeatures(features), cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
		reportParquet(cfg.OutputFile, len(features))
		return nil
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeFeatureTable(w, features, summary, cfg, duration)
		}, "Wrote table")
	}
}

// featureTableReserved is the width of every feature column except the product.
const featureTableReserved = 90

func writeFeatureTable(w io.Writer, features []schema.ProductFeatures, summary schema.FeatureSummary, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, fmtOptional := createFormatters(cfg.Precision)
	productWidth := getMaxTextWidth(cfg, featureTableReserved)

	table := newTable(w, "#", "Product", "Brand", "Reviews", "Rating", "StdDev", "Min", "Max", "Neg", "Pos", "Velocity")
	data := make([][]string, 0, len(features))
	for i, f := range features {
		data = append(data, []string{
			strconv.Itoa(i + 1),
			contract.TruncateText(f.ProductID, productWidth),
			contract.TruncateText(f.Brand, minTextWidth),
			strconv.Itoa(f.ReviewCount),
			fmtOptional(f.OverallRating),
			fmtOptional(f.RatingStdDev),
			strconv.Itoa(f.RatingMin),
			strconv.Itoa(f.RatingMax),
			fmtFloat(f.NegativeRatio),
			fmtFloat(f.PositiveRatio),
			fmtFloat(f.ReviewVelocity),
		})
	}
	if err := renderTable(table, data); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "Built features for %d products from %d reviews (mean negative ratio %s, mean rating stddev %s, mean review count %s)\n",
		summary.Products, summary.Reviews,
		fmtFloat(summary.MeanNegativeRatio), fmtFloat(summary.MeanStdDev), fmtFloat(summary.MeanReviewCount)); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Features completed in %v\n", duration)
	return err
}
