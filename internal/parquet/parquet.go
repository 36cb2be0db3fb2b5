// Package parquet provides data structures and functions for exporting churn risk
// tables to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/cerennceyhan/e-commerce-churn-prediction/schema"
	"github.com/parquet-go/parquet-go"
)

// FeatureRow is one row of the aggregate feature table.
type FeatureRow struct {
	ProductID string `parquet:"product_id,snappy"`
	Brand     string `parquet:"brand,snappy"`

	// OverallRating is the vendor rating, null when the review file had none
	OverallRating *float64 `parquet:"overall_rating,optional,snappy"`

	ReviewCount int32 `parquet:"review_count,snappy"`

	// RatingStdDev is the sample standard deviation, null for a single review
	RatingStdDev *float64 `parquet:"rating_stddev,optional,snappy"`

	RatingMin      int32     `parquet:"rating_min,snappy"`
	RatingMax      int32     `parquet:"rating_max,snappy"`
	Star1Ratio     float64   `parquet:"star_1_ratio,snappy"`
	Star2Ratio     float64   `parquet:"star_2_ratio,snappy"`
	Star3Ratio     float64   `parquet:"star_3_ratio,snappy"`
	Star4Ratio     float64   `parquet:"star_4_ratio,snappy"`
	Star5Ratio     float64   `parquet:"star_5_ratio,snappy"`
	NegativeRatio  float64   `parquet:"negative_ratio,snappy"`
	PositiveRatio  float64   `parquet:"positive_ratio,snappy"`
	ReviewVelocity float64   `parquet:"review_velocity,snappy"`
	FirstReview    time.Time `parquet:"first_review,snappy"`
	LastReview     time.Time `parquet:"last_review,snappy"`
	SpanDays       int32     `parquet:"span_days,snappy"`
}

// SentimentResult is one persisted row of the sentiment store.
// This struct maps to the churn_sentiment_results database table.
type SentimentResult struct {
	ProductID            string    `parquet:"product_id,snappy"`
	FitmentProblem       bool      `parquet:"fitment_problem"`
	FitmentSeverity      int32     `parquet:"fitment_severity,snappy"`
	QualitySentiment     int32     `parquet:"quality_sentiment,snappy"`
	DeliveryIssue        bool      `parquet:"delivery_issue"`
	ColorMismatch        bool      `parquet:"color_mismatch"`
	FabricQualityIssue   bool      `parquet:"fabric_quality_issue"`
	PriceValuePerception int32     `parquet:"price_value_perception,snappy"`
	MainComplaint        string    `parquet:"main_complaint,snappy"`
	ReviewSampleSize     int32     `parquet:"review_sample_size,snappy"`
	RiskClass            string    `parquet:"risk_class,snappy"`
	RiskClassCode        int32     `parquet:"risk_class_code,snappy"`
	RiskScore            int32     `parquet:"risk_score,snappy"`
	RunID                string    `parquet:"run_id,snappy"`
	ExtractedAt          time.Time `parquet:"extracted_at,snappy"`
}

// ExtractionRun is the metadata of one batch run.
// This struct maps to the churn_extraction_runs database table.
type ExtractionRun struct {
	RunID     string    `parquet:"run_id,snappy"`
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is null for a run that never finished
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	Model           string `parquet:"model,snappy"`
	TotalProducts   int32  `parquet:"total_products,snappy"`
	Processed       int32  `parquet:"processed,snappy"`
	Skipped         int32  `parquet:"skipped,snappy"`
	AlreadyComplete int32  `parquet:"already_complete,snappy"`
}

// ModelRow is one row of the modeling table: features, sentiment and the batch risk label.
type ModelRow struct {
	ProductID      string    `parquet:"product_id,snappy"`
	Brand          string    `parquet:"brand,snappy"`
	OverallRating  *float64  `parquet:"overall_rating,optional,snappy"`
	ReviewCount    int32     `parquet:"review_count,snappy"`
	RatingStdDev   *float64  `parquet:"rating_stddev,optional,snappy"`
	RatingMin      int32     `parquet:"rating_min,snappy"`
	RatingMax      int32     `parquet:"rating_max,snappy"`
	Star1Ratio     float64   `parquet:"star_1_ratio,snappy"`
	Star2Ratio     float64   `parquet:"star_2_ratio,snappy"`
	Star3Ratio     float64   `parquet:"star_3_ratio,snappy"`
	Star4Ratio     float64   `parquet:"star_4_ratio,snappy"`
	Star5Ratio     float64   `parquet:"star_5_ratio,snappy"`
	NegativeRatio  float64   `parquet:"negative_ratio,snappy"`
	PositiveRatio  float64   `parquet:"positive_ratio,snappy"`
	ReviewVelocity float64   `parquet:"review_velocity,snappy"`
	FirstReview    time.Time `parquet:"first_review,snappy"`
	LastReview     time.Time `parquet:"last_review,snappy"`
	SpanDays       int32     `parquet:"span_days,snappy"`

	HasSentiment         bool   `parquet:"has_sentiment"`
	FitmentProblem       bool   `parquet:"fitment_problem"`
	FitmentSeverity      int32  `parquet:"fitment_severity,snappy"`
	QualitySentiment     int32  `parquet:"quality_sentiment,snappy"`
	DeliveryIssue        bool   `parquet:"delivery_issue"`
	ColorMismatch        bool   `parquet:"color_mismatch"`
	FabricQualityIssue   bool   `parquet:"fabric_quality_issue"`
	PriceValuePerception int32  `parquet:"price_value_perception,snappy"`
	MainComplaint        string `parquet:"main_complaint,snappy"`
	ReviewSampleSize     int32  `parquet:"review_sample_size,snappy"`
	RiskClass            string `parquet:"risk_class,snappy"`
	RiskClassCode        int32  `parquet:"risk_class_code,snappy"`
	RiskScore            int32  `parquet:"risk_score,snappy"`
}

// writeParquet writes rows to outputPath using struct schema inference.
func writeParquet[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	// The footer is only written on Close
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return file.Sync()
}

// WriteFeaturesParquet writes the feature table to a Parquet file.
func WriteFeaturesParquet(data []FeatureRow, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteSentimentResultsParquet writes persisted sentiment rows to a Parquet file.
func WriteSentimentResultsParquet(data []SentimentResult, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteExtractionRunsParquet writes run metadata to a Parquet file.
func WriteExtractionRunsParquet(data []ExtractionRun, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteModelRowsParquet writes the modeling table to a Parquet file.
func WriteModelRowsParquet(data []ModelRow, outputPath string) error {
	return writeParquet(data, outputPath)
}

// ConvertFeatures converts feature rows for Parquet export.
func ConvertFeatures(features []schema.ProductFeatures) []FeatureRow {
	result := make([]FeatureRow, len(features))
	for i, f := range features {
		result[i] = convertFeature(f)
	}
	return result
}

func convertFeature(f schema.ProductFeatures) FeatureRow {
	return FeatureRow{
		ProductID:      f.ProductID,
		Brand:          f.Brand,
		OverallRating:  f.OverallRating,
		ReviewCount:    int32(f.ReviewCount),
		RatingStdDev:   f.RatingStdDev,
		RatingMin:      int32(f.RatingMin),
		RatingMax:      int32(f.RatingMax),
		Star1Ratio:     f.StarProportion(1),
		Star2Ratio:     f.StarProportion(2),
		Star3Ratio:     f.StarProportion(3),
		Star4Ratio:     f.StarProportion(4),
		Star5Ratio:     f.StarProportion(5),
		NegativeRatio:  f.NegativeRatio,
		PositiveRatio:  f.PositiveRatio,
		ReviewVelocity: f.ReviewVelocity,
		FirstReview:    f.FirstReview,
		LastReview:     f.LastReview,
		SpanDays:       int32(f.SpanDays),
	}
}

// ConvertSentimentRecords converts schema.SentimentRecord to SentimentResult for Parquet export.
func ConvertSentimentRecords(records []schema.SentimentRecord) []SentimentResult {
	result := make([]SentimentResult, len(records))
	for i, r := range records {
		result[i] = SentimentResult{
			ProductID:            r.ProductID,
			FitmentProblem:       r.FitmentProblem,
			FitmentSeverity:      int32(r.FitmentSeverity),
			QualitySentiment:     int32(r.QualitySentiment),
			DeliveryIssue:        r.DeliveryIssue,
			ColorMismatch:        r.ColorMismatch,
			FabricQualityIssue:   r.FabricQualityIssue,
			PriceValuePerception: int32(r.PriceValuePerception),
			MainComplaint:        r.MainComplaint,
			ReviewSampleSize:     int32(r.SampleSize),
			RiskClass:            r.RiskClass.String(),
			RiskClassCode:        int32(r.RiskClass),
			RiskScore:            int32(r.RiskScore),
			RunID:                r.RunID,
			ExtractedAt:          r.ExtractedAt,
		}
	}
	return result
}

// ConvertExtractionRuns converts schema.ExtractionRun for Parquet export.
func ConvertExtractionRuns(runs []schema.ExtractionRun) []ExtractionRun {
	result := make([]ExtractionRun, len(runs))
	for i, r := range runs {
		result[i] = ExtractionRun{
			RunID:           r.RunID,
			StartTime:       r.StartTime,
			EndTime:         r.EndTime,
			Model:           r.Model,
			TotalProducts:   int32(r.TotalProducts),
			Processed:       int32(r.Processed),
			Skipped:         int32(r.Skipped),
			AlreadyComplete: int32(r.AlreadyComplete),
		}
	}
	return result
}

// ConvertModelRows converts merged rows for Parquet export. Products without a
// persisted sentiment carry the neutral defaults and has_sentiment=false.
func ConvertModelRows(rows []schema.ModelRow) []ModelRow {
	result := make([]ModelRow, len(rows))
	for i, r := range rows {
		s := r.EffectiveSentiment()
		var sampleSize int
		if r.Sentiment != nil {
			sampleSize = r.Sentiment.SampleSize
		}
		f := convertFeature(r.Features)
		result[i] = ModelRow{
			ProductID:            f.ProductID,
			Brand:                f.Brand,
			OverallRating:        f.OverallRating,
			ReviewCount:          f.ReviewCount,
			RatingStdDev:         f.RatingStdDev,
			RatingMin:            f.RatingMin,
			RatingMax:            f.RatingMax,
			Star1Ratio:           f.Star1Ratio,
			Star2Ratio:           f.Star2Ratio,
			Star3Ratio:           f.Star3Ratio,
			Star4Ratio:           f.Star4Ratio,
			Star5Ratio:           f.Star5Ratio,
			NegativeRatio:        f.NegativeRatio,
			PositiveRatio:        f.PositiveRatio,
			ReviewVelocity:       f.ReviewVelocity,
			FirstReview:          f.FirstReview,
			LastReview:           f.LastReview,
			SpanDays:             f.SpanDays,
			HasSentiment:         r.HasSentiment(),
			FitmentProblem:       s.FitmentProblem,
			FitmentSeverity:      int32(s.FitmentSeverity),
			QualitySentiment:     int32(s.QualitySentiment),
			DeliveryIssue:        s.DeliveryIssue,
			ColorMismatch:        s.ColorMismatch,
			FabricQualityIssue:   s.FabricQualityIssue,
			PriceValuePerception: int32(s.PriceValuePerception),
			MainComplaint:        s.MainComplaint,
			ReviewSampleSize:     int32(sampleSize),
			RiskClass:            r.Risk.Class.String(),
			RiskClassCode:        int32(r.Risk.Class),
			RiskScore:            int32(r.Risk.Score),
		}
	}
	return result
}
