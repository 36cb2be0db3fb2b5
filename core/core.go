// Package core has the pipeline stages: feature building, risk classification,
// the checkpointed extraction runner and the report merge.
package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cerennceyhan/e-commerce-churn-prediction/internal/contract"
	"github.com/cerennceyhan/e-commerce-churn-prediction/internal/llm"
	"github.com/cerennceyhan/e-commerce-churn-prediction/internal/outwriter"
	"github.com/cerennceyhan/e-commerce-churn-prediction/internal/reviews"
	"github.com/cerennceyhan/e-commerce-churn-prediction/internal/tabular"
	"github.com/cerennceyhan/e-commerce-churn-prediction/schema"
	"go.uber.org/zap"
)

// ExecutorFunc defines the function signature for executing the pipeline stages.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager, logger *zap.Logger) error

// ExecuteFeatures builds the aggregate feature table and prints it.
// It serves as the main entry point for the 'features' stage.
func ExecuteFeatures(_ context.Context, cfg *contract.Config, _ contract.StoreManager, logger *zap.Logger) error {
	if err := contract.ValidateReviewsPath(cfg); err != nil {
		return err
	}
	start := time.Now()
	src, err := loadReviews(cfg.ReviewsPath, logger)
	if err != nil {
		return err
	}
	features := BuildFeatures(src)
	return outwriter.WriteFeatures(features, SummarizeFeatures(features), cfg, time.Since(start))
}

// ExecuteExtract runs the checkpointed batch extraction against the Anthropic API.
// It serves as the main entry point for the 'extract' stage.
func ExecuteExtract(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager, logger *zap.Logger) error {
	if err := contract.ValidateExtraction(cfg); err != nil {
		return err
	}
	extractor, err := llm.NewExtractor(llm.ConfigFrom(cfg), logger)
	if err != nil {
		return err
	}
	return RunExtraction(ctx, cfg, mgr.GetSentimentStore(), extractor, logger)
}

// RunExtraction runs the batch runner with the given extractor and prints the run summary.
// The summary is printed even when the run stopped early.
func RunExtraction(
	ctx context.Context,
	cfg *contract.Config,
	store contract.SentimentStore,
	extractor contract.SentimentExtractor,
	logger *zap.Logger,
) error {
	if store == nil {
		return errors.New("sentiment store is not initialized")
	}
	src, err := loadReviews(cfg.ReviewsPath, logger)
	if err != nil {
		return err
	}
	features, err := loadFeatures(cfg, src)
	if err != nil {
		return err
	}

	runner := NewRunner(src, extractor, store, logger, RunnerOptions{
		MaxReviews:  cfg.MaxReviews,
		MaxProducts: cfg.MaxProducts,
		Delay:       cfg.Delay,
		Model:       cfg.Model,
	})
	summary, runErr := runner.Run(ctx, features)
	if err := outwriter.WriteRunSummary(summary, cfg); err != nil {
		return errors.Join(runErr, err)
	}
	return runErr
}

// ExecuteReport merges the feature table with the persisted sentiment, classifies
// every product in batch and prints the modeling table with its class distribution.
// It serves as the main entry point for the 'report' stage.
func ExecuteReport(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager, logger *zap.Logger) error {
	start := time.Now()
	rows, summary, err := BuildReport(ctx, cfg, mgr.GetSentimentStore(), logger)
	if err != nil {
		return err
	}
	return outwriter.WriteReport(rows, summary, cfg, time.Since(start))
}

// BuildReport returns the merged modeling table and its summary without printing them.
// Every consistency mismatch is logged as a warning.
func BuildReport(
	ctx context.Context,
	cfg *contract.Config,
	store contract.SentimentStore,
	logger *zap.Logger,
) ([]schema.ModelRow, schema.ReportSummary, error) {
	if err := contract.ValidateFeatureSource(cfg); err != nil {
		return nil, schema.ReportSummary{}, err
	}
	if store == nil {
		return nil, schema.ReportSummary{}, errors.New("sentiment store is not initialized")
	}

	var src contract.ReviewSource
	if cfg.FeaturesPath == "" {
		loaded, err := loadReviews(cfg.ReviewsPath, logger)
		if err != nil {
			return nil, schema.ReportSummary{}, err
		}
		src = loaded
	}
	features, err := loadFeatures(cfg, src)
	if err != nil {
		return nil, schema.ReportSummary{}, err
	}
	records, err := store.LoadAll(ctx)
	if err != nil {
		return nil, schema.ReportSummary{}, fmt.Errorf("failed to load persisted sentiment: %w", err)
	}

	rows := MergeReport(features, records)
	summary := SummarizeReport(rows)
	for _, m := range summary.Mismatches {
		logger.Warn("Persisted risk differs from batch risk",
			zap.String("product", m.ProductID),
			zap.Stringer("persisted_class", m.Incremental.Class),
			zap.Int("persisted_score", m.Incremental.Score),
			zap.Stringer("batch_class", m.Batch.Class),
			zap.Int("batch_score", m.Batch.Score))
	}
	logger.Debug("Merged modeling table",
		zap.Int("products", summary.Products),
		zap.Int("with_sentiment", summary.WithSentiment),
		zap.Int("persisted_rows", len(records)))
	return rows, summary, nil
}

// loadReviews reads the reviews file and logs the rows dropped at ingestion.
func loadReviews(path string, logger *zap.Logger) (*reviews.Store, error) {
	src, err := reviews.LoadFile(path)
	if err != nil {
		return nil, err
	}
	stats := src.Stats()
	if stats.Dropped() > 0 {
		logger.Warn("Dropped review rows at ingestion",
			zap.Int("rows", stats.Rows),
			zap.Int("kept", stats.Kept),
			zap.Int("bad_date", stats.DroppedDate),
			zap.Int("bad_star", stats.DroppedStar),
			zap.Int("no_product", stats.DroppedProduct))
	}
	logger.Debug("Loaded reviews", zap.Int("reviews", stats.Kept), zap.Int("products", len(src.Products())))
	return src, nil
}

// loadFeatures reads the feature file when one is configured, or builds the table from src.
func loadFeatures(cfg *contract.Config, src contract.ReviewSource) ([]schema.ProductFeatures, error) {
	if cfg.FeaturesPath != "" {
		return tabular.LoadFeaturesFile(cfg.FeaturesPath)
	}
	if src == nil {
		return nil, errors.New("no feature source: set --features or --reviews")
	}
	return BuildFeatures(src), nil
}
