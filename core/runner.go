package core

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/cerennceyhan/e-commerce-churn-prediction/internal/contract"
	"github.com/cerennceyhan/e-commerce-churn-prediction/schema"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RunnerOptions tunes a batch run.
type RunnerOptions struct {
	MaxReviews  int           // most recent reviews sent per product (capped at contract.MaxReviewsCap)
	MaxProducts int           // 0 means no limit
	Delay       time.Duration // pause between consecutive extractor calls, may be zero
	Model       string        // recorded with the run metadata
}

// Runner is the checkpointed batch runner. It extracts sentiment for every product not
// yet in the store and persists each result before moving to the next product, so a
// crash loses at most the product in flight.
type Runner struct {
	reviews   contract.ReviewSource
	extractor contract.SentimentExtractor
	store     contract.SentimentStore
	logger    *zap.Logger
	opts      RunnerOptions

	sleep    func(ctx context.Context, d time.Duration) error
	now      func() time.Time
	newRunID func() string
}

// NewRunner wires a runner. A nil logger disables logging.
func NewRunner(
	src contract.ReviewSource,
	extractor contract.SentimentExtractor,
	store contract.SentimentStore,
	logger *zap.Logger,
	opts RunnerOptions,
) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.MaxReviews <= 0 || opts.MaxReviews > contract.MaxReviewsCap {
		opts.MaxReviews = contract.MaxReviewsCap
	}
	return &Runner{
		reviews:   src,
		extractor: extractor,
		store:     store,
		logger:    logger,
		opts:      opts,
		sleep:     sleepContext,
		now:       time.Now,
		newRunID:  uuid.NewString,
	}
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// MostRecentReviews returns up to n reviews sorted by date descending.
// Reviews on the same day keep their input order.
func MostRecentReviews(reviews []schema.Review, n int) []schema.Review {
	sorted := slices.Clone(reviews)
	slices.SortStableFunc(sorted, func(a, b schema.Review) int {
		return b.Date.Compare(a.Date)
	})
	if n >= 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// UsableTexts drops blank texts and texts whose spelling correction failed upstream.
func UsableTexts(reviews []schema.Review) []string {
	texts := make([]string, 0, len(reviews))
	for _, r := range reviews {
		text := strings.TrimSpace(r.Text)
		if text == "" || text == schema.CorrectionFailedMarker {
			continue
		}
		texts = append(texts, text)
	}
	return texts
}

// Worklist returns the products still to process, in encounter order without duplicates,
// plus the number of distinct products and how many of them the checkpoint already covers.
func Worklist(features []schema.ProductFeatures, done schema.CheckpointSet) (pending []schema.ProductFeatures, total, complete int) {
	seen := make(map[string]struct{}, len(features))
	for _, f := range features {
		if _, ok := seen[f.ProductID]; ok {
			continue
		}
		seen[f.ProductID] = struct{}{}
		total++
		if done.Has(f.ProductID) {
			complete++
			continue
		}
		pending = append(pending, f)
	}
	return pending, total, complete
}

// Run processes every unprocessed product of the feature table.
// Per-product failures are counted and never abort the run. A store that cannot
// read its checkpoint or append a row stops the run with an error; the summary
// returned alongside it describes the work done so far.
func (r *Runner) Run(ctx context.Context, features []schema.ProductFeatures) (schema.RunSummary, error) {
	summary := schema.RunSummary{RunID: r.newRunID(), StartTime: r.now()}

	done, err := r.store.ProcessedProducts(ctx)
	if err != nil {
		summary.EndTime = r.now()
		return summary, fmt.Errorf("failed to read checkpoint: %w", err)
	}
	if done == nil {
		done = schema.NewCheckpointSet()
	}

	worklist, total, complete := Worklist(features, done)
	summary.TotalProducts = total
	summary.AlreadyComplete = complete
	summary.Pending = len(worklist)
	if r.opts.MaxProducts > 0 && len(worklist) > r.opts.MaxProducts {
		summary.Deferred = len(worklist) - r.opts.MaxProducts
		worklist = worklist[:r.opts.MaxProducts]
	}

	r.logger.Info("Starting extraction run",
		zap.String("run_id", summary.RunID),
		zap.Int("products", summary.TotalProducts),
		zap.Int("already_complete", summary.AlreadyComplete),
		zap.Int("to_process", len(worklist)),
		zap.Int("deferred", summary.Deferred))

	run := schema.ExtractionRun{
		RunID:           summary.RunID,
		StartTime:       summary.StartTime,
		Model:           r.opts.Model,
		TotalProducts:   summary.TotalProducts,
		AlreadyComplete: summary.AlreadyComplete,
	}
	if err := r.store.BeginRun(ctx, run); err != nil {
		summary.EndTime = r.now()
		return summary, fmt.Errorf("failed to record run start: %w", err)
	}

	runErr := r.processWorklist(ctx, worklist, done, &summary)

	if reporter, ok := r.extractor.(contract.UsageReporter); ok {
		summary.Usage = reporter.Usage()
	}
	summary.EndTime = r.now()

	end := summary.EndTime
	run.EndTime = &end
	run.Processed = summary.Processed
	run.Skipped = summary.Skipped()
	run.AlreadyComplete = summary.AlreadyComplete
	// The run row is closed even when the caller cancelled.
	if err := r.store.EndRun(context.WithoutCancel(ctx), run); err != nil {
		r.logger.Warn("Failed to record run end", zap.String("run_id", run.RunID), zap.Error(err))
	}

	r.logger.Info("Finished extraction run",
		zap.String("run_id", summary.RunID),
		zap.Int("processed", summary.Processed),
		zap.Int("already_complete", summary.AlreadyComplete),
		zap.Int("skipped", summary.Skipped()),
		zap.Int("parse_failures", summary.ParseFailures),
		zap.Int("transport_failures", summary.TransportFailures),
		zap.Bool("interrupted", summary.Interrupted),
		zap.Duration("duration", summary.Duration()))
	return summary, runErr
}

// processWorklist is the sequential extract-classify-persist loop.
func (r *Runner) processWorklist(
	ctx context.Context,
	worklist []schema.ProductFeatures,
	done schema.CheckpointSet,
	summary *schema.RunSummary,
) error {
	calls := 0
	for i, f := range worklist {
		log := r.logger.With(
			zap.String("product", f.ProductID),
			zap.String("progress", fmt.Sprintf("%d/%d", i+1, len(worklist))))

		if ctx.Err() != nil {
			summary.Interrupted = true
			return nil
		}
		if done.Has(f.ProductID) {
			continue
		}

		texts := UsableTexts(MostRecentReviews(r.reviews.Reviews(f.ProductID), r.opts.MaxReviews))
		if len(texts) == 0 {
			log.Warn("Skipping product without usable reviews")
			summary.SkippedNoReviews++
			continue
		}

		if calls > 0 {
			if err := r.sleep(ctx, r.opts.Delay); err != nil {
				summary.Interrupted = true
				return nil
			}
		}
		calls++

		sentiment, err := r.extractor.Extract(ctx, texts)
		if err != nil {
			if ctx.Err() != nil {
				summary.Interrupted = true
				return nil
			}
			kind := "transport"
			if errors.Is(err, contract.ErrParseFailure) {
				kind = "parse"
				summary.ParseFailures++
			} else {
				summary.TransportFailures++
			}
			log.Warn("Extraction failed, product stays eligible for the next run",
				zap.String("kind", kind), zap.Error(err))
			continue
		}

		risk := Classify(f.ReviewCount, sentiment)
		record := schema.SentimentRecord{
			ProductID:        f.ProductID,
			SentimentSummary: sentiment,
			SampleSize:       len(texts),
			RiskClass:        risk.Class,
			RiskScore:        risk.Score,
			RunID:            summary.RunID,
			ExtractedAt:      r.now().UTC(),
		}
		if err := r.store.Append(ctx, record); err != nil {
			if errors.Is(err, contract.ErrAlreadyPersisted) {
				log.Warn("Product was persisted concurrently, keeping the existing row")
				done.Add(f.ProductID)
				summary.AlreadyComplete++
				continue
			}
			return fmt.Errorf("failed to persist sentiment for %q: %w", f.ProductID, err)
		}
		done.Add(f.ProductID)
		summary.Processed++

		log.Info("Persisted sentiment",
			zap.Stringer("risk_class", risk.Class),
			zap.Int("risk_score", risk.Score),
			zap.Int("sample_size", record.SampleSize))
	}
	return nil
}
