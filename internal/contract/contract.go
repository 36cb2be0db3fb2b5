// Package contract provides interfaces and shared utilities for the churnrisk internal architecture.
package contract

import (
	"context"
	"errors"

	"github.com/cerennceyhan/e-commerce-churn-prediction/schema"
)

// Failure kinds of the sentiment extractor. Every error returned by a
// SentimentExtractor wraps exactly one of them.
var (
	ErrParseFailure     = errors.New("parse failure")
	ErrTransportFailure = errors.New("transport failure")
)

// ErrAlreadyPersisted is returned by a SentimentStore when a row for the product exists.
var ErrAlreadyPersisted = errors.New("sentiment already persisted for product")

// ReviewSource is a read-only view of reviews grouped by product.
type ReviewSource interface {
	// Products returns every product id in encounter order.
	Products() []string

	// Reviews returns the reviews of a product in input order.
	Reviews(productID string) []schema.Review
}

// SentimentExtractor turns review texts into a sentiment summary.
// A nil error means success; otherwise the error wraps ErrParseFailure or ErrTransportFailure.
type SentimentExtractor interface {
	Extract(ctx context.Context, texts []string) (schema.SentimentSummary, error)
}

// UsageReporter is implemented by extractors that meter token usage.
type UsageReporter interface {
	Usage() schema.ExtractionUsage
}

// SentimentStore is the append-only persisted output of the batch runner.
// This allows the store to be mocked for testing.
type SentimentStore interface {
	// ProcessedProducts reads the checkpoint set from durable storage.
	ProcessedProducts(ctx context.Context) (schema.CheckpointSet, error)

	// Append persists one row. It never overwrites: an existing product yields ErrAlreadyPersisted.
	Append(ctx context.Context, record schema.SentimentRecord) error

	// LoadAll returns all persisted rows in insertion order.
	LoadAll(ctx context.Context) ([]schema.SentimentRecord, error)

	// BeginRun records the start of a batch run.
	BeginRun(ctx context.Context, run schema.ExtractionRun) error

	// EndRun records the completion data of a batch run.
	EndRun(ctx context.Context, run schema.ExtractionRun) error

	// GetStatus returns status information about the store.
	GetStatus(ctx context.Context) (schema.StoreStatus, error)

	// Close closes the underlying connection or file.
	Close() error
}

// RunLister is implemented by stores that keep extraction run metadata.
type RunLister interface {
	ListRuns(ctx context.Context) ([]schema.ExtractionRun, error)
}

// StoreManager provides the initialized sentiment store.
type StoreManager interface {
	GetSentimentStore() SentimentStore
}
