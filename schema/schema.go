// Package schema holds the plain data types shared across the churn risk pipeline.
package schema

import (
	"time"
)

// ReviewerAttributes holds optional body measurements a reviewer shared with the review.
type ReviewerAttributes struct {
	Height string `json:"height,omitempty"`
	Weight string `json:"weight,omitempty"`
	Size   string `json:"size,omitempty"`
}

// Review is a single ingested review. It is immutable once read.
type Review struct {
	ProductID    string             `json:"product_id"`
	Brand        string             `json:"brand"`
	VendorRating *float64           `json:"vendor_rating,omitempty"`
	Text         string             `json:"text"`
	StarRating   int                `json:"star_rating"`
	Date         time.Time          `json:"date"`
	Attributes   ReviewerAttributes `json:"attributes"`
}

// IngestStats counts what happened to the rows of a review file.
type IngestStats struct {
	Rows           int `json:"rows"`
	Kept           int `json:"kept"`
	DroppedDate    int `json:"dropped_date"`
	DroppedStar    int `json:"dropped_star"`
	DroppedProduct int `json:"dropped_product"`
}

// Dropped returns the total number of discarded rows.
func (s IngestStats) Dropped() int {
	return s.DroppedDate + s.DroppedStar + s.DroppedProduct
}

// ProductFeatures is the aggregate feature row for one product.
// It never depends on the risk label or on extracted sentiment.
type ProductFeatures struct {
	ProductID       string     `json:"product_id"`
	Brand           string     `json:"brand"`
	OverallRating   *float64   `json:"overall_rating"`
	ReviewCount     int        `json:"review_count"`
	RatingStdDev    *float64   `json:"rating_stddev"`
	RatingMin       int        `json:"rating_min"`
	RatingMax       int        `json:"rating_max"`
	StarProportions [5]float64 `json:"star_proportions"`
	NegativeRatio   float64    `json:"negative_ratio"`
	PositiveRatio   float64    `json:"positive_ratio"`
	ReviewVelocity  float64    `json:"review_velocity"`
	FirstReview     time.Time  `json:"first_review"`
	LastReview      time.Time  `json:"last_review"`
	SpanDays        int        `json:"span_days"`
}

// StarProportion returns the share of reviews with the given star (1..5).
func (f ProductFeatures) StarProportion(star int) float64 {
	if star < 1 || star > 5 {
		return 0
	}
	return f.StarProportions[star-1]
}

// SentimentSummary is the structured result of extracting sentiment from a product's reviews.
// Ordinals set to 0 were not reported.
type SentimentSummary struct {
	FitmentProblem       bool   `json:"fitment_problem"`
	FitmentSeverity      int    `json:"fitment_severity"`
	QualitySentiment     int    `json:"quality_sentiment"`
	DeliveryIssue        bool   `json:"delivery_issue"`
	ColorMismatch        bool   `json:"color_mismatch"`
	FabricQualityIssue   bool   `json:"fabric_quality_issue"`
	PriceValuePerception int    `json:"price_value_perception"`
	MainComplaint        string `json:"main_complaint"`
}

// DefaultQualitySentiment is assumed when quality_sentiment is absent.
const DefaultQualitySentiment = 5

// NeutralSentiment returns the summary assumed for a product without extracted sentiment.
func NeutralSentiment() SentimentSummary {
	return SentimentSummary{QualitySentiment: DefaultQualitySentiment}
}

// SentimentRecord is one persisted row of the sentiment store.
type SentimentRecord struct {
	ProductID string `json:"product_id"`
	SentimentSummary
	SampleSize  int       `json:"review_sample_size"`
	RiskClass   RiskClass `json:"risk_class_code"`
	RiskScore   int       `json:"risk_score"`
	RunID       string    `json:"run_id"`
	ExtractedAt time.Time `json:"extracted_at"`
}

// Risk returns the risk assessment stored alongside the sentiment.
func (r SentimentRecord) Risk() RiskAssessment {
	return RiskAssessment{Class: r.RiskClass, Score: r.RiskScore}
}

// CheckpointSet is the set of products whose sentiment is durably persisted.
type CheckpointSet map[string]struct{}

// NewCheckpointSet builds a set from product ids.
func NewCheckpointSet(ids ...string) CheckpointSet {
	set := make(CheckpointSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// Has reports whether the product is already processed.
func (c CheckpointSet) Has(id string) bool {
	_, ok := c[id]
	return ok
}

// Add marks the product as processed.
func (c CheckpointSet) Add(id string) {
	c[id] = struct{}{}
}

// Len returns the number of processed products.
func (c CheckpointSet) Len() int {
	return len(c)
}

// FeatureSummary is a one-line description of a feature table.
type FeatureSummary struct {
	Products          int     `json:"products"`
	Reviews           int     `json:"reviews"`
	MeanNegativeRatio float64 `json:"mean_negative_ratio"`
	MeanStdDev        float64 `json:"mean_rating_stddev"`
	MeanReviewCount   float64 `json:"mean_review_count"`
}
