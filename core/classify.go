package core

import (
	"fmt"

	"github.com/cerennceyhan/e-commerce-churn-prediction/schema"
)

// Tunable constants of the risk rule engine.
const (
	// EngagementMinReviews is the review count below which a product has too little signal.
	EngagementMinReviews = 5
	// SevereFitmentThreshold is the fitment severity at which a fitment problem counts as severe.
	SevereFitmentThreshold = 7
	// QualityChurnThreshold is the quality risk at which a product is labeled QualityChurn.
	QualityChurnThreshold = 4
)

// Classify maps a product's review count and sentiment to a risk class and score.
// It is total and deterministic, and it is the only implementation of the rule:
// the batch runner, the report merge and the MCP tool all call it.
//
// Rules, in order:
//   - reviewCount < EngagementMinReviews: EngagementChurn with score 0, whatever the sentiment.
//   - otherwise the quality risk accumulates fitment (+3 severe, +1 mild), fabric (+2),
//     quality sentiment (+3 when <= 2, +1 when 3) and delivery (+1).
//   - a quality risk >= QualityChurnThreshold is QualityChurn, anything lower is Healthy.
//
// Color mismatch and price/value perception are informational and never scored.
func Classify(reviewCount int, s schema.SentimentSummary) schema.RiskAssessment {
	if reviewCount < EngagementMinReviews {
		return schema.RiskAssessment{Class: schema.EngagementChurn, Score: 0}
	}

	risk := 0
	switch {
	case s.FitmentProblem && s.FitmentSeverity >= SevereFitmentThreshold:
		risk += 3
	case s.FitmentProblem:
		risk++
	}
	if s.FabricQualityIssue {
		risk += 2
	}
	quality := s.QualitySentiment
	if quality == 0 {
		quality = schema.DefaultQualitySentiment // not reported
	}
	switch {
	case quality <= 2:
		risk += 3
	case quality == 3:
		risk++
	}
	if s.DeliveryIssue {
		risk++
	}

	if risk >= QualityChurnThreshold {
		return schema.RiskAssessment{Class: schema.QualityChurn, Score: risk}
	}
	return schema.RiskAssessment{Class: schema.Healthy, Score: risk}
}

// Accepted ranges of ad-hoc classifier inputs. 0 means not reported.
const (
	MaxFitmentSeverity  = 10
	MaxQualitySentiment = 5
	MaxPriceValue       = 10
)

// ValidateClassifierInput checks an ad-hoc input before it is classified.
// Extracted sentiment is validated when the model response is parsed.
func ValidateClassifierInput(reviewCount int, s schema.SentimentSummary) error {
	if reviewCount < 0 {
		return fmt.Errorf("review count must not be negative (received %d)", reviewCount)
	}
	if s.FitmentSeverity < 0 || s.FitmentSeverity > MaxFitmentSeverity {
		return fmt.Errorf("fitment severity must be between 0 and %d (received %d)", MaxFitmentSeverity, s.FitmentSeverity)
	}
	if s.QualitySentiment < 0 || s.QualitySentiment > MaxQualitySentiment {
		return fmt.Errorf("quality sentiment must be between 0 and %d (received %d)", MaxQualitySentiment, s.QualitySentiment)
	}
	if s.PriceValuePerception < 0 || s.PriceValuePerception > MaxPriceValue {
		return fmt.Errorf("price/value perception must be between 0 and %d (received %d)", MaxPriceValue, s.PriceValuePerception)
	}
	return nil
}
