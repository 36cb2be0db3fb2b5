package schema

import (
	"fmt"
	"strings"
)

// RiskClass is the churn risk label of a product.
// The numeric values are the class codes used for model training.
type RiskClass int

// All risk classes.
const (
	Healthy         RiskClass = 0
	QualityChurn    RiskClass = 1
	EngagementChurn RiskClass = 2
)

// AllRiskClasses lists the classes in code order.
var AllRiskClasses = []RiskClass{Healthy, QualityChurn, EngagementChurn}

// String returns the display name of the class.
func (c RiskClass) String() string {
	switch c {
	case Healthy:
		return "Healthy"
	case QualityChurn:
		return "QualityChurn"
	case EngagementChurn:
		return "EngagementChurn"
	default:
		return fmt.Sprintf("RiskClass(%d)", int(c))
	}
}

// Valid reports whether c is a known class.
func (c RiskClass) Valid() bool {
	return c >= Healthy && c <= EngagementChurn
}

// ParseRiskClass accepts a class name (case-insensitive) or its numeric code.
func ParseRiskClass(s string) (RiskClass, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "healthy", "0":
		return Healthy, nil
	case "qualitychurn", "quality_churn", "1":
		return QualityChurn, nil
	case "engagementchurn", "engagement_churn", "2":
		return EngagementChurn, nil
	default:
		return Healthy, fmt.Errorf("unknown risk class %q", s)
	}
}

// RiskAssessment is the output of the risk classifier.
type RiskAssessment struct {
	Class RiskClass `json:"risk_class_code"`
	Score int       `json:"risk_score"`
}

// ModelRow is one row of the modeling table: features left-joined with sentiment.
type ModelRow struct {
	Features  ProductFeatures  `json:"features"`
	Sentiment *SentimentRecord `json:"sentiment,omitempty"`
	Risk      RiskAssessment   `json:"risk"`
}

// HasSentiment reports whether the product had a persisted sentiment row.
func (r ModelRow) HasSentiment() bool {
	return r.Sentiment != nil
}

// EffectiveSentiment returns the persisted sentiment, or the neutral default.
func (r ModelRow) EffectiveSentiment() SentimentSummary {
	if r.Sentiment == nil {
		return NeutralSentiment()
	}
	return r.Sentiment.SentimentSummary
}

// ClassCount is the number and share of products in one class.
type ClassCount struct {
	Class   RiskClass `json:"-"`
	Label   string    `json:"label"`
	Code    int       `json:"code"`
	Count   int       `json:"count"`
	Percent float64   `json:"percent"`
}

// RiskMismatch records a product whose persisted risk differs from the batch risk.
type RiskMismatch struct {
	ProductID   string         `json:"product_id"`
	Incremental RiskAssessment `json:"incremental"`
	Batch       RiskAssessment `json:"batch"`
}

// ReportSummary describes the class distribution of a modeling table.
type ReportSummary struct {
	Products      int            `json:"products"`
	WithSentiment int            `json:"with_sentiment"`
	Distribution  []ClassCount   `json:"distribution"`
	ScoreMean     float64        `json:"score_mean"`
	ScoreMin      int            `json:"score_min"`
	ScoreMax      int            `json:"score_max"`
	Mismatches    []RiskMismatch `json:"mismatches,omitempty"`
}
