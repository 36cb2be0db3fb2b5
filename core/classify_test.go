package core

import (
	"testing"

	"github.com/cerennceyhan/e-commerce-churn-prediction/schema"
	"github.com/stretchr/testify/assert"
)

// worstSentiment raises every scored signal.
func worstSentiment() schema.SentimentSummary {
	return schema.SentimentSummary{
		FitmentProblem:       true,
		FitmentSeverity:      10,
		QualitySentiment:     1,
		DeliveryIssue:        true,
		ColorMismatch:        true,
		FabricQualityIssue:   true,
		PriceValuePerception: 1,
		MainComplaint:        "her şey kötü",
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name        string
		reviewCount int
		sentiment   schema.SentimentSummary
		expected    schema.RiskAssessment
	}{
		{
			name:        "few reviews with worst sentiment is engagement churn",
			reviewCount: 4,
			sentiment:   worstSentiment(),
			expected:    schema.RiskAssessment{Class: schema.EngagementChurn, Score: 0},
		},
		{
			name:        "few reviews with neutral sentiment is engagement churn",
			reviewCount: 1,
			sentiment:   schema.NeutralSentiment(),
			expected:    schema.RiskAssessment{Class: schema.EngagementChurn, Score: 0},
		},
		{
			name:        "zero reviews is engagement churn",
			reviewCount: 0,
			sentiment:   schema.NeutralSentiment(),
			expected:    schema.RiskAssessment{Class: schema.EngagementChurn, Score: 0},
		},
		{
			name:        "every signal at threshold severity",
			reviewCount: 10,
			sentiment: schema.SentimentSummary{
				FitmentProblem:     true,
				FitmentSeverity:    7,
				FabricQualityIssue: true,
				QualitySentiment:   1,
				DeliveryIssue:      true,
			},
			expected: schema.RiskAssessment{Class: schema.QualityChurn, Score: 9},
		},
		{
			name:        "clean sentiment is healthy",
			reviewCount: 10,
			sentiment:   schema.SentimentSummary{QualitySentiment: 5},
			expected:    schema.RiskAssessment{Class: schema.Healthy, Score: 0},
		},
		{
			name:        "mild fitment with mediocre quality",
			reviewCount: 10,
			sentiment:   schema.SentimentSummary{FitmentProblem: true, FitmentSeverity: 3, QualitySentiment: 3},
			expected:    schema.RiskAssessment{Class: schema.Healthy, Score: 2},
		},
		{
			name:        "exactly five reviews is scored",
			reviewCount: 5,
			sentiment:   schema.SentimentSummary{FabricQualityIssue: true, QualitySentiment: 2},
			expected:    schema.RiskAssessment{Class: schema.QualityChurn, Score: 5},
		},
		{
			name:        "score at threshold is quality churn",
			reviewCount: 20,
			sentiment:   schema.SentimentSummary{FitmentProblem: true, FitmentSeverity: 8, DeliveryIssue: true, QualitySentiment: 4},
			expected:    schema.RiskAssessment{Class: schema.QualityChurn, Score: 4},
		},
		{
			name:        "score just below threshold is healthy",
			reviewCount: 20,
			sentiment:   schema.SentimentSummary{FitmentProblem: true, FitmentSeverity: 6, FabricQualityIssue: true, QualitySentiment: 4},
			expected:    schema.RiskAssessment{Class: schema.Healthy, Score: 3},
		},
		{
			name:        "severity without fitment problem is ignored",
			reviewCount: 20,
			sentiment:   schema.SentimentSummary{FitmentSeverity: 10, QualitySentiment: 5},
			expected:    schema.RiskAssessment{Class: schema.Healthy, Score: 0},
		},
		{
			name:        "missing quality sentiment defaults to five",
			reviewCount: 20,
			sentiment:   schema.SentimentSummary{DeliveryIssue: true},
			expected:    schema.RiskAssessment{Class: schema.Healthy, Score: 1},
		},
		{
			name:        "informational fields are not scored",
			reviewCount: 20,
			sentiment:   schema.SentimentSummary{ColorMismatch: true, PriceValuePerception: 1, QualitySentiment: 5, MainComplaint: "renk farklı"},
			expected:    schema.RiskAssessment{Class: schema.Healthy, Score: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Classify(tt.reviewCount, tt.sentiment))
		})
	}
}

func TestClassifyEngagementOverridesEverything(t *testing.T) {
	for count := 0; count < EngagementMinReviews; count++ {
		for _, s := range []schema.SentimentSummary{worstSentiment(), schema.NeutralSentiment(), {}} {
			assert.Equal(t, schema.RiskAssessment{Class: schema.EngagementChurn}, Classify(count, s))
		}
	}
}

// FuzzClassify checks the classifier is total and its class agrees with its score.
func FuzzClassify(f *testing.F) {
	f.Add(10, true, 7, 1, true, true, true, 1)
	f.Add(4, true, 10, 1, true, true, true, 1)
	f.Add(5, false, 0, 0, false, false, false, 0)
	f.Add(100, true, 3, 3, false, false, true, 5)

	f.Fuzz(func(t *testing.T, count int, fitment bool, severity int, quality int,
		delivery bool, fabric bool, color bool, price int,
	) {
		s := schema.SentimentSummary{
			FitmentProblem:       fitment,
			FitmentSeverity:      severity,
			QualitySentiment:     quality,
			DeliveryIssue:        delivery,
			FabricQualityIssue:   fabric,
			ColorMismatch:        color,
			PriceValuePerception: price,
		}
		got := Classify(count, s)
		if got != Classify(count, s) {
			t.Fatalf("Classify is not deterministic for %+v", s)
		}
		if got.Score < 0 || got.Score > 9 {
			t.Fatalf("score %d out of range", got.Score)
		}
		switch {
		case count < EngagementMinReviews:
			if got.Class != schema.EngagementChurn || got.Score != 0 {
				t.Fatalf("count %d: got %+v", count, got)
			}
		case got.Score >= QualityChurnThreshold:
			if got.Class != schema.QualityChurn {
				t.Fatalf("score %d: got class %v", got.Score, got.Class)
			}
		default:
			if got.Class != schema.Healthy {
				t.Fatalf("score %d: got class %v", got.Score, got.Class)
			}
		}
	})
}

func TestValidateClassifierInput(t *testing.T) {
	tests := []struct {
		name    string
		count   int
		s       schema.SentimentSummary
		wantErr string
	}{
		{name: "worst sentiment", count: 10, s: worstSentiment()},
		{name: "nothing reported", count: 0, s: schema.SentimentSummary{}},
		{name: "negative count", count: -1, wantErr: "review count"},
		{name: "severity too high", count: 5, s: schema.SentimentSummary{FitmentSeverity: 11}, wantErr: "fitment severity"},
		{name: "quality too high", count: 5, s: schema.SentimentSummary{QualitySentiment: 6}, wantErr: "quality sentiment"},
		{name: "negative price", count: 5, s: schema.SentimentSummary{PriceValuePerception: -2}, wantErr: "price/value"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateClassifierInput(tt.count, tt.s)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			if assert.Error(t, err) {
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func BenchmarkClassify(b *testing.B) {
	s := worstSentiment()
	for b.Loop() {
		_ = Classify(42, s)
	}
}
