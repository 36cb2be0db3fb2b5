package parquet

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cerennceyhan/e-commerce-churn-prediction/schema"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func readAll[T any](t *testing.T, path string) []T {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	reader := parquet.NewGenericReader[T](file)
	defer reader.Close()

	rows := make([]T, reader.NumRows())
	n, err := reader.Read(rows)
	if err != nil && err != io.EOF {
		require.NoError(t, err)
	}
	return rows[:n]
}

func sampleFeatures() []schema.ProductFeatures {
	first := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return []schema.ProductFeatures{
		{
			ProductID:       "p1",
			Brand:           "Koton",
			OverallRating:   ptr(4.5),
			ReviewCount:     4,
			RatingStdDev:    ptr(1.5),
			RatingMin:       1,
			RatingMax:       5,
			StarProportions: [5]float64{0.25, 0, 0, 0.25, 0.5},
			NegativeRatio:   0.25,
			PositiveRatio:   0.75,
			ReviewVelocity:  0.4,
			FirstReview:     first,
			LastReview:      first.AddDate(0, 0, 10),
			SpanDays:        10,
		},
		{
			ProductID:       "p2",
			ReviewCount:     1,
			RatingMin:       3,
			RatingMax:       3,
			StarProportions: [5]float64{0, 0, 1, 0, 0},
			ReviewVelocity:  1,
			FirstReview:     first,
			LastReview:      first,
		},
	}
}

func TestStructTags(t *testing.T) {
	for name, tc := range map[string]struct {
		row     any
		columns []string
	}{
		"features":  {new(FeatureRow), []string{"product_id", "overall_rating", "rating_stddev", "star_5_ratio", "review_velocity", "span_days"}},
		"sentiment": {new(SentimentResult), []string{"product_id", "fitment_severity", "main_complaint", "risk_class", "risk_class_code", "run_id", "extracted_at"}},
		"runs":      {new(ExtractionRun), []string{"run_id", "start_time", "end_time", "model", "already_complete"}},
		"model":     {new(ModelRow), []string{"product_id", "negative_ratio", "has_sentiment", "quality_sentiment", "risk_score"}},
	} {
		t.Run(name, func(t *testing.T) {
			s := parquet.SchemaOf(tc.row)
			require.NotNil(t, s)
			for _, col := range tc.columns {
				_, ok := s.Lookup(col)
				assert.True(t, ok, "column %s should exist", col)
			}
		})
	}
}

func TestWriteFeaturesParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "features.parquet")
	data := ConvertFeatures(sampleFeatures())
	require.NoError(t, WriteFeaturesParquet(data, outputPath))

	got := readAll[FeatureRow](t, outputPath)
	require.Len(t, got, 2)
	assert.Equal(t, "p1", got[0].ProductID)
	require.NotNil(t, got[0].OverallRating)
	assert.InDelta(t, 4.5, *got[0].OverallRating, 1e-9)
	assert.InDelta(t, 0.5, got[0].Star5Ratio, 1e-9)
	assert.Equal(t, int32(10), got[0].SpanDays)
	assert.Nil(t, got[1].OverallRating)
	assert.Nil(t, got[1].RatingStdDev, "single review has no standard deviation")
	assert.WithinDuration(t, data[0].LastReview, got[0].LastReview, time.Nanosecond)
}

func TestWriteSentimentResultsParquet(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	records := []schema.SentimentRecord{{
		ProductID: "p1",
		SentimentSummary: schema.SentimentSummary{
			FitmentProblem: true, FitmentSeverity: 8, QualitySentiment: 3, MainComplaint: "Beden büyük",
		},
		SampleSize:  12,
		RiskClass:   schema.QualityChurn,
		RiskScore:   8,
		RunID:       "run-1",
		ExtractedAt: at,
	}}
	outputPath := filepath.Join(t.TempDir(), "sentiment.parquet")
	require.NoError(t, WriteSentimentResultsParquet(ConvertSentimentRecords(records), outputPath))

	got := readAll[SentimentResult](t, outputPath)
	require.Len(t, got, 1)
	assert.True(t, got[0].FitmentProblem)
	assert.Equal(t, "QualityChurn", got[0].RiskClass)
	assert.Equal(t, int32(1), got[0].RiskClassCode)
	assert.Equal(t, int32(12), got[0].ReviewSampleSize)
	assert.Equal(t, "Beden büyük", got[0].MainComplaint)
	assert.WithinDuration(t, at, got[0].ExtractedAt, time.Nanosecond)
}

func TestWriteExtractionRunsParquet(t *testing.T) {
	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	runs := []schema.ExtractionRun{
		{RunID: "a", StartTime: start, EndTime: &end, Model: "m", TotalProducts: 10, Processed: 7, Skipped: 1, AlreadyComplete: 2},
		{RunID: "b", StartTime: end},
	}
	outputPath := filepath.Join(t.TempDir(), "runs.parquet")
	require.NoError(t, WriteExtractionRunsParquet(ConvertExtractionRuns(runs), outputPath))

	got := readAll[ExtractionRun](t, outputPath)
	require.Len(t, got, 2)
	require.NotNil(t, got[0].EndTime)
	assert.WithinDuration(t, end, *got[0].EndTime, time.Nanosecond)
	assert.Equal(t, int32(7), got[0].Processed)
	assert.Nil(t, got[1].EndTime, "unfinished run keeps a null end time")
}

func TestConvertModelRows(t *testing.T) {
	features := sampleFeatures()
	rows := []schema.ModelRow{
		{
			Features: features[0],
			Sentiment: &schema.SentimentRecord{
				ProductID:        "p1",
				SentimentSummary: schema.SentimentSummary{QualitySentiment: 2, MainComplaint: "Kumaş ince"},
				SampleSize:       4,
			},
			Risk: schema.RiskAssessment{Class: schema.EngagementChurn, Score: 3},
		},
		{Features: features[1], Risk: schema.RiskAssessment{Class: schema.EngagementChurn, Score: 3}},
	}

	got := ConvertModelRows(rows)
	require.Len(t, got, 2)
	assert.True(t, got[0].HasSentiment)
	assert.Equal(t, int32(2), got[0].QualitySentiment)
	assert.Equal(t, int32(4), got[0].ReviewSampleSize)
	assert.Equal(t, "p1", got[0].ProductID)
	assert.InDelta(t, 0.25, got[0].NegativeRatio, 1e-9)

	assert.False(t, got[1].HasSentiment)
	assert.Equal(t, int32(schema.DefaultQualitySentiment), got[1].QualitySentiment, "missing sentiment is neutral")
	assert.Equal(t, int32(0), got[1].ReviewSampleSize)
	assert.Equal(t, int32(2), got[1].RiskClassCode)

	outputPath := filepath.Join(t.TempDir(), "model.parquet")
	require.NoError(t, WriteModelRowsParquet(got, outputPath))
	assert.Len(t, readAll[ModelRow](t, outputPath), 2)
}

func TestWriteEmptyData(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "empty.parquet")
	require.NoError(t, WriteSentimentResultsParquet([]SentimentResult{}, outputPath))

	info, err := os.Stat(outputPath)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0), "file carries a footer even without rows")
	assert.Empty(t, readAll[SentimentResult](t, outputPath))
}

func TestWriteInvalidPath(t *testing.T) {
	err := WriteFeaturesParquet(nil, filepath.Join(t.TempDir(), "missing", "dir", "f.parquet"))
	assert.Error(t, err)
}
