package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRiskClass(t *testing.T) {
	tests := []struct {
		input    string
		expected RiskClass
		wantErr  bool
	}{
		{"Healthy", Healthy, false},
		{"0", Healthy, false},
		{"qualitychurn", QualityChurn, false},
		{"quality_churn", QualityChurn, false},
		{"1", QualityChurn, false},
		{" EngagementChurn ", EngagementChurn, false},
		{"2", EngagementChurn, false},
		{"3", Healthy, true},
		{"", Healthy, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseRiskClass(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestRiskClassString(t *testing.T) {
	for _, c := range AllRiskClasses {
		parsed, err := ParseRiskClass(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, parsed)
		assert.True(t, c.Valid())
	}
	assert.Equal(t, "RiskClass(7)", RiskClass(7).String())
	assert.False(t, RiskClass(7).Valid())
}

func TestCheckpointSet(t *testing.T) {
	set := NewCheckpointSet("a", "b", "a")
	assert.Equal(t, 2, set.Len())
	assert.True(t, set.Has("a"))
	assert.False(t, set.Has("c"))

	set.Add("c")
	assert.True(t, set.Has("c"))
	assert.Equal(t, 3, set.Len())
}

func TestNeutralSentiment(t *testing.T) {
	s := NeutralSentiment()
	assert.Equal(t, DefaultQualitySentiment, s.QualitySentiment)
	assert.False(t, s.FitmentProblem)
	assert.False(t, s.FabricQualityIssue)
	assert.False(t, s.DeliveryIssue)

	row := ModelRow{}
	assert.False(t, row.HasSentiment())
	assert.Equal(t, s, row.EffectiveSentiment())

	row.Sentiment = &SentimentRecord{ProductID: "p", SentimentSummary: SentimentSummary{QualitySentiment: 2}}
	assert.True(t, row.HasSentiment())
	assert.Equal(t, 2, row.EffectiveSentiment().QualitySentiment)
}

func TestStarProportion(t *testing.T) {
	f := ProductFeatures{StarProportions: [5]float64{0.1, 0.2, 0.3, 0.15, 0.25}}
	assert.Equal(t, 0.1, f.StarProportion(1))
	assert.Equal(t, 0.25, f.StarProportion(5))
	assert.Equal(t, 0.0, f.StarProportion(0))
	assert.Equal(t, 0.0, f.StarProportion(6))
}

func TestRunSummarySkipped(t *testing.T) {
	s := RunSummary{SkippedNoReviews: 1, ParseFailures: 2, TransportFailures: 3}
	assert.Equal(t, 6, s.Skipped())

	var u ExtractionUsage
	u.Add(ExtractionUsage{Calls: 1, InputTokens: 10, OutputTokens: 5})
	u.Add(ExtractionUsage{Calls: 1, InputTokens: 1, OutputTokens: 1})
	assert.Equal(t, 2, u.Calls)
	assert.Equal(t, int64(17), u.TotalTokens())
}

func TestDatabaseBackendIsSQL(t *testing.T) {
	assert.True(t, SQLiteBackend.IsSQL())
	assert.True(t, MySQLBackend.IsSQL())
	assert.True(t, PostgreSQLBackend.IsSQL())
	assert.False(t, CSVBackend.IsSQL())
	assert.Equal(t, []string{"product_id", "brand"}, Strings([]ColumnKey{ColProductID, ColBrand}))
}
