package llm

import (
	"strings"
	"testing"

	"github.com/cerennceyhan/e-commerce-churn-prediction/internal/contract"
	"github.com/cerennceyhan/e-commerce-churn-prediction/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullResponse = `{
  "fitment_problem": true,
  "fitment_severity": 7,
  "quality_sentiment": 4,
  "delivery_issue": false,
  "color_mismatch": true,
  "main_complaint": "Beden büyük geliyor",
  "fabric_quality_issue": false,
  "price_value_perception": 3
}`

func TestParseSentiment(t *testing.T) {
	want := schema.SentimentSummary{
		FitmentProblem:       true,
		FitmentSeverity:      7,
		QualitySentiment:     4,
		ColorMismatch:        true,
		MainComplaint:        "Beden büyük geliyor",
		PriceValuePerception: 3,
	}

	for name, input := range map[string]string{
		"plain":        fullResponse,
		"json fence":   "```json\n" + fullResponse + "\n```",
		"bare fence":   "```\n" + fullResponse + "\n```",
		"padded":       "\n\n  " + fullResponse + "  \n",
		"float values": strings.ReplaceAll(strings.ReplaceAll(fullResponse, ": 7,", ": 7.0,"), ": 4,", ": 4.0,"),
		"quoted": strings.NewReplacer(`: 7,`, `: "7",`, `: true,`, `: "true",`).
			Replace(fullResponse),
	} {
		t.Run(name, func(t *testing.T) {
			got, err := ParseSentiment(input)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestParseSentimentDefaults(t *testing.T) {
	got, err := ParseSentiment(`{"fitment_problem": false, "quality_sentiment": null}`)
	require.NoError(t, err)
	assert.Equal(t, schema.NeutralSentiment(), got)
	assert.Equal(t, schema.DefaultQualitySentiment, got.QualitySentiment)

	got, err = ParseSentiment(`{}`)
	require.NoError(t, err)
	assert.Equal(t, schema.NeutralSentiment(), got)
}

func TestParseSentimentFailures(t *testing.T) {
	for name, input := range map[string]string{
		"empty":              "",
		"prose":              "I could not analyze these reviews.",
		"truncated":          `{"fitment_problem": true, "fitment_sev`,
		"array":              `[{"fitment_problem": true}]`,
		"null":               "null",
		"trailing content":   `{"quality_sentiment": 4} and more`,
		"fractional ordinal": `{"quality_sentiment": 3.5}`,
		"ordinal too high":   `{"quality_sentiment": 6}`,
		"ordinal zero":       `{"quality_sentiment": 0}`,
		"severity too high":  `{"fitment_severity": 11}`,
		"negative severity":  `{"fitment_severity": -1}`,
		"word ordinal":       `{"quality_sentiment": "good"}`,
		"bool as number":     `{"delivery_issue": 1}`,
		"bool as word":       `{"delivery_issue": "maybe"}`,
		"complaint object":   `{"main_complaint": {"text": "x"}}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseSentiment(input)
			require.Error(t, err)
			assert.ErrorIs(t, err, contract.ErrParseFailure)
			assert.NotErrorIs(t, err, contract.ErrTransportFailure)
		})
	}
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, StripCodeFence("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, StripCodeFence("```{\"a\":1}```"))
	assert.Equal(t, `{"a":1}`, StripCodeFence(`{"a":1}`))
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt([]string{"kumaş çok ince", "beden\nküçük"})
	assert.Contains(t, prompt, "- kumaş çok ince\n- beden küçük\n")
	assert.Contains(t, prompt, "MORE than 20% of the reviews")
	assert.Contains(t, prompt, `"quality_sentiment": 1-5`)
	assert.Contains(t, prompt, NoMajorComplaint)
	assert.NotContains(t, prompt, "%!")
}

// FuzzParseSentiment checks the parser never panics and only reports parse failures.
func FuzzParseSentiment(f *testing.F) {
	f.Add(fullResponse)
	f.Add("```json\n{}\n```")
	f.Add(`{"quality_sentiment": "3.0"}`)
	f.Add("")

	f.Fuzz(func(t *testing.T, s string) {
		got, err := ParseSentiment(s)
		if err != nil {
			assert.ErrorIs(t, err, contract.ErrParseFailure)
			return
		}
		if got.QualitySentiment < 1 || got.QualitySentiment > 5 {
			t.Fatalf("quality sentiment %d escaped validation", got.QualitySentiment)
		}
	})
}
