package llm

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/cerennceyhan/e-commerce-churn-prediction/internal/contract"
	"github.com/cerennceyhan/e-commerce-churn-prediction/schema"
)

// Accepted ordinal ranges. 0 on fitment_severity means no fitment problem.
const (
	minSeverity = 0
	maxSeverity = 10
	minOrdinal  = 1
	maxOrdinal  = 5
	// price_value_perception is informational; the model sometimes answers on a 0-10 scale.
	maxPriceValue = 10
)

// rawSentiment keeps every field undecoded so absent and null values can take defaults
// and quoted values can be accepted.
type rawSentiment struct {
	FitmentProblem       json.RawMessage `json:"fitment_problem"`
	FitmentSeverity      json.RawMessage `json:"fitment_severity"`
	QualitySentiment     json.RawMessage `json:"quality_sentiment"`
	DeliveryIssue        json.RawMessage `json:"delivery_issue"`
	ColorMismatch        json.RawMessage `json:"color_mismatch"`
	FabricQualityIssue   json.RawMessage `json:"fabric_quality_issue"`
	PriceValuePerception json.RawMessage `json:"price_value_perception"`
	MainComplaint        json.RawMessage `json:"main_complaint"`
}

// StripCodeFence removes a surrounding markdown code fence (```json ... ```).
func StripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

// ParseSentiment decodes the model response into a sentiment summary.
// Every error wraps contract.ErrParseFailure.
func ParseSentiment(text string) (schema.SentimentSummary, error) {
	s, err := parseSentiment(StripCodeFence(text))
	if err != nil {
		return schema.SentimentSummary{}, fmt.Errorf("%w: %w", contract.ErrParseFailure, err)
	}
	return s, nil
}

func parseSentiment(body string) (schema.SentimentSummary, error) {
	if body == "" {
		return schema.SentimentSummary{}, errors.New("empty response")
	}
	if !strings.HasPrefix(body, "{") {
		return schema.SentimentSummary{}, errors.New("expected a json object")
	}

	dec := json.NewDecoder(strings.NewReader(body))
	var raw rawSentiment
	if err := dec.Decode(&raw); err != nil {
		return schema.SentimentSummary{}, fmt.Errorf("invalid json: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return schema.SentimentSummary{}, errors.New("unexpected content after json object")
	}

	var (
		out = schema.NeutralSentiment()
		err error
	)
	if out.FitmentProblem, err = decodeBool(raw.FitmentProblem, "fitment_problem"); err != nil {
		return out, err
	}
	if out.DeliveryIssue, err = decodeBool(raw.DeliveryIssue, "delivery_issue"); err != nil {
		return out, err
	}
	if out.ColorMismatch, err = decodeBool(raw.ColorMismatch, "color_mismatch"); err != nil {
		return out, err
	}
	if out.FabricQualityIssue, err = decodeBool(raw.FabricQualityIssue, "fabric_quality_issue"); err != nil {
		return out, err
	}
	if out.FitmentSeverity, err = decodeOrdinal(raw.FitmentSeverity, "fitment_severity", 0, minSeverity, maxSeverity); err != nil {
		return out, err
	}
	if out.QualitySentiment, err = decodeOrdinal(raw.QualitySentiment, "quality_sentiment",
		schema.DefaultQualitySentiment, minOrdinal, maxOrdinal); err != nil {
		return out, err
	}
	if out.PriceValuePerception, err = decodeOrdinal(raw.PriceValuePerception, "price_value_perception", 0, 0, maxPriceValue); err != nil {
		return out, err
	}
	if out.MainComplaint, err = decodeText(raw.MainComplaint, "main_complaint"); err != nil {
		return out, err
	}
	return out, nil
}

func isAbsent(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// decodeBool accepts true/false or their quoted forms. Absent means false.
func decodeBool(raw json.RawMessage, field string) (bool, error) {
	if isAbsent(raw) {
		return false, nil
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if v, perr := strconv.ParseBool(strings.TrimSpace(s)); perr == nil {
			return v, nil
		}
	}
	return false, fmt.Errorf("%s: expected a boolean, got %s", field, raw)
}

// decodeOrdinal accepts an integral number (7 or 7.0), quoted or not, within [lo, hi].
func decodeOrdinal(raw json.RawMessage, field string, def, lo, hi int) (int, error) {
	if isAbsent(raw) {
		return def, nil
	}

	var num json.Number
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	switch t := v.(type) {
	case json.Number:
		num = t
	case string:
		num = json.Number(strings.TrimSpace(t))
	default:
		return 0, fmt.Errorf("%s: expected a number, got %s", field, raw)
	}

	f, err := num.Float64()
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%s: expected a number, got %s", field, raw)
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("%s: expected an integer, got %s", field, raw)
	}
	if f < float64(lo) || f > float64(hi) {
		return 0, fmt.Errorf("%s: %v out of range %d..%d", field, f, lo, hi)
	}
	return int(f), nil
}

// decodeText accepts a string. Absent means empty.
func decodeText(raw json.RawMessage, field string) (string, error) {
	if isAbsent(raw) {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("%s: expected a string, got %s", field, raw)
	}
	return strings.TrimSpace(s), nil
}
