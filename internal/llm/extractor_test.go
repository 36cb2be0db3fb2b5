package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cerennceyhan/e-commerce-churn-prediction/internal/contract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// messageResponse renders a minimal Messages API response with a single text block.
func messageResponse(t *testing.T, text string) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"id":            "msg_test",
		"type":          "message",
		"role":          "assistant",
		"model":         "claude-test",
		"stop_reason":   "end_turn",
		"stop_sequence": nil,
		"content":       []map[string]any{{"type": "text", "text": text}},
		"usage":         map[string]any{"input_tokens": 120, "output_tokens": 40},
	})
	require.NoError(t, err)
	return body
}

func newTestExtractor(t *testing.T, handler http.HandlerFunc) *Extractor {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	ex, err := NewExtractor(Config{
		APIKey:     "test-key",
		Model:      "claude-test",
		MaxTokens:  256,
		BaseURL:    server.URL + "/",
		Timeout:    5 * time.Second,
		MaxRetries: 0,
	}, zaptest.NewLogger(t))
	require.NoError(t, err)
	return ex
}

func TestExtractSuccess(t *testing.T) {
	var gotBody map[string]any
	ex := newTestExtractor(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.True(t, strings.HasSuffix(r.URL.Path, "/v1/messages"), r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(messageResponse(t, "```json\n"+fullResponse+"\n```"))
	})

	got, err := ex.Extract(context.Background(), []string{"beden büyük", "güzel"})
	require.NoError(t, err)
	assert.True(t, got.FitmentProblem)
	assert.Equal(t, 7, got.FitmentSeverity)
	assert.Equal(t, "Beden büyük geliyor", got.MainComplaint)

	assert.Equal(t, "claude-test", gotBody["model"])
	assert.EqualValues(t, 256, gotBody["max_tokens"])
	assert.Contains(t, string(mustJSON(t, gotBody["messages"])), "beden büyük")

	usage := ex.Usage()
	assert.Equal(t, 1, usage.Calls)
	assert.Equal(t, int64(120), usage.InputTokens)
	assert.Equal(t, int64(40), usage.OutputTokens)
	assert.Equal(t, int64(160), usage.TotalTokens())
}

func TestExtractMalformedAnswerIsParseFailure(t *testing.T) {
	ex := newTestExtractor(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(messageResponse(t, "Sorry, here is a summary in prose."))
	})

	_, err := ex.Extract(context.Background(), []string{"iyi"})
	require.Error(t, err)
	assert.ErrorIs(t, err, contract.ErrParseFailure)
	assert.Equal(t, 1, ex.Usage().Calls, "tokens are metered even when the answer is unusable")
}

func TestExtractServerErrorIsTransportFailure(t *testing.T) {
	var calls atomic.Int32
	ex := newTestExtractor(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"api_error","message":"overloaded"}}`))
	})

	_, err := ex.Extract(context.Background(), []string{"iyi"})
	require.Error(t, err)
	assert.ErrorIs(t, err, contract.ErrTransportFailure)
	assert.NotErrorIs(t, err, contract.ErrParseFailure)
	assert.Equal(t, int32(1), calls.Load(), "retries are disabled")
	assert.Equal(t, 0, ex.Usage().Calls)
}

func TestExtractUnreachableIsTransportFailure(t *testing.T) {
	ex, err := NewExtractor(Config{APIKey: "k", BaseURL: "http://127.0.0.1:1/", MaxRetries: 0}, nil)
	require.NoError(t, err)
	_, err = ex.Extract(context.Background(), []string{"iyi"})
	assert.ErrorIs(t, err, contract.ErrTransportFailure)
}

func TestExtractNoTexts(t *testing.T) {
	ex, err := NewExtractor(Config{APIKey: "k"}, nil)
	require.NoError(t, err)
	_, err = ex.Extract(context.Background(), nil)
	assert.ErrorIs(t, err, contract.ErrParseFailure)
}

func TestNewExtractorRequiresKey(t *testing.T) {
	_, err := NewExtractor(Config{}, nil)
	assert.Error(t, err)
}

func TestConfigFrom(t *testing.T) {
	cfg := ConfigFrom(&contract.Config{APIKey: "k", Model: "m", MaxTokens: 9, BaseURL: "u", Timeout: time.Second, MaxRetries: 3})
	assert.Equal(t, Config{APIKey: "k", Model: "m", MaxTokens: 9, BaseURL: "u", Timeout: time.Second, MaxRetries: 3}, cfg)
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}
