// Package llm extracts structured review sentiment with the Anthropic Messages API.
package llm

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/cerennceyhan/e-commerce-churn-prediction/internal/contract"
	"github.com/cerennceyhan/e-commerce-churn-prediction/schema"
	"go.uber.org/zap"
)

// Config configures the Anthropic-backed extractor.
type Config struct {
	APIKey     string
	Model      string
	MaxTokens  int64
	BaseURL    string        // empty uses the SDK default
	Timeout    time.Duration // per request, 0 uses the SDK default
	MaxRetries int
}

// ConfigFrom picks the extractor settings out of the validated CLI config.
func ConfigFrom(cfg *contract.Config) Config {
	return Config{
		APIKey:     cfg.APIKey,
		Model:      cfg.Model,
		MaxTokens:  cfg.MaxTokens,
		BaseURL:    cfg.BaseURL,
		Timeout:    cfg.Timeout,
		MaxRetries: cfg.MaxRetries,
	}
}

// Extractor implements contract.SentimentExtractor. Calls are sequential in practice,
// but usage metering is safe for concurrent use.
type Extractor struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	logger    *zap.Logger

	mu    sync.Mutex
	usage schema.ExtractionUsage
}

var (
	_ contract.SentimentExtractor = &Extractor{} // Compile-time check
	_ contract.UsageReporter      = &Extractor{} // Compile-time check
)

// NewExtractor builds an extractor. A missing API key is a configuration error.
func NewExtractor(cfg Config, logger *zap.Logger) (*Extractor, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("anthropic api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = contract.DefaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = contract.DefaultMaxTokens
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}

	return &Extractor{
		client:    anthropic.NewClient(opts...),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		logger:    logger,
	}, nil
}

// Extract sends the review texts to the model and parses the JSON answer.
// API and network errors wrap contract.ErrTransportFailure; anything wrong with the
// answer itself wraps contract.ErrParseFailure.
func (e *Extractor) Extract(ctx context.Context, texts []string) (schema.SentimentSummary, error) {
	if len(texts) == 0 {
		return schema.SentimentSummary{}, fmt.Errorf("%w: no review texts", contract.ErrParseFailure)
	}

	message, err := e.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(e.model),
		MaxTokens: e.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(BuildPrompt(texts))),
		},
	})
	if err != nil {
		return schema.SentimentSummary{}, fmt.Errorf("%w: anthropic api: %w", contract.ErrTransportFailure, err)
	}

	e.record(message.Usage.InputTokens, message.Usage.OutputTokens)

	for _, block := range message.Content {
		if block.Type == "text" {
			e.logger.Debug("llm anthropic response",
				zap.String("model", e.model),
				zap.Int("reviews", len(texts)),
				zap.Int("size", len(block.Text)),
				zap.Int64("tokens_in", message.Usage.InputTokens),
				zap.Int64("tokens_out", message.Usage.OutputTokens))
			return ParseSentiment(block.Text)
		}
	}
	return schema.SentimentSummary{}, fmt.Errorf("%w: no text content in anthropic response", contract.ErrParseFailure)
}

func (e *Extractor) record(in, out int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.usage.Add(schema.ExtractionUsage{Calls: 1, InputTokens: in, OutputTokens: out})
}

// Usage returns the tokens consumed so far.
func (e *Extractor) Usage() schema.ExtractionUsage {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.usage
}
