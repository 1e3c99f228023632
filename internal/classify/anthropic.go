package classify

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stellarlinkco/truthwatch/internal/config"
)

type anthropicClassifier struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

func newAnthropic(cfg config.ProviderConfig) (*anthropicClassifier, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic API key is required")
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &anthropicClassifier{
		client:    anthropic.NewClient(opts...),
		model:     cfg.ModelName(),
		maxTokens: int64(cfg.MaxTokens),
	}, nil
}

func (c *anthropicClassifier) Classify(ctx context.Context, text string) (Result, error) {
	msg, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTokens,
		System:    []anthropic.TextBlockParam{{Text: systemPrompt}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(text)),
		},
	})
	if err != nil {
		return Result{}, fmt.Errorf("anthropic classify: %w", err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return Result{}, fmt.Errorf("anthropic classify: empty response")
	}
	return parseVerdict(sb.String()), nil
}
