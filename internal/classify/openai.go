package classify

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
	"github.com/stellarlinkco/truthwatch/internal/config"
)

type openAIClassifier struct {
	client    openai.Client
	model     string
	maxTokens int64
}

// newOpenAI builds a classifier for any OpenAI-compatible endpoint. An API
// key is optional so a local Ollama server works out of the box.
func newOpenAI(cfg config.ProviderConfig) *openAIClassifier {
	var opts []option.RequestOption
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &openAIClassifier{
		client:    openai.NewClient(opts...),
		model:     cfg.ModelName(),
		maxTokens: int64(cfg.MaxTokens),
	}
}

func (c *openAIClassifier) Classify(ctx context.Context, text string) (Result, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:               shared.ChatModel(c.model),
		MaxCompletionTokens: openai.Int(c.maxTokens),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(text),
		},
	})
	if err != nil {
		return Result{}, fmt.Errorf("openai classify: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Result{}, fmt.Errorf("openai classify: empty response")
	}
	return parseVerdict(resp.Choices[0].Message.Content), nil
}
