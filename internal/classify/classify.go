// Package classify asks a language model whether a post could move the
// stock market.
package classify

import (
	"context"
	"fmt"
	"strings"

	"github.com/stellarlinkco/truthwatch/internal/config"
)

// Result is the model's verdict on one post.
type Result struct {
	CouldImpactMarket bool
	Rationale         string
}

type Classifier interface {
	Classify(ctx context.Context, text string) (Result, error)
}

const systemPrompt = `Based on the input post, is there a reasonable likelihood it could indicate a buy, sell or hold of stocks in the market?
Consider mentions of companies, industries, economic policies, trade deals, or other market-relevant information.
Answer with 'Yes' or 'No' first, followed by an explanation of 50 words or less.`

// New picks a provider implementation from the config: "openai" covers any
// OpenAI-compatible endpoint (including a local Ollama via baseUrl),
// everything else goes to Anthropic.
func New(cfg config.ProviderConfig) (Classifier, error) {
	switch cfg.Type {
	case "openai":
		return newOpenAI(cfg), nil
	case "", "anthropic":
		return newAnthropic(cfg)
	default:
		return nil, fmt.Errorf("unknown provider type %q", cfg.Type)
	}
}

// parseVerdict interprets a model response: an answer starting with "Yes"
// is a positive verdict, anything else is negative. The full response text
// is kept as the rationale.
func parseVerdict(response string) Result {
	trimmed := strings.TrimSpace(response)
	return Result{
		CouldImpactMarket: strings.HasPrefix(trimmed, "Yes"),
		Rationale:         trimmed,
	}
}
