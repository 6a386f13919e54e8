package suggest

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"songquiz/internal/quiz"
)

const defaultAnthropicModel = "claude-haiku-4-5"

// AnthropicClient generates suggestions through the Anthropic Messages API.
type AnthropicClient struct {
	client anthropic.Client
	model  string
}

// NewAnthropic creates a suggestion generator backed by Anthropic.
// If model is empty, a sensible default is used.
func NewAnthropic(apiKey, model string) *AnthropicClient {
	if model == "" {
		model = defaultAnthropicModel
	}
	return &AnthropicClient{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}
}

func (c *AnthropicClient) Name() string { return "anthropic" }

// Generate asks the model for count suggestions and parses its reply.
func (c *AnthropicClient) Generate(ctx context.Context, prompt string, count int, d quiz.Difficulty) ([]quiz.Suggestion, error) {
	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: 4096,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt(d)},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt(prompt, count))),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("message request failed: %w", err)
	}

	for _, block := range message.Content {
		if block.Type == "text" {
			return ParseSongList(block.Text)
		}
	}

	return nil, fmt.Errorf("%w: no text content in response", ErrGenerationFailed)
}
