package suggest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"songquiz/internal/quiz"
)

const defaultOpenAIModel = "gpt-4.1-mini"

// OpenAIClient generates suggestions through an OpenAI-compatible
// chat-completions endpoint.
type OpenAIClient struct {
	apiKey     string
	model      string
	httpClient *http.Client

	// Overridable for testing
	apiURL string
}

// NewOpenAI creates a suggestion generator backed by OpenAI.
// If model is empty, a sensible default is used.
func NewOpenAI(apiKey, model string) *OpenAIClient {
	if model == "" {
		model = defaultOpenAIModel
	}
	return &OpenAIClient{
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		apiURL:     "https://api.openai.com/v1/chat/completions",
	}
}

func (c *OpenAIClient) Name() string { return "openai" }

// Generate asks the model for count suggestions and parses its reply.
func (c *OpenAIClient) Generate(ctx context.Context, prompt string, count int, d quiz.Difficulty) ([]quiz.Suggestion, error) {
	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt(d)},
			{Role: "user", Content: userPrompt(prompt, count)},
		},
		Temperature: 0.8,
		MaxTokens:   4096,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("completion request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read completion response: %w", err)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return nil, fmt.Errorf("failed to decode completion response: %w", err)
	}

	if chatResp.Error != nil {
		return nil, fmt.Errorf("completion API error: %s", chatResp.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("completion request returned %d", resp.StatusCode)
	}
	if len(chatResp.Choices) == 0 {
		return nil, fmt.Errorf("completion response has no choices")
	}

	return ParseSongList(chatResp.Choices[0].Message.Content)
}

// OpenAI chat-completions wire types

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}
