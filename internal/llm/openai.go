package llm

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ppiankov/hawkdove/internal/model"
	"github.com/sashabaranov/go-openai"
)

// OpenAIPredictor labels sentences with OpenAI chat models
type OpenAIPredictor struct {
	client *openai.Client
	config Config
}

// NewOpenAIPredictor creates a new OpenAI predictor
func NewOpenAIPredictor(config Config) (*OpenAIPredictor, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &OpenAIPredictor{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
	}, nil
}

// Name returns the predictor name, including the model so caches do not mix models
func (p *OpenAIPredictor) Name() string {
	return "openai:" + p.model()
}

func (p *OpenAIPredictor) model() string {
	if p.config.Model != "" {
		return p.config.Model
	}
	return openai.GPT4oMini
}

// IsAvailable checks if the provider is properly configured
func (p *OpenAIPredictor) IsAvailable(ctx context.Context) bool {
	// Listing models is the lightest authenticated call
	_, err := p.client.ListModels(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "OpenAI API check failed: %v\n", err)
		return false
	}
	return true
}

// Predict labels a batch of sentences with one Chat Completions call
func (p *OpenAIPredictor) Predict(ctx context.Context, sentences []string) ([]model.Label, error) {
	if len(sentences) == 0 {
		return nil, nil
	}

	timeout := time.Duration(p.config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	ctxWithTimeout, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	chatReq := openai.ChatCompletionRequest{
		Model: p.model(),
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: BuildPrompt(sentences, p.config.MaxLength),
			},
		},
		MaxTokens:   maxTokensFor(len(sentences)),
		Temperature: 0,
	}

	resp, err := p.client.CreateChatCompletion(ctxWithTimeout, chatReq)
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	return ParseLabels(strings.TrimSpace(resp.Choices[0].Message.Content))
}

// Close is a no-op; the client holds no pooled resources of its own
func (p *OpenAIPredictor) Close() error { return nil }
