package llm

import (
	"fmt"
	"strings"
)

// NewPredictor creates a predictor based on configuration.
// The caller owns the result and must Close it.
func NewPredictor(config Config) (Predictor, error) {
	provider := strings.ToLower(strings.TrimSpace(config.Provider))

	switch provider {
	case "", "lexicon":
		return NewLexiconPredictor(config), nil

	case "openai":
		return NewOpenAIPredictor(config)

	case "anthropic", "claude":
		return NewAnthropicPredictor(config)

	case "ollama":
		return NewOllamaPredictor(config)

	default:
		return nil, fmt.Errorf("unknown predictor provider: %s (supported: lexicon, openai, anthropic, ollama)", config.Provider)
	}
}
