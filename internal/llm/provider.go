package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ppiankov/hawkdove/internal/model"
)

// Predictor labels sentences with financial sentiment
type Predictor interface {
	// Name returns the predictor name; it also namespaces cached labels
	Name() string

	// Predict returns one label per input sentence, in input order
	Predict(ctx context.Context, sentences []string) ([]model.Label, error)

	// Close releases the predictor's resources
	Close() error
}

// AvailabilityChecker is implemented by predictors backed by a remote service
type AvailabilityChecker interface {
	IsAvailable(ctx context.Context) bool
}

// ErrUnparseableLabels is returned when a model reply holds no label array
var ErrUnparseableLabels = errors.New("reply holds no label array")

// Config holds label predictor configuration
type Config struct {
	// Provider name: "lexicon", "openai", "anthropic", "ollama"
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Anthropic
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// MaxLength truncates each sentence to this many runes; 0 disables truncation
	MaxLength int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:  "lexicon",
		Timeout:   30,
		MaxLength: 256,
	}
}

// ConfigFromModel converts the predictor and HTTP sections of model.Config
func ConfigFromModel(pc model.PredictorConfig, hc model.HTTPConfig) Config {
	return Config{
		Provider:   pc.Provider,
		Model:      pc.Model,
		APIKey:     pc.APIKey,
		BaseURL:    pc.BaseURL,
		Timeout:    pc.Timeout,
		MaxLength:  pc.MaxLength,
		HTTPProxy:  hc.HTTPProxy,
		HTTPSProxy: hc.HTTPSProxy,
		NoProxy:    hc.NoProxy,
	}
}

const systemPrompt = `You classify sentences taken from central bank policy statements and meeting minutes by financial sentiment.
Reply with a JSON array of integers and nothing else: 1 for positive, 0 for neutral, -1 for negative.
The array must hold exactly one label per input sentence, in input order.`

// BuildPrompt numbers the sentences for the user turn, truncating each to maxLength runes
func BuildPrompt(sentences []string, maxLength int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Classify these %d sentences:\n", len(sentences))
	for i, s := range sentences {
		s = strings.ReplaceAll(Truncate(s, maxLength), "\n", " ")
		fmt.Fprintf(&b, "%d. %s\n", i+1, s)
	}
	return b.String()
}

// Truncate keeps the first max runes of s; max <= 0 keeps everything
func Truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

// ParseLabels extracts the label array from a model reply.
// Elements may be integers or the words positive, neutral and negative.
// The caller checks the label count against its input.
func ParseLabels(reply string) ([]model.Label, error) {
	start := strings.Index(reply, "[")
	end := strings.LastIndex(reply, "]")
	if start < 0 || end < start {
		return nil, ErrUnparseableLabels
	}

	var raw []json.RawMessage
	if err := json.Unmarshal([]byte(reply[start:end+1]), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnparseableLabels, err)
	}

	labels := make([]model.Label, len(raw))
	for i, elem := range raw {
		label, err := parseLabel(elem)
		if err != nil {
			return nil, fmt.Errorf("label %d: %w", i, err)
		}
		labels[i] = label
	}
	return labels, nil
}

func parseLabel(elem json.RawMessage) (model.Label, error) {
	var n float64
	if err := json.Unmarshal(elem, &n); err == nil {
		if n != float64(int8(n)) {
			return 0, fmt.Errorf("unexpected label %v", n)
		}
		// Out of range values pass through; the join rejects them
		return model.Label(int8(n)), nil
	}

	var s string
	if err := json.Unmarshal(elem, &s); err != nil {
		return 0, fmt.Errorf("unexpected label %s", string(elem))
	}

	switch strings.ToLower(strings.TrimSpace(s)) {
	case "positive", "pos":
		return model.LabelPositive, nil
	case "neutral", "neu":
		return model.LabelNeutral, nil
	case "negative", "neg":
		return model.LabelNegative, nil
	}
	if v, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
		return model.Label(int8(v)), nil
	}
	return 0, fmt.Errorf("unexpected label %q", s)
}

// maxTokensFor sizes the completion budget for a batch
func maxTokensFor(n int) int {
	return 16 + 4*n
}
