package llm

import (
	"context"
	"strings"
	"unicode"

	"github.com/ppiankov/hawkdove/internal/model"
)

// positiveTerms and negativeTerms are stems matched against the start of each word
var positiveTerms = []string{
	"strong", "solid", "robust", "improv", "expand", "gain", "grow", "increas",
	"rebound", "recover", "strength", "favorabl", "resilien", "healthy", "stabiliz",
	"eased", "easing", "moderat", "upside", "confiden", "accelerat", "progress",
}

var negativeTerms = []string{
	"weak", "declin", "slow", "contract", "deteriorat", "uncertain", "risk", "stress",
	"fell", "fall", "drop", "loss", "downturn", "recession", "elevated", "pressur",
	"volatil", "tighten", "concern", "disrupt", "downside", "unemploy", "soft",
}

var negators = map[string]bool{
	"not": true, "no": true, "never": true, "without": true, "nor": true,
}

// LexiconPredictor labels sentences by counting sentiment-bearing word stems.
// It needs no network access and is deterministic.
type LexiconPredictor struct {
	maxLength int
}

// NewLexiconPredictor creates the offline predictor
func NewLexiconPredictor(config Config) *LexiconPredictor {
	return &LexiconPredictor{maxLength: config.MaxLength}
}

// Name returns the predictor name
func (p *LexiconPredictor) Name() string { return "lexicon" }

// Predict labels every sentence; it only fails when ctx is done
func (p *LexiconPredictor) Predict(ctx context.Context, sentences []string) ([]model.Label, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	labels := make([]model.Label, len(sentences))
	for i, s := range sentences {
		labels[i] = p.classify(Truncate(s, p.maxLength))
	}
	return labels, nil
}

// Close is a no-op
func (p *LexiconPredictor) Close() error { return nil }

func (p *LexiconPredictor) classify(sentence string) model.Label {
	words := strings.FieldsFunc(strings.ToLower(sentence), func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\''
	})

	score := 0
	for i, w := range words {
		polarity := 0
		switch {
		case hasStem(w, positiveTerms):
			polarity = 1
		case hasStem(w, negativeTerms):
			polarity = -1
		default:
			continue
		}
		// A negator within the two previous words flips the term
		for j := i - 1; j >= 0 && j >= i-2; j-- {
			if negators[words[j]] {
				polarity = -polarity
				break
			}
		}
		score += polarity
	}

	switch {
	case score > 0:
		return model.LabelPositive
	case score < 0:
		return model.LabelNegative
	default:
		return model.LabelNeutral
	}
}

func hasStem(word string, stems []string) bool {
	for _, stem := range stems {
		if strings.HasPrefix(word, stem) {
			return true
		}
	}
	return false
}
