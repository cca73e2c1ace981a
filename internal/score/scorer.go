// Package score combines per-type series into the headline index.
package score

import (
	"github.com/ppiankov/hawkdove/internal/model"
)

// Headlines is the combined output of one build
type Headlines struct {
	Monthly   []model.Headline
	Quarterly []model.Headline
	Latest    *model.Headline // Most recent monthly headline
}

// Scorer builds headline tables from aggregated series
type Scorer struct{}

// NewScorer creates a new scorer
func NewScorer() *Scorer {
	return &Scorer{}
}

// Build combines statements and minutes at monthly and quarterly frequency
func (s *Scorer) Build(series *model.Series) Headlines {
	if series == nil {
		return Headlines{}
	}

	monthly := s.combineAt(series, model.Monthly)
	return Headlines{
		Monthly:   monthly,
		Quarterly: s.combineAt(series, model.Quarterly),
		Latest:    Latest(monthly),
	}
}

// Apply fills the headline fields of a report
func (s *Scorer) Apply(report *model.Report) {
	h := s.Build(&report.Series)
	report.HeadlineMonthly = h.Monthly
	report.HeadlineQuarterly = h.Quarterly
	report.Latest = h.Latest
}

func (s *Scorer) combineAt(series *model.Series, freq model.Frequency) []model.Headline {
	inputs := make([][]model.Aggregate, 0, len(model.DocTypes))
	for _, t := range model.DocTypes {
		inputs = append(inputs, series.Of(t).At(freq))
	}
	return Combine(inputs...)
}
