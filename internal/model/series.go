package model

import "time"

// Frequency is the calendar bucket a series is keyed by
type Frequency string

const (
	Daily     Frequency = "daily"
	Monthly   Frequency = "monthly"
	Quarterly Frequency = "quarterly"
)

// ParseFrequency maps a user-supplied name onto a Frequency
func ParseFrequency(s string) (Frequency, bool) {
	switch Frequency(s) {
	case Daily, Monthly, Quarterly:
		return Frequency(s), true
	case "month", "m":
		return Monthly, true
	case "quarter", "q":
		return Quarterly, true
	case "day", "d":
		return Daily, true
	}
	return "", false
}

// Aggregate is one point of a per-document-type series.
// Date is the day (daily series) or the period start (monthly/quarterly).
type Aggregate struct {
	Date     time.Time `json:"date"`
	DocType  DocType   `json:"doc_type"`
	Score    float64   `json:"score"`    // Mean label in [-1, 1]
	Positive float64   `json:"positive"` // Share of label == 1
	Neutral  float64   `json:"neutral"`  // Share of label == 0
	Negative float64   `json:"negative"` // Share of label == -1
	Count    int       `json:"count"`    // Sentences (daily) or daily points (periodic)
}

// TypeSeries holds every resampling of one document type
type TypeSeries struct {
	DocType   DocType     `json:"doc_type"`
	Daily     []Aggregate `json:"daily"`
	Monthly   []Aggregate `json:"monthly"`
	Quarterly []Aggregate `json:"quarterly"`
}

// At returns the series for freq
func (s TypeSeries) At(freq Frequency) []Aggregate {
	switch freq {
	case Monthly:
		return s.Monthly
	case Quarterly:
		return s.Quarterly
	default:
		return s.Daily
	}
}

// Series is the Calendar Aggregator output for both document types
type Series struct {
	Statement TypeSeries `json:"statement"`
	Minutes   TypeSeries `json:"minutes"`
}

// Of returns the series of the given document type
func (s *Series) Of(t DocType) *TypeSeries {
	if t == DocMinutes {
		return &s.Minutes
	}
	return &s.Statement
}

// Headline is the combined score for one period
type Headline struct {
	Date  time.Time `json:"date"`
	Score float64   `json:"score"`
	Index int       `json:"index_0_100"`
}
