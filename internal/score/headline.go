package score

import (
	"math"
	"sort"
	"time"

	"github.com/ppiankov/hawkdove/internal/model"
)

// NeutralIndex is the index value of a zero score, also used for undefined scores
const NeutralIndex = 50

// Combine merges per-type series into one headline series.
// Each date present in any input gets the mean score of the inputs that have it.
func Combine(series ...[]model.Aggregate) []model.Headline {
	type acc struct {
		sum float64
		n   int
	}
	byDate := make(map[time.Time]*acc)

	for _, s := range series {
		for _, point := range s {
			date := point.Date.UTC()
			a := byDate[date]
			if a == nil {
				a = &acc{}
				byDate[date] = a
			}
			a.sum += point.Score
			a.n++
		}
	}

	headlines := make([]model.Headline, 0, len(byDate))
	for date, a := range byDate {
		score := a.sum / float64(a.n)
		headlines = append(headlines, model.Headline{
			Date:  date,
			Score: score,
			Index: ToIndex(score),
		})
	}

	sort.Slice(headlines, func(i, j int) bool {
		return headlines[i].Date.Before(headlines[j].Date)
	})
	return headlines
}

// ToIndex maps a score in [-1, 1] onto the 0-100 index.
// Out-of-range scores are clamped; NaN and infinities map to NeutralIndex.
// Exact halves round to even, so 0.25 gives 62.
func ToIndex(score float64) int {
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return NeutralIndex
	}
	score = math.Max(-1, math.Min(1, score))
	return int(math.RoundToEven((score + 1) * 50))
}

// Latest returns the most recent headline, or nil when there is none
func Latest(headlines []model.Headline) *model.Headline {
	if len(headlines) == 0 {
		return nil
	}

	latest := headlines[0]
	for _, h := range headlines[1:] {
		if h.Date.After(latest.Date) {
			latest = h
		}
	}
	return &latest
}

// Stub is the neutral record published when there is no data at all
func Stub(now time.Time) model.Headline {
	y, m, d := now.UTC().Date()
	return model.Headline{
		Date:  time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		Score: 0,
		Index: NeutralIndex,
	}
}
