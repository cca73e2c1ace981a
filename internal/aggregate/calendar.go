// Package aggregate turns labeled sentences into calendar-aligned series.
//
// Daily points are the mean over a day's sentences. Monthly and quarterly
// points are the unweighted mean of the daily points inside the period, so
// every meeting day weighs the same regardless of how many sentences it has.
// Periods without data are absent, never zero-filled.
package aggregate

import (
	"sort"
	"strings"
	"time"

	"github.com/ppiankov/hawkdove/internal/model"
)

type dayKey struct {
	day     time.Time
	docType model.DocType
}

type bucket struct {
	sum, pos, neu, neg float64
	n                  int
}

// Aggregate builds the daily, monthly and quarterly series of both document types
func Aggregate(rows []model.LabeledRow) *model.Series {
	series := &model.Series{
		Statement: model.TypeSeries{DocType: model.DocStatement},
		Minutes:   model.TypeSeries{DocType: model.DocMinutes},
	}

	for _, point := range Daily(rows) {
		ts := series.Of(point.DocType)
		ts.Daily = append(ts.Daily, point)
	}

	for _, t := range model.DocTypes {
		ts := series.Of(t)
		ts.Monthly = Resample(ts.Daily, model.Monthly)
		ts.Quarterly = Resample(ts.Daily, model.Quarterly)
	}
	return series
}

// Daily groups rows by calendar day and document type.
// Rows with a zero date, a blank sentence, an unknown type or an invalid
// label are dropped. The result is ordered by date, then type.
func Daily(rows []model.LabeledRow) []model.Aggregate {
	buckets := make(map[dayKey]*bucket)

	for _, row := range rows {
		if row.Date.IsZero() || strings.TrimSpace(row.Sentence) == "" {
			continue
		}
		if !row.DocType.Valid() || !row.Label.Valid() {
			continue
		}

		key := dayKey{day: truncateDay(row.Date), docType: row.DocType}
		b := buckets[key]
		if b == nil {
			b = &bucket{}
			buckets[key] = b
		}

		b.sum += float64(row.Label)
		switch row.Label {
		case model.LabelPositive:
			b.pos++
		case model.LabelNeutral:
			b.neu++
		case model.LabelNegative:
			b.neg++
		}
		b.n++
	}

	out := make([]model.Aggregate, 0, len(buckets))
	for key, b := range buckets {
		n := float64(b.n)
		out = append(out, model.Aggregate{
			Date:     key.day,
			DocType:  key.docType,
			Score:    b.sum / n,
			Positive: b.pos / n,
			Neutral:  b.neu / n,
			Negative: b.neg / n,
			Count:    b.n,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].DocType < out[j].DocType
	})
	return out
}

// Resample averages daily points of one document type into period-start buckets.
// Count on the result is the number of daily points averaged.
func Resample(daily []model.Aggregate, freq model.Frequency) []model.Aggregate {
	if freq == model.Daily {
		return append([]model.Aggregate(nil), daily...)
	}

	type periodKey struct {
		start   time.Time
		docType model.DocType
	}
	sums := make(map[periodKey]*model.Aggregate)
	var order []periodKey

	for _, d := range daily {
		key := periodKey{start: PeriodStart(d.Date, freq), docType: d.DocType}
		acc := sums[key]
		if acc == nil {
			acc = &model.Aggregate{Date: key.start, DocType: d.DocType}
			sums[key] = acc
			order = append(order, key)
		}
		acc.Score += d.Score
		acc.Positive += d.Positive
		acc.Neutral += d.Neutral
		acc.Negative += d.Negative
		acc.Count++
	}

	out := make([]model.Aggregate, 0, len(order))
	for _, key := range order {
		acc := sums[key]
		n := float64(acc.Count)
		acc.Score /= n
		acc.Positive /= n
		acc.Neutral /= n
		acc.Negative /= n
		out = append(out, *acc)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].DocType < out[j].DocType
	})
	return out
}

// PeriodStart returns the first day of the period containing t, in UTC.
// Daily truncates to midnight.
func PeriodStart(t time.Time, freq model.Frequency) time.Time {
	y, m, d := t.Date()
	switch freq {
	case model.Monthly:
		return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
	case model.Quarterly:
		qm := time.Month((int(m)-1)/3*3 + 1)
		return time.Date(y, qm, 1, 0, 0, 0, 0, time.UTC)
	default:
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}
}

func truncateDay(t time.Time) time.Time {
	return PeriodStart(t, model.Daily)
}
