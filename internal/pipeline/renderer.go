package pipeline

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/ppiankov/hawkdove/internal/model"
	"github.com/ppiankov/hawkdove/internal/score"
)

// jsonDateLayout matches the timestamps the published site reads
const jsonDateLayout = "2006-01-02T15:04:05.000Z"

// File names written by the Renderer
const (
	IndexMonthlyFile   = "index_monthly.json"
	IndexQuarterlyFile = "index_quarterly.json"
	LatestMonthlyFile  = "latest_monthly.json"
	ReportFile         = "report.json"
)

// Renderer writes the series and headline tables of a report
type Renderer struct {
	dir  string
	stub bool
	now  func() time.Time
}

// NewRenderer creates a renderer writing into dir.
// With stub set, an empty monthly headline is replaced by one neutral record.
func NewRenderer(dir string, stub bool) *Renderer {
	return &Renderer{dir: dir, stub: stub, now: time.Now}
}

type headlineRecord struct {
	Date  string  `json:"date"`
	Score float64 `json:"score"`
	Index int     `json:"index_0_100"`
}

// Render writes every table and returns the paths in write order
func (r *Renderer) Render(report *model.Report) ([]string, error) {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	var written []string
	write := func(name string, fn func(path string) error) error {
		path := filepath.Join(r.dir, name)
		if err := fn(path); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
		written = append(written, path)
		return nil
	}

	for _, docType := range model.DocTypes {
		ts := report.Series.Of(docType)
		prefix := filePrefix(docType)

		files := []struct {
			name string
			fn   func(string) error
		}{
			{prefix + "_date_data.csv", func(p string) error { return writeDaily(p, ts.Daily) }},
			{prefix + "_month_data.csv", func(p string) error { return writeScores(p, ts.Monthly) }},
			{prefix + "_quarter_data.csv", func(p string) error { return writeScores(p, ts.Quarterly) }},
			{prefix + "_month_ratio.csv", func(p string) error { return writeRatios(p, ts.Monthly) }},
			{prefix + "_quarter_ratio.csv", func(p string) error { return writeRatios(p, ts.Quarterly) }},
		}
		for _, f := range files {
			if err := write(f.name, f.fn); err != nil {
				return written, err
			}
		}
	}

	monthly := report.HeadlineMonthly
	var latest []model.Headline
	if report.Latest != nil {
		latest = []model.Headline{*report.Latest}
	}
	if len(monthly) == 0 && r.stub {
		stub := score.Stub(r.now())
		monthly = []model.Headline{stub}
		latest = []model.Headline{stub}
	}

	headlines := []struct {
		name string
		rows []model.Headline
	}{
		{IndexMonthlyFile, monthly},
		{IndexQuarterlyFile, report.HeadlineQuarterly},
		{LatestMonthlyFile, latest},
	}
	for _, h := range headlines {
		if err := write(h.name, func(p string) error { return writeHeadlines(p, h.rows) }); err != nil {
			return written, err
		}
	}

	if err := write(ReportFile, func(p string) error { return writeJSON(p, report) }); err != nil {
		return written, err
	}
	return written, nil
}

func filePrefix(docType model.DocType) string {
	if docType == model.DocMinutes {
		return "Minutes"
	}
	return "Statements"
}

func writeDaily(path string, points []model.Aggregate) error {
	rows := [][]string{{"date", "score", "positive", "neutral", "negative"}}
	for _, p := range points {
		rows = append(rows, []string{
			p.Date.Format(time.DateOnly),
			formatFloat(p.Score),
			formatFloat(p.Positive),
			formatFloat(p.Neutral),
			formatFloat(p.Negative),
		})
	}
	return writeCSV(path, rows)
}

func writeScores(path string, points []model.Aggregate) error {
	rows := [][]string{{"date", "score"}}
	for _, p := range points {
		rows = append(rows, []string{p.Date.Format(time.DateOnly), formatFloat(p.Score)})
	}
	return writeCSV(path, rows)
}

func writeRatios(path string, points []model.Aggregate) error {
	rows := [][]string{{"date", "positive", "neutral", "negative"}}
	for _, p := range points {
		rows = append(rows, []string{
			p.Date.Format(time.DateOnly),
			formatFloat(p.Positive),
			formatFloat(p.Neutral),
			formatFloat(p.Negative),
		})
	}
	return writeCSV(path, rows)
}

func writeHeadlines(path string, headlines []model.Headline) error {
	records := make([]headlineRecord, 0, len(headlines))
	for _, h := range headlines {
		records = append(records, headlineRecord{
			Date:  h.Date.UTC().Format(jsonDateLayout),
			Score: h.Score,
			Index: h.Index,
		})
	}
	return writeJSON(path, records)
}

func writeCSV(path string, rows [][]string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}

	w := csv.NewWriter(file)
	if err := w.WriteAll(rows); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
