package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/hawkdove/internal/label"
	"github.com/ppiankov/hawkdove/internal/llm"
	"github.com/ppiankov/hawkdove/internal/model"
)

func writeDocs(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func testConfig(t *testing.T) *model.Config {
	t.Helper()
	cfg := model.DefaultConfig()
	cfg.Output.Dir = filepath.Join(t.TempDir(), "site")
	cfg.Cache.Dir = filepath.Join(t.TempDir(), "labels")
	cfg.RateLimiting.RequestsPerSecond = 0
	return cfg
}

var sampleDocs = map[string]string{
	"2024-01-31_statement_aaaaaaaaaa.txt": "Job gains have been strong. Inflation remains elevated. The Committee met today.",
	"2024-01-31_minutes_bbbbbbbbbb.txt": "Staff Review of the Financial Situation\nCredit conditions were healthy. Growth was robust.\n" +
		"Committee Policy Action\nMembers noted the meeting schedule.",
	"notes.txt": "No date in this name.",
}

func TestLoadDocuments(t *testing.T) {
	dir := writeDocs(t, map[string]string{
		"b.txt":    "x",
		"a.TXT":    "x",
		"c.html":   "x",
		"d.txt.gz": "x",
	})
	if err := os.Mkdir(filepath.Join(dir, "sub.txt"), 0o755); err != nil {
		t.Fatal(err)
	}

	docs, err := LoadDocuments(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 2 || docs[0].Name != "a.TXT" || docs[1].Name != "b.txt" {
		t.Errorf("LoadDocuments() = %+v", docs)
	}

	missing, err := LoadDocuments(filepath.Join(dir, "nope"))
	if err != nil || len(missing) != 0 {
		t.Errorf("missing dir should yield no documents, got %v, %v", missing, err)
	}
}

func TestPipeline_Build(t *testing.T) {
	cfg := testConfig(t)
	p, err := NewPipeline(cfg, llm.NewLexiconPredictor(llm.DefaultConfig()), nil)
	if err != nil {
		t.Fatal(err)
	}

	docs, err := LoadDocuments(writeDocs(t, sampleDocs))
	if err != nil {
		t.Fatal(err)
	}

	report, err := p.Build(context.Background(), docs)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	if report.RunID == "" || report.BuiltAt.IsZero() {
		t.Error("expected run id and build time")
	}
	if report.Predictor != "lexicon" {
		t.Errorf("Predictor = %q", report.Predictor)
	}
	if report.Documents != 2 || report.Sentences != 6 {
		t.Errorf("documents=%d sentences=%d, want 2 and 6", report.Documents, report.Sentences)
	}
	if len(report.Skipped) != 1 || report.Skipped[0].Name != "notes.txt" {
		t.Errorf("Skipped = %+v", report.Skipped)
	}

	if len(report.HeadlineMonthly) != 1 {
		t.Fatalf("expected one monthly headline, got %d", len(report.HeadlineMonthly))
	}
	if got := report.HeadlineMonthly[0].Index; got != 67 {
		t.Errorf("monthly index = %d, want 67", got)
	}
	if report.Latest == nil || report.Latest.Index != 67 {
		t.Errorf("Latest = %+v", report.Latest)
	}

	paths, err := p.Render(report)
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if len(paths) == 0 {
		t.Error("expected written files")
	}
}

func TestPipeline_InvalidDuplicatePolicy(t *testing.T) {
	cfg := testConfig(t)
	cfg.Segment.DuplicatePolicy = "merge"
	if _, err := NewPipeline(cfg, llm.NewLexiconPredictor(llm.DefaultConfig()), nil); err == nil {
		t.Error("expected error for unknown duplicate policy")
	}
}

// countingPredictor wraps the lexicon and counts predicted sentences
type countingPredictor struct {
	*llm.LexiconPredictor
	sentences atomic.Int64
}

func (p *countingPredictor) Name() string { return "counting" }

func (p *countingPredictor) Predict(ctx context.Context, sentences []string) ([]model.Label, error) {
	p.sentences.Add(int64(len(sentences)))
	return p.LexiconPredictor.Predict(ctx, sentences)
}

func TestPipeline_CacheAcrossRuns(t *testing.T) {
	cfg := testConfig(t)
	docs, err := LoadDocuments(writeDocs(t, sampleDocs))
	if err != nil {
		t.Fatal(err)
	}

	first := &countingPredictor{LexiconPredictor: llm.NewLexiconPredictor(llm.DefaultConfig())}
	p, err := NewPipeline(cfg, first, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := p.Build(context.Background(), docs); err != nil {
		t.Fatal(err)
	}
	if first.sentences.Load() != 6 {
		t.Fatalf("first run predicted %d sentences, want 6", first.sentences.Load())
	}

	// A new pipeline shares only the disk layer
	second := &countingPredictor{LexiconPredictor: llm.NewLexiconPredictor(llm.DefaultConfig())}
	p2, err := NewPipeline(cfg, second, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := p2.Build(context.Background(), docs); err != nil {
		t.Fatal(err)
	}
	if second.sentences.Load() != 0 {
		t.Errorf("second run predicted %d sentences, want 0", second.sentences.Load())
	}
}

func TestPipeline_LexiconSkipsCache(t *testing.T) {
	cfg := testConfig(t)
	docs, err := LoadDocuments(writeDocs(t, sampleDocs))
	if err != nil {
		t.Fatal(err)
	}

	p, err := NewPipeline(cfg, llm.NewLexiconPredictor(llm.DefaultConfig()), nil)
	if err != nil {
		t.Fatal(err)
	}
	if p.labels != nil || p.memory != nil {
		t.Error("lexicon predictor should not get a label cache")
	}
	if _, err := p.Build(context.Background(), docs); err != nil {
		t.Fatal(err)
	}

	if entries, err := os.ReadDir(cfg.Cache.Dir); err == nil && len(entries) > 0 {
		t.Errorf("lexicon labels were cached on disk: %d entries", len(entries))
	}
}

type shortPredictor struct{}

func (shortPredictor) Name() string { return "short" }
func (shortPredictor) Close() error { return nil }
func (shortPredictor) Predict(_ context.Context, sentences []string) ([]model.Label, error) {
	return make([]model.Label, len(sentences)-1), nil
}

func TestPipeline_PredictorMismatchFails(t *testing.T) {
	cfg := testConfig(t)
	cfg.Cache.Enabled = false
	p, err := NewPipeline(cfg, shortPredictor{}, nil)
	if err != nil {
		t.Fatal(err)
	}

	docs, _ := LoadDocuments(writeDocs(t, sampleDocs))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err = p.Build(ctx, docs)
	if !errors.Is(err, label.ErrLabelCountMismatch) {
		t.Errorf("expected ErrLabelCountMismatch, got %v", err)
	}
}
