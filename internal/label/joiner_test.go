package label

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"github.com/ppiankov/hawkdove/internal/cache"
	"github.com/ppiankov/hawkdove/internal/model"
	"github.com/ppiankov/hawkdove/internal/worker"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// scriptedPredictor labels by the last character of each sentence:
// '+' positive, '-' negative, anything else neutral
type scriptedPredictor struct {
	calls    int32
	mu       sync.Mutex
	batches  [][]string
	delay    func(batch []string) time.Duration
	override func(batch []string) ([]model.Label, error)
}

func (p *scriptedPredictor) Name() string { return "scripted" }
func (p *scriptedPredictor) Close() error { return nil }

func (p *scriptedPredictor) Predict(ctx context.Context, sentences []string) ([]model.Label, error) {
	atomic.AddInt32(&p.calls, 1)
	p.mu.Lock()
	p.batches = append(p.batches, append([]string(nil), sentences...))
	p.mu.Unlock()

	if p.delay != nil {
		select {
		case <-time.After(p.delay(sentences)):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if p.override != nil {
		return p.override(sentences)
	}

	labels := make([]model.Label, len(sentences))
	for i, s := range sentences {
		switch {
		case strings.HasSuffix(s, "+"):
			labels[i] = model.LabelPositive
		case strings.HasSuffix(s, "-"):
			labels[i] = model.LabelNegative
		}
	}
	return labels, nil
}

func makeRows(sentences ...string) []model.SentenceRow {
	date := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	rows := make([]model.SentenceRow, len(sentences))
	for i, s := range sentences {
		rows[i] = model.SentenceRow{Date: date, DocType: model.DocStatement, Section: "Statement", Sentence: s}
	}
	return rows
}

func labelsOf(rows []model.LabeledRow) []model.Label {
	out := make([]model.Label, len(rows))
	for i, r := range rows {
		out[i] = r.Label
	}
	return out
}

func TestJoiner_Join(t *testing.T) {
	predictor := &scriptedPredictor{}
	rows := makeRows("a+", "b", "c-", "d+")

	got, err := NewJoiner(predictor, Options{BatchSize: 3}).Join(context.Background(), rows)
	if err != nil {
		t.Fatalf("Join: %v", err)
	}

	want := []model.Label{1, 0, -1, 1}
	if diff := cmp.Diff(want, labelsOf(got)); diff != "" {
		t.Errorf("labels mismatch (-want +got):\n%s", diff)
	}
	for i := range rows {
		if got[i].SentenceRow != rows[i] {
			t.Errorf("row %d changed: %+v", i, got[i].SentenceRow)
		}
	}
	if predictor.calls != 2 {
		t.Errorf("expected 2 batches of at most 3, got %d calls", predictor.calls)
	}
}

func TestJoiner_Empty(t *testing.T) {
	predictor := &scriptedPredictor{}
	got, err := NewJoiner(predictor, Options{}).Join(context.Background(), nil)
	if err != nil || len(got) != 0 {
		t.Fatalf("Join(nil) = %v, %v", got, err)
	}
	if predictor.calls != 0 {
		t.Error("predictor should not be called for empty input")
	}
}

func TestJoiner_OrderPreservedAcrossWorkers(t *testing.T) {
	// Earlier batches finish last
	predictor := &scriptedPredictor{
		delay: func(batch []string) time.Duration {
			if strings.HasPrefix(batch[0], "s00") {
				return 30 * time.Millisecond
			}
			return 0
		},
	}

	var sentences []string
	var want []model.Label
	for i := 0; i < 40; i++ {
		suffix, label := "", model.LabelNeutral
		switch i % 3 {
		case 1:
			suffix, label = "+", model.LabelPositive
		case 2:
			suffix, label = "-", model.LabelNegative
		}
		sentences = append(sentences, fmt.Sprintf("s%02d%s", i, suffix))
		want = append(want, label)
	}

	got, err := NewJoiner(predictor, Options{BatchSize: 4, Workers: 5}).Join(context.Background(), makeRows(sentences...))
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	if diff := cmp.Diff(want, labelsOf(got)); diff != "" {
		t.Errorf("labels mismatch (-want +got):\n%s", diff)
	}
	for i, r := range got {
		if r.Sentence != sentences[i] {
			t.Fatalf("row %d is %q, want %q", i, r.Sentence, sentences[i])
		}
	}
}

func TestJoiner_Mismatch(t *testing.T) {
	predictor := &scriptedPredictor{
		override: func(batch []string) ([]model.Label, error) {
			return make([]model.Label, len(batch)-1), nil
		},
	}

	_, err := NewJoiner(predictor, Options{BatchSize: 2}).Join(context.Background(), makeRows("a", "b", "c"))
	if !errors.Is(err, ErrLabelCountMismatch) {
		t.Fatalf("expected ErrLabelCountMismatch, got %v", err)
	}

	var mismatch *MismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected *MismatchError, got %T", err)
	}
	if mismatch.Batch != 0 || mismatch.Sentences != 2 || mismatch.Labels != 1 {
		t.Errorf("unexpected mismatch detail: %+v", mismatch)
	}
}

func TestJoiner_InvalidLabel(t *testing.T) {
	predictor := &scriptedPredictor{
		override: func(batch []string) ([]model.Label, error) {
			out := make([]model.Label, len(batch))
			out[0] = 2
			return out, nil
		},
	}

	_, err := NewJoiner(predictor, Options{}).Join(context.Background(), makeRows("a"))
	if !errors.Is(err, ErrInvalidLabel) {
		t.Fatalf("expected ErrInvalidLabel, got %v", err)
	}
}

func TestJoiner_PredictorError(t *testing.T) {
	boom := errors.New("boom")
	predictor := &scriptedPredictor{
		override: func(batch []string) ([]model.Label, error) { return nil, boom },
	}

	_, err := NewJoiner(predictor, Options{Workers: 3, BatchSize: 1}).Join(context.Background(), makeRows("a", "b", "c"))
	if !errors.Is(err, boom) {
		t.Fatalf("expected predictor error, got %v", err)
	}
	if !strings.HasPrefix(err.Error(), "batch 0:") {
		t.Errorf("expected the earliest failing batch to be reported, got %v", err)
	}
}

func TestJoiner_CacheAvoidsPredictorCalls(t *testing.T) {
	store := cache.NewMemoryCache(time.Minute, time.Minute)
	predictor := &scriptedPredictor{}
	joiner := NewJoiner(predictor, Options{
		BatchSize: 2,
		Cache:     cache.NewLabelCache(store, predictor.Name(), 0),
	})

	rows := makeRows("a+", "b-", "c")
	first, err := joiner.Join(context.Background(), rows)
	if err != nil {
		t.Fatalf("first Join: %v", err)
	}
	calls := atomic.LoadInt32(&predictor.calls)

	second, err := joiner.Join(context.Background(), rows)
	if err != nil {
		t.Fatalf("second Join: %v", err)
	}
	if atomic.LoadInt32(&predictor.calls) != calls {
		t.Errorf("expected no predictor calls on a warm cache, got %d more", predictor.calls-calls)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("cached join differs (-first +second):\n%s", diff)
	}

	// Only the new sentence is predicted
	_, err = joiner.Join(context.Background(), makeRows("a+", "new-"))
	if err != nil {
		t.Fatalf("third Join: %v", err)
	}
	last := predictor.batches[len(predictor.batches)-1]
	if diff := cmp.Diff([]string{"new-"}, last); diff != "" {
		t.Errorf("expected only the uncached sentence to be sent (-want +got):\n%s", diff)
	}
}

func TestJoiner_ContextCanceled(t *testing.T) {
	predictor := &scriptedPredictor{
		delay: func([]string) time.Duration { return 10 * time.Second },
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := NewJoiner(predictor, Options{Workers: 2}).Join(ctx, makeRows("a", "b"))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestJoiner_RateLimitedPerPredictor(t *testing.T) {
	limiter := worker.NewLimiter(1000, 1)
	predictor := &scriptedPredictor{}

	got, err := NewJoiner(predictor, Options{BatchSize: 1, Workers: 2, Limiter: limiter}).
		Join(context.Background(), makeRows("a+", "b-"))
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	if diff := cmp.Diff([]model.Label{1, -1}, labelsOf(got)); diff != "" {
		t.Errorf("labels mismatch (-want +got):\n%s", diff)
	}
}
