// Package label attaches predicted sentiment labels to sentence rows.
package label

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/ppiankov/hawkdove/internal/cache"
	"github.com/ppiankov/hawkdove/internal/llm"
	"github.com/ppiankov/hawkdove/internal/model"
	"github.com/ppiankov/hawkdove/internal/worker"
)

var (
	// ErrLabelCountMismatch is wrapped by MismatchError
	ErrLabelCountMismatch = errors.New("predictor returned a different number of labels than sentences")

	// ErrInvalidLabel is returned when a predictor yields a value outside {-1, 0, 1}
	ErrInvalidLabel = errors.New("invalid label")
)

// DefaultBatchSize is the number of sentences sent per predictor call
const DefaultBatchSize = 16

// MismatchError reports a batch whose label count differs from its sentence count
type MismatchError struct {
	Batch     int
	Sentences int
	Labels    int
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("batch %d: %d sentences, %d labels: %v", e.Batch, e.Sentences, e.Labels, ErrLabelCountMismatch)
}

func (e *MismatchError) Unwrap() error { return ErrLabelCountMismatch }

// Options tune a Joiner. Zero values select defaults.
type Options struct {
	BatchSize int
	Workers   int
	Cache     *cache.LabelCache
	Limiter   *worker.Limiter
	Logger    *zap.Logger
}

// Joiner labels sentence rows through a Predictor
type Joiner struct {
	predictor llm.Predictor
	batchSize int
	workers   int
	cache     *cache.LabelCache
	limiter   *worker.Limiter
	logger    *zap.Logger
}

// NewJoiner creates a joiner around an already constructed predictor.
// The joiner does not close the predictor.
func NewJoiner(predictor llm.Predictor, opts Options) *Joiner {
	j := &Joiner{
		predictor: predictor,
		batchSize: opts.BatchSize,
		workers:   opts.Workers,
		cache:     opts.Cache,
		limiter:   opts.Limiter,
		logger:    opts.Logger,
	}
	if j.batchSize <= 0 {
		j.batchSize = DefaultBatchSize
	}
	if j.workers <= 0 {
		j.workers = 1
	}
	if j.logger == nil {
		j.logger = zap.NewNop()
	}
	return j
}

// Join returns one LabeledRow per input row, in input order.
// Any batch failure fails the whole join.
func (j *Joiner) Join(ctx context.Context, rows []model.SentenceRow) ([]model.LabeledRow, error) {
	if len(rows) == 0 {
		return []model.LabeledRow{}, nil
	}

	labels := make([]model.Label, len(rows))

	// Cached sentences never reach the predictor
	var pending []int
	for i, row := range rows {
		if j.cache != nil {
			if label, ok := j.cache.Get(row.Sentence); ok {
				labels[i] = label
				continue
			}
		}
		pending = append(pending, i)
	}

	if len(pending) > 0 {
		if err := j.predictPending(ctx, rows, pending, labels); err != nil {
			return nil, err
		}
	}

	out := make([]model.LabeledRow, len(rows))
	for i, row := range rows {
		out[i] = model.LabeledRow{SentenceRow: row, Label: labels[i]}
	}

	j.logger.Debug("labels joined",
		zap.Int("rows", len(rows)),
		zap.Int("cached", len(rows)-len(pending)),
		zap.Int("predicted", len(pending)),
	)
	return out, nil
}

func (j *Joiner) predictPending(ctx context.Context, rows []model.SentenceRow, pending []int, labels []model.Label) error {
	var jobs []*batchJob
	for start := 0; start < len(pending); start += j.batchSize {
		end := min(start+j.batchSize, len(pending))
		idx := pending[start:end]

		sentences := make([]string, len(idx))
		for k, i := range idx {
			sentences[k] = rows[i].Sentence
		}
		jobs = append(jobs, &batchJob{batch: len(jobs), rows: idx, sentences: sentences, joiner: j})
	}

	pool := worker.NewPool(ctx, j.workers)
	pool.Start()
	for _, job := range jobs {
		if !pool.Submit(job) {
			break
		}
	}
	results := pool.Wait()

	if err := ctx.Err(); err != nil {
		return err
	}
	if len(results) != len(jobs) {
		return fmt.Errorf("label join: %d of %d batches completed", len(results), len(jobs))
	}

	// Report the earliest failing batch so errors are deterministic
	sort.Slice(results, func(a, b int) bool {
		return results[a].(*batchResult).batch < results[b].(*batchResult).batch
	})
	for _, r := range results {
		if err := r.GetError(); err != nil {
			return err
		}
	}

	for _, r := range results {
		br := r.(*batchResult)
		for k, i := range br.rows {
			labels[i] = br.labels[k]
			if j.cache != nil {
				if err := j.cache.Set(rows[i].Sentence, br.labels[k]); err != nil {
					j.logger.Warn("label cache write failed", zap.Error(err))
				}
			}
		}
	}
	return nil
}

type batchJob struct {
	batch     int
	rows      []int
	sentences []string
	joiner    *Joiner
}

type batchResult struct {
	batch  int
	rows   []int
	labels []model.Label
	err    error
}

func (r *batchResult) GetError() error { return r.err }

func (b *batchJob) Execute(ctx context.Context) worker.Result {
	res := &batchResult{batch: b.batch, rows: b.rows}

	j := b.joiner
	if j.limiter != nil {
		if err := j.limiter.WaitKey(ctx, j.predictor.Name()); err != nil {
			res.err = fmt.Errorf("batch %d: %w", b.batch, err)
			return res
		}
	}

	labels, err := j.predictor.Predict(ctx, b.sentences)
	if err != nil {
		res.err = fmt.Errorf("batch %d: predict with %s: %w", b.batch, j.predictor.Name(), err)
		return res
	}
	if len(labels) != len(b.sentences) {
		res.err = &MismatchError{Batch: b.batch, Sentences: len(b.sentences), Labels: len(labels)}
		return res
	}
	for k, l := range labels {
		if !l.Valid() {
			res.err = fmt.Errorf("batch %d sentence %d: %w: %d", b.batch, k, ErrInvalidLabel, l)
			return res
		}
	}

	res.labels = labels
	return res
}
