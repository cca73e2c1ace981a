package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ppiankov/hawkdove/internal/aggregate"
	"github.com/ppiankov/hawkdove/internal/cache"
	"github.com/ppiankov/hawkdove/internal/extract"
	"github.com/ppiankov/hawkdove/internal/label"
	"github.com/ppiankov/hawkdove/internal/llm"
	"github.com/ppiankov/hawkdove/internal/logging"
	"github.com/ppiankov/hawkdove/internal/model"
	"github.com/ppiankov/hawkdove/internal/score"
	"github.com/ppiankov/hawkdove/internal/segment"
	"github.com/ppiankov/hawkdove/internal/worker"
)

// Pipeline turns local documents into a scored report
type Pipeline struct {
	builder   *extract.RowBuilder
	joiner    *label.Joiner
	scorer    *score.Scorer
	renderer  *Renderer
	predictor llm.Predictor
	labels    *cache.LabelCache
	memory    *cache.MemoryCache
	config    *model.Config
	logger    *zap.Logger
}

// NewPipeline wires the build stages. The predictor is owned by the caller.
func NewPipeline(cfg *model.Config, predictor llm.Predictor, logger *zap.Logger) (*Pipeline, error) {
	logger = logging.OrNop(logger)

	policy, err := segment.ParseDuplicatePolicy(cfg.Segment.DuplicatePolicy)
	if err != nil {
		return nil, err
	}
	splitter := segment.NewSectionSplitter(nil, policy)

	// Local predictors are neither cached nor throttled. Their labels are
	// cheaper to recompute than to read back, and a cache would outlive
	// changes to the term lists.
	_, local := predictor.(*llm.LexiconPredictor)

	var labels *cache.LabelCache
	var memory *cache.MemoryCache
	if cfg.Cache.Enabled && !local {
		store := cache.NewLayeredCache(cfg.Cache.MemoryTTL, cfg.Cache.Dir, cfg.Cache.DiskTTL)
		memory = store.Front()
		labels = cache.NewLabelCache(store, predictor.Name(), cfg.Cache.DiskTTL)
	}

	var limiter *worker.Limiter
	if !local {
		limiter = worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize)
	}

	joiner := label.NewJoiner(predictor, label.Options{
		BatchSize: cfg.Predictor.BatchSize,
		Workers:   cfg.Concurrency.Workers,
		Cache:     labels,
		Limiter:   limiter,
		Logger:    logger,
	})

	return &Pipeline{
		builder:   extract.NewRowBuilder(splitter),
		joiner:    joiner,
		scorer:    score.NewScorer(),
		renderer:  NewRenderer(cfg.Output.Dir, cfg.Output.Stub),
		predictor: predictor,
		labels:    labels,
		memory:    memory,
		config:    cfg,
		logger:    logger,
	}, nil
}

// Build recomputes the full index from docs.
// Documents that cannot be turned into rows are skipped and listed in the report;
// predictor failures abort the build.
func (p *Pipeline) Build(ctx context.Context, docs []model.Document) (*model.Report, error) {
	runID := uuid.NewString()
	logger := p.logger.With(zap.String("run_id", runID))

	rows, failed := p.builder.BuildAll(docs)

	skipped := make([]model.SkippedSource, 0, len(failed))
	for _, f := range failed {
		var dateErr *extract.DateExtractionError
		if errors.As(f, &dateErr) {
			logger.Warn("skipping document without date", zap.String("name", f.Document.Name), zap.Error(f.Err))
		} else {
			logger.Warn("skipping unreadable document", zap.String("path", f.Document.Path), zap.Error(f.Err))
		}
		name := f.Document.Name
		if name == "" {
			name = filepath.Base(f.Document.Path)
		}
		skipped = append(skipped, model.SkippedSource{Name: name, Reason: f.Err.Error()})
	}

	logger.Info("segmented documents",
		zap.Int("documents", len(docs)-len(failed)),
		zap.Int("skipped", len(failed)),
		zap.Int("sentences", len(rows)))

	labeled, err := p.joiner.Join(ctx, rows)
	if err != nil {
		return nil, fmt.Errorf("label sentences: %w", err)
	}

	report := &model.Report{
		RunID:     runID,
		Documents: len(docs) - len(failed),
		Sentences: len(labeled),
		Skipped:   skipped,
		Predictor: p.predictor.Name(),
		Series:    *aggregate.Aggregate(labeled),
	}
	p.scorer.Apply(report)
	report.BuiltAt = time.Now().UTC()

	fields := []zap.Field{
		zap.Int("monthly", len(report.HeadlineMonthly)),
		zap.Int("quarterly", len(report.HeadlineQuarterly)),
	}
	if report.Latest != nil {
		fields = append(fields,
			zap.String("latest", report.Latest.Date.Format(time.DateOnly)),
			zap.Int("latest_index", report.Latest.Index))
	}
	if p.labels != nil {
		hits, misses := p.labels.Stats()
		fields = append(fields, zap.Int64("cache_hits", hits), zap.Int64("cache_misses", misses))
	}
	if p.memory != nil {
		memHits, _ := p.memory.Stats()
		fields = append(fields, zap.Int64("cache_memory_hits", memHits), zap.Int("cache_memory_entries", p.memory.Len()))
	}
	logger.Info("built index", fields...)

	return report, nil
}

// Render writes the report tables into the configured output directory
func (p *Pipeline) Render(report *model.Report) ([]string, error) {
	paths, err := p.renderer.Render(report)
	if err != nil {
		return paths, fmt.Errorf("render: %w", err)
	}
	if p.config.Output.Verbose {
		for _, path := range paths {
			fmt.Fprintf(os.Stderr, "✓ Wrote %s\n", path)
		}
	}
	return paths, nil
}

// LoadDocuments lists the .txt files of dir in name order
func LoadDocuments(dir string) ([]model.Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}

	var docs []model.Document
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".txt") {
			continue
		}
		docs = append(docs, model.Document{Path: filepath.Join(dir, e.Name()), Name: e.Name()})
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Name < docs[j].Name })
	return docs, nil
}
