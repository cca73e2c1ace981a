package pipeline

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ppiankov/hawkdove/internal/logging"
	"github.com/ppiankov/hawkdove/internal/model"
	"github.com/ppiankov/hawkdove/internal/worker"
)

// Collector discovers sources and downloads them into the text directory
type Collector struct {
	discoverer *Discoverer
	batch      *worker.BatchProcessor
	logger     *zap.Logger
}

// NewCollector builds the fetch side from configuration
func NewCollector(cfg *model.Config, logger *zap.Logger) *Collector {
	logger = logging.OrNop(logger)

	fetcher := NewFetcher(cfg.HTTP.Timeout, cfg.HTTP.UserAgent, cfg.HTTP.MaxBodyBytes,
		cfg.HTTP.RespectRobot, cfg.HTTP.HTTPProxy, cfg.HTTP.HTTPSProxy, cfg.HTTP.NoProxy)
	limiter := worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize)
	downloader := NewDownloader(fetcher, limiter, cfg.Input.RawDir, cfg.Input.TextDir, logger)

	return &Collector{
		discoverer: NewDiscoverer(fetcher, limiter, cfg.Fetch, logger),
		batch:      worker.NewBatchProcessor(downloader, cfg.Concurrency.Workers),
		logger:     logger,
	}
}

// Sources runs discovery only
func (c *Collector) Sources(ctx context.Context) ([]model.Source, error) {
	return c.discoverer.Discover(ctx)
}

// Collect discovers every source and downloads it
func (c *Collector) Collect(ctx context.Context) ([]model.Document, error) {
	sources, err := c.discoverer.Discover(ctx)
	if err != nil {
		return nil, fmt.Errorf("discover: %w", err)
	}
	c.logger.Info("discovered sources", zap.Int("sources", len(sources)))
	return c.Download(ctx, sources)
}

// Download fetches the given sources. Individual failures are logged and
// skipped; the error is non-nil only when ctx ends the run.
func (c *Collector) Download(ctx context.Context, sources []model.Source) ([]model.Document, error) {
	var docs []model.Document
	failed := 0

	for _, r := range c.batch.ProcessSources(ctx, sources) {
		if r.Error != nil {
			failed++
			if errors.Is(r.Error, ErrPDFUnsupported) {
				continue
			}
			c.logger.Warn("download failed", zap.String("url", r.Source.URL), zap.Error(r.Error))
			continue
		}
		docs = append(docs, r.Document)
	}

	c.logger.Info("downloaded sources", zap.Int("documents", len(docs)), zap.Int("failed", failed))
	if err := ctx.Err(); err != nil {
		return docs, err
	}
	return docs, nil
}
