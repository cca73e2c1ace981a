package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/ppiankov/hawkdove/internal/model"
)

// Downloader fetches one source and stores it as a local text document
type Downloader interface {
	Download(ctx context.Context, src model.Source) (model.Document, error)
}

// DownloadJob represents one source download
type DownloadJob struct {
	Index      int
	Source     model.Source
	Downloader Downloader
}

// Execute executes the download job
func (j *DownloadJob) Execute(ctx context.Context) Result {
	doc, err := j.Downloader.Download(ctx, j.Source)
	return &DownloadResult{
		Index:    j.Index,
		Source:   j.Source,
		Document: doc,
		Error:    err,
	}
}

// DownloadResult represents the result of a download job
type DownloadResult struct {
	Index    int
	Source   model.Source
	Document model.Document
	Error    error
}

// GetError returns the error from the download result
func (r *DownloadResult) GetError() error {
	return r.Error
}

// BatchProcessor downloads many sources concurrently
type BatchProcessor struct {
	downloader  Downloader
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(downloader Downloader, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		downloader:  downloader,
		concurrency: concurrency,
	}
}

// ProcessSources downloads every source and returns the results in input order
func (b *BatchProcessor) ProcessSources(ctx context.Context, sources []model.Source) []*DownloadResult {
	if len(sources) == 0 {
		return []*DownloadResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	for i, src := range sources {
		if !pool.Submit(&DownloadJob{Index: i, Source: src, Downloader: b.downloader}) {
			break
		}
	}

	results := pool.Wait()

	out := make([]*DownloadResult, 0, len(sources))
	for _, result := range results {
		out = append(out, result.(*DownloadResult))
	}

	// Sources that never ran report the context error
	seen := make(map[int]bool, len(out))
	for _, r := range out {
		seen[r.Index] = true
	}
	for i, src := range sources {
		if !seen[i] {
			err := ctx.Err()
			if err == nil {
				err = fmt.Errorf("download of %s not started", src.URL)
			}
			out = append(out, &DownloadResult{Index: i, Source: src, Error: err})
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

// ReadURLsFromFile reads URLs from a file (one per line)
func ReadURLsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var urls []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			urls = append(urls, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return urls, nil
}
