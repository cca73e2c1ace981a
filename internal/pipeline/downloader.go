package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/hawkdove/internal/extract"
	"github.com/ppiankov/hawkdove/internal/logging"
	"github.com/ppiankov/hawkdove/internal/model"
	"github.com/ppiankov/hawkdove/internal/worker"
)

// ErrPDFUnsupported is returned for sources that point at PDF files
var ErrPDFUnsupported = errors.New("PDF text extraction is not supported")

// Downloader stores fetched sources as raw and text files.
// Text files are named {date}_{doc_type}_{sha10}.txt, where sha10 is taken
// from the source URL. The row builder recovers the date and document type
// from the name, and a page downloaded again replaces its earlier file.
type Downloader struct {
	fetcher *Fetcher
	limiter *worker.Limiter
	rawDir  string
	textDir string
	logger  *zap.Logger
}

var _ worker.Downloader = (*Downloader)(nil)

// NewDownloader creates a downloader writing into rawDir and textDir
func NewDownloader(fetcher *Fetcher, limiter *worker.Limiter, rawDir, textDir string, logger *zap.Logger) *Downloader {
	return &Downloader{
		fetcher: fetcher,
		limiter: limiter,
		rawDir:  rawDir,
		textDir: textDir,
		logger:  logging.OrNop(logger),
	}
}

// Download fetches one source and returns the text document it produced
func (d *Downloader) Download(ctx context.Context, src model.Source) (model.Document, error) {
	if (extract.Link{URL: src.URL}).IsPDF() {
		d.logger.Warn("skipping PDF source", zap.String("url", src.URL))
		return model.Document{}, fmt.Errorf("%s: %w", src.URL, ErrPDFUnsupported)
	}

	delay, err := d.fetcher.CheckRobots(ctx, src.URL)
	if err != nil {
		return model.Document{}, err
	}
	if d.limiter != nil {
		if err := d.limiter.WaitWithDelay(ctx, src.URL, delay); err != nil {
			return model.Document{}, fmt.Errorf("rate limit: %w", err)
		}
	}

	result, err := d.fetcher.FetchWithRetry(ctx, src.URL)
	if err != nil {
		return model.Document{}, fmt.Errorf("download %s: %w", src.URL, err)
	}

	stem := fileStem(src)

	if err := writeFile(d.rawDir, stem+".html", result.Body); err != nil {
		return model.Document{}, err
	}

	text, err := extract.ExtractText(result.HTML())
	if err != nil {
		return model.Document{}, fmt.Errorf("extract text from %s: %w", src.URL, err)
	}

	name := stem + ".txt"
	if err := writeFile(d.textDir, name, []byte(text)); err != nil {
		return model.Document{}, err
	}

	d.logger.Debug("downloaded source",
		zap.String("url", src.URL),
		zap.String("file", name),
		zap.Int("bytes", len(result.Body)))

	return model.Document{Path: filepath.Join(d.textDir, name), Name: name}, nil
}

func fileStem(src model.Source) string {
	sum := sha256.Sum256([]byte(src.URL))
	return fmt.Sprintf("%s_%s_%s", src.Date.Format(time.DateOnly), src.DocType, hex.EncodeToString(sum[:])[:10])
}

func writeFile(dir, name string, data []byte) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
