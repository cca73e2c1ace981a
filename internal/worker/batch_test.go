package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/hawkdove/internal/model"
)

// mockDownloader implements Downloader
type mockDownloader struct {
	failURL string
	calls   int32
}

func (m *mockDownloader) Download(ctx context.Context, src model.Source) (model.Document, error) {
	atomic.AddInt32(&m.calls, 1)
	// Later sources finish first so ordering is exercised
	if strings.HasSuffix(src.URL, "/0") {
		time.Sleep(20 * time.Millisecond)
	}
	if src.URL == m.failURL {
		return model.Document{}, errors.New("download error")
	}
	name := src.Date.Format(time.DateOnly) + "_" + string(src.DocType) + ".txt"
	return model.Document{Path: "/tmp/" + name, Name: name}, nil
}

func sources(n int) []model.Source {
	out := make([]model.Source, n)
	for i := range out {
		out[i] = model.Source{
			URL:     "https://example.com/doc/" + string(rune('0'+i)),
			Date:    time.Date(2023, 1, 1+i, 0, 0, 0, 0, time.UTC),
			DocType: model.DocStatement,
		}
	}
	return out
}

func TestBatchProcessor_ProcessSources(t *testing.T) {
	downloader := &mockDownloader{failURL: "https://example.com/doc/2"}
	processor := NewBatchProcessor(downloader, 3)

	srcs := sources(5)
	results := processor.ProcessSources(context.Background(), srcs)

	if len(results) != len(srcs) {
		t.Fatalf("expected %d results, got %d", len(srcs), len(results))
	}

	for i, res := range results {
		if res.Index != i || res.Source.URL != srcs[i].URL {
			t.Errorf("result %d out of order: index %d url %s", i, res.Index, res.Source.URL)
		}
		if i == 2 {
			if res.GetError() == nil {
				t.Error("expected error for failing source")
			}
			continue
		}
		if res.GetError() != nil {
			t.Errorf("unexpected error for %s: %v", res.Source.URL, res.Error)
		}
		if !strings.HasPrefix(res.Document.Name, "2023-01-0") {
			t.Errorf("unexpected document name %q", res.Document.Name)
		}
	}

	if atomic.LoadInt32(&downloader.calls) != 5 {
		t.Errorf("expected 5 downloads, got %d", downloader.calls)
	}
}

func TestBatchProcessor_ProcessSources_Empty(t *testing.T) {
	processor := NewBatchProcessor(&mockDownloader{}, 2)

	results := processor.ProcessSources(context.Background(), nil)
	if len(results) != 0 {
		t.Errorf("expected 0 results, got %d", len(results))
	}
}

func TestBatchProcessor_ProcessSources_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	processor := NewBatchProcessor(&mockDownloader{}, 2)
	results := processor.ProcessSources(ctx, sources(4))

	if len(results) != 4 {
		t.Fatalf("expected a result per source, got %d", len(results))
	}
	for i, res := range results {
		if res.Index != i {
			t.Errorf("result %d has index %d", i, res.Index)
		}
	}
}

func TestDownloadResult_GetError(t *testing.T) {
	r1 := &DownloadResult{}
	if r1.GetError() != nil {
		t.Errorf("expected nil error, got %v", r1.GetError())
	}

	expected := errors.New("download failed")
	r2 := &DownloadResult{Error: expected}
	if r2.GetError() != expected {
		t.Errorf("expected %v, got %v", expected, r2.GetError())
	}
}

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "urls.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadURLsFromFile(t *testing.T) {
	path := writeTemp(t, `https://www.federalreserve.gov/newsevents/pressreleases/monetary20231101a.htm
# comment
https://www.federalreserve.gov/monetarypolicy/fomcminutes20231101.htm
   
https://www.federalreserve.gov/newsevents/pressreleases/monetary20231101a.htm   `)

	urls, err := ReadURLsFromFile(path)
	if err != nil {
		t.Fatalf("ReadURLsFromFile failed: %v", err)
	}

	expected := []string{
		"https://www.federalreserve.gov/newsevents/pressreleases/monetary20231101a.htm",
		"https://www.federalreserve.gov/monetarypolicy/fomcminutes20231101.htm",
	}
	if len(urls) != len(expected) {
		t.Fatalf("expected %d URLs, got %d", len(expected), len(urls))
	}
	for i, url := range urls {
		if url != expected[i] {
			t.Errorf("expected URL %s at index %d, got %s", expected[i], i, url)
		}
	}
}

func TestReadURLsFromFile_NonExistent(t *testing.T) {
	if _, err := ReadURLsFromFile(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Error("expected error for non-existent file, got nil")
	}
}

func TestReadURLsFromFile_Empty(t *testing.T) {
	urls, err := ReadURLsFromFile(writeTemp(t, ""))
	if err != nil {
		t.Fatalf("ReadURLsFromFile failed: %v", err)
	}
	if len(urls) != 0 {
		t.Errorf("expected 0 URLs for empty file, got %d", len(urls))
	}
}
