package pipeline

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/hawkdove/internal/extract"
	"github.com/ppiankov/hawkdove/internal/logging"
	"github.com/ppiankov/hawkdove/internal/model"
	"github.com/ppiankov/hawkdove/internal/worker"
)

var (
	statementHref = regexp.MustCompile(`monetary\d{8}[a-z]?\.htm`)
	date8         = regexp.MustCompile(`(\d{4})(\d{2})(\d{2})`)
)

// Discoverer lists statement and minutes sources from the publishing site
type Discoverer struct {
	fetcher         *Fetcher
	limiter         *worker.Limiter
	statementsURL   string
	minutesTemplate string
	yearsBack       int
	now             func() time.Time
	logger          *zap.Logger
}

// NewDiscoverer creates a discoverer from the fetch configuration
func NewDiscoverer(fetcher *Fetcher, limiter *worker.Limiter, cfg model.FetchConfig, logger *zap.Logger) *Discoverer {
	return &Discoverer{
		fetcher:         fetcher,
		limiter:         limiter,
		statementsURL:   cfg.StatementsURL,
		minutesTemplate: cfg.MinutesURLTemplate,
		yearsBack:       cfg.YearsBack,
		now:             time.Now,
		logger:          logging.OrNop(logger),
	}
}

// Discover fetches the statements page and one minutes page per year.
// Pages that fail are logged and skipped; only cancellation is an error.
// Sources are unique and sorted by date.
func (d *Discoverer) Discover(ctx context.Context) ([]model.Source, error) {
	var (
		mu      sync.Mutex
		sources []model.Source
	)
	collect := func(found []model.Source) {
		mu.Lock()
		sources = append(sources, found...)
		mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)

	if d.statementsURL != "" {
		g.Go(func() error {
			collect(d.page(gctx, d.statementsURL, model.DocStatement))
			return gctx.Err()
		})
	}

	if d.minutesTemplate != "" {
		year := d.now().UTC().Year()
		for y := year; y > year-d.yearsBack; y-- {
			pageURL := fmt.Sprintf(d.minutesTemplate, y)
			g.Go(func() error {
				collect(d.page(gctx, pageURL, model.DocMinutes))
				return gctx.Err()
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return dedupeSources(sources), nil
}

func (d *Discoverer) page(ctx context.Context, pageURL string, docType model.DocType) []model.Source {
	if d.limiter != nil {
		if err := d.limiter.Wait(ctx, pageURL); err != nil {
			return nil
		}
	}

	result, err := d.fetcher.FetchWithRetry(ctx, pageURL)
	if err != nil {
		d.logger.Warn("discovery page failed", zap.String("url", pageURL), zap.Error(err))
		return nil
	}

	links, err := extract.ExtractLinks(result.HTML(), result.FinalURL)
	if err != nil {
		d.logger.Warn("discovery page unparseable", zap.String("url", pageURL), zap.Error(err))
		return nil
	}

	found := SourcesFromLinks(links, docType)
	d.logger.Debug("discovered sources",
		zap.String("url", pageURL),
		zap.String("doc_type", string(docType)),
		zap.Int("links", len(links)),
		zap.Int("sources", len(found)))
	return found
}

// SourcesFromLinks keeps the links that look like documents of docType and
// carry an 8-digit date in their URL. PDF copies of the minutes are left out;
// the HTML page of the same meeting is listed instead.
func SourcesFromLinks(links []extract.Link, docType model.DocType) []model.Source {
	var out []model.Source
	for _, link := range links {
		if !matchesDocType(link, docType) {
			continue
		}
		date, ok := HrefDate(link.URL)
		if !ok {
			continue
		}
		out = append(out, model.Source{URL: link.URL, Date: date, DocType: docType})
	}
	return out
}

func matchesDocType(link extract.Link, docType model.DocType) bool {
	if docType == model.DocStatement {
		return statementHref.MatchString(link.URL)
	}
	return strings.Contains(strings.ToLower(link.Text), "minutes") && !link.IsPDF()
}

// HrefDate parses the first 8-digit YYYYMMDD run of a URL
func HrefDate(href string) (time.Time, bool) {
	m := date8.FindString(href)
	if m == "" {
		return time.Time{}, false
	}
	date, err := time.Parse("20060102", m)
	if err != nil {
		return time.Time{}, false
	}
	return date, true
}

func dedupeSources(sources []model.Source) []model.Source {
	seen := make(map[string]bool, len(sources))
	out := make([]model.Source, 0, len(sources))
	for _, s := range sources {
		if seen[s.URL] {
			continue
		}
		seen[s.URL] = true
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].URL < out[j].URL
	})
	return out
}
