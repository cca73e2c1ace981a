package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/hawkdove/internal/model"
	"github.com/ppiankov/hawkdove/internal/pipeline"
	"github.com/ppiankov/hawkdove/internal/worker"
)

var (
	fetchTimeout  time.Duration
	fetchURLsFile string
	fetchDryRun   bool
)

// fetchCmd represents the fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Discover and download statements and minutes",
	Long: `Fetch lists FOMC statements and minutes on the publishing site and downloads them:
- Statements come from the meeting calendar page
- Minutes come from one historical page per year (--years-back)
- Each document is saved raw and as extracted text named {date}_{type}_{hash}.txt
- robots.txt and per-host rate limits are honored; PDF links are skipped

Example:
  hawkdove fetch
  hawkdove fetch --years-back 2 --dry-run
  hawkdove fetch --urls-file urls.txt`,
	Args:    cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error { return bindFlags(cmd, fetchFlagKeys) },
	RunE:    runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().DurationVar(&fetchTimeout, "timeout", 20*time.Minute, "overall fetch timeout")
	fetchCmd.Flags().StringVar(&fetchURLsFile, "urls-file", "", "download these URLs (one per line) instead of discovering")
	fetchCmd.Flags().BoolVar(&fetchDryRun, "dry-run", false, "list sources without downloading")

	fetchCmd.Flags().Int("years-back", 0, "years of minutes pages to scan")
	fetchCmd.Flags().String("ua", "", "HTTP User-Agent")
	fetchCmd.Flags().String("http-proxy", "", "HTTP proxy URL (overrides HTTP_PROXY env var)")
	fetchCmd.Flags().String("https-proxy", "", "HTTPS proxy URL (overrides HTTPS_PROXY env var)")
	fetchCmd.Flags().Bool("robots", true, "honor robots.txt")
}

var fetchFlagKeys = map[string]string{
	"fetch.years_back":    "years-back",
	"http.user_agent":     "ua",
	"http.http_proxy":     "http-proxy",
	"http.https_proxy":    "https-proxy",
	"http.respect_robots": "robots",
}

func runFetch(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), fetchTimeout)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	collector := pipeline.NewCollector(cfg, logger)

	var sources []model.Source
	if fetchURLsFile != "" {
		urls, err := worker.ReadURLsFromFile(fetchURLsFile)
		if err != nil {
			return err
		}
		sources = sourcesFromURLs(urls)
		fmt.Fprintf(os.Stderr, "✓ Loaded %d URLs (%d dated)\n", len(urls), len(sources))
	} else {
		sources, err = collector.Sources(ctx)
		if err != nil {
			return fmt.Errorf("discover: %w", err)
		}
		fmt.Fprintf(os.Stderr, "✓ Discovered %d sources\n", len(sources))
	}

	if fetchDryRun {
		for _, s := range sources {
			fmt.Printf("%s\t%s\t%s\n", s.Date.Format(time.DateOnly), s.DocType, s.URL)
		}
		return nil
	}

	docs, err := collector.Download(ctx, sources)
	if err != nil {
		return fmt.Errorf("download: %w", err)
	}

	fmt.Fprintf(os.Stderr, "✓ Downloaded %d of %d documents into %s\n", len(docs), len(sources), cfg.Input.TextDir)
	return nil
}

// sourcesFromURLs keeps URLs that carry an 8-digit date; "minutes" in the
// URL marks a minutes document
func sourcesFromURLs(urls []string) []model.Source {
	var out []model.Source
	for _, u := range urls {
		date, ok := pipeline.HrefDate(u)
		if !ok {
			logger.Sugar().Warnf("skipping %s: no YYYYMMDD date in URL", u)
			continue
		}
		docType := model.DocStatement
		if strings.Contains(strings.ToLower(u), "minutes") {
			docType = model.DocMinutes
		}
		out = append(out, model.Source{URL: u, Date: date, DocType: docType})
	}
	return out
}
