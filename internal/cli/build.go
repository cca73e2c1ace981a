package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ppiankov/hawkdove/internal/llm"
	"github.com/ppiankov/hawkdove/internal/pipeline"
	"github.com/ppiankov/hawkdove/internal/store"
)

var (
	buildTimeout time.Duration
	buildFetch   bool
)

// buildCmd represents the build command
var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Rebuild the sentiment index from local documents",
	Long: `Build recomputes the full index from the text documents in the input directory:
- Split every document into sections and sentences
- Label each sentence with the configured predictor (lexicon by default)
- Aggregate labels per document type into daily, monthly and quarterly series
- Combine statements and minutes into the 0-100 headline index
- Write CSV and JSON tables (and optionally a sqlite database)

Documents must carry a YYYY-MM-DD date in their filename; files without one are skipped.

Example:
  hawkdove build
  hawkdove build --fetch --out site/data
  hawkdove build --provider openai --model gpt-4o-mini --sqlite index.db`,
	Args:    cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error { return bindFlags(cmd, buildFlagKeys) },
	RunE:    runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().DurationVar(&buildTimeout, "timeout", 30*time.Minute, "overall build timeout")
	buildCmd.Flags().BoolVar(&buildFetch, "fetch", false, "discover and download documents before building")

	buildCmd.Flags().String("text-dir", "", "directory of .txt documents")
	buildCmd.Flags().String("out", "", "output directory for CSV/JSON tables")
	buildCmd.Flags().String("sqlite", "", "also store the tables in this sqlite database")
	buildCmd.Flags().Bool("stub", true, "write a neutral stub record when there is no data")
	buildCmd.Flags().String("provider", "", "label predictor (lexicon, openai, anthropic, ollama)")
	buildCmd.Flags().String("model", "", "predictor model name")
	buildCmd.Flags().Int("batch-size", 0, "sentences per predictor call")
	buildCmd.Flags().Int("workers", 0, "concurrent predictor/download workers")
	buildCmd.Flags().String("duplicate-sections", "", "repeated minutes sections: overwrite or append")
	buildCmd.Flags().Bool("cache", true, "cache predicted labels on disk")
}

var buildFlagKeys = map[string]string{
	"input.text_dir":           "text-dir",
	"output.dir":               "out",
	"output.sqlite":            "sqlite",
	"output.stub":              "stub",
	"predictor.provider":       "provider",
	"predictor.model":          "model",
	"predictor.batch_size":     "batch-size",
	"concurrency.workers":      "workers",
	"segment.duplicate_policy": "duplicate-sections",
	"cache.enabled":            "cache",
}

func runBuild(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), buildTimeout)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if buildFetch {
		if _, err := pipeline.NewCollector(cfg, logger).Collect(ctx); err != nil {
			return fmt.Errorf("fetch failed: %w", err)
		}
	}

	docs, err := pipeline.LoadDocuments(cfg.Input.TextDir)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		logger.Warn("no documents found", zap.String("dir", cfg.Input.TextDir))
	}

	predictor, err := llm.NewPredictor(llm.ConfigFromModel(cfg.Predictor, cfg.HTTP))
	if err != nil {
		return fmt.Errorf("create predictor: %w", err)
	}
	defer func() { _ = predictor.Close() }()

	if checker, ok := predictor.(llm.AvailabilityChecker); ok && !checker.IsAvailable(ctx) {
		logger.Warn("predictor did not answer the availability check", zap.String("predictor", predictor.Name()))
	}

	p, err := pipeline.NewPipeline(cfg, predictor, logger)
	if err != nil {
		return err
	}

	report, err := p.Build(ctx, docs)
	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}

	if _, err := p.Render(report); err != nil {
		return err
	}

	if cfg.Output.SQLite != "" {
		s, err := store.Open(cfg.Output.SQLite)
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()
		if err := s.Save(ctx, report); err != nil {
			return fmt.Errorf("store: %w", err)
		}
	}

	fmt.Fprintf(os.Stderr, "✓ Built index from %d documents (%d sentences, %d skipped) using %s\n",
		report.Documents, report.Sentences, len(report.Skipped), report.Predictor)
	if report.Latest != nil {
		fmt.Fprintf(os.Stderr, "✓ Latest monthly index (%s): %d/100\n",
			report.Latest.Date.Format("2006-01"), report.Latest.Index)
	} else {
		fmt.Fprintf(os.Stderr, "%s\n", emptyIndexNotice(cfg.Output.Stub))
	}
	fmt.Fprintf(os.Stderr, "✓ Output: %s\n", cfg.Output.Dir)
	return nil
}

func emptyIndexNotice(stub bool) string {
	if stub {
		return "⚠ No data; wrote neutral stub"
	}
	return "⚠ No data; index tables are empty"
}
