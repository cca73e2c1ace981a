// Prints how a document is split into sections and sentences.
// Useful when tuning the heading catalog against a new minutes layout.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/hawkdove/internal/extract"
	"github.com/ppiankov/hawkdove/internal/model"
	"github.com/ppiankov/hawkdove/internal/segment"
)

func main() {
	policy := flag.String("duplicates", "overwrite", "repeated sections: overwrite or append")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: segment-check [-duplicates append] FILE...")
		os.Exit(2)
	}

	dup, err := segment.ParseDuplicatePolicy(*policy)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	builder := extract.NewRowBuilder(segment.NewSectionSplitter(nil, dup))

	failed := false
	for _, path := range flag.Args() {
		fmt.Printf("=== %s ===\n", filepath.Base(path))

		rows, err := builder.Build(model.Document{Path: path})
		if err != nil {
			fmt.Printf("  error: %v\n\n", err)
			failed = true
			continue
		}

		section := ""
		count := 0
		for _, row := range rows {
			if row.Section != section || count == 0 {
				section = row.Section
				fmt.Printf("\n  [%s] %s (%s)\n", row.DocType, section, row.Date.Format("2006-01-02"))
			}
			count++
			fmt.Printf("  %4d  %s\n", count, truncate(row.Sentence, 100))
		}
		fmt.Printf("\n  %d sentences\n\n", count)
	}

	if failed {
		os.Exit(1)
	}
}

func truncate(s string, n int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n-3]) + "..."
}
